package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"realtime-polling-backend/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	snapshot *model.ResultSnapshot
	err      error
}

func (s *stubSource) ComputeResults(ctx context.Context) (*model.ResultSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func recvUpdate(t *testing.T, sub *Subscriber) *model.WSMessage {
	t.Helper()

	select {
	case payload := <-sub.Receive():
		var msg model.WSMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		return &msg
	case <-time.After(2 * time.Second):
		t.Fatal("expected a broadcast update")
		return nil
	}
}

func TestBroadcasterTrigger(t *testing.T) {
	hub := startHub(t)
	source := &stubSource{snapshot: &model.ResultSnapshot{
		OptionA: 2, OptionB: 1, Total: 3,
		OptionAPercent: "66.7", OptionBPercent: "33.3", OptionCPercent: "0.0",
	}}

	// Long interval so only explicit triggers cause pushes
	b := NewBroadcaster(hub, source, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(cancel)

	sub := hub.Subscribe()
	waitForCount(t, hub, 1)

	b.Trigger()

	msg := recvUpdate(t, sub)
	assert.Equal(t, model.WSTypeResultsUpdate, msg.Type)

	data, err := json.Marshal(msg.Data)
	require.NoError(t, err)
	var snapshot model.ResultSnapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Equal(t, int64(3), snapshot.Total)
	assert.Equal(t, "66.7", snapshot.OptionAPercent)
}

func TestBroadcasterInterval(t *testing.T) {
	hub := startHub(t)
	source := &stubSource{snapshot: &model.ResultSnapshot{
		OptionAPercent: "0.0", OptionBPercent: "0.0", OptionCPercent: "0.0",
	}}

	b := NewBroadcaster(hub, source, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(cancel)

	sub := hub.Subscribe()
	waitForCount(t, hub, 1)

	// Without any explicit trigger the ticker still pushes
	msg := recvUpdate(t, sub)
	assert.Equal(t, model.WSTypeResultsUpdate, msg.Type)
}

// Trigger is non-blocking even when no broadcast loop is draining the
// signal channel; dense triggers coalesce.
func TestBroadcasterTriggerNonBlocking(t *testing.T) {
	b := NewBroadcaster(NewHub(), &stubSource{snapshot: &model.ResultSnapshot{}}, time.Hour)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Trigger()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Trigger must never block")
	}
}

func TestBroadcasterSourceError(t *testing.T) {
	hub := startHub(t)
	source := &stubSource{err: errors.New("db down")}

	b := NewBroadcaster(hub, source, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(cancel)

	sub := hub.Subscribe()
	waitForCount(t, hub, 1)

	b.Trigger()

	// Snapshot failures are logged and skipped, nothing is pushed
	select {
	case payload := <-sub.Receive():
		t.Fatalf("unexpected broadcast: %s", payload)
	case <-time.After(100 * time.Millisecond):
	}
}
