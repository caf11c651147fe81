package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"realtime-polling-backend/config"
	"realtime-polling-backend/handlers"
	"realtime-polling-backend/model"
	"realtime-polling-backend/realtime"
	"realtime-polling-backend/repository"
	"realtime-polling-backend/routes"
	"realtime-polling-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full HTTP surface against in-memory storage:
// an in-memory participant repository and an in-memory SQLite ballot store.
type testEnv struct {
	router      *gin.Engine
	hub         *realtime.Hub
	broadcaster *realtime.Broadcaster
}

// newTestEnv builds the router the same way main does, minus Redis and
// rate limiting. The broadcast ticker interval is one hour so only
// explicit vote triggers cause pushes during tests.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Ballot{}))
	t.Cleanup(func() { _ = sqlDB.Close() })

	participants := repository.NewMemoryParticipantRepository(24 * time.Hour)
	ballots := repository.NewGormBallotRepository(db)

	authService := service.NewAuthService(participants)
	resultService := service.NewResultService(ballots)

	hub := realtime.NewHub()
	broadcaster := realtime.NewBroadcaster(hub, resultService, time.Hour)
	voteService := service.NewVoteService(participants, ballots, broadcaster)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	go broadcaster.Run(ctx)
	t.Cleanup(cancel)

	cfg := &config.Config{
		Port:        "0",
		FrontendURL: "*",
	}

	router := routes.SetupRouter(cfg, routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Vote:   handlers.NewVoteHandler(voteService),
		Result: handlers.NewResultHandler(resultService),
		Health: handlers.NewHealthHandler(),
		WS:     handlers.NewWSHandler(hub, resultService),
		SSE:    handlers.NewSSEHandler(hub, resultService),
		AuthMW: handlers.AuthMiddleware(authService),
	})

	return &testEnv{
		router:      router,
		hub:         hub,
		broadcaster: broadcaster,
	}
}

// doJSON performs a request against the router with an optional JSON body
// and bearer token.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// login registers a session and returns its token.
func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()

	w := e.doJSON(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Username: username})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.User.SessionToken)
	return resp.User.SessionToken
}

// castVote casts a vote for the session and returns the recorder.
func (e *testEnv) castVote(t *testing.T, token, option string) *httptest.ResponseRecorder {
	t.Helper()
	return e.doJSON(t, http.MethodPost, "/api/votes/cast", token, model.CastVoteRequest{Option: option})
}

// getResults fetches and decodes the current result snapshot.
func (e *testEnv) getResults(t *testing.T) *model.ResultSnapshot {
	t.Helper()

	w := e.doJSON(t, http.MethodGet, "/api/results", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot model.ResultSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	return &snapshot
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}
