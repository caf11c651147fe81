package model

import (
	"encoding/json"
	"time"
)

// Option 投票选项枚举，固定三个选项
type Option string

const (
	OptionA Option = "optionA"
	OptionB Option = "optionB"
	OptionC Option = "optionC"
)

// AllOptions 全部合法选项，聚合时用于补零
var AllOptions = []Option{OptionA, OptionB, OptionC}

// IsValid 判断选项是否在枚举范围内
func (o Option) IsValid() bool {
	switch o {
	case OptionA, OptionB, OptionC:
		return true
	}
	return false
}

// Participant 参与者会话记录
// votedFor非空当且仅当hasVoted为true
type Participant struct {
	Username     string    `json:"username"`
	SessionToken string    `json:"sessionToken"`
	HasVoted     bool      `json:"hasVoted"`
	VotedFor     *Option   `json:"votedFor"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Ballot 选票记录，每个会话最多一张
// session_token上的唯一索引是防止重复投票的权威约束
type Ballot struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Option       Option    `gorm:"column:option;type:varchar(16);not null" json:"option"`
	Username     string    `gorm:"type:varchar(50);not null" json:"username"`
	SessionToken string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"sessionToken"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ResultSnapshot 投票结果快照，按需从全量选票重新计算
// 百分比统一为保留一位小数的字符串，总数为0时为"0.0"
type ResultSnapshot struct {
	OptionA        int64  `json:"optionA"`
	OptionB        int64  `json:"optionB"`
	OptionC        int64  `json:"optionC"`
	Total          int64  `json:"total"`
	OptionAPercent string `json:"optionAPercent"`
	OptionBPercent string `json:"optionBPercent"`
	OptionCPercent string `json:"optionCPercent"`
}

// Count 返回指定选项的计数
func (s *ResultSnapshot) Count(option Option) int64 {
	switch option {
	case OptionA:
		return s.OptionA
	case OptionB:
		return s.OptionB
	case OptionC:
		return s.OptionC
	}
	return 0
}

// WSMessage 定义WebSocket消息格式
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WebSocket消息类型
const (
	WSTypeJoinResults   = "joinResults"
	WSTypeLeaveResults  = "leaveResults"
	WSTypeResultsUpdate = "resultsUpdate"
	WSTypePing          = "PING"
	WSTypePong          = "PONG"
)

// ToJSON 将WebSocket消息转换为JSON字节数组
func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
}

// UserInfo 登录响应中的用户信息
type UserInfo struct {
	Username     string `json:"username"`
	SessionToken string `json:"sessionToken"`
	HasVoted     bool   `json:"hasVoted"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
}

// ProfileResponse 用户信息响应
type ProfileResponse struct {
	Username string  `json:"username"`
	HasVoted bool    `json:"hasVoted"`
	VotedFor *Option `json:"votedFor"`
}

// CastVoteRequest 提交投票请求
type CastVoteRequest struct {
	Option string `json:"option" binding:"required"`
}

// VoteInfo 投票响应中的选票信息
type VoteInfo struct {
	Option   Option `json:"option"`
	Username string `json:"username"`
}

// CastVoteResponse 投票响应
type CastVoteResponse struct {
	Message string   `json:"message"`
	Vote    VoteInfo `json:"vote"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
