package handlers

import (
	"errors"
	"net/http"

	"realtime-polling-backend/model"
	"realtime-polling-backend/service"

	"github.com/gin-gonic/gin"
)

// VoteHandler 处理投票API请求
type VoteHandler struct {
	votes *service.VoteService
}

// NewVoteHandler 创建投票处理器
func NewVoteHandler(votes *service.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// CastVote 为当前会话投出一票
func (h *VoteHandler) CastVote(c *gin.Context) {
	var req model.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid option"})
		return
	}

	token := c.GetString(ContextSessionTokenKey)

	vote, err := h.votes.CastVote(c.Request.Context(), token, req.Option)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOption):
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid option"})
		case errors.Is(err, service.ErrAlreadyVoted):
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "You have already voted"})
		case errors.Is(err, service.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Invalid session token"})
		default:
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Server error during voting"})
		}
		return
	}

	c.JSON(http.StatusOK, model.CastVoteResponse{
		Message: "Vote cast successfully",
		Vote:    *vote,
	})
}
