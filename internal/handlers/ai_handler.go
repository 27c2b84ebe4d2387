package handlers

import (
	"errors"
	"net/http"

	"go-pos-retail/internal/ai"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

type AIHandler struct {
	Agent *ai.Agent
}

func (h *AIHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Message is required")
		return
	}

	// 1. Run the agent
	response, err := h.Agent.Ask(c.Request.Context(), req.Message)
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, ai.ErrDisabled) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured", "code": "assistant_disabled"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Assistant request failed", "code": "assistant_error"})
		return
	}

	// 2. Return the Answer
	c.JSON(http.StatusOK, gin.H{"reply": response})
}
