package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pursueapp/recap-engine/internal/core/services"
)

type AuthHandler struct {
	tokens *services.TokenService
}

func NewAuthHandler(tokens *services.TokenService) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
	}
}

type tokenRequest struct {
	OperatorKey string `json:"operator_key" binding:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// IssueToken exchanges the operator key for a short-lived admin token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.tokens.Exchange(req.OperatorKey)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOperatorKey) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid operator key"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/token", h.IssueToken)
	}
}
