package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pursueapp/recap-engine/internal/core/services"
)

func setupAuthHandler(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("operator-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens := services.NewTokenService("test-secret", "recap-engine", time.Hour, string(hash))
	handler := NewAuthHandler(tokens)

	router := gin.New()
	handler.RegisterRoutes(router.Group(""))
	return router
}

func TestAuthHandler_IssueToken(t *testing.T) {
	t.Run("Success: valid operator key returns a token", func(t *testing.T) {
		router := setupAuthHandler(t)

		body, _ := json.Marshal(map[string]string{"operator_key": "operator-secret"})
		req, _ := http.NewRequest(http.MethodPost, "/auth/token", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response tokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.Token)
	})

	t.Run("Fail: wrong key returns 401", func(t *testing.T) {
		router := setupAuthHandler(t)

		body, _ := json.Marshal(map[string]string{"operator_key": "wrong"})
		req, _ := http.NewRequest(http.MethodPost, "/auth/token", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid operator key")
	})

	t.Run("Fail: missing operator_key returns 400", func(t *testing.T) {
		router := setupAuthHandler(t)

		req, _ := http.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString("{}"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
