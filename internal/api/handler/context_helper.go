package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"ocorrencias-ponto/backend/internal/api/middleware"
	"ocorrencias-ponto/backend/pkg/response"
)

// MustGetUserID reads the user id set by the auth middleware.
// On false a 401 has been written and the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.ContextUserID)
	if s == "" {
		response.Unauthorized(c, "não autenticado")
		return "", false
	}
	return s, true
}

// tokenInfo is the access token identity of the request
type tokenInfo struct {
	userID    string
	email     string
	jti       string
	expiresAt time.Time
}

func mustGetToken(c *gin.Context) (tokenInfo, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return tokenInfo{}, false
	}
	return tokenInfo{
		userID:    userID,
		email:     c.GetString(middleware.ContextEmail),
		jti:       c.GetString(middleware.ContextTokenID),
		expiresAt: c.GetTime(middleware.ContextExpiresAt),
	}, true
}
