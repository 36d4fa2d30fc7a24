package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ocorrencias-ponto/backend/internal/dto"
	"ocorrencias-ponto/backend/internal/service"
	"ocorrencias-ponto/backend/pkg/response"
)

// AuthHandler auth endpoints
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "parâmetros inválidos")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, "e-mail ou senha inválidos")
		case errors.Is(err, service.ErrTooManyAttempts):
			response.Error(c, http.StatusTooManyRequests, response.CodeTooManyRequests, "muitas tentativas de login, tente novamente mais tarde")
		default:
			response.Error(c, http.StatusBadGateway, response.CodeInternal, "provedor de identidade indisponível")
		}
		return
	}

	response.OK(c, result)
}

// RefreshToken POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "parâmetros inválidos")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			response.Unauthorized(c, "token inválido ou expirado")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	tok, ok := mustGetToken(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), tok.userID, tok.expiresAt, tok.jti); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GetCurrentUser GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	tok, ok := mustGetToken(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), tok.userID, tok.email)
	if err != nil {
		response.Unauthorized(c, "não autenticado")
		return
	}

	response.OK(c, user)
}
