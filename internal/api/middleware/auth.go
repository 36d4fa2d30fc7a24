package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ocorrencias-ponto/backend/pkg/jwt"
	"ocorrencias-ponto/backend/pkg/redis"
	"ocorrencias-ponto/backend/pkg/response"
)

// Context keys set by JWTAuth
const (
	ContextUserID    = "user_id"
	ContextEmail     = "email"
	ContextTokenID   = "token_id"
	ContextExpiresAt = "token_expires_at"
)

// JWTAuth validates the Bearer access token and rejects revoked tokens.
// rdb may be nil, in which case revocation is not checked.
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "cabeçalho de autenticação ausente")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "cabeçalho de autenticação inválido")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "token inválido ou expirado")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TypeAccess {
			response.Unauthorized(c, "tipo de token inválido")
			c.Abort()
			return
		}

		revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			logger.Warn("token blacklist unavailable", zap.Error(err))
		}
		if revoked {
			response.Unauthorized(c, "sessão encerrada")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextTokenID, claims.ID)
		c.Set(ContextExpiresAt, claims.ExpiresAt.Time)

		c.Next()
	}
}
