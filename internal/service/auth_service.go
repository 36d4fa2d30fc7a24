package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"ocorrencias-ponto/backend/config"
	"ocorrencias-ponto/backend/internal/dto"
	"ocorrencias-ponto/backend/pkg/identity"
	"ocorrencias-ponto/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("e-mail ou senha inválidos")
	ErrInvalidToken       = errors.New("token inválido ou expirado")
	ErrTooManyAttempts    = errors.New("muitas tentativas de login, tente novamente mais tarde")
)

// AuthService sign-in, token rotation and sign-out
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout revokes the access token jti until expiresAt and ends the user's session
	Logout(ctx context.Context, userID string, expiresAt time.Time, jti string) error
	GetCurrentUser(ctx context.Context, userID, email string) (*dto.UserResponse, error)
}

// TokenStore revokes tokens and counts login attempts.
// *redis.Client implements it and is safe to use when nil.
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type authService struct {
	cfg      *config.AuthConfig
	provider identity.Provider
	notifier *identity.Notifier
	jwtMgr   *jwt.Manager
	rdb      TokenStore
	logger   *zap.Logger
}

// NewAuthService creates an AuthService. rdb may be a nil *redis.Client.
func NewAuthService(
	cfg *config.AuthConfig,
	provider identity.Provider,
	notifier *identity.Notifier,
	jwtMgr *jwt.Manager,
	rdb TokenStore,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:      cfg,
		provider: provider,
		notifier: notifier,
		jwtMgr:   jwtMgr,
		rdb:      rdb,
		logger:   logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 1. per-account attempt limit
	allowed, err := s.rdb.CheckRateLimit(ctx, "login:"+email, s.cfg.LoginRateLimit, s.cfg.LoginWindow)
	if err != nil {
		s.logger.Warn("login rate limit unavailable", zap.Error(err))
	} else if !allowed {
		return nil, ErrTooManyAttempts
	}

	// 2. identity provider
	user, err := s.provider.SignInWithPassword(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("identity provider sign in failed", zap.Error(err))
		return nil, err
	}

	// 3. token pair
	resp, err := s.issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	// 4. subscribers start the dashboard session
	s.notifier.Publish(identity.Event{Type: identity.SignedIn, User: *user})
	s.logger.Info("user signed in", zap.String("user_id", user.ID))

	return resp, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TypeRefresh {
		return nil, ErrInvalidToken
	}

	revoked, err := s.rdb.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Warn("token blacklist unavailable", zap.Error(err))
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	resp, err := s.issue(claims.UserID, claims.Email)
	if err != nil {
		return nil, err
	}

	// rotation: the old refresh token is single use
	if err := s.rdb.BlacklistToken(ctx, claims.ID, claims.RemainingTTL(time.Now())); err != nil {
		s.logger.Warn("blacklist refresh token failed", zap.Error(err))
	}
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, userID string, expiresAt time.Time, jti string) error {
	// sign-out and session teardown run even when the token cannot be revoked
	blErr := s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt))
	if blErr != nil {
		s.logger.Error("blacklist access token failed", zap.String("user_id", userID), zap.Error(blErr))
	}

	if err := s.provider.SignOut(ctx, userID); err != nil {
		s.logger.Warn("identity provider sign out failed", zap.Error(err))
	}

	s.notifier.Publish(identity.Event{Type: identity.SignedOut, User: identity.User{ID: userID}})
	s.logger.Info("user signed out", zap.String("user_id", userID))
	return blErr
}

func (s *authService) GetCurrentUser(_ context.Context, userID, email string) (*dto.UserResponse, error) {
	if userID == "" {
		return nil, ErrInvalidToken
	}
	return &dto.UserResponse{ID: userID, Email: email}, nil
}

func (s *authService) issue(userID, email string) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(userID, email)
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(userID, email)
	if err != nil {
		s.logger.Error("generate refresh token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         dto.UserResponse{ID: userID, Email: email},
	}, nil
}
