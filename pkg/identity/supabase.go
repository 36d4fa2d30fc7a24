package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"ocorrencias-ponto/backend/pkg/supabase"
)

// SupabaseProvider signs users in through GoTrue. The GoTrue access token is
// kept per user so SignOut can revoke it.
type SupabaseProvider struct {
	client *supabase.Client
	logger *zap.Logger

	mu     sync.Mutex
	tokens map[string]string
}

// NewSupabaseProvider creates a provider over client
func NewSupabaseProvider(client *supabase.Client, logger *zap.Logger) *SupabaseProvider {
	return &SupabaseProvider{client: client, logger: logger, tokens: make(map[string]string)}
}

func (p *SupabaseProvider) SignInWithPassword(ctx context.Context, email, password string) (*User, error) {
	sess, err := p.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("supabase sign in: %w", err)
	}

	p.mu.Lock()
	p.tokens[sess.User.ID] = sess.AccessToken
	p.mu.Unlock()

	return &User{ID: sess.User.ID, Email: sess.User.Email}, nil
}

func (p *SupabaseProvider) SignOut(ctx context.Context, userID string) error {
	p.mu.Lock()
	token, ok := p.tokens[userID]
	delete(p.tokens, userID)
	p.mu.Unlock()

	if !ok {
		return nil
	}
	if err := p.client.SignOut(ctx, token); err != nil {
		// the provider session expires on its own
		p.logger.Warn("supabase sign out failed", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}
