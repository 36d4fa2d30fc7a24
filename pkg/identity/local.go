package identity

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"ocorrencias-ponto/backend/config"
)

// LocalProvider authenticates against bcrypt-hashed accounts from configuration
type LocalProvider struct {
	users map[string]config.LocalUser // keyed by lower-cased email
}

// NewLocalProvider indexes the configured accounts
func NewLocalProvider(users []config.LocalUser) *LocalProvider {
	p := &LocalProvider{users: make(map[string]config.LocalUser, len(users))}
	for _, u := range users {
		p.users[strings.ToLower(strings.TrimSpace(u.Email))] = u
	}
	return p
}

func (p *LocalProvider) SignInWithPassword(_ context.Context, email, password string) (*User, error) {
	u, ok := p.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	id := u.ID
	if id == "" {
		id = u.Email
	}
	return &User{ID: id, Email: u.Email}, nil
}

func (p *LocalProvider) SignOut(context.Context, string) error { return nil }
