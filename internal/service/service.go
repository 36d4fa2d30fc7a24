package service

import (
	"time"

	"go.uber.org/zap"

	"ocorrencias-ponto/backend/config"
	"ocorrencias-ponto/backend/internal/recordstore"
	"ocorrencias-ponto/backend/pkg/identity"
	"ocorrencias-ponto/backend/pkg/jwt"
	"ocorrencias-ponto/backend/pkg/redis"
)

// Service groups every service
type Service struct {
	Auth      AuthService
	Dataset   DatasetService
	Dashboard DashboardService
	Export    ExportService
	Sessions  *SessionStore
}

// NewService wires the services. Dashboard sessions follow the notifier's
// sign-in and sign-out events.
func NewService(
	cfg *config.Config,
	store *recordstore.Store,
	provider identity.Provider,
	notifier *identity.Notifier,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	sessions := NewSessionStore(logger)
	notifier.Subscribe(sessions.HandleEvent)

	loc, err := time.LoadLocation(cfg.Export.Timezone)
	if err != nil {
		logger.Warn("unknown export timezone, using local time", zap.String("timezone", cfg.Export.Timezone), zap.Error(err))
		loc = time.Local
	}

	return &Service{
		Auth:      NewAuthService(&cfg.Auth, provider, notifier, jwtMgr, rdb, logger),
		Dataset:   NewDatasetService(store, logger),
		Dashboard: NewDashboardService(store, sessions, logger),
		Export:    NewExportService(store, sessions, loc, logger),
		Sessions:  sessions,
	}
}
