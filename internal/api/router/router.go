package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ocorrencias-ponto/backend/config"
	"ocorrencias-ponto/backend/internal/api/handler"
	"ocorrencias-ponto/backend/internal/api/middleware"
	"ocorrencias-ponto/backend/pkg/jwt"
	"ocorrencias-ponto/backend/pkg/redis"
)

// maxBodyBytes caps request bodies; filter payloads are small
const maxBodyBytes = 1 << 20

// Setup builds the Gin engine
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── health ──
	r.GET("/health", h.Health.Health)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// public
		auth := v1.Group("/auth")
		{
			auth.POST("/login",
				middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginWindow, logger),
				h.Auth.Login,
			)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// dataset lifecycle
			dataset := authorized.Group("/dataset")
			{
				dataset.GET("/status", h.Dataset.Status)
				dataset.POST("/refresh", h.Dataset.Refresh)
			}

			// filter state of the signed-in user
			filters := authorized.Group("/filters")
			{
				filters.GET("", h.Dashboard.GetFilters)
				filters.DELETE("", h.Dashboard.ClearFilters)
				filters.GET("/options", h.Dashboard.FilterOptions)
				filters.PUT("/date-range", h.Dashboard.UpdateDateRange)
				filters.PUT("/statuses", h.Dashboard.UpdateStatuses)
				filters.PUT("/collaborators", h.Dashboard.UpdateCollaborators)
				filters.PUT("/registration", h.Dashboard.UpdateRegistration)
				filters.PUT("/bases", h.Dashboard.UpdateBases)
				filters.PUT("/specials", h.Dashboard.UpdateSpecials)
			}

			authorized.GET("/occurrences", h.Dashboard.ListOccurrences)

			charts := authorized.Group("/charts")
			{
				charts.GET("/status", h.Dashboard.StatusChart)
				charts.GET("/date-status", h.Dashboard.DateStatusChart)
				charts.GET("/specials", h.Dashboard.SpecialsChart)
			}

			export := authorized.Group("/export")
			{
				export.GET("/occurrences.csv", h.Export.OccurrencesCSV)
				export.GET("/occurrences.xlsx", h.Export.OccurrencesExcel)
				export.GET("/table.xlsx", h.Export.Table)
				export.GET("/charts/:chart", h.Export.Chart)
			}
		}
	}

	return r
}
