package container

import (
	"context"
	"fmt"
	"time"

	"client-feedback-admin/internal/config"
	"client-feedback-admin/internal/database"
	"client-feedback-admin/internal/handlers"
	"client-feedback-admin/internal/importer"
	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/middleware"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/repositories"
	"client-feedback-admin/internal/security"
	"client-feedback-admin/internal/server"
	"client-feedback-admin/internal/services"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

const (
	StagingBackendRedis  = "redis"
	StagingBackendMemory = "memory"

	janitorInterval = time.Minute
)

// Module provides dependency injection configuration
var Module = fx.Options(
	// Configuration
	fx.Provide(config.LoadConfig),

	// Logging
	fx.Provide(logger.NewLogger),

	// Database
	fx.Provide(database.NewConnection),
	fx.Provide(database.NewMigrator),
	fx.Provide(database.NewRedisClient),

	// Metrics
	fx.Provide(NewRegistry),
	fx.Provide(func(registry *prometheus.Registry) prometheus.Registerer {
		return registry
	}),
	fx.Provide(services.NewImportMetrics),

	// Repositories
	fx.Provide(repositories.NewClientRepository),
	fx.Provide(repositories.NewAdminRepository),
	fx.Provide(repositories.NewImportRunRepository),

	// Import pipeline
	fx.Provide(func() importer.SpreadsheetReader {
		return importer.NewFileReader()
	}),
	fx.Provide(importer.NewReconciler),
	fx.Provide(NewStagingStore),

	// Services
	fx.Provide(services.NewAuthenticationService),
	fx.Provide(services.NewClientService),
	fx.Provide(services.NewImportService),

	// Security
	fx.Provide(NewLoginRateLimiter),

	// Handlers
	fx.Provide(handlers.NewAuthHandler),
	fx.Provide(handlers.NewClientHandler),
	fx.Provide(handlers.NewImportHandler),
	fx.Provide(NewHealthChecks),
	fx.Provide(handlers.NewHealthHandler),

	// Middleware
	fx.Provide(middleware.NewAuthenticationMiddleware),

	// Server
	fx.Provide(server.NewServer),

	// Models (for validation and serialization)
	fx.Provide(models.NewValidationService),

	// Invoke migrations on startup
	fx.Invoke(func(migrator *database.Migrator) error {
		return migrator.Up()
	}),

	fx.Invoke(RegisterGauges),
	fx.Invoke(StartJanitor),
)

// NewRegistry creates the registry served on /metrics
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// NewLoginRateLimiter throttles logins per client, trusting forwarded headers only from auth.trusted_proxies
func NewLoginRateLimiter(cfg *config.Config) (*security.RateLimiter, error) {
	proxies, err := security.ParseTrustedProxies(cfg.Auth.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("auth.trusted_proxies: %w", err)
	}
	return security.NewRateLimiterBehindProxies(cfg.Auth.LoginRequestsPerMinute, cfg.Auth.LoginBurst, proxies), nil
}

// NewStagingStore selects the staging backend named by import.staging_backend
func NewStagingStore(cfg *config.Config, log *logger.Logger, client *redis.Client) services.StagingStore {
	if cfg.Import.StagingBackend == StagingBackendMemory {
		log.Warn("Import staging uses process memory; staged imports are lost on restart")
		return services.NewMemoryStagingStore()
	}
	return services.NewRedisStagingStore(client)
}

// NewHealthChecks wires the dependencies probed by /health
func NewHealthChecks(cfg *config.Config, db *database.Connection, client *redis.Client) map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{
		"database": db.Ping,
	}
	if cfg.Import.StagingBackend != StagingBackendMemory {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}

// sweeper is implemented by staging stores that expire entries lazily
type sweeper interface {
	Sweep() int
}

// StartJanitor periodically drops idle rate limiter buckets and expired in-memory imports
func StartJanitor(lc fx.Lifecycle, log *logger.Logger, limiter *security.RateLimiter, staging services.StagingStore) {
	stop := make(chan struct{})
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(janitorInterval)
				defer ticker.Stop()

				for {
					select {
					case <-stop:
						return
					case <-ticker.C:
						removed := limiter.Cleanup()
						expired := 0
						if s, ok := staging.(sweeper); ok {
							expired = s.Sweep()
						}
						if removed > 0 || expired > 0 {
							log.WithField("rate_limit_buckets", removed).
								WithField("expired_imports", expired).
								Debug("Janitor pass")
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stop)
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}
