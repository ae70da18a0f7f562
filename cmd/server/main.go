package main

import (
	"context"

	"client-feedback-admin/internal/config"
	"client-feedback-admin/internal/container"
	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/security"
	"client-feedback-admin/internal/server"

	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		container.Module,
		fx.Invoke(func(
			lc fx.Lifecycle,
			cfg *config.Config,
			log *logger.Logger,
			srv *server.Server,
		) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					for _, warning := range security.ValidateAuthConfig(cfg.Auth) {
						log.Warn(warning)
					}

					log.WithField("port", cfg.Server.Port).
						WithField("staging_backend", cfg.Import.StagingBackend).
						Info("Starting client feedback admin")

					// Start server in background
					go func() {
						if err := srv.Start(context.Background()); err != nil {
							log.WithError(err).Error("Server error")
						}
					}()

					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.Info("Shutting down client feedback admin")
					return srv.Stop()
				},
			})
		}),
	)

	app.Run()
}
