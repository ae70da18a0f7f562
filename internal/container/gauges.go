package container

import (
	"context"
	"math"
	"time"

	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/repositories"
	"client-feedback-admin/internal/security"
	"client-feedback-admin/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const countTimeout = 2 * time.Second

// sizer is implemented by staging stores that can report how many imports they hold
type sizer interface {
	Len() int
}

// RegisterGauges exposes point-in-time sizes of the login limiter, the staging store and the client table
func RegisterGauges(
	registry prometheus.Registerer,
	log *logger.Logger,
	limiter *security.RateLimiter,
	staging services.StagingStore,
	clients repositories.ClientRepository,
) {
	factory := promauto.With(registry)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "auth_login_rate_limit_clients",
		Help: "Client addresses currently tracked by the login rate limiter",
	}, func() float64 {
		return float64(limiter.ActiveClients())
	})

	if s, ok := staging.(sizer); ok {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "client_import_staged_sessions",
			Help: "Import sessions held in process memory, including expired ones awaiting the janitor",
		}, func() float64 {
			return float64(s.Len())
		})
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "clients_stored",
		Help: "Client records in the database",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), countTimeout)
		defer cancel()

		count, err := clients.Count(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to count clients")
			return math.NaN()
		}
		return float64(count)
	})
}
