package transport

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewHealthServer returns a gRPC server exposing grpc.health.v1.Health.
// Status starts NOT_SERVING until WatchDatabase reports a successful ping.
func NewHealthServer() (*grpc.Server, *health.Server) {
	server := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	return server, healthServer
}

// WatchDatabase pings the database every interval and mirrors the result in
// the health server until ctx is done.
func WatchDatabase(ctx context.Context, db Pinger, healthServer *health.Server, interval time.Duration, logger log.FieldLogger) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err := db.PingContext(pingCtx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			logger.WithError(err).Warn("database ping failed")
		}
		healthServer.SetServingStatus("", status)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			healthServer.Shutdown()
			return
		case <-ticker.C:
			check()
		}
	}
}
