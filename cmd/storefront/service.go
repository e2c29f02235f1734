package main

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	appservice "storefront/pkg/storefront/application/service"
	"storefront/pkg/storefront/domain/model"
	domainservice "storefront/pkg/storefront/domain/service"
	"storefront/pkg/storefront/infrastructure/event"
	"storefront/pkg/storefront/infrastructure/mysql"
	"storefront/pkg/storefront/infrastructure/observability"
	"storefront/pkg/storefront/infrastructure/transport"
)

const (
	shutdownTimeout     = 10 * time.Second
	healthCheckInterval = 10 * time.Second
)

func serviceCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "service",
		Usage: "run the storefront HTTP and gRPC servers",
		Action: func(c *cli.Context) error {
			cnf, err := parseEnv()
			if err != nil {
				return err
			}
			return runService(c.Context, cnf, logger)
		},
	}
}

func runService(ctx context.Context, cnf *config, logger *log.Logger) error {
	level, err := log.ParseLevel(cnf.LogLevel)
	if err != nil {
		return errors.Wrap(err, "parse log level")
	}
	logger.SetLevel(level)

	policy, err := model.ParseFulfillmentPolicy(cnf.FulfillmentPolicy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mysql.Open(ctx, mysql.Config{DSN: cnf.DBDSN, MaxConnections: cnf.DBMaxConnections})
	if err != nil {
		return err
	}
	defer db.Close()

	tracer, shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint: cnf.OtelEndpoint,
		Insecure: cnf.OtelInsecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.WithError(err).Error("failed to shutdown tracing")
		}
	}()

	var dispatcher domainservice.EventDispatcher = event.NewLogDispatcher(logger)
	if len(cnf.KafkaBrokers) > 0 {
		kafkaDispatcher := event.NewKafkaDispatcher(event.NewKafkaWriter(cnf.KafkaBrokers, cnf.KafkaTopic), logger)
		defer func() {
			if err := kafkaDispatcher.Close(); err != nil {
				logger.WithError(err).Error("failed to close kafka writer")
			}
		}()
		dispatcher = kafkaDispatcher
	}

	products := mysql.NewProductRepository(db)
	orders := mysql.NewOrderRepository(db)
	catalog := domainservice.NewCatalogService(mysql.NewMerchantRepository(db), products)
	reconciler := domainservice.NewReconciler(policy, logger)
	placement := domainservice.NewPlacementService(
		mysql.NewUnitOfWork(db, logger),
		reconciler,
		domainservice.NewOrderNumber,
		dispatcher,
		logger,
	)
	checkout := appservice.NewCheckoutService(catalog, placement, orders, tracer, logger)

	httpServer := &http.Server{
		Addr:              cnf.HTTPAddress,
		Handler:           transport.Router(checkout, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcServer, healthServer := transport.NewHealthServer()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.WithFields(log.Fields{"address": cnf.HTTPAddress, "policy": reconciler.Policy().String()}).Info("starting http server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	group.Go(func() error {
		listener, err := net.Listen("tcp", cnf.GRPCAddress)
		if err != nil {
			return errors.Wrap(err, "listen grpc")
		}
		logger.WithField("address", cnf.GRPCAddress).Info("starting grpc health server")
		return errors.Wrap(grpcServer.Serve(listener), "grpc server")
	})
	group.Go(func() error {
		transport.WatchDatabase(groupCtx, db, healthServer, healthCheckInterval, logger)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return errors.Wrap(httpServer.Shutdown(shutdownCtx), "shutdown http server")
	})

	return group.Wait()
}
