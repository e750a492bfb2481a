package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"relay/internal/audit"
	"relay/internal/company"
	"relay/internal/config"
	"relay/internal/constants"
	"relay/internal/descriptions"
	"relay/internal/dispatch"
	"relay/internal/logger"
	"relay/internal/processor"
	"relay/pkg/bootstrap"
	"relay/pkg/circuitbreaker"
	"relay/pkg/health"
	"relay/pkg/logging"
	"relay/pkg/metrics"
	"relay/pkg/models"
	"relay/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	redis          *redis.Client
	mongoClient    *mongo.Client
	service        processor.Service
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.RegisterNotificationMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterCircuitBreakerMetrics()

	dict, err := descriptions.Load(a.Config.Descriptions.Path)
	if err != nil {
		return fmt.Errorf("failed to load description dictionary: %w", err)
	}
	a.Logger.Infow("Description dictionary loaded",
		"path", a.Config.Descriptions.Path,
		"entries", dict.Len(),
	)

	if err := a.initRedis(ctx); err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}

	if err := a.initMongoDB(ctx); err != nil {
		return fmt.Errorf("failed to initialize MongoDB: %w", err)
	}

	a.initService(dict)

	if err := a.InitBroker(constants.ServiceName); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	a.initHTTPServer()
	return nil
}

func (a *App) initRedis(ctx context.Context) error {
	rdb, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return err
	}
	a.redis = rdb
	return nil
}

func (a *App) initMongoDB(ctx context.Context) error {
	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		return err
	}
	a.mongoClient = mongoClient
	return nil
}

func (a *App) initService(dict *descriptions.Dictionary) {
	var companies company.Lookup = company.NewAPIClient(a.Config.CompanyAPI)
	var dispatchBreaker *circuitbreaker.Config
	if a.Config.CircuitBreaker.Enabled {
		companies = company.NewCircuitBreakerLookup(companies,
			circuitbreaker.FromSettings("company-api", a.Config.CircuitBreaker))
		cfg := circuitbreaker.FromSettings("dispatch-api", a.Config.CircuitBreaker)
		dispatchBreaker = &cfg
	}
	if a.redis != nil {
		ttl := time.Duration(a.Config.Database.Redis.TTLSeconds) * time.Second
		companies = company.NewCachedLookup(companies, a.redis, ttl, a.Logger.Named("company-cache"))
	}

	db := a.mongoClient.Database(a.Config.Database.MongoDB.Database)

	a.service = processor.NewService(
		companies,
		descriptions.NewResolver(dict, a.Logger.Named("descriptions")),
		audit.NewRepository(db, a.Config.Database.MongoDB.Collection),
		dispatch.NewClient(a.Config.DispatchAPI, dispatchBreaker),
		a.Config.Links,
		a.Logger,
	)
}

func (a *App) initHTTPServer() {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	if a.redis != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redis))
	}
	if a.mongoClient != nil {
		healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	}
	healthRegistry.Register(health.NewFuncChecker("kafka", a.checkKafka))

	mux.HandleFunc("/health", healthRegistry.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (a *App) checkKafka(ctx context.Context) error {
	var lastErr error
	for _, addr := range a.Config.Broker.Kafka.Brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	return fmt.Errorf("no kafka broker reachable: %w", lastErr)
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return a.Consumer.Consume(logging.WithServiceName(gCtx, constants.ServiceName), a.handleMessage)
	})

	return g.Wait()
}

func (a *App) handleMessage(ctx context.Context, env models.Envelope) error {
	outcome, err := a.service.Process(ctx, env)
	if err != nil {
		return err
	}
	a.Logger.DebugwCtx(ctx, "Message handled", "outcome", string(outcome))
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.InfowCtx(logging.WithServiceName(ctx, constants.ServiceName), "Shutting down notification relay")

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redis, a.mongoClient)...)

		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
