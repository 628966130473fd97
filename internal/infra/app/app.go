package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/core/port"
	"github.com/bookwise/booking-platform/internal/infra/config"
	"github.com/bookwise/booking-platform/internal/infra/database"
	kafkainfra "github.com/bookwise/booking-platform/internal/infra/kafka"
	"github.com/bookwise/booking-platform/internal/infra/logger"
	redisinfra "github.com/bookwise/booking-platform/internal/infra/redis"
	"github.com/bookwise/booking-platform/internal/infra/security"
	"github.com/bookwise/booking-platform/internal/infra/telemetry"
	postgresrepo "github.com/bookwise/booking-platform/internal/repository/postgres"
	redisrepo "github.com/bookwise/booking-platform/internal/repository/redis"
	"github.com/bookwise/booking-platform/internal/transport/http/middleware"
	"github.com/bookwise/booking-platform/internal/transport/http/routes"
	"github.com/bookwise/booking-platform/internal/usecase"
)

// Application owns every long-lived resource of the process: the HTTP engine,
// the connection pools, the broker connection manager, and the event sink.
type Application struct {
	cfg     *config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	pool    *pgxpool.Pool
	redis   *redisinfra.Client
	broker  port.ConnectionManager
	sink    *kafkainfra.EventSink
	tracing *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var tracing *telemetry.TracerProvider
	if cfg.Telemetry.Enabled {
		tracing, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	secret := cfg.JWT.Secret
	if secret == "" && cfg.App.Env != "production" {
		log.Warn("jwt.secret unset, using insecure development secret")
		secret = "dev-insecure-secret"
	}

	tokenService, err := security.NewTokenService(secret, cfg.JWT.Issuer, cfg.JWT.TokenTTL)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token service: %w", err)
	}

	hasher := security.NewPasswordHasher()
	passwordPolicy := security.NewPasswordPolicy()

	repos := postgresrepo.NewRepositories(pool)

	pipelineMetrics, err := telemetry.NewPipelineMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init pipeline metrics: %w", err)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	var broker port.ConnectionManager
	if len(cfg.Kafka.Brokers) > 0 {
		broker = kafkainfra.NewConnectionManager(cfg.Kafka, log)
		log.Info("kafka connection manager initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	} else {
		log.Info("kafka brokers not configured, using stub connection manager")
		broker = kafkainfra.NewStubConnectionManager(log)
	}

	publisher := kafkainfra.NewDomainEventPublisher(broker, log).WithMetrics(pipelineMetrics)

	sink := kafkainfra.NewEventSink(log).WithMetrics(pipelineMetrics)
	sink.Register(domain.TopicUserLogin, kafkainfra.NewLoginAuditHandler(log))

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "booking:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	authService := usecase.NewAuthService(repos.Users, hasher, passwordPolicy, tokenService, tokenService, publisher, log)
	availabilityService := usecase.NewAvailabilityService(publisher, log)
	appointmentService := usecase.NewAppointmentService(repos.Users, publisher, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Verifier:    tokenService,
		Metrics:     httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Availability: availabilityService,
			Appointments: appointmentService,
		},
	})

	return &Application{
		cfg:     cfg,
		engine:  engine,
		logger:  log,
		pool:    pool,
		redis:   redisClient,
		broker:  broker,
		sink:    sink,
		tracing: tracing,
	}, nil
}

// Run serves HTTP and consumes the broker subscription until ctx is cancelled,
// then tears everything down in reverse order of construction.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.broker != nil {
			if err := a.broker.Close(); err != nil {
				a.logger.Warn("close broker connections", zap.Error(err))
			}
		}
	}()
	defer func() {
		if a.tracing != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.tracing.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("shutdown tracer provider", zap.Error(err))
			}
		}
	}()

	sinkErrCh := make(chan error, 1)
	topics := a.cfg.Kafka.ConsumerTopics
	if len(topics) == 0 {
		topics = a.sink.Topics()
	}

	subscription, err := a.broker.Subscribe(ctx, topics, a.cfg.Kafka.ConsumerGroup)
	if err != nil {
		a.logger.Warn("broker subscription unavailable, inbound events disabled", zap.Error(err))
	} else {
		defer func() {
			_ = subscription.Close()
		}()
		go func() {
			if err := a.sink.Run(ctx, subscription); err != nil && ctx.Err() == nil {
				sinkErrCh <- fmt.Errorf("run event sink: %w", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting booking API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	case err := <-sinkErrCh:
		return err
	}
}
