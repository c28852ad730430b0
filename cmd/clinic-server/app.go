package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/oncology/clinic/internal/config"
	"github.com/oncology/clinic/internal/domain/clinicalrecord"
	"github.com/oncology/clinic/internal/domain/patient"
	"github.com/oncology/clinic/internal/domain/tumortype"
	"github.com/oncology/clinic/internal/platform/cache"
	"github.com/oncology/clinic/internal/platform/db"
	"github.com/oncology/clinic/internal/platform/events"
	"github.com/oncology/clinic/internal/platform/middleware"
)

// app owns the process-wide resources and the HTTP server built on them.
type app struct {
	echo      *echo.Echo
	pool      *pgxpool.Pool
	redis     *redis.Client
	publisher events.Publisher
	logger    zerolog.Logger
	cancel    context.CancelFunc
}

type repositories struct {
	patients        patient.Repository
	tumorTypes      tumortype.Repository
	clinicalRecords clinicalrecord.Repository
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	bgCtx, cancel := context.WithCancel(context.Background())
	a := &app{logger: logger, cancel: cancel}
	e, err := a.build(ctx, bgCtx, cfg)
	if err != nil {
		a.shutdown(context.Background())
		return nil, err
	}
	a.echo = e
	return a, nil
}

// build opens the backing stores and assembles the router. bgCtx bounds the
// background cleanup goroutines.
func (a *app) build(ctx, bgCtx context.Context, cfg *config.Config) (*echo.Echo, error) {
	logger := a.logger

	repos, err := a.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.NeedsRedis() {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		logger.Info().Msg("connected to redis")
	}

	var store cache.Cache
	switch cfg.CacheDriver {
	case config.CacheDriverRedis:
		store = cache.NewRedisStore(a.redis)
	case config.CacheDriverMemory:
		mem := cache.NewMemoryStore()
		mem.StartCleanup(bgCtx, time.Minute)
		store = mem
	default:
		store = cache.Nop{}
	}

	if cfg.EventsDriver == config.EventsDriverRedis {
		a.publisher = events.NewRedisPublisher(a.redis, cfg.EventsStream, cfg.EventsMaxLen, logger)
	} else {
		a.publisher = events.NewMemoryPublisher(logger)
	}

	patientSvc := patient.NewService(repos.patients, store, a.publisher, logger)
	tumorTypeSvc := tumortype.NewService(repos.tumorTypes, store, a.publisher, logger)
	recordSvc := clinicalrecord.NewService(repos.clinicalRecords, patientSvc, tumorTypeSvc, store, a.publisher, logger)

	limiter := middleware.NewIPRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})
	limiter.StartCleanup(bgCtx, time.Minute)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = middleware.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:  []string{echo.HeaderContentType, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, middleware.CacheHeader},
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RateLimit(limiter))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	var checks []db.Check
	if a.pool != nil {
		e.GET("/health/db", db.PoolHandler(a.pool))
		checks = append(checks, db.Check{Name: "database", Ping: a.pool.Ping})
	}
	if a.redis != nil {
		client := a.redis
		checks = append(checks, db.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
	}
	e.GET("/health/ready", db.ReadinessHandler(checks...))

	api := e.Group("")
	apiDocs("http://localhost:"+cfg.Port).RegisterRoutes(api)
	cached := middleware.NewCacher(store, cfg.CacheTTL(), logger)
	patient.NewHandler(patientSvc).RegisterRoutes(api, cached)
	tumortype.NewHandler(tumorTypeSvc).RegisterRoutes(api, cached)
	clinicalrecord.NewHandler(recordSvc).RegisterRoutes(api, cached)

	return e, nil
}

func (a *app) openStorage(ctx context.Context, cfg *config.Config) (repositories, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		a.logger.Warn().Msg("using in-memory storage; data is lost on restart")
		return repositories{
			patients:        patient.NewMemoryRepo(),
			tumorTypes:      tumortype.NewMemoryRepo(),
			clinicalRecords: clinicalrecord.NewMemoryRepo(),
		}, nil
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return repositories{}, fmt.Errorf("connect to database: %w", err)
	}
	a.pool = pool
	a.logger.Info().Msg("connected to database")

	return repositories{
		patients:        patient.NewRepoPG(pool),
		tumorTypes:      tumortype.NewRepoPG(pool),
		clinicalRecords: clinicalrecord.NewRepoPG(pool),
	}, nil
}

// shutdown stops the HTTP server, drains in-flight event publishes, then
// closes Redis and the database pool, in that order.
func (a *app) shutdown(ctx context.Context) error {
	var errs []error
	if a.echo != nil {
		if err := a.echo.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("event publisher: %w", err))
		}
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}
