package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpHandler "github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/adapter/inbound/http"
	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/adapter/outbound/soffice"
	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/config"
	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/service"
	"github.com/anthanhphan/go-pptx-normalizer/pkg/idgen"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	cfg     *config.Config
	server  *httpHandler.Server
	service *service.NormalizeServiceImpl
	closeFn func()
}

func New(configPath string) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	// 3. Converter, IDGen & Service
	svc, closeFn, err := NewService(cfg)
	if err != nil {
		return nil, err
	}

	// 4. HTTP Server
	httpServer := httpHandler.NewServer(cfg, svc)

	return &App{
		cfg:     cfg,
		server:  httpServer,
		service: svc,
		closeFn: closeFn,
	}, nil
}

// NewService builds the normalization service and its outbound adapters.
// The returned func releases them.
func NewService(cfg *config.Config) (*service.NormalizeServiceImpl, func(), error) {
	clock, redisClient := newClock(cfg)
	closeRedis := func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warnw("Redis close error", "error", err.Error())
		}
	}

	idGen, err := idgen.New(cfg.IDGen.NodeID, clock)
	if err != nil {
		closeRedis()
		return nil, nil, fmt.Errorf("failed to init snowflake: %w", err)
	}

	converter, err := soffice.New(cfg.Converter)
	if err != nil {
		closeRedis()
		return nil, nil, fmt.Errorf("failed to init converter: %w", err)
	}
	logger.Infow("Converter resolved",
		"binary", converter.Name(),
		"isolate_profile", cfg.Converter.IsolateProfile,
		"slots", cfg.Converter.Slots(),
	)

	svc, err := service.NewNormalizeService(cfg, converter, idGen)
	if err != nil {
		closeRedis()
		return nil, nil, err
	}

	return svc, func() {
		svc.Close()
		closeRedis()
	}, nil
}

// newClock prefers the shared Redis clock so job IDs stay ordered across
// replicas. Without a Redis address the local clock is used.
func newClock(cfg *config.Config) (idgen.Clock, *redis.Client) {
	if cfg.Redis.Addr == "" {
		return idgen.SystemClock{}, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	redisClock := idgen.NewRedisClock(redisClient)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClock.Ping(ctx); err != nil {
		logger.Warnw("Redis unreachable, job IDs fall back to local clock", "addr", cfg.Redis.Addr, "error", err.Error())
	}
	return redisClock, redisClient
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start Workspace Sweeper
	if a.cfg.Sweeper.Enabled {
		go a.service.StartSweeper(ctx, a.cfg.Sweeper.Interval())
	}

	// Start HTTP
	logger.Infow("Normalizer starting", "addr", a.cfg.Server.Addr, "mode", a.service.Status().Mode)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	case err := <-serverErrCh:
		runErr = fmt.Errorf("http server failed: %w", err)
		logger.Errorw("Normalizer server exited unexpectedly", "error", err.Error())
	}

	logger.Info("Shutting down normalizer")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		logger.Errorw("Normalizer shutdown error", "error", err.Error())
		if runErr == nil {
			runErr = err
		}
	}
	a.closeFn()

	return runErr
}
