package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ytparty/server/internal/controller"
	"github.com/ytparty/server/internal/metrics"
	"github.com/ytparty/server/internal/repository/connection/inmemory"
	roomRepo "github.com/ytparty/server/internal/repository/room"
	roomInmemory "github.com/ytparty/server/internal/repository/room/inmemory"
	roomRedis "github.com/ytparty/server/internal/repository/room/redis"
	"github.com/ytparty/server/internal/service/room"
	"github.com/ytparty/server/pkg/ctxlogger"
	"github.com/ytparty/server/pkg/redisclient"
	"github.com/ytparty/server/pkg/validator"
	"github.com/ytparty/server/pkg/ytvideodata"
	"golang.org/x/time/rate"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type AppConfig struct {
	Host              string        `json:"host" validate:"required"`
	Port              int           `json:"port" validate:"min=1,max=65535"`
	LogLevel          string        `json:"log_level" validate:"required"`
	Store             string        `json:"store" validate:"oneof=memory redis"`
	RedisPort         int           `json:"redis_port" validate:"min=1,max=65535"`
	RedisHost         string        `json:"redis_host"`
	RedisPassword     string        `json:"-"`
	SendBuffer        int           `json:"send_buffer" validate:"min=1"`
	MetadataCacheSize int           `json:"metadata_cache_size" validate:"min=1"`
	MetadataCacheTTL  time.Duration `json:"metadata_cache_ttl" validate:"min=1"`
	MetadataTimeout   time.Duration `json:"metadata_timeout" validate:"min=0"`
	MetadataRate      float64       `json:"metadata_rate" validate:"gt=0"`
	MetadataBurst     int           `json:"metadata_burst" validate:"min=1"`
}

func (cfg *AppConfig) Validate() error {
	if validationErrors, ok := validator.NewValidator().Validate(cfg); !ok {
		return fmt.Errorf("invalid config: %v", validationErrors)
	}

	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, err
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

// newRoomRepo returns the configured room store and a func releasing it.
func newRoomRepo(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (roomRepo.Repo, func(), error) {
	if cfg.Store != StoreRedis {
		return roomInmemory.NewRepo(logger), func() {}, nil
	}

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	return roomRedis.NewRepo(rc, logger), func() { rc.Close() }, nil
}

// newHandler wires stores, service and controller into the http handler.
func newHandler(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (http.Handler, func(), error) {
	repo, release, err := newRoomRepo(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	fetcher := ytvideodata.NewCachingFetcher(
		ytvideodata.New(ytvideodata.WithTimeout(cfg.MetadataTimeout)),
		cfg.MetadataCacheSize,
		cfg.MetadataCacheTTL,
	)

	m := metrics.New()
	roomService := room.NewService(repo, inmemory.NewRepo(logger), fetcher, m, clock.New(), logger)
	c := controller.NewController(roomService, m, logger, &controller.Config{
		SendBuffer:    cfg.SendBuffer,
		MetadataRate:  rate.Limit(cfg.MetadataRate),
		MetadataBurst: cfg.MetadataBurst,
	})

	return c.GetMux(), release, nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	handler, release, err := newHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: handler}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr, "store", cfg.Store)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
