package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ytparty/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	store = configVar[string]{
		envKey:       "SERVER_STORE",
		flagKey:      "store",
		defaultValue: app.StoreMemory,
		usage:        "Room store: memory or redis",
	}
	sendBuffer = configVar[int]{
		envKey:       "SERVER_SEND_BUFFER",
		flagKey:      "send-buffer",
		defaultValue: 64,
		usage:        "Outbound messages buffered per socket before dropping",
	}
	metadataCacheSize = configVar[int]{
		envKey:       "SERVER_METADATA_CACHE_SIZE",
		flagKey:      "metadata-cache-size",
		defaultValue: 1024,
		usage:        "Video metadata cache entries",
	}
	metadataCacheTTL = configVar[time.Duration]{
		envKey:       "SERVER_METADATA_CACHE_TTL",
		flagKey:      "metadata-cache-ttl",
		defaultValue: time.Hour,
		usage:        "Video metadata cache entry lifetime",
	}
	metadataTimeout = configVar[time.Duration]{
		envKey:       "SERVER_METADATA_TIMEOUT",
		flagKey:      "metadata-timeout",
		defaultValue: 0,
		usage:        "Video metadata fetch timeout, 0 disables it",
	}
	metadataRate = configVar[float64]{
		envKey:       "SERVER_METADATA_RATE",
		flagKey:      "metadata-rate",
		defaultValue: 2,
		usage:        "Metadata requests per second allowed per socket",
	}
	metadataBurst = configVar[int]{
		envKey:       "SERVER_METADATA_BURST",
		flagKey:      "metadata-burst",
		defaultValue: 5,
		usage:        "Metadata request burst allowed per socket",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
)

func bind[T any](v configVar[T], define func(name string, value T, usage string) *T) {
	define(v.flagKey, v.defaultValue, v.usage)
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	// a missing .env is fine, the environment and flags still apply
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	bind(port, pflag.Int)
	bind(host, pflag.String)
	bind(logLevel, pflag.String)
	bind(store, pflag.String)
	bind(sendBuffer, pflag.Int)
	bind(metadataCacheSize, pflag.Int)
	bind(metadataCacheTTL, pflag.Duration)
	bind(metadataTimeout, pflag.Duration)
	bind(metadataRate, pflag.Float64)
	bind(metadataBurst, pflag.Int)
	bind(redisPort, pflag.Int)
	bind(redisHost, pflag.String)
	bind(redisPassword, pflag.String)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	config := &app.AppConfig{
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		Store:             viper.GetString(store.flagKey),
		SendBuffer:        viper.GetInt(sendBuffer.flagKey),
		MetadataCacheSize: viper.GetInt(metadataCacheSize.flagKey),
		MetadataCacheTTL:  viper.GetDuration(metadataCacheTTL.flagKey),
		MetadataTimeout:   viper.GetDuration(metadataTimeout.flagKey),
		MetadataRate:      viper.GetFloat64(metadataRate.flagKey),
		MetadataBurst:     viper.GetInt(metadataBurst.flagKey),
		RedisPort:         viper.GetInt(redisPort.flagKey),
		RedisHost:         viper.GetString(redisHost.flagKey),
		RedisPassword:     viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
