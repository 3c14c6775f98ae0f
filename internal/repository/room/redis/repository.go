package redis

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// repo keeps rooms in redis. Keys carry no expiry: rooms only go away through
// RemoveRoomsCreatedBefore.
type repo struct {
	rc     *redis.Client
	logger *slog.Logger
}

func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		logger: logger,
	}
}
