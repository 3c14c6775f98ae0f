package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ytparty/server/internal/repository/room"
	"github.com/ytparty/server/pkg/party"
)

// SetQueue replaces the whole queue list.
func (r repo) SetQueue(ctx context.Context, params *room.SetQueueParams) error {
	entries := make([]any, 0, len(params.Queue))
	for _, video := range params.Queue {
		data, err := json.Marshal(video)
		if err != nil {
			return fmt.Errorf("failed to marshal video: %w", err)
		}

		entries = append(entries, data)
	}

	queueKey := r.getQueueKey(params.RoomId)
	if err := r.updateRoom(ctx, params.RoomId, func(pipe redis.Pipeliner) {
		pipe.Del(ctx, queueKey)
		if len(entries) > 0 {
			pipe.RPush(ctx, queueKey, entries...)
		}
	}); err != nil {
		return fmt.Errorf("failed to set queue: %w", err)
	}

	return nil
}

func (r repo) GetQueue(ctx context.Context, roomId string) ([]party.VideoMetadata, error) {
	if _, err := r.GetRoom(ctx, roomId); err != nil {
		return nil, err
	}

	entries, err := r.rc.LRange(ctx, r.getQueueKey(roomId), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue: %w", err)
	}

	queue := make([]party.VideoMetadata, 0, len(entries))
	for _, entry := range entries {
		var video party.VideoMetadata
		if err := json.Unmarshal([]byte(entry), &video); err != nil {
			return nil, fmt.Errorf("failed to unmarshal video: %w", err)
		}

		queue = append(queue, video)
	}

	return queue, nil
}
