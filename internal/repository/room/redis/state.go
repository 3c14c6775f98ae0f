package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ytparty/server/internal/repository/room"
	"github.com/ytparty/server/pkg/party"
)

func (r repo) SetState(ctx context.Context, params *room.SetStateParams) error {
	data, err := json.Marshal(params.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	stateKey := r.getStateKey(params.RoomId)
	if err := r.updateRoom(ctx, params.RoomId, func(pipe redis.Pipeliner) {
		if params.State == nil {
			pipe.Del(ctx, stateKey)
			return
		}

		pipe.Set(ctx, stateKey, data, 0)
	}); err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}

	return nil
}

func (r repo) GetState(ctx context.Context, roomId string) (*party.State, error) {
	if _, err := r.GetRoom(ctx, roomId); err != nil {
		return nil, err
	}

	data, err := r.rc.Get(ctx, r.getStateKey(roomId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	var state party.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &state, nil
}
