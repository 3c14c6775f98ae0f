package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ytparty/server/internal/repository/room"
)

func (r repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) error {
	roomKey := r.getRoomKey(params.RoomId)
	createdAt := params.CreatedAt.UnixMilli()

	ok, err := r.rc.HSetNX(ctx, roomKey, "created_at", createdAt).Result()
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	if !ok {
		return room.ErrRoomAlreadyExists
	}

	if err := r.rc.ZAdd(ctx, roomsKey, redis.Z{
		Score:  float64(createdAt),
		Member: params.RoomId,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index room: %w", err)
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	createdAt, err := r.rc.HGet(ctx, r.getRoomKey(roomId), "created_at").Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return room.Room{}, room.ErrRoomNotFound
		}

		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	return room.Room{
		Id:        roomId,
		CreatedAt: time.UnixMilli(createdAt).UTC(),
	}, nil
}

func (r repo) RemoveRoomsCreatedBefore(ctx context.Context, t time.Time) ([]string, error) {
	roomIds, err := r.rc.ZRangeByScore(ctx, roomsKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(t.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list expired rooms: %w", err)
	}

	if len(roomIds) == 0 {
		return nil, nil
	}

	pipe := r.rc.TxPipeline()
	members := make([]any, 0, len(roomIds))
	for _, roomId := range roomIds {
		pipe.Del(ctx, r.getRoomKey(roomId), r.getStateKey(roomId), r.getQueueKey(roomId))
		members = append(members, roomId)
	}
	pipe.ZRem(ctx, roomsKey, members...)

	if err := r.executePipe(ctx, pipe); err != nil {
		return nil, fmt.Errorf("failed to remove rooms: %w", err)
	}

	r.logger.DebugContext(ctx, "rooms removed", "count", len(roomIds))
	return roomIds, nil
}

// updateRoom runs fn in a transaction that aborts if the room disappears
// concurrently.
func (r repo) updateRoom(ctx context.Context, roomId string, fn func(pipe redis.Pipeliner)) error {
	roomKey := r.getRoomKey(roomId)

	return r.rc.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, roomKey).Result()
		if err != nil {
			return err
		}

		if exists == 0 {
			return room.ErrRoomNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			fn(pipe)
			return nil
		})

		return err
	}, roomKey)
}
