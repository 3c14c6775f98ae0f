package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const roomsKey = "rooms"

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) getStateKey(roomId string) string {
	return "room:" + roomId + ":state"
}

func (r repo) getQueueKey(roomId string) string {
	return "room:" + roomId + ":queue"
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}
