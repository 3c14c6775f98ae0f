package room

import (
	"time"

	"github.com/ytparty/server/pkg/party"
)

type CreateRoomParams struct {
	RoomId    string
	CreatedAt time.Time
}

type SetStateParams struct {
	RoomId string
	State  *party.State
}

type SetQueueParams struct {
	RoomId string
	Queue  []party.VideoMetadata
}
