package room

import (
	"context"
	"time"

	"github.com/ytparty/server/pkg/party"
)

type Room struct {
	Id        string    `json:"room_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Repo is implemented by every room store.
type Repo interface {
	CreateRoom(context.Context, *CreateRoomParams) error
	GetRoom(context.Context, string) (Room, error)
	SetState(context.Context, *SetStateParams) error
	GetState(context.Context, string) (*party.State, error)
	SetQueue(context.Context, *SetQueueParams) error
	GetQueue(context.Context, string) ([]party.VideoMetadata, error)
	RemoveRoomsCreatedBefore(context.Context, time.Time) ([]string, error)
}
