package inmemory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ytparty/server/internal/repository/room"
	"github.com/ytparty/server/pkg/party"
)

type record struct {
	createdAt time.Time
	state     *party.State
	queue     []party.VideoMetadata
}

// repo is the process-wide room table. It lives as long as the process and
// is never persisted.
type repo struct {
	rooms  map[string]*record
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		rooms:  make(map[string]*record),
		logger: logger,
	}
}

func (r *repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[params.RoomId]; ok {
		return room.ErrRoomAlreadyExists
	}

	r.rooms[params.RoomId] = &record{
		createdAt: params.CreatedAt,
		queue:     []party.VideoMetadata{},
	}

	r.logger.DebugContext(ctx, "room created", "room_id", params.RoomId)
	return nil
}

func (r *repo) GetRoom(_ context.Context, roomId string) (room.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.rooms[roomId]
	if !ok {
		return room.Room{}, room.ErrRoomNotFound
	}

	return room.Room{Id: roomId, CreatedAt: rec.createdAt}, nil
}

func (r *repo) SetState(_ context.Context, params *room.SetStateParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	rec.state = params.State.Clone()
	return nil
}

func (r *repo) GetState(_ context.Context, roomId string) (*party.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.rooms[roomId]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return rec.state.Clone(), nil
}

func (r *repo) SetQueue(_ context.Context, params *room.SetQueueParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	rec.queue = append(make([]party.VideoMetadata, 0, len(params.Queue)), params.Queue...)
	return nil
}

func (r *repo) GetQueue(_ context.Context, roomId string) ([]party.VideoMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.rooms[roomId]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return append(make([]party.VideoMetadata, 0, len(rec.queue)), rec.queue...), nil
}

// RemoveRoomsCreatedBefore deletes every room created at or before t and
// returns their ids.
func (r *repo) RemoveRoomsCreatedBefore(ctx context.Context, t time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, rec := range r.rooms {
		if !rec.createdAt.After(t) {
			delete(r.rooms, id)
			removed = append(removed, id)
		}
	}

	r.logger.DebugContext(ctx, "rooms removed", "count", len(removed))
	return removed, nil
}
