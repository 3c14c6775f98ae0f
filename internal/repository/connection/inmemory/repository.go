package inmemory

import (
	"log/slog"
	"sync"

	"github.com/ytparty/server/internal/repository/connection"
	"github.com/ytparty/server/pkg/wsconn"
)

// repo holds the broadcast groups: the live connections of each room.
type repo struct {
	groups map[string]map[*wsconn.Conn]struct{}
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		groups: make(map[string]map[*wsconn.Conn]struct{}),
		logger: logger,
	}
}

func (r *repo) Add(roomId string, conn *wsconn.Conn) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[roomId]
	if !ok {
		group = make(map[*wsconn.Conn]struct{})
		r.groups[roomId] = group
	}

	if _, ok := group[conn]; ok {
		r.logger.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	group[conn] = struct{}{}

	r.logger.Debug(funcName, "room_id", roomId, "conn_id", conn.Id(), "group_size", len(group))
	return nil
}

func (r *repo) Remove(roomId string, conn *wsconn.Conn) error {
	funcName := "connection.inmemory.Remove"
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[roomId]
	if !ok {
		r.logger.Info(funcName, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	if _, ok := group[conn]; !ok {
		r.logger.Info(funcName, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	delete(group, conn)
	if len(group) == 0 {
		delete(r.groups, roomId)
	}

	r.logger.Debug(funcName, "room_id", roomId, "conn_id", conn.Id())
	return nil
}

// GetConns returns a snapshot of the room's connections.
func (r *repo) GetConns(roomId string) []*wsconn.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group := r.groups[roomId]
	conns := make([]*wsconn.Conn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}

	return conns
}
