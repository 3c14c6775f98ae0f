package room

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ytparty/server/internal/repository/room"
	"github.com/ytparty/server/pkg/wsconn"
)

type CreateRoomResponse struct {
	RoomId string
}

func (s *service) CreateRoom(ctx context.Context) (CreateRoomResponse, error) {
	roomId := uuid.NewString()
	if err := s.roomRepo.CreateRoom(ctx, &room.CreateRoomParams{
		RoomId:    roomId,
		CreatedAt: s.clock.Now(),
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	s.metrics.RoomsCreated.Inc()
	s.logger.InfoContext(ctx, "room created", "room_id", roomId)

	return CreateRoomResponse{RoomId: roomId}, nil
}

// GetRoom returns ErrRoomNotFound for ids that were never created or have
// been swept.
func (s *service) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	r, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		return room.Room{}, s.mapRepoErr(err)
	}

	return r, nil
}

// CleanIfNecessary removes rooms older than RoomRetention, at most once per
// RoomRetention. It reports whether a sweep ran.
func (s *service) CleanIfNecessary(ctx context.Context) (bool, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	now := s.clock.Now()
	if now.Sub(s.lastSweep) < RoomRetention {
		return false, nil
	}

	removed, err := s.roomRepo.RemoveRoomsCreatedBefore(ctx, now.Add(-RoomRetention))
	if err != nil {
		return false, fmt.Errorf("failed to remove expired rooms: %w", err)
	}

	s.lastSweep = now
	s.dropLocks(removed)
	s.metrics.RoomsSwept.Add(float64(len(removed)))
	s.logger.InfoContext(ctx, "expired rooms removed", "count", len(removed))

	return true, nil
}

type JoinRoomParams struct {
	RoomId string
	Conn   *wsconn.Conn
}

// JoinRoom adds the connection to the room's broadcast group.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) error {
	if err := s.ensureRoom(ctx, params.RoomId); err != nil {
		return err
	}

	if err := s.connRepo.Add(params.RoomId, params.Conn); err != nil {
		return fmt.Errorf("failed to add conn: %w", err)
	}

	s.metrics.ActiveConns.Inc()

	return nil
}

type LeaveRoomParams struct {
	RoomId string
	Conn   *wsconn.Conn
}

func (s *service) LeaveRoom(_ context.Context, params *LeaveRoomParams) error {
	if err := s.connRepo.Remove(params.RoomId, params.Conn); err != nil {
		return fmt.Errorf("failed to remove conn: %w", err)
	}

	s.metrics.ActiveConns.Dec()

	return nil
}
