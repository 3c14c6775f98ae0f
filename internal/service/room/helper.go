package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ytparty/server/internal/repository/room"
	"github.com/ytparty/server/pkg/party"
	"github.com/ytparty/server/pkg/wsconn"
)

// lockRoom serializes mutations of one room together with their fan-out. It
// fails with ErrRoomNotFound once the room is gone, and then forgets the
// mutex it created so swept rooms do not leave entries behind.
func (s *service) lockRoom(ctx context.Context, roomId string) (func(), error) {
	s.locksMu.Lock()
	mu, ok := s.locks[roomId]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[roomId] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	if err := s.ensureRoom(ctx, roomId); err != nil {
		mu.Unlock()

		if errors.Is(err, ErrRoomNotFound) {
			s.locksMu.Lock()
			if s.locks[roomId] == mu {
				delete(s.locks, roomId)
			}
			s.locksMu.Unlock()
		}

		return nil, err
	}

	return mu.Unlock, nil
}

func (s *service) dropLocks(roomIds []string) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	for _, roomId := range roomIds {
		delete(s.locks, roomId)
	}
}

func (s *service) mapRepoErr(err error) error {
	if errors.Is(err, room.ErrRoomNotFound) {
		return ErrRoomNotFound
	}

	return err
}

func (s *service) ensureRoom(ctx context.Context, roomId string) error {
	if _, err := s.roomRepo.GetRoom(ctx, roomId); err != nil {
		return s.mapRepoErr(err)
	}

	return nil
}

func newMessage(messageType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(&party.Message{
		Type:    messageType,
		Payload: data,
	})
}

// broadcast sends the message to every connection of the room except skip,
// which may be nil. Slow connections lose the message.
func (s *service) broadcast(ctx context.Context, roomId string, skip *wsconn.Conn, messageType string, payload any) error {
	data, err := newMessage(messageType, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", messageType, err)
	}

	for _, conn := range s.connRepo.GetConns(roomId) {
		if conn == skip {
			continue
		}

		if err := conn.Send(data); err != nil {
			if errors.Is(err, wsconn.ErrSendBufferFull) {
				s.metrics.DroppedMessages.Inc()
			}
			s.logger.WarnContext(ctx, "message dropped", "conn_id", conn.Id(), "type", messageType, "error", err)
		}
	}

	return nil
}
