package room

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ytparty/server/internal/repository/room"
	"github.com/ytparty/server/pkg/party"
	"github.com/ytparty/server/pkg/wsconn"
)

// SyncState returns the room's state, nil if nothing was ever reported.
func (s *service) SyncState(ctx context.Context, roomId string) (*party.State, error) {
	state, err := s.roomRepo.GetState(ctx, roomId)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	return state, nil
}

type ReportStateParams struct {
	RoomId string
	Sender *wsconn.Conn
	State  *party.State
}

// ReportState overwrites the room's state and forwards it to everyone but the
// sender.
func (s *service) ReportState(ctx context.Context, params *ReportStateParams) error {
	if params.State == nil {
		return fmt.Errorf("%w: state is null", ErrInvalidState)
	}

	if validationErrors, ok := s.validate.Validate(params.State); !ok {
		return fmt.Errorf("%w: %v", ErrInvalidState, validationErrors)
	}

	unlock, err := s.lockRoom(ctx, params.RoomId)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.roomRepo.SetState(ctx, &room.SetStateParams{
		RoomId: params.RoomId,
		State:  params.State,
	}); err != nil {
		return s.mapRepoErr(err)
	}

	return s.broadcast(ctx, params.RoomId, params.Sender, party.EventStateReport, params.State)
}

type RelayCommandParams struct {
	RoomId  string
	Sender  *wsconn.Conn
	Command json.RawMessage
}

// RelayCommand forwards the command payload untouched to everyone but the
// sender.
func (s *service) RelayCommand(ctx context.Context, params *RelayCommandParams) error {
	unlock, err := s.lockRoom(ctx, params.RoomId)
	if err != nil {
		return err
	}
	defer unlock()

	command := params.Command
	if len(command) == 0 {
		command = json.RawMessage("null")
	}

	return s.broadcast(ctx, params.RoomId, params.Sender, party.EventCommand, command)
}
