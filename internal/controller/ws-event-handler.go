package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ytparty/server/internal/service/room"
	"github.com/ytparty/server/pkg/party"
	"github.com/ytparty/server/pkg/wsconn"
	"github.com/ytparty/server/pkg/wsrouter"
)

type EmptyInput struct{}

func (c controller) handleStateSync(ctx context.Context, _ *wsconn.Conn, _ EmptyInput) (any, error) {
	state, err := c.roomService.SyncState(ctx, c.getRoomIdFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to sync state: %w", err)
	}

	return party.StateResponse{Success: true, State: state}, nil
}

func (c controller) handleStateReport(ctx context.Context, conn *wsconn.Conn, state *party.State) (any, error) {
	if err := c.roomService.ReportState(ctx, &room.ReportStateParams{
		RoomId: c.getRoomIdFromCtx(ctx),
		Sender: conn,
		State:  state,
	}); err != nil {
		return nil, fmt.Errorf("failed to report state: %w", err)
	}

	return nil, nil
}

func (c controller) handleCommand(ctx context.Context, conn *wsconn.Conn, command json.RawMessage) (any, error) {
	if err := c.roomService.RelayCommand(ctx, &room.RelayCommandParams{
		RoomId:  c.getRoomIdFromCtx(ctx),
		Sender:  conn,
		Command: command,
	}); err != nil {
		return nil, fmt.Errorf("failed to relay command: %w", err)
	}

	return nil, nil
}

func (c controller) handleQueueSync(ctx context.Context, _ *wsconn.Conn, _ EmptyInput) (any, error) {
	queue, err := c.roomService.SyncQueue(ctx, c.getRoomIdFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to sync queue: %w", err)
	}

	return party.DataResponse[[]party.VideoMetadata]{Success: true, Data: queue}, nil
}

func (c controller) handleQueueAddVideo(ctx context.Context, _ *wsconn.Conn, videoId string) (any, error) {
	if _, err := c.roomService.AddVideo(ctx, &room.AddVideoParams{
		RoomId:  c.getRoomIdFromCtx(ctx),
		VideoId: videoId,
	}); err != nil {
		return nil, fmt.Errorf("failed to add video: %w", err)
	}

	return party.Ok(), nil
}

func (c controller) handleQueueRemoveVideo(ctx context.Context, _ *wsconn.Conn, index *int) (any, error) {
	if index == nil {
		return nil, fmt.Errorf("%w: index is required", wsrouter.ErrInvalidPayload)
	}

	if _, err := c.roomService.RemoveVideo(ctx, &room.RemoveVideoParams{
		RoomId: c.getRoomIdFromCtx(ctx),
		Index:  *index,
	}); err != nil {
		return nil, fmt.Errorf("failed to remove video: %w", err)
	}

	return party.Ok(), nil
}

func (c controller) handleQueueMoveVideo(ctx context.Context, _ *wsconn.Conn, input party.MoveVideoPayload) (any, error) {
	if _, err := c.roomService.MoveVideo(ctx, &room.MoveVideoParams{
		RoomId:      c.getRoomIdFromCtx(ctx),
		Index:       input.Index,
		NewPosition: input.NewPosition,
	}); err != nil {
		return nil, fmt.Errorf("failed to move video: %w", err)
	}

	return party.Ok(), nil
}

func (c controller) handleDownloadVideoMetadata(ctx context.Context, _ *wsconn.Conn, videoId string) (any, error) {
	metadata, err := c.roomService.DownloadVideoMetadata(ctx, videoId)
	if err != nil {
		return nil, fmt.Errorf("failed to download video metadata: %w", err)
	}

	return party.DataResponse[party.VideoMetadata]{Success: true, Data: metadata}, nil
}
