package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/ytparty/server/internal/repository/room"
	"github.com/ytparty/server/pkg/party"
	"github.com/ytparty/server/pkg/videoqueue"
)

func (s *service) SyncQueue(ctx context.Context, roomId string) ([]party.VideoMetadata, error) {
	queue, err := s.roomRepo.GetQueue(ctx, roomId)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	return queue, nil
}

func (s *service) fetchVideo(ctx context.Context, videoId string) (party.VideoMetadata, error) {
	if !s.validate.Var(videoId, "ytid") {
		return party.VideoMetadata{}, ErrInvalidVideoId
	}

	metadata, err := s.fetcher.Fetch(ctx, videoId)
	if err != nil {
		s.metrics.MetadataFetches.WithLabelValues("error").Inc()
		s.logger.WarnContext(ctx, "failed to fetch video metadata", "video_id", videoId, "error", err)
		return party.VideoMetadata{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	s.metrics.MetadataFetches.WithLabelValues("ok").Inc()

	return metadata, nil
}

// updateQueue applies fn to the room's queue, stores the result and sends the
// new snapshot to the whole room, all under the room lock.
func (s *service) updateQueue(ctx context.Context, roomId string, fn func(q *videoqueue.Queue[party.VideoMetadata]) error) ([]party.VideoMetadata, error) {
	unlock, err := s.lockRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}
	defer unlock()

	items, err := s.roomRepo.GetQueue(ctx, roomId)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	q := videoqueue.New(items...)
	if err := fn(q); err != nil {
		if errors.Is(err, videoqueue.ErrOutOfBounds) {
			return nil, ErrIndexOutOfBounds
		}

		return nil, err
	}

	snapshot := q.ToArray()
	if err := s.roomRepo.SetQueue(ctx, &room.SetQueueParams{
		RoomId: roomId,
		Queue:  snapshot,
	}); err != nil {
		return nil, s.mapRepoErr(err)
	}

	if err := s.broadcast(ctx, roomId, nil, party.EventQueueModified, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

type AddVideoParams struct {
	RoomId  string
	VideoId string
}

type AddVideoResponse struct {
	AddedVideo party.VideoMetadata
	Queue      []party.VideoMetadata
}

// AddVideo validates the id, fetches its metadata without holding the room
// lock and then enqueues it.
func (s *service) AddVideo(ctx context.Context, params *AddVideoParams) (AddVideoResponse, error) {
	metadata, err := s.fetchVideo(ctx, params.VideoId)
	if err != nil {
		return AddVideoResponse{}, err
	}

	queue, err := s.updateQueue(ctx, params.RoomId, func(q *videoqueue.Queue[party.VideoMetadata]) error {
		q.Enqueue(metadata)
		return nil
	})
	if err != nil {
		return AddVideoResponse{}, err
	}

	s.logger.InfoContext(ctx, "video added", "room_id", params.RoomId, "video_id", metadata.Id)

	return AddVideoResponse{
		AddedVideo: metadata,
		Queue:      queue,
	}, nil
}

type RemoveVideoParams struct {
	RoomId string
	Index  int
}

func (s *service) RemoveVideo(ctx context.Context, params *RemoveVideoParams) ([]party.VideoMetadata, error) {
	return s.updateQueue(ctx, params.RoomId, func(q *videoqueue.Queue[party.VideoMetadata]) error {
		return q.RemoveItemAt(params.Index)
	})
}

type MoveVideoParams struct {
	RoomId      string
	Index       int
	NewPosition int
}

func (s *service) MoveVideo(ctx context.Context, params *MoveVideoParams) ([]party.VideoMetadata, error) {
	return s.updateQueue(ctx, params.RoomId, func(q *videoqueue.Queue[party.VideoMetadata]) error {
		return q.MoveItemAt(params.Index, params.NewPosition)
	})
}

// DownloadVideoMetadata looks a video up without touching any room.
func (s *service) DownloadVideoMetadata(ctx context.Context, videoId string) (party.VideoMetadata, error) {
	return s.fetchVideo(ctx, videoId)
}
