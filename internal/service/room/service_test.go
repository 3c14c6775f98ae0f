package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytparty/server/internal/metrics"
	connInmemory "github.com/ytparty/server/internal/repository/connection/inmemory"
	roomInmemory "github.com/ytparty/server/internal/repository/room/inmemory"
	"github.com/ytparty/server/pkg/party"
	"github.com/ytparty/server/pkg/wsconn"
)

type stubFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, videoId string) (party.VideoMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return party.VideoMetadata{}, f.err
	}

	return party.VideoMetadata{Id: videoId, Title: "T", Author: "A", Thumbnail: "u"}, nil
}

func (f *stubFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func newTestService(t *testing.T) (*service, *clock.Mock, *stubFetcher) {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	fetcher := &stubFetcher{}
	s := NewService(
		roomInmemory.NewRepo(slog.Default()),
		connInmemory.NewRepo(slog.Default()),
		fetcher,
		metrics.New(),
		clk,
		slog.Default(),
	)

	return s, clk, fetcher
}

func joinConn(t *testing.T, s *service, roomId string) *wsconn.Conn {
	t.Helper()

	conn := wsconn.New(nil, 16)
	require.NoError(t, s.JoinRoom(context.Background(), &JoinRoomParams{RoomId: roomId, Conn: conn}))

	return conn
}

func nextMessage(t *testing.T, conn *wsconn.Conn) party.Message {
	t.Helper()

	select {
	case data := <-conn.Out():
		var msg party.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	default:
		t.Fatal("expected a pending message")
		return party.Message{}
	}
}

func TestGetRoom(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.GetRoom(ctx, "never-created")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	resp, err := s.CreateRoom(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RoomId)

	r, err := s.GetRoom(ctx, resp.RoomId)
	require.NoError(t, err)
	assert.Equal(t, resp.RoomId, r.Id)

	err = s.JoinRoom(ctx, &JoinRoomParams{RoomId: "never-created", Conn: wsconn.New(nil, 1)})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCleanIfNecessary(t *testing.T) {
	s, clk, _ := newTestService(t)
	ctx := context.Background()

	first, err := s.CreateRoom(ctx)
	require.NoError(t, err)

	swept, err := s.CleanIfNecessary(ctx)
	require.NoError(t, err)
	assert.False(t, swept, "no sweep right after start")

	clk.Add(23 * time.Hour)
	second, err := s.CreateRoom(ctx)
	require.NoError(t, err)

	swept, err = s.CleanIfNecessary(ctx)
	require.NoError(t, err)
	assert.False(t, swept)

	clk.Add(time.Hour)
	swept, err = s.CleanIfNecessary(ctx)
	require.NoError(t, err)
	assert.True(t, swept)

	_, err = s.GetRoom(ctx, first.RoomId)
	assert.ErrorIs(t, err, ErrRoomNotFound, "room created 24h ago must be removed")
	_, err = s.GetRoom(ctx, second.RoomId)
	assert.NoError(t, err, "room created 1h ago must survive")

	swept, err = s.CleanIfNecessary(ctx)
	require.NoError(t, err)
	assert.False(t, swept, "second call in the same window does nothing")

	clk.Add(23*time.Hour + 59*time.Minute)
	swept, err = s.CleanIfNecessary(ctx)
	require.NoError(t, err)
	assert.False(t, swept)

	clk.Add(time.Minute)
	swept, err = s.CleanIfNecessary(ctx)
	require.NoError(t, err)
	assert.True(t, swept)

	_, err = s.GetRoom(ctx, second.RoomId)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func lockCount(s *service) int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	return len(s.locks)
}

func TestSweptRoomLeavesNoLocks(t *testing.T) {
	s, clk, _ := newTestService(t)
	ctx := context.Background()

	resp, err := s.CreateRoom(ctx)
	require.NoError(t, err)
	sender := joinConn(t, s, resp.RoomId)

	videoId := "dQw4w9WgXcQ"
	state := &party.State{VideoId: &videoId, PlayerState: party.PlayerStatePaused}
	require.NoError(t, s.ReportState(ctx, &ReportStateParams{RoomId: resp.RoomId, Sender: sender, State: state}))
	assert.Equal(t, 1, lockCount(s))

	clk.Add(RoomRetention)
	swept, err := s.CleanIfNecessary(ctx)
	require.NoError(t, err)
	require.True(t, swept)
	assert.Zero(t, lockCount(s))

	err = s.ReportState(ctx, &ReportStateParams{RoomId: resp.RoomId, Sender: sender, State: state})
	assert.ErrorIs(t, err, ErrRoomNotFound)
	err = s.RelayCommand(ctx, &RelayCommandParams{RoomId: resp.RoomId, Sender: sender, Command: json.RawMessage(`{"name":"play"}`)})
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = s.RemoveVideo(ctx, &RemoveVideoParams{RoomId: resp.RoomId, Index: 0})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	assert.Zero(t, lockCount(s), "requests for a swept room must not recreate its lock")
}

func TestReportAndSyncState(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := s.CreateRoom(ctx)
	require.NoError(t, err)
	master := joinConn(t, s, resp.RoomId)
	member := joinConn(t, s, resp.RoomId)

	state, err := s.SyncState(ctx, resp.RoomId)
	require.NoError(t, err)
	assert.Nil(t, state)

	videoId := "dQw4w9WgXcQ"
	reported := &party.State{
		VideoId:       &videoId,
		VideoMetadata: &party.StateVideoMetadata{Title: "T", Author: "A"},
		PlayerState:   party.PlayerStatePlaying,
		CurrentTime:   42,
		Duration:      212,
	}
	require.NoError(t, s.ReportState(ctx, &ReportStateParams{RoomId: resp.RoomId, Sender: master, State: reported}))

	msg := nextMessage(t, member)
	assert.Equal(t, party.EventStateReport, msg.Type)
	var pushed party.State
	require.NoError(t, json.Unmarshal(msg.Payload, &pushed))
	assert.Equal(t, reported, &pushed)
	assert.Len(t, master.Out(), 0, "the sender must not get its own report")

	state, err = s.SyncState(ctx, resp.RoomId)
	require.NoError(t, err)
	assert.Equal(t, reported, state)

	err = s.ReportState(ctx, &ReportStateParams{RoomId: resp.RoomId, Sender: master, State: nil})
	assert.ErrorIs(t, err, ErrInvalidState)
	err = s.ReportState(ctx, &ReportStateParams{RoomId: resp.RoomId, Sender: master, State: &party.State{PlayerState: "STOPPED"}})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Len(t, member.Out(), 0)

	_, err = s.SyncState(ctx, "gone")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRelayCommand(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := s.CreateRoom(ctx)
	require.NoError(t, err)
	sender := joinConn(t, s, resp.RoomId)
	other := joinConn(t, s, resp.RoomId)

	command := json.RawMessage(`{"name":"seek","arg":{"anything":[1,2]}}`)
	require.NoError(t, s.RelayCommand(ctx, &RelayCommandParams{RoomId: resp.RoomId, Sender: sender, Command: command}))

	msg := nextMessage(t, other)
	assert.Equal(t, party.EventCommand, msg.Type)
	assert.JSONEq(t, string(command), string(msg.Payload))
	assert.Len(t, sender.Out(), 0)
}

func TestAddVideo(t *testing.T) {
	s, _, fetcher := newTestService(t)
	ctx := context.Background()

	resp, err := s.CreateRoom(ctx)
	require.NoError(t, err)
	requester := joinConn(t, s, resp.RoomId)
	other := joinConn(t, s, resp.RoomId)

	added, err := s.AddVideo(ctx, &AddVideoParams{RoomId: resp.RoomId, VideoId: "dQw4w9WgXcQ"})
	require.NoError(t, err)
	want := []party.VideoMetadata{{Id: "dQw4w9WgXcQ", Title: "T", Author: "A", Thumbnail: "u"}}
	assert.Equal(t, want, added.Queue)

	for _, conn := range []*wsconn.Conn{requester, other} {
		msg := nextMessage(t, conn)
		assert.Equal(t, party.EventQueueModified, msg.Type)
		var queue []party.VideoMetadata
		require.NoError(t, json.Unmarshal(msg.Payload, &queue))
		assert.Equal(t, want, queue)
		assert.Len(t, conn.Out(), 0, "exactly one queue:modified per socket")
	}

	queue, err := s.SyncQueue(ctx, resp.RoomId)
	require.NoError(t, err)
	assert.Equal(t, want, queue)

	_, err = s.AddVideo(ctx, &AddVideoParams{RoomId: resp.RoomId, VideoId: "bad"})
	assert.ErrorIs(t, err, ErrInvalidVideoId)
	assert.Equal(t, 1, fetcher.Calls(), "invalid ids must not reach the fetcher")

	fetcher.err = errors.New("upstream down")
	_, err = s.AddVideo(ctx, &AddVideoParams{RoomId: resp.RoomId, VideoId: "9bZkp7q19f0"})
	assert.ErrorIs(t, err, ErrFetchFailed)
	queue, err = s.SyncQueue(ctx, resp.RoomId)
	require.NoError(t, err)
	assert.Equal(t, want, queue, "failed fetch must leave the queue unchanged")
	assert.Len(t, other.Out(), 0)
}

func TestRemoveAndMoveVideo(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := s.CreateRoom(ctx)
	require.NoError(t, err)

	ids := []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc"}
	for _, id := range ids {
		_, err := s.AddVideo(ctx, &AddVideoParams{RoomId: resp.RoomId, VideoId: id})
		require.NoError(t, err)
	}

	conn := joinConn(t, s, resp.RoomId)

	queue, err := s.MoveVideo(ctx, &MoveVideoParams{RoomId: resp.RoomId, Index: 0, NewPosition: 2})
	require.NoError(t, err)
	require.Len(t, queue, 3)
	assert.Equal(t, []string{"bbbbbbbbbbb", "ccccccccccc", "aaaaaaaaaaa"}, []string{queue[0].Id, queue[1].Id, queue[2].Id})
	assert.Equal(t, party.EventQueueModified, nextMessage(t, conn).Type)

	_, err = s.MoveVideo(ctx, &MoveVideoParams{RoomId: resp.RoomId, Index: 0, NewPosition: 3})
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)

	queue, err = s.RemoveVideo(ctx, &RemoveVideoParams{RoomId: resp.RoomId, Index: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"bbbbbbbbbbb", "aaaaaaaaaaa"}, []string{queue[0].Id, queue[1].Id})
	assert.Equal(t, party.EventQueueModified, nextMessage(t, conn).Type)

	_, err = s.RemoveVideo(ctx, &RemoveVideoParams{RoomId: resp.RoomId, Index: 5})
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	assert.Len(t, conn.Out(), 0, "failed mutations broadcast nothing")

	_, err = s.RemoveVideo(ctx, &RemoveVideoParams{RoomId: "gone", Index: 0})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestConcurrentAddVideo(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := s.CreateRoom(ctx)
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.AddVideo(ctx, &AddVideoParams{RoomId: resp.RoomId, VideoId: fmt.Sprintf("video%06d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	queue, err := s.SyncQueue(ctx, resp.RoomId)
	require.NoError(t, err)
	assert.Len(t, queue, n, "no enqueue may be lost")
}

func TestDownloadVideoMetadata(t *testing.T) {
	s, _, fetcher := newTestService(t)

	metadata, err := s.DownloadVideoMetadata(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "T", metadata.Title)

	for _, videoId := range []string{"short", "dQw4w9WgXc!", "dQw4w9WgXcQ1", ""} {
		_, err = s.DownloadVideoMetadata(context.Background(), videoId)
		assert.ErrorIs(t, err, ErrInvalidVideoId, videoId)
	}
	assert.Equal(t, 1, fetcher.Calls())
}
