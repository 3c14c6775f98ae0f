package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/ytparty/server/internal/metrics"
	roomRepo "github.com/ytparty/server/internal/repository/room"
	"github.com/ytparty/server/internal/service/room"
	"github.com/ytparty/server/pkg/party"
	"github.com/ytparty/server/pkg/wsrouter"
	"golang.org/x/time/rate"
)

type iRoomService interface {
	CreateRoom(context.Context) (room.CreateRoomResponse, error)
	GetRoom(context.Context, string) (roomRepo.Room, error)
	CleanIfNecessary(context.Context) (bool, error)
	JoinRoom(context.Context, *room.JoinRoomParams) error
	LeaveRoom(context.Context, *room.LeaveRoomParams) error
	SyncState(context.Context, string) (*party.State, error)
	ReportState(context.Context, *room.ReportStateParams) error
	RelayCommand(context.Context, *room.RelayCommandParams) error
	SyncQueue(context.Context, string) ([]party.VideoMetadata, error)
	AddVideo(context.Context, *room.AddVideoParams) (room.AddVideoResponse, error)
	RemoveVideo(context.Context, *room.RemoveVideoParams) ([]party.VideoMetadata, error)
	MoveVideo(context.Context, *room.MoveVideoParams) ([]party.VideoMetadata, error)
	DownloadVideoMetadata(context.Context, string) (party.VideoMetadata, error)
}

type Config struct {
	SendBuffer int
	// Per socket limit for requests that hit the metadata fetcher.
	MetadataRate  rate.Limit
	MetadataBurst int
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	wsmux       *wsrouter.WSRouter
	metrics     *metrics.Metrics
	logger      *slog.Logger
	cfg         Config
}

func NewController(roomService iRoomService, m *metrics.Metrics, logger *slog.Logger, cfg *Config) *controller {
	c := &controller{
		roomService: roomService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		metrics: m,
		logger:  logger,
		cfg:     *cfg,
	}
	c.wsmux = c.getWSRouter()

	return c
}
