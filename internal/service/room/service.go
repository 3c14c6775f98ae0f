package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ytparty/server/internal/metrics"
	"github.com/ytparty/server/internal/repository/room"
	"github.com/ytparty/server/pkg/party"
	"github.com/ytparty/server/pkg/validator"
	"github.com/ytparty/server/pkg/wsconn"
)

// RoomRetention is how long a room lives and how often the sweep may run.
const RoomRetention = 24 * time.Hour

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidVideoId   = errors.New("invalid video id")
	ErrFetchFailed      = errors.New("failed to fetch video metadata")
	ErrIndexOutOfBounds = errors.New("index is out of bounds")
)

type iRoomRepo interface {
	CreateRoom(context.Context, *room.CreateRoomParams) error
	GetRoom(context.Context, string) (room.Room, error)
	SetState(context.Context, *room.SetStateParams) error
	GetState(context.Context, string) (*party.State, error)
	SetQueue(context.Context, *room.SetQueueParams) error
	GetQueue(context.Context, string) ([]party.VideoMetadata, error)
	RemoveRoomsCreatedBefore(context.Context, time.Time) ([]string, error)
}

type iConnRepo interface {
	Add(roomId string, conn *wsconn.Conn) error
	Remove(roomId string, conn *wsconn.Conn) error
	GetConns(roomId string) []*wsconn.Conn
}

type iVideoFetcher interface {
	Fetch(ctx context.Context, videoId string) (party.VideoMetadata, error)
}

type service struct {
	roomRepo iRoomRepo
	connRepo iConnRepo
	fetcher  iVideoFetcher
	validate *validator.Validator
	metrics  *metrics.Metrics
	clock    clock.Clock
	logger   *slog.Logger

	sweepMu   sync.Mutex
	lastSweep time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewService(
	roomRepo iRoomRepo,
	connRepo iConnRepo,
	fetcher iVideoFetcher,
	m *metrics.Metrics,
	clk clock.Clock,
	logger *slog.Logger,
) *service {
	return &service{
		roomRepo:  roomRepo,
		connRepo:  connRepo,
		fetcher:   fetcher,
		validate:  validator.NewValidator(),
		metrics:   m,
		clock:     clk,
		logger:    logger,
		lastSweep: clk.Now(),
		locks:     make(map[string]*sync.Mutex),
	}
}
