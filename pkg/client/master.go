package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ytparty/server/pkg/party"
)

const (
	ComponentPlayer = "player"
	ComponentSocket = "socket"
	ComponentState  = "state"

	ReportInterval = time.Second
)

// RemoteRoom is the part of Socket a Master talks to.
type RemoteRoom interface {
	SyncState(ctx context.Context) (*party.State, error)
	ReportState(state *party.State) error
	OnCommand(fn func(party.Command)) func()
}

// Master drives a local player from the room's state and keeps the room
// informed about what the player does. Nothing is applied to the player until
// the player, the socket and the initial state are all ready.
type Master struct {
	player     Player
	readiness  *ReadinessTracker
	state      *StateManager
	reconciler *Reconciler
	clock      clock.Clock
	logger     *slog.Logger

	mu           sync.Mutex
	room         RemoteRoom
	unsubscribes []func()
	ticker       *clock.Ticker
	stop         chan struct{}
	wg           sync.WaitGroup
}

func NewMaster(player Player, clk clock.Clock, logger *slog.Logger) *Master {
	m := &Master{
		player:     player,
		readiness:  NewReadinessTracker(logger),
		reconciler: NewReconciler(player, logger),
		clock:      clk,
		logger:     logger,
		stop:       make(chan struct{}),
	}
	m.state = NewStateManager(m.defineState)

	m.readiness.AddComponent(ComponentPlayer)
	m.readiness.AddComponent(ComponentSocket)
	m.readiness.AddComponent(ComponentState)
	m.readiness.OnReady(m.onReady)

	return m
}

func (m *Master) Readiness() *ReadinessTracker {
	return m.readiness
}

func (m *Master) State() *StateManager {
	return m.state
}

// defineState reads a snapshot off the player. VideoId and VideoMetadata stay
// nil while nothing is loaded. It is nil only for a state code the player
// widget does not define.
func (m *Master) defineState() *party.State {
	playerState, err := party.PlayerStateFromCode(m.player.State())
	if err != nil {
		m.logger.Debug("cannot define state", "error", err)
		return nil
	}

	state := &party.State{
		PlayerState: playerState,
		CurrentTime: int(m.player.CurrentTime()),
		Duration:    int(m.player.Duration()),
	}

	if data := m.player.VideoData(); data.VideoId != "" {
		videoId := data.VideoId
		state.VideoId = &videoId
		state.VideoMetadata = &party.StateVideoMetadata{
			Title:  data.Title,
			Author: data.Author,
		}
	}

	return state
}

// HandlePlayerReady is called once the player widget finished loading.
func (m *Master) HandlePlayerReady() {
	if err := m.readiness.ComponentReady(ComponentPlayer); err != nil {
		m.logger.Error("failed to mark player ready", "error", err)
	}
}

// Attach binds the master to a connected room and loads its state.
func (m *Master) Attach(ctx context.Context, room RemoteRoom) error {
	m.mu.Lock()
	m.room = room
	m.unsubscribes = append(m.unsubscribes, room.OnCommand(m.handleCommand))
	m.mu.Unlock()

	if err := m.readiness.ComponentReady(ComponentSocket); err != nil {
		return err
	}

	state, err := room.SyncState(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync state: %w", err)
	}
	m.state.SetState(state)

	return m.readiness.ComponentReady(ComponentState)
}

func (m *Master) onReady() {
	m.logger.Info("master ready")

	m.mu.Lock()
	m.unsubscribes = append(m.unsubscribes, m.state.OnChange(m.report))
	m.mu.Unlock()

	m.reconciler.Reconcile(m.state.State())

	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.stop:
		return
	default:
	}

	m.ticker = m.clock.Ticker(ReportInterval)
	m.wg.Add(1)
	go m.reportLoop(m.ticker)
}

func (m *Master) reportLoop(ticker *clock.Ticker) {
	defer m.wg.Done()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if state, err := party.PlayerStateFromCode(m.player.State()); err == nil && state == party.PlayerStatePlaying {
				m.state.UpdateState()
			}
		}
	}
}

func (m *Master) report(state *party.State) {
	if state == nil {
		return
	}

	m.mu.Lock()
	room := m.room
	m.mu.Unlock()

	if err := room.ReportState(state); err != nil {
		m.logger.Warn("failed to report state", "error", err)
	}
}

// HandlePlayerStateChange takes the player widget's raw state code.
func (m *Master) HandlePlayerStateChange(code int) {
	state, err := party.PlayerStateFromCode(code)
	if err != nil {
		m.logger.Warn("ignoring player state change", "error", err)
		return
	}

	if !m.readiness.IsReady() {
		return
	}

	m.state.UpdateState()
	m.reconciler.HandleStateChange(state)
}

func (m *Master) handleCommand(command party.Command) {
	if !m.readiness.IsReady() {
		m.logger.Warn("dropping command before ready", "command", command.Name)
		return
	}

	switch command.Name {
	case party.CommandPlay:
		m.player.Play()
	case party.CommandPause:
		m.player.Pause()
	case party.CommandSeek:
		var seconds float64
		if err := json.Unmarshal(command.Arg, &seconds); err != nil {
			m.logger.Warn("invalid seek argument", "arg", string(command.Arg), "error", err)
			return
		}
		m.player.SeekTo(seconds)
	default:
		m.logger.Warn("unknown command", "command", command.Name)
	}
}

// Close stops reporting and detaches from the room.
func (m *Master) Close() {
	m.mu.Lock()
	select {
	case <-m.stop:
		m.mu.Unlock()
		return
	default:
	}
	close(m.stop)
	if m.ticker != nil {
		m.ticker.Stop()
	}
	unsubscribes := m.unsubscribes
	m.unsubscribes = nil
	m.mu.Unlock()

	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}

	m.wg.Wait()
}
