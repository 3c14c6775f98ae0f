package client

import (
	"log/slog"
	"sync"

	"github.com/gammazero/deque"
	"github.com/ytparty/server/pkg/party"
)

// Reconciler brings a Player to a target state. Loading a different video is
// asynchronous, so the seek and play/pause that follow it are queued and run
// only once the player reports PLAYING or PAUSED.
type Reconciler struct {
	mu      sync.Mutex
	player  Player
	actions deque.Deque[func()]
	// loading is the video the queued action waits for.
	loading string
	logger  *slog.Logger
}

func NewReconciler(player Player, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		player: player,
		logger: logger,
	}
}

// Reconcile applies a copy of reference to the player. While a load is still
// in flight the newest target replaces the pending one, and the video is only
// loaded again when the target names a different one.
func (r *Reconciler) Reconcile(reference *party.State) {
	ref := reference.Clone()
	if ref == nil {
		return
	}

	apply := func() {
		r.player.SeekTo(float64(ref.CurrentTime))
		if ref.PlayerState == party.PlayerStatePlaying {
			r.player.Play()
		} else {
			r.player.Pause()
		}
	}

	r.mu.Lock()
	pending := r.actions.Len() > 0
	current := r.loading
	if !pending {
		current = r.player.VideoData().VideoId
	}

	if ref.VideoId == nil || *ref.VideoId == current {
		if !pending {
			r.mu.Unlock()
			apply()
			return
		}

		r.logger.Debug("replacing pending reconciliation")
		r.actions.Clear()
		r.actions.PushBack(apply)
		r.mu.Unlock()
		return
	}

	if pending {
		r.logger.Debug("dropping pending reconciliation", "loading", current)
		r.actions.Clear()
	}
	r.actions.PushBack(apply)
	r.loading = *ref.VideoId
	r.mu.Unlock()

	r.player.Load(*ref.VideoId)
}

// HandleStateChange runs the next queued action when the player settles in
// PLAYING or PAUSED.
func (r *Reconciler) HandleStateChange(state party.PlayerState) {
	if state != party.PlayerStatePlaying && state != party.PlayerStatePaused {
		return
	}

	r.mu.Lock()
	if r.actions.Len() == 0 {
		r.mu.Unlock()
		return
	}
	action := r.actions.PopFront()
	r.mu.Unlock()

	action()
}

// Pending reports how many actions wait for the player.
func (r *Reconciler) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.actions.Len()
}
