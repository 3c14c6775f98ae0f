package client

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var ErrUnknownComponent = errors.New("unknown component")

// ReadinessTracker joins the startup of several subsystems into a single
// ready signal. The signal fires once, when the last added component becomes
// ready, and stays set afterwards.
type ReadinessTracker struct {
	mu         sync.Mutex
	components map[string]bool
	ready      bool
	done       chan struct{}
	onReady    listeners[struct{}]
	logger     *slog.Logger
}

func NewReadinessTracker(logger *slog.Logger) *ReadinessTracker {
	return &ReadinessTracker{
		components: make(map[string]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// AddComponent registers a pending component. Adding a known name again is
// tolerated and keeps its current readiness.
func (t *ReadinessTracker) AddComponent(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.components[name]; ok {
		t.logger.Warn("component added twice", "component", name)
		return
	}

	if t.ready {
		t.logger.Warn("component added after the tracker became ready", "component", name)
	}

	t.components[name] = false
}

// ComponentReady marks name as ready. It fails for names never added and is
// a no-op for components that are already ready.
func (t *ReadinessTracker) ComponentReady(name string) error {
	t.mu.Lock()

	ready, ok := t.components[name]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}

	if ready {
		t.mu.Unlock()
		return nil
	}

	t.components[name] = true

	if t.ready || !t.allReady() {
		t.mu.Unlock()
		return nil
	}

	t.ready = true
	close(t.done)
	t.mu.Unlock()

	t.logger.Debug("all components ready")
	t.onReady.emit(struct{}{})

	return nil
}

func (t *ReadinessTracker) allReady() bool {
	for _, ready := range t.components {
		if !ready {
			return false
		}
	}

	return true
}

func (t *ReadinessTracker) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.ready
}

// Components returns a copy of the component flags.
func (t *ReadinessTracker) Components() map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	components := make(map[string]bool, len(t.components))
	for name, ready := range t.components {
		components[name] = ready
	}

	return components
}

// OnReady runs fn when the tracker becomes ready, or right away if it already
// is. The returned func unsubscribes a callback that has not run yet.
func (t *ReadinessTracker) OnReady(fn func()) func() {
	t.mu.Lock()
	if t.ready {
		t.mu.Unlock()
		fn()
		return func() {}
	}

	unsubscribe := t.onReady.add(func(struct{}) { fn() })
	t.mu.Unlock()

	return unsubscribe
}

// Done is closed once the tracker is ready.
func (t *ReadinessTracker) Done() <-chan struct{} {
	return t.done
}
