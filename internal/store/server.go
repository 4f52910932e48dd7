package store

import (
	"context"
	"maps"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/thushan/llamadeck/internal/core/domain"
	"github.com/thushan/llamadeck/internal/core/ports"
	"github.com/thushan/llamadeck/internal/logger"
	"github.com/thushan/llamadeck/pkg/eventbus"
)

const flightKey = "props"

type EventKind string

const (
	EventLoading EventKind = "loading"
	EventLoaded  EventKind = "loaded"
	EventError   EventKind = "error"
	EventCleared EventKind = "cleared"
)

// Event is published on every state transition
type Event struct {
	Kind  EventKind
	State domain.FetchState
	// RoleChanged is set on EventLoaded when the detected role differs from the previous one
	RoleChanged bool
}

// ServerStore holds the server properties fetched from /props. Concurrent
// Fetch calls share a single request; a failed fetch keeps the previous props.
// Create it with NewServerStore and release it with Close.
type ServerStore struct {
	fetcher ports.PropsService
	logger  *logger.StyledLogger
	events  *eventbus.EventBus[Event]
	group   singleflight.Group

	mu      sync.RWMutex
	props   *domain.ServerProps
	err     string
	role    domain.Role
	loading bool
}

func NewServerStore(fetcher ports.PropsService, logger *logger.StyledLogger) *ServerStore {
	return &ServerStore{
		fetcher: fetcher,
		logger:  logger,
		events:  eventbus.New[Event](),
	}
}

// Close stops event delivery, subscriber channels are closed
func (s *ServerStore) Close() {
	s.events.Shutdown()
}

// Subscribe streams state transitions until ctx ends or the cleanup is called
func (s *ServerStore) Subscribe(ctx context.Context) (<-chan Event, func()) {
	return s.events.Subscribe(ctx)
}

// Fetch loads the props, joining the outstanding request if there is one.
// A started request always runs to completion, cancelling ctx only stops
// this caller from waiting for it. Every caller sharing a request gets the
// same error.
func (s *ServerStore) Fetch(ctx context.Context) error {
	ch := s.group.DoChan(flightKey, func() (any, error) {
		return nil, s.doFetch(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ServerStore) doFetch(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	loadingState := s.snapshotLocked()
	s.mu.Unlock()
	s.events.Publish(Event{Kind: EventLoading, State: loadingState})

	props, err := s.fetcher.Fetch(ctx)
	if err == nil && props == nil {
		err = &domain.FormatError{Reason: "server returned no properties"}
	}

	s.mu.Lock()
	if err != nil {
		s.err = Classify(err)
		s.loading = false
		state := s.snapshotLocked()
		s.mu.Unlock()

		s.logger.Error("Error fetching server properties", "error", err, "reason", state.Error)
		s.events.Publish(Event{Kind: EventError, State: state})
		return err
	}

	s.props = props
	s.err = ""
	newRole := domain.ParseRole(props.Role)
	roleChanged := s.role != newRole
	s.role = newRole
	s.loading = false
	state := s.snapshotLocked()
	s.mu.Unlock()

	if roleChanged {
		s.logger.InfoRole("Server running in", newRole.Label(), "mode")
	}
	s.events.Publish(Event{Kind: EventLoaded, State: state, RoleChanged: roleChanged})
	return nil
}

// Clear resets the store to its initial state. An outstanding request is not
// cancelled and still writes its result when it completes, but the next Fetch
// starts a new request instead of joining it.
func (s *ServerStore) Clear() {
	s.mu.Lock()
	s.props = nil
	s.err = ""
	s.loading = false
	s.role = domain.RoleUnknown
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.group.Forget(flightKey)
	s.events.Publish(Event{Kind: EventCleared, State: state})
}

func (s *ServerStore) snapshotLocked() domain.FetchState {
	return domain.FetchState{
		Props:   s.props,
		Error:   s.err,
		Role:    s.role,
		Loading: s.loading,
	}
}

func (s *ServerStore) Snapshot() domain.FetchState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Props is the last successfully fetched payload, it must not be modified
func (s *ServerStore) Props() *domain.ServerProps {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.props
}

func (s *ServerStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error is the classified message of the last failed fetch, empty otherwise
func (s *ServerStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *ServerStore) Role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *ServerStore) IsRouterMode() bool {
	return s.Role() == domain.RoleRouter
}

func (s *ServerStore) IsModelMode() bool {
	return s.Role() == domain.RoleModel
}

// DefaultParams returns default_generation_settings.params or nil
func (s *ServerStore) DefaultParams() *domain.SamplingParams {
	props := s.Props()
	if props == nil || props.DefaultGenerationSettings == nil {
		return nil
	}
	return props.DefaultGenerationSettings.Params
}

// ContextSize returns default_generation_settings.n_ctx, ok is false when unknown
func (s *ServerStore) ContextSize() (int, bool) {
	props := s.Props()
	if props == nil || props.DefaultGenerationSettings == nil || props.DefaultGenerationSettings.NCtx == nil {
		return 0, false
	}
	return *props.DefaultGenerationSettings.NCtx, true
}

// WebUISettings returns a copy of webui_settings, nil when absent
func (s *ServerStore) WebUISettings() map[string]any {
	props := s.Props()
	if props == nil || props.WebUISettings == nil {
		return nil
	}
	return maps.Clone(props.WebUISettings)
}
