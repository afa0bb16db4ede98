package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/erpshell/internal/api/client"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/storage"
	"github.com/GriffinCanCode/erpshell/internal/shared/broadcast"
	"github.com/GriffinCanCode/erpshell/internal/shared/types"
	"github.com/GriffinCanCode/erpshell/internal/shared/utils"
)

// Namespace is the storage key owned by the session store.
const Namespace = "erp-auth-storage"

// DefaultRequestTimeout bounds every backend call made by the store.
const DefaultRequestTimeout = 15 * time.Second

// ErrInvalidConflictAction is returned for an unknown ConflictAction.
var ErrInvalidConflictAction = errors.New("invalid conflict action")

// Backend is the subset of the REST client the session store talks to.
type Backend interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.LoginResponse, error)
	Validate(ctx context.Context) (*client.ValidateResponse, error)
	Logout(ctx context.Context) error
}

// Store is the single source of truth for who is logged in. It is the only
// writer of the erp-auth-storage namespace.
type Store struct {
	backend Backend
	record  *storage.Record[types.SessionState]
	hub     *broadcast.Hub[types.SessionState]
	log     *zap.Logger
	metrics *monitoring.Metrics
	timeout time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	state types.SessionState
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithRequestTimeout bounds each backend call. Zero keeps the default.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides time.Now, for token expiry checks in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates the store and restores the last persisted session without
// contacting the backend. Callers should Validate afterwards.
func New(ctx context.Context, backend Backend, store storage.Store, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		record:  storage.NewRecord[types.SessionState](store, Namespace),
		hub:     broadcast.New[types.SessionState](),
		log:     zap.NewNop(),
		timeout: DefaultRequestTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	state, found, err := s.record.Load(ctx)
	if err != nil {
		s.log.Warn("discarding unreadable session snapshot", zap.Error(err))
		s.commit(ctx, types.SessionState{})
		return
	}
	if !found {
		return
	}
	if !state.Valid() {
		s.log.Warn("discarding inconsistent session snapshot")
		s.commit(ctx, types.SessionState{})
		return
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.metrics.SetAuthenticated(state.IsAuthenticated)
	if state.IsAuthenticated {
		s.log.Info("session restored", zap.String("login", state.User.Login))
	}
}

// State returns a copy of the current session.
func (s *Store) State() types.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// IsAuthenticated reports whether a user is logged in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

// User returns a copy of the logged-in user, or nil.
func (s *Store) User() *types.User {
	return s.State().User
}

// Token returns the current bearer token. Store implements
// client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Subscribe delivers the session after every mutation.
func (s *Store) Subscribe() (<-chan types.SessionState, func()) {
	return s.hub.Subscribe()
}

// Login exchanges credentials for a session. Conflicts and rejections come
// back as a LoginResult and mutate nothing; only transport failures and
// unexpected backend errors are returned as errors.
func (s *Store) Login(ctx context.Context, login, password string, action ConflictAction) (LoginResult, error) {
	if !action.Valid() {
		return LoginResult{}, fmt.Errorf("%w: %q", ErrInvalidConflictAction, action)
	}
	if err := utils.ValidateLogin(login); err != nil {
		s.metrics.RecordLogin("failure")
		return failure(err.Error()), nil
	}
	if err := utils.ValidatePassword(password); err != nil {
		s.metrics.RecordLogin("failure")
		return failure(err.Error()), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.backend.Login(callCtx, client.LoginRequest{
		Login:    login,
		Password: password,
		Action:   string(action),
	})
	if err != nil {
		s.metrics.RecordLogin("error")
		return LoginResult{}, fmt.Errorf("login failed: %w", err)
	}

	switch {
	case resp.SessionConflict:
		s.metrics.RecordLogin("conflict")
		s.log.Info("login conflict",
			zap.String("login", login),
			zap.Int("active_sessions", resp.ActiveSessions))
		return conflict(resp.ActiveSessions), nil

	case resp.Success && resp.Token != "" && resp.User != nil:
		user := *resp.User
		s.commit(ctx, types.SessionState{
			User:            &user,
			Token:           resp.Token,
			IsAuthenticated: true,
		})
		s.metrics.RecordLogin("success")
		s.log.Info("login succeeded", zap.String("login", login), zap.String("action", string(action)))
		return success(&user, resp.Token), nil

	case resp.Success:
		s.metrics.RecordLogin("failure")
		s.log.Warn("login response missing token or user", zap.String("login", login))
		return failure("malformed login response"), nil

	default:
		s.metrics.RecordLogin("failure")
		message := resp.Message
		if message == "" {
			message = "invalid credentials"
		}
		return failure(message), nil
	}
}

// Logout notifies the backend on a best-effort basis, then always clears
// the local session.
func (s *Store) Logout(ctx context.Context) {
	if s.Token() != "" {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		if err := s.backend.Logout(callCtx); err != nil {
			s.log.Warn("backend logout failed, clearing local session anyway", zap.Error(err))
		}
		cancel()
	}

	s.commit(ctx, types.SessionState{})
	s.log.Info("logged out")
}

// Validate checks the current token. A missing, expired, rejected or
// unverifiable token clears the session and returns false. A valid token
// returns true and mutates nothing.
func (s *Store) Validate(ctx context.Context) bool {
	token := s.Token()
	if token == "" {
		s.commit(ctx, types.SessionState{})
		s.metrics.RecordValidation("missing")
		return false
	}

	if tokenExpired(token, s.now()) {
		s.log.Info("session token expired")
		s.clearIfToken(ctx, token)
		s.metrics.RecordValidation("expired")
		return false
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.backend.Validate(callCtx)
	if err != nil {
		s.log.Warn("session validation failed", zap.Error(err))
		s.clearIfToken(ctx, token)
		s.metrics.RecordValidation("error")
		return false
	}
	if !resp.Valid {
		s.log.Info("session rejected by backend")
		s.clearIfToken(ctx, token)
		s.metrics.RecordValidation("invalid")
		return false
	}

	s.metrics.RecordValidation("valid")
	return true
}

// Watch validates the session every interval until ctx is done. A lost
// session silently returns the store to the logged-out state.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.IsAuthenticated() {
				continue
			}
			if !s.Validate(ctx) {
				s.log.Info("session lost during background validation")
			}
		}
	}
}

// Close releases subscribers.
func (s *Store) Close() {
	s.hub.Close()
}

// clearIfToken clears the session unless a newer login replaced token while
// the check was in flight.
func (s *Store) clearIfToken(ctx context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Token != token {
		return
	}
	s.commitLocked(ctx, types.SessionState{})
}

func (s *Store) commit(ctx context.Context, next types.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(ctx, next)
}

// commitLocked replaces the state and persists it before releasing the
// lock, so the durable copy never lags the in-memory one.
func (s *Store) commitLocked(ctx context.Context, next types.SessionState) {
	s.state = next

	err := s.record.Save(context.WithoutCancel(ctx), next)
	s.metrics.RecordStorageWrite(Namespace, err)
	if err != nil {
		s.log.Error("failed to persist session", zap.Error(err))
	}

	s.metrics.SetAuthenticated(next.IsAuthenticated)
	s.hub.Publish(next.Clone())
}
