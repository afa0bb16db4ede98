package tabs

import (
	"context"
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/erpshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/storage"
	"github.com/GriffinCanCode/erpshell/internal/shared/broadcast"
	"github.com/GriffinCanCode/erpshell/internal/shared/id"
	"github.com/GriffinCanCode/erpshell/internal/shared/types"
	"github.com/GriffinCanCode/erpshell/internal/shared/utils"
)

// Namespace is the storage key owned by the tabs store.
const Namespace = "erp-tabs-storage"

// MaxHistory caps the back stack. The oldest entries are dropped first.
const MaxHistory = 200

// HomeTab returns the permanent Home tab.
func HomeTab() types.Tab {
	return types.Tab{
		ID:           id.HomeTabID.String(),
		Title:        "Home",
		Icon:         "Home",
		ComponentKey: id.HomeTabID.String(),
		CanClose:     false,
	}
}

// Store owns the navigation stack: open tabs, the active tab, recently
// opened modules and the back history. Every operation leaves the Home tab
// in place, the active id pointing at an open tab and at most one tab per
// component key.
type Store struct {
	record   *storage.Record[types.TabsState]
	hub      *broadcast.Hub[types.TabsState]
	log      *zap.Logger
	metrics  *monitoring.Metrics
	policy   *bluemonday.Policy
	newTabID func(componentKey string) string

	mu    sync.Mutex
	state types.TabsState
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithIDGenerator replaces the tab id scheme.
func WithIDGenerator(fn func(componentKey string) string) Option {
	return func(s *Store) { s.newTabID = fn }
}

// New creates the store and restores the persisted navigation state,
// repairing it if it does not hold the store's invariants.
func New(ctx context.Context, store storage.Store, opts ...Option) *Store {
	s := &Store{
		record: storage.NewRecord[types.TabsState](store, Namespace),
		hub:    broadcast.New[types.TabsState](),
		log:    zap.NewNop(),
		policy: bluemonday.StrictPolicy(),
		newTabID: func(componentKey string) string {
			return id.NewTabID(componentKey).String()
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state = initialState()
	s.restore(ctx)
	return s
}

func initialState() types.TabsState {
	home := HomeTab()
	return types.TabsState{
		Tabs:        []types.Tab{home},
		ActiveTabID: home.ID,
		RecentApps:  []string{},
		History:     []string{home.ID},
	}
}

func (s *Store) restore(ctx context.Context) {
	saved, found, err := s.record.Load(ctx)
	if err != nil {
		s.log.Warn("discarding unreadable tabs snapshot", zap.Error(err))
		return
	}
	if !found {
		return
	}

	repaired, changed := s.repair(saved)
	s.mu.Lock()
	s.state = repaired
	if changed {
		s.log.Warn("repaired inconsistent tabs snapshot")
		s.commitLocked(ctx, "restore")
	}
	s.mu.Unlock()

	s.metrics.RecordTabOperation("restore", len(repaired.Tabs))
}

// State returns a copy of the navigation state.
func (s *Store) State() types.TabsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Active returns the active tab.
func (s *Store) Active() types.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()

	tab, ok := s.state.Active()
	if !ok {
		return HomeTab()
	}
	return cloneTab(tab)
}

// Subscribe delivers the state after every mutation.
func (s *Store) Subscribe() (<-chan types.TabsState, func()) {
	return s.hub.Subscribe()
}

// Close releases subscribers.
func (s *Store) Close() {
	s.hub.Close()
}

// OpenTab focuses the tab already bound to componentKey, or appends a new
// one. Either way the focused id is pushed onto the history. Only a new tab
// updates the recent apps list.
func (s *Store) OpenTab(ctx context.Context, componentKey, title, icon string, params map[string]any) (types.Tab, error) {
	if err := utils.ValidateComponentKey(componentKey); err != nil {
		return types.Tab{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tab := range s.state.Tabs {
		if tab.ComponentKey == componentKey {
			s.focusLocked(tab.ID)
			s.commitLocked(ctx, "open_existing")
			return cloneTab(tab), nil
		}
	}

	tab := types.Tab{
		ID:           s.newTabID(componentKey),
		Title:        s.sanitizeTitle(title, componentKey),
		Icon:         icon,
		ComponentKey: componentKey,
		Params:       cloneParams(params),
		CanClose:     true,
	}
	s.state.Tabs = append(s.state.Tabs, tab)
	s.focusLocked(tab.ID)
	s.state.RecentApps = pushRecent(s.state.RecentApps, componentKey)
	s.commitLocked(ctx, "open")

	s.log.Debug("tab opened", zap.String("id", tab.ID), zap.String("key", componentKey))
	return cloneTab(tab), nil
}

// CloseTab removes a closable tab. Closing the active tab focuses its left
// neighbor. Unknown ids and the Home tab are ignored. History is untouched.
func (s *Store) CloseTab(ctx context.Context, tabID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(tabID)
	if idx < 0 || !s.state.Tabs[idx].CanClose {
		return false
	}

	wasActive := s.state.ActiveTabID == tabID
	s.state.Tabs = append(s.state.Tabs[:idx:idx], s.state.Tabs[idx+1:]...)

	if wasActive {
		next := idx - 1
		if next < 0 {
			next = 0
		}
		s.state.ActiveTabID = s.state.Tabs[next].ID
	}

	s.commitLocked(ctx, "close")
	return true
}

// ActivateTab focuses an open tab and records it in the history, even if it
// is already active. Unknown ids are ignored.
func (s *Store) ActivateTab(ctx context.Context, tabID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(tabID) < 0 {
		return false
	}
	s.focusLocked(tabID)
	s.commitLocked(ctx, "activate")
	return true
}

// CloseOthers keeps only Home and tabID (when closable) and focuses tabID.
// If tabID did not survive, Home is focused.
func (s *Store) CloseOthers(ctx context.Context, tabID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.state.Tabs[:0:0]
	for _, tab := range s.state.Tabs {
		if tab.ID == id.HomeTabID.String() || (tab.ID == tabID && tab.CanClose) {
			kept = append(kept, tab)
		}
	}
	s.state.Tabs = kept

	if s.indexLocked(tabID) >= 0 {
		s.state.ActiveTabID = tabID
	} else {
		s.state.ActiveTabID = id.HomeTabID.String()
	}
	s.commitLocked(ctx, "close_others")
}

// GoBack pops the newest history entry and focuses the entry below it
// without pushing a new one. Entries of tabs closed since are skipped; if
// none is left, Home is focused and the history restarts at Home. It
// returns false when there is nothing to go back to.
func (s *Store) GoBack(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.state.History
	if len(history) <= 1 {
		return false
	}

	history = history[:len(history)-1]
	for len(history) > 0 && s.indexLocked(history[len(history)-1]) < 0 {
		history = history[:len(history)-1]
	}

	if len(history) == 0 {
		home := id.HomeTabID.String()
		s.state.History = []string{home}
		s.state.ActiveTabID = home
	} else {
		s.state.History = history
		s.state.ActiveTabID = history[len(history)-1]
	}

	s.commitLocked(ctx, "back")
	return true
}

func (s *Store) focusLocked(tabID string) {
	s.state.ActiveTabID = tabID
	s.state.History = append(s.state.History, tabID)
	if over := len(s.state.History) - MaxHistory; over > 0 {
		s.state.History = append([]string(nil), s.state.History[over:]...)
	}
}

func (s *Store) indexLocked(tabID string) int {
	for i, tab := range s.state.Tabs {
		if tab.ID == tabID {
			return i
		}
	}
	return -1
}

// commitLocked persists the state and publishes it before the lock is
// released, so storage and subscribers see mutations in call order.
func (s *Store) commitLocked(ctx context.Context, op string) {
	snapshot := s.state.Clone()

	err := s.record.Save(context.WithoutCancel(ctx), snapshot)
	s.metrics.RecordStorageWrite(Namespace, err)
	if err != nil {
		s.log.Error("failed to persist tabs", zap.String("op", op), zap.Error(err))
	}

	s.metrics.RecordTabOperation(op, len(snapshot.Tabs))
	s.hub.Publish(snapshot)
}

func (s *Store) sanitizeTitle(title, fallback string) string {
	clean := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(title)))
	if clean == "" {
		return fallback
	}
	if utf8.RuneCountInString(clean) > utils.MaxTitleLength {
		clean = string([]rune(clean)[:utils.MaxTitleLength])
	}
	return clean
}

func pushRecent(recent []string, key string) []string {
	out := make([]string, 0, types.MaxRecentApps)
	out = append(out, key)
	for _, k := range recent {
		if k == key {
			continue
		}
		if len(out) == types.MaxRecentApps {
			break
		}
		out = append(out, k)
	}
	return out
}

func cloneTab(tab types.Tab) types.Tab {
	tab.Params = cloneParams(tab.Params)
	return tab
}

func cloneParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
