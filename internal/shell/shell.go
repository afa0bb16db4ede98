package shell

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/erpshell/internal/domain/registry"
	"github.com/GriffinCanCode/erpshell/internal/domain/tabs"
	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

// ErrNotAuthenticated is returned by navigation while no session is active.
var ErrNotAuthenticated = errors.New("not authenticated")

// Gate reports whether navigation is allowed.
type Gate interface {
	IsAuthenticated() bool
}

// Shell is the navigation boundary used by the terminal UI and the HTTP
// surface. It mounts the active tab's module through the registry and maps
// user actions onto the tabs store.
type Shell struct {
	gate     Gate
	tabs     *tabs.Store
	registry *registry.Registry
	keys     KeyMap
	log      *zap.Logger
}

// Option configures a Shell.
type Option func(*Shell)

func WithLogger(log *zap.Logger) Option {
	return func(s *Shell) { s.log = log }
}

func WithKeyMap(keys KeyMap) Option {
	return func(s *Shell) { s.keys = keys }
}

// New creates a shell over the given stores.
func New(gate Gate, tabStore *tabs.Store, reg *registry.Registry, opts ...Option) *Shell {
	s := &Shell{
		gate:     gate,
		tabs:     tabStore,
		registry: reg,
		keys:     DefaultKeyMap(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Shell) Authenticated() bool {
	return s.gate.IsAuthenticated()
}

func (s *Shell) Keys() KeyMap {
	return s.keys
}

func (s *Shell) Registry() *registry.Registry {
	return s.registry
}

// State returns the navigation state.
func (s *Shell) State() types.TabsState {
	return s.tabs.State()
}

// Modules lists the tiles of the module catalog, Home excluded.
func (s *Shell) Modules() []types.ModuleDescriptor {
	return withoutHome(s.registry.Catalog().List())
}

// Search filters the catalog by key, title, category or tag.
func (s *Shell) Search(q string) []types.ModuleDescriptor {
	return withoutHome(s.registry.Catalog().Search(q))
}

// OpenModule opens (or focuses) the tab for key. Keys missing from the
// catalog still open a tab; the registry mounts a placeholder for them.
func (s *Shell) OpenModule(ctx context.Context, key string, params map[string]any) (types.Tab, error) {
	if !s.Authenticated() {
		return types.Tab{}, ErrNotAuthenticated
	}

	title, icon := key, ""
	if d, ok := s.registry.Catalog().Get(key); ok {
		title, icon = d.Title, d.Icon
	}
	tab, err := s.tabs.OpenTab(ctx, key, title, icon, params)
	if err != nil {
		return types.Tab{}, err
	}
	s.log.Debug("module opened", zap.String("key", key), zap.String("tab", tab.ID))
	return tab, nil
}

func (s *Shell) ActivateTab(ctx context.Context, id string) (bool, error) {
	if !s.Authenticated() {
		return false, ErrNotAuthenticated
	}
	return s.tabs.ActivateTab(ctx, id), nil
}

func (s *Shell) CloseTab(ctx context.Context, id string) (bool, error) {
	if !s.Authenticated() {
		return false, ErrNotAuthenticated
	}
	return s.tabs.CloseTab(ctx, id), nil
}

func (s *Shell) CloseOthers(ctx context.Context, id string) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	s.tabs.CloseOthers(ctx, id)
	return nil
}

func (s *Shell) Back(ctx context.Context) (bool, error) {
	if !s.Authenticated() {
		return false, ErrNotAuthenticated
	}
	return s.tabs.GoBack(ctx), nil
}

// ActiveComponent resolves the module mounted in the active tab. It never
// fails: modules that cannot be loaded resolve to the NotFound placeholder.
func (s *Shell) ActiveComponent(ctx context.Context) (types.Tab, registry.Component) {
	tab := s.tabs.Active()
	return tab, s.registry.Load(ctx, tab.ComponentKey)
}

// Perform runs a keyboard action against the tabs store.
func (s *Shell) Perform(ctx context.Context, action Action) (Result, error) {
	if !s.Authenticated() {
		return Result{Action: action}, ErrNotAuthenticated
	}

	res := Result{Action: action}
	switch action {
	case ActionHome:
		res.Changed = s.tabs.ActivateTab(ctx, tabs.HomeTab().ID)
	case ActionNewTab:
		res.Hint = HintPickModule
	case ActionCloseTab:
		active := s.tabs.Active()
		if active.CanClose {
			res.Changed = s.tabs.CloseTab(ctx, active.ID)
		}
	case ActionBack:
		res.Changed = s.tabs.GoBack(ctx)
	case ActionSearch:
		res.Hint = HintFocusSearch
	default:
		return res, ErrUnknownAction
	}
	return res, nil
}

// PerformKey maps a key press such as "alt+w" to its action and runs it.
func (s *Shell) PerformKey(ctx context.Context, keyName string) (Result, error) {
	action, ok := s.keys.Lookup(keyName)
	if !ok {
		return Result{}, ErrUnknownAction
	}
	return s.Perform(ctx, action)
}

func withoutHome(in []types.ModuleDescriptor) []types.ModuleDescriptor {
	out := make([]types.ModuleDescriptor, 0, len(in))
	for _, d := range in {
		if d.Key != registry.HomeKey {
			out = append(out, d)
		}
	}
	return out
}
