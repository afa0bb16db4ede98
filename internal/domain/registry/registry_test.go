package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/erpshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

// MockProvider is a mock implementation of Provider for testing.
type MockProvider struct {
	mock.Mock
}

// Fetch mocks the Fetch method.
func (m *MockProvider) Fetch(ctx context.Context, key string) (Component, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(Component), args.Error(1)
}

func builtinCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog := NewCatalog()
	require.NoError(t, RegisterBuiltins(catalog))
	return catalog
}

func TestResolveIsIdempotent(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Fetch", mock.Anything, "materials").
		Return(Component{Key: "materials", Source: SourceManifest}, nil).Once()

	reg := New(NewCatalog(), provider)

	first := reg.Resolve("materials")
	second := reg.Resolve("materials")
	assert.Same(t, first, second)
	assert.False(t, first.Loaded(), "resolve must not fetch")

	ctx := context.Background()
	assert.Equal(t, "materials", first.Load(ctx).Key)
	assert.Equal(t, "materials", second.Load(ctx).Key)

	provider.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestFailedFetchMemoizesPlaceholder(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Fetch", mock.Anything, "nonexistent-module").
		Return(Component{}, errors.New("chunk load failed")).Once()

	reg := New(NewCatalog(), provider)
	ctx := context.Background()

	first := reg.Resolve("nonexistent-module")
	comp := first.Load(ctx)
	assert.True(t, comp.Placeholder())
	assert.Equal(t, "nonexistent-module", comp.Key)
	assert.Contains(t, comp.Reason, "chunk load failed")

	second := reg.Resolve("nonexistent-module")
	assert.Same(t, first, second)
	assert.Equal(t, comp, second.Load(ctx))

	provider.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestInvalidKeyYieldsPlaceholderWithoutFetch(t *testing.T) {
	provider := new(MockProvider)
	reg := New(NewCatalog(), provider)

	comp := reg.Load(context.Background(), "../../etc/passwd")
	assert.True(t, comp.Placeholder())
	provider.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestConcurrentLoadsShareOneFetch(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})

	reg := New(NewCatalog(), ProviderFunc(func(ctx context.Context, key string) (Component, error) {
		calls.Add(1)
		<-release
		return Component{Key: key, Source: SourceBackend}, nil
	}))

	lazy := reg.Resolve("suppliers")
	var wg sync.WaitGroup
	results := make([]Component, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = lazy.Load(context.Background())
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, comp := range results {
		assert.Equal(t, "suppliers", comp.Key)
		assert.False(t, comp.Placeholder())
	}
}

func TestConcurrentResolveReturnsOneReference(t *testing.T) {
	reg := New(NewCatalog(), new(MockProvider))

	var wg sync.WaitGroup
	refs := make([]*Lazy, 32)
	for i := range refs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			refs[i] = reg.Resolve("deposits")
		}(i)
	}
	wg.Wait()

	for _, ref := range refs {
		assert.Same(t, refs[0], ref)
	}
}

func TestCallerCancellationIsNotMemoized(t *testing.T) {
	var calls atomic.Int32
	reg := New(NewCatalog(), ProviderFunc(func(ctx context.Context, key string) (Component, error) {
		calls.Add(1)
		return Component{Key: key, Source: SourceBackend}, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lazy := reg.Resolve("positions")
	assert.True(t, lazy.Load(ctx).Placeholder())
	assert.False(t, lazy.Loaded())
	assert.Zero(t, calls.Load())

	comp := lazy.Load(context.Background())
	assert.False(t, comp.Placeholder())
	assert.True(t, lazy.Loaded())
	assert.Equal(t, int32(1), calls.Load())
}

func TestCancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	reg := New(NewCatalog(), ProviderFunc(func(ctx context.Context, key string) (Component, error) {
		calls.Add(1)
		close(started)
		select {
		case <-release:
			return Component{Key: key, Source: SourceBackend}, nil
		case <-ctx.Done():
			return Component{}, ctx.Err()
		}
	}))
	lazy := reg.Resolve("deposits")

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan Component, 1)
	go func() { first <- lazy.Load(ctx) }()
	<-started

	second := make(chan Component, 1)
	go func() { second <- lazy.Load(context.Background()) }()

	cancel()
	select {
	case comp := <-first:
		assert.True(t, comp.Placeholder())
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(release)
	select {
	case comp := <-second:
		assert.False(t, comp.Placeholder())
		assert.Equal(t, SourceBackend, comp.Source)
	case <-time.After(2 * time.Second):
		t.Fatal("live caller did not return")
	}

	assert.True(t, lazy.Loaded())
	assert.Equal(t, int32(1), calls.Load())
	comp, _ := lazy.Peek()
	assert.False(t, comp.Placeholder())
}

func TestLoadTimeout(t *testing.T) {
	reg := New(NewCatalog(), ProviderFunc(func(ctx context.Context, key string) (Component, error) {
		<-ctx.Done()
		return Component{}, ctx.Err()
	}), WithLoadTimeout(10*time.Millisecond))

	lazy := reg.Resolve("logs")
	comp := lazy.Load(context.Background())
	assert.True(t, comp.Placeholder())
	assert.True(t, lazy.Loaded(), "a provider timeout is a load failure and is memoized")
}

func TestEvict(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Fetch", mock.Anything, mock.Anything).
		Return(Component{Source: SourceManifest}, nil)

	reg := New(NewCatalog(), provider)
	ctx := context.Background()

	for _, key := range []string{"users", "materials", "company"} {
		reg.Load(ctx, key)
	}
	assert.Equal(t, []string{"company", "materials", "users"}, reg.ListResolved())

	old := reg.Resolve("materials")
	assert.Equal(t, 1, reg.Evict("materials", "missing"))
	assert.Equal(t, []string{"company", "users"}, reg.ListResolved())

	fresh := reg.Resolve("materials")
	assert.NotSame(t, old, fresh)
	fresh.Load(ctx)
	provider.AssertNumberOfCalls(t, "Fetch", 4)

	assert.Equal(t, 3, reg.Evict())
	assert.Empty(t, reg.ListResolved())
}

func TestResolutionMetrics(t *testing.T) {
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	reg := New(builtinCatalog(t), NewManifestProvider(builtinCatalog(t)), WithMetrics(metrics))

	reg.Load(context.Background(), "materials")
	reg.Resolve("materials")
	assert.Equal(t, int64(1), metrics.Snapshot().ResolvedCached)
}

func TestManifestProvider(t *testing.T) {
	provider := NewManifestProvider(builtinCatalog(t))
	ctx := context.Background()

	comp, err := provider.Fetch(ctx, "materials")
	require.NoError(t, err)
	assert.Equal(t, "Materials", comp.Descriptor.Title)
	assert.Equal(t, "Box", comp.Descriptor.Icon)
	assert.Equal(t, SourceManifest, comp.Source)

	_, err = provider.Fetch(ctx, "nonexistent-module")
	assert.ErrorIs(t, err, ErrUnknownModule)
}

type fakeApps struct {
	apps   map[string]types.App
	routes map[string][]types.AppRoute
	err    error
}

func (f *fakeApps) GetApp(_ context.Context, code string) (*types.App, error) {
	if f.err != nil {
		return nil, f.err
	}
	app, ok := f.apps[code]
	if !ok {
		return nil, errors.New("404")
	}
	return &app, nil
}

func (f *fakeApps) AppRoutes(_ context.Context, code string) ([]types.AppRoute, error) {
	return f.routes[code], nil
}

func (f *fakeApps) ListApps(_ context.Context) ([]types.App, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]types.App, 0, len(f.apps))
	for _, app := range f.apps {
		out = append(out, app)
	}
	return out, nil
}

func TestBackendProvider(t *testing.T) {
	api := &fakeApps{
		apps: map[string]types.App{
			"inventory": {Code: "inventory", Name: "Inventory", Icon: "Clipboard", Active: true},
			"legacy":    {Code: "legacy", Name: "Legacy", Active: false},
		},
		routes: map[string][]types.AppRoute{
			"inventory": {{Path: "/", Component: "InventoryList"}},
		},
	}
	provider := NewBackendProvider(api)
	ctx := context.Background()

	comp, err := provider.Fetch(ctx, "inventory")
	require.NoError(t, err)
	assert.Equal(t, SourceBackend, comp.Source)
	assert.Equal(t, "Inventory", comp.Descriptor.Title)
	require.Len(t, comp.Routes, 1)

	_, err = provider.Fetch(ctx, "legacy")
	assert.ErrorIs(t, err, ErrModuleInactive)

	_, err = provider.Fetch(ctx, "missing")
	assert.Error(t, err)
}

func TestChainProvider(t *testing.T) {
	catalog := builtinCatalog(t)
	api := &fakeApps{apps: map[string]types.App{
		"inventory": {Code: "inventory", Name: "Inventory", Active: true},
	}}
	chain := ChainProvider{NewManifestProvider(catalog), NewBackendProvider(api)}
	ctx := context.Background()

	comp, err := chain.Fetch(ctx, "materials")
	require.NoError(t, err)
	assert.Equal(t, SourceManifest, comp.Source)

	comp, err = chain.Fetch(ctx, "inventory")
	require.NoError(t, err)
	assert.Equal(t, SourceBackend, comp.Source)

	_, err = chain.Fetch(ctx, "nonexistent-module")
	assert.ErrorIs(t, err, ErrUnknownModule)

	_, err = ChainProvider{}.Fetch(ctx, "x")
	assert.ErrorIs(t, err, ErrUnknownModule)
}

func TestSyncApps(t *testing.T) {
	catalog := builtinCatalog(t)
	api := &fakeApps{apps: map[string]types.App{
		"inventory": {Code: "inventory", Name: "Inventory", Active: true},
		"materials": {Code: "materials", Name: "Remote Materials", Active: true},
		"legacy":    {Code: "legacy", Name: "Legacy", Active: false},
	}}

	added, err := SyncApps(context.Background(), catalog, api)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	d, ok := catalog.Get("materials")
	require.True(t, ok)
	assert.Equal(t, "Materials", d.Title, "local metadata wins")

	_, ok = catalog.Get("legacy")
	assert.False(t, ok)

	_, err = SyncApps(context.Background(), catalog, &fakeApps{err: errors.New("down")})
	assert.Error(t, err)
}

func TestCatalogListAndSearch(t *testing.T) {
	catalog := builtinCatalog(t)

	list := catalog.List()
	require.Len(t, list, len(Builtins))
	assert.Equal(t, "home", list[0].Key, "general sorts first")

	var stock []string
	for _, d := range list {
		if d.Category == "stock" {
			stock = append(stock, d.Key)
		}
	}
	assert.Equal(t, []string{"ranges", "material-groups", "materials"}, stock)

	hits := catalog.Search("MATER")
	keys := make([]string, 0, len(hits))
	for _, d := range hits {
		keys = append(keys, d.Key)
	}
	assert.ElementsMatch(t, []string{"material-groups", "materials"}, keys)

	assert.Len(t, catalog.Search("vendors"), 1, "tags are searched")
	assert.Len(t, catalog.Search("  "), len(Builtins))
}

func TestCatalogRejectsBadKeys(t *testing.T) {
	catalog := NewCatalog()
	assert.Error(t, catalog.Register(types.ModuleDescriptor{Key: "Bad Key"}))

	require.NoError(t, catalog.Register(types.ModuleDescriptor{Key: "untitled"}))
	d, _ := catalog.Get("untitled")
	assert.Equal(t, "untitled", d.Title)
}
