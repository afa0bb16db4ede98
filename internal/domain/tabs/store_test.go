package tabs

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/erpshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/storage"
	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

var ctx = context.Background()

func newStore(t *testing.T, store storage.Store, opts ...Option) *Store {
	t.Helper()
	s := New(ctx, store, opts...)
	t.Cleanup(s.Close)
	return s
}

func open(t *testing.T, s *Store, key string) types.Tab {
	t.Helper()
	tab, err := s.OpenTab(ctx, key, strings.ToUpper(key[:1])+key[1:], "Box", nil)
	require.NoError(t, err)
	return tab
}

func persisted(t *testing.T, store storage.Store) types.TabsState {
	t.Helper()
	state, found, err := storage.NewRecord[types.TabsState](store, Namespace).Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	return state
}

func ids(state types.TabsState) []string {
	out := make([]string, len(state.Tabs))
	for i, tab := range state.Tabs {
		out[i] = tab.ID
	}
	return out
}

// assertInvariants checks the rules every reachable state must satisfy.
func assertInvariants(t *testing.T, state types.TabsState) {
	t.Helper()
	require.NotEmpty(t, state.Tabs)
	assert.Equal(t, HomeTab(), state.Tabs[0])

	fixed := 0
	keys := map[string]bool{}
	for _, tab := range state.Tabs {
		if !tab.CanClose {
			fixed++
		}
		assert.False(t, keys[tab.ComponentKey], "duplicate key %s", tab.ComponentKey)
		keys[tab.ComponentKey] = true
	}
	assert.Equal(t, 1, fixed)

	_, ok := state.Active()
	assert.True(t, ok, "active id %q not open", state.ActiveTabID)

	assert.LessOrEqual(t, len(state.RecentApps), types.MaxRecentApps)
	seen := map[string]bool{}
	for _, key := range state.RecentApps {
		assert.False(t, seen[key], "duplicate recent %s", key)
		seen[key] = true
	}
	assert.NotEmpty(t, state.History)
}

func TestInitialState(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())

	state := s.State()
	assert.Equal(t, []types.Tab{HomeTab()}, state.Tabs)
	assert.Equal(t, "home", state.ActiveTabID)
	assert.Equal(t, []string{"home"}, state.History)
	assert.Empty(t, state.RecentApps)
	assert.Equal(t, HomeTab(), s.Active())
}

func TestOpenTabTwiceKeepsOneTab(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())

	first, err := s.OpenTab(ctx, "materials", "Materials", "Box", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, s.State().ActiveTabID)

	second, err := s.OpenTab(ctx, "materials", "Materials", "Box", nil)
	require.NoError(t, err)

	state := s.State()
	assert.Len(t, state.Tabs, 2)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ID, state.ActiveTabID)
	assert.True(t, strings.HasPrefix(first.ID, "materials-"))
	assert.Equal(t, []string{"home", first.ID, first.ID}, state.History)
	assert.Equal(t, []string{"materials"}, state.RecentApps)
}

func TestCloseInactiveTabKeepsActive(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	materials := open(t, s, "materials")
	suppliers := open(t, s, "suppliers")

	assert.True(t, s.CloseTab(ctx, materials.ID))

	state := s.State()
	assert.Equal(t, []string{"home", suppliers.ID}, ids(state))
	assert.Equal(t, suppliers.ID, state.ActiveTabID)
}

func TestCloseActiveTabFocusesLeftNeighbor(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	materials := open(t, s, "materials")
	require.True(t, s.ActivateTab(ctx, materials.ID))

	assert.True(t, s.CloseTab(ctx, materials.ID))
	assert.Equal(t, "home", s.State().ActiveTabID)

	a := open(t, s, "ranges")
	b := open(t, s, "deposits")
	open(t, s, "positions")
	require.True(t, s.ActivateTab(ctx, b.ID))
	require.True(t, s.CloseTab(ctx, b.ID))
	assert.Equal(t, a.ID, s.State().ActiveTabID)
}

func TestCloseTabLeavesHistory(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	materials := open(t, s, "materials")
	before := s.State().History

	require.True(t, s.CloseTab(ctx, materials.ID))
	assert.Equal(t, before, s.State().History)
}

func TestCloseTabIgnoresHomeAndUnknown(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	open(t, s, "materials")
	before := s.State()

	assert.False(t, s.CloseTab(ctx, "home"))
	assert.False(t, s.CloseTab(ctx, "nope"))
	assert.Equal(t, before, s.State())
}

func TestActivateTab(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	materials := open(t, s, "materials")

	require.True(t, s.ActivateTab(ctx, "home"))
	require.True(t, s.ActivateTab(ctx, "home"))
	state := s.State()
	assert.Equal(t, "home", state.ActiveTabID)
	assert.Equal(t, []string{"home", materials.ID, "home", "home"}, state.History)

	assert.False(t, s.ActivateTab(ctx, "missing"))
	assert.Equal(t, state, s.State())
}

func TestCloseOthers(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	open(t, s, "materials")
	suppliers := open(t, s, "suppliers")
	open(t, s, "deposits")

	s.CloseOthers(ctx, suppliers.ID)
	state := s.State()
	assert.Equal(t, []string{"home", suppliers.ID}, ids(state))
	assert.Equal(t, suppliers.ID, state.ActiveTabID)
}

func TestCloseOthersFallsBackToHome(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"home", "home"},
		{"unknown", "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, storage.NewMemoryStore())
			open(t, s, "materials")
			open(t, s, "suppliers")

			s.CloseOthers(ctx, tt.id)
			state := s.State()
			assert.Equal(t, []string{"home"}, ids(state))
			assert.Equal(t, "home", state.ActiveTabID)
		})
	}
}

func TestGoBack(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	materials := open(t, s, "materials")
	suppliers := open(t, s, "suppliers")

	require.True(t, s.GoBack(ctx))
	state := s.State()
	assert.Equal(t, materials.ID, state.ActiveTabID)
	assert.Equal(t, []string{"home", materials.ID}, state.History)

	require.True(t, s.GoBack(ctx))
	assert.Equal(t, "home", s.State().ActiveTabID)

	assert.False(t, s.GoBack(ctx))
	assert.Equal(t, []string{"home"}, s.State().History)
	assert.Len(t, s.State().Tabs, 3, "going back never closes tabs: %s", suppliers.ID)
}

func TestGoBackSkipsClosedTabs(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	materials := open(t, s, "materials")
	suppliers := open(t, s, "suppliers")
	deposits := open(t, s, "deposits")
	require.True(t, s.CloseTab(ctx, suppliers.ID))

	// history: home, materials, suppliers, deposits
	require.True(t, s.GoBack(ctx))
	state := s.State()
	assert.Equal(t, materials.ID, state.ActiveTabID)
	assert.Equal(t, []string{"home", materials.ID}, state.History)
	assert.NotEqual(t, deposits.ID, state.ActiveTabID)
}

func TestGoBackFallsBackToHome(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	materials := open(t, s, "materials")
	suppliers := open(t, s, "suppliers")
	s.CloseOthers(ctx, "home")

	require.True(t, s.GoBack(ctx))
	state := s.State()
	assert.Equal(t, "home", state.ActiveTabID)
	assert.Equal(t, []string{"home"}, state.History)
	assert.NotContains(t, ids(state), materials.ID)
	assert.NotContains(t, ids(state), suppliers.ID)
}

func TestRecentAppsBounded(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, key := range keys {
		open(t, s, key)
	}
	assert.Equal(t, []string{"h", "g", "f", "e", "d", "c"}, s.State().RecentApps)

	// Closing and reopening moves the key to the front without duplicating it.
	state := s.State()
	for _, tab := range state.Tabs {
		if tab.ComponentKey == "e" {
			require.True(t, s.CloseTab(ctx, tab.ID))
		}
	}
	open(t, s, "e")
	assert.Equal(t, []string{"e", "h", "g", "f", "d", "c"}, s.State().RecentApps)
}

func TestOpenTabSanitizesTitle(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())

	tab, err := s.OpenTab(ctx, "materials", `<script>alert(1)</script>R&D <b>Materials</b>`, "Box", nil)
	require.NoError(t, err)
	assert.Equal(t, "R&D Materials", tab.Title)

	tab, err = s.OpenTab(ctx, "ranges", "<img src=x>", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "ranges", tab.Title)
}

func TestOpenTabRejectsBadKey(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	for _, key := range []string{"", "Bad Key", "../etc"} {
		_, err := s.OpenTab(ctx, key, "x", "", nil)
		assert.Error(t, err, key)
	}
	assert.Len(t, s.State().Tabs, 1)
}

func TestParamsAreCopied(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	params := map[string]any{"id": 7}
	tab, err := s.OpenTab(ctx, "suppliers", "Suppliers", "", params)
	require.NoError(t, err)

	params["id"] = 8
	tab.Params["id"] = 9
	active := s.Active()
	assert.Equal(t, 7, active.Params["id"])
}

func TestPersistsEveryMutation(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newStore(t, store)
	materials := open(t, s, "materials")
	assert.Equal(t, s.State(), persisted(t, store))

	s.CloseTab(ctx, materials.ID)
	assert.Equal(t, s.State(), persisted(t, store))

	restored := newStore(t, store)
	assert.Equal(t, s.State(), restored.State())
}

func TestRestoreRepairsSnapshot(t *testing.T) {
	store := storage.NewMemoryStore()
	record := storage.NewRecord[types.TabsState](store, Namespace)
	require.NoError(t, record.Save(ctx, types.TabsState{
		Tabs: []types.Tab{
			{ID: "materials-1", Title: "<b>Materials</b>", ComponentKey: "materials", CanClose: false},
			{ID: "materials-2", Title: "Dup", ComponentKey: "materials", CanClose: true},
			{ID: "", Title: "Empty", ComponentKey: "x", CanClose: true},
			{ID: "home", Title: "Home", ComponentKey: "home", CanClose: true},
		},
		ActiveTabID: "gone",
		RecentApps:  []string{"a", "a", "b", "c", "d", "e", "f", "g", ""},
	}))

	s := newStore(t, store)
	state := s.State()
	assertInvariants(t, state)
	assert.Equal(t, []string{"home", "materials-1"}, ids(state))
	assert.Equal(t, "Materials", state.Tabs[1].Title)
	assert.True(t, state.Tabs[1].CanClose)
	assert.Equal(t, "home", state.ActiveTabID)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, state.RecentApps)
	assert.Equal(t, []string{"home"}, state.History)

	assert.Equal(t, state, persisted(t, store), "repaired snapshot is written back")
}

func TestRestoreKeepsStaleHistory(t *testing.T) {
	store := storage.NewMemoryStore()
	record := storage.NewRecord[types.TabsState](store, Namespace)
	saved := types.TabsState{
		Tabs:        []types.Tab{HomeTab(), {ID: "ranges-1", Title: "Ranges", ComponentKey: "ranges", CanClose: true}},
		ActiveTabID: "ranges-1",
		RecentApps:  []string{"ranges", "materials"},
		History:     []string{"home", "materials-9", "ranges-1"},
	}
	require.NoError(t, record.Save(ctx, saved))

	s := newStore(t, store)
	assert.Equal(t, saved, s.State())

	require.True(t, s.GoBack(ctx))
	assert.Equal(t, "home", s.State().ActiveTabID)
}

func TestRestoreIgnoresCorruptSnapshot(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(ctx, Namespace, []byte("{not json")))

	s := newStore(t, store)
	assert.Equal(t, []types.Tab{HomeTab()}, s.State().Tabs)
}

func TestSubscribe(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	updates, cancel := s.Subscribe()
	defer cancel()

	tab := open(t, s, "materials")
	state := <-updates
	assert.Equal(t, tab.ID, state.ActiveTabID)
}

func TestMetrics(t *testing.T) {
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	s := newStore(t, storage.NewMemoryStore(), WithMetrics(metrics))
	open(t, s, "materials")
	open(t, s, "suppliers")

	assert.Equal(t, int64(3), metrics.Snapshot().OpenTabs)
}

func TestDeterministicIDs(t *testing.T) {
	n := 0
	s := newStore(t, storage.NewMemoryStore(), WithIDGenerator(func(key string) string {
		n++
		return fmt.Sprintf("%s-%d", key, n)
	}))
	assert.Equal(t, "materials-1", open(t, s, "materials").ID)
	assert.Equal(t, "ranges-2", open(t, s, "ranges").ID)
}

func TestRandomOperationsHoldInvariants(t *testing.T) {
	keys := []string{"materials", "suppliers", "ranges", "deposits", "positions", "users", "logs", "company"}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		store := storage.NewMemoryStore()
		s := New(ctx, store)

		for step := 0; step < 200; step++ {
			state := s.State()
			pick := func() string {
				if rng.Intn(5) == 0 {
					return "missing"
				}
				return state.Tabs[rng.Intn(len(state.Tabs))].ID
			}

			switch rng.Intn(5) {
			case 0:
				key := keys[rng.Intn(len(keys))]
				_, err := s.OpenTab(ctx, key, key, "", nil)
				require.NoError(t, err)
			case 1:
				s.CloseTab(ctx, pick())
			case 2:
				s.ActivateTab(ctx, pick())
			case 3:
				if rng.Intn(4) == 0 {
					s.CloseOthers(ctx, pick())
				}
			case 4:
				s.GoBack(ctx)
			}
			assertInvariants(t, s.State())
		}

		assert.Equal(t, s.State(), New(ctx, store).State())
		s.Close()
	}
}

func TestConcurrentOperations(t *testing.T) {
	s := newStore(t, storage.NewMemoryStore())
	keys := []string{"materials", "suppliers", "ranges", "deposits"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := keys[(i+j)%len(keys)]
				tab, err := s.OpenTab(ctx, key, key, "", nil)
				if err != nil {
					continue
				}
				if j%3 == 0 {
					s.CloseTab(ctx, tab.ID)
				}
				if j%7 == 0 {
					s.GoBack(ctx)
				}
				_ = s.State()
			}
		}(i)
	}
	wg.Wait()
	assertInvariants(t, s.State())
}
