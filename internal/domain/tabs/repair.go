package tabs

import (
	"github.com/GriffinCanCode/erpshell/internal/shared/id"
	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

// repair rebuilds a restored snapshot so it satisfies the store invariants.
// It reports whether anything had to change.
func (s *Store) repair(saved types.TabsState) (types.TabsState, bool) {
	home := HomeTab()
	out := types.TabsState{
		Tabs:       []types.Tab{home},
		RecentApps: []string{},
	}
	changed := false

	if len(saved.Tabs) == 0 || saved.Tabs[0].ID != home.ID || saved.Tabs[0].CanClose {
		changed = true
	}

	seenIDs := map[string]bool{home.ID: true}
	seenKeys := map[string]bool{home.ComponentKey: true}
	for i, tab := range saved.Tabs {
		if tab.ID == home.ID {
			if i != 0 {
				changed = true
			}
			continue
		}
		if tab.ID == "" || tab.ComponentKey == "" || seenIDs[tab.ID] || seenKeys[tab.ComponentKey] {
			changed = true
			continue
		}
		seenIDs[tab.ID] = true
		seenKeys[tab.ComponentKey] = true

		title := s.sanitizeTitle(tab.Title, tab.ComponentKey)
		if title != tab.Title || !tab.CanClose {
			changed = true
		}
		tab.Title = title
		tab.CanClose = true
		out.Tabs = append(out.Tabs, cloneTab(tab))
	}

	out.ActiveTabID = saved.ActiveTabID
	if !seenIDs[out.ActiveTabID] {
		out.ActiveTabID = id.HomeTabID.String()
		changed = true
	}

	for _, key := range saved.RecentApps {
		if key == "" || contains(out.RecentApps, key) || len(out.RecentApps) == types.MaxRecentApps {
			changed = true
			continue
		}
		out.RecentApps = append(out.RecentApps, key)
	}

	// Stale history entries are legal; GoBack skips them.
	out.History = append([]string(nil), saved.History...)
	if over := len(out.History) - MaxHistory; over > 0 {
		out.History = out.History[over:]
		changed = true
	}
	if len(out.History) == 0 {
		out.History = []string{out.ActiveTabID}
		changed = true
	}

	return out, changed
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
