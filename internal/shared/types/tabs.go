package types

// MaxRecentApps bounds TabsState.RecentApps.
const MaxRecentApps = 6

// Tab is one entry of the tab strip.
type Tab struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Icon         string         `json:"icon"`
	ComponentKey string         `json:"componentKey"`
	Params       map[string]any `json:"params,omitempty"`
	CanClose     bool           `json:"canClose"`
}

// TabsState is the navigation state owned by the tabs store.
type TabsState struct {
	Tabs        []Tab    `json:"tabs"`
	ActiveTabID string   `json:"activeTabId"`
	RecentApps  []string `json:"recentApps"`
	History     []string `json:"history"`
}

// Clone returns a deep copy so callers can never alias store internals.
func (s TabsState) Clone() TabsState {
	out := TabsState{
		Tabs:        make([]Tab, len(s.Tabs)),
		ActiveTabID: s.ActiveTabID,
		RecentApps:  append([]string(nil), s.RecentApps...),
		History:     append([]string(nil), s.History...),
	}
	for i, tab := range s.Tabs {
		if tab.Params != nil {
			params := make(map[string]any, len(tab.Params))
			for k, v := range tab.Params {
				params[k] = v
			}
			tab.Params = params
		}
		out.Tabs[i] = tab
	}
	return out
}

// Find returns the tab with the given id.
func (s TabsState) Find(id string) (Tab, bool) {
	for _, tab := range s.Tabs {
		if tab.ID == id {
			return tab, true
		}
	}
	return Tab{}, false
}

// Active returns the active tab.
func (s TabsState) Active() (Tab, bool) {
	return s.Find(s.ActiveTabID)
}
