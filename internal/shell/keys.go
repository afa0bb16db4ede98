package shell

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
)

// ErrUnknownAction is returned for action or key names with no binding.
var ErrUnknownAction = errors.New("unknown shell action")

// Action is a keyboard-level navigation command.
type Action string

const (
	ActionHome     Action = "home"
	ActionNewTab   Action = "new_tab"
	ActionCloseTab Action = "close_tab"
	ActionBack     Action = "back"
	ActionSearch   Action = "search"
)

// Hints tell the UI to move focus instead of mutating tabs.
const (
	HintPickModule  = "pick_module"
	HintFocusSearch = "focus_search"
)

// Result describes what an action did.
type Result struct {
	Action  Action `json:"action"`
	Changed bool   `json:"changed"`
	Hint    string `json:"hint,omitempty"`
}

// ParseAction validates an action name.
func ParseAction(name string) (Action, error) {
	switch a := Action(name); a {
	case ActionHome, ActionNewTab, ActionCloseTab, ActionBack, ActionSearch:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// KeyMap binds the shell actions to keys. It satisfies bubbles/help.KeyMap.
type KeyMap struct {
	Home     key.Binding
	NewTab   key.Binding
	CloseTab key.Binding
	Back     key.Binding
	Search   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Home: key.NewBinding(
			key.WithKeys("alt+h"),
			key.WithHelp("alt+h", "home"),
		),
		NewTab: key.NewBinding(
			key.WithKeys("alt+t"),
			key.WithHelp("alt+t", "new tab"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("alt+w"),
			key.WithHelp("alt+w", "close tab"),
		),
		Back: key.NewBinding(
			key.WithKeys("alt+left"),
			key.WithHelp("alt+←", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "search"),
		),
	}
}

type keyName string

func (k keyName) String() string { return string(k) }

// Lookup returns the action bound to a key name.
func (k KeyMap) Lookup(name string) (Action, bool) {
	msg := keyName(name)
	switch {
	case key.Matches(msg, k.Home):
		return ActionHome, true
	case key.Matches(msg, k.NewTab):
		return ActionNewTab, true
	case key.Matches(msg, k.CloseTab):
		return ActionCloseTab, true
	case key.Matches(msg, k.Back):
		return ActionBack, true
	case key.Matches(msg, k.Search):
		return ActionSearch, true
	}
	return "", false
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Home, k.CloseTab, k.Back, k.Search}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Home, k.NewTab, k.CloseTab}, {k.Back, k.Search}}
}
