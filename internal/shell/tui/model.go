package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/erpshell/internal/domain/registry"
	"github.com/GriffinCanCode/erpshell/internal/shell"
	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

type navKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

var navKeys = navKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open module"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next tab"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous tab"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "leave search"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// componentMsg carries the result of loading the active tab's module.
type componentMsg struct {
	tabID     string
	component registry.Component
}

// stateMsg is sent when the tabs store changes outside the TUI.
type stateMsg types.TabsState

// Model is the bubbletea model of the terminal shell.
type Model struct {
	ctx    context.Context
	shell  *shell.Shell
	keys   shell.KeyMap
	search textinput.Model
	help   help.Model

	state     types.TabsState
	modules   []types.ModuleDescriptor
	cursor    int
	searching bool

	loadingTab string
	mounted    string
	component  registry.Component

	status   string
	err      error
	width    int
	quitting bool
}

// New creates the model.
func New(ctx context.Context, s *shell.Shell) Model {
	ti := textinput.New()
	ti.Placeholder = "Search modules"
	ti.CharLimit = 64
	ti.Prompt = "/ "

	m := Model{
		ctx:    ctx,
		shell:  s,
		keys:   s.Keys(),
		search: ti,
		help:   help.New(),
		state:  s.State(),
	}
	m.modules = s.Modules()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.loadActive()
}

// loadActive mounts the active tab's module off the update loop.
func (m Model) loadActive() tea.Cmd {
	s, ctx := m.shell, m.ctx
	return func() tea.Msg {
		tab, comp := s.ActiveComponent(ctx)
		return componentMsg{tabID: tab.ID, component: comp}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case componentMsg:
		if msg.tabID == m.state.ActiveTabID {
			m.loadingTab = ""
			m.mounted = msg.tabID
			m.component = msg.component
		}
		return m, nil

	case stateMsg:
		return m.refresh(types.TabsState(msg))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	if action, ok := m.keys.Lookup(msg.String()); ok {
		return m.perform(action)
	}

	if !m.shell.Authenticated() {
		if key.Matches(msg, navKeys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, navKeys.Cancel) && m.searching:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.modules = m.shell.Modules()
		m.cursor = 0
		return m, nil
	case key.Matches(msg, navKeys.Up) && (!m.searching || msg.Type == tea.KeyUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, navKeys.Down) && (!m.searching || msg.Type == tea.KeyDown):
		if m.cursor < len(m.modules)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, navKeys.Open):
		return m.openSelected()
	case key.Matches(msg, navKeys.NextTab):
		return m.cycleTab(1)
	case key.Matches(msg, navKeys.PrevTab):
		return m.cycleTab(-1)
	}

	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.modules = m.shell.Search(m.search.Value())
		if m.cursor >= len(m.modules) {
			m.cursor = max(len(m.modules)-1, 0)
		}
		return m, cmd
	}

	if key.Matches(msg, navKeys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) perform(action shell.Action) (tea.Model, tea.Cmd) {
	res, err := m.shell.Perform(m.ctx, action)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil

	switch res.Hint {
	case shell.HintFocusSearch, shell.HintPickModule:
		m.searching = true
		m.cursor = 0
		return m, m.search.Focus()
	}
	return m.refresh(m.shell.State())
}

func (m Model) openSelected() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.modules) {
		return m, nil
	}
	d := m.modules[m.cursor]
	if _, err := m.shell.OpenModule(m.ctx, d.Key, nil); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.status = fmt.Sprintf("opened %s", d.Title)
	if m.searching {
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.modules = m.shell.Modules()
		m.cursor = 0
	}
	return m.refresh(m.shell.State())
}

func (m Model) cycleTab(step int) (tea.Model, tea.Cmd) {
	n := len(m.state.Tabs)
	if n < 2 {
		return m, nil
	}
	idx := 0
	for i, tab := range m.state.Tabs {
		if tab.ID == m.state.ActiveTabID {
			idx = i
		}
	}
	next := m.state.Tabs[(idx+step+n)%n]
	if _, err := m.shell.ActivateTab(m.ctx, next.ID); err != nil {
		m.err = err
		return m, nil
	}
	return m.refresh(m.shell.State())
}

// refresh adopts a new state and remounts when the active tab changed.
func (m Model) refresh(state types.TabsState) (tea.Model, tea.Cmd) {
	m.state = state
	if state.ActiveTabID == m.mounted || state.ActiveTabID == m.loadingTab {
		return m, nil
	}
	m.loadingTab = state.ActiveTabID
	return m, m.loadActive()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.shell.Authenticated() {
		return paneStyle.Render("Not signed in. Run `erpshell login` first.") + "\n" +
			mutedStyle.Render("q quit")
	}

	var b strings.Builder
	b.WriteString(m.tabStrip())
	b.WriteString("\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.moduleList(), m.componentPanel())
	b.WriteString(body)
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) tabStrip() string {
	cells := make([]string, 0, len(m.state.Tabs))
	for _, tab := range m.state.Tabs {
		label := tab.Title
		if tab.CanClose {
			label += " ×"
		}
		if tab.ID == m.state.ActiveTabID {
			cells = append(cells, activeTabStyle.Render(label))
		} else {
			cells = append(cells, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, cells...)
}

func (m Model) moduleList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Modules"))
	b.WriteString("\n")
	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	if len(m.modules) == 0 {
		b.WriteString(mutedStyle.Render("no modules"))
	}
	for i, d := range m.modules {
		line := fmt.Sprintf("%s %s", d.Title, mutedStyle.Render(d.Category))
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return paneStyle.Width(32).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) componentPanel() string {
	width := 48
	if m.width > 40 {
		width = max(m.width-38, 24)
	}
	style := paneStyle.Width(width)

	if m.loadingTab != "" || m.mounted == "" {
		return style.Render(mutedStyle.Render("Loading…"))
	}

	comp := m.component
	var b strings.Builder
	b.WriteString(titleStyle.Render(comp.Descriptor.Title))
	b.WriteString("\n")

	switch {
	case comp.Placeholder():
		b.WriteString(errorStyle.Render(fmt.Sprintf("%q could not be loaded", comp.Key)))
		if comp.Reason != "" {
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render(comp.Reason))
		}
	case comp.Key == registry.HomeKey:
		b.WriteString("Recent modules\n")
		if len(m.state.RecentApps) == 0 {
			b.WriteString(mutedStyle.Render("nothing opened yet"))
		}
		for _, recent := range m.state.RecentApps {
			b.WriteString(itemStyle.Render(recent))
			b.WriteString("\n")
		}
	default:
		if comp.Descriptor.Description != "" {
			b.WriteString(comp.Descriptor.Description)
			b.WriteString("\n")
		}
		if comp.Descriptor.Endpoint != "" {
			b.WriteString(mutedStyle.Render("endpoint " + comp.Descriptor.Endpoint))
			b.WriteString("\n")
		}
		if len(comp.Descriptor.Fields) > 0 {
			b.WriteString(mutedStyle.Render("fields " + strings.Join(comp.Descriptor.Fields, ", ")))
			b.WriteString("\n")
		}
		for _, route := range comp.Routes {
			b.WriteString(itemStyle.Render(route.Path))
			b.WriteString("\n")
		}
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}

// Run starts the terminal shell and blocks until the user quits or ctx is
// cancelled. Changes made through other clients of the same stores are
// forwarded into the program.
func Run(ctx context.Context, s *shell.Shell, updates <-chan types.TabsState) error {
	p := tea.NewProgram(New(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))

	if updates != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case state, ok := <-updates:
					if !ok {
						return
					}
					p.Send(stateMsg(state))
				}
			}
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
