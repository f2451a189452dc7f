package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/halcyonlab/handles/heap"
	"github.com/halcyonlab/handles/rc"
	"github.com/halcyonlab/handles/track"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	strongStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	weakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	deadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type handleKind int

const (
	kindStrong handleKind = iota
	kindWeak
)

// handleEntry is one live handle in the playground.
type handleEntry struct {
	strong *rc.Rc[string]
	weak   *rc.Weak[string]
	name   string
	kind   handleKind
}

type modelState int

const (
	stateInputValue modelState = iota
	statePlayground
	stateDestroyed
)

type playgroundModel struct {
	tracked   *track.Allocator
	input     textinput.Model
	entries   []handleEntry
	events    []string
	selected  int
	nextID    int
	state     modelState
	destroyed bool
}

func newPlaygroundModel() *playgroundModel {
	ti := textinput.New()
	ti.Placeholder = "initial value"
	ti.Prompt = "value: "
	ti.Width = 40
	ti.Focus()

	return &playgroundModel{
		input:   ti,
		tracked: track.New(heap.NewCounting(), track.WithLabel("playground")),
		state:   stateInputValue,
	}
}

func (m *playgroundModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *playgroundModel) start(value string) {
	m.destroyed = false
	root := rc.NewIn(m.tracked, value, func(*string) { m.destroyed = true })
	m.entries = []handleEntry{{strong: root, name: "s1", kind: kindStrong}}
	m.selected = 0
	m.nextID = 2
	m.logEvent("created s1 (strong=1)")
	m.state = statePlayground
}

func (m *playgroundModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateInputValue {
				return m, tea.Quit
			}
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == statePlayground && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == statePlayground && m.selected < len(m.entries)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateInputValue:
				value := m.input.Value()
				if value == "" {
					value = "hello"
				}
				m.start(value)
				return m, nil
			case stateDestroyed:
				m.input.SetValue("")
				m.input.Focus()
				m.state = stateInputValue
				return m, textinput.Blink
			}

		case "c":
			if m.state == statePlayground {
				m.cloneSelected()
			}

		case "d":
			if m.state == statePlayground {
				m.dropSelected()
			}

		case "w":
			if m.state == statePlayground {
				m.downgradeSelected()
			}

		case "u":
			if m.state == statePlayground {
				m.upgradeSelected()
			}
		}
	}

	if m.state == stateInputValue {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *playgroundModel) cloneSelected() {
	e := m.entries[m.selected]
	switch e.kind {
	case kindStrong:
		name := fmt.Sprintf("s%d", m.nextID)
		m.entries = append(m.entries, handleEntry{strong: e.strong.Clone(), name: name, kind: kindStrong})
		m.logEvent(fmt.Sprintf("%s = %s.Clone() (strong=%d)", name, e.name, e.strong.StrongCount()))
	case kindWeak:
		name := fmt.Sprintf("w%d", m.nextID)
		m.entries = append(m.entries, handleEntry{weak: e.weak.Clone(), name: name, kind: kindWeak})
		m.logEvent(fmt.Sprintf("%s = %s.Clone() (weak=%d)", name, e.name, e.weak.WeakCount()))
	}
	m.nextID++
}

func (m *playgroundModel) dropSelected() {
	e := m.entries[m.selected]
	switch e.kind {
	case kindStrong:
		e.strong.Drop()
		m.logEvent(fmt.Sprintf("%s.Drop()", e.name))
	case kindWeak:
		e.weak.Drop()
		m.logEvent(fmt.Sprintf("%s.Drop()", e.name))
	}
	m.entries = append(m.entries[:m.selected], m.entries[m.selected+1:]...)
	if m.selected >= len(m.entries) && m.selected > 0 {
		m.selected--
	}
	if m.destroyed {
		// Log the destruction once, on the transition; later weak
		// drops are ordinary events.
		m.destroyed = false
		m.logEvent("value destroyed: the last strong handle is gone")
	}
	if len(m.entries) == 0 {
		m.state = stateDestroyed
	}
}

func (m *playgroundModel) downgradeSelected() {
	e := m.entries[m.selected]
	if e.kind != kindStrong {
		m.logEvent(fmt.Sprintf("%s is already weak", e.name))
		return
	}
	name := fmt.Sprintf("w%d", m.nextID)
	m.nextID++
	m.entries = append(m.entries, handleEntry{weak: e.strong.Downgrade(), name: name, kind: kindWeak})
	m.logEvent(fmt.Sprintf("%s = %s.Downgrade() (weak=%d)", name, e.name, e.strong.WeakCount()))
}

func (m *playgroundModel) upgradeSelected() {
	e := m.entries[m.selected]
	if e.kind != kindWeak {
		m.logEvent(fmt.Sprintf("%s is already strong", e.name))
		return
	}
	h, ok := e.weak.Upgrade()
	if !ok {
		m.logEvent(fmt.Sprintf("%s.Upgrade() -> none: the value is gone", e.name))
		return
	}
	name := fmt.Sprintf("s%d", m.nextID)
	m.nextID++
	m.entries = append(m.entries, handleEntry{strong: h, name: name, kind: kindStrong})
	m.logEvent(fmt.Sprintf("%s = %s.Upgrade() (strong=%d)", name, e.name, h.StrongCount()))
}

func (m *playgroundModel) logEvent(s string) {
	m.events = append(m.events, s)
	if len(m.events) > 8 {
		m.events = m.events[len(m.events)-8:]
	}
}

func (m *playgroundModel) counts() (strong, weak uint64, value string, alive bool) {
	for _, e := range m.entries {
		if e.kind == kindStrong {
			return e.strong.StrongCount(), e.strong.WeakCount(), *e.strong.Get(), true
		}
	}
	// Only weak handles remain; they can still report the counts.
	w := m.entries[0].weak
	return w.StrongCount(), w.WeakCount(), "", false
}

func (m *playgroundModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Handle Playground"))
	b.WriteString("\n\n")

	switch m.state {
	case stateInputValue:
		b.WriteString("Value to share through an Rc family:\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter start • ctrl+c quit"))

	case statePlayground:
		strong, weak, value, alive := m.counts()
		if alive {
			b.WriteString(fmt.Sprintf("value %q   strong=%d weak=%d   allocations=%d\n\n",
				value, strong, weak, m.tracked.Len()))
		} else {
			b.WriteString(deadStyle.Render("value destroyed") +
				fmt.Sprintf("   strong=%d weak=%d   allocations=%d\n\n", strong, weak, m.tracked.Len()))
		}

		for i, e := range m.entries {
			line := e.name
			if e.kind == kindStrong {
				line = strongStyle.Render(line + " (strong)")
			} else {
				line = weakStyle.Render(line + " (weak)")
			}
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}

		b.WriteString("\n")
		for _, e := range m.events {
			b.WriteString(eventStyle.Render("· " + e))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • c clone • d drop • w downgrade • u upgrade • q quit"))

	case stateDestroyed:
		b.WriteString("All handles dropped.\n\n")
		if m.tracked.Len() == 0 {
			b.WriteString(eventStyle.Render("Every allocation was freed: value slot and control block."))
		} else {
			b.WriteString(deadStyle.Render(fmt.Sprintf("%d allocations still live.", m.tracked.Len())))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter new family • q quit"))
	}

	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newPlaygroundModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
