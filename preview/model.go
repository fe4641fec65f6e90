// Package preview shows the LED strips in the terminal as the engine
// drives them.
package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"piano-leds/engine"
	"piano-leds/gradient"
	"piano-leds/led"
	"piano-leds/theme"
	"piano-leds/widgets"
)

type keyMap struct {
	Quit   key.Binding
	Legend key.Binding
	Help   key.Binding
}

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

var keys = keyMap{
	Quit:   Key("quit", "q", "ctrl+c"),
	Legend: Key("palette legend", "l"),
	Help:   Key("more help", "?"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit, k.Legend, k.Help}}
}

type Model struct {
	Engine *engine.Engine
	Buffer *led.Buffer
	Theme  *theme.Theme

	help       help.Model
	showLegend bool
	width      int
	quitting   bool
}

// FrameMsg is sent when the buffer changed
type FrameMsg struct{}

// StatusMsg is sent when the engine published a new status
type StatusMsg struct{}

func NewModel(e *engine.Engine, buf *led.Buffer, th *theme.Theme) Model {
	return Model{
		Engine: e,
		Buffer: buf,
		Theme:  th,
		help:   help.New(),
	}
}

func ListenForFrames(buf *led.Buffer) tea.Cmd {
	return func() tea.Msg {
		<-buf.Changed()
		return FrameMsg{}
	}
}

func ListenForStatus(e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		<-e.UpdateChan
		return StatusMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForFrames(m.Buffer),
		ListenForStatus(m.Engine),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Legend):
			m.showLegend = !m.showLegend
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case FrameMsg:
		return m, ListenForFrames(m.Buffer)

	case StatusMsg:
		return m, ListenForStatus(m.Engine)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.Engine.Status()
	frame := m.Buffer.Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	conn := lipgloss.NewStyle().Foreground(m.Theme.Warning()).Render("no keyboard")
	if st.Connected {
		conn = lipgloss.NewStyle().Foreground(m.Theme.Success()).Render(st.Port)
	}
	header := headerStyle.Render("piano-leds") + "  " + conn +
		dimStyle.Render(fmt.Sprintf("  held:%d", st.Held))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	if st.LastEvent != "" {
		out.WriteString(dimStyle.Render("last: " + st.LastEvent))
	}
	out.WriteString("\n\n")

	const labelWidth = 8
	width := m.width - labelWidth
	if m.width == 0 {
		width = 0
	}
	for _, seg := range frame.Segments {
		label := fmt.Sprintf("%-*s", labelWidth, fmt.Sprintf("%d/%d", seg.Strip, seg.ID))
		out.WriteString(widgets.RenderSegment(m.Theme, dimStyle.Render(label), seg.LEDs, width))
		out.WriteString("\n")
	}
	if !frame.On {
		out.WriteString(dimStyle.Render("(strips off)"))
		out.WriteString("\n")
	}

	if m.showLegend && st.Config != nil {
		cfg := st.Config
		out.WriteString("\n")
		bar := max(min(width, 48), 8)
		out.WriteString("  " + widgets.RenderGradient(m.Theme, gradient.Sample(cfg.Palette, bar)))
		out.WriteString(dimStyle.Render(fmt.Sprintf("  %s, %s", cfg.Layout, cfg.Curve)))
		out.WriteString("\n")
		out.WriteString(widgets.RenderLegendItem(m.Theme, cfg.NoteOffColor, "note off",
			fmt.Sprintf("brightness %d", cfg.NoteOffBrightness)))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(m.help.View(keys))
	return out.String()
}
