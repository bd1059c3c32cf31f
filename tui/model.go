package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-arp/sequencer"
	"go-arp/theme"
	"go-arp/widgets"
)

const cellWidth = 4

type Model struct {
	Manager  *sequencer.Manager
	Theme    *theme.Theme
	cursors  map[int]int // edit cursor per lane
	scale    int
	showHelp bool
	quitting bool
}

type UpdateMsg struct{}

func NewModel(manager *sequencer.Manager, th *theme.Theme) Model {
	return Model{
		Manager: manager,
		Theme:   th,
		cursors: make(map[int]int),
		scale:   -1,
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Manager)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	mgr := m.Manager
	lane := mgr.Focused()
	cur := m.cursors[lane]

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		mgr.Stop()
		return m, tea.Quit

	case "p", " ":
		mgr.TogglePlay()

	case "j", "down":
		mgr.SetFocused(lane + 1)
	case "k", "up":
		mgr.SetFocused(lane - 1)

	case "h", "left":
		if cur > 0 {
			m.cursors[lane] = cur - 1
		}
	case "l", "right":
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			if cur < s.Len()-1 {
				m.cursors[lane] = cur + 1
			}
			return nil
		})

	case "m":
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			s.SetMode(sequencer.NextRepeatMode(s.Mode()))
			return nil
		})
	case "M":
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			if s.Mode() == sequencer.ModeMute {
				s.SetMode(sequencer.ModeDown)
			} else {
				s.SetMode(sequencer.ModeMute)
			}
			return nil
		})
	case "o":
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			s.SetMode(sequencer.ModeOne)
			return nil
		})

	case "+", "=":
		m.nudge(lane, cur, 1)
	case "-", "_":
		m.nudge(lane, cur, -1)
	case "]":
		m.nudge(lane, cur, 12)
	case "[":
		m.nudge(lane, cur, -12)

	case ".":
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			notes := s.Notes()
			if cur >= len(notes) {
				return nil
			}
			if notes[cur].OK {
				return s.SetNote(cur, sequencer.Rest)
			}
			return s.SetNote(cur, sequencer.N(0))
		})

	case "a":
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			s.AddNote()
			m.cursors[lane] = s.Len() - 1
			return nil
		})
	case "x":
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			// keep at least one note, advancing an empty step is an error
			if s.Len() <= 1 {
				return nil
			}
			if err := s.DeleteNote(cur); err != nil {
				return err
			}
			if cur >= s.Len() {
				m.cursors[lane] = s.Len() - 1
			}
			return nil
		})

	case "enter":
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			s.Queue(cur)
			return nil
		})

	case "r":
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			s.SetRepeat(s.ModeSpecific().Repeat%8 + 1)
			return nil
		})
	case "w":
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			s.SetWrap(!s.ModeSpecific().Wrap)
			return nil
		})
	case "T":
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			s.SetTranspose(s.ModeSpecific().Transpose + 12)
			return nil
		})
	case "ctrl+t":
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			s.SetTranspose(s.ModeSpecific().Transpose - 12)
			return nil
		})

	case "i":
		lanes := len(mgr.Snapshot().Lanes)
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			s.SetMimicStep((s.ModeSpecific().MimicStep + 1) % lanes)
			return nil
		})

	case "s":
		names := sequencer.ScaleNames()
		m.scale = (m.scale + 1) % len(names)
		mgr.WithLane(lane, func(s *sequencer.Step) error {
			s.SetNotes(sequencer.ScaleNotes(names[m.scale]))
			m.cursors[lane] = 0
			return nil
		})

	case "t":
		mgr.SetTempo(mgr.Settings().Tempo + 5)
	case "y":
		mgr.SetTempo(mgr.Settings().Tempo - 5)
	case "g":
		mgr.SetGate(mgr.Settings().Gate + 5)
	case "G":
		mgr.SetGate(mgr.Settings().Gate - 5)
	case "d":
		mgr.NextDivision()
	case "D":
		mgr.NextDividend()

	case "O":
		mgr.NextOutput()

	case "?":
		m.showHelp = !m.showHelp
	}

	return m, nil
}

func (m Model) nudge(lane, idx, delta int) {
	m.Manager.WithLane(lane, func(s *sequencer.Step) error {
		notes := s.Notes()
		if idx >= len(notes) {
			return nil
		}
		n := notes[idx]
		if !n.OK {
			n = sequencer.N(0)
		}
		return s.SetNote(idx, n.Transpose(delta))
	})
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Manager.Snapshot()
	set := snap.Settings

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	playState := dimStyle.Render("STOP")
	if snap.Playing {
		playState = lipgloss.NewStyle().Foreground(m.Theme.Active()).Bold(true).Render("PLAY")
	}
	port := snap.Port
	if port == "" {
		port = "no output"
	}
	header := headerStyle.Render("go-arp  ") + playState + headerStyle.Render(fmt.Sprintf("  %3dbpm  %d/%d  gate %d%%  tick:%04d  → %s",
		set.Tempo, set.Dividend, set.Denominator, set.Gate, snap.Tick, port))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	for i, lane := range snap.Lanes {
		out.WriteString(m.renderLane(i, lane, snap.Focused == i, set.RootNote))
		out.WriteString("\n")
	}

	if len(snap.Last) > 0 {
		var evts []string
		for _, e := range snap.Last {
			evts = append(evts, e.String())
		}
		out.WriteString("\n")
		out.WriteString(dimStyle.Render("sent: " + strings.Join(evts, "  ")))
	}
	if snap.Err != nil {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render("error: " + snap.Err.Error()))
	}

	out.WriteString("\n\n")
	if m.showHelp {
		out.WriteString(fgStyle.Render(keyHelp()))
	} else {
		out.WriteString(dimStyle.Render("jk:lane hl:cursor m:mode +/-:note enter:queue p:play ?:help q:quit"))
	}
	return out.String()
}

func (m Model) renderLane(idx int, lane sequencer.LaneView, focused bool, root int) string {
	sym := m.Theme.Symbols
	marker := sym.LaneIdle
	labelStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	if focused {
		marker = sym.LaneFocus
		labelStyle = lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	}

	wrap := "walk"
	if lane.Wrap {
		wrap = "wrap"
	}
	label := fmt.Sprintf("%c L%d %-6s x%d %s %+3d", marker, idx+1, lane.Mode, lane.Repeat, wrap, lane.Transpose)

	cells := make([]widgets.Cell, len(lane.Notes))
	for i, n := range lane.Notes {
		c := widgets.Cell{
			Text:   string(sym.NoteRest),
			Color:  m.Theme.Muted(),
			Active: i == lane.Index,
			Cursor: focused && i == m.cursors[idx],
		}
		if n.OK {
			abs := n.Num + root + lane.Transpose
			c.Text = sequencer.NoteName(abs)
			if c.Text == "" {
				c.Text = "!" + n.String()
			}
			c.Color = m.Theme.NoteColor(abs)
		}
		if i == lane.Queued {
			c.Text = string(sym.NoteQueued) + c.Text
		}
		cells[i] = c
	}

	return labelStyle.Render(label) + "  " + widgets.RenderCellRow(cells, cellWidth)
}

func keyHelp() string {
	return widgets.RenderKeyHelp([]widgets.KeySection{
		{Title: "Transport", Keys: []widgets.KeyBinding{
			{Key: "p / space", Desc: "play / stop"},
			{Key: "t / y", Desc: "tempo up / down"},
			{Key: "g / G", Desc: "gate up / down"},
			{Key: "d / D", Desc: "cycle note length denominator / numerator"},
			{Key: "O", Desc: "next output port"},
		}},
		{Title: "Lane", Keys: []widgets.KeyBinding{
			{Key: "j / k", Desc: "focus next / previous lane"},
			{Key: "m", Desc: "cycle mode (DOWN UP BOTH RANDOM DRUNK)"},
			{Key: "o / M", Desc: "ONE mode / toggle mute"},
			{Key: "r", Desc: "repeat 1-8"},
			{Key: "w", Desc: "toggle drunk wrap"},
			{Key: "i", Desc: "cycle mimic source lane"},
			{Key: "T / ctrl+t", Desc: "transpose octave up / down"},
			{Key: "s", Desc: "fill with next scale"},
		}},
		{Title: "Notes", Keys: []widgets.KeyBinding{
			{Key: "h / l", Desc: "move cursor"},
			{Key: "+ / -", Desc: "semitone up / down"},
			{Key: "] / [", Desc: "octave up / down"},
			{Key: ".", Desc: "toggle rest"},
			{Key: "a / x", Desc: "add / delete note"},
			{Key: "enter", Desc: "queue note at cursor"},
		}},
	})
}
