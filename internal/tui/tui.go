// Package tui is the interactive policy source: it renders the decision
// menu in the terminal and returns the option the user picks.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeffeharris/my-poker-face-sub006/internal/advisor"
	"github.com/jeffeharris/my-poker-face-sub006/internal/betting"
	"github.com/jeffeharris/my-poker-face-sub006/internal/deck"
	"github.com/jeffeharris/my-poker-face-sub006/internal/options"
)

// Source runs one Bubble Tea program per decision. It implements the
// advisor's PolicySource; aborting the picker surfaces as an error so
// the advisor substitutes its fallback.
type Source struct {
	// ProgramOptions lets tests inject a nil renderer and scripted input
	ProgramOptions []tea.ProgramOption
}

// Choose presents the menu and blocks until a selection or abort
func (s *Source) Choose(ctx context.Context, state advisor.GameState, menu []options.Option) (betting.Decision, error) {
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, s.ProgramOptions...)
	p := tea.NewProgram(newModel(state, menu), opts...)

	final, err := p.Run()
	if err != nil {
		return betting.Decision{}, fmt.Errorf("menu picker: %w", err)
	}
	m, ok := final.(model)
	if !ok || m.chosen < 0 {
		return betting.Decision{}, fmt.Errorf("menu picker aborted")
	}
	opt := menu[m.chosen]
	return betting.Decision{Action: opt.Action, Amount: opt.Amount}, nil
}

type model struct {
	state  advisor.GameState
	menu   []options.Option
	cursor int
	chosen int
}

func newModel(state advisor.GameState, menu []options.Option) model {
	return model{state: state, menu: menu, chosen: -1}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.menu)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.chosen = m.cursor
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	r := m.state.Round
	header := fmt.Sprintf(" %s — pot %d ", r.Street, r.Pot)
	if toCall := r.ToCall(m.state.Seat); toCall > 0 {
		header += fmt.Sprintf("— %d to call ", toCall)
	}
	b.WriteString(HeaderStyle.Render(header))
	b.WriteString("\n\n")

	b.WriteString("  hand:  " + renderCards(m.state.Hole) + "\n")
	if len(m.state.Board) > 0 {
		b.WriteString("  board: " + renderCards(m.state.Board) + "\n")
	}
	b.WriteString("\n")

	for i, opt := range m.menu {
		cursor := "  "
		line := optionLine(opt)
		if i == m.cursor {
			cursor = CursorStyle.Render("> ")
			line = CursorStyle.Render(line)
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, line, zoneBadge(opt.Zone)))
	}

	if m.cursor < len(m.menu) {
		b.WriteString("\n" + RationaleStyle.Render("  "+m.menu[m.cursor].Rationale) + "\n")
	}
	b.WriteString(RationaleStyle.Render("\n  up/down to move, enter to act, q to let the advisor decide\n"))
	return b.String()
}

func optionLine(opt options.Option) string {
	if opt.Amount > 0 {
		return fmt.Sprintf("%s to %d", opt.Action, opt.Amount)
	}
	return opt.Action.String()
}

func zoneBadge(z options.Zone) string {
	switch z {
	case options.PlusEV:
		return PlusEVStyle.Render("[" + z.String() + "]")
	case options.Marginal:
		return MarginalStyle.Render("[" + z.String() + "]")
	default:
		return MinusEVStyle.Render("[" + z.String() + "]")
	}
}

func renderCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		style := BlackCardStyle
		if c.IsRed() {
			style = RedCardStyle
		}
		parts[i] = style.Render(c.String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, " "))
}
