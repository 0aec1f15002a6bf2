package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"voice-sheet/internal/session"
)

const cellWidth = 12

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	cellStyle     = lipgloss.NewStyle().Width(cellWidth).MaxWidth(cellWidth).PaddingRight(1)
	cursorStyle   = cellStyle.Reverse(true)
	modifiedStyle = cellStyle.Foreground(lipgloss.Color("#FFB86C"))
	lockedStyle   = cellStyle.Faint(true)
	labelStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)

	levelStyles = map[session.Level]lipgloss.Style{
		session.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")),
		session.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")),
		session.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F1FA8C")),
		session.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")),
	}
)

func (m Model) View() string {
	if !m.s.IsOpen() {
		return "no sheet open\n"
	}
	var b strings.Builder

	id := m.s.Sheet()
	title := titleStyle.Render(fmt.Sprintf("%s › %s", id.FileID, id.SheetName))
	changes := dimStyle.Render(fmt.Sprintf("  %d unsaved", m.s.ChangeCount()))
	if m.s.Saving() {
		changes += dimStyle.Render("  saving…")
	}
	b.WriteString(title + changes + "\n")

	f := m.s.Filter()
	b.WriteString(dimStyle.Render(fmt.Sprintf("F1 %s  F2 %s  F3 %s",
		orDash(f.Selection.Level1), orDash(f.Selection.Level2), orDash(f.Selection.Level3))) + "\n\n")

	b.WriteString(m.grid())
	b.WriteString("\n")

	p := m.s.Position()
	b.WriteString(labelStyle.Render(m.s.CurrentLabel()) + " ")
	b.WriteString(m.input.View())
	if orig := m.s.Store().OriginalValue(p.Row, p.Col); orig != m.s.CurrentValue() {
		b.WriteString(dimStyle.Render("  was " + orDash(orig)))
	}
	b.WriteString("\n")

	if n := m.status.Last(); n.Message != "" {
		line := n.Message
		if n.URL != "" {
			line += " " + n.URL
		}
		b.WriteString(levelStyles[n.Level].Render(line))
	}
	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}

// grid renders the header row and a window of rows and columns that keeps
// the cursor visible.
func (m Model) grid() string {
	bounds := m.s.Bounds()
	labels := m.s.Labels()
	p := m.s.Position()

	rowStart, rowEnd := window(p.Row, bounds.FirstRow, bounds.LastRow, m.opts.VisibleRows)
	colStart, colEnd := window(p.Col, 0, len(labels)-1, m.opts.VisibleCols)

	var lines []string
	var hdr []string
	for c := colStart; c <= colEnd; c++ {
		hdr = append(hdr, headerStyle.Inherit(cellStyle).Render(labels[c]))
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, hdr...))

	store := m.s.Store()
	for r := rowStart; r <= rowEnd; r++ {
		var row []string
		for c := colStart; c <= colEnd; c++ {
			cell := store.Cell(r, c)
			st := cellStyle
			switch {
			case r == p.Row && c == p.Col:
				st = cursorStyle
			case cell.Modified != nil:
				st = modifiedStyle
			case !bounds.Contains(r, c):
				st = lockedStyle
			}
			row = append(row, st.Render(cell.Value()))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(lines, "\n") + "\n"
}

// window returns the inclusive range of at most size indexes in [lo, hi]
// that contains pos, scrolled as little as possible from lo.
func window(pos, lo, hi, size int) (int, int) {
	if hi < lo {
		return lo, lo - 1
	}
	start := lo
	if pos-start >= size {
		start = pos - size + 1
	}
	end := start + size - 1
	if end > hi {
		end = hi
	}
	return start, end
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
