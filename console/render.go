package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const accent = lipgloss.Color("#8BC34A")

type styles struct {
	sector lipgloss.Style
	more   lipgloss.Style
	status lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
}

// newStyles binds the styles to w so colors are dropped when w is not a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		sector: r.NewStyle().Bold(true).Foreground(accent),
		more:   r.NewStyle().Faint(true),
		status: r.NewStyle().Italic(true),
		header: r.NewStyle().Bold(true).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
	}
}

func checkbox(selected bool) string {
	if selected {
		return "[x]"
	}
	return "[ ]"
}

// Render writes every sector group of state as a table.
func Render(w io.Writer, state State) error {
	st := newStyles(w)
	groups := state.Groups()
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, st.more.Render("No contacts"))
		return err
	}

	for _, group := range groups {
		header := fmt.Sprintf("%s %s (%d)", checkbox(group.Selected), group.Sector, group.Total)
		if _, err := fmt.Fprintln(w, st.sector.Render(header)); err != nil {
			return err
		}

		rows := make([][]string, 0, len(group.Visible))
		for _, row := range group.Visible {
			rows = append(rows, []string{
				checkbox(row.Selected),
				strconv.Itoa(row.Contact.Id),
				row.Contact.Name,
				row.Contact.Phone,
				row.Contact.Email,
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("", "ID", "Name", "Phone", "E-mail").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return st.header
				}
				return st.cell
			})
		if _, err := fmt.Fprintln(w, t.String()); err != nil {
			return err
		}

		if group.Remaining > 0 {
			more := fmt.Sprintf("Show more (%d remaining)", group.Remaining)
			if _, err := fmt.Fprintln(w, st.more.Render(more)); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderStatus writes the outcome of the last action, if any.
func RenderStatus(w io.Writer, status string) error {
	if status == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, newStyles(w).status.Render(status))
	return err
}
