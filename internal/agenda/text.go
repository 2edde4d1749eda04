package agenda

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorHeader = lipgloss.Color("#fe8019")
	colorToday  = lipgloss.Color("#fabd2f")
	colorDone   = lipgloss.Color("#8ec07c")
	colorDim    = lipgloss.Color("#928374")
)

// Styles decorates the pieces of the text rendering.
type Styles struct {
	Header func(string) string
	Today  func(string) string
	Done   func(string) string
	Dim    func(string) string
}

func plain(s string) string { return s }

func render(st lipgloss.Style) func(string) string {
	return func(s string) string { return st.Render(s) }
}

// PlainStyles leaves text undecorated.
func PlainStyles() Styles {
	return Styles{Header: plain, Today: plain, Done: plain, Dim: plain}
}

// TerminalStyles colors output for an interactive terminal.
func TerminalStyles() Styles {
	return Styles{
		Header: render(lipgloss.NewStyle().Foreground(colorHeader).Bold(true)),
		Today:  render(lipgloss.NewStyle().Foreground(colorToday).Bold(true)),
		Done:   render(lipgloss.NewStyle().Foreground(colorDone).Strikethrough(true)),
		Dim:    render(lipgloss.NewStyle().Foreground(colorDim)),
	}
}

// WriteText renders the agenda for a terminal without decoration.
func WriteText(w io.Writer, a Agenda) error {
	return WriteStyled(w, a, PlainStyles())
}

// WriteStyled renders the agenda with st applied.
func WriteStyled(w io.Writer, a Agenda, st Styles) error {
	var b strings.Builder

	header := a.Greeting
	if a.Patient != "" {
		header += ", " + a.Patient
	}
	fmt.Fprintf(&b, "%s\n", st.Header(header))

	for _, d := range a.Days {
		title := fmt.Sprintf("%s %s (%s)", d.Weekday, d.Key, d.Label)
		if d.Label == "today" {
			title = st.Today(title)
		}
		fmt.Fprintf(&b, "\n%s\n", title)
		if len(d.Items) == 0 {
			fmt.Fprintf(&b, "  %s\n", st.Dim("nothing scheduled"))
			continue
		}
		for _, e := range d.Items {
			line := "[ ] " + e.Title
			if e.Completed {
				line = st.Done("[x] " + e.Title)
			}
			fmt.Fprintf(&b, "  %s - %s\n", line, e.Status)
		}
	}

	if len(a.Assessments) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.Header("Assessments"))
		for _, s := range a.Assessments {
			fmt.Fprintf(&b, "  %s: %s\n", s.Name, st.Dim(s.Recurrence))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
