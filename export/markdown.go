package export

import (
	"fmt"
	"strings"

	"github.com/mean-machine-gc/ubispec/derive"
)

// MarkdownWriter builds Markdown documents with pipe tables.
type MarkdownWriter struct {
	sb strings.Builder
}

// NewMarkdownWriter creates an empty writer.
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

// Heading writes a heading at the given level.
func (w *MarkdownWriter) Heading(level int, text string) {
	w.sb.WriteString(strings.Repeat("#", level))
	w.sb.WriteString(" ")
	w.sb.WriteString(text)
	w.sb.WriteString("\n\n")
}

// Paragraph writes one paragraph.
func (w *MarkdownWriter) Paragraph(text string) {
	w.sb.WriteString(text)
	w.sb.WriteString("\n\n")
}

// Item writes one bullet item.
func (w *MarkdownWriter) Item(text string) {
	w.sb.WriteString("- ")
	w.sb.WriteString(text)
	w.sb.WriteString("\n")
}

// EndList terminates a bullet list.
func (w *MarkdownWriter) EndList() {
	w.sb.WriteString("\n")
}

// Table writes one pipe table with a header row.
func (w *MarkdownWriter) Table(header []string, rows [][]string) {
	w.row(header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	w.row(sep)
	for _, r := range rows {
		w.row(r)
	}
	w.sb.WriteString("\n")
}

func (w *MarkdownWriter) row(cells []string) {
	w.sb.WriteString("| ")
	w.sb.WriteString(strings.Join(cells, " | "))
	w.sb.WriteString(" |\n")
}

// String returns the document built so far.
func (w *MarkdownWriter) String() string {
	return w.sb.String()
}

// DecisionTableMarkdown renders one decision table. Truth cells read
// T/F, failure rows show the violated constraints.
func DecisionTableMarkdown(t *derive.Table) string {
	w := NewMarkdownWriter()
	w.Heading(2, fmt.Sprintf("%s / %s", t.Decider, t.Command))

	header := append(append([]string{"#"}, t.Columns...), "Result")
	rows := make([][]string, 0, len(t.Rows))
	for i, r := range t.Rows {
		cells := make([]string, 0, len(header))
		cells = append(cells, fmt.Sprintf("%d", i+1))
		for _, v := range r.Truth {
			if v {
				cells = append(cells, "T")
			} else {
				cells = append(cells, "F")
			}
		}
		cells = append(cells, r.Output)
		rows = append(rows, cells)
	}
	w.Table(header, rows)
	return w.String()
}

// ChecklistMarkdown renders the validation checklist.
func ChecklistMarkdown(cl *derive.Checklist) string {
	w := NewMarkdownWriter()
	for _, s := range cl.Sections {
		w.Heading(2, fmt.Sprintf("%s / %s", s.Decider, s.Command))
		if s.Actor != "" {
			w.Paragraph("Actor: " + s.Actor)
		}
		if len(s.Preconditions) > 0 {
			w.Heading(3, "Preconditions")
			for _, p := range s.Preconditions {
				w.Item(p)
			}
			w.EndList()
		}
		w.Heading(3, "On success")
		for _, e := range s.OnSuccess {
			w.Item(e)
		}
		w.EndList()
		for _, g := range s.After {
			w.Heading(3, "After: "+g.Key)
			for _, a := range g.Assertions {
				w.Item(a)
			}
			w.EndList()
		}
		w.Heading(3, "On failure")
		w.Paragraph(s.OnFailure)
	}
	return w.String()
}

// CatalogMarkdown renders the command catalog as one flat table.
func CatalogMarkdown(rows []derive.CatalogRow) string {
	w := NewMarkdownWriter()
	w.Heading(2, "Command catalog")
	header := []string{"Command", "Decider", "Constraints", "Unconditional", "Conditional", "Reads ctx", "Reacted to"}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			r.Command,
			r.Decider,
			fmt.Sprintf("%d", r.Constraints),
			fmt.Sprintf("%d", r.Unconditional),
			fmt.Sprintf("%d", r.Conditional),
			yesNo(r.ReadsContext),
			yesNo(r.ReactedToUpstream),
		})
	}
	w.Table(header, cells)
	return w.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
