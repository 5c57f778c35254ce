// Package export renders reports and row sets as Markdown, CSV, JSON, XML and XLSX files.
package export

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Report is a titled list of sections. Every output format renders the same structure.
type Report struct {
	XMLName     xml.Name  `json:"-" xml:"report"`
	Title       string    `json:"title" xml:"title,attr"`
	GeneratedAt time.Time `json:"generated_at" xml:"generated_at,attr"`
	Sections    []Section `json:"sections" xml:"section"`
}

// Section is a heading with optional prose and an optional table.
type Section struct {
	Heading string `json:"heading" xml:"heading,attr"`
	Text    string `json:"text,omitempty" xml:"text,omitempty"`
	Table   *Table `json:"table,omitempty" xml:"table,omitempty"`
}

type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// NewTable returns an empty table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends one row, formatting each value with FormatCell.
func (t *Table) AddRow(values ...any) {
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = FormatCell(v)
	}
	t.Rows = append(t.Rows, row)
}

// MarshalXML writes rows as <row><cell>..</cell></row> since encoding/xml
// cannot express [][]string directly.
func (t Table) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	type row struct {
		Cells []string `xml:"cell"`
	}
	out := struct {
		Headers []string `xml:"header>column"`
		Rows    []row    `xml:"row"`
	}{Headers: t.Headers}
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, row{Cells: r})
	}
	return e.EncodeElement(out, start)
}

// AddSection appends a section and returns the report for chaining.
func (r *Report) AddSection(heading, text string, table *Table) *Report {
	r.Sections = append(r.Sections, Section{Heading: heading, Text: text, Table: table})
	return r
}

// Tables returns the sections that carry a table.
func (r Report) Tables() []Section {
	var out []Section
	for _, s := range r.Sections {
		if s.Table != nil {
			out = append(out, s)
		}
	}
	return out
}

// FormatCell renders a value for a table cell. Floats get two decimals.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', 2, 32)
	case time.Time:
		return x.UTC().Format("2006-01-02 15:04")
	case time.Duration:
		return x.Round(time.Second).String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Percent formats a [0,1] ratio as "55.0%".
func Percent(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', 1, 64) + "%"
}

// WriteMarkdown renders the report as GitHub-flavored Markdown.
func WriteMarkdown(w io.Writer, r Report) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n\n", r.Title)
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(bw, "_Generated %s_\n\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	for _, s := range r.Sections {
		fmt.Fprintf(bw, "## %s\n\n", s.Heading)
		if s.Text != "" {
			fmt.Fprintf(bw, "%s\n\n", strings.TrimSpace(s.Text))
		}
		if s.Table != nil {
			writeMarkdownTable(bw, s.Table)
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

func writeMarkdownTable(w *bufio.Writer, t *Table) {
	if len(t.Headers) == 0 {
		return
	}
	w.WriteString("| " + strings.Join(escapeCells(t.Headers), " | ") + " |\n")
	sep := make([]string, len(t.Headers))
	for i := range sep {
		sep[i] = "---"
	}
	w.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range t.Rows {
		cells := make([]string, len(t.Headers))
		copy(cells, row)
		w.WriteString("| " + strings.Join(escapeCells(cells), " | ") + " |\n")
	}
	if len(t.Rows) == 0 {
		w.WriteString("\n_No data._\n")
	}
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", `\|`)
		out[i] = strings.ReplaceAll(c, "\n", " ")
	}
	return out
}
