package export

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// ErrUnknownFormat is returned by Write for unsupported formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Formats accepted by Write.
const (
	FormatMarkdown = "md"
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatXML      = "xml"
	FormatXLSX     = "xlsx"
)

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

// WriteCSV writes a slice of csv-tagged structs (pointer or value) to path.
func WriteCSV(path string, rows any) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("write csv %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV loads csv-tagged structs from path into out (pointer to slice).
func ReadCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return fmt.Errorf("read csv %s: %w", path, err)
	}
	return nil
}

// WriteTableCSV writes one table with its header row.
func WriteTableCSV(path string, t *Table) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := gocsv.DefaultCSVWriter(f)
	if err := w.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func WriteJSON(path string, v any) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write json %s: %w", path, err)
	}
	return f.Close()
}

func WriteXML(path string, v any) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write xml %s: %w", path, err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func WriteMarkdownFile(path string, r Report) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteMarkdown(f, r); err != nil {
		return err
	}
	return f.Close()
}

var invalidSheetChars = regexp.MustCompile(`[\\/?*\[\]:]`)

// sheetName makes an Excel-safe, unique sheet name (max 31 chars).
func sheetName(heading string, used map[string]bool) string {
	name := strings.TrimSpace(invalidSheetChars.ReplaceAllString(heading, " "))
	if name == "" {
		name = "Sheet"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	base := name
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := " " + strconv.Itoa(i)
		r := []rune(base)
		if len(r)+len(suffix) > 31 {
			r = r[:31-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

// WriteXLSX writes one worksheet per table section. A report without tables
// gets a single sheet with the section texts.
func WriteXLSX(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	used := map[string]bool{}
	first := true
	addSheet := func(heading string) (string, error) {
		name := sheetName(heading, used)
		if first {
			first = false
			return name, f.SetSheetName("Sheet1", name)
		}
		_, err := f.NewSheet(name)
		return name, err
	}

	tables := r.Tables()
	if len(tables) == 0 {
		name, err := addSheet(r.Title)
		if err != nil {
			return err
		}
		row := 1
		for _, s := range r.Sections {
			cells := []any{s.Heading, s.Text}
			if err := f.SetSheetRow(name, "A"+strconv.Itoa(row), &cells); err != nil {
				return err
			}
			row++
		}
	}

	for _, s := range tables {
		name, err := addSheet(s.Heading)
		if err != nil {
			return err
		}
		headers := make([]any, len(s.Table.Headers))
		for i, h := range s.Table.Headers {
			headers[i] = h
		}
		if err := f.SetSheetRow(name, "A1", &headers); err != nil {
			return err
		}
		if len(headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(headers), 1)
			if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
				return err
			}
		}
		for i, row := range s.Table.Rows {
			cells := make([]any, len(row))
			for j, c := range row {
				cells[j] = cellValue(c)
			}
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			if err := f.SetSheetRow(name, cell, &cells); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write xlsx %s: %w", path, err)
	}
	return nil
}

// cellValue stores numeric strings as numbers so spreadsheets can sort them.
func cellValue(s string) any {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}

var slugChars = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(slugChars.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

// DetectFormat maps a file extension to a format constant.
func DetectFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "markdown" {
		return FormatMarkdown
	}
	return ext
}

// Write renders r to path. An empty format is taken from the extension.
// CSV output writes one file per table; with several tables each file name
// gets the section heading as suffix. It returns the files written.
func Write(path, format string, r Report) ([]string, error) {
	if format == "" {
		format = DetectFormat(path)
	}
	switch strings.ToLower(format) {
	case FormatMarkdown:
		return []string{path}, WriteMarkdownFile(path, r)
	case FormatJSON:
		return []string{path}, WriteJSON(path, r)
	case FormatXML:
		return []string{path}, WriteXML(path, r)
	case FormatXLSX:
		return []string{path}, WriteXLSX(path, r)
	case FormatCSV:
		tables := r.Tables()
		if len(tables) == 1 {
			return []string{path}, WriteTableCSV(path, tables[0].Table)
		}
		ext := filepath.Ext(path)
		base := strings.TrimSuffix(path, ext)
		if ext == "" {
			ext = ".csv"
		}
		var written []string
		for _, s := range tables {
			p := base + "_" + slug(s.Heading) + ext
			if err := WriteTableCSV(p, s.Table); err != nil {
				return written, err
			}
			written = append(written, p)
		}
		return written, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
