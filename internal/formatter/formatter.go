// package formatter renders playlist items as text tables, CSV, Markdown or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatCSV, FormatMarkdown, FormatJSON}

// ParseFormat validates a format name. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt", "":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Export is a playlist's items as requested with one column preset.
type Export struct {
	Playlist   models.Playlist       `json:"playlist"`
	Preset     models.ColumnPreset   `json:"-"`
	Items      []models.PlaylistItem `json:"-"`
	ExportedAt time.Time             `json:"exportedAt"`
}

// Headers returns the display names of the export's columns.
func (e *Export) Headers() []string {
	return e.Preset.Names()
}

// Rows returns one row per item, padded or truncated to the preset's width.
func (e *Export) Rows() [][]string {
	width := len(e.Preset.Names())
	rows := make([][]string, len(e.Items))
	for i, item := range e.Items {
		row := make([]string, width)
		for j := range row {
			row[j] = item.Field(j)
		}
		rows[i] = row
	}
	return rows
}

// Render encodes e in format f.
func Render(e *Export, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		return ExportToText(e)
	case FormatCSV:
		return ExportToCSV(e)
	case FormatMarkdown:
		return ExportToMarkdown(e)
	case FormatJSON:
		return ExportToJSON(e)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// ExportToCSV converts an Export to CSV with the preset's names as the header row
func ExportToCSV(e *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(e.Headers()); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range e.Rows() {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an Export to a Markdown document with a summary and an item table
func ExportToMarkdown(e *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", e.Playlist.Title)
	fmt.Fprintf(&buf, "**Items**: %d\n", len(e.Items))
	fmt.Fprintf(&buf, "**Duration**: %s\n", shared.FormatDuration(e.Playlist.TotalTime))
	fmt.Fprintf(&buf, "**Columns**: %s\n\n", e.Preset)

	if len(e.Items) == 0 {
		buf.WriteString("_No items._\n")
		return buf.Bytes(), nil
	}

	headers := e.Headers()
	fmt.Fprintf(&buf, "| # | %s |\n", strings.Join(escapeCells(headers), " | "))
	fmt.Fprintf(&buf, "|---|%s|\n", strings.Repeat("---|", len(headers)))
	for i, row := range e.Rows() {
		fmt.Fprintf(&buf, "| %d | %s |\n", i+1, strings.Join(escapeCells(row), " | "))
	}

	return buf.Bytes(), nil
}

// ExportToText converts an Export to a plain text summary followed by a bordered table
func ExportToText(e *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", e.Playlist.Title)
	fmt.Fprintf(&buf, "Items: %d\n\n", len(e.Items))
	buf.WriteString(Table(e.Headers(), e.Rows()))
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// ExportToJSON converts an Export to JSON with one object per item keyed by column name
func ExportToJSON(e *Export) ([]byte, error) {
	headers := e.Headers()
	items := make([]map[string]string, len(e.Items))
	for i, row := range e.Rows() {
		item := make(map[string]string, len(headers))
		for j, h := range headers {
			item[h] = row[j]
		}
		items[i] = item
	}

	doc := struct {
		*Export
		Columns []string            `json:"columns"`
		Items   []map[string]string `json:"items"`
	}{Export: e, Columns: e.Preset.Expressions(), Items: items}

	return shared.MarshalJSON(doc, true)
}

// Table renders rows as a bordered table with a header row.
func Table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

// WriteExport renders e in format f to {dir}/{base}{ext}, creating dir as needed, and returns the written path.
//
// The base name defaults to a filesystem-safe form of the playlist title.
func WriteExport(e *Export, f Format, dir, base string) (string, error) {
	if base == "" {
		base = Slug(e.Playlist.Title)
	}
	if base == "" {
		base = e.Playlist.ID
	}

	data, err := Render(e, f)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", f, err)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	path := filepath.Join(dir, base+f.Ext())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Slug lowercases s and replaces every run of characters outside [a-z0-9] with a single dash.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}
