package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"ListingCrawler/internal/domain"
	"ListingCrawler/internal/ports"
)

// Format names an output rendering.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatLines    Format = "lines"
)

// Writer renders listings to an io.Writer in one of the supported formats.
type Writer struct {
	format Format
	out    io.Writer
}

var _ ports.ListingWriter = (*Writer)(nil)

// NewWriter validates the format name.
func NewWriter(format string, out io.Writer) (*Writer, error) {
	switch f := Format(format); f {
	case FormatTable, FormatCSV, FormatMarkdown, FormatJSON, FormatLines:
		return &Writer{format: f, out: out}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// Write renders all listings in one go.
func (w *Writer) Write(listings []domain.Listing) error {
	switch w.format {
	case FormatJSON:
		return w.writeJSON(listings)
	case FormatLines:
		return w.writeLines(listings)
	default:
		return w.writeTable(listings)
	}
}

func (w *Writer) writeTable(listings []domain.Listing) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Title", "Year", "Detail link", "Poster link"})
	for _, l := range listings {
		t.AppendRow(table.Row{l.Title, l.Year, l.DetailLink, l.PosterLink})
	}

	var rendered string
	switch w.format {
	case FormatCSV:
		rendered = t.RenderCSV()
	case FormatMarkdown:
		rendered = t.RenderMarkdown()
	default:
		t.SetAutoIndex(true)
		t.SetStyle(table.StyleLight)
		rendered = t.Render()
	}

	if _, err := fmt.Fprintln(w.out, rendered); err != nil {
		return fmt.Errorf("write %s: %w", w.format, err)
	}
	return nil
}

func (w *Writer) writeJSON(listings []domain.Listing) error {
	if listings == nil {
		listings = []domain.Listing{}
	}
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(listings); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func (w *Writer) writeLines(listings []domain.Listing) error {
	for _, l := range listings {
		line := strings.Join([]string{l.Title, l.Year, l.DetailLink, l.PosterLink}, "\t")
		if _, err := fmt.Fprintln(w.out, line); err != nil {
			return fmt.Errorf("write lines: %w", err)
		}
	}
	return nil
}
