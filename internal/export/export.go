// Package export writes generated samples to files or streams.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
)

// Format represents the export format.
type Format string

const (
	// FormatCSV writes a card_a,card_b,label table.
	FormatCSV Format = "csv"
	// FormatJSON writes the whole sample as one JSON object.
	FormatJSON Format = "json"
	// FormatJSONL writes one Row object per line.
	FormatJSONL Format = "jsonl"
)

// ParseFormat accepts a format name or a file extension such as ".csv".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	switch f {
	case FormatCSV, FormatJSON, FormatJSONL:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// FormatFor picks a format from a file extension, falling back to def.
func FormatFor(path string, def Format) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return def
}

// Row is one labelled pair.
type Row struct {
	CardA string `json:"card_a"`
	CardB string `json:"card_b"`
	Label int    `json:"label"`
}

// Options holds configuration for export operations.
type Options struct {
	Format     Format
	FilePath   string
	PrettyJSON bool
	Overwrite  bool
}

// Exporter writes samples to a file.
type Exporter struct {
	opts Options
}

// NewExporter creates a new Exporter with the given options.
func NewExporter(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export writes s to the configured file.
func (e *Exporter) Export(s *decks.Sample) (err error) {
	file, err := e.createFile()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return WriteSample(file, e.opts.Format, s, e.opts.PrettyJSON)
}

// createFile creates the output file, handling overwrite settings.
func (e *Exporter) createFile() (*os.File, error) {
	dir := filepath.Dir(e.opts.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(e.opts.FilePath); err == nil && !e.opts.Overwrite {
		return nil, fmt.Errorf("file already exists: %s (use overwrite option to replace)", e.opts.FilePath)
	}

	file, err := os.Create(e.opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}

// WriteSample writes s to w in the given format.
func WriteSample(w io.Writer, format Format, s *decks.Sample, prettyJSON bool) error {
	switch format {
	case FormatCSV:
		return s.WriteCSV(w)
	case FormatJSON:
		encoder := json.NewEncoder(w)
		if prettyJSON {
			encoder.SetIndent("", "  ")
		}
		return encoder.Encode(s)
	case FormatJSONL:
		encoder := json.NewEncoder(w)
		for i, pair := range s.Pairs {
			if len(pair) != 2 {
				return fmt.Errorf("row %d has %d columns, want 2", i, len(pair))
			}
			if err := encoder.Encode(Row{CardA: pair[0], CardB: pair[1], Label: s.Labels[i]}); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// GenerateFilename generates a default filename based on the export type and format.
func GenerateFilename(exportType string, format Format) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", exportType, timestamp, format)
}
