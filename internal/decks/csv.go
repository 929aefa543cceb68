package decks

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVHeader is the header row written by Sample.WriteCSV.
var CSVHeader = []string{"card_a", "card_b", "label"}

// WriteCSV writes one row per pair followed by its label.
func (s *Sample) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, 0, len(CSVHeader))
	for i, pair := range s.Pairs {
		record = append(record[:0], pair...)
		record = append(record, strconv.Itoa(s.Labels[i]))
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
