package tags

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadTappedoutRows reads a "card,tag" CSV export. A header row is skipped
// when its first column is "card".
func ReadTappedoutRows(r io.Reader) ([]TappedoutRow, error) {
	records, err := readRecords(r, 2)
	if err != nil {
		return nil, err
	}

	rows := make([]TappedoutRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, TappedoutRow{Card: rec[0], Tag: rec[1]})
	}
	return rows, nil
}

// ReadMetamoxRows reads a "card,tag,subtag" CSV export. The subtag column may
// be empty or missing.
func ReadMetamoxRows(r io.Reader) ([]MetamoxRow, error) {
	records, err := readRecords(r, 2)
	if err != nil {
		return nil, err
	}

	rows := make([]MetamoxRow, 0, len(records))
	for _, rec := range records {
		row := MetamoxRow{Card: rec[0], Tag: rec[1]}
		if len(rec) > 2 {
			row.Subtag = rec[2]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readRecords(r io.Reader, minFields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records [][]string
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tag rows: %w", err)
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(rec[0], "card") {
			continue
		}
		if len(rec) < minFields {
			return nil, fmt.Errorf("tag row %d: expected at least %d fields, got %d", line, minFields, len(rec))
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if rec[0] == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
