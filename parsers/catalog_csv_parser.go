package parsers

import (
	"encoding/csv"
	"fmt"
	"io"

	"go.uber.org/zap"

	"stocktake/importer"
)

// ParseCatalogCSV reads a comma-separated catalog export into rows
// keyed by the header line. Malformed lines are skipped with a warning
// rather than failing the upload.
func ParseCatalogCSV(r io.Reader) ([]importer.Row, error) {
	reader := csv.NewReader(SkipBOM(r))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows []importer.Row
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			zap.L().Warn("skipping malformed CSV line", zap.Int("line", line), zap.Error(err))
			continue
		}

		row := make(importer.Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
