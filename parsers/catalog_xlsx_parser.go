// Package parsers turns uploaded catalog files into raw row maps for
// the importer. Header interpretation (synonyms, slugs) stays in the
// importer; this layer only reads cells.
package parsers

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"stocktake/importer"
)

// ParseCatalogXLSX reads the first sheet of an xlsx workbook into rows
// keyed by the header row. Cells missing from short rows come back as
// empty strings.
func ParseCatalogXLSX(r io.Reader) ([]importer.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	out := make([]importer.Row, 0, len(rows)-1)
	for _, rec := range rows[1:] {
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
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return out, nil
}
