// Package importer replaces the article catalog from a parsed
// spreadsheet row set. The replace is destructive and atomic: the old
// catalog and the new rows live in one transaction, so a failed batch
// leaves the previous catalog intact.
package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stocktake/barcode"
	"stocktake/database"
	"stocktake/dates"
	"stocktake/model"
)

// DefaultBatchSize is a tuning knob, not a correctness boundary.
const DefaultBatchSize = 800

// Normalize converts raw rows into catalog articles. The first row must
// expose every required column under some accepted header variant; rows
// lacking a primary code or description are dropped silently.
func Normalize(rows []Row) ([]model.Article, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if err := validateHeaders(rows[0]); err != nil {
		return nil, err
	}

	now := dates.NowMilli()
	out := make([]model.Article, 0, len(rows))
	for _, row := range rows {
		code, _ := pick(row, colPrimaryCode)
		desc, _ := pick(row, colDescription)
		internal, _ := pick(row, colInternalCode)
		units, _ := pick(row, colUnitsPerCase)
		weighable, _ := pick(row, colWeighable)
		weighableUnit, _ := pick(row, colWeighableUnit)

		a := model.Article{
			PrimaryCode:    barcode.Normalize(code),
			InternalCode:   strings.TrimSpace(internal),
			Description:    strings.TrimSpace(desc),
			UnitsPerCase:   parseUnits(units),
			Weighable:      parseBool01(weighable),
			WeighableUnit:  parseBool01(weighableUnit),
			UpdatedAtMilli: now,
		}
		if a.PrimaryCode == "" || a.Description == "" {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func validateHeaders(first Row) error {
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := pick(first, col); !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// parseUnits tolerates comma decimals and falls back to 1 for anything
// non-positive or unparsable.
func parseUnits(raw string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

func parseBool01(raw string) int {
	if strings.TrimSpace(raw) == "1" {
		return 1
	}
	return 0
}

// Import replaces the whole catalog with the given rows. Returns the
// number of articles written.
func Import(conn *sqlx.DB, rows []Row, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	articles, err := Normalize(rows)
	if err != nil {
		return 0, err
	}

	tx, err := conn.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to start catalog import transaction: %w", err)
	}
	defer tx.Rollback()

	if err := database.DeleteAllArticles(tx); err != nil {
		return 0, err
	}
	for i := 0; i < len(articles); i += batchSize {
		end := i + batchSize
		if end > len(articles) {
			end = len(articles)
		}
		if err := database.InsertArticles(tx, articles[i:end]); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit catalog import: %w", err)
	}
	zap.L().Info("catalog replaced", zap.Int("articles", len(articles)), zap.Int("rows", len(rows)))
	return len(articles), nil
}
