// Package export writes a counted session to an xlsx workbook: one
// sheet of line items and one summary sheet. Plain and expiry sessions
// share the same column layout; the expiry date is always the last
// column and stays blank for plain sessions.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"stocktake/database"
	"stocktake/dates"
	"stocktake/metrics"
	"stocktake/model"
)

// ErrNoItems signals an export request against a session with no lines.
var ErrNoItems = errors.New("session has no items to export")

// Result describes a produced workbook.
type Result struct {
	FileName string `json:"fileName"`
	Rows     int    `json:"rows"`
}

var header = []interface{}{
	"ean",
	"codigo articulo",
	"descripcion",
	"unidades por bulto",
	"bultos",
	"cantidad",
	"fecha de ingreso",
	"fecha de vencimiento",
}

// WriteSession renders the session's lines (per its kind) into w.
func WriteSession(conn *sqlx.DB, sessionID int64, w io.Writer) (*Result, error) {
	s, err := database.GetSessionByID(conn, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("session %d not found", sessionID)
	}

	var rows [][]interface{}
	sheetName := "inventario"
	exportType := "cantidades"
	if s.Kind == model.SessionKindExpiry {
		sheetName = "vencimientos"
		exportType = "vencimientos"
		items, err := database.ListExpiryItems(conn, sessionID)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			rows = append(rows, lineRow(it.Code, it.InternalCode, it.Description, it.UnitsPerCase,
				it.Quantity, it.TsMilli, dates.FormatDate(it.ExpiryMilli)))
		}
	} else {
		items, err := database.ListPlainItems(conn, sessionID)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			rows = append(rows, lineRow(it.Code, it.InternalCode, it.Description, it.UnitsPerCase,
				it.Quantity, it.TsMilli, ""))
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoItems
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &rows[i]); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := writeSummary(f, s, exportType, len(rows)); err != nil {
		return nil, err
	}

	if err := f.Write(w); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	metrics.ExportsTotal.WithLabelValues(exportType).Inc()
	res := &Result{FileName: FileName(s, time.Now()), Rows: len(rows)}
	zap.L().Info("session exported",
		zap.Int64("session", sessionID), zap.String("type", exportType), zap.Int("rows", res.Rows))
	return res, nil
}

func lineRow(code, internal, desc string, unitsPerCase, qty float64, ts int64, expiry string) []interface{} {
	upb := unitsPerCase
	if upb < 1 {
		upb = 1
	}
	entered := ""
	if ts != 0 {
		entered = dates.FormatDateTime(ts)
	}
	return []interface{}{
		code,
		internal,
		desc,
		upb,
		math.Floor(qty / upb),
		qty,
		entered,
		expiry,
	}
}

func writeSummary(f *excelize.File, s *model.Session, exportType string, rowCount int) error {
	if _, err := f.NewSheet("resumen"); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	summaryHeader := []interface{}{
		"inventario_id", "nombre", "observacion", "fecha de creacion",
		"fecha de exportacion", "total filas", "tipo",
	}
	if err := f.SetSheetRow("resumen", "A1", &summaryHeader); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	summary := []interface{}{
		s.ID, s.Name, s.Note, dates.FormatDateTime(s.CreatedAtMilli),
		dates.FormatDateTime(dates.NowMilli()), rowCount, exportType,
	}
	if err := f.SetSheetRow("resumen", "A2", &summary); err != nil {
		return fmt.Errorf("failed to write summary row: %w", err)
	}
	return nil
}

// FileName encodes the session id and export timestamp, with a vto
// marker for expiry sessions.
func FileName(s *model.Session, now time.Time) string {
	marker := ""
	if s.Kind == model.SessionKindExpiry {
		marker = "vto_"
	}
	return fmt.Sprintf("inventario_%s%d_%s.xlsx", marker, s.ID, now.Format("20060102_1504"))
}
