package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/xuri/excelize/v2"

	"stocktake/database"
	"stocktake/dates"
	"stocktake/model"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	conn.SetMaxOpenConns(1)
	if err := database.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFileName(t *testing.T) {
	plain := &model.Session{ID: 7, Kind: model.SessionKindPlain}
	expiry := &model.Session{ID: 7, Kind: model.SessionKindExpiry}
	at := time.Date(2026, 8, 31, 14, 5, 0, 0, time.Local)

	if got := FileName(plain, at); got != "inventario_7_20260831_1405.xlsx" {
		t.Errorf("plain name = %q", got)
	}
	if got := FileName(expiry, at); got != "inventario_vto_7_20260831_1405.xlsx" {
		t.Errorf("expiry name = %q", got)
	}
}

func TestWriteSessionEmpty(t *testing.T) {
	conn := openTestDB(t)
	sid, _ := database.CreateSession(conn, "vacio", "", model.SessionKindPlain, dates.NowMilli())

	var buf bytes.Buffer
	if _, err := WriteSession(conn, sid, &buf); !errors.Is(err, ErrNoItems) {
		t.Fatalf("err = %v, want ErrNoItems", err)
	}
}

func TestWriteSessionWorkbook(t *testing.T) {
	conn := openTestDB(t)
	if _, err := conn.Exec(`
		INSERT INTO articles (primary_code, internal_code, description, units_per_case, updated_at)
		VALUES ('9001', '510', 'Queso', 6, 0)`); err != nil {
		t.Fatal(err)
	}
	sid, _ := database.CreateSession(conn, "deposito", "nota", model.SessionKindPlain, dates.NowMilli())
	if err := database.UpsertPlainItem(conn, sid, "9001", 14, dates.NowMilli()); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	res, err := WriteSession(conn, sid, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows != 1 {
		t.Errorf("rows = %d", res.Rows)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "inventario" || sheets[1] != "resumen" {
		t.Fatalf("sheets = %v", sheets)
	}

	rows, err := f.GetRows("inventario")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("row count = %d", len(rows))
	}
	if rows[0][len(rows[0])-1] != "fecha de vencimiento" {
		t.Errorf("last header = %q, expiry date column must come last", rows[0][len(rows[0])-1])
	}
	// ean, internal code, description, upb, whole cases, quantity
	if rows[1][0] != "9001" || rows[1][1] != "510" || rows[1][2] != "Queso" {
		t.Errorf("data row = %v", rows[1])
	}
	if rows[1][4] != "2" { // floor(14 / 6)
		t.Errorf("bultos = %q, want 2", rows[1][4])
	}
	if len(rows[1]) > 7 && rows[1][7] != "" {
		t.Errorf("expiry cell = %q, want blank for plain sessions", rows[1][7])
	}

	summary, err := f.GetRows("resumen")
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 2 {
		t.Fatalf("summary rows = %d", len(summary))
	}
	if summary[1][1] != "deposito" || summary[1][6] != "cantidades" {
		t.Errorf("summary = %v", summary[1])
	}
}

func TestWriteExpirySessionDates(t *testing.T) {
	conn := openTestDB(t)
	if _, err := conn.Exec(`
		INSERT INTO articles (primary_code, internal_code, description, units_per_case, updated_at)
		VALUES ('9001', '510', 'Queso', 1, 0)`); err != nil {
		t.Fatal(err)
	}
	sid, _ := database.CreateSession(conn, "vto", "", model.SessionKindExpiry, dates.NowMilli())
	d := time.Date(2027, 2, 10, 0, 0, 0, 0, time.Local).UnixMilli()
	if err := database.UpsertExpiryItem(conn, sid, "9001", 3, d, dates.NowMilli()); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := WriteSession(conn, sid, &buf); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows("vencimientos")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("row count = %d", len(rows))
	}
	if got := rows[1][len(rows[1])-1]; got != "10/02/2027" {
		t.Errorf("expiry cell = %q", got)
	}
}
