package reconcile

import (
	"errors"
	"testing"

	"stocktake/database"
	"stocktake/dates"
	"stocktake/model"
)

const dayMs = int64(24 * 60 * 60 * 1000)

func futureDate(days int) int64 {
	return dates.StartOfToday() + int64(days)*dayMs
}

func TestAddExpiryValidation(t *testing.T) {
	conn := openTestDB(t)
	seedArticle(t, conn, "9001", "510", "Queso", 0)
	sid := newSession(t, conn, model.SessionKindExpiry)

	_, err := AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 4})
	if !errors.Is(err, ErrMissingDate) {
		t.Errorf("no date: err = %v", err)
	}

	_, err = AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 4, ExpiryDate: dates.StartOfToday()})
	if !errors.Is(err, ErrDateNotFuture) {
		t.Errorf("today: err = %v", err)
	}

	_, err = AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 4, ExpiryDate: futureDate(-2)})
	if !errors.Is(err, ErrDateNotFuture) {
		t.Errorf("past: err = %v", err)
	}

	_, err = AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 0, ExpiryDate: futureDate(1)})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero qty: err = %v", err)
	}

	if rows, _ := database.GetExpiryItemsByCode(conn, sid, "9001"); len(rows) != 0 {
		t.Errorf("rejected adds mutated state: %+v", rows)
	}
}

func TestAddExpiryNormalizesDateToMidnight(t *testing.T) {
	conn := openTestDB(t)
	seedArticle(t, conn, "9001", "510", "Queso", 0)
	sid := newSession(t, conn, model.SessionKindExpiry)

	// mid-afternoon tomorrow normalizes to tomorrow midnight
	afternoon := futureDate(1) + 15*60*60*1000
	out, err := AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 4, ExpiryDate: afternoon})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusAdded {
		t.Fatalf("out = %+v", out)
	}

	rows, _ := database.GetExpiryItemsByCode(conn, sid, "9001")
	if len(rows) != 1 || rows[0].ExpiryMilli != futureDate(1) {
		t.Fatalf("stored date = %+v, want local midnight", rows)
	}
}

func TestExpirySameDateConflict(t *testing.T) {
	conn := openTestDB(t)
	seedArticle(t, conn, "9001", "510", "Queso", 0)
	sid := newSession(t, conn, model.SessionKindExpiry)
	d1 := futureDate(10)

	if _, err := AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 4, ExpiryDate: d1}); err != nil {
		t.Fatal(err)
	}

	out, err := AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 2, ExpiryDate: d1})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusSameDateConflict || out.ExistingQty != 4 {
		t.Fatalf("out = %+v, want same-date conflict with existing 4", out)
	}

	out, err = ResolveSameDateConflict(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 2, ExpiryDate: d1}, ChoiceAccumulate)
	if err != nil {
		t.Fatal(err)
	}
	if out.Quantity != 6 {
		t.Errorf("accumulate -> %v, want 6", out.Quantity)
	}

	out, err = ResolveSameDateConflict(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 1, ExpiryDate: d1}, ChoiceReplace)
	if err != nil {
		t.Fatal(err)
	}
	if out.Quantity != 1 {
		t.Errorf("replace -> %v, want 1", out.Quantity)
	}

	rows, _ := database.GetExpiryItemsByCode(conn, sid, "9001")
	if len(rows) != 1 || rows[0].Quantity != 1 {
		t.Errorf("stored rows = %+v", rows)
	}
}

func TestExpiryCrossDateConflict(t *testing.T) {
	conn := openTestDB(t)
	seedArticle(t, conn, "9001", "510", "Queso", 0)
	sid := newSession(t, conn, model.SessionKindExpiry)
	d1, d2 := futureDate(5), futureDate(9)

	if _, err := AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 4, ExpiryDate: d1}); err != nil {
		t.Fatal(err)
	}

	out, err := AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 2, ExpiryDate: d2})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusCrossDateConflict {
		t.Fatalf("out = %+v, want cross-date conflict", out)
	}
	if out.ExistingQty != 4 {
		t.Errorf("existing total = %v", out.ExistingQty)
	}
	if len(out.ExistingDates) != 1 || out.ExistingDates[0] != d1 {
		t.Errorf("existing dates = %v, want [%d]", out.ExistingDates, d1)
	}

	out, err = ResolveCrossDateConflict(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 2, ExpiryDate: d2}, ChoiceAccumulateKeepEarliest)
	if err != nil {
		t.Fatal(err)
	}
	if out.Quantity != 6 {
		t.Errorf("consolidated qty = %v, want 6", out.Quantity)
	}

	rows, _ := database.GetExpiryItemsByCode(conn, sid, "9001")
	if len(rows) != 1 {
		t.Fatalf("rows = %+v, want single consolidated row", rows)
	}
	if rows[0].ExpiryMilli != d1 || rows[0].Quantity != 6 {
		t.Errorf("kept row = %+v, want qty 6 at earliest date", rows[0])
	}
}

func TestExpiryCrossDateReplaceWithNewDate(t *testing.T) {
	conn := openTestDB(t)
	seedArticle(t, conn, "9001", "510", "Queso", 0)
	sid := newSession(t, conn, model.SessionKindExpiry)
	d1, d2, d3 := futureDate(3), futureDate(6), futureDate(12)

	AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 4, ExpiryDate: d1})
	ResolveCrossDateConflict(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 5, ExpiryDate: d2}, ChoiceReplaceWithNewDate)

	out, err := ResolveCrossDateConflict(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 7, ExpiryDate: d3}, ChoiceReplaceWithNewDate)
	if err != nil {
		t.Fatal(err)
	}
	if out.Quantity != 7 {
		t.Errorf("qty = %v, want only the new quantity", out.Quantity)
	}

	rows, _ := database.GetExpiryItemsByCode(conn, sid, "9001")
	if len(rows) != 1 || rows[0].ExpiryMilli != d3 || rows[0].Quantity != 7 {
		t.Errorf("rows = %+v, want single row at new date with new qty", rows)
	}
}

func TestExpiryThreeStepPrecedence(t *testing.T) {
	conn := openTestDB(t)
	seedArticle(t, conn, "9001", "510", "Queso", 0)
	sid := newSession(t, conn, model.SessionKindExpiry)
	d1, d2 := futureDate(5), futureDate(9)

	AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 4, ExpiryDate: d1})
	AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 1, ExpiryDate: d2})
	ResolveCrossDateConflict(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 1, ExpiryDate: d2}, ChoiceAccumulateKeepEarliest)

	// a row now exists at d1 only; targeting d1 is a same-date conflict,
	// never cross-date
	out, err := AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 2, ExpiryDate: d1})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusSameDateConflict {
		t.Fatalf("status = %v, want same-date conflict to win", out.Status)
	}
}

func TestExpiryFractionalGate(t *testing.T) {
	conn := openTestDB(t)
	seedArticle(t, conn, "9001", "510", "Queso", 0)
	sid := newSession(t, conn, model.SessionKindExpiry)

	out, err := AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 1.5, ExpiryDate: futureDate(2)})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusFractionalConfirm {
		t.Fatalf("status = %v", out.Status)
	}

	out, err = AddExpiry(conn, ExpiryRequest{SessionID: sid, Code: "9001", Quantity: 1.5, ExpiryDate: futureDate(2), ConfirmFractional: true})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusAdded || out.Quantity != 1.5 {
		t.Fatalf("confirmed = %+v", out)
	}
}
