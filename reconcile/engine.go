// Package reconcile decides how a new quantity observation merges into
// existing session state. Ambiguous cases never auto-resolve: the add
// entry points return a tagged decision value with the allowed choices,
// and the caller comes back through a resolve entry point with the pick.
package reconcile

import (
	"errors"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"stocktake/database"
	"stocktake/model"
	"stocktake/resolver"
)

// Validation failures. All are rejected before any store mutation.
var (
	ErrMissingCode      = errors.New("missing code")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrCodeNotFound     = errors.New("code not found in catalog")
	ErrMissingDate      = errors.New("expiry date required")
	ErrDateNotFuture    = errors.New("expiry date must be after today")
	ErrSessionNotFound  = errors.New("session not found")
	ErrWrongSessionKind = errors.New("operation does not match session kind")
)

// Status tags the outcome of an add or resolve call.
type Status string

const (
	// StatusAdded is terminal: the line was written.
	StatusAdded Status = "added"
	// StatusFractionalConfirm asks the operator to confirm a fractional
	// quantity on a non-weighable article. Re-submit with the confirm
	// flag to proceed; warn-not-block.
	StatusFractionalConfirm Status = "fractional_confirm"
	// StatusPlainConflict: a plain line already exists at this key.
	StatusPlainConflict Status = "plain_conflict"
	// StatusSameDateConflict: a dated line already exists at exactly
	// this date.
	StatusSameDateConflict Status = "same_date_conflict"
	// StatusCrossDateConflict: dated lines exist at other dates only.
	StatusCrossDateConflict Status = "cross_date_conflict"
)

// Choice names one resolution of a conflict.
type Choice string

const (
	ChoiceAccumulate             Choice = "accumulate"
	ChoiceReplace                Choice = "replace"
	ChoiceAccumulateKeepEarliest Choice = "accumulate_keep_earliest"
	ChoiceReplaceWithNewDate     Choice = "replace_with_new_date"
)

// Outcome is the engine's answer to an add or resolve request.
type Outcome struct {
	Status  Status         `json:"status"`
	Code    string         `json:"code"`
	Article *model.Article `json:"article,omitempty"`
	// Options enumerates the choices valid for a conflict status.
	Options []Choice `json:"options,omitempty"`
	// ExistingQty is the quantity already at the key for plain and
	// same-date conflicts, and the total across dates for cross-date
	// conflicts.
	ExistingQty float64 `json:"existingQty,omitempty"`
	// ExistingDates lists the distinct dates already held for the code
	// (cross-date conflicts only), ascending.
	ExistingDates []int64 `json:"existingDates,omitempty"`
	// Quantity is the final stored quantity for StatusAdded.
	Quantity float64 `json:"quantity,omitempty"`
}

func validQuantity(q float64) bool {
	return !math.IsNaN(q) && !math.IsInf(q, 0) && q > 0
}

func hasFraction(q float64) bool {
	return math.Floor(q) != q
}

func loadSession(conn *sqlx.DB, id int64, wantKind string) (*model.Session, error) {
	s, err := database.GetSessionByID(conn, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %d", ErrSessionNotFound, id)
	}
	if s.Kind != wantKind {
		return nil, fmt.Errorf("%w: session %d is %s", ErrWrongSessionKind, id, s.Kind)
	}
	return s, nil
}

func errInvalidChoice(c Choice, s Status) error {
	return fmt.Errorf("invalid choice %q for %s", c, s)
}

// resolveArticle resolves the raw code and maps a catalog miss to
// ErrCodeNotFound. The code-to-use from the resolution keys the line.
func resolveArticle(conn *sqlx.DB, raw string) (*resolver.Resolution, error) {
	res, err := resolver.Resolve(conn, raw)
	if err != nil {
		return nil, err
	}
	if res.CodeToUse == "" {
		return nil, ErrMissingCode
	}
	if res.Article == nil {
		return nil, fmt.Errorf("%w: %s", ErrCodeNotFound, res.CodeToUse)
	}
	return res, nil
}
