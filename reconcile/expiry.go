package reconcile

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stocktake/database"
	"stocktake/dates"
	"stocktake/model"
)

// ExpiryRequest is one quantity observation with a target expiry date.
type ExpiryRequest struct {
	SessionID int64   `json:"sessionId"`
	Code      string  `json:"code"`
	Quantity  float64 `json:"quantity"`
	// ExpiryDate is epoch ms; normalized to local midnight before use.
	ExpiryDate        int64 `json:"expiryDate"`
	ConfirmFractional bool  `json:"confirmFractional"`
}

func (req *ExpiryRequest) validate(conn *sqlx.DB) error {
	if _, err := loadSession(conn, req.SessionID, model.SessionKindExpiry); err != nil {
		return err
	}
	if !validQuantity(req.Quantity) {
		return ErrInvalidQuantity
	}
	if req.ExpiryDate == 0 {
		return ErrMissingDate
	}
	req.ExpiryDate = dates.Midnight(req.ExpiryDate)
	if req.ExpiryDate <= dates.StartOfToday() {
		return ErrDateNotFuture
	}
	return nil
}

// AddExpiry runs the two-step reconciliation: first against the exact
// (session, code, date) key, then against every other date the session
// holds for the code. Only when both steps find nothing does the line
// insert directly. Conflicts mutate nothing until resolved.
func AddExpiry(conn *sqlx.DB, req ExpiryRequest) (*Outcome, error) {
	if err := req.validate(conn); err != nil {
		return nil, err
	}
	res, err := resolveArticle(conn, req.Code)
	if err != nil {
		return nil, err
	}

	if !res.Article.IsWeighable() && hasFraction(req.Quantity) && !req.ConfirmFractional {
		return &Outcome{Status: StatusFractionalConfirm, Code: res.CodeToUse, Article: res.Article}, nil
	}

	// Step 1: a row at exactly this date is simple accumulation
	// territory; the operator re-scanned the same lot.
	sameDate, err := database.GetExpiryItem(conn, req.SessionID, res.CodeToUse, req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if sameDate != nil {
		return &Outcome{
			Status:      StatusSameDateConflict,
			Code:        res.CodeToUse,
			Article:     res.Article,
			Options:     []Choice{ChoiceAccumulate, ChoiceReplace},
			ExistingQty: sameDate.Quantity,
		}, nil
	}

	// Step 2: rows at other dates are a deliberate, higher-stakes
	// decision; list them and require explicit consolidation.
	others, err := database.GetExpiryItemsByCode(conn, req.SessionID, res.CodeToUse)
	if err != nil {
		return nil, err
	}
	if len(others) > 0 {
		return &Outcome{
			Status:        StatusCrossDateConflict,
			Code:          res.CodeToUse,
			Article:       res.Article,
			Options:       []Choice{ChoiceAccumulateKeepEarliest, ChoiceReplaceWithNewDate},
			ExistingQty:   sumQuantities(others),
			ExistingDates: distinctDates(others),
		}, nil
	}

	// Step 3: nothing for this code yet.
	if err := database.UpsertExpiryItem(conn, req.SessionID, res.CodeToUse, req.Quantity, req.ExpiryDate, dates.NowMilli()); err != nil {
		return nil, err
	}
	zap.L().Debug("expiry line inserted",
		zap.Int64("session", req.SessionID), zap.String("code", res.CodeToUse),
		zap.Float64("qty", req.Quantity), zap.String("date", dates.FormatDate(req.ExpiryDate)))
	return &Outcome{Status: StatusAdded, Code: res.CodeToUse, Article: res.Article, Quantity: req.Quantity}, nil
}

// ResolveSameDateConflict applies the operator's choice for an existing
// line at the same date. Both choices upsert by the full key.
func ResolveSameDateConflict(conn *sqlx.DB, req ExpiryRequest, choice Choice) (*Outcome, error) {
	if err := req.validate(conn); err != nil {
		return nil, err
	}
	res, err := resolveArticle(conn, req.Code)
	if err != nil {
		return nil, err
	}

	newQty := req.Quantity
	if choice == ChoiceAccumulate {
		existing, err := database.GetExpiryItem(conn, req.SessionID, res.CodeToUse, req.ExpiryDate)
		if err != nil {
			return nil, err
		}
		var current float64
		if existing != nil {
			current = existing.Quantity
		}
		newQty = current + req.Quantity
		if newQty < 0 {
			newQty = 0
		}
	} else if choice != ChoiceReplace {
		return nil, errInvalidChoice(choice, StatusSameDateConflict)
	}

	if err := database.UpsertExpiryItem(conn, req.SessionID, res.CodeToUse, newQty, req.ExpiryDate, dates.NowMilli()); err != nil {
		return nil, err
	}
	zap.L().Debug("same-date conflict resolved",
		zap.Int64("session", req.SessionID), zap.String("code", res.CodeToUse),
		zap.String("choice", string(choice)), zap.Float64("qty", newQty))
	return &Outcome{Status: StatusAdded, Code: res.CodeToUse, Article: res.Article, Quantity: newQty}, nil
}

// ResolveCrossDateConflict consolidates every date the session holds
// for the code into a single row, atomically.
//
//   - accumulate_keep_earliest: total = sum of existing + new quantity,
//     kept date = min(existing dates, target date).
//   - replace_with_new_date: only the new quantity survives, at the
//     target date.
func ResolveCrossDateConflict(conn *sqlx.DB, req ExpiryRequest, choice Choice) (*Outcome, error) {
	if err := req.validate(conn); err != nil {
		return nil, err
	}
	res, err := resolveArticle(conn, req.Code)
	if err != nil {
		return nil, err
	}

	existing, err := database.GetExpiryItemsByCode(conn, req.SessionID, res.CodeToUse)
	if err != nil {
		return nil, err
	}

	keepDate := req.ExpiryDate
	newQty := req.Quantity
	switch choice {
	case ChoiceAccumulateKeepEarliest:
		newQty += sumQuantities(existing)
		if newQty < 0 {
			newQty = 0
		}
		for _, it := range existing {
			if it.ExpiryMilli < keepDate {
				keepDate = it.ExpiryMilli
			}
		}
	case ChoiceReplaceWithNewDate:
		// keepDate and newQty already hold the request values; every
		// existing row is discarded.
	default:
		return nil, errInvalidChoice(choice, StatusCrossDateConflict)
	}

	if err := database.ConsolidateExpiryByCode(conn, req.SessionID, res.CodeToUse, keepDate, newQty, dates.NowMilli()); err != nil {
		return nil, err
	}
	zap.L().Info("expiry dates consolidated",
		zap.Int64("session", req.SessionID), zap.String("code", res.CodeToUse),
		zap.String("choice", string(choice)), zap.Float64("qty", newQty),
		zap.String("kept", dates.FormatDate(keepDate)))
	return &Outcome{Status: StatusAdded, Code: res.CodeToUse, Article: res.Article, Quantity: newQty}, nil
}

func sumQuantities(items []model.ExpiryItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

func distinctDates(items []model.ExpiryItem) []int64 {
	seen := make(map[int64]bool, len(items))
	var out []int64
	for _, it := range items {
		if !seen[it.ExpiryMilli] {
			seen[it.ExpiryMilli] = true
			out = append(out, it.ExpiryMilli)
		}
	}
	return out
}
