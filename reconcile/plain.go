package reconcile

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stocktake/database"
	"stocktake/dates"
	"stocktake/model"
)

// PlainRequest is one quantity observation against a plain session.
type PlainRequest struct {
	SessionID int64   `json:"sessionId"`
	Code      string  `json:"code"`
	Quantity  float64 `json:"quantity"`
	// ConfirmFractional acknowledges the fractional-quantity warning on
	// a non-weighable article.
	ConfirmFractional bool `json:"confirmFractional"`
}

// AddPlain validates and resolves the request, then either inserts the
// line or reports the conflict at its key. No mutation happens on a
// conflict; the caller picks a Choice and calls ResolvePlainConflict.
func AddPlain(conn *sqlx.DB, req PlainRequest) (*Outcome, error) {
	if _, err := loadSession(conn, req.SessionID, model.SessionKindPlain); err != nil {
		return nil, err
	}
	if !validQuantity(req.Quantity) {
		return nil, ErrInvalidQuantity
	}
	res, err := resolveArticle(conn, req.Code)
	if err != nil {
		return nil, err
	}

	if !res.Article.IsWeighable() && hasFraction(req.Quantity) && !req.ConfirmFractional {
		return &Outcome{Status: StatusFractionalConfirm, Code: res.CodeToUse, Article: res.Article}, nil
	}

	existing, err := database.GetPlainItem(conn, req.SessionID, res.CodeToUse)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Outcome{
			Status:      StatusPlainConflict,
			Code:        res.CodeToUse,
			Article:     res.Article,
			Options:     []Choice{ChoiceAccumulate, ChoiceReplace},
			ExistingQty: existing.Quantity,
		}, nil
	}

	if err := database.UpsertPlainItem(conn, req.SessionID, res.CodeToUse, req.Quantity, dates.NowMilli()); err != nil {
		return nil, err
	}
	zap.L().Debug("plain line inserted",
		zap.Int64("session", req.SessionID), zap.String("code", res.CodeToUse), zap.Float64("qty", req.Quantity))
	return &Outcome{Status: StatusAdded, Code: res.CodeToUse, Article: res.Article, Quantity: req.Quantity}, nil
}

// ResolvePlainConflict applies the operator's choice for an existing
// plain line. Accumulate sums with the existing quantity, floored at
// zero; replace overwrites. Both upsert by (session, code), so a line
// deleted in the meantime degrades to an insert.
func ResolvePlainConflict(conn *sqlx.DB, req PlainRequest, choice Choice) (*Outcome, error) {
	if _, err := loadSession(conn, req.SessionID, model.SessionKindPlain); err != nil {
		return nil, err
	}
	if !validQuantity(req.Quantity) {
		return nil, ErrInvalidQuantity
	}
	res, err := resolveArticle(conn, req.Code)
	if err != nil {
		return nil, err
	}

	newQty := req.Quantity
	if choice == ChoiceAccumulate {
		existing, err := database.GetPlainItem(conn, req.SessionID, res.CodeToUse)
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
		return nil, errInvalidChoice(choice, StatusPlainConflict)
	}

	if err := database.UpsertPlainItem(conn, req.SessionID, res.CodeToUse, newQty, dates.NowMilli()); err != nil {
		return nil, err
	}
	zap.L().Debug("plain conflict resolved",
		zap.Int64("session", req.SessionID), zap.String("code", res.CodeToUse),
		zap.String("choice", string(choice)), zap.Float64("qty", newQty))
	return &Outcome{Status: StatusAdded, Code: res.CodeToUse, Article: res.Article, Quantity: newQty}, nil
}
