// Package resolver turns a raw scanned or typed code into a catalog
// article and the primary code counted lines should be keyed under.
package resolver

import (
	"github.com/jmoiron/sqlx"

	"stocktake/barcode"
	"stocktake/database"
	"stocktake/metrics"
	"stocktake/model"
)

// Resolution is the outcome of resolving one raw code. Article is nil
// when the catalog has no match; CodeToUse still carries the normalized
// input so the caller can show what was scanned.
type Resolution struct {
	Article      *model.Article `json:"article"`
	CodeToUse    string         `json:"codeToUse"`
	Dialect      string         `json:"dialect"`
	SuggestedQty float64        `json:"suggestedQty,omitempty"`
	HasSuggested bool           `json:"hasSuggestedQty"`
}

// Resolve classifies the code and looks it up by the path its dialect
// dictates. A scale ticket resolves through its internal code and
// prefers the weight-agnostic base code when the catalog carries one,
// so repeated weighings of the same product accumulate under one key.
func Resolve(conn *sqlx.DB, raw string) (*Resolution, error) {
	c := barcode.Classify(raw)
	metrics.ScansTotal.WithLabelValues(c.Kind.String()).Inc()

	res := &Resolution{CodeToUse: c.Code, Dialect: c.Kind.String()}

	switch c.Kind {
	case barcode.KindScale:
		art, err := database.GetArticleByInternalCode(conn, c.InternalCode)
		if err != nil {
			return nil, err
		}
		if art != nil {
			res.Article = art
			res.CodeToUse = art.PrimaryCode
			if c.BaseCode != "" {
				base, err := database.GetArticleByPrimaryCode(conn, c.BaseCode)
				if err != nil {
					return nil, err
				}
				if base != nil {
					res.CodeToUse = c.BaseCode
				}
			}
			if c.HasWeight {
				res.SuggestedQty = c.Weight
				res.HasSuggested = true
			}
			return res, nil
		}
		// Fall through to a direct lookup; an unmatched ticket may still
		// be cataloged under its full code.

	case barcode.KindPLU:
		art, err := database.GetArticleByInternalCode(conn, c.InternalCode)
		if err != nil {
			return nil, err
		}
		if art != nil {
			res.Article = art
			res.CodeToUse = art.PrimaryCode
			return res, nil
		}
	}

	art, err := database.GetArticleByPrimaryCode(conn, c.Code)
	if err != nil {
		return nil, err
	}
	res.Article = art
	if art == nil {
		metrics.ResolveMissesTotal.Inc()
	}
	return res, nil
}
