// Package model holds the shared data types scanned from and written
// to the database, tagged for sqlx and the JSON API.
package model

// Article is one catalog row. PrimaryCode is the scannable barcode and
// the primary key; InternalCode is the short product code embedded in
// scale and PLU barcodes.
type Article struct {
	PrimaryCode    string  `db:"primary_code" json:"primaryCode"`
	InternalCode   string  `db:"internal_code" json:"internalCode"`
	Description    string  `db:"description" json:"description"`
	UnitsPerCase   float64 `db:"units_per_case" json:"unitsPerCase"`
	Weighable      int     `db:"weighable" json:"weighable"`
	WeighableUnit  int     `db:"weighable_unit" json:"weighableUnit"`
	UpdatedAtMilli int64   `db:"updated_at" json:"updatedAt"`
}

// IsWeighable reports whether fractional quantities are expected for
// this article, either sold by weight or weighed per unit.
func (a *Article) IsWeighable() bool {
	return a != nil && (a.Weighable == 1 || a.WeighableUnit == 1)
}
