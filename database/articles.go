package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stocktake/model"
)

// GetArticleByPrimaryCode returns the article for a primary code, or
// nil when the catalog has no match. Absence is a normal outcome for
// the resolver, not an error.
func GetArticleByPrimaryCode(conn *sqlx.DB, code string) (*model.Article, error) {
	var a model.Article
	err := conn.Get(&a, `
		SELECT primary_code, internal_code, description, units_per_case, weighable, weighable_unit, updated_at
		FROM articles WHERE primary_code = ?`, code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article by primary code %s: %w", code, err)
	}
	return &a, nil
}

// GetArticleByInternalCode returns the first article carrying an
// internal product code, ordered by description so the pick is stable
// when several pack sizes share the code.
func GetArticleByInternalCode(conn *sqlx.DB, internal string) (*model.Article, error) {
	var a model.Article
	err := conn.Get(&a, `
		SELECT primary_code, internal_code, description, units_per_case, weighable, weighable_unit, updated_at
		FROM articles WHERE TRIM(internal_code) = ?
		ORDER BY description COLLATE NOCASE ASC LIMIT 1`, internal)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article by internal code %s: %w", internal, err)
	}
	return &a, nil
}

// GetArticlesByInternalCode lists every article sharing an internal
// product code, for manual disambiguation in the PLU search.
func GetArticlesByInternalCode(conn *sqlx.DB, internal string) ([]model.Article, error) {
	var arts []model.Article
	err := conn.Select(&arts, `
		SELECT primary_code, internal_code, description, units_per_case, weighable, weighable_unit, updated_at
		FROM articles WHERE TRIM(internal_code) = ?
		ORDER BY description COLLATE NOCASE ASC`, internal)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles by internal code %s: %w", internal, err)
	}
	return arts, nil
}

func CountArticles(conn *sqlx.DB) (int, error) {
	var n int
	if err := conn.Get(&n, `SELECT COUNT(*) FROM articles`); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}

// DeleteAllArticles wipes the catalog inside the caller's transaction.
func DeleteAllArticles(tx *sqlx.Tx) error {
	if _, err := tx.Exec(`DELETE FROM articles`); err != nil {
		return fmt.Errorf("failed to delete articles: %w", err)
	}
	return nil
}

// InsertArticles writes one batch of normalized catalog rows through a
// prepared statement inside the caller's transaction.
func InsertArticles(tx *sqlx.Tx, batch []model.Article) error {
	stmt, err := tx.Preparex(`
		INSERT INTO articles (primary_code, internal_code, description, units_per_case, weighable, weighable_unit, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare article insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range batch {
		if _, err := stmt.Exec(a.PrimaryCode, a.InternalCode, a.Description, a.UnitsPerCase, a.Weighable, a.WeighableUnit, a.UpdatedAtMilli); err != nil {
			return fmt.Errorf("failed to insert article %s: %w", a.PrimaryCode, err)
		}
	}
	return nil
}
