package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/salasvega/easyvinted8-sub003/internal/model"
)

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// GetArticles returns the unsold inventory, drafts included.
func (r *ItemRepository) GetArticles(ownerID string) ([]model.Article, error) {
	rows, err := r.db.Query(`
		SELECT id, owner_id, title, brand, condition, price, status,
		       suggested_min_price, suggested_max_price, created_at
		FROM articles
		WHERE owner_id = $1 AND status <> $2
		ORDER BY created_at DESC
	`, ownerID, model.ArticleStatusSold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (r *ItemRepository) GetActiveArticles(ownerID string) ([]model.Article, error) {
	rows, err := r.db.Query(`
		SELECT id, owner_id, title, brand, condition, price, status,
		       suggested_min_price, suggested_max_price, created_at
		FROM articles
		WHERE owner_id = $1 AND status = $2
		ORDER BY created_at DESC
	`, ownerID, model.ArticleStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (r *ItemRepository) GetArticlesByIDs(ids []string) ([]model.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(`
		SELECT id, owner_id, title, brand, condition, price, status,
		       suggested_min_price, suggested_max_price, created_at
		FROM articles
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

// GetRecentSales returns completed sales newer than since, most recent first,
// capped at limit. Rows with a null sold price or brand are excluded here so
// the aggregator only sees usable observations.
func (r *ItemRepository) GetRecentSales(ownerID string, since time.Time, limit int) ([]model.Sale, error) {
	rows, err := r.db.Query(`
		SELECT article_id, title, brand, condition, sold_price, sold_at
		FROM sales
		WHERE owner_id = $1 AND sold_at > $2 AND sold_price IS NOT NULL AND brand IS NOT NULL
		ORDER BY sold_at DESC
		LIMIT $3
	`, ownerID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []model.Sale
	for rows.Next() {
		var s model.Sale
		err := rows.Scan(&s.ArticleID, &s.Title, &s.Brand, &s.Condition, &s.SoldPrice, &s.SoldAt)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sales, nil
}

func (r *ItemRepository) UpdatePrice(articleID string, price float64) error {
	_, err := r.db.Exec(`
		UPDATE articles SET price = $1 WHERE id = $2
	`, price, articleID)
	return err
}

func (r *ItemRepository) InsertBundle(b *model.Bundle) error {
	return r.db.QueryRow(`
		INSERT INTO bundles(id, owner_id, title, description, price, discount)
		VALUES($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, b.ID, b.OwnerID, b.Title, b.Description, b.Price, b.Discount).Scan(&b.CreatedAt)
}

// InsertBundleArticles writes all membership rows in one transaction so a
// bundle never ends up with a partial member list.
func (r *ItemRepository) InsertBundleArticles(bundleID string, articleIDs []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, articleID := range articleIDs {
		_, err = tx.Exec(`
			INSERT INTO bundle_articles(bundle_id, article_id)
			VALUES($1, $2)
		`, bundleID, articleID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ItemRepository) DeleteBundle(bundleID string) error {
	_, err := r.db.Exec(`
		DELETE FROM bundles WHERE id = $1
	`, bundleID)
	return err
}

func scanArticles(rows *sql.Rows) ([]model.Article, error) {
	var articles []model.Article
	for rows.Next() {
		var a model.Article
		err := rows.Scan(&a.ID, &a.OwnerID, &a.Title, &a.Brand, &a.Condition, &a.Price,
			&a.Status, &a.SuggestedMinPrice, &a.SuggestedMaxPrice, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return articles, nil
}
