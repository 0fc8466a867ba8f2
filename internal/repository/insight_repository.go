package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/salasvega/easyvinted8-sub003/internal/model"
)

// CacheTTL is the hard expiry stamped on every replaced batch. Serving
// applies a stricter soft-staleness rule on top of it.
const CacheTTL = 30 * time.Minute

type InsightRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewInsightRepository(db *sql.DB) *InsightRepository {
	return &InsightRepository{db: db, now: time.Now}
}

// LoadActive returns the active, unexpired batch for (owner, cacheKey).
// Expired-but-recent rows stay in the table until the next Replace.
func (r *InsightRepository) LoadActive(ownerID, cacheKey string) ([]model.Insight, error) {
	rows, err := r.db.Query(`
		SELECT id, owner_id, cache_key, type, priority, title, message, action_label,
		       article_ids, article_titles, action, status, created_at, last_refresh_at, expires_at
		FROM kelly_insights
		WHERE owner_id = $1 AND cache_key = $2 AND status = $3 AND expires_at > $4
		ORDER BY created_at ASC, id ASC
	`, ownerID, cacheKey, model.StatusActive, r.now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insights []model.Insight
	for rows.Next() {
		ins, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, *ins)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return insights, nil
}

func (r *InsightRepository) GetByID(id string) (*model.Insight, error) {
	row := r.db.QueryRow(`
		SELECT id, owner_id, cache_key, type, priority, title, message, action_label,
		       article_ids, article_titles, action, status, created_at, last_refresh_at, expires_at
		FROM kelly_insights
		WHERE id = $1
	`, id)

	ins, err := scanInsight(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ins, nil
}

// Replace atomically swaps the whole batch for (owner, cacheKey): delete then
// insert inside one transaction, shared last_refresh_at, expires_at = now+TTL.
func (r *InsightRepository) Replace(ownerID, cacheKey string, insights []model.Insight) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		DELETE FROM kelly_insights WHERE owner_id = $1 AND cache_key = $2
	`, ownerID, cacheKey)
	if err != nil {
		return err
	}

	refreshedAt := r.now()
	expiresAt := refreshedAt.Add(CacheTTL)

	for i := range insights {
		ins := &insights[i]
		ins.OwnerID = ownerID
		ins.CacheKey = cacheKey
		ins.Status = model.StatusActive
		ins.CreatedAt = refreshedAt
		ins.LastRefreshAt = refreshedAt
		ins.ExpiresAt = expiresAt

		articleIDs, err := json.Marshal(ins.ArticleIDs)
		if err != nil {
			return err
		}
		articleTitles, err := json.Marshal(ins.ArticleTitles)
		if err != nil {
			return err
		}
		var action []byte
		if ins.Action != nil {
			action, err = json.Marshal(ins.Action)
			if err != nil {
				return err
			}
		}

		_, err = tx.Exec(`
			INSERT INTO kelly_insights(id, owner_id, cache_key, type, priority, title, message, action_label,
			                           article_ids, article_titles, action, status, created_at, last_refresh_at, expires_at)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`, ins.ID, ins.OwnerID, ins.CacheKey, ins.Type, ins.Priority, ins.Title, ins.Message, ins.ActionLabel,
			articleIDs, articleTitles, nullableJSON(action), ins.Status, ins.CreatedAt, ins.LastRefreshAt, ins.ExpiresAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SetStatus transitions active -> dismissed|completed. Dismissed and
// completed are terminal, so the WHERE clause makes repeats a no-op.
func (r *InsightRepository) SetStatus(id, status string) error {
	if status != model.StatusDismissed && status != model.StatusCompleted {
		return fmt.Errorf("invalid insight status transition to %q", status)
	}

	_, err := r.db.Exec(`
		UPDATE kelly_insights SET status = $1 WHERE id = $2 AND status = $3
	`, status, id, model.StatusActive)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInsight(row rowScanner) (*model.Insight, error) {
	var ins model.Insight
	var articleIDs, articleTitles []byte
	var action sql.NullString

	err := row.Scan(&ins.ID, &ins.OwnerID, &ins.CacheKey, &ins.Type, &ins.Priority, &ins.Title,
		&ins.Message, &ins.ActionLabel, &articleIDs, &articleTitles, &action,
		&ins.Status, &ins.CreatedAt, &ins.LastRefreshAt, &ins.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(articleIDs, &ins.ArticleIDs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(articleTitles, &ins.ArticleTitles); err != nil {
		return nil, err
	}
	if action.Valid && action.String != "" {
		ins.Action = &model.SuggestedAction{}
		if err := json.Unmarshal([]byte(action.String), ins.Action); err != nil {
			return nil, err
		}
	}

	return &ins, nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
