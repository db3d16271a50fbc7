package bundles

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adforge/backend/internal/models"
)

// Repository handles creative bundle persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a bundles repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new bundle in generating status.
func (r *Repository) Create(ctx context.Context, id, userID uuid.UUID, sourceURL string) (*models.CreativeBundle, error) {
	const query = `INSERT INTO creative_bundles (id, user_id, source_url, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`
	b := models.CreativeBundle{
		ID:        id,
		UserID:    userID,
		SourceURL: sourceURL,
		Status:    models.StatusGenerating,
	}
	err := r.pool.QueryRow(ctx, query, id, userID, sourceURL, string(models.StatusGenerating)).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID returns a bundle with its creatives.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.CreativeBundle, error) {
	const query = `SELECT id, COALESCE(user_id, '00000000-0000-0000-0000-000000000000'), source_url, product_name,
		status, fail_reason, targeting, budget, created_at, updated_at
		FROM creative_bundles WHERE id = $1`
	var (
		b                       models.CreativeBundle
		targetingRaw, budgetRaw []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&b.ID, &b.UserID, &b.SourceURL, &b.ProductName,
		&b.Status, &b.FailReason, &targetingRaw, &budgetRaw, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(targetingRaw) > 0 {
		if err := json.Unmarshal(targetingRaw, &b.Targeting); err != nil {
			return nil, fmt.Errorf("decode targeting: %w", err)
		}
	}
	if len(budgetRaw) > 0 {
		if err := json.Unmarshal(budgetRaw, &b.Budget); err != nil {
			return nil, fmt.Errorf("decode budget: %w", err)
		}
	}
	creatives, err := r.listCreatives(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Creatives = creatives
	return &b, nil
}

// ListByUser returns a user's bundles without creative rows, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CreativeBundle, error) {
	const query = `SELECT id, COALESCE(user_id, '00000000-0000-0000-0000-000000000000'), source_url, product_name,
		status, fail_reason, created_at, updated_at
		FROM creative_bundles WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.CreativeBundle
	for rows.Next() {
		var b models.CreativeBundle
		if err := rows.Scan(&b.ID, &b.UserID, &b.SourceURL, &b.ProductName,
			&b.Status, &b.FailReason, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// SaveResult writes a finished bundle and its creatives in one transaction.
func (r *Repository) SaveResult(ctx context.Context, b *models.CreativeBundle) error {
	targetingRaw, err := json.Marshal(b.Targeting)
	if err != nil {
		return fmt.Errorf("encode targeting: %w", err)
	}
	budgetRaw, err := json.Marshal(b.Budget)
	if err != nil {
		return fmt.Errorf("encode budget: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const update = `UPDATE creative_bundles
		SET product_name = $2, status = $3, targeting = $4, budget = $5, updated_at = now()
		WHERE id = $1`
	if _, err := tx.Exec(ctx, update, b.ID, b.ProductName, string(b.Status), targetingRaw, budgetRaw); err != nil {
		return err
	}

	const insert = `INSERT INTO generated_creatives
		(id, bundle_id, type_id, strategy, format, aspect_ratio, primary_text, headline, description, cta, asset_url, render_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for _, c := range b.Creatives {
		if _, err := tx.Exec(ctx, insert, c.ID, c.BundleID, c.TypeID, string(c.Strategy), string(c.Format),
			c.AspectRatio, c.PrimaryText, c.Headline, c.Description, c.CTA, c.AssetURL,
			c.RenderTime.Milliseconds(), c.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// UpdateStatus moves a bundle to a new status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.BundleStatus) error {
	const query = `UPDATE creative_bundles SET status = $2, updated_at = now() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, string(status))
	return err
}

// Delete removes a bundle; creative rows cascade with it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM creative_bundles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bundle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkFailed records a failed run with its reason.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	const query = `UPDATE creative_bundles SET status = $2, fail_reason = $3, updated_at = now() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, string(models.StatusFailed), reason)
	return err
}

func (r *Repository) listCreatives(ctx context.Context, bundleID uuid.UUID) ([]models.GeneratedCreative, error) {
	const query = `SELECT id, bundle_id, type_id, strategy, format, aspect_ratio,
		primary_text, headline, description, cta, asset_url, render_time_ms, created_at
		FROM generated_creatives WHERE bundle_id = $1 ORDER BY created_at, type_id, aspect_ratio`
	rows, err := r.pool.Query(ctx, query, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.GeneratedCreative
	for rows.Next() {
		var (
			c        models.GeneratedCreative
			renderMS int64
		)
		if err := rows.Scan(&c.ID, &c.BundleID, &c.TypeID, &c.Strategy, &c.Format, &c.AspectRatio,
			&c.PrimaryText, &c.Headline, &c.Description, &c.CTA, &c.AssetURL, &renderMS, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.RenderTime = time.Duration(renderMS) * time.Millisecond
		list = append(list, c)
	}
	return list, rows.Err()
}
