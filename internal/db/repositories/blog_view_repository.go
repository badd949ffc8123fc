package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devfolio/portfolio-backend/internal/db"
	"github.com/devfolio/portfolio-backend/internal/db/models"
)

// BlogViewRepository handles the per-slug view counters
type BlogViewRepository struct {
	store db.Store
}

// NewBlogViewRepository creates a new BlogViewRepository
func NewBlogViewRepository(store db.Store) *BlogViewRepository {
	return &BlogViewRepository{store: store}
}

// Increment bumps the view counter for slug in a single atomic upsert:
// a missing row is created with count 1, an existing row is incremented in
// place. Two concurrent hits on the same slug therefore both land — there is
// no read-modify-write gap for them to race through. Returns the new count.
func (r *BlogViewRepository) Increment(ctx context.Context, slug string) (int64, error) {
	query := `
		INSERT INTO blog_views (slug, view_count, last_viewed_at)
		VALUES (?, 1, ?)
		ON CONFLICT (slug) DO UPDATE SET
			view_count = view_count + 1,
			last_viewed_at = excluded.last_viewed_at
	`
	if _, err := r.store.Update(ctx, query, slug, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("failed to increment view count: %w", err)
	}

	return r.GetCount(ctx, slug)
}

// GetCount returns the current view count for slug; 0 for a slug that has
// never been viewed.
func (r *BlogViewRepository) GetCount(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := r.store.QueryOne(ctx, &count, `SELECT view_count FROM blog_views WHERE slug = ?`, slug)
	if errors.Is(err, db.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get view count: %w", err)
	}
	return count, nil
}

// Get retrieves the full view record for slug; db.ErrNotFound when the slug
// has never been viewed.
func (r *BlogViewRepository) Get(ctx context.Context, slug string) (*models.BlogView, error) {
	view := &models.BlogView{}
	query := `SELECT slug, view_count, last_viewed_at FROM blog_views WHERE slug = ?`
	if err := r.store.QueryOne(ctx, view, query, slug); err != nil {
		return nil, err
	}
	return view, nil
}
