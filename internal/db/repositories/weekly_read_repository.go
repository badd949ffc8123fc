package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/devfolio/portfolio-backend/internal/db"
	"github.com/devfolio/portfolio-backend/internal/db/models"
)

// WeeklyReadRepository handles weekly_reads table operations
type WeeklyReadRepository struct {
	store db.Store
}

// NewWeeklyReadRepository creates a new WeeklyReadRepository
func NewWeeklyReadRepository(store db.Store) *WeeklyReadRepository {
	return &WeeklyReadRepository{store: store}
}

// List returns weekly reads ordered by read date descending, optionally
// narrowed to one category.
func (r *WeeklyReadRepository) List(ctx context.Context, category string, limit, offset int) ([]*models.WeeklyRead, error) {
	reads := make([]*models.WeeklyRead, 0)

	if category != "" {
		query := `
			SELECT id, title, authors, source, url, description, category, read_date, created_at, updated_at
			FROM weekly_reads
			WHERE category = ?
			ORDER BY read_date DESC, id DESC
			LIMIT ? OFFSET ?
		`
		if err := r.store.Query(ctx, &reads, query, category, limit, offset); err != nil {
			return nil, fmt.Errorf("failed to list weekly reads: %w", err)
		}
		return reads, nil
	}

	query := `
		SELECT id, title, authors, source, url, description, category, read_date, created_at, updated_at
		FROM weekly_reads
		ORDER BY read_date DESC, id DESC
		LIMIT ? OFFSET ?
	`
	if err := r.store.Query(ctx, &reads, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list weekly reads: %w", err)
	}
	return reads, nil
}

// Count returns the number of weekly reads, optionally narrowed by category.
func (r *WeeklyReadRepository) Count(ctx context.Context, category string) (int, error) {
	var total int
	if category != "" {
		if err := r.store.QueryOne(ctx, &total, `SELECT COUNT(*) FROM weekly_reads WHERE category = ?`, category); err != nil {
			return 0, fmt.Errorf("failed to count weekly reads: %w", err)
		}
		return total, nil
	}
	if err := r.store.QueryOne(ctx, &total, `SELECT COUNT(*) FROM weekly_reads`); err != nil {
		return 0, fmt.Errorf("failed to count weekly reads: %w", err)
	}
	return total, nil
}

// GetByID retrieves a weekly read by id; db.ErrNotFound when absent.
func (r *WeeklyReadRepository) GetByID(ctx context.Context, id int64) (*models.WeeklyRead, error) {
	query := `
		SELECT id, title, authors, source, url, description, category, read_date, created_at, updated_at
		FROM weekly_reads
		WHERE id = ?
	`
	read := &models.WeeklyRead{}
	if err := r.store.QueryOne(ctx, read, query, id); err != nil {
		return nil, err
	}
	return read, nil
}

// Create inserts a weekly read and returns the freshly created row.
func (r *WeeklyReadRepository) Create(ctx context.Context, read *models.WeeklyRead) (*models.WeeklyRead, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO weekly_reads (title, authors, source, url, description, category, read_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.store.Update(ctx, query,
		read.Title,
		read.Authors,
		read.Source,
		read.URL,
		read.Description,
		read.Category,
		read.ReadDate,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create weekly read: %w", err)
	}

	return r.GetByID(ctx, res.LastInsertID)
}

// Update rewrites a weekly read's fields; db.ErrNotFound when the id is
// absent.
func (r *WeeklyReadRepository) Update(ctx context.Context, read *models.WeeklyRead) (*models.WeeklyRead, error) {
	query := `
		UPDATE weekly_reads
		SET title = ?, authors = ?, source = ?, url = ?, description = ?, category = ?, read_date = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.store.Update(ctx, query,
		read.Title,
		read.Authors,
		read.Source,
		read.URL,
		read.Description,
		read.Category,
		read.ReadDate,
		time.Now().UTC(),
		read.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update weekly read: %w", err)
	}
	if res.Changes == 0 {
		return nil, db.ErrNotFound
	}

	return r.GetByID(ctx, read.ID)
}

// Delete removes a weekly read by id, reporting whether a row was deleted.
func (r *WeeklyReadRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.store.Update(ctx, `DELETE FROM weekly_reads WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete weekly read: %w", err)
	}
	return res.Changes > 0, nil
}
