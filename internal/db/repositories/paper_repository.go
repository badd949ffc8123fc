// Package repositories implements the data access layer (repository pattern)
// for the portfolio backend. Each repository type encapsulates all queries
// for one entity; HTTP handlers never issue SQL directly. Repositories speak
// to the db.Store interface, so they are oblivious to which backend (local
// file or remote replica) was selected at startup.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/devfolio/portfolio-backend/internal/db"
	"github.com/devfolio/portfolio-backend/internal/db/models"
)

// PaperRepository handles papers table operations
type PaperRepository struct {
	store db.Store
}

// NewPaperRepository creates a new PaperRepository
func NewPaperRepository(store db.Store) *PaperRepository {
	return &PaperRepository{store: store}
}

// List returns papers ordered by publication date descending. typeFilter
// narrows to one paper type when non-empty; limit/offset page the result.
func (r *PaperRepository) List(ctx context.Context, typeFilter string, limit, offset int) ([]*models.Paper, error) {
	papers := make([]*models.Paper, 0)

	if typeFilter != "" {
		query := `
			SELECT id, title, authors, date, url, description, type, created_at, updated_at
			FROM papers
			WHERE type = ?
			ORDER BY date DESC, id DESC
			LIMIT ? OFFSET ?
		`
		if err := r.store.Query(ctx, &papers, query, typeFilter, limit, offset); err != nil {
			return nil, fmt.Errorf("failed to list papers: %w", err)
		}
		return papers, nil
	}

	query := `
		SELECT id, title, authors, date, url, description, type, created_at, updated_at
		FROM papers
		ORDER BY date DESC, id DESC
		LIMIT ? OFFSET ?
	`
	if err := r.store.Query(ctx, &papers, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	return papers, nil
}

// Count returns the number of papers, optionally narrowed by type.
func (r *PaperRepository) Count(ctx context.Context, typeFilter string) (int, error) {
	var total int
	if typeFilter != "" {
		if err := r.store.QueryOne(ctx, &total, `SELECT COUNT(*) FROM papers WHERE type = ?`, typeFilter); err != nil {
			return 0, fmt.Errorf("failed to count papers: %w", err)
		}
		return total, nil
	}
	if err := r.store.QueryOne(ctx, &total, `SELECT COUNT(*) FROM papers`); err != nil {
		return 0, fmt.Errorf("failed to count papers: %w", err)
	}
	return total, nil
}

// GetByID retrieves a paper by id; db.ErrNotFound when absent.
func (r *PaperRepository) GetByID(ctx context.Context, id int64) (*models.Paper, error) {
	query := `
		SELECT id, title, authors, date, url, description, type, created_at, updated_at
		FROM papers
		WHERE id = ?
	`
	paper := &models.Paper{}
	if err := r.store.QueryOne(ctx, paper, query, id); err != nil {
		return nil, err
	}
	return paper, nil
}

// Create inserts a paper and returns the freshly created row, re-fetched by
// its inserted id so generated columns come back populated.
func (r *PaperRepository) Create(ctx context.Context, paper *models.Paper) (*models.Paper, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO papers (title, authors, date, url, description, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.store.Update(ctx, query,
		paper.Title,
		paper.Authors,
		paper.Date,
		paper.URL,
		paper.Description,
		paper.Type,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create paper: %w", err)
	}

	return r.GetByID(ctx, res.LastInsertID)
}

// Update rewrites a paper's user-supplied fields and refreshes updated_at.
// Zero affected rows means the id does not exist: db.ErrNotFound.
func (r *PaperRepository) Update(ctx context.Context, paper *models.Paper) (*models.Paper, error) {
	query := `
		UPDATE papers
		SET title = ?, authors = ?, date = ?, url = ?, description = ?, type = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.store.Update(ctx, query,
		paper.Title,
		paper.Authors,
		paper.Date,
		paper.URL,
		paper.Description,
		paper.Type,
		time.Now().UTC(),
		paper.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update paper: %w", err)
	}
	if res.Changes == 0 {
		return nil, db.ErrNotFound
	}

	return r.GetByID(ctx, paper.ID)
}

// Delete removes a paper by id, reporting whether a row was deleted.
func (r *PaperRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.store.Update(ctx, `DELETE FROM papers WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete paper: %w", err)
	}
	return res.Changes > 0, nil
}
