package database

import (
	"database/sql"
	"fmt"
)

var _ SummaryRepository = (*PostgresSummaryRepository)(nil)

// PostgresSummaryRepository handles database operations for text summaries
type PostgresSummaryRepository struct {
	db *DB
}

func NewSummaryRepository(db *DB) *PostgresSummaryRepository {
	return &PostgresSummaryRepository{db: db}
}

// Insert stores a new record with a NULL summary and returns the assigned id.
func (r *PostgresSummaryRepository) Insert(url string) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO text_summaries (url)
		VALUES ($1)
		RETURNING id
	`, url).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to insert summary: %w", err)
	}

	return id, nil
}

// GetByID retrieves a summary by id. Returns nil without error when no
// record exists.
func (r *PostgresSummaryRepository) GetByID(id int64) (*Summary, error) {
	var s Summary
	err := r.db.QueryRow(`
		SELECT id, url, summary, created_at
		FROM text_summaries
		WHERE id = $1
	`, id).Scan(&s.ID, &s.URL, &s.Summary, &s.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	return &s, nil
}

// GetAll returns every stored summary ordered by id.
func (r *PostgresSummaryRepository) GetAll() ([]Summary, error) {
	rows, err := r.db.Query(`
		SELECT id, url, summary, created_at
		FROM text_summaries
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get summaries: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.URL, &s.Summary, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}

	return summaries, nil
}

// Update overwrites the url and, when a value is supplied, the summary text.
// Returns the updated record, or nil when no record with that id exists.
// created_at is never touched.
func (r *PostgresSummaryRepository) Update(id int64, url string, summary *string) (*Summary, error) {
	var s Summary
	err := r.db.QueryRow(`
		UPDATE text_summaries
		SET url = $2, summary = COALESCE($3, summary)
		WHERE id = $1
		RETURNING id, url, summary, created_at
	`, id, url, summary).Scan(&s.ID, &s.URL, &s.Summary, &s.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update summary: %w", err)
	}

	return &s, nil
}

// Delete removes a record and reports whether anything was deleted.
func (r *PostgresSummaryRepository) Delete(id int64) (bool, error) {
	result, err := r.db.Exec(`
		DELETE FROM text_summaries
		WHERE id = $1
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete summary: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

// SetSummary writes generated summary text for a record. Used by the
// background summarizer.
func (r *PostgresSummaryRepository) SetSummary(id int64, text string) error {
	_, err := r.db.Exec(`
		UPDATE text_summaries
		SET summary = $2
		WHERE id = $1
	`, id, text)

	if err != nil {
		return fmt.Errorf("failed to set summary text: %w", err)
	}

	return nil
}

// GetPending returns records whose summary has not been generated yet.
func (r *PostgresSummaryRepository) GetPending(limit int) ([]Summary, error) {
	rows, err := r.db.Query(`
		SELECT id, url, summary, created_at
		FROM text_summaries
		WHERE summary IS NULL
		ORDER BY id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending summaries: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.URL, &s.Summary, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}

	return summaries, nil
}

// GetCount returns the total number of stored summaries.
func (r *PostgresSummaryRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM text_summaries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get summary count: %w", err)
	}
	return count, nil
}
