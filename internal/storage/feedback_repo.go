package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FeedbackRecord is a stored user rating of one answer.
type FeedbackRecord struct {
	ID        string
	Question  string
	Answer    string
	Feedback  string
	Comment   string
	CreatedAt time.Time
}

// FeedbackStore defines the interface for feedback storage operations.
type FeedbackStore interface {
	// Save persists a feedback record, assigning it an ID.
	Save(ctx context.Context, record *FeedbackRecord) error
	// ListRecent returns the newest records up to limit.
	ListRecent(ctx context.Context, limit int) ([]FeedbackRecord, error)
}

// FeedbackRepo provides methods for feedback operations.
// It implements the FeedbackStore interface.
type FeedbackRepo struct {
	db *sql.DB
}

// NewFeedbackRepo creates a new FeedbackRepo.
func NewFeedbackRepo(db *sql.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

// Save persists a feedback record. A missing ID is generated.
func (r *FeedbackRepo) Save(ctx context.Context, record *FeedbackRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (id, question, answer, feedback, comment)
		 VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.Question, record.Answer, record.Feedback, record.Comment,
	)
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	return nil
}

// ListRecent returns the newest feedback records up to limit.
func (r *FeedbackRepo) ListRecent(ctx context.Context, limit int) ([]FeedbackRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, question, answer, feedback, comment, created_at
		 FROM feedback ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []FeedbackRecord
	for rows.Next() {
		var rec FeedbackRecord
		var comment sql.NullString
		var createdAtStr string
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.Answer, &rec.Feedback, &comment, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		rec.Comment = comment.String

		rec.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAtStr)
		if err != nil {
			// Try alternative format (SQLite might use different format)
			rec.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
			}
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback rows: %w", err)
	}

	return records, nil
}
