package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vbonduro/briefdesk/internal/domain"
)

// ReviewStore holds document bundles unlocked in a browser session.
type ReviewStore struct {
	db *sql.DB
}

func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// Get returns the unlocked review, or nil if the session has not unlocked it.
func (s *ReviewStore) Get(ctx context.Context, sessionID, verificationID string) (*domain.Review, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT bundle FROM review_sessions WHERE session_id = ? AND verification_id = ?
	`, sessionID, verificationID).Scan(&blob)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	r := &domain.Review{}
	if err := decode(blob, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReviewStore) Save(ctx context.Context, r *domain.Review) error {
	blob, err := encode(r)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO review_sessions (session_id, verification_id, access_code, bundle, unlocked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (session_id, verification_id)
		DO UPDATE SET bundle = excluded.bundle
	`, r.SessionID, r.VerificationID, r.AccessCode, blob, r.UnlockedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

func (s *ReviewStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM review_sessions WHERE unlocked_at < ?
	`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge reviews: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
