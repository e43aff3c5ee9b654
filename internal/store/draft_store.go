package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vbonduro/briefdesk/internal/domain"
)

// DraftStore keeps one in-progress draft per browser session, kind and type.
type DraftStore struct {
	db *sql.DB
}

func NewDraftStore(db *sql.DB) *DraftStore {
	return &DraftStore{db: db}
}

// Get returns the stored draft, or nil if there is none.
func (s *DraftStore) Get(ctx context.Context, sessionID string, kind domain.Kind, t domain.BriefType) (*domain.Draft, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM drafts WHERE session_id = ? AND kind = ? AND brief_type = ?
	`, sessionID, string(kind), string(t)).Scan(&blob)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	d := &domain.Draft{}
	if err := decode(blob, d); err != nil {
		return nil, err
	}
	if d.Touched == nil {
		d.Touched = map[string]bool{}
	}
	return d, nil
}

func (s *DraftStore) Save(ctx context.Context, sessionID string, d *domain.Draft) error {
	blob, err := encode(d)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts (session_id, kind, brief_type, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (session_id, kind, brief_type)
		DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, sessionID, string(d.Kind), string(d.Type), blob, d.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Delete removes the draft. Deleting a missing draft is not an error.
func (s *DraftStore) Delete(ctx context.Context, sessionID string, kind domain.Kind, t domain.BriefType) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM drafts WHERE session_id = ? AND kind = ? AND brief_type = ?
	`, sessionID, string(kind), string(t))
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// PurgeOlderThan deletes drafts not updated since cutoff and returns how many
// were removed.
func (s *DraftStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM drafts WHERE updated_at < ?
	`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge drafts: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
