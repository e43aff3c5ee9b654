package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vbonduro/briefdesk/internal/domain"
)

// SettingsCache remembers the last public-access settings seen per user.
type SettingsCache struct {
	db *sql.DB
}

func NewSettingsCache(db *sql.DB) *SettingsCache {
	return &SettingsCache{db: db}
}

func (s *SettingsCache) Get(ctx context.Context, userID string) (*domain.CachedSettings, error) {
	var (
		payload   []byte
		pending   bool
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, pending, updated_at FROM settings_cache WHERE user_id = ?
	`, userID).Scan(&payload, &pending, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached settings: %w", err)
	}

	c := &domain.CachedSettings{
		UserID:    userID,
		Pending:   pending,
		UpdatedAt: time.UnixMilli(updatedAt).UTC(),
	}
	if err := json.Unmarshal(payload, &c.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode cached settings: %w", err)
	}
	return c, nil
}

func (s *SettingsCache) Put(ctx context.Context, c *domain.CachedSettings) error {
	payload, err := json.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings_cache (user_id, payload, pending, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id)
		DO UPDATE SET payload = excluded.payload, pending = excluded.pending, updated_at = excluded.updated_at
	`, c.UserID, payload, c.Pending, c.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to cache settings: %w", err)
	}
	return nil
}
