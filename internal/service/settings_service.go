package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/domain"
)

// settingsRepository is the subset of store.SettingsCache that SettingsService requires.
type settingsRepository interface {
	Get(ctx context.Context, userID string) (*domain.CachedSettings, error)
	Put(ctx context.Context, c *domain.CachedSettings) error
}

// settingsBackend is the subset of api.Client for public-access settings.
type settingsBackend interface {
	PublicSettings(ctx context.Context) (*domain.PublicAccess, error)
	UpdatePublicSettings(ctx context.Context, s domain.PublicAccess) (*domain.PublicAccess, error)
}

// SettingsView is what the settings page shows. Stale means the backend was
// unreachable and the values come from the local cache; Pending means an
// edit is saved locally and has not reached the backend yet. Rejected holds
// the backend's answer when a pending edit was refused and dropped.
type SettingsView struct {
	Settings domain.PublicAccess
	Stale    bool
	Pending  bool
	Rejected error
}

type SettingsService struct {
	cache   settingsRepository
	backend settingsBackend
	logger  *slog.Logger
	locks   keyedMutex
}

func NewSettingsService(cache settingsRepository, backend settingsBackend, logger *slog.Logger) *SettingsService {
	return &SettingsService{cache: cache, backend: backend, logger: logger}
}

// Load fetches the user's settings. A locally pending edit is pushed first.
// When the backend cannot be reached the cached copy is served.
func (s *SettingsService) Load(ctx context.Context, user *domain.User) (*SettingsView, error) {
	unlock := s.locks.lock(user.ID)
	defer unlock()

	cached, err := s.cache.Get(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to read settings cache", "user_id", user.ID, "error", err)
		cached = nil
	}

	var rejected error
	if cached != nil && cached.Pending {
		view, err := s.push(ctx, user, cached.Settings)
		switch {
		case err == nil:
			return view, nil
		case isTransportFailure(err):
			return &SettingsView{Settings: cached.Settings, Stale: true, Pending: true}, nil
		case errors.Is(err, api.ErrUnauthorized):
			return nil, err
		}
		// A refused offline edit is dropped; the page shows the backend's copy.
		s.logger.Warn("pending settings rejected", "user_id", user.ID, "error", err)
		rejected = err
		cached.Pending = false
		s.remember(ctx, user.ID, cached.Settings, false)
	}

	current, err := s.backend.PublicSettings(ctx)
	if err != nil {
		if isTransportFailure(err) && cached != nil {
			s.logger.Warn("serving cached settings", "user_id", user.ID, "error", err)
			return &SettingsView{Settings: cached.Settings, Stale: true, Rejected: rejected}, nil
		}
		if isTransportFailure(err) {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return nil, err
	}

	s.remember(ctx, user.ID, *current, false)
	return &SettingsView{Settings: *current, Rejected: rejected}, nil
}

// Save sends the settings to the backend. If the backend is unreachable the
// edit is kept locally as pending and the view reports it.
func (s *SettingsService) Save(ctx context.Context, user *domain.User, settings domain.PublicAccess) (*SettingsView, error) {
	unlock := s.locks.lock(user.ID)
	defer unlock()

	view, err := s.push(ctx, user, settings)
	if err == nil {
		return view, nil
	}
	if !isTransportFailure(err) {
		return nil, err
	}

	s.logger.Warn("settings saved offline", "user_id", user.ID, "error", err)
	if err := s.cache.Put(ctx, &domain.CachedSettings{
		UserID:    user.ID,
		Settings:  settings,
		Pending:   true,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("failed to save settings offline: %w", err)
	}
	return &SettingsView{Settings: settings, Pending: true}, nil
}

func (s *SettingsService) push(ctx context.Context, user *domain.User, settings domain.PublicAccess) (*SettingsView, error) {
	saved, err := s.backend.UpdatePublicSettings(ctx, settings)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, user.ID, *saved, false)
	return &SettingsView{Settings: *saved}, nil
}

func (s *SettingsService) remember(ctx context.Context, userID string, settings domain.PublicAccess, pending bool) {
	err := s.cache.Put(ctx, &domain.CachedSettings{
		UserID:    userID,
		Settings:  settings,
		Pending:   pending,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to cache settings", "user_id", userID, "error", err)
	}
}
