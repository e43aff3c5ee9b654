package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/brief"
	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/wizard"
)

// draftRepository is the subset of store.DraftStore that DraftService requires.
type draftRepository interface {
	Get(ctx context.Context, sessionID string, kind domain.Kind, t domain.BriefType) (*domain.Draft, error)
	Save(ctx context.Context, sessionID string, d *domain.Draft) error
	Delete(ctx context.Context, sessionID string, kind domain.Kind, t domain.BriefType) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// briefPoster is the subset of api.Client used to create records.
type briefPoster interface {
	CreateBrief(ctx context.Context, path string, payload any) (*api.Created, error)
}

// DraftKey identifies one draft: a browser session works on at most one
// draft per kind and type.
type DraftKey struct {
	SessionID string
	Kind      domain.Kind
	Type      domain.BriefType
}

func (k DraftKey) String() string {
	return k.SessionID + "/" + string(k.Kind) + "/" + string(k.Type)
}

type DraftService struct {
	drafts  draftRepository
	uploads *Uploads
	poster  briefPoster
	logger  *slog.Logger
	locks   keyedMutex
}

func NewDraftService(drafts draftRepository, uploads *Uploads, poster briefPoster, logger *slog.Logger) *DraftService {
	return &DraftService{
		drafts:  drafts,
		uploads: uploads,
		poster:  poster,
		logger:  logger,
	}
}

// Load returns the session's draft, creating an empty one on first visit.
func (s *DraftService) Load(ctx context.Context, key DraftKey) (*domain.Draft, error) {
	unlock := s.locks.lock(key.String())
	defer unlock()
	return s.loadLocked(ctx, key)
}

func (s *DraftService) loadLocked(ctx context.Context, key DraftKey) (*domain.Draft, error) {
	d, err := s.drafts.Get(ctx, key.SessionID, key.Kind, key.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if d != nil {
		return d, nil
	}

	d = domain.NewDraft(key.Kind, key.Type)
	d.ID = uuid.NewString()
	if err := s.drafts.Save(ctx, key.SessionID, d); err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	s.logger.Info("draft created", "draft_id", d.ID, "kind", key.Kind, "type", key.Type)
	return d, nil
}

// Dispatch applies actions to the draft and persists the result.
func (s *DraftService) Dispatch(ctx context.Context, key DraftKey, actions ...wizard.Action) (*domain.Draft, error) {
	unlock := s.locks.lock(key.String())
	defer unlock()

	d, err := s.loadLocked(ctx, key)
	if err != nil {
		return nil, err
	}
	next := wizard.Apply(d, actions...)
	if err := s.drafts.Save(ctx, key.SessionID, next); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return next, nil
}

// Cancel discards the draft. Uploads still in flight finish but their
// results are dropped.
func (s *DraftService) Cancel(ctx context.Context, key DraftKey) error {
	unlock := s.locks.lock(key.String())
	defer unlock()

	if err := s.drafts.Delete(ctx, key.SessionID, key.Kind, key.Type); err != nil {
		return err
	}
	s.logger.Info("draft cancelled", "session", key.SessionID, "kind", key.Kind, "type", key.Type)
	return nil
}

// AttachMedia stages a file, adds it to the draft as uploading and forwards
// it to the backend in the background. The returned draft shows the item
// with IsUploading set.
func (s *DraftService) AttachMedia(ctx context.Context, key DraftKey, kind domain.MediaKind, filename, mimeType string, r io.Reader) (*domain.Draft, domain.Media, error) {
	d, err := s.Load(ctx, key)
	if err != nil {
		return nil, domain.Media{}, err
	}

	m, err := s.uploads.Stage(ctx, "draft_"+d.ID, kind, filename, mimeType, r)
	if err != nil {
		return nil, domain.Media{}, err
	}

	d, err = s.Dispatch(ctx, key, wizard.AddMedia(m), wizard.Touch(mediaField(kind)))
	if err != nil {
		return nil, domain.Media{}, err
	}

	s.uploads.Start(ctx, m, func(ctx context.Context, url string, err error) {
		s.finishUpload(ctx, key, m.ID, url, err)
	})
	return d, m, nil
}

func mediaField(kind domain.MediaKind) wizard.Field {
	if kind == domain.MediaVideo {
		return wizard.FieldVideos
	}
	return wizard.FieldImages
}

func (s *DraftService) finishUpload(ctx context.Context, key DraftKey, mediaID, url string, uploadErr error) {
	unlock := s.locks.lock(key.String())
	defer unlock()

	d, err := s.drafts.Get(ctx, key.SessionID, key.Kind, key.Type)
	if err != nil {
		s.logger.Error("failed to load draft after upload", "media_id", mediaID, "error", err)
		return
	}
	if d == nil {
		return
	}
	if _, ok := d.FindMedia(mediaID); !ok {
		return
	}

	action := wizard.MediaUploaded(mediaID, url)
	if uploadErr != nil {
		action = wizard.MediaFailed(mediaID)
	}
	if err := s.drafts.Save(ctx, key.SessionID, wizard.Apply(d, action)); err != nil {
		s.logger.Error("failed to save draft after upload", "media_id", mediaID, "error", err)
	}
}

// RemoveMedia drops a media item from the draft.
func (s *DraftService) RemoveMedia(ctx context.Context, key DraftKey, mediaID string) (*domain.Draft, error) {
	return s.Dispatch(ctx, key, wizard.RemoveMedia(mediaID))
}

// Submit validates the whole draft, posts it and discards it on success.
// Nothing is sent while uploads are pending or a step is incomplete. A
// rejected or failed submission keeps the draft for another attempt.
func (s *DraftService) Submit(ctx context.Context, key DraftKey, user *domain.User) (*api.Created, error) {
	unlock := s.locks.lock(key.String())
	defer unlock()

	d, err := s.loadLocked(ctx, key)
	if err != nil {
		return nil, err
	}
	if d.Uploading() {
		return nil, ErrUploadsPending
	}
	if i, bad := wizard.FirstInvalid(d); bad {
		label := ""
		if v := wizard.Resolve(d); v != nil {
			label = v.Steps[i].Label
		}
		return nil, &StepError{Step: i, Label: label}
	}

	payload, err := brief.Assemble(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStepInvalid, err)
	}

	path := api.CreateBriefPath(d.Kind, d.Type, user.IsAgent())
	created, err := s.poster.CreateBrief(ctx, path, payload)
	if err != nil {
		if isTransportFailure(err) {
			s.logger.Error("draft submission failed", "draft_id", d.ID, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			s.logger.Warn("draft rejected by backend", "draft_id", d.ID, "status", apiErr.Status, "message", apiErr.Message)
		}
		return nil, err
	}

	if err := s.drafts.Delete(ctx, key.SessionID, key.Kind, key.Type); err != nil {
		s.logger.Error("failed to discard submitted draft", "draft_id", d.ID, "error", err)
	}
	s.logger.Info("draft submitted", "draft_id", d.ID, "kind", d.Kind, "type", d.Type, "record_id", created.ID)
	return created, nil
}

// Purge removes drafts idle for longer than ttl along with orphaned staged
// files.
func (s *DraftService) Purge(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	n, err := s.drafts.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if files, err := s.uploads.Purge(ctx, cutoff); err != nil {
		s.logger.Error("failed to purge staged files", "error", err)
	} else if files > 0 {
		s.logger.Info("purged staged files", "count", files)
	}
	return n, nil
}
