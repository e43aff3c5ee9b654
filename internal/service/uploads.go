package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/mediastore"
)

// uploader is the subset of api.Client that forwards files.
type uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Uploads stages files locally and forwards them to the backend in the
// background so a request can return while the upload is still running.
type Uploads struct {
	staging  mediastore.Store
	uploader uploader
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewUploads(staging mediastore.Store, up uploader, logger *slog.Logger) *Uploads {
	return &Uploads{staging: staging, uploader: up, logger: logger}
}

// Stage copies r into the staging area and returns an uploading media item.
func (u *Uploads) Stage(ctx context.Context, prefix string, kind domain.MediaKind, filename, mimeType string, r io.Reader) (domain.Media, error) {
	key, err := u.staging.Save(ctx, prefix, mimeType, r)
	if err != nil {
		return domain.Media{}, fmt.Errorf("failed to stage upload: %w", err)
	}
	return domain.Media{
		ID:          uuid.NewString(),
		Kind:        kind,
		Filename:    filename,
		StagingKey:  key,
		IsUploading: true,
	}, nil
}

// Start forwards the staged file of m and then calls done with the hosted URL
// or the failure. The upload outlives the request that started it.
func (u *Uploads) Start(ctx context.Context, m domain.Media, done func(ctx context.Context, url string, err error)) {
	bg := context.WithoutCancel(ctx)
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		url, err := u.forward(bg, m)
		if err != nil {
			u.logger.Error("media upload failed", "media_id", m.ID, "error", err)
		} else {
			u.logger.Info("media uploaded", "media_id", m.ID, "url", url)
		}
		done(bg, url, err)
	}()
}

func (u *Uploads) forward(ctx context.Context, m domain.Media) (string, error) {
	rc, _, err := u.staging.Get(ctx, m.StagingKey)
	if err != nil {
		return "", fmt.Errorf("failed to open staged file: %w", err)
	}
	url, err := u.uploader.Upload(ctx, m.Filename, rc)
	if cerr := rc.Close(); cerr != nil {
		u.logger.Error("failed to close staged file", "key", m.StagingKey, "error", cerr)
	}
	if derr := u.staging.Delete(ctx, m.StagingKey); derr != nil {
		u.logger.Error("failed to delete staged file", "key", m.StagingKey, "error", derr)
	}
	return url, err
}

// Wait blocks until every started upload has finished.
func (u *Uploads) Wait() {
	u.wg.Wait()
}

// Purge removes staged files left behind by uploads that never finished.
func (u *Uploads) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	return u.staging.PurgeOlderThan(ctx, cutoff)
}
