package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/briefdesk/internal/db"
	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/mediastore/local"
	"github.com/vbonduro/briefdesk/internal/service"
	"github.com/vbonduro/briefdesk/internal/store"
	"github.com/vbonduro/briefdesk/internal/web"
)

func TestPurgeRemovesStaleStagedFilesOnce(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	database, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	dir := t.TempDir()
	staging, err := local.New(dir)
	require.NoError(t, err)

	stale := filepath.Join(dir, "draft_old.jpg")
	require.NoError(t, os.WriteFile(stale, []byte("jpeg"), 0o600))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	fresh := filepath.Join(dir, "draft_new.jpg")
	require.NoError(t, os.WriteFile(fresh, []byte("jpeg"), 0o600))

	uploads := service.NewUploads(staging, nil, logger)
	t.Cleanup(uploads.Wait)
	svc := web.Services{
		Drafts:  service.NewDraftService(store.NewDraftStore(database), uploads, nil, logger),
		Reviews: service.NewReviewService(store.NewReviewStore(database), nil, uploads, logger),
	}

	ctx := context.Background()
	key := service.DraftKey{SessionID: "sid-1", Kind: domain.KindListing, Type: domain.TypeSell}
	before, err := svc.Drafts.Load(ctx, key)
	require.NoError(t, err)

	purge(ctx, svc, 24*time.Hour, logger)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.Equal(t, 1, strings.Count(logs.String(), "purged staged files"))

	after, err := svc.Drafts.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID, "a draft younger than the ttl survives")
}
