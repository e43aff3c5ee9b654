// Package mediastore stages uploaded images, videos and PDFs on disk while
// they are forwarded to the backend.
package mediastore

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrNotFound = errors.New("media not found")

type Store interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (key string, err error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	// PurgeOlderThan removes staged files last modified before cutoff.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

var extByMIME = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
	"application/pdf": ".pdf",
}

// Ext returns the file extension for a supported MIME type, or "".
func Ext(mimeType string) string {
	return extByMIME[mimeType]
}

// MIMEType is the inverse of Ext. Unknown extensions map to
// application/octet-stream.
func MIMEType(ext string) string {
	for m, e := range extByMIME {
		if e == ext {
			return m
		}
	}
	return "application/octet-stream"
}
