package web

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/vbonduro/briefdesk/internal/domain"
)

const (
	maxUploadSize = 200 * 1024 * 1024 // 200 MB, videos included
	// formMemory is how much of a multipart body is held in memory before
	// the rest spills to temporary files.
	formMemory = 32 << 20
	sniffLen   = 512
)

var errUnsupportedMedia = errors.New("unsupported file type")

// allowedImageTypes is the set of MIME types accepted for uploaded images.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// allowedVideoTypes covers what DetectContentType reports for video
// containers; QuickTime is matched by its ftyp brand.
var allowedVideoTypes = map[string]bool{
	"video/mp4":  true,
	"video/webm": true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// isQuickTime reports whether data is an ISO media file with the "qt  " brand.
func isQuickTime(data []byte) bool {
	return len(data) >= 12 &&
		string(data[4:8]) == "ftyp" &&
		string(data[8:12]) == "qt  "
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// allowedMediaMIME sniffs an image or video and reports which it is.
func allowedMediaMIME(data []byte) (string, domain.MediaKind, bool) {
	if mime, ok := allowedImageMIME(data); ok {
		return mime, domain.MediaImage, true
	}
	if isQuickTime(data) {
		return "video/quicktime", domain.MediaVideo, true
	}
	mime := http.DetectContentType(data)
	if allowedVideoTypes[mime] {
		return mime, domain.MediaVideo, true
	}
	return "", "", false
}

// allowedEvidenceMIME accepts images, videos and PDFs, for review evidence.
func allowedEvidenceMIME(data []byte) (string, domain.MediaKind, bool) {
	if mime, kind, ok := allowedMediaMIME(data); ok {
		return mime, kind, true
	}
	if mime := http.DetectContentType(data); mime == "application/pdf" {
		return mime, domain.MediaDocument, true
	}
	return "", "", false
}

// allowedDocumentMIME accepts images and PDFs, for identity documents.
func allowedDocumentMIME(data []byte) (string, bool) {
	if mime, ok := allowedImageMIME(data); ok {
		return mime, true
	}
	if mime := http.DetectContentType(data); mime == "application/pdf" {
		return mime, true
	}
	return "", false
}

// sniffer reports the MIME type and kind of a file from its first bytes.
type sniffer func(data []byte) (string, domain.MediaKind, bool)

const (
	mediaTypesHint    = "Upload a JPEG, PNG, GIF or WebP image, or an MP4, WebM or MOV video"
	evidenceTypesHint = "Upload an image, a video or a PDF"
)

// upload is a sniffed multipart file. Body replays the sniffed prefix
// followed by the rest of the file, so nothing is buffered beyond it.
type upload struct {
	Filename string
	MIME     string
	Kind     domain.MediaKind
	Body     io.Reader
	file     multipart.File
}

func (u *upload) Close() error { return u.file.Close() }

// readUpload parses the multipart form and sniffs the file in field with
// sniff. The caller must close the returned upload.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string, sniff sniffer) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		return nil, err
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		closeWithLog(file, "upload file", s.logger)
		return nil, err
	}
	head = head[:n]

	mime, kind, ok := sniff(head)
	if !ok {
		closeWithLog(file, "upload file", s.logger)
		return nil, errUnsupportedMedia
	}
	return &upload{
		Filename: header.Filename,
		MIME:     mime,
		Kind:     kind,
		Body:     io.MultiReader(bytes.NewReader(head), file),
		file:     file,
	}, nil
}

// optionalDocument returns the file in field sniffed as an image or PDF, or
// nil when no file was posted. The form must already be parsed.
func (s *Server) optionalDocument(r *http.Request, field string) (*upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		closeWithLog(file, "document file", s.logger)
		return nil, err
	}
	head = head[:n]

	mime, ok := allowedDocumentMIME(head)
	if !ok {
		closeWithLog(file, "document file", s.logger)
		return nil, errUnsupportedMedia
	}
	return &upload{
		Filename: header.Filename,
		MIME:     mime,
		Body:     io.MultiReader(bytes.NewReader(head), file),
		file:     file,
	}, nil
}

// uploadError maps a failed readUpload to a status and message. hint names
// the accepted file types.
func uploadError(err error, hint string) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, errUnsupportedMedia):
		return http.StatusUnsupportedMediaType, "Unsupported file type. " + hint
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "File is too large"
	case errors.Is(err, http.ErrMissingFile):
		return http.StatusBadRequest, "Choose a file to upload"
	}
	return http.StatusBadRequest, "Upload could not be read"
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
