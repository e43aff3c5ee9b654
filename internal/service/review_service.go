package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/domain"
)

// reviewRepository is the subset of store.ReviewStore that ReviewService requires.
type reviewRepository interface {
	Get(ctx context.Context, sessionID, verificationID string) (*domain.Review, error)
	Save(ctx context.Context, r *domain.Review) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// verifier is the subset of api.Client used by third-party reviewers.
type verifier interface {
	VerifyAccessCode(ctx context.Context, verificationID, code string) (*api.DocumentBundle, error)
	SubmitDocumentReport(ctx context.Context, verificationID string, r api.DocumentReport) error
}

// ReviewService drives the document-verification flow: an access code
// unlocks a bundle for the session, the reviewer records a finding per
// document and submits the report.
type ReviewService struct {
	reviews reviewRepository
	backend verifier
	uploads *Uploads
	logger  *slog.Logger
	locks   keyedMutex
}

func NewReviewService(reviews reviewRepository, backend verifier, uploads *Uploads, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		backend: backend,
		uploads: uploads,
		logger:  logger,
	}
}

func reviewKey(sessionID, verificationID string) string {
	return sessionID + "/" + verificationID
}

// Get returns the unlocked review, or nil while it is still locked.
func (s *ReviewService) Get(ctx context.Context, sessionID, verificationID string) (*domain.Review, error) {
	r, err := s.reviews.Get(ctx, sessionID, verificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return r, nil
}

// Unlock exchanges an access code for the document bundle. A review that is
// already unlocked stays unlocked and the code is not checked again.
func (s *ReviewService) Unlock(ctx context.Context, sessionID, verificationID, code string) (*domain.Review, error) {
	unlock := s.locks.lock(reviewKey(sessionID, verificationID))
	defer unlock()

	existing, err := s.Get(ctx, sessionID, verificationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &ValidationError{Fields: map[string]string{"accessCode": "Access code is required"}}
	}

	bundle, err := s.backend.VerifyAccessCode(ctx, verificationID, code)
	if err != nil {
		if isTransportFailure(err) {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return nil, err
	}

	r := &domain.Review{
		SessionID:       sessionID,
		VerificationID:  verificationID,
		AccessCode:      code,
		BuyerName:       bundle.BuyerName,
		PropertyAddress: bundle.PropertyAddress,
		UnlockedAt:      time.Now().UTC(),
	}
	for _, doc := range bundle.Documents {
		r.Documents = append(r.Documents, domain.ReviewDocument{
			ID:     doc.ID,
			Type:   doc.DocumentType,
			Number: doc.DocumentNumber,
			URL:    doc.URL,
		})
	}
	if err := s.reviews.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	s.logger.Info("documents unlocked", "verification_id", verificationID, "documents", len(r.Documents))
	return r, nil
}

// update loads an unlocked review, applies fn and saves it.
func (s *ReviewService) update(ctx context.Context, sessionID, verificationID string, fn func(r *domain.Review) error) (*domain.Review, error) {
	r, err := s.Get(ctx, sessionID, verificationID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrAccessLocked
	}
	if err := fn(r); err != nil {
		return r, err
	}
	if err := s.reviews.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	return r, nil
}

// SetFindings records descriptions keyed by document id.
func (s *ReviewService) SetFindings(ctx context.Context, sessionID, verificationID string, findings map[string]string) (*domain.Review, error) {
	unlock := s.locks.lock(reviewKey(sessionID, verificationID))
	defer unlock()

	return s.update(ctx, sessionID, verificationID, func(r *domain.Review) error {
		if r.Submitted {
			return ErrAlreadySubmitted
		}
		applyFindings(r, findings)
		return nil
	})
}

func applyFindings(r *domain.Review, findings map[string]string) {
	for id, text := range findings {
		if doc := r.Document(id); doc != nil {
			doc.Description = strings.TrimSpace(text)
		}
	}
}

// AttachEvidence uploads a replacement or supporting file for one document.
func (s *ReviewService) AttachEvidence(ctx context.Context, sessionID, verificationID, documentID string, kind domain.MediaKind, filename, mimeType string, rd io.Reader) (*domain.Review, error) {
	unlock := s.locks.lock(reviewKey(sessionID, verificationID))
	defer unlock()

	var staged domain.Media
	r, err := s.update(ctx, sessionID, verificationID, func(r *domain.Review) error {
		if r.Submitted {
			return ErrAlreadySubmitted
		}
		doc := r.Document(documentID)
		if doc == nil {
			return ErrNotFound
		}
		m, err := s.uploads.Stage(ctx, "review_"+verificationID, kind, filename, mimeType, rd)
		if err != nil {
			return err
		}
		staged = m
		doc.Evidence = &m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.uploads.Start(ctx, staged, func(ctx context.Context, url string, err error) {
		s.finishEvidence(ctx, sessionID, verificationID, documentID, staged.ID, url, err)
	})
	return r, nil
}

func (s *ReviewService) finishEvidence(ctx context.Context, sessionID, verificationID, documentID, mediaID, url string, uploadErr error) {
	unlock := s.locks.lock(reviewKey(sessionID, verificationID))
	defer unlock()

	_, err := s.update(ctx, sessionID, verificationID, func(r *domain.Review) error {
		doc := r.Document(documentID)
		if doc == nil || doc.Evidence == nil || doc.Evidence.ID != mediaID {
			return nil
		}
		doc.Evidence.IsUploading = false
		doc.Evidence.StagingKey = ""
		if uploadErr != nil {
			doc.Evidence.Failed = true
			return nil
		}
		doc.Evidence.URL = url
		return nil
	})
	if err != nil {
		s.logger.Error("failed to record evidence upload", "verification_id", verificationID, "error", err)
	}
}

// Report saves findings and submits the review. Every document must carry a
// description and no evidence may still be uploading. A review is reported
// once.
func (s *ReviewService) Report(ctx context.Context, sessionID, verificationID string, findings map[string]string) (*domain.Review, error) {
	unlock := s.locks.lock(reviewKey(sessionID, verificationID))
	defer unlock()

	r, err := s.update(ctx, sessionID, verificationID, func(r *domain.Review) error {
		if r.Submitted {
			return ErrAlreadySubmitted
		}
		applyFindings(r, findings)
		return nil
	})
	if err != nil {
		return nil, err
	}

	missing := map[string]string{}
	for _, doc := range r.Documents {
		if doc.Description == "" {
			missing[doc.ID] = "Describe what you found for " + doc.Type
		}
	}
	if len(missing) > 0 {
		return r, fmt.Errorf("%w: %w", ErrReportIncomplete, &ValidationError{Fields: missing})
	}
	if r.Uploading() {
		return r, ErrUploadsPending
	}

	report := api.DocumentReport{AccessCode: r.AccessCode}
	for _, doc := range r.Documents {
		f := api.DocumentFinding{DocumentID: doc.ID, Description: doc.Description}
		if doc.Evidence != nil && doc.Evidence.Ready() {
			f.EvidenceURL = doc.Evidence.URL
		}
		report.Findings = append(report.Findings, f)
	}

	if err := s.backend.SubmitDocumentReport(ctx, verificationID, report); err != nil {
		if isTransportFailure(err) {
			s.logger.Error("document report failed", "verification_id", verificationID, "error", err)
			return r, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return r, err
	}

	r.Submitted = true
	if err := s.reviews.Save(ctx, r); err != nil {
		s.logger.Error("failed to mark review submitted", "verification_id", verificationID, "error", err)
	}
	s.logger.Info("document report submitted", "verification_id", verificationID)
	return r, nil
}

// Purge forgets unlocked bundles older than ttl.
func (s *ReviewService) Purge(ctx context.Context, ttl time.Duration) (int64, error) {
	return s.reviews.PurgeOlderThan(ctx, time.Now().Add(-ttl))
}
