package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/service"
)

const findingPrefix = "finding_"

type evidenceView struct {
	VerificationID string
	Document       domain.ReviewDocument
	Locked         bool
}

func newEvidenceView(verificationID string, doc domain.ReviewDocument, locked bool) evidenceView {
	return evidenceView{VerificationID: verificationID, Document: doc, Locked: locked}
}

func verifyPath(id string) string {
	return "/verify/" + id
}

// handleVerify shows the access-code form until the bundle is unlocked for
// this session, then the documents and the report form.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	review, err := s.svc.Reviews.Get(r.Context(), sessionID(r), id)
	if err != nil {
		http.Error(w, "failed to load review", http.StatusInternalServerError)
		s.logger.Error("load review failed", "verification_id", id, "error", err)
		return
	}
	s.renderPage(w, r, map[string]any{
		"VerificationID": id,
		"Review":         review,
	}, "pages/verify.html", "partials/evidence.html")
}

func (s *Server) handleVerifyUnlock(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.svc.Reviews.Unlock(r.Context(), sessionID(r), id, r.FormValue("accessCode")); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			s.setFlash(w, "error", verr.Fields["accessCode"])
		} else {
			s.flashError(w, err)
		}
		redirect(w, r, verifyPath(id))
		return
	}
	s.flashSuccess(w, "Access granted")
	redirect(w, r, verifyPath(id))
}

func (s *Server) renderEvidence(w http.ResponseWriter, id string, doc *domain.ReviewDocument, submitted bool) {
	s.renderPartial(w, "evidence", newEvidenceView(id, *doc, submitted), "partials/evidence.html")
}

// handleVerifyDocument is polled while an evidence upload is in flight.
func (s *Server) handleVerifyDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	review, err := s.svc.Reviews.Get(r.Context(), sessionID(r), id)
	if err != nil {
		http.Error(w, "failed to load review", http.StatusInternalServerError)
		s.logger.Error("load review failed", "verification_id", id, "error", err)
		return
	}
	if review == nil {
		http.Error(w, "access code required", http.StatusForbidden)
		return
	}
	doc := review.Document(r.PathValue("docID"))
	if doc == nil {
		http.NotFound(w, r)
		return
	}
	s.renderEvidence(w, id, doc, review.Submitted)
}

func (s *Server) handleVerifyEvidence(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	docID := r.PathValue("docID")

	up, err := s.readUpload(w, r, "file", allowedEvidenceMIME)
	if err != nil {
		status, msg := uploadError(err, evidenceTypesHint)
		http.Error(w, msg, status)
		return
	}
	defer closeWithLog(up, "evidence file", s.logger)

	review, err := s.svc.Reviews.AttachEvidence(r.Context(), sessionID(r), id, docID, up.Kind, up.Filename, up.MIME, up.Body)
	switch {
	case errors.Is(err, service.ErrAccessLocked):
		http.Error(w, "access code required", http.StatusForbidden)
		return
	case errors.Is(err, service.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, service.ErrAlreadySubmitted):
		http.Error(w, "report already submitted", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, "failed to store upload", http.StatusInternalServerError)
		s.logger.Error("attach evidence failed", "verification_id", id, "document_id", docID, "error", err)
		return
	}
	s.renderEvidence(w, id, review.Document(docID), review.Submitted)
}

// handleVerifyReport saves every posted finding and files the report once
// each document has a description.
func (s *Server) handleVerifyReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	findings := map[string]string{}
	for k, vs := range r.PostForm {
		if docID, ok := strings.CutPrefix(k, findingPrefix); ok && len(vs) > 0 {
			findings[docID] = vs[0]
		}
	}

	_, err := s.svc.Reviews.Report(r.Context(), sessionID(r), id, findings)
	if err != nil {
		s.flashError(w, err)
		redirect(w, r, verifyPath(id))
		return
	}
	s.flashSuccess(w, "Your report has been submitted")
	redirect(w, r, verifyPath(id))
}
