package web

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/service"
)

const (
	flashCookie = "flash"

	msgGeneric        = "An error occurred, please try again"
	msgFixFields      = "Please fix the highlighted fields"
	msgIncomplete     = "Please complete all required fields"
	msgUploadsPending = "Please wait for uploads to finish"
	msgSignIn         = "Your session has expired, please sign in again"
)

// Flash is a one-shot toast shown on the next rendered page.
type Flash struct {
	Kind    string `json:"k"`
	Message string `json:"m"`
}

func (s *Server) setFlash(w http.ResponseWriter, kind, msg string) {
	raw, err := json.Marshal(Flash{Kind: kind, Message: msg})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending toast, if any, and clears it.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

func (s *Server) flashSuccess(w http.ResponseWriter, msg string) {
	s.setFlash(w, "success", msg)
}

// flashError turns err into a user-facing toast: backend rejections show the
// backend's message, known conditions get a fixed message and anything else
// the generic one.
func (s *Server) flashError(w http.ResponseWriter, err error) {
	s.setFlash(w, "error", errorMessage(err))
	if errors.Is(err, api.ErrUnauthorized) {
		s.expireToken(w)
	}
}

func errorMessage(err error) string {
	var apiErr *api.Error
	var verr *service.ValidationError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, api.ErrUnauthorized):
		return msgSignIn
	case errors.Is(err, service.ErrUploadsPending):
		return msgUploadsPending
	case errors.Is(err, service.ErrStepInvalid):
		return msgIncomplete
	case errors.Is(err, service.ErrAccessLocked):
		return "Enter your access code to continue"
	case errors.Is(err, service.ErrNotAgent):
		return "Only agents can submit verification details"
	case errors.Is(err, service.ErrAlreadySubmitted):
		return "This report has already been submitted"
	case errors.Is(err, service.ErrReportIncomplete):
		return "Add a description for every document before submitting"
	case errors.As(err, &verr):
		return msgFixFields
	}
	return msgGeneric
}
