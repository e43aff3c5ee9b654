package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/location"
	"github.com/vbonduro/briefdesk/internal/service"
)

var idTypes = []string{"National ID", "International Passport", "Driver's Licence", "Voter's Card"}

func (s *Server) renderKYC(w http.ResponseWriter, r *http.Request, form api.KYC, errs map[string]string, flash *Flash) {
	data := map[string]any{
		"Form":      form,
		"Errors":    errs,
		"States":    location.Default().States(),
		"IDTypes":   idTypes,
		"ActiveNav": "account",
	}
	if flash != nil {
		data["Flash"] = flash
	}
	s.renderPage(w, r, data, "pages/kyc.html")
}

func (s *Server) handleKYCForm(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	s.renderKYC(w, r, api.KYC{FullName: user.Name}, nil, nil)
}

// handleKYCSubmit re-renders the form with inline errors on validation
// failure; backend failures become a toast over the kept values.
func (s *Server) handleKYCSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(formMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	k := api.KYC{
		FullName:             strings.TrimSpace(r.FormValue("fullName")),
		Address:              strings.TrimSpace(r.FormValue("address")),
		State:                strings.TrimSpace(r.FormValue("state")),
		IDType:               strings.TrimSpace(r.FormValue("idType")),
		IDNumber:             strings.TrimSpace(r.FormValue("idNumber")),
		AgentLicenseNumber:   strings.TrimSpace(r.FormValue("agentLicenseNumber")),
		CompanyName:          strings.TrimSpace(r.FormValue("companyName")),
		RegisteredWithAgency: r.FormValue("registeredWithAgency") == "on",
	}
	form := service.KYCForm{KYC: k}

	doc, err := s.optionalDocument(r, "idDocument")
	if err != nil {
		s.renderKYC(w, r, k, map[string]string{"idDocument": "Upload a JPEG, PNG, GIF, WebP or PDF file"},
			&Flash{Kind: "error", Message: msgFixFields})
		return
	}
	if doc != nil {
		defer closeWithLog(doc, "id document", s.logger)
		form.IDDocument = doc.Body
		form.IDDocumentName = doc.Filename
	}

	err = s.svc.Accounts.SubmitKYC(r.Context(), currentUser(r), form)
	var verr *service.ValidationError
	switch {
	case err == nil:
		s.flashSuccess(w, "Your verification details have been submitted")
		redirect(w, r, "/")
	case errors.Is(err, service.ErrNotAgent), errors.Is(err, api.ErrUnauthorized):
		s.flashError(w, err)
		redirect(w, r, "/")
	case errors.As(err, &verr):
		s.renderKYC(w, r, k, verr.Fields, &Flash{Kind: "error", Message: msgFixFields})
	default:
		s.logger.Error("kyc submission failed", "error", err)
		s.renderKYC(w, r, k, nil, &Flash{Kind: "error", Message: errorMessage(err)})
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"ActiveNav": "account"}
	view, err := s.svc.Settings.Load(r.Context(), currentUser(r))
	switch {
	case err == nil:
		data["View"] = view
		if view.Rejected != nil {
			data["Flash"] = &Flash{Kind: "error", Message: "Your offline changes were not saved: " + errorMessage(view.Rejected)}
		}
	case errors.Is(err, api.ErrUnauthorized):
		s.flashError(w, err)
		redirect(w, r, "/")
		return
	default:
		s.logger.Error("load settings failed", "error", err)
		data["Unavailable"] = true
		data["Flash"] = &Flash{Kind: "error", Message: errorMessage(err)}
	}
	s.renderPage(w, r, data, "pages/settings.html")
}

func (s *Server) handleSettingsSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	settings := domain.PublicAccess{
		Enabled:      r.PostForm.Get("enabled") == "on",
		Slug:         strings.TrimSpace(r.PostForm.Get("publicSlug")),
		Headline:     strings.TrimSpace(r.PostForm.Get("headline")),
		Bio:          strings.TrimSpace(r.PostForm.Get("bio")),
		ShowPhone:    r.PostForm.Get("showPhone") == "on",
		ShowEmail:    r.PostForm.Get("showEmail") == "on",
		ShowListings: r.PostForm.Get("showListings") == "on",
	}

	view, err := s.svc.Settings.Save(r.Context(), currentUser(r), settings)
	switch {
	case err != nil:
		s.flashError(w, err)
		if errors.Is(err, api.ErrUnauthorized) {
			redirect(w, r, "/")
			return
		}
	case view.Pending:
		s.setFlash(w, "warning", "You appear to be offline. Your changes are saved and will be sent when the connection returns")
	default:
		s.flashSuccess(w, "Settings saved")
	}
	redirect(w, r, "/account/settings")
}
