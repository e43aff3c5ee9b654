package web

import (
	"errors"
	"net/http"

	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/service"
	"github.com/vbonduro/briefdesk/internal/wizard"
)

var wizardFiles = []string{
	"pages/wizard.html",
	"partials/wizard_fields.html",
	"partials/media_list.html",
}

// fieldView is one rendered input of the active step.
type fieldView struct {
	Name        string
	Label       string
	Input       string
	Placeholder string
	AllowCreate bool
	Required    bool
	Value       string
	Values      []string
	Options     []string
	Media       []domain.Media
	MediaKind   domain.MediaKind
	Base        string
	Error       string
}

// Uploading reports whether any item of a media field is still uploading.
func (f fieldView) Uploading() bool {
	for _, m := range f.Media {
		if m.IsUploading {
			return true
		}
	}
	return false
}

type stepLink struct {
	Index  int
	Label  string
	Active bool
	Done   bool
}

// wizardView is everything the wizard templates need for one draft.
type wizardView struct {
	Draft     *domain.Draft
	Base      string
	Title     string
	Steps     []stepLink
	Step      wizard.Step
	StepIndex int
	First     bool
	Last      bool
	Fields    []fieldView
	Summary   []wizard.ReviewSection
	Uploading bool
}

func draftKey(r *http.Request) (service.DraftKey, bool) {
	kind := domain.Kind(r.PathValue("kind"))
	t := domain.BriefType(r.PathValue("type"))
	if !domain.ValidBriefType(kind, t) {
		return service.DraftKey{}, false
	}
	return service.DraftKey{SessionID: sessionID(r), Kind: kind, Type: t}, true
}

func wizardBase(key service.DraftKey) string {
	return "/briefs/" + string(key.Kind) + "/" + string(key.Type)
}

func wizardTitle(key service.DraftKey) string {
	if key.Kind == domain.KindPreference {
		return "Submit a " + typeLabel(key.Type) + " preference"
	}
	return "List a property for " + typeLabel(key.Type)
}

func newWizardView(key service.DraftKey, d *domain.Draft) *wizardView {
	step, idx := wizard.Current(d)
	v := &wizardView{
		Draft:     d,
		Base:      wizardBase(key),
		Title:     wizardTitle(key),
		Step:      step,
		StepIndex: idx,
		First:     idx == 0,
		Uploading: d.Uploading(),
	}
	if variant := wizard.Resolve(d); variant != nil {
		v.Last = idx == len(variant.Steps)-1
		for i, s := range variant.Steps {
			v.Steps = append(v.Steps, stepLink{
				Index:  i,
				Label:  s.Label,
				Active: i == idx && !d.ShowSummary,
				Done:   i < idx || d.ShowSummary,
			})
		}
	}
	if d.ShowSummary {
		v.Summary = wizard.Review(d)
		return v
	}

	errs := wizard.Errors(d)
	for _, f := range step.Fields {
		spec, ok := wizard.Lookup(f)
		if !ok {
			continue
		}
		fv := fieldView{
			Name:        string(f),
			Label:       spec.Label,
			Input:       string(spec.Input),
			Placeholder: spec.Placeholder,
			AllowCreate: spec.AllowCreate,
			Required:    step.Required[f],
			Value:       spec.Value(d),
			Values:      spec.Values(d),
			Options:     spec.Options(d),
			Media:       spec.Media(d),
			Error:       errs[f],
		}
		if spec.IsMedia() {
			fv.MediaKind = mediaKindOf(f)
			fv.Base = v.Base
		}
		v.Fields = append(v.Fields, fv)
	}
	return v
}

func mediaKindOf(f wizard.Field) domain.MediaKind {
	if f == wizard.FieldVideos {
		return domain.MediaVideo
	}
	return domain.MediaImage
}

// handleWizard renders the active step, or the summary once every step has
// been passed. ?submitted= shows the success modal over a fresh draft.
func (s *Server) handleWizard(w http.ResponseWriter, r *http.Request) {
	key, ok := draftKey(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	d, err := s.svc.Drafts.Load(r.Context(), key)
	if err != nil {
		http.Error(w, "failed to load draft", http.StatusInternalServerError)
		s.logger.Error("load draft failed", "kind", key.Kind, "type", key.Type, "error", err)
		return
	}

	s.renderPage(w, r, map[string]any{
		"Wizard":    newWizardView(key, d),
		"Submitted": r.URL.Query().Get("submitted") == "1",
		"ActiveNav": string(key.Kind),
	}, wizardFiles...)
}

// handleWizardStep saves the posted step and moves with action=next|prev.
// action=save only stores the values.
func (s *Server) handleWizardStep(w http.ResponseWriter, r *http.Request) {
	key, ok := draftKey(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	d, err := s.svc.Drafts.Load(r.Context(), key)
	if err != nil {
		s.flashError(w, err)
		redirect(w, r, wizardBase(key))
		return
	}

	var acts []wizard.Action
	if !d.ShowSummary {
		acts = wizard.FormActions(d, r.PostForm)
	}
	switch r.PostForm.Get("action") {
	case "next":
		acts = append(acts, wizard.Advance())
	case "prev":
		acts = append(acts, wizard.Retreat())
	}

	if _, err := s.svc.Drafts.Dispatch(r.Context(), key, acts...); err != nil {
		s.flashError(w, err)
		s.logger.Error("update draft failed", "kind", key.Kind, "type", key.Type, "error", err)
	}
	redirect(w, r, wizardBase(key))
}

// handleWizardField stores the step form after a single input changed and
// re-renders the step's fields, so dependent options follow their parent.
func (s *Server) handleWizardField(w http.ResponseWriter, r *http.Request) {
	key, ok := draftKey(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	d, err := s.svc.Drafts.Load(r.Context(), key)
	if err != nil {
		http.Error(w, "failed to load draft", http.StatusInternalServerError)
		s.logger.Error("load draft failed", "kind", key.Kind, "type", key.Type, "error", err)
		return
	}
	if d.ShowSummary {
		w.Header().Set("HX-Refresh", "true")
		return
	}

	acts := wizard.FormActions(d, r.PostForm)
	if changed := wizard.Field(r.PostForm.Get("changed")); wizard.FieldInStep(d, changed) {
		acts = append(acts, wizard.Touch(changed))
	}

	d, err = s.svc.Drafts.Dispatch(r.Context(), key, acts...)
	if err != nil {
		http.Error(w, "failed to update draft", http.StatusInternalServerError)
		s.logger.Error("update draft failed", "kind", key.Kind, "type", key.Type, "error", err)
		return
	}
	s.renderPartial(w, "wizard_fields", newWizardView(key, d), "partials/wizard_fields.html", "partials/media_list.html")
}

func (s *Server) renderMediaList(w http.ResponseWriter, key service.DraftKey, d *domain.Draft, kind domain.MediaKind) {
	f := wizard.FieldImages
	if kind == domain.MediaVideo {
		f = wizard.FieldVideos
	}
	spec, _ := wizard.Lookup(f)
	s.renderPartial(w, "media_list", fieldView{
		Name:      string(f),
		Label:     spec.Label,
		Input:     string(spec.Input),
		Media:     spec.Media(d),
		MediaKind: kind,
		Base:      wizardBase(key),
	}, "partials/media_list.html")
}

// handleMediaList is polled while uploads are in flight.
func (s *Server) handleMediaList(w http.ResponseWriter, r *http.Request) {
	key, ok := draftKey(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	d, err := s.svc.Drafts.Load(r.Context(), key)
	if err != nil {
		http.Error(w, "failed to load draft", http.StatusInternalServerError)
		s.logger.Error("load draft failed", "kind", key.Kind, "type", key.Type, "error", err)
		return
	}
	s.renderMediaList(w, key, d, domain.MediaKind(r.URL.Query().Get("kind")))
}

func (s *Server) handleMediaUpload(w http.ResponseWriter, r *http.Request) {
	key, ok := draftKey(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	up, err := s.readUpload(w, r, "file", allowedMediaMIME)
	if err != nil {
		status, msg := uploadError(err, mediaTypesHint)
		http.Error(w, msg, status)
		return
	}
	defer closeWithLog(up, "upload file", s.logger)

	if want := domain.MediaKind(r.FormValue("kind")); want != "" && want != up.Kind {
		http.Error(w, "File does not match the selected media type", http.StatusUnsupportedMediaType)
		return
	}

	d, _, err := s.svc.Drafts.AttachMedia(r.Context(), key, up.Kind, up.Filename, up.MIME, up.Body)
	if err != nil {
		http.Error(w, "failed to store upload", http.StatusInternalServerError)
		s.logger.Error("attach media failed", "kind", key.Kind, "type", key.Type, "error", err)
		return
	}
	s.renderMediaList(w, key, d, up.Kind)
}

func (s *Server) handleMediaDelete(w http.ResponseWriter, r *http.Request) {
	key, ok := draftKey(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	d, err := s.svc.Drafts.Load(r.Context(), key)
	if err != nil {
		http.Error(w, "failed to load draft", http.StatusInternalServerError)
		s.logger.Error("load draft failed", "kind", key.Kind, "type", key.Type, "error", err)
		return
	}
	m, found := d.FindMedia(r.PathValue("mediaID"))
	if !found {
		http.NotFound(w, r)
		return
	}

	d, err = s.svc.Drafts.RemoveMedia(r.Context(), key, m.ID)
	if err != nil {
		http.Error(w, "failed to remove media", http.StatusInternalServerError)
		s.logger.Error("remove media failed", "media_id", m.ID, "error", err)
		return
	}
	s.renderMediaList(w, key, d, m.Kind)
}

// handleWizardSubmit sends the draft. Failures keep the draft and show a
// toast; success discards it and opens the success modal on a fresh draft.
func (s *Server) handleWizardSubmit(w http.ResponseWriter, r *http.Request) {
	key, ok := draftKey(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	_, err := s.svc.Drafts.Submit(r.Context(), key, currentUser(r))
	if err != nil {
		s.flashError(w, err)
		var stepErr *service.StepError
		if errors.As(err, &stepErr) {
			s.logger.Info("submit blocked by incomplete step", "step", stepErr.Label)
		}
		redirect(w, r, wizardBase(key))
		return
	}

	s.flashSuccess(w, "Your "+string(key.Kind)+" has been submitted")
	redirect(w, r, wizardBase(key)+"?submitted=1")
}

func (s *Server) handleWizardCancel(w http.ResponseWriter, r *http.Request) {
	key, ok := draftKey(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.svc.Drafts.Cancel(r.Context(), key); err != nil {
		s.flashError(w, err)
		s.logger.Error("cancel draft failed", "kind", key.Kind, "type", key.Type, "error", err)
	}
	redirect(w, r, "/")
}
