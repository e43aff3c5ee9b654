package web

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/format"
	"github.com/vbonduro/briefdesk/internal/service"
)

// Services groups the application services the handlers call.
type Services struct {
	Drafts   *service.DraftService
	Reviews  *service.ReviewService
	Settings *service.SettingsService
	Catalog  *service.CatalogService
	Accounts *service.AccountService
}

type Options struct {
	// JWTSecret verifies the backend session token. When empty the token is
	// decoded without verification; the backend still checks it on every call.
	JWTSecret    string
	CookieSecure bool
}

type Server struct {
	svc       Services
	templates fs.FS
	opts      Options
	mux       *http.ServeMux
	tmplFuncs template.FuncMap
	logger    *slog.Logger
}

func NewServer(svc Services, tmpl fs.FS, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		svc:       svc,
		templates: tmpl,
		opts:      opts,
		mux:       http.NewServeMux(),
		logger:    logger,
		tmplFuncs: template.FuncMap{
			"inc":       func(i int) int { return i + 1 },
			"naira":     format.Naira,
			"date":      format.Date,
			"has":       func(list []string, v string) bool { return slices.Contains(list, v) },
			"typeLabel": typeLabel,
			"card":      newPropertyCard,
			"evidence":  newEvidenceView,
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("POST /subscribe", s.handleSubscribe)

	s.mux.HandleFunc("GET /properties", s.handleListProperties)
	s.mux.HandleFunc("GET /properties/{type}/{id}", s.handlePropertyDetail)
	s.mux.HandleFunc("GET /agents/{username}", s.handleAgentProfile)

	s.mux.HandleFunc("GET /briefs/{kind}/{type}", s.handleWizard)
	s.mux.HandleFunc("POST /briefs/{kind}/{type}", s.handleWizardStep)
	s.mux.HandleFunc("POST /briefs/{kind}/{type}/field", s.handleWizardField)
	s.mux.HandleFunc("GET /briefs/{kind}/{type}/media", s.handleMediaList)
	s.mux.HandleFunc("POST /briefs/{kind}/{type}/media", s.handleMediaUpload)
	s.mux.HandleFunc("DELETE /briefs/{kind}/{type}/media/{mediaID}", s.handleMediaDelete)
	s.mux.HandleFunc("POST /briefs/{kind}/{type}/submit", s.handleWizardSubmit)
	s.mux.HandleFunc("POST /briefs/{kind}/{type}/cancel", s.handleWizardCancel)

	s.mux.Handle("GET /account/kyc", s.requireAgent(http.HandlerFunc(s.handleKYCForm)))
	s.mux.Handle("POST /account/kyc", s.requireAgent(http.HandlerFunc(s.handleKYCSubmit)))
	s.mux.Handle("GET /account/settings", s.requireUser(http.HandlerFunc(s.handleSettings)))
	s.mux.Handle("POST /account/settings", s.requireUser(http.HandlerFunc(s.handleSettingsSave)))

	s.mux.HandleFunc("GET /verify/{id}", s.handleVerify)
	s.mux.HandleFunc("POST /verify/{id}/unlock", s.handleVerifyUnlock)
	s.mux.HandleFunc("GET /verify/{id}/evidence/{docID}", s.handleVerifyDocument)
	s.mux.HandleFunc("POST /verify/{id}/evidence/{docID}", s.handleVerifyEvidence)
	s.mux.HandleFunc("POST /verify/{id}/report", s.handleVerifyReport)
}

// securityHeaders sets browser security headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline' https://unpkg.com; "+
				"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; "+
				"font-src https://fonts.gstatic.com; "+
				"img-src 'self' data: https:; "+
				"media-src 'self' https:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.session(s.mux))).ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// renderPage parses and executes a full-page template set. The pending flash
// message, unless data already carries one, and the signed-in user are added
// to data for the layout.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any, files ...string) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = s.popFlash(w, r)
	}
	data["User"] = currentUser(r)
	if _, ok := data["ActiveNav"]; !ok {
		data["ActiveNav"] = ""
	}

	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, append([]string{"base.html"}, files...)...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		s.logger.Error("parse page templates failed", "files", files, "error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.logger.Error("render page failed", "files", files, "error", err)
	}
}

// renderPartial parses the given files and executes the named template
// without the page layout. Used for HTMX swaps.
func (s *Server) renderPartial(w http.ResponseWriter, name string, data any, files ...string) {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		s.logger.Error("parse partial templates failed", "files", files, "error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render partial failed", "name", name, "error", err)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends the browser to target; HTMX requests get an HX-Redirect
// header instead of a 303 so the whole page navigates.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// propertyCard is the data of the property_card partial.
type propertyCard struct {
	Type     domain.BriefType
	Property api.Property
}

func newPropertyCard(t domain.BriefType, p api.Property) propertyCard {
	return propertyCard{Type: t, Property: p}
}

var typeLabels = map[domain.BriefType]string{
	domain.TypeSell:         "Sale",
	domain.TypeRent:         "Rent",
	domain.TypeJV:           "Joint Venture",
	domain.TypeShortlet:     "Shortlet",
	domain.TypeBuy:          "Buy",
	domain.TypeJointVenture: "Joint Venture",
}

func typeLabel(t domain.BriefType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}
