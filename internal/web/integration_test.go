package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/db"
	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/mediastore/local"
	"github.com/vbonduro/briefdesk/internal/service"
	"github.com/vbonduro/briefdesk/internal/store"
	"github.com/vbonduro/briefdesk/internal/web"
	"github.com/vbonduro/briefdesk/internal/web/templates"
)

const testSecret = "test-secret"

// minimalJPEG is 512 bytes with the JPEG magic bytes header followed by zeros.
// http.DetectContentType identifies JPEG from the leading 0xFF 0xD8 bytes.
var minimalJPEG = func() []byte {
	b := make([]byte, 512)
	b[0] = 0xFF
	b[1] = 0xD8
	b[2] = 0xFF
	b[3] = 0xE0
	return b
}()

// fakeBackend is an in-process stand-in for the REST backend. Every handler
// answers with the {success, data, message} envelope.
type fakeBackend struct {
	mu           sync.Mutex
	briefs       []map[string]any
	reports      []api.DocumentReport
	rejectBriefs string
	subscribed   []string

	settings       domain.PublicAccess
	settingsDown   bool
	rejectSettings string
}

func (b *fakeBackend) reply(w http.ResponseWriter, status int, success bool, data any, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": success, "data": data, "message": msg})
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload-file", func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			b.reply(w, http.StatusBadRequest, false, nil, "file required")
			return
		}
		b.reply(w, http.StatusOK, true, map[string]string{"url": "https://cdn.example.test/" + header.Filename}, "")
	})
	mux.HandleFunc("POST /properties/sell/new", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.briefs = append(b.briefs, payload)
		if b.rejectBriefs != "" {
			b.reply(w, http.StatusBadRequest, false, nil, b.rejectBriefs)
			return
		}
		b.reply(w, http.StatusCreated, true, map[string]string{"_id": "brief-1"}, "")
	})
	mux.HandleFunc("GET /properties/sell/all", func(w http.ResponseWriter, r *http.Request) {
		b.reply(w, http.StatusOK, true, map[string]any{
			"properties": []map[string]any{{
				"_id":            "p1",
				"typeOfBuilding": "Detached Duplex",
				"price":          45000000,
				"location":       map[string]string{"state": "Lagos", "localGovernment": "Eti-Osa", "area": "Lekki Phase 1"},
			}},
			"total": 1,
			"page":  1,
		}, "")
	})
	mux.HandleFunc("POST /document-verification/v1/verify-access-code", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["accessCode"] != "ABC123" {
			b.reply(w, http.StatusBadRequest, false, nil, "Invalid access code")
			return
		}
		b.reply(w, http.StatusOK, true, map[string]any{
			"_id":             "v1",
			"fullName":        "Chidi Okeke",
			"propertyAddress": "12 Bourdillon Road, Ikoyi",
			"documents": []map[string]string{
				{"_id": "d1", "documentType": "Survey Plan", "documentNumber": "LS/123"},
			},
		}, "")
	})
	mux.HandleFunc("POST /document-verification/v1/report", func(w http.ResponseWriter, r *http.Request) {
		var rep api.DocumentReport
		_ = json.NewDecoder(r.Body).Decode(&rep)
		b.mu.Lock()
		b.reports = append(b.reports, rep)
		b.mu.Unlock()
		b.reply(w, http.StatusOK, true, nil, "")
	})
	mux.HandleFunc("GET /account/settings/public-access", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.settingsDown {
			dropConnection(w)
			return
		}
		b.reply(w, http.StatusOK, true, b.settings, "")
	})
	mux.HandleFunc("PUT /account/settings/public-access", func(w http.ResponseWriter, r *http.Request) {
		var body domain.PublicAccess
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		switch {
		case b.settingsDown:
			dropConnection(w)
		case b.rejectSettings != "":
			b.reply(w, http.StatusConflict, false, nil, b.rejectSettings)
		default:
			b.settings = body
			b.reply(w, http.StatusOK, true, body, "")
		}
	})
	mux.HandleFunc("POST /subscribe", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.subscribed = append(b.subscribed, body["email"])
		b.mu.Unlock()
		b.reply(w, http.StatusOK, true, nil, "")
	})
	return mux
}

// dropConnection closes the connection without a response, the way an
// unreachable backend looks to the client.
func dropConnection(w http.ResponseWriter) {
	conn, _, err := w.(http.Hijacker).Hijack()
	if err == nil {
		_ = conn.Close()
	}
}

func (b *fakeBackend) submitted() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.briefs...)
}

type testEnv struct {
	srv     *httptest.Server
	backend *fakeBackend
	client  *http.Client
}

// newTestServer wires the real services over in-memory SQLite, a temp
// staging directory and a fake backend.
func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend := &fakeBackend{}
	backendSrv := httptest.NewServer(backend.handler())
	t.Cleanup(backendSrv.Close)

	database, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	staging, err := local.New(t.TempDir())
	require.NoError(t, err)

	client := api.NewClient(backendSrv.URL, 5*time.Second, logger)
	uploads := service.NewUploads(staging, client, logger)
	t.Cleanup(uploads.Wait)

	svc := web.Services{
		Drafts:   service.NewDraftService(store.NewDraftStore(database), uploads, client, logger),
		Reviews:  service.NewReviewService(store.NewReviewStore(database), client, uploads, logger),
		Settings: service.NewSettingsService(store.NewSettingsCache(database), client, logger),
		Catalog:  service.NewCatalogService(client, logger),
		Accounts: service.NewAccountService(client, logger),
	}
	srv := httptest.NewServer(web.NewServer(svc, templates.FS, web.Options{JWTSecret: testSecret}, logger))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{srv: srv, backend: backend, client: &http.Client{Jar: jar}}
}

func (e *testEnv) signIn(t *testing.T, role string) {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       "user-1",
		"fullName": "Ada Obi",
		"email":    "ada@example.com",
		"userType": role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	u, err := url.Parse(e.srv.URL)
	require.NoError(t, err)
	e.client.Jar.SetCookies(u, []*http.Cookie{{Name: "token", Value: tok, Path: "/"}})
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) upload(t *testing.T, path, kind string, data []byte) (int, string) {
	t.Helper()
	return e.uploadFile(t, path, kind, "front.jpg", data)
}

func (e *testEnv) uploadFile(t *testing.T, path, kind, filename string, data []byte) (int, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("kind", kind))
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := e.client.Post(e.srv.URL+path, w.FormDataContentType(), body)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

const sellBase = "/briefs/listing/sell"

// setLocation picks Lagos / Eti-Osa the way the page does, one level per
// change, since a parent change drops dependent values posted with it.
func setLocation(t *testing.T, e *testEnv) {
	t.Helper()
	status, _ := e.post(t, sellBase+"/field", url.Values{"changed": {"state"}, "state": {"Lagos"}})
	require.Equal(t, http.StatusOK, status)
	status, _ = e.post(t, sellBase+"/field", url.Values{"changed": {"lga"}, "state": {"Lagos"}, "lga": {"Eti-Osa"}})
	require.Equal(t, http.StatusOK, status)
}

// fillSellDraft walks a building sale through every step to the summary.
func fillSellDraft(t *testing.T, e *testEnv) {
	t.Helper()
	setLocation(t, e)
	_, body := e.post(t, sellBase, url.Values{
		"action": {"next"}, "category": {"Residential"},
		"state": {"Lagos"}, "lga": {"Eti-Osa"}, "area": {"Ikoyi"}, "price": {"20000000"},
	})
	require.Contains(t, body, "<h2>Features &amp; conditions</h2>")

	_, body = e.post(t, sellBase, url.Values{
		"action": {"next"}, "condition": {"Brand New"}, "buildingType": {"Detached Duplex"},
		"bedrooms": {"4"}, "bathrooms": {"5"}, "documents": {"C of O"},
	})
	require.Contains(t, body, "<h2>Photos &amp; videos</h2>")

	status, _ := e.upload(t, sellBase+"/media", "image", minimalJPEG)
	require.Equal(t, http.StatusOK, status)
	require.Eventually(t, func() bool {
		_, list := e.get(t, sellBase+"/media?kind=image")
		return strings.Contains(list, "cdn.example.test") && !strings.Contains(list, "Uploading")
	}, 5*time.Second, 20*time.Millisecond)

	_, body = e.post(t, sellBase, url.Values{"action": {"next"}})
	require.Contains(t, body, "<h2>Ownership declaration</h2>")

	_, body = e.post(t, sellBase, url.Values{
		"action": {"next"}, "fullName": {"Ada Obi"}, "email": {"ada@example.com"},
		"phone": {"08012345678"}, "isLegalOwner": {"true"},
	})
	require.Contains(t, body, "Review your submission")
}

func TestIntegration_HomeIssuesSessionCookie(t *testing.T) {
	e := newTestServer(t)

	resp, err := e.client.Get(e.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	var sid string
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			sid = c.Value
		}
	}
	assert.NotEmpty(t, sid)
}

func TestIntegration_UnknownBriefTypeIsNotFound(t *testing.T) {
	e := newTestServer(t)

	status, _ := e.get(t, "/briefs/listing/buy")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIntegration_NextOnIncompleteStepShowsErrors(t *testing.T) {
	e := newTestServer(t)

	status, body := e.get(t, sellBase)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<h2>Basic details</h2>")
	assert.NotContains(t, body, "Property category is required")

	_, body = e.post(t, sellBase, url.Values{"action": {"next"}, "state": {"Lagos"}})
	assert.Contains(t, body, "<h2>Basic details</h2>")
	assert.Contains(t, body, "Property category is required")
	assert.Contains(t, body, "Price is required")
	assert.NotContains(t, body, "<h2>Features &amp; conditions</h2>")
}

func TestIntegration_StateChangeClearsDependents(t *testing.T) {
	e := newTestServer(t)

	setLocation(t, e)
	e.post(t, sellBase, url.Values{
		"action": {"save"}, "category": {"Residential"},
		"state": {"Lagos"}, "lga": {"Eti-Osa"}, "area": {"Ikoyi"},
	})

	status, body := e.post(t, sellBase+"/field", url.Values{
		"changed": {"state"}, "category": {"Residential"},
		"state": {"Oyo"}, "lga": {"Eti-Osa"}, "area": {"Ikoyi"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `name="state" value="Oyo"`)
	assert.Contains(t, body, `name="lga" value=""`)
	assert.Contains(t, body, `name="area" value=""`)
	assert.Contains(t, body, "Ibadan North")
}

func TestIntegration_SubmitSuccessResetsDraft(t *testing.T) {
	e := newTestServer(t)
	fillSellDraft(t, e)

	status, body := e.post(t, sellBase+"/submit", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Your listing has been submitted")
	assert.Contains(t, body, `id="success-modal"`)
	assert.Contains(t, body, "<h2>Basic details</h2>")

	briefs := e.backend.submitted()
	require.Len(t, briefs, 1)
	assert.EqualValues(t, 20000000, briefs[0]["price"])

	_, body = e.get(t, sellBase)
	assert.NotContains(t, body, `value="Ikoyi"`)
}

func TestIntegration_SubmitRejectedKeepsDraft(t *testing.T) {
	e := newTestServer(t)
	e.backend.mu.Lock()
	e.backend.rejectBriefs = "Submission failed"
	e.backend.mu.Unlock()
	fillSellDraft(t, e)

	_, body := e.post(t, sellBase+"/submit", nil)
	assert.Contains(t, body, "Submission failed")
	assert.Contains(t, body, "Review your submission")
	assert.Contains(t, body, "Ikoyi")
	assert.NotContains(t, body, `id="success-modal"`)
}

func TestIntegration_SubmitIncompleteDraftSendsNothing(t *testing.T) {
	e := newTestServer(t)

	_, body := e.post(t, sellBase+"/submit", nil)
	assert.Contains(t, body, "Please complete all required fields")
	assert.Empty(t, e.backend.submitted())
}

func TestIntegration_UploadRejectsUnsupportedFile(t *testing.T) {
	e := newTestServer(t)

	status, _ := e.upload(t, sellBase+"/media", "image", []byte("%PDF-1.4 not an image"))
	assert.Equal(t, http.StatusUnsupportedMediaType, status)
}

func TestIntegration_ListProperties(t *testing.T) {
	e := newTestServer(t)

	status, body := e.get(t, "/properties?type=sell")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Detached Duplex")
	assert.Contains(t, body, "₦45,000,000")
}

func TestIntegration_VerifyFlow(t *testing.T) {
	e := newTestServer(t)

	_, body := e.get(t, "/verify/v1")
	assert.Contains(t, body, "Enter the access code")

	_, body = e.post(t, "/verify/v1/unlock", url.Values{"accessCode": {"WRONG"}})
	assert.Contains(t, body, "Invalid access code")
	assert.Contains(t, body, "Enter the access code")

	_, body = e.post(t, "/verify/v1/unlock", url.Values{"accessCode": {"ABC123"}})
	assert.Contains(t, body, "Survey Plan")
	assert.Contains(t, body, "Chidi Okeke")

	_, body = e.post(t, "/verify/v1/report", url.Values{"finding_d1": {""}})
	assert.Contains(t, body, "Add a description for every document before submitting")

	status, body := e.uploadFile(t, "/verify/v1/evidence/d1", "", "registry.pdf", []byte("%PDF-1.7\nregistry extract"))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "registry.pdf")
	require.Eventually(t, func() bool {
		_, body := e.get(t, "/verify/v1/evidence/d1")
		return strings.Contains(body, `href="https://cdn.example.test/registry.pdf"`)
	}, 5*time.Second, 20*time.Millisecond)

	_, body = e.post(t, "/verify/v1/report", url.Values{"finding_d1": {"Plan number does not match the registry"}})
	assert.Contains(t, body, "Your report has been submitted")

	_, body = e.post(t, "/verify/v1/report", url.Values{"finding_d1": {"Second thoughts"}})
	assert.Contains(t, body, "This report has already been submitted")
	status, _ = e.uploadFile(t, "/verify/v1/evidence/d1", "", "late.pdf", []byte("%PDF-1.7"))
	assert.Equal(t, http.StatusConflict, status)

	e.backend.mu.Lock()
	defer e.backend.mu.Unlock()
	require.Len(t, e.backend.reports, 1)
	assert.Equal(t, "ABC123", e.backend.reports[0].AccessCode)
	require.Len(t, e.backend.reports[0].Findings, 1)
	assert.Equal(t, "d1", e.backend.reports[0].Findings[0].DocumentID)
	assert.Equal(t, "https://cdn.example.test/registry.pdf", e.backend.reports[0].Findings[0].EvidenceURL)
}

func TestIntegration_SubscribeValidatesEmail(t *testing.T) {
	e := newTestServer(t)

	_, body := e.post(t, "/subscribe", url.Values{"email": {"not-an-email"}})
	assert.Contains(t, body, "Please fix the highlighted fields")

	_, body = e.post(t, "/subscribe", url.Values{"email": {"ada@example.com"}})
	assert.Contains(t, body, "Thanks for subscribing")
	e.backend.mu.Lock()
	defer e.backend.mu.Unlock()
	assert.Equal(t, []string{"ada@example.com"}, e.backend.subscribed)
}

func TestIntegration_GuardsRedirect(t *testing.T) {
	e := newTestServer(t)
	e.client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := e.client.Get(e.srv.URL + "/account/settings")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	e.signIn(t, "User")
	resp, err = e.client.Get(e.srv.URL + "/account/kyc")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	e.signIn(t, "Agent")
	resp, err = e.client.Get(e.srv.URL + "/account/kyc")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Agent verification")
}

func TestIntegration_KYCShowsFieldErrors(t *testing.T) {
	e := newTestServer(t)
	e.signIn(t, "Agent")

	_, body := e.post(t, "/account/kyc", url.Values{"fullName": {"Ada Obi"}})
	assert.Contains(t, body, "Address is required")
	assert.Contains(t, body, "Upload a copy of your ID")
	assert.Contains(t, body, `value="Ada Obi"`)
}

func TestIntegration_RejectedOfflineSettingsAreDropped(t *testing.T) {
	e := newTestServer(t)
	e.backend.settings = domain.PublicAccess{Enabled: true, Slug: "ada"}
	e.signIn(t, "User")

	e.backend.mu.Lock()
	e.backend.settingsDown = true
	e.backend.mu.Unlock()
	_, body := e.post(t, "/account/settings", url.Values{"enabled": {"on"}, "publicSlug": {"taken"}})
	assert.Contains(t, body, "You appear to be offline")
	assert.Contains(t, body, `value="taken"`)

	e.backend.mu.Lock()
	e.backend.settingsDown = false
	e.backend.rejectSettings = "Slug already taken"
	e.backend.mu.Unlock()
	_, body = e.get(t, "/account/settings")
	assert.Contains(t, body, "Your offline changes were not saved: Slug already taken")
	assert.Contains(t, body, `value="ada"`)
	assert.NotContains(t, body, "have not reached the server yet")

	status, body := e.get(t, "/account/settings")
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "were not saved")
	assert.Contains(t, body, `value="ada"`)
}
