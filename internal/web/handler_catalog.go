package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/location"
)

const pageSize = 12

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, map[string]any{
		"ListingTypes":    domain.BriefTypes(domain.KindListing),
		"PreferenceTypes": domain.BriefTypes(domain.KindPreference),
		"ActiveNav":       "home",
	}, "pages/home.html")
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Accounts.Subscribe(r.Context(), r.FormValue("email")); err != nil {
		s.flashError(w, err)
		redirect(w, r, "/")
		return
	}
	s.flashSuccess(w, "Thanks for subscribing")
	redirect(w, r, "/")
}

// listingType reads a listing type from raw, defaulting to sell.
func listingType(raw string) (domain.BriefType, bool) {
	if raw == "" {
		return domain.TypeSell, true
	}
	t := domain.BriefType(raw)
	return t, domain.ValidBriefType(domain.KindListing, t)
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t, ok := listingType(q.Get("type"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	query := api.ListQuery{State: q.Get("state"), Page: page, Limit: pageSize}

	data := map[string]any{
		"Type":      t,
		"Types":     domain.BriefTypes(domain.KindListing),
		"States":    location.Default().States(),
		"Query":     query,
		"ActiveNav": "properties",
	}
	result, err := s.svc.Catalog.List(r.Context(), t, query)
	if err != nil {
		s.logger.Error("list properties failed", "type", t, "error", err)
		data["Flash"] = &Flash{Kind: "error", Message: errorMessage(err)}
	} else {
		data["Page"] = result
		data["HasNext"] = result.Total > page*pageSize
		data["HasPrev"] = page > 1
		data["PrevPage"] = page - 1
		data["NextPage"] = page + 1
	}
	s.renderPage(w, r, data, "pages/properties.html", "partials/property_card.html")
}

func (s *Server) handlePropertyDetail(w http.ResponseWriter, r *http.Request) {
	t, ok := listingType(r.PathValue("type"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	id := r.PathValue("id")

	view, err := s.svc.Catalog.Detail(r.Context(), t, id)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("property detail failed", "type", t, "id", id, "error", err)
		s.flashError(w, err)
		redirect(w, r, "/properties?type="+string(t))
		return
	}

	s.renderPage(w, r, map[string]any{
		"Type":      t,
		"Property":  view.Property,
		"Similar":   view.Similar,
		"ActiveNav": "properties",
	}, "pages/property_detail.html", "partials/property_card.html")
}

func (s *Server) handleAgentProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	profile, err := s.svc.Accounts.AgentProfile(r.Context(), username)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("agent profile failed", "username", username, "error", err)
		s.flashError(w, err)
		redirect(w, r, "/")
		return
	}

	s.renderPage(w, r, map[string]any{
		"Agent": profile,
		"Type":  domain.TypeSell,
	}, "pages/agent_profile.html", "partials/property_card.html")
}
