package ioweb

import (
	"net/http"

	"github.com/gnames/gitmo/pkg/errcode"
	"github.com/gnames/gitmo/pkg/schema"
	"github.com/go-chi/chi/v5"
)

type countryPage struct {
	Country   *schema.Country
	Detainees []schema.Detainee
}

type detaineePage struct {
	Detainee *schema.Detainee
	// Country is nil when the detainee code has no country row.
	Country *schema.Country
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.browser.Countries(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, "countries", countries)
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	iso := chi.URLParam(r, "iso")

	country, err := s.browser.Country(ctx, iso)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	detainees, err := s.browser.CountryDetainees(ctx, iso)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, r, "country", countryPage{
		Country:   country,
		Detainees: detainees,
	})
}

func (s *Server) handleDetainee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	isn := chi.URLParam(r, "isn")

	detainee, err := s.browser.Detainee(ctx, isn)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page := detaineePage{Detainee: detainee}
	country, err := s.browser.Country(ctx, detainee.ISO)
	switch {
	case err == nil:
		page.Country = country
	case errcode.Is(err, errcode.QueryNotFoundError):
		logger(ctx).Debug("Detainee without country",
			"isn", detainee.ISN, "iso", detainee.ISO)
	default:
		s.respondError(w, r, err)
		return
	}

	s.respond(w, r, "detainee", page)
}

func (s *Server) handleLongest(w http.ResponseWriter, r *http.Request) {
	detainees, err := s.browser.LongestHeld(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, "longest", detainees)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.browser.Stats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, "stats", stats)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "Page does not exist.")
}

func (s *Server) respond(
	w http.ResponseWriter,
	r *http.Request,
	page string,
	data any,
) {
	if err := s.views.render(w, http.StatusOK, page, data); err != nil {
		logger(r.Context()).Error("Cannot render page",
			"page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError)
	}
}
