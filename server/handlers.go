package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/newscompare/newscompare/pkg/domain"
	"github.com/newscompare/newscompare/pkg/render"
)

// formData fills the query form template
type formData struct {
	Prefix       string
	Category     string
	Location     string
	Locations    []string
	LookbackDays int
}

// resultsData fills the two-panel results template
type resultsData struct {
	Query    string
	Location string
	Stories  render.Panel
	Research render.Panel
}

// defaultForm returns the form in its initial state
func (s *Server) defaultForm() formData {
	location := ""
	if len(s.cfg.Locations) > 0 {
		location = s.cfg.Locations[0]
	}
	return formData{
		Location:     location,
		Locations:    s.cfg.Locations,
		LookbackDays: s.cfg.Query.DefaultLookbackDays,
	}
}

// indexHandler displays the comparison form
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.templates.ExecuteTemplate(w, "index.html", s.defaultForm()); err != nil {
		log.Printf("[ERROR] failed to render index: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// randomizeHandler refills the form with a random prefix, category and
// location
func (s *Server) randomizeHandler(w http.ResponseWriter, r *http.Request) {
	data := s.defaultForm()
	data.Prefix = s.sampler.Pick(s.cfg.IndustryPrefixes) + ":"
	data.Category = s.sampler.Sample(s.cfg.Taxonomy)
	data.Location = s.sampler.Pick(s.cfg.Locations)

	if err := s.templates.ExecuteTemplate(w, "query-form.html", data); err != nil {
		log.Printf("[ERROR] failed to render form: %v", err)
		http.Error(w, "Failed to render form", http.StatusInternalServerError)
	}
}

// compareHandler runs the comparison for a form submission and renders the
// two result panels
func (s *Server) compareHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderInlineError(w, fmt.Errorf("invalid form: %w", err), http.StatusBadRequest)
		return
	}

	req := s.requestFromForm(r)
	if err := req.Validate(); err != nil {
		s.renderInlineError(w, err, http.StatusBadRequest)
		return
	}

	log.Printf("[INFO] comparing news for %q in %q, lookback %d days", req.Category, req.Location, req.LookbackDays)
	storiesRes, researchRes := s.comparator.Run(r.Context(), req)

	data := resultsData{
		Query:    req.Category,
		Location: req.Location,
		Stories:  s.renderer.Result(storiesRes),
		Research: s.renderer.Result(researchRes),
	}
	if err := s.templates.ExecuteTemplate(w, "results.html", data); err != nil {
		log.Printf("[ERROR] failed to render results: %v", err)
		http.Error(w, "Failed to render results", http.StatusInternalServerError)
	}
}

// requestFromForm builds an immutable query request from the submitted form
// fields, joining the prefix into the category the way the form displays it
func (s *Server) requestFromForm(r *http.Request) domain.QueryRequest {
	prefix := strings.TrimSpace(r.FormValue("prefix"))
	category := strings.TrimSpace(r.FormValue("category"))
	if prefix != "" {
		category = strings.TrimSpace(prefix + " " + category)
	}

	days := s.cfg.Query.DefaultLookbackDays
	if v := r.FormValue("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}

	return domain.QueryRequest{
		Category:     category,
		Location:     r.FormValue("location"),
		LookbackDays: days,
	}
}

// renderInlineError writes an error fragment for htmx swaps
func (s *Server) renderInlineError(w http.ResponseWriter, err error, code int) {
	w.WriteHeader(code)
	if tmplErr := s.templates.ExecuteTemplate(w, "error.html", err.Error()); tmplErr != nil {
		log.Printf("[ERROR] failed to render error fragment: %v", tmplErr)
	}
}

// compareAPIHandler is the JSON twin of compareHandler
func (s *Server) compareAPIHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	if req.LookbackDays == 0 {
		req.LookbackDays = s.cfg.Query.DefaultLookbackDays
	}
	if err := req.Validate(); err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	storiesRes, researchRes := s.comparator.Run(r.Context(), req)

	renderJSON(w, r, http.StatusOK, map[string]interface{}{
		"request":  req,
		"stories":  s.renderer.Result(storiesRes),
		"research": s.renderer.Result(researchRes),
	})
}

// randomCategoryHandler returns a random form pre-fill as JSON
func (s *Server) randomCategoryHandler(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, r, http.StatusOK, map[string]string{
		"prefix":   s.sampler.Pick(s.cfg.IndustryPrefixes),
		"category": s.sampler.Sample(s.cfg.Taxonomy),
		"location": s.sampler.Pick(s.cfg.Locations),
	})
}

// extractHandler fetches an article URL and returns its readable text
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Extraction.Enabled || s.extractor == nil {
		renderError(w, r, fmt.Errorf("extraction is not enabled"), http.StatusNotFound)
		return
	}

	articleURL := r.URL.Query().Get("url")
	if articleURL == "" {
		renderError(w, r, fmt.Errorf("url parameter is required"), http.StatusBadRequest)
		return
	}

	article, err := s.extractor.Extract(r.Context(), articleURL)
	if err != nil {
		log.Printf("[WARN] extraction failed for %s: %v", articleURL, err)
		renderError(w, r, err, http.StatusBadGateway)
		return
	}
	renderJSON(w, r, http.StatusOK, article)
}

// rssHandler exports a live stories query as an RSS feed
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	req := domain.QueryRequest{
		Category:     r.URL.Query().Get("category"),
		Location:     r.URL.Query().Get("location"),
		LookbackDays: s.cfg.Query.DefaultLookbackDays,
	}
	if v := r.URL.Query().Get("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			req.LookbackDays = parsed
		}
	}
	if err := req.Validate(); err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	items, err := s.stories.Fetch(r.Context(), req)
	if err != nil {
		log.Printf("[WARN] rss stories fetch failed: %v", err)
		renderError(w, r, err, http.StatusBadGateway)
		return
	}

	rss, err := s.rssGen.GenerateRSS(items, req)
	if err != nil {
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[WARN] failed to write rss response: %v", err)
	}
}
