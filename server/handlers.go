package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/routerhaus/kitfinder/catalog"
	"github.com/routerhaus/kitfinder/facet"
	"github.com/routerhaus/kitfinder/models"
	"github.com/routerhaus/kitfinder/view"
)

const maxBodyBytes = 1 << 20

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Kits   int    `json:"kits"`
}

// KitsResponse is a filtered, sorted page of result cards.
type KitsResponse struct {
	Count           int          `json:"count"`
	Total           int          `json:"total"`
	Sort            string       `json:"sort"`
	Query           string       `json:"query"`
	ActiveCount     int          `json:"activeCount"`
	Kits            []view.Card  `json:"kits"`
	QuickChips      []facet.Chip `json:"quickChips"`
	ActiveChips     []facet.Chip `json:"activeChips"`
	Recommendations []view.Card  `json:"recommendations,omitempty"`
}

// FacetOptions is one facet with its checkbox options.
type FacetOptions struct {
	Key         string         `json:"key"`
	Label       string         `json:"label"`
	Cardinality string         `json:"cardinality"`
	Options     []facet.Option `json:"options"`
}

// FacetsResponse lists every facet with counts over the full catalog.
type FacetsResponse struct {
	Facets      []FacetOptions `json:"facets"`
	QuickChips  []facet.Chip   `json:"quickChips"`
	ActiveChips []facet.Chip   `json:"activeChips"`
	ActiveCount int            `json:"activeCount"`
}

// CompareResponse summarises the compared kits in request order.
type CompareResponse struct {
	Lines []string    `json:"lines"`
	Kits  []view.Card `json:"kits"`
}

// QuizRequest is the quiz form. A missing meshNeed is inferred from the
// coverage answer.
type QuizRequest struct {
	Coverage   string `json:"coverage" validate:"required"`
	DeviceLoad string `json:"deviceLoad" validate:"required"`
	PrimaryUse string `json:"primaryUse" validate:"required"`
	MeshNeed   *bool  `json:"meshNeed,omitempty"`
	WanPref    string `json:"wanPref,omitempty"`
	PricePref  string `json:"pricePref,omitempty"`
}

// Answer converts the request into a quiz answer.
func (q QuizRequest) Answer() models.QuizAnswer {
	answer := models.NewQuizAnswer(q.Coverage, q.DeviceLoad, q.PrimaryUse)
	if q.MeshNeed != nil {
		answer.MeshNeed = *q.MeshNeed
	}
	answer.WanPref = q.WanPref
	answer.PricePref = q.PricePref
	return answer
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	Success(w, HealthResponse{Status: "healthy", Kits: len(s.kits)}, s.logger)
}

// newState builds a private browse state restored from the request query.
func (s *Server) newState(r *http.Request) (*catalog.State, error) {
	values, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		return nil, err
	}
	st := catalog.New(s.kits, catalog.Options{
		Registry:            s.reg,
		CompareLimit:        s.opts.CompareLimit,
		RecommendationLimit: s.opts.RecommendationLimit,
		Logger:              s.logger,
	})
	st.Restore(values)
	return st, nil
}

func (s *Server) handleListKits(w http.ResponseWriter, r *http.Request) {
	st, err := s.newState(r)
	if err != nil {
		BadRequest(w, "malformed query string", s.logger)
		return
	}
	s.cached(w, "kits?"+st.Query().Encode(), func() any {
		return s.kitsResponse(st)
	})
}

func (s *Server) handleGetKit(w http.ResponseWriter, r *http.Request) {
	i, ok := s.index[chi.URLParam(r, "slug")]
	if !ok {
		NotFound(w, "kit not found", s.logger)
		return
	}
	Success(w, view.NewCard(&s.kits[i]), s.logger)
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	st, err := s.newState(r)
	if err != nil {
		BadRequest(w, "malformed query string", s.logger)
		return
	}
	s.cached(w, "facets?"+st.Query().Encode(), func() any {
		counts := st.FacetCounts()
		resp := FacetsResponse{
			QuickChips:  st.QuickChips(),
			ActiveChips: st.ActiveChips(),
			ActiveCount: st.ActiveCount(),
		}
		for _, f := range st.Registry().Facets() {
			resp.Facets = append(resp.Facets, FacetOptions{
				Key:         f.Key,
				Label:       f.Label,
				Cardinality: f.Cardinality.String(),
				Options:     counts.Options(f.Key),
			})
		}
		return resp
	})
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	st, err := s.newState(r)
	if err != nil {
		BadRequest(w, "malformed query string", s.logger)
		return
	}

	var req QuizRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		BadRequest(w, "invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		BadRequest(w, err.Error(), s.logger)
		return
	}

	st.ApplyQuizResult(req.Answer())
	s.logger.Debug("quiz applied",
		slog.String("coverage", req.Coverage),
		slog.String("device_load", req.DeviceLoad),
		slog.String("primary_use", req.PrimaryUse),
		slog.Int("matches", st.MatchCount()),
	)
	Success(w, s.kitsResponse(st), s.logger)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	st := catalog.New(s.kits, catalog.Options{
		Registry:     s.reg,
		CompareLimit: s.opts.CompareLimit,
		Logger:       s.logger,
	})
	seen := make(map[string]struct{})
	for _, slug := range strings.Split(r.URL.Query().Get("slugs"), ",") {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}

		if _, err := st.ToggleCompare(slug); err != nil {
			switch {
			case errors.Is(err, catalog.ErrUnknownKit):
				NotFound(w, err.Error(), s.logger)
			case errors.Is(err, catalog.ErrCompareFull):
				BadRequest(w, err.Error(), s.logger)
			default:
				Error(w, http.StatusInternalServerError, "internal server error", s.logger)
			}
			return
		}
	}

	items := st.CompareItems()
	Success(w, CompareResponse{Lines: view.CompareLines(items), Kits: view.Cards(items)}, s.logger)
}

func (s *Server) kitsResponse(st *catalog.State) KitsResponse {
	resp := KitsResponse{
		Count:       st.MatchCount(),
		Total:       len(st.Items()),
		Sort:        string(st.Sort()),
		Query:       st.Query().Encode(),
		ActiveCount: st.ActiveCount(),
		Kits:        view.Cards(st.Filtered()),
		QuickChips:  st.QuickChips(),
		ActiveChips: st.ActiveChips(),
	}
	if recs := st.Recommendations(); len(recs) > 0 {
		resp.Recommendations = view.Cards(recs)
	}
	return resp
}

// cached serves the encoded response for key from the LRU, computing and
// storing it on a miss.
func (s *Server) cached(w http.ResponseWriter, key string, build func() any) {
	if s.cache != nil {
		if body, ok := s.cache.Get(key); ok {
			s.metrics.cacheHit()
			w.Header().Set("X-Cache", "HIT")
			writeBody(w, http.StatusOK, body, s.logger)
			return
		}
		s.metrics.cacheMiss()
	}

	body, err := encode(http.StatusOK, build())
	if err != nil {
		s.logger.Error("failed to encode JSON response", slog.Any("error", err))
		Error(w, http.StatusInternalServerError, "internal server error", s.logger)
		return
	}
	if s.cache != nil {
		s.cache.Add(key, body)
		w.Header().Set("X-Cache", "MISS")
	}
	writeBody(w, http.StatusOK, body, s.logger)
}
