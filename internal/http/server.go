package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/denisok6893-rgb/property-underwriting/internal/domain"
	"github.com/denisok6893-rgb/property-underwriting/internal/underwriting"
)

// Defaults fill in request fields the caller left out.
type Defaults struct {
	Strategy     domain.Strategy
	HorizonYears int
}

type Server struct {
	Engine     *underwriting.Engine
	Properties PropertiesRepo
	Defaults   Defaults

	log      zerolog.Logger
	validate *validator.Validate
}

func NewServer(engine *underwriting.Engine, properties PropertiesRepo, defaults Defaults, log zerolog.Logger) *Server {
	if properties == nil {
		properties = NewMemoryPropertiesRepo(nil)
	}
	if !defaults.Strategy.Valid() {
		defaults.Strategy = domain.StrategyRental
	}
	return &Server{
		Engine:     engine,
		Properties: properties,
		Defaults:   defaults,
		log:        log.With().Str("component", "http").Logger(),
		validate:   validator.New(),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/assumptions/default", s.handleDefaultAssumptions)
	r.Post("/score", s.handleScore)
	r.Post("/rank", s.handleRank)
	r.Post("/amortization", s.handleAmortization)

	r.Route("/properties", func(r chi.Router) {
		r.Get("/", s.handlePropertiesList)
		r.Post("/", s.handlePropertiesCreate)
		r.Get("/{id}", s.handlePropertiesGetByID)
		r.Delete("/{id}", s.handlePropertiesDelete)
		r.Get("/{id}/score", s.handlePropertyScore)
	})
	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDefaultAssumptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.DefaultAssumptions())
}

// ---- Scoring ----

// ScoringParams is the scoring context as sent by clients. Omitted fields take
// the server defaults.
type ScoringParams struct {
	Strategy     string                        `json:"strategy" validate:"omitempty,oneof=rental appreciation short_term_rental"`
	HorizonYears *int                          `json:"horizon_years" validate:"omitempty,lte=100"`
	Assumptions  *domain.InvestmentAssumptions `json:"assumptions"`
}

type ScoreRequest struct {
	ScoringParams
	Property domain.RawProperty `json:"property"`
}

type RankRequest struct {
	ScoringParams
	Filters underwriting.Filters `json:"filters"`
	Limit   int                  `json:"limit" validate:"gte=0,lte=200"`
}

type RankResponse struct {
	Strategy     domain.Strategy         `json:"strategy"`
	HorizonYears int                     `json:"horizon_years"`
	Summary      underwriting.Summary    `json:"summary"`
	Results      []domain.ScoredProperty `json:"results"`
}

func (s *Server) scoringContext(p ScoringParams) (domain.ScoringContext, error) {
	ctx := domain.ScoringContext{
		Strategy:     s.Defaults.Strategy,
		HorizonYears: s.Defaults.HorizonYears,
		Assumptions:  s.Engine.DefaultAssumptions(),
	}
	if p.Strategy != "" {
		st, err := domain.ParseStrategy(p.Strategy)
		if err != nil {
			return domain.ScoringContext{}, err
		}
		ctx.Strategy = st
	}
	if p.HorizonYears != nil {
		ctx.HorizonYears = *p.HorizonYears
	}
	if p.Assumptions != nil {
		ctx.Assumptions = *p.Assumptions
	}
	return ctx, ctx.Validate()
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	sctx, err := s.scoringContext(req.ScoringParams)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_context", err.Error())
		return
	}

	sp, err := underwriting.ScoreProperty(req.Property, sctx)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_context", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	req.Limit = rankLimit(r, req.Limit)
	sctx, err := s.scoringContext(req.ScoringParams)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_context", err.Error())
		return
	}

	props, _, err := s.Properties.List(r.Context(), ListParams{})
	if err != nil {
		s.log.Error().Err(err).Msg("list properties for ranking")
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to load properties")
		return
	}

	results, err := s.Engine.ScoreProperties(r.Context(), props, sctx, req.Filters, req.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownStrategy) {
			writeError(w, http.StatusBadRequest, "invalid_context", err.Error())
			return
		}
		s.log.Warn().Err(err).Msg("ranking aborted")
		writeError(w, http.StatusServiceUnavailable, "ranking_aborted", err.Error())
		return
	}
	if results == nil {
		results = []domain.ScoredProperty{}
	}

	writeJSON(w, http.StatusOK, RankResponse{
		Strategy:     sctx.Strategy,
		HorizonYears: sctx.HorizonYears,
		Summary:      underwriting.Summarize(results),
		Results:      results,
	})
}

func (s *Server) handlePropertyScore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok, err := s.Properties.Get(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("get property")
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to load property")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "property not found")
		return
	}

	q := r.URL.Query()
	params := ScoringParams{Strategy: q.Get("strategy")}
	if v := q.Get("horizon_years"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_horizon", "horizon_years must be an integer")
			return
		}
		params.HorizonYears = &h
	}
	if err := s.validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	sctx, err := s.scoringContext(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_context", err.Error())
		return
	}

	sp, err := underwriting.ScoreProperty(p, sctx)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_context", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

// ---- Properties API ----

type PropertiesListResponse struct {
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
	Total  int                  `json:"total"`
	Items  []domain.RawProperty `json:"items"`
}

func (s *Server) handlePropertiesList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 20, 0)
	q := r.URL.Query()

	params := ListParams{
		Limit:  limit,
		Offset: offset,
		City:   q.Get("city"),
		Sort:   q.Get("sort"),
	}
	params.MinPrice, _ = strconv.ParseFloat(q.Get("min_price"), 64)
	params.MaxPrice, _ = strconv.ParseFloat(q.Get("max_price"), 64)
	params.MinBeds, _ = strconv.Atoi(q.Get("min_beds"))

	items, total, err := s.Properties.List(r.Context(), params)
	if err != nil {
		s.log.Error().Err(err).Msg("list properties")
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to list properties")
		return
	}
	if items == nil {
		items = []domain.RawProperty{}
	}

	writeJSON(w, http.StatusOK, PropertiesListResponse{
		Limit:  limit,
		Offset: offset,
		Total:  total,
		Items:  items,
	})
}

func (s *Server) handlePropertiesGetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok, err := s.Properties.Get(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("get property")
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to load property")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "property not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePropertiesDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := s.Properties.Delete(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("delete property")
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to delete property")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found", "property not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type CreatePropertyRequest struct {
	ID         string   `json:"id"`
	Address    string   `json:"address"`
	City       string   `json:"city" validate:"required"`
	State      string   `json:"state"`
	Zip        string   `json:"zip"`
	Latitude   *float64 `json:"lat" validate:"omitempty,latitude"`
	Longitude  *float64 `json:"lon" validate:"omitempty,longitude"`
	ListPrice  float64  `json:"list_price" validate:"gt=0"`
	Beds       *int     `json:"beds" validate:"omitempty,gte=0"`
	Baths      *float64 `json:"baths" validate:"omitempty,gte=0"`
	Sqft       *int     `json:"sqft" validate:"omitempty,gte=0"`
	YearBuilt  *int     `json:"year_built" validate:"omitempty,gte=1600,lte=2100"`
	HOAMonthly *float64 `json:"hoa_monthly" validate:"omitempty,gte=0"`
	PhotoURLs  []string `json:"photo_urls" validate:"omitempty,dive,url"`
	ListingURL string   `json:"listing_url" validate:"omitempty,url"`
}

func (s *Server) handlePropertiesCreate(w http.ResponseWriter, r *http.Request) {
	var req CreatePropertyRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	p, err := s.Properties.Create(r.Context(), domain.RawProperty{
		ID:         req.ID,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		Zip:        req.Zip,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		ListPrice:  req.ListPrice,
		Beds:       req.Beds,
		Baths:      req.Baths,
		Sqft:       req.Sqft,
		YearBuilt:  req.YearBuilt,
		HOAMonthly: req.HOAMonthly,
		PhotoURLs:  req.PhotoURLs,
		ListingURL: req.ListingURL,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("create property")
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to create property")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ---- helpers ----

func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	return true
}

const maxPageLimit = 200

func parseLimitOffset(r *http.Request, defLimit, defOffset int) (int, int) {
	q := r.URL.Query()

	limit := defLimit
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defLimit
	}
	// safety cap
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	offset := defOffset
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = defOffset
	}

	return limit, offset
}

// rankLimit lets ?limit= override the body limit, capped like list pages.
func rankLimit(r *http.Request, bodyLimit int) int {
	limit := bodyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return min(limit, maxPageLimit)
}

// writeJSON encodes before writing the header; an unencodable payload is a 500.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		log.Error().Err(err).Int("status", status).Msg("encode response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"encode_failed","message":"failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
