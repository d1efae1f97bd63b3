package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	domusage "github.com/kailas-cloud/shopsearch/internal/domain/usage"
	"github.com/kailas-cloud/shopsearch/internal/logger"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	productuc "github.com/kailas-cloud/shopsearch/internal/usecase/product"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
	usageuc "github.com/kailas-cloud/shopsearch/internal/usecase/usage"
)

// Response headers describing how a search was resolved.
const (
	HeaderSearchSource    = "X-Search-Source"
	HeaderSearchFallback  = "X-Search-Fallback"
	HeaderEmbeddingTokens = "X-Embedding-Tokens"
)

const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers of the catalog API.
type Server struct {
	products      *productuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	usage         *usageuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	products *productuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	usage *usageuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		products:      products,
		search:        search,
		health:        health,
		usage:         usage,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes registers the API on r. searchLimiter guards GET /search and may be nil.
func (s *Server) Routes(r chi.Router, searchLimiter func(http.Handler) http.Handler) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if searchLimiter != nil {
		r.With(searchLimiter).Get("/search", s.Search)
	} else {
		r.Get("/search", s.Search)
	}

	r.Get("/usage", s.GetUsage)

	r.Route("/products", func(r chi.Router) {
		r.Post("/", s.CreateProduct)
		r.Get("/", s.ListProducts)
		r.Get("/{id}", s.GetProduct)
	})
}

// Search handles GET /search?q=&limit=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.search.Search(ctx, r.URL.Query().Get("q"), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set(HeaderSearchSource, string(resp.Source))
	w.Header().Set(HeaderSearchFallback, string(resp.Fallback))
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resultsToResponse(resp.Results))
}

// CreateProduct handles POST /products.
func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "price is required")
		return
	}

	in := productuc.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
	}
	if req.ImageURL != nil {
		in.ImageURL = *req.ImageURL
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	p, err := s.products.Create(ctx, in)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/products/"+p.ID())
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusCreated, productToResponse(p))
}

// ListProducts handles GET /products?limit=.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ps, err := s.products.List(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productsToResponse(ps))
}

// GetProduct handles GET /products/{id}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// Not a UUID: cannot exist, and must not reach a typed uuid column.
	if _, err := uuid.Parse(id); err != nil {
		s.handleDomainError(w, r, domain.ErrProductNotFound)
		return
	}

	p, err := s.products.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productToResponse(p))
}

// HealthCheck handles GET /health. 503 only when the catalog database is down:
// a missing embedding provider or cache still leaves search working.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Checks[healthuc.ComponentDatabase] != healthuc.CheckOK {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// GetUsage handles GET /usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(s.usage.GetReport(r.Context(), period)))
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set(HeaderEmbeddingTokens, strconv.Itoa(usage.TotalTokens))
	}
}

// parseLimit reads ?limit=. Absent means default; values above the maximum are clamped later.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: limit must be a positive integer, got %q", domain.ErrInvalidQuery, raw)
	}
	return n, nil
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			if errors.Is(err, domain.ErrSearchFailed) {
				log.Error("search failed", zap.Error(err))
			} else {
				log.Debug("domain error", zap.Error(err))
			}
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
