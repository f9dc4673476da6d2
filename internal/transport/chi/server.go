// Package chi is the HTTP transport: routes, auth and the mapping of domain errors to responses.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/domain/item"
	"github.com/kailas-cloud/synapse/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/synapse/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/synapse/internal/usecase/ingest"
)

// AddedStatus is the status line of a successful POST /data/add.
const AddedStatus = "Successfully added to Synapse Brain"

// Request limits used when Options leaves them at zero.
const (
	DefaultSearchLimit    = 5
	DefaultMaxSearchLimit = 50
	DefaultMaxUploadBytes = 10 << 20
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Searcher answers natural-language queries for one user.
type Searcher interface {
	Query(ctx context.Context, userID, query string, limit int) (result.Response, error)
}

// Ingester stores one submission for one user.
type Ingester interface {
	Add(ctx context.Context, userID string, in ingestuc.Input) (ingestuc.Output, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Options bounds request parameters.
type Options struct {
	DefaultLimit   int
	MaxLimit       int
	MaxUploadBytes int64
}

// Server implements ServerInterface.
type Server struct {
	search        Searcher
	ingest        Ingester
	health        HealthChecker
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(search Searcher, ingest Ingester, health HealthChecker, opts Options, logger *zap.Logger) *Server {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultSearchLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = DefaultMaxSearchLimit
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		ingest: ingest,
		health: health,
		opts:   opts,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrFetchFailed, http.StatusBadRequest, ErrorResponseCodeFetchFailed),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, ErrorResponseCodeUnauthorized),
		// dimension mismatch arrives wrapped in ErrRetrievalFailed, so it is matched first
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusInternalServerError, ErrorResponseCodeVectorDimMismatch),
		sentinelHandler(domain.ErrRetrievalFailed, http.StatusInternalServerError, ErrorResponseCodeRetrievalFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorResponseCodeEmbeddingProvider),
	}
	return s
}

// SearchData handles GET /data/search.
func (s *Server) SearchData(w http.ResponseWriter, r *http.Request, params SearchDataParams) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, "invalid token or missing user id")
		return
	}

	query := ""
	if params.Query != nil {
		query = strings.TrimSpace(*params.Query)
	}
	if query == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "query is required")
		return
	}

	limit := s.opts.DefaultLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit < 1 || limit > s.opts.MaxLimit {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
			fmt.Sprintf("limit must be between 1 and %d", s.opts.MaxLimit))
		return
	}

	resp, err := s.search.Query(r.Context(), userID, query, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SearchResultItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = searchResultToAPI(&resp.Results[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:        resp.Query,
		ResultsFound: resp.ResultsFound(),
		Results:      items,
	})
}

// AddData handles POST /data/add (multipart or urlencoded form).
func (s *Server) AddData(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, "invalid token: missing user id")
		return
	}

	in, err := s.parseAddForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}

	out, err := s.ingest.Add(r.Context(), userID, in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, AddDataResponse{
		ID:       out.ID,
		Message:  out.Message,
		Summary:  out.Summary,
		Tags:     out.Tags,
		Category: out.Category,
		Status:   AddedStatus,
	})
}

func (s *Server) parseAddForm(w http.ResponseWriter, r *http.Request) (ingestuc.Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
			return ingestuc.Input{}, fmt.Errorf("invalid multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return ingestuc.Input{}, fmt.Errorf("invalid form: %w", err)
	}

	dataType := strings.TrimSpace(r.FormValue("data_type"))
	if dataType == "" {
		return ingestuc.Input{}, errors.New("data_type is required")
	}

	in := ingestuc.Input{
		Type: item.Type(strings.ToLower(dataType)),
		Text: r.FormValue("text"),
		URL:  r.FormValue("url"),
	}

	if in.Type == item.TypeImage && r.MultipartForm != nil {
		file, _, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return ingestuc.Input{}, fmt.Errorf("read image: %w", err)
		default:
			data, err := readUpload(file)
			if err != nil {
				return ingestuc.Input{}, err
			}
			in.Image = data
		}
	}
	return in, nil
}

func readUpload(f multipart.File) ([]byte, error) {
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

// HealthCheck handles GET /health. Only an unhealthy report maps to 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ParamErrorHandler answers requests whose parameters failed to bind.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	msg := "invalid request"
	var pe *InvalidParamFormatError
	if errors.As(err, &pe) {
		msg = "invalid " + pe.ParamName
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// diagnostics are the client messages for server-side failures; they name the
// failing stage without exposing addresses or driver errors.
var diagnostics = map[error]string{
	domain.ErrVectorDimMismatch: "vector dimension mismatch: stored embeddings do not match the query embedding size",
	domain.ErrRetrievalFailed:   "retrieval failed: vector index and exact scan both failed",
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrFetchFailed,
		domain.ErrUnauthorized,
		domain.ErrVectorDimMismatch,
		domain.ErrRetrievalFailed,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			if msg, ok := diagnostics[s]; ok {
				return msg
			}
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func searchResultToAPI(r *result.Result) SearchResultItem {
	out := SearchResultItem{
		ID:             r.ID(),
		Title:          r.Title(),
		Summary:        r.Summary(),
		Tags:           nonNil(r.Tags()),
		Category:       nonNil(r.Category()),
		Type:           r.Type(),
		SourcePlatform: r.SourcePlatform(),
		Score:          r.Score(),
	}
	if u := r.MediaURL(); u != "" {
		out.MediaURL = &u
	}
	if t := r.CreatedAt(); !t.IsZero() {
		ts := t.UTC().Format(time.RFC3339)
		out.CreatedAt = &ts
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
