package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorResponseCode is the machine-readable error code returned to clients.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed  ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized      ErrorResponseCode = "unauthorized"
	ErrorResponseCodeFetchFailed       ErrorResponseCode = "fetch_failed"
	ErrorResponseCodeVectorDimMismatch ErrorResponseCode = "vector_dim_mismatch"
	ErrorResponseCodeEmbeddingProvider ErrorResponseCode = "embedding_provider_error"
	ErrorResponseCodeRetrievalFailed   ErrorResponseCode = "retrieval_failed"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchDataParams are the query parameters of GET /data/search.
type SearchDataParams struct {
	Query *string `form:"query" json:"query,omitempty"`
	Limit *int    `form:"limit" json:"limit,omitempty"`
}

// SearchResultItem is one hit in a search response.
type SearchResultItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Tags           []string `json:"tags"`
	Category       []string `json:"category"`
	Type           string   `json:"type"`
	SourcePlatform string   `json:"source_platform"`
	MediaURL       *string  `json:"media_url,omitempty"`
	CreatedAt      *string  `json:"created_at,omitempty"`
	Score          float64  `json:"score"`
}

// SearchResponse is the body of GET /data/search.
type SearchResponse struct {
	Query        string             `json:"query"`
	ResultsFound int                `json:"results_found"`
	Results      []SearchResultItem `json:"results"`
}

// AddDataResponse is the body of POST /data/add.
type AddDataResponse struct {
	ID       string   `json:"id"`
	Message  string   `json:"message"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
	Category []string `json:"category"`
	Status   string   `json:"status"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ServerInterface lists the HTTP operations.
type ServerInterface interface {
	// GET /data/search
	SearchData(w http.ResponseWriter, r *http.Request, params SearchDataParams)
	// POST /data/add
	AddData(w http.ResponseWriter, r *http.Request)
	// GET /health
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// GET /metrics
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	Middlewares      []func(http.Handler) http.Handler
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// serverInterfaceWrapper binds request parameters before calling the ServerInterface.
type serverInterfaceWrapper struct {
	handler          ServerInterface
	middlewares      []func(http.Handler) http.Handler
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) wrap(h http.Handler) http.Handler {
	for _, m := range siw.middlewares {
		h = m(h)
	}
	return h
}

// SearchData binds the query parameters of GET /data/search.
func (siw *serverInterfaceWrapper) SearchData(w http.ResponseWriter, r *http.Request) {
	var params SearchDataParams

	if err := runtime.BindQueryParameter("form", true, false, "query", r.URL.Query(), &params.Query); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "query", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.handler.SearchData(w, r, params)
	})).ServeHTTP(w, r)
}

// AddData handles POST /data/add.
func (siw *serverInterfaceWrapper) AddData(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.handler.AddData)).ServeHTTP(w, r)
}

// HealthCheck handles GET /health.
func (siw *serverInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.handler.HealthCheck)).ServeHTTP(w, r)
}

// Metrics handles GET /metrics.
func (siw *serverInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.handler.Metrics)).ServeHTTP(w, r)
}

// HandlerWithOptions mounts every operation of si on the base router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := serverInterfaceWrapper{
		handler:          si,
		middlewares:      options.Middlewares,
		errorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Get("/data/search", wrapper.SearchData)
	r.Post("/data/add", wrapper.AddData)
	r.Get("/health", wrapper.HealthCheck)
	r.Get("/metrics", wrapper.Metrics)
	return r
}
