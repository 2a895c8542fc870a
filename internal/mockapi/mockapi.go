package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// QueryParameters tunes text generation.
type QueryParameters struct {
	MaxLength         *int     `json:"max_length,omitempty"`
	MaxNewTokens      *int     `json:"max_new_tokens,omitempty"`
	RepetitionPenalty *float64 `json:"repetition_penalty,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	TopK              *float64 `json:"top_k,omitempty"`
	TopP              *float64 `json:"top_p,omitempty"`
}

// Query is the body of POST /endpoint/{name}/query.
type Query struct {
	Query      string           `json:"query"`
	Context    *string          `json:"context,omitempty"`
	Parameters *QueryParameters `json:"parameters,omitempty"`
}

func (q Query) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Query, validation.Required),
	)
}

// Deployment describes an inference endpoint.
type Deployment struct {
	EndpointName   string `json:"EndpointName"`
	EndpointStatus string `json:"EndpointStatus"`
	InstanceType   string `json:"InstanceType"`
}

type endpointResponse struct {
	Deployment Deployment `json:"deployment"`
	Model      any        `json:"model"`
}

// Generation is one element of a query response.
type Generation struct {
	ID            string `json:"id"`
	GeneratedText string `json:"generated_text"`
}

// Server is an in-memory model API. Endpoints answer queries by echoing the
// prompt back with its context.
type Server struct {
	mutex     sync.RWMutex
	endpoints map[string]Deployment
	logger    *slog.Logger
}

func New(logger *slog.Logger, endpoints ...string) *Server {
	s := &Server{
		endpoints: make(map[string]Deployment),
		logger:    logger,
	}
	for _, name := range endpoints {
		s.AddEndpoint(name)
	}
	return s
}

func (s *Server) AddEndpoint(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.endpoints[name] = Deployment{
		EndpointName:   name,
		EndpointStatus: "InService",
		InstanceType:   "ml.g5.xlarge",
	}
}

// Handler exposes the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)
	mux.HandleFunc("GET /endpoint/{name}", s.handleEndpoint)
	mux.HandleFunc("POST /endpoint/{name}/query", s.handleQuery)

	return mux
}

func (s *Server) lookup(name string) (Deployment, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	d, ok := s.endpoints[name]
	return d, ok
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	s.mutex.RLock()
	names := make([]string, 0, len(s.endpoints))
	for name := range s.endpoints {
		names = append(names, name)
	}
	s.mutex.RUnlock()
	sort.Strings(names)

	writeJSON(w, http.StatusOK, map[string]any{
		"openapi": "3.1.0",
		"info":    map[string]string{"title": "Model API", "version": "0.1.0"},
		"paths": map[string]any{
			"/endpoint/{endpoint_name}":       map[string]any{"get": map[string]string{"summary": "Get Endpoint"}},
			"/endpoint/{endpoint_name}/query": map[string]any{"post": map[string]string{"summary": "Query Endpoint"}},
		},
		"x-endpoints": names,
	})
}

// handleEndpoint answers null for unknown endpoints, like the real API.
func (s *Server) handleEndpoint(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(r.PathValue("name"))
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, endpointResponse{Deployment: d})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, ok := s.lookup(name); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "endpoint " + name + " not found"})
		return
	}

	var q Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid json"})
		return
	}
	if err := q.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": err})
		return
	}

	prompt := q.Query
	if q.Context != nil {
		prompt = *q.Context + "\n" + q.Query
	}

	s.logger.Info("query",
		slog.String("endpoint", name),
		slog.Int("query_len", len(q.Query)),
		slog.String("request_id", r.Header.Get("X-Request-Id")))

	writeJSON(w, http.StatusOK, []Generation{{ID: uuid.NewString(), GeneratedText: strings.TrimSpace(prompt)}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
