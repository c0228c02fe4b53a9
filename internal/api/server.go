package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/pbaille/grocer/internal/command"
	"github.com/pbaille/grocer/internal/domain"
	"github.com/pbaille/grocer/internal/list"
	"github.com/pbaille/grocer/internal/parser"
	"github.com/pbaille/grocer/internal/pkg/logger"
	"github.com/pbaille/grocer/internal/suggest"
)

// Server handles HTTP requests for the shopping list API
type Server struct {
	list       *list.State
	suggest    *suggest.Engine
	resolver   *parser.Resolver
	dispatcher *command.Dispatcher
	log        *logger.Logger
	addr       string
}

// Deps bundles the shared state a Server works against. Everything is
// constructed once at startup and passed in; handlers never reach for
// ambient globals.
type Deps struct {
	List       *list.State
	Suggest    *suggest.Engine
	Resolver   *parser.Resolver
	Dispatcher *command.Dispatcher
	Logger     *logger.Logger
}

// New creates a new API server
func New(deps Deps, addr string) *Server {
	return &Server{
		list:       deps.List,
		suggest:    deps.Suggest,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		log:        deps.Logger,
		addr:       addr,
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.log.Info("listening", map[string]interface{}{"addr": s.addr})
	return http.ListenAndServe(s.addr, s.Handler())
}

// Handler returns the full middleware-wrapped route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// List
	mux.HandleFunc("GET /list", s.getList)
	mux.HandleFunc("POST /list/add", s.addItem)
	mux.HandleFunc("POST /list/remove", s.removeItem)

	// Catalog
	mux.HandleFunc("POST /search", s.search)

	// Suggestions
	mux.HandleFunc("GET /suggest", s.getSuggestions)

	// Utterances
	mux.HandleFunc("POST /parse", s.parse)
	mux.HandleFunc("POST /command", s.runCommand)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(s.withRequestID(mux))
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

// withRequestID tags every request with an id for log correlation.
func (s *Server) withRequestID(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		s.log.Debug("request", map[string]interface{}{
			"id":     id,
			"method": r.Method,
			"path":   r.URL.Path,
		})
		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": s.list.Snapshot(),
	})
}

// AddItemRequest is the request body for adding a list entry. Quantity is
// loosely typed so sloppy clients (string digits, floats) are coerced
// instead of rejected.
type AddItemRequest struct {
	Item     string      `json:"item"`
	Quantity interface{} `json:"quantity"`
	Category string      `json:"category"`
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Item == "" {
		writeError(w, http.StatusBadRequest, "item required")
		return
	}

	s.dispatcher.Dispatch(domain.Intent{
		Kind:     domain.IntentAddItem,
		Item:     req.Item,
		Quantity: coerceQuantity(req.Quantity),
		Category: req.Category,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// RemoveItemRequest is the request body for removing a list entry.
type RemoveItemRequest struct {
	Item string `json:"item"`
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	var req RemoveItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Item == "" {
		writeError(w, http.StatusBadRequest, "item required")
		return
	}

	s.dispatcher.Dispatch(domain.Intent{
		Kind: domain.IntentRemoveItem,
		Item: req.Item,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// SearchRequest is the request body for catalog searches. All fields are
// optional; an empty query with a brand or price filter is a pure filter
// search.
type SearchRequest struct {
	Query    string   `json:"query"`
	Brand    string   `json:"brand"`
	MaxPrice *float64 `json:"maxPrice"`
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res := s.dispatcher.Dispatch(domain.Intent{
		Kind:    domain.IntentSearchItem,
		Item:    req.Query,
		Filters: &domain.Filters{Brand: req.Brand, MaxPrice: req.MaxPrice},
	})

	results := res.Results
	if results == nil {
		results = []domain.CatalogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) getSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": s.suggest.Suggestions(),
	})
}

// ParseRequest is the request body for utterance endpoints.
type ParseRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// IntentResponse is the wire shape of a resolved intent. The field is named
// "intent" (not "kind") for compatibility with the parse service.
type IntentResponse struct {
	Intent   string          `json:"intent"`
	Item     string          `json:"item"`
	Quantity int             `json:"quantity"`
	Category string          `json:"category,omitempty"`
	Filters  *domain.Filters `json:"filters,omitempty"`
	Speech   string          `json:"speech"`
}

func (s *Server) parse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	intent := s.resolver.Resolve(r.Context(), req.Text, req.Language)
	writeJSON(w, http.StatusOK, toIntentResponse(intent))
}

// CommandResponse is the reply to /command: the resolved intent plus
// whatever dispatching it produced.
type CommandResponse struct {
	IntentResponse
	Results     []domain.CatalogEntry `json:"results,omitempty"`
	Suggestions []string              `json:"suggestions,omitempty"`
}

// runCommand executes the whole pipeline for one utterance: resolve,
// dispatch, and report.
func (s *Server) runCommand(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	intent := s.resolver.Resolve(r.Context(), req.Text, req.Language)
	res := s.dispatcher.Dispatch(intent)

	writeJSON(w, http.StatusOK, CommandResponse{
		IntentResponse: toIntentResponse(intent),
		Results:        res.Results,
		Suggestions:    res.Suggestions,
	})
}

func toIntentResponse(intent domain.Intent) IntentResponse {
	return IntentResponse{
		Intent:   string(intent.Kind),
		Item:     intent.Item,
		Quantity: intent.Quantity,
		Category: intent.Category,
		Filters:  intent.Filters,
		Speech:   intent.Speech,
	}
}

// coerceQuantity accepts whatever JSON value the client sent and clamps it
// to a usable count.
func coerceQuantity(v interface{}) int {
	switch q := v.(type) {
	case float64:
		if q >= 1 {
			return int(q)
		}
	case string:
		if n, err := strconv.Atoi(q); err == nil && n >= 1 {
			return n
		}
	}
	return 1
}

// decodeJSON reads the request body into dst. An empty body is treated as
// an empty object; anything else malformed is a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
