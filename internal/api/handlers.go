package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/calvinwijaya/hearts-be/internal/game"
	"github.com/calvinwijaya/hearts-be/internal/log"
	"github.com/calvinwijaya/hearts-be/internal/notify"
	"github.com/calvinwijaya/hearts-be/internal/store"
	"github.com/gorilla/mux"
)

// Handlers contains all the API handlers
type Handlers struct {
	users    store.UserStore
	pool     *game.Pool
	registry *notify.Registry
	hub      *Hub
}

// NewHandlers creates a new instance of Handlers
func NewHandlers(users store.UserStore, pool *game.Pool, registry *notify.Registry, hub *Hub) *Handlers {
	return &Handlers{
		users:    users,
		pool:     pool,
		registry: registry,
		hub:      hub,
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/player/{id}", h.GetPlayer).Methods("GET")
	r.HandleFunc("/api/table/open", h.GetOpenTable).Methods("GET")
	r.HandleFunc("/healthz", h.Health).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws", h.hub.WebSocketHandler)
}

// LoggingMiddleware logs method, URI and latency of every request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("%s %s %s", r.Method, r.RequestURI, time.Since(start))
	})
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error response helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"error": message})
}

// GetPlayer returns the stored user record
func (h *Handlers) GetPlayer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid player id")
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(w, http.StatusNotFound, "Player not found")
		return
	}
	if err != nil {
		log.Error("api: get player %d: %v", id, err)
		errorResponse(w, http.StatusInternalServerError, "Error retrieving player")
		return
	}

	if user.History == nil {
		user.History = []store.GameResult{}
	}
	response(w, http.StatusOK, user)
}

// GetOpenTable describes the lobby new players are sent to
func (h *Handlers) GetOpenTable(w http.ResponseWriter, r *http.Request) {
	response(w, http.StatusOK, h.pool.Open().Summary())
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": h.registry.Len(),
	})
}
