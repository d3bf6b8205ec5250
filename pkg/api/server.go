// Package api exposes a stopwatch registry over a small REST surface so
// timers can be driven remotely. Error kinds map to HTTP statuses and a
// machine-readable kind field, never to message text.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lapwatch/lapwatch/pkg/logging"
	"github.com/lapwatch/lapwatch/pkg/stopwatch"
)

// Handler serves timer operations backed by a single registry.
type Handler struct {
	registry *stopwatch.Registry
	log      *logging.Logger
}

// NewHandler creates a handler around the given registry.
func NewHandler(registry *stopwatch.Registry, log *logging.Logger) *Handler {
	return &Handler{
		registry: registry,
		log:      log,
	}
}

// RegisterRoutes registers all timer routes on the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/timers", h.CreateTimer).Methods("POST")
	r.HandleFunc("/timers", h.ListTimers).Methods("GET")
	r.HandleFunc("/timers/{id}", h.GetTimer).Methods("GET")
	r.HandleFunc("/timers/{id}/start", h.StartTimer).Methods("POST")
	r.HandleFunc("/timers/{id}/lap", h.LapTimer).Methods("POST")
	r.HandleFunc("/timers/{id}/stop", h.StopTimer).Methods("POST")
	r.HandleFunc("/timers/{id}/reset", h.ResetTimer).Methods("POST")
	r.HandleFunc("/health", h.Health).Methods("GET")
}

// TimerView is the JSON representation of a stopwatch. Laps are reported in
// nanoseconds.
type TimerView struct {
	ID      string  `json:"id"`
	Running bool    `json:"running"`
	Laps    []int64 `json:"laps_ns"`
}

// ErrorResponse carries a machine-readable error kind alongside the message.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func viewOf(sw *stopwatch.Stopwatch) TimerView {
	lapTimes := sw.LapTimes()
	laps := make([]int64, len(lapTimes))
	for i, lap := range lapTimes {
		laps[i] = lap.Nanoseconds()
	}
	return TimerView{
		ID:      sw.ID(),
		Running: sw.Running(),
		Laps:    laps,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	kind := "internal"
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, stopwatch.ErrInvalidID):
		kind, status = "invalid_id", http.StatusBadRequest
	case errors.Is(err, stopwatch.ErrDuplicateID):
		kind, status = "duplicate_id", http.StatusConflict
	case errors.Is(err, stopwatch.ErrAlreadyRunning):
		kind, status = "already_running", http.StatusConflict
	case errors.Is(err, stopwatch.ErrNotRunning):
		kind, status = "not_running", http.StatusConflict
	}
	writeJSON(w, status, ErrorResponse{Kind: kind, Message: err.Error()})
}

// CreateTimer handles POST /timers.
func (h *Handler) CreateTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sw, err := h.registry.Create(req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.log.Info("Timer created", map[string]interface{}{"id": sw.ID()})
	writeJSON(w, http.StatusCreated, viewOf(sw))
}

// ListTimers handles GET /timers.
func (h *Handler) ListTimers(w http.ResponseWriter, r *http.Request) {
	listed := h.registry.List()
	views := make([]TimerView, 0, len(listed))
	for _, sw := range listed {
		views = append(views, viewOf(sw))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"timers": views,
		"count":  len(views),
	})
}

// GetTimer handles GET /timers/{id}.
func (h *Handler) GetTimer(w http.ResponseWriter, r *http.Request) {
	sw, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sw))
}

// StartTimer handles POST /timers/{id}/start.
func (h *Handler) StartTimer(w http.ResponseWriter, r *http.Request) {
	sw, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := sw.Start(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sw))
}

// LapTimer handles POST /timers/{id}/lap.
func (h *Handler) LapTimer(w http.ResponseWriter, r *http.Request) {
	sw, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := sw.Lap(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sw))
}

// StopTimer handles POST /timers/{id}/stop.
func (h *Handler) StopTimer(w http.ResponseWriter, r *http.Request) {
	sw, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := sw.Stop(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sw))
}

// ResetTimer handles POST /timers/{id}/reset.
func (h *Handler) ResetTimer(w http.ResponseWriter, r *http.Request) {
	sw, ok := h.lookup(w, r)
	if !ok {
		return
	}
	sw.Reset()
	writeJSON(w, http.StatusOK, viewOf(sw))
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*stopwatch.Stopwatch, bool) {
	id := mux.Vars(r)["id"]
	sw, ok := h.registry.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Kind:    "not_found",
			Message: "no timer with id " + id,
		})
		return nil, false
	}
	return sw, true
}
