package handler

import (
	"encoding/json"
	"net/http"

	"Mansoor88-6/wellness-agent/internal/coordinator"
	"Mansoor88-6/wellness-agent/internal/journal"
	"Mansoor88-6/wellness-agent/internal/models"

	"go.uber.org/zap"
)

// EngineHandler exposes the coordinator's query surface over the localhost
// API consumed by the CLI.
type EngineHandler struct {
	coord   *coordinator.Coordinator
	journal *journal.Journal
	logger  *zap.Logger
}

func NewEngineHandler(coord *coordinator.Coordinator, hj *journal.Journal, logger *zap.Logger) *EngineHandler {
	return &EngineHandler{
		coord:   coord,
		journal: hj,
		logger:  logger,
	}
}

// Suggest returns the current recommendation without advancing the tick.
func (h *EngineHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rec := h.coord.Query()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// AcknowledgeRequest is the body for POST /api/v1/ack.
type AcknowledgeRequest struct {
	Kind string `json:"kind"`
}

// Acknowledge resets one reminder kind.
func (h *EngineHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AcknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode ack request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	kind := models.ReminderKind(req.Kind)
	if !kind.Valid() {
		http.Error(w, "Unknown reminder kind", http.StatusBadRequest)
		return
	}

	if err := h.coord.Acknowledge(kind); err != nil {
		h.logger.Error("Failed to acknowledge reminder", zap.Error(err))
		http.Error(w, "Failed to acknowledge reminder", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "acknowledged", "kind": req.Kind})
}

// Status returns the coordinator snapshot.
func (h *EngineHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.coord.Status())
}

// SummaryResponse aggregates today's health journal for reports.
type SummaryResponse struct {
	ActiveSecondsToday int64          `json:"active_seconds_today"`
	SessionCountToday  int            `json:"session_count_today"`
	Fired              map[string]int `json:"fired"`
	Acknowledged       map[string]int `json:"acknowledged"`
	TotalEvents        int            `json:"total_events"`
}

// Summary returns today's activity and health aggregates.
func (h *EngineHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := h.coord.Status()
	resp := SummaryResponse{
		ActiveSecondsToday: status.ActiveSecsToday,
		SessionCountToday:  status.SessionsToday,
		Fired:              make(map[string]int),
		Acknowledged:       make(map[string]int),
	}

	summary, err := h.journal.SummarySince(startOfToday())
	if err != nil {
		h.logger.Error("Failed to read health journal", zap.Error(err))
	} else {
		for kind, n := range summary.Fired {
			resp.Fired[string(kind)] = n
		}
		for kind, n := range summary.Acknowledged {
			resp.Acknowledged[string(kind)] = n
		}
		resp.TotalEvents = summary.Total
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
