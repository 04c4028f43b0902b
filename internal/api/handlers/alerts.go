package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/agrisense/agrisense/internal/store"
	"github.com/agrisense/agrisense/pkg/logger"
)

// AlertHandler serves persisted alert runs read-only.
type AlertHandler struct {
	store      *store.Store
	strategyID string
	logger     *logger.Logger
}

// NewAlertHandler creates an alert handler bound to one strategy.
func NewAlertHandler(s *store.Store, strategyID string, log *logger.Logger) *AlertHandler {
	return &AlertHandler{store: s, strategyID: strategyID, logger: log}
}

// GetLatestRun returns the most recent run header.
func (h *AlertHandler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.LatestRun(r.Context(), h.strategyID)
	if errors.Is(err, store.ErrNoRuns) {
		writeError(w, http.StatusNotFound, "no runs for strategy")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Latest run lookup failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetAlerts returns a run's alert days. ?gated=true narrows to days
// carrying a gated alert.
func (h *AlertHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}
	gatedOnly := r.URL.Query().Get("gated") == "true"

	days, err := h.store.AlertDays(r.Context(), runID, gatedOnly)
	if err != nil {
		h.logger.WithError(err).Error("Alert days query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"count":  len(days),
		"days":   days,
	})
}

// GetEvents returns a run's merged events.
func (h *AlertHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}

	events, err := h.store.Events(r.Context(), runID)
	if err != nil {
		h.logger.WithError(err).Error("Events query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"count":  len(events),
		"events": events,
	})
}

// runID resolves the {runID} path variable, or "latest".
func (h *AlertHandler) runID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["runID"]
	if raw == "latest" {
		run, err := h.store.LatestRun(r.Context(), h.strategyID)
		if errors.Is(err, store.ErrNoRuns) {
			writeError(w, http.StatusNotFound, "no runs for strategy")
			return 0, false
		}
		if err != nil {
			h.logger.WithError(err).Error("Latest run lookup failed")
			writeError(w, http.StatusInternalServerError, "query failed")
			return 0, false
		}
		return run.ID, true
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
