package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"giftvault/internal/alerts"
)

const alertsCacheKey = "alerts"

// ListAlerts returns the caller's rate alerts.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if h.sessions != nil {
		if cached, hit := h.sessions.Get(p, alertsCacheKey); hit {
			if list, castOK := cached.([]alerts.Alert); castOK {
				writeJSON(w, http.StatusOK, list)
				return
			}
		}
	}

	list := h.alerts.List(p)
	if list == nil {
		list = []alerts.Alert{}
	}
	if h.sessions != nil {
		h.sessions.Set(p, alertsCacheKey, list)
	}
	writeJSON(w, http.StatusOK, list)
}

// invalidateSession drops a principal's cached reads after a mutation.
func (h *Handler) invalidateSession(p string) {
	if h.sessions != nil {
		h.sessions.Forget(p)
	}
}

type createAlertRequest struct {
	Asset     string `json:"asset"`
	Threshold string `json:"threshold"`
	Direction string `json:"direction"`
	Kind      string `json:"kind"`
}

// CreateAlert registers a new rate alert for the caller.
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req createAlertRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	threshold, err := decimal.NewFromString(req.Threshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, "threshold must be a decimal number")
		return
	}

	created, err := h.alerts.Create(p, alerts.Alert{
		Asset:     req.Asset,
		Threshold: threshold,
		Direction: alerts.Direction(req.Direction),
		Kind:      alerts.Kind(req.Kind),
		Enabled:   true,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.invalidateSession(p)
	writeJSON(w, http.StatusCreated, created)
}

// ToggleAlert flips an alert's enabled flag.
func (h *Handler) ToggleAlert(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	updated, err := h.alerts.Toggle(p, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, alerts.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		h.logger.Error().Err(err).Msg("alert toggle failed")
		writeError(w, http.StatusInternalServerError, "could not update alert")
		return
	}
	h.invalidateSession(p)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteAlert removes an alert.
func (h *Handler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.alerts.Delete(p, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, alerts.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		h.logger.Error().Err(err).Msg("alert delete failed")
		writeError(w, http.StatusInternalServerError, "could not delete alert")
		return
	}
	h.invalidateSession(p)
	w.WriteHeader(http.StatusNoContent)
}

// Logout clears the caller's session cache. Durable state is untouched.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	h.invalidateSession(p)
	w.WriteHeader(http.StatusNoContent)
}
