package server

import (
	"net/http"
	"time"

	"giftvault/internal/prefs"
)

type notificationsResponse struct {
	Enabled bool `json:"enabled"`
}

// GetNotifications reports the caller's notification toggle.
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, notificationsResponse{Enabled: h.prefs.NotificationsEnabled(p)})
}

type setNotificationsRequest struct {
	Enabled bool `json:"enabled"`
}

// SetNotifications updates the caller's notification toggle.
func (h *Handler) SetNotifications(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req setNotificationsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.prefs.SetNotificationsEnabled(p, req.Enabled); err != nil {
		h.logger.Error().Err(err).Msg("notification toggle failed")
		writeError(w, http.StatusInternalServerError, "could not persist toggle")
		return
	}
	writeJSON(w, http.StatusOK, notificationsResponse{Enabled: req.Enabled})
}

// ListCalendar returns the caller's rate calendar events.
func (h *Handler) ListCalendar(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	events := h.prefs.Calendar(p)
	if events == nil {
		events = []prefs.CalendarEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

type addCalendarEventRequest struct {
	Title string    `json:"title"`
	Asset string    `json:"asset"`
	At    time.Time `json:"at"`
}

// AddCalendarEvent appends an event to the caller's rate calendar.
func (h *Handler) AddCalendarEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req addCalendarEventRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.prefs.AddCalendarEvent(p, prefs.CalendarEvent{
		Title: req.Title,
		Asset: req.Asset,
		At:    req.At,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

type profileSetupResponse struct {
	Dismissed bool `json:"dismissed"`
}

// GetProfileSetup reports whether the caller dismissed the setup prompt.
func (h *Handler) GetProfileSetup(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, profileSetupResponse{Dismissed: h.prefs.ProfileSetupDismissed(p)})
}

// DismissProfileSetup records the caller's dismissal.
func (h *Handler) DismissProfileSetup(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.prefs.DismissProfileSetup(p); err != nil {
		h.logger.Error().Err(err).Msg("profile setup dismissal failed")
		writeError(w, http.StatusInternalServerError, "could not persist dismissal")
		return
	}
	writeJSON(w, http.StatusOK, profileSetupResponse{Dismissed: true})
}
