package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/core"
)

type eventRequest struct {
	Title      string `json:"title"`
	Date       string `json:"date"`
	ReminderAt string `json:"reminder_at,omitempty"`
}

type eventResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	ReminderAt string `json:"reminder_at,omitempty"`
	Notified   bool   `json:"notified"`
}

func toEventResponse(e core.CalendarEvent) eventResponse {
	out := eventResponse{
		ID:       e.ID,
		Title:    e.Title,
		Date:     e.Date.Format("2006-01-02"),
		Notified: e.Notified,
	}
	if !e.ReminderAt.IsZero() {
		out.ReminderAt = e.ReminderAt.Format(time.RFC3339)
	}
	return out
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	events, err := s.store.ListEvents(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSaveEvent creates or updates a calendar entry. Changing the
// reminder time re-arms the notification.
func (s *Server) handleSaveEvent(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, core.ErrInvalidDate)
		return
	}

	event := core.CalendarEvent{
		ID:      r.PathValue("id"),
		Title:   sanitizeInput(req.Title),
		Date:    date,
		OwnerID: owner,
	}
	if req.ReminderAt != "" {
		reminderAt, err := time.Parse(time.RFC3339, req.ReminderAt)
		if err != nil {
			writeError(w, r, &core.ValidationError{Reason: "reminder_at must be RFC 3339"})
			return
		}
		event.ReminderAt = reminderAt
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if err := event.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.store.UpsertEvent(r.Context(), event); err != nil {
		writeError(w, r, &core.PersistenceError{Table: "calendar_events", Key: event.ID, Err: err})
		return
	}

	status := http.StatusCreated
	if r.Method == http.MethodPut {
		status = http.StatusOK
	}
	writeJSON(w, status, toEventResponse(event))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	if err := s.store.DeleteEvent(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
