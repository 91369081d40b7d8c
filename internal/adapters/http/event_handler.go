package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mealcal/core/internal/application/services"
	"github.com/mealcal/core/internal/domain/entities"
	"github.com/mealcal/core/internal/ports"
)

// EventHandler handles the calendar event endpoints
type EventHandler struct {
	eventService *services.EventService
	location     *time.Location
	Responder
}

// NewEventHandler creates a new calendar handler
func NewEventHandler(eventService *services.EventService, location *time.Location, responder Responder) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		location:     location,
		Responder:    responder,
	}
}

// ListEvents godoc
// @Summary List calendar events
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Envelope
// @Router /calendar/events [get]
func (h *EventHandler) ListEvents(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	events, err := h.eventService.ListEvents(c.Request().Context(), userID)
	if err != nil {
		return h.Fail(c, err)
	}

	return h.OK(c, http.StatusOK, events, "")
}

// GetEvent returns one event with recipe details and checklist
func (h *EventHandler) GetEvent(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	eventID, err := parseID(c, "eventId", entities.ErrEventNotFound)
	if err != nil {
		return h.Fail(c, err)
	}

	event, err := h.eventService.GetEvent(c.Request().Context(), userID, eventID)
	if err != nil {
		return h.Fail(c, err)
	}

	return h.OK(c, http.StatusOK, event, "")
}

// CreateEvent godoc
// @Summary Create a calendar event
// @Tags Calendar
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} Envelope
// @Failure 400 {object} Envelope
// @Router /calendar/events [post]
func (h *EventHandler) CreateEvent(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req ports.EventRequest
	if err := c.Bind(&req); err != nil {
		return h.BadRequest(c, "Invalid request format", err)
	}

	event, err := h.eventService.CreateEvent(c.Request().Context(), userID, req)
	if err != nil {
		return h.Fail(c, err)
	}

	return h.OK(c, http.StatusCreated, event, "Event created successfully")
}

// UpdateEvent replaces an event's fields
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	eventID, err := parseID(c, "eventId", entities.ErrEventNotFound)
	if err != nil {
		return h.Fail(c, err)
	}

	var req ports.EventRequest
	if err := c.Bind(&req); err != nil {
		return h.BadRequest(c, "Invalid request format", err)
	}

	event, err := h.eventService.UpdateEvent(c.Request().Context(), userID, eventID, req)
	if err != nil {
		return h.Fail(c, err)
	}

	return h.OK(c, http.StatusOK, event, "Event updated successfully")
}

// DeleteEvent removes an event together with its status and checklist
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	eventID, err := parseID(c, "eventId", entities.ErrEventNotFound)
	if err != nil {
		return h.Fail(c, err)
	}

	if err := h.eventService.DeleteEvent(c.Request().Context(), userID, eventID); err != nil {
		return h.Fail(c, err)
	}

	return h.OK(c, http.StatusOK, nil, "Event deleted successfully")
}

// CompleteEvent marks an event as completed
func (h *EventHandler) CompleteEvent(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	eventID, err := parseID(c, "eventId", entities.ErrEventNotFound)
	if err != nil {
		return h.Fail(c, err)
	}

	if err := h.eventService.CompleteEvent(c.Request().Context(), userID, eventID); err != nil {
		return h.Fail(c, err)
	}

	return h.OK(c, http.StatusOK, nil, "")
}

// UpdateChecklist replaces an event's ingredient checklist
func (h *EventHandler) UpdateChecklist(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	eventID, err := parseID(c, "eventId", entities.ErrEventNotFound)
	if err != nil {
		return h.Fail(c, err)
	}

	var req ports.ChecklistRequest
	if err := c.Bind(&req); err != nil {
		return h.BadRequest(c, "Invalid request format", err)
	}

	if err := h.eventService.UpdateChecklist(c.Request().Context(), userID, eventID, req); err != nil {
		return h.Fail(c, err)
	}

	return h.OK(c, http.StatusOK, nil, "")
}

// GetChecklist returns an event's ingredient checklist
func (h *EventHandler) GetChecklist(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	eventID, err := parseID(c, "eventId", entities.ErrEventNotFound)
	if err != nil {
		return h.Fail(c, err)
	}

	checklist, err := h.eventService.GetChecklist(c.Request().Context(), userID, eventID)
	if err != nil {
		return h.Fail(c, err)
	}

	return h.OK(c, http.StatusOK, checklist, "")
}

// ExportICS serves the caller's calendar as text/calendar
func (h *EventHandler) ExportICS(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	doc, err := h.eventService.ExportICS(c.Request().Context(), userID, h.location)
	if err != nil {
		return h.Fail(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="mealcal.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(doc))
}
