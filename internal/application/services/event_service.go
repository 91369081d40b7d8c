package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mealcal/core/internal/domain/entities"
	"github.com/mealcal/core/internal/infrastructure/logger"
	"github.com/mealcal/core/internal/infrastructure/metrics"
	"github.com/mealcal/core/internal/ports"
)

const (
	ingredientSeparator  = ","
	instructionSeparator = "."
)

// EventService validates calendar requests and applies them for the acting user
type EventService struct {
	eventRepo ports.EventRepository
	validate  *validator.Validate
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewEventService creates a new calendar event service
func NewEventService(eventRepo ports.EventRepository, m *metrics.Metrics, logger *logger.Logger) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		validate:  NewValidator(),
		metrics:   m,
		logger:    logger.WithComponent("calendar"),
	}
}

// ListEvents returns every event of the user, ordered by date and start time
func (s *EventService) ListEvents(ctx context.Context, userID uuid.UUID) ([]*entities.CalendarEvent, error) {
	events, err := s.eventRepo.ListForUser(ctx, userID)
	if err != nil {
		s.observe("list", err)
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	s.observe("list", nil)
	return events, nil
}

// GetEvent returns one event with its recipe details and checklist
func (s *EventService) GetEvent(ctx context.Context, userID uuid.UUID, eventID int64) (*entities.CalendarEvent, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID, userID)
	s.observe("get", err)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// CreateEvent validates req and stores a new event owned by userID
func (s *EventService) CreateEvent(ctx context.Context, userID uuid.UUID, req ports.EventRequest) (*entities.CalendarEvent, error) {
	draft, err := s.BuildDraft(req)
	if err != nil {
		s.observe("create", err)
		return nil, err
	}

	event, err := s.eventRepo.Create(ctx, userID, draft)
	s.observe("create", err)
	if err != nil {
		return nil, err
	}

	s.logger.LogEventAction(userID, event.ID, "created",
		"date", fmt.Sprintf("%04d-%02d-%02d", event.Year, event.Month, event.Day))
	return event, nil
}

// UpdateEvent replaces the event fields. An omitted recipeId keeps the current link.
func (s *EventService) UpdateEvent(ctx context.Context, userID uuid.UUID, eventID int64, req ports.EventRequest) (*entities.CalendarEvent, error) {
	draft, err := s.BuildDraft(req)
	if err != nil {
		s.observe("update", err)
		return nil, err
	}

	event, err := s.eventRepo.Update(ctx, eventID, userID, draft)
	s.observe("update", err)
	if err != nil {
		return nil, err
	}

	s.logger.LogEventAction(userID, eventID, "updated")
	return event, nil
}

// DeleteEvent removes the event and its status and checklist rows
func (s *EventService) DeleteEvent(ctx context.Context, userID uuid.UUID, eventID int64) error {
	deleted, err := s.eventRepo.Delete(ctx, eventID, userID)
	if err == nil && !deleted {
		err = entities.ErrEventNotFound
	}
	s.observe("delete", err)
	if err != nil {
		return err
	}

	s.logger.LogEventAction(userID, eventID, "deleted")
	return nil
}

// CompleteEvent marks the event as completed. Repeated calls succeed.
func (s *EventService) CompleteEvent(ctx context.Context, userID uuid.UUID, eventID int64) error {
	ok, err := s.eventRepo.MarkCompleted(ctx, eventID, userID)
	if err == nil && !ok {
		err = entities.ErrEventNotFound
	}
	s.observe("complete", err)
	if err != nil {
		return err
	}

	s.logger.LogEventAction(userID, eventID, "completed")
	return nil
}

// UpdateChecklist replaces the whole ingredient checklist of the event
func (s *EventService) UpdateChecklist(ctx context.Context, userID uuid.UUID, eventID int64, req ports.ChecklistRequest) error {
	if err := ValidateStruct(s.validate, req); err != nil {
		s.observe("checklist", err)
		return err
	}

	ok, err := s.eventRepo.ReplaceChecklist(ctx, eventID, userID, req.Ingredients)
	if err == nil && !ok {
		err = entities.ErrEventNotFound
	}
	s.observe("checklist", err)
	if err != nil {
		return err
	}

	s.logger.LogEventAction(userID, eventID, "checklist_replaced", "items", len(req.Ingredients))
	return nil
}

// GetChecklist returns the ingredient checklist of the event
func (s *EventService) GetChecklist(ctx context.Context, userID uuid.UUID, eventID int64) (map[string]bool, error) {
	checklist, err := s.eventRepo.GetChecklist(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	return checklist, nil
}

// BuildDraft validates req and normalizes it into storage form.
func (s *EventService) BuildDraft(req ports.EventRequest) (entities.EventDraft, error) {
	if err := ValidateStruct(s.validate, req); err != nil {
		return entities.EventDraft{}, err
	}

	verr := &entities.ValidationError{}
	draft := entities.EventDraft{
		Title:        strings.TrimSpace(req.Title),
		Ingredients:  req.Ingredients.Normalize(ingredientSeparator),
		Instructions: req.Instructions.Normalize(instructionSeparator),
	}
	if draft.Title == "" {
		verr.Add("title", "")
	}

	coerce := func(field string, v *ports.IntValue) int {
		n, err := v.Int()
		if err != nil {
			verr.Add(field, err.Error())
		}
		return n
	}
	draft.Day = coerce("day", req.Day)
	draft.Month = coerce("month", req.Month)
	draft.Year = coerce("year", req.Year)

	if !req.RecipeID.IsNull() {
		id, err := req.RecipeID.Int()
		switch {
		case err != nil:
			verr.Add("recipeId", err.Error())
		case id <= 0:
			verr.Add("recipeId", "must be a positive integer")
		default:
			recipeID := int64(id)
			draft.RecipeID = &recipeID
		}
	}

	if timeFrom, err := entities.NormalizeClock(req.TimeFrom); err != nil {
		verr.Add("timeFrom", err.Error())
	} else {
		draft.TimeFrom = timeFrom
	}
	if timeTo, err := entities.NormalizeClock(req.TimeTo); err != nil {
		verr.Add("timeTo", err.Error())
	} else {
		draft.TimeTo = timeTo
	}

	if err := verr.Err(); err != nil {
		return entities.EventDraft{}, err
	}
	if err := draft.Validate(); err != nil {
		return entities.EventDraft{}, err
	}
	return draft, nil
}

func (s *EventService) observe(operation string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, entities.ErrValidation):
		outcome = "invalid"
	case errors.Is(err, entities.ErrEventNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
		s.logger.Errorw("Calendar operation failed", "operation", operation, "error", err)
	}
	s.metrics.ObserveEvent(operation, outcome)
}
