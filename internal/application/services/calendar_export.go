package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/mealcal/core/internal/domain/entities"
)

const icsProductID = "-//mealcal//meal planner//EN"

// ExportICS renders all events of the user as an iCalendar document.
// Event dates are interpreted in loc and written in UTC.
func (s *EventService) ExportICS(ctx context.Context, userID uuid.UUID, loc *time.Location) (string, error) {
	events, err := s.ListEvents(ctx, userID)
	if err != nil {
		return "", err
	}

	cal := BuildCalendar(events, loc, time.Now())
	s.logger.Debugw("Calendar exported", "user_id", userID, "events", len(events))
	return cal.Serialize(), nil
}

// BuildCalendar converts events into a VCALENDAR with one VEVENT each.
func BuildCalendar(events []*entities.CalendarEvent, loc *time.Location, stamp time.Time) *ical.Calendar {
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, e := range events {
		ve := cal.AddEvent(fmt.Sprintf("event-%d@mealcal", e.ID))
		ve.SetDtStampTime(stamp.UTC())
		ve.SetCreatedTime(e.CreatedAt.UTC())
		ve.SetModifiedAt(e.UpdatedAt.UTC())
		ve.SetStartAt(e.StartsAt(loc).UTC())
		ve.SetEndAt(e.EndsAt(loc).UTC())
		ve.SetSummary(e.Title)
		if desc := describeEvent(e); desc != "" {
			ve.SetDescription(desc)
		}
	}

	return cal
}

func describeEvent(e *entities.CalendarEvent) string {
	var b strings.Builder
	if len(e.Ingredients) > 0 {
		b.WriteString("Ingredients: ")
		b.WriteString(strings.Join(e.Ingredients, ", "))
	}
	if len(e.Instructions) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Instructions: ")
		b.WriteString(strings.Join(e.Instructions, ". "))
	}
	if e.IsCompleted {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Completed")
	}
	return b.String()
}
