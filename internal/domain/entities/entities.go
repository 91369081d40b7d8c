package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
)

// MaxNameLength bounds event titles and checklist ingredient names, in characters.
const MaxNameLength = 255

// ValidationError lists the request fields that are missing or malformed.
type ValidationError struct {
	Fields   []string          `json:"fields,omitempty"`
	Problems map[string]string `json:"problems,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 && len(e.Fields) > 0 {
		return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
	}

	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		if problem, ok := e.Problems[field]; ok {
			parts = append(parts, fmt.Sprintf("%s %s", field, problem))
		} else {
			parts = append(parts, fmt.Sprintf("%s is required", field))
		}
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Add records a problem for field. An empty problem means the field is missing.
func (e *ValidationError) Add(field, problem string) {
	for _, f := range e.Fields {
		if f == field {
			return
		}
	}
	e.Fields = append(e.Fields, field)
	if problem != "" {
		if e.Problems == nil {
			e.Problems = make(map[string]string)
		}
		e.Problems[field] = problem
	}
}

// Err returns e when any field was recorded, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// User represents an account that owns calendar events
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Surname      string    `json:"surname" db:"surname"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Category groups recipes in the catalog
type Category struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	ImageURL    *string `json:"imageUrl,omitempty" db:"image_url"`
}

// Recipe is a read-mostly catalog entry
type Recipe struct {
	ID           int64      `json:"id" db:"id"`
	CategoryID   *int64     `json:"categoryId,omitempty" db:"category_id"`
	CategoryName *string    `json:"categoryName,omitempty" db:"category_name"`
	Name         string     `json:"name" db:"name"`
	Description  *string    `json:"description,omitempty" db:"description"`
	Ingredients  StringList `json:"ingredients" db:"ingredients"`
	Instructions StringList `json:"instructions" db:"instructions"`
	ImageURL     *string    `json:"imageUrl,omitempty" db:"image_url"`
	PrepTime     *int       `json:"prepTime,omitempty" db:"prep_time"`
	Difficulty   *string    `json:"difficulty,omitempty" db:"difficulty"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// CalendarEvent is a planned meal owned by a single user
type CalendarEvent struct {
	ID           int64           `json:"id" db:"id"`
	UserID       uuid.UUID       `json:"userId" db:"user_id"`
	RecipeID     *int64          `json:"recipeId,omitempty" db:"recipe_id"`
	Title        string          `json:"title" db:"title"`
	Day          int             `json:"day" db:"day"`
	Month        int             `json:"month" db:"month"`
	Year         int             `json:"year" db:"year"`
	TimeFrom     string          `json:"timeFrom" db:"time_from"`
	TimeTo       string          `json:"timeTo" db:"time_to"`
	Ingredients  StringList      `json:"ingredients" db:"ingredients"`
	Instructions StringList      `json:"instructions" db:"instructions"`
	IsCompleted  bool            `json:"isCompleted" db:"is_completed"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
	RecipeName   *string         `json:"recipeName,omitempty" db:"recipe_name"`
	PrepTime     *int            `json:"prepTime,omitempty" db:"prep_time"`
	Checklist    map[string]bool `json:"checklist,omitempty" db:"-"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// Date returns the event day as a date in loc.
func (e *CalendarEvent) Date(loc *time.Location) time.Time {
	return time.Date(e.Year, time.Month(e.Month), e.Day, 0, 0, 0, 0, loc)
}

// StartsAt combines the event date with TimeFrom.
func (e *CalendarEvent) StartsAt(loc *time.Location) time.Time {
	return e.Date(loc).Add(time.Duration(ClockMinutes(e.TimeFrom)) * time.Minute)
}

// EndsAt combines the event date with TimeTo. An end before the start rolls to the next day.
func (e *CalendarEvent) EndsAt(loc *time.Location) time.Time {
	end := e.Date(loc).Add(time.Duration(ClockMinutes(e.TimeTo)) * time.Minute)
	if end.Before(e.StartsAt(loc)) {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// EventStatus tracks completion of an event. At most one row exists per event.
type EventStatus struct {
	EventID     int64      `json:"eventId" db:"event_id"`
	UserID      uuid.UUID  `json:"userId" db:"user_id"`
	IsCompleted bool       `json:"isCompleted" db:"is_completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty" db:"completed_at"`
}

// ChecklistItem is one ingredient tick for an event
type ChecklistItem struct {
	ID             int64     `json:"id" db:"id"`
	EventID        int64     `json:"eventId" db:"event_id"`
	UserID         uuid.UUID `json:"userId" db:"user_id"`
	IngredientName string    `json:"ingredientName" db:"ingredient_name"`
	IsChecked      bool      `json:"isChecked" db:"is_checked"`
}

// EventDraft carries normalized, validated event fields on their way to storage.
type EventDraft struct {
	Title        string
	Day          int
	Month        int
	Year         int
	TimeFrom     string
	TimeTo       string
	Ingredients  StringList
	Instructions StringList
	RecipeID     *int64
}

// Validate checks the invariants every stored event must satisfy.
func (d EventDraft) Validate() error {
	verr := &ValidationError{}

	if title := strings.TrimSpace(d.Title); title == "" {
		verr.Add("title", "")
	} else if utf8.RuneCountInString(title) > MaxNameLength {
		verr.Add("title", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}
	if d.Year < 1 || d.Year > 9999 {
		verr.Add("year", "must be between 1 and 9999")
	}
	if d.Month < 1 || d.Month > 12 {
		verr.Add("month", "must be between 1 and 12")
	}
	if d.Day < 1 || d.Day > 31 {
		verr.Add("day", "must be between 1 and 31")
	} else if d.Month >= 1 && d.Month <= 12 && d.Year >= 1 && d.Day > DaysIn(d.Year, d.Month) {
		verr.Add("day", fmt.Sprintf("must be at most %d for %04d-%02d", DaysIn(d.Year, d.Month), d.Year, d.Month))
	}
	if _, err := NormalizeClock(d.TimeFrom); err != nil {
		verr.Add("timeFrom", err.Error())
	}
	if _, err := NormalizeClock(d.TimeTo); err != nil {
		verr.Add("timeTo", err.Error())
	}

	return verr.Err()
}

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
