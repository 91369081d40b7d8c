package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mealcal/core/internal/domain/entities"
	"github.com/mealcal/core/internal/infrastructure/database"
	"github.com/mealcal/core/internal/ports"
)

// recipeForeignKey is the calendar_events.recipe_id constraint named in the initial migration
const recipeForeignKey = "calendar_events_recipe_id_fkey"

// errNotOwned aborts a transaction whose event does not exist for the caller.
var errNotOwned = errors.New("event not owned")

// EventRepositoryImpl implements the EventRepository interface
type EventRepositoryImpl struct {
	db *sqlx.DB
}

// NewEventRepository creates a new calendar event repository
func NewEventRepository(db *sqlx.DB) ports.EventRepository {
	return &EventRepositoryImpl{db: db}
}

// eventDetailRow adds the linked recipe's lists to an event row.
type eventDetailRow struct {
	entities.CalendarEvent
	RecipeIngredients  entities.StringList `db:"recipe_ingredients"`
	RecipeInstructions entities.StringList `db:"recipe_instructions"`
}

func (r *EventRepositoryImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]*entities.CalendarEvent, error) {
	query := `
		SELECT e.id, e.user_id, e.recipe_id, e.title, e.day, e.month, e.year,
			e.time_from, e.time_to, e.ingredients, e.instructions, e.created_at, e.updated_at,
			COALESCE(s.is_completed, FALSE) AS is_completed, s.completed_at
		FROM calendar_events e
		LEFT JOIN event_status s ON s.event_id = e.id
		WHERE e.user_id = $1
		ORDER BY e.year, e.month, e.day, e.time_from, e.id`

	events := []*entities.CalendarEvent{}
	if err := r.db.SelectContext(ctx, &events, query, userID); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return events, nil
}

func (r *EventRepositoryImpl) Create(ctx context.Context, userID uuid.UUID, draft entities.EventDraft) (*entities.CalendarEvent, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO calendar_events (user_id, recipe_id, title, day, month, year,
			time_from, time_to, ingredients, instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	event := eventFromDraft(userID, draft)
	err := r.db.QueryRowContext(ctx, query,
		userID, draft.RecipeID, event.Title, event.Day, event.Month, event.Year,
		event.TimeFrom, event.TimeTo, event.Ingredients, event.Instructions,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if isUnknownRecipe(err) {
			return nil, unknownRecipeError()
		}
		return nil, fmt.Errorf("create event: %w", err)
	}

	return event, nil
}

func (r *EventRepositoryImpl) GetByID(ctx context.Context, eventID int64, userID uuid.UUID) (*entities.CalendarEvent, error) {
	query := `
		SELECT e.id, e.user_id, e.recipe_id, e.title, e.day, e.month, e.year,
			e.time_from, e.time_to, e.ingredients, e.instructions, e.created_at, e.updated_at,
			r.name AS recipe_name, r.prep_time,
			r.ingredients AS recipe_ingredients, r.instructions AS recipe_instructions,
			COALESCE(s.is_completed, FALSE) AS is_completed, s.completed_at
		FROM calendar_events e
		LEFT JOIN recipes r ON r.id = e.recipe_id
		LEFT JOIN event_status s ON s.event_id = e.id
		WHERE e.id = $1 AND e.user_id = $2`

	var row eventDetailRow
	if err := r.db.GetContext(ctx, &row, query, eventID, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}

	event := row.CalendarEvent
	if len(event.Ingredients) == 0 && len(row.RecipeIngredients) > 0 {
		event.Ingredients = row.RecipeIngredients
	}
	if len(event.Instructions) == 0 && len(row.RecipeInstructions) > 0 {
		event.Instructions = row.RecipeInstructions
	}

	checklist, err := loadChecklist(ctx, r.db, eventID, userID)
	if err != nil {
		return nil, err
	}
	event.Checklist = checklist

	return &event, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, eventID int64, userID uuid.UUID, draft entities.EventDraft) (*entities.CalendarEvent, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	query := `
		UPDATE calendar_events
		SET title = $3, day = $4, month = $5, year = $6, time_from = $7, time_to = $8,
			ingredients = $9, instructions = $10, recipe_id = COALESCE($11, recipe_id),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2`

	event := eventFromDraft(userID, draft)
	result, err := r.db.ExecContext(ctx, query,
		eventID, userID, event.Title, event.Day, event.Month, event.Year,
		event.TimeFrom, event.TimeTo, event.Ingredients, event.Instructions, draft.RecipeID,
	)
	if err != nil {
		if isUnknownRecipe(err) {
			return nil, unknownRecipeError()
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update event rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, entities.ErrEventNotFound
	}

	return r.GetByID(ctx, eventID, userID)
}

// Delete removes the checklist, the status row and the event in one transaction.
// It reports false, leaving every table untouched, when the caller does not own the event.
func (r *EventRepositoryImpl) Delete(ctx context.Context, eventID int64, userID uuid.UUID) (bool, error) {
	err := database.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ingredient_checklist WHERE event_id = $1`, eventID); err != nil {
			return fmt.Errorf("delete event checklist: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_status WHERE event_id = $1`, eventID); err != nil {
			return fmt.Errorf("delete event status: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = $1 AND user_id = $2`, eventID, userID)
		if err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete event rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return errNotOwned
		}
		return nil
	})

	if errors.Is(err, errNotOwned) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkCompleted upserts the status row in a single statement. Repeated calls are no-ops.
func (r *EventRepositoryImpl) MarkCompleted(ctx context.Context, eventID int64, userID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO event_status (event_id, user_id, is_completed, completed_at)
		SELECT id, user_id, TRUE, CURRENT_TIMESTAMP
		FROM calendar_events
		WHERE id = $1 AND user_id = $2
		ON CONFLICT (event_id) DO UPDATE
		SET is_completed = TRUE, completed_at = EXCLUDED.completed_at`

	result, err := r.db.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("mark event completed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark event completed rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ReplaceChecklist overwrites the whole checklist. Entries not in states are removed.
func (r *EventRepositoryImpl) ReplaceChecklist(ctx context.Context, eventID int64, userID uuid.UUID, states map[string]bool) (bool, error) {
	normalized, err := normalizeChecklist(states)
	if err != nil {
		return false, err
	}
	names := make([]string, 0, len(normalized))
	for name := range normalized {
		names = append(names, name)
	}
	sort.Strings(names)

	err = database.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.GetContext(ctx, &id, `SELECT id FROM calendar_events WHERE id = $1 AND user_id = $2 FOR UPDATE`, eventID, userID)
		if err == sql.ErrNoRows {
			return errNotOwned
		}
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM ingredient_checklist WHERE event_id = $1 AND user_id = $2`, eventID, userID); err != nil {
			return fmt.Errorf("clear checklist: %w", err)
		}

		insert := `
			INSERT INTO ingredient_checklist (event_id, user_id, ingredient_name, is_checked)
			VALUES ($1, $2, $3, $4)`
		for _, name := range names {
			if _, err := tx.ExecContext(ctx, insert, eventID, userID, name, normalized[name]); err != nil {
				return fmt.Errorf("insert checklist item %q: %w", name, err)
			}
		}
		return nil
	})

	if errors.Is(err, errNotOwned) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *EventRepositoryImpl) GetChecklist(ctx context.Context, eventID int64, userID uuid.UUID) (map[string]bool, error) {
	var owned bool
	err := r.db.GetContext(ctx, &owned, `SELECT EXISTS (SELECT 1 FROM calendar_events WHERE id = $1 AND user_id = $2)`, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("check event owner: %w", err)
	}
	if !owned {
		return nil, entities.ErrEventNotFound
	}

	return loadChecklist(ctx, r.db, eventID, userID)
}

func loadChecklist(ctx context.Context, q sqlx.QueryerContext, eventID int64, userID uuid.UUID) (map[string]bool, error) {
	query := `
		SELECT id, event_id, user_id, ingredient_name, is_checked
		FROM ingredient_checklist
		WHERE event_id = $1 AND user_id = $2
		ORDER BY ingredient_name`

	var items []entities.ChecklistItem
	if err := sqlx.SelectContext(ctx, q, &items, query, eventID, userID); err != nil {
		return nil, fmt.Errorf("load checklist: %w", err)
	}

	checklist := make(map[string]bool, len(items))
	for _, item := range items {
		checklist[item.IngredientName] = item.IsChecked
	}
	return checklist, nil
}

// normalizeChecklist trims names and drops empty ones. Names that collide after
// trimming are checked if any of them is.
func normalizeChecklist(states map[string]bool) (map[string]bool, error) {
	out := make(map[string]bool, len(states))
	for name, checked := range states {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > entities.MaxNameLength {
			verr := &entities.ValidationError{}
			verr.Add("ingredients", fmt.Sprintf("names must be at most %d characters", entities.MaxNameLength))
			return nil, verr
		}
		out[name] = out[name] || checked
	}
	return out, nil
}

func eventFromDraft(userID uuid.UUID, draft entities.EventDraft) *entities.CalendarEvent {
	timeFrom, _ := entities.NormalizeClock(draft.TimeFrom)
	timeTo, _ := entities.NormalizeClock(draft.TimeTo)

	return &entities.CalendarEvent{
		UserID:       userID,
		RecipeID:     draft.RecipeID,
		Title:        strings.TrimSpace(draft.Title),
		Day:          draft.Day,
		Month:        draft.Month,
		Year:         draft.Year,
		TimeFrom:     timeFrom,
		TimeTo:       timeTo,
		Ingredients:  entities.NewStringList(draft.Ingredients),
		Instructions: entities.NewStringList(draft.Instructions),
	}
}

// isUnknownRecipe matches only the recipe_id foreign key. Other violations,
// such as a token whose user was removed, stay internal errors.
func isUnknownRecipe(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == foreignKeyViolation && pqErr.Constraint == recipeForeignKey
}

func unknownRecipeError() error {
	verr := &entities.ValidationError{}
	verr.Add("recipeId", "does not reference an existing recipe")
	return verr
}
