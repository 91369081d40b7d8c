package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealcal/core/internal/domain/entities"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var listColumns = []string{
	"id", "user_id", "recipe_id", "title", "day", "month", "year",
	"time_from", "time_to", "ingredients", "instructions", "created_at", "updated_at",
	"is_completed", "completed_at",
}

var detailColumns = []string{
	"id", "user_id", "recipe_id", "title", "day", "month", "year",
	"time_from", "time_to", "ingredients", "instructions", "created_at", "updated_at",
	"recipe_name", "prep_time", "recipe_ingredients", "recipe_instructions",
	"is_completed", "completed_at",
}

func pastaDraft() entities.EventDraft {
	return entities.EventDraft{
		Title:        "Pasta",
		Day:          15,
		Month:        3,
		Year:         2025,
		TimeFrom:     "19:00:00",
		TimeTo:       "20:00",
		Ingredients:  entities.StringList{"pasta", " tomato "},
		Instructions: entities.StringList{"boil", "mix"},
	}
}

func TestEventRepository_ListForUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	userID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows(listColumns).
		AddRow(1, userID.String(), nil, "Breakfast", 15, 3, 2025, "08:00", "09:00", []byte(`["eggs"]`), []byte(`[]`), now, now, false, nil).
		AddRow(2, userID.String(), nil, "Dinner", 15, 3, 2025, "19:00", "20:00", []byte(`[]`), []byte(`[]`), now, now, true, now)

	mock.ExpectQuery(`ORDER BY e.year, e.month, e.day, e.time_from, e.id`).
		WithArgs(userID).
		WillReturnRows(rows)

	events, err := repo.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "08:00", events[0].TimeFrom)
	assert.Equal(t, entities.StringList{"eggs"}, events[0].Ingredients)
	assert.False(t, events[0].IsCompleted)
	assert.True(t, events[1].IsCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_CreateNormalizesFields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO calendar_events`).
		WithArgs(userID, nil, "Pasta", 15, 3, 2025, "19:00", "20:00", []byte(`["pasta","tomato"]`), []byte(`["boil","mix"]`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))

	event, err := repo.Create(context.Background(), userID, pastaDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(42), event.ID)
	assert.Equal(t, "19:00", event.TimeFrom)
	assert.Equal(t, entities.StringList{"pasta", "tomato"}, event.Ingredients)
	assert.False(t, event.IsCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_CreateRejectsInvalidDraft(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	_, err := repo.Create(context.Background(), uuid.New(), entities.EventDraft{Title: "Pasta"})
	assert.True(t, errors.Is(err, entities.ErrValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_CreateUnknownRecipe(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	draft := pastaDraft()
	recipeID := int64(999)
	draft.RecipeID = &recipeID

	mock.ExpectQuery(`INSERT INTO calendar_events`).
		WillReturnError(&pq.Error{Code: foreignKeyViolation, Constraint: recipeForeignKey})

	_, err := repo.Create(context.Background(), uuid.New(), draft)
	var verr *entities.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"recipeId"}, verr.Fields)
}

func TestEventRepository_CreateRemovedOwnerIsInternal(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectQuery(`INSERT INTO calendar_events`).
		WillReturnError(&pq.Error{Code: foreignKeyViolation, Constraint: "calendar_events_user_id_fkey"})

	_, err := repo.Create(context.Background(), uuid.New(), pastaDraft())
	require.Error(t, err)
	assert.False(t, errors.Is(err, entities.ErrValidation))
	assert.Contains(t, err.Error(), "create event")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_GetByIDInheritsRecipeLists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`WHERE e.id = \$1 AND e.user_id = \$2`).
		WithArgs(int64(7), userID).
		WillReturnRows(sqlmock.NewRows(detailColumns).AddRow(
			7, userID.String(), 3, "Lasagna", 1, 4, 2025, "13:00", "14:00",
			[]byte(`[]`), []byte(`["my own step"]`), now, now,
			"Lasagna", 45, []byte(`["pasta sheets","ragu"]`), []byte(`["layer","bake"]`),
			false, nil,
		))
	mock.ExpectQuery(`FROM ingredient_checklist`).
		WithArgs(int64(7), userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "ingredient_name", "is_checked"}).
			AddRow(1, 7, userID.String(), "ragu", true))

	event, err := repo.GetByID(context.Background(), 7, userID)
	require.NoError(t, err)
	assert.Equal(t, entities.StringList{"pasta sheets", "ragu"}, event.Ingredients)
	assert.Equal(t, entities.StringList{"my own step"}, event.Instructions)
	require.NotNil(t, event.RecipeName)
	assert.Equal(t, "Lasagna", *event.RecipeName)
	require.NotNil(t, event.PrepTime)
	assert.Equal(t, 45, *event.PrepTime)
	assert.Equal(t, map[string]bool{"ragu": true}, event.Checklist)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_GetByIDOtherOwnerIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectQuery(`WHERE e.id = \$1 AND e.user_id = \$2`).
		WillReturnRows(sqlmock.NewRows(detailColumns))

	_, err := repo.GetByID(context.Background(), 7, uuid.New())
	assert.ErrorIs(t, err, entities.ErrEventNotFound)
}

func TestEventRepository_UpdateNotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectExec(`UPDATE calendar_events`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), 7, uuid.New(), pastaDraft())
	assert.ErrorIs(t, err, entities.ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_UpdateReturnsFreshRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectExec(`recipe_id = COALESCE\(\$11, recipe_id\)`).
		WithArgs(int64(7), userID, "Pasta", 15, 3, 2025, "19:00", "20:00", sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`WHERE e.id = \$1 AND e.user_id = \$2`).
		WillReturnRows(sqlmock.NewRows(detailColumns).AddRow(
			7, userID.String(), nil, "Pasta", 15, 3, 2025, "19:00", "20:00",
			[]byte(`["pasta","tomato"]`), []byte(`["boil","mix"]`), now, now,
			nil, nil, nil, nil, true, now,
		))
	mock.ExpectQuery(`FROM ingredient_checklist`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "ingredient_name", "is_checked"}))

	event, err := repo.Update(context.Background(), 7, userID, pastaDraft())
	require.NoError(t, err)
	assert.True(t, event.IsCompleted)
	assert.Equal(t, "19:00", event.TimeFrom)
	assert.Empty(t, event.Checklist)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_DeleteOwnedRemovesSatellites(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM ingredient_checklist WHERE event_id = \$1`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM event_status WHERE event_id = \$1`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM calendar_events WHERE id = \$1 AND user_id = \$2`).WithArgs(int64(7), userID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := repo.Delete(context.Background(), 7, userID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_DeleteForeignRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM ingredient_checklist`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM event_status`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM calendar_events`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	deleted, err := repo.Delete(context.Background(), 7, uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_DeleteErrorRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM ingredient_checklist`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM event_status`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	deleted, err := repo.Delete(context.Background(), 7, uuid.New())
	assert.Error(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_MarkCompletedIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	userID := uuid.New()

	for i := 0; i < 2; i++ {
		mock.ExpectExec(`ON CONFLICT \(event_id\) DO UPDATE`).
			WithArgs(int64(7), userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	for i := 0; i < 2; i++ {
		ok, err := repo.MarkCompleted(context.Background(), 7, userID)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_MarkCompletedNotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectExec(`INSERT INTO event_status`).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkCompleted(context.Background(), 7, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEventRepository_ReplaceChecklistOverwrites(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM calendar_events WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
		WithArgs(int64(7), userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(`DELETE FROM ingredient_checklist WHERE event_id = \$1 AND user_id = \$2`).
		WithArgs(int64(7), userID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO ingredient_checklist`).
		WithArgs(int64(7), userID, "a", true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ok, err := repo.ReplaceChecklist(context.Background(), 7, userID, map[string]bool{" a ": true, "  ": false})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ReplaceChecklistNotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	ok, err := repo.ReplaceChecklist(context.Background(), 7, uuid.New(), map[string]bool{"a": true})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ReplaceChecklistRejectsLongNames(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	long := strings.Repeat("x", entities.MaxNameLength+1)
	ok, err := repo.ReplaceChecklist(context.Background(), 7, uuid.New(), map[string]bool{"salt": true, long: false})
	assert.False(t, ok)

	var verr *entities.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"ingredients"}, verr.Fields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_GetChecklist(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	_, err := repo.GetChecklist(context.Background(), 7, userID)
	assert.ErrorIs(t, err, entities.ErrEventNotFound)

	mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`FROM ingredient_checklist`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "ingredient_name", "is_checked"}).
			AddRow(1, 7, userID.String(), "a", true).
			AddRow(2, 7, userID.String(), "b", false))

	checklist, err := repo.GetChecklist(context.Background(), 7, userID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true, "b": false}, checklist)
	assert.NoError(t, mock.ExpectationsWereMet())
}
