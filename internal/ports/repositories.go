package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mealcal/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

// RecipeRepository defines read access to the recipe catalog
type RecipeRepository interface {
	ListCategories(ctx context.Context) ([]*entities.Category, error)
	SearchByName(ctx context.Context, name string) ([]*entities.Recipe, error)
	ListByCategory(ctx context.Context, category string) ([]*entities.Recipe, error)
	GetByID(ctx context.Context, id int64) (*entities.Recipe, error)
	UpsertCategory(ctx context.Context, category *entities.Category) error
	UpsertRecipe(ctx context.Context, recipe *entities.Recipe) error
}

// EventRepository defines the owner-scoped persistence of calendar events
// and their status and checklist satellites.
type EventRepository interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*entities.CalendarEvent, error)
	Create(ctx context.Context, userID uuid.UUID, draft entities.EventDraft) (*entities.CalendarEvent, error)
	GetByID(ctx context.Context, eventID int64, userID uuid.UUID) (*entities.CalendarEvent, error)
	Update(ctx context.Context, eventID int64, userID uuid.UUID, draft entities.EventDraft) (*entities.CalendarEvent, error)
	Delete(ctx context.Context, eventID int64, userID uuid.UUID) (bool, error)
	MarkCompleted(ctx context.Context, eventID int64, userID uuid.UUID) (bool, error)
	ReplaceChecklist(ctx context.Context, eventID int64, userID uuid.UUID, states map[string]bool) (bool, error)
	GetChecklist(ctx context.Context, eventID int64, userID uuid.UUID) (map[string]bool, error)
}

// CacheRepository stores serialized values with a TTL
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}
