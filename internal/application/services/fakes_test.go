package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mealcal/core/internal/domain/entities"
)

// memEventRepo is an in-memory EventRepository with the same ownership rules as the SQL one.
type memEventRepo struct {
	mu        sync.Mutex
	nextID    int64
	events    map[int64]*entities.CalendarEvent
	status    map[int64]bool
	checklist map[int64]map[string]bool
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{
		events:    map[int64]*entities.CalendarEvent{},
		status:    map[int64]bool{},
		checklist: map[int64]map[string]bool{},
	}
}

func (r *memEventRepo) owned(eventID int64, userID uuid.UUID) (*entities.CalendarEvent, bool) {
	e, ok := r.events[eventID]
	if !ok || e.UserID != userID {
		return nil, false
	}
	return e, true
}

func (r *memEventRepo) view(e *entities.CalendarEvent) *entities.CalendarEvent {
	out := *e
	out.IsCompleted = r.status[e.ID]
	return &out
}

func (r *memEventRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]*entities.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*entities.CalendarEvent{}
	for _, e := range r.events {
		if e.UserID == userID {
			out = append(out, r.view(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.TimeFrom != b.TimeFrom {
			return a.TimeFrom < b.TimeFrom
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *memEventRepo) Create(_ context.Context, userID uuid.UUID, d entities.EventDraft) (*entities.CalendarEvent, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := time.Now()
	e := &entities.CalendarEvent{
		ID: r.nextID, UserID: userID, RecipeID: d.RecipeID, Title: d.Title,
		Day: d.Day, Month: d.Month, Year: d.Year, TimeFrom: d.TimeFrom, TimeTo: d.TimeTo,
		Ingredients: d.Ingredients, Instructions: d.Instructions, CreatedAt: now, UpdatedAt: now,
	}
	r.events[e.ID] = e
	return r.view(e), nil
}

func (r *memEventRepo) GetByID(_ context.Context, eventID int64, userID uuid.UUID) (*entities.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.owned(eventID, userID)
	if !ok {
		return nil, entities.ErrEventNotFound
	}
	out := r.view(e)
	out.Checklist = map[string]bool{}
	for k, v := range r.checklist[eventID] {
		out.Checklist[k] = v
	}
	return out, nil
}

func (r *memEventRepo) Update(ctx context.Context, eventID int64, userID uuid.UUID, d entities.EventDraft) (*entities.CalendarEvent, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	e, ok := r.owned(eventID, userID)
	if !ok {
		r.mu.Unlock()
		return nil, entities.ErrEventNotFound
	}
	e.Title, e.Day, e.Month, e.Year = d.Title, d.Day, d.Month, d.Year
	e.TimeFrom, e.TimeTo = d.TimeFrom, d.TimeTo
	e.Ingredients, e.Instructions = d.Ingredients, d.Instructions
	if d.RecipeID != nil {
		e.RecipeID = d.RecipeID
	}
	e.UpdatedAt = time.Now()
	r.mu.Unlock()
	return r.GetByID(ctx, eventID, userID)
}

func (r *memEventRepo) Delete(_ context.Context, eventID int64, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owned(eventID, userID); !ok {
		return false, nil
	}
	delete(r.checklist, eventID)
	delete(r.status, eventID)
	delete(r.events, eventID)
	return true, nil
}

func (r *memEventRepo) MarkCompleted(_ context.Context, eventID int64, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owned(eventID, userID); !ok {
		return false, nil
	}
	r.status[eventID] = true
	return true, nil
}

func (r *memEventRepo) ReplaceChecklist(_ context.Context, eventID int64, userID uuid.UUID, states map[string]bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owned(eventID, userID); !ok {
		return false, nil
	}
	next := map[string]bool{}
	for k, v := range states {
		if k = strings.TrimSpace(k); k != "" {
			next[k] = next[k] || v
		}
	}
	r.checklist[eventID] = next
	return true, nil
}

func (r *memEventRepo) GetChecklist(_ context.Context, eventID int64, userID uuid.UUID) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owned(eventID, userID); !ok {
		return nil, entities.ErrEventNotFound
	}
	out := map[string]bool{}
	for k, v := range r.checklist[eventID] {
		out[k] = v
	}
	return out, nil
}

func (r *memEventRepo) satellites(eventID int64) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, hasStatus := r.status[eventID]
	_, hasChecklist := r.checklist[eventID]
	return hasStatus, hasChecklist
}

// memUserRepo is an in-memory UserRepository keyed by lower-cased email.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entities.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entities.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := r.users[email]; ok {
		return entities.ErrEmailTaken
	}
	user.Email = email
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[email] = &copied
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

// countingRecipeRepo counts repository calls so cache behaviour can be asserted.
type countingRecipeRepo struct {
	mu         sync.Mutex
	calls      map[string]int
	recipes    map[int64]*entities.Recipe
	categories []*entities.Category
	gate       chan struct{}
	loadErr    error
}

func newCountingRecipeRepo() *countingRecipeRepo {
	category := int64(1)
	name := "Pasta"
	return &countingRecipeRepo{
		calls: map[string]int{},
		recipes: map[int64]*entities.Recipe{
			1: {ID: 1, CategoryID: &category, CategoryName: &name, Name: "Carbonara", Ingredients: entities.StringList{"eggs", "guanciale"}},
		},
		categories: []*entities.Category{{ID: 1, Name: "Pasta"}},
	}
}

func (r *countingRecipeRepo) hit(op string) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	r.calls[op]++
	r.mu.Unlock()
}

func (r *countingRecipeRepo) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *countingRecipeRepo) ListCategories(ctx context.Context) ([]*entities.Category, error) {
	r.hit("categories")
	r.mu.Lock()
	r.loadErr = ctx.Err()
	r.mu.Unlock()
	return r.categories, nil
}

func (r *countingRecipeRepo) SearchByName(_ context.Context, name string) ([]*entities.Recipe, error) {
	r.hit("search")
	out := []*entities.Recipe{}
	for _, rec := range r.recipes {
		if strings.Contains(strings.ToLower(rec.Name), strings.ToLower(name)) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *countingRecipeRepo) ListByCategory(_ context.Context, category string) ([]*entities.Recipe, error) {
	r.hit("category")
	out := []*entities.Recipe{}
	for _, rec := range r.recipes {
		if rec.CategoryName != nil && strings.EqualFold(*rec.CategoryName, category) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *countingRecipeRepo) GetByID(_ context.Context, id int64) (*entities.Recipe, error) {
	r.hit("recipe")
	rec, ok := r.recipes[id]
	if !ok {
		return nil, entities.ErrRecipeNotFound
	}
	return rec, nil
}

func (r *countingRecipeRepo) UpsertCategory(_ context.Context, c *entities.Category) error {
	r.hit("upsert_category")
	return nil
}

func (r *countingRecipeRepo) UpsertRecipe(_ context.Context, rec *entities.Recipe) error {
	r.hit("upsert_recipe")
	return nil
}

// mapCache is a process-local CacheRepository.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) Ping(context.Context) error { return nil }
