package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mealcal/core/internal/domain/entities"
	"github.com/mealcal/core/internal/ports"
)

var (
	// ErrNoForm is returned by Submit when no form is open
	ErrNoForm = errors.New("no event form is open")
	// ErrNoDetail is returned by checklist actions when no event is being viewed
	ErrNoDetail = errors.New("no event is being viewed")
	// ErrNoPendingDelete is returned by ConfirmDelete without a prior RequestDelete
	ErrNoPendingDelete = errors.New("no delete is pending confirmation")
	// ErrUnknownEvent is returned when an id is not in the loaded list
	ErrUnknownEvent = errors.New("event is not loaded")
)

// API is the subset of the REST client the engine drives
type API interface {
	ListEvents(ctx context.Context) ([]*entities.CalendarEvent, error)
	GetEvent(ctx context.Context, id int64) (*entities.CalendarEvent, error)
	CreateEvent(ctx context.Context, req ports.EventRequest) (*entities.CalendarEvent, error)
	UpdateEvent(ctx context.Context, id int64, req ports.EventRequest) (*entities.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id int64) error
	CompleteEvent(ctx context.Context, id int64) error
	UpdateChecklist(ctx context.Context, id int64, states map[string]bool) error
}

// Form is an open create or edit form. EventID is zero when creating.
type Form struct {
	EventID int64
	Day     int
	Month   int
	Year    int
	Initial *entities.CalendarEvent
}

// Editing reports whether the form edits an existing event
func (f *Form) Editing() bool {
	return f.EventID != 0
}

// PendingDelete is the first step of the two-step delete
type PendingDelete struct {
	EventID int64
	Title   string
}

// Detail is the event being viewed with its editable checklist
type Detail struct {
	Event     *entities.CalendarEvent
	Checklist map[string]bool
}

// Engine is the calendar view state machine
type Engine struct {
	api   API
	now   func() time.Time
	month time.Time

	events  []*entities.CalendarEvent
	form    *Form
	pending *PendingDelete
	detail  *Detail
	notice  Notice
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine starts on the current month
func NewEngine(api API, opts ...EngineOption) *Engine {
	e := &Engine{api: api, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	today := e.now()
	e.month = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	return e
}

// Month returns the first day of the visible month
func (e *Engine) Month() time.Time { return e.month }

// Events returns the loaded events
func (e *Engine) Events() []*entities.CalendarEvent { return e.events }

// Form returns the open form or nil
func (e *Engine) Form() *Form { return e.form }

// PendingDelete returns the delete awaiting confirmation or nil
func (e *Engine) PendingDelete() *PendingDelete { return e.pending }

// Detail returns the viewed event or nil
func (e *Engine) Detail() *Detail { return e.detail }

// Notice returns the message left by the last action
func (e *Engine) Notice() Notice { return e.notice }

// ClearNotice dismisses the current notice
func (e *Engine) ClearNotice() { e.notice = Notice{} }

// Grid lays out the visible month
func (e *Engine) Grid() []Cell {
	return BuildGrid(e.month, e.events, e.now())
}

// Load fetches the full event list. Filtering to the visible month happens in Grid.
func (e *Engine) Load(ctx context.Context) error {
	events, err := e.api.ListEvents(ctx)
	if err != nil {
		e.notice = errorNotice(err)
		return err
	}
	for _, ev := range events {
		normalizeTimes(ev)
	}
	e.events = events
	return nil
}

// NextMonth moves forward one month and reloads
func (e *Engine) NextMonth(ctx context.Context) error {
	e.month = e.month.AddDate(0, 1, 0)
	return e.Load(ctx)
}

// PrevMonth moves back one month and reloads
func (e *Engine) PrevMonth(ctx context.Context) error {
	e.month = e.month.AddDate(0, -1, 0)
	return e.Load(ctx)
}

// ShowMonth jumps to month of year and reloads
func (e *Engine) ShowMonth(ctx context.Context, year int, month time.Month) error {
	e.month = time.Date(year, month, 1, 0, 0, 0, 0, e.month.Location())
	return e.Load(ctx)
}

// OpenCreate opens an empty form for day of the visible month
func (e *Engine) OpenCreate(day int) {
	e.form = &Form{Day: day, Month: int(e.month.Month()), Year: e.month.Year()}
}

// OpenEdit re-fetches the event and opens it in the form
func (e *Engine) OpenEdit(ctx context.Context, id int64) error {
	event, err := e.api.GetEvent(ctx, id)
	if err != nil {
		e.notice = errorNotice(err)
		return err
	}
	normalizeTimes(event)
	e.form = &Form{EventID: id, Day: event.Day, Month: event.Month, Year: event.Year, Initial: event}
	return nil
}

// CloseForm discards the open form
func (e *Engine) CloseForm() { e.form = nil }

// Submit sends the open form. Creates append the server's copy, updates reload the list.
func (e *Engine) Submit(ctx context.Context, req ports.EventRequest) (*entities.CalendarEvent, error) {
	if e.form == nil {
		return nil, ErrNoForm
	}

	if !e.form.Editing() {
		event, err := e.api.CreateEvent(ctx, req)
		if err != nil {
			e.notice = errorNotice(err)
			return nil, err
		}
		normalizeTimes(event)
		e.events = append(e.events, event)
		e.form = nil
		e.notice = successNotice(fmt.Sprintf("Event %q added", event.Title))
		return event, nil
	}

	event, err := e.api.UpdateEvent(ctx, e.form.EventID, req)
	if err != nil {
		e.notice = errorNotice(err)
		return nil, err
	}
	normalizeTimes(event)
	e.form = nil
	if err := e.Load(ctx); err != nil {
		return event, err
	}
	e.notice = successNotice(fmt.Sprintf("Event %q updated", event.Title))
	return event, nil
}

// RequestDelete asks for confirmation before deleting id
func (e *Engine) RequestDelete(id int64) error {
	event := e.find(id)
	if event == nil {
		return ErrUnknownEvent
	}
	e.pending = &PendingDelete{EventID: id, Title: event.Title}
	return nil
}

// CancelDelete drops the pending delete
func (e *Engine) CancelDelete() { e.pending = nil }

// ConfirmDelete performs the pending delete
func (e *Engine) ConfirmDelete(ctx context.Context) error {
	if e.pending == nil {
		return ErrNoPendingDelete
	}
	pending := e.pending
	e.pending = nil

	if err := e.api.DeleteEvent(ctx, pending.EventID); err != nil {
		e.notice = errorNotice(err)
		return err
	}

	kept := e.events[:0]
	for _, ev := range e.events {
		if ev.ID != pending.EventID {
			kept = append(kept, ev)
		}
	}
	e.events = kept
	if e.detail != nil && e.detail.Event.ID == pending.EventID {
		e.detail = nil
	}
	e.notice = successNotice(fmt.Sprintf("Event %q deleted", pending.Title))
	return nil
}

// View re-fetches the event with its recipe content and opens the detail view
func (e *Engine) View(ctx context.Context, id int64) error {
	event, err := e.api.GetEvent(ctx, id)
	if err != nil {
		e.notice = errorNotice(err)
		return err
	}
	normalizeTimes(event)

	checklist := make(map[string]bool, len(event.Ingredients))
	for _, name := range event.Ingredients {
		checklist[name] = false
	}
	for name, checked := range event.Checklist {
		checklist[name] = checked
	}
	e.detail = &Detail{Event: event, Checklist: checklist}
	return nil
}

// CloseDetail closes the detail view
func (e *Engine) CloseDetail() { e.detail = nil }

// Complete marks id as cooked
func (e *Engine) Complete(ctx context.Context, id int64) error {
	if err := e.api.CompleteEvent(ctx, id); err != nil {
		e.notice = errorNotice(err)
		return err
	}
	if ev := e.find(id); ev != nil {
		ev.IsCompleted = true
	}
	if e.detail != nil && e.detail.Event.ID == id {
		e.detail.Event.IsCompleted = true
	}
	e.notice = successNotice("Event marked as completed")
	return nil
}

// ToggleIngredient flips one checklist entry of the viewed event
func (e *Engine) ToggleIngredient(name string) error {
	if e.detail == nil {
		return ErrNoDetail
	}
	e.detail.Checklist[name] = !e.detail.Checklist[name]
	return nil
}

// SaveChecklist stores the viewed event's checklist
func (e *Engine) SaveChecklist(ctx context.Context) error {
	if e.detail == nil {
		return ErrNoDetail
	}
	if err := e.api.UpdateChecklist(ctx, e.detail.Event.ID, e.detail.Checklist); err != nil {
		e.notice = errorNotice(err)
		return err
	}
	e.notice = successNotice("Checklist saved")
	return nil
}

func (e *Engine) find(id int64) *entities.CalendarEvent {
	for _, ev := range e.events {
		if ev.ID == id {
			return ev
		}
	}
	return nil
}

func normalizeTimes(ev *entities.CalendarEvent) {
	if t, err := entities.NormalizeClock(ev.TimeFrom); err == nil {
		ev.TimeFrom = t
	}
	if t, err := entities.NormalizeClock(ev.TimeTo); err == nil {
		ev.TimeTo = t
	}
}
