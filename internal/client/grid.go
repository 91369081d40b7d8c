package client

import (
	"sort"
	"time"

	"github.com/mealcal/core/internal/domain/entities"
)

// GridCells is the number of cells in a month view: six weeks of seven days
const GridCells = 42

// Cell is one day of the month grid
type Cell struct {
	Date    time.Time
	InMonth bool
	Today   bool
	Events  []*entities.CalendarEvent
}

// BuildGrid lays out the month containing month as 42 cells starting on Sunday.
// Events are placed on their day and sorted by start time.
func BuildGrid(month time.Time, events []*entities.CalendarEvent, today time.Time) []Cell {
	loc := month.Location()
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	today = today.In(loc)

	byDay := make(map[string][]*entities.CalendarEvent)
	for _, e := range events {
		key := dayKey(e.Year, time.Month(e.Month), e.Day)
		byDay[key] = append(byDay[key], e)
	}

	cells := make([]Cell, GridCells)
	for i := range cells {
		date := start.AddDate(0, 0, i)
		dayEvents := byDay[dayKey(date.Year(), date.Month(), date.Day())]
		sort.SliceStable(dayEvents, func(a, b int) bool {
			return dayEvents[a].TimeFrom < dayEvents[b].TimeFrom
		})
		cells[i] = Cell{
			Date:    date,
			InMonth: date.Month() == first.Month(),
			Today:   sameDay(date, today),
			Events:  dayEvents,
		}
	}
	return cells
}

func dayKey(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
