package ports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mealcal/core/internal/domain/entities"
)

// Claims represents the authenticated identity extracted from a token
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Surname  string `json:"surname" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User  *entities.User `json:"user"`
	Token string         `json:"token"`
}

// EventRequest is the body of create and update calls.
// Numeric fields accept JSON numbers or numeric strings.
type EventRequest struct {
	Title        string    `json:"title" validate:"required,max=255"`
	Day          *IntValue `json:"day" validate:"required"`
	Month        *IntValue `json:"month" validate:"required"`
	Year         *IntValue `json:"year" validate:"required"`
	TimeFrom     string    `json:"timeFrom" validate:"required"`
	TimeTo       string    `json:"timeTo" validate:"required"`
	Ingredients  ListValue `json:"ingredients"`
	Instructions ListValue `json:"instructions"`
	RecipeID     *IntValue `json:"recipeId"`
}

// ChecklistRequest replaces the ingredient checklist of an event
type ChecklistRequest struct {
	Ingredients map[string]bool `json:"ingredients" validate:"required,dive,keys,max=255,endkeys"`
}

// IntValue holds a raw JSON number or numeric string until it is coerced.
type IntValue struct {
	raw string
}

// NewIntValue wraps an int.
func NewIntValue(v int) *IntValue {
	return &IntValue{raw: strconv.Itoa(v)}
}

// UnmarshalJSON keeps the literal so Int can report non-integers.
func (v *IntValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v.raw = strings.TrimSpace(s)
		return nil
	}
	v.raw = string(data)
	return nil
}

// MarshalJSON renders the value as a number when it is one.
func (v IntValue) MarshalJSON() ([]byte, error) {
	if n, err := v.Int(); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(v.raw)
}

// Int coerces the value. Fractions and non-numeric text are errors.
func (v *IntValue) Int() (int, error) {
	if v == nil || v.raw == "" || v.raw == "null" {
		return 0, fmt.Errorf("value is empty")
	}
	if n, err := strconv.Atoi(v.raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v.raw, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("must be an integer")
	}
	return int(f), nil
}

// IsNull reports whether the value is absent or JSON null.
func (v *IntValue) IsNull() bool {
	return v == nil || v.raw == "" || v.raw == "null"
}

// ListValue accepts either a JSON array of strings or a single joined string.
type ListValue struct {
	Items  []string
	Joined string
	IsText bool
}

// NewListValue wraps already-split items.
func NewListValue(items ...string) ListValue {
	return ListValue{Items: items}
}

// UnmarshalJSON implements json.Unmarshaler
func (l *ListValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*l = ListValue{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = ListValue{Joined: s, IsText: true}
	default:
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("must be an array of strings or a string")
		}
		*l = ListValue{Items: items}
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (l ListValue) MarshalJSON() ([]byte, error) {
	if l.IsText {
		return json.Marshal(l.Joined)
	}
	if l.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Items)
}

// Normalize returns trimmed, non-empty items. Joined text is split on sep.
func (l ListValue) Normalize(sep string) entities.StringList {
	if l.IsText {
		return entities.SplitStringList(l.Joined, sep)
	}
	return entities.NewStringList(l.Items)
}
