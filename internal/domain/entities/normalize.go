package entities

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StringList is a sequence of trimmed, non-empty strings stored as a JSONB array.
type StringList []string

// Value implements driver.Valuer. A nil list is stored as an empty array.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// Scan implements sql.Scanner
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = StringList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	*s = StringList(items)
	return nil
}

// MarshalJSON never renders null.
func (s StringList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// NewStringList trims every item and drops the empty ones.
func NewStringList(items []string) StringList {
	out := make(StringList, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// SplitStringList splits joined text on sep and normalizes the parts.
func SplitStringList(text, sep string) StringList {
	return NewStringList(strings.Split(text, sep))
}

var errClockFormat = errors.New("must be a time formatted as HH:MM")

// NormalizeClock turns "H:M", "HH:MM" or "HH:MM:SS" into "HH:MM".
// Only the first two colon-delimited fields are kept.
func NormalizeClock(value string) (string, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 {
		return "", errClockFormat
	}

	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hours < 0 || hours > 23 {
		return "", errClockFormat
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minutes < 0 || minutes > 59 {
		return "", errClockFormat
	}

	return fmt.Sprintf("%02d:%02d", hours, minutes), nil
}

// ClockMinutes returns minutes since midnight for an HH:MM value, or 0 when malformed.
func ClockMinutes(value string) int {
	normalized, err := NormalizeClock(value)
	if err != nil {
		return 0
	}
	hours, _ := strconv.Atoi(normalized[:2])
	minutes, _ := strconv.Atoi(normalized[3:])
	return hours*60 + minutes
}
