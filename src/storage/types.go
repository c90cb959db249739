package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO day format used for DATE columns.
const DateLayout = "2006-01-02"

// Date is a calendar day stored as yyyy-mm-dd text. The encoding sorts
// lexicographically, so day comparisons in SQL stay correct.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a yyyy-mm-dd string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// AddDays returns the day n days after d.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// Sub returns the whole days from other to d.
func (d Date) Sub(other Date) int {
	return int(d.Time.Sub(other.Time) / (24 * time.Hour))
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Scan implements the sql.Scanner interface for Date.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan type %T into Date", value)
	}
}

func (d *Date) scanString(s string) error {
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// Value implements the driver.Valuer interface for Date.
func (d Date) Value() (driver.Value, error) {
	return d.Format(DateLayout), nil
}

// MarshalJSON renders the day as a yyyy-mm-dd string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON accepts a yyyy-mm-dd string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.scanString(s)
}

// FoodIDList is the ordered food ids of a meal, stored as comma
// separated text in the database.
type FoodIDList []int64

// Scan implements the sql.Scanner interface for FoodIDList.
func (f *FoodIDList) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		*f = FoodIDList{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan type %T into FoodIDList", value)
	}

	if s == "" {
		*f = FoodIDList{}
		return nil
	}

	parts := strings.Split(s, ",")
	out := make(FoodIDList, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid food id %q: %w", part, err)
		}
		out = append(out, id)
	}
	*f = out
	return nil
}

// Value implements the driver.Valuer interface for FoodIDList.
func (f FoodIDList) Value() (driver.Value, error) {
	if len(f) == 0 {
		return "", nil
	}
	parts := make([]string, len(f))
	for i, id := range f {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ","), nil
}
