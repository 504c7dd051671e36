package service

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const dateLayout = "2006-01-02"

var (
	// ErrNotFound is wrapped by lookups that match no row.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput matches every error caused by a bad argument.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is wrapped when a write collides with an existing row the
	// caller may not replace.
	ErrConflict = errors.New("already exists")
	// ErrUpstream wraps failures of an external provider.
	ErrUpstream = errors.New("upstream provider failed")
)

type inputError struct{ msg string }

func (e *inputError) Error() string        { return e.msg }
func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

func invalidf(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func validateNonNegativeInt(name string, value int) error {
	if value < 0 {
		return invalidf("%s must be >= 0", name)
	}
	return nil
}

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return invalidf("%s must be a finite number >= 0", name)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func newID() string {
	return uuid.NewString()
}

func requireID(kind, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", invalidf("%s id is required", kind)
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// wrapWrite wraps a failed write and marks unique key collisions as
// ErrConflict.
func wrapWrite(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", msg, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func mustAffect(res sql.Result, kind, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for %s %s: %w", kind, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}

// formatTime stores instants in local time so text range comparisons line
// up with dayBounds.
func formatTime(t time.Time) string {
	return t.Local().Format(time.RFC3339)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse RFC3339 %q: %w", raw, err)
	}
	return t, nil
}

// parseDBTime reads sqlite CURRENT_TIMESTAMP columns as well as RFC3339 text.
func parseDBTime(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Today returns the local calendar date.
func Today() string {
	return time.Now().Format(dateLayout)
}

func parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = Today()
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, invalidf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

func dayBounds(date string) (string, string, error) {
	start, err := parseDay(date)
	if err != nil {
		return "", "", err
	}
	return formatTime(start), formatTime(start.AddDate(0, 0, 1)), nil
}

func rangeBounds(from, to string) (string, string, error) {
	start, err := parseDay(from)
	if err != nil {
		return "", "", err
	}
	end, err := parseDay(to)
	if err != nil {
		return "", "", err
	}
	if end.Before(start) {
		return "", "", invalidf("range end %s is before start %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	return formatTime(start), formatTime(end.AddDate(0, 0, 1)), nil
}
