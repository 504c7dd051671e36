// Package ledger folds a day's food and workout logs into totals and compares
// them against goals. Every function is pure: inputs are never mutated.
package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/saadjs/fitfuel/internal/model"
)

// ValidationError reports a malformed food log entry.
type ValidationError struct {
	Field string
	Value float64
	ID    string
}

func (e *ValidationError) Error() string {
	if e.Field == "id" {
		return fmt.Sprintf("food entry id %q already logged for this day", e.ID)
	}
	return fmt.Sprintf("%s must be >= 0 (got %g)", e.Field, e.Value)
}

// ValidateFood checks nutrient values without looking at the log.
func ValidateFood(entry model.FoodLogEntry) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"calories", entry.Calories},
		{"protein", entry.Protein},
		{"carbs", entry.Carbs},
		{"fats", entry.Fats},
	}
	for _, f := range fields {
		if f.value < 0 || math.IsNaN(f.value) {
			return &ValidationError{Field: f.name, Value: f.value}
		}
	}
	return nil
}

// AddFood returns a new log with entry appended.
func AddFood(log []model.FoodLogEntry, entry model.FoodLogEntry) ([]model.FoodLogEntry, error) {
	if err := ValidateFood(entry); err != nil {
		return nil, err
	}
	for _, existing := range log {
		if entry.ID != "" && existing.ID == entry.ID {
			return nil, &ValidationError{Field: "id", ID: entry.ID}
		}
	}
	out := make([]model.FoodLogEntry, 0, len(log)+1)
	out = append(out, log...)
	return append(out, entry), nil
}

// RemoveFood returns a new log without the entry with the given id. Removing
// an unknown id is not an error.
func RemoveFood(log []model.FoodLogEntry, id string) []model.FoodLogEntry {
	out := make([]model.FoodLogEntry, 0, len(log))
	for _, e := range log {
		if e.ID == id {
			continue
		}
		out = append(out, e)
	}
	return out
}

func ComputeTotals(food []model.FoodLogEntry, workouts []model.WorkoutLogEntry, waterMl float64) model.DailyTotals {
	t := model.DailyTotals{Water: waterMl}
	for _, e := range food {
		t.Calories += e.Calories
		t.Protein += e.Protein
		t.Carbs += e.Carbs
		t.Fats += e.Fats
	}
	for _, w := range workouts {
		t.CaloriesBurned += w.CaloriesBurned
	}
	return t
}

// NetCalories is signed; a negative value means more was burned than eaten.
func NetCalories(t model.DailyTotals) float64 {
	return t.Calories - t.CaloriesBurned
}

// Remaining is signed; a negative value means the calorie goal was exceeded.
func Remaining(t model.DailyTotals, goals model.Goals) float64 {
	return goals.Calories - NetCalories(t)
}

// Summary is the presentation view of a day. Only the Display* fields are
// clamped at zero.
type Summary struct {
	Totals           model.DailyTotals `json:"totals"`
	Goals            model.Goals       `json:"goals"`
	NetCalories      float64           `json:"netCalories"`
	Remaining        float64           `json:"remaining"`
	DisplayRemaining float64           `json:"displayRemaining"`
	ProteinLeft      float64           `json:"proteinLeft"`
	CarbsLeft        float64           `json:"carbsLeft"`
	FatsLeft         float64           `json:"fatsLeft"`
	WaterLeft        float64           `json:"waterLeft"`
	OverTarget       bool              `json:"overTarget"`
}

func Summarize(t model.DailyTotals, goals model.Goals) Summary {
	remaining := Remaining(t, goals)
	return Summary{
		Totals:           t,
		Goals:            goals,
		NetCalories:      NetCalories(t),
		Remaining:        remaining,
		DisplayRemaining: clampZero(remaining),
		ProteinLeft:      clampZero(goals.Protein - t.Protein),
		CarbsLeft:        clampZero(goals.Carbs - t.Carbs),
		FatsLeft:         clampZero(goals.Fats - t.Fats),
		WaterLeft:        clampZero(goals.Water - t.Water),
		OverTarget:       remaining < 0,
	}
}

// LenientNumber parses user input and falls back to 0 for anything that is
// not a finite number.
func LenientNumber(value string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
