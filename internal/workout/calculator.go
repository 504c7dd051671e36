// Package workout estimates calorie burn for catalog exercises and tracks
// set completion inside a workout session.
package workout

import (
	"fmt"
	"time"

	"github.com/saadjs/fitfuel/internal/model"
)

const (
	DefaultCaloriesPerRep = 0.5
	DefaultMET            = 5.0
	DefaultBodyWeightKg   = 70.0
)

// InvalidExerciseError is returned for exercise types other than reps and
// duration.
type InvalidExerciseError struct {
	Type model.ExerciseType
}

func (e *InvalidExerciseError) Error() string {
	return fmt.Sprintf("invalid exercise type %q (use reps or duration)", string(e.Type))
}

// Params are the performed values. Reps and Sets apply to reps exercises,
// DurationMinutes to duration exercises.
type Params struct {
	Reps            int
	Sets            int
	DurationMinutes float64
}

// Estimate returns the calories burned. Missing catalog values fall back to
// DefaultCaloriesPerRep and DefaultMET; a non-positive body weight falls back
// to DefaultBodyWeightKg.
func Estimate(ex model.ExerciseDefinition, p Params, bodyWeightKg float64) (float64, error) {
	switch ex.Type {
	case model.ExerciseReps:
		perRep := DefaultCaloriesPerRep
		if ex.CaloriesPerRep != nil {
			perRep = *ex.CaloriesPerRep
		}
		return nonNegative(perRep * float64(p.Reps) * float64(p.Sets)), nil
	case model.ExerciseDuration:
		met := DefaultMET
		if ex.MET != nil {
			met = *ex.MET
		}
		if bodyWeightKg <= 0 {
			bodyWeightKg = DefaultBodyWeightKg
		}
		return nonNegative(met * bodyWeightKg * (p.DurationMinutes / 60)), nil
	default:
		return 0, &InvalidExerciseError{Type: ex.Type}
	}
}

// NewLogEntry estimates the burn and builds a log entry carrying only the
// fields that belong to the exercise type.
func NewLogEntry(id string, ex model.ExerciseDefinition, p Params, bodyWeightKg float64, at time.Time) (model.WorkoutLogEntry, error) {
	calories, err := Estimate(ex, p, bodyWeightKg)
	if err != nil {
		return model.WorkoutLogEntry{}, err
	}
	entry := model.WorkoutLogEntry{
		ID:             id,
		ExerciseID:     ex.ID,
		Name:           ex.Name,
		Type:           ex.Type,
		Category:       ex.Category,
		CaloriesBurned: calories,
		Timestamp:      at,
	}
	if ex.Type == model.ExerciseReps {
		reps, sets := p.Reps, p.Sets
		entry.Reps = &reps
		entry.Sets = &sets
	} else {
		duration := p.DurationMinutes
		entry.Duration = &duration
	}
	return entry, nil
}

// ValidateEntry checks the reps/sets versus duration exclusivity.
func ValidateEntry(e model.WorkoutLogEntry) error {
	switch e.Type {
	case model.ExerciseReps:
		if e.Reps == nil || e.Sets == nil {
			return fmt.Errorf("reps workout %q requires reps and sets", e.ID)
		}
		if e.Duration != nil {
			return fmt.Errorf("reps workout %q must not carry a duration", e.ID)
		}
	case model.ExerciseDuration:
		if e.Duration == nil {
			return fmt.Errorf("duration workout %q requires a duration", e.ID)
		}
		if e.Reps != nil || e.Sets != nil {
			return fmt.Errorf("duration workout %q must not carry reps or sets", e.ID)
		}
	default:
		return &InvalidExerciseError{Type: e.Type}
	}
	if e.CaloriesBurned < 0 {
		return fmt.Errorf("calories burned must be >= 0")
	}
	return nil
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
