package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/workout"
)

type LogWorkoutInput struct {
	ProfileID       string
	ID              string
	ExerciseID      string
	Reps            int
	Sets            int
	DurationMinutes float64
	At              time.Time
}

type WorkoutLogFilter struct {
	ProfileID string
	Date      string
	FromDate  string
	ToDate    string
	Limit     int
}

// LogWorkout estimates the burn for a catalog exercise and stores the entry.
func LogWorkout(db *sql.DB, in LogWorkoutInput) (model.WorkoutLogEntry, error) {
	profile, err := GetProfile(db, in.ProfileID)
	if err != nil {
		return model.WorkoutLogEntry{}, err
	}
	ex, err := GetExercise(db, in.ExerciseID)
	if err != nil {
		return model.WorkoutLogEntry{}, err
	}
	if err := validateNonNegativeInt("reps", in.Reps); err != nil {
		return model.WorkoutLogEntry{}, err
	}
	if err := validateNonNegativeInt("sets", in.Sets); err != nil {
		return model.WorkoutLogEntry{}, err
	}
	if err := validateNonNegativeFloat("duration", in.DurationMinutes); err != nil {
		return model.WorkoutLogEntry{}, err
	}
	if ex.Type == model.ExerciseReps && in.Sets == 0 {
		in.Sets = 1
	}
	if in.At.IsZero() {
		in.At = time.Now()
	}
	if strings.TrimSpace(in.ID) == "" {
		in.ID = newID()
	}
	entry, err := workout.NewLogEntry(in.ID, ex, workout.Params{Reps: in.Reps, Sets: in.Sets, DurationMinutes: in.DurationMinutes}, BodyWeight(profile), in.At)
	if err != nil {
		return model.WorkoutLogEntry{}, err
	}
	if err := UpsertWorkoutLog(db, profile.ID, entry); err != nil {
		return model.WorkoutLogEntry{}, err
	}
	return entry, nil
}

// UpsertWorkoutLog stores e, replacing the profile's entry with the same id.
// An id owned by another profile fails with ErrConflict.
func UpsertWorkoutLog(db execer, profileID string, e model.WorkoutLogEntry) error {
	if err := workout.ValidateEntry(e); err != nil {
		return err
	}
	res, err := db.Exec(`
INSERT INTO workout_logs(id, profile_id, exercise_id, name, type, category, reps, sets, duration_min, calories_burned, performed_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  exercise_id=excluded.exercise_id,
  name=excluded.name,
  type=excluded.type,
  category=excluded.category,
  reps=excluded.reps,
  sets=excluded.sets,
  duration_min=excluded.duration_min,
  calories_burned=excluded.calories_burned,
  performed_at=excluded.performed_at,
  updated_at=excluded.updated_at
WHERE workout_logs.profile_id = excluded.profile_id
`, e.ID, profileID, e.ExerciseID, e.Name, string(e.Type), e.Category, e.Reps, e.Sets, e.Duration, e.CaloriesBurned, formatTime(e.Timestamp))
	if err != nil {
		return fmt.Errorf("upsert workout log %q: %w", e.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for workout log %q: %w", e.ID, err)
	}
	if affected == 0 {
		// the id exists under another profile
		return fmt.Errorf("workout log %q: %w", e.ID, ErrConflict)
	}
	return nil
}

// DeleteWorkoutLog removes an entry. Deleting an absent id is not an error.
func DeleteWorkoutLog(db execer, profileID, id string) error {
	id, err := requireID("workout log", id)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`DELETE FROM workout_logs WHERE id = ? AND profile_id = ?`, id, profileID); err != nil {
		return fmt.Errorf("delete workout log %q: %w", id, err)
	}
	return nil
}

func ListWorkoutLogs(db *sql.DB, f WorkoutLogFilter) ([]model.WorkoutLogEntry, error) {
	query := `
SELECT id, exercise_id, name, type, category, reps, sets, duration_min, calories_burned, performed_at
FROM workout_logs
WHERE profile_id = ?`
	args := []any{f.ProfileID}

	if strings.TrimSpace(f.Date) != "" {
		start, end, err := dayBounds(f.Date)
		if err != nil {
			return nil, err
		}
		query += ` AND performed_at >= ? AND performed_at < ?`
		args = append(args, start, end)
	}
	if strings.TrimSpace(f.FromDate) != "" || strings.TrimSpace(f.ToDate) != "" {
		from := f.FromDate
		if strings.TrimSpace(from) == "" {
			from = "1970-01-01"
		}
		start, end, err := rangeBounds(from, f.ToDate)
		if err != nil {
			return nil, err
		}
		query += ` AND performed_at >= ? AND performed_at < ?`
		args = append(args, start, end)
	}
	query += ` ORDER BY performed_at ASC, id ASC`
	if f.Limit == 0 {
		f.Limit = 200
	}
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workout logs: %w", err)
	}
	defer rows.Close()

	out := make([]model.WorkoutLogEntry, 0)
	for rows.Next() {
		var e model.WorkoutLogEntry
		var kind, performedAt string
		var reps, sets sql.NullInt64
		var duration sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.ExerciseID, &e.Name, &kind, &e.Category, &reps, &sets, &duration, &e.CaloriesBurned, &performedAt); err != nil {
			return nil, fmt.Errorf("scan workout log: %w", err)
		}
		e.Type = model.ExerciseType(kind)
		if reps.Valid {
			v := int(reps.Int64)
			e.Reps = &v
		}
		if sets.Valid {
			v := int(sets.Int64)
			e.Sets = &v
		}
		if duration.Valid {
			v := duration.Float64
			e.Duration = &v
		}
		if e.Timestamp, err = parseTime(performedAt); err != nil {
			return nil, fmt.Errorf("workout log %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout logs: %w", err)
	}
	return out, nil
}
