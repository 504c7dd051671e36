package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/fitfuel/internal/logger"
	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/workout"
)

type StartTaskInput struct {
	ProfileID  string
	ExerciseID string
	Date       string
	Sets       []workout.Set
}

// StartSessionTask plans a task of not-yet-completed sets for a day.
func StartSessionTask(db *sql.DB, in StartTaskInput) (workout.Task, error) {
	profile, err := GetProfile(db, in.ProfileID)
	if err != nil {
		return workout.Task{}, err
	}
	ex, err := GetExercise(db, in.ExerciseID)
	if err != nil {
		return workout.Task{}, err
	}
	day, err := parseDay(in.Date)
	if err != nil {
		return workout.Task{}, err
	}
	if len(in.Sets) == 0 {
		return workout.Task{}, invalidf("at least one set is required")
	}
	for i, s := range in.Sets {
		switch ex.Type {
		case model.ExerciseReps:
			if s.Reps <= 0 {
				return workout.Task{}, invalidf("set %d: reps must be > 0", i+1)
			}
		case model.ExerciseDuration:
			if s.DurationMinutes <= 0 {
				return workout.Task{}, invalidf("set %d: duration must be > 0", i+1)
			}
		}
	}

	task := workout.Task{ID: newID(), Exercise: ex, Sets: make([]workout.Set, len(in.Sets))}
	tx, err := db.Begin()
	if err != nil {
		return workout.Task{}, fmt.Errorf("begin session task tx: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO session_tasks(id, profile_id, exercise_id, day) VALUES(?, ?, ?, ?)`,
		task.ID, profile.ID, ex.ID, day.Format(dateLayout)); err != nil {
		_ = tx.Rollback()
		return workout.Task{}, fmt.Errorf("insert session task: %w", err)
	}
	for i, s := range in.Sets {
		task.Sets[i] = workout.Set{Reps: s.Reps, DurationMinutes: s.DurationMinutes}
		if _, err := tx.Exec(`INSERT INTO session_sets(task_id, position, reps, duration_min, done) VALUES(?, ?, ?, ?, 0)`,
			task.ID, i, s.Reps, s.DurationMinutes); err != nil {
			_ = tx.Rollback()
			return workout.Task{}, fmt.Errorf("insert session set %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return workout.Task{}, fmt.Errorf("commit session task: %w", err)
	}
	return task, nil
}

// LoadSession reads a day's planned tasks together with the day's workout log.
func LoadSession(db *sql.DB, profileID, date string) (workout.Session, error) {
	profile, err := GetProfile(db, profileID)
	if err != nil {
		return workout.Session{}, err
	}
	day, err := parseDay(date)
	if err != nil {
		return workout.Session{}, err
	}
	rows, err := db.Query(`
SELECT t.id, e.id, e.name, e.type, e.category, e.calories_per_rep, e.met, s.reps, s.duration_min, s.done
FROM session_tasks t
JOIN exercises e ON e.id = t.exercise_id
JOIN session_sets s ON s.task_id = t.id
WHERE t.profile_id = ? AND t.day = ?
ORDER BY t.created_at ASC, t.id ASC, s.position ASC
`, profile.ID, day.Format(dateLayout))
	if err != nil {
		return workout.Session{}, fmt.Errorf("load session tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]workout.Task, 0)
	for rows.Next() {
		var taskID, kind string
		var ex model.ExerciseDefinition
		var perRep, met sql.NullFloat64
		var set workout.Set
		if err := rows.Scan(&taskID, &ex.ID, &ex.Name, &kind, &ex.Category, &perRep, &met, &set.Reps, &set.DurationMinutes, &set.Done); err != nil {
			return workout.Session{}, fmt.Errorf("scan session set: %w", err)
		}
		if n := len(tasks); n == 0 || tasks[n-1].ID != taskID {
			ex.Type = model.ExerciseType(kind)
			if perRep.Valid {
				v := perRep.Float64
				ex.CaloriesPerRep = &v
			}
			if met.Valid {
				v := met.Float64
				ex.MET = &v
			}
			tasks = append(tasks, workout.Task{ID: taskID, Exercise: ex})
		}
		last := &tasks[len(tasks)-1]
		last.Sets = append(last.Sets, set)
	}
	if err := rows.Err(); err != nil {
		return workout.Session{}, fmt.Errorf("iterate session sets: %w", err)
	}
	if err := rows.Close(); err != nil {
		return workout.Session{}, fmt.Errorf("close session rows: %w", err)
	}

	log, err := ListWorkoutLogs(db, WorkoutLogFilter{ProfileID: profile.ID, Date: day.Format(dateLayout), Limit: -1})
	if err != nil {
		return workout.Session{}, err
	}
	return workout.Session{BodyWeightKg: BodyWeight(profile), Tasks: tasks, Log: log}, nil
}

// ToggleSessionSet flips one set and applies the resulting log change in the
// same transaction as the set update.
func ToggleSessionSet(db *sql.DB, profileID, date, taskID string, index int, at time.Time) (workout.Session, workout.Change, error) {
	sess, err := LoadSession(db, profileID, date)
	if err != nil {
		return workout.Session{}, workout.Change{}, err
	}
	day, err := parseDay(date)
	if err != nil {
		return workout.Session{}, workout.Change{}, err
	}
	if at.IsZero() {
		at = time.Now()
	}
	if at.Local().Format(dateLayout) != day.Format(dateLayout) {
		// keep the entry on the session's day
		at = day.Add(12 * time.Hour)
	}
	next, change, err := sess.Toggle(taskID, index, at)
	if err != nil {
		return workout.Session{}, workout.Change{}, err
	}
	var done bool
	for _, t := range next.Tasks {
		if t.ID == taskID {
			done = t.Sets[index].Done
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return workout.Session{}, workout.Change{}, fmt.Errorf("begin toggle tx: %w", err)
	}
	if _, err := tx.Exec(`UPDATE session_sets SET done = ? WHERE task_id = ? AND position = ?`, done, taskID, index); err != nil {
		_ = tx.Rollback()
		return workout.Session{}, workout.Change{}, fmt.Errorf("update session set: %w", err)
	}
	if err := applyChange(tx, profileID, change); err != nil {
		_ = tx.Rollback()
		return workout.Session{}, workout.Change{}, err
	}
	if err := tx.Commit(); err != nil {
		return workout.Session{}, workout.Change{}, fmt.Errorf("commit toggle: %w", err)
	}
	logger.Debug("toggled session set", "task_id", taskID, "set", index, "done", done, "change", change.Kind.String())
	return next, change, nil
}

// DeleteSessionTask removes a planned task and the log entry it produced.
func DeleteSessionTask(db *sql.DB, profileID, taskID string) error {
	taskID, err := requireID("session task", taskID)
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete task tx: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM session_tasks WHERE id = ? AND profile_id = ?`, taskID, profileID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete session task %q: %w", taskID, err)
	}
	if err := mustAffect(res, "session task", taskID); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := DeleteWorkoutLog(tx, profileID, taskID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func applyChange(tx execer, profileID string, c workout.Change) error {
	switch c.Kind {
	case workout.ChangeUpsert:
		return UpsertWorkoutLog(tx, profileID, c.Entry)
	case workout.ChangeDelete:
		return DeleteWorkoutLog(tx, profileID, c.EntryID)
	default:
		return nil
	}
}
