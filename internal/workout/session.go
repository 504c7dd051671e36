package workout

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/saadjs/fitfuel/internal/model"
)

// Set is one planned set of a task. Reps is used by reps exercises,
// DurationMinutes by duration exercises.
type Set struct {
	Reps            int     `json:"reps,omitempty"`
	DurationMinutes float64 `json:"durationMinutes,omitempty"`
	Done            bool    `json:"done"`
}

// Task is one exercise inside a session. Its ID doubles as the id of the
// log entry it produces.
type Task struct {
	ID       string                   `json:"id"`
	Exercise model.ExerciseDefinition `json:"exercise"`
	Sets     []Set                    `json:"sets"`
}

func (t Task) CompletedSets() int {
	n := 0
	for _, s := range t.Sets {
		if s.Done {
			n++
		}
	}
	return n
}

// Burned recomputes the task burn from scratch over completed sets only.
func (t Task) Burned(bodyWeightKg float64) (float64, error) {
	total := 0.0
	for _, s := range t.Sets {
		if !s.Done {
			continue
		}
		kcal, err := Estimate(t.Exercise, Params{Reps: s.Reps, Sets: 1, DurationMinutes: s.DurationMinutes}, bodyWeightKg)
		if err != nil {
			return 0, err
		}
		total += kcal
	}
	return total, nil
}

type ChangeKind int

const (
	ChangeNone ChangeKind = iota
	ChangeUpsert
	ChangeDelete
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeUpsert:
		return "upsert"
	case ChangeDelete:
		return "delete"
	default:
		return "none"
	}
}

// Change is the log mutation produced by a toggle. Entry is set for upserts;
// EntryID is always the task id.
type Change struct {
	Kind    ChangeKind
	EntryID string
	Entry   model.WorkoutLogEntry
}

// Apply returns a new log with the change applied by id.
func (c Change) Apply(log []model.WorkoutLogEntry) []model.WorkoutLogEntry {
	out := make([]model.WorkoutLogEntry, 0, len(log)+1)
	replaced := false
	for _, e := range log {
		if e.ID != c.EntryID {
			out = append(out, e)
			continue
		}
		if c.Kind == ChangeUpsert && !replaced {
			out = append(out, c.Entry)
			replaced = true
		}
		if c.Kind == ChangeNone {
			out = append(out, e)
		}
	}
	if c.Kind == ChangeUpsert && !replaced {
		out = append(out, c.Entry)
	}
	return out
}

var (
	ErrUnknownTask   = errors.New("task not found")
	ErrSetOutOfRange = errors.New("set out of range")
)

type Session struct {
	BodyWeightKg float64
	Tasks        []Task
	Log          []model.WorkoutLogEntry
}

// Toggle flips completion of set index on the task and returns the new
// session. A task has exactly one log entry while at least one of its sets is
// done, and none otherwise.
func (s Session) Toggle(taskID string, index int, at time.Time) (Session, Change, error) {
	pos := -1
	for i, t := range s.Tasks {
		if t.ID == taskID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return s, Change{}, fmt.Errorf("task %q: %w", taskID, ErrUnknownTask)
	}
	task, change, err := ToggleTask(s.Tasks[pos], index, s.BodyWeightKg, at)
	if err != nil {
		return s, Change{}, err
	}

	next := Session{
		BodyWeightKg: s.BodyWeightKg,
		Tasks:        make([]Task, len(s.Tasks)),
	}
	copy(next.Tasks, s.Tasks)
	next.Tasks[pos] = task
	next.Log = change.Apply(s.Log)
	return next, change, nil
}

// ToggleTask is the single-task form of Session.Toggle. The returned task
// owns a fresh Sets slice.
func ToggleTask(task Task, index int, bodyWeightKg float64, at time.Time) (Task, Change, error) {
	if index < 0 || index >= len(task.Sets) {
		return task, Change{}, fmt.Errorf("set %d of task %q (%d sets): %w", index, task.ID, len(task.Sets), ErrSetOutOfRange)
	}
	sets := make([]Set, len(task.Sets))
	copy(sets, task.Sets)
	sets[index].Done = !sets[index].Done
	task.Sets = sets

	if task.CompletedSets() == 0 {
		return task, Change{Kind: ChangeDelete, EntryID: task.ID}, nil
	}
	entry, err := taskEntry(task, bodyWeightKg, at)
	if err != nil {
		return task, Change{}, err
	}
	return task, Change{Kind: ChangeUpsert, EntryID: task.ID, Entry: entry}, nil
}

func taskEntry(task Task, bodyWeightKg float64, at time.Time) (model.WorkoutLogEntry, error) {
	burned, err := task.Burned(bodyWeightKg)
	if err != nil {
		return model.WorkoutLogEntry{}, err
	}
	entry := model.WorkoutLogEntry{
		ID:             task.ID,
		ExerciseID:     task.Exercise.ID,
		Name:           task.Exercise.Name,
		Type:           task.Exercise.Type,
		Category:       task.Exercise.Category,
		CaloriesBurned: burned,
		Timestamp:      at,
	}
	done := task.CompletedSets()
	if task.Exercise.Type == model.ExerciseReps {
		totalReps := 0
		for _, s := range task.Sets {
			if s.Done {
				totalReps += s.Reps
			}
		}
		reps := int(math.Round(float64(totalReps) / float64(done)))
		entry.Reps = &reps
		entry.Sets = &done
		return entry, nil
	}
	minutes := 0.0
	for _, s := range task.Sets {
		if s.Done {
			minutes += s.DurationMinutes
		}
	}
	entry.Duration = &minutes
	return entry, nil
}
