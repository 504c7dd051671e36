package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/workout"
)

type ExerciseInput struct {
	ID             string
	Name           string
	Type           string
	Category       string
	CaloriesPerRep *float64
	MET            *float64
}

type ExerciseFilter struct {
	Query    string
	Category string
	Type     string
}

func CreateExercise(db *sql.DB, in ExerciseInput) (model.ExerciseDefinition, error) {
	ex, err := exerciseFromInput(in)
	if err != nil {
		return model.ExerciseDefinition{}, err
	}
	if ex.ID == "" {
		ex.ID = slug(ex.Name)
	}
	_, err = db.Exec(`
INSERT INTO exercises(id, name, type, category, calories_per_rep, met)
VALUES(?, ?, ?, ?, ?, ?)
`, ex.ID, ex.Name, string(ex.Type), ex.Category, ex.CaloriesPerRep, ex.MET)
	if err != nil {
		return model.ExerciseDefinition{}, wrapWrite(err, "insert exercise %q", ex.Name)
	}
	return ex, nil
}

func UpdateExercise(db *sql.DB, id string, in ExerciseInput) (model.ExerciseDefinition, error) {
	id, err := requireID("exercise", id)
	if err != nil {
		return model.ExerciseDefinition{}, err
	}
	ex, err := exerciseFromInput(in)
	if err != nil {
		return model.ExerciseDefinition{}, err
	}
	ex.ID = id
	res, err := db.Exec(`
UPDATE exercises
SET name = ?, type = ?, category = ?, calories_per_rep = ?, met = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, ex.Name, string(ex.Type), ex.Category, ex.CaloriesPerRep, ex.MET, id)
	if err != nil {
		return model.ExerciseDefinition{}, fmt.Errorf("update exercise %q: %w", id, err)
	}
	if err := mustAffect(res, "exercise", id); err != nil {
		return model.ExerciseDefinition{}, err
	}
	return ex, nil
}

func DeleteExercise(db *sql.DB, id string) error {
	id, err := requireID("exercise", id)
	if err != nil {
		return err
	}
	res, err := db.Exec(`DELETE FROM exercises WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete exercise %q: %w", id, err)
	}
	return mustAffect(res, "exercise", id)
}

// GetExercise looks an exercise up by id or case-insensitive name.
func GetExercise(db *sql.DB, ref string) (model.ExerciseDefinition, error) {
	ref, err := requireID("exercise", ref)
	if err != nil {
		return model.ExerciseDefinition{}, err
	}
	ex, err := scanExercise(db.QueryRow(`
SELECT id, name, type, category, calories_per_rep, met FROM exercises
WHERE id = ? OR lower(name) = ?
ORDER BY CASE WHEN id = ? THEN 0 ELSE 1 END
LIMIT 1
`, ref, normalizeName(ref), ref))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ExerciseDefinition{}, fmt.Errorf("exercise %q: %w", ref, ErrNotFound)
	}
	if err != nil {
		return model.ExerciseDefinition{}, fmt.Errorf("get exercise %q: %w", ref, err)
	}
	return ex, nil
}

func ListExercises(db *sql.DB, f ExerciseFilter) ([]model.ExerciseDefinition, error) {
	query := `SELECT id, name, type, category, calories_per_rep, met FROM exercises WHERE 1=1`
	args := make([]any, 0)
	if q := normalizeName(f.Query); q != "" {
		query += ` AND lower(name) LIKE ?`
		args = append(args, "%"+q+"%")
	}
	if c := normalizeName(f.Category); c != "" {
		query += ` AND lower(category) = ?`
		args = append(args, c)
	}
	if t := normalizeName(f.Type); t != "" {
		query += ` AND type = ?`
		args = append(args, t)
	}
	query += ` ORDER BY name ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()
	out := make([]model.ExerciseDefinition, 0)
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	return out, nil
}

func exerciseFromInput(in ExerciseInput) (model.ExerciseDefinition, error) {
	ex := model.ExerciseDefinition{
		ID:             strings.TrimSpace(in.ID),
		Name:           strings.TrimSpace(in.Name),
		Type:           model.ExerciseType(normalizeName(in.Type)),
		Category:       normalizeName(in.Category),
		CaloriesPerRep: in.CaloriesPerRep,
		MET:            in.MET,
	}
	if ex.Name == "" {
		return ex, invalidf("exercise name is required")
	}
	switch ex.Type {
	case model.ExerciseReps:
		if ex.MET != nil {
			return ex, invalidf("met applies only to duration exercises")
		}
		if ex.CaloriesPerRep != nil {
			if err := validateNonNegativeFloat("calories per rep", *ex.CaloriesPerRep); err != nil {
				return ex, err
			}
		}
	case model.ExerciseDuration:
		if ex.CaloriesPerRep != nil {
			return ex, invalidf("calories per rep applies only to reps exercises")
		}
		if ex.MET != nil {
			if err := validateNonNegativeFloat("met", *ex.MET); err != nil {
				return ex, err
			}
		}
	default:
		return ex, &workout.InvalidExerciseError{Type: ex.Type}
	}
	return ex, nil
}

func scanExercise(row rowScanner) (model.ExerciseDefinition, error) {
	var ex model.ExerciseDefinition
	var kind string
	var perRep, met sql.NullFloat64
	if err := row.Scan(&ex.ID, &ex.Name, &kind, &ex.Category, &perRep, &met); err != nil {
		return model.ExerciseDefinition{}, err
	}
	ex.Type = model.ExerciseType(kind)
	if perRep.Valid {
		v := perRep.Float64
		ex.CaloriesPerRep = &v
	}
	if met.Valid {
		v := met.Float64
		ex.MET = &v
	}
	return ex, nil
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
