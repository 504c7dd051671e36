package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/saadjs/fitfuel/internal/model"
)

// DefaultGoals apply to profiles that never saved goals.
var DefaultGoals = model.Goals{Calories: 2000, Protein: 150, Carbs: 250, Fats: 65, Water: 2000}

// SetGoals replaces the profile's goals wholesale.
func SetGoals(db *sql.DB, profileID string, g model.Goals) error {
	profileID, err := requireID("profile", profileID)
	if err != nil {
		return err
	}
	for _, f := range []struct {
		name  string
		value float64
	}{{"calories", g.Calories}, {"protein", g.Protein}, {"carbs", g.Carbs}, {"fats", g.Fats}, {"water", g.Water}} {
		if err := validateNonNegativeFloat(f.name, f.value); err != nil {
			return err
		}
	}

	_, err = db.Exec(`
INSERT INTO goals(profile_id, calories, protein, carbs, fats, water_ml, updated_at)
VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(profile_id) DO UPDATE SET
  calories=excluded.calories,
  protein=excluded.protein,
  carbs=excluded.carbs,
  fats=excluded.fats,
  water_ml=excluded.water_ml,
  updated_at=excluded.updated_at
`, profileID, g.Calories, g.Protein, g.Carbs, g.Fats, g.Water)
	if err != nil {
		return fmt.Errorf("set goals for profile %q: %w", profileID, err)
	}
	return nil
}

// GetGoals returns the saved goals and whether any were saved.
func GetGoals(db *sql.DB, profileID string) (model.Goals, bool, error) {
	var g model.Goals
	err := db.QueryRow(`SELECT calories, protein, carbs, fats, water_ml FROM goals WHERE profile_id = ?`, profileID).
		Scan(&g.Calories, &g.Protein, &g.Carbs, &g.Fats, &g.Water)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Goals{}, false, nil
	}
	if err != nil {
		return model.Goals{}, false, fmt.Errorf("get goals for profile %q: %w", profileID, err)
	}
	return g, true, nil
}

func GoalsOrDefault(db *sql.DB, profileID string) (model.Goals, error) {
	g, ok, err := GetGoals(db, profileID)
	if err != nil {
		return model.Goals{}, err
	}
	if !ok {
		return DefaultGoals, nil
	}
	return g, nil
}

func AdherenceWithin(actual float64, target float64, tolerance float64) bool {
	if target == 0 {
		return actual == 0
	}
	lower := target * (1 - tolerance)
	upper := target * (1 + tolerance)
	return actual >= lower && actual <= upper
}
