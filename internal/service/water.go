package service

import (
	"database/sql"
	"errors"
	"fmt"
)

// AddWater adds ml to the day's counter and returns the new total. A negative
// ml undoes intake but never takes the counter below zero.
func AddWater(db *sql.DB, profileID, date string, ml float64) (float64, error) {
	day, err := parseDay(date)
	if err != nil {
		return 0, err
	}
	current, err := WaterForDay(db, profileID, day.Format(dateLayout))
	if err != nil {
		return 0, err
	}
	next := current + ml
	if next < 0 {
		next = 0
	}
	if err := SetWater(db, profileID, day.Format(dateLayout), next); err != nil {
		return 0, err
	}
	return next, nil
}

func SetWater(db *sql.DB, profileID, date string, ml float64) error {
	profileID, err := requireID("profile", profileID)
	if err != nil {
		return err
	}
	day, err := parseDay(date)
	if err != nil {
		return err
	}
	if err := validateNonNegativeFloat("water", ml); err != nil {
		return err
	}
	_, err = db.Exec(`
INSERT INTO water_intake(profile_id, day, ml) VALUES(?, ?, ?)
ON CONFLICT(profile_id, day) DO UPDATE SET ml=excluded.ml
`, profileID, day.Format(dateLayout), ml)
	if err != nil {
		return fmt.Errorf("set water for %s: %w", day.Format(dateLayout), err)
	}
	return nil
}

func WaterForDay(db *sql.DB, profileID, date string) (float64, error) {
	day, err := parseDay(date)
	if err != nil {
		return 0, err
	}
	var ml float64
	err = db.QueryRow(`SELECT ml FROM water_intake WHERE profile_id = ? AND day = ?`, profileID, day.Format(dateLayout)).Scan(&ml)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get water for %s: %w", day.Format(dateLayout), err)
	}
	return ml, nil
}

// WaterByRange returns water per YYYY-MM-DD day for days that have a counter.
func WaterByRange(db *sql.DB, profileID, from, to string) (map[string]float64, error) {
	start, err := parseDay(from)
	if err != nil {
		return nil, err
	}
	end, err := parseDay(to)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT day, ml FROM water_intake WHERE profile_id = ? AND day >= ? AND day <= ?`,
		profileID, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list water: %w", err)
	}
	defer rows.Close()
	out := map[string]float64{}
	for rows.Next() {
		var day string
		var ml float64
		if err := rows.Scan(&day, &ml); err != nil {
			return nil, fmt.Errorf("scan water: %w", err)
		}
		out[day] = ml
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate water: %w", err)
	}
	return out, nil
}
