package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/fitfuel/internal/ledger"
	"github.com/saadjs/fitfuel/internal/model"
)

type AddFoodInput struct {
	ProfileID string
	ID        string
	Name      string
	Calories  float64
	Protein   float64
	Carbs     float64
	Fats      float64
	Meal      string
	FoodID    string
	LoggedAt  time.Time
}

type FoodLogFilter struct {
	ProfileID string
	Date      string
	FromDate  string
	ToDate    string
	Meal      string
	Limit     int
}

// AddFoodLog validates the entry against the day's log and persists it.
func AddFoodLog(db *sql.DB, in AddFoodInput) (model.FoodLogEntry, error) {
	profileID, err := requireID("profile", in.ProfileID)
	if err != nil {
		return model.FoodLogEntry{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.FoodLogEntry{}, invalidf("food name is required")
	}
	meal, err := model.ParseMeal(in.Meal)
	if err != nil {
		return model.FoodLogEntry{}, invalidf("%v", err)
	}
	if in.LoggedAt.IsZero() {
		in.LoggedAt = time.Now()
	}
	if strings.TrimSpace(in.ID) == "" {
		in.ID = newID()
	}
	entry := model.FoodLogEntry{
		ID:       strings.TrimSpace(in.ID),
		Name:     in.Name,
		Calories: in.Calories,
		Protein:  in.Protein,
		Carbs:    in.Carbs,
		Fats:     in.Fats,
		Meal:     meal,
		FoodID:   strings.TrimSpace(in.FoodID),
		LoggedAt: in.LoggedAt,
	}

	day, err := ListFoodLogs(db, FoodLogFilter{ProfileID: profileID, Date: in.LoggedAt.Local().Format(dateLayout), Limit: -1})
	if err != nil {
		return model.FoodLogEntry{}, err
	}
	if _, err := ledger.AddFood(day, entry); err != nil {
		return model.FoodLogEntry{}, err
	}

	var foodID any
	if entry.FoodID != "" {
		foodID = entry.FoodID
	}
	_, err = db.Exec(`
INSERT INTO food_logs(id, profile_id, name, calories, protein, carbs, fats, meal, food_id, logged_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, entry.ID, profileID, entry.Name, entry.Calories, entry.Protein, entry.Carbs, entry.Fats, string(entry.Meal), foodID, formatTime(entry.LoggedAt))
	if err != nil {
		return model.FoodLogEntry{}, wrapWrite(err, "insert food log %q", entry.ID)
	}
	return entry, nil
}

// LogCatalogFood logs servings of a catalog food with nutrients scaled.
func LogCatalogFood(db *sql.DB, profileID, foodID string, servings float64, meal string, at time.Time) (model.FoodLogEntry, error) {
	if servings <= 0 {
		servings = 1
	}
	food, err := GetFood(db, foodID)
	if err != nil {
		return model.FoodLogEntry{}, err
	}
	name := food.Name
	if servings != 1 {
		name = fmt.Sprintf("%s x%g", food.Name, servings)
	}
	return AddFoodLog(db, AddFoodInput{
		ProfileID: profileID,
		Name:      name,
		Calories:  food.Calories * servings,
		Protein:   food.Protein * servings,
		Carbs:     food.Carbs * servings,
		Fats:      food.Fats * servings,
		Meal:      meal,
		FoodID:    food.ID,
		LoggedAt:  at,
	})
}

// RemoveFoodLog deletes an entry. Removing an absent id is not an error.
func RemoveFoodLog(db *sql.DB, profileID, id string) error {
	id, err := requireID("food log", id)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`DELETE FROM food_logs WHERE id = ? AND profile_id = ?`, id, profileID); err != nil {
		return fmt.Errorf("delete food log %q: %w", id, err)
	}
	return nil
}

// ListFoodLogs returns entries oldest first. A negative Limit disables the
// default cap.
func ListFoodLogs(db *sql.DB, f FoodLogFilter) ([]model.FoodLogEntry, error) {
	query := `
SELECT id, name, calories, protein, carbs, fats, meal, IFNULL(food_id, ''), logged_at
FROM food_logs
WHERE profile_id = ?`
	args := []any{f.ProfileID}

	if strings.TrimSpace(f.Date) != "" {
		start, end, err := dayBounds(f.Date)
		if err != nil {
			return nil, err
		}
		query += ` AND logged_at >= ? AND logged_at < ?`
		args = append(args, start, end)
	}
	if strings.TrimSpace(f.FromDate) != "" || strings.TrimSpace(f.ToDate) != "" {
		from, to := f.FromDate, f.ToDate
		if strings.TrimSpace(from) == "" {
			from = "1970-01-01"
		}
		start, end, err := rangeBounds(from, to)
		if err != nil {
			return nil, err
		}
		query += ` AND logged_at >= ? AND logged_at < ?`
		args = append(args, start, end)
	}
	if strings.TrimSpace(f.Meal) != "" {
		meal, err := model.ParseMeal(f.Meal)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		query += ` AND meal = ?`
		args = append(args, string(meal))
	}
	query += ` ORDER BY logged_at ASC, created_at ASC`
	if f.Limit == 0 {
		f.Limit = 200
	}
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list food logs: %w", err)
	}
	defer rows.Close()

	out := make([]model.FoodLogEntry, 0)
	for rows.Next() {
		var e model.FoodLogEntry
		var meal, loggedAt string
		if err := rows.Scan(&e.ID, &e.Name, &e.Calories, &e.Protein, &e.Carbs, &e.Fats, &meal, &e.FoodID, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan food log: %w", err)
		}
		e.Meal = model.Meal(meal)
		if e.LoggedAt, err = parseTime(loggedAt); err != nil {
			return nil, fmt.Errorf("food log %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food logs: %w", err)
	}
	return out, nil
}
