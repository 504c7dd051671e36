package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/saadjs/fitfuel/internal/model"
)

type FoodInput struct {
	Name        string
	Brand       string
	Category    string
	ServingSize string
	Calories    float64
	Protein     float64
	Carbs       float64
	Fats        float64
	Barcode     string
	Source      string
}

type FoodFilter struct {
	Query    string
	Category string
	Limit    int
}

const foodColumns = `id, name, brand, category, serving_size, calories, protein, carbs, fats, IFNULL(barcode, ''), source, created_at, updated_at`

func CreateFood(db *sql.DB, in FoodInput) (model.FoodItem, error) {
	if err := validateFoodInput(&in); err != nil {
		return model.FoodItem{}, err
	}
	id := newID()
	_, err := db.Exec(`
INSERT INTO foods(id, name, name_norm, brand, category, serving_size, calories, protein, carbs, fats, barcode, source)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, in.Name, normalizeName(in.Name), in.Brand, in.Category, in.ServingSize, in.Calories, in.Protein, in.Carbs, in.Fats, nullIfEmpty(in.Barcode), in.Source)
	if err != nil {
		return model.FoodItem{}, wrapWrite(err, "insert food %q", in.Name)
	}
	return GetFood(db, id)
}

func UpdateFood(db *sql.DB, id string, in FoodInput) (model.FoodItem, error) {
	id, err := requireID("food", id)
	if err != nil {
		return model.FoodItem{}, err
	}
	if err := validateFoodInput(&in); err != nil {
		return model.FoodItem{}, err
	}
	res, err := db.Exec(`
UPDATE foods
SET name = ?, name_norm = ?, brand = ?, category = ?, serving_size = ?, calories = ?, protein = ?, carbs = ?, fats = ?, barcode = ?, source = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, in.Name, normalizeName(in.Name), in.Brand, in.Category, in.ServingSize, in.Calories, in.Protein, in.Carbs, in.Fats, nullIfEmpty(in.Barcode), in.Source, id)
	if err != nil {
		return model.FoodItem{}, fmt.Errorf("update food %q: %w", id, err)
	}
	if err := mustAffect(res, "food", id); err != nil {
		return model.FoodItem{}, err
	}
	return GetFood(db, id)
}

func DeleteFood(db *sql.DB, id string) error {
	id, err := requireID("food", id)
	if err != nil {
		return err
	}
	res, err := db.Exec(`DELETE FROM foods WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete food %q: %w", id, err)
	}
	return mustAffect(res, "food", id)
}

func GetFood(db *sql.DB, id string) (model.FoodItem, error) {
	id, err := requireID("food", id)
	if err != nil {
		return model.FoodItem{}, err
	}
	f, err := scanFood(db.QueryRow(`SELECT `+foodColumns+` FROM foods WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.FoodItem{}, fmt.Errorf("food %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.FoodItem{}, fmt.Errorf("get food %q: %w", id, err)
	}
	return f, nil
}

// FoodByBarcode returns the catalog food for barcode and whether it exists.
func FoodByBarcode(db *sql.DB, barcode string) (model.FoodItem, bool, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return model.FoodItem{}, false, invalidf("barcode is required")
	}
	f, err := scanFood(db.QueryRow(`SELECT `+foodColumns+` FROM foods WHERE barcode = ?`, barcode))
	if errors.Is(err, sql.ErrNoRows) {
		return model.FoodItem{}, false, nil
	}
	if err != nil {
		return model.FoodItem{}, false, fmt.Errorf("lookup food barcode %q: %w", barcode, err)
	}
	return f, true, nil
}

// SearchFoods matches names by substring, exact and prefix matches first.
func SearchFoods(db *sql.DB, f FoodFilter) ([]model.FoodItem, error) {
	query := `SELECT ` + foodColumns + ` FROM foods WHERE 1=1`
	args := make([]any, 0)
	q := normalizeName(f.Query)
	if q != "" {
		query += ` AND (name_norm LIKE ? OR lower(brand) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if c := normalizeName(f.Category); c != "" {
		query += ` AND lower(category) = ?`
		args = append(args, c)
	}
	query += ` ORDER BY CASE WHEN name_norm = ? THEN 0 WHEN name_norm LIKE ? THEN 1 ELSE 2 END, name_norm ASC`
	args = append(args, q, q+"%")
	if f.Limit <= 0 {
		f.Limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, f.Limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search foods: %w", err)
	}
	defer rows.Close()
	out := make([]model.FoodItem, 0)
	for rows.Next() {
		item, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foods: %w", err)
	}
	return out, nil
}

func FoodCategories(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT category FROM foods WHERE category <> '' ORDER BY category ASC`)
	if err != nil {
		return nil, fmt.Errorf("list food categories: %w", err)
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan food category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food categories: %w", err)
	}
	return out, nil
}

func validateFoodInput(in *FoodInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalidf("food name is required")
	}
	in.Brand = strings.TrimSpace(in.Brand)
	in.Category = normalizeName(in.Category)
	in.ServingSize = strings.TrimSpace(in.ServingSize)
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.Source = normalizeName(in.Source)
	if in.Source == "" {
		in.Source = "manual"
	}
	for _, f := range []struct {
		name  string
		value float64
	}{{"calories", in.Calories}, {"protein", in.Protein}, {"carbs", in.Carbs}, {"fats", in.Fats}} {
		if err := validateNonNegativeFloat(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func scanFood(row rowScanner) (model.FoodItem, error) {
	var f model.FoodItem
	var created, updated string
	if err := row.Scan(&f.ID, &f.Name, &f.Brand, &f.Category, &f.ServingSize, &f.Calories, &f.Protein, &f.Carbs, &f.Fats, &f.Barcode, &f.Source, &created, &updated); err != nil {
		return model.FoodItem{}, err
	}
	f.CreatedAt = parseDBTime(created)
	f.UpdatedAt = parseDBTime(updated)
	return f, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
