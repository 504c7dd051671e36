package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/saadjs/fitfuel/internal/model"
)

type MenuItemInput struct {
	RestaurantID string
	Name         string
	Description  string
	Price        float64
	Calories     float64
	Category     string
	Available    bool
}

func CreateRestaurant(db *sql.DB, name, cuisine string) (model.Restaurant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Restaurant{}, invalidf("restaurant name is required")
	}
	id := newID()
	if _, err := db.Exec(`INSERT INTO restaurants(id, name, cuisine) VALUES(?, ?, ?)`, id, name, normalizeName(cuisine)); err != nil {
		return model.Restaurant{}, wrapWrite(err, "insert restaurant %q", name)
	}
	return GetRestaurant(db, id)
}

// GetRestaurant looks a restaurant up by id or case-insensitive name.
func GetRestaurant(db *sql.DB, ref string) (model.Restaurant, error) {
	ref, err := requireID("restaurant", ref)
	if err != nil {
		return model.Restaurant{}, err
	}
	var r model.Restaurant
	var created string
	err = db.QueryRow(`
SELECT id, name, cuisine, created_at FROM restaurants
WHERE id = ? OR lower(name) = ?
ORDER BY CASE WHEN id = ? THEN 0 ELSE 1 END
LIMIT 1
`, ref, normalizeName(ref), ref).Scan(&r.ID, &r.Name, &r.Cuisine, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Restaurant{}, fmt.Errorf("restaurant %q: %w", ref, ErrNotFound)
	}
	if err != nil {
		return model.Restaurant{}, fmt.Errorf("get restaurant %q: %w", ref, err)
	}
	r.CreatedAt = parseDBTime(created)
	return r, nil
}

func ListRestaurants(db *sql.DB, cuisine string) ([]model.Restaurant, error) {
	query := `SELECT id, name, cuisine, created_at FROM restaurants`
	args := make([]any, 0)
	if c := normalizeName(cuisine); c != "" {
		query += ` WHERE cuisine = ?`
		args = append(args, c)
	}
	query += ` ORDER BY name ASC`
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()
	out := make([]model.Restaurant, 0)
	for rows.Next() {
		var r model.Restaurant
		var created string
		if err := rows.Scan(&r.ID, &r.Name, &r.Cuisine, &created); err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		r.CreatedAt = parseDBTime(created)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurants: %w", err)
	}
	return out, nil
}

func DeleteRestaurant(db *sql.DB, id string) error {
	id, err := requireID("restaurant", id)
	if err != nil {
		return err
	}
	res, err := db.Exec(`DELETE FROM restaurants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete restaurant %q: %w", id, err)
	}
	return mustAffect(res, "restaurant", id)
}

func AddMenuItem(db *sql.DB, in MenuItemInput) (model.MenuItem, error) {
	r, err := GetRestaurant(db, in.RestaurantID)
	if err != nil {
		return model.MenuItem{}, err
	}
	if err := validateMenuItem(&in); err != nil {
		return model.MenuItem{}, err
	}
	id := newID()
	_, err = db.Exec(`
INSERT INTO menu_items(id, restaurant_id, name, description, price, calories, category, available)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
`, id, r.ID, in.Name, in.Description, in.Price, in.Calories, in.Category, in.Available)
	if err != nil {
		return model.MenuItem{}, fmt.Errorf("insert menu item %q: %w", in.Name, err)
	}
	return GetMenuItem(db, id)
}

func UpdateMenuItem(db *sql.DB, id string, in MenuItemInput) (model.MenuItem, error) {
	id, err := requireID("menu item", id)
	if err != nil {
		return model.MenuItem{}, err
	}
	if err := validateMenuItem(&in); err != nil {
		return model.MenuItem{}, err
	}
	res, err := db.Exec(`
UPDATE menu_items SET name = ?, description = ?, price = ?, calories = ?, category = ?, available = ?
WHERE id = ?
`, in.Name, in.Description, in.Price, in.Calories, in.Category, in.Available, id)
	if err != nil {
		return model.MenuItem{}, fmt.Errorf("update menu item %q: %w", id, err)
	}
	if err := mustAffect(res, "menu item", id); err != nil {
		return model.MenuItem{}, err
	}
	return GetMenuItem(db, id)
}

func DeleteMenuItem(db *sql.DB, id string) error {
	id, err := requireID("menu item", id)
	if err != nil {
		return err
	}
	res, err := db.Exec(`DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete menu item %q: %w", id, err)
	}
	return mustAffect(res, "menu item", id)
}

func GetMenuItem(db *sql.DB, id string) (model.MenuItem, error) {
	id, err := requireID("menu item", id)
	if err != nil {
		return model.MenuItem{}, err
	}
	var m model.MenuItem
	err = db.QueryRow(`
SELECT id, restaurant_id, name, description, price, calories, category, available
FROM menu_items WHERE id = ?
`, id).Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price, &m.Calories, &m.Category, &m.Available)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MenuItem{}, fmt.Errorf("menu item %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.MenuItem{}, fmt.Errorf("get menu item %q: %w", id, err)
	}
	return m, nil
}

func ListMenu(db *sql.DB, restaurantID string, includeUnavailable bool) ([]model.MenuItem, error) {
	r, err := GetRestaurant(db, restaurantID)
	if err != nil {
		return nil, err
	}
	query := `
SELECT id, restaurant_id, name, description, price, calories, category, available
FROM menu_items WHERE restaurant_id = ?`
	if !includeUnavailable {
		query += ` AND available = 1`
	}
	query += ` ORDER BY category ASC, name ASC`
	rows, err := db.Query(query, r.ID)
	if err != nil {
		return nil, fmt.Errorf("list menu for %q: %w", r.Name, err)
	}
	defer rows.Close()
	out := make([]model.MenuItem, 0)
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price, &m.Calories, &m.Category, &m.Available); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", err)
	}
	return out, nil
}

func validateMenuItem(in *MenuItemInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalidf("menu item name is required")
	}
	in.Description = strings.TrimSpace(in.Description)
	in.Category = normalizeName(in.Category)
	if err := validateNonNegativeFloat("price", in.Price); err != nil {
		return err
	}
	return validateNonNegativeFloat("calories", in.Calories)
}
