package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/saadjs/fitfuel/internal/model"
)

// LocalUserID owns the profiles created by the CLI.
const LocalUserID = "local"

const DefaultProfileName = "me"

type CreateProfileInput struct {
	UserID   string
	Name     string
	WeightKg *float64
}

type UpdateProfileInput struct {
	ID          string
	Name        string
	WeightKg    *float64
	ClearWeight bool
}

func CreateProfile(db *sql.DB, in CreateProfileInput) (model.Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.Profile{}, invalidf("profile name is required")
	}
	if strings.TrimSpace(in.UserID) == "" {
		in.UserID = LocalUserID
	}
	if err := validateWeight(in.WeightKg); err != nil {
		return model.Profile{}, err
	}
	id := newID()
	if _, err := db.Exec(`INSERT INTO profiles(id, user_id, name, weight_kg) VALUES(?, ?, ?, ?)`, id, in.UserID, in.Name, in.WeightKg); err != nil {
		return model.Profile{}, wrapWrite(err, "insert profile %q", in.Name)
	}
	return GetProfile(db, id)
}

func GetProfile(db *sql.DB, id string) (model.Profile, error) {
	id, err := requireID("profile", id)
	if err != nil {
		return model.Profile{}, err
	}
	p, err := scanProfile(db.QueryRow(`SELECT id, user_id, name, weight_kg, created_at FROM profiles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, fmt.Errorf("profile %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("get profile %q: %w", id, err)
	}
	return p, nil
}

func ListProfiles(db *sql.DB, userID string) ([]model.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		userID = LocalUserID
	}
	rows, err := db.Query(`SELECT id, user_id, name, weight_kg, created_at FROM profiles WHERE user_id = ? ORDER BY created_at ASC, name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()
	out := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return out, nil
}

func UpdateProfile(db *sql.DB, in UpdateProfileInput) (model.Profile, error) {
	current, err := GetProfile(db, in.ID)
	if err != nil {
		return model.Profile{}, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		current.Name = name
	}
	if in.WeightKg != nil {
		if err := validateWeight(in.WeightKg); err != nil {
			return model.Profile{}, err
		}
		current.WeightKg = in.WeightKg
	}
	if in.ClearWeight {
		current.WeightKg = nil
	}
	if _, err := db.Exec(`UPDATE profiles SET name = ?, weight_kg = ? WHERE id = ?`, current.Name, current.WeightKg, current.ID); err != nil {
		return model.Profile{}, fmt.Errorf("update profile %q: %w", current.ID, err)
	}
	return current, nil
}

func DeleteProfile(db *sql.DB, id string) error {
	id, err := requireID("profile", id)
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete profile tx: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete profile %q: %w", id, err)
	}
	if err := mustAffect(res, "profile", id); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`DELETE FROM app_config WHERE key = ? AND value = ?`, ConfigActiveProfile, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear active profile: %w", err)
	}
	return tx.Commit()
}

// ResolveProfile finds a profile of userID by id or by case-insensitive name.
func ResolveProfile(db *sql.DB, userID, ref string) (model.Profile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Profile{}, invalidf("profile id or name is required")
	}
	if strings.TrimSpace(userID) == "" {
		userID = LocalUserID
	}
	p, err := scanProfile(db.QueryRow(`
SELECT id, user_id, name, weight_kg, created_at FROM profiles
WHERE user_id = ? AND (id = ? OR lower(name) = ?)
ORDER BY CASE WHEN id = ? THEN 0 ELSE 1 END
LIMIT 1
`, userID, ref, normalizeName(ref), ref))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, fmt.Errorf("profile %q: %w", ref, ErrNotFound)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("resolve profile %q: %w", ref, err)
	}
	return p, nil
}

func SetActiveProfile(db *sql.DB, ref string) (model.Profile, error) {
	p, err := ResolveProfile(db, LocalUserID, ref)
	if err != nil {
		return model.Profile{}, err
	}
	if err := SetConfig(db, ConfigActiveProfile, p.ID); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// ActiveProfile returns the CLI's active profile, creating the default
// profile on first use.
func ActiveProfile(db *sql.DB) (model.Profile, error) {
	id, ok, err := GetConfig(db, ConfigActiveProfile)
	if err != nil {
		return model.Profile{}, err
	}
	if ok {
		p, err := GetProfile(db, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return model.Profile{}, err
		}
	}
	return EnsureDefaultProfile(db)
}

func EnsureDefaultProfile(db *sql.DB) (model.Profile, error) {
	p, err := ResolveProfile(db, LocalUserID, DefaultProfileName)
	if errors.Is(err, ErrNotFound) {
		p, err = CreateProfile(db, CreateProfileInput{UserID: LocalUserID, Name: DefaultProfileName})
	}
	if err != nil {
		return model.Profile{}, err
	}
	if err := SetConfig(db, ConfigActiveProfile, p.ID); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// BodyWeight returns the recorded weight, or 0 to let the calculator apply
// its default.
func BodyWeight(p model.Profile) float64 {
	if p.WeightKg == nil {
		return 0
	}
	return *p.WeightKg
}

func validateWeight(w *float64) error {
	if w == nil {
		return nil
	}
	if *w <= 0 {
		return invalidf("weight must be > 0")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (model.Profile, error) {
	var p model.Profile
	var weight sql.NullFloat64
	var created string
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &weight, &created); err != nil {
		return model.Profile{}, err
	}
	if weight.Valid {
		w := weight.Float64
		p.WeightKg = &w
	}
	p.CreatedAt = parseDBTime(created)
	return p, nil
}
