package service

import (
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/saadjs/fitfuel/internal/model"
)

var ErrEmailTaken = errors.New("email already registered")

// CreateUser stores a user with an already hashed password.
func CreateUser(db *sql.DB, email, passwordHash string, isAdmin bool) (model.User, error) {
	email = normalizeName(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, invalidf("invalid email %q", email)
	}
	if passwordHash == "" {
		return model.User{}, invalidf("password hash is required")
	}
	if _, err := FindUserByEmail(db, email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return model.User{}, err
	}
	id := newID()
	if _, err := db.Exec(`INSERT INTO users(id, email, password_hash, is_admin) VALUES(?, ?, ?, ?)`, id, email, passwordHash, isAdmin); err != nil {
		return model.User{}, wrapWrite(err, "insert user %q", email)
	}
	return GetUser(db, id)
}

func GetUser(db *sql.DB, id string) (model.User, error) {
	return getUserWhere(db, "id", strings.TrimSpace(id))
}

func FindUserByEmail(db *sql.DB, email string) (model.User, error) {
	return getUserWhere(db, "email", normalizeName(email))
}

func getUserWhere(db *sql.DB, column, value string) (model.User, error) {
	var u model.User
	var created string
	err := db.QueryRow(`SELECT id, email, password_hash, is_admin, created_at FROM users WHERE `+column+` = ?`, value).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %q: %w", value, ErrNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user %q: %w", value, err)
	}
	u.CreatedAt = parseDBTime(created)
	return u, nil
}
