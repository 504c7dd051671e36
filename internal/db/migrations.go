package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  is_admin INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  weight_kg REAL CHECK(weight_kg > 0),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(user_id, name)
);

CREATE TABLE IF NOT EXISTS goals (
  profile_id TEXT PRIMARY KEY,
  calories REAL NOT NULL CHECK(calories >= 0),
  protein REAL NOT NULL CHECK(protein >= 0),
  carbs REAL NOT NULL CHECK(carbs >= 0),
  fats REAL NOT NULL CHECK(fats >= 0),
  water_ml REAL NOT NULL CHECK(water_ml >= 0),
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS water_intake (
  profile_id TEXT NOT NULL,
  day TEXT NOT NULL,
  ml REAL NOT NULL CHECK(ml >= 0),
  PRIMARY KEY(profile_id, day),
  FOREIGN KEY(profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS food_logs (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  name TEXT NOT NULL,
  calories REAL NOT NULL CHECK(calories >= 0),
  protein REAL NOT NULL CHECK(protein >= 0),
  carbs REAL NOT NULL CHECK(carbs >= 0),
  fats REAL NOT NULL CHECK(fats >= 0),
  meal TEXT NOT NULL CHECK(meal IN ('breakfast', 'lunch', 'dinner', 'snack')),
  food_id TEXT,
  logged_at DATETIME NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_food_logs_profile_logged_at ON food_logs(profile_id, logged_at);

CREATE TABLE IF NOT EXISTS workout_logs (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  exercise_id TEXT NOT NULL,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  reps INTEGER,
  sets INTEGER,
  duration_min REAL,
  calories_burned REAL NOT NULL CHECK(calories_burned >= 0),
  performed_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  CHECK(
    (type = 'reps' AND reps IS NOT NULL AND sets IS NOT NULL AND duration_min IS NULL) OR
    (type = 'duration' AND duration_min IS NOT NULL AND reps IS NULL AND sets IS NULL)
  ),
  FOREIGN KEY(profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_workout_logs_profile_performed_at ON workout_logs(profile_id, performed_at);

CREATE TABLE IF NOT EXISTS exercises (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  type TEXT NOT NULL CHECK(type IN ('reps', 'duration')),
  category TEXT NOT NULL DEFAULT '',
  calories_per_rep REAL CHECK(calories_per_rep >= 0),
  met REAL CHECK(met >= 0),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS foods (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  name_norm TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  serving_size TEXT NOT NULL DEFAULT '',
  calories REAL NOT NULL CHECK(calories >= 0),
  protein REAL NOT NULL CHECK(protein >= 0),
  carbs REAL NOT NULL CHECK(carbs >= 0),
  fats REAL NOT NULL CHECK(fats >= 0),
  barcode TEXT,
  source TEXT NOT NULL DEFAULT 'manual',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_foods_name_norm ON foods(name_norm);
CREATE UNIQUE INDEX IF NOT EXISTS idx_foods_barcode ON foods(barcode) WHERE barcode IS NOT NULL;

CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		version: 2,
		name:    "ordering",
		sql: `
CREATE TABLE IF NOT EXISTS restaurants (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  cuisine TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS menu_items (
  id TEXT PRIMARY KEY,
  restaurant_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price REAL NOT NULL CHECK(price >= 0),
  calories REAL NOT NULL DEFAULT 0 CHECK(calories >= 0),
  category TEXT NOT NULL DEFAULT '',
  available INTEGER NOT NULL DEFAULT 1,
  FOREIGN KEY(restaurant_id) REFERENCES restaurants(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_menu_items_restaurant_id ON menu_items(restaurant_id);

CREATE TABLE IF NOT EXISTS client_storage (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  cart_key TEXT NOT NULL,
  gateway_order_id TEXT NOT NULL UNIQUE,
  payment_id TEXT,
  subtotal REAL NOT NULL CHECK(subtotal >= 0),
  total REAL NOT NULL CHECK(total >= 0),
  amount_minor INTEGER NOT NULL CHECK(amount_minor >= 0),
  currency TEXT NOT NULL,
  status TEXT NOT NULL CHECK(status IN ('created', 'paid', 'failed')),
  items_json TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_orders_cart_key ON orders(cart_key);
`,
	},
	{
		version: 3,
		name:    "workout_sessions",
		sql: `
CREATE TABLE IF NOT EXISTS session_tasks (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  exercise_id TEXT NOT NULL,
  day TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(profile_id) REFERENCES profiles(id) ON DELETE CASCADE,
  FOREIGN KEY(exercise_id) REFERENCES exercises(id)
);

CREATE INDEX IF NOT EXISTS idx_session_tasks_profile_day ON session_tasks(profile_id, day);

CREATE TABLE IF NOT EXISTS session_sets (
  task_id TEXT NOT NULL,
  position INTEGER NOT NULL CHECK(position >= 0),
  reps INTEGER NOT NULL DEFAULT 0 CHECK(reps >= 0),
  duration_min REAL NOT NULL DEFAULT 0 CHECK(duration_min >= 0),
  done INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY(task_id, position),
  FOREIGN KEY(task_id) REFERENCES session_tasks(id) ON DELETE CASCADE
);
`,
	},
}

type seedExercise struct {
	id             string
	name           string
	kind           string
	category       string
	caloriesPerRep any
	met            any
}

var defaultExercises = []seedExercise{
	{"push-ups", "Push-ups", "reps", "strength", 0.4, nil},
	{"squats", "Squats", "reps", "strength", 0.32, nil},
	{"pull-ups", "Pull-ups", "reps", "strength", 1.0, nil},
	{"burpees", "Burpees", "reps", "cardio", 1.0, nil},
	{"lunges", "Lunges", "reps", "strength", 0.3, nil},
	{"crunches", "Crunches", "reps", "core", 0.25, nil},
	{"running", "Running", "duration", "cardio", nil, 9.8},
	{"cycling", "Cycling", "duration", "cardio", nil, 7.5},
	{"walking", "Walking", "duration", "cardio", nil, 3.5},
	{"jump-rope", "Jump rope", "duration", "cardio", nil, 12.3},
	{"swimming", "Swimming", "duration", "cardio", nil, 8.0},
	{"yoga", "Yoga", "duration", "flexibility", nil, 2.5},
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}

	for _, ex := range defaultExercises {
		if _, err := db.Exec(`
INSERT OR IGNORE INTO exercises(id, name, type, category, calories_per_rep, met)
VALUES(?, ?, ?, ?, ?, ?)
`, ex.id, ex.name, ex.kind, ex.category, ex.caloriesPerRep, ex.met); err != nil {
			return fmt.Errorf("seed default exercise %s: %w", ex.id, err)
		}
	}

	return nil
}
