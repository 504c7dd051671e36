package fitfuel

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/fitfuel/internal/app"
	"github.com/saadjs/fitfuel/internal/cart"
	"github.com/saadjs/fitfuel/internal/db"
	"github.com/saadjs/fitfuel/internal/logger"
	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/payment"
	"github.com/saadjs/fitfuel/internal/service"
	"github.com/saadjs/fitfuel/internal/storage"
)

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return app.DefaultDBPath()
}

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// withProfile runs with the --profile profile, or the active one.
func withProfile(run func(*sql.DB, model.Profile) error) error {
	return withDB(func(sqldb *sql.DB) error {
		ref := profileFlag
		if ref == "" {
			ref = cfg.Profile
		}
		var p model.Profile
		var err error
		if ref == "" {
			p, err = service.ActiveProfile(sqldb)
		} else {
			p, err = service.ResolveProfile(sqldb, service.LocalUserID, ref)
		}
		if err != nil {
			return err
		}
		return run(sqldb, p)
	})
}

// cartStore is Redis when redis.url is configured, the local database
// otherwise.
func cartStore(ctx context.Context, sqldb *sql.DB) (cart.Store, func(), error) {
	if cfg.Redis.URL == "" {
		return storage.NewSQLite(sqldb), func() {}, nil
	}
	client, err := storage.DialRedis(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("using redis cart storage", "prefix", cfg.Redis.Prefix)
	return storage.NewRedis(client, storage.RedisOptions{Prefix: cfg.Redis.Prefix, TTL: cfg.Redis.TTL}), func() { _ = client.Close() }, nil
}

func paymentGateway() (*payment.Client, error) {
	if !cfg.PaymentEnabled() {
		return nil, fmt.Errorf("payments are not configured; set payment.base_url, payment.key_id and payment.key_secret")
	}
	return payment.New(payment.Config{BaseURL: cfg.Payment.BaseURL, KeyID: cfg.Payment.KeyID, KeySecret: cfg.Payment.KeySecret})
}

// currency prefers the flag, then the stored setting, then config.
func currency(sqldb *sql.DB, flag string) (string, error) {
	if strings.TrimSpace(flag) != "" {
		return flag, nil
	}
	return service.ConfigOr(sqldb, service.ConfigCurrency, cfg.Currency)
}

func dateOrToday(date string) string {
	if strings.TrimSpace(date) == "" {
		return service.Today()
	}
	return strings.TrimSpace(date)
}

func parseDateTimeOrNow(date, timeStr string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return time.Now(), nil
	}
	if date == "" {
		return time.Time{}, fmt.Errorf("--date is required when --time is set")
	}
	if timeStr == "" {
		t, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
		}
		return t.Add(12 * time.Hour), nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}

func parseIndexArg(name, value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v < 1 {
		return 0, fmt.Errorf("%s must be >= 1", name)
	}
	return v, nil
}

func optionalFloat(set bool, v float64) *float64 {
	if !set {
		return nil
	}
	return &v
}
