package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/saadjs/fitfuel/internal/cart"
	"github.com/saadjs/fitfuel/internal/logger"
	"github.com/saadjs/fitfuel/internal/storage"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	NegativeFoodRows   int `json:"negative_food_rows"`
	WorkoutFieldErrors int `json:"workout_field_errors"`
	// OrphanSessionLogs are log entries of session tasks with no done set.
	OrphanSessionLogs  int      `json:"orphan_session_logs"`
	MissingSessionLogs int      `json:"missing_session_logs"`
	CorruptCarts       []string `json:"corrupt_carts,omitempty"`
	StaleOrders        int      `json:"stale_orders"`
	Fixed              int      `json:"fixed,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return r.NegativeFoodRows == 0 && r.WorkoutFieldErrors == 0 && r.OrphanSessionLogs == 0 &&
		r.MissingSessionLogs == 0 && len(r.CorruptCarts) == 0
}

// CreateBackup writes a consistent snapshot of db to outPath with a sidecar
// checksum file.
func CreateBackup(db *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, invalidf("backup output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, invalidf("backup %s already exists", outPath)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("snapshot database: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// RestoreBackup copies a verified backup over dbPath. The caller must close
// any open handle on dbPath first.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return invalidf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return invalidf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor checks stored data against the ledger, workout, and cart rules.
// With fix, orphan session logs are deleted and corrupt carts reset to empty.
func RunDoctor(ctx context.Context, db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	if err := db.QueryRow(`SELECT COUNT(1) FROM food_logs WHERE calories < 0 OR protein < 0 OR carbs < 0 OR fats < 0`).Scan(&report.NegativeFoodRows); err != nil {
		return report, fmt.Errorf("doctor food check: %w", err)
	}
	if err := db.QueryRow(`
SELECT COUNT(1) FROM workout_logs
WHERE NOT (
  (type = 'reps' AND reps IS NOT NULL AND sets IS NOT NULL AND duration_min IS NULL) OR
  (type = 'duration' AND duration_min IS NOT NULL AND reps IS NULL AND sets IS NULL)
)`).Scan(&report.WorkoutFieldErrors); err != nil {
		return report, fmt.Errorf("doctor workout field check: %w", err)
	}

	orphanIDs, err := queryIDs(db, `
SELECT w.id FROM workout_logs w
JOIN session_tasks t ON t.id = w.id
WHERE NOT EXISTS (SELECT 1 FROM session_sets s WHERE s.task_id = t.id AND s.done = 1)`)
	if err != nil {
		return report, fmt.Errorf("doctor orphan session check: %w", err)
	}
	report.OrphanSessionLogs = len(orphanIDs)
	if err := db.QueryRow(`
SELECT COUNT(1) FROM session_tasks t
WHERE EXISTS (SELECT 1 FROM session_sets s WHERE s.task_id = t.id AND s.done = 1)
AND NOT EXISTS (SELECT 1 FROM workout_logs w WHERE w.id = t.id)`).Scan(&report.MissingSessionLogs); err != nil {
		return report, fmt.Errorf("doctor missing session check: %w", err)
	}
	if err := db.QueryRow(`SELECT COUNT(1) FROM orders WHERE status = 'created' AND created_at < ?`,
		formatTime(time.Now().Add(-24*time.Hour))).Scan(&report.StaleOrders); err != nil {
		return report, fmt.Errorf("doctor stale order check: %w", err)
	}

	kv := storage.NewSQLite(db)
	keys, err := kv.Keys(ctx, cart.StorageKey)
	if err != nil {
		return report, err
	}
	for _, key := range keys {
		raw, err := kv.Get(ctx, key)
		if err != nil {
			return report, err
		}
		if _, err := cart.Decode(key, raw); err != nil {
			report.CorruptCarts = append(report.CorruptCarts, key)
		}
	}

	if !fix {
		return report, nil
	}
	for _, id := range orphanIDs {
		if _, err := db.Exec(`DELETE FROM workout_logs WHERE id = ?`, id); err != nil {
			return report, fmt.Errorf("doctor delete orphan log %s: %w", id, err)
		}
		report.Fixed++
	}
	for _, key := range report.CorruptCarts {
		if err := cart.Save(ctx, kv, key, cart.Clear()); err != nil {
			return report, err
		}
		logger.Warn("reset corrupt cart", "key", key)
		report.Fixed++
	}
	return report, nil
}

func queryIDs(db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("replace destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
