package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/saadjs/fitfuel/internal/logger"
	"github.com/saadjs/fitfuel/internal/service"
)

// DayCache keeps fetched day logs per profile and date. Nothing is refetched
// or dropped implicitly: callers Refresh or Invalidate after their own
// mutations. A cache opened with a path survives across processes.
type DayCache struct {
	client *Client
	path   string
	mu     sync.Mutex
	days   map[string]service.DayLog
}

func NewDayCache(c *Client) *DayCache {
	return &DayCache{client: c, days: make(map[string]service.DayLog)}
}

// OpenDayCache loads the cache persisted at path. A missing or unreadable
// file starts an empty cache.
func OpenDayCache(c *Client, path string) *DayCache {
	d := &DayCache{client: c, path: path, days: make(map[string]service.DayLog)}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		logger.Warn("read day cache", "path", path, "error", err)
	default:
		if err := json.Unmarshal(raw, &d.days); err != nil {
			logger.Warn("discarding corrupt day cache", "path", path, "error", err)
			d.days = make(map[string]service.DayLog)
		}
	}
	return d
}

func cacheKey(profileID, date string) string {
	return profileID + "|" + date
}

// Load returns the cached day, fetching it on first use.
func (d *DayCache) Load(ctx context.Context, profileID, date string) (service.DayLog, error) {
	d.mu.Lock()
	day, ok := d.days[cacheKey(profileID, date)]
	d.mu.Unlock()
	if ok {
		return day, nil
	}
	return d.Refresh(ctx, profileID, date)
}

// Refresh fetches the day and replaces the cached copy. A failed fetch leaves
// the cache untouched.
func (d *DayCache) Refresh(ctx context.Context, profileID, date string) (service.DayLog, error) {
	day, err := d.client.DayLog(ctx, profileID, date)
	if err != nil {
		return service.DayLog{}, err
	}
	d.mu.Lock()
	d.days[cacheKey(profileID, date)] = day
	d.persistLocked()
	d.mu.Unlock()
	return day, nil
}

// Invalidate drops one cached day. An empty date drops every day of the
// profile.
func (d *DayCache) Invalidate(profileID, date string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if date != "" {
		delete(d.days, cacheKey(profileID, date))
	} else {
		prefix := cacheKey(profileID, "")
		for k := range d.days {
			if strings.HasPrefix(k, prefix) {
				delete(d.days, k)
			}
		}
	}
	d.persistLocked()
}

// Reset drops every cached day, used when the session ends.
func (d *DayCache) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.days = make(map[string]service.DayLog)
	if d.path == "" {
		return
	}
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("remove day cache", "path", d.path, "error", err)
	}
}

// persistLocked writes the cache file. A failed write only costs a refetch,
// so it is logged and not returned.
func (d *DayCache) persistLocked() {
	if d.path == "" {
		return
	}
	if err := writeJSONFile(d.path, d.days); err != nil {
		logger.Warn("write day cache", "path", d.path, "error", err)
	}
}

func writeJSONFile(path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
