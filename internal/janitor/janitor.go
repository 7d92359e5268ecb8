// Package janitor removes uploaded font files whose record no longer exists.
package janitor

import (
	"context"
	"fmt"
	"path"

	"fonto/internal/font"
	"fonto/internal/storage"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Janitor sweeps the font upload area on a cron schedule.
type Janitor struct {
	store font.Store
	files storage.Backend
	log   *zap.Logger
	cron  *cron.Cron
}

func New(store font.Store, files storage.Backend, log *zap.Logger) *Janitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Janitor{store: store, files: files, log: log}
}

// Sweep removes every file under the fonts prefix whose directory does not
// belong to a record of any status, and returns the removed keys. Files in
// the directory of an existing record are left alone.
//
// Files are listed before records so that an upload landing mid-sweep is
// either missing from the listing or already backed by its record.
func (j *Janitor) Sweep(ctx context.Context) ([]string, error) {
	keys, err := j.files.List(ctx, storage.FontsPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	records, err := j.store.Find(ctx, font.Query{Kind: font.KindFont})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	live := make(map[string]bool, len(records))
	for _, r := range records {
		live[storage.FontDir(r.ID)] = true
	}

	var removed []string
	for _, key := range keys {
		if live[path.Dir(key)] {
			continue
		}
		if err := j.files.Remove(ctx, key); err != nil {
			j.log.Warn("Failed to remove orphaned font file", zap.String("key", key), zap.Error(err))
			continue
		}
		removed = append(removed, key)
	}
	return removed, nil
}

// Start runs Sweep on schedule until Stop is called. An empty schedule
// disables sweeping.
func (j *Janitor) Start(schedule string) error {
	if schedule == "" {
		j.log.Info("Orphaned upload sweep disabled")
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		removed, err := j.Sweep(context.Background())
		if err != nil {
			j.log.Error("Orphaned upload sweep failed", zap.Error(err))
			return
		}
		j.log.Info("Orphaned upload sweep finished", zap.Int("removed", len(removed)))
	})
	if err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	j.cron = c
	c.Start()
	j.log.Info("Orphaned upload sweep scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}
