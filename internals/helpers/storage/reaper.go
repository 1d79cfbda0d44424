package storage

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"compaward_backend/internals/configs"
)

type ReaperConfig struct {
	Prefix       string
	MinAge       time.Duration
	CronSchedule string
	DryRun       bool
}

func ReaperConfigFromEnv() ReaperConfig {
	return ReaperConfig{
		Prefix:       configs.GetEnv("BLOB_REAPER_PREFIX", "certificate/"),
		MinAge:       time.Duration(configs.GetEnvInt("BLOB_REAPER_MIN_AGE_HOURS", 24)) * time.Hour,
		CronSchedule: configs.GetEnv("BLOB_REAPER_CRON", "15 2 * * *"),
		DryRun:       configs.GetEnvBool("BLOB_REAPER_DRY_RUN", false),
	}
}

// StartOrphanReaper schedules RunOrphanReaper; the caller stops the returned cron on shutdown.
func StartOrphanReaper(db *gorm.DB, store BlobStore, cfg ReaperConfig) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(cfg.CronSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		if _, err := RunOrphanReaper(ctx, db, store, cfg); err != nil {
			log.Printf("[BLOB-REAPER] error: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[BLOB-REAPER] started schedule=%q prefix=%q minAge=%s dryRun=%v",
		cfg.CronSchedule, cfg.Prefix, cfg.MinAge, cfg.DryRun)
	c.Start()
	return c, nil
}

// RunOrphanReaper deletes certificate images older than MinAge that no
// certificates row points at. Returns the keys it deleted (or would delete).
func RunOrphanReaper(ctx context.Context, db *gorm.DB, store BlobStore, cfg ReaperConfig) ([]string, error) {
	objs, err := store.List(ctx, cfg.Prefix)
	if err != nil {
		return nil, err
	}
	threshold := time.Now().Add(-cfg.MinAge)

	var candidates []string
	for _, o := range objs {
		if o.ModifiedAt.Before(threshold) {
			candidates = append(candidates, o.Key)
		}
	}
	if len(candidates) == 0 {
		log.Printf("[BLOB-REAPER] nothing to check; scanned=%d under %q", len(objs), cfg.Prefix)
		return nil, nil
	}

	referenced := make(map[string]struct{}, len(candidates))
	for i := 0; i < len(candidates); i += 500 {
		end := min(i+500, len(candidates))
		var keys []string
		if err := db.WithContext(ctx).
			Table("certificates").
			Where("image_key IN ?", candidates[i:end]).
			Pluck("image_key", &keys).Error; err != nil {
			return nil, err
		}
		for _, k := range keys {
			referenced[k] = struct{}{}
		}
	}

	var orphans []string
	for _, k := range candidates {
		if _, ok := referenced[k]; !ok {
			orphans = append(orphans, k)
		}
	}
	if cfg.DryRun {
		log.Printf("[BLOB-REAPER] DRY-RUN would delete %d/%d objects under %q", len(orphans), len(objs), cfg.Prefix)
		return orphans, nil
	}
	DeleteQuietly(ctx, store, orphans...)
	log.Printf("[BLOB-REAPER] deleted %d orphan objects (scanned=%d)", len(orphans), len(objs))
	return orphans, nil
}
