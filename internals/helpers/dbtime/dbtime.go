package dbtime

import (
	"os"
	"strings"
	"sync"
	"time"
)

var (
	locOnce sync.Once
	loc     *time.Location
)

// Location is the institution's timezone (APP_TIMEZONE), UTC when unset or invalid.
func Location() *time.Location {
	locOnce.Do(func() {
		loc = time.UTC
		if tz := strings.TrimSpace(os.Getenv("APP_TIMEZONE")); tz != "" {
			if l, err := time.LoadLocation(tz); err == nil {
				loc = l
			}
		}
	})
	return loc
}

// DateOnly truncates t to midnight of its calendar day in the institution timezone,
// expressed in UTC so the value compares the same on every driver.
func DateOnly(t time.Time) time.Time {
	lt := t.In(Location())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}

func Today() time.Time { return DateOnly(time.Now()) }

// EndOfDay is the last instant of a value already produced by DateOnly.
func EndOfDay(d time.Time) time.Time {
	return d.Add(24*time.Hour - time.Nanosecond)
}
