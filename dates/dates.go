// Package dates centralizes the epoch-millisecond timestamp handling
// shared by the store, the reconciliation engine and the exporter.
// Expiry dates are day-granular and always normalized to local midnight.
package dates

import (
	"fmt"
	"time"
)

func NowMilli() int64 {
	return time.Now().UnixMilli()
}

// StartOfToday returns local midnight of the current day in epoch ms.
func StartOfToday() int64 {
	now := time.Now()
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	return d.UnixMilli()
}

// Midnight normalizes an epoch-ms timestamp to local midnight of its day.
func Midnight(ms int64) int64 {
	t := time.UnixMilli(ms).In(time.Local)
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	return d.UnixMilli()
}

// FormatDate renders DD/MM/YYYY, the export and conflict-listing format.
func FormatDate(ms int64) string {
	t := time.UnixMilli(ms).In(time.Local)
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}

// FormatDateTime renders DD/MM/YYYY HH:MM.
func FormatDateTime(ms int64) string {
	t := time.UnixMilli(ms).In(time.Local)
	return fmt.Sprintf("%02d/%02d/%04d %02d:%02d", t.Day(), int(t.Month()), t.Year(), t.Hour(), t.Minute())
}
