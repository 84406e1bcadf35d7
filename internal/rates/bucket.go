package rates

import (
	"fmt"
	"time"
)

// BucketKind is the granularity a historical timestamp resolves to.
type BucketKind int

const (
	BucketMinute BucketKind = iota
	BucketHour
	BucketDay
)

// Bucket is the discretized time unit keying a historical rate lookup. A
// bucket has exactly one recorded rate, so cached entries are immutable.
type Bucket struct {
	Kind BucketKind
	Time time.Time
}

// resolveBucket picks the finest granularity the backing API supports for the
// age of the timestamp: exact minute within the recency window, hour within
// the hour window, day beyond that.
func resolveBucket(timestamp, now time.Time, recencyWindow, hourWindow time.Duration) Bucket {
	ts := timestamp.UTC()
	age := now.Sub(ts)

	switch {
	case age <= recencyWindow:
		return Bucket{Kind: BucketMinute, Time: ts.Truncate(time.Minute)}
	case age <= hourWindow:
		return Bucket{Kind: BucketHour, Time: ts.Truncate(time.Hour)}
	default:
		return Bucket{Kind: BucketDay, Time: time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)}
	}
}

// Key returns the cache key for this bucket scoped to a coin and currency.
func (b Bucket) Key(coinCode, currencyCode string) string {
	return fmt.Sprintf("%s|%s|%d|%s", coinCode, currencyCode, b.Kind, b.Time.Format("2006-01-02T15:04"))
}
