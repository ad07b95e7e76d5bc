// Package cache keeps weather and AI results in the key-value store with
// calendar-day staleness rules.
//
// Single-slot caches (weather, daily pick) drop a stale value when it is read.
// The per-occasion recommendation cache never mutates on read; stale
// occasions are purged on the next write instead.
package cache

import (
	"time"
)

const (
	WeatherKey         = "outfit-weather-cache"
	DailyKey           = "outfit-daily-recommendation"
	RecommendationsKey = "outfit-recommendations"

	WeatherMaxAge = 3 * time.Hour
)

const dateLayout = "2006-01-02"

type options struct {
	now func() time.Time
	loc *time.Location
}

type Option func(*options)

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLocation sets the calendar zone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) today() string {
	return LocalDate(o.now(), o.loc)
}

// LocalDate formats t as YYYY-MM-DD in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}
