package reconcile

import "time"

// Config holds the run defaults; venue profiles override them per venue.
type Config struct {
	// Days is the lookahead window fetched from both feeds.
	Days int `mapstructure:"days" default:"30"`
	// SkipDays drops events starting within this many calendar days.
	SkipDays int `mapstructure:"skip_days" default:"7"`
	// FuzzyThreshold is the minimum title similarity, 0..100.
	FuzzyThreshold int `mapstructure:"fuzzy_threshold" default:"50"`
	// Tolerance is the largest accepted start time difference.
	Tolerance time.Duration `mapstructure:"tolerance" default:"12h"`
	// ExactTime requires identical start minutes instead of Tolerance.
	ExactTime bool `mapstructure:"exact_time" default:"false"`
	// Keywords exclude records whose title or status contains them.
	Keywords []string `mapstructure:"keywords" default:"cancelled,canceled,postponed,sold out"`
	// Timezone is the default venue location.
	Timezone string `mapstructure:"timezone" default:"America/New_York"`
	// DedupeByEventID also skips items whose inventory id is already stored.
	DedupeByEventID bool `mapstructure:"dedupe_by_event_id" default:"true"`
	// Workers bounds concurrent venue runs for crawl --all.
	Workers int `mapstructure:"workers" default:"2"`
}
