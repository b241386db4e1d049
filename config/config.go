// Package config holds the tunable defaults for combat splitting, log
// navigation and export, configured through functional options in the same
// chaining style the reference log-trace asset cache uses for its entry
// builders.
package config

import (
	"time"

	"github.com/STOCD/OSCR/logline"
)

// Settings holds the knobs the rest of the module reads instead of
// hard-coding magic numbers, mirroring the reference parser's per-instance
// settings dictionary.
type Settings struct {
	// CombatsToParse bounds how many recent combats are kept in memory at
	// once when scanning a log file.
	CombatsToParse int
	// SecondsBetweenCombats is the inactivity gap that ends one combat and
	// starts the next.
	SecondsBetweenCombats float64
	// CombatMinLines is the minimum number of lines a pending combat must
	// accumulate before it is considered real rather than noise.
	CombatMinLines int
	// ExcludedEventIDs lists event ids that do not indicate combat (e.g. fall
	// damage); IsExcludedEvent reports membership. The splitter, Repair and
	// export do not consult this list.
	ExcludedEventIDs []string
	// GraphResolution is the bucket width, in seconds, used when building
	// time-series graphs from a combat.
	GraphResolution float64
	// SplitLogAfterLines is a line-count threshold for splitting a massive
	// log file into smaller files. The value is only stored: nothing in this
	// module reads it, and logs are analyzed unsplit.
	SplitLogAfterLines int
	// TempLogFolder is where extracted/repaired log fragments are written.
	TempLogFolder string
	// HealPredicate overrides how the Analyzer tells a heal tick from a
	// damage tick. nil means the authoritative rule applies (HitPoints type
	// with a negative magnitude, or a negative Shield magnitude paired with
	// a non-negative base).
	HealPredicate func(logline.Line) bool
}

// Option mutates a Settings value; Apply stops and returns the first error
// an option reports.
type Option func(*Settings) error

// Default returns the settings the reference implementation ships with.
func Default() Settings {
	return Settings{
		CombatsToParse:        10,
		SecondsBetweenCombats: 100,
		CombatMinLines:        20,
		ExcludedEventIDs:      []string{"Autodesc.Combatevent.Falling"},
		GraphResolution:       0.2,
		SplitLogAfterLines:    480_000,
		TempLogFolder:         "",
	}
}

// New builds Settings starting from Default and applying opts in order.
func New(opts ...Option) (Settings, error) {
	s := Default()
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return Settings{}, err
		}
	}
	return s, nil
}

// WithCombatsToParse overrides CombatsToParse.
func WithCombatsToParse(n int) Option {
	return func(s *Settings) error {
		s.CombatsToParse = n
		return nil
	}
}

// WithInactivityGap overrides SecondsBetweenCombats.
func WithInactivityGap(d time.Duration) Option {
	return func(s *Settings) error {
		s.SecondsBetweenCombats = d.Seconds()
		return nil
	}
}

// WithCombatMinLines overrides CombatMinLines.
func WithCombatMinLines(n int) Option {
	return func(s *Settings) error {
		s.CombatMinLines = n
		return nil
	}
}

// WithExcludedEventIDs overrides ExcludedEventIDs.
func WithExcludedEventIDs(ids ...string) Option {
	return func(s *Settings) error {
		s.ExcludedEventIDs = ids
		return nil
	}
}

// WithGraphResolution overrides GraphResolution.
func WithGraphResolution(seconds float64) Option {
	return func(s *Settings) error {
		s.GraphResolution = seconds
		return nil
	}
}

// WithSplitLogAfterLines overrides SplitLogAfterLines.
func WithSplitLogAfterLines(n int) Option {
	return func(s *Settings) error {
		s.SplitLogAfterLines = n
		return nil
	}
}

// WithHealPredicate overrides the Analyzer's heal-vs-damage classification,
// for callers who need the reference's looser legacy behavior instead of the
// authoritative HitPoints/Shield-sign rule.
func WithHealPredicate(p func(logline.Line) bool) Option {
	return func(s *Settings) error {
		s.HealPredicate = p
		return nil
	}
}

// WithTempLogFolder overrides TempLogFolder.
func WithTempLogFolder(path string) Option {
	return func(s *Settings) error {
		s.TempLogFolder = path
		return nil
	}
}

// InactivityGap returns SecondsBetweenCombats as a time.Duration.
func (s Settings) InactivityGap() time.Duration {
	return time.Duration(s.SecondsBetweenCombats * float64(time.Second))
}

// IsExcludedEvent reports whether eventID is in ExcludedEventIDs.
func (s Settings) IsExcludedEvent(eventID string) bool {
	for _, id := range s.ExcludedEventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}
