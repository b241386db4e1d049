// Package combatsplit groups a stream of combat log lines into individual
// combats by detecting inactivity gaps, mirroring the reference analyzer's
// backward scan of a log file.
package combatsplit

import (
	"time"

	"github.com/STOCD/OSCR/logline"
)

// Combat is a contiguous run of log lines bounded by inactivity gaps, in
// forward chronological order.
type Combat struct {
	Lines     []logline.Line
	StartTime time.Time
	EndTime   time.Time
}

// BannedEvents lists event names skipped entirely during splitting (spec
// §4.3's banned_event_names): they contribute to neither buffering nor the
// inactivity-gap timestamp baseline. Compiled in per spec §9.
var BannedEvents = []string{"Electrical Overload"}

// Split partitions lines — which must be in reverse chronological order
// (most recent first), the order BackwardReader naturally produces — into
// combats separated by gaps larger than inactivityGap. A pending run
// shorter than minLines is always discarded, including the oldest (final)
// run in the input, matching the terminal transition in spec §4.3's state
// machine (Pending -> Emitting only if count >= min, else drop).
//
// When maxCombats is positive and that many combats have been emitted,
// Split stops early and returns the unconsumed tail of lines as excess, so
// callers can resume the scan later (e.g. to navigate to older combats).
// maxCombats <= 0 means unbounded.
func Split(lines []logline.Line, inactivityGap time.Duration, minLines, maxCombats int) (combats []Combat, excess []logline.Line) {
	if len(lines) == 0 {
		return nil, nil
	}

	lastLogTime := lines[0].Timestamp.Add(2 * inactivityGap)
	var current []logline.Line // accumulated most-recent-first
	var endTime time.Time
	haveEnd := false

	for i, line := range lines {
		logTime := line.Timestamp
		if lastLogTime.Sub(logTime) > inactivityGap {
			if len(current) >= minLines {
				combats = append(combats, finalize(current, lastLogTime, endTime))
				if maxCombats > 0 && len(combats) >= maxCombats {
					return combats, lines[i:]
				}
			}
			current = nil
			haveEnd = false
		}
		current = append(current, line)
		if !haveEnd {
			endTime = logTime
			haveEnd = true
		}
		lastLogTime = logTime
	}
	if len(current) >= minLines {
		combats = append(combats, finalize(current, lastLogTime, endTime))
	}
	return combats, nil
}

func finalize(mostRecentFirst []logline.Line, startTime, endTime time.Time) Combat {
	forward := make([]logline.Line, len(mostRecentFirst))
	for i, l := range mostRecentFirst {
		forward[len(forward)-1-i] = l
	}
	return Combat{Lines: forward, StartTime: startTime, EndTime: endTime}
}
