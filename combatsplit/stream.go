package combatsplit

import (
	"time"

	"github.com/STOCD/OSCR/logline"
)

// StreamConfig groups the CombatSplitter tunables the streaming Splitter
// needs (spec §4.3).
type StreamConfig struct {
	InactivityGap    time.Duration
	MinLines         int
	BannedEventNames []string
	MaxCombats       int
}

// BoundCombat pairs a Combat with its byte range [Start, End) in the source
// file, as the Orchestrator needs to isolate and re-read it later.
type BoundCombat struct {
	Combat
	Start, End int64
}

// Splitter drives the CombatSplitter state machine (spec §4.3) directly
// over a reverse-chronological line source line-by-line, tracking byte
// positions the way BackwardReader exposes them — this is the production
// path the Orchestrator uses. The in-memory Split helper above remains for
// callers that already have a full reversed slice and don't need byte
// ranges (e.g. tests, or re-analysis of an already-isolated combat).
type Splitter struct {
	cfg StreamConfig

	current     []logline.Line // most-recent-first
	haveLast    bool
	lastLogTime time.Time

	// prevStart is the Start byte recorded for the most recently closed
	// combat; it becomes the End byte of the next (older) one to close.
	// It is seeded with the file size, matching spec §4.3's "filesize at
	// first emit".
	prevStart int64
	emitted   int
}

// NewSplitter creates a Splitter for a file of the given size.
func NewSplitter(cfg StreamConfig, fileSize int64) *Splitter {
	return &Splitter{cfg: cfg, prevStart: fileSize}
}

// Push feeds one line into the state machine; bytePos is the file offset
// just past that line, where the newer lines already fed begin (e.g.
// size - reader.BytesRead(true) right after the line was read), and becomes
// the Start of any combat this line closes. If doing so closes a pending combat (the
// over-gap transition), it is returned with ok=true. stop reports that
// MaxCombats has now been reached and the caller should stop feeding lines
// (the reader may be resumed later from bytePos to continue the scan).
func (s *Splitter) Push(line logline.Line, bytePos int64) (closed BoundCombat, ok bool, stop bool) {
	if s.cfg.MaxCombats > 0 && s.emitted >= s.cfg.MaxCombats {
		return BoundCombat{}, false, true
	}
	for _, banned := range s.cfg.BannedEventNames {
		if line.EventName == banned {
			return BoundCombat{}, false, false
		}
	}

	logTime := line.Timestamp
	if s.haveLast && s.lastLogTime.Sub(logTime) > s.cfg.InactivityGap {
		if len(s.current) >= s.cfg.MinLines {
			closed = s.finalize(bytePos)
			ok = true
			s.emitted++
			s.prevStart = closed.Start
		}
		s.current = nil
		s.haveLast = false
	}

	s.current = append(s.current, line)
	s.lastLogTime = logTime
	s.haveLast = true

	if ok && s.cfg.MaxCombats > 0 && s.emitted >= s.cfg.MaxCombats {
		stop = true
	}
	return closed, ok, stop
}

// Finish flushes a pending run that meets MinLines once the input is
// exhausted (the terminal transition in spec §4.3's state machine).
// startByte is the byte position of the oldest consumed line, normally 0.
func (s *Splitter) Finish(startByte int64) (closed BoundCombat, ok bool) {
	if len(s.current) < s.cfg.MinLines {
		return BoundCombat{}, false
	}
	closed = s.finalize(startByte)
	s.current = nil
	return closed, true
}

func (s *Splitter) finalize(startByte int64) BoundCombat {
	forward := make([]logline.Line, len(s.current))
	for i, l := range s.current {
		forward[len(forward)-1-i] = l
	}
	return BoundCombat{
		Combat: Combat{
			Lines:     forward,
			StartTime: forward[0].Timestamp,
			EndTime:   forward[len(forward)-1].Timestamp,
		},
		Start: startByte,
		End:   s.prevStart,
	}
}
