package combatsplit

import (
	"testing"
	"time"

	"github.com/STOCD/OSCR/logline"
)

func pushAll(s *Splitter, lines []logline.Line, startPos int64) []BoundCombat {
	var closed []BoundCombat
	pos := startPos
	for _, l := range lines {
		pos -= 10 // pretend each line is 10 bytes, most-recent-first feed
		if c, ok, stop := s.Push(l, pos); ok {
			closed = append(closed, c)
			if stop {
				break
			}
		}
	}
	return closed
}

func TestSplitterEmitsOnGapWithByteRange(t *testing.T) {
	const fileSize = 1000
	s := NewSplitter(StreamConfig{InactivityGap: 100 * time.Second, MinLines: 20}, fileSize)

	var lines []logline.Line
	lines = append(lines, repeat("24:01:01:12:00:00.0", 25)...) // most recent
	lines = append(lines, repeat("24:01:01:00:00:00.0", 25)...) // older, beyond the gap

	closed := pushAll(s, lines, fileSize)
	if len(closed) != 1 {
		t.Fatalf("expected 1 combat closed by the gap, got %d", len(closed))
	}
	c := closed[0]
	if len(c.Lines) != 25 {
		t.Fatalf("expected 25 lines, got %d", len(c.Lines))
	}
	if c.End != fileSize {
		t.Errorf("first closed combat's End should be the seeded file size, got %d", c.End)
	}
	if c.Start <= 0 || c.Start >= c.End {
		t.Errorf("expected 0 < Start < End, got [%d, %d)", c.Start, c.End)
	}

	final, ok := s.Finish(0)
	if !ok {
		t.Fatal("expected the trailing 25-line run to meet minLines and flush")
	}
	if final.End != c.Start {
		t.Errorf("second combat's End should be the first combat's Start, got %d want %d", final.End, c.Start)
	}
}

func TestSplitterSkipsBannedEvents(t *testing.T) {
	s := NewSplitter(StreamConfig{InactivityGap: 100 * time.Second, MinLines: 1, BannedEventNames: []string{"Electrical Overload"}}, 100)
	banned := logline.Line{Timestamp: mustParseTS(t, "24:01:01:00:00:01.0"), EventName: "Electrical Overload"}
	if _, ok, _ := s.Push(banned, 50); ok {
		t.Fatal("a banned event must never close a combat")
	}
	closed, ok := s.Finish(0)
	if ok {
		t.Fatalf("a run containing only banned events must not flush a combat, got %+v", closed)
	}
}

func TestSplitterStopsAtMaxCombats(t *testing.T) {
	const fileSize = 1000
	s := NewSplitter(StreamConfig{InactivityGap: 100 * time.Second, MinLines: 20, MaxCombats: 1}, fileSize)

	var lines []logline.Line
	lines = append(lines, repeat("24:01:03:00:00:00.0", 25)...)
	lines = append(lines, repeat("24:01:02:00:00:00.0", 25)...)
	lines = append(lines, repeat("24:01:01:00:00:00.0", 25)...)

	var closedCount int
	pos := int64(fileSize)
	for _, l := range lines {
		pos -= 10
		c, ok, stop := s.Push(l, pos)
		if ok {
			closedCount++
			_ = c
		}
		if stop {
			break
		}
	}
	if closedCount != 1 {
		t.Fatalf("expected exactly 1 combat before stopping, got %d", closedCount)
	}
}

func mustParseTS(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := logline.ParseTimestamp(s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}
