// Package logline parses and serializes the fixed-delimiter combat log line
// grammar: "<timestamp>::<f1>,<f2>,...,<f12>\n". The timestamp uses the
// "YY:MM:DD:hh:mm:ss.t" layout; the final two fields are real numbers.
package logline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DamageType identifies the magnitude kind carried by a Line.
type DamageType string

const (
	DamageTypeShield    DamageType = "Shield"
	DamageTypeHitPoints DamageType = "HitPoints"
)

// Line is a single parsed combat log event.
type Line struct {
	Timestamp  time.Time
	OwnerName  string
	OwnerID    string
	SourceName string
	SourceID   string
	TargetName string
	TargetID   string
	EventName  string
	EventID    string
	Type       DamageType
	Flags      string
	Magnitude  float64
	Magnitude2 float64
}

// fieldCount is the number of comma-separated fields following "::", as
// confirmed by the reference parser's positional field access (indices
// 0 through 11: ten string fields plus two trailing reals).
const fieldCount = 12

// Parse parses a single combat log line, stripping any trailing newline.
func Parse(line string) (Line, error) {
	line = strings.TrimRight(line, "\r\n")
	tsPart, rest, ok := strings.Cut(line, "::")
	if !ok {
		return Line{}, fmt.Errorf("logline: missing \"::\" separator")
	}
	ts, err := ParseTimestamp(tsPart)
	if err != nil {
		return Line{}, fmt.Errorf("logline: %w", err)
	}
	fields := strings.Split(rest, ",")
	if len(fields) != fieldCount {
		return Line{}, fmt.Errorf("logline: expected %d fields, got %d", fieldCount, len(fields))
	}
	magnitude, err := strconv.ParseFloat(fields[10], 64)
	if err != nil {
		return Line{}, fmt.Errorf("logline: magnitude: %w", err)
	}
	magnitude2, err := strconv.ParseFloat(fields[11], 64)
	if err != nil {
		return Line{}, fmt.Errorf("logline: magnitude2: %w", err)
	}
	return Line{
		Timestamp:  ts,
		OwnerName:  fields[0],
		OwnerID:    fields[1],
		SourceName: fields[2],
		SourceID:   fields[3],
		TargetName: fields[4],
		TargetID:   fields[5],
		EventName:  fields[6],
		EventID:    fields[7],
		Type:       DamageType(fields[8]),
		Flags:      fields[9],
		Magnitude:  magnitude,
		Magnitude2: magnitude2,
	}, nil
}

// Format renders a Line back into the combat log grammar, trailing newline
// included.
func Format(l Line) string {
	var b strings.Builder
	b.WriteString(FormatTimestamp(l.Timestamp))
	b.WriteString("::")
	fields := []string{
		l.OwnerName, l.OwnerID, l.SourceName, l.SourceID, l.TargetName, l.TargetID,
		l.EventName, l.EventID, string(l.Type), l.Flags,
		strconv.FormatFloat(l.Magnitude, 'f', -1, 64),
		strconv.FormatFloat(l.Magnitude2, 'f', -1, 64),
	}
	b.WriteString(strings.Join(fields, ","))
	b.WriteByte('\n')
	return b.String()
}

const timestampLayout = "06:01:02:15:04:05.0"

// ParseTimestamp parses the "YY:MM:DD:hh:mm:ss.t" timestamp, where YY is
// years since 2000 and the fractional part is tenths of a second.
func ParseTimestamp(s string) (time.Time, error) {
	parts := strings.SplitN(s, ":", 6)
	if len(parts) != 6 {
		return time.Time{}, fmt.Errorf("malformed timestamp %q", s)
	}
	secParts := strings.SplitN(parts[5], ".", 2)
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	hour, err := strconv.Atoi(parts[3])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[4])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	second, err := strconv.Atoi(secParts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	var nanos int
	if len(secParts) == 2 {
		tenths, err := strconv.Atoi(secParts[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
		}
		nanos = tenths * 100_000_000
	}
	return time.Date(2000+year, time.Month(month), day, hour, minute, second, nanos, time.UTC), nil
}

// FormatTimestamp is the inverse of ParseTimestamp.
func FormatTimestamp(t time.Time) string {
	tenths := t.Nanosecond() / 100_000_000
	return fmt.Sprintf("%02d:%02d:%02d:%02d:%02d:%02d.%d",
		t.Year()-2000, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(), tenths)
}

// IsPlayerID reports whether an owner/source/target id refers to a player
// ("P[...]") rather than a non-player entity ("C[...]").
func IsPlayerID(id string) bool {
	return strings.HasPrefix(id, "P")
}

// Handle extracts the player handle (the "@name" portion) from a player id,
// or the space-prefixed numeric instance number from an NPC id. Returns the
// empty string for an id with neither shape.
func Handle(id string) string {
	if IsPlayerID(id) {
		if i := strings.LastIndex(id, "@"); i >= 0 {
			return strings.TrimSuffix(id[i:], "]")
		}
		return ""
	}
	if i := strings.Index(id, "C["); i >= 0 {
		rest := id[i+2:]
		if sp := strings.Index(rest, " "); sp >= 0 {
			return " " + rest[:sp]
		}
	}
	return ""
}

// EntityName extracts the display name portion out of a "C[<num> Name]"
// style id, stripping the trailing "]". Returns ok=false when the id does
// not follow that shape.
func EntityName(id string) (string, bool) {
	i := strings.Index(id, "C[")
	if i < 0 {
		return "", false
	}
	rest := id[i+2:]
	sp := strings.Index(rest, " ")
	if sp < 0 {
		return "", false
	}
	name := strings.TrimSuffix(rest[sp+1:], "]")
	return name, true
}
