package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestCenterPadsEvenlyOnBothSides(t *testing.T) {
	got := center("hi", 6)
	if got != "  hi  " {
		t.Errorf("center = %q, want %q", got, "  hi  ")
	}
}

func TestCenterReturnsUnchangedWhenTooWide(t *testing.T) {
	if got := center("toolong", 3); got != "toolong" {
		t.Errorf("center = %q, want unchanged", got)
	}
}

func TestPadRightAndPadLeft(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padLeft("ab", 5); got != "   ab" {
		t.Errorf("padLeft = %q", got)
	}
}

func TestTruncateClipsToWidth(t *testing.T) {
	if got := truncate("abcdefgh", 4); got != "abcd" {
		t.Errorf("truncate = %q, want %q", got, "abcd")
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Errorf("truncate = %q, want unchanged", got)
	}
}

func TestPrintTableAlignsColumnsPerLeftAlign(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, []string{"Name", "DPS"}, [][]string{{"Jane", "100"}}, []bool{true, false})
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, separator, and one data row, got %d lines: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[2], "Jane") {
		t.Errorf("expected left-aligned Name column, got %q", lines[2])
	}
}
