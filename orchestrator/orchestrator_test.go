package orchestrator

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/STOCD/OSCR/config"
	"github.com/STOCD/OSCR/logline"
)

// line builds one raw log line at the given timestamp, dealing fixed damage
// from Jane to a Borg target.
func line(ts string, magnitude float64) string {
	return fmt.Sprintf("%s::Jane@jane,P[1@1 Jane@jane],Jane@jane,P[1@1 Jane@jane],"+
		"Some Borg,C[2 Some Borg],Plasma Beam Array,Plasma Beam Array - Plasma,"+
		"Shield,Flank,-%g,-1000\n", ts, magnitude)
}

func writeTestLog(t *testing.T, lines []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "combatlog.log")
	var content string
	for _, l := range lines {
		content += l
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func twoCombatLog(t *testing.T) string {
	t.Helper()
	var lines []string
	// First combat: 25 lines one second apart.
	for i := 0; i < 25; i++ {
		lines = append(lines, line(tsAt(0, i), 100))
	}
	// Large gap, then second combat: 25 more lines.
	for i := 0; i < 25; i++ {
		lines = append(lines, line(tsAt(1, i), 50))
	}
	return writeTestLog(t, lines)
}

// tsAt formats a timestamp minuteOffset*200s plus i seconds after a fixed
// base, spacing the two combats well beyond the default 100s inactivity gap.
func tsAt(minuteOffset, i int) string {
	base := time.Date(2024, 3, 15, 21, 0, 0, 0, time.UTC)
	t := base.Add(time.Duration(minuteOffset)*200*time.Second + time.Duration(i)*time.Second)
	return logline.FormatTimestamp(t)
}

func TestIsolateFindsBothCombats(t *testing.T) {
	path := twoCombatLog(t)
	o, err := New(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	combats, _, err := o.Isolate(path, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(combats) != 2 {
		t.Fatalf("got %d combats, want 2", len(combats))
	}
	// Newest combat (larger magnitudes came first chronologically... in this
	// log the second combat is actually the most recent, so it's returned
	// first by the backward scan).
	if combats[0].Start >= combats[0].End {
		t.Fatalf("combat[0] has non-positive byte range [%d, %d)", combats[0].Start, combats[0].End)
	}
}

func TestAnalyzeAllProducesResults(t *testing.T) {
	path := twoCombatLog(t)
	o, err := New(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	combats, err := o.AnalyzeAll(context.Background(), path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(combats) != 2 {
		t.Fatalf("got %d combats, want 2", len(combats))
	}
	for _, c := range combats {
		if c.Result == nil {
			t.Fatalf("combat %d has nil Result", c.ID)
		}
		if got, ok := o.Combat(c.ID); !ok || got != c {
			t.Fatalf("combat %d not retrievable from cache", c.ID)
		}
	}
}

func TestAnalyzeAllParallelMatchesSequential(t *testing.T) {
	path := twoCombatLog(t)
	o, err := New(config.Default(), WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	combats, err := o.AnalyzeAllParallel(context.Background(), path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(combats) != 2 {
		t.Fatalf("got %d combats, want 2", len(combats))
	}
}

func TestExportCombatWritesSanitizedFile(t *testing.T) {
	path := twoCombatLog(t)
	o, err := New(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	combats, err := o.AnalyzeAll(context.Background(), path, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(combats) != 1 {
		t.Fatalf("got %d combats, want 1", len(combats))
	}

	dstDir := t.TempDir()
	dst, err := o.ExportCombat(combats[0], dstDir)
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("exported file is empty")
	}
}

func TestAnalyzeGzipMatchesPlain(t *testing.T) {
	var lines []string
	for i := 0; i < 25; i++ {
		lines = append(lines, line(tsAt(0, i), 100))
	}
	var content string
	for _, l := range lines {
		content += l
	}

	dir := t.TempDir()
	plain := filepath.Join(dir, "combatlog.log")
	if err := os.WriteFile(plain, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(content))
	gz.Close()
	compressed := filepath.Join(dir, "combatlog.log.gz")
	if err := os.WriteFile(compressed, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	o, err := New(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	plainCombats, err := o.AnalyzeAll(context.Background(), plain, 0)
	if err != nil {
		t.Fatal(err)
	}
	gzCombats, err := o.AnalyzeAll(context.Background(), compressed, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(plainCombats) != 1 || len(gzCombats) != 1 {
		t.Fatalf("got %d plain / %d gzip combats, want 1 each", len(plainCombats), len(gzCombats))
	}
	if diff := cmp.Diff(plainCombats[0].Result.Overview, gzCombats[0].Result.Overview); diff != "" {
		t.Errorf("gzip analysis differs from plain (-plain +gzip):\n%s", diff)
	}
	if plainCombats[0].End-plainCombats[0].Start != gzCombats[0].End-gzCombats[0].Start {
		t.Errorf("gzip byte range length %d differs from plain %d",
			gzCombats[0].End-gzCombats[0].Start, plainCombats[0].End-plainCombats[0].Start)
	}
}

func TestNonexistentPathReturnsPathNotFound(t *testing.T) {
	o, err := New(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	if _, _, err := o.Isolate(filepath.Join(t.TempDir(), "missing.log"), 0, 0); err == nil {
		t.Fatal("expected error for missing path")
	}
}
