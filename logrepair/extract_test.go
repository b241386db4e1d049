package logrepair

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExtractBytesCopiesExactRange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.log")
	content := "0123456789ABCDEFGHIJ"
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "out.log")
	if err := ExtractBytes(src, dst, 5, 15); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "56789ABCDE" {
		t.Errorf("ExtractBytes = %q, want %q", got, "56789ABCDE")
	}
}

func TestComposeLogfileConcatenatesIntervalsInOrder(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.log")
	content := "AAAABBBBCCCCDDDD"
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "out.log")
	if err := ComposeLogfile(src, dst, [][2]int64{{8, 12}, {0, 4}}); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "CCCCAAAA" {
		t.Errorf("ComposeLogfile = %q, want %q", got, "CCCCAAAA")
	}
}

func TestSplitByLinesCutsOnlyAtCombatGaps(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.log")

	var lines []string
	lines = append(lines, "24:01:01:00:00:00.0::a,b,c,d,e,f,g,h,i,j,1,1")
	lines = append(lines, "24:01:01:00:00:01.0::a,b,c,d,e,f,g,h,i,j,1,1")
	lines = append(lines, "24:01:01:01:00:00.0::a,b,c,d,e,f,g,h,i,j,1,1") // 1hr gap
	lines = append(lines, "24:01:01:01:00:01.0::a,b,c,d,e,f,g,h,i,j,1,1")

	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	targetDir := t.TempDir()
	paths, err := SplitByLines(src, targetDir, 2, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 output files split at the combat gap, got %d: %v", len(paths), paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
}

func TestSplitByCombatSelectsRequestedRange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.log")

	content := "24:01:01:00:00:00.0::a,b,c,d,e,f,g,h,i,j,1,1\n" +
		"24:01:01:01:00:00.0::a,b,c,d,e,f,g,h,i,j,1,1\n" + // combat 2 starts (1hr gap)
		"24:01:01:02:00:00.0::a,b,c,d,e,f,g,h,i,j,1,1\n" // combat 3 starts

	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "combat2.log")
	if err := SplitByCombat(src, dst, 2, 2, time.Minute, nil); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	want := "24:01:01:01:00:00.0::a,b,c,d,e,f,g,h,i,j,1,1\n"
	if string(got) != want {
		t.Errorf("SplitByCombat wrote %q, want %q", got, want)
	}
}
