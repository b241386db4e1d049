// Package logrepair implements §4.8's byte-exact patching of malformed
// multi-line log entries and byte-range extraction/composition, grounded on
// the reference implementation's iofunc.py (save_log, split_log_by_lines,
// split_log_by_combat) and its constants.PATCHES / MULTILINE_PATCHES tables.
package logrepair

import (
	"bufio"
	"bytes"
	"os"

	"github.com/STOCD/OSCR/oscrerr"
)

// Repair scans the file at path, applies Patches and MultilinePatches, drops
// empty lines, and atomically replaces the original file with the result.
// tempDir holds the intermediate file while it is built; on success it is
// removed by the rename, on failure it is left behind so the caller can
// recover the partially repaired content.
func Repair(path, tempDir string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lines := splitLines(raw)

	tmp, err := os.CreateTemp(tempDir, "oscr-repair-*.log")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	w := bufio.NewWriter(tmp)

	for i := 0; i < len(lines); {
		if replacement, span, ok := matchMultiline(lines, i); ok {
			w.Write(replacement)
			i += span
			continue
		}
		patched := applyPatches(lines[i])
		if len(bytes.TrimSpace(patched)) == 0 {
			i++
			continue
		}
		w.Write(patched)
		if !bytes.HasSuffix(patched, []byte("\n")) {
			w.WriteByte('\n')
		}
		i++
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &oscrerr.PermissionError{Path: path, TempPath: tmpPath, Err: err}
	}
	return nil
}

// splitLines splits raw into lines, each retaining its trailing newline
// except possibly the last.
func splitLines(raw []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range raw {
		if b == '\n' {
			lines = append(lines, raw[start:i+1])
			start = i + 1
		}
	}
	if start < len(raw) {
		lines = append(lines, raw[start:])
	}
	return lines
}

func applyPatches(line []byte) []byte {
	for _, p := range Patches {
		line = bytes.ReplaceAll(line, p.Old, p.New)
	}
	return line
}

// matchMultiline checks whether the Span lines starting at i match a
// MultilinePatch: its Identifier must appear in the first line, and the
// Span lines, each trimmed of surrounding whitespace (its newline included)
// and joined with no separator, must contain Match.
func matchMultiline(lines [][]byte, i int) (replacement []byte, span int, ok bool) {
	for _, p := range MultilinePatches {
		if p.Span <= 0 || i+p.Span > len(lines) {
			continue
		}
		if !bytes.Contains(lines[i], p.Identifier) {
			continue
		}
		var joined bytes.Buffer
		for _, l := range lines[i : i+p.Span] {
			joined.Write(bytes.TrimSpace(l))
		}
		if bytes.Contains(joined.Bytes(), p.Match) {
			return p.Replacement, p.Span, true
		}
	}
	return nil, 0, false
}
