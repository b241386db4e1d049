package liveparser

import (
	"bufio"
	"io"
	"os"
)

// tail incrementally reads lines appended to a file after the point it was
// opened, the same seek-to-end-then-poll approach the reference's
// liveparser.py uses via readline() on an already-open file handle.
type tail struct {
	f   *os.File
	buf *bufio.Reader
}

func openTail(path string) (*tail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return nil, err
	}
	return &tail{f: f, buf: bufio.NewReader(f)}, nil
}

// ReadNewLines returns any complete lines appended since the last call,
// leaving a trailing partial line buffered for the next call.
func (t *tail) ReadNewLines() ([]string, error) {
	var lines []string
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				if line != "" {
					// Partial line: rewind so it is re-read once more data
					// has been appended, matching readline()'s behavior of
					// returning "" until a full line is available.
					if _, serr := t.f.Seek(-int64(len(line)), io.SeekCurrent); serr == nil {
						t.buf.Reset(t.f)
					}
				}
				return lines, nil
			}
			return lines, err
		}
		lines = append(lines, line)
	}
}

func (t *tail) Close() error {
	return t.f.Close()
}
