// Package logreader implements BackwardReader, a streaming reader that
// yields the lines of a (possibly gzip-compressed) combat log file from the
// last line to the first, reading fixed-size blocks so it never holds the
// whole file in memory at once. It is grounded on the reference
// implementation's reverse chunked reader, which seeks to an offset from
// the end of the file and repeatedly grows backward.
package logreader

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// DefaultBlockSize is the chunk size read per backward step: ten times the
// platform's conventional buffered-I/O size, matching the reference
// implementation's choice.
const DefaultBlockSize = 8192 * 10

var gzipMagic = []byte{0x1f, 0x8b}

// IsGzip reports whether the file at path begins with the gzip magic
// bytes, the same detection Open uses to decide whether to decompress.
func IsGzip(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	head := make([]byte, 2)
	n, _ := io.ReadFull(f, head)
	return n == 2 && bytes.Equal(head, gzipMagic), nil
}

// Reader reads a log file backward, line by line.
type Reader struct {
	src       byteSource
	blockSize int64
	offset    int64 // bytes ignored at the end of the file, supplied by caller

	position  int64 // bytes of the file (head) not yet read into a block
	remainder []byte

	lines []string // current block, ascending file order
	idx   int       // number of lines already yielded from the tail of lines

	closer io.Closer
}

// Open opens path for backward reading, transparently detecting gzip
// compression from its magic bytes. startOffset bytes at the end of the
// file are skipped before reading begins (0 to start at the true end).
func Open(path string, startOffset int64) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	head := make([]byte, 2)
	n, _ := io.ReadFull(f, head)
	isGzip := n == 2 && bytes.Equal(head, gzipMagic)

	var src byteSource
	if isGzip {
		gs, err := newGzipSource(path)
		if err != nil {
			f.Close()
			return nil, err
		}
		src = gs
		f.Close()
	} else {
		src = &fileSource{f: f}
	}
	size, err := src.Size()
	if err != nil {
		src.Close()
		return nil, err
	}
	if startOffset < 0 || startOffset > size {
		startOffset = 0
	}
	return &Reader{
		src:       src,
		blockSize: DefaultBlockSize,
		offset:    startOffset,
		position:  size - startOffset,
	}, nil
}

// Close releases the underlying file handles.
func (r *Reader) Close() error {
	return r.src.Close()
}

// Size returns the total logical size of the log in bytes: the file size for
// plain files, the decompressed stream length for gzip input. All of the
// reader's byte positions are offsets into this logical stream.
func (r *Reader) Size() (int64, error) {
	return r.src.Size()
}

// Next returns the next line (most recent unread line first), its trailing
// newline included if the source line had one. ok is false once the start
// of the file has been reached.
func (r *Reader) Next() (line string, ok bool, err error) {
	if r.idx < len(r.lines) {
		line = r.lines[len(r.lines)-1-r.idx]
		r.idx++
		return line, true, nil
	}
	// A block whose only newline is its final byte contributes all of its
	// bytes to the remainder and yields no lines yet, so keep reading
	// earlier blocks until one produces lines or the file start is reached.
	for {
		chunk, err := r.nextChunk()
		if err != nil {
			return "", false, err
		}
		if len(chunk) == 0 {
			if r.position <= 0 && len(r.remainder) == 0 {
				return "", false, nil
			}
			continue
		}
		r.lines = chunk
		r.idx = 1
		return r.lines[len(r.lines)-1], true, nil
	}
}

// BytesRead reports how many bytes from the end of the file (beyond the
// initial startOffset) have been fully surrendered via Next so far. When
// ignoreLastLine is true, the most recently returned line is excluded,
// which is useful when that line turned out to be unparseable and the
// caller wants to resume from before it next time.
func (r *Reader) BytesRead(ignoreLastLine bool) int64 {
	ignoreN := 0
	if ignoreLastLine {
		ignoreN = 1
	}
	headCount := len(r.lines) - r.idx + ignoreN
	if headCount < 0 {
		headCount = 0
	}
	if headCount > len(r.lines) {
		headCount = len(r.lines)
	}
	var notConsumed int64 = int64(len(r.remainder))
	for _, l := range r.lines[:headCount] {
		notConsumed += int64(len(l))
	}
	size, _ := r.src.Size()
	return size - r.position - notConsumed - r.offset
}

func (r *Reader) nextChunk() ([]string, error) {
	newPosition := r.position - r.blockSize
	var lineBytes []byte
	if newPosition <= 0 {
		data, err := r.src.ReadRange(0, r.position)
		if err != nil {
			return nil, err
		}
		data = append(data, r.remainder...)
		r.remainder = nil
		r.position = 0
		lineBytes = data
	} else {
		data, err := r.src.ReadRange(newPosition, r.position)
		if err != nil {
			return nil, err
		}
		data = append(data, r.remainder...)
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			r.remainder = append([]byte(nil), data[:i+1]...)
			lineBytes = data[i+1:]
		} else {
			// No line boundary in this block: the whole block is part of a
			// line continuing into the earlier block, so it all stays in the
			// remainder.
			r.remainder = append([]byte(nil), data...)
		}
		r.position = newPosition
	}
	return splitLinesKeepEnds(lineBytes), nil
}

func splitLinesKeepEnds(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(b); i++ {
		if b[i] == '\n' {
			lines = append(lines, string(b[start:i+1]))
			start = i + 1
		}
	}
	if start < len(b) {
		lines = append(lines, string(b[start:]))
	}
	return lines
}

// byteSource abstracts random-access reads over plain and gzip-compressed
// files so BackwardReader's block logic stays identical for both.
type byteSource interface {
	Size() (int64, error)
	ReadRange(start, end int64) ([]byte, error)
	Close() error
}

type fileSource struct {
	f *os.File
}

func (s *fileSource) Size() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *fileSource) ReadRange(start, end int64) ([]byte, error) {
	buf := make([]byte, end-start)
	_, err := s.f.ReadAt(buf, start)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

func (s *fileSource) Close() error { return s.f.Close() }

// gzipSource provides random access over a gzip stream by re-decompressing
// from the start and discarding bytes up to the desired offset, the same
// approach the reference implementation relies on for backward seeking
// within a compressed log.
type gzipSource struct {
	path string
	size int64
}

func newGzipSource(path string) (*gzipSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("logreader: opening gzip stream: %w", err)
	}
	defer gz.Close()
	n, err := io.Copy(io.Discard, gz)
	if err != nil {
		return nil, fmt.Errorf("logreader: measuring gzip stream: %w", err)
	}
	return &gzipSource{path: path, size: n}, nil
}

func (s *gzipSource) Size() (int64, error) { return s.size, nil }

func (s *gzipSource) ReadRange(start, end int64) ([]byte, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	if _, err := io.CopyN(io.Discard, gz, start); err != nil {
		return nil, err
	}
	buf := make([]byte, end-start)
	if _, err := io.ReadFull(gz, buf); err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf, nil
}

func (s *gzipSource) Close() error { return nil }
