// Package orchestrator implements the public façade spec §5/§6 describe:
// analyze/isolate/export over a combat log, backed by a combat-id-indexed
// cache and an optional fixed worker pool. Grounded on the reference's OSCR
// class (main.py: analyze_log_file, navigate_log, export_combat) and the
// teacher's LRU-cached fetch-by-id service façade (logviz/service.Service).
package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/simplelru"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/STOCD/OSCR/analysis"
	"github.com/STOCD/OSCR/combatsplit"
	"github.com/STOCD/OSCR/config"
	"github.com/STOCD/OSCR/logline"
	"github.com/STOCD/OSCR/logreader"
	"github.com/STOCD/OSCR/logrepair"
	"github.com/STOCD/OSCR/mapdetect"
	"github.com/STOCD/OSCR/oscrerr"
	"github.com/STOCD/OSCR/oscrlog"
)

// Combat is a fully isolated, map-detected, and (once analyzed) scored
// engagement — the unit of work the Orchestrator hands to consumers.
type Combat struct {
	ID         int
	Path       string
	Start, End int64 // byte range [Start, End) in Path

	StartTime, EndTime time.Time

	Map, Difficulty string
	CritterMeta     map[string]mapdetect.CritterMeta

	Result *analysis.Result
}

// ErrorHandler is invoked with an error that escaped the BackwardReader or
// Analyzer (spec §7). Returning nil swallows the error and skips the
// offending line or combat; returning an error (including the same one)
// aborts the current scan. For a BackwardReader read error there is nothing
// to skip: returning nil ends the scan there, as if the start of the file had
// been reached. DefaultErrorHandler rethrows.
type ErrorHandler func(err error) error

// DefaultErrorHandler rethrows unconditionally, matching spec §7's "an
// error-handler callback that defaults to rethrowing".
func DefaultErrorHandler(err error) error { return err }

// Orchestrator is the public façade over isolate/analyze/export.
type Orchestrator struct {
	settings config.Settings
	workers  int
	tempDir  string
	onError  ErrorHandler

	mu     sync.Mutex
	cache  *simplelru.LRU
	nextID int
	// cursor remembers, per source path, the byte offset NavigateOlder
	// should resume the BackwardReader from (spec §9's redesign of the
	// reference's temp-file-based navigate_log).
	cursor map[string]int64
}

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithWorkers overrides the fixed worker pool size (spec §5 default 4).
func WithWorkers(n int) Option {
	return func(o *Orchestrator) { o.workers = n }
}

// WithErrorHandler overrides the default rethrowing error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *Orchestrator) { o.onError = h }
}

// New creates an Orchestrator, wiping and recreating its temp directory
// (spec §5's "temporary directory is owned exclusively by the Orchestrator
// and wiped on construction").
func New(settings config.Settings, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		settings: settings,
		workers:  4,
		onError:  DefaultErrorHandler,
		cursor:   map[string]int64{},
	}
	for _, opt := range opts {
		opt(o)
	}
	cacheSize := settings.CombatsToParse
	if cacheSize <= 0 {
		cacheSize = 10
	}
	cache, err := simplelru.NewLRU(cacheSize, nil)
	if err != nil {
		return nil, err
	}
	o.cache = cache

	tempDir := settings.TempLogFolder
	if tempDir == "" {
		if exe, err := os.Executable(); err == nil {
			tempDir = filepath.Join(filepath.Dir(exe), "oscr_temp")
		} else {
			tempDir = filepath.Join(os.TempDir(), "oscr_temp")
		}
	}
	if err := os.RemoveAll(tempDir); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, err
	}
	o.tempDir = tempDir
	return o, nil
}

// TempDir returns the Orchestrator-owned scratch directory.
func (o *Orchestrator) TempDir() string { return o.tempDir }

// Close destroys the worker pool (implicitly, since AnalyzeAllParallel's
// errgroup is scoped to its own call) and removes the temp directory.
func (o *Orchestrator) Close() error {
	return os.RemoveAll(o.tempDir)
}

// Combat fetches a previously analyzed combat from the cache by id.
func (o *Orchestrator) Combat(id int) (*Combat, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Combat), true
}

func (o *Orchestrator) statSource(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &oscrerr.PathNotFound{Path: path}
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, &oscrerr.NotAFile{Path: path}
	}
	if info.Size() == 0 {
		return nil, &oscrerr.EmptyLog{Path: path}
	}
	return info, nil
}

// Isolate scans path backward from startOffset and returns up to
// maxCombats combat boundaries (most recent first), without running the
// Analyzer. nextOffset is where a subsequent call should resume to
// continue scanning toward the start of the file (spec §5/§9's navigation
// redesign). maxCombats <= 0 means unbounded (scan the whole file).
func (o *Orchestrator) Isolate(path string, startOffset int64, maxCombats int) (combats []combatsplit.BoundCombat, nextOffset int64, err error) {
	if _, err := o.statSource(path); err != nil {
		return nil, 0, err
	}

	reader, err := logreader.Open(path, startOffset)
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close()

	// Byte positions are offsets into the reader's logical stream, which for
	// gzip input is the decompressed length rather than the file size.
	size, err := reader.Size()
	if err != nil {
		return nil, 0, err
	}

	splitter := combatsplit.NewSplitter(combatsplit.StreamConfig{
		InactivityGap:    o.settings.InactivityGap(),
		MinLines:         o.settings.CombatMinLines,
		BannedEventNames: combatsplit.BannedEvents,
		MaxCombats:       maxCombats,
	}, size-startOffset)

	reachedStart := true
	for {
		raw, ok, rerr := reader.Next()
		if rerr != nil {
			if handled := o.onError(rerr); handled != nil {
				return combats, 0, handled
			}
			break
		}
		if !ok {
			break
		}
		line, perr := logline.Parse(raw)
		if perr != nil {
			wrapped := &oscrerr.MalformedLine{Line: raw, Reason: perr.Error()}
			if handled := o.onError(wrapped); handled != nil {
				return combats, 0, handled
			}
			continue
		}
		bytePos := (size - startOffset) - reader.BytesRead(true)
		closed, got, stop := splitter.Push(line, bytePos)
		if got {
			combats = append(combats, closed)
		}
		if stop {
			// Resume before the line just surrendered: it opened the next
			// (older) combat and must be re-read by the continuation scan.
			reachedStart = false
			nextOffset = reader.BytesRead(true) + startOffset
			break
		}
	}
	if reachedStart {
		if closed, got := splitter.Finish(0); got {
			combats = append(combats, closed)
		}
		nextOffset = size
	}
	return combats, nextOffset, nil
}

// NavigateOlder returns the next batch of up to maxCombats combats older
// than any previously returned for path, resuming from the cursor left by
// the prior call (or the end of the file on the first call).
func (o *Orchestrator) NavigateOlder(path string, maxCombats int) ([]combatsplit.BoundCombat, error) {
	o.mu.Lock()
	offset := o.cursor[path]
	o.mu.Unlock()

	combats, next, err := o.Isolate(path, offset, maxCombats)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	o.cursor[path] = next
	o.mu.Unlock()
	return combats, nil
}

// nextCombatID hands out ids in isolation order (newest combat first), so ids
// stay unique and monotonic within one Orchestrator even when analysis itself
// runs on the worker pool in nondeterministic completion order. The counter
// is never reset: analyzing the same log again assigns new ids.
func (o *Orchestrator) nextCombatID() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextID
	o.nextID++
	return id
}

// analyzeOne runs map detection and the Analyzer over a single bound
// combat, producing the cacheable Combat the façade returns.
func (o *Orchestrator) analyzeOne(path string, id int, bc combatsplit.BoundCombat) (*Combat, error) {
	mapName, difficulty := "Combat", ""
	for _, line := range bc.Lines {
		m, d := mapdetect.DetectLine(line.TargetID)
		if m != "Combat" {
			mapName, difficulty = m, d
			break
		}
	}
	critterMeta := mapdetect.BuildCritterMeta(bc.Lines)
	difficulty = mapdetect.DetectDifficulty(mapName, difficulty, critterMeta)

	result, err := analysis.Analyze(bc.Combat, analysis.Options{
		GraphResolution: o.settings.GraphResolution,
		HealPredicate:   o.settings.HealPredicate,
		HiveSpace:       mapdetect.IsHiveSpace(mapName),
	})
	if err != nil {
		return nil, err
	}

	c := &Combat{
		ID:          id,
		Path:        path,
		Start:       bc.Start,
		End:         bc.End,
		StartTime:   bc.StartTime,
		EndTime:     bc.EndTime,
		Map:         mapName,
		Difficulty:  difficulty,
		CritterMeta: critterMeta,
		Result:      result,
	}
	o.mu.Lock()
	o.cache.Add(id, c)
	o.mu.Unlock()
	return c, nil
}

// AnalyzeAll isolates and analyzes up to maxCombats combats from path
// in-process, sequentially. Results are cached and also returned, newest
// combat first (the BackwardReader's natural order).
func (o *Orchestrator) AnalyzeAll(ctx context.Context, path string, maxCombats int) ([]*Combat, error) {
	bound, _, err := o.Isolate(path, 0, maxCombats)
	if err != nil {
		return nil, err
	}
	combats := make([]*Combat, 0, len(bound))
	for _, bc := range bound {
		if err := ctx.Err(); err != nil {
			return combats, err
		}
		c, aerr := o.analyzeOne(path, o.nextCombatID(), bc)
		if aerr != nil {
			if handled := o.onError(aerr); handled != nil {
				return combats, handled
			}
			continue
		}
		combats = append(combats, c)
	}
	return combats, nil
}

// AnalyzeAllParallel behaves like AnalyzeAll but fans the Analyzer step out
// across a fixed pool of o.workers goroutines (spec §5's concurrency model),
// grounded on the teacher's errgroup+semaphore worker-pool usage. Isolation
// itself remains a single sequential pass, since the splitter is inherently
// stateful over the byte stream; only the independent per-combat analysis
// work is parallelized. Unlike AnalyzeAll, Analyzer errors are not passed to
// the error handler: the first one cancels the remaining work, is logged,
// and is returned with no combats.
func (o *Orchestrator) AnalyzeAllParallel(ctx context.Context, path string, maxCombats int) ([]*Combat, error) {
	bound, _, err := o.Isolate(path, 0, maxCombats)
	if err != nil {
		return nil, err
	}

	combats := make([]*Combat, len(bound))
	sem := semaphore.NewWeighted(int64(o.workers))
	g, gctx := errgroup.WithContext(ctx)
	for i, bc := range bound {
		i, bc := i, bc
		id := o.nextCombatID()
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			c, aerr := o.analyzeOne(path, id, bc)
			if aerr != nil {
				// A worker failure tears down the whole pool: the errgroup
				// context cancels the remaining acquisitions.
				return aerr
			}
			combats[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		oscrlog.Error.Printf("analyzing %s: %v", path, err)
		return nil, err
	}
	out := combats[:0]
	for _, c := range combats {
		if c != nil {
			out = append(out, c)
		}
	}
	return out, ctx.Err()
}

// ExportCombat writes combat's raw lines, as plain text, to a sanitized
// filename under dstDir (spec §4.8's export path). It returns the full
// destination path written.
func (o *Orchestrator) ExportCombat(c *Combat, dstDir string) (string, error) {
	name := logrepair.SanitizeFileName(exportFileName(c))
	dst := filepath.Join(dstDir, name)
	if err := logrepair.ExtractBytes(c.Path, dst, c.Start, c.End); err != nil {
		return "", err
	}
	return dst, nil
}

func exportFileName(c *Combat) string {
	stamp := c.StartTime.Format("2006-01-02_15-04-05")
	diff := c.Difficulty
	if diff != "" {
		diff = "_" + diff
	}
	return stamp + "_" + c.Map + diff + ".log"
}
