// Package includes implements the recursive include-symbol loader (spec
// §4.7): for each resolved #include target reachable from a root file, it
// runs the same preprocessor+lexer+parser pipeline on that file, collects
// its top-level function and variable names, and recurses into its own
// includes. The result feeds analyzer.Analyze as an IncludeSymbols value.
//
// Loaded files are cached keyed by absolute path + mtime (spec §9 resource
// policy: "keyed by absolute path + mtime, LRU-evictable"), with an
// fsnotify.Watcher invalidating an entry the moment its file changes on
// disk.
package includes

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lsl-tools/lslintel/internal/analyzer"
	"github.com/lsl-tools/lslintel/internal/ast"
	"github.com/lsl-tools/lslintel/internal/config"
	"github.com/lsl-tools/lslintel/internal/diagnostics"
	"github.com/lsl-tools/lslintel/internal/lexer"
	"github.com/lsl-tools/lslintel/internal/parser"
	"github.com/lsl-tools/lslintel/internal/preprocessor"
)

// fileSymbols is one file's own contribution: its top-level declarations,
// its macro table, and the (still-unresolved-further) includes it names.
type fileSymbols struct {
	Functions []string
	Globals   []string
	Macros    map[string]*preprocessor.Macro
	Includes  []string
}

type cacheEntry struct {
	modTime time.Time
	symbols *fileSymbols
}

// Loader loads and caches include-symbol sets across analysis runs of a
// project. It is safe for concurrent use.
type Loader struct {
	cfg *config.Config

	mu         sync.Mutex
	cache      map[string]*cacheEntry
	recency    []string // least-recently-used first
	maxEntries int

	watcher     *fsnotify.Watcher
	watchedDirs map[string]bool
}

// NewLoader creates a Loader backed by an fsnotify watcher. Call Close when
// done to stop the watcher goroutine.
func NewLoader(cfg *config.Config, maxEntries int) (*Loader, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if maxEntries <= 0 {
		maxEntries = 256
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	l := &Loader{
		cfg:         cfg,
		cache:       make(map[string]*cacheEntry),
		maxEntries:  maxEntries,
		watcher:     w,
		watchedDirs: make(map[string]bool),
	}

	go l.watchLoop()

	return l, nil
}

// Close stops the underlying filesystem watcher.
func (l *Loader) Close() error {
	return l.watcher.Close()
}

func (l *Loader) watchLoop() {
	for {
		select {
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}

			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				l.invalidate(ev.Name)
			}
		case _, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (l *Loader) invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.cache, abs)
	l.dropFromRecency(abs)
}

// Load resolves the transitive include-symbol set reachable from
// rootResolvedIncludes (the already-resolved include paths a root file's
// own preprocessor.Result reported) and returns it as an
// analyzer.IncludeSymbols ready to pass to analyzer.Analyze.
//
// A path visited twice (an include cycle, or a diamond include seen from
// two branches) contributes its symbols only once. An unreadable or
// unparsable file contributes an empty symbol set rather than failing the
// whole load, per spec §4.7.
func (l *Loader) Load(rootResolvedIncludes []string) *analyzer.IncludeSymbols {
	out := &analyzer.IncludeSymbols{}
	visited := make(map[string]bool)

	for _, p := range rootResolvedIncludes {
		l.loadFile(p, visited, out)
	}

	return out
}

func (l *Loader) loadFile(path string, visited map[string]bool, out *analyzer.IncludeSymbols) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	if visited[abs] {
		return
	}
	visited[abs] = true

	fs, ok := l.getOrParse(abs)
	if !ok {
		return
	}

	out.Functions = append(out.Functions, fs.Functions...)
	out.Globals = append(out.Globals, fs.Globals...)

	for _, child := range fs.Includes {
		l.loadFile(child, visited, out)
	}
}

func (l *Loader) getOrParse(abs string) (*fileSymbols, bool) {
	info, err := os.Stat(abs)
	if err != nil {
		return nil, false
	}

	l.mu.Lock()
	if entry, hit := l.cache[abs]; hit && entry.modTime.Equal(info.ModTime()) {
		l.touch(abs)
		l.mu.Unlock()

		return entry.symbols, true
	}
	l.mu.Unlock()

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, false
	}

	fs, ok := parseFile(abs, string(data), l.cfg)
	if !ok {
		return nil, false
	}

	l.mu.Lock()
	l.cache[abs] = &cacheEntry{modTime: info.ModTime(), symbols: fs}
	l.touch(abs)
	l.evictIfNeeded()
	l.mu.Unlock()

	l.watchDir(abs)

	return fs, true
}

// touch moves abs to the most-recently-used end. Caller holds l.mu.
func (l *Loader) touch(abs string) {
	l.dropFromRecency(abs)
	l.recency = append(l.recency, abs)
}

// dropFromRecency removes abs from the recency list if present. Caller
// holds l.mu.
func (l *Loader) dropFromRecency(abs string) {
	for i, p := range l.recency {
		if p == abs {
			l.recency = append(l.recency[:i], l.recency[i+1:]...)
			return
		}
	}
}

// evictIfNeeded drops least-recently-used entries past maxEntries. Caller
// holds l.mu.
func (l *Loader) evictIfNeeded() {
	for len(l.recency) > l.maxEntries {
		oldest := l.recency[0]
		l.recency = l.recency[1:]
		delete(l.cache, oldest)
	}
}

// watchDir registers abs's directory with the watcher, once per directory.
// Directories are never unwatched on eviction: re-adding a watch is not
// free, most projects touch a small, stable set of include directories,
// and a stray watch on a long-idle directory costs nothing but an open
// file descriptor.
func (l *Loader) watchDir(abs string) {
	dir := filepath.Dir(abs)

	l.mu.Lock()
	already := l.watchedDirs[dir]
	if !already {
		l.watchedDirs[dir] = true
	}
	l.mu.Unlock()

	if !already {
		_ = l.watcher.Add(dir)
	}
}

// parseFile runs the full preprocessor+lexer+parser pipeline over one
// include file's content and extracts its top-level symbols. A
// preprocessor or parse error yields an empty-but-valid fileSymbols
// (spec §4.7: "failures... yield an empty symbol set and are non-fatal"),
// not a loader failure — the caller still caches the result so a broken
// include isn't reparsed on every analysis run.
func parseFile(path, content string, cfg *config.Config) (*fileSymbols, bool) {
	pres := preprocessor.Process(content, cfg, path)

	toks := make([]lexer.Token, len(pres.ExpandedTokens))
	for i, et := range pres.ExpandedTokens {
		toks[i] = et.Token
	}

	diags := diagnostics.NewCollection()
	script := parser.New(toks, diags, path).Parse()

	fs := &fileSymbols{Macros: pres.Macros}

	if !pres.Diagnostics.HasErrors() && !diags.HasErrors() {
		for _, g := range script.Globals {
			switch n := g.(type) {
			case *ast.FunctionDecl:
				fs.Functions = append(fs.Functions, n.Name)
			case *ast.VarDecl:
				fs.Globals = append(fs.Globals, n.Name)
			}
		}
	}

	for _, inc := range pres.Includes {
		if inc.Resolved != "" {
			fs.Includes = append(fs.Includes, inc.Resolved)
		}
	}

	return fs, true
}
