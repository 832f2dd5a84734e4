package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/otcheck/pkg/codec"
	"github.com/aretw0/otcheck/pkg/core"
)

const (
	// DefaultPattern selects every case document the default codecs can read.
	DefaultPattern = "**/*.{json,yaml,yml,toml}"
	// DefaultSystemDir holds the verdict index and is never scanned for cases.
	DefaultSystemDir = ".otcheck"
)

// Config holds the configuration of a case suite.
type Config struct {
	Root      string
	Pattern   string // doublestar pattern, relative to Root
	SystemDir string // e.g. ".otcheck"
	Codecs    map[string]codec.Codec
	Logger    *slog.Logger
	// Profile identifies the validator settings; cached verdicts computed
	// under another profile are discarded.
	Profile string
	// DisableCache skips reading and writing the verdict index.
	DisableCache bool
	// ErrorHandler receives runtime failures of the watcher.
	ErrorHandler func(error)
}

// Suite is a directory of case documents.
type Suite struct {
	Path   string
	config Config
	cache  *cache

	mu            sync.RWMutex
	watcherActive bool
	lastRun       *time.Time
}

// Result is the outcome of one case file.
type Result struct {
	Path    string       `json:"path"`
	Name    string       `json:"name"`
	Verdict core.Verdict `json:"verdict"`
	Cached  bool         `json:"cached,omitempty"`
	Err     error        `json:"-"`
	Error   string       `json:"error,omitempty"`
}

// Passed reports whether the case decoded and its verdict agrees.
func (r Result) Passed() bool {
	return r.Err == nil && r.Verdict.Agrees
}

// NewSuite creates a suite rooted at config.Root.
func NewSuite(config Config) *Suite {
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Codecs == nil {
		config.Codecs = codec.DefaultCodecs(codec.Options{})
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Suite{
		Path:   config.Root,
		config: config,
		cache:  newCache(config.Root, config.SystemDir, config.Profile),
	}
}

// List returns the case files under the root, as sorted slash separated
// relative paths.
func (s *Suite) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(s.config.Pattern) {
		return nil, fmt.Errorf("%w: bad pattern %q", core.ErrInvalidConfig, s.config.Pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(s.Path), s.config.Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.Path, err)
	}

	files := make([]string, 0, len(matches))
	for _, rel := range matches {
		if s.isCase(rel) {
			files = append(files, rel)
		}
	}
	sort.Strings(files)
	return files, nil
}

// isCase reports whether a slash separated relative path names a case file.
func (s *Suite) isCase(rel string) bool {
	if rel == s.config.SystemDir || strings.HasPrefix(rel, s.config.SystemDir+"/") {
		return false
	}
	if strings.HasPrefix(path.Base(rel), TempFilePrefix) {
		return false
	}
	if _, ok := codec.ForPath(s.config.Codecs, rel); !ok {
		return false
	}
	ok, err := doublestar.Match(s.config.Pattern, rel)
	return err == nil && ok
}

// Load decodes one case file. The case name defaults to its path without
// extension.
func (s *Suite) Load(ctx context.Context, rel string) (*core.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, ok := codec.ForPath(s.config.Codecs, rel)
	if !ok {
		return nil, fmt.Errorf("%s: no codec for extension %q", rel, path.Ext(rel))
	}

	f, err := os.Open(s.abs(rel))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cs, err := c.DecodeCase(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}
	if cs.Name == "" {
		cs.Name = strings.TrimSuffix(rel, path.Ext(rel))
	}
	return cs, nil
}

// Save writes a case document atomically, encoded by the extension of rel.
func (s *Suite) Save(ctx context.Context, rel string, cs core.Case) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel = filepath.ToSlash(rel)
	c, ok := codec.ForPath(s.config.Codecs, rel)
	if !ok {
		return fmt.Errorf("%s: no codec for extension %q", rel, path.Ext(rel))
	}

	data, err := c.EncodeCase(cs)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", rel, err)
	}
	if err := writeFileAtomic(s.abs(rel), data, 0644); err != nil {
		return err
	}
	s.cache.Delete(rel)
	return nil
}

// Run validates every case of the suite. A case that fails to decode is
// reported in its Result and does not stop the run.
func (s *Suite) Run(ctx context.Context, svc *core.Service) ([]Result, error) {
	if !s.config.DisableCache {
		if err := s.cache.Load(); err != nil {
			s.config.Logger.Warn("verdict cache unavailable", "error", err)
		}
	}

	files, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(files))
	keep := make(map[string]bool, len(files))
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		keep[rel] = true
		results = append(results, s.RunOne(ctx, svc, rel))
	}

	if !s.config.DisableCache {
		s.cache.Prune(keep)
		if err := s.cache.Save(); err != nil {
			s.config.Logger.Warn("failed to save verdict cache", "error", err)
		}
	}

	s.recordRun()
	return results, nil
}

// RunOne validates a single case file, reusing a cached verdict when the file
// has not changed.
func (s *Suite) RunOne(ctx context.Context, svc *core.Service, rel string) Result {
	res := Result{Path: rel}

	info, err := os.Stat(s.abs(rel))
	if err != nil {
		return res.fail(err)
	}

	if !s.config.DisableCache {
		if entry, ok := s.cache.Get(rel, info.ModTime()); ok {
			res.Name = entry.Name
			res.Verdict = entry.Verdict
			res.Cached = true
			return res
		}
	}

	cs, err := s.Load(ctx, rel)
	if err != nil {
		s.config.Logger.Debug("case rejected", "path", rel, "error", err)
		s.cache.Delete(rel)
		return res.fail(err)
	}

	res.Name = cs.Name
	res.Verdict = svc.CheckCase(ctx, *cs)

	if !s.config.DisableCache {
		s.cache.Set(rel, &indexEntry{
			Name:         cs.Name,
			Verdict:      res.Verdict,
			LastModified: info.ModTime(),
		})
	}
	return res
}

func (r Result) fail(err error) Result {
	r.Err = err
	r.Error = err.Error()
	return r
}

func (s *Suite) abs(rel string) string {
	return filepath.Join(s.Path, filepath.FromSlash(rel))
}

// rel converts an absolute path under the root to its slash separated form.
func (s *Suite) rel(abs string) (string, error) {
	r, err := filepath.Rel(s.Path, abs)
	if err != nil {
		return "", err
	}
	if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", errors.New("path is outside the suite root")
	}
	return filepath.ToSlash(r), nil
}

func (s *Suite) recordRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastRun = &now
}
