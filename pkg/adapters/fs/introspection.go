package fs

import (
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/otcheck/pkg/codec"
)

// SuiteState exposes internal state for observability.
type SuiteState struct {
	Root          string     `json:"root"`
	Pattern       string     `json:"pattern"`
	SystemDir     string     `json:"system_dir"`
	Profile       string     `json:"profile"`
	CacheSize     int        `json:"cache_size"`
	CacheDisabled bool       `json:"cache_disabled"`
	Codecs        []string   `json:"codecs"`
	WatcherActive bool       `json:"watcher_active"`
	LastRun       *time.Time `json:"last_run,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Suite) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SuiteState{
		Root:          s.Path,
		Pattern:       s.config.Pattern,
		SystemDir:     s.config.SystemDir,
		Profile:       s.config.Profile,
		CacheSize:     s.cache.Len(),
		CacheDisabled: s.config.DisableCache,
		Codecs:        codec.Extensions(s.config.Codecs),
		WatcherActive: s.watcherActive,
		LastRun:       s.lastRun,
	}
}

// ComponentType implements introspection.Component.
func (s *Suite) ComponentType() string {
	return "suite"
}

var _ introspection.Introspectable = (*Suite)(nil)
var _ introspection.Component = (*Suite)(nil)

func (s *Suite) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}
