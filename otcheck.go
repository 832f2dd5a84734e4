package otcheck

import (
	"context"
	"log/slog"

	"github.com/aretw0/otcheck/internal/platform"
	"github.com/aretw0/otcheck/pkg/adapters/fs"
	"github.com/aretw0/otcheck/pkg/core"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Op is a single edit operation.
type Op = core.Op

// Operation variants.
type (
	Skip   = core.Skip
	Delete = core.Delete
	Insert = core.Insert
)

// Case is a stored validation case.
type Case = core.Case

// Verdict is the detailed outcome of a validation.
type Verdict = core.Verdict

// Service validates wire-encoded operation logs.
type Service = core.Service

// Suite is a directory of case documents.
type Suite = fs.Suite

// SkipBound selects the bound check applied to skips.
type SkipBound = core.SkipBound

const (
	SkipBoundLegacy = core.SkipBoundLegacy
	SkipBoundExact  = core.SkipBoundExact
)

// --- Configuration ---

// Option defines a functional option for configuring otcheck.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithFormat selects the wire format of operation logs ("json", "yaml", "toml").
func WithFormat(name string) Option {
	return platform.WithFormat(name)
}

// WithStrictKinds rejects operation records of an unknown kind.
func WithStrictKinds(strict bool) Option {
	return platform.WithStrictKinds(strict)
}

// WithStrictNumbers keeps JSON numbers as json.Number.
func WithStrictNumbers(strict bool) Option {
	return platform.WithStrictNumbers(strict)
}

// WithSkipBound selects the skip bound check.
func WithSkipBound(b SkipBound) Option {
	return platform.WithSkipBound(b)
}

// WithPattern sets the doublestar pattern selecting case files.
func WithPattern(pattern string) Option {
	return platform.WithPattern(pattern)
}

// WithSystemDir sets the hidden directory name (e.g. ".otcheck").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithErrorHandler registers a callback for watcher failures.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// WithCache enables or disables the persistent verdict index.
func WithCache(enabled bool) Option {
	return platform.WithCache(enabled)
}

// --- Factory ---

// New creates a new validation Service.
func New(opts ...Option) (*core.Service, error) {
	return platform.New(opts...)
}

// OpenSuite opens the case suite rooted at root.
func OpenSuite(root string, opts ...Option) (*fs.Suite, error) {
	return platform.OpenSuite(root, opts...)
}

// FindRoot looks upwards for a directory holding .otcheck or .git.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// --- Operations ---

// Validate decodes the JSON operation log ots and reports whether the
// computed match status of replaying it from start equals real.
func Validate(start any, end, ots string, real bool) (bool, error) {
	svc, err := platform.New()
	if err != nil {
		return false, err
	}
	return svc.ValidateWire(context.Background(), start, end, []byte(ots), real)
}

// Apply commits ops onto contents, failing on the first out of bounds operation.
func Apply(contents string, ops []Op) (string, error) {
	return core.Apply(contents, ops)
}

// Diff derives the operation log that turns oldText into newText.
func Diff(oldText, newText string) []Op {
	return core.Diff(oldText, newText)
}
