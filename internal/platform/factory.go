package platform

import (
	"fmt"

	"github.com/aretw0/otcheck/pkg/adapters/fs"
	"github.com/aretw0/otcheck/pkg/codec"
	"github.com/aretw0/otcheck/pkg/core"
)

// New builds a validation service decoding logs in the configured format.
//
//	svc, err := otcheck.New(otcheck.WithFormat("yaml"), otcheck.WithStrictKinds(true))
func New(opts ...Option) (*core.Service, error) {
	o := apply(opts)
	return newService(o)
}

func newService(o *options) (*core.Service, error) {
	dec, err := codec.ForFormat(o.format, o.codec)
	if err != nil {
		return nil, err
	}
	return core.NewService(dec, core.ServiceConfig{
		Logger:    o.logger,
		SkipBound: o.skipBound,
	}), nil
}

// OpenSuite opens the case suite rooted at root.
func OpenSuite(root string, opts ...Option) (*fs.Suite, error) {
	o := apply(opts)
	if root == "" {
		return nil, fmt.Errorf("%w: empty suite root", core.ErrInvalidConfig)
	}

	return fs.NewSuite(fs.Config{
		Root:         root,
		Pattern:      o.pattern,
		SystemDir:    o.systemDir,
		Codecs:       codec.DefaultCodecs(o.codec),
		Logger:       o.logger,
		Profile:      profile(o),
		DisableCache: !o.cache,
		ErrorHandler: o.errorHandler,
	}), nil
}

// profile names the settings a cached verdict depends on.
func profile(o *options) string {
	return fmt.Sprintf("bound=%s,strict-kinds=%t,strict-numbers=%t",
		o.skipBound, o.codec.StrictKinds, o.codec.StrictNumbers)
}
