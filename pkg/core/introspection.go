package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Decoder   string `json:"decoder"`
	SkipBound string `json:"skip_bound"`
	Stats     Stats  `json:"stats"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decoder := "none"
	if s.decoder != nil {
		decoder = "decoder"
		if comp, ok := s.decoder.(introspection.Component); ok {
			decoder = comp.ComponentType()
		}
	}

	return ServiceState{
		Decoder:   decoder,
		SkipBound: s.bound.String(),
		Stats:     s.stats,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "validator"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
