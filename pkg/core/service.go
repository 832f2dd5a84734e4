package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// Decoder turns a wire-encoded operation log into operations.
type Decoder interface {
	DecodeOps(r io.Reader) ([]Op, error)
}

// ServiceConfig holds the knobs of a Service.
type ServiceConfig struct {
	Logger    *slog.Logger
	SkipBound SkipBound
}

// Service validates operation logs received on the wire.
// Each call replays on its own state; only the counters are shared.
type Service struct {
	decoder Decoder
	logger  *slog.Logger
	bound   SkipBound

	mu    sync.RWMutex
	stats Stats
}

// Stats counts what a Service has seen.
type Stats struct {
	Validations    int `json:"validations"`
	Agreements     int `json:"agreements"`
	DecodeFailures int `json:"decode_failures"`
}

// NewService creates a new Service.
func NewService(dec Decoder, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		decoder: dec,
		logger:  logger,
		bound:   cfg.SkipBound,
	}
}

// DecodeOps decodes a wire-encoded operation log.
func (s *Service) DecodeOps(ctx context.Context, ots []byte) ([]Op, error) {
	if s.decoder == nil {
		return nil, errors.New("service has no decoder")
	}
	ops, err := s.decoder.DecodeOps(bytes.NewReader(ots))
	if err != nil {
		s.mu.Lock()
		s.stats.DecodeFailures++
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "operation log rejected", "error", err)
		return nil, err
	}
	return ops, nil
}

// ValidateWire decodes ots and reports whether the computed match status of
// the log equals real. A decode failure yields an error and no boolean.
func (s *Service) ValidateWire(ctx context.Context, start any, end string, ots []byte, real bool) (bool, error) {
	ops, err := s.DecodeOps(ctx, ots)
	if err != nil {
		return false, err
	}
	return s.Check(ctx, start, end, ops, real).Agrees, nil
}

// Check validates an already decoded log.
func (s *Service) Check(ctx context.Context, start any, end string, ops []Op, real bool) Verdict {
	v := Check(start, end, ops, real, WithSkipBound(s.bound))

	s.mu.Lock()
	s.stats.Validations++
	if v.Agrees {
		s.stats.Agreements++
	}
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "operation log validated",
		"ops", len(ops),
		"applied", v.Applied,
		"valid", v.Valid,
		"failed_at", v.FailedAt,
		"result", v.Result,
		"real", v.Real,
		"agrees", v.Agrees,
	)
	return v
}

// CheckCase validates a stored case.
func (s *Service) CheckCase(ctx context.Context, c Case) Verdict {
	return s.Check(ctx, c.Start, c.End, c.Ops, c.Real)
}

// Replay replays ops over start without judging the outcome.
func (s *Service) Replay(ctx context.Context, start any, ops []Op) Replay {
	return Run(Text(start), ops, WithSkipBound(s.bound))
}

// Apply commits ops onto contents, failing on the first out of bounds operation.
func (s *Service) Apply(ctx context.Context, contents string, ops []Op) (string, error) {
	out, err := Apply(contents, ops)
	if err != nil {
		s.logger.DebugContext(ctx, "apply rejected", "error", err)
		return "", err
	}
	return out, nil
}

// Diff derives the operation log that turns oldText into newText.
func (s *Service) Diff(ctx context.Context, oldText, newText string) []Op {
	return Diff(oldText, newText)
}

// Stats returns a snapshot of the counters.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
