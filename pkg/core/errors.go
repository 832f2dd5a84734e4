package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrDecode           = errors.New("malformed operation log")
	ErrUnknownOp        = errors.New("unknown operation kind")
	ErrSkipPastBounds   = errors.New("invalid skip past bounds")
	ErrDeletePastBounds = errors.New("invalid delete past bounds")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// DecodeError reports an operation log or case document that could not be
// turned into operations. It is never folded into a validation result.
type DecodeError struct {
	// Index of the offending record, or -1 when the document as a whole is bad.
	Index int
	// Field is the record field at fault, if any.
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Index < 0 && e.Field == "":
		return fmt.Sprintf("decode: %v", e.Err)
	case e.Index < 0:
		return fmt.Sprintf("decode: field %q: %v", e.Field, e.Err)
	case e.Field == "":
		return fmt.Sprintf("decode: op %d: %v", e.Index, e.Err)
	default:
		return fmt.Sprintf("decode: op %d: field %q: %v", e.Index, e.Field, e.Err)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is lets every DecodeError match ErrDecode, whatever its cause.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// BoundsError is returned by Apply when an operation runs past the buffer.
type BoundsError struct {
	Index int
	Op    Op
	Err   error
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("op %d (%v): %v", e.Index, e.Op, e.Err)
}

func (e *BoundsError) Unwrap() error {
	return e.Err
}

// ConfigError reports an unusable configuration value.
type ConfigError struct {
	Key   string
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s=%q", ErrInvalidConfig, e.Key, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
