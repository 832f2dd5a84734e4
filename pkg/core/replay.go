package core

// SkipBound selects the bound check applied to Skip during validation.
type SkipBound int

const (
	// SkipBoundLegacy flags a skip when count+cursor+1 exceeds the buffer
	// length. Existing validators behave this way, so it is the default.
	SkipBoundLegacy SkipBound = iota
	// SkipBoundExact flags a skip only when count+cursor exceeds the buffer
	// length, the same bound Delete and Apply use.
	SkipBoundExact
)

func (b SkipBound) String() string {
	switch b {
	case SkipBoundExact:
		return "exact"
	default:
		return "legacy"
	}
}

// ParseSkipBound resolves a bound policy by name ("legacy" or "exact").
func ParseSkipBound(name string) (SkipBound, error) {
	switch name {
	case "", "legacy":
		return SkipBoundLegacy, nil
	case "exact":
		return SkipBoundExact, nil
	default:
		return SkipBoundLegacy, &ConfigError{Key: "skip_bound", Value: name}
	}
}

// ReplayOption tunes a replay.
type ReplayOption func(*replayConfig)

type replayConfig struct {
	skipBound SkipBound
}

// WithSkipBound selects the Skip bound check.
func WithSkipBound(b SkipBound) ReplayOption {
	return func(c *replayConfig) {
		c.skipBound = b
	}
}

// Replay is the state left behind after replaying an operation log.
type Replay struct {
	Buffer string `json:"buffer"`
	Cursor int    `json:"cursor"`
	Valid  bool   `json:"valid"`
	// FailedAt is the index of the operation that invalidated the log, or -1.
	FailedAt int `json:"failed_at"`
	// Applied counts the operations that were processed, including the one
	// that invalidated the log.
	Applied int `json:"applied"`
}

// Run replays ops over start.
//
// Once an operation invalidates the log, the buffer and cursor are frozen and
// the remaining operations are not looked at. The invalidating operation
// itself still takes effect: a skip still moves the cursor and a delete still
// removes whatever lies in range.
func Run(start string, ops []Op, opts ...ReplayOption) Replay {
	cfg := replayConfig{skipBound: SkipBoundLegacy}
	for _, opt := range opts {
		opt(&cfg)
	}

	buf := []rune(start)
	cursor := 0
	valid := true
	failedAt := -1
	applied := 0

	for i, op := range ops {
		if !valid {
			break
		}
		applied++

		switch o := op.(type) {
		case Skip:
			limit := o.Count + cursor
			if cfg.skipBound == SkipBoundLegacy {
				limit++
			}
			if limit > len(buf) {
				valid = false
			}
			cursor += o.Count
		case Delete:
			if o.Count+cursor > len(buf) {
				valid = false
			}
			buf = splice(buf, cursor, cursor+o.Count, nil)
		case Insert:
			chars := []rune(o.Chars)
			buf = splice(buf, cursor, cursor, chars)
			cursor += len(chars)
		case Unknown:
		}

		if !valid {
			failedAt = i
		}
	}

	return Replay{
		Buffer:   string(buf),
		Cursor:   cursor,
		Valid:    valid,
		FailedAt: failedAt,
		Applied:  applied,
	}
}

// splice returns buf[:from] + repl + buf[to:], clamping both offsets to the
// buffer length.
func splice(buf []rune, from, to int, repl []rune) []rune {
	from = clamp(from, len(buf))
	to = clamp(to, len(buf))
	out := make([]rune, 0, from+len(repl)+len(buf)-to)
	out = append(out, buf[:from]...)
	out = append(out, repl...)
	return append(out, buf[to:]...)
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
