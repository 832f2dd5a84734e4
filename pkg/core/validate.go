package core

// Case is a stored validation request.
type Case struct {
	Name  string
	Start any
	End   string
	Ops   []Op
	Real  bool
}

// Verdict is the outcome of validating one operation log.
type Verdict struct {
	Replay
	// Result is true when the log replayed cleanly and produced End.
	Result bool `json:"result"`
	// Real is the externally asserted expectation.
	Real bool `json:"real"`
	// Agrees reports Result == Real. It is the boolean callers act on.
	Agrees   bool   `json:"agrees"`
	Checksum uint32 `json:"crc32"`
}

// Check replays ops over the text form of start and compares the outcome
// against end and the asserted expectation real.
func Check(start any, end string, ops []Op, real bool, opts ...ReplayOption) Verdict {
	r := Run(Text(start), ops, opts...)
	result := r.Valid && r.Buffer == end
	return Verdict{
		Replay:   r,
		Result:   result,
		Real:     real,
		Agrees:   result == real,
		Checksum: Checksum(r.Buffer),
	}
}

// Validate reports whether the log's computed match status equals real.
func Validate(start any, end string, ops []Op, real bool, opts ...ReplayOption) bool {
	return Check(start, end, ops, real, opts...).Agrees
}

// CheckCase is Check applied to a stored case.
func CheckCase(c Case, opts ...ReplayOption) Verdict {
	return Check(c.Start, c.End, c.Ops, c.Real, opts...)
}
