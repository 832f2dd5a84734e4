package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/aretw0/otcheck/pkg/core"
)

// record is the wire shape of one operation.
type record struct {
	Op    string  `json:"op" yaml:"op" toml:"op"`
	Count *int    `json:"count,omitempty" yaml:"count,omitempty" toml:"count,omitempty"`
	Chars *string `json:"chars,omitempty" yaml:"chars,omitempty" toml:"chars,omitempty"`
}

// caseDoc is the wire shape of a case document.
type caseDoc struct {
	Name  string   `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Start any      `json:"start" yaml:"start" toml:"start"`
	End   string   `json:"end" yaml:"end" toml:"end"`
	Ops   []record `json:"ops" yaml:"ops" toml:"ops"`
	Real  bool     `json:"real" yaml:"real" toml:"real"`
}

var (
	errMissing  = errors.New("missing required field")
	errNotList  = errors.New("operation log must be a list")
	errNotMap   = errors.New("operation must be a mapping")
	errNotText  = errors.New("expected text")
	errNotBool  = errors.New("expected boolean")
	errNotCount = errors.New("expected a non-negative integer")
)

func toRecords(ops []core.Op) []record {
	out := make([]record, len(ops))
	for i, op := range ops {
		switch o := op.(type) {
		case core.Skip:
			n := o.Count
			out[i] = record{Op: string(core.KindSkip), Count: &n}
		case core.Delete:
			n := o.Count
			out[i] = record{Op: string(core.KindDelete), Count: &n}
		case core.Insert:
			s := o.Chars
			out[i] = record{Op: string(core.KindInsert), Chars: &s}
		case core.Unknown:
			out[i] = record{Op: o.Name}
		}
	}
	return out
}

func toCaseDoc(c core.Case) caseDoc {
	start := c.Start
	if start == nil {
		start = ""
	}
	return caseDoc{
		Name:  c.Name,
		Start: start,
		End:   c.End,
		Ops:   toRecords(c.Ops),
		Real:  c.Real,
	}
}

// opsFromValue converts a generically decoded list into operations.
func opsFromValue(v any, strictKinds bool) ([]core.Op, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &core.DecodeError{Index: -1, Err: errNotList}
	}

	ops := make([]core.Op, 0, len(list))
	for i, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, &core.DecodeError{Index: i, Err: errNotMap}
		}
		op, err := opFromRecord(i, rec, strictKinds)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func opFromRecord(i int, rec map[string]any, strictKinds bool) (core.Op, error) {
	raw, ok := rec["op"]
	if !ok {
		return nil, &core.DecodeError{Index: i, Field: "op", Err: errMissing}
	}
	kind, ok := raw.(string)
	if !ok {
		// A kind that is not text can never match a known kind.
		if strictKinds {
			return nil, &core.DecodeError{Index: i, Field: "op", Err: fmt.Errorf("%w: %v", core.ErrUnknownOp, raw)}
		}
		return core.Unknown{Name: fmt.Sprint(raw)}, nil
	}

	switch core.OpKind(kind) {
	case core.KindSkip, core.KindDelete:
		c, ok := rec["count"]
		if !ok {
			return nil, &core.DecodeError{Index: i, Field: "count", Err: errMissing}
		}
		n, err := toCount(c)
		if err != nil {
			return nil, &core.DecodeError{Index: i, Field: "count", Err: err}
		}
		if core.OpKind(kind) == core.KindSkip {
			return core.Skip{Count: n}, nil
		}
		return core.Delete{Count: n}, nil
	case core.KindInsert:
		c, ok := rec["chars"]
		if !ok {
			return nil, &core.DecodeError{Index: i, Field: "chars", Err: errMissing}
		}
		s, ok := c.(string)
		if !ok {
			return nil, &core.DecodeError{Index: i, Field: "chars", Err: errNotText}
		}
		return core.Insert{Chars: s}, nil
	default:
		if strictKinds {
			return nil, &core.DecodeError{Index: i, Field: "op", Err: fmt.Errorf("%w: %q", core.ErrUnknownOp, kind)}
		}
		return core.Unknown{Name: kind}, nil
	}
}

// toCount accepts the integer representations the supported decoders produce.
// Counts beyond math.MaxInt32 are capped there: no buffer is that long, so
// the bound checks reach the same verdict.
func toCount(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return capCount(int64(t))
	case int32:
		return capCount(int64(t))
	case int64:
		return capCount(t)
	case uint64:
		if t > math.MaxInt32 {
			return math.MaxInt32, nil
		}
		return int(t), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || t < 0 {
			return 0, errNotCount
		}
		if t > math.MaxInt32 {
			return math.MaxInt32, nil
		}
		return int(t), nil
	case json.Number:
		if n, ok := new(big.Int).SetString(t.String(), 10); ok {
			if n.Sign() < 0 {
				return 0, errNotCount
			}
			if !n.IsInt64() {
				return math.MaxInt32, nil
			}
			return capCount(n.Int64())
		}
		f, err := t.Float64()
		if err != nil {
			return 0, errNotCount
		}
		return toCount(f)
	default:
		return 0, errNotCount
	}
}

func capCount(n int64) (int, error) {
	if n < 0 {
		return 0, errNotCount
	}
	if n > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	return int(n), nil
}

// caseFromValue converts a generically decoded case document.
// wireOps decodes an "ops" field given as an encoded string.
func caseFromValue(v any, strictKinds bool, wireOps func(string) ([]core.Op, error)) (*core.Case, error) {
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, &core.DecodeError{Index: -1, Err: errors.New("case document must be a mapping")}
	}

	c := &core.Case{}

	if name, ok := doc["name"]; ok {
		s, ok := name.(string)
		if !ok {
			return nil, &core.DecodeError{Index: -1, Field: "name", Err: errNotText}
		}
		c.Name = s
	}

	start, ok := doc["start"]
	if !ok {
		return nil, &core.DecodeError{Index: -1, Field: "start", Err: errMissing}
	}
	c.Start = start

	end, ok := doc["end"]
	if !ok {
		return nil, &core.DecodeError{Index: -1, Field: "end", Err: errMissing}
	}
	if c.End, ok = end.(string); !ok {
		return nil, &core.DecodeError{Index: -1, Field: "end", Err: errNotText}
	}

	asserted, ok := doc["real"]
	if !ok {
		return nil, &core.DecodeError{Index: -1, Field: "real", Err: errMissing}
	}
	if c.Real, ok = asserted.(bool); !ok {
		return nil, &core.DecodeError{Index: -1, Field: "real", Err: errNotBool}
	}

	var err error
	switch ops := doc["ops"].(type) {
	case string:
		c.Ops, err = wireOps(ops)
	default:
		c.Ops, err = opsFromValue(ops, strictKinds)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
