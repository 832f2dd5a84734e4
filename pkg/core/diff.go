package core

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff derives an operation log that turns oldText into newText.
//
// Runs of the same kind are merged, a replaced range becomes a delete followed
// by an insert, and a trailing skip is dropped since it changes nothing.
func Diff(oldText, newText string) []Op {
	a, b := splitRunes(oldText), splitRunes(newText)
	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	var ops []Op
	for _, oc := range m.GetOpCodes() {
		switch oc.Tag {
		case 'e':
			ops = appendOp(ops, Skip{Count: oc.I2 - oc.I1})
		case 'd':
			ops = appendOp(ops, Delete{Count: oc.I2 - oc.I1})
		case 'i':
			ops = appendOp(ops, Insert{Chars: strings.Join(b[oc.J1:oc.J2], "")})
		case 'r':
			ops = appendOp(ops, Delete{Count: oc.I2 - oc.I1})
			ops = appendOp(ops, Insert{Chars: strings.Join(b[oc.J1:oc.J2], "")})
		}
	}

	if n := len(ops); n > 0 {
		if _, ok := ops[n-1].(Skip); ok {
			ops = ops[:n-1]
		}
	}
	return ops
}

func appendOp(ops []Op, op Op) []Op {
	if len(ops) == 0 {
		return append(ops, op)
	}
	last := len(ops) - 1
	switch o := op.(type) {
	case Skip:
		if prev, ok := ops[last].(Skip); ok {
			ops[last] = Skip{Count: prev.Count + o.Count}
			return ops
		}
	case Delete:
		if prev, ok := ops[last].(Delete); ok {
			ops[last] = Delete{Count: prev.Count + o.Count}
			return ops
		}
	case Insert:
		if prev, ok := ops[last].(Insert); ok {
			ops[last] = Insert{Chars: prev.Chars + o.Chars}
			return ops
		}
	}
	return append(ops, op)
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
