package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"math/big"
	"testing"

	"github.com/aretw0/otcheck/pkg/core"
)

// stubDecoder understands a fixed set of payloads.
type stubDecoder struct {
	logs map[string][]core.Op
}

func (d *stubDecoder) DecodeOps(r io.Reader) ([]core.Op, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	ops, ok := d.logs[string(data)]
	if !ok {
		return nil, &core.DecodeError{Index: -1, Err: errors.New("unexpected payload")}
	}
	return ops, nil
}

func newStubService() *core.Service {
	dec := &stubDecoder{logs: map[string][]core.Op{
		"[]":       nil,
		"insert-1": {core.Insert{Chars: "1"}},
		"skip-1":   {core.Skip{Count: 1}},
	}}
	return core.NewService(dec, core.ServiceConfig{})
}

func TestService_ValidateWire(t *testing.T) {
	svc := newStubService()
	ctx := context.TODO()

	ok, err := svc.ValidateWire(ctx, 5, "5", []byte("[]"), true)
	if err != nil {
		t.Fatalf("ValidateWire failed: %v", err)
	}
	if !ok {
		t.Error("expected agreement for empty log")
	}

	ok, err = svc.ValidateWire(ctx, "0", "10", []byte("insert-1"), true)
	if err != nil || !ok {
		t.Errorf("insert log: ok=%v err=%v", ok, err)
	}

	ok, err = svc.ValidateWire(ctx, 5, "5", []byte("skip-1"), false)
	if err != nil || !ok {
		t.Errorf("skip log: ok=%v err=%v", ok, err)
	}

	stats := svc.Stats()
	if stats.Validations != 3 || stats.Agreements != 3 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestService_DecodeFailureIsNotAVerdict(t *testing.T) {
	svc := newStubService()

	ok, err := svc.ValidateWire(context.TODO(), "x", "x", []byte("{not json"), true)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !errors.Is(err, core.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
	if ok {
		t.Error("decode failure must not report agreement")
	}

	stats := svc.Stats()
	if stats.DecodeFailures != 1 || stats.Validations != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestService_NoDecoder(t *testing.T) {
	svc := core.NewService(nil, core.ServiceConfig{})
	if _, err := svc.ValidateWire(context.TODO(), "", "", []byte("[]"), true); err == nil {
		t.Error("expected error without decoder")
	}
}

func TestService_SkipBound(t *testing.T) {
	svc := core.NewService(nil, core.ServiceConfig{SkipBound: core.SkipBoundExact})
	v := svc.Check(context.TODO(), "ab", "abc", []core.Op{core.Skip{Count: 2}, core.Insert{Chars: "c"}}, true)
	if !v.Agrees {
		t.Errorf("exact bound should accept the log: %+v", v)
	}

	legacy := core.NewService(nil, core.ServiceConfig{})
	v = legacy.Check(context.TODO(), "ab", "abc", []core.Op{core.Skip{Count: 2}, core.Insert{Chars: "c"}}, true)
	if v.Agrees {
		t.Errorf("legacy bound should reject the log: %+v", v)
	}
}

func TestService_State(t *testing.T) {
	svc := newStubService()
	_ = svc.CheckCase(context.TODO(), core.Case{Start: "a", End: "a", Real: true})

	state, ok := svc.State().(core.ServiceState)
	if !ok {
		t.Fatalf("unexpected state type %T", svc.State())
	}
	if state.SkipBound != "legacy" {
		t.Errorf("skip bound = %q", state.SkipBound)
	}
	if state.Stats.Validations != 1 {
		t.Errorf("validations = %d", state.Stats.Validations)
	}
	if svc.ComponentType() != "validator" {
		t.Errorf("component type = %q", svc.ComponentType())
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"abc", "abc"},
		{5, "5"},
		{int64(-12), "-12"},
		{uint8(7), "7"},
		{5.0, "5.0"},
		{2.5, "2.5"},
		{0.0, "0.0"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1e15, "1000000000000000.0"},
		{1e16, "1e+16"},
		{float32(0.1), "0.1"},
		{math.Inf(-1), "-inf"},
		{json.Number("10"), "10"},
		{json.Number("12345678901234567890"), "12345678901234567890"},
		{json.Number("-0"), "0"},
		{json.Number("5.0"), "5.0"},
		{json.Number("1e2"), "100.0"},
		{json.Number("1e400"), "inf"},
		{[]byte("raw"), "raw"},
		{nil, "None"},
		{true, "True"},
		{false, "False"},
		{big.NewInt(99), "99"},
	}

	for _, tc := range tests {
		if got := core.Text(tc.in); got != tc.want {
			t.Errorf("Text(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeError(t *testing.T) {
	err := &core.DecodeError{Index: 2, Field: "count", Err: errors.New("missing")}
	if !errors.Is(err, core.ErrDecode) {
		t.Error("DecodeError should match ErrDecode")
	}
	if got := err.Error(); got != `decode: op 2: field "count": missing` {
		t.Errorf("Error() = %q", got)
	}

	wrapped := &core.DecodeError{Index: 0, Field: "op", Err: core.ErrUnknownOp}
	if !errors.Is(wrapped, core.ErrUnknownOp) || !errors.Is(wrapped, core.ErrDecode) {
		t.Error("strict kind failures should match both sentinels")
	}
}
