package constant_test

import (
	"testing"

	"svelab/internal/constant"
)

func TestIntegerValues(t *testing.T) {
	v := constant.MakeInteger(-42)
	if n, ok := v.AsInt64(); !ok || n != -42 {
		t.Errorf("AsInt64 = %d, %v", n, ok)
	}
	if v.String() != "-42" {
		t.Errorf("String = %q", v.String())
	}

	// A narrow signed pattern sign-extends.
	sv := constant.MakeSVInt(constant.SVInt{Width: 4, Signed: true, Bits: 0xF})
	if n, ok := sv.AsInt64(); !ok || n != -1 {
		t.Errorf("4'sb1111 = %d, want -1", n)
	}

	// Unknown bits block integer extraction.
	x := constant.MakeSVInt(constant.SVInt{Width: 4, Unknown: 1})
	if _, ok := x.AsInt64(); ok {
		t.Error("4-state value should not extract")
	}
}

func TestEquality(t *testing.T) {
	if !constant.MakeInteger(7).Equals(constant.MakeInteger(7)) {
		t.Error("equal integers differ")
	}
	if constant.MakeInteger(7).Equals(constant.MakeReal(7)) {
		t.Error("kinds must match for equality")
	}
	if !constant.Null().Equals(constant.Null()) {
		t.Error("null equals null")
	}
	agg := constant.MakeAggregate([]constant.Value{constant.MakeInteger(1), constant.MakeString("x")})
	if !agg.Equals(constant.MakeAggregate([]constant.Value{constant.MakeInteger(1), constant.MakeString("x")})) {
		t.Error("aggregates compare element-wise")
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		val  constant.Value
		want string
	}{
		{constant.MakeReal(1.5), "1.5"},
		{constant.MakeString("hi"), `"hi"`},
		{constant.Null(), "null"},
		{constant.Unbounded(), "$"},
		{constant.Error(), "<error>"},
		{constant.MakeAggregate([]constant.Value{constant.MakeInteger(1), constant.MakeInteger(2)}), "'{1, 2}"},
	}
	for _, tt := range tests {
		if got := tt.val.String(); got != tt.want {
			t.Errorf("String = %q, want %q", got, tt.want)
		}
	}
}
