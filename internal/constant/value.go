package constant

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates constant values.
type Kind uint8

const (
	// KindError marks a value produced from failed evaluation.
	KindError Kind = iota
	KindInteger
	KindReal
	KindString
	KindNull
	KindUnbounded
	KindAggregate
)

// SVInt is an integral value with an explicit width, signedness and
// optional 4-state bits. Unknown and HighZ are bit masks selecting which
// bits are x or z; a bit set in either mask makes the corresponding bit
// of Bits meaningless.
type SVInt struct {
	Width   uint32
	Signed  bool
	Bits    uint64
	Unknown uint64
	HighZ   uint64
}

// HasUnknown reports whether any bit is x or z.
func (i SVInt) HasUnknown() bool {
	return i.Unknown != 0 || i.HighZ != 0
}

// AsInt64 converts to a plain integer when the value is fully known.
func (i SVInt) AsInt64() (int64, bool) {
	if i.HasUnknown() {
		return 0, false
	}
	bits := i.Bits
	if i.Width > 0 && i.Width < 64 {
		mask := (uint64(1) << i.Width) - 1
		bits &= mask
		if i.Signed && bits&(uint64(1)<<(i.Width-1)) != 0 {
			return int64(bits | ^mask), true //nolint:gosec // sign extension
		}
	}
	return int64(bits), true //nolint:gosec // two's complement reinterpret
}

// Value is an opaque constant: integral with bit pattern, real, string,
// null, unbounded ($), aggregate, or the error marker.
type Value struct {
	kind Kind
	ival SVInt
	rval float64
	sval string
	elems []Value
}

// Error is the sentinel for failed constant evaluation.
func Error() Value {
	return Value{kind: KindError}
}

// MakeInteger builds a 32-bit signed integer, the default literal type.
func MakeInteger(v int64) Value {
	return Value{kind: KindInteger, ival: SVInt{Width: 32, Signed: true, Bits: uint64(v)}} //nolint:gosec
}

// MakeSVInt wraps an explicit bit pattern.
func MakeSVInt(i SVInt) Value {
	return Value{kind: KindInteger, ival: i}
}

func MakeReal(v float64) Value {
	return Value{kind: KindReal, rval: v}
}

func MakeString(s string) Value {
	return Value{kind: KindString, sval: s}
}

func Null() Value {
	return Value{kind: KindNull}
}

// Unbounded is the $ token used in queue bounds.
func Unbounded() Value {
	return Value{kind: KindUnbounded}
}

func MakeAggregate(elems []Value) Value {
	return Value{kind: KindAggregate, elems: elems}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsError() bool  { return v.kind == KindError }
func (v Value) IsInteger() bool { return v.kind == KindInteger }
func (v Value) IsReal() bool   { return v.kind == KindReal }
func (v Value) IsString() bool { return v.kind == KindString }

// Integer returns the integral payload; only valid for KindInteger.
func (v Value) Integer() SVInt { return v.ival }

func (v Value) Real() float64 { return v.rval }

func (v Value) Str() string { return v.sval }

func (v Value) Elements() []Value { return v.elems }

// AsInt64 extracts a plain integer from integral or real values.
func (v Value) AsInt64() (int64, bool) {
	switch v.kind {
	case KindInteger:
		return v.ival.AsInt64()
	case KindReal:
		return int64(v.rval), true
	default:
		return 0, false
	}
}

// Equals compares by kind and payload.
func (v Value) Equals(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		a, aok := v.ival.AsInt64()
		b, bok := other.ival.AsInt64()
		if aok && bok {
			return a == b
		}
		return v.ival == other.ival
	case KindReal:
		return v.rval == other.rval
	case KindString:
		return v.sval == other.sval
	case KindAggregate:
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equals(other.elems[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindError:
		return "<error>"
	case KindInteger:
		if n, ok := v.ival.AsInt64(); ok {
			return strconv.FormatInt(n, 10)
		}
		return fmt.Sprintf("%d'b<4-state>", v.ival.Width)
	case KindReal:
		return strconv.FormatFloat(v.rval, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.sval)
	case KindNull:
		return "null"
	case KindUnbounded:
		return "$"
	case KindAggregate:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		return "'{" + strings.Join(parts, ", ") + "}"
	}
	return "<?>"
}
