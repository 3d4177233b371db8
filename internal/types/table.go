package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Field is one member of a struct or union type.
type Field struct {
	Name string
	Type TypeID
}

// EnumValue is one named member of an enum type.
type EnumValue struct {
	Name  string
	Value int64
}

// Type is the record for one type in the table. Which fields are
// meaningful depends on Kind; BitWidth/Signed/FourState are maintained
// for every integral kind.
type Type struct {
	Kind      Kind
	Name      string // declared name for aliases, enums, structs
	BitWidth  uint32
	Signed    bool
	FourState bool

	Scalar ScalarKind
	Int    IntKind
	Float  FloatKind

	Elem  TypeID        // arrays: element type; alias: target
	Range ConstantRange // arrays

	Fields     []Field // packed/unpacked structs and unions
	EnumBase   TypeID
	EnumValues []EnumValue

	// canonical is computed lazily and is NoTypeID until then; the
	// vector interner sets it to self for the vector forms it creates.
	canonical TypeID
}

// Builtins carries the singleton TypeIDs every compilation shares.
// Reference equality of builtins is guaranteed because they are allocated
// exactly once per table.
type Builtins struct {
	Error   TypeID
	Void    TypeID
	Null    TypeID
	CHandle TypeID
	String  TypeID
	Event   TypeID

	Bit   TypeID
	Logic TypeID
	Reg   TypeID

	Byte     TypeID
	ShortInt TypeID
	Int      TypeID
	LongInt  TypeID
	Integer  TypeID
	Time     TypeID

	Real      TypeID
	ShortReal TypeID
	RealTime  TypeID
}

// vecKey identifies a canonical simple-bit-vector form.
type vecKey struct {
	width     uint32
	signed    bool
	fourState bool
}

// Table stores every type of a compilation in a compact arena.
// Index 0 is reserved for NoTypeID.
type Table struct {
	data     []Type
	builtins Builtins
	vectors  map[vecKey]TypeID
}

// NewTable allocates a table seeded with the builtin singletons.
func NewTable() *Table {
	t := &Table{
		data:    make([]Type, 1, 64),
		vectors: make(map[vecKey]TypeID),
	}
	b := &t.builtins

	b.Error = t.alloc(Type{Kind: KindError})
	b.Void = t.alloc(Type{Kind: KindVoid, Name: "void"})
	b.Null = t.alloc(Type{Kind: KindNull, Name: "null"})
	b.CHandle = t.alloc(Type{Kind: KindCHandle, Name: "chandle"})
	b.String = t.alloc(Type{Kind: KindString, Name: "string"})
	b.Event = t.alloc(Type{Kind: KindEvent, Name: "event"})

	b.Bit = t.alloc(Type{Kind: KindScalar, Name: "bit", Scalar: ScalarBit, BitWidth: 1})
	b.Logic = t.alloc(Type{Kind: KindScalar, Name: "logic", Scalar: ScalarLogic, BitWidth: 1, FourState: true})
	b.Reg = t.alloc(Type{Kind: KindScalar, Name: "reg", Scalar: ScalarReg, BitWidth: 1, FourState: true})

	b.Byte = t.alloc(Type{Kind: KindPredefinedInt, Name: "byte", Int: IntByte, BitWidth: 8, Signed: true})
	b.ShortInt = t.alloc(Type{Kind: KindPredefinedInt, Name: "shortint", Int: IntShortInt, BitWidth: 16, Signed: true})
	b.Int = t.alloc(Type{Kind: KindPredefinedInt, Name: "int", Int: IntInt, BitWidth: 32, Signed: true})
	b.LongInt = t.alloc(Type{Kind: KindPredefinedInt, Name: "longint", Int: IntLongInt, BitWidth: 64, Signed: true})
	b.Integer = t.alloc(Type{Kind: KindPredefinedInt, Name: "integer", Int: IntInteger, BitWidth: 32, Signed: true, FourState: true})
	b.Time = t.alloc(Type{Kind: KindPredefinedInt, Name: "time", Int: IntTime, BitWidth: 64, FourState: true})

	b.Real = t.alloc(Type{Kind: KindFloating, Name: "real", Float: FloatReal, BitWidth: 64})
	b.ShortReal = t.alloc(Type{Kind: KindFloating, Name: "shortreal", Float: FloatShortReal, BitWidth: 32})
	b.RealTime = t.alloc(Type{Kind: KindFloating, Name: "realtime", Float: FloatRealTime, BitWidth: 64})

	return t
}

func (t *Table) alloc(ty Type) TypeID {
	value, err := safecast.Conv[uint32](len(t.data))
	if err != nil {
		panic(fmt.Errorf("type table overflow: %w", err))
	}
	id := TypeID(value)
	t.data = append(t.data, ty)
	return id
}

// Builtins returns the singleton IDs.
func (t *Table) Builtins() Builtins {
	return t.builtins
}

// Get returns the type record, or nil for an invalid ID.
func (t *Table) Get(id TypeID) *Type {
	if !id.IsValid() || int(id) >= len(t.data) {
		return nil
	}
	return &t.data[id]
}

// MustGet panics on an invalid ID.
func (t *Table) MustGet(id TypeID) *Type {
	ty := t.Get(id)
	if ty == nil {
		panic("types: invalid TypeID")
	}
	return ty
}

// Len reports the number of allocated types, excluding the sentinel.
func (t *Table) Len() int { return len(t.data) - 1 }

// IsIntegral reports whether the type (after alias unwrapping) carries a
// bit width.
func (t *Table) IsIntegral(id TypeID) bool {
	ty := t.Get(t.Canonical(id))
	return ty != nil && ty.Kind.IsIntegral()
}

// IsFloating reports whether the canonical type is a floating kind.
func (t *Table) IsFloating(id TypeID) bool {
	ty := t.Get(t.Canonical(id))
	return ty != nil && ty.Kind == KindFloating
}

// IsError reports whether the canonical type is the error type.
func (t *Table) IsError(id TypeID) bool {
	ty := t.Get(t.Canonical(id))
	return ty == nil || ty.Kind == KindError
}

// BitWidth returns the canonical type's width, 0 for non-integral kinds.
func (t *Table) BitWidth(id TypeID) uint32 {
	ty := t.Get(t.Canonical(id))
	if ty == nil {
		return 0
	}
	return ty.BitWidth
}

// --- constructors ---

// PackedArray allocates a packed array. The element must be integral;
// the caller validates that and reports the diagnostic.
func (t *Table) PackedArray(elem TypeID, rng ConstantRange) TypeID {
	e := t.MustGet(elem)
	return t.alloc(Type{
		Kind:      KindPackedArray,
		BitWidth:  e.BitWidth * rng.Width(),
		Signed:    false,
		FourState: e.FourState,
		Elem:      elem,
		Range:     rng,
	})
}

// UnpackedArray allocates an unpacked (fixed-size) array.
func (t *Table) UnpackedArray(elem TypeID, rng ConstantRange) TypeID {
	return t.alloc(Type{Kind: KindUnpackedArray, Elem: elem, Range: rng})
}

// PackedStruct allocates a packed struct; width is the sum of members.
func (t *Table) PackedStruct(name string, fields []Field, signed bool) TypeID {
	var width uint32
	fourState := false
	for _, f := range fields {
		ft := t.MustGet(f.Type)
		width += ft.BitWidth
		fourState = fourState || ft.FourState
	}
	return t.alloc(Type{
		Kind:      KindPackedStruct,
		Name:      name,
		BitWidth:  width,
		Signed:    signed,
		FourState: fourState,
		Fields:    fields,
	})
}

// PackedUnion allocates a packed union; width is the widest member.
func (t *Table) PackedUnion(name string, fields []Field, signed bool) TypeID {
	var width uint32
	fourState := false
	for _, f := range fields {
		ft := t.MustGet(f.Type)
		if ft.BitWidth > width {
			width = ft.BitWidth
		}
		fourState = fourState || ft.FourState
	}
	return t.alloc(Type{
		Kind:      KindPackedUnion,
		Name:      name,
		BitWidth:  width,
		Signed:    signed,
		FourState: fourState,
		Fields:    fields,
	})
}

// UnpackedStruct allocates an unpacked struct.
func (t *Table) UnpackedStruct(name string, fields []Field) TypeID {
	return t.alloc(Type{Kind: KindUnpackedStruct, Name: name, Fields: fields})
}

// UnpackedUnion allocates an unpacked union.
func (t *Table) UnpackedUnion(name string, fields []Field) TypeID {
	return t.alloc(Type{Kind: KindUnpackedUnion, Name: name, Fields: fields})
}

// Enum allocates an enum over an integral base. The base's width and
// state-ness flow through; the caller validated the base.
func (t *Table) Enum(name string, base TypeID, values []EnumValue) TypeID {
	b := t.MustGet(base)
	return t.alloc(Type{
		Kind:       KindEnum,
		Name:       name,
		BitWidth:   b.BitWidth,
		Signed:     b.Signed,
		FourState:  b.FourState,
		EnumBase:   base,
		EnumValues: values,
	})
}

// Alias allocates a named indirection to a target type.
func (t *Table) Alias(name string, target TypeID) TypeID {
	return t.alloc(Type{Kind: KindAlias, Name: name, Elem: target})
}

// Variant allocates a copy of an existing record with tweaked attributes
// (e.g. "int unsigned"). The canonical memo is reset so the copy
// computes its own.
func (t *Table) Variant(ty Type) TypeID {
	ty.canonical = NoTypeID
	return t.alloc(ty)
}
