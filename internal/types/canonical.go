package types

// Canonical returns the unique representative of the type's equivalence
// class. Aliases resolve through their target; packed arrays of scalars
// collapse to the simple-bit-vector form keyed by width, signedness and
// 4-stateness. The result is memoized on the type record and always
// satisfies Canonical(Canonical(id)) == Canonical(id).
func (t *Table) Canonical(id TypeID) TypeID {
	ty := t.Get(id)
	if ty == nil {
		return t.builtins.Error
	}
	if ty.canonical.IsValid() {
		return ty.canonical
	}

	// Mark self first so that a malformed alias cycle terminates at the
	// participant rather than recursing forever.
	ty.canonical = id

	var canon TypeID
	switch ty.Kind {
	case KindAlias:
		canon = t.Canonical(ty.Elem)

	case KindPackedArray:
		canon = t.vector(ty.BitWidth, ty.Signed, ty.FourState)

	case KindScalar:
		canon = t.vector(1, ty.Signed, ty.FourState)

	case KindUnpackedArray:
		elemCanon := t.Canonical(ty.Elem)
		if elemCanon == ty.Elem {
			canon = id
		} else {
			canon = t.UnpackedArray(elemCanon, ty.Range)
			t.data[canon].canonical = canon
		}

	default:
		// Predefined ints keep their identity: int and bit[31:0] differ
		// in 2-state/signedness anyway, and nominal kinds (structs,
		// unions, enums) are equivalent only to themselves.
		canon = id
	}

	t.data[id].canonical = canon
	return canon
}

// vector interns the canonical simple-bit-vector for the given shape.
func (t *Table) vector(width uint32, signed, fourState bool) TypeID {
	key := vecKey{width: width, signed: signed, fourState: fourState}
	if id, ok := t.vectors[key]; ok {
		return id
	}

	var elem TypeID
	if fourState {
		elem = t.builtins.Logic
	} else {
		elem = t.builtins.Bit
	}

	var id TypeID
	if width == 1 && !signed {
		id = elem
	} else {
		id = t.alloc(Type{
			Kind:      KindPackedArray,
			BitWidth:  width,
			Signed:    signed,
			FourState: fourState,
			Elem:      elem,
			Range:     ConstantRange{Left: int32(width) - 1, Right: 0}, //nolint:gosec // widths are small
		})
	}
	t.data[id].canonical = id
	t.vectors[key] = id
	return id
}

// Equivalent reports type equivalence: identical canonical forms.
func (t *Table) Equivalent(a, b TypeID) bool {
	return t.Canonical(a) == t.Canonical(b)
}

// AssignmentCompatible reports whether a value of src may be assigned to
// a target of dst under SystemVerilog implicit-conversion rules: integral
// widths coerce (preserving signedness semantics at the value level),
// floating and integral interconvert, and unpacked aggregates match
// structurally. The error type is compatible with everything so that one
// bad declaration doesn't cascade.
func (t *Table) AssignmentCompatible(dst, src TypeID) bool {
	dc, sc := t.Canonical(dst), t.Canonical(src)
	d, s := t.Get(dc), t.Get(sc)
	if d == nil || s == nil {
		return false
	}
	if d.Kind == KindError || s.Kind == KindError {
		return true
	}
	if dc == sc {
		return true
	}

	switch d.Kind {
	case KindScalar, KindPredefinedInt, KindPackedArray, KindPackedStruct, KindPackedUnion:
		// Integral targets admit any integral or floating source.
		return s.Kind.IsIntegral() || s.Kind == KindFloating

	case KindEnum:
		// Enums only admit their own type implicitly.
		return false

	case KindFloating:
		return s.Kind.IsIntegral() || s.Kind == KindFloating

	case KindString:
		return s.Kind == KindString

	case KindCHandle:
		return s.Kind == KindCHandle || s.Kind == KindNull

	case KindEvent:
		return s.Kind == KindEvent || s.Kind == KindNull

	case KindUnpackedArray:
		if s.Kind != KindUnpackedArray {
			return false
		}
		return d.Range.Width() == s.Range.Width() &&
			t.AssignmentCompatible(d.Elem, s.Elem)

	case KindUnpackedStruct, KindUnpackedUnion:
		if s.Kind != d.Kind || len(d.Fields) != len(s.Fields) {
			return false
		}
		for i := range d.Fields {
			if !t.AssignmentCompatible(d.Fields[i].Type, s.Fields[i].Type) {
				return false
			}
		}
		return true

	default:
		return false
	}
}

// Note: enums are integral, so an enum source assigns to integral
// targets through the first case above; only enum *targets* are strict.
