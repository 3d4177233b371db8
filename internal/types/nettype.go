package types

// NetKind is one of the built-in net flavors, or UserDefined for
// `nettype declarations. Unknown marks the error net type.
type NetKind uint8

const (
	NetUnknown NetKind = iota
	NetWire
	NetWAnd
	NetWOr
	NetTri
	NetTriAnd
	NetTriOr
	NetTri0
	NetTri1
	NetTriReg
	NetSupply0
	NetSupply1
	NetUWire
	NetUserDefined
)

var netKindNames = map[NetKind]string{
	NetUnknown:     "<unknown>",
	NetWire:        "wire",
	NetWAnd:        "wand",
	NetWOr:         "wor",
	NetTri:         "tri",
	NetTriAnd:      "triand",
	NetTriOr:       "trior",
	NetTri0:        "tri0",
	NetTri1:        "tri1",
	NetTriReg:      "trireg",
	NetSupply0:     "supply0",
	NetSupply1:     "supply1",
	NetUWire:       "uwire",
	NetUserDefined: "<user>",
}

func (k NetKind) String() string { return netKindNames[k] }

// NetType is the parallel typing discipline for nets. Built-in net types
// carry their kind and data type directly; user-defined ones resolve
// their alias target and resolution function lazily the first time
// either is read.
type NetType struct {
	Kind     NetKind
	Name     string
	DataType TypeID

	// resolveFn computes the lazy fields for user-defined net types. It
	// is installed at construction and runs at most once.
	resolveFn func() (alias *NetType, resolver string)

	alias      *NetType
	resolver   string
	isResolved bool
}

// NewBuiltinNet constructs one of the 12 built-in net types (wire through
// uwire); there is no interconnect net kind.
func NewBuiltinNet(kind NetKind, dataType TypeID) *NetType {
	return &NetType{Kind: kind, Name: kind.String(), DataType: dataType}
}

// NewErrorNet is the net type used when resolution failed.
func NewErrorNet() *NetType {
	return &NetType{Kind: NetUnknown}
}

// NewUserNet constructs a user-defined net type whose alias target and
// resolver are computed on first access by resolveFn.
func NewUserNet(name string, dataType TypeID, resolveFn func() (*NetType, string)) *NetType {
	return &NetType{
		Kind:      NetUserDefined,
		Name:      name,
		DataType:  dataType,
		resolveFn: resolveFn,
	}
}

// resolve computes the lazy fields exactly once. The flag is set before
// the callback runs so that a cyclic alias terminates instead of
// recursing through resolve forever.
func (nt *NetType) resolve() {
	if nt.isResolved {
		return
	}
	nt.isResolved = true
	if nt.resolveFn != nil {
		nt.alias, nt.resolver = nt.resolveFn()
	}
}

// AliasTarget returns the alias target, or nil when this net type is not
// an alias.
func (nt *NetType) AliasTarget() *NetType {
	nt.resolve()
	return nt.alias
}

// Resolver returns the name of the user-supplied resolution function, if
// one was declared.
func (nt *NetType) Resolver() string {
	nt.resolve()
	return nt.resolver
}

// GetCanonical unwraps alias links. A cycle stops at the first repeated
// node and yields the error net type; the declaring scope reports the
// cycle diagnostic.
func (nt *NetType) GetCanonical() *NetType {
	seen := map[*NetType]bool{}
	cur := nt
	for {
		if seen[cur] {
			return NewErrorNet()
		}
		seen[cur] = true
		next := cur.AliasTarget()
		if next == nil {
			return cur
		}
		cur = next
	}
}

// IsError reports whether this is the unknown net type.
func (nt *NetType) IsError() bool { return nt.Kind == NetUnknown }

// IsBuiltIn reports whether this is one of the language's net kinds.
func (nt *NetType) IsBuiltIn() bool { return nt.Kind != NetUserDefined && nt.Kind != NetUnknown }
