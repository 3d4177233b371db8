package source

import (
	"slices"
)

// StringID is a stable handle for an interned string.
type StringID uint32

// NoStringID is the ID of the empty string.
const NoStringID StringID = 0

// Interner deduplicates strings so that hot paths (identifier lookup,
// macro names) compare uint32 handles instead of string contents.
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": 0},
	}
}

// Intern returns the ID for s, allocating one if needed.
func (in *Interner) Intern(s string) StringID {
	if id, ok := in.index[s]; ok {
		return id
	}
	// Copy so we never alias the caller's backing buffer.
	cpy := string([]byte(s))
	id := StringID(len(in.byID))
	in.byID = append(in.byID, cpy)
	in.index[cpy] = id
	return id
}

// InternBytes interns the byte slice as a string.
func (in *Interner) InternBytes(b []byte) StringID {
	return in.Intern(string(b))
}

// Lookup resolves an ID back to its string.
func (in *Interner) Lookup(id StringID) (string, bool) {
	if !in.Has(id) {
		return "", false
	}
	return in.byID[id], true
}

// MustLookup resolves an ID and panics if it is invalid.
func (in *Interner) MustLookup(id StringID) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic("source: invalid string ID")
	}
	return s
}

func (in *Interner) Has(id StringID) bool {
	return int(id) < len(in.byID)
}

// Len counts interned strings, including the empty string at slot 0.
func (in *Interner) Len() int {
	return len(in.byID)
}

// Snapshot returns a copy of all interned strings.
func (in *Interner) Snapshot() []string {
	return slices.Clone(in.byID)
}
