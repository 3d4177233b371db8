package diag

import (
	"fmt"
	"sort"
)

// Bag accumulates diagnostics in emission order. Emission order is part of
// the deterministic-output contract; the renderers print in that order,
// and Sort and Dedup run only when a caller invokes them.
type Bag struct {
	items []Diagnostic
	max   uint32
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 1 << 16
	}
	return &Bag{
		items: make([]Diagnostic, 0, 16),
		max:   uint32(max), //nolint:gosec // max checked positive
	}
}

// Add appends a diagnostic unless the bag hit its cap.
func (b *Bag) Add(d Diagnostic) bool {
	if uint32(len(b.items)) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors reports whether any diagnostic is Error severity or worse.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// ErrorCount counts diagnostics of Error severity or worse.
func (b *Bag) ErrorCount() int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a read-only view of the diagnostics. Callers must not
// modify the returned slice.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Last returns the most recently added diagnostic, or a zero Diagnostic.
func (b *Bag) Last() Diagnostic {
	if len(b.items) == 0 {
		return Diagnostic{}
	}
	return b.items[len(b.items)-1]
}

// Merge appends the other bag's diagnostics, growing the cap if needed.
func (b *Bag) Merge(other *Bag) {
	newTotal := len(b.items) + len(other.items)
	if uint32(newTotal) > b.max { //nolint:gosec // lengths are non-negative
		b.max = uint32(newTotal) //nolint:gosec
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, start, end, severity (descending) and
// code, so rendered output is stable regardless of emission interleaving.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup drops diagnostics that repeat an earlier code+span pair.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	out := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%d:%s", d.Code, d.Primary.String())
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	b.items = out
}
