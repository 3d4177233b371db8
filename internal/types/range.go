package types

import "fmt"

// ConstantRange is a [Left:Right] dimension. Either bound may be larger;
// Lower/Upper normalize.
type ConstantRange struct {
	Left  int32
	Right int32
}

func (r ConstantRange) Lower() int32 {
	if r.Left < r.Right {
		return r.Left
	}
	return r.Right
}

func (r ConstantRange) Upper() int32 {
	if r.Left > r.Right {
		return r.Left
	}
	return r.Right
}

// Width is the number of elements the range spans.
func (r ConstantRange) Width() uint32 {
	return uint32(r.Upper()-r.Lower()) + 1 //nolint:gosec // upper >= lower
}

func (r ConstantRange) String() string {
	return fmt.Sprintf("[%d:%d]", r.Left, r.Right)
}
