package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"svelab/internal/source"
)

// Cursor is a byte position in a file's content.
type Cursor struct {
	File *source.File
	Off  uint32
	// limit is the exclusive upper bound for Off.
	limit uint32
}

// NewCursor creates a cursor at the start of the provided file.
func NewCursor(f *source.File) Cursor {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("file content length overflow: %w", err))
	}
	return Cursor{File: f, Off: 0, limit: limit}
}

// EOF reports whether the cursor has passed the end of the buffer.
func (c *Cursor) EOF() bool {
	return c.Off >= c.limit
}

// Peek reads the current byte, or 0 at EOF.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.File.Content[c.Off]
}

// PeekAt reads the byte n positions ahead, or 0 past the end.
func (c *Cursor) PeekAt(n uint32) byte {
	if c.Off+n >= c.limit {
		return 0
	}
	return c.File.Content[c.Off+n]
}

// Peek2 reads the current and next byte.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if c.Off+1 >= c.limit {
		return 0, 0, false
	}
	return c.File.Content[c.Off], c.File.Content[c.Off+1], true
}

// Bump advances the cursor one byte and returns what it read.
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.File.Content[c.Off]
	c.Off++
	return b
}

// Eat advances past b if it is the current byte.
func (c *Cursor) Eat(b byte) bool {
	if c.Peek() == b {
		c.Off++
		return true
	}
	return false
}

// Mark records the current offset for SpanFrom.
func (c *Cursor) Mark() uint32 {
	return c.Off
}

// Reset rewinds the cursor to a previously marked offset.
func (c *Cursor) Reset(off uint32) {
	c.Off = off
}

// SpanFrom builds a span from the marked offset to the current one.
func (c *Cursor) SpanFrom(start uint32) source.Span {
	return source.Span{File: c.File.ID, Start: start, End: c.Off}
}
