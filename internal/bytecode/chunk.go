package bytecode

import (
	"math"

	"github.com/tethal/rnatrix/internal/value"
)

// Chunk is the bytecode model from spec.md §3: a flat code buffer
// shared by every function, a deduplicated constant pool for floats
// and strings, and the preinitialized globals table (mostly
// user-defined functions, keyed by the same GlobalID the analyzer
// assigned).
type Chunk struct {
	Code      []byte
	Constants []value.Value
	Globals   []value.Value

	// Lines is a run-length-encoded line table: each entry covers
	// Lines[i].Count consecutive bytes of Code starting where the
	// previous entry left off. It exists purely for diagnostics; the
	// VM never reads it.
	Lines []LineRun
}

// LineRun is one run of the debug line table.
type LineRun struct {
	Line  int
	Count int
}

// AddLine records that the next Count bytes of Code map to line,
// coalescing with the previous run when the line number repeats.
func (c *Chunk) AddLine(line, count int) {
	if n := len(c.Lines); n > 0 && c.Lines[n-1].Line == line {
		c.Lines[n-1].Count += count
		return
	}
	c.Lines = append(c.Lines, LineRun{Line: line, Count: count})
}

// LineAt returns the source line recorded for a byte offset into
// Code, or 0 if the offset has no line information.
func (c *Chunk) LineAt(offset int) int {
	pos := 0
	for _, run := range c.Lines {
		pos += run.Count
		if offset < pos {
			return run.Line
		}
	}
	return 0
}

// AddConstant interns v into the constant pool, deduplicating
// structurally equal floats and strings (spec.md §4.5, "deduplicated
// by bitwise/structural equality") so repeated literals share one
// slot.
func (c *Chunk) AddConstant(v value.Value) uint64 {
	for i, existing := range c.Constants {
		if sameConstant(existing, v) {
			return uint64(i)
		}
	}
	c.Constants = append(c.Constants, v)
	return uint64(len(c.Constants) - 1)
}

func sameConstant(a, b value.Value) bool {
	if a.IsFloat() && b.IsFloat() {
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		return math.Float64bits(af) == math.Float64bits(bf)
	}
	if a.IsString() && b.IsString() {
		as, _ := a.AsString()
		bs, _ := b.AsString()
		return as == bs
	}
	return false
}
