// Package pipeline implements APEX's six-stage in-order scalar pipeline:
// Fetch, Decode, Execute, Memory1, Memory and Writeback, driven one cycle
// at a time by Pipeline.Tick.
package pipeline

import "github.com/apex-sim/apexsim/insts"

// Latch is the single stage-latch record APEX's six stages share — the
// same shape the original reference reuses for every CPU_Stage. A Latch
// with Valid == false is a bubble and carries no instruction.
type Latch struct {
	Valid bool
	PC    int64
	Op    insts.Op
	Rd    int
	Rs1   int
	Rs2   int
	Rs3   int
	Imm   int64

	Rs1Value int64
	Rs2Value int64
	Rs3Value int64

	Result   int64
	MemAddr  int64
	MemValue int64

	Text string
}

// Clear resets l to an invalid bubble.
func (l *Latch) Clear() {
	*l = Latch{}
}
