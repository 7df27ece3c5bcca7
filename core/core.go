// Package core wraps a pipeline.Pipeline with the clock-driving and
// pretty-printing surface the APEX CLI needs: a stop-policy-parameterized
// run loop, and the stage-trace/register-dump output the original
// reference's print_stage_content/print_reg_file produce.
package core

import (
	"fmt"
	"io"

	"github.com/apex-sim/apexsim/emu"
	"github.com/apex-sim/apexsim/insts"
	"github.com/apex-sim/apexsim/pipeline"
)

// StopPolicy decides, given the number of cycles already run, whether the
// Driver should stop. It is consulted before every Tick.
type StopPolicy func(cycle uint64) bool

// Cycles returns a StopPolicy that stops once n cycles have run.
func Cycles(n uint64) StopPolicy {
	return func(cycle uint64) bool { return cycle >= n }
}

// Forever never stops the Driver early; it still stops once the pipeline
// itself halts.
func Forever() StopPolicy {
	return func(uint64) bool { return false }
}

// Driver runs a pipeline.Pipeline under a StopPolicy, optionally emitting a
// per-cycle stage trace.
type Driver struct {
	pipeline *pipeline.Pipeline
	trace    io.Writer
}

// NewDriver creates a Driver over p. If trace is non-nil, every Tick emits
// a stage trace to it.
func NewDriver(p *pipeline.Pipeline, trace io.Writer) *Driver {
	return &Driver{pipeline: p, trace: trace}
}

// Pipeline returns the underlying pipeline.
func (d *Driver) Pipeline() *pipeline.Pipeline { return d.pipeline }

// Run ticks the pipeline until policy says stop or the pipeline halts,
// whichever comes first. It returns the number of cycles run.
func (d *Driver) Run(policy StopPolicy) uint64 {
	var cycle uint64
	for !policy(cycle) && !d.pipeline.Halted() {
		d.pipeline.Tick()
		cycle++
		if d.trace != nil {
			Trace(d.trace, d.pipeline)
		}
	}
	return cycle
}

// Step ticks the pipeline exactly once, for interactive single-step mode.
// It reports whether the pipeline is still running afterward.
func (d *Driver) Step() bool {
	if d.pipeline.Halted() {
		return false
	}
	d.pipeline.Tick()
	if d.trace != nil {
		Trace(d.trace, d.pipeline)
	}
	return !d.pipeline.Halted()
}

// Trace writes one line per stage for the pipeline's current cycle,
// matching the shape of the original reference's print_stage_content.
func Trace(w io.Writer, p *pipeline.Pipeline) {
	f, dec, e, m1, m, wb := p.Latches()
	fmt.Fprintf(w, "--- cycle %d ---\n", p.Stats().Cycles)
	printStage(w, "Fetch", f)
	printStage(w, "Decode/RF", dec)
	printStage(w, "Execute", e)
	printStage(w, "Memory1", m1)
	printStage(w, "Memory", m)
	printStage(w, "Writeback", wb)
}

func printStage(w io.Writer, name string, lat pipeline.Latch) {
	if !lat.Valid {
		fmt.Fprintf(w, "%-15s: empty\n", name)
		return
	}
	fmt.Fprintf(w, "%-15s: pc(%d) %s\n", name, lat.PC, describe(lat))
}

func describe(lat pipeline.Latch) string {
	switch lat.Op {
	case insts.OpADD, insts.OpSUB, insts.OpMUL, insts.OpDIV,
		insts.OpAND, insts.OpOR, insts.OpXOR, insts.OpLDR:
		return fmt.Sprintf("%s,R%d,R%d,R%d", lat.Op, lat.Rd, lat.Rs1, lat.Rs2)
	case insts.OpADDL, insts.OpSUBL, insts.OpLOAD:
		return fmt.Sprintf("%s,R%d,R%d,#%d", lat.Op, lat.Rd, lat.Rs1, lat.Imm)
	case insts.OpSTORE:
		return fmt.Sprintf("%s,R%d,R%d,#%d", lat.Op, lat.Rs1, lat.Rs2, lat.Imm)
	case insts.OpSTR:
		return fmt.Sprintf("%s,R%d,R%d,R%d", lat.Op, lat.Rs1, lat.Rs2, lat.Rs3)
	case insts.OpMOVC:
		return fmt.Sprintf("%s,R%d,#%d", lat.Op, lat.Rd, lat.Imm)
	case insts.OpCML:
		return fmt.Sprintf("%s,R%d,#%d", lat.Op, lat.Rs1, lat.Imm)
	case insts.OpCMP:
		return fmt.Sprintf("%s,R%d,R%d", lat.Op, lat.Rs1, lat.Rs2)
	case insts.OpJALR:
		return fmt.Sprintf("%s,R%d,R%d,#%d", lat.Op, lat.Rd, lat.Rs1, lat.Imm)
	case insts.OpJUMP:
		return fmt.Sprintf("%s,R%d,#%d", lat.Op, lat.Rs1, lat.Imm)
	case insts.OpBZ, insts.OpBNZ, insts.OpBP, insts.OpBN, insts.OpBNP:
		return fmt.Sprintf("%s,#%d", lat.Op, lat.Imm)
	default:
		return lat.Op.String()
	}
}

// DumpState prints the register file and a slice of data memory, matching
// the original reference's print_reg_file.
func DumpState(w io.Writer, regs *emu.RegisterFile, mem *emu.DataMemory, memCells int) {
	fmt.Fprintf(w, "----------\nRegisters:\n----------\n")
	half := regs.Count() / 2
	for i := 0; i < half; i++ {
		fmt.Fprintf(w, "R%-3d[%-3d] ", i, regs.Read(i))
	}
	fmt.Fprintln(w)
	for i := half; i < regs.Count(); i++ {
		fmt.Fprintf(w, "R%-3d[%-3d] ", i, regs.Read(i))
	}
	fmt.Fprintln(w)

	cc := regs.ConditionCodes()
	fmt.Fprintf(w, "Flags: Z(%v) N(%v) P(%v)\n", cc.Z, cc.N, cc.P)

	fmt.Fprintf(w, "----------\nData Memory:\n----------\n")
	cells := mem.Cells(memCells)
	for addr, v := range cells {
		if v == 0 {
			continue
		}
		fmt.Fprintf(w, "MEM[%-4d] %d\n", addr, v)
	}
}
