package pipeline

import (
	"github.com/apex-sim/apexsim/emu"
	"github.com/apex-sim/apexsim/insts"
)

// StartPC is the conventional APEX program counter origin.
const StartPC = 4000

// Stats holds per-run performance counters.
type Stats struct {
	Cycles        uint64
	InsnsRetired  uint64
	StallCycles   uint64
	FlushedInsns  uint64
}

// Pipeline is APEX's six-stage in-order scalar pipeline: Fetch, Decode,
// Execute, Memory1, Memory and Writeback. Each Tick invokes the stages in
// reverse order (WB, M, M1, E, D, F), so a branch flush applied by Memory1
// or Execute clears the D/E latches before Decode and Fetch read them.
// Current latches (f, d, e, m1, m, wb) hold the previous cycle's outputs;
// apart from those flushes, each stage reads them unchanged, computes into
// the matching next* latch, and Tick swaps them in at the end. This
// double-buffering is what makes the nearest-wins M1>M>WB forwarding
// search genuinely three levels deep.
type Pipeline struct {
	fetch     *FetchStage
	decode    *DecodeStage
	execute   *ExecuteStage
	memory1   *Memory1Stage
	memory    *MemoryStage
	writeback *WritebackStage

	regs *emu.RegisterFile
	mem  *emu.DataMemory

	pc int64

	f, d, e, m1, m, wb Latch
	nextD, nextE       Latch
	nextM1, nextM      Latch
	nextWB             Latch

	stall          bool
	refetch        bool
	haltPending    bool
	branchPending  bool
	branchTarget   int64
	halted         bool

	stats Stats
}

// NewPipeline creates a Pipeline over program, with architectural state
// regs and mem, PC initialized to StartPC.
func NewPipeline(program []insts.Instruction, regs *emu.RegisterFile, mem *emu.DataMemory) *Pipeline {
	hazard := NewHazardUnit()
	return &Pipeline{
		fetch:     NewFetchStage(program, StartPC),
		decode:    NewDecodeStage(regs, hazard),
		execute:   NewExecuteStage(regs, mem, hazard),
		memory1:   NewMemory1Stage(),
		memory:    NewMemoryStage(mem),
		writeback: NewWritebackStage(regs),
		regs:      regs,
		mem:       mem,
		pc:        StartPC,
	}
}

// PC returns the current program counter.
func (p *Pipeline) PC() int64 { return p.pc }

// SetPC overrides the program counter. It must be called before the first
// Tick; APEX programs are conventionally linked to start at StartPC, but
// config.Config allows a different origin. The fetch stage's code-memory
// origin moves with it, since program[0] is always the instruction at pc.
func (p *Pipeline) SetPC(pc int64) {
	p.pc = pc
	p.fetch.startPC = pc
}

// Halted reports whether the simulator has terminated.
func (p *Pipeline) Halted() bool { return p.halted }

// Stats returns the pipeline's performance counters.
func (p *Pipeline) Stats() Stats { return p.stats }

// Registers returns the underlying register file, for inspection/dumps.
func (p *Pipeline) Registers() *emu.RegisterFile { return p.regs }

// Memory returns the underlying data memory, for inspection/dumps.
func (p *Pipeline) Memory() *emu.DataMemory { return p.mem }

// Latches returns the current F/D/E/M1/M/WB latches, for tracing.
func (p *Pipeline) Latches() (f, d, e, m1, m, wb Latch) {
	return p.f, p.d, p.e, p.m1, p.m, p.wb
}

// Tick advances the pipeline by one cycle. It is a no-op once halted.
func (p *Pipeline) Tick() {
	if p.halted {
		return
	}
	p.stats.Cycles++

	halting := p.doWriteback()
	p.doMemory()
	p.doMemory1()
	p.doExecute()
	p.doDecode()
	p.doFetch()

	p.d, p.e, p.m1, p.m, p.wb = p.nextD, p.nextE, p.nextM1, p.nextM, p.nextWB

	if halting {
		p.halted = true
	}
}

// doWriteback processes the current WB latch and reports whether this
// cycle's HALT, with Fetch already invalid, should terminate the run.
func (p *Pipeline) doWriteback() bool {
	if !p.wb.Valid {
		return false
	}
	p.writeback.Writeback(p.wb)
	p.stats.InsnsRetired++
	return p.wb.Op == insts.OpHALT && !p.f.Valid
}

func (p *Pipeline) doMemory() {
	p.nextWB = p.memory.Access(p.m).Next
}

func (p *Pipeline) doMemory1() {
	if p.branchPending {
		p.pc = p.branchTarget
		p.branchPending = false
		p.stats.FlushedInsns += countValid(p.d, p.e)
		p.d.Valid = false
		p.e.Valid = false
	}
	p.nextM = p.memory1.Process(p.m1).Next
}

func countValid(latches ...Latch) uint64 {
	var n uint64
	for _, l := range latches {
		if l.Valid {
			n++
		}
	}
	return n
}

func (p *Pipeline) doExecute() {
	if !p.e.Valid {
		p.nextM1 = Latch{}
		return
	}
	result := p.execute.Execute(p.e, p.m1, p.m, p.wb)
	p.nextM1 = result.Next
	if result.BranchTaken {
		p.branchTarget = result.BranchTarget
		p.branchPending = true
		p.refetch = true
		if p.d.Valid {
			p.stats.FlushedInsns++
		}
		p.d.Valid = false
	}
}

func (p *Pipeline) doDecode() {
	if p.branchPending {
		p.d.Valid = false
	}
	if !p.d.Valid {
		p.nextE = Latch{}
		return
	}
	if p.d.Op != insts.OpNOP {
		p.stall = false
	}
	result := p.decode.Decode(p.d, p.e, p.m1, p.m)
	if result.Stall {
		p.stall = true
		p.refetch = true
		p.stats.StallCycles++
		p.nextE = Latch{}
		return
	}
	if p.d.Op == insts.OpHALT {
		p.haltPending = true
	}
	p.nextE = result.Next
}

func (p *Pipeline) doFetch() {
	if p.haltPending {
		p.f = Latch{}
		p.nextD = Latch{}
		return
	}
	p.f = p.fetch.Fetch(p.pc)
	if p.refetch {
		p.refetch = false
		p.nextD = p.d
		return
	}
	p.nextD = p.f
	p.pc += 4
}
