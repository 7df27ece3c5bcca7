package pipeline

import (
	"github.com/apex-sim/apexsim/emu"
	"github.com/apex-sim/apexsim/insts"
)

// FetchStage reads the instruction at a program counter from code memory.
type FetchStage struct {
	program []insts.Instruction
	startPC int64
}

// NewFetchStage creates a FetchStage over the given assembled program,
// code-indexed from startPC.
func NewFetchStage(program []insts.Instruction, startPC int64) *FetchStage {
	return &FetchStage{program: program, startPC: startPC}
}

// Fetch returns the Latch for the instruction at pc, or an invalid Latch
// once pc runs past the end of the program.
func (f *FetchStage) Fetch(pc int64) Latch {
	index := (pc - f.startPC) / 4
	if index < 0 || int(index) >= len(f.program) {
		return Latch{}
	}
	in := f.program[index]
	return Latch{
		Valid: true,
		PC:    pc,
		Op:    in.Op,
		Rd:    in.Rd,
		Rs1:   in.Rs1,
		Rs2:   in.Rs2,
		Rs3:   in.Rs3,
		Imm:   in.Imm,
		Text:  in.Text,
	}
}

// DecodeStage reads source-register operands and detects load-use hazards.
type DecodeStage struct {
	regs   *emu.RegisterFile
	hazard *HazardUnit
}

// NewDecodeStage creates a DecodeStage.
func NewDecodeStage(regs *emu.RegisterFile, hazard *HazardUnit) *DecodeStage {
	return &DecodeStage{regs: regs, hazard: hazard}
}

// DecodeResult is what DecodeStage.Decode reports back to the pipeline.
type DecodeResult struct {
	Next  Latch // the latch to hand to Execute, if not stalling
	Stall bool  // a load-use hazard is blocking d
}

// Decode reads operands for d (unless a load-use hazard against e blocks
// it) and reports whether d must stall in place.
func (s *DecodeStage) Decode(d, e, m1, m Latch) DecodeResult {
	if !d.Valid {
		return DecodeResult{}
	}
	if s.hazard.LoadUseHazard(d, e, m1, m) {
		return DecodeResult{Stall: true}
	}
	readOperands(s.regs, &d)
	return DecodeResult{Next: d}
}

// readOperands populates lat's Rs1Value/Rs2Value/Rs3Value from the
// register file, per opcode's operand-read table.
func readOperands(regs *emu.RegisterFile, lat *Latch) {
	switch lat.Op {
	case insts.OpADD, insts.OpSUB, insts.OpMUL, insts.OpDIV,
		insts.OpAND, insts.OpOR, insts.OpXOR, insts.OpLDR, insts.OpCMP:
		lat.Rs1Value = regs.Read(lat.Rs1)
		lat.Rs2Value = regs.Read(lat.Rs2)
	case insts.OpADDL, insts.OpSUBL, insts.OpLOAD, insts.OpCML,
		insts.OpJUMP, insts.OpJALR:
		lat.Rs1Value = regs.Read(lat.Rs1)
	case insts.OpSTORE:
		lat.Rs1Value = regs.Read(lat.Rs1)
		lat.Rs2Value = regs.Read(lat.Rs2)
	case insts.OpSTR:
		lat.Rs1Value = regs.Read(lat.Rs1)
		lat.Rs2Value = regs.Read(lat.Rs2)
		lat.Rs3Value = regs.Read(lat.Rs3)
	}
}

// ExecuteStage computes ALU results, addresses, condition codes, and
// resolves branch/jump targets using forwarded operands.
type ExecuteStage struct {
	hazard *HazardUnit
	regs   *emu.RegisterFile
	mem    MemoryReader
}

// NewExecuteStage creates an ExecuteStage.
func NewExecuteStage(regs *emu.RegisterFile, mem MemoryReader, hazard *HazardUnit) *ExecuteStage {
	return &ExecuteStage{regs: regs, mem: mem, hazard: hazard}
}

// ExecuteResult is what ExecuteStage.Execute reports back to the pipeline.
type ExecuteResult struct {
	Next          Latch
	BranchTaken   bool
	BranchTarget  int64
}

// Execute runs e (forwarding operands from m1, m and wb) and produces the
// latch to hand to Memory1.
func (s *ExecuteStage) Execute(e, m1, m, wb Latch) ExecuteResult {
	if !e.Valid {
		return ExecuteResult{}
	}
	lat := e
	cc := s.regs.ConditionCodes()

	rs1 := s.hazard.Forward(lat.Rs1, m1, m, wb, s.regs, s.mem)
	rs2 := s.hazard.Forward(lat.Rs2, m1, m, wb, s.regs, s.mem)
	rs3 := s.hazard.Forward(lat.Rs3, m1, m, wb, s.regs, s.mem)
	if lat.Rs1 == insts.RegUnused {
		rs1 = 0
	}
	if lat.Rs2 == insts.RegUnused {
		rs2 = 0
	}
	if lat.Rs3 == insts.RegUnused {
		rs3 = 0
	}
	lat.Rs1Value, lat.Rs2Value, lat.Rs3Value = rs1, rs2, rs3

	result := ExecuteResult{}
	switch lat.Op {
	case insts.OpADD:
		lat.Result = rs1 + rs2
		cc.SetFromResult(lat.Result)
	case insts.OpSUB:
		lat.Result = rs1 - rs2
		cc.SetFromResult(lat.Result)
	case insts.OpMUL:
		lat.Result = rs1 * rs2
		cc.SetFromResult(lat.Result)
	case insts.OpDIV:
		if rs2 == 0 {
			lat.Result = 0
		} else {
			lat.Result = rs1 / rs2
		}
		cc.SetFromResult(lat.Result)
	case insts.OpAND:
		lat.Result = rs1 & rs2
		cc.SetFromResult(lat.Result)
	case insts.OpOR:
		lat.Result = rs1 | rs2
		cc.SetFromResult(lat.Result)
	case insts.OpXOR:
		lat.Result = rs1 ^ rs2
		cc.SetFromResult(lat.Result)
	case insts.OpADDL:
		lat.Result = rs1 + lat.Imm
		cc.SetFromResult(lat.Result)
	case insts.OpSUBL:
		lat.Result = rs1 - lat.Imm
		cc.SetFromResult(lat.Result)
	case insts.OpMOVC:
		lat.Result = lat.Imm
		cc.SetFromResult(lat.Result)
	case insts.OpLOAD:
		lat.MemAddr = rs1 + lat.Imm
	case insts.OpLDR:
		lat.MemAddr = rs1 + rs2
	case insts.OpSTORE:
		lat.MemAddr = rs2 + lat.Imm
		lat.MemValue = rs1
	case insts.OpSTR:
		lat.MemAddr = rs2 + rs3
		lat.MemValue = rs1
	case insts.OpCMP:
		cc.SetFromCompare(rs1, rs2)
	case insts.OpCML:
		cc.SetFromCompare(rs1, lat.Imm)
	case insts.OpBZ:
		result.BranchTaken = cc.Z
	case insts.OpBNZ:
		result.BranchTaken = !cc.Z
	case insts.OpBP:
		result.BranchTaken = cc.P
	case insts.OpBN:
		result.BranchTaken = cc.N
	case insts.OpBNP:
		result.BranchTaken = cc.N || cc.Z
	case insts.OpJUMP:
		result.BranchTaken = true
	case insts.OpJALR:
		lat.Result = lat.PC + 4
		result.BranchTaken = true
	}

	switch lat.Op {
	case insts.OpBZ, insts.OpBNZ, insts.OpBP, insts.OpBN, insts.OpBNP:
		if result.BranchTaken {
			result.BranchTarget = lat.PC + lat.Imm
		}
	case insts.OpJUMP:
		result.BranchTarget = rs1 + lat.Imm
	case insts.OpJALR:
		result.BranchTarget = rs1 + lat.Imm
	}

	result.Next = lat
	return result
}

// Memory1Stage converts a resolved branch/jump to a NOP (JALR excepted)
// before it reaches Memory. The PC redirect that also happens in this
// stage is applied by Pipeline, not by Memory1Stage.
type Memory1Stage struct{}

// NewMemory1Stage creates a Memory1Stage.
func NewMemory1Stage() *Memory1Stage {
	return &Memory1Stage{}
}

// Memory1Result is what Memory1Stage.Process reports back to the pipeline.
type Memory1Result struct {
	Next Latch
}

// Process converts m1 to a NOP if it is a resolved branch/jump (JALR
// excepted); the PC redirect itself is applied by the pipeline when
// branchPending is consumed.
func (s *Memory1Stage) Process(m1 Latch) Memory1Result {
	if !m1.Valid {
		return Memory1Result{}
	}
	lat := m1
	if insts.ConvertsToNOPAtM1(lat.Op) {
		lat.Op = insts.OpNOP
		lat.Rd = insts.RegUnused
	}
	return Memory1Result{Next: lat}
}

// MemoryStage performs the bounds-checked data-memory access.
type MemoryStage struct {
	mem *emu.DataMemory
}

// NewMemoryStage creates a MemoryStage.
func NewMemoryStage(mem *emu.DataMemory) *MemoryStage {
	return &MemoryStage{mem: mem}
}

// MemoryResult is what MemoryStage.Access reports back to the pipeline.
type MemoryResult struct {
	Next Latch
}

// Access performs m's load or store, if any, and produces the latch to
// hand to Writeback.
func (s *MemoryStage) Access(m Latch) MemoryResult {
	if !m.Valid {
		return MemoryResult{}
	}
	lat := m
	switch lat.Op {
	case insts.OpLOAD, insts.OpLDR:
		lat.Result = s.mem.Read(lat.MemAddr)
	case insts.OpSTORE, insts.OpSTR:
		s.mem.Write(lat.MemAddr, lat.MemValue)
	}
	return MemoryResult{Next: lat}
}

// WritebackStage writes results to the register file and retires
// instructions.
type WritebackStage struct {
	regs *emu.RegisterFile
}

// NewWritebackStage creates a WritebackStage.
func NewWritebackStage(regs *emu.RegisterFile) *WritebackStage {
	return &WritebackStage{regs: regs}
}

// Writeback writes wb's result (if any) and reports whether an instruction
// retired.
func (s *WritebackStage) Writeback(wb Latch) (retired bool) {
	if !wb.Valid {
		return false
	}
	if wb.Rd != insts.RegUnused && insts.WritesRegister(wb.Op) {
		s.regs.Write(wb.Rd, wb.Result)
	}
	return true
}
