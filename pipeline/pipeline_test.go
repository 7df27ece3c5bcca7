package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apex-sim/apexsim/emu"
	"github.com/apex-sim/apexsim/insts"
	"github.com/apex-sim/apexsim/pipeline"
)

const none = insts.RegUnused

func newPipeline(program []insts.Instruction) (*pipeline.Pipeline, *emu.RegisterFile, *emu.DataMemory) {
	regs := emu.NewRegisterFile(emu.DefaultRegisterCount)
	mem := emu.NewDataMemory(emu.DefaultMemorySize)
	return pipeline.NewPipeline(program, regs, mem), regs, mem
}

var _ = Describe("Pipeline end-to-end", func() {
	It("runs MOVC followed by a dependent ADD", func() {
		program := []insts.Instruction{
			{Op: insts.OpMOVC, Rd: 1, Rs1: none, Rs2: none, Rs3: none, Imm: 5},
			{Op: insts.OpMOVC, Rd: 2, Rs1: none, Rs2: none, Rs3: none, Imm: 7},
			{Op: insts.OpADD, Rd: 3, Rs1: 1, Rs2: 2, Rs3: none},
			{Op: insts.OpHALT, Rd: none, Rs1: none, Rs2: none, Rs3: none},
		}
		p, regs, _ := newPipeline(program)
		p.Run()

		Expect(p.Halted()).To(BeTrue())
		Expect(regs.Read(3)).To(Equal(int64(12)))
		Expect(p.Stats().InsnsRetired).To(Equal(uint64(4)))
	})

	It("stalls a load-use dependency for exactly one cycle", func() {
		program := []insts.Instruction{
			{Op: insts.OpLOAD, Rd: 1, Rs1: 0, Rs2: none, Rs3: none, Imm: 0},
			{Op: insts.OpADD, Rd: 2, Rs1: 1, Rs2: 1, Rs3: none},
			{Op: insts.OpHALT, Rd: none, Rs1: none, Rs2: none, Rs3: none},
		}
		p, regs, mem := newPipeline(program)
		mem.Write(0, 99)
		p.Run()

		Expect(regs.Read(1)).To(Equal(int64(99)))
		Expect(regs.Read(2)).To(Equal(int64(198)))
		Expect(p.Stats().StallCycles).To(Equal(uint64(1)))
	})

	It("squashes the wrong-path instructions behind a taken branch", func() {
		program := []insts.Instruction{
			{Op: insts.OpMOVC, Rd: 1, Rs1: none, Rs2: none, Rs3: none, Imm: 1},
			{Op: insts.OpCMP, Rd: none, Rs1: 1, Rs2: 1, Rs3: none},
			{Op: insts.OpBZ, Rd: none, Rs1: none, Rs2: none, Rs3: none, Imm: 12},
			{Op: insts.OpADD, Rd: 2, Rs1: 1, Rs2: 1, Rs3: none},
			{Op: insts.OpADD, Rd: 3, Rs1: 1, Rs2: 1, Rs3: none},
			{Op: insts.OpMOVC, Rd: 4, Rs1: none, Rs2: none, Rs3: none, Imm: 99},
			{Op: insts.OpHALT, Rd: none, Rs1: none, Rs2: none, Rs3: none},
		}
		p, regs, _ := newPipeline(program)
		p.Run()

		Expect(regs.Read(2)).To(Equal(int64(0)))
		Expect(regs.Read(3)).To(Equal(int64(0)))
		Expect(regs.Read(4)).To(Equal(int64(99)))
		Expect(p.Stats().FlushedInsns).To(BeNumerically(">", 0))
	})

	It("falls through a not-taken branch", func() {
		program := []insts.Instruction{
			{Op: insts.OpMOVC, Rd: 1, Rs1: none, Rs2: none, Rs3: none, Imm: 5},
			{Op: insts.OpMOVC, Rd: 2, Rs1: none, Rs2: none, Rs3: none, Imm: 9},
			{Op: insts.OpCMP, Rd: none, Rs1: 1, Rs2: 2, Rs3: none},
			{Op: insts.OpBZ, Rd: none, Rs1: none, Rs2: none, Rs3: none, Imm: 100},
			{Op: insts.OpMOVC, Rd: 3, Rs1: none, Rs2: none, Rs3: none, Imm: 42},
			{Op: insts.OpHALT, Rd: none, Rs1: none, Rs2: none, Rs3: none},
		}
		p, regs, _ := newPipeline(program)
		p.Run()

		Expect(regs.Read(3)).To(Equal(int64(42)))
		Expect(p.Stats().FlushedInsns).To(Equal(uint64(0)))
	})

	It("links PC+4 into rd for JALR and squashes the fall-through", func() {
		program := []insts.Instruction{
			{Op: insts.OpMOVC, Rd: 1, Rs1: none, Rs2: none, Rs3: none, Imm: 4016},
			{Op: insts.OpJALR, Rd: 2, Rs1: 1, Rs2: none, Rs3: none, Imm: 0},
			{Op: insts.OpADD, Rd: 3, Rs1: 1, Rs2: 1, Rs3: none},
			{Op: insts.OpADD, Rd: 4, Rs1: 1, Rs2: 1, Rs3: none},
			{Op: insts.OpMOVC, Rd: 5, Rs1: none, Rs2: none, Rs3: none, Imm: 7},
			{Op: insts.OpHALT, Rd: none, Rs1: none, Rs2: none, Rs3: none},
		}
		p, regs, _ := newPipeline(program)
		p.Run()

		Expect(regs.Read(2)).To(Equal(int64(pipeline.StartPC + 8)))
		Expect(regs.Read(3)).To(Equal(int64(0)))
		Expect(regs.Read(4)).To(Equal(int64(0)))
		Expect(regs.Read(5)).To(Equal(int64(7)))
	})

	It("round-trips a value through STORE and LOAD", func() {
		program := []insts.Instruction{
			{Op: insts.OpMOVC, Rd: 1, Rs1: none, Rs2: none, Rs3: none, Imm: 55},
			{Op: insts.OpSTORE, Rd: none, Rs1: 1, Rs2: 0, Rs3: none, Imm: 8},
			{Op: insts.OpLOAD, Rd: 2, Rs1: 0, Rs2: none, Rs3: none, Imm: 8},
			{Op: insts.OpHALT, Rd: none, Rs1: none, Rs2: none, Rs3: none},
		}
		p, regs, mem := newPipeline(program)
		p.Run()

		Expect(mem.Read(8)).To(Equal(int64(55)))
		Expect(regs.Read(2)).To(Equal(int64(55)))
	})

	It("never retires the same destination register write twice unexpectedly", func() {
		program := []insts.Instruction{
			{Op: insts.OpMOVC, Rd: 1, Rs1: none, Rs2: none, Rs3: none, Imm: 1},
			{Op: insts.OpADD, Rd: 1, Rs1: 1, Rs2: 1, Rs3: none},
			{Op: insts.OpHALT, Rd: none, Rs1: none, Rs2: none, Rs3: none},
		}
		p, regs, _ := newPipeline(program)
		p.Run()

		Expect(regs.Read(1)).To(Equal(int64(2)))
		Expect(p.Stats().InsnsRetired).To(Equal(uint64(3)))
	})

	It("advances the PC monotonically along the taken path", func() {
		program := []insts.Instruction{
			{Op: insts.OpMOVC, Rd: 1, Rs1: none, Rs2: none, Rs3: none, Imm: 0},
			{Op: insts.OpHALT, Rd: none, Rs1: none, Rs2: none, Rs3: none},
		}
		p, _, _ := newPipeline(program)
		lastPC := p.PC()
		for i := 0; i < 3 && !p.Halted(); i++ {
			p.Tick()
			Expect(p.PC()).To(BeNumerically(">=", lastPC))
			lastPC = p.PC()
		}
	})
})
