package loader_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apex-sim/apexsim/insts"
	"github.com/apex-sim/apexsim/loader"
)

func writeProgram(dir, body string) string {
	path := filepath.Join(dir, "prog.asm")
	Expect(os.WriteFile(path, []byte(body), 0o644)).To(Succeed())
	return path
}

var _ = Describe("LoadProgram", func() {
	It("parses a simple program", func() {
		path := writeProgram(GinkgoT().TempDir(), `
			MOVC,R1,#5
			MOVC,R2,#7
			ADD,R3,R1,R2
			HALT
		`)
		program, err := loader.LoadProgram(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(program).To(HaveLen(4))

		Expect(program[0].Op).To(Equal(insts.OpMOVC))
		Expect(program[0].Rd).To(Equal(1))
		Expect(program[0].Imm).To(Equal(int64(5)))

		Expect(program[2].Op).To(Equal(insts.OpADD))
		Expect(program[2].Rd).To(Equal(3))
		Expect(program[2].Rs1).To(Equal(1))
		Expect(program[2].Rs2).To(Equal(2))

		Expect(program[3].Op).To(Equal(insts.OpHALT))
	})

	It("parses LOAD/STORE address operands", func() {
		path := writeProgram(GinkgoT().TempDir(), `
			LOAD,R1,R2,#4
			STORE,R1,R2,#8
		`)
		program, err := loader.LoadProgram(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(program[0].Rd).To(Equal(1))
		Expect(program[0].Rs1).To(Equal(2))
		Expect(program[0].Imm).To(Equal(int64(4)))
		Expect(program[1].Rs1).To(Equal(1))
		Expect(program[1].Rs2).To(Equal(2))
		Expect(program[1].Imm).To(Equal(int64(8)))
	})

	It("parses STR's three register operands with no immediate", func() {
		path := writeProgram(GinkgoT().TempDir(), "STR,R1,R2,R3")
		program, err := loader.LoadProgram(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(program[0].Op).To(Equal(insts.OpSTR))
		Expect(program[0].Rs1).To(Equal(1))
		Expect(program[0].Rs2).To(Equal(2))
		Expect(program[0].Rs3).To(Equal(3))
	})

	It("parses a negative branch offset", func() {
		path := writeProgram(GinkgoT().TempDir(), "BZ,#-8")
		program, err := loader.LoadProgram(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(program[0].Op).To(Equal(insts.OpBZ))
		Expect(program[0].Imm).To(Equal(int64(-8)))
	})

	It("skips blank lines and comments", func() {
		path := writeProgram(GinkgoT().TempDir(), "\n# a comment\nHALT\n")
		program, err := loader.LoadProgram(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(program).To(HaveLen(1))
	})

	It("rejects an unknown opcode", func() {
		path := writeProgram(GinkgoT().TempDir(), "FROB,R1,R2")
		_, err := loader.LoadProgram(path)
		Expect(err).To(HaveOccurred())
	})

	It("rejects the wrong operand count", func() {
		path := writeProgram(GinkgoT().TempDir(), "ADD,R1,R2")
		_, err := loader.LoadProgram(path)
		Expect(err).To(HaveOccurred())
	})

	It("errors when the file does not exist", func() {
		_, err := loader.LoadProgram(filepath.Join(GinkgoT().TempDir(), "missing.asm"))
		Expect(err).To(HaveOccurred())
	})
})
