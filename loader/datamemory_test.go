package loader_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apex-sim/apexsim/emu"
	"github.com/apex-sim/apexsim/loader"
)

var _ = Describe("LoadDataMemory", func() {
	It("loads a comma-separated list of integers starting at cell 0", func() {
		path := filepath.Join(GinkgoT().TempDir(), "mem.csv")
		Expect(os.WriteFile(path, []byte("1,2,3\n4,5\n"), 0o644)).To(Succeed())

		mem := emu.NewDataMemory(16)
		Expect(loader.LoadDataMemory(path, mem)).To(Succeed())

		Expect(mem.Read(0)).To(Equal(int64(1)))
		Expect(mem.Read(1)).To(Equal(int64(2)))
		Expect(mem.Read(4)).To(Equal(int64(5)))
	})

	It("errors on a non-integer cell", func() {
		path := filepath.Join(GinkgoT().TempDir(), "mem.csv")
		Expect(os.WriteFile(path, []byte("1,x,3"), 0o644)).To(Succeed())

		mem := emu.NewDataMemory(16)
		Expect(loader.LoadDataMemory(path, mem)).To(HaveOccurred())
	})
})
