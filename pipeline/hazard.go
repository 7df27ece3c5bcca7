package pipeline

import "github.com/apex-sim/apexsim/insts"

// HazardUnit implements APEX's load-use hazard scan and its nearest-wins
// forwarding network across the three independently-live in-flight levels
// (M1, M, WB).
type HazardUnit struct{}

// NewHazardUnit creates a HazardUnit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// LoadUseHazard reports whether decode's current instruction d must stall
// because a LOAD/LDR producer still in E has not yet formed the memory
// address d needs. Once that producer advances to M1 its value is
// forwarding-covered (see Forward), so only E blocks decode.
func (h *HazardUnit) LoadUseHazard(d, e, m1, m Latch) bool {
	if !e.Valid || !insts.IsLoadClass(e.Op) || e.Rd == insts.RegUnused {
		return false
	}
	return consumesRegister(d, e.Rd)
}

func consumesRegister(d Latch, reg int) bool {
	return (d.Rs1 != insts.RegUnused && d.Rs1 == reg) ||
		(d.Rs2 != insts.RegUnused && d.Rs2 == reg) ||
		(d.Rs3 != insts.RegUnused && d.Rs3 == reg)
}

// Forward resolves the value register reg should read this cycle: the
// nearest of M1, M, WB that writes reg, falling back to the register file.
// M1 and M producing LOAD/LDR forward directly from data memory, since
// their MemAddr is known but Memory has not (yet, or officially) performed
// the access; WB always forwards its settled Result.
func (h *HazardUnit) Forward(reg int, m1, m, wb Latch, regFile RegisterReader, mem MemoryReader) int64 {
	if reg == insts.RegUnused {
		return 0
	}
	if v, ok := forwardFromInFlight(m1, reg, mem); ok {
		return v
	}
	if v, ok := forwardFromInFlight(m, reg, mem); ok {
		return v
	}
	if v, ok := forwardFromSettled(wb, reg); ok {
		return v
	}
	return regFile.Read(reg)
}

func forwardFromInFlight(lat Latch, reg int, mem MemoryReader) (int64, bool) {
	if !producesRegister(lat, reg) {
		return 0, false
	}
	if insts.IsLoadClass(lat.Op) {
		return mem.Read(lat.MemAddr), true
	}
	return lat.Result, true
}

func forwardFromSettled(lat Latch, reg int) (int64, bool) {
	if !producesRegister(lat, reg) {
		return 0, false
	}
	return lat.Result, true
}

func producesRegister(lat Latch, reg int) bool {
	return lat.Valid && lat.Rd != insts.RegUnused && lat.Rd == reg && insts.WritesRegister(lat.Op)
}

// RegisterReader is the subset of emu.RegisterFile the hazard unit needs.
type RegisterReader interface {
	Read(idx int) int64
}

// MemoryReader is the subset of emu.DataMemory the hazard unit needs.
type MemoryReader interface {
	Read(addr int64) int64
}
