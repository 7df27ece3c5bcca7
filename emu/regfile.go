// Package emu implements APEX's architectural state: the register file,
// condition codes and data memory that the pipeline stages read and write.
package emu

// ConditionCodes holds the three flags APEX's CMP/CML and arithmetic
// instructions set and its conditional branches read.
type ConditionCodes struct {
	Z bool // result == 0
	N bool // result < 0
	P bool // result > 0
}

// SetFromResult derives Z/N/P from a computed arithmetic result.
func (c *ConditionCodes) SetFromResult(result int64) {
	c.Z = result == 0
	c.N = result < 0
	c.P = result > 0
}

// SetFromCompare derives Z/N/P from comparing a against b (CMP/CML).
func (c *ConditionCodes) SetFromCompare(a, b int64) {
	c.Z = a == b
	c.N = a < b
	c.P = a > b
}

// DefaultRegisterCount is the conventional APEX register-file size.
const DefaultRegisterCount = 16

// RegisterFile is APEX's flat signed general-purpose register array.
type RegisterFile struct {
	regs []int64
	cc   ConditionCodes
}

// NewRegisterFile creates a register file with count registers, all zeroed.
func NewRegisterFile(count int) *RegisterFile {
	return &RegisterFile{regs: make([]int64, count)}
}

// Read returns the value of register idx, or 0 if idx is out of range or
// unused (insts.RegUnused).
func (r *RegisterFile) Read(idx int) int64 {
	if idx < 0 || idx >= len(r.regs) {
		return 0
	}
	return r.regs[idx]
}

// Write stores value into register idx. Writes to an out-of-range index are
// silently dropped.
func (r *RegisterFile) Write(idx int, value int64) {
	if idx < 0 || idx >= len(r.regs) {
		return
	}
	r.regs[idx] = value
}

// Count returns the number of registers in the file.
func (r *RegisterFile) Count() int { return len(r.regs) }

// ConditionCodes returns a pointer to the shared condition-code flags.
func (r *RegisterFile) ConditionCodes() *ConditionCodes { return &r.cc }
