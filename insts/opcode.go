// Package insts defines the APEX instruction set: the opcode enum and the
// Instruction record produced by the loader and consumed by the pipeline.
//
// An Instruction is immutable once loaded; the pipeline only ever reads its
// fields while the instruction rides through the stage latches.
package insts

// Op identifies one of the 25 APEX opcodes.
type Op uint8

// RegUnused marks a register operand slot that an opcode does not use.
const RegUnused = -1

const (
	OpADD Op = iota
	OpSUB
	OpMUL
	OpDIV
	OpAND
	OpOR
	OpXOR
	OpADDL
	OpSUBL
	OpLOAD
	OpLDR
	OpSTORE
	OpSTR
	OpMOVC
	OpCMP
	OpCML
	OpBZ
	OpBNZ
	OpBP
	OpBN
	OpBNP
	OpJUMP
	OpJALR
	OpNOP
	OpHALT
)

var opNames = [...]string{
	OpADD: "ADD", OpSUB: "SUB", OpMUL: "MUL", OpDIV: "DIV",
	OpAND: "AND", OpOR: "OR", OpXOR: "XOR",
	OpADDL: "ADDL", OpSUBL: "SUBL",
	OpLOAD: "LOAD", OpLDR: "LDR", OpSTORE: "STORE", OpSTR: "STR",
	OpMOVC: "MOVC", OpCMP: "CMP", OpCML: "CML",
	OpBZ: "BZ", OpBNZ: "BNZ", OpBP: "BP", OpBN: "BN", OpBNP: "BNP",
	OpJUMP: "JUMP", OpJALR: "JALR", OpNOP: "NOP", OpHALT: "HALT",
}

// String returns the assembly mnemonic for op.
func (o Op) String() string {
	if int(o) < len(opNames) && opNames[o] != "" {
		return opNames[o]
	}
	return "UNKNOWN"
}

// ParseOp maps an assembly mnemonic to its Op, for use by the loader.
func ParseOp(mnemonic string) (Op, bool) {
	for op, name := range opNames {
		if name == mnemonic {
			return Op(op), true
		}
	}
	return 0, false
}

// arithmeticOps compute a result from register/immediate operands and set
// condition codes.
var arithmeticOps = map[Op]bool{
	OpADD: true, OpSUB: true, OpMUL: true, OpDIV: true,
	OpAND: true, OpOR: true, OpXOR: true,
	OpADDL: true, OpSUBL: true, OpMOVC: true,
}

// resultProducingOps write Rd at Writeback.
var resultProducingOps = map[Op]bool{
	OpADD: true, OpSUB: true, OpMUL: true, OpDIV: true,
	OpAND: true, OpOR: true, OpXOR: true,
	OpADDL: true, OpSUBL: true, OpMOVC: true,
	OpLOAD: true, OpLDR: true, OpJALR: true,
}

// branchOps are conditional program-counter-relative branches.
var branchOps = map[Op]bool{
	OpBZ: true, OpBNZ: true, OpBP: true, OpBN: true, OpBNP: true,
}

// IsArithmetic reports whether op is a register/immediate ALU operation.
func IsArithmetic(op Op) bool { return arithmeticOps[op] }

// WritesRegister reports whether op writes Rd during Writeback.
func WritesRegister(op Op) bool { return resultProducingOps[op] }

// IsLoadClass reports whether op is LOAD or LDR.
func IsLoadClass(op Op) bool { return op == OpLOAD || op == OpLDR }

// IsStoreClass reports whether op is STORE or STR.
func IsStoreClass(op Op) bool { return op == OpSTORE || op == OpSTR }

// IsBranch reports whether op is one of the conditional branches
// (BZ/BNZ/BP/BN/BNP).
func IsBranch(op Op) bool { return branchOps[op] }

// IsControlFlow reports whether op redirects the program counter:
// the conditional branches, JUMP and JALR.
func IsControlFlow(op Op) bool {
	return branchOps[op] || op == OpJUMP || op == OpJALR
}

// ConvertsToNOPAtM1 reports whether a resolved instance of op is converted
// into a NOP as it leaves Memory1. JALR is excluded: its link value must
// still reach Writeback.
func ConvertsToNOPAtM1(op Op) bool {
	return branchOps[op] || op == OpJUMP
}
