// Package loader reads a text APEX assembly program and a data-memory
// initializer file, producing the inputs the pipeline runs: a slice of
// decoded insts.Instruction and a populated emu.DataMemory.
package loader

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apex-sim/apexsim/insts"
)

// LoadProgram parses path, one instruction per non-blank, non-comment line,
// into a slice of instructions ready for the pipeline's code memory.
// Lines are comma-separated: MNEMONIC,operand,operand,... Register operands
// are written "R<n>"; immediates are written "#<n>" (n may be negative).
//
// Example program:
//
//	MOVC,R1,#5
//	MOVC,R2,#7
//	ADD,R3,R1,R2
//	HALT
func LoadProgram(path string) ([]insts.Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open program %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var program []insts.Instruction
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		in, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("loader: %s:%d: %w", path, lineNo, err)
		}
		program = append(program, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loader: read program %s: %w", path, err)
	}
	return program, nil
}

func parseLine(line string) (insts.Instruction, error) {
	fields := splitFields(line)
	if len(fields) == 0 {
		return insts.Instruction{}, fmt.Errorf("empty instruction line")
	}

	op, ok := insts.ParseOp(strings.ToUpper(fields[0]))
	if !ok {
		return insts.Instruction{}, fmt.Errorf("unknown opcode %q", fields[0])
	}

	in := insts.NewInstruction(op)
	in.Text = line
	operands := fields[1:]

	slots := registerSlots(op, &in)
	wantImm := opcodeWantsImmediate(op)
	wantOperands := len(slots)
	if wantImm {
		wantOperands++
	}
	if len(operands) != wantOperands {
		return insts.Instruction{}, fmt.Errorf(
			"%s expects %d operand(s), got %d", op, wantOperands, len(operands))
	}

	for i, slot := range slots {
		reg, err := parseRegister(operands[i])
		if err != nil {
			return insts.Instruction{}, err
		}
		*slot = reg
	}
	if wantImm {
		imm, err := parseImmediate(operands[len(operands)-1])
		if err != nil {
			return insts.Instruction{}, err
		}
		in.Imm = imm
	}
	return in, nil
}

func splitFields(line string) []string {
	raw := strings.Split(line, ",")
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// registerSlots returns, in source order, pointers to the register fields
// an opcode's operand list populates.
func registerSlots(op insts.Op, in *insts.Instruction) []*int {
	switch op {
	case insts.OpADD, insts.OpSUB, insts.OpMUL, insts.OpDIV,
		insts.OpAND, insts.OpOR, insts.OpXOR, insts.OpLDR:
		return []*int{&in.Rd, &in.Rs1, &in.Rs2}
	case insts.OpADDL, insts.OpSUBL, insts.OpLOAD:
		return []*int{&in.Rd, &in.Rs1}
	case insts.OpSTORE:
		return []*int{&in.Rs1, &in.Rs2}
	case insts.OpSTR:
		return []*int{&in.Rs1, &in.Rs2, &in.Rs3}
	case insts.OpMOVC:
		return []*int{&in.Rd}
	case insts.OpCMP:
		return []*int{&in.Rs1, &in.Rs2}
	case insts.OpCML, insts.OpJUMP:
		return []*int{&in.Rs1}
	case insts.OpJALR:
		return []*int{&in.Rd, &in.Rs1}
	default: // BZ/BNZ/BP/BN/BNP, NOP, HALT take no register operands
		return nil
	}
}

// opcodeWantsImmediate reports whether op's last operand is an immediate.
func opcodeWantsImmediate(op insts.Op) bool {
	switch op {
	case insts.OpADDL, insts.OpSUBL, insts.OpLOAD, insts.OpSTORE,
		insts.OpMOVC, insts.OpCML, insts.OpJUMP, insts.OpJALR,
		insts.OpBZ, insts.OpBNZ, insts.OpBP, insts.OpBN, insts.OpBNP:
		return true
	default:
		return false
	}
}

func parseRegister(field string) (int, error) {
	if len(field) < 2 || (field[0] != 'R' && field[0] != 'r') {
		return 0, fmt.Errorf("bad register operand %q", field)
	}
	n, err := strconv.Atoi(field[1:])
	if err != nil {
		return 0, fmt.Errorf("bad register operand %q: %w", field, err)
	}
	return n, nil
}

func parseImmediate(field string) (int64, error) {
	if len(field) < 2 || field[0] != '#' {
		return 0, fmt.Errorf("bad immediate operand %q", field)
	}
	n, err := strconv.ParseInt(field[1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad immediate operand %q: %w", field, err)
	}
	return n, nil
}
