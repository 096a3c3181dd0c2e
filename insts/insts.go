// Package insts provides LC4 instruction definitions, encoding and decoding.
package insts

import "fmt"

// MemorySize is the number of 16-bit words in the flat LC4 address space.
const MemorySize = 0x10000

// PrivBase is the first address of the privileged half of memory.
// Loads and stores at or above this address require privileged mode.
const PrivBase = 0x8000

// Op represents an LC4 opcode.
type Op uint8

// LC4 opcodes.
const (
	OpNOP Op = iota
	OpBR
	OpADD
	OpMUL
	OpSUB
	OpDIV
	OpADDi
	OpCMP
	OpCMPu
	OpCMPi
	OpCMPiu
	OpJSR
	OpJSRr
	OpAND
	OpNOT
	OpOR
	OpXOR
	OpANDi
	OpLDR
	OpSTR
	OpRTI
	OpCONST
	OpSLL
	OpSRA
	OpSRL
	OpMOD
	OpJMPr
	OpJMP
	OpHICONST
	OpTRAP
)

// CC is a 3-bit NZP condition-code set. Branch masks may name any non-empty
// subset; the CPU holds exactly one bit at a time.
type CC uint8

// Condition-code bits.
const (
	N CC = 4 // negative
	Z CC = 2 // zero
	P CC = 1 // positive
)

// RName names one of the eight general-purpose registers.
// R7 is the link register; R6 is conventionally the stack pointer.
type RName uint8

// Register names.
const (
	R0 RName = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
)

// Insn represents a decoded LC4 instruction. Which fields are meaningful
// depends on Op: register ops use Rd/Rs/Rt, immediate ops use Imm (signed,
// already sign-extended from its declared width) or UImm (unsigned).
type Insn struct {
	Op Op
	CC CC // BR mask

	Rd RName
	Rs RName
	Rt RName

	Imm  int16  // signed immediate (IMM5/6/7/9/11 depending on Op)
	UImm uint16 // unsigned immediate (UIMM4/7/8 depending on Op)
}

var opNames = [...]string{
	"NOP", "BR", "ADD", "MUL", "SUB", "DIV", "ADDi", "CMP", "CMPu", "CMPi",
	"CMPiu", "JSR", "JSRr", "AND", "NOT", "OR", "XOR", "ANDi", "LDR", "STR",
	"RTI", "CONST", "SLL", "SRA", "SRL", "MOD", "JMPr", "JMP", "HICONST",
	"TRAP",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// ccString renders a branch mask as its mnemonic suffix.
func ccString(cc CC) string {
	s := ""
	if cc&N != 0 {
		s += "n"
	}
	if cc&Z != 0 {
		s += "z"
	}
	if cc&P != 0 {
		s += "p"
	}
	return s
}

// String renders the instruction in canonical assembly form.
func (i Insn) String() string {
	switch i.Op {
	case OpNOP:
		return "NOP"
	case OpBR:
		return fmt.Sprintf("BR%s #%d", ccString(i.CC), i.Imm)
	case OpADD:
		return fmt.Sprintf("ADD R%d, R%d, R%d", i.Rd, i.Rs, i.Rt)
	case OpMUL:
		return fmt.Sprintf("MUL R%d, R%d, R%d", i.Rd, i.Rs, i.Rt)
	case OpSUB:
		return fmt.Sprintf("SUB R%d, R%d, R%d", i.Rd, i.Rs, i.Rt)
	case OpDIV:
		return fmt.Sprintf("DIV R%d, R%d, R%d", i.Rd, i.Rs, i.Rt)
	case OpADDi:
		return fmt.Sprintf("ADD R%d, R%d, #%d", i.Rd, i.Rs, i.Imm)
	case OpCMP:
		return fmt.Sprintf("CMP R%d, R%d", i.Rd, i.Rt)
	case OpCMPu:
		return fmt.Sprintf("CMPU R%d, R%d", i.Rd, i.Rt)
	case OpCMPi:
		return fmt.Sprintf("CMPI R%d, #%d", i.Rd, i.Imm)
	case OpCMPiu:
		return fmt.Sprintf("CMPIU R%d, #%d", i.Rd, i.UImm)
	case OpJSR:
		return fmt.Sprintf("JSR #%d", i.Imm)
	case OpJSRr:
		return fmt.Sprintf("JSRR R%d", i.Rs)
	case OpAND:
		return fmt.Sprintf("AND R%d, R%d, R%d", i.Rd, i.Rs, i.Rt)
	case OpNOT:
		return fmt.Sprintf("NOT R%d, R%d", i.Rd, i.Rs)
	case OpOR:
		return fmt.Sprintf("OR R%d, R%d, R%d", i.Rd, i.Rs, i.Rt)
	case OpXOR:
		return fmt.Sprintf("XOR R%d, R%d, R%d", i.Rd, i.Rs, i.Rt)
	case OpANDi:
		return fmt.Sprintf("AND R%d, R%d, #%d", i.Rd, i.Rs, i.Imm)
	case OpLDR:
		return fmt.Sprintf("LDR R%d, R%d, #%d", i.Rd, i.Rs, i.Imm)
	case OpSTR:
		return fmt.Sprintf("STR R%d, R%d, #%d", i.Rd, i.Rs, i.Imm)
	case OpRTI:
		return "RTI"
	case OpCONST:
		return fmt.Sprintf("CONST R%d, #%d", i.Rd, i.Imm)
	case OpSLL:
		return fmt.Sprintf("SLL R%d, R%d, #%d", i.Rd, i.Rs, i.UImm)
	case OpSRA:
		return fmt.Sprintf("SRA R%d, R%d, #%d", i.Rd, i.Rs, i.UImm)
	case OpSRL:
		return fmt.Sprintf("SRL R%d, R%d, #%d", i.Rd, i.Rs, i.UImm)
	case OpMOD:
		return fmt.Sprintf("MOD R%d, R%d, R%d", i.Rd, i.Rs, i.Rt)
	case OpJMPr:
		return fmt.Sprintf("JMPR R%d", i.Rs)
	case OpJMP:
		return fmt.Sprintf("JMP #%d", i.Imm)
	case OpHICONST:
		return fmt.Sprintf("HICONST R%d, #%d", i.Rd, i.UImm)
	case OpTRAP:
		return fmt.Sprintf("TRAP x%02X", i.UImm)
	default:
		return fmt.Sprintf("<bad op %d>", i.Op)
	}
}
