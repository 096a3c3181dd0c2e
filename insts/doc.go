// Package insts provides LC4 instruction definitions, encoding and decoding.
//
// This package implements the bit-exact mapping between 16-bit LC4 machine
// words and structured instruction representations. It covers the full
// instruction set:
//   - Control flow: NOP, BR, JSR, JSRR, JMP, JMPR, TRAP, RTI
//   - Arithmetic: ADD, MUL, SUB, DIV, ADDi, MOD
//   - Logic: AND, NOT, OR, XOR, ANDi
//   - Comparison: CMP, CMPu, CMPi, CMPiu
//   - Memory: LDR, STR
//   - Constants and shifts: CONST, HICONST, SLL, SRA, SRL
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	in, err := decoder.Decode(0x1284) // ADD R1, R2, R4
//	word := insts.Encode(in)          // back to 0x1284
package insts
