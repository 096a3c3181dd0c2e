// Package asm lowers LC4 assembly into a resolved memory image.
//
// The package consumes an ordered sequence of assembly items — structured
// instructions, pseudo-instructions (RET, LEA, LC), section and data
// directives, and label declarations — and produces a Program: a fully
// filled 65,536-cell memory image, the address and value symbol tables,
// and the heap boundary.
//
// Items are usually produced by Parse from textual source, but any
// front end may construct them directly:
//
//	items, err := asm.Parse(file)
//	prog, err := asm.Assemble(items)
//
// Assembly is two-pass: pass 1 places labels by walking section counters,
// pass 2 emits cells with branch and jump displacements resolved against
// the recorded label addresses. Branch targets live in the CODE section;
// DATA labels are offset by the code section's padded length.
package asm
