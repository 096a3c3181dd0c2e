package asm

import "github.com/sarchlab/lc4sim/insts"

// ItemKind discriminates the assembly-item sum type.
type ItemKind uint8

// Assembly item kinds.
const (
	ItemInsn ItemKind = iota
	ItemLabel
	ItemRET
	ItemLEA
	ItemLC
	ItemCode
	ItemData
	ItemAddr
	ItemFalign
	ItemFill
	ItemStringz
	ItemBlkw
	ItemConst
	ItemUConst
)

// Item is one element of the assembly stream. Which fields are meaningful
// depends on Kind. An ItemInsn whose Op is BR, JSR or JMP and whose Target
// is non-empty is symbolic: the displacement is resolved during assembly.
// With an empty Target the instruction is already resolved and is emitted
// as-is, so no cast between symbolic and resolved forms ever happens.
type Item struct {
	Kind ItemKind

	Insn   insts.Insn  // ItemInsn
	Target string      // symbolic BR/JSR/JMP target, LEA/LC source label
	Label  string      // ItemLabel, ItemConst, ItemUConst
	Reg    insts.RName // LEA/LC destination
	Value  int16       // ItemFill, ItemConst
	UValue uint16      // ItemAddr, ItemBlkw, ItemUConst
	Str    string      // ItemStringz

	Line int // source line for diagnostics; 0 when built programmatically
}

// InsnItem wraps a resolved instruction.
func InsnItem(in insts.Insn) Item {
	return Item{Kind: ItemInsn, Insn: in}
}

// Branch builds a symbolic conditional branch to a label.
func Branch(cc insts.CC, target string) Item {
	return Item{Kind: ItemInsn, Insn: insts.Insn{Op: insts.OpBR, CC: cc}, Target: target}
}

// JumpSub builds a symbolic JSR to a label.
func JumpSub(target string) Item {
	return Item{Kind: ItemInsn, Insn: insts.Insn{Op: insts.OpJSR}, Target: target}
}

// Jump builds a symbolic JMP to a label.
func Jump(target string) Item {
	return Item{Kind: ItemInsn, Insn: insts.Insn{Op: insts.OpJMP}, Target: target}
}

// Label declares an address label at the current location.
func Label(name string) Item { return Item{Kind: ItemLabel, Label: name} }

// RET is the pseudo-instruction JMPR R7.
func RET() Item { return Item{Kind: ItemRET} }

// LEA loads the effective address of a label into rd (two words).
func LEA(rd insts.RName, target string) Item {
	return Item{Kind: ItemLEA, Reg: rd, Target: target}
}

// LC loads the value bound to a value label into rd (two words).
func LC(rd insts.RName, target string) Item {
	return Item{Kind: ItemLC, Reg: rd, Target: target}
}

// Code switches placement to the CODE section.
func Code() Item { return Item{Kind: ItemCode} }

// Data switches placement to the DATA section.
func Data() Item { return Item{Kind: ItemData} }

// Addr sets the current section's counter.
func Addr(addr uint16) Item { return Item{Kind: ItemAddr, UValue: addr} }

// Falign rounds the current section's counter up to a multiple of 16.
func Falign() Item { return Item{Kind: ItemFalign} }

// Fill emits one DATA word.
func Fill(v int16) Item { return Item{Kind: ItemFill, Value: v} }

// Stringz emits one DATA word per byte of s plus a NUL terminator.
func Stringz(s string) Item { return Item{Kind: ItemStringz, Str: s} }

// Blkw reserves n words in the current section.
func Blkw(n uint16) Item { return Item{Kind: ItemBlkw, UValue: n} }

// Const binds a 16-bit signed value to a label.
func Const(label string, v int16) Item {
	return Item{Kind: ItemConst, Label: label, Value: v}
}

// UConst binds a 16-bit unsigned value to a label.
func UConst(label string, v uint16) Item {
	return Item{Kind: ItemUConst, Label: label, UValue: v}
}
