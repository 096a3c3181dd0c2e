package asm

import "github.com/sarchlab/lc4sim/insts"

// Section selects which address counter an item advances and whether the
// DATA base offset applies to a label's effective address.
type Section uint8

// Sections.
const (
	SectionCode Section = iota
	SectionData
)

func (s Section) String() string {
	if s == SectionCode {
		return "CODE"
	}
	return "DATA"
}

// CellKind discriminates memory cells.
type CellKind uint8

// Cell kinds. The zero value is a DATA cell holding 0.
const (
	CellData CellKind = iota
	CellCode
)

// Cell is one word of the assembled image: either a structured instruction
// or a raw 16-bit value.
type Cell struct {
	Kind CellKind
	Insn insts.Insn // CellCode
	Data int16      // CellData
}

// CodeCell wraps an instruction.
func CodeCell(in insts.Insn) Cell { return Cell{Kind: CellCode, Insn: in} }

// DataCell wraps a raw word.
func DataCell(v int16) Cell { return Cell{Kind: CellData, Data: v} }

// Word flattens the cell to its 16-bit encoded form.
func (c Cell) Word() int16 {
	if c.Kind == CellCode {
		return insts.Encode(c.Insn)
	}
	return c.Data
}

// SymAddr records where a label was placed: its section and the raw value
// of that section's counter at the point of declaration.
type SymAddr struct {
	Section Section
	Addr    uint16
}

// Program is the result of assembly: the filled memory image, the symbol
// tables, and the layout boundaries. It is not mutated after Assemble
// returns.
type Program struct {
	Memory *[insts.MemorySize]Cell

	// Labels maps address labels to their section and raw address.
	Labels map[string]SymAddr

	// Values maps value labels (.CONST/.UCONST) to their bound words.
	Values map[string]int16

	// BaseData is the effective start of the DATA section: the code
	// section's length padded up to a multiple of 16.
	BaseData uint16

	// Heap is the word address immediately after the DATA section,
	// padded up to a multiple of 16. The object file carries cells
	// [0, Heap).
	Heap uint16
}

// LabelAddr returns the effective address of an address label: raw for
// CODE labels, raw plus BaseData for DATA labels.
func (p *Program) LabelAddr(name string) (uint16, bool) {
	sym, ok := p.Labels[name]
	if !ok {
		return 0, false
	}
	if sym.Section == SectionData {
		return sym.Addr + p.BaseData, true
	}
	return sym.Addr, true
}
