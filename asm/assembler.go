package asm

import (
	"fmt"

	"github.com/sarchlab/lc4sim/insts"
)

// DuplicateLabelError reports a label declared more than once. Address and
// value labels share one namespace.
type DuplicateLabelError struct {
	Label string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("duplicate label %q", e.Label)
}

// UndefinedLabelError reports a reference to a label no item declares.
type UndefinedLabelError struct {
	Label string
}

func (e *UndefinedLabelError) Error() string {
	return fmt.Sprintf("undefined label %q", e.Label)
}

// SectionError reports an item placed in the wrong section.
type SectionError struct {
	What    string
	Section Section
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%s not allowed in %s section", e.What, e.Section)
}

// AlignmentError reports a JSR whose target is not 16-word aligned, which
// the IMM11<<4 page encoding cannot express.
type AlignmentError struct {
	Label string
	Addr  uint16
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("JSR target %q at %#04x is not 16-word aligned", e.Label, e.Addr)
}

// Pad16 rounds a word address up to the next multiple of 16.
func Pad16(addr uint16) uint16 {
	padded := addr & 0xFFF0
	if padded < addr {
		padded += 0x10
	}
	return padded
}

// Assemble lowers an item sequence into a Program. No partial image is
// produced: the first structural error aborts the run.
//
// Pass 1 walks the section counters to place every label. Pass 2 replays
// the same counter arithmetic and emits cells, resolving symbolic branch
// and jump targets against the recorded addresses.
func Assemble(items []Item) (*Program, error) {
	section := SectionCode
	var codeAddr, dataAddr uint16

	labels := make(map[string]SymAddr)
	values := make(map[string]int16)

	declare := func(name string) error {
		if _, ok := labels[name]; ok {
			return &DuplicateLabelError{Label: name}
		}
		if _, ok := values[name]; ok {
			return &DuplicateLabelError{Label: name}
		}
		return nil
	}

	for _, it := range items {
		switch it.Kind {
		case ItemInsn, ItemRET, ItemLEA, ItemLC:
			if section != SectionCode {
				return nil, itemErr(it, &SectionError{What: "instruction", Section: section})
			}
			if it.Kind == ItemLEA || it.Kind == ItemLC {
				codeAddr += 2
			} else {
				codeAddr++
			}

		case ItemLabel:
			if err := declare(it.Label); err != nil {
				return nil, itemErr(it, err)
			}
			if section == SectionCode {
				labels[it.Label] = SymAddr{Section: SectionCode, Addr: codeAddr}
			} else {
				labels[it.Label] = SymAddr{Section: SectionData, Addr: dataAddr}
			}

		case ItemCode:
			section = SectionCode
		case ItemData:
			section = SectionData

		case ItemAddr:
			if section == SectionCode {
				codeAddr = it.UValue
			} else {
				dataAddr = it.UValue
			}

		case ItemFalign:
			if section == SectionCode {
				codeAddr = Pad16(codeAddr)
			} else {
				dataAddr = Pad16(dataAddr)
			}

		case ItemFill:
			if section != SectionData {
				return nil, itemErr(it, &SectionError{What: ".FILL", Section: section})
			}
			dataAddr++

		case ItemStringz:
			if section != SectionData {
				return nil, itemErr(it, &SectionError{What: ".STRINGZ", Section: section})
			}
			dataAddr += uint16(len(it.Str)) + 1

		case ItemBlkw:
			if section == SectionCode {
				codeAddr += it.UValue
			} else {
				dataAddr += it.UValue
			}

		case ItemConst:
			if err := declare(it.Label); err != nil {
				return nil, itemErr(it, err)
			}
			values[it.Label] = it.Value

		case ItemUConst:
			if err := declare(it.Label); err != nil {
				return nil, itemErr(it, err)
			}
			values[it.Label] = int16(it.UValue)
		}
	}

	prog := &Program{
		Memory:   new([insts.MemorySize]Cell),
		Labels:   labels,
		Values:   values,
		BaseData: Pad16(codeAddr),
		Heap:     Pad16(Pad16(codeAddr) + dataAddr),
	}

	if err := emit(items, prog); err != nil {
		return nil, err
	}
	return prog, nil
}

// effective resolves a label to its section and effective address.
func effective(prog *Program, name string) (Section, uint16, error) {
	sym, ok := prog.Labels[name]
	if !ok {
		return 0, 0, &UndefinedLabelError{Label: name}
	}
	if sym.Section == SectionData {
		return sym.Section, sym.Addr + prog.BaseData, nil
	}
	return sym.Section, sym.Addr, nil
}

// emit is pass 2: it replays the pass-1 counter arithmetic so the write
// cursor always equals the pass-1 placement, and fills memory cells.
func emit(items []Item, prog *Program) error {
	section := SectionCode
	var codeAddr, dataAddr uint16

	cursor := func() uint16 {
		if section == SectionCode {
			return codeAddr
		}
		return prog.BaseData + dataAddr
	}
	advance := func(n uint16) {
		if section == SectionCode {
			codeAddr += n
		} else {
			dataAddr += n
		}
	}
	put := func(c Cell) {
		prog.Memory[cursor()] = c
		advance(1)
	}

	for _, it := range items {
		switch it.Kind {
		case ItemInsn:
			in := it.Insn
			if it.Target != "" {
				resolved, err := resolveTarget(prog, in, it.Target, cursor())
				if err != nil {
					return itemErr(it, err)
				}
				in = resolved
			}
			put(CodeCell(in))

		case ItemRET:
			put(CodeCell(insts.Insn{Op: insts.OpJMPr, Rs: insts.R7}))

		case ItemLEA:
			_, addr, err := effective(prog, it.Target)
			if err != nil {
				return itemErr(it, err)
			}
			put(CodeCell(insts.Insn{Op: insts.OpCONST, Rd: it.Reg, Imm: insts.SignExtend(addr&0x01FF, 9)}))
			put(CodeCell(insts.Insn{Op: insts.OpHICONST, Rd: it.Reg, UImm: addr >> 8}))

		case ItemLC:
			v, ok := prog.Values[it.Target]
			if !ok {
				return itemErr(it, &UndefinedLabelError{Label: it.Target})
			}
			word := uint16(v)
			put(CodeCell(insts.Insn{Op: insts.OpCONST, Rd: it.Reg, Imm: insts.SignExtend(word&0x01FF, 9)}))
			put(CodeCell(insts.Insn{Op: insts.OpHICONST, Rd: it.Reg, UImm: word >> 8}))

		case ItemCode:
			section = SectionCode
		case ItemData:
			section = SectionData

		case ItemAddr:
			if section == SectionCode {
				codeAddr = it.UValue
			} else {
				dataAddr = it.UValue
			}

		case ItemFalign:
			if section == SectionCode {
				codeAddr = Pad16(codeAddr)
			} else {
				dataAddr = Pad16(dataAddr)
			}

		case ItemFill:
			put(DataCell(it.Value))

		case ItemStringz:
			for i := 0; i < len(it.Str); i++ {
				put(DataCell(int16(it.Str[i])))
			}
			put(DataCell(0))

		case ItemBlkw:
			advance(it.UValue)

		case ItemLabel, ItemConst, ItemUConst:
			// Placed in pass 1; the replayed counters already agree.
		}
	}
	return nil
}

// resolveTarget fills the displacement of a symbolic BR, JSR or JMP sitting
// at address addr.
func resolveTarget(prog *Program, in insts.Insn, target string, addr uint16) (insts.Insn, error) {
	sec, tgt, err := effective(prog, target)
	if err != nil {
		return in, err
	}
	if sec != SectionCode {
		return in, fmt.Errorf("branch target %q: not in CODE section", target)
	}

	switch in.Op {
	case insts.OpBR:
		off, err := insts.NewIMM9(int(tgt) - int(addr) - 1)
		if err != nil {
			return in, fmt.Errorf("branch to %q: %w", target, err)
		}
		in.Imm = off

	case insts.OpJMP:
		off, err := insts.NewIMM11(int(tgt) - int(addr) - 1)
		if err != nil {
			return in, fmt.Errorf("jump to %q: %w", target, err)
		}
		in.Imm = off

	case insts.OpJSR:
		// JSR is absolute within the current half of the address space,
		// scaled by 16; unaligned targets cannot round-trip.
		if tgt&0xF != 0 {
			return in, &AlignmentError{Label: target, Addr: tgt}
		}
		off, err := insts.NewIMM11((int(tgt) - (int(addr) & 0x8000)) >> 4)
		if err != nil {
			return in, fmt.Errorf("JSR to %q: %w", target, err)
		}
		in.Imm = off

	default:
		return in, fmt.Errorf("instruction %s cannot take label target %q", in.Op, target)
	}
	return in, nil
}

// itemErr decorates an error with the item's source line when known.
func itemErr(it Item, err error) error {
	if it.Line > 0 {
		return fmt.Errorf("line %d: %w", it.Line, err)
	}
	return err
}
