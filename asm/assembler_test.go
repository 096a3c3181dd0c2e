package asm_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lc4sim/asm"
	"github.com/sarchlab/lc4sim/insts"
)

var _ = Describe("Pad16", func() {
	It("should round up to the next multiple of 16", func() {
		Expect(asm.Pad16(0x0037)).To(Equal(uint16(0x0040)))
		Expect(asm.Pad16(0x0040)).To(Equal(uint16(0x0040)))
		Expect(asm.Pad16(0)).To(Equal(uint16(0)))
		Expect(asm.Pad16(1)).To(Equal(uint16(0x10)))
	})
})

var _ = Describe("Assemble", func() {
	It("should lay out CODE at 0 and DATA at the padded code length", func() {
		prog, err := asm.Assemble([]asm.Item{
			asm.InsnItem(insts.Insn{Op: insts.OpCONST, Rd: insts.R0, Imm: 5}),
			asm.InsnItem(insts.Insn{Op: insts.OpCONST, Rd: insts.R1, Imm: -3}),
			asm.InsnItem(insts.Insn{Op: insts.OpADD, Rd: insts.R2, Rs: insts.R0, Rt: insts.R1}),
			asm.Data(),
			asm.Label("X"),
			asm.Fill(7),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(prog.BaseData).To(Equal(uint16(0x10)))
		Expect(prog.Heap).To(Equal(uint16(0x20)))
		Expect(prog.Heap % 16).To(BeZero())

		addr, ok := prog.LabelAddr("X")
		Expect(ok).To(BeTrue())
		Expect(addr).To(Equal(uint16(0x10)))
		Expect(prog.Memory[0x10]).To(Equal(asm.DataCell(7)))

		Expect(prog.Memory[0].Kind).To(Equal(asm.CellCode))
		Expect(prog.Memory[0].Insn.Op).To(Equal(insts.OpCONST))
	})

	It("should keep CODE labels below BaseData and DATA labels inside the heap", func() {
		prog, err := asm.Assemble([]asm.Item{
			asm.Label("ENTRY"),
			asm.InsnItem(insts.Insn{Op: insts.OpNOP}),
			asm.Label("AFTER"),
			asm.InsnItem(insts.Insn{Op: insts.OpNOP}),
			asm.Data(),
			asm.Label("BUF"),
			asm.Blkw(4),
			asm.Label("TAIL"),
			asm.Fill(-1),
		})
		Expect(err).NotTo(HaveOccurred())

		for _, name := range []string{"ENTRY", "AFTER"} {
			addr, ok := prog.LabelAddr(name)
			Expect(ok).To(BeTrue())
			Expect(addr).To(BeNumerically("<", prog.BaseData), name)
		}
		for _, name := range []string{"BUF", "TAIL"} {
			addr, ok := prog.LabelAddr(name)
			Expect(ok).To(BeTrue())
			Expect(addr).To(BeNumerically(">=", prog.BaseData), name)
			Expect(addr).To(BeNumerically("<", prog.Heap), name)
		}
	})

	It("should resolve branch displacements against the following address", func() {
		prog, err := asm.Assemble([]asm.Item{
			asm.Label("LOOP"),
			asm.InsnItem(insts.Insn{Op: insts.OpNOP}),
			asm.InsnItem(insts.Insn{Op: insts.OpNOP}),
			asm.Branch(insts.P, "LOOP"),
			asm.Branch(insts.N|insts.Z|insts.P, "DONE"),
			asm.Label("DONE"),
			asm.InsnItem(insts.Insn{Op: insts.OpNOP}),
		})
		Expect(err).NotTo(HaveOccurred())

		back := prog.Memory[2].Insn
		Expect(back.Op).To(Equal(insts.OpBR))
		Expect(back.Imm).To(Equal(int16(-3)))

		fwd := prog.Memory[3].Insn
		Expect(fwd.Imm).To(Equal(int16(0)))
	})

	It("should expand RET, LEA and LC", func() {
		prog, err := asm.Assemble([]asm.Item{
			asm.LEA(insts.R0, "BUF"),
			asm.LC(insts.R1, "LIMIT"),
			asm.RET(),
			asm.Const("LIMIT", -2),
			asm.Data(),
			asm.Label("BUF"),
			asm.Blkw(1),
		})
		Expect(err).NotTo(HaveOccurred())

		bufAddr, _ := prog.LabelAddr("BUF")
		Expect(prog.Memory[0].Insn).To(Equal(insts.Insn{
			Op: insts.OpCONST, Rd: insts.R0, Imm: insts.SignExtend(bufAddr&0x1FF, 9),
		}))
		Expect(prog.Memory[1].Insn).To(Equal(insts.Insn{
			Op: insts.OpHICONST, Rd: insts.R0, UImm: bufAddr >> 8,
		}))

		limit := uint16(0xFFFE) // -2
		Expect(prog.Memory[2].Insn).To(Equal(insts.Insn{
			Op: insts.OpCONST, Rd: insts.R1, Imm: insts.SignExtend(limit&0x1FF, 9),
		}))
		Expect(prog.Memory[3].Insn).To(Equal(insts.Insn{
			Op: insts.OpHICONST, Rd: insts.R1, UImm: limit >> 8,
		}))

		Expect(prog.Memory[4].Insn).To(Equal(insts.Insn{Op: insts.OpJMPr, Rs: insts.R7}))
	})

	It("should NUL-terminate STRINGZ and keep later placement in step", func() {
		prog, err := asm.Assemble([]asm.Item{
			asm.InsnItem(insts.Insn{Op: insts.OpNOP}),
			asm.Data(),
			asm.Label("S"),
			asm.Stringz("ab"),
			asm.Label("AFTER"),
			asm.Fill(5),
		})
		Expect(err).NotTo(HaveOccurred())

		s, _ := prog.LabelAddr("S")
		Expect(prog.Memory[s]).To(Equal(asm.DataCell('a')))
		Expect(prog.Memory[s+1]).To(Equal(asm.DataCell('b')))
		Expect(prog.Memory[s+2]).To(Equal(asm.DataCell(0)))

		after, _ := prog.LabelAddr("AFTER")
		Expect(after).To(Equal(s + 3))
		Expect(prog.Memory[after]).To(Equal(asm.DataCell(5)))
	})

	It("should honor .ADDR and .FALIGN in both passes", func() {
		prog, err := asm.Assemble([]asm.Item{
			asm.Addr(0x0037),
			asm.Falign(),
			asm.Label("FN"),
			asm.InsnItem(insts.Insn{Op: insts.OpNOP}),
		})
		Expect(err).NotTo(HaveOccurred())

		fn, _ := prog.LabelAddr("FN")
		Expect(fn).To(Equal(uint16(0x0040)))
		Expect(prog.Memory[0x0040].Kind).To(Equal(asm.CellCode))
	})

	It("should reject duplicate labels across both tables", func() {
		_, err := asm.Assemble([]asm.Item{
			asm.Label("A"),
			asm.Label("A"),
		})
		var dup *asm.DuplicateLabelError
		Expect(errors.As(err, &dup)).To(BeTrue())
		Expect(dup.Label).To(Equal("A"))

		_, err = asm.Assemble([]asm.Item{
			asm.Label("B"),
			asm.Const("B", 1),
		})
		Expect(errors.As(err, &dup)).To(BeTrue())
	})

	It("should reject items in the wrong section", func() {
		_, err := asm.Assemble([]asm.Item{
			asm.Data(),
			asm.InsnItem(insts.Insn{Op: insts.OpNOP}),
		})
		var sec *asm.SectionError
		Expect(errors.As(err, &sec)).To(BeTrue())

		_, err = asm.Assemble([]asm.Item{
			asm.Fill(1),
		})
		Expect(errors.As(err, &sec)).To(BeTrue())

		_, err = asm.Assemble([]asm.Item{
			asm.Stringz("x"),
		})
		Expect(errors.As(err, &sec)).To(BeTrue())
	})

	It("should reject undefined and out-of-range targets", func() {
		_, err := asm.Assemble([]asm.Item{
			asm.Branch(insts.P, "NOWHERE"),
		})
		var undef *asm.UndefinedLabelError
		Expect(errors.As(err, &undef)).To(BeTrue())
		Expect(undef.Label).To(Equal("NOWHERE"))

		_, err = asm.Assemble([]asm.Item{
			asm.Branch(insts.P, "FAR"),
			asm.Blkw(400),
			asm.Label("FAR"),
			asm.InsnItem(insts.Insn{Op: insts.OpNOP}),
		})
		var rng *insts.ImmRangeError
		Expect(errors.As(err, &rng)).To(BeTrue())
	})

	It("should reject a branch into the DATA section", func() {
		_, err := asm.Assemble([]asm.Item{
			asm.Branch(insts.P, "D"),
			asm.Data(),
			asm.Label("D"),
			asm.Fill(0),
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("CODE"))
	})

	It("should reject a misaligned JSR target", func() {
		_, err := asm.Assemble([]asm.Item{
			asm.JumpSub("FN"),
			asm.Label("FN"), // address 1
			asm.RET(),
		})
		var align *asm.AlignmentError
		Expect(errors.As(err, &align)).To(BeTrue())
		Expect(align.Addr).To(Equal(uint16(1)))
	})

	It("should scale an aligned JSR target", func() {
		prog, err := asm.Assemble([]asm.Item{
			asm.JumpSub("FN"),
			asm.Falign(),
			asm.Label("FN"),
			asm.RET(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Memory[0].Insn).To(Equal(insts.Insn{Op: insts.OpJSR, Imm: 1}))
	})

	It("should produce identical output for identical input", func() {
		items := []asm.Item{
			asm.Label("GO"),
			asm.InsnItem(insts.Insn{Op: insts.OpCONST, Rd: insts.R0, Imm: 1}),
			asm.Branch(insts.P, "GO"),
			asm.Data(),
			asm.Stringz("hi"),
		}
		a, err := asm.Assemble(items)
		Expect(err).NotTo(HaveOccurred())
		b, err := asm.Assemble(items)
		Expect(err).NotTo(HaveOccurred())

		for addr := uint16(0); addr < a.Heap; addr++ {
			Expect(a.Memory[addr].Word()).To(Equal(b.Memory[addr].Word()), "addr %#04x", addr)
		}
	})

	It("should survive a flatten-then-decode round trip", func() {
		prog, err := asm.Assemble([]asm.Item{
			asm.InsnItem(insts.Insn{Op: insts.OpCONST, Rd: insts.R0, Imm: 5}),
			asm.Branch(insts.N|insts.Z|insts.P, "END"),
			asm.Label("END"),
			asm.RET(),
		})
		Expect(err).NotTo(HaveOccurred())

		decoder := insts.NewDecoder()
		for addr := uint16(0); addr < prog.Heap; addr++ {
			cell := prog.Memory[addr]
			if cell.Kind != asm.CellCode {
				continue
			}
			decoded, err := decoder.Decode(uint16(cell.Word()))
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(cell.Insn), "addr %#04x", addr)
		}
	})
})
