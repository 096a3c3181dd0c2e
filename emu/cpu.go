// Package emu provides functional LC4 emulation.
package emu

import (
	"fmt"
	"math"

	"github.com/sarchlab/lc4sim/insts"
	"github.com/sarchlab/lc4sim/loader"
)

// CPU holds the architectural state of one LC4 core: eight 16-bit
// registers, the program counter, the NZP condition code, the privilege
// flag, and the flat word-addressed memory.
type CPU struct {
	Regs   [8]int16
	PC     uint16
	NZP    insts.CC
	Priv   bool
	Memory *[insts.MemorySize]int16

	decoder   *insts.Decoder
	stepCount uint64
}

// Boot creates a CPU over a loaded image: registers zero, PC at 0, NZP at
// Z, user mode. The CPU takes ownership of the image memory.
func Boot(img *loader.Image) *CPU {
	return &CPU{
		NZP:     insts.Z,
		Memory:  img.Words,
		decoder: insts.NewDecoder(),
	}
}

// StepCount returns the number of instructions executed so far.
func (c *CPU) StepCount() uint64 {
	return c.stepCount
}

// Step fetches the word at PC, decodes it and executes it. Decode failures
// and execution faults come back as errors with the CPU state, including
// the PC, unchanged apart from what a successful prefix performed.
func (c *CPU) Step() error {
	word := uint16(c.Memory[c.PC])
	in, err := c.decoder.Decode(word)
	if err != nil {
		return fmt.Errorf("fetch at PC=%#04x: %w", c.PC, err)
	}
	if err := c.Execute(in); err != nil {
		return err
	}
	c.stepCount++
	return nil
}

// Run executes up to maxSteps instructions (0 means no limit) and returns
// the number executed. It stops early on the first error.
func (c *CPU) Run(maxSteps uint64) (uint64, error) {
	var n uint64
	for maxSteps == 0 || n < maxSteps {
		if err := c.Step(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ordering maps a three-way comparison to a single NZP bit.
func ordering(a, b int32) insts.CC {
	switch {
	case a < b:
		return insts.N
	case a > b:
		return insts.P
	default:
		return insts.Z
	}
}

// Execute applies one instruction to the CPU state. Arithmetic wraps in
// 16-bit two's complement. JSR, JSRR, JMPR, RTI and TRAP set the PC
// outright; every other instruction, BR and JMP included, advances the PC
// by one afterwards.
func (c *CPU) Execute(in insts.Insn) error {
	pcIncr := true

	switch in.Op {
	case insts.OpNOP:

	case insts.OpBR:
		if in.CC&c.NZP != 0 {
			c.PC += uint16(in.Imm)
		}

	case insts.OpADD:
		c.Regs[in.Rd] = c.Regs[in.Rs] + c.Regs[in.Rt]
	case insts.OpMUL:
		c.Regs[in.Rd] = c.Regs[in.Rs] * c.Regs[in.Rt]
	case insts.OpSUB:
		c.Regs[in.Rd] = c.Regs[in.Rs] - c.Regs[in.Rt]
	case insts.OpDIV:
		q, err := c.divide(c.Regs[in.Rs], c.Regs[in.Rt], false)
		if err != nil {
			return err
		}
		c.Regs[in.Rd] = q
	case insts.OpMOD:
		r, err := c.divide(c.Regs[in.Rs], c.Regs[in.Rt], true)
		if err != nil {
			return err
		}
		c.Regs[in.Rd] = r
	case insts.OpADDi:
		c.Regs[in.Rd] = c.Regs[in.Rs] + in.Imm

	case insts.OpCMP:
		c.NZP = ordering(int32(c.Regs[in.Rd]), int32(c.Regs[in.Rt]))
	case insts.OpCMPu:
		c.NZP = ordering(int32(uint16(c.Regs[in.Rd])), int32(uint16(c.Regs[in.Rt])))
	case insts.OpCMPi:
		c.NZP = ordering(int32(c.Regs[in.Rd]), int32(in.Imm))
	case insts.OpCMPiu:
		c.NZP = ordering(int32(uint16(c.Regs[in.Rd])), int32(in.UImm))

	case insts.OpJSR:
		pcIncr = false
		c.Regs[insts.R7] = int16(c.PC + 1)
		c.PC = c.PC&0x8000 | uint16(in.Imm)<<4
	case insts.OpJSRr:
		pcIncr = false
		c.Regs[insts.R7] = int16(c.PC + 1)
		c.PC = uint16(c.Regs[in.Rs])

	case insts.OpAND:
		c.Regs[in.Rd] = c.Regs[in.Rs] & c.Regs[in.Rt]
	case insts.OpNOT:
		c.Regs[in.Rd] = ^c.Regs[in.Rs]
	case insts.OpOR:
		c.Regs[in.Rd] = c.Regs[in.Rs] | c.Regs[in.Rt]
	case insts.OpXOR:
		c.Regs[in.Rd] = c.Regs[in.Rs] ^ c.Regs[in.Rt]
	case insts.OpANDi:
		c.Regs[in.Rd] = c.Regs[in.Rs] & in.Imm

	case insts.OpLDR:
		addr := uint16(c.Regs[in.Rs] + in.Imm)
		if !c.Priv && addr >= insts.PrivBase {
			return &UnauthorizedError{Addr: addr, PC: c.PC}
		}
		c.Regs[in.Rd] = c.Memory[addr]
	case insts.OpSTR:
		addr := uint16(c.Regs[in.Rs] + in.Imm)
		if !c.Priv && addr >= insts.PrivBase {
			return &UnauthorizedError{Addr: addr, PC: c.PC, Store: true}
		}
		c.Memory[addr] = c.Regs[in.Rd]

	case insts.OpRTI:
		pcIncr = false
		c.PC = uint16(c.Regs[insts.R7])
		c.Priv = false

	case insts.OpCONST:
		c.Regs[in.Rd] = in.Imm
	case insts.OpHICONST:
		c.Regs[in.Rd] = c.Regs[in.Rd]&0x00FF | int16(in.UImm<<8)

	case insts.OpSLL:
		c.Regs[in.Rd] = c.Regs[in.Rs] << in.UImm
	case insts.OpSRA:
		c.Regs[in.Rd] = c.Regs[in.Rs] >> in.UImm
	case insts.OpSRL:
		c.Regs[in.Rd] = int16(uint16(c.Regs[in.Rs]) >> in.UImm)

	case insts.OpJMPr:
		pcIncr = false
		c.PC = uint16(c.Regs[in.Rs])
	case insts.OpJMP:
		// Falls through to the PC increment like BR, so the assembler's
		// target-(addr+1) displacement lands exactly on the target.
		c.PC += uint16(in.Imm)

	case insts.OpTRAP:
		pcIncr = false
		c.Regs[insts.R7] = int16(c.PC + 1)
		c.PC = insts.PrivBase | in.UImm
		c.Priv = true
	}

	if pcIncr {
		c.PC++
	}
	return nil
}

// divide implements DIV and MOD: truncated toward zero, wrapping on the
// MinInt16/-1 overflow case.
func (c *CPU) divide(a, b int16, mod bool) (int16, error) {
	if b == 0 {
		return 0, &DivideByZeroError{PC: c.PC}
	}
	if a == math.MinInt16 && b == -1 {
		if mod {
			return 0, nil
		}
		return math.MinInt16, nil
	}
	if mod {
		return a % b, nil
	}
	return a / b, nil
}
