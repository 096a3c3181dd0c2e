// Package main provides the LC4 debugger command.
// lc4dbg loads an object file and steps it interactively.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/lc4sim/emu"
	"github.com/sarchlab/lc4sim/insts"
	"github.com/sarchlab/lc4sim/loader"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lc4dbg <program.obj>",
		Short: "LC4 debugger — step an object file interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := loader.ReadObjectFile(args[0])
			if err != nil {
				return err
			}
			cpu := emu.Boot(img)
			printCPU(cpu)
			repl(cpu)
			return nil
		},
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// repl reads single-letter commands from stdin:
// s steps, r N runs N steps, p prints, q quits.
func repl(cpu *emu.CPU) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "s":
			if err := cpu.Step(); err != nil {
				fmt.Printf("fault: %v\n", err)
			}
			printCPU(cpu)
		case "r":
			n := uint64(0)
			if len(fields) > 1 {
				parsed, err := strconv.ParseUint(fields[1], 10, 64)
				if err != nil {
					fmt.Printf("bad step count %q\n", fields[1])
					continue
				}
				n = parsed
			}
			ran, err := cpu.Run(n)
			fmt.Printf("ran %d step(s)\n", ran)
			if err != nil {
				fmt.Printf("fault: %v\n", err)
			}
			printCPU(cpu)
		case "p":
			printCPU(cpu)
		case "q":
			return
		default:
			fmt.Println("commands: s (step), r N (run), p (print), q (quit)")
		}
	}
}

// printCPU shows the register file, flags, and a disassembled window of
// memory around the PC.
func printCPU(cpu *emu.CPU) {
	fmt.Printf("Regs %v NZP %03b PC %#04x priv %v steps %d\n",
		cpu.Regs, cpu.NZP, cpu.PC, cpu.Priv, cpu.StepCount())

	const radius = 3
	decoder := insts.NewDecoder()
	low := int(cpu.PC) - radius
	if low < 0 {
		low = 0
	}
	high := int(cpu.PC) + radius + 1
	if high > insts.MemorySize {
		high = insts.MemorySize
	}
	for addr := low; addr < high; addr++ {
		marker := " "
		if addr == int(cpu.PC) {
			marker = "*"
		}
		word := cpu.Memory[addr]
		text := fmt.Sprintf(".FILL #%d", word)
		if in, err := decoder.Decode(uint16(word)); err == nil {
			text = in.String()
		}
		fmt.Printf("%s %#04x %04x  %s\n", marker, addr, uint16(word), text)
	}
}
