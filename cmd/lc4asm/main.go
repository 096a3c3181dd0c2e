// Package main provides the LC4 assembler command.
// lc4asm lowers a textual assembly program into an object file.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/lc4sim/asm"
	"github.com/sarchlab/lc4sim/loader"
)

func main() {
	var output string
	var symbols bool
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "lc4asm <source.asm>",
		Short: "LC4 assembler — lower assembly source into an object file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath := args[0]

			f, err := os.Open(sourcePath)
			if err != nil {
				return fmt.Errorf("failed to open source file: %w", err)
			}
			defer func() { _ = f.Close() }()

			items, err := asm.Parse(f)
			if err != nil {
				return fmt.Errorf("%s: %w", sourcePath, err)
			}

			prog, err := asm.Assemble(items)
			if err != nil {
				return fmt.Errorf("%s: %w", sourcePath, err)
			}

			if output == "" {
				output = strings.TrimSuffix(sourcePath, ".asm") + ".obj"
			}
			if err := loader.WriteObjectFile(output, prog); err != nil {
				return err
			}

			if verbose {
				fmt.Printf("Assembled: %s\n", sourcePath)
				fmt.Printf("Heap: %#04x (%d words)\n", prog.Heap, prog.Heap)
				fmt.Printf("Output: %s\n", output)
			}
			if symbols {
				printSymbols(prog)
			}
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&output, "output", "o", "", "object file path (default: source with .obj)")
	rootCmd.Flags().BoolVar(&symbols, "symbols", false, "print the symbol tables")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printSymbols lists address labels by effective address, then value labels.
func printSymbols(prog *asm.Program) {
	names := make([]string, 0, len(prog.Labels))
	for name := range prog.Labels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, _ := prog.LabelAddr(names[i])
		b, _ := prog.LabelAddr(names[j])
		return a < b
	})
	for _, name := range names {
		addr, _ := prog.LabelAddr(name)
		fmt.Printf("%#04x %s %s\n", addr, prog.Labels[name].Section, name)
	}

	values := make([]string, 0, len(prog.Values))
	for name := range prog.Values {
		values = append(values, name)
	}
	sort.Strings(values)
	for _, name := range values {
		fmt.Printf("     CONST %s = %d\n", name, prog.Values[name])
	}
}
