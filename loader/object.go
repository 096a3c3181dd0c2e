// Package loader provides LC4 object-file serialization and loading.
//
// The format is minimal and big-endian: one u16 header word holding the
// heap boundary H, followed by H consecutive 16-bit words — memory cells
// [0, H), each the encoded form of its CODE or DATA cell. There is no
// magic number, no version and no other framing.
package loader

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/lc4sim/asm"
	"github.com/sarchlab/lc4sim/insts"
)

// Image is a loaded memory image. Cells are raw 16-bit words; the
// simulator re-decodes CODE words at each fetch.
type Image struct {
	Words *[insts.MemorySize]int16
	Heap  uint16
}

// NewImage returns an empty image.
func NewImage() *Image {
	return &Image{Words: new([insts.MemorySize]int16)}
}

// WriteObject serializes an assembled program.
func WriteObject(w io.Writer, prog *asm.Program) error {
	if err := binary.Write(w, binary.BigEndian, prog.Heap); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for addr := uint16(0); addr < prog.Heap; addr++ {
		if err := binary.Write(w, binary.BigEndian, prog.Memory[addr].Word()); err != nil {
			return fmt.Errorf("failed to write word at %#04x: %w", addr, err)
		}
	}
	return nil
}

// ReadObject deserializes an object file into an Image. Fewer than 2+2H
// bytes is a truncation error.
func ReadObject(r io.Reader) (*Image, error) {
	img := NewImage()
	if err := binary.Read(r, binary.BigEndian, &img.Heap); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for addr := uint16(0); addr < img.Heap; addr++ {
		if err := binary.Read(r, binary.BigEndian, &img.Words[addr]); err != nil {
			return nil, fmt.Errorf("truncated object file at word %d of %d: %w", addr, img.Heap, err)
		}
	}
	return img, nil
}

// WriteObjectFile serializes an assembled program to a file.
func WriteObjectFile(path string, prog *asm.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create object file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return WriteObject(f, prog)
}

// ReadObjectFile loads an object file from disk.
func ReadObjectFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open object file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadObject(f)
}
