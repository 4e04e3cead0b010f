package symtab

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
)

// FuncSymbol is one FUNC-type ELF symbol, including LOCAL bindings (which
// never appear in a linker map).
type FuncSymbol struct {
	Name    string
	Address uint64
	Size    uint64
}

// ELFImage is the slice of an ELF file the Symbol Index needs: the text
// section's bytes and load address, the byte order the code was assembled
// in, and the function symbol table.
type ELFImage struct {
	ByteOrder   binary.ByteOrder
	TextAddress uint64
	TextBytes   []byte
	Functions   []FuncSymbol
}

// ReadELF loads the text section and FUNC symbol table from an ELF file.
// It returns an error if the file isn't a MIPS ELF, since mipsmatch has no
// other-architecture decoder to fall back to.
func ReadELF(f *elf.File) (*ELFImage, error) {
	if f.Machine != elf.EM_MIPS {
		return nil, fmt.Errorf("unsupported ELF machine %s, want MIPS", f.Machine)
	}

	text := f.Section(".text")
	if text == nil {
		return nil, fmt.Errorf("ELF has no .text section")
	}
	textBytes, err := text.Data()
	if err != nil {
		return nil, fmt.Errorf("reading .text section: %w", err)
	}

	symbols, err := f.Symbols()
	if err != nil {
		return nil, fmt.Errorf("reading ELF symbol table: %w", err)
	}

	var funcs []FuncSymbol
	for _, sym := range symbols {
		if elf.ST_TYPE(sym.Info) != elf.STT_FUNC {
			continue
		}
		if int(sym.Section) < 0 || int(sym.Section) >= len(f.Sections) {
			continue
		}
		if f.Sections[sym.Section] != text {
			continue
		}
		funcs = append(funcs, FuncSymbol{
			Name:    sym.Name,
			Address: sym.Value,
			Size:    sym.Size,
		})
	}

	return &ELFImage{
		ByteOrder:   f.ByteOrder,
		TextAddress: text.Addr,
		TextBytes:   textBytes,
		Functions:   funcs,
	}, nil
}
