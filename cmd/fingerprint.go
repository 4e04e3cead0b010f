package cmd

import (
	"debug/elf"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ttkb-llc/mipsmatch/catalog"
	"github.com/ttkb-llc/mipsmatch/mips"
	"github.com/ttkb-llc/mipsmatch/rk"
	"github.com/ttkb-llc/mipsmatch/symtab"
)

var (
	OutputFlag = &cli.PathFlag{
		Name:     "output",
		Usage:    "output path for the catalog or match reports (default: stdout)",
		Required: false,
	}
	ModulusFlag = &cli.Uint64Flag{
		Name:     "modulus",
		Usage:    "override the Hasher modulus for this catalog (advanced; recorded per-segment)",
		Required: false,
	}
)

func CreateFingerprintCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "fingerprint",
		Usage:       "generate a catalog of segment and function fingerprints from a map file and ELF",
		Description: "generate a catalog of segment and function fingerprints from a map file and ELF",
		ArgsUsage:   "<map-path> <elf-path>",
		Action:      action,
		Flags: []cli.Flag{
			OutputFlag,
			ModulusFlag,
		},
	}
}

var FingerprintCommand = CreateFingerprintCommand(RunFingerprint)

func RunFingerprint(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return malformedInput(fmt.Errorf("usage: fingerprint <map-path> <elf-path>"))
	}
	mapPath := ctx.Args().Get(0)
	elfPath := ctx.Args().Get(1)

	var modulus uint64
	if ctx.IsSet(ModulusFlag.Name) {
		modulus = ctx.Uint64(ModulusFlag.Name)
	}

	cat, err := buildCatalog(mapPath, elfPath, modulus)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := ctx.Path(OutputFlag.Name); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return ioFailure(fmt.Errorf("opening output %q: %w", path, err))
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if err := catalog.Write(out, cat); err != nil {
		return ioFailure(fmt.Errorf("writing catalog: %w", err))
	}
	return nil
}

func buildCatalog(mapPath, elfPath string, modulus uint64) (*catalog.Catalog, error) {
	mapFile, err := os.Open(mapPath)
	if err != nil {
		return nil, ioFailure(fmt.Errorf("opening map file: %w", err))
	}
	defer func() { _ = mapFile.Close() }()

	mapRanges, err := symtab.ParseMapFile(mapFile)
	if err != nil {
		return nil, malformedInput(fmt.Errorf("parsing map file: %w", err))
	}

	elfFileHandle, err := os.Open(elfPath)
	if err != nil {
		return nil, ioFailure(fmt.Errorf("opening ELF file: %w", err))
	}
	defer func() { _ = elfFileHandle.Close() }()

	elfFile, err := elf.NewFile(elfFileHandle)
	if err != nil {
		return nil, malformedInput(fmt.Errorf("parsing ELF file: %w", err))
	}
	defer func() { _ = elfFile.Close() }()

	image, err := symtab.ReadELF(elfFile)
	if err != nil {
		return nil, malformedInput(fmt.Errorf("reading ELF: %w", err))
	}

	segments, diags := symtab.BuildIndex(mapRanges, image)
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "warning: skipping segment for %s: %s\n", d.Object, d.Message)
	}

	rodataRanges := symtab.FilterSection(mapRanges, ".rodata")
	var rodataAddr uint64
	var rodataBytes []byte
	if section := elfFile.Section(".rodata"); section != nil {
		rodataAddr = section.Addr
		if data, err := section.Data(); err == nil {
			rodataBytes = data
		}
	}

	cat := &catalog.Catalog{
		Version:   catalog.Version,
		Generator: "mipsmatch",
		Created:   time.Now().UTC().Format(time.RFC3339),
		Segments:  make([]catalog.SegmentRecord, 0, len(segments)),
	}

	for _, seg := range segments {
		record := fingerprintSegment(seg, image, modulus)
		if kind := classifyRODataForSegment(seg, image, rodataRanges, rodataAddr, rodataBytes); kind != "" {
			record.RODATA = kind
		}
		cat.Segments = append(cat.Segments, record)
	}

	return cat, nil
}

func fingerprintSegment(seg symtab.Segment, image *symtab.ELFImage, modulus uint64) catalog.SegmentRecord {
	raw := seg.TextRange(image)
	normalized := mips.Normalize(raw, image.ByteOrder)

	record := catalog.SegmentRecord{
		Name:        seg.Name,
		Size:        uint32(seg.Size),
		Fingerprint: catalog.HexUint32(rk.Hash(normalized, modulus)),
	}
	if modulus != 0 && modulus != rk.DefaultModulus {
		record.Modulus = modulus
	}

	offset := uint32(0)
	for _, fn := range seg.Functions {
		fnRaw := raw[offset : offset+uint32(fn.Size)]
		fnNorm := mips.Normalize(fnRaw, image.ByteOrder)
		record.Symbols = append(record.Symbols, catalog.SymbolRecord{
			Name:        fn.Name,
			Offset:      offset,
			Size:        uint32(fn.Size),
			Fingerprint: catalog.HexUint32(rk.Hash(fnNorm, modulus)),
		})
		offset += uint32(fn.Size)
	}

	return record
}

// classifyRODataForSegment attaches the supplemental RODATA jump-table
// classification when the map attributes a rodata range to this segment's
// source object, and is absent (not "unknown") when no such range exists at
// all. A range that was found but could not be classified is reported as
// "unknown", per the RODataSignature enum.
func classifyRODataForSegment(seg symtab.Segment, image *symtab.ELFImage, rodataRanges []symtab.ObjectRange, rodataAddr uint64, rodataBytes []byte) string {
	for _, r := range rodataRanges {
		if r.Object != seg.Object {
			continue
		}
		if r.Address < rodataAddr {
			return symtab.RODataUnknown.String()
		}
		start := r.Address - rodataAddr
		if start+r.Size > uint64(len(rodataBytes)) {
			return symtab.RODataUnknown.String()
		}
		data := rodataBytes[start : start+r.Size]
		kind := symtab.ClassifyRODataJumpTable(data, image.ByteOrder, seg.Functions, image.TextAddress)
		return kind.String()
	}
	return ""
}
