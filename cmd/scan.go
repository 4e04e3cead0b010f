package cmd

import (
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ttkb-llc/mipsmatch/catalog"
	"github.com/ttkb-llc/mipsmatch/scan"
)

var EndianFlag = &cli.StringFlag{
	Name:     "endian",
	Usage:    "byte order of the candidate binary when it isn't an ELF: little or big",
	Required: false,
	Value:    "little",
}

func CreateScanCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "scan",
		Usage:       "scan a raw binary for segments recorded in a catalog",
		Description: "scan a raw binary for segments recorded in a catalog",
		ArgsUsage:   "<catalog-path> <binary-path>",
		Action:      action,
		Flags: []cli.Flag{
			OutputFlag,
			EndianFlag,
		},
	}
}

var ScanCommand = CreateScanCommand(RunScan)

func RunScan(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return malformedInput(fmt.Errorf("usage: scan <catalog-path> <binary-path>"))
	}
	catalogPath := ctx.Args().Get(0)
	binaryPath := ctx.Args().Get(1)

	catFile, err := os.Open(catalogPath)
	if err != nil {
		return ioFailure(fmt.Errorf("opening catalog: %w", err))
	}
	defer func() { _ = catFile.Close() }()

	cat, err := catalog.Load(catFile)
	if err != nil {
		var verr *catalog.VersionError
		if errors.As(err, &verr) {
			return malformedInput(err)
		}
		return malformedInput(fmt.Errorf("loading catalog: %w", err))
	}
	if err := cat.Validate(); err != nil {
		return malformedInput(fmt.Errorf("invalid catalog: %w", err))
	}

	binaryData, order, err := loadCandidate(binaryPath, ctx.String(EndianFlag.Name))
	if err != nil {
		return err
	}

	reports, err := scan.Scan(ctx.Context, cat, binaryData, order)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
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

	rw := catalog.NewReportWriter(out)
	for _, r := range reports {
		if err := rw.Write(r); err != nil {
			return ioFailure(err)
		}
	}
	if err := rw.Close(); err != nil {
		return ioFailure(err)
	}
	return nil
}

// loadCandidate reads the scanned binary. If it parses as an ELF, its text
// section and endian marker are used (mirroring fingerprint); otherwise the
// raw file bytes are scanned whole, using --endian to select byte order.
func loadCandidate(path, endianFlag string) ([]byte, binary.ByteOrder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, ioFailure(fmt.Errorf("opening candidate binary: %w", err))
	}
	defer func() { _ = f.Close() }()

	if elfFile, err := elf.NewFile(f); err == nil {
		defer func() { _ = elfFile.Close() }()
		text := elfFile.Section(".text")
		if text == nil {
			return nil, nil, malformedInput(fmt.Errorf("candidate ELF has no .text section"))
		}
		data, err := text.Data()
		if err != nil {
			return nil, nil, malformedInput(fmt.Errorf("reading candidate .text: %w", err))
		}
		return data, elfFile.ByteOrder, nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, nil, ioFailure(fmt.Errorf("seeking candidate binary: %w", err))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, ioFailure(fmt.Errorf("reading candidate binary: %w", err))
	}

	switch endianFlag {
	case "big":
		return data, binary.BigEndian, nil
	case "little", "":
		return data, binary.LittleEndian, nil
	default:
		return nil, nil, malformedInput(fmt.Errorf("invalid --endian %q: want little or big", endianFlag))
	}
}
