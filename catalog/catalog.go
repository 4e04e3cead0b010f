// Package catalog implements the Fingerprint Store: the versioned,
// human-readable document produced by `fingerprint` and consumed by `scan`.
package catalog

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Version is the only catalog version this tool produces or accepts. A
// catalog with a different version is refused outright: fingerprints are
// defined by a fixed (radix, modulus) pair and normalization table, and a
// version bump means one of those changed.
const Version uint32 = 0

// Catalog is the single top-level document written by `fingerprint`.
type Catalog struct {
	Version   uint32          `yaml:"version"`
	Generator string          `yaml:"generator,omitempty"`
	Created   string          `yaml:"created,omitempty"`
	Segments  []SegmentRecord `yaml:"segments"`
}

// SegmentRecord is one fingerprinted segment and its constituent symbols.
type SegmentRecord struct {
	Name        string         `yaml:"name"`
	Fingerprint HexUint32      `yaml:"fingerprint"`
	Size        uint32         `yaml:"size"`
	Modulus     uint64         `yaml:"modulus,omitempty"`
	RODATA      string         `yaml:"rodata,omitempty"`
	Symbols     []SymbolRecord `yaml:"symbols"`
}

// SymbolRecord is one function inside a segment.
type SymbolRecord struct {
	Name        string    `yaml:"name"`
	Offset      uint32    `yaml:"offset"`
	Size        uint32    `yaml:"size"`
	Fingerprint HexUint32 `yaml:"fingerprint"`
}

// VersionError reports a catalog whose version this build does not
// understand.
type VersionError struct {
	Got uint32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("catalog version %d is not supported by this build (want %d); regenerate the catalog with a matching mipsmatch version", e.Got, Version)
}

// Load reads and validates a catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if c.Version != Version {
		return nil, &VersionError{Got: c.Version}
	}
	return &c, nil
}

// Write serializes a catalog as a single YAML document.
func Write(w io.Writer, c *Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return enc.Close()
}

// Validate checks the ordering and contiguity invariants a catalog must
// satisfy (P3): symbol offsets within each segment are ascending,
// contiguous, and sum to the segment size.
func (c *Catalog) Validate() error {
	for _, seg := range c.Segments {
		var cursor uint32
		for _, sym := range seg.Symbols {
			if sym.Offset != cursor {
				return fmt.Errorf("segment %q: symbol %q at offset %d, expected %d (gap or overlap)", seg.Name, sym.Name, sym.Offset, cursor)
			}
			cursor += sym.Size
		}
		if cursor != seg.Size {
			return fmt.Errorf("segment %q: symbol sizes sum to %d, segment size is %d", seg.Name, cursor, seg.Size)
		}
	}
	return nil
}
