// Package symtab assembles the Symbol Index: segments of functions whose
// byte ranges are known from a linker map and an ELF symbol table.
package symtab

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ObjectRange is one contiguous run of a linker-output section attributed to
// a single source object, as reported by the map file. It says nothing
// about functions; those come from the ELF symbol table in a later step.
type ObjectRange struct {
	Section string
	Object  string
	Address uint64
	Size    uint64
}

// Name derives the segment name from the object's basename, stripping the
// conventional compiled-object suffixes.
func (o ObjectRange) Name() string {
	base := filepath.Base(o.Object)
	for _, suffix := range []string{".c.o", ".s.o", ".o"} {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

var (
	// sectionHeaderRegex matches a top-level output section line, e.g.:
	//   .text           0x80010000     0x2b980
	sectionHeaderRegex = regexp.MustCompile(`^(\.\S+)\s+0x([0-9a-fA-F]+)\s+0x([0-9a-fA-F]+)\s*$`)

	// objectLineRegex matches a single-indent object contribution line, e.g.:
	//   .text          0x80010000     0x1b80 build/src/foo.c.o
	objectLineRegex = regexp.MustCompile(`^\s(\.\S+)\s+0x([0-9a-fA-F]+)\s+0x([0-9a-fA-F]+)\s+(\S+)\s*$`)
)

// ParseMapFile reads a GNU-ld-style linker map, in the conventional form
// emitted alongside splat/mapfile_parser-compatible build systems: an output
// section header followed by one indented line per object file contributing
// to it. Only object lines are retained here; synthetic linker symbols and
// discarded-section chatter are not object lines and are skipped.
func ParseMapFile(r io.Reader) ([]ObjectRange, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var ranges []ObjectRange
	currentSection := ""
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if m := objectLineRegex.FindStringSubmatch(line); m != nil {
			addr, err := strconv.ParseUint(m[2], 16, 64)
			if err != nil {
				return nil, fmt.Errorf("map file line %d: invalid address: %w", lineNum, err)
			}
			size, err := strconv.ParseUint(m[3], 16, 64)
			if err != nil {
				return nil, fmt.Errorf("map file line %d: invalid size: %w", lineNum, err)
			}
			object := m[4]
			if !strings.HasSuffix(object, ".o") {
				continue
			}
			ranges = append(ranges, ObjectRange{
				Section: m[1],
				Object:  object,
				Address: addr,
				Size:    size,
			})
			continue
		}

		if m := sectionHeaderRegex.FindStringSubmatch(line); m != nil {
			currentSection = m[1]
			continue
		}

		_ = currentSection // header alone carries no object attribution
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading map file: %w", err)
	}
	return ranges, nil
}

// FilterSection returns only the ranges attributed to the named output
// section (e.g. ".text" or ".rodata"), preserving file order.
func FilterSection(ranges []ObjectRange, section string) []ObjectRange {
	var out []ObjectRange
	for _, r := range ranges {
		if r.Section == section {
			out = append(out, r)
		}
	}
	return out
}
