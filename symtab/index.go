package symtab

import (
	"fmt"
	"sort"
)

// Function is one function extent inside a Segment, indexing into the
// ELF's text section.
type Function struct {
	Name       string
	FileOffset uint64 // byte offset into the ELF text section
	Size       uint64 // multiple of 4
}

// Segment is a contiguous run of functions linked from the same source
// object.
type Segment struct {
	Name      string
	Object    string
	Functions []Function
	Size      uint64
}

// Diagnostic records a segment that failed its covering invariant and was
// skipped rather than treated as fatal, per the Symbol Index contract.
type Diagnostic struct {
	Object  string
	Message string
}

// BuildIndex combines the text-section object ranges from a linker map with
// an ELF's FUNC symbol table to produce an ordered sequence of Segments.
// Segments whose function ranges do not exactly tile the segment's address
// range are skipped and reported as diagnostics rather than failing the
// whole run.
func BuildIndex(mapRanges []ObjectRange, elfImage *ELFImage) ([]Segment, []Diagnostic) {
	textRanges := FilterSection(mapRanges, ".text")

	sorted := make([]FuncSymbol, len(elfImage.Functions))
	copy(sorted, elfImage.Functions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })

	var segments []Segment
	var diags []Diagnostic

	for _, rng := range textRanges {
		start := rng.Address
		end := rng.Address + rng.Size

		var funcs []FuncSymbol
		for _, fn := range sorted {
			if fn.Address >= start && fn.Address < end {
				funcs = append(funcs, fn)
			}
		}
		if len(funcs) == 0 {
			diags = append(diags, Diagnostic{
				Object:  rng.Object,
				Message: fmt.Sprintf("no ELF function symbols found within [%#x, %#x)", start, end),
			})
			continue
		}

		resolveSizes(funcs, end)

		segFuncs := make([]Function, 0, len(funcs))
		cursor := start
		covered := true
		for _, fn := range funcs {
			if fn.Address != cursor {
				covered = false
				break
			}
			segFuncs = append(segFuncs, Function{
				Name:       fn.Name,
				FileOffset: fn.Address - elfImage.TextAddress,
				Size:       fn.Size,
			})
			cursor += fn.Size
		}
		if !covered || cursor != end {
			diags = append(diags, Diagnostic{
				Object:  rng.Object,
				Message: fmt.Sprintf("function extents do not tile segment range [%#x, %#x) without gap or overlap", start, end),
			})
			continue
		}

		segments = append(segments, Segment{
			Name:      nameFromObject(rng.Object),
			Object:    rng.Object,
			Functions: segFuncs,
			Size:      rng.Size,
		})
	}

	return segments, diags
}

// resolveSizes fills in zero ELF symbol sizes as the gap to the next
// function's address, or to segmentEnd for the last function, per §4.3 step
// 5. funcs must already be sorted by address.
func resolveSizes(funcs []FuncSymbol, segmentEnd uint64) {
	for i := range funcs {
		if funcs[i].Size != 0 {
			continue
		}
		if i+1 < len(funcs) {
			funcs[i].Size = funcs[i+1].Address - funcs[i].Address
		} else {
			funcs[i].Size = segmentEnd - funcs[i].Address
		}
	}
}

func nameFromObject(object string) string {
	return ObjectRange{Object: object}.Name()
}

// TextRange returns the segment's byte range within the ELF's text section
// bytes, for Normalizer/Hasher input.
func (s Segment) TextRange(elfImage *ELFImage) []byte {
	if len(s.Functions) == 0 {
		return nil
	}
	start := s.Functions[0].FileOffset
	return elfImage.TextBytes[start : start+s.Size]
}
