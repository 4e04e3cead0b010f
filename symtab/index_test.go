package symtab

import "testing"

func TestBuildIndexTilesContiguousFunctions(t *testing.T) {
	mapRanges := []ObjectRange{
		{Section: ".text", Object: "build/src/foo.c.o", Address: 0x1000, Size: 0x20},
	}
	img := &ELFImage{
		TextAddress: 0x1000,
		TextBytes:   make([]byte, 0x20),
		Functions: []FuncSymbol{
			{Name: "a", Address: 0x1000, Size: 0x10},
			{Name: "b", Address: 0x1010, Size: 0x10},
		},
	}

	segments, diags := BuildIndex(mapRanges, img)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	seg := segments[0]
	if seg.Name != "foo" || seg.Size != 0x20 {
		t.Fatalf("unexpected segment: %+v", seg)
	}
	if len(seg.Functions) != 2 || seg.Functions[0].Name != "a" || seg.Functions[1].Name != "b" {
		t.Fatalf("unexpected functions: %+v", seg.Functions)
	}
	if seg.Functions[0].FileOffset != 0 || seg.Functions[1].FileOffset != 0x10 {
		t.Fatalf("unexpected file offsets: %+v", seg.Functions)
	}
}

func TestBuildIndexFillsZeroSizeFromNextSymbol(t *testing.T) {
	mapRanges := []ObjectRange{
		{Section: ".text", Object: "build/src/foo.c.o", Address: 0x1000, Size: 0x20},
	}
	img := &ELFImage{
		TextAddress: 0x1000,
		TextBytes:   make([]byte, 0x20),
		Functions: []FuncSymbol{
			{Name: "a", Address: 0x1000, Size: 0}, // zero size: gap to next symbol
			{Name: "b", Address: 0x1010, Size: 0}, // zero size: gap to segment end
		},
	}

	segments, diags := BuildIndex(mapRanges, img)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if segments[0].Functions[0].Size != 0x10 || segments[0].Functions[1].Size != 0x10 {
		t.Fatalf("unexpected resolved sizes: %+v", segments[0].Functions)
	}
}

func TestBuildIndexSkipsSegmentWithGap(t *testing.T) {
	mapRanges := []ObjectRange{
		{Section: ".text", Object: "build/src/foo.c.o", Address: 0x1000, Size: 0x20},
	}
	img := &ELFImage{
		TextAddress: 0x1000,
		TextBytes:   make([]byte, 0x20),
		Functions: []FuncSymbol{
			{Name: "a", Address: 0x1000, Size: 0x8}, // leaves [0x1008, 0x1010) uncovered
			{Name: "b", Address: 0x1010, Size: 0x10},
		},
	}

	segments, diags := BuildIndex(mapRanges, img)
	if len(segments) != 0 {
		t.Fatalf("expected the gapped segment to be skipped, got %d segments", len(segments))
	}
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %+v", len(diags), diags)
	}
}

func TestBuildIndexSkipsSegmentWithNoFunctions(t *testing.T) {
	mapRanges := []ObjectRange{
		{Section: ".text", Object: "build/src/empty.c.o", Address: 0x2000, Size: 0x10},
	}
	img := &ELFImage{
		TextAddress: 0x1000,
		TextBytes:   make([]byte, 0x1020),
		Functions: []FuncSymbol{
			{Name: "a", Address: 0x1000, Size: 0x10},
		},
	}

	segments, diags := BuildIndex(mapRanges, img)
	if len(segments) != 0 || len(diags) != 1 {
		t.Fatalf("expected segment with no functions to produce one diagnostic, got segments=%d diags=%d", len(segments), len(diags))
	}
}

func TestBuildIndexIgnoresNonTextRanges(t *testing.T) {
	mapRanges := []ObjectRange{
		{Section: ".rodata", Object: "build/src/foo.c.o", Address: 0x1000, Size: 0x20},
	}
	img := &ELFImage{TextAddress: 0x1000, Functions: nil}

	segments, diags := BuildIndex(mapRanges, img)
	if len(segments) != 0 || len(diags) != 0 {
		t.Fatalf("rodata-only ranges should produce nothing, got segments=%d diags=%d", len(segments), len(diags))
	}
}
