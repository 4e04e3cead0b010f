// Package scan implements the Scanner: given a catalog and a raw candidate
// binary, it locates byte-identical (after normalization) copies of each
// catalog segment and recovers each of their functions' offsets.
package scan

import (
	"context"
	"encoding/binary"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ttkb-llc/mipsmatch/catalog"
	"github.com/ttkb-llc/mipsmatch/mips"
	"github.com/ttkb-llc/mipsmatch/rk"
)

// Scan runs one worker per catalog segment over binaryData, normalizing it
// once up front and sharing the read-only result across workers (segments
// end in control-transfer instructions, so a continuous normalization pass
// over the whole binary produces the same bytes as normalizing each segment
// independently — see mips.Normalize). Reports are returned sorted by
// (offset ascending, segment name ascending). Of two overlapping reports the
// one at the lower offset is kept; when both start at the same offset, the
// segment earlier in the catalog wins.
func Scan(ctx context.Context, cat *catalog.Catalog, binaryData []byte, order binary.ByteOrder) ([]catalog.MatchReport, error) {
	normalized := mips.Normalize(binaryData, order)

	var mu sync.Mutex
	var raw []rawHit

	eg, egCtx := errgroup.WithContext(ctx)
	for i, seg := range cat.Segments {
		i, seg := i, seg
		eg.Go(func() error {
			hits, err := scanSegment(egCtx, seg, normalized)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, h := range hits {
				raw = append(raw, rawHit{catalogOrder: i, report: h})
			}
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return resolveOverlaps(raw), nil
}

type rawHit struct {
	catalogOrder int
	report       catalog.MatchReport
}

// resolveOverlaps sorts candidate hits by (offset ascending, catalog order
// ascending as tiebreak for same-offset collisions) and keeps only those
// that do not overlap a previously kept report (P6). Dropping a candidate
// here is normal: segments are scanned independently and may produce
// touching or overlapping candidates at shared offsets.
func resolveOverlaps(raw []rawHit) []catalog.MatchReport {
	sort.Slice(raw, func(i, j int) bool {
		if raw[i].report.Offset != raw[j].report.Offset {
			return raw[i].report.Offset < raw[j].report.Offset
		}
		return raw[i].catalogOrder < raw[j].catalogOrder
	})

	var kept []catalog.MatchReport
	var lastEnd uint64
	for _, h := range raw {
		start := uint64(h.report.Offset)
		if len(kept) > 0 && start < lastEnd {
			continue
		}
		kept = append(kept, h.report)
		lastEnd = start + uint64(h.report.Size)
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Offset != kept[j].Offset {
			return kept[i].Offset < kept[j].Offset
		}
		return kept[i].Name < kept[j].Name
	})
	return kept
}

// scanSegment slides a W-byte window over the normalized binary at 4-byte
// aligned offsets, per §4.5: a rolling hash filters candidates, a from-
// scratch re-hash verifies the segment, and a per-symbol re-hash verifies
// every interior function before a report is emitted.
func scanSegment(ctx context.Context, seg catalog.SegmentRecord, normalized []byte) ([]catalog.MatchReport, error) {
	w := int(seg.Size)
	if w == 0 || len(normalized) < w {
		return nil, nil
	}

	roller := rk.NewRolling(w, seg.Modulus)

	var hits []catalog.MatchReport
	cursor := 0

	for i := 0; i < len(normalized); i++ {
		if i%4096 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		hash, ok := roller.Advance(normalized[i])
		if !ok {
			continue
		}
		start := i - w + 1
		if start%4 != 0 || start < cursor {
			continue
		}
		if hash != uint32(seg.Fingerprint) {
			continue
		}
		if rk.Hash(normalized[start:start+w], seg.Modulus) != uint32(seg.Fingerprint) {
			continue
		}
		if !verifyFunctions(seg, normalized, start) {
			continue
		}

		hits = append(hits, buildReport(seg, start))
		cursor = start + w
	}

	return hits, nil
}

func verifyFunctions(seg catalog.SegmentRecord, normalized []byte, windowBase int) bool {
	for _, sym := range seg.Symbols {
		s := windowBase + int(sym.Offset)
		e := s + int(sym.Size)
		if e > len(normalized) {
			return false
		}
		if rk.Hash(normalized[s:e], seg.Modulus) != uint32(sym.Fingerprint) {
			return false
		}
	}
	return true
}

func buildReport(seg catalog.SegmentRecord, windowBase int) catalog.MatchReport {
	symbols := make(map[string]catalog.HexUint64, len(seg.Symbols))
	for _, sym := range seg.Symbols {
		symbols[sym.Name] = catalog.HexUint64(uint64(windowBase) + uint64(sym.Offset))
	}
	return catalog.MatchReport{
		Name:    seg.Name,
		Offset:  catalog.HexUint64(windowBase),
		Size:    seg.Size,
		Symbols: symbols,
	}
}
