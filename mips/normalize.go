package mips

import "encoding/binary"

// lastWriter tracks, per basic block, which register most recently received
// the upper half of a constant via lui. A control-transfer instruction
// clears it: a paired lui/addiu (or lui/ori, lui/andi) never survives past a
// branch or jump, so there is no need to track it across one.
type lastWriter struct {
	valid [32]bool
}

func (lw *lastWriter) reset() {
	lw.valid = [32]bool{}
}

func (lw *lastWriter) set(reg uint32) {
	lw.reset()
	lw.valid[reg&0x1F] = true
}

func (lw *lastWriter) isRecent(reg uint32) bool {
	return lw.valid[reg&0x1F]
}

// Normalize walks a 4-byte-aligned MIPS text range and returns a byte slice
// of identical length with the operand bits of address-bearing instructions
// cleared, per the per-Class rules in normalizeWord. order gives the byte
// order the words are encoded in (the source ELF's endian marker); trailing
// bytes that don't make a full word are copied through unchanged.
//
// Normalize runs as a single continuous pass: the "recent lui" table starts
// empty at raw[0] and is cleared on every control-transfer instruction.
// Since compiled MIPS functions end in jr $ra (itself a control transfer),
// normalizing a whole ELF text section or a whole scanned binary in one
// pass produces the same bytes as normalizing each function independently —
// which is what lets a segment fingerprint be computed as the concatenation
// of its functions' normalized streams.
func Normalize(raw []byte, order binary.ByteOrder) []byte {
	out := make([]byte, len(raw))
	var lw lastWriter

	n := len(raw) - (len(raw) % 4)
	for i := 0; i < n; i += 4 {
		word := order.Uint32(raw[i : i+4])
		masked, f, class := normalizeWord(word, &lw)
		order.PutUint32(out[i:i+4], masked)

		if class == ClassLUI {
			lw.set(f.Rt)
		} else if f.IsCtrl {
			lw.reset()
		}
	}
	copy(out[n:], raw[n:])
	return out
}

// normalizeWord masks a single decoded word against the current lastWriter
// table, without mutating it — the caller decides how the table evolves
// once it knows the instruction's class.
func normalizeWord(word uint32, lw *lastWriter) (masked uint32, f Fields, class Class) {
	f = Decode(word)
	class = Classify(f)

	switch class {
	case ClassLUI:
		// opcode, rt kept; imm16 cleared.
		return word &^ 0x0000FFFF, f, class

	case ClassALUImm:
		if lw.isRecent(f.Rs) {
			// opcode, rt, rs kept; imm16 cleared.
			return word &^ 0x0000FFFF, f, class
		}
		// ordinary small constant: keep everything.
		return word, f, class

	case ClassJump:
		// opcode kept; target26 cleared.
		return word & 0xFC000000, f, class

	case ClassMemImm:
		if f.Rs == RegGP || lw.isRecent(f.Rs) {
			// opcode, rt, rs kept; imm16 cleared.
			return word &^ 0x0000FFFF, f, class
		}
		return word, f, class

	case ClassBranch:
		// opcode, rs, rt kept; offset16 cleared.
		return word &^ 0x0000FFFF, f, class

	default: // ClassOther: register-register ALU, shifts, jr/jalr, syscall,
		// unknown encodings. Position-independent: pass through unmodified.
		return word, f, class
	}
}
