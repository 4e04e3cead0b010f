// Package mips decodes 32-bit MIPS instruction words and classifies them by
// the kind of operand they carry, so that callers can tell which bits of an
// instruction are liable to hold a link-time-resolved address.
package mips

// Class is the operand classification of a decoded instruction, keyed on its
// opcode/funct fields. Classification is a fixed table, not a simulation of
// instruction semantics.
type Class int

const (
	// ClassOther covers register-register ALU ops, shifts, jr/jalr,
	// syscall, break, and any encoding this package does not recognize.
	// None of its bits carry a relocatable operand.
	ClassOther Class = iota
	// ClassLUI is `lui rt, imm16`: the upper half of a 32-bit constant,
	// frequently the high half of an absolute address.
	ClassLUI
	// ClassALUImm is `addiu`/`ori`/`addi`/`andi` rt, rs, imm16: address-like
	// only when rs was just loaded by a lui into the same register.
	ClassALUImm
	// ClassJump is `j`/`jal target26`: an absolute jump target.
	ClassJump
	// ClassMemImm is a load/store with an rs-relative imm16 offset:
	// address-like when rs is $gp or was just loaded by a lui.
	ClassMemImm
	// ClassBranch is a PC-relative conditional branch: its offset16 is
	// masked regardless, since it defeats byte-identity across overlays.
	ClassBranch
)

// Fields holds the decoded bit-fields of an instruction word. Decode extracts
// every field for every word, whatever its format; callers read only the
// fields that apply to its Class.
type Fields struct {
	Opcode  uint32
	Rs      uint32
	Rt      uint32
	Rd      uint32
	Shamt   uint32
	Funct   uint32
	Imm16   uint32
	Target  uint32
	IsCtrl  bool // basic-block-ending control transfer (branch, jump, jr, jalr)
}

const (
	opSpecial = 0x00
	opRegimm  = 0x01
	opJ       = 0x02
	opJAL     = 0x03
	opBEQ     = 0x04
	opBNE     = 0x05
	opBLEZ    = 0x06
	opBGTZ    = 0x07
	opADDI    = 0x08
	opADDIU   = 0x09
	opSLTI    = 0x0A
	opSLTIU   = 0x0B
	opANDI    = 0x0C
	opORI     = 0x0D
	opXORI    = 0x0E
	opLUI     = 0x0F
	opBEQL    = 0x14
	opBNEL    = 0x15
	opBLEZL   = 0x16
	opBGTZL   = 0x17
	opLB      = 0x20
	opLH      = 0x21
	opLWL     = 0x22
	opLW      = 0x23
	opLBU     = 0x24
	opLHU     = 0x25
	opLWR     = 0x26
	opSB      = 0x28
	opSH      = 0x29
	opSWL     = 0x2A
	opSW      = 0x2B
	opSWR     = 0x2E
	opLWC1    = 0x31
	opLDC1    = 0x35
	opSWC1    = 0x39
	opSDC1    = 0x3D
)

const (
	functJR     = 0x08
	functJALR   = 0x09
	functSyscal = 0x0C
	functBreak  = 0x0D
)

// RegGP and RegSP are the conventional MIPS global-pointer and stack-pointer
// register numbers, used to recognize gp-relative loads/stores.
const (
	RegGP = 28
	RegSP = 29
)

// Decode extracts opcode, register, and immediate/target fields from a
// 32-bit MIPS instruction word, already in host byte order.
func Decode(word uint32) Fields {
	f := Fields{
		Opcode: word >> 26,
		Rs:     (word >> 21) & 0x1F,
		Rt:     (word >> 16) & 0x1F,
		Rd:     (word >> 11) & 0x1F,
		Shamt:  (word >> 6) & 0x1F,
		Funct:  word & 0x3F,
		Imm16:  word & 0xFFFF,
		Target: word & 0x03FFFFFF,
	}

	switch f.Opcode {
	case opSpecial:
		f.IsCtrl = f.Funct == functJR || f.Funct == functJALR
	case opRegimm, opBEQ, opBNE, opBLEZ, opBGTZ, opBEQL, opBNEL, opBLEZL, opBGTZL:
		f.IsCtrl = true
	case opJ, opJAL:
		f.IsCtrl = true
	}

	return f
}

// Classify returns the operand classification of an already-decoded
// instruction. Unrecognized opcodes fall through to ClassOther, which the
// normalizer treats as position-independent (pass through unmodified) — a
// conservative choice that keeps the stream more discriminating, not less.
func Classify(f Fields) Class {
	switch f.Opcode {
	case opSpecial:
		return ClassOther
	case opJ, opJAL:
		return ClassJump
	case opRegimm, opBEQ, opBNE, opBLEZ, opBGTZ, opBEQL, opBNEL, opBLEZL, opBGTZL:
		return ClassBranch
	case opLUI:
		return ClassLUI
	case opADDI, opADDIU, opORI, opANDI:
		return ClassALUImm
	case opSLTI, opSLTIU, opXORI:
		return ClassOther
	case opLB, opLH, opLWL, opLW, opLBU, opLHU, opLWR,
		opSB, opSH, opSWL, opSW, opSWR, opLWC1, opLDC1, opSWC1, opSDC1:
		return ClassMemImm
	default:
		return ClassOther
	}
}
