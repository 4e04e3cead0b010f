package mips

import "testing"

func TestDecodeClassifiesKnownOpcodes(t *testing.T) {
	cases := []struct {
		name  string
		word  uint32
		class Class
	}{
		{"lui", 0x3C08800A, ClassLUI},          // lui $t0, 0x800a
		{"addi-imm", 0x2108000C, ClassALUImm},  // addi $t0, $t0, 0xc
		{"j", 0x08012345, ClassJump},           // j 0x48d14
		{"jal", 0x0C012345, ClassJump},         // jal 0x48d14
		{"lw", 0x8D0A0004, ClassMemImm},        // lw $t2, 4($t0)
		{"sw", 0xAD0A0004, ClassMemImm},        // sw $t2, 4($t0)
		{"beq", 0x1109000A, ClassBranch},       // beq $t0, $t1, +10
		{"addu", 0x01095021, ClassOther},       // addu $t2, $t0, $t1
		{"jr", 0x03E00008, ClassOther},         // jr $ra
		{"nop", 0x00000000, ClassOther},        // sll $zero, $zero, 0
		{"unknown", 0xFFFFFFFF, ClassOther},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Decode(tc.word)
			if got := Classify(f); got != tc.class {
				t.Errorf("Classify(%#x) = %v, want %v", tc.word, got, tc.class)
			}
		})
	}
}

func TestDecodeControlTransferFlags(t *testing.T) {
	ctrl := []uint32{
		0x03E00008, // jr $ra
		0x0120F809, // jalr $t1
		0x08012345, // j
		0x0C012345, // jal
		0x1109000A, // beq
		0x0500000A, // bltz
	}
	for _, word := range ctrl {
		if f := Decode(word); !f.IsCtrl {
			t.Errorf("Decode(%#x).IsCtrl = false, want true", word)
		}
	}

	notCtrl := []uint32{
		0x00000000, // nop
		0x01095021, // addu
		0x8D0A0004, // lw
	}
	for _, word := range notCtrl {
		if f := Decode(word); f.IsCtrl {
			t.Errorf("Decode(%#x).IsCtrl = true, want false", word)
		}
	}
}
