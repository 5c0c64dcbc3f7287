package inst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLayout(t *testing.T) {
	// [opcode][op1][op2][op3][imm little-endian]
	b := []byte{18, 1, 2, 3, 0x78, 0x56, 0x34, 0x12}
	i := Decode(b)

	assert.Equal(t, ADD, i.Op)
	assert.Equal(t, uint8(1), i.Op1)
	assert.Equal(t, uint8(2), i.Op2)
	assert.Equal(t, uint8(3), i.Op3)
	assert.Equal(t, uint32(0x12345678), i.Imm)
}

func TestEncodeDecode(t *testing.T) {
	in := Instruction{Op: LDR, Op1: 7, Imm: 131000}
	enc := in.Encode()
	assert.Equal(t, in, Decode(enc[:]))
	assert.Equal(t, byte(11), enc[0])
}

func TestOpCodeValid(t *testing.T) {
	assert.False(t, OpCode(0).Valid())
	assert.True(t, JMP.Valid())
	assert.True(t, RET.Valid())
	assert.False(t, OpCode(41).Valid())
	assert.False(t, OpCode(98).Valid())
}

func TestValidTrap(t *testing.T) {
	for _, imm := range []uint32{0, 1, 2, 3, 4, 5, 6, 98} {
		assert.True(t, ValidTrap(imm), "trap %d", imm)
	}
	for _, imm := range []uint32{7, 8, 97, 99, 1000} {
		assert.False(t, ValidTrap(imm), "trap %d", imm)
	}
}

func TestDisassemble(t *testing.T) {
	tests := []struct {
		in   Instruction
		want string
	}{
		{Instruction{Op: JMP, Imm: 64}, "JMP 64"},
		{Instruction{Op: JMR, Op1: 4}, "JMR R4"},
		{Instruction{Op: BNZ, Op1: 1, Imm: 32}, "BNZ R1, #32"},
		{Instruction{Op: MOV, Op1: 1, Op2: 2}, "MOV R1, R2"},
		{Instruction{Op: MOVI, Op1: 3, Imm: 5}, "MOVI R3, #5"},
		{Instruction{Op: LDR, Op1: 2, Imm: 512}, "LDR R2, 512"},
		{Instruction{Op: ILDR, Op1: 2, Op2: 9}, "ILDR R2, R9"},
		{Instruction{Op: ADD, Op1: 1, Op2: 2, Op3: 3}, "ADD R1, R2, R3"},
		{Instruction{Op: ADDI, Op1: 1, Op2: 2, Imm: 7}, "ADDI R1, R2, #7"},
		{Instruction{Op: TRP, Imm: 0}, "TRP #0"},
		{Instruction{Op: PSHR, Op1: 19}, "PSHR SP"},
		{Instruction{Op: RET}, "RET"},
		{Instruction{Op: OpCode(0)}, "???"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Disassemble(tc.in))
	}
}

func TestRegNames(t *testing.T) {
	assert.Equal(t, "R0", R0.String())
	assert.Equal(t, "R15", R15.String())
	assert.Equal(t, "PC", PC.String())
	assert.Equal(t, "HP", HP.String())
	assert.Equal(t, "R?", Reg(22).String())
}

func TestProgramBuilder(t *testing.T) {
	p := NewProgram()
	require.Equal(t, uint32(4), p.Pos())

	a0 := p.Emit(Instruction{Op: MOVI, Op1: 1, Imm: 10})
	a1 := p.Emit(Instruction{Op: TRP, Imm: 0})
	assert.Equal(t, uint32(4), a0)
	assert.Equal(t, uint32(12), a1)

	w := p.Word(0xAABBCCDD)
	assert.Equal(t, uint32(20), w)

	s := p.Text("hi")
	assert.Equal(t, uint32(24), s)

	p.SetEntry(a0)
	img := p.Image()
	require.Len(t, img, 27)

	assert.Equal(t, []byte{4, 0, 0, 0}, img[:4])
	assert.Equal(t, byte(8), img[4]) // MOVI
	assert.Equal(t, []byte{0xDD, 0xCC, 0xBB, 0xAA}, img[20:24])
	assert.Equal(t, []byte{2, 'h', 'i'}, img[24:])
}
