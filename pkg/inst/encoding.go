package inst

import "encoding/binary"

// Size is the width of one encoded instruction in bytes: a packed word of
// opcode and three register operands, then a 32-bit immediate. Both words
// are little-endian.
const Size = 8

// Instruction is one decoded emu4380 instruction.
type Instruction struct {
	Op            OpCode
	Op1, Op2, Op3 uint8
	Imm           uint32
}

// Decode unpacks the instruction starting at b[0]. b must hold at least
// Size bytes.
func Decode(b []byte) Instruction {
	first := binary.LittleEndian.Uint32(b)
	return Instruction{
		Op:  OpCode(first & 0xFF),
		Op1: uint8(first >> 8),
		Op2: uint8(first >> 16),
		Op3: uint8(first >> 24),
		Imm: binary.LittleEndian.Uint32(b[4:]),
	}
}

// Encode packs the instruction into its 8-byte wire form.
func (i Instruction) Encode() [Size]byte {
	var b [Size]byte
	first := uint32(i.Op) | uint32(i.Op1)<<8 | uint32(i.Op2)<<16 | uint32(i.Op3)<<24
	binary.LittleEndian.PutUint32(b[:], first)
	binary.LittleEndian.PutUint32(b[4:], i.Imm)
	return b
}

// Program builds a binary image in memory: a leading entry-point word
// followed by instructions and data. It is the programmatic counterpart of
// an assembler and is used to construct test fixtures and sample images.
type Program struct {
	buf []byte
}

// NewProgram returns a builder whose first word (the initial program
// counter) is zero until SetEntry is called.
func NewProgram() *Program {
	return &Program{buf: make([]byte, 4)}
}

// SetEntry stores the initial program counter in the image header.
func (p *Program) SetEntry(addr uint32) {
	binary.LittleEndian.PutUint32(p.buf[:4], addr)
}

// Pos returns the address the next emitted byte will occupy.
func (p *Program) Pos() uint32 {
	return uint32(len(p.buf))
}

// Emit appends one encoded instruction and returns its address.
func (p *Program) Emit(i Instruction) uint32 {
	addr := p.Pos()
	enc := i.Encode()
	p.buf = append(p.buf, enc[:]...)
	return addr
}

// Word appends a little-endian data word and returns its address.
func (p *Program) Word(w uint32) uint32 {
	addr := p.Pos()
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], w)
	p.buf = append(p.buf, b[:]...)
	return addr
}

// Data appends raw data bytes and returns the address of the first.
func (p *Program) Data(b ...byte) uint32 {
	addr := p.Pos()
	p.buf = append(p.buf, b...)
	return addr
}

// Text appends a length-prefixed string in the layout trap 5 prints:
// one length byte, then the characters.
func (p *Program) Text(s string) uint32 {
	addr := p.Data(byte(len(s)))
	p.buf = append(p.buf, s...)
	return addr
}

// Image returns the finished binary image.
func (p *Program) Image() []byte {
	return p.buf
}
