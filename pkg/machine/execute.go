package machine

import "github.com/kahnshaak/emu4380/pkg/inst"

// Execute performs the decoded instruction. It returns false on runtime
// faults: division by zero through a register, stack overflow/underflow,
// heap collision with the stack, a stack pointer escaping [SL, SB], or a
// memory operand outside the store.
//
// Arithmetic is modular unsigned 32-bit; SDIV, DIVI, CMP, and CMPI
// reinterpret their operands as two's-complement. Every instruction with
// a memory phase closes the streaming burst when it completes.
func (m *Machine) Execute() bool {
	r := &m.Reg
	c := &m.Ctrl
	size := m.mem.Size()

	switch inst.OpCode(c.Operation) {
	case inst.JMP:
		if c.Immediate >= size {
			return false
		}
		r[inst.PC] = c.Immediate

	case inst.JMR:
		r[inst.PC] = r[c.Operand1]

	case inst.BNZ:
		if r[c.Operand1] != 0 {
			r[inst.PC] = c.Immediate
		}

	case inst.BGT:
		if int32(r[c.Operand1]) > 0 {
			r[inst.PC] = c.Immediate
		}

	case inst.BLT:
		if int32(r[c.Operand1]) < 0 {
			r[inst.PC] = c.Immediate
		}

	case inst.BRZ:
		if r[c.Operand1] == 0 {
			r[inst.PC] = c.Immediate
		}

	case inst.MOV:
		r[c.Operand1] = r[c.Operand2]
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.MOVI, inst.LDA:
		// LDA loads the address value itself; no memory access happens
		r[c.Operand1] = c.Immediate
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.STR:
		if c.Immediate+3 >= size {
			return false
		}
		m.WriteWord(c.Immediate, r[c.Operand1])
		m.memStream = false

	case inst.LDR:
		if c.Immediate+3 >= size {
			return false
		}
		r[c.Operand1] = m.ReadWord(c.Immediate)
		m.memStream = false
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.STB:
		if c.Immediate >= size {
			return false
		}
		m.WriteByte(c.Immediate, byte(r[c.Operand1]))
		m.memStream = false

	case inst.LDB:
		if c.Immediate >= size {
			return false
		}
		r[c.Operand1] = uint32(m.ReadByte(c.Immediate))
		if !m.checkSPDest(c.Operand1) {
			return false
		}
		m.memStream = false

	case inst.ISTR:
		m.WriteWord(r[c.Operand2], r[c.Operand1])
		m.memStream = false

	case inst.ILDR:
		r[c.Operand1] = m.ReadWord(r[c.Operand2])
		m.memStream = false
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.ISTB:
		m.WriteByte(r[c.Operand2], byte(r[c.Operand1]))
		m.memStream = false

	case inst.ILDB:
		r[c.Operand1] = uint32(m.ReadByte(r[c.Operand2]))
		m.memStream = false
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.ADD:
		r[c.Operand1] = r[c.Operand2] + r[c.Operand3]
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.ADDI:
		r[c.Operand1] = r[c.Operand2] + c.Immediate
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.SUB:
		r[c.Operand1] = r[c.Operand2] - r[c.Operand3]
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.SUBI:
		r[c.Operand1] = r[c.Operand2] - c.Immediate
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.MUL:
		r[c.Operand1] = r[c.Operand2] * r[c.Operand3]
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.MULI:
		r[c.Operand1] = r[c.Operand2] * c.Immediate
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.DIV:
		if r[c.Operand3] == 0 {
			return false
		}
		r[c.Operand1] = r[c.Operand2] / r[c.Operand3]
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.DIVI:
		if c.Immediate == 0 {
			return false
		}
		r[c.Operand1] = uint32(int32(r[c.Operand2]) / int32(c.Immediate))
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.SDIV:
		if r[c.Operand3] == 0 {
			return false
		}
		r[c.Operand1] = uint32(int32(r[c.Operand2]) / int32(r[c.Operand3]))
		if !m.checkSPDest(c.Operand1) {
			return false
		}

	case inst.AND:
		if r[c.Operand2] != 0 && r[c.Operand3] != 0 {
			r[c.Operand1] = 1
		} else {
			r[c.Operand1] = 0
		}

	case inst.OR:
		if r[c.Operand2] != 0 || r[c.Operand3] != 0 {
			r[c.Operand1] = 1
		} else {
			r[c.Operand1] = 0
		}

	case inst.CMP:
		r[c.Operand1] = compare(int32(r[c.Operand2]), int32(r[c.Operand3]))

	case inst.CMPI:
		r[c.Operand1] = compare(int32(r[c.Operand2]), int32(c.Immediate))

	case inst.ALCI:
		r[c.Operand1] = r[inst.HP]
		r[inst.HP] += c.Immediate
		if r[inst.HP] >= r[inst.SP] {
			return false
		}

	case inst.ALLC:
		if c.Immediate+3 >= size {
			return false
		}
		word := m.ReadWord(c.Immediate)
		r[c.Operand1] = r[inst.HP]
		r[inst.HP] += word
		m.memStream = false
		if r[inst.HP] >= r[inst.SP] {
			return false
		}

	case inst.IALLC:
		addr := r[c.Operand2]
		if addr+3 >= size {
			return false
		}
		word := m.ReadWord(addr)
		r[c.Operand1] = r[inst.HP]
		r[inst.HP] += word
		m.memStream = false
		if r[inst.HP] >= r[inst.SP] {
			return false
		}

	case inst.PSHR:
		if r[inst.SP]-4 < r[inst.SL] {
			return false
		}
		r[inst.SP] -= 4
		if !m.checkSPDest(c.Operand1) {
			return false
		}
		m.WriteWord(r[inst.SP], r[c.Operand1])
		m.memStream = false

	case inst.PSHB:
		if r[inst.SP]-1 < r[inst.SL] {
			return false
		}
		r[inst.SP]--
		if !m.checkSPDest(c.Operand1) {
			return false
		}
		m.WriteByte(r[inst.SP], byte(r[c.Operand1]))
		m.memStream = false

	case inst.POPR:
		if r[inst.SP]+4 > r[inst.SB] {
			return false
		}
		r[c.Operand1] = m.ReadWord(r[inst.SP])
		r[inst.SP] += 4
		if !m.checkSPDest(c.Operand1) {
			return false
		}
		m.memStream = false
		if !m.validateStackPointer() {
			return false
		}

	case inst.POPB:
		if r[inst.SP]+1 > r[inst.SB] {
			return false
		}
		r[c.Operand1] = uint32(m.ReadByte(r[inst.SP]))
		r[inst.SP]++
		if !m.checkSPDest(c.Operand1) {
			return false
		}
		m.memStream = false
		if !m.validateStackPointer() {
			return false
		}

	case inst.CALL:
		if r[inst.SP]-4 < r[inst.SL] {
			return false
		}
		r[inst.SP] -= 4
		if !m.checkSPDest(c.Operand1) {
			return false
		}
		m.WriteWord(r[inst.SP], r[inst.PC])
		r[inst.PC] = c.Immediate
		m.memStream = false

	case inst.RET:
		if r[inst.SP]+4 > r[inst.SB] {
			return false
		}
		r[inst.PC] = m.ReadWord(r[inst.SP])
		r[inst.SP] += 4
		if !m.checkSPDest(c.Operand1) {
			return false
		}
		m.memStream = false

	case inst.TRP:
		return m.trap(c.Immediate)

	default:
		return false
	}

	return true
}

// compare yields 0 on equality, 1 when a > b, and all-ones (-1) when
// a < b.
func compare(a, b int32) uint32 {
	switch {
	case a == b:
		return 0
	case a > b:
		return 1
	default:
		return 0xFFFFFFFF
	}
}
