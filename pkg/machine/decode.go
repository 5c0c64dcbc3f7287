package machine

import "github.com/kahnshaak/emu4380/pkg/inst"

// Decode validates the control registers populated by Fetch: the opcode
// must be defined, register operands must index the register file, and
// branch targets must sit inside memory. Memory-operand bounds for STR,
// LDR, and STB are deliberately left to Execute.
func (m *Machine) Decode() bool {
	c := &m.Ctrl
	size := m.mem.Size()

	switch inst.OpCode(c.Operation) {
	case inst.JMP:
		if c.Immediate >= size {
			return false
		}

	case inst.JMR:
		if c.Operand1 >= inst.NumRegs {
			return false
		}

	case inst.BNZ, inst.BGT, inst.BLT, inst.BRZ:
		if c.Operand1 >= inst.NumRegs || c.Immediate >= size {
			return false
		}

	case inst.MOV:
		if c.Operand1 >= inst.NumRegs || c.Operand2 >= inst.NumRegs {
			return false
		}

	case inst.MOVI:
		if c.Operand1 >= inst.NumRegs {
			return false
		}

	case inst.LDA, inst.STR, inst.LDR, inst.STB, inst.LDB:
		if c.Operand1 >= inst.NumRegs {
			return false
		}

	case inst.ISTR, inst.ILDR, inst.ISTB, inst.ILDB:
		if c.Operand1 >= inst.NumRegs || c.Operand2 >= inst.NumRegs {
			return false
		}

	case inst.ADD, inst.SUB, inst.MUL, inst.DIV, inst.SDIV:
		if c.Operand1 >= inst.NumRegs ||
			c.Operand2 >= inst.NumRegs ||
			c.Operand3 >= inst.NumRegs {
			return false
		}

	case inst.DIVI:
		// divide-by-zero is already detectable here
		if c.Immediate == 0 {
			return false
		}
		if c.Operand1 >= inst.NumRegs || c.Operand2 >= inst.NumRegs {
			return false
		}

	case inst.ADDI, inst.SUBI, inst.MULI:
		if c.Operand1 >= inst.NumRegs || c.Operand2 >= inst.NumRegs {
			return false
		}

	case inst.AND, inst.OR, inst.CMP:
		if c.Operand1 >= inst.NumRegs ||
			c.Operand2 >= inst.NumRegs ||
			c.Operand3 >= inst.NumRegs {
			return false
		}

	case inst.CMPI:
		if c.Operand1 >= inst.NumRegs || c.Operand2 >= inst.NumRegs {
			return false
		}

	case inst.TRP:
		if !inst.ValidTrap(c.Immediate) {
			return false
		}

	case inst.ALCI:
		if c.Operand1 >= inst.NumRegs {
			return false
		}
		if c.Immediate+3 >= size {
			return false
		}

	case inst.ALLC:
		if c.Operand1 >= inst.NumRegs {
			return false
		}

	case inst.IALLC:
		if c.Operand1 >= inst.NumRegs || c.Operand2 >= inst.NumRegs {
			return false
		}

	case inst.PSHR, inst.PSHB, inst.POPR, inst.POPB:
		if c.Operand1 >= inst.NumRegs {
			return false
		}

	case inst.CALL:
		if c.Immediate >= size {
			return false
		}

	case inst.RET:

	default:
		return false
	}

	return true
}
