package machine

import (
	"fmt"
	"strings"

	"github.com/kahnshaak/emu4380/pkg/inst"
)

// trap dispatches a TRP instruction. All console traffic goes through the
// machine's configured streams; R3 is the argument and result register.
func (m *Machine) trap(code uint32) bool {
	switch code {
	case inst.TrapHalt:
		fmt.Fprintf(m.out, "Execution completed. Total memory cycles: %d\n", m.memCycles)
		m.halted = true

	case inst.TrapIntOut:
		fmt.Fprintf(m.out, "%d", int32(m.Reg[inst.R3]))

	case inst.TrapIntIn:
		var v int32
		fmt.Fscan(m.in, &v)
		m.Reg[inst.R3] = uint32(v)

	case inst.TrapCharOut:
		m.out.Write([]byte{byte(m.Reg[inst.R3])})

	case inst.TrapCharIn:
		if b, ok := m.readNonSpace(); ok {
			m.Reg[inst.R3] = uint32(b)
		}

	case inst.TrapStringOut:
		return m.stringOut()

	case inst.TrapStringIn:
		return m.stringIn()

	case inst.TrapPrintReg:
		for i := 0; i < int(inst.PC); i++ {
			fmt.Fprintf(m.out, "R%d\t%d\n", i, m.Reg[i])
		}
		fmt.Fprintf(m.out, "PC\t%d\n", m.Reg[inst.PC])
		fmt.Fprintf(m.out, "SL\t%d\n", m.Reg[inst.SL])
		fmt.Fprintf(m.out, "SB\t%d\n", m.Reg[inst.SB])
		fmt.Fprintf(m.out, "SP\t%d\n", m.Reg[inst.SP])
		fmt.Fprintf(m.out, "FP\t%d\n", m.Reg[inst.FP])
		fmt.Fprintf(m.out, "HP\t%d\n", m.Reg[inst.HP])

	default:
		return false
	}

	return true
}

// readNonSpace skips leading whitespace and returns the next input byte.
func (m *Machine) readNonSpace() (byte, bool) {
	for {
		b, err := m.in.ReadByte()
		if err != nil {
			return 0, false
		}
		switch b {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			continue
		}
		return b, true
	}
}

// stringOut prints the length-prefixed string at R3: byte zero is the
// length, the characters follow. Reads go through the memory-access layer
// so they are charged like any other memory traffic.
func (m *Machine) stringOut() bool {
	addr := m.Reg[inst.R3]
	if addr+3 >= m.mem.Size() {
		return false
	}
	length := uint32(m.ReadByte(addr))
	for i := uint32(1); i <= length; i++ {
		if addr+i >= m.mem.Size() {
			break
		}
		m.out.Write([]byte{m.ReadByte(addr + i)})
	}
	m.memStream = false
	return true
}

// stringIn reads one input line into the buffer at R3, truncated to 255
// characters, stored with a leading length byte and a trailing NUL.
func (m *Machine) stringIn() bool {
	addr := m.Reg[inst.R3]
	if addr >= m.mem.Size() {
		return false
	}

	s, _ := m.in.ReadString('\n')
	s = strings.TrimRight(s, "\r\n")
	if len(s) > 255 {
		s = s[:255]
	}

	m.WriteByte(addr, byte(len(s)))
	for i := 0; i < len(s); i++ {
		if addr+uint32(i)+1 >= m.mem.Size() {
			break
		}
		m.WriteByte(addr+uint32(i)+1, s[i])
	}
	if addr+uint32(len(s))+1 < m.mem.Size() {
		m.WriteByte(addr+uint32(len(s))+1, 0)
	}
	m.memStream = false
	return true
}
