package machine

import (
	"fmt"

	"github.com/kahnshaak/emu4380/pkg/inst"
)

// Phase identifies the pipeline stage an instruction failed in.
type Phase byte

const (
	PhaseFetch   Phase = 'f'
	PhaseDecode  Phase = 'd'
	PhaseExecute Phase = 'e'
)

// InvalidInstructionError is the fatal diagnostic for a failed pipeline
// phase. Addr is the program counter minus the instruction width at the
// time of failure; for a fetch failure the counter was never advanced, so
// the reported address sits one instruction before the faulting one.
type InvalidInstructionError struct {
	Phase Phase
	Addr  uint32
}

func (e *InvalidInstructionError) Error() string {
	return fmt.Sprintf("%cINVALID INSTRUCTION AT: %d", e.Phase, e.Addr)
}

// Fetch reads the two instruction words at PC into the control registers
// and advances PC by 8. It fails when the instruction would not fit below
// the end of memory.
func (m *Machine) Fetch() bool {
	if m.Reg[inst.PC] > m.mem.Size()-8 || m.mem.Size() < 8 {
		return false
	}

	first := m.ReadWord(m.Reg[inst.PC])
	second := m.ReadWord(m.Reg[inst.PC] + 4)
	m.memStream = false

	m.Ctrl.Operation = first & 0xFF
	m.Ctrl.Operand1 = (first >> 8) & 0xFF
	m.Ctrl.Operand2 = (first >> 16) & 0xFF
	m.Ctrl.Operand3 = (first >> 24) & 0xFF
	m.Ctrl.Immediate = second

	m.Reg[inst.PC] += 8
	return true
}

// Step runs one full fetch/decode/execute cycle, converting a phase
// failure into an InvalidInstructionError.
func (m *Machine) Step() error {
	if !m.Fetch() {
		return m.fail(PhaseFetch)
	}
	if !m.Decode() {
		return m.fail(PhaseDecode)
	}
	if !m.Execute() {
		return m.fail(PhaseExecute)
	}
	m.retired++
	return nil
}

func (m *Machine) fail(p Phase) error {
	return &InvalidInstructionError{Phase: p, Addr: m.Reg[inst.PC] - 8}
}

// Run executes instructions until a HALT trap or a phase failure.
func (m *Machine) Run() error {
	for !m.halted {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}
