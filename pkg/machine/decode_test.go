package machine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kahnshaak/emu4380/pkg/inst"
)

func TestDecode(t *testing.T) {
	const size = 131072

	tests := []struct {
		name string
		ctrl CtrlRegs
		ok   bool
	}{
		{"opcode zero", CtrlRegs{Operation: 0}, false},
		{"opcode past table", CtrlRegs{Operation: 41}, false},
		{"opcode trap number", CtrlRegs{Operation: 98}, false},

		{"jmp in bounds", CtrlRegs{Operation: 1, Immediate: 32}, true},
		{"jmp ignores operands", CtrlRegs{Operation: 1, Operand1: 200, Immediate: 32}, true},
		{"jmp out of bounds", CtrlRegs{Operation: 1, Immediate: size}, false},

		{"jmr", CtrlRegs{Operation: 2, Operand1: 21}, true},
		{"jmr bad reg", CtrlRegs{Operation: 2, Operand1: 22}, false},

		{"bnz", CtrlRegs{Operation: 3, Operand1: 5, Immediate: 64}, true},
		{"bnz bad reg", CtrlRegs{Operation: 3, Operand1: 22, Immediate: 64}, false},
		{"bnz bad target", CtrlRegs{Operation: 3, Operand1: 5, Immediate: size + 1}, false},

		{"mov", CtrlRegs{Operation: 7, Operand1: 1, Operand2: 2}, true},
		{"mov bad src", CtrlRegs{Operation: 7, Operand1: 1, Operand2: 22}, false},
		{"movi", CtrlRegs{Operation: 8, Operand1: 21}, true},
		{"movi bad reg", CtrlRegs{Operation: 8, Operand1: 22}, false},

		// memory-operand bounds are an execute concern, not a decode one
		{"str huge immediate", CtrlRegs{Operation: 10, Operand1: 1, Immediate: size * 2}, true},
		{"ldr huge immediate", CtrlRegs{Operation: 11, Operand1: inst.NumRegs - 1, Immediate: size * 2}, true},
		{"stb huge immediate", CtrlRegs{Operation: 12, Operand1: 1, Immediate: size * 2}, true},
		{"ldb bad reg", CtrlRegs{Operation: 13, Operand1: 22}, false},

		{"ildr", CtrlRegs{Operation: 15, Operand1: 1, Operand2: 2}, true},
		{"istb bad addr reg", CtrlRegs{Operation: 16, Operand1: 1, Operand2: 22}, false},

		{"add", CtrlRegs{Operation: 18, Operand1: 1, Operand2: 2, Operand3: 3}, true},
		{"add bad op3", CtrlRegs{Operation: 18, Operand1: 1, Operand2: 2, Operand3: 22}, false},
		{"addi", CtrlRegs{Operation: 19, Operand1: 1, Operand2: 2, Immediate: 999}, true},

		{"divi", CtrlRegs{Operation: 26, Operand1: 1, Operand2: 2, Immediate: 3}, true},
		{"divi by zero", CtrlRegs{Operation: 26, Operand1: 1, Operand2: 2, Immediate: 0}, false},
		{"divi bad reg", CtrlRegs{Operation: 26, Operand1: 22, Operand2: 2, Immediate: 3}, false},

		{"cmp", CtrlRegs{Operation: 29, Operand1: 1, Operand2: 2, Operand3: 3}, true},
		{"cmp bad op3", CtrlRegs{Operation: 29, Operand1: 1, Operand2: 2, Operand3: 22}, false},
		{"cmpi", CtrlRegs{Operation: 30, Operand1: 1, Operand2: 2}, true},

		{"trp halt", CtrlRegs{Operation: 31, Immediate: 0}, true},
		{"trp print reg", CtrlRegs{Operation: 31, Immediate: 98}, true},
		{"trp unknown", CtrlRegs{Operation: 31, Immediate: 7}, false},

		{"alci", CtrlRegs{Operation: 32, Operand1: 1, Immediate: 64}, true},
		{"alci immediate near end", CtrlRegs{Operation: 32, Operand1: 1, Immediate: size - 3}, false},
		{"allc huge immediate", CtrlRegs{Operation: 33, Operand1: 1, Immediate: size * 2}, true},
		{"iallc", CtrlRegs{Operation: 34, Operand1: 1, Operand2: 2}, true},

		{"pshr", CtrlRegs{Operation: 35, Operand1: 1}, true},
		{"popb bad reg", CtrlRegs{Operation: 38, Operand1: 22}, false},

		{"call", CtrlRegs{Operation: 39, Immediate: 64}, true},
		{"call out of bounds", CtrlRegs{Operation: 39, Immediate: size}, false},
		{"ret", CtrlRegs{Operation: 40}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newMachine(size)
			m.Ctrl = tc.ctrl
			assert.Equal(t, tc.ok, m.Decode())
		})
	}
}

func TestDecodeEveryOpcodeKnown(t *testing.T) {
	// every defined opcode passes decode with in-range operands
	m := newMachine(131072)
	for op := uint32(1); op <= 40; op++ {
		m.Ctrl = CtrlRegs{Operation: op, Operand1: 1, Operand2: 2, Operand3: 3, Immediate: 3}
		assert.True(t, m.Decode(), fmt.Sprintf("opcode %d", op))
	}
}
