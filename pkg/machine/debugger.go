package machine

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/kahnshaak/emu4380/pkg/inst"
)

var (
	paneStyle  = lipgloss.NewStyle().Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

type debugModel struct {
	m      *Machine
	prevPC uint32
	err    error
}

func (d debugModel) Init() tea.Cmd {
	return nil
}

// Update advances the machine one instruction per keypress.
func (d debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return d, tea.Quit

		case " ", "j", "enter":
			if d.m.Halted() {
				return d, tea.Quit
			}
			d.prevPC = d.m.Reg[inst.PC]
			if err := d.m.Step(); err != nil {
				d.err = err
				return d, tea.Quit
			}
		}
	}
	return d, nil
}

// renderRow renders 16 bytes of memory as one hex line, bracketing the
// byte at PC.
func (d debugModel) renderRow(start uint32) string {
	raw := d.m.Memory().Raw()
	s := fmt.Sprintf("%08x | ", start)
	for i := uint32(0); i < 16; i++ {
		addr := start + i
		if addr >= uint32(len(raw)) {
			s += " ..  "
			continue
		}
		if addr == d.m.Reg[inst.PC] {
			s += fmt.Sprintf("[%02x] ", raw[addr])
		} else {
			s += fmt.Sprintf(" %02x  ", raw[addr])
		}
	}
	return s
}

func (d debugModel) memoryPane() string {
	pc := d.m.Reg[inst.PC]
	base := pc &^ 15
	var start uint32
	if base >= 32 {
		start = base - 32
	}

	rows := []string{titleStyle.Render("memory")}
	for i := uint32(0); i < 6; i++ {
		rows = append(rows, d.renderRow(start+i*16))
	}
	return strings.Join(rows, "\n")
}

func (d debugModel) registerPane() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("registers") + "\n")
	for i := 0; i < inst.NumRegs; i++ {
		fmt.Fprintf(&b, "%-3s %08x %d\n", inst.Reg(i), d.m.Reg[i], d.m.Reg[i])
	}
	fmt.Fprintf(&b, "\ncycles  %d\n", d.m.MemCycles())
	fmt.Fprintf(&b, "retired %d\n", d.m.Retired())
	fmt.Fprintf(&b, "cache   %s\n", d.m.CacheKind())
	return b.String()
}

func (d debugModel) currentPane() string {
	pc := d.m.Reg[inst.PC]
	raw := d.m.Memory().Raw()

	header := fmt.Sprintf("next @ %d (prev %d)", pc, d.prevPC)
	if d.m.Halted() {
		return header + "\nhalted"
	}
	if uint64(pc)+inst.Size > uint64(len(raw)) {
		return header + "\n<past end of memory>"
	}

	decoded := inst.Decode(raw[pc:])
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		inst.Disassemble(decoded),
		spew.Sdump(decoded),
	)
}

func (d debugModel) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			paneStyle.Render(d.memoryPane()),
			paneStyle.Render(d.registerPane()),
		),
		"",
		d.currentPane(),
		"",
		"space/j step · q quit",
	)
}

// Debug starts an interactive single-step session over the loaded image.
func (m *Machine) Debug() error {
	final, err := tea.NewProgram(debugModel{m: m}).Run()
	if err != nil {
		return err
	}
	if d, ok := final.(debugModel); ok && d.err != nil {
		return d.err
	}
	return nil
}
