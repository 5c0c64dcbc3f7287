// Package machine implements the emu4380 virtual machine: a 22-register
// 32-bit CPU over a flat memory image, with an optional simulated cache
// between the interpreter and the backing store. A Machine owns all of its
// state; tests construct one, drive it, and inspect it directly.
package machine

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/kahnshaak/emu4380/pkg/cache"
	"github.com/kahnshaak/emu4380/pkg/inst"
	"github.com/kahnshaak/emu4380/pkg/mem"
)

// ErrInsufficientMemory is returned by LoadImage when the binary image
// does not fit the configured memory size.
var ErrInsufficientMemory = errors.New("INSUFFICIENT MEMORY SPACE")

// CtrlRegs holds the decoded current instruction between the fetch,
// decode, and execute phases. Operand slots carry register indices;
// Immediate carries the second instruction word.
type CtrlRegs struct {
	Operation uint32
	Operand1  uint32
	Operand2  uint32
	Operand3  uint32
	Immediate uint32
}

// Machine is one virtual machine instance.
type Machine struct {
	Reg  [inst.NumRegs]uint32
	Ctrl CtrlRegs

	mem       *mem.Memory
	cache     cache.Cache
	cacheKind cache.Kind

	memCycles uint32
	memStream bool
	retired   uint64
	halted    bool

	in  *bufio.Reader
	out io.Writer
}

// New allocates a machine with size bytes of zero-filled memory, no
// cache, and the process standard streams for trap I/O.
func New(size uint32) *Machine {
	return &Machine{
		mem: mem.New(size),
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

// SetIO replaces the streams used by the trap routines.
func (m *Machine) SetIO(in io.Reader, out io.Writer) {
	m.in = bufio.NewReader(in)
	m.out = out
}

// SetCache installs the cache organization selected by k. Kind None
// removes the cache; memory accesses then pay the streaming-burst cost.
func (m *Machine) SetCache(k cache.Kind) error {
	c, err := cache.New(k, m.mem)
	if err != nil {
		return err
	}
	m.cache = c
	m.cacheKind = k
	return nil
}

// LoadImage copies a binary image to address zero and initializes the
// register file. The image's first word becomes the initial program
// counter; the image size marks the code/data boundary the stack limit is
// derived from.
func (m *Machine) LoadImage(image []byte) error {
	if uint64(len(image)) > uint64(m.mem.Size()) {
		return ErrInsufficientMemory
	}
	m.mem.Load(0, image)
	m.initRegisters(uint32(len(image)))
	if len(image) >= 4 {
		m.Reg[inst.PC] = binary.LittleEndian.Uint32(image)
	}
	m.memCycles = 0
	m.retired = 0
	m.halted = false
	return nil
}

// initRegisters establishes the boot register layout: general registers
// and control registers zeroed, SL one past the code section, the stack
// full-descending from SB = memory size, and the heap starting at SL.
func (m *Machine) initRegisters(codeSection uint32) {
	for i := range m.Reg {
		m.Reg[i] = 0
	}
	m.Ctrl = CtrlRegs{}
	m.memStream = false

	m.Reg[inst.SL] = codeSection + 1
	m.Reg[inst.SB] = m.mem.Size()
	m.Reg[inst.SP] = m.Reg[inst.SB]
	m.Reg[inst.HP] = m.Reg[inst.SL]
}

// MemCycles returns the accumulated memory-access cycle count.
func (m *Machine) MemCycles() uint32 {
	return m.memCycles
}

// Retired returns the number of instructions executed to completion.
func (m *Machine) Retired() uint64 {
	return m.retired
}

// Halted reports whether a HALT trap has been executed.
func (m *Machine) Halted() bool {
	return m.halted
}

// CacheKind returns the active cache selector.
func (m *Machine) CacheKind() cache.Kind {
	return m.cacheKind
}

// Memory exposes the backing store.
func (m *Machine) Memory() *mem.Memory {
	return m.mem
}

// chargeStream accounts one uncached access: 8 cycles to open a burst,
// 2 for each further access until the burst is closed.
func (m *Machine) chargeStream() {
	if m.memStream {
		m.memCycles += 2
	} else {
		m.memCycles += 8
		m.memStream = true
	}
}

// ReadByte reads one byte at addr through the active cost model.
// Out-of-range reads return zero without charging cycles.
func (m *Machine) ReadByte(addr uint32) byte {
	if addr >= m.mem.Size() {
		return 0
	}
	if m.cache == nil {
		m.chargeStream()
		return m.mem.ReadByte(addr)
	}
	res := m.cache.ReadByte(addr)
	m.memCycles += res.TotalCycles()
	return m.cache.CachedByte(addr)
}

// ReadWord reads a little-endian word at addr through the active cost
// model. Out-of-range reads return zero without charging cycles.
func (m *Machine) ReadWord(addr uint32) uint32 {
	if addr+3 >= m.mem.Size() {
		return 0
	}
	if m.cache == nil {
		m.chargeStream()
		return m.mem.ReadWord(addr)
	}
	res := m.cache.ReadWord(addr)
	m.memCycles += res.TotalCycles()
	return m.cache.CachedWord(addr)
}

// WriteByte writes one byte at addr through the active cost model.
// Out-of-range writes are dropped without charging cycles.
func (m *Machine) WriteByte(addr uint32, data byte) {
	if addr >= m.mem.Size() {
		return
	}
	if m.cache == nil {
		m.chargeStream()
		m.mem.WriteByte(addr, data)
		return
	}
	res := m.cache.WriteByte(addr, data)
	m.memCycles += res.TotalCycles()
}

// WriteWord writes a little-endian word at addr through the active cost
// model. Out-of-range writes are dropped without charging cycles.
func (m *Machine) WriteWord(addr uint32, data uint32) {
	if addr+3 >= m.mem.Size() {
		return
	}
	if m.cache == nil {
		m.chargeStream()
		m.mem.WriteWord(addr, data)
		return
	}
	res := m.cache.WriteWord(addr, data)
	m.memCycles += res.TotalCycles()
}

// validateStackPointer checks the stack discipline SL <= SP <= SB.
func (m *Machine) validateStackPointer() bool {
	return m.Reg[inst.SP] >= m.Reg[inst.SL] && m.Reg[inst.SP] <= m.Reg[inst.SB]
}

// checkSPDest re-validates the stack pointer when an instruction's
// destination register was SP.
func (m *Machine) checkSPDest(op1 uint32) bool {
	if op1 == uint32(inst.SP) {
		return m.validateStackPointer()
	}
	return true
}
