package bench

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahnshaak/emu4380/pkg/cache"
	"github.com/kahnshaak/emu4380/pkg/inst"
)

// countdown loops a register from 100 to zero and halts
func countdownImage() []byte {
	p := inst.NewProgram()
	p.SetEntry(4)
	p.Emit(inst.Instruction{Op: inst.MOVI, Op1: 1, Imm: 100})       // 4
	p.Emit(inst.Instruction{Op: inst.SUBI, Op1: 1, Op2: 1, Imm: 1}) // 12
	p.Emit(inst.Instruction{Op: inst.BNZ, Op1: 1, Imm: 12})         // 20
	p.Emit(inst.Instruction{Op: inst.TRP, Imm: 0})                  // 28
	return p.Image()
}

func TestRunAllKinds(t *testing.T) {
	reports := Run(Config{Image: countdownImage(), MemSize: 131072})
	require.Len(t, reports, 4)

	for i, r := range reports {
		assert.Equal(t, i, r.Kind)
		assert.True(t, r.Halted, r.Cache)
		assert.Empty(t, r.Error, r.Cache)
		assert.NotZero(t, r.MemCycles, r.Cache)
	}

	// instruction counts agree across organizations; only timing differs
	for _, r := range reports[1:] {
		assert.Equal(t, reports[0].Instructions, r.Instructions)
		assert.Less(t, r.MemCycles, reports[0].MemCycles, r.Cache)
	}

	assert.Equal(t, "No Cache", reports[0].Cache)
	assert.Equal(t, "Direct Mapped Cache", reports[1].Cache)
	assert.Equal(t, "Fully Associative Cache", reports[2].Cache)
	assert.Equal(t, "Two Way Set Associative Cache", reports[3].Cache)
}

func TestRunSelectedKinds(t *testing.T) {
	reports := Run(Config{
		Image:   countdownImage(),
		MemSize: 131072,
		Kinds:   []cache.Kind{cache.TwoWay, cache.None},
	})
	require.Len(t, reports, 2)
	assert.Equal(t, int(cache.TwoWay), reports[0].Kind)
	assert.Equal(t, int(cache.None), reports[1].Kind)
}

func TestRunReportsFailure(t *testing.T) {
	// an image of zeros decodes opcode 0 and fails
	image := make([]byte, 16)
	reports := Run(Config{Image: image, MemSize: 1024, Kinds: []cache.Kind{cache.None}})
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Halted)
	assert.Contains(t, reports[0].Error, "INVALID INSTRUCTION AT")
}

func TestRunImageTooLarge(t *testing.T) {
	reports := Run(Config{Image: make([]byte, 64), MemSize: 16, Kinds: []cache.Kind{cache.None}})
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Halted)
	assert.NotEmpty(t, reports[0].Error)
}

func TestWriteJSON(t *testing.T) {
	reports := Run(Config{Image: countdownImage(), MemSize: 131072})

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, reports))

	var decoded []Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, reports, decoded)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, []Report{
		{Cache: "No Cache", Kind: 0, MemCycles: 42, Instructions: 7, Halted: true},
		{Cache: "Direct Mapped Cache", Kind: 1, Error: "boom"},
	})
	out := buf.String()
	assert.Contains(t, out, "No Cache")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "halted")
	assert.Contains(t, out, "boom")
}
