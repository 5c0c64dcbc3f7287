// Package cache implements the simulated cache hierarchy: a direct-mapped,
// a fully associative, and a two-way set-associative organization over a
// shared line/timing model. All three hold 32 lines of 32 bytes and write
// back dirty lines on eviction.
package cache

const (
	// Lines is the total line count of every organization.
	Lines = 32
	// BlockSize is the line width in bytes, the unit of fill and writeback.
	BlockSize = 32
	// WordsPerBlock is the number of 4-byte words in a block.
	WordsPerBlock = BlockSize / 4
)

// Backing is the memory a cache fills from and writes back to.
type Backing interface {
	ReadByte(addr uint32) byte
	ReadWord(addr uint32) uint32
	WriteByte(addr uint32, data byte)
	WriteWord(addr uint32, data uint32)
	Size() uint32
}

// Cache is the capability set shared by the three organizations. After any
// access returns, the addressed data is resident and may be fetched with
// CachedByte/CachedWord.
type Cache interface {
	ReadByte(addr uint32) Result
	ReadWord(addr uint32) Result
	WriteByte(addr uint32, data byte) Result
	WriteWord(addr uint32, data uint32) Result

	CachedByte(addr uint32) byte
	CachedWord(addr uint32) uint32

	Reset()
	Type() string
}

// Result reports the outcome of a single cache access. Writeback cycles
// are carried separately from the access cycles.
type Result struct {
	Hit               bool
	Cycles            uint32
	WritebackOccurred bool
	WritebackCycles   uint32
}

// TotalCycles is the cost the access contributes to the global counter:
// the access cycles, plus the writeback cycles on a miss.
func (r Result) TotalCycles() uint32 {
	if r.Hit {
		return r.Cycles
	}
	return r.Cycles + r.WritebackCycles
}

// timing computes the cycle cost of an access. A hit costs one cycle. A
// miss pays 1 + 8 + 2*(words-1) to fill, and a further 8 + 2*(words-1)
// when a dirty victim must be written back first.
func timing(hit, wb bool, blocksToRead uint32) Result {
	readCycles := uint32(1)
	writebackCycles := uint32(0)
	if hit {
		return Result{Hit: true, Cycles: readCycles, WritebackOccurred: wb}
	}

	readCycles += 8 + 2*(blocksToRead*WordsPerBlock-1)
	if wb {
		writebackCycles = 8 + 2*(WordsPerBlock-1)
	}

	return Result{Hit: false, Cycles: readCycles, WritebackOccurred: wb, WritebackCycles: writebackCycles}
}

// line is one cache line. When valid is false, dirty, tag, and lastUsed are
// zero; data keeps the bytes of the last block filled.
type line struct {
	valid    bool
	dirty    bool
	tag      uint32
	lastUsed uint32
	data     [BlockSize]byte
}

func (l *line) invalidate() {
	l.valid = false
	l.dirty = false
	l.tag = 0
	l.lastUsed = 0
}

// addressInfo is the decomposition of a byte address for a given set
// count. numSets == 0 selects the fully associative layout: index 0 and
// the whole block address as tag.
type addressInfo struct {
	blockAddress uint32
	blockOffset  uint32
	tag          uint32
	index        uint32
}

func decompose(addr, numSets uint32) addressInfo {
	info := addressInfo{
		blockAddress: addr / BlockSize,
		blockOffset:  addr % BlockSize,
	}
	if numSets > 0 {
		info.index = info.blockAddress % numSets
		info.tag = info.blockAddress / numSets
	} else {
		info.index = 0
		info.tag = info.blockAddress
	}
	return info
}

// crossesBlock reports whether a 4-byte access at addr straddles two blocks.
func crossesBlock(addr uint32) bool {
	return addr%BlockSize+4 > BlockSize
}

// combineRead merges the two endpoint sub-accesses of a block-crossing
// word read: hit only if both hit, costs summed.
func combineRead(r1, r2 Result) Result {
	return Result{
		Hit:               r1.Hit && r2.Hit,
		Cycles:            r1.Cycles + r2.Cycles,
		WritebackOccurred: r1.WritebackOccurred || r2.WritebackOccurred,
		WritebackCycles:   r1.WritebackCycles + r2.WritebackCycles,
	}
}

// combineWrite merges the four per-byte sub-accesses of a block-crossing
// word write.
func combineWrite(r1, r2, r3, r4 Result) Result {
	return Result{
		Hit:               r1.Hit && r2.Hit && r3.Hit && r4.Hit,
		Cycles:            r1.Cycles + r2.Cycles + r3.Cycles + r4.Cycles,
		WritebackOccurred: r1.WritebackOccurred || r2.WritebackOccurred || r3.WritebackOccurred || r4.WritebackOccurred,
		WritebackCycles:   r1.WritebackCycles + r2.WritebackCycles + r3.WritebackCycles + r4.WritebackCycles,
	}
}

// fill loads the 32-byte block at base from memory into l and installs tag.
func fill(l *line, tag, base uint32, mem Backing) {
	for i := uint32(0); i < BlockSize; i++ {
		l.data[i] = mem.ReadByte(base + i)
	}
	l.valid = true
	l.dirty = false
	l.tag = tag
}

// flush writes the 32 bytes of l back to memory at blockAddr.
func flush(l *line, blockAddr uint32, mem Backing) {
	for i := uint32(0); i < BlockSize; i++ {
		mem.WriteByte(blockAddr+i, l.data[i])
	}
}

// putWord stores a little-endian word into the block at offset.
func putWord(l *line, offset, data uint32) {
	l.data[offset] = byte(data)
	l.data[offset+1] = byte(data >> 8)
	l.data[offset+2] = byte(data >> 16)
	l.data[offset+3] = byte(data >> 24)
}

// getWord reads the little-endian word at offset from the block.
func getWord(l *line, offset uint32) uint32 {
	return uint32(l.data[offset]) |
		uint32(l.data[offset+1])<<8 |
		uint32(l.data[offset+2])<<16 |
		uint32(l.data[offset+3])<<24
}

// crossingWord assembles a block-crossing word from per-byte lookups.
// After a crossing access both endpoint blocks are resident, so the four
// bytes are served from their own lines.
func crossingWord(c Cache, addr uint32) uint32 {
	return uint32(c.CachedByte(addr)) |
		uint32(c.CachedByte(addr+1))<<8 |
		uint32(c.CachedByte(addr+2))<<16 |
		uint32(c.CachedByte(addr+3))<<24
}
