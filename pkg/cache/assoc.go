package cache

// FullyAssociative holds any block in any of its 32 lines. Lookup is a
// linear scan; the victim on a miss is the first invalid line, else the
// line with the smallest LRU stamp.
type FullyAssociative struct {
	lines   [Lines]line
	mem     Backing
	counter uint32
}

// NewFullyAssociative returns an empty fully associative cache over mem.
func NewFullyAssociative(mem Backing) *FullyAssociative {
	return &FullyAssociative{mem: mem}
}

// Type returns the human-readable organization name.
func (c *FullyAssociative) Type() string {
	return "Fully Associative Cache"
}

// Reset invalidates every line and restarts the LRU stamp counter.
func (c *FullyAssociative) Reset() {
	for i := range c.lines {
		c.lines[i].invalidate()
	}
	c.counter = 0
}

func (c *FullyAssociative) ReadByte(addr uint32) Result {
	info := decompose(addr, 0)

	for i := range c.lines {
		l := &c.lines[i]
		if l.valid && l.tag == info.tag {
			c.counter++
			l.lastUsed = c.counter
			return timing(true, false, 1)
		}
	}

	victim := c.findLRULine()
	needsWriteback := victim.valid && victim.dirty
	res := timing(false, needsWriteback, 1)

	if needsWriteback {
		c.writeBack(victim)
	}

	fill(victim, info.tag, addr-info.blockOffset, c.mem)
	c.counter++
	victim.lastUsed = c.counter

	return res
}

func (c *FullyAssociative) ReadWord(addr uint32) Result {
	if crossesBlock(addr) {
		r1 := c.ReadByte(addr)
		r2 := c.ReadByte(addr + 3)
		return combineRead(r1, r2)
	}
	return c.ReadByte(addr)
}

func (c *FullyAssociative) WriteByte(addr uint32, data byte) Result {
	info := decompose(addr, 0)

	for i := range c.lines {
		l := &c.lines[i]
		if l.valid && l.tag == info.tag {
			l.data[info.blockOffset] = data
			l.dirty = true
			c.counter++
			l.lastUsed = c.counter
			return timing(true, false, 1)
		}
	}

	victim := c.findLRULine()
	needsWriteback := victim.valid && victim.dirty
	res := timing(false, needsWriteback, 1)

	if needsWriteback {
		c.writeBack(victim)
	}

	fill(victim, info.tag, addr-info.blockOffset, c.mem)
	victim.data[info.blockOffset] = data
	victim.dirty = true
	c.counter++
	victim.lastUsed = c.counter

	return res
}

func (c *FullyAssociative) WriteWord(addr uint32, data uint32) Result {
	if crossesBlock(addr) {
		r1 := c.WriteByte(addr, byte(data))
		r2 := c.WriteByte(addr+1, byte(data>>8))
		r3 := c.WriteByte(addr+2, byte(data>>16))
		r4 := c.WriteByte(addr+3, byte(data>>24))
		return combineWrite(r1, r2, r3, r4)
	}

	info := decompose(addr, 0)

	for i := range c.lines {
		l := &c.lines[i]
		if l.valid && l.tag == info.tag {
			putWord(l, info.blockOffset, data)
			l.dirty = true
			c.counter++
			l.lastUsed = c.counter
			return timing(true, false, 1)
		}
	}

	victim := c.findLRULine()
	needsWriteback := victim.valid && victim.dirty
	res := timing(false, needsWriteback, 1)

	if needsWriteback {
		c.writeBack(victim)
	}

	fill(victim, info.tag, addr-info.blockOffset, c.mem)
	putWord(victim, info.blockOffset, data)
	victim.dirty = true
	c.counter++
	victim.lastUsed = c.counter

	return res
}

// CachedByte returns the byte for addr if its block is resident, else 0.
func (c *FullyAssociative) CachedByte(addr uint32) byte {
	info := decompose(addr, 0)
	for i := range c.lines {
		l := &c.lines[i]
		if l.valid && l.tag == info.tag {
			return l.data[info.blockOffset]
		}
	}
	return 0
}

// CachedWord returns the word for addr if its block is resident, else 0.
func (c *FullyAssociative) CachedWord(addr uint32) uint32 {
	if crossesBlock(addr) {
		return crossingWord(c, addr)
	}
	info := decompose(addr, 0)
	for i := range c.lines {
		l := &c.lines[i]
		if l.valid && l.tag == info.tag {
			return getWord(l, info.blockOffset)
		}
	}
	return 0
}

// findLRULine picks the victim for a miss: the first invalid line, or the
// valid line with the smallest stamp.
func (c *FullyAssociative) findLRULine() *line {
	lru := &c.lines[0]
	for i := range c.lines {
		l := &c.lines[i]
		if !l.valid {
			return l
		}
		if l.lastUsed < lru.lastUsed {
			lru = l
		}
	}
	return lru
}

// writeBack flushes a dirty line to its home block; here the tag is the
// block address itself. The line stays valid until the following fill.
func (c *FullyAssociative) writeBack(l *line) {
	flush(l, l.tag*BlockSize, c.mem)
}
