package cache

// Set geometry of the two-way organization.
const (
	Ways = 2
	Sets = Lines / Ways
)

// TwoWaySetAssociative splits the 32 lines into 16 sets of two ways. A
// block may live in either way of the set selected by its address; victim
// choice within a set follows the fully associative policy.
type TwoWaySetAssociative struct {
	sets    [Sets][Ways]line
	mem     Backing
	counter uint32
}

// NewTwoWaySetAssociative returns an empty two-way set-associative cache
// over mem.
func NewTwoWaySetAssociative(mem Backing) *TwoWaySetAssociative {
	return &TwoWaySetAssociative{mem: mem}
}

// Type returns the human-readable organization name.
func (c *TwoWaySetAssociative) Type() string {
	return "Two Way Set Associative Cache"
}

// Reset invalidates every line and restarts the LRU stamp counter.
func (c *TwoWaySetAssociative) Reset() {
	for s := range c.sets {
		for w := range c.sets[s] {
			c.sets[s][w].invalidate()
		}
	}
	c.counter = 0
}

func (c *TwoWaySetAssociative) ReadByte(addr uint32) Result {
	info := decompose(addr, Sets)
	set := &c.sets[info.index]

	for w := range set {
		l := &set[w]
		if l.valid && l.tag == info.tag {
			c.counter++
			l.lastUsed = c.counter
			return timing(true, false, 1)
		}
	}

	victim := findLRUWay(set)
	needsWriteback := victim.valid && victim.dirty
	res := timing(false, needsWriteback, 1)

	if needsWriteback {
		c.writeBack(victim, info.index)
	}

	fill(victim, info.tag, addr-info.blockOffset, c.mem)
	c.counter++
	victim.lastUsed = c.counter

	return res
}

func (c *TwoWaySetAssociative) ReadWord(addr uint32) Result {
	if crossesBlock(addr) {
		r1 := c.ReadByte(addr)
		r2 := c.ReadByte(addr + 3)
		return combineRead(r1, r2)
	}
	return c.ReadByte(addr)
}

func (c *TwoWaySetAssociative) WriteByte(addr uint32, data byte) Result {
	info := decompose(addr, Sets)
	set := &c.sets[info.index]

	for w := range set {
		l := &set[w]
		if l.valid && l.tag == info.tag {
			l.data[info.blockOffset] = data
			l.dirty = true
			c.counter++
			l.lastUsed = c.counter
			return timing(true, false, 1)
		}
	}

	victim := findLRUWay(set)
	needsWriteback := victim.valid && victim.dirty
	res := timing(false, needsWriteback, 1)

	if needsWriteback {
		c.writeBack(victim, info.index)
	}

	fill(victim, info.tag, addr-info.blockOffset, c.mem)
	victim.data[info.blockOffset] = data
	victim.dirty = true
	c.counter++
	victim.lastUsed = c.counter

	return res
}

func (c *TwoWaySetAssociative) WriteWord(addr uint32, data uint32) Result {
	if crossesBlock(addr) {
		r1 := c.WriteByte(addr, byte(data))
		r2 := c.WriteByte(addr+1, byte(data>>8))
		r3 := c.WriteByte(addr+2, byte(data>>16))
		r4 := c.WriteByte(addr+3, byte(data>>24))
		return combineWrite(r1, r2, r3, r4)
	}

	info := decompose(addr, Sets)
	set := &c.sets[info.index]

	for w := range set {
		l := &set[w]
		if l.valid && l.tag == info.tag {
			putWord(l, info.blockOffset, data)
			l.dirty = true
			c.counter++
			l.lastUsed = c.counter
			return timing(true, false, 1)
		}
	}

	victim := findLRUWay(set)
	needsWriteback := victim.valid && victim.dirty
	res := timing(false, needsWriteback, 1)

	if needsWriteback {
		c.writeBack(victim, info.index)
	}

	fill(victim, info.tag, addr-info.blockOffset, c.mem)
	putWord(victim, info.blockOffset, data)
	victim.dirty = true
	c.counter++
	victim.lastUsed = c.counter

	return res
}

// CachedByte returns the byte for addr if its block is resident, else 0.
func (c *TwoWaySetAssociative) CachedByte(addr uint32) byte {
	info := decompose(addr, Sets)
	set := &c.sets[info.index]
	for w := range set {
		l := &set[w]
		if l.valid && l.tag == info.tag {
			return l.data[info.blockOffset]
		}
	}
	return 0
}

// CachedWord returns the word for addr if its block is resident, else 0.
func (c *TwoWaySetAssociative) CachedWord(addr uint32) uint32 {
	if crossesBlock(addr) {
		return crossingWord(c, addr)
	}
	info := decompose(addr, Sets)
	set := &c.sets[info.index]
	for w := range set {
		l := &set[w]
		if l.valid && l.tag == info.tag {
			return getWord(l, info.blockOffset)
		}
	}
	return 0
}

// findLRUWay picks the victim within one set: the first invalid way, or
// the way with the smallest stamp.
func findLRUWay(set *[Ways]line) *line {
	lru := &set[0]
	for w := range set {
		l := &set[w]
		if !l.valid {
			return l
		}
		if l.lastUsed < lru.lastUsed {
			lru = l
		}
	}
	return lru
}

// writeBack flushes a dirty way to its home block, reconstructed from the
// tag and the set index. The line stays valid until the following fill.
func (c *TwoWaySetAssociative) writeBack(l *line, index uint32) {
	blockAddr := (l.tag*Sets + index) * BlockSize
	flush(l, blockAddr, c.mem)
}
