// Package bench runs one binary image under several cache configurations
// and compares their memory-cycle totals. Each configuration executes in
// its own Machine; machines stay single-threaded internally, only the
// fan-out across configurations is concurrent.
package bench

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/kahnshaak/emu4380/pkg/cache"
	"github.com/kahnshaak/emu4380/pkg/machine"
)

// Config describes one comparison run.
type Config struct {
	Image   []byte
	MemSize uint32
	Kinds   []cache.Kind
	Input   []byte // fed to trap input in every machine
}

// Report is the outcome of one configuration.
type Report struct {
	Cache        string `json:"cache"`
	Kind         int    `json:"kind"`
	MemCycles    uint32 `json:"mem_cycles"`
	Instructions uint64 `json:"instructions"`
	Halted       bool   `json:"halted"`
	Error        string `json:"error,omitempty"`
}

// AllKinds is the default comparison set: no cache plus the three
// organizations.
var AllKinds = []cache.Kind{cache.None, cache.Direct, cache.Assoc, cache.TwoWay}

// Run executes the image once per configured kind, concurrently, and
// returns the reports in the order of cfg.Kinds.
func Run(cfg Config) []Report {
	kinds := cfg.Kinds
	if len(kinds) == 0 {
		kinds = AllKinds
	}

	reports := make([]Report, len(kinds))
	var wg sync.WaitGroup
	for i, k := range kinds {
		wg.Add(1)
		go func(i int, k cache.Kind) {
			defer wg.Done()
			reports[i] = runOne(cfg, k)
		}(i, k)
	}
	wg.Wait()

	return reports
}

func runOne(cfg Config, k cache.Kind) Report {
	rep := Report{Cache: k.String(), Kind: int(k)}

	m := machine.New(cfg.MemSize)
	m.SetIO(bytes.NewReader(cfg.Input), io.Discard)
	if err := m.SetCache(k); err != nil {
		rep.Error = err.Error()
		return rep
	}
	if err := m.LoadImage(cfg.Image); err != nil {
		rep.Error = err.Error()
		return rep
	}
	if err := m.Run(); err != nil {
		rep.Error = err.Error()
	}

	rep.MemCycles = m.MemCycles()
	rep.Instructions = m.Retired()
	rep.Halted = m.Halted()
	return rep
}

// WriteTable prints the reports as an aligned comparison table.
func WriteTable(w io.Writer, reports []Report) {
	fmt.Fprintf(w, "%-32s %12s %14s  %s\n", "CACHE", "MEM CYCLES", "INSTRUCTIONS", "STATUS")
	for _, r := range reports {
		status := "halted"
		if !r.Halted {
			status = "failed"
			if r.Error != "" {
				status = r.Error
			}
		}
		fmt.Fprintf(w, "%-32s %12d %14d  %s\n", r.Cache, r.MemCycles, r.Instructions, status)
	}
}
