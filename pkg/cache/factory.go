package cache

import "fmt"

// Kind selects a cache organization. The numeric values match the -c
// command-line selector.
type Kind int

const (
	None Kind = iota
	Direct
	Assoc
	TwoWay
)

// String returns the organization name used in reports.
func (k Kind) String() string {
	switch k {
	case None:
		return "No Cache"
	case Direct:
		return "Direct Mapped Cache"
	case Assoc:
		return "Fully Associative Cache"
	case TwoWay:
		return "Two Way Set Associative Cache"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// New constructs the cache organization selected by k over mem. For None
// it returns a nil Cache: callers fall back to direct memory access.
func New(k Kind, mem Backing) (Cache, error) {
	switch k {
	case None:
		return nil, nil
	case Direct:
		return NewDirectMapped(mem), nil
	case Assoc:
		return NewFullyAssociative(mem), nil
	case TwoWay:
		return NewTwoWaySetAssociative(mem), nil
	}
	return nil, fmt.Errorf("unknown cache kind %d", int(k))
}
