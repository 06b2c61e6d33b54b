package bloom

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/ipmon/internal/ipmon/repos/prefixindex"
)

// factory implements prefixindex.BloomFactory using the sizer's formulas.
type factory struct{}

// NewFactory returns a BloomFactory that sizes filters from capacity and FP rate.
func NewFactory() prefixindex.BloomFactory { return factory{} }

// New constructs a filter sized for capacity keys at the target FP rate.
func (factory) New(capacity uint64, fpRate float64) prefixindex.BloomFilter {
	m, k := sizer{}.Size(capacity, fpRate)
	return &filter{bf: bitsbloom.New(uint(m), uint(k))}
}
