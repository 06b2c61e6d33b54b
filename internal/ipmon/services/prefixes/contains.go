package prefixes

import (
	"fmt"
	"net/netip"
	"sort"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// Containing returns the members of set whose network contains addr, most
// specific first and lexicographic among equal lengths.
// Members that do not parse as CIDRs are ignored.
func Containing(set domain.PrefixSet, addr string) ([]string, error) {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	ip = ip.Unmap()

	out := make([]string, 0)
	for _, p := range set.Sorted() {
		pfx, err := netip.ParsePrefix(p)
		if err != nil {
			continue
		}
		if pfx.Contains(ip) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return bits(out[i]) > bits(out[j])
	})
	return out, nil
}

func bits(p string) int {
	pfx, err := netip.ParsePrefix(p)
	if err != nil {
		return -1
	}
	return pfx.Bits()
}
