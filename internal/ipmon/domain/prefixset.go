package domain

import (
	"sort"
	"strings"
)

// PrefixSet is a canonical, deduplicated set of CIDR strings. Membership is
// byte-for-byte equality of the CIDR literal; no subnet-aware comparison.
type PrefixSet struct {
	m map[string]struct{}
}

// NewPrefixSet returns a set holding the given prefixes.
func NewPrefixSet(prefixes ...string) PrefixSet {
	s := PrefixSet{m: make(map[string]struct{}, len(prefixes))}
	for _, p := range prefixes {
		s.m[p] = struct{}{}
	}
	return s
}

// Add inserts a prefix into the set.
func (s *PrefixSet) Add(prefix string) {
	if s.m == nil {
		s.m = make(map[string]struct{})
	}
	s.m[prefix] = struct{}{}
}

// Contains reports whether prefix is a member of the set.
func (s PrefixSet) Contains(prefix string) bool {
	_, ok := s.m[prefix]
	return ok
}

// Len returns the number of distinct prefixes.
func (s PrefixSet) Len() int { return len(s.m) }

// Sorted returns all members in ascending lexicographic order.
func (s PrefixSet) Sorted() []string {
	out := make([]string, 0, len(s.m))
	for p := range s.m {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// IPv4 returns the IPv4 members (no colon in the literal), sorted.
func (s PrefixSet) IPv4() []string {
	out := make([]string, 0, len(s.m))
	for p := range s.m {
		if !IsIPv6Literal(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// IPv6 returns the IPv6 members (colon in the literal), sorted.
func (s PrefixSet) IPv6() []string {
	out := make([]string, 0, len(s.m))
	for p := range s.m {
		if IsIPv6Literal(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Minus returns the sorted members of s that are not in other.
func (s PrefixSet) Minus(other PrefixSet) []string {
	out := make([]string, 0)
	for p := range s.m {
		if !other.Contains(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold exactly the same prefixes.
func (s PrefixSet) Equal(other PrefixSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for p := range s.m {
		if !other.Contains(p) {
			return false
		}
	}
	return true
}

// IsIPv6Literal reports whether a CIDR literal belongs to the IPv6 family.
// The family is decided by syntax alone: a colon marks IPv6.
func IsIPv6Literal(prefix string) bool {
	return strings.Contains(prefix, ":")
}
