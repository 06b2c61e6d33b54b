package rules

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// WildcardMask converts an IPv4 prefix length into the dotted-decimal
// wildcard mask used by extended ACLs: the bitwise complement of the subnet
// mask, most-significant octet first. 32 yields "0.0.0.0" and 0 yields
// "255.255.255.255".
func WildcardMask(prefixLen int) (string, error) {
	if prefixLen < 0 || prefixLen > 32 {
		return "", fmt.Errorf("%w: %d (want 0..32)", domain.ErrInvalidPrefixLength, prefixLen)
	}
	// shifting a uint32 by 32 yields 0, so /0 needs no special case
	wildcard := ^(^uint32(0) << (32 - prefixLen))

	var b strings.Builder
	for shift := 24; shift >= 0; shift -= 8 {
		if shift != 24 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(int(wildcard >> shift & 0xFF)))
	}
	return b.String(), nil
}

// splitIPv4Prefix parses an IPv4 address/prefixlen token into its network
// address literal and wildcard mask.
func splitIPv4Prefix(cidr string) (network, wildcard string, err error) {
	addr, lenStr, ok := strings.Cut(cidr, "/")
	if !ok {
		return "", "", fmt.Errorf("%w: %q has no prefix length", domain.ErrMalformedPrefix, cidr)
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil || !ip.Is4() {
		return "", "", fmt.Errorf("%w: %q is not an IPv4 address", domain.ErrMalformedPrefix, cidr)
	}
	// ParsePrefix rejects signs, leading zeros and lengths above 32
	pfx, err := netip.ParsePrefix(cidr)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q has an invalid prefix length %q", domain.ErrMalformedPrefix, cidr, lenStr)
	}
	wildcard, err = WildcardMask(pfx.Bits())
	if err != nil {
		return "", "", fmt.Errorf("%w: %q: %v", domain.ErrMalformedPrefix, cidr, err)
	}
	return addr, wildcard, nil
}
