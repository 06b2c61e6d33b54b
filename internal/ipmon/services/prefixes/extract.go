// Package prefixes turns raw provider snapshots into canonical prefix sets
// and compares those sets.
package prefixes

import (
	"errors"
	"fmt"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// Extract collects every IPv4 and IPv6 CIDR published in the snapshot into a
// canonical set. Absent documents, absent prefix lists and entries carrying
// neither field contribute nothing.
//
// An entry whose prefix field is present but not a string, or is an empty
// string, is skipped and reported as an ErrMalformedEntry; the returned set still holds every valid
// prefix, so callers may keep it and log the error.
func Extract(s domain.Snapshot) (domain.PrefixSet, error) {
	set := domain.NewPrefixSet()
	var errs []error

	for _, name := range s.DocumentNames() {
		doc := s.Documents[name]
		if doc == nil {
			continue
		}
		for i, entry := range doc.Entries {
			v4, v6, err := entryPrefixes(entry)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s[%d] in snapshot %s: %v", domain.ErrMalformedEntry, name, i, s.Date, err))
				continue
			}
			if v4 != "" {
				set.Add(v4)
			}
			if v6 != "" {
				set.Add(v6)
			}
		}
	}

	return set, errors.Join(errs...)
}

// entryPrefixes returns the entry's IPv4 and IPv6 CIDRs, empty when absent.
// Both fields are checked before anything is returned so a half-valid entry
// is rejected as a whole.
func entryPrefixes(e domain.PrefixEntry) (v4, v6 string, err error) {
	v4, err = prefixField(domain.FieldIPv4Prefix, e.IPv4)
	if err != nil {
		return "", "", err
	}
	v6, err = prefixField(domain.FieldIPv6Prefix, e.IPv6)
	if err != nil {
		return "", "", err
	}
	return v4, v6, nil
}

func prefixField(field string, val any) (string, error) {
	if val == nil {
		return "", nil
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s has non-string value %v (%T)", field, val, val)
	}
	if s == "" {
		return "", fmt.Errorf("%s is an empty string", field)
	}
	return s, nil
}
