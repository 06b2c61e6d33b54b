package domain

import "fmt"

// PrefixSighting records the first and last snapshot dates on which a
// prefix was published.
type PrefixSighting struct {
	Prefix    string `json:"prefix"`
	FirstSeen string `json:"first_seen"`
	LastSeen  string `json:"last_seen"`
}

// Observe widens the sighting to include date. Date keys compare
// lexicographically because they are YYYY-MM-DD.
func (s PrefixSighting) Observe(date string) PrefixSighting {
	if s.FirstSeen == "" || date < s.FirstSeen {
		s.FirstSeen = date
	}
	if date > s.LastSeen {
		s.LastSeen = date
	}
	return s
}

// Validate checks the sighting for required fields.
func (s PrefixSighting) Validate() error {
	if s.Prefix == "" {
		return fmt.Errorf("sighting prefix must not be empty")
	}
	if s.FirstSeen == "" || s.LastSeen == "" {
		return fmt.Errorf("sighting dates must be set")
	}
	if s.FirstSeen > s.LastSeen {
		return fmt.Errorf("sighting first_seen %s is after last_seen %s", s.FirstSeen, s.LastSeen)
	}
	return nil
}
