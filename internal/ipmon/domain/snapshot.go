package domain

import (
	"fmt"
	"sort"
	"time"
)

// Provider document names published by the upstream provider.
const (
	SourceCloud = "cloud"
	SourceGoog  = "goog"
)

// Field names of a prefix entry in the provider schema.
const (
	FieldIPv4Prefix = "ipv4Prefix"
	FieldIPv6Prefix = "ipv6Prefix"
)

// Snapshot is one dated capture of the provider's published prefix lists.
//
// Documents maps a provider document name ("cloud", "goog") to its content.
// A nil document means the provider document was absent or failed to fetch
// on that day; it contributes no prefixes.
type Snapshot struct {
	Date      string
	Documents map[string]*ProviderDocument
}

// ProviderDocument is a single published prefix list.
type ProviderDocument struct {
	SyncToken    string
	CreationTime string
	Entries      []PrefixEntry
}

// PrefixEntry is one element of a provider's prefix list. IPv4 and IPv6 hold
// the raw decoded field values so malformed input can be detected during
// extraction; nil means the field was absent.
type PrefixEntry struct {
	IPv4    any
	IPv6    any
	Service string
	Scope   string
}

// NewSnapshot constructs a Snapshot and validates its date key.
func NewSnapshot(date string, docs map[string]*ProviderDocument) (Snapshot, error) {
	s := Snapshot{Date: date, Documents: docs}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Validate checks that the snapshot carries a YYYY-MM-DD date key.
func (s Snapshot) Validate() error {
	if s.Date == "" {
		return fmt.Errorf("snapshot date must not be empty")
	}
	if _, err := time.Parse("2006-01-02", s.Date); err != nil {
		return fmt.Errorf("snapshot date %q is not YYYY-MM-DD: %w", s.Date, err)
	}
	return nil
}

// DocumentNames returns the names of the snapshot's documents in sorted order.
func (s Snapshot) DocumentNames() []string {
	names := make([]string, 0, len(s.Documents))
	for name := range s.Documents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether every provider document is absent.
func (s Snapshot) IsEmpty() bool {
	for _, doc := range s.Documents {
		if doc != nil {
			return false
		}
	}
	return true
}

// SnapshotFromRaw converts a decoded provider payload into a Snapshot.
// raw is the top-level object keyed by document name. A document value that
// is null or not an object is treated as absent; a "prefixes" value that is
// missing or not a list yields no entries. Entry field values are kept as-is.
func SnapshotFromRaw(date string, raw map[string]any) Snapshot {
	docs := make(map[string]*ProviderDocument, len(raw))
	for name, val := range raw {
		obj, ok := val.(map[string]any)
		if !ok {
			docs[name] = nil
			continue
		}
		docs[name] = documentFromRaw(obj)
	}
	return Snapshot{Date: date, Documents: docs}
}

func documentFromRaw(obj map[string]any) *ProviderDocument {
	doc := &ProviderDocument{
		SyncToken:    stringField(obj, "syncToken"),
		CreationTime: stringField(obj, "creationTime"),
	}
	list, ok := obj["prefixes"].([]any)
	if !ok {
		return doc
	}
	doc.Entries = make([]PrefixEntry, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			// keep the slot so indexes in error messages match the source list
			doc.Entries = append(doc.Entries, PrefixEntry{})
			continue
		}
		doc.Entries = append(doc.Entries, PrefixEntry{
			IPv4:    m[FieldIPv4Prefix],
			IPv6:    m[FieldIPv6Prefix],
			Service: stringField(m, "service"),
			Scope:   stringField(m, "scope"),
		})
	}
	return doc
}

// ToRaw converts the snapshot back into the provider payload shape used for
// storage. Absent documents are emitted as null.
func (s Snapshot) ToRaw() map[string]any {
	out := make(map[string]any, len(s.Documents))
	for name, doc := range s.Documents {
		if doc == nil {
			out[name] = nil
			continue
		}
		entries := make([]any, 0, len(doc.Entries))
		for _, e := range doc.Entries {
			m := map[string]any{}
			if e.IPv4 != nil {
				m[FieldIPv4Prefix] = e.IPv4
			}
			if e.IPv6 != nil {
				m[FieldIPv6Prefix] = e.IPv6
			}
			if e.Service != "" {
				m["service"] = e.Service
			}
			if e.Scope != "" {
				m["scope"] = e.Scope
			}
			entries = append(entries, m)
		}
		d := map[string]any{"prefixes": entries}
		if doc.SyncToken != "" {
			d["syncToken"] = doc.SyncToken
		}
		if doc.CreationTime != "" {
			d["creationTime"] = doc.CreationTime
		}
		out[name] = d
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// SortSnapshots orders snapshots by date key, oldest first. The sort is
// stable so equal dates keep their load order.
func SortSnapshots(history []Snapshot) {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date < history[j].Date
	})
}
