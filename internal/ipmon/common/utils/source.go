package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// Source is a named provider document location.
type Source struct {
	Name string
	URL  string
}

// ParseSource parses a "name=url" source entry. The name is lowercased and
// trimmed; the URL must be absolute http or https.
func ParseSource(entry string) (Source, error) {
	name, rawURL, ok := strings.Cut(strings.TrimSpace(entry), "=")
	if !ok {
		return Source{}, fmt.Errorf("source %q must be name=url", entry)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Source{}, fmt.Errorf("source %q has an empty name", entry)
	}
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return Source{}, fmt.Errorf("source %q: %w", entry, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Source{}, fmt.Errorf("source %q: url must be absolute http or https", entry)
	}
	return Source{Name: name, URL: rawURL}, nil
}

// ParseSources parses every entry and rejects duplicate names.
func ParseSources(entries []string) ([]Source, error) {
	out := make([]Source, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		src, err := ParseSource(entry)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[src.Name]; dup {
			return nil, fmt.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = struct{}{}
		out = append(out, src)
	}
	return out, nil
}
