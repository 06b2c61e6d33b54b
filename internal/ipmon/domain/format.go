package domain

import (
	"fmt"
	"strings"
)

// Format identifies one of the rule/export grammars a prefix set can be
// projected into.
type Format uint8

const (
	// FormatIPTables is a bash script of iptables/ip6tables allow rules.
	FormatIPTables Format = iota
	// FormatAWS is an AWS security group JSON document.
	FormatAWS
	// FormatAzure is an Azure network security group JSON document.
	FormatAzure
	// FormatCisco is a Cisco IOS extended access list.
	FormatCisco
	// FormatPfSense is a pfSense alias import list.
	FormatPfSense
	// FormatMikroTik is a RouterOS address-list script.
	FormatMikroTik
	// FormatPlainText is a human-readable listing with counts.
	FormatPlainText
	// FormatCSV is a type,prefix,description table.
	FormatCSV
	// FormatJSON is a structured export with per-family counts.
	FormatJSON
)

var formatNames = [...]string{
	FormatIPTables:  "iptables",
	FormatAWS:       "aws",
	FormatAzure:     "azure",
	FormatCisco:     "cisco",
	FormatPfSense:   "pfsense",
	FormatMikroTik:  "mikrotik",
	FormatPlainText: "plaintext",
	FormatCSV:       "csv",
	FormatJSON:      "json",
}

var formatFiles = [...]string{
	FormatIPTables:  "iptables.sh",
	FormatAWS:       "aws-security-group.json",
	FormatAzure:     "azure-nsg.json",
	FormatCisco:     "cisco-acl.txt",
	FormatPfSense:   "pfsense-alias.txt",
	FormatMikroTik:  "mikrotik.rsc",
	FormatPlainText: "plain-text.txt",
	FormatCSV:       "export.csv",
	FormatJSON:      "export.json",
}

var formatContentTypes = [...]string{
	FormatIPTables:  "text/x-shellscript; charset=utf-8",
	FormatAWS:       "application/json",
	FormatAzure:     "application/json",
	FormatCisco:     "text/plain; charset=utf-8",
	FormatPfSense:   "text/plain; charset=utf-8",
	FormatMikroTik:  "text/plain; charset=utf-8",
	FormatPlainText: "text/plain; charset=utf-8",
	FormatCSV:       "text/csv; charset=utf-8",
	FormatJSON:      "application/json",
}

// AllFormats returns every supported format in declaration order.
func AllFormats() []Format {
	out := make([]Format, 0, len(formatNames))
	for i := range formatNames {
		out = append(out, Format(i))
	}
	return out
}

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	return int(f) < len(formatNames)
}

// String returns the stable short name of the format.
func (f Format) String() string {
	if !f.IsValid() {
		return fmt.Sprintf("Format(%d)", f)
	}
	return formatNames[f]
}

// FileName returns the export file name used for the format.
func (f Format) FileName() string {
	if !f.IsValid() {
		return ""
	}
	return formatFiles[f]
}

// ContentType returns the HTTP media type used when serving the format.
func (f Format) ContentType() string {
	if !f.IsValid() {
		return "application/octet-stream"
	}
	return formatContentTypes[f]
}

// ParseFormat converts a format name or export file name into a Format.
// Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range formatNames {
		if key == name || key == formatFiles[i] {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// RuleDocument is the rendering of a prefix set in one format. Skipped
// holds the per-line conditions (wrapping ErrMalformedPrefix) for prefixes
// that could not be expressed in the grammar and were left out.
type RuleDocument struct {
	Format  Format
	Content string
	Skipped []error
}
