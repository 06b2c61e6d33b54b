// Package rules projects a canonical prefix set into firewall rules,
// security-group documents, router scripts and plain data exports.
//
// Every renderer is a pure function of Input: identical lists and an
// identical timestamp always produce byte-identical output.
package rules

import (
	"fmt"
	"time"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

const (
	// timestampLayout renders generation times in headers and exports.
	timestampLayout = "2006-01-02 15:04:05 UTC"

	rangeDescription   = "Google IP Range"
	rangeDescriptionV6 = "Google IPv6 Range"
)

// Input is the shared record every renderer reads. IPv4 and IPv6 must be
// deduplicated and sorted ascending; renderers keep the given order.
type Input struct {
	IPv4        []string
	IPv6        []string
	GeneratedAt time.Time
}

// InputFromSet splits a canonical set by family into a renderer Input.
func InputFromSet(set domain.PrefixSet, generatedAt time.Time) Input {
	return Input{
		IPv4:        set.IPv4(),
		IPv6:        set.IPv6(),
		GeneratedAt: generatedAt,
	}
}

// Total returns the number of prefixes across both families.
func (in Input) Total() int { return len(in.IPv4) + len(in.IPv6) }

func (in Input) timestamp() string {
	return in.GeneratedAt.UTC().Format(timestampLayout)
}

// renderer produces the document body and any per-line skips.
type renderer func(in Input) (string, []error, error)

var renderers = map[domain.Format]renderer{
	domain.FormatIPTables:  renderIPTables,
	domain.FormatAWS:       renderAWS,
	domain.FormatAzure:     renderAzure,
	domain.FormatCisco:     renderCisco,
	domain.FormatPfSense:   renderPfSense,
	domain.FormatMikroTik:  renderMikroTik,
	domain.FormatPlainText: renderPlainText,
	domain.FormatCSV:       renderCSV,
	domain.FormatJSON:      renderJSON,
}

// Project renders in as a document in the given format.
//
// A prefix that cannot be expressed in the target grammar drops only its own
// line; the condition is recorded in RuleDocument.Skipped and the rest of the
// document is still produced.
func Project(format domain.Format, in Input) (domain.RuleDocument, error) {
	render, ok := renderers[format]
	if !ok {
		return domain.RuleDocument{}, fmt.Errorf("%w: %s", domain.ErrUnknownFormat, format)
	}
	content, skipped, err := render(in)
	if err != nil {
		return domain.RuleDocument{}, fmt.Errorf("render %s: %w", format, err)
	}
	return domain.RuleDocument{Format: format, Content: content, Skipped: skipped}, nil
}
