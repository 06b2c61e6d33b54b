package history

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// Export file names under the charts directory.
const (
	CSVFileName      = "historical_metrics.csv"
	JSONFileName     = "historical_metrics.json"
	SummaryFileName  = "summary.md"
	exportServiceTag = "ipmon-export"
)

var csvHeader = []string{
	"Date",
	"Total Ranges",
	"IPv4 Count",
	"IPv6 Count",
	"Daily Added",
	"Daily Removed",
	"Net Change",
}

// RenderCSV writes one row per data point under a fixed header.
func RenderCSV(m domain.MetricsSeries) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for i, date := range m.Timestamps {
		row := []string{
			date,
			strconv.Itoa(m.TotalRanges[i]),
			strconv.Itoa(m.IPv4Counts[i]),
			strconv.Itoa(m.IPv6Counts[i]),
			strconv.Itoa(m.DailyAdded[i]),
			strconv.Itoa(m.DailyRemoved[i]),
			strconv.Itoa(m.NetChange(i)),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type jsonExport struct {
	Data     jsonSeries     `json:"data"`
	Summary  domain.Summary `json:"summary"`
	Metadata exportMetadata `json:"metadata"`
}

type jsonSeries struct {
	Timestamps   []string `json:"timestamps"`
	TotalRanges  []int    `json:"total_ranges"`
	IPv4Counts   []int    `json:"ipv4_counts"`
	IPv6Counts   []int    `json:"ipv6_counts"`
	DailyAdded   []int    `json:"daily_added"`
	DailyRemoved []int    `json:"daily_removed"`
}

type exportMetadata struct {
	ExportedAt string `json:"exported_at"`
	Service    string `json:"service"`
	Version    string `json:"version"`
	Format     string `json:"format"`
}

// RenderJSON writes the series as {data, summary, metadata}.
func RenderJSON(m domain.MetricsSeries, exportedAt time.Time, version string) (string, error) {
	doc := jsonExport{
		Data: jsonSeries{
			Timestamps:   orEmpty(m.Timestamps),
			TotalRanges:  orEmpty(m.TotalRanges),
			IPv4Counts:   orEmpty(m.IPv4Counts),
			IPv6Counts:   orEmpty(m.IPv6Counts),
			DailyAdded:   orEmpty(m.DailyAdded),
			DailyRemoved: orEmpty(m.DailyRemoved),
		},
		Summary: m.Summary,
		Metadata: exportMetadata{
			ExportedAt: exportedAt.UTC().Format(time.RFC3339),
			Service:    exportServiceTag,
			Version:    version,
			Format:     "json",
		},
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var summaryTemplate = template.Must(template.New("summary").Parse(`# Google IP Monitor - Historical Analytics Summary

## Overview

- **Data Points**: {{.Points}}
- **Date Range**: {{.Start}} to {{.End}}
- **Generated**: {{.Generated}}

## Current Statistics

| Metric | Value |
|--------|-------|
| Total IP Ranges | {{.Total}} |
| IPv4 Ranges | {{.IPv4}} |
| IPv6 Ranges | {{.IPv6}} |
| Total Growth | {{.Growth}} |
| Avg Daily Change | {{.AvgChange}} |

## Distribution

- **IPv4**: {{.IPv4Share}}%
- **IPv6**: {{.IPv6Share}}%

---

*Generated by Google IP Monitor {{.Version}}*
`))

// RenderSummaryMarkdown writes a human-readable summary of the series.
// Distribution percentages are 0.0 when the current total is zero.
func RenderSummaryMarkdown(m domain.MetricsSeries, generatedAt time.Time, version string) (string, error) {
	p := message.NewPrinter(language.English)
	s := m.Summary

	var v4Share, v6Share float64
	if s.CurrentTotal > 0 {
		v4Share = float64(s.CurrentIPv4) / float64(s.CurrentTotal) * 100
		v6Share = float64(s.CurrentIPv6) / float64(s.CurrentTotal) * 100
	}

	data := struct {
		Points, Start, End, Generated string
		Total, IPv4, IPv6, Growth     string
		AvgChange                     string
		IPv4Share, IPv6Share          string
		Version                       string
	}{
		Points:    strconv.Itoa(s.TotalDataPoints),
		Start:     dateOrNA(s.DateRange.Start),
		End:       dateOrNA(s.DateRange.End),
		Generated: generatedAt.UTC().Format("2006-01-02 15:04 UTC"),
		Total:     p.Sprintf("%d", s.CurrentTotal),
		IPv4:      p.Sprintf("%d", s.CurrentIPv4),
		IPv6:      p.Sprintf("%d", s.CurrentIPv6),
		Growth:    signed(p, s.TotalGrowth),
		AvgChange: strconv.FormatFloat(s.AvgDailyChange, 'f', 2, 64),
		IPv4Share: strconv.FormatFloat(v4Share, 'f', 1, 64),
		IPv6Share: strconv.FormatFloat(v6Share, 'f', 1, 64),
		Version:   version,
	}

	var b strings.Builder
	if err := summaryTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// signed formats n with digit grouping and an explicit sign, "+0" for zero.
func signed(p *message.Printer, n int) string {
	if n < 0 {
		return "-" + p.Sprintf("%d", -n)
	}
	return "+" + p.Sprintf("%d", n)
}

func dateOrNA(d *string) string {
	if d == nil {
		return "N/A"
	}
	return *d
}
