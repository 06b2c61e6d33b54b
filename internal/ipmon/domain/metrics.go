package domain

// MetricsSeries is the time series derived from an ordered history of
// snapshots. All slices have the same length, one element per data point.
type MetricsSeries struct {
	Timestamps   []string  `json:"timestamps"`
	TotalRanges  []int     `json:"total_ranges"`
	IPv4Counts   []int     `json:"ipv4_counts"`
	IPv6Counts   []int     `json:"ipv6_counts"`
	DailyAdded   []int     `json:"daily_added"`
	DailyRemoved []int     `json:"daily_removed"`
	Summary      Summary   `json:"summary"`
	Metadata     *Metadata `json:"metadata,omitempty"`
}

// Summary condenses a MetricsSeries.
type Summary struct {
	TotalDataPoints int       `json:"total_data_points"`
	DateRange       DateRange `json:"date_range"`
	CurrentTotal    int       `json:"current_total"`
	CurrentIPv4     int       `json:"current_ipv4"`
	CurrentIPv6     int       `json:"current_ipv6"`
	TotalGrowth     int       `json:"total_growth"`
	AvgDailyChange  float64   `json:"avg_daily_change"`
}

// DateRange bounds a series; both ends are nil for an empty series.
type DateRange struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// Metadata describes when and by what a series was produced. It is stamped
// by the aggregation service, never by the pure aggregation itself.
type Metadata struct {
	GeneratedAt string `json:"generated_at"`
	Service     string `json:"service"`
	Version     string `json:"version"`
}

// EmptyMetricsSeries returns the defined empty-state series: zero-length
// (non-nil) sequences, a zeroed summary and a nil date range.
func EmptyMetricsSeries() MetricsSeries {
	return MetricsSeries{
		Timestamps:   []string{},
		TotalRanges:  []int{},
		IPv4Counts:   []int{},
		IPv6Counts:   []int{},
		DailyAdded:   []int{},
		DailyRemoved: []int{},
	}
}

// Len returns the number of data points.
func (m MetricsSeries) Len() int { return len(m.Timestamps) }

// NetChange returns added minus removed for data point i.
func (m MetricsSeries) NetChange(i int) int {
	return m.DailyAdded[i] - m.DailyRemoved[i]
}
