package domain

// Delta is the comparison of two canonical prefix sets. Added and Removed
// are disjoint and sorted ascending.
type Delta struct {
	Added         []string `json:"added"`
	Removed       []string `json:"removed"`
	PreviousCount int      `json:"total_previous"`
	CurrentCount  int      `json:"total_current"`
}

// HasChanges reports whether any prefix was added or removed.
func (d Delta) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// NetChange is the difference in set size between current and previous.
func (d Delta) NetChange() int {
	return d.CurrentCount - d.PreviousCount
}
