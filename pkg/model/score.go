package model

import "fmt"

// Score ranks a schedule lexicographically: milestones met by their freeze
// date first, then total lateness in days, then makespan in working days.
// This ordering is the sole acceptance criterion everywhere — it is never
// collapsed into a weighted scalar for incumbent tracking or reporting.
type Score struct {
	DeadlinesMet  int `json:"deadlines_met"`
	TotalLateness int `json:"total_lateness"`
	MakespanDays  int `json:"makespan_days"`
}

// Better reports whether s is strictly better than other.
func (s Score) Better(other Score) bool {
	if s.DeadlinesMet != other.DeadlinesMet {
		return s.DeadlinesMet > other.DeadlinesMet
	}
	if s.TotalLateness != other.TotalLateness {
		return s.TotalLateness < other.TotalLateness
	}
	return s.MakespanDays < other.MakespanDays
}

// String renders the score for logs and CLI output.
func (s Score) String() string {
	return fmt.Sprintf("met=%d lateness=%d makespan=%d", s.DeadlinesMet, s.TotalLateness, s.MakespanDays)
}
