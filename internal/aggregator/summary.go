// Package aggregator derives dashboard figures from a visible subset of
// progress entries. Functions are pure and never touch the store.
package aggregator

import (
	"fmt"
	"math"
	"sort"

	"tilp-connect/internal/domain"
)

// Summary holds the dashboard headline figures.
type Summary struct {
	Total        int           `json:"total"`
	ProgressRate int           `json:"progress_rate"` // percent, 0..100
	LatestStatus domain.Status `json:"latest_status,omitempty"`
}

// Summarize computes Total, ProgressRate and LatestStatus in one call.
func Summarize(subset []*domain.ProgressEntry) Summary {
	s := Summary{Total: len(subset), ProgressRate: ProgressRate(subset)}
	if st, ok := LatestStatus(subset); ok {
		s.LatestStatus = st
	}
	return s
}

// ProgressRate is the share of "Progress" entries as a whole percentage,
// rounded half to even. An empty subset yields 0.
func ProgressRate(subset []*domain.ProgressEntry) int {
	if len(subset) == 0 {
		return 0
	}
	p := 0
	for _, e := range subset {
		if e.Status == domain.StatusProgress {
			p++
		}
	}
	return int(math.RoundToEven(float64(p) / float64(len(subset)) * 100))
}

// LatestStatus returns the status of the entry with the greatest date.
// Ties go to the first such entry in subset order.
func LatestStatus(subset []*domain.ProgressEntry) (domain.Status, bool) {
	if len(subset) == 0 {
		return "", false
	}
	latest := subset[0]
	for _, e := range subset[1:] {
		if e.Date.After(latest.Date) {
			latest = e
		}
	}
	return latest.Status, true
}

// StatusRank maps a status onto the 1..3 trend scale.
func StatusRank(s domain.Status) (int, error) {
	return s.Rank()
}

// TrendPoint is one plotted point of the status trend.
type TrendPoint struct {
	Date     string `json:"date"`
	GoalArea string `json:"goal_area"`
	Value    int    `json:"value"`
}

// Trend maps each entry to its rank, ordered by date. Entries sharing a date
// keep subset order.
func Trend(subset []*domain.ProgressEntry) ([]TrendPoint, error) {
	sorted := make([]*domain.ProgressEntry, len(subset))
	copy(sorted, subset)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	points := make([]TrendPoint, 0, len(sorted))
	for _, e := range sorted {
		rank, err := e.Status.Rank()
		if err != nil {
			return nil, fmt.Errorf("trend entry %d: %w", e.ID, err)
		}
		points = append(points, TrendPoint{
			Date:     e.Date.Format(domain.DateLayout),
			GoalArea: e.GoalArea,
			Value:    rank,
		})
	}
	return points, nil
}

// GoalAreaCounts counts entries per status within one goal area.
type GoalAreaCounts struct {
	GoalArea string         `json:"goal_area"`
	Counts   map[string]int `json:"counts"`
}

// Distribution counts statuses per goal area. Goal areas appear in the order
// they are first seen; every status key is present, possibly zero.
func Distribution(subset []*domain.ProgressEntry) ([]GoalAreaCounts, error) {
	index := map[string]int{}
	out := []GoalAreaCounts{}
	for _, e := range subset {
		if _, err := e.Status.Rank(); err != nil {
			return nil, fmt.Errorf("distribution entry %d: %w", e.ID, err)
		}
		i, ok := index[e.GoalArea]
		if !ok {
			counts := make(map[string]int, len(domain.Statuses))
			for _, st := range domain.Statuses {
				counts[string(st)] = 0
			}
			out = append(out, GoalAreaCounts{GoalArea: e.GoalArea, Counts: counts})
			i = len(out) - 1
			index[e.GoalArea] = i
		}
		out[i].Counts[string(e.Status)]++
	}
	return out, nil
}

// SortByDateDesc returns a display copy ordered newest first. Entries sharing
// a date keep subset order.
func SortByDateDesc(subset []*domain.ProgressEntry) []*domain.ProgressEntry {
	out := make([]*domain.ProgressEntry, len(subset))
	copy(out, subset)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
