// Package ranking assigns daily, overall and per-leg positions.
//
// All rankings use standard competition ranking: equal keys share a rank and
// the next distinct key takes its 1-based position, so ties consume numbers.
package ranking

import (
	"sort"

	"github.com/okian/ekiden/internal/domain/model"
)

// competition returns ranks for an already sorted sequence of n items.
func competition(n int, same func(i, j int) bool) []int {
	ranks := make([]int, n)
	for i := 0; i < n; i++ {
		if i > 0 && same(i-1, i) {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}

func competitive(results []*model.TeamResult) []*model.TeamResult {
	out := make([]*model.TeamResult, 0, len(results))
	for _, r := range results {
		if !r.Shadow {
			out = append(out, r)
		}
	}
	return out
}

// Daily sets TodayRank on competitive results by today's distance, descending.
// Shadow results get no rank.
func Daily(results []*model.TeamResult) {
	teams := competitive(results)
	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].TodayDistance != teams[j].TodayDistance {
			return teams[i].TodayDistance > teams[j].TodayDistance
		}
		return teams[i].TeamID < teams[j].TeamID
	})
	ranks := competition(len(teams), func(i, j int) bool {
		return teams[i].TodayDistance == teams[j].TodayDistance
	})
	for i, t := range teams {
		t.TodayRank = model.IntPtr(ranks[i])
	}
	for _, r := range results {
		if r.Shadow {
			r.TodayRank = nil
		}
	}
}

// overallKey orders finished teams before running ones. Finished teams compare
// by finish day then distance; running teams by distance only.
type overallKey struct {
	running   bool
	finishDay int
	distance  float64
}

func keyOf(r *model.TeamResult) overallKey {
	if r.FinishDay != nil {
		return overallKey{finishDay: *r.FinishDay, distance: r.TotalDistance}
	}
	return overallKey{running: true, distance: r.TotalDistance}
}

func (a overallKey) ahead(b overallKey) bool {
	if a.running != b.running {
		return !a.running
	}
	if a.finishDay != b.finishDay {
		return a.finishDay < b.finishDay
	}
	return a.distance > b.distance
}

// Overall sets OverallRank on competitive results and returns all results in
// standings order with shadow teams last.
func Overall(results []*model.TeamResult) []*model.TeamResult {
	teams := competitive(results)
	sort.SliceStable(teams, func(i, j int) bool {
		ki, kj := keyOf(teams[i]), keyOf(teams[j])
		if ki != kj {
			return ki.ahead(kj)
		}
		return teams[i].TeamID < teams[j].TeamID
	})
	ranks := competition(len(teams), func(i, j int) bool {
		return keyOf(teams[i]) == keyOf(teams[j])
	})
	for i, t := range teams {
		t.OverallRank = model.IntPtr(ranks[i])
	}

	var shadows []*model.TeamResult
	for _, r := range results {
		if r.Shadow {
			r.OverallRank = nil
			shadows = append(shadows, r)
		}
	}
	sort.SliceStable(shadows, func(i, j int) bool { return shadows[i].TeamID < shadows[j].TeamID })
	return append(teams, shadows...)
}

// Apply computes both rankings and returns the standings order.
func Apply(results []*model.TeamResult) []*model.TeamResult {
	Daily(results)
	return Overall(results)
}

type legEntry struct {
	runner  string
	summary *model.LegSummary
}

// Legs ranks every leg summary against the other runners of the same leg by
// rounded average distance.
func Legs(individuals model.Individuals) {
	byLeg := make(map[int][]legEntry)
	for name, rec := range individuals {
		if rec == nil {
			continue
		}
		for leg, s := range rec.LegSummaries {
			if s == nil || s.Days == 0 {
				continue
			}
			byLeg[leg] = append(byLeg[leg], legEntry{runner: name, summary: s})
		}
	}
	for _, entries := range byLeg {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].summary.AverageDistance != entries[j].summary.AverageDistance {
				return entries[i].summary.AverageDistance > entries[j].summary.AverageDistance
			}
			return entries[i].runner < entries[j].runner
		})
		ranks := competition(len(entries), func(i, j int) bool {
			return entries[i].summary.AverageDistance == entries[j].summary.AverageDistance
		})
		for i, e := range entries {
			e.summary.Rank = model.IntPtr(ranks[i])
		}
	}
}
