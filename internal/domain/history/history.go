// Package history maintains the long-running per-date and per-leg rank series.
package history

import (
	"github.com/okian/ekiden/internal/domain/model"
)

// Mode selects how leg slots are written.
type Mode int

const (
	// Realtime overwrites leg slots that are not yet final.
	Realtime Mode = iota
	// Commit writes leg slots and marks them final.
	Commit
)

// Recorder writes tick results into history series shaped for a roster.
type Recorder struct {
	teams []*model.Team
	legs  int
}

// New returns a Recorder for the competitive teams over a course of legs.
func New(teams []*model.Team, legs int) *Recorder {
	return &Recorder{teams: teams, legs: legs}
}

// EmptyDates returns a series with no dates for every team.
func (r *Recorder) EmptyDates() *model.RankHistory {
	h := &model.RankHistory{Dates: []string{}}
	r.shapeDates(h)
	return h
}

// EmptyLegs returns a series with every leg slot unset.
func (r *Recorder) EmptyLegs() *model.LegRankHistory {
	h := &model.LegRankHistory{}
	r.shapeLegs(h)
	return h
}

// shapeDates adds missing teams and pads every series to the number of dates.
func (r *Recorder) shapeDates(h *model.RankHistory) {
	if h.Dates == nil {
		h.Dates = []string{}
	}
	known := make(map[int]bool, len(h.Teams))
	for _, t := range h.Teams {
		known[t.ID] = true
	}
	for _, t := range r.teams {
		if !known[t.ID] {
			h.Teams = append(h.Teams, model.TeamRankSeries{ID: t.ID, Name: t.Name})
		}
	}
	n := len(h.Dates)
	for i := range h.Teams {
		h.Teams[i].Ranks = fitInts(h.Teams[i].Ranks, n)
		h.Teams[i].Distances = fitFloats(h.Teams[i].Distances, n)
	}
}

// shapeLegs adds missing teams and sizes every series to the leg count.
func (r *Recorder) shapeLegs(h *model.LegRankHistory) {
	known := make(map[int]bool, len(h.Teams))
	for _, t := range h.Teams {
		known[t.ID] = true
	}
	for _, t := range r.teams {
		if !known[t.ID] {
			h.Teams = append(h.Teams, model.TeamLegRanks{ID: t.ID, Name: t.Name})
		}
	}
	for i := range h.Teams {
		h.Teams[i].LegRanks = fitInts(h.Teams[i].LegRanks, r.legs)
		final := make([]bool, r.legs)
		copy(final, h.Teams[i].Final)
		h.Teams[i].Final = final
	}
}

// RecordDate locates or appends date and overwrites every ranked team's slot.
func (r *Recorder) RecordDate(h *model.RankHistory, date string, results []*model.TeamResult) *model.RankHistory {
	if h == nil {
		h = r.EmptyDates()
	}
	idx := -1
	for i, d := range h.Dates {
		if d == date {
			idx = i
			break
		}
	}
	if idx < 0 {
		h.Dates = append(h.Dates, date)
		idx = len(h.Dates) - 1
	}
	r.shapeDates(h)

	pos := make(map[int]int, len(h.Teams))
	for i, t := range h.Teams {
		pos[t.ID] = i
	}
	for _, res := range results {
		if res.Shadow || res.OverallRank == nil {
			continue
		}
		i, ok := pos[res.TeamID]
		if !ok {
			continue
		}
		h.Teams[i].Ranks[idx] = model.IntPtr(*res.OverallRank)
		h.Teams[i].Distances[idx] = model.FloatPtr(res.TotalDistance)
	}
	return h
}

// RecordLegs writes the overall rank into every leg from the day's start leg up
// to the last leg completed. Realtime leaves final slots untouched.
func (r *Recorder) RecordLegs(h *model.LegRankHistory, results []*model.TeamResult, mode Mode) *model.LegRankHistory {
	if h == nil {
		h = r.EmptyLegs()
	}
	r.shapeLegs(h)

	pos := make(map[int]int, len(h.Teams))
	for i, t := range h.Teams {
		pos[t.ID] = i
	}
	for _, res := range results {
		if res.Shadow || res.OverallRank == nil {
			continue
		}
		i, ok := pos[res.TeamID]
		if !ok {
			continue
		}
		series := &h.Teams[i]
		for leg := res.StartLeg; leg <= res.NewLeg-1; leg++ {
			slot := leg - 1
			if slot < 0 || slot >= r.legs {
				continue
			}
			if mode == Realtime && series.Final[slot] {
				continue
			}
			series.LegRanks[slot] = model.IntPtr(*res.OverallRank)
			if mode == Commit {
				series.Final[slot] = true
			}
		}
	}
	return h
}

func fitInts(v []*int, n int) []*int {
	if len(v) >= n {
		return v[:n]
	}
	return append(v, make([]*int, n-len(v))...)
}

func fitFloats(v []*float64, n int) []*float64 {
	if len(v) >= n {
		return v[:n]
	}
	return append(v, make([]*float64, n-len(v))...)
}
