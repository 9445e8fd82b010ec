// Package progression advances one team's race state by one tick.
package progression

import (
	"math"

	"github.com/okian/ekiden/internal/domain/course"
	"github.com/okian/ekiden/internal/domain/model"
)

// Feed error annotations shown on the public snapshot.
const (
	ReasonUnavailable = "unavailable"
	ReasonMalformed   = "malformed value"
	ReasonNegative    = "negative value"
	ReasonNoRunner    = "no runner assigned"
)

// Input is the tick input of one competitive team.
type Input struct {
	Team    *model.Team
	State   model.RaceState
	Reading model.Reading
	Day     int
}

// Engine applies daily increments against the leg boundaries.
type Engine struct {
	boundaries course.Boundaries
}

// New returns an Engine for the given course.
func New(b course.Boundaries) *Engine {
	return &Engine{boundaries: b}
}

// Increment turns a reading into a non-negative distance. A reading that cannot
// be used yields 0 and the reason.
func Increment(r model.Reading) (float64, string) {
	if r.Value == nil {
		if r.Error != "" {
			return 0, r.Error
		}
		return 0, ReasonUnavailable
	}
	v := *r.Value
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0, ReasonMalformed
	case v < 0:
		return 0, ReasonNegative
	}
	return v, ""
}

// Advance moves the team forward by today's reading. State must already be the
// day's baseline. Individual records of the active runner are updated in place.
func (e *Engine) Advance(in Input, individuals model.Individuals) model.TeamResult {
	st := in.State
	if st.CurrentLeg < 1 {
		st.CurrentLeg = 1
	}
	res := model.TeamResult{
		TeamID:        in.Team.ID,
		Name:          in.Team.Name,
		StartLeg:      st.CurrentLeg,
		NewLeg:        st.CurrentLeg,
		TotalDistance: st.TotalDistance,
		FinishDay:     st.FinishDay,
		PreviousRank:  st.OverallRank,
	}

	if st.FinishedBefore(in.Day) || e.boundaries.Finished(st.CurrentLeg) {
		res.Frozen = true
		return res
	}

	runner, ok := in.Team.RunnerForLeg(st.CurrentLeg)
	if !ok {
		res.FeedError = ReasonNoRunner
		return res
	}
	res.Runner = runner.Name

	inc, reason := Increment(in.Reading)
	res.TodayDistance = inc
	res.FeedError = reason
	res.TotalDistance = model.Round1(st.TotalDistance + inc)
	res.NewLeg, res.CompletedLegs = e.boundaries.Advance(st.CurrentLeg, res.TotalDistance)
	if e.boundaries.Finished(res.NewLeg) && res.FinishDay == nil {
		res.FinishDay = model.IntPtr(in.Day)
	}

	if individuals == nil {
		return res
	}
	if inc > 0 {
		individuals.Record(runner.Name, in.Team.ID).Upsert(in.Day, st.CurrentLeg, inc)
	}
	if len(res.CompletedLegs) > 0 {
		if rec, ok := individuals[runner.Name]; ok {
			rec.MarkFinal(st.CurrentLeg, in.Day)
		}
	}
	return res
}
