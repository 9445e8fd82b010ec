// Package shadow advances the non-competitive benchmark team.
//
// The shadow team runs each leg at its runners' historical per-day record and
// never falls behind the field: when a competitive team moves past the shadow's
// leg, the shadow hands off and warps to the leader of its new leg.
package shadow

import (
	"github.com/okian/ekiden/internal/domain/course"
	"github.com/okian/ekiden/internal/domain/model"
)

// Status is the shadow leg state derived from the competitive field.
type Status string

const (
	Waiting  Status = "waiting"
	Running  Status = "running"
	Finished Status = "finished"
)

// StatusOf derives the state of leg from the competitive teams' new legs.
func StatusOf(leg int, field []*model.TeamResult) Status {
	running := false
	for _, r := range field {
		if r.Shadow {
			continue
		}
		if r.NewLeg > leg {
			return Finished
		}
		if r.NewLeg == leg {
			running = true
		}
	}
	if running {
		return Running
	}
	return Waiting
}

// Simulator advances the shadow team over a course.
type Simulator struct {
	boundaries course.Boundaries
}

// New returns a Simulator for the given course.
func New(b course.Boundaries) *Simulator {
	return &Simulator{boundaries: b}
}

// Advance moves the shadow team one tick given the competitive results of the
// same tick. The returned status is the one of the leg the shadow started on.
func (s *Simulator) Advance(team *model.Team, state model.RaceState, field []*model.TeamResult) (model.TeamResult, Status) {
	leg := state.CurrentLeg
	if leg < 1 {
		leg = 1
	}
	res := model.TeamResult{
		TeamID:        team.ID,
		Name:          team.Name,
		Shadow:        true,
		StartLeg:      leg,
		NewLeg:        leg,
		TotalDistance: state.TotalDistance,
	}
	if s.boundaries.Finished(leg) {
		res.Frozen = true
		return res, Finished
	}

	status := StatusOf(leg, field)
	if runner, ok := team.RunnerForLeg(leg); ok {
		res.Runner = runner.Name
		if status == Running {
			res.TodayDistance = runner.Record
		}
	}
	res.TotalDistance = model.Round1(state.TotalDistance + res.TodayDistance)

	if status == Finished {
		res.NewLeg = leg + 1
		res.CompletedLegs = []int{leg}
		if lead, ok := leaderIn(res.NewLeg, field); ok {
			res.TotalDistance = lead
		}
	}
	return res, status
}

// leaderIn returns the greatest distance among competitive teams now on leg.
func leaderIn(leg int, field []*model.TeamResult) (float64, bool) {
	best, found := 0.0, false
	for _, r := range field {
		if r.Shadow || r.NewLeg != leg {
			continue
		}
		if !found || r.TotalDistance > best {
			best, found = r.TotalDistance, true
		}
	}
	return best, found
}

// Seed places a shadow team without stored state at the current leader's
// position so it starts level with the field.
func Seed(team *model.Team, field []model.RaceState) model.RaceState {
	st := model.NewRaceState(team)
	found := false
	for _, f := range field {
		if !found || f.TotalDistance > st.TotalDistance {
			st.TotalDistance = f.TotalDistance
			st.CurrentLeg = f.CurrentLeg
			found = true
		}
	}
	if st.CurrentLeg < 1 {
		st.CurrentLeg = 1
	}
	return st
}
