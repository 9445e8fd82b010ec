package model

import "math"

// Checkpoint is the start-of-day position of a team, kept so that a repeated
// commit of the same day starts from the same baseline.
type Checkpoint struct {
	TotalDistance float64 `json:"totalDistance"`
	CurrentLeg    int     `json:"currentLeg"`
	OverallRank   *int    `json:"overallRank"`
	FinishDay     *int    `json:"finishDay,omitempty"`
}

// RaceState is the persisted position of one team.
type RaceState struct {
	TeamID        int         `json:"id"`
	Name          string      `json:"name"`
	TotalDistance float64     `json:"totalDistance"`
	CurrentLeg    int         `json:"currentLeg"`
	OverallRank   *int        `json:"overallRank"`
	FinishDay     *int        `json:"finishDay,omitempty"`
	CommittedDay  int         `json:"committedDay,omitempty"`
	Opening       *Checkpoint `json:"opening,omitempty"`
}

// NewRaceState returns the start-of-race state for a team.
func NewRaceState(t *Team) RaceState {
	return RaceState{TeamID: t.ID, Name: t.Name, CurrentLeg: 1}
}

// Baseline returns the state a tick on day must start from. A state already
// committed for that day is rolled back to its opening checkpoint.
func (s RaceState) Baseline(day int) RaceState {
	if s.CommittedDay != day || s.Opening == nil {
		return s
	}
	b := s
	b.TotalDistance = s.Opening.TotalDistance
	b.CurrentLeg = s.Opening.CurrentLeg
	b.OverallRank = s.Opening.OverallRank
	b.FinishDay = s.Opening.FinishDay
	return b
}

// Checkpoint captures the position fields of s.
func (s RaceState) Checkpoint() *Checkpoint {
	return &Checkpoint{
		TotalDistance: s.TotalDistance,
		CurrentLeg:    s.CurrentLeg,
		OverallRank:   s.OverallRank,
		FinishDay:     s.FinishDay,
	}
}

// FinishedBefore reports whether the team crossed the final boundary on an earlier day.
func (s RaceState) FinishedBefore(day int) bool {
	return s.FinishDay != nil && *s.FinishDay < day
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }

// Round1 rounds to one decimal place.
func Round1(v float64) float64 { return math.Round(v*10) / 10 }

// Round3 rounds to three decimal places.
func Round3(v float64) float64 { return math.Round(v*1000) / 1000 }
