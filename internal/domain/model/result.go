package model

// Finish marks for runner display.
const (
	GoalDisplay    = "Goal"
	NoRunnerMarker = "----"
)

// TeamResult is one team's outcome for a tick.
type TeamResult struct {
	TeamID int
	Name   string
	Shadow bool

	// Runner is the runner active at the start of the tick, empty once finished.
	Runner   string
	StartLeg int
	NewLeg   int

	TodayDistance float64
	TotalDistance float64
	CompletedLegs []int
	FinishDay     *int
	Frozen        bool
	FeedError     string

	TodayRank    *int
	OverallRank  *int
	PreviousRank *int
}

// Finished reports whether the team has a finish day.
func (r *TeamResult) Finished() bool { return r.FinishDay != nil }

// State converts the result into the persisted form.
func (r *TeamResult) State() RaceState {
	return RaceState{
		TeamID:        r.TeamID,
		Name:          r.Name,
		TotalDistance: r.TotalDistance,
		CurrentLeg:    r.NewLeg,
		OverallRank:   r.OverallRank,
		FinishDay:     r.FinishDay,
	}
}
