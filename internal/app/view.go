package service

import (
	"fmt"

	"github.com/okian/ekiden/internal/domain/model"
)

// views renders standings as public team records in standings order.
func (s *Service) views(standings []*model.TeamResult) []model.TeamView {
	out := make([]model.TeamView, 0, len(standings))
	for _, r := range standings {
		team, ok := s.race.Roster.Team(r.TeamID)
		if !ok {
			continue
		}
		out = append(out, model.TeamView{
			ID:            r.TeamID,
			Name:          team.Name,
			ShortName:     team.ShortName,
			CurrentLeg:    r.StartLeg,
			Runner:        runnerDisplay(r),
			TodayDistance: r.TodayDistance,
			TodayRank:     r.TodayRank,
			TotalDistance: r.TotalDistance,
			OverallRank:   r.OverallRank,
			PreviousRank:  r.PreviousRank,
			NextRunner:    nextRunnerDisplay(team, r.StartLeg),
			FinishDay:     r.FinishDay,
			Shadow:        r.Shadow,
			Error:         r.FeedError,
		})
	}
	return out
}

// runnerDisplay is "L<leg> <name>", or the goal mark once a team finished on an earlier day.
func runnerDisplay(r *model.TeamResult) string {
	switch {
	case r.Frozen:
		return model.GoalDisplay
	case r.Runner == "":
		return fmt.Sprintf("L%d %s", r.StartLeg, model.NoRunnerMarker)
	}
	return fmt.Sprintf("L%d %s", r.StartLeg, r.Runner)
}

func nextRunnerDisplay(t *model.Team, leg int) string {
	next, ok := t.RunnerForLeg(leg + 1)
	if !ok {
		return model.GoalDisplay
	}
	return fmt.Sprintf("L%d %s", leg+1, next.Name)
}
