package model

import "time"

// News is the single narrative slot of a snapshot.
type News struct {
	Kind         string    `json:"kind"`
	Message      string    `json:"message"`
	ExtendedText string    `json:"extendedText,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// TeamView is the public record of one team.
type TeamView struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	ShortName     string  `json:"short_name"`
	CurrentLeg    int     `json:"currentLeg"`
	Runner        string  `json:"runner"`
	TodayDistance float64 `json:"todayDistance"`
	TodayRank     *int    `json:"todayRank"`
	TotalDistance float64 `json:"totalDistance"`
	OverallRank   *int    `json:"overallRank"`
	PreviousRank  *int    `json:"previousRank"`
	NextRunner    string  `json:"nextRunner"`
	FinishDay     *int    `json:"finishDay"`
	Shadow        bool    `json:"is_shadow,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// Snapshot is the public result of one tick, ordered by overall rank with the shadow team last.
type Snapshot struct {
	UpdateTime time.Time  `json:"updateTime"`
	RaceDay    int        `json:"raceDay"`
	News       *News      `json:"news"`
	Teams      []TeamView `json:"teams"`
}

// Team returns the view of the given team id.
func (s *Snapshot) Team(id int) (TeamView, bool) {
	if s == nil {
		return TeamView{}, false
	}
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return TeamView{}, false
}

// Ranked returns the competitive team views in snapshot order.
func (s *Snapshot) Ranked() []TeamView {
	if s == nil {
		return nil
	}
	out := make([]TeamView, 0, len(s.Teams))
	for _, t := range s.Teams {
		if !t.Shadow && t.OverallRank != nil {
			out = append(out, t)
		}
	}
	return out
}
