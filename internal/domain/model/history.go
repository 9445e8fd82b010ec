package model

// TeamRankSeries holds one slot per history date.
type TeamRankSeries struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Ranks     []*int     `json:"ranks"`
	Distances []*float64 `json:"distances"`
}

// RankHistory is the per-date series of overall ranks and distances.
type RankHistory struct {
	Dates []string         `json:"dates"`
	Teams []TeamRankSeries `json:"teams"`
}

// TeamLegRanks holds one slot per leg.
type TeamLegRanks struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LegRanks []*int `json:"leg_ranks"`
	Final    []bool `json:"final"`
}

// LegRankHistory is the overall rank of each team at the moment it completed each leg.
type LegRankHistory struct {
	Teams []TeamLegRanks `json:"teams"`
}
