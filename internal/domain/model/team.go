// Package model contains domain models passed between layers.
package model

// Runner is one leg assignment of a team.
// Record is the per-day constant used by the shadow team instead of a live reading.
type Runner struct {
	Name   string  `json:"name" koanf:"name"`
	Leg    int     `json:"leg" koanf:"leg"`
	Record float64 `json:"record,omitempty" koanf:"record"`
}

// Team is a roster entry. Runners are ordered by leg.
type Team struct {
	ID        int      `json:"id" koanf:"id"`
	Name      string   `json:"name" koanf:"name"`
	ShortName string   `json:"short_name" koanf:"short_name"`
	Manager   string   `json:"manager,omitempty" koanf:"manager"`
	Runners   []Runner `json:"runners" koanf:"runners"`
	Shadow    bool     `json:"is_shadow,omitempty" koanf:"is_shadow"`
}

// RunnerForLeg returns the runner assigned to the 1-based leg.
func (t *Team) RunnerForLeg(leg int) (Runner, bool) {
	if leg < 1 || leg > len(t.Runners) {
		return Runner{}, false
	}
	return t.Runners[leg-1], true
}

// DisplayName returns the short name when present.
func (t *Team) DisplayName() string {
	if t.ShortName != "" {
		return t.ShortName
	}
	return t.Name
}

// Roster indexes the teams of one race by id. It is built once per tick.
type Roster struct {
	teams []Team
	byID  map[int]int
}

// NewRoster builds an index over teams. At most one team may be the shadow team;
// later shadow entries are ignored by Shadow.
func NewRoster(teams []Team) *Roster {
	r := &Roster{
		teams: append([]Team(nil), teams...),
		byID:  make(map[int]int, len(teams)),
	}
	for i := range r.teams {
		r.byID[r.teams[i].ID] = i
	}
	return r
}

// Team returns the team with the given id.
func (r *Roster) Team(id int) (*Team, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return &r.teams[i], true
}

// Teams returns every team in roster order.
func (r *Roster) Teams() []Team { return r.teams }

// Competitive returns the non-shadow teams in roster order.
func (r *Roster) Competitive() []*Team {
	out := make([]*Team, 0, len(r.teams))
	for i := range r.teams {
		if !r.teams[i].Shadow {
			out = append(out, &r.teams[i])
		}
	}
	return out
}

// Shadow returns the shadow team if the roster has one.
func (r *Roster) Shadow() (*Team, bool) {
	for i := range r.teams {
		if r.teams[i].Shadow {
			return &r.teams[i], true
		}
	}
	return nil, false
}

// ManagerTeam returns the team whose manager identity matches.
func (r *Roster) ManagerTeam(identity string) (*Team, bool) {
	if identity == "" {
		return nil, false
	}
	for i := range r.teams {
		if r.teams[i].Manager == identity {
			return &r.teams[i], true
		}
	}
	return nil, false
}

// Len returns the number of teams.
func (r *Roster) Len() int { return len(r.teams) }
