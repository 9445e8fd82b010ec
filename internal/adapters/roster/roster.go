// Package roster loads the team roster, leg boundaries and the optional shadow team.
package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/ekiden/internal/domain/course"
	"github.com/okian/ekiden/internal/domain/model"
)

// ErrInvalidRoster reports a roster that cannot be raced.
var ErrInvalidRoster = errors.New("invalid roster")

// Race is the static description of one race.
type Race struct {
	Roster     *model.Roster
	Boundaries course.Boundaries
}

type document struct {
	LegBoundaries []float64    `koanf:"leg_boundaries"`
	Teams         []model.Team `koanf:"teams"`
}

// Load reads the roster file and, when shadowPath is set, the shadow team.
// Both files may be YAML or JSON.
func Load(path, shadowPath string) (Race, error) {
	if path == "" {
		return Race{}, fmt.Errorf("%w: no roster file configured", ErrInvalidRoster)
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Race{}, fmt.Errorf("%w: %s: %v", ErrInvalidRoster, path, err)
	}
	var doc document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Race{}, fmt.Errorf("%w: %s: %v", ErrInvalidRoster, path, err)
	}

	boundaries, err := course.New(doc.LegBoundaries)
	if err != nil {
		return Race{}, fmt.Errorf("%w: %s: %v", ErrInvalidRoster, path, err)
	}

	teams := make([]model.Team, 0, len(doc.Teams)+1)
	for _, t := range doc.Teams {
		t.Shadow = false
		teams = append(teams, normalize(t))
	}

	if shadowPath != "" {
		shadow, err := loadShadow(shadowPath)
		if err != nil {
			return Race{}, err
		}
		teams = append(teams, shadow)
	}

	if err := validate(teams); err != nil {
		return Race{}, fmt.Errorf("%w: %s: %v", ErrInvalidRoster, path, err)
	}
	return Race{Roster: model.NewRoster(teams), Boundaries: boundaries}, nil
}

func loadShadow(path string) (model.Team, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return model.Team{}, fmt.Errorf("%w: shadow %s: %v", ErrInvalidRoster, path, err)
	}
	var t model.Team
	if err := k.UnmarshalWithConf("", &t, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return model.Team{}, fmt.Errorf("%w: shadow %s: %v", ErrInvalidRoster, path, err)
	}
	t.Shadow = true
	return normalize(t), nil
}

// normalize trims names and numbers runners by position when legs are omitted.
func normalize(t model.Team) model.Team {
	t.Name = strings.TrimSpace(t.Name)
	t.ShortName = strings.TrimSpace(t.ShortName)
	t.Manager = strings.TrimSpace(t.Manager)
	runners := make([]model.Runner, len(t.Runners))
	for i, r := range t.Runners {
		r.Name = strings.TrimSpace(r.Name)
		if r.Leg == 0 {
			r.Leg = i + 1
		}
		runners[i] = r
	}
	t.Runners = runners
	return t
}

func validate(teams []model.Team) error {
	competitive := 0
	ids := make(map[int]bool, len(teams))
	for _, t := range teams {
		if t.Name == "" {
			return fmt.Errorf("team %d has no name", t.ID)
		}
		if ids[t.ID] {
			return fmt.Errorf("duplicate team id %d", t.ID)
		}
		ids[t.ID] = true
		if !t.Shadow {
			competitive++
		}
		for i, r := range t.Runners {
			if r.Name == "" {
				return fmt.Errorf("team %d runner %d has no name", t.ID, i+1)
			}
			if r.Leg != i+1 {
				return fmt.Errorf("team %d runner %q is listed for leg %d at position %d", t.ID, r.Name, r.Leg, i+1)
			}
		}
	}
	if competitive == 0 {
		return errors.New("no teams")
	}
	return nil
}
