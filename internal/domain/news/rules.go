package news

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/ekiden/internal/domain/model"
)

// Catalogue returns the rules in priority order.
func Catalogue() []Rule {
	return []Rule{
		CommentRule{},
		LeaderChangeRule{},
		LegCompleteRule{},
		ExtremeRule{High: true},
		ExtremeRule{},
		RankJumpRule{},
		RankDropRule{},
		ClosingGapRule{},
		ScheduledRule{},
	}
}

// ManagerName returns the display part of a "Name◆trip" identity.
func ManagerName(identity string) string {
	name, _, _ := strings.Cut(identity, "◆")
	return strings.TrimSpace(name)
}

// CommentRule surfaces a recent post by a team manager.
type CommentRule struct{}

func (CommentRule) Kind() Kind { return KindComment }

func (CommentRule) Evaluate(c *Context) (Event, bool) {
	if c.Previous == nil || c.Roster == nil {
		return Event{}, false
	}
	comments := append([]model.Comment(nil), c.Comments...)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].Timestamp.After(comments[j].Timestamp)
	})
	for _, cm := range comments {
		if _, ok := c.Roster.ManagerTeam(cm.AuthorIdentity); !ok {
			continue
		}
		posted := cm.Timestamp.In(c.Now.Location())
		age := c.Now.Sub(posted)
		if age < 0 || age >= c.Settings.CommentWindow || !c.InHours(posted) {
			continue
		}
		name := cm.AuthorName
		if name == "" {
			name = ManagerName(cm.AuthorIdentity)
		}
		header := fmt.Sprintf("[%s Manager]", name)
		ev := Event{
			Kind:         KindComment,
			Message:      header + " " + snippet(cm.Text, c.Settings.SnippetRunes),
			ExtendedText: header + "\n\n" + cm.Text,
			Source:       cm.ID,
		}
		if d := c.Displayed(); d != nil && d.Message == ev.Message {
			return Event{}, false
		}
		return ev, true
	}
	return Event{}, false
}

func snippet(text string, n int) string {
	r := []rune(strings.TrimSpace(text))
	if n <= 0 || len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}

// LeaderChangeRule fires when a different team leads the overall standings.
type LeaderChangeRule struct{}

func (LeaderChangeRule) Kind() Kind { return KindLeaderChange }

func (LeaderChangeRule) Evaluate(c *Context) (Event, bool) {
	if c.Previous == nil {
		return Event{}, false
	}
	prev, cur := c.Previous.Ranked(), c.Ranked()
	if len(prev) == 0 || len(cur) == 0 || prev[0].ID == cur[0].TeamID {
		return Event{}, false
	}
	// A team drawing level with the leader shares first place and takes nothing.
	for _, r := range cur {
		if r.TeamID == prev[0].ID && r.OverallRank != nil && *r.OverallRank == 1 {
			return Event{}, false
		}
	}
	return Event{
		Kind:    KindLeaderChange,
		Message: fmt.Sprintf("[Breaking] Leader change! %s takes the lead!", cur[0].Name),
	}, true
}

// LegCompleteRule reports every boundary crossed since the previous snapshot, grouped per leg.
type LegCompleteRule struct{}

func (LegCompleteRule) Kind() Kind { return KindLegComplete }

func (LegCompleteRule) Evaluate(c *Context) (Event, bool) {
	if c.Previous == nil {
		return Event{}, false
	}
	byLeg := make(map[int][]string)
	for _, r := range c.Ranked() {
		prev, ok := c.Previous.Team(r.TeamID)
		if !ok {
			continue
		}
		for _, leg := range c.Boundaries.Crossed(prev.TotalDistance, r.TotalDistance) {
			byLeg[leg] = append(byLeg[leg], r.Name)
		}
	}
	if len(byLeg) == 0 {
		return Event{}, false
	}
	legs := make([]int, 0, len(byLeg))
	for leg := range byLeg {
		legs = append(legs, leg)
	}
	sort.Ints(legs)
	parts := make([]string, 0, len(legs))
	for _, leg := range legs {
		parts = append(parts, fmt.Sprintf("%s completed leg %d!", strings.Join(byLeg[leg], ", "), leg))
	}
	return Event{Kind: KindLegComplete, Message: "[Leg complete] " + strings.Join(parts, " ")}, true
}

// ExtremeRule fires for runners whose distance today reached a tier and rose
// since the previous snapshot. A team missing from that snapshot is skipped.
type ExtremeRule struct {
	High bool
}

func (r ExtremeRule) Kind() Kind {
	if r.High {
		return KindExtremeHigh
	}
	return KindExtremeLow
}

func (r ExtremeRule) Evaluate(c *Context) (Event, bool) {
	if c.Previous == nil {
		return Event{}, false
	}
	tier := c.Settings.ExtremeLow
	if r.High {
		tier = c.Settings.ExtremeHigh
	}
	var hits []string
	for _, t := range c.Ranked() {
		if t.TodayDistance < tier {
			continue
		}
		prev, ok := c.Previous.Team(t.TeamID)
		if !ok {
			continue
		}
		before := prev.TodayDistance
		if c.Previous.RaceDay != c.RaceDay {
			before = 0
		}
		if t.TodayDistance <= before {
			continue
		}
		hits = append(hits, fmt.Sprintf("%s's %s (%.1fkm)", t.Name, t.Runner, t.TodayDistance))
	}
	if len(hits) == 0 {
		return Event{}, false
	}
	list := strings.Join(hits, ", ")
	if r.High {
		return Event{Kind: KindExtremeHigh, Message: fmt.Sprintf("[Scorcher] %s broke %.0fkm today, a ferocious run!", list, tier)}, true
	}
	return Event{Kind: KindExtremeLow, Message: fmt.Sprintf("[Heatwave] %s went past %.0fkm today!", list, tier)}, true
}

type swing struct {
	team *model.TeamResult
	by   int
}

// swings returns the largest movement in one direction, ties going to the better-placed team.
func swings(c *Context, delta func(prev, cur int) int, margin int) (swing, bool) {
	var best swing
	found := false
	for _, t := range c.Ranked() {
		prev, ok := c.Previous.Team(t.TeamID)
		if !ok || prev.OverallRank == nil {
			continue
		}
		d := delta(*prev.OverallRank, *t.OverallRank)
		if d >= margin && (!found || d > best.by) {
			best, found = swing{team: t, by: d}, true
		}
	}
	return best, found
}

// RankJumpRule fires for the largest climb of at least JumpMargin places.
type RankJumpRule struct{}

func (RankJumpRule) Kind() Kind { return KindRankJump }

func (RankJumpRule) Evaluate(c *Context) (Event, bool) {
	if c.Previous == nil {
		return Event{}, false
	}
	s, ok := swings(c, func(prev, cur int) int { return prev - cur }, c.Settings.JumpMargin)
	if !ok {
		return Event{}, false
	}
	return Event{
		Kind:    KindRankJump,
		Message: fmt.Sprintf("[Jump] %s climbs %d places to %s!", s.team.Name, s.by, ordinal(*s.team.OverallRank)),
	}, true
}

// RankDropRule fires for the largest fall of at least DropMargin places.
type RankDropRule struct{}

func (RankDropRule) Kind() Kind { return KindRankDrop }

func (RankDropRule) Evaluate(c *Context) (Event, bool) {
	if c.Previous == nil {
		return Event{}, false
	}
	s, ok := swings(c, func(prev, cur int) int { return cur - prev }, c.Settings.DropMargin)
	if !ok {
		return Event{}, false
	}
	return Event{
		Kind:    KindRankDrop,
		Message: fmt.Sprintf("[Upset] %s drops %d places. A tough day.", s.team.Name, s.by),
	}, true
}

// ClosingGapRule watches fixed pairs of adjacent places and fires when their
// gap is under the threshold and shrank since the previous snapshot.
type ClosingGapRule struct{}

func (ClosingGapRule) Kind() Kind { return KindClosingGap }

func (ClosingGapRule) Evaluate(c *Context) (Event, bool) {
	if c.Previous == nil {
		return Event{}, false
	}
	ranked := c.Ranked()
	for _, p := range c.Settings.GapPositions {
		if p < 1 || p >= len(ranked) {
			continue
		}
		a, b := ranked[p-1], ranked[p]
		pa, okA := c.Previous.Team(a.TeamID)
		pb, okB := c.Previous.Team(b.TeamID)
		if !okA || !okB {
			continue
		}
		gap := model.Round1(a.TotalDistance - b.TotalDistance)
		before := model.Round1(pa.TotalDistance - pb.TotalDistance)
		if gap < 0 || gap >= c.Settings.GapThreshold || gap >= before {
			continue
		}
		if p == 1 {
			return Event{
				Kind:    KindClosingGap,
				Message: fmt.Sprintf("[Lead battle] 2nd-placed %s closes on leader %s, just %.1fkm behind!", b.Name, a.Name, gap),
			}, true
		}
		return Event{
			Kind: KindClosingGap,
			Message: fmt.Sprintf("[Close race] %s %s and %s %s are neck and neck!",
				ordinal(p), a.Name, ordinal(p+1), b.Name),
		}, true
	}
	return Event{}, false
}

// ScheduledRule posts a status line at fixed minutes unless a non-scheduled
// message is still fresh.
type ScheduledRule struct{}

func (ScheduledRule) Kind() Kind { return KindScheduled }

func (ScheduledRule) Evaluate(c *Context) (Event, bool) {
	if d := c.Displayed(); d != nil && d.Kind != string(KindScheduled) && c.Now.Sub(d.Timestamp) < c.Settings.Suppress {
		return Event{}, false
	}
	ranked := c.Ranked()
	if len(ranked) == 0 {
		return Event{}, false
	}
	switch c.Now.Minute() {
	case c.Settings.TopRunnerMinute:
		top := ranked[0]
		for _, t := range ranked[1:] {
			if t.TodayDistance > top.TodayDistance {
				top = t
			}
		}
		if top.TodayDistance <= 0 {
			return Event{}, false
		}
		return Event{
			Kind:    KindScheduled,
			Message: fmt.Sprintf("[Update] Today's top runner is %s of %s with %.1fkm!", top.Runner, top.Name, top.TodayDistance),
		}, true
	case c.Settings.LeaderMinute:
		lead := ranked[0]
		return Event{
			Kind:    KindScheduled,
			Message: fmt.Sprintf("[Update] %s leads the race with %.1fkm in total!", lead.Name, lead.TotalDistance),
		}, true
	}
	return Event{}, false
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
