// Package news selects at most one breaking-news message per tick.
//
// Rules are evaluated in catalogue order against the current standings and the
// previous public snapshot; the first rule that fires wins. When nothing fires
// the displayed message is kept until it ages out.
package news

import (
	"time"

	"github.com/okian/ekiden/internal/domain/course"
	"github.com/okian/ekiden/internal/domain/model"
)

// Kind identifies the rule that produced a message.
type Kind string

const (
	KindComment      Kind = "comment"
	KindLeaderChange Kind = "leader_change"
	KindLegComplete  Kind = "leg_complete"
	KindExtremeHigh  Kind = "extreme_high"
	KindExtremeLow   Kind = "extreme_low"
	KindRankJump     Kind = "rank_jump"
	KindRankDrop     Kind = "rank_drop"
	KindClosingGap   Kind = "closing_gap"
	KindScheduled    Kind = "scheduled"
)

// Event is a rule hit.
type Event struct {
	Kind         Kind
	Message      string
	ExtendedText string
	// Source is the id of the input item behind the event, if any.
	Source string
}

// Context is the read-only input shared by every rule.
type Context struct {
	// Now is the tick time in the race time zone.
	Now        time.Time
	RaceDay    int
	Standings  []*model.TeamResult
	Previous   *model.Snapshot
	Comments   []model.Comment
	Roster     *model.Roster
	Boundaries course.Boundaries
	Settings   Settings
}

// Displayed returns the message currently shown, if any.
func (c *Context) Displayed() *model.News {
	if c.Previous == nil || c.Previous.News == nil || c.Previous.News.Message == "" {
		return nil
	}
	return c.Previous.News
}

// Ranked returns the competitive standings in rank order.
func (c *Context) Ranked() []*model.TeamResult {
	out := make([]*model.TeamResult, 0, len(c.Standings))
	for _, r := range c.Standings {
		if !r.Shadow && r.OverallRank != nil {
			out = append(out, r)
		}
	}
	return out
}

// InHours reports whether t falls in the operating window.
func (c *Context) InHours(t time.Time) bool {
	h := t.Hour()
	return h >= c.Settings.HoursStart && h < c.Settings.HoursEnd
}

// Rule is one entry of the catalogue.
type Rule interface {
	Kind() Kind
	Evaluate(c *Context) (Event, bool)
}

// Decision is the outcome of one detection pass.
type Decision struct {
	News *model.News
	// Fired is set when News is a new message produced this tick.
	Fired bool
	// Preserved is set when the displayed message was carried over.
	Preserved bool
	Rule      Kind
	Source    string
}

// Detector runs a rule catalogue.
type Detector struct {
	rules    []Rule
	settings Settings
}

// Option configures a Detector.
type Option func(*Detector)

// WithRules replaces the catalogue.
func WithRules(rules ...Rule) Option {
	return func(d *Detector) {
		if len(rules) > 0 {
			d.rules = rules
		}
	}
}

// WithSettings replaces the thresholds.
func WithSettings(s Settings) Option {
	return func(d *Detector) {
		d.settings = s
	}
}

// New returns a Detector with the default catalogue and settings.
func New(opts ...Option) *Detector {
	d := &Detector{
		rules:    Catalogue(),
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Settings returns the thresholds in use.
func (d *Detector) Settings() Settings { return d.settings }

// Rules returns the catalogue in priority order.
func (d *Detector) Rules() []Rule { return d.rules }

// Detect evaluates the catalogue and applies the preservation window.
func (d *Detector) Detect(c *Context) Decision {
	c.Settings = d.settings
	displayed := c.Displayed()

	if c.InHours(c.Now) {
		for _, r := range d.rules {
			ev, ok := r.Evaluate(c)
			if !ok {
				continue
			}
			if displayed != nil && displayed.Message == ev.Message {
				return Decision{News: displayed, Preserved: true, Rule: ev.Kind}
			}
			return Decision{
				News: &model.News{
					Kind:         string(ev.Kind),
					Message:      ev.Message,
					ExtendedText: ev.ExtendedText,
					Timestamp:    c.Now,
				},
				Fired:  true,
				Rule:   ev.Kind,
				Source: ev.Source,
			}
		}
	}

	if displayed != nil && c.Now.Sub(displayed.Timestamp) < d.settings.Preserve {
		return Decision{News: displayed, Preserved: true, Rule: Kind(displayed.Kind)}
	}
	return Decision{}
}
