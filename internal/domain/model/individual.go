package model

import "sort"

// LegStatus tells whether a runner's leg summary can still change.
type LegStatus string

const (
	LegProvisional LegStatus = "provisional"
	LegFinal       LegStatus = "final"
)

// DayEntry is one day of running for a runner.
type DayEntry struct {
	Day      int     `json:"day"`
	Leg      int     `json:"leg"`
	Distance float64 `json:"distance"`
}

// LegSummary aggregates a runner's entries for one leg.
type LegSummary struct {
	TotalDistance   float64   `json:"totalDistance"`
	Days            int       `json:"days"`
	AverageDistance float64   `json:"averageDistance"`
	Rank            *int      `json:"rank"`
	Status          LegStatus `json:"status"`
	FinalDay        *int      `json:"finalDay,omitempty"`
	LastUpdatedDay  int       `json:"lastUpdatedDay"`
}

// IndividualRecord is the persisted progress of one runner.
type IndividualRecord struct {
	TeamID        int                 `json:"teamId"`
	TotalDistance float64             `json:"totalDistance"`
	Records       []DayEntry          `json:"records"`
	LegSummaries  map[int]*LegSummary `json:"legSummaries,omitempty"`
}

// Individuals maps runner name to record.
type Individuals map[string]*IndividualRecord

// Record returns the runner's record, creating it for teamID when missing.
func (in Individuals) Record(runner string, teamID int) *IndividualRecord {
	r, ok := in[runner]
	if !ok || r == nil {
		r = &IndividualRecord{TeamID: teamID, Records: []DayEntry{}}
		in[runner] = r
	}
	return r
}

// Upsert writes today's entry, replacing an existing entry for the same day,
// then recomputes the runner total and the summary of leg.
func (r *IndividualRecord) Upsert(day, leg int, distance float64) {
	replaced := false
	for i := range r.Records {
		if r.Records[i].Day == day {
			r.Records[i].Leg = leg
			r.Records[i].Distance = distance
			replaced = true
			break
		}
	}
	if !replaced {
		r.Records = append(r.Records, DayEntry{Day: day, Leg: leg, Distance: distance})
		sort.SliceStable(r.Records, func(i, j int) bool { return r.Records[i].Day < r.Records[j].Day })
	}

	total := 0.0
	for _, e := range r.Records {
		total += e.Distance
	}
	r.TotalDistance = Round1(total)
	r.summarize(leg, day)
}

func (r *IndividualRecord) summarize(leg, day int) {
	if r.LegSummaries == nil {
		r.LegSummaries = make(map[int]*LegSummary)
	}
	total, days := 0.0, 0
	for _, e := range r.Records {
		if e.Leg == leg {
			total += e.Distance
			days++
		}
	}
	s, ok := r.LegSummaries[leg]
	if !ok {
		s = &LegSummary{Status: LegProvisional}
		r.LegSummaries[leg] = s
	}
	s.TotalDistance = Round1(total)
	s.Days = days
	if days > 0 {
		s.AverageDistance = Round3(total / float64(days))
	}
	s.LastUpdatedDay = day
}

// MarkFinal closes the summary of leg. A final summary keeps its first final day.
func (r *IndividualRecord) MarkFinal(leg, day int) {
	s, ok := r.LegSummaries[leg]
	if !ok || s.Status == LegFinal {
		return
	}
	s.Status = LegFinal
	s.FinalDay = IntPtr(day)
}
