package news

import "time"

// Settings holds every threshold used by the catalogue.
type Settings struct {
	HoursStart int
	HoursEnd   int

	CommentWindow time.Duration
	SnippetRunes  int

	// Preserve keeps the displayed message while younger than this.
	Preserve time.Duration
	// Suppress blocks scheduled messages while a non-scheduled one is younger than this.
	Suppress time.Duration

	ExtremeHigh float64
	ExtremeLow  float64

	JumpMargin int
	DropMargin int

	GapThreshold float64
	// GapPositions are the upper ranks of the watched pairs (p, p+1).
	GapPositions []int

	TopRunnerMinute int
	LeaderMinute    int
}

// DefaultSettings returns the race defaults.
func DefaultSettings() Settings {
	return Settings{
		HoursStart:      7,
		HoursEnd:        19,
		CommentWindow:   10 * time.Minute,
		SnippetRunes:    50,
		Preserve:        time.Hour,
		Suppress:        time.Hour,
		ExtremeHigh:     40.0,
		ExtremeLow:      39.0,
		JumpMargin:      3,
		DropMargin:      5,
		GapThreshold:    0.5,
		GapPositions:    []int{1, 3, 5, 10},
		TopRunnerMinute: 45,
		LeaderMinute:    15,
	}
}
