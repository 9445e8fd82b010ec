package model

import "time"

// Reading is the distance feed value for one runner. A nil Value means unavailable.
type Reading struct {
	Value *float64 `json:"value"`
	Error string   `json:"error,omitempty"`
}

// Readings maps runner name to reading.
type Readings map[string]Reading

// Available builds a reading holding v.
func Available(v float64) Reading { return Reading{Value: &v} }

// Unavailable builds a reading carrying reason.
func Unavailable(reason string) Reading { return Reading{Error: reason} }

// Comment is one commentary feed item.
type Comment struct {
	ID             string    `json:"id,omitempty"`
	AuthorIdentity string    `json:"author_identity"`
	AuthorName     string    `json:"author_name"`
	Timestamp      time.Time `json:"timestamp"`
	Text           string    `json:"text"`
}
