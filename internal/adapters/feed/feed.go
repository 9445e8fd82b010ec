// Package feed reads the distance and commentary feeds dropped by the collectors.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ekiden/internal/domain/model"
)

// commentNamespace scopes the name-based ids of commentary items.
var commentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ekiden:commentary")) //nolint:gochecknoglobals // constant namespace

// Source provides the per-tick inputs.
type Source interface {
	// Distances returns today's reading (the day's maximum so far) per runner name.
	Distances(ctx context.Context) (model.Readings, error)
	// Comments returns the commentary items, newest first.
	Comments(ctx context.Context) ([]model.Comment, error)
}

// Files reads both feeds from JSON files. An empty path disables that feed.
type Files struct {
	DistancePath   string
	CommentaryPath string
}

// NewFiles returns a file-backed Source.
func NewFiles(distancePath, commentaryPath string) *Files {
	return &Files{DistancePath: distancePath, CommentaryPath: commentaryPath}
}

func read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

type rawReading struct {
	Value *float64 `json:"value"`
	Error string   `json:"error"`
}

// Distances parses {"<runner>": {"value": 35.2|null, "error": "..."}}.
// An entry that cannot be decoded becomes an unavailable reading; a file that
// cannot be decoded at all yields ErrMalformed.
func (f *Files) Distances(_ context.Context) (model.Readings, error) {
	if f.DistancePath == "" {
		return model.Readings{}, fmt.Errorf("%w: no distance feed configured", ErrMissing)
	}
	data, err := read(f.DistancePath)
	if err != nil {
		return model.Readings{}, err
	}
	return ParseDistances(data)
}

// ParseDistances decodes a distance feed document.
func ParseDistances(data []byte) (model.Readings, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Readings{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out := make(model.Readings, len(raw))
	for name, msg := range raw {
		name = strings.TrimSpace(name)
		var r rawReading
		switch {
		case bytes.Equal(bytes.TrimSpace(msg), []byte("null")):
			out[name] = model.Unavailable("unavailable")
		case json.Unmarshal(msg, &r) != nil:
			out[name] = model.Unavailable("malformed")
		case r.Value == nil:
			reason := r.Error
			if reason == "" {
				reason = "unavailable"
			}
			out[name] = model.Unavailable(reason)
		case math.IsNaN(*r.Value) || math.IsInf(*r.Value, 0):
			out[name] = model.Unavailable("malformed")
		default:
			out[name] = model.Reading{Value: r.Value, Error: r.Error}
		}
	}
	return out, nil
}

type rawComment struct {
	ID             string `json:"id"`
	AuthorIdentity string `json:"author_identity"`
	AuthorName     string `json:"author_name"`
	Timestamp      string `json:"timestamp"`
	Text           string `json:"text"`
}

// Comments parses the commentary list. A missing file means no commentary.
func (f *Files) Comments(_ context.Context) ([]model.Comment, error) {
	if f.CommentaryPath == "" {
		return nil, nil
	}
	data, err := read(f.CommentaryPath)
	if errors.Is(err, ErrMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseComments(data)
}

// ParseComments decodes a commentary document, newest first. Items with an
// unparseable timestamp or no text are dropped. Items without an id get a
// stable one derived from author, timestamp and text.
func ParseComments(data []byte) ([]model.Comment, error) {
	var raw []rawComment
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out := make([]model.Comment, 0, len(raw))
	for _, r := range raw {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(r.Timestamp))
		if err != nil || strings.TrimSpace(r.Text) == "" {
			continue
		}
		c := model.Comment{
			ID:             r.ID,
			AuthorIdentity: strings.TrimSpace(r.AuthorIdentity),
			AuthorName:     strings.TrimSpace(r.AuthorName),
			Timestamp:      ts,
			Text:           r.Text,
		}
		if c.ID == "" {
			c.ID = CommentID(c)
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// CommentID derives the stable id of a commentary item.
func CommentID(c model.Comment) string {
	key := c.AuthorIdentity + "\x00" + c.Timestamp.UTC().Format(time.RFC3339Nano) + "\x00" + c.Text
	return uuid.NewSHA1(commentNamespace, []byte(key)).String()
}

// Static is an in-memory Source.
type Static struct {
	Readings model.Readings
	Items    []model.Comment
	Err      error
}

func (s *Static) Distances(context.Context) (model.Readings, error) {
	if s.Readings == nil {
		return model.Readings{}, s.Err
	}
	return s.Readings, s.Err
}

func (s *Static) Comments(context.Context) ([]model.Comment, error) {
	return s.Items, nil
}
