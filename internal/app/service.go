// Package service runs race ticks: it loads the stored race, advances every
// team by the day's readings, ranks the field, records history, selects the
// breaking-news message and persists what the tick mode calls for.
package service

import (
	"context"
	"sync"

	"github.com/okian/ekiden/internal/adapters/feed"
	"github.com/okian/ekiden/internal/adapters/publish"
	"github.com/okian/ekiden/internal/adapters/repository"
	"github.com/okian/ekiden/internal/adapters/roster"
	"github.com/okian/ekiden/internal/domain/calendar"
	"github.com/okian/ekiden/internal/domain/history"
	"github.com/okian/ekiden/internal/domain/news"
	"github.com/okian/ekiden/internal/domain/progression"
	"github.com/okian/ekiden/internal/domain/shadow"
	"github.com/okian/ekiden/pkg/logger"
)

// Notifier receives newly fired messages after a realtime tick is persisted.
type Notifier interface {
	Notify(ctx context.Context, n publish.Notification) error
}

// Service runs ticks for one race. Ticks are serialized.
type Service struct {
	mu sync.Mutex

	// Race definition
	race     roster.Race
	calendar calendar.Calendar

	// Core components
	engine   *progression.Engine
	shadow   *shadow.Simulator
	recorder *history.Recorder
	detector *news.Detector

	// Collaborators
	repo     *repository.Repository
	source   feed.Source
	notifier Notifier

	// Configuration
	ledgerSize int

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRepository sets the document repository.
func WithRepository(repo *repository.Repository) Option {
	return func(s *Service) {
		if repo != nil {
			s.repo = repo
		}
	}
}

// WithSource sets the feed source. Without one every runner is unavailable.
func WithSource(src feed.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithNotifier sets the publisher of new messages.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithDetector replaces the default news detector.
func WithDetector(d *news.Detector) Option {
	return func(s *Service) {
		if d != nil {
			s.detector = d
		}
	}
}

// WithLedgerSize bounds the processed commentary ledger.
func WithLedgerSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.ledgerSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service for race on cal.
func New(race roster.Race, cal calendar.Calendar, opts ...Option) (*Service, error) {
	if race.Roster == nil || len(race.Roster.Competitive()) == 0 {
		return nil, ErrInvalidRoster
	}
	s := &Service{
		race:       race,
		calendar:   cal,
		engine:     progression.New(race.Boundaries),
		shadow:     shadow.New(race.Boundaries),
		recorder:   history.New(race.Roster.Competitive(), race.Boundaries.Legs()),
		detector:   news.New(),
		source:     &feed.Static{},
		ledgerSize: 1000,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil {
		return nil, ErrMissingRepo
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s, nil
}

// Close releases the repository.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Close()
}
