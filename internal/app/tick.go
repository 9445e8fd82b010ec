package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ekiden/internal/adapters/publish"
	"github.com/okian/ekiden/internal/adapters/repository"
	"github.com/okian/ekiden/internal/domain/dedupe"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/internal/domain/news"
	"github.com/okian/ekiden/internal/domain/progression"
	"github.com/okian/ekiden/internal/domain/ranking"
	"github.com/okian/ekiden/internal/domain/shadow"
	"github.com/okian/ekiden/pkg/logger"
	"github.com/okian/ekiden/pkg/metrics"
)

// Report is the outcome of one tick.
type Report struct {
	ID        string
	Mode      Mode
	Day       int
	Date      string
	Standings []*model.TeamResult
	Snapshot  *model.Snapshot
	News      news.Decision
	// Written lists the document keys persisted by the tick.
	Written []string
}

// loaded is everything a tick reads from the repository.
type loaded struct {
	states      map[int]model.RaceState
	individuals model.Individuals
	dates       *model.RankHistory
	legs        *model.LegRankHistory
	previous    *model.Snapshot
	ledger      []string
}

// Tick runs one invocation at now. Storage reads happen once before any
// computation and all writes go out in a single batch at the end.
func (s *Service) Tick(ctx context.Context, mode Mode, now time.Time) (*Report, error) {
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	now = s.calendar.Local(now)
	rep := &Report{ID: uuid.NewString(), Mode: mode, Day: s.calendar.Day(now)}
	tf := logger.String("tick", rep.ID)

	if rep.Day < 1 {
		metrics.RecordTick(string(mode), "not_started", msSince(start), now.Unix())
		return nil, fmt.Errorf("%w: %s is before day 1 (%s)", ErrRaceNotStarted, now.Format(time.RFC3339), s.calendar.Date(1))
	}
	rep.Date = s.calendar.Date(rep.Day)
	metrics.UpdateRaceDay(rep.Day)
	s.logger.Info(ctx, "tick started", tf,
		logger.String("mode", string(mode)),
		logger.Int("day", rep.Day),
		logger.String("date", rep.Date),
	)

	in, err := s.load(ctx, tf)
	if err != nil {
		metrics.RecordTick(string(mode), "error", msSince(start), now.Unix())
		return nil, err
	}

	base := s.baselines(ctx, in.states, rep.Day, tf)
	readings := s.readings(ctx, tf)

	rep.Standings = s.advance(ctx, base, readings, in.individuals, rep.Day, tf)
	ranking.Legs(in.individuals)

	dates := s.recorder.RecordDate(in.dates, rep.Date, rep.Standings)
	legs := s.recorder.RecordLegs(in.legs, rep.Standings, mode.historyMode())

	var ledger dedupe.Deduper
	if mode != ModeCommit {
		ledger = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.ledgerSize), dedupe.WithIDs(in.ledger))
		rep.News = s.detect(ctx, now, rep.Day, rep.Standings, in.previous, ledger, tf)
	}

	rep.Snapshot = &model.Snapshot{
		UpdateTime: now,
		RaceDay:    rep.Day,
		News:       rep.News.News,
		Teams:      s.views(rep.Standings),
	}

	batch := s.repo.Begin()
	switch mode {
	case ModeRealtime:
		batch.PutSnapshot(rep.Snapshot).
			PutRankHistory(dates).
			PutLegHistory(legs).
			PutIndividuals(in.individuals).
			PutLedger(ledger.IDs())
	case ModeCommit:
		batch.PutStates(s.committed(rep.Standings, base, rep.Day)).
			PutRankHistory(dates).
			PutLegHistory(legs).
			PutIndividuals(in.individuals)
	case ModePreview:
		s.logStandings(ctx, rep, tf)
	}
	if mode != ModePreview {
		if err := batch.Commit(ctx); err != nil {
			metrics.RecordTick(string(mode), "error", msSince(start), now.Unix())
			s.logger.Error(ctx, "persisting tick failed", tf, logger.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		rep.Written = batch.Keys()
	}

	if mode == ModeRealtime && rep.News.Fired && s.notifier != nil {
		n := publish.Notification{RaceDay: rep.Day, UpdateTime: now, News: rep.News.News}
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Warn(ctx, "news delivery failed", tf, logger.Error(err))
		}
	}

	s.recordMetrics(rep)
	metrics.RecordTick(string(mode), "ok", msSince(start), now.Unix())
	s.logger.Info(ctx, "tick complete", tf,
		logger.String("mode", string(mode)),
		logger.Int("day", rep.Day),
		logger.Any("written", rep.Written),
		logger.Duration("elapsed", time.Since(start)),
	)
	return rep, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

// load reads every document. Only state corruption and backend failures abort.
func (s *Service) load(ctx context.Context, tf logger.Field) (*loaded, error) {
	in := &loaded{}

	states, err := s.repo.LoadStates(ctx)
	switch {
	case err == nil:
		in.states = states
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Info(ctx, "no stored race state, starting from the line", tf)
		in.states = map[int]model.RaceState{}
	case errors.Is(err, repository.ErrCorrupt):
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	individuals, err := s.repo.LoadIndividuals(ctx)
	switch {
	case err == nil:
		in.individuals = individuals
	case errors.Is(err, repository.ErrNotFound):
		in.individuals = model.Individuals{}
	case errors.Is(err, repository.ErrCorrupt):
		s.reinitialized(ctx, repository.KeyIndividuals, err, tf)
		in.individuals = model.Individuals{}
	default:
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	dates, err := s.repo.LoadRankHistory(ctx)
	switch {
	case err == nil:
		in.dates = dates
	case errors.Is(err, repository.ErrNotFound):
		in.dates = s.recorder.EmptyDates()
	case errors.Is(err, repository.ErrCorrupt):
		s.reinitialized(ctx, repository.KeyRankHistory, err, tf)
		in.dates = s.recorder.EmptyDates()
	default:
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	legs, err := s.repo.LoadLegHistory(ctx)
	switch {
	case err == nil:
		in.legs = legs
	case errors.Is(err, repository.ErrNotFound):
		in.legs = s.recorder.EmptyLegs()
	case errors.Is(err, repository.ErrCorrupt):
		s.reinitialized(ctx, repository.KeyLegHistory, err, tf)
		in.legs = s.recorder.EmptyLegs()
	default:
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	previous, err := s.repo.LoadSnapshot(ctx)
	switch {
	case err == nil:
		in.previous = previous
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Info(ctx, "no previous snapshot, comparison rules disabled", tf)
	case errors.Is(err, repository.ErrCorrupt):
		s.logger.Warn(ctx, "previous snapshot unreadable, comparison rules disabled", tf, logger.Error(err))
	default:
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	ledger, err := s.repo.LoadLedger(ctx)
	if err != nil {
		s.reinitialized(ctx, repository.KeyLedger, err, tf)
	}
	in.ledger = ledger

	return in, nil
}

func (s *Service) reinitialized(ctx context.Context, key string, err error, tf logger.Field) {
	metrics.RecordHistoryReinit(key)
	s.logger.Warn(ctx, "document unreadable, reinitializing", tf,
		logger.String("document", key),
		logger.Error(err),
	)
}

// baselines returns the start-of-day state of every roster team. Teams new to
// the roster start at the line; a new shadow team starts level with the leader.
func (s *Service) baselines(ctx context.Context, states map[int]model.RaceState, day int, tf logger.Field) map[int]model.RaceState {
	out := make(map[int]model.RaceState, s.race.Roster.Len())
	field := make([]model.RaceState, 0, s.race.Roster.Len())
	for _, t := range s.race.Roster.Competitive() {
		st, ok := states[t.ID]
		if ok {
			st = st.Baseline(day)
		} else {
			st = model.NewRaceState(t)
		}
		st.Name = t.Name
		out[t.ID] = st
		field = append(field, st)
	}
	if sh, ok := s.race.Roster.Shadow(); ok {
		st, found := states[sh.ID]
		if found {
			st = st.Baseline(day)
		} else {
			st = shadow.Seed(sh, field)
			s.logger.Info(ctx, "seeding shadow team at the leader", tf,
				logger.String("team", sh.Name),
				logger.Float64("distance", st.TotalDistance),
				logger.Int("leg", st.CurrentLeg),
			)
		}
		st.Name = sh.Name
		out[sh.ID] = st
	}
	return out
}

func (s *Service) readings(ctx context.Context, tf logger.Field) model.Readings {
	readings, err := s.source.Distances(ctx)
	if err != nil {
		s.logger.Warn(ctx, "distance feed unavailable, runners score zero", tf, logger.Error(err))
	}
	if readings == nil {
		readings = model.Readings{}
	}
	return readings
}

// advance runs the progression engine for every competitive team, then the
// shadow team against their results, and ranks the field.
func (s *Service) advance(ctx context.Context, base map[int]model.RaceState, readings model.Readings,
	individuals model.Individuals, day int, tf logger.Field,
) []*model.TeamResult {
	competitive := s.race.Roster.Competitive()
	results := make([]*model.TeamResult, 0, len(competitive)+1)
	for _, t := range competitive {
		st := base[t.ID]
		var reading model.Reading
		if r, ok := t.RunnerForLeg(st.CurrentLeg); ok {
			reading = readings[r.Name]
		}
		res := s.engine.Advance(progression.Input{Team: t, State: st, Reading: reading, Day: day}, individuals)
		if res.FeedError != "" {
			metrics.RecordFeedError()
			s.logger.Warn(ctx, "runner reading not usable", tf,
				logger.String("team", t.Name),
				logger.String("runner", res.Runner),
				logger.String("reason", res.FeedError),
			)
		}
		s.logger.Debug(ctx, "team advanced", tf,
			logger.String("team", t.Name),
			logger.Float64("today", res.TodayDistance),
			logger.Float64("total", res.TotalDistance),
			logger.Int("startLeg", res.StartLeg),
			logger.Int("newLeg", res.NewLeg),
			logger.Bool("frozen", res.Frozen),
		)
		results = append(results, &res)
	}

	if sh, ok := s.race.Roster.Shadow(); ok {
		res, status := s.shadow.Advance(sh, base[sh.ID], results)
		if len(res.CompletedLegs) > 0 {
			metrics.RecordShadowHandoff()
		}
		s.logger.Debug(ctx, "shadow advanced", tf,
			logger.String("team", sh.Name),
			logger.String("status", string(status)),
			logger.Float64("total", res.TotalDistance),
			logger.Int("newLeg", res.NewLeg),
		)
		results = append(results, &res)
	}

	return ranking.Apply(results)
}

// detect filters commentary through the ledger and runs the news catalogue.
// The item behind a fired comment headline is recorded in the ledger.
func (s *Service) detect(ctx context.Context, now time.Time, day int, standings []*model.TeamResult,
	previous *model.Snapshot, ledger dedupe.Deduper, tf logger.Field,
) news.Decision {
	items, err := s.source.Comments(ctx)
	if err != nil {
		s.logger.Warn(ctx, "commentary feed unreadable", tf, logger.Error(err))
	}
	fresh := make([]model.Comment, 0, len(items))
	for _, c := range items {
		if ledger.Seen(ctx, c.ID) {
			metrics.RecordCommentSkipped()
			continue
		}
		metrics.RecordCommentAccepted()
		fresh = append(fresh, c)
	}

	d := s.detector.Detect(&news.Context{
		Now:        now,
		RaceDay:    day,
		Standings:  standings,
		Previous:   previous,
		Comments:   fresh,
		Roster:     s.race.Roster,
		Boundaries: s.race.Boundaries,
	})
	if d.Fired && d.Source != "" {
		ledger.SeenAndRecord(ctx, d.Source)
	}

	switch {
	case d.Fired:
		s.logger.Info(ctx, "breaking news", tf,
			logger.String("rule", string(d.Rule)),
			logger.String("message", d.News.Message),
		)
	case d.Preserved:
		s.logger.Info(ctx, "keeping displayed news", tf, logger.String("message", d.News.Message))
	default:
		s.logger.Info(ctx, "no news", tf)
	}
	return d
}

// committed converts results into persisted states carrying the day's opening
// checkpoint, so a repeated commit of the same day starts from the same place.
func (s *Service) committed(standings []*model.TeamResult, base map[int]model.RaceState, day int) []model.RaceState {
	out := make([]model.RaceState, 0, len(standings))
	for _, r := range standings {
		st := r.State()
		st.CommittedDay = day
		st.Opening = base[r.TeamID].Checkpoint()
		out = append(out, st)
	}
	return out
}

func (s *Service) recordMetrics(rep *Report) {
	running, finished, legs := 0, 0, 0
	for _, r := range rep.Standings {
		if r.Shadow {
			continue
		}
		legs += len(r.CompletedLegs)
		if r.Finished() {
			finished++
		} else {
			running++
		}
	}
	metrics.UpdateTeams(running, finished)
	metrics.RecordLegsCompleted(legs)

	if rep.Mode == ModeCommit {
		return
	}
	switch {
	case rep.News.Fired:
		metrics.RecordNewsFired(string(rep.News.Rule))
	case rep.News.Preserved:
		metrics.RecordNewsPreserved()
	default:
		metrics.RecordNewsCleared()
	}
}

func (s *Service) logStandings(ctx context.Context, rep *Report, tf logger.Field) {
	for _, v := range rep.Snapshot.Teams {
		rank := "-"
		if v.OverallRank != nil {
			rank = fmt.Sprint(*v.OverallRank)
		}
		s.logger.Info(ctx, "standing", tf,
			logger.String("rank", rank),
			logger.String("team", v.Name),
			logger.String("runner", v.Runner),
			logger.Float64("today", v.TodayDistance),
			logger.Float64("total", v.TotalDistance),
			logger.String("next", v.NextRunner),
			logger.String("error", v.Error),
		)
	}
}
