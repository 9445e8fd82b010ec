package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/okian/ekiden/internal/domain/model"
)

// Ledger is the persisted list of processed commentary ids, oldest first.
type Ledger struct {
	IDs []string `json:"ids"`
}

// Repository reads and writes the typed engine documents.
// Missing documents surface as ErrNotFound and undecodable ones as ErrCorrupt;
// the caller decides which of them are fatal.
type Repository struct {
	backend Backend
}

// New wraps a backend.
func New(backend Backend) *Repository {
	return &Repository{backend: backend}
}

// Backend returns the underlying backend.
func (r *Repository) Backend() Backend { return r.backend }

// Close closes the backend.
func (r *Repository) Close() error { return r.backend.Close() }

func load[T any](ctx context.Context, b Backend, key string) (T, error) {
	var v T
	data, err := b.Load(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return v, nil
}

// LoadStates returns the race state keyed by team id.
func (r *Repository) LoadStates(ctx context.Context) (map[int]model.RaceState, error) {
	list, err := load[[]model.RaceState](ctx, r.backend, KeyState)
	if err != nil {
		return nil, err
	}
	out := make(map[int]model.RaceState, len(list))
	for _, s := range list {
		if _, dup := out[s.TeamID]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate team %d", ErrCorrupt, KeyState, s.TeamID)
		}
		out[s.TeamID] = s
	}
	return out, nil
}

// LoadIndividuals returns the per-runner records.
func (r *Repository) LoadIndividuals(ctx context.Context) (model.Individuals, error) {
	in, err := load[model.Individuals](ctx, r.backend, KeyIndividuals)
	if err != nil {
		return nil, err
	}
	if in == nil {
		in = model.Individuals{}
	}
	return in, nil
}

// LoadRankHistory returns the per-date series.
func (r *Repository) LoadRankHistory(ctx context.Context) (*model.RankHistory, error) {
	h, err := load[*model.RankHistory](ctx, r.backend, KeyRankHistory)
	if err == nil && h == nil {
		err = fmt.Errorf("%w: %s: null document", ErrCorrupt, KeyRankHistory)
	}
	return h, err
}

// LoadLegHistory returns the per-leg series.
func (r *Repository) LoadLegHistory(ctx context.Context) (*model.LegRankHistory, error) {
	h, err := load[*model.LegRankHistory](ctx, r.backend, KeyLegHistory)
	if err == nil && h == nil {
		err = fmt.Errorf("%w: %s: null document", ErrCorrupt, KeyLegHistory)
	}
	return h, err
}

// LoadSnapshot returns the last published snapshot.
func (r *Repository) LoadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	s, err := load[*model.Snapshot](ctx, r.backend, KeySnapshot)
	if err == nil && s == nil {
		err = ErrNotFound
	}
	return s, err
}

// LoadLedger returns the processed commentary ids. A missing ledger is empty.
func (r *Repository) LoadLedger(ctx context.Context) ([]string, error) {
	l, err := load[Ledger](ctx, r.backend, KeyLedger)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return l.IDs, err
}

// Batch collects encoded documents for one SaveBatch call.
type Batch struct {
	repo *Repository
	docs map[string][]byte
	err  error
}

// Begin starts a write batch.
func (r *Repository) Begin() *Batch {
	return &Batch{repo: r, docs: make(map[string][]byte)}
}

func (b *Batch) put(key string, v any) *Batch {
	if b.err != nil {
		return b
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		b.err = fmt.Errorf("encode %s: %w", key, err)
		return b
	}
	b.docs[key] = append(data, '\n')
	return b
}

// PutStates stores states ordered by team id.
func (b *Batch) PutStates(states []model.RaceState) *Batch {
	list := append([]model.RaceState(nil), states...)
	sort.Slice(list, func(i, j int) bool { return list[i].TeamID < list[j].TeamID })
	return b.put(KeyState, list)
}

// PutIndividuals stores the per-runner records.
func (b *Batch) PutIndividuals(in model.Individuals) *Batch {
	return b.put(KeyIndividuals, in)
}

// PutRankHistory stores the per-date series.
func (b *Batch) PutRankHistory(h *model.RankHistory) *Batch {
	return b.put(KeyRankHistory, h)
}

// PutLegHistory stores the per-leg series.
func (b *Batch) PutLegHistory(h *model.LegRankHistory) *Batch {
	return b.put(KeyLegHistory, h)
}

// PutSnapshot stores the public snapshot.
func (b *Batch) PutSnapshot(s *model.Snapshot) *Batch {
	return b.put(KeySnapshot, s)
}

// PutLedger stores the processed commentary ids.
func (b *Batch) PutLedger(ids []string) *Batch {
	if ids == nil {
		ids = []string{}
	}
	return b.put(KeyLedger, Ledger{IDs: ids})
}

// Keys returns the staged keys in order.
func (b *Batch) Keys() []string {
	keys := make([]string, 0, len(b.docs))
	for k := range b.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Commit writes every staged document.
func (b *Batch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.docs) == 0 {
		return nil
	}
	return b.repo.backend.SaveBatch(ctx, b.docs)
}
