package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ekiden/internal/domain/model"
)

func newFileRepo(t *testing.T) (*Repository, *FileBackend) {
	t.Helper()
	b, err := NewFileBackend(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	return New(b), b
}

func TestFileRepository(t *testing.T) {
	Convey("Given an empty file repository", t, func() {
		ctx := context.Background()
		repo, backend := newFileRepo(t)

		Convey("When loading documents that were never written", func() {
			_, stateErr := repo.LoadStates(ctx)
			_, histErr := repo.LoadRankHistory(ctx)
			snap, snapErr := repo.LoadSnapshot(ctx)
			ids, ledgerErr := repo.LoadLedger(ctx)

			Convey("Then they should be reported as not found", func() {
				So(errors.Is(stateErr, ErrNotFound), ShouldBeTrue)
				So(errors.Is(histErr, ErrNotFound), ShouldBeTrue)
				So(errors.Is(snapErr, ErrNotFound), ShouldBeTrue)
				So(snap, ShouldBeNil)
				So(ledgerErr, ShouldBeNil)
				So(ids, ShouldBeEmpty)
			})
		})

		Convey("When a batch is committed", func() {
			states := []model.RaceState{
				{TeamID: 2, Name: "South", TotalDistance: 20, CurrentLeg: 1, OverallRank: model.IntPtr(2)},
				{TeamID: 1, Name: "North", TotalDistance: 35.2, CurrentLeg: 2, OverallRank: model.IntPtr(1)},
			}
			in := model.Individuals{}
			in.Record("Aoki", 1).Upsert(1, 1, 35.2)
			hist := &model.RankHistory{
				Dates: []string{"2026-01-05"},
				Teams: []model.TeamRankSeries{{ID: 1, Name: "North", Ranks: []*int{model.IntPtr(1)}, Distances: []*float64{model.FloatPtr(35.2)}}},
			}
			err := repo.Begin().
				PutStates(states).
				PutIndividuals(in).
				PutRankHistory(hist).
				PutLedger([]string{"c-1"}).
				Commit(ctx)

			Convey("Then every document should round-trip", func() {
				So(err, ShouldBeNil)

				got, err := repo.LoadStates(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 2)
				So(got[1].TotalDistance, ShouldEqual, 35.2)
				So(*got[2].OverallRank, ShouldEqual, 2)

				gotIn, err := repo.LoadIndividuals(ctx)
				So(err, ShouldBeNil)
				So(gotIn["Aoki"].TotalDistance, ShouldEqual, 35.2)

				gotHist, err := repo.LoadRankHistory(ctx)
				So(err, ShouldBeNil)
				So(gotHist.Dates, ShouldResemble, []string{"2026-01-05"})

				ids, err := repo.LoadLedger(ctx)
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{"c-1"})
			})

			Convey("Then states should be stored ordered by team id", func() {
				data, err := os.ReadFile(backend.Path(KeyState))
				So(err, ShouldBeNil)
				So(string(data), ShouldStartWith, "[\n  {\n    \"id\": 1,")
			})

			Convey("Then no temporary files should remain", func() {
				matches, _ := filepath.Glob(filepath.Join(backend.dir, "*.tmp"))
				So(matches, ShouldBeEmpty)
			})

			Convey("Then committing the same batch again should give identical bytes", func() {
				before, _ := os.ReadFile(backend.Path(KeyIndividuals))
				So(repo.Begin().PutIndividuals(in).Commit(ctx), ShouldBeNil)
				after, _ := os.ReadFile(backend.Path(KeyIndividuals))
				So(string(after), ShouldEqual, string(before))
			})
		})

		Convey("When a document holds invalid JSON", func() {
			So(os.WriteFile(backend.Path(KeyLegHistory), []byte("{not json"), 0o644), ShouldBeNil)
			So(os.WriteFile(backend.Path(KeyState), []byte("[{\"id\":1},{\"id\":1}]"), 0o644), ShouldBeNil)

			_, legErr := repo.LoadLegHistory(ctx)
			_, stateErr := repo.LoadStates(ctx)

			Convey("Then it should be reported as corrupt", func() {
				So(errors.Is(legErr, ErrCorrupt), ShouldBeTrue)
				So(errors.Is(stateErr, ErrCorrupt), ShouldBeTrue)
			})
		})

		Convey("When a document holds null", func() {
			So(os.WriteFile(backend.Path(KeyRankHistory), []byte("null"), 0o644), ShouldBeNil)

			_, err := repo.LoadRankHistory(ctx)

			Convey("Then it should be reported as corrupt", func() {
				So(errors.Is(err, ErrCorrupt), ShouldBeTrue)
			})
		})

		Convey("When the backend is closed", func() {
			So(repo.Close(), ShouldBeNil)

			Convey("Then loads and saves should fail", func() {
				_, err := backend.Load(ctx, KeyState)
				So(errors.Is(err, ErrClosed), ShouldBeTrue)
				So(errors.Is(repo.Begin().PutLedger(nil).Commit(ctx), ErrClosed), ShouldBeTrue)
			})
		})
	})
}

func TestFileBackendOptions(t *testing.T) {
	Convey("Given custom file options", t, func() {
		dir := filepath.Join(t.TempDir(), "nested", "data")
		b, err := NewFileBackend(dir, WithExtension(".state"), WithFileMode(0o600), WithDirMode(0o700))

		Convey("Then the directory and file names should follow them", func() {
			So(err, ShouldBeNil)
			So(b.Path("x"), ShouldEqual, filepath.Join(dir, "x.state"))
			So(b.SaveBatch(context.Background(), map[string][]byte{"x": []byte("1")}), ShouldBeNil)
			info, err := os.Stat(b.Path("x"))
			So(err, ShouldBeNil)
			So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o600))
		})
	})
}

func TestMsSince(t *testing.T) {
	Convey("Given a start a fraction of a millisecond ago", t, func() {
		start := time.Now().Add(-500 * time.Microsecond)

		Convey("Then the elapsed time should keep its sub-millisecond part", func() {
			ms := msSince(start)
			So(ms, ShouldBeGreaterThanOrEqualTo, 0.5)
		})
	})
}
