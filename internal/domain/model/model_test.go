package model_test

import (
	"testing"

	model "github.com/okian/ekiden/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestIndividualRecord(t *testing.T) {
	convey.Convey("Given an individual record", t, func() {
		in := model.Individuals{}
		rec := in.Record("Sapporo", 1)

		convey.Convey("When the same day is upserted twice", func() {
			rec.Upsert(3, 1, 30.1)
			rec.Upsert(3, 1, 31.4)

			convey.Convey("Then only one entry exists with the latest value", func() {
				convey.So(rec.Records, convey.ShouldHaveLength, 1)
				convey.So(rec.Records[0].Distance, convey.ShouldEqual, 31.4)
				convey.So(rec.TotalDistance, convey.ShouldEqual, 31.4)
			})
		})

		convey.Convey("When several days are recorded on one leg", func() {
			rec.Upsert(1, 2, 30.0)
			rec.Upsert(2, 2, 31.0)
			rec.Upsert(3, 2, 31.5)

			convey.Convey("Then the summary is recomputed with a 3 decimal average", func() {
				s := rec.LegSummaries[2]
				convey.So(s, convey.ShouldNotBeNil)
				convey.So(s.Days, convey.ShouldEqual, 3)
				convey.So(s.TotalDistance, convey.ShouldEqual, 92.5)
				convey.So(s.AverageDistance, convey.ShouldEqual, 30.833)
				convey.So(s.Status, convey.ShouldEqual, model.LegProvisional)
				convey.So(s.LastUpdatedDay, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When a leg is marked final", func() {
			rec.Upsert(1, 1, 30.0)
			rec.MarkFinal(1, 4)
			rec.Upsert(1, 1, 29.0)
			rec.MarkFinal(1, 5)

			convey.Convey("Then it stays final with its first final day", func() {
				s := rec.LegSummaries[1]
				convey.So(s.Status, convey.ShouldEqual, model.LegFinal)
				convey.So(*s.FinalDay, convey.ShouldEqual, 4)
			})
		})
	})
}

func TestRaceStateBaseline(t *testing.T) {
	convey.Convey("Given a state committed on day 5", t, func() {
		s := model.RaceState{
			TeamID:        1,
			TotalDistance: 140,
			CurrentLeg:    2,
			CommittedDay:  5,
			Opening:       &model.Checkpoint{TotalDistance: 108, CurrentLeg: 2},
		}

		convey.Convey("Then day 5 starts from the opening checkpoint", func() {
			b := s.Baseline(5)
			convey.So(b.TotalDistance, convey.ShouldEqual, 108)
			convey.So(b.CurrentLeg, convey.ShouldEqual, 2)
		})

		convey.Convey("Then day 6 starts from the committed position", func() {
			b := s.Baseline(6)
			convey.So(b.TotalDistance, convey.ShouldEqual, 140)
		})
	})
}

func TestRoster(t *testing.T) {
	convey.Convey("Given a roster with a shadow team", t, func() {
		r := model.NewRoster([]model.Team{
			{ID: 1, Name: "North", Manager: "Aoki◆abc"},
			{ID: 2, Name: "South"},
			{ID: 99, Name: "Legends", Shadow: true},
		})

		convey.So(r.Competitive(), convey.ShouldHaveLength, 2)
		sh, ok := r.Shadow()
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(sh.ID, convey.ShouldEqual, 99)

		team, ok := r.ManagerTeam("Aoki◆abc")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(team.ID, convey.ShouldEqual, 1)

		_, ok = r.ManagerTeam("")
		convey.So(ok, convey.ShouldBeFalse)
	})
}
