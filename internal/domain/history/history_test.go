package history_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/ekiden/internal/domain/history"
	"github.com/okian/ekiden/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func teams() []*model.Team {
	return []*model.Team{{ID: 1, Name: "North"}, {ID: 2, Name: "South"}}
}

func ranked(id, startLeg, newLeg, rank int, total float64) *model.TeamResult {
	return &model.TeamResult{TeamID: id, StartLeg: startLeg, NewLeg: newLeg, OverallRank: model.IntPtr(rank), TotalDistance: total}
}

func TestRecordDate(t *testing.T) {
	Convey("Given an empty rank history", t, func() {
		rec := history.New(teams(), 3)
		h := rec.RecordDate(nil, "2025-07-23", []*model.TeamResult{ranked(1, 1, 1, 2, 30), ranked(2, 1, 1, 1, 35)})

		Convey("Then the date is appended with both teams", func() {
			So(h.Dates, ShouldResemble, []string{"2025-07-23"})
			So(*h.Teams[0].Ranks[0], ShouldEqual, 2)
			So(*h.Teams[1].Distances[0], ShouldEqual, 35)
		})

		Convey("When the same date is recorded again", func() {
			h = rec.RecordDate(h, "2025-07-23", []*model.TeamResult{ranked(1, 1, 1, 1, 40), ranked(2, 1, 1, 2, 36)})

			Convey("Then the slot is overwritten and not duplicated", func() {
				So(h.Dates, ShouldHaveLength, 1)
				So(h.Teams[0].Ranks, ShouldHaveLength, 1)
				So(*h.Teams[0].Ranks[0], ShouldEqual, 1)
				So(*h.Teams[0].Distances[0], ShouldEqual, 40)
			})
		})

		Convey("When a new date is recorded", func() {
			h = rec.RecordDate(h, "2025-07-24", []*model.TeamResult{ranked(1, 1, 1, 1, 70)})

			Convey("Then every series grows by one slot", func() {
				So(h.Dates, ShouldHaveLength, 2)
				So(h.Teams[1].Ranks, ShouldHaveLength, 2)
				So(h.Teams[1].Ranks[1], ShouldBeNil)
			})
		})
	})

	Convey("Given a history missing a roster team", t, func() {
		h := &model.RankHistory{
			Dates: []string{"2025-07-23"},
			Teams: []model.TeamRankSeries{{ID: 1, Name: "North", Ranks: []*int{model.IntPtr(1)}, Distances: []*float64{model.FloatPtr(30)}}},
		}
		h = history.New(teams(), 3).RecordDate(h, "2025-07-24", nil)

		So(h.Teams, ShouldHaveLength, 2)
		So(h.Teams[1].Ranks, ShouldHaveLength, 2)
		So(h.Teams[1].Ranks[0], ShouldBeNil)
	})
}

func TestRecordLegs(t *testing.T) {
	Convey("Given a team crossing two legs in one day", t, func() {
		rec := history.New(teams(), 3)

		Convey("When realtime records it", func() {
			h := rec.RecordLegs(nil, []*model.TeamResult{ranked(1, 1, 3, 4, 215)}, history.Realtime)

			Convey("Then both slots get the rank but are not final", func() {
				So(*h.Teams[0].LegRanks[0], ShouldEqual, 4)
				So(*h.Teams[0].LegRanks[1], ShouldEqual, 4)
				So(h.Teams[0].LegRanks[2], ShouldBeNil)
				So(h.Teams[0].Final, ShouldResemble, []bool{false, false, false})
			})
		})

		Convey("When commit records it and realtime runs afterwards", func() {
			h := rec.RecordLegs(nil, []*model.TeamResult{ranked(1, 1, 3, 4, 215)}, history.Commit)
			h = rec.RecordLegs(h, []*model.TeamResult{ranked(1, 1, 3, 7, 215)}, history.Realtime)

			Convey("Then final slots keep the committed rank", func() {
				So(*h.Teams[0].LegRanks[0], ShouldEqual, 4)
				So(*h.Teams[0].LegRanks[1], ShouldEqual, 4)
				So(h.Teams[0].Final[:2], ShouldResemble, []bool{true, true})
			})
		})

		Convey("When commit runs twice", func() {
			first := rec.RecordLegs(nil, []*model.TeamResult{ranked(1, 1, 3, 4, 215)}, history.Commit)
			a, _ := json.Marshal(first)
			second := rec.RecordLegs(first, []*model.TeamResult{ranked(1, 1, 3, 4, 215)}, history.Commit)
			b, _ := json.Marshal(second)

			Convey("Then the series is byte-identical", func() {
				So(string(b), ShouldEqual, string(a))
			})
		})
	})
}
