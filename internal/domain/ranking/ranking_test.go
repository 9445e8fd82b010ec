package ranking_test

import (
	"testing"

	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func result(id int, today, total float64) *model.TeamResult {
	return &model.TeamResult{TeamID: id, Name: "team", TodayDistance: today, TotalDistance: total}
}

func ids(rs []*model.TeamResult) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.TeamID
	}
	return out
}

func TestDaily(t *testing.T) {
	Convey("Given today's distances with a tie", t, func() {
		a, b, c, d := result(1, 35, 0), result(2, 38, 0), result(3, 35, 0), result(4, 30, 0)
		ranking.Daily([]*model.TeamResult{a, b, c, d})

		Convey("Then ties share a rank and the next rank skips", func() {
			So(*b.TodayRank, ShouldEqual, 1)
			So(*a.TodayRank, ShouldEqual, 2)
			So(*c.TodayRank, ShouldEqual, 2)
			So(*d.TodayRank, ShouldEqual, 4)
		})
	})
}

func TestOverall(t *testing.T) {
	Convey("Given finished and running teams", t, func() {
		early := result(1, 0, 212)
		early.FinishDay = model.IntPtr(5)
		late := result(2, 30, 230)
		late.FinishDay = model.IntPtr(6)
		lateTwin := result(3, 30, 230)
		lateTwin.FinishDay = model.IntPtr(6)
		runner := result(4, 40, 209.9)
		far := result(5, 40, 209.9)
		shadow := &model.TeamResult{TeamID: 0, Shadow: true, TotalDistance: 300, TodayRank: model.IntPtr(1)}

		order := ranking.Apply([]*model.TeamResult{runner, shadow, late, far, early, lateTwin})

		Convey("Then finished teams come first by finish day then distance", func() {
			So(ids(order), ShouldResemble, []int{1, 2, 3, 4, 5, 0})
			So(*early.OverallRank, ShouldEqual, 1)
			So(*late.OverallRank, ShouldEqual, 2)
			So(*lateTwin.OverallRank, ShouldEqual, 2)
		})

		Convey("Then running teams with equal distance tie after the finished block", func() {
			So(*runner.OverallRank, ShouldEqual, 4)
			So(*far.OverallRank, ShouldEqual, 4)
		})

		Convey("Then every finished team ranks ahead of every running team", func() {
			for _, f := range []*model.TeamResult{early, late, lateTwin} {
				for _, r := range []*model.TeamResult{runner, far} {
					So(*f.OverallRank, ShouldBeLessThan, *r.OverallRank)
				}
			}
		})

		Convey("Then the shadow team has no ranks and is listed last", func() {
			So(shadow.OverallRank, ShouldBeNil)
			So(shadow.TodayRank, ShouldBeNil)
			So(order[len(order)-1], ShouldEqual, shadow)
		})
	})

	Convey("Given a finished team with less distance than a running team", t, func() {
		done := result(1, 0, 210)
		done.FinishDay = model.IntPtr(9)
		ahead := result(2, 0, 209.5)
		ranking.Overall([]*model.TeamResult{ahead, done})

		So(*done.OverallRank, ShouldEqual, 1)
		So(*ahead.OverallRank, ShouldEqual, 2)
	})
}

func TestLegs(t *testing.T) {
	Convey("Given runners with leg summaries", t, func() {
		in := model.Individuals{}
		in.Record("A", 1).Upsert(1, 1, 35)
		in.Record("B", 2).Upsert(1, 1, 35)
		in.Record("C", 3).Upsert(1, 1, 36)
		in.Record("D", 4).Upsert(1, 2, 20)

		ranking.Legs(in)

		Convey("Then each leg is ranked independently with shared ties", func() {
			So(*in["C"].LegSummaries[1].Rank, ShouldEqual, 1)
			So(*in["A"].LegSummaries[1].Rank, ShouldEqual, 2)
			So(*in["B"].LegSummaries[1].Rank, ShouldEqual, 2)
			So(*in["D"].LegSummaries[2].Rank, ShouldEqual, 1)
		})
	})
}
