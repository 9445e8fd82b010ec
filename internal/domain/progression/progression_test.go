package progression_test

import (
	"math"
	"testing"

	"github.com/okian/ekiden/internal/domain/course"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/internal/domain/progression"
	. "github.com/smartystreets/goconvey/convey"
)

func team() *model.Team {
	return &model.Team{
		ID:   1,
		Name: "Team A",
		Runners: []model.Runner{
			{Name: "Kushiro", Leg: 1},
			{Name: "Obihiro", Leg: 2},
		},
	}
}

func TestAdvance(t *testing.T) {
	Convey("Given boundaries [100, 210]", t, func() {
		b, _ := course.New([]float64{100, 210})
		e := progression.New(b)
		ind := model.Individuals{}

		Convey("When team A at 95 on leg 1 receives 8", func() {
			res := e.Advance(progression.Input{
				Team:    team(),
				State:   model.RaceState{TeamID: 1, TotalDistance: 95, CurrentLeg: 1, OverallRank: model.IntPtr(3)},
				Reading: model.Available(8),
				Day:     4,
			}, ind)

			Convey("Then it moves to leg 2 and reports leg 1 completed", func() {
				So(res.TotalDistance, ShouldEqual, 103)
				So(res.NewLeg, ShouldEqual, 2)
				So(res.StartLeg, ShouldEqual, 1)
				So(res.CompletedLegs, ShouldResemble, []int{1})
				So(res.Runner, ShouldEqual, "Kushiro")
				So(res.FinishDay, ShouldBeNil)
				So(*res.PreviousRank, ShouldEqual, 3)
			})

			Convey("Then the active runner's leg summary is final", func() {
				rec := ind["Kushiro"]
				So(rec, ShouldNotBeNil)
				So(rec.Records, ShouldHaveLength, 1)
				So(rec.LegSummaries[1].Status, ShouldEqual, model.LegFinal)
				So(*rec.LegSummaries[1].FinalDay, ShouldEqual, 4)
			})
		})

		Convey("When one day crosses both boundaries", func() {
			res := e.Advance(progression.Input{
				Team:    team(),
				State:   model.RaceState{TeamID: 1, TotalDistance: 99, CurrentLeg: 1},
				Reading: model.Available(120),
				Day:     6,
			}, ind)

			Convey("Then both legs are completed in order and the finish day is set", func() {
				So(res.CompletedLegs, ShouldResemble, []int{1, 2})
				So(res.NewLeg, ShouldEqual, 3)
				So(*res.FinishDay, ShouldEqual, 6)
			})
		})

		Convey("When the reading is unavailable", func() {
			res := e.Advance(progression.Input{
				Team:    team(),
				State:   model.RaceState{TeamID: 1, TotalDistance: 50, CurrentLeg: 1},
				Reading: model.Unavailable("station offline"),
				Day:     2,
			}, ind)

			Convey("Then the team contributes zero and carries the reason", func() {
				So(res.TodayDistance, ShouldEqual, 0)
				So(res.TotalDistance, ShouldEqual, 50)
				So(res.FeedError, ShouldEqual, "station offline")
				So(ind, ShouldBeEmpty)
			})
		})

		Convey("When the reading is negative or not finite", func() {
			neg := e.Advance(progression.Input{Team: team(), State: model.RaceState{CurrentLeg: 1, TotalDistance: 10}, Reading: model.Available(-3), Day: 1}, ind)
			nan := e.Advance(progression.Input{Team: team(), State: model.RaceState{CurrentLeg: 1, TotalDistance: 10}, Reading: model.Available(math.NaN()), Day: 1}, ind)

			So(neg.TotalDistance, ShouldEqual, 10)
			So(neg.FeedError, ShouldEqual, progression.ReasonNegative)
			So(nan.TotalDistance, ShouldEqual, 10)
			So(nan.FeedError, ShouldEqual, progression.ReasonMalformed)
		})

		Convey("When the team finished on an earlier day", func() {
			res := e.Advance(progression.Input{
				Team:    team(),
				State:   model.RaceState{TeamID: 1, TotalDistance: 215, CurrentLeg: 3, FinishDay: model.IntPtr(5)},
				Reading: model.Available(30),
				Day:     7,
			}, ind)

			Convey("Then everything is frozen", func() {
				So(res.Frozen, ShouldBeTrue)
				So(res.TotalDistance, ShouldEqual, 215)
				So(res.TodayDistance, ShouldEqual, 0)
				So(*res.FinishDay, ShouldEqual, 5)
				So(res.Runner, ShouldEqual, "")
			})
		})

		Convey("When the same day is advanced twice from the same baseline", func() {
			in := progression.Input{
				Team:    team(),
				State:   model.RaceState{TeamID: 1, TotalDistance: 40, CurrentLeg: 1},
				Reading: model.Available(33.3),
				Day:     3,
			}
			first := e.Advance(in, ind)
			second := e.Advance(in, ind)

			Convey("Then the result and the day entry are unchanged", func() {
				So(second, ShouldResemble, first)
				So(ind["Kushiro"].Records, ShouldHaveLength, 1)
				So(ind["Kushiro"].TotalDistance, ShouldEqual, 33.3)
			})
		})
	})
}

func TestMonotonicProgress(t *testing.T) {
	Convey("Given a sequence of daily readings", t, func() {
		b, _ := course.New([]float64{100, 210})
		e := progression.New(b)
		state := model.RaceState{TeamID: 1, CurrentLeg: 1}
		readings := []model.Reading{
			model.Available(35), model.Unavailable(""), model.Available(-5),
			model.Available(38.2), model.Available(41), model.Available(45), model.Available(60),
		}

		Convey("Then distance and leg never decrease and the finish day never moves", func() {
			var finish *int
			for day, r := range readings {
				res := e.Advance(progression.Input{Team: team(), State: state, Reading: r, Day: day + 1}, nil)
				So(res.TotalDistance, ShouldBeGreaterThanOrEqualTo, state.TotalDistance)
				So(res.NewLeg, ShouldBeGreaterThanOrEqualTo, state.CurrentLeg)
				if finish != nil {
					So(*res.FinishDay, ShouldEqual, *finish)
				}
				finish = res.FinishDay
				state = res.State()
			}
			So(finish, ShouldNotBeNil)
			So(*finish, ShouldEqual, 7)
		})
	})
}
