package skill_test

import (
	"testing"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/skill"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHeuristicRater_Rate(t *testing.T) {
	Convey("Given a rater with default weights", t, func() {
		r := skill.NewHeuristicRater()

		Convey("When rating an official goalkeeper", func() {
			got := r.Rate(model.Member{Position: model.Goalkeeper, MembershipType: model.MembershipOfficial})
			Convey("Then both bonuses apply", func() {
				So(got, ShouldEqual, 3.8)
			})
		})

		Convey("When rating a trial forward", func() {
			got := r.Rate(model.Member{Position: model.Forward, MembershipType: model.MembershipTrial})
			Convey("Then the membership penalty applies", func() {
				So(got, ShouldEqual, 2.5)
			})
		})

		Convey("When rating a trial goalkeeper", func() {
			got := r.Rate(model.Member{Position: model.Goalkeeper, MembershipType: model.MembershipTrial})
			Convey("Then the result is rounded to one decimal", func() {
				So(got, ShouldEqual, 2.8)
			})
		})

		Convey("When the membership type is unset", func() {
			got := r.Rate(model.Member{Position: model.Midfielder})
			Convey("Then only the base applies", func() {
				So(got, ShouldEqual, 3.0)
			})
		})
	})

	Convey("Given a rater with large weights", t, func() {
		r := skill.NewHeuristicRater(
			skill.WithBase(4.5),
			skill.WithMembershipBonus(2),
			skill.WithGoalkeeperBonus(1),
		)

		Convey("Then scores are clamped to the skill range", func() {
			So(r.Rate(model.Member{Position: model.Goalkeeper, MembershipType: model.MembershipOfficial}), ShouldEqual, skill.MaxSkill)
			So(skill.NewHeuristicRater(skill.WithBase(1), skill.WithMembershipBonus(2)).
				Rate(model.Member{Position: model.Forward, MembershipType: model.MembershipTrial}), ShouldEqual, skill.MinSkill)
		})
	})

	Convey("Given invalid option values", t, func() {
		r := skill.NewHeuristicRater(skill.WithBase(9), skill.WithMembershipBonus(-1), skill.WithGoalkeeperBonus(-1))

		Convey("Then the defaults are kept", func() {
			So(r.Rate(model.Member{Position: model.Goalkeeper, MembershipType: model.MembershipOfficial}), ShouldEqual, 3.8)
		})
	})
}

func TestParticipant(t *testing.T) {
	Convey("Given a registered member", t, func() {
		m := model.Member{ID: "m1", FullName: "Ada Keeper", Position: model.Goalkeeper, MembershipType: model.MembershipOfficial}

		Convey("When resolving it into a participant", func() {
			p := skill.Participant(skill.NewHeuristicRater(), m)

			Convey("Then identity, position and skill are carried over", func() {
				So(p, ShouldResemble, model.Participant{ID: "m1", Name: "Ada Keeper", Skill: 3.8, Position: model.Goalkeeper})
			})
		})
	})
}
