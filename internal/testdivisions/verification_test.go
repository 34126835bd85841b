package testdivisions

import (
	"errors"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/types"
)

func participant(id string, pos model.Position, skill float64) model.Participant {
	return model.Participant{ID: id, Name: id, Position: pos, Skill: skill}
}

func team(name string, ps ...model.Participant) types.Team {
	t := types.Team{Name: name, Participants: ps, PositionStats: make([]types.PositionStat, model.PositionCount)}
	for _, p := range ps {
		t.TotalScore += p.Skill
	}
	return t
}

func validResult() *types.Result {
	return &types.Result{
		Strategy: model.StrategySkillBalanced,
		Teams: []types.Team{
			team("Team 1", participant("a", model.Goalkeeper, 3.8), participant("d", model.Forward, 2.5)),
			team("Team 2", participant("b", model.Defender, 3.5), participant("c", model.Midfielder, 2.8)),
		},
		Summary: types.Summary{TotalParticipants: 4},
	}
}

func TestVerifyDivision(t *testing.T) {
	Convey("Given a skill balanced division of four", t, func() {
		c := Case{Strategy: model.StrategySkillBalanced, Teams: 2}
		ids := []string{"a", "b", "c", "d"}
		res := validResult()

		Convey("A complete partition passes", func() {
			So(verifyDivision(c, ids, res), ShouldBeEmpty)
		})

		Convey("A nil result is reported", func() {
			So(verifyDivision(c, ids, nil), ShouldResemble, []string{"empty result"})
		})

		Convey("A missing participant is reported", func() {
			res.Teams[1].Participants = res.Teams[1].Participants[:1]
			res.Teams[1].TotalScore = 3.5
			So(verifyDivision(c, ids, res), ShouldContain, "participant c assigned 0 times")
		})

		Convey("A participant in two teams is reported", func() {
			res.Teams[1].Participants[1] = participant("a", model.Goalkeeper, 3.8)
			res.Teams[1].TotalScore = 7.3
			problems := verifyDivision(c, ids, res)
			So(problems, ShouldContain, "participant a assigned 2 times")
			So(problems, ShouldContain, "participant c assigned 0 times")
		})

		Convey("An unrequested participant is reported", func() {
			So(verifyDivision(c, []string{"a", "b", "c"}, res), ShouldContain, "Team 1 holds unrequested participant d")
		})

		Convey("A wrong team total is reported", func() {
			res.Teams[0].TotalScore = 9
			So(len(verifyDivision(c, ids, res)), ShouldEqual, 1)
		})

		Convey("Uneven sizes are reported", func() {
			moved := res.Teams[1].Participants[1]
			res.Teams[1] = team("Team 2", res.Teams[1].Participants[0])
			res.Teams[0] = team("Team 1", append(res.Teams[0].Participants, moved)...)
			// 3 vs 1 participants
			So(verifyDivision(c, ids, res), ShouldContain, "team sizes range 1..3")
		})

		Convey("A misnamed team is reported", func() {
			res.Teams[1].Name = "Blue"
			So(verifyDivision(c, ids, res), ShouldContain, `team 1 named "Blue", want "Team 2"`)
		})

		Convey("A balancing report outside BALANCED is reported", func() {
			res.Balancing = &types.BalanceReport{}
			So(len(verifyDivision(c, ids, res)), ShouldEqual, 1)
		})
	})

	Convey("Given a position balanced division", t, func() {
		c := Case{Strategy: model.StrategyPositionBalanced, Teams: 2}
		ids := []string{"g1", "g2", "g3"}
		res := &types.Result{
			Strategy: model.StrategyPositionBalanced,
			Teams: []types.Team{
				team("Team 1", participant("g1", model.Goalkeeper, 3.3), participant("g2", model.Goalkeeper, 3.3)),
				team("Team 2", participant("g3", model.Goalkeeper, 3.3)),
			},
			Summary: types.Summary{TotalParticipants: 3},
		}

		Convey("Per position spread of one passes", func() {
			So(verifyDivision(c, ids, res), ShouldBeEmpty)
		})

		Convey("A skewed position is reported", func() {
			res.Teams[0] = team("Team 1", participant("g1", model.Goalkeeper, 3.3), participant("g2", model.Goalkeeper, 3.3), participant("g3", model.Goalkeeper, 3.3))
			res.Teams[1] = team("Team 2")
			So(verifyDivision(c, ids, res), ShouldContain, "GOALKEEPER counts range 0..3 across teams")
		})
	})
}

func TestSpreads(t *testing.T) {
	Convey("Spreads over teams", t, func() {
		teams := validResult().Teams

		lo, hi := sizeSpread(teams)
		So(lo, ShouldEqual, 2)
		So(hi, ShouldEqual, 2)
		So(scoreSpread(teams), ShouldAlmostEqual, 0.0, 1e-9)

		lo, hi = positionSpread(teams, model.Goalkeeper)
		So(lo, ShouldEqual, 0)
		So(hi, ShouldEqual, 1)

		lo, hi = sizeSpread(nil)
		So(lo+hi, ShouldEqual, 0)
		So(scoreSpread(nil), ShouldEqual, 0)
	})
}

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		stats := &Stats{}

		Convey("The same seed yields the same roster", func() {
			a := generateRoster(t.Context(), rand.New(rand.NewSource(7)), 30, stats)
			b := generateRoster(t.Context(), rand.New(rand.NewSource(7)), 30, stats)
			So(a, ShouldResemble, b)
			So(stats.MembersGenerated, ShouldEqual, 30)
		})

		Convey("Every member has a parseable position and membership", func() {
			for _, m := range generateRoster(t.Context(), rand.New(rand.NewSource(1)), 100, stats) {
				_, err := model.ParsePosition(m.Position)
				So(err, ShouldBeNil)
				_, err = model.ParseMembershipType(m.MembershipType)
				So(err, ShouldBeNil)
				if m.JerseyNumber != nil {
					So(*m.JerseyNumber, ShouldBeBetweenOrEqual, 1, maxJerseyNumber)
				}
			}
		})

		Convey("Cases cover every strategy and team count", func() {
			cases := buildCases(2, 6)
			So(len(cases), ShouldEqual, len(model.Strategies)*5)
			So(cases[0], ShouldResemble, Case{Strategy: model.StrategyRandom, Teams: 2})
			So(cases[len(cases)-1], ShouldResemble, Case{Strategy: model.StrategyBalanced, Teams: 6})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Config validation", t, func() {
		valid := func() *Config {
			return &Config{BaseURL: "http://x", NumMembers: 10, MinTeams: 2, MaxTeams: 6, Workers: 1}
		}
		So(valid().Validate(), ShouldBeNil)

		for _, mutate := range []func(*Config){
			func(c *Config) { c.BaseURL = "" },
			func(c *Config) { c.NumMembers = 0 },
			func(c *Config) { c.MinTeams = 1 },
			func(c *Config) { c.MaxTeams = 7 },
			func(c *Config) { c.MinTeams, c.MaxTeams = 5, 3 },
			func(c *Config) { c.NumMembers = 4 },
			func(c *Config) { c.Workers = 0 },
		} {
			c := valid()
			mutate(c)
			So(errors.Is(c.Validate(), ErrInvalidConfig), ShouldBeTrue)
		}
	})
}
