package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gobuffalo/nulls"
	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/clubhouse/internal/app"
	"github.com/okian/clubhouse/internal/adapters/repository"
	"github.com/okian/clubhouse/internal/domain/division"
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/types"
	"github.com/okian/clubhouse/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func createMember(ctx context.Context, svc *service.Service, name string, pos model.Position, mt model.MembershipType) types.Member {
	m, err := svc.CreateMember(ctx, model.Member{FullName: name, Position: pos, MembershipType: mt})
	So(err, ShouldBeNil)
	return m
}

// seedMembers registers n members cycling through the positions.
func seedMembers(ctx context.Context, svc *service.Service, n int) []string {
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		mt := model.MembershipOfficial
		if i%3 == 0 {
			mt = model.MembershipTrial
		}
		m := createMember(ctx, svc, "player", model.Positions[i%model.PositionCount], mt)
		ids[i] = m.ID
	}
	return ids
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["totalMembers"], ShouldEqual, 0)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(500),
			service.WithDedupeSize(250),
			service.WithStore(repository.NewMemoryStore()),
			service.WithDivider(division.New(division.WithSeed(1))),
		)

		Convey("Then it should be created with them", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 500)
			So(stats["dedupeSize"], ShouldEqual, 250)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should be marked as started", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["queueLength"], ShouldEqual, 0)
				So(stats["dedupeEntries"], ShouldEqual, int64(0))
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
				svc.Stop()
			})
		})
	})
}

func TestService_Members(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := service.New()

		Convey("When creating a member", func() {
			m, err := svc.CreateMember(ctx, model.Member{
				FullName:       "  Ada Keeper ",
				Position:       model.Goalkeeper,
				MembershipType: "official",
				JerseyNumber:   nulls.NewInt(1),
			})

			Convey("Then it is stored with a derived skill", func() {
				So(err, ShouldBeNil)
				So(m.ID, ShouldNotBeEmpty)
				So(m.FullName, ShouldEqual, "Ada Keeper")
				So(m.MembershipType, ShouldEqual, model.MembershipOfficial)
				So(m.Skill, ShouldEqual, 3.8)
				So(m.JerseyNumber.Int, ShouldEqual, 1)
			})

			Convey("And it can be fetched and listed", func() {
				got, err := svc.GetMember(ctx, m.ID)
				So(err, ShouldBeNil)
				So(got.Skill, ShouldEqual, 3.8)

				all, err := svc.ListMembers(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 1)
			})
		})

		Convey("When creating a member without a name", func() {
			_, err := svc.CreateMember(ctx, model.Member{Position: model.Forward, MembershipType: model.MembershipTrial})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, repository.ErrInvalidRecord), ShouldBeTrue)
			})
		})

		Convey("When fetching an unknown member", func() {
			_, err := svc.GetMember(ctx, "missing")

			Convey("Then it is not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Divide(t *testing.T) {
	Convey("Given a service with registered members", t, func() {
		ctx := context.Background()
		svc := service.New()

		a := createMember(ctx, svc, "A", model.Goalkeeper, model.MembershipOfficial) // 3.8
		b := createMember(ctx, svc, "B", model.Defender, model.MembershipOfficial)   // 3.5
		c := createMember(ctx, svc, "C", model.Goalkeeper, model.MembershipTrial)    // 2.8
		d := createMember(ctx, svc, "D", model.Midfielder, model.MembershipTrial)    // 2.5

		Convey("When dividing with SKILL_BALANCED", func() {
			res, err := svc.Divide(ctx, model.DivisionRequest{
				ParticipantIDs: []string{d.ID, c.ID, b.ID, a.ID},
				NumberOfTeams:  2,
				Strategy:       "skill_balanced",
			})

			Convey("Then the snake draft pairs strongest with weakest", func() {
				So(err, ShouldBeNil)
				So(res.Strategy, ShouldEqual, model.StrategySkillBalanced)
				So(res.Teams, ShouldHaveLength, 2)
				So(res.Teams[0].Name, ShouldEqual, "Team 1")
				So(res.Teams[0].Participants[0].ID, ShouldEqual, a.ID)
				So(res.Teams[0].Participants[1].ID, ShouldEqual, d.ID)
				So(res.Teams[0].TotalScore, ShouldAlmostEqual, 6.3, 1e-9)
				So(res.Teams[1].TotalScore, ShouldAlmostEqual, 6.3, 1e-9)
				So(res.Summary.TotalParticipants, ShouldEqual, 4)
				So(res.Summary.PositionDistribution[model.Goalkeeper], ShouldEqual, 2)
				So(res.Balancing, ShouldBeNil)
			})
		})

		Convey("When dividing without a strategy", func() {
			seed := int64(3)
			res, err := svc.Divide(ctx, model.DivisionRequest{
				ParticipantIDs: []string{a.ID, b.ID, c.ID, d.ID},
				NumberOfTeams:  2,
				Seed:           &seed,
			})

			Convey("Then BALANCED is used and reports its refinement", func() {
				So(err, ShouldBeNil)
				So(res.Strategy, ShouldEqual, model.StrategyBalanced)
				So(res.Balancing, ShouldNotBeNil)
				So(res.Teams[0].Participants, ShouldHaveLength, 2)
				So(res.Teams[1].Participants, ShouldHaveLength, 2)
			})
		})

		Convey("When an id is unknown", func() {
			_, err := svc.Divide(ctx, model.DivisionRequest{
				ParticipantIDs: []string{a.ID, "ghost"},
				NumberOfTeams:  2,
			})

			Convey("Then the whole call fails with not found", func() {
				So(errors.Is(err, division.ErrNotFound), ShouldBeTrue)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "ghost")
			})
		})

		Convey("When the request is malformed", func() {
			cases := []model.DivisionRequest{
				{ParticipantIDs: nil, NumberOfTeams: 2},
				{ParticipantIDs: []string{a.ID, b.ID}, NumberOfTeams: 1},
				{ParticipantIDs: []string{a.ID, b.ID}, NumberOfTeams: 7},
				{ParticipantIDs: []string{a.ID, b.ID}, NumberOfTeams: 2, Strategy: "ZIGZAG"},
				{ParticipantIDs: []string{a.ID, a.ID}, NumberOfTeams: 2},
			}

			Convey("Then every case is a validation error", func() {
				for _, req := range cases {
					_, err := svc.Divide(ctx, req)
					So(errors.Is(err, division.ErrValidation), ShouldBeTrue)
				}
			})
		})

		Convey("When validation and lookup both fail", func() {
			_, err := svc.Divide(ctx, model.DivisionRequest{ParticipantIDs: []string{"ghost"}, NumberOfTeams: 9})

			Convey("Then validation is reported first", func() {
				So(errors.Is(err, division.ErrValidation), ShouldBeTrue)
			})
		})
	})
}

func TestService_Formations(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := service.New()
		teams := []types.Team{{Name: "Team 1", TotalScore: 7}}

		Convey("When saving a formation", func() {
			f, err := svc.SaveFormation(ctx, types.Formation{ClubID: "club-1", Name: "Sunday", Strategy: "balanced", Teams: teams})

			Convey("Then it is stored", func() {
				So(err, ShouldBeNil)
				So(f.ID, ShouldNotBeEmpty)
				So(f.Strategy, ShouldEqual, "BALANCED")

				got, err := svc.GetFormation(ctx, f.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Sunday")
				So(got.Teams, ShouldHaveLength, 1)
			})

			Convey("And the same name in the same club conflicts", func() {
				_, err := svc.SaveFormation(ctx, types.Formation{ClubID: "club-1", Name: "Sunday", Teams: teams})
				So(errors.Is(err, repository.ErrDuplicateName), ShouldBeTrue)
			})

			Convey("And the same name in another club is fine", func() {
				_, err := svc.SaveFormation(ctx, types.Formation{ClubID: "club-2", Name: "Sunday", Teams: teams})
				So(err, ShouldBeNil)

				list, err := svc.ListFormations(ctx, "club-2")
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 1)

				all, err := svc.ListFormations(ctx, "")
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 2)
			})

			Convey("And it can be deleted", func() {
				So(svc.DeleteFormation(ctx, f.ID), ShouldBeNil)
				_, err := svc.GetFormation(ctx, f.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When saving with an unknown strategy", func() {
			_, err := svc.SaveFormation(ctx, types.Formation{ClubID: "c", Name: "n", Strategy: "ZIGZAG", Teams: teams})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, repository.ErrInvalidRecord), ShouldBeTrue)
			})
		})
	})
}
