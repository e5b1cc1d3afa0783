package playthrough_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/deadgrid/internal/config"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/pkg/clock"
	"github.com/KirkDiggler/deadgrid/internal/repositories/playthrough"
	"github.com/KirkDiggler/deadgrid/internal/testutils"
)

// RepositoryTestSuite runs the same contract against every implementation
type RepositoryTestSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clock.Fixed
	repo    playthrough.Repository
	newRepo func(s *RepositoryTestSuite) playthrough.Repository
	// expire moves time past a TTL
	expire func(s *RepositoryTestSuite, d time.Duration)

	mr *miniredis.Miniredis
}

func TestInMemoryRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(s *RepositoryTestSuite) playthrough.Repository {
			return playthrough.NewInMemory(s.clock)
		},
		expire: func(s *RepositoryTestSuite, d time.Duration) {
			s.clock.At = s.clock.At.Add(d)
		},
	})
}

func TestRedisRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(s *RepositoryTestSuite) playthrough.Repository {
			client, mr := testutils.CreateTestRedisClient(s.T())
			s.mr = mr
			repo, err := playthrough.NewRedisRepository(&playthrough.Config{Client: client, Clock: s.clock})
			s.Require().NoError(err)
			return repo
		},
		expire: func(s *RepositoryTestSuite, d time.Duration) {
			s.clock.At = s.clock.At.Add(d)
			s.mr.FastForward(d)
		},
	})
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &clock.Fixed{At: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
	s.repo = s.newRepo(s)
}

func (s *RepositoryTestSuite) journal(id string) *playthrough.Journal {
	return &playthrough.Journal{ID: id, Seed: 42, Rules: config.DefaultGame()}
}

func (s *RepositoryTestSuite) create(id string, ttl time.Duration) {
	_, err := s.repo.Create(s.ctx, &playthrough.CreateInput{Journal: s.journal(id), TTL: ttl})
	s.Require().NoError(err)
}

func (s *RepositoryTestSuite) TestCreateAndGet() {
	out, err := s.repo.Create(s.ctx, &playthrough.CreateInput{Journal: s.journal("pt_1"), TTL: time.Hour})
	s.Require().NoError(err)
	s.Assert().Equal(s.clock.At, out.Journal.CreatedAt)
	s.Assert().Equal(s.clock.At.Add(time.Hour), out.Journal.ExpiresAt)

	got, err := s.repo.Get(s.ctx, &playthrough.GetInput{ID: "pt_1"})
	s.Require().NoError(err)
	s.Assert().Equal(uint64(42), got.Journal.Seed)
	s.Assert().Equal(config.DefaultGame(), got.Journal.Rules)
	s.Assert().Empty(got.Journal.Commands)
	s.Assert().True(s.clock.At.Equal(got.Journal.CreatedAt))
}

func (s *RepositoryTestSuite) TestCreateRejectsDuplicates() {
	s.create("pt_1", 0)

	_, err := s.repo.Create(s.ctx, &playthrough.CreateInput{Journal: s.journal("pt_1")})
	s.Assert().Equal(errors.CodeAlreadyExists, errors.GetCode(err))
}

func (s *RepositoryTestSuite) TestAppendKeepsOrder() {
	s.create("pt_1", time.Hour)

	commands := []survival.Command{
		survival.ActionCommand(survival.Action{Type: survival.ActionMove, Direction: survival.DirUp}),
		survival.ActionCommand(survival.Action{Type: survival.ActionUseItem, Item: survival.ItemBandage}),
		survival.ChoiceCommand("supply_cache_2_1", "choice_1"),
	}
	for i, c := range commands {
		out, err := s.repo.Append(s.ctx, &playthrough.AppendInput{ID: "pt_1", Command: c})
		s.Require().NoError(err)
		s.Assert().Equal(i+1, out.Length)
	}

	got, err := s.repo.Get(s.ctx, &playthrough.GetInput{ID: "pt_1"})
	s.Require().NoError(err)
	s.Assert().Equal(commands, got.Journal.Commands)
}

func (s *RepositoryTestSuite) TestAppendToMissingJournal() {
	_, err := s.repo.Append(s.ctx, &playthrough.AppendInput{ID: "nope", Command: survival.ChoiceCommand("a", "b")})
	s.Assert().True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestJournalsExpire() {
	s.create("pt_1", time.Hour)

	s.expire(s, 2*time.Hour)

	_, err := s.repo.Get(s.ctx, &playthrough.GetInput{ID: "pt_1"})
	s.Assert().True(errors.IsNotFound(err))

	// the id becomes reusable
	s.create("pt_1", time.Hour)
}

func (s *RepositoryTestSuite) TestAppendSlidesExpiry() {
	s.create("pt_1", time.Hour)

	s.expire(s, 50*time.Minute)
	_, err := s.repo.Append(s.ctx, &playthrough.AppendInput{ID: "pt_1", Command: survival.ActionCommand(survival.Action{Type: survival.ActionWait})})
	s.Require().NoError(err)

	s.expire(s, 50*time.Minute)
	got, err := s.repo.Get(s.ctx, &playthrough.GetInput{ID: "pt_1"})
	s.Require().NoError(err)
	s.Assert().Len(got.Journal.Commands, 1)
}

func (s *RepositoryTestSuite) TestDelete() {
	s.create("pt_1", 0)

	_, err := s.repo.Delete(s.ctx, &playthrough.DeleteInput{ID: "pt_1"})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, &playthrough.GetInput{ID: "pt_1"})
	s.Assert().True(errors.IsNotFound(err))

	_, err = s.repo.Delete(s.ctx, &playthrough.DeleteInput{ID: "pt_1"})
	s.Assert().NoError(err)
}

func (s *RepositoryTestSuite) TestInputValidation() {
	_, err := s.repo.Create(s.ctx, nil)
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = s.repo.Create(s.ctx, &playthrough.CreateInput{})
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = s.repo.Create(s.ctx, &playthrough.CreateInput{Journal: &playthrough.Journal{}})
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = s.repo.Get(s.ctx, &playthrough.GetInput{})
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = s.repo.Append(s.ctx, &playthrough.AppendInput{})
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = s.repo.Delete(s.ctx, &playthrough.DeleteInput{})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func TestRedisRepositoryRejectsCorruptHeader(t *testing.T) {
	client, mr := testutils.CreateTestRedisClient(t)
	repo, err := playthrough.NewRedisRepository(&playthrough.Config{Client: client, Clock: clock.New()})
	if err != nil {
		t.Fatal(err)
	}
	if err := mr.Set("playthrough:pt_1:header", "not zstd"); err != nil {
		t.Fatal(err)
	}

	_, err = repo.Get(context.Background(), &playthrough.GetInput{ID: "pt_1"})
	if errors.GetCode(err) != errors.CodeDataLoss {
		t.Fatalf("expected DATA_LOSS, got %v", err)
	}
}

func TestNewRedisRepositoryValidates(t *testing.T) {
	if _, err := playthrough.NewRedisRepository(&playthrough.Config{}); !errors.IsInvalidArgument(err) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}
