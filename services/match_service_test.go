package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/pickleball-league/models"
)

func rosterPlayers() []*models.Player {
	return []*models.Player{
		{ID: "h1", TeamID: "home", Name: "Ann", Gender: models.GenderFemale},
		{ID: "h2", TeamID: "home", Name: "Bob", Gender: models.GenderMale},
		{ID: "a1", TeamID: "away", Name: "Cid", Gender: models.GenderMale},
		{ID: "a2", TeamID: "away", Name: "Dee", Gender: models.GenderFemale},
	}
}

func TestMatchServiceCreateMatch(t *testing.T) {
	matches := newMemMatchRepo()
	svc := NewMatchService(matches, newMemPlayerRepo(rosterPlayers()...))
	ctx := context.Background()

	m, err := svc.CreateMatch(ctx, "spring", CreateMatchInput{
		ID:           "xd1",
		MatchType:    models.MatchTypeMixedDoubles,
		Court:        "2",
		Team1ID:      "home",
		Team1Name:    "Home Club",
		Team2ID:      "away",
		Team2Name:    "Away Club",
		Team1Players: []string{"h1", "h2"},
		Team2Players: []string{"a1", "a2"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusUnset, m.Status)
	assert.True(t, m.IsDoubles())
	assert.Equal(t, "Ann", m.Player1Team1.Name)
	assert.Equal(t, models.GenderFemale, m.Player2Team2.Gender)

	got, err := svc.GetMatch(ctx, "xd1")
	require.NoError(t, err)
	assert.Equal(t, "spring", got.TournamentID)

	_, err = svc.CreateMatch(ctx, "spring", CreateMatchInput{
		ID:           "xd1",
		MatchType:    models.MatchTypeMixedDoubles,
		Team1ID:      "home",
		Team2ID:      "away",
		Team1Players: []string{"h1", "h2"},
		Team2Players: []string{"a1", "a2"},
	})
	assert.ErrorIs(t, err, ErrMatchAlreadyExists)

	generated, err := svc.CreateMatch(ctx, "spring", CreateMatchInput{
		MatchType:    models.MatchTypeMensSingles,
		Team1ID:      "home",
		Team2ID:      "away",
		Team1Players: []string{"h2"},
		Team2Players: []string{"a1"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, generated.ID)
	assert.False(t, generated.IsDoubles())
}

func TestMatchServiceCreateMatchValidation(t *testing.T) {
	svc := NewMatchService(newMemMatchRepo(), newMemPlayerRepo(rosterPlayers()...))
	ctx := context.Background()

	tests := []struct {
		name         string
		tournamentID string
		input        CreateMatchInput
	}{
		{
			name:         "missing tournament",
			tournamentID: " ",
			input:        CreateMatchInput{MatchType: models.MatchTypeMensSingles, Team1ID: "home", Team2ID: "away", Team1Players: []string{"h2"}, Team2Players: []string{"a1"}},
		},
		{
			name:         "unknown type",
			tournamentID: "spring",
			input:        CreateMatchInput{MatchType: "quads", Team1ID: "home", Team2ID: "away"},
		},
		{
			name:         "same team twice",
			tournamentID: "spring",
			input:        CreateMatchInput{MatchType: models.MatchTypeMensSingles, Team1ID: "home", Team2ID: "home"},
		},
		{
			name:         "doubles with one player",
			tournamentID: "spring",
			input:        CreateMatchInput{MatchType: models.MatchTypeMensDoubles, Team1ID: "home", Team2ID: "away", Team1Players: []string{"h2"}, Team2Players: []string{"a1", "a2"}},
		},
		{
			name:         "player from the other team",
			tournamentID: "spring",
			input:        CreateMatchInput{MatchType: models.MatchTypeMensSingles, Team1ID: "home", Team2ID: "away", Team1Players: []string{"a1"}, Team2Players: []string{"a1"}},
		},
		{
			name:         "unknown player",
			tournamentID: "spring",
			input:        CreateMatchInput{MatchType: models.MatchTypeMensSingles, Team1ID: "home", Team2ID: "away", Team1Players: []string{"h9"}, Team2Players: []string{"a1"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateMatch(ctx, tt.tournamentID, tt.input)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestMatchServiceReads(t *testing.T) {
	m := liveMatch(singles("m1"))
	m.Scores = map[models.Side]map[string]int{
		models.SidePlayer1: {"game1": 5},
		models.SidePlayer2: {"game1": 3},
	}
	svc := NewMatchService(newMemMatchRepo(m), newMemPlayerRepo())
	ctx := context.Background()

	_, err := svc.GetMatch(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.ListTournamentMatches(ctx, "autumn")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	list, err = svc.ListTournamentMatches(ctx, "spring")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	board, err := svc.Scoreboard(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 5, board.Totals[models.SidePlayer1])
	assert.Equal(t, 1, board.CurrentGame)

	_, err = svc.Scoreboard(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchServiceRegisterPlayer(t *testing.T) {
	svc := NewMatchService(newMemMatchRepo(), newMemPlayerRepo())
	ctx := context.Background()

	p, err := svc.RegisterPlayer(ctx, RegisterPlayerInput{TeamID: "home", Name: "  Eve ", Gender: models.GenderFemale})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Eve", p.Name)

	_, err = svc.RegisterPlayer(ctx, RegisterPlayerInput{ID: p.ID, TeamID: "home", Name: "Eve", Gender: models.GenderFemale})
	assert.ErrorIs(t, err, ErrPlayerAlreadyExists)

	_, err = svc.RegisterPlayer(ctx, RegisterPlayerInput{TeamID: "home", Name: "Eve", Gender: "other"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.RegisterPlayer(ctx, RegisterPlayerInput{TeamID: "", Name: "Eve", Gender: models.GenderFemale})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

// ctxMatchRepo fails reads whose context is already done.
type ctxMatchRepo struct {
	*memMatchRepo
}

func (r ctxMatchRepo) GetByID(ctx context.Context, id string) (*models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.memMatchRepo.GetByID(ctx, id)
}

func TestMatchServiceScoreboardIgnoresCallerCancellation(t *testing.T) {
	repo := ctxMatchRepo{newMemMatchRepo(liveMatch(singles("m1")))}
	svc := NewMatchService(repo, newMemPlayerRepo())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	board, err := svc.Scoreboard(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", board.MatchID)
}
