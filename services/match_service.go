package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Dosada05/pickleball-league/models"
	"github.com/Dosada05/pickleball-league/repositories"
	"github.com/Dosada05/pickleball-league/scoring"
)

var ErrMatchesListFailed = errors.New("failed to list matches")

// CreateMatchInput schedules an unscored match between two club teams.
type CreateMatchInput struct {
	ID           string           `json:"id"`
	MatchType    models.MatchType `json:"matchType"`
	ScheduledAt  *time.Time       `json:"scheduledAt"`
	Court        string           `json:"court"`
	Team1ID      string           `json:"team1Id"`
	Team1Name    string           `json:"team1Name"`
	Team2ID      string           `json:"team2Id"`
	Team2Name    string           `json:"team2Name"`
	Team1Players []string         `json:"team1Players"`
	Team2Players []string         `json:"team2Players"`
}

type RegisterPlayerInput struct {
	ID     string        `json:"id"`
	TeamID string        `json:"teamId"`
	Name   string        `json:"name"`
	Gender models.Gender `json:"gender"`
}

// MatchService serves match documents to readers and lets admins seed
// fixtures and rosters.
type MatchService interface {
	CreateMatch(ctx context.Context, tournamentID string, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListTournamentMatches(ctx context.Context, tournamentID string) ([]*models.Match, error)
	Scoreboard(ctx context.Context, id string) (*scoring.Scoreboard, error)
	RegisterPlayer(ctx context.Context, input RegisterPlayerInput) (*models.Player, error)
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository

	// boards coalesces concurrent scoreboard reads of the same match.
	boards singleflight.Group
}

func NewMatchService(matchRepo repositories.MatchRepository, playerRepo repositories.PlayerRepository) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, tournamentID string, input CreateMatchInput) (*models.Match, error) {
	if strings.TrimSpace(tournamentID) == "" {
		return nil, fmt.Errorf("%w: tournament id is required", ErrValidationFailed)
	}
	if !input.MatchType.Valid() {
		return nil, fmt.Errorf("%w: unknown match type %q", ErrValidationFailed, input.MatchType)
	}
	if input.Team1ID == "" || input.Team2ID == "" || input.Team1ID == input.Team2ID {
		return nil, fmt.Errorf("%w: two different teams are required", ErrValidationFailed)
	}

	perSide := 2
	if input.MatchType == models.MatchTypeMensSingles || input.MatchType == models.MatchTypeWomensSingles {
		perSide = 1
	}

	team1, err := s.resolvePlayers(ctx, input.Team1ID, input.Team1Players, perSide)
	if err != nil {
		return nil, err
	}
	team2, err := s.resolvePlayers(ctx, input.Team2ID, input.Team2Players, perSide)
	if err != nil {
		return nil, err
	}

	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}
	match := &models.Match{
		ID:           id,
		TournamentID: tournamentID,
		MatchType:    input.MatchType,
		ScheduledAt:  input.ScheduledAt,
		Court:        input.Court,
		Team1ID:      input.Team1ID,
		Team1Name:    input.Team1Name,
		Team2ID:      input.Team2ID,
		Team2Name:    input.Team2Name,
		Player1Team1: team1[0],
		Player1Team2: team2[0],
	}
	if perSide == 2 {
		match.Player2Team1 = team1[1]
		match.Player2Team2 = team2[1]
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchConflict) {
			return nil, fmt.Errorf("%w: %s", ErrMatchAlreadyExists, id)
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return match, nil
}

func (s *matchService) resolvePlayers(ctx context.Context, teamID string, ids []string, want int) ([]*models.PlayerRef, error) {
	if len(ids) != want {
		return nil, fmt.Errorf("%w: team %s needs %d player(s), got %d", ErrValidationFailed, teamID, want, len(ids))
	}
	refs := make([]*models.PlayerRef, 0, want)
	for _, id := range ids {
		p, err := s.playerRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return nil, fmt.Errorf("%w: player %s not found", ErrValidationFailed, id)
			}
			return nil, err
		}
		if p.TeamID != teamID {
			return nil, fmt.Errorf("%w: player %s is not on team %s", ErrValidationFailed, id, teamID)
		}
		ref := p.Ref()
		refs = append(refs, &ref)
	}
	return refs, nil
}

func (s *matchService) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("%w: match %s", ErrNotFound, id)
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListTournamentMatches(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: tournament %s: %w", ErrMatchesListFailed, tournamentID, err)
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}

func (s *matchService) Scoreboard(ctx context.Context, id string) (*scoring.Scoreboard, error) {
	// The flight is shared, so it must outlive a caller that goes away.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.boards.Do(id, func() (interface{}, error) {
		match, err := s.GetMatch(flightCtx, id)
		if err != nil {
			return nil, err
		}
		return scoring.Summarize(match), nil
	})
	if err != nil {
		return nil, err
	}
	sb := v.(scoring.Scoreboard)
	return &sb, nil
}

func (s *matchService) RegisterPlayer(ctx context.Context, input RegisterPlayerInput) (*models.Player, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.TeamID == "" || input.Name == "" {
		return nil, fmt.Errorf("%w: team and name are required", ErrValidationFailed)
	}
	if !input.Gender.Valid() {
		return nil, fmt.Errorf("%w: gender must be male or female", ErrValidationFailed)
	}
	player := &models.Player{
		ID:     input.ID,
		TeamID: input.TeamID,
		Name:   input.Name,
		Gender: input.Gender,
	}
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerConflict) {
			return nil, fmt.Errorf("%w: %s", ErrPlayerAlreadyExists, player.ID)
		}
		return nil, fmt.Errorf("failed to register player: %w", err)
	}
	return player, nil
}
