package scoring

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/pickleball-league/models"
)

type Phase string

const (
	PhaseSetupGames  Phase = "SETUP_GAMES"
	PhaseSetupPoints Phase = "SETUP_POINTS"
	PhaseScoring     Phase = "SCORING"
	PhaseEnded       Phase = "ENDED"
)

var (
	ErrInvalidPhase = errors.New("operation not allowed in current phase")
	ErrMatchEnded   = errors.New("match has already ended")
	ErrInvalidSide  = errors.New("invalid side")
	ErrInvalidGame  = errors.New("invalid game index")
)

// Defaults seeds the setup of a match that has never been configured.
type Defaults struct {
	GamesCount    int
	PointsPerGame int
}

// Session is one umpire's in-memory view of a match. Every operation mutates
// the session first; persisting the result is up to the caller, and a failed
// write leaves the session in its post-action state.
//
// Session is not safe for concurrent use.
type Session struct {
	match *models.Match
	phase Phase
}

// NewSession resumes a match document. A match that is live or already has
// points goes straight to scoring; a completed match is ended.
func NewSession(m *models.Match, d Defaults) *Session {
	s := &Session{match: m.Clone()}

	switch {
	case s.match.Status == models.MatchStatusCompleted:
		s.phase = PhaseEnded
	case s.match.Status == models.MatchStatusLive || s.match.HasScores():
		s.phase = PhaseScoring
		if s.match.GamesCount == 0 {
			s.match.GamesCount = ClampGamesCount(len(s.match.PointsPerGame))
		}
		s.match.GamesCount = ClampGamesCount(s.match.GamesCount)
		s.match.PointsPerGame = ResizePointsPerGame(s.match.PointsPerGame, s.match.GamesCount)
		s.match.Scores = InitScores(s.match.Scores, s.match.GamesCount)
	default:
		s.phase = PhaseSetupGames
		n := s.match.GamesCount
		if n == 0 {
			n = d.GamesCount
		}
		n = ClampGamesCount(n)
		points := s.match.PointsPerGame
		if len(points) == 0 {
			target := d.PointsPerGame
			if target == 0 {
				target = DefaultPointsPerGame
			}
			points = make([]int, n)
			for i := range points {
				points[i] = target
			}
		}
		s.match.GamesCount = n
		s.match.PointsPerGame = ResizePointsPerGame(points, n)
	}
	return s
}

func (s *Session) Phase() Phase { return s.phase }

// Match returns a copy of the current state.
func (s *Session) Match() *models.Match { return s.match.Clone() }

func (s *Session) SetRevision(rev int64) { s.match.Revision = rev }

func (s *Session) Revision() int64 { return s.match.Revision }

// SetGamesCount clamps n to 1..5 and resizes the per-game targets. It only
// changes local configuration.
func (s *Session) SetGamesCount(n int) (int, error) {
	if err := s.requireSetup(); err != nil {
		return 0, err
	}
	n = ClampGamesCount(n)
	s.match.GamesCount = n
	s.match.PointsPerGame = ResizePointsPerGame(s.match.PointsPerGame, n)
	s.phase = PhaseSetupPoints
	return n, nil
}

// SetPointsPerGame sets the target of a 1-based game, clamped to 1..21.
func (s *Session) SetPointsPerGame(game, points int) (int, error) {
	if err := s.requireSetup(); err != nil {
		return 0, err
	}
	if game < 1 || game > s.match.GamesCount {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGame, game)
	}
	points = ClampPoints(points)
	s.match.PointsPerGame[game-1] = points
	return points, nil
}

// CompleteSetup opens scoring. The first call zeroes the score grid and marks
// the match live; calling it again while scoring keeps entered points.
func (s *Session) CompleteSetup(now time.Time) error {
	switch s.phase {
	case PhaseEnded:
		return ErrMatchEnded
	case PhaseScoring:
		s.match.Scores = InitScores(s.match.Scores, s.match.GamesCount)
	default:
		s.match.Scores = InitScores(nil, s.match.GamesCount)
		ApplyServe(s.match, ServeStateOf(s.match))
	}
	s.match.Status = models.MatchStatusLive
	if s.match.StartedAt == nil {
		t := now
		s.match.StartedAt = &t
	}
	s.phase = PhaseScoring
	return nil
}

// UpdateScore adds delta to a side's 1-based game and returns the new score,
// floored at zero.
func (s *Session) UpdateScore(side models.Side, game, delta int) (int, error) {
	if err := s.requireScoring(); err != nil {
		return 0, err
	}
	if !side.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	if game < 1 || game > s.match.GamesCount {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGame, game)
	}
	v := ApplyDelta(s.match.Scores, side, game, delta)
	s.match.Status = models.MatchStatusLive
	return v, nil
}

// ChangeServe rotates the serve and returns the new position.
func (s *Session) ChangeServe() (ServeState, error) {
	if err := s.requireScoring(); err != nil {
		return nil, err
	}
	next := NextServe(ServeStateOf(s.match))
	ApplyServe(s.match, next)
	return next, nil
}

// Substitute replaces an on-court player and appends the ledger record.
// Eligibility across the fixture group is checked by the caller.
func (s *Session) Substitute(slot models.TeamSlot, outgoingID string, incoming models.PlayerRef, recordID string, now time.Time) (models.SubstitutionRecord, error) {
	if err := s.requireScoring(); err != nil {
		return models.SubstitutionRecord{}, err
	}
	out, err := OutgoingPlayer(s.match, slot, outgoingID)
	if err != nil {
		return models.SubstitutionRecord{}, err
	}
	rec := models.SubstitutionRecord{
		ID:        recordID,
		Timestamp: now,
		Team:      slot,
		TeamID:    s.match.TeamID(slot),
		PlayerOut: *out,
		PlayerIn:  incoming,
		Game:      CurrentGame(s.match),
	}
	if err := ReplacePlayer(s.match, slot, outgoingID, incoming); err != nil {
		return models.SubstitutionRecord{}, err
	}
	s.match.Substitutions = append(s.match.Substitutions, rec)
	return rec, nil
}

// End computes the result and completes the match. There is no way back.
func (s *Session) End(now time.Time) (Result, error) {
	if err := s.requireScoring(); err != nil {
		return Result{}, err
	}
	res := CalculateWinner(s.match)

	t := now
	s.match.Status = models.MatchStatusCompleted
	s.match.CompletedAt = &t
	s.match.EndedAt = &t
	s.match.Winner = res.Winner
	s.match.WinnerName = res.WinnerName
	s.match.WinnerTeam = res.WinnerTeam
	s.match.FinalScore = res.FinalScore
	s.match.GamesWon = res.GamesWon
	s.phase = PhaseEnded
	return res, nil
}

func (s *Session) requireSetup() error {
	switch s.phase {
	case PhaseSetupGames, PhaseSetupPoints:
		return nil
	case PhaseEnded:
		return ErrMatchEnded
	}
	return fmt.Errorf("%w: setup is closed", ErrInvalidPhase)
}

func (s *Session) requireScoring() error {
	switch s.phase {
	case PhaseScoring:
		return nil
	case PhaseEnded:
		return ErrMatchEnded
	}
	return fmt.Errorf("%w: setup not completed", ErrInvalidPhase)
}
