package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/pickleball-league/live"
	"github.com/Dosada05/pickleball-league/models"
	"github.com/Dosada05/pickleball-league/repositories"
	"github.com/Dosada05/pickleball-league/scoring"
	"github.com/Dosada05/pickleball-league/storage"
)

// Broadcaster pushes messages to display clients.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message live.Message)
}

// SessionView is what the umpire UI renders after every action.
type SessionView struct {
	Phase      scoring.Phase      `json:"phase"`
	Match      *models.Match      `json:"match"`
	Scoreboard scoring.Scoreboard `json:"scoreboard"`
}

type UpdateScoreInput struct {
	Side  models.Side `json:"side"`
	Game  int         `json:"game"`
	Delta int         `json:"delta"`
}

type SubstitutionInput struct {
	Team      models.TeamSlot `json:"team"`
	PlayerOut string          `json:"playerOut"`
	PlayerIn  string          `json:"playerIn"`
}

type SubstitutionOptions struct {
	Team          models.TeamSlot  `json:"team"`
	CanSubstitute bool             `json:"canSubstitute"`
	Available     []*models.Player `json:"available"`
}

// ScoringService runs umpire sessions. Setup choices stay in memory until
// CompleteSetup; every later action writes the whole match document.
type ScoringService interface {
	Session(ctx context.Context, matchID string) (*SessionView, error)
	SetGamesCount(ctx context.Context, matchID string, n int) (*SessionView, error)
	SetPointsPerGame(ctx context.Context, matchID string, game, points int) (*SessionView, error)
	CompleteSetup(ctx context.Context, matchID string) (*SessionView, error)
	UpdateScore(ctx context.Context, matchID string, input UpdateScoreInput) (*SessionView, error)
	ChangeServe(ctx context.Context, matchID string) (*SessionView, error)
	SubstitutionOptions(ctx context.Context, matchID string, team models.TeamSlot, playerOut string) (*SubstitutionOptions, error)
	RequestSubstitution(ctx context.Context, matchID string, input SubstitutionInput) (*SessionView, error)
	EndMatch(ctx context.Context, matchID string) (*SessionView, error)

	// EvictIdle drops sessions unused for longer than maxIdle and returns how
	// many were dropped. Sessions holding an unsaved change are kept.
	EvictIdle(maxIdle time.Duration) int
}

type sessionEntry struct {
	mu      sync.Mutex
	session *scoring.Session
	// unsaved is set when the last write failed; the session holds a change
	// the store has not seen.
	unsaved  bool
	lastUsed time.Time
}

// sessionAction mutates a session. unsaved reports whether the session holds
// a change from an earlier failed write.
type sessionAction func(sess *scoring.Session, unsaved bool) (persist bool, err error)

type scoringService struct {
	matchRepo   repositories.MatchRepository
	playerRepo  repositories.PlayerRepository
	broadcaster Broadcaster
	archive     storage.MatchArchive
	logger      *slog.Logger
	defaults    scoring.Defaults

	now   func() time.Time
	newID func() string

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewScoringService(
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	broadcaster Broadcaster,
	archive storage.MatchArchive,
	defaults scoring.Defaults,
	logger *slog.Logger,
) ScoringService {
	if archive == nil {
		archive = storage.NewNoopArchive()
	}
	return &scoringService{
		matchRepo:   matchRepo,
		playerRepo:  playerRepo,
		broadcaster: broadcaster,
		archive:     archive,
		logger:      logger,
		defaults:    defaults,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		sessions:    make(map[string]*sessionEntry),
	}
}

func (s *scoringService) Session(ctx context.Context, matchID string) (*SessionView, error) {
	return s.withSession(ctx, matchID, func(*scoring.Session, bool) (bool, error) {
		return false, nil
	})
}

func (s *scoringService) SetGamesCount(ctx context.Context, matchID string, n int) (*SessionView, error) {
	return s.withSession(ctx, matchID, func(sess *scoring.Session, _ bool) (bool, error) {
		_, err := sess.SetGamesCount(n)
		return false, err
	})
}

func (s *scoringService) SetPointsPerGame(ctx context.Context, matchID string, game, points int) (*SessionView, error) {
	return s.withSession(ctx, matchID, func(sess *scoring.Session, _ bool) (bool, error) {
		_, err := sess.SetPointsPerGame(game, points)
		return false, err
	})
}

func (s *scoringService) CompleteSetup(ctx context.Context, matchID string) (*SessionView, error) {
	return s.withSession(ctx, matchID, func(sess *scoring.Session, _ bool) (bool, error) {
		return true, sess.CompleteSetup(s.now())
	})
}

func (s *scoringService) UpdateScore(ctx context.Context, matchID string, input UpdateScoreInput) (*SessionView, error) {
	return s.withSession(ctx, matchID, func(sess *scoring.Session, _ bool) (bool, error) {
		_, err := sess.UpdateScore(input.Side, input.Game, input.Delta)
		return true, err
	})
}

func (s *scoringService) ChangeServe(ctx context.Context, matchID string) (*SessionView, error) {
	return s.withSession(ctx, matchID, func(sess *scoring.Session, _ bool) (bool, error) {
		_, err := sess.ChangeServe()
		return true, err
	})
}

func (s *scoringService) SubstitutionOptions(ctx context.Context, matchID string, team models.TeamSlot, playerOut string) (*SubstitutionOptions, error) {
	if !team.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", ErrValidationFailed, scoring.ErrInvalidTeam, team)
	}

	var opts *SubstitutionOptions
	_, err := s.withSession(ctx, matchID, func(sess *scoring.Session, _ bool) (bool, error) {
		match := sess.Match()

		var outgoing *models.PlayerRef
		if playerOut != "" {
			out, err := scoring.OutgoingPlayer(match, team, playerOut)
			if err != nil {
				return false, err
			}
			outgoing = out
		}

		siblings, roster, err := s.substitutionContext(ctx, match, team)
		if err != nil {
			return false, err
		}

		opts = &SubstitutionOptions{
			Team:          team,
			CanSubstitute: scoring.CanTeamMakeSubstitution(match, siblings, team),
			Available:     []*models.Player{},
		}
		if opts.CanSubstitute {
			opts.Available = scoring.EligibleSubstitutes(match, siblings, roster, outgoing)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return opts, nil
}

func (s *scoringService) RequestSubstitution(ctx context.Context, matchID string, input SubstitutionInput) (*SessionView, error) {
	input.PlayerOut = strings.TrimSpace(input.PlayerOut)
	input.PlayerIn = strings.TrimSpace(input.PlayerIn)
	if !input.Team.Valid() || input.PlayerOut == "" || input.PlayerIn == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, ErrSubstitutionIncomplete)
	}

	return s.withSession(ctx, matchID, func(sess *scoring.Session, unsaved bool) (bool, error) {
		switch sess.Phase() {
		case scoring.PhaseScoring:
		case scoring.PhaseEnded:
			return false, scoring.ErrMatchEnded
		default:
			return false, fmt.Errorf("%w: setup not completed", scoring.ErrInvalidPhase)
		}

		match := sess.Match()
		if unsaved && isLastSubstitution(match, input) {
			return true, nil
		}
		outgoing, err := scoring.OutgoingPlayer(match, input.Team, input.PlayerOut)
		if err != nil {
			return false, err
		}

		siblings, roster, err := s.substitutionContext(ctx, match, input.Team)
		if err != nil {
			return false, err
		}
		if !scoring.CanTeamMakeSubstitution(match, siblings, input.Team) {
			return false, fmt.Errorf("%w: %w", ErrValidationFailed, ErrSubstitutionNotAllowed)
		}

		eligible := scoring.EligibleSubstitutes(match, siblings, roster, outgoing)
		if len(eligible) == 0 {
			return false, fmt.Errorf("%w: %w", ErrValidationFailed, ErrNoEligiblePlayers)
		}
		var incoming *models.Player
		for _, p := range eligible {
			if p.ID == input.PlayerIn {
				incoming = p
				break
			}
		}
		if incoming == nil {
			return false, fmt.Errorf("%w: %w: %s", ErrValidationFailed, ErrPlayerNotEligible, input.PlayerIn)
		}

		if _, err := sess.Substitute(input.Team, input.PlayerOut, incoming.Ref(), s.newID(), s.now()); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (s *scoringService) EndMatch(ctx context.Context, matchID string) (*SessionView, error) {
	var ended *sessionEntry
	view, err := s.withEntry(ctx, matchID, func(e *sessionEntry) (bool, error) {
		ended = e
		if e.session.Phase() == scoring.PhaseEnded && e.unsaved {
			return true, nil
		}
		_, err := e.session.End(s.now())
		return true, err
	})
	if err != nil {
		return nil, err
	}

	s.archiveMatch(ctx, view.Match)
	s.broadcast(live.MessageMatchEnded, view)
	s.evict(matchID, ended)
	return view, nil
}

func (s *scoringService) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, e := range s.sessions {
		// A held lock means a request is running on the entry.
		if !e.mu.TryLock() {
			continue
		}
		if !e.unsaved && e.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
		e.mu.Unlock()
	}
	return evicted
}

// isLastSubstitution reports whether input repeats the newest ledger record.
func isLastSubstitution(m *models.Match, input SubstitutionInput) bool {
	if len(m.Substitutions) == 0 {
		return false
	}
	rec := m.Substitutions[len(m.Substitutions)-1]
	return rec.Team == input.Team && rec.PlayerOut.ID == input.PlayerOut && rec.PlayerIn.ID == input.PlayerIn
}

// substitutionContext loads the other matches of the fixture group and the
// roster of the substituting team.
func (s *scoringService) substitutionContext(ctx context.Context, match *models.Match, team models.TeamSlot) ([]*models.Match, []*models.Player, error) {
	var (
		siblings []*models.Match
		roster   []*models.Player
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		all, err := s.matchRepo.ListByTournament(gCtx, match.TournamentID)
		if err != nil {
			return fmt.Errorf("failed to list fixture matches: %w", err)
		}
		siblings = scoring.FixtureSiblings(match, all)
		return nil
	})
	g.Go(func() error {
		players, err := s.playerRepo.ListByTeam(gCtx, match.TeamID(team))
		if err != nil {
			return fmt.Errorf("failed to load roster: %w", err)
		}
		roster = players
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return siblings, roster, nil
}

// withSession runs fn against the match session under its lock. When fn asks
// for it, the resulting document is saved and broadcast. A failed save keeps
// the session as fn left it.
func (s *scoringService) withSession(ctx context.Context, matchID string, fn sessionAction) (*SessionView, error) {
	return s.withEntry(ctx, matchID, func(e *sessionEntry) (bool, error) {
		return fn(e.session, e.unsaved)
	})
}

func (s *scoringService) withEntry(ctx context.Context, matchID string, fn func(*sessionEntry) (bool, error)) (*SessionView, error) {
	entry := s.lockEntry(matchID)
	defer entry.mu.Unlock()
	entry.lastUsed = s.now()

	if entry.session == nil {
		match, err := s.matchRepo.GetByID(ctx, matchID)
		if err != nil {
			s.evict(matchID, entry)
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return nil, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
			}
			return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
		}
		entry.session = scoring.NewSession(match, s.defaults)
	}

	persist, err := fn(entry)
	if err != nil {
		return nil, mapScoringError(err)
	}

	// save may drop the session, so the view is taken first.
	view := newSessionView(entry.session)
	if persist {
		rev, err := s.save(ctx, matchID, entry)
		if err != nil {
			return nil, err
		}
		view.Match.Revision = rev
		s.broadcast(live.MessageMatchUpdated, view)
	}
	return view, nil
}

func (s *scoringService) save(ctx context.Context, matchID string, entry *sessionEntry) (int64, error) {
	rev, err := s.matchRepo.Save(ctx, entry.session.Match())
	switch {
	case err == nil:
		entry.session.SetRevision(rev)
		entry.unsaved = false
		return rev, nil
	case errors.Is(err, repositories.ErrMatchRevisionConflict):
		s.logger.Warn("match revision conflict, dropping session", slog.String("match_id", matchID))
		entry.session = nil
		entry.unsaved = false
		s.evict(matchID, entry)
		return 0, fmt.Errorf("%w: match %s", ErrConflict, matchID)
	case errors.Is(err, repositories.ErrMatchNotFound):
		entry.session = nil
		entry.unsaved = false
		s.evict(matchID, entry)
		return 0, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	default:
		entry.unsaved = true
		s.logger.Error("failed to save match", slog.String("match_id", matchID), slog.Any("error", err))
		return 0, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
}

// lockEntry returns the registry entry of a match with its lock held. An
// entry evicted while the caller waited for its lock is skipped, so every
// request of a match in this process runs against the same session.
func (s *scoringService) lockEntry(matchID string) *sessionEntry {
	for {
		s.mu.Lock()
		e, ok := s.sessions[matchID]
		if !ok {
			e = &sessionEntry{}
			s.sessions[matchID] = e
		}
		s.mu.Unlock()

		e.mu.Lock()
		s.mu.Lock()
		current := s.sessions[matchID] == e
		s.mu.Unlock()
		if current {
			return e
		}
		e.mu.Unlock()
	}
}

// evict removes entry from the registry unless it was already replaced.
func (s *scoringService) evict(matchID string, entry *sessionEntry) {
	s.mu.Lock()
	if s.sessions[matchID] == entry {
		delete(s.sessions, matchID)
	}
	s.mu.Unlock()
}

func (s *scoringService) broadcast(msgType string, view *SessionView) {
	if s.broadcaster == nil {
		return
	}
	msg := live.Message{Type: msgType, Payload: view.Scoreboard}
	s.broadcaster.BroadcastToRoom(live.MatchRoom(view.Match.ID), msg)
	if view.Match.TournamentID != "" {
		s.broadcaster.BroadcastToRoom(live.TournamentRoom(view.Match.TournamentID), msg)
	}
}

func (s *scoringService) archiveMatch(ctx context.Context, match *models.Match) {
	doc, err := json.Marshal(match)
	if err != nil {
		s.logger.Error("failed to encode match for archive", slog.String("match_id", match.ID), slog.Any("error", err))
		return
	}
	res, err := s.archive.Put(ctx, storage.MatchKey(match.TournamentID, match.ID), "application/json", bytes.NewReader(doc))
	if err != nil {
		s.logger.Error("failed to archive match", slog.String("match_id", match.ID), slog.Any("error", err))
		return
	}
	s.logger.Info("match archived", slog.String("match_id", match.ID), slog.String("key", res.Key))
}

func newSessionView(sess *scoring.Session) *SessionView {
	m := sess.Match()
	return &SessionView{
		Phase:      sess.Phase(),
		Match:      m,
		Scoreboard: scoring.Summarize(m),
	}
}

func mapScoringError(err error) error {
	switch {
	case errors.Is(err, scoring.ErrMatchEnded):
		return fmt.Errorf("%w: %w", ErrValidationFailed, ErrMatchEnded)
	case errors.Is(err, scoring.ErrInvalidPhase),
		errors.Is(err, scoring.ErrInvalidSide),
		errors.Is(err, scoring.ErrInvalidGame),
		errors.Is(err, scoring.ErrInvalidTeam),
		errors.Is(err, scoring.ErrPlayerNotOnCourt):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return err
}
