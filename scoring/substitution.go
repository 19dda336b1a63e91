package scoring

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/pickleball-league/models"
)

// A player already on court in this many other matches of the fixture cannot
// be brought in.
const maxFixtureAppearances = 2

var (
	ErrInvalidTeam      = errors.New("invalid team")
	ErrPlayerNotOnCourt = errors.New("outgoing player is not on court for this team")
)

// SameFixture reports whether two matches belong to the same fixture group:
// the same tournament, the same pair of teams, the same calendar day and, when
// both record one, the same court. A match is never its own sibling.
func SameFixture(a, b *models.Match) bool {
	if a == nil || b == nil || a.ID == b.ID {
		return false
	}
	if a.TournamentID != b.TournamentID {
		return false
	}
	if a.Team1ID == "" || a.Team2ID == "" {
		return false
	}
	samePair := (a.Team1ID == b.Team1ID && a.Team2ID == b.Team2ID) ||
		(a.Team1ID == b.Team2ID && a.Team2ID == b.Team1ID)
	if !samePair {
		return false
	}
	if a.ScheduledAt != nil && b.ScheduledAt != nil && !sameDay(*a.ScheduledAt, *b.ScheduledAt) {
		return false
	}
	if a.Court != "" && b.Court != "" && a.Court != b.Court {
		return false
	}
	return true
}

// FixtureSiblings keeps the candidates that share m's fixture group.
func FixtureSiblings(m *models.Match, candidates []*models.Match) []*models.Match {
	out := make([]*models.Match, 0, len(candidates))
	for _, c := range candidates {
		if SameFixture(m, c) {
			out = append(out, c)
		}
	}
	return out
}

// CanTeamMakeSubstitution reports whether the team playing in slot has not yet
// substituted anywhere in the fixture group. Ledger entries are matched on the
// underlying team id, so a substitution recorded as team2 in a sibling counts
// against the same club playing as team1 here.
func CanTeamMakeSubstitution(m *models.Match, siblings []*models.Match, slot models.TeamSlot) bool {
	teamID := m.TeamID(slot)
	for _, match := range append([]*models.Match{m}, siblings...) {
		for _, rec := range match.Substitutions {
			if teamID == "" {
				if match == m && rec.Team == slot {
					return false
				}
				continue
			}
			recTeamID := rec.TeamID
			if recTeamID == "" {
				recTeamID = match.TeamID(rec.Team)
			}
			if recTeamID == teamID {
				return false
			}
		}
	}
	return true
}

// RequiredGender returns the gender an incoming player must have. ok is false
// when any gender is accepted.
func RequiredGender(matchType models.MatchType, outgoing *models.PlayerRef) (models.Gender, bool) {
	switch matchType {
	case models.MatchTypeMensSingles, models.MatchTypeMensDoubles:
		return models.GenderMale, true
	case models.MatchTypeWomensSingles, models.MatchTypeWomensDoubles:
		return models.GenderFemale, true
	case models.MatchTypeMixedDoubles:
		if outgoing != nil && outgoing.Gender.Valid() {
			return outgoing.Gender, true
		}
	}
	return "", false
}

// EligibleSubstitutes filters a team roster down to the players who may
// replace outgoing in m:
//   - not on court in m,
//   - not already playing in two or more other matches of the fixture,
//   - for men's doubles, not already in another men's doubles match of the fixture,
//   - of the gender the match category requires.
func EligibleSubstitutes(m *models.Match, siblings []*models.Match, roster []*models.Player, outgoing *models.PlayerRef) []*models.Player {
	gender, genderBound := RequiredGender(m.MatchType, outgoing)

	out := make([]*models.Player, 0, len(roster))
	for _, p := range roster {
		if p == nil || m.HasPlayer(p.ID) {
			continue
		}
		if genderBound && p.Gender != gender {
			continue
		}

		appearances := 0
		sameCategory := false
		for _, s := range siblings {
			if !s.HasPlayer(p.ID) {
				continue
			}
			appearances++
			if m.MatchType == models.MatchTypeMensDoubles && s.MatchType == models.MatchTypeMensDoubles {
				sameCategory = true
			}
		}
		if appearances >= maxFixtureAppearances || sameCategory {
			continue
		}
		out = append(out, p)
	}
	return out
}

// OutgoingPlayer finds the on-court player of a team by id.
func OutgoingPlayer(m *models.Match, slot models.TeamSlot, playerID string) (*models.PlayerRef, error) {
	if !slot.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTeam, slot)
	}
	for _, p := range m.TeamPlayers(slot) {
		if p.ID == playerID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPlayerNotOnCourt, playerID)
}

// ReplacePlayer swaps the outgoing player's slot for incoming.
func ReplacePlayer(m *models.Match, slot models.TeamSlot, outgoingID string, incoming models.PlayerRef) error {
	var slots [2]**models.PlayerRef
	switch slot {
	case models.Team1:
		slots = [2]**models.PlayerRef{&m.Player1Team1, &m.Player2Team1}
	case models.Team2:
		slots = [2]**models.PlayerRef{&m.Player1Team2, &m.Player2Team2}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTeam, slot)
	}
	for _, ptr := range slots {
		if *ptr != nil && (*ptr).ID == outgoingID {
			in := incoming
			*ptr = &in
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrPlayerNotOnCourt, outgoingID)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
