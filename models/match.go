package models

import "time"

type MatchStatus string

const (
	MatchStatusUnset     MatchStatus = ""
	MatchStatusLive      MatchStatus = "live"
	MatchStatusCompleted MatchStatus = "completed"
)

type MatchType string

const (
	MatchTypeMensSingles   MatchType = "mens_singles"
	MatchTypeWomensSingles MatchType = "womens_singles"
	MatchTypeMensDoubles   MatchType = "mens_doubles"
	MatchTypeWomensDoubles MatchType = "womens_doubles"
	MatchTypeMixedDoubles  MatchType = "mixed_doubles"
)

func (t MatchType) Valid() bool {
	switch t {
	case MatchTypeMensSingles, MatchTypeWomensSingles, MatchTypeMensDoubles, MatchTypeWomensDoubles, MatchTypeMixedDoubles:
		return true
	}
	return false
}

// Side is one of the two competing entries of a match.
type Side string

const (
	SidePlayer1 Side = "player1"
	SidePlayer2 Side = "player2"
)

func (s Side) Valid() bool {
	return s == SidePlayer1 || s == SidePlayer2
}

func (s Side) Other() Side {
	if s == SidePlayer1 {
		return SidePlayer2
	}
	return SidePlayer1
}

// TeamSlot identifies a team inside a single match document ("team1" or "team2").
type TeamSlot string

const (
	Team1 TeamSlot = "team1"
	Team2 TeamSlot = "team2"
)

func (t TeamSlot) Valid() bool {
	return t == Team1 || t == Team2
}

// Side returns the scoring side the team plays as.
func (t TeamSlot) Side() Side {
	if t == Team2 {
		return SidePlayer2
	}
	return SidePlayer1
}

const WinnerTie = "tie"

type PlayerRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender Gender `json:"gender,omitempty"`
}

type SubstitutionRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Team      TeamSlot  `json:"team"`
	TeamID    string    `json:"teamId,omitempty"`
	PlayerOut PlayerRef `json:"playerOut"`
	PlayerIn  PlayerRef `json:"playerIn"`
	Game      int       `json:"game"`
}

// Match is the persisted fixture document. Display and feed readers consume
// these fields as-is.
type Match struct {
	ID           string     `json:"id"`
	TournamentID string     `json:"tournamentId"`
	MatchType    MatchType  `json:"matchType"`
	ScheduledAt  *time.Time `json:"scheduledAt,omitempty"`
	Court        string     `json:"court,omitempty"`

	Team1ID   string `json:"team1Id"`
	Team1Name string `json:"team1Name"`
	Team2ID   string `json:"team2Id"`
	Team2Name string `json:"team2Name"`

	Player1Team1 *PlayerRef `json:"player1Team1,omitempty"`
	Player2Team1 *PlayerRef `json:"player2Team1,omitempty"`
	Player1Team2 *PlayerRef `json:"player1Team2,omitempty"`
	Player2Team2 *PlayerRef `json:"player2Team2,omitempty"`

	GamesCount     int                     `json:"gamesCount,omitempty"`
	PointsPerGame  []int                   `json:"pointsPerGame,omitempty"`
	Scores         map[Side]map[string]int `json:"scores,omitempty"`
	ServingPlayer  Side                    `json:"servingPlayer,omitempty"`
	ServeSequence  int                     `json:"serveSequence"`
	TeamServeCount int                     `json:"teamServeCount"`

	Status      MatchStatus `json:"status"`
	StartedAt   *time.Time  `json:"startedAt,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	EndedAt     *time.Time  `json:"endedAt,omitempty"`

	Substitutions []SubstitutionRecord `json:"substitutions,omitempty"`

	Winner     string       `json:"winner,omitempty"`
	WinnerName string       `json:"winnerName,omitempty"`
	WinnerTeam string       `json:"winnerTeam,omitempty"`
	FinalScore string       `json:"finalScore,omitempty"`
	GamesWon   map[Side]int `json:"gamesWon,omitempty"`

	// Revision is the optimistic concurrency token kept alongside the document.
	Revision int64 `json:"-"`
}

// IsDoubles reports whether either side fields a second player.
func (m *Match) IsDoubles() bool {
	return m.Player2Team1 != nil || m.Player2Team2 != nil
}

// TeamID returns the underlying team id for a slot of this match.
func (m *Match) TeamID(slot TeamSlot) string {
	if slot == Team2 {
		return m.Team2ID
	}
	return m.Team1ID
}

func (m *Match) TeamName(slot TeamSlot) string {
	if slot == Team2 {
		return m.Team2Name
	}
	return m.Team1Name
}

// SlotOfTeam returns which slot the given team id occupies in this match.
func (m *Match) SlotOfTeam(teamID string) (TeamSlot, bool) {
	switch {
	case teamID == "":
		return "", false
	case m.Team1ID == teamID:
		return Team1, true
	case m.Team2ID == teamID:
		return Team2, true
	}
	return "", false
}

// TeamPlayers returns the on-court players of a team, skipping empty slots.
func (m *Match) TeamPlayers(slot TeamSlot) []*PlayerRef {
	var first, second *PlayerRef
	if slot == Team2 {
		first, second = m.Player1Team2, m.Player2Team2
	} else {
		first, second = m.Player1Team1, m.Player2Team1
	}
	out := make([]*PlayerRef, 0, 2)
	for _, p := range []*PlayerRef{first, second} {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// OnCourt returns every player currently assigned to a slot of this match.
func (m *Match) OnCourt() []*PlayerRef {
	return append(m.TeamPlayers(Team1), m.TeamPlayers(Team2)...)
}

// HasPlayer reports whether the player id is on court in this match.
func (m *Match) HasPlayer(playerID string) bool {
	for _, p := range m.OnCourt() {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// HasScores reports whether any point has been recorded.
func (m *Match) HasScores() bool {
	for _, games := range m.Scores {
		for _, v := range games {
			if v > 0 {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate it freely.
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	c.ScheduledAt = cloneTime(m.ScheduledAt)
	c.StartedAt = cloneTime(m.StartedAt)
	c.CompletedAt = cloneTime(m.CompletedAt)
	c.EndedAt = cloneTime(m.EndedAt)
	c.Player1Team1 = clonePlayer(m.Player1Team1)
	c.Player2Team1 = clonePlayer(m.Player2Team1)
	c.Player1Team2 = clonePlayer(m.Player1Team2)
	c.Player2Team2 = clonePlayer(m.Player2Team2)
	if m.PointsPerGame != nil {
		c.PointsPerGame = append([]int(nil), m.PointsPerGame...)
	}
	if m.Scores != nil {
		c.Scores = make(map[Side]map[string]int, len(m.Scores))
		for side, games := range m.Scores {
			g := make(map[string]int, len(games))
			for k, v := range games {
				g[k] = v
			}
			c.Scores[side] = g
		}
	}
	if m.Substitutions != nil {
		c.Substitutions = append([]SubstitutionRecord(nil), m.Substitutions...)
	}
	if m.GamesWon != nil {
		c.GamesWon = make(map[Side]int, len(m.GamesWon))
		for k, v := range m.GamesWon {
			c.GamesWon[k] = v
		}
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func clonePlayer(p *PlayerRef) *PlayerRef {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
