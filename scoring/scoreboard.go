package scoring

import (
	"fmt"

	"github.com/Dosada05/pickleball-league/models"
)

// GameLine is one row of the score grid as shown on displays.
type GameLine struct {
	Game    int    `json:"game"`
	Target  int    `json:"target"`
	Player1 int    `json:"player1"`
	Player2 int    `json:"player2"`
	Winner  string `json:"winner,omitempty"`
}

// Scoreboard carries the values display overlays and feeds derive from a
// match document.
type Scoreboard struct {
	MatchID       string              `json:"matchId"`
	TournamentID  string              `json:"tournamentId"`
	MatchType     models.MatchType    `json:"matchType"`
	Status        models.MatchStatus  `json:"status"`
	Team1Name     string              `json:"team1Name"`
	Team2Name     string              `json:"team2Name"`
	Players       map[string][]string `json:"players"`
	GamesCount    int                 `json:"gamesCount"`
	CurrentGame   int                 `json:"currentGame"`
	Games         []GameLine          `json:"games"`
	Totals        map[models.Side]int `json:"totals"`
	GamesWon      map[models.Side]int `json:"gamesWon"`
	ServingPlayer models.Side         `json:"servingPlayer,omitempty"`
	ServerNumber  int                 `json:"serverNumber,omitempty"`
	Call          string              `json:"call,omitempty"`
	Winner        string              `json:"winner,omitempty"`
	WinnerName    string              `json:"winnerName,omitempty"`
	FinalScore    string              `json:"finalScore,omitempty"`
}

// GameFinished reports whether a side has reached the game target with a
// two point lead.
func GameFinished(m *models.Match, game int) bool {
	target := DefaultPointsPerGame
	if game-1 < len(m.PointsPerGame) {
		target = m.PointsPerGame[game-1]
	}
	p1 := ScoreOf(m.Scores, models.SidePlayer1, game)
	p2 := ScoreOf(m.Scores, models.SidePlayer2, game)
	diff := p1 - p2
	if diff < 0 {
		diff = -diff
	}
	return (p1 >= target || p2 >= target) && diff >= 2
}

// CurrentGame is the first game that is not finished yet, or the last
// configured game when all of them are.
func CurrentGame(m *models.Match) int {
	if m.GamesCount < 1 {
		return 1
	}
	for g := 1; g <= m.GamesCount; g++ {
		if !GameFinished(m, g) {
			return g
		}
	}
	return m.GamesCount
}

// Summarize derives the scoreboard from a match document.
func Summarize(m *models.Match) Scoreboard {
	sb := Scoreboard{
		MatchID:      m.ID,
		TournamentID: m.TournamentID,
		MatchType:    m.MatchType,
		Status:       m.Status,
		Team1Name:    m.Team1Name,
		Team2Name:    m.Team2Name,
		Players: map[string][]string{
			string(models.Team1): playerNames(m.TeamPlayers(models.Team1)),
			string(models.Team2): playerNames(m.TeamPlayers(models.Team2)),
		},
		GamesCount:  m.GamesCount,
		CurrentGame: CurrentGame(m),
		Games:       make([]GameLine, 0, m.GamesCount),
		Totals:      map[models.Side]int{models.SidePlayer1: 0, models.SidePlayer2: 0},
		Winner:      m.Winner,
		WinnerName:  m.WinnerName,
		FinalScore:  m.FinalScore,
	}

	res := CalculateWinner(m)
	sb.GamesWon = res.GamesWon

	for g := 1; g <= m.GamesCount; g++ {
		line := GameLine{
			Game:    g,
			Target:  DefaultPointsPerGame,
			Player1: ScoreOf(m.Scores, models.SidePlayer1, g),
			Player2: ScoreOf(m.Scores, models.SidePlayer2, g),
		}
		if g-1 < len(m.PointsPerGame) {
			line.Target = m.PointsPerGame[g-1]
		}
		if GameFinished(m, g) {
			if line.Player1 > line.Player2 {
				line.Winner = string(models.SidePlayer1)
			} else {
				line.Winner = string(models.SidePlayer2)
			}
		}
		sb.Totals[models.SidePlayer1] += line.Player1
		sb.Totals[models.SidePlayer2] += line.Player2
		sb.Games = append(sb.Games, line)
	}

	if m.Status != models.MatchStatusLive {
		return sb
	}

	serve := ServeStateOf(m)
	sb.ServingPlayer = serve.Server()
	serving := ScoreOf(m.Scores, serve.Server(), sb.CurrentGame)
	receiving := ScoreOf(m.Scores, serve.Server().Other(), sb.CurrentGame)
	switch st := serve.(type) {
	case DoublesServe:
		sb.ServerNumber = st.SideServeCount + 1
		sb.Call = fmt.Sprintf("%d-%d-%d", serving, receiving, sb.ServerNumber)
	default:
		sb.Call = fmt.Sprintf("%d-%d", serving, receiving)
	}
	return sb
}

func playerNames(players []*models.PlayerRef) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.Name)
	}
	return out
}
