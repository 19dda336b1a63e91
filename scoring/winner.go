package scoring

import (
	"fmt"

	"github.com/Dosada05/pickleball-league/models"
)

// Result is the outcome of a match computed from its score grid.
type Result struct {
	Winner     string
	WinnerName string
	WinnerTeam string
	GamesWon   map[models.Side]int
	FinalScore string
}

// CalculateWinner compares both sides game by game over every configured game.
// A tied game counts for neither side. The side that won more games wins the
// match; equal counts produce a tie. Games beyond a decided majority are still
// tallied.
func CalculateWinner(m *models.Match) Result {
	won := map[models.Side]int{models.SidePlayer1: 0, models.SidePlayer2: 0}
	for g := 1; g <= m.GamesCount; g++ {
		p1 := ScoreOf(m.Scores, models.SidePlayer1, g)
		p2 := ScoreOf(m.Scores, models.SidePlayer2, g)
		switch {
		case p1 > p2:
			won[models.SidePlayer1]++
		case p2 > p1:
			won[models.SidePlayer2]++
		}
	}

	res := Result{
		GamesWon:   won,
		FinalScore: fmt.Sprintf("%d-%d", won[models.SidePlayer1], won[models.SidePlayer2]),
	}
	switch {
	case won[models.SidePlayer1] > won[models.SidePlayer2]:
		res.Winner = string(models.SidePlayer1)
		res.WinnerName = m.Team1Name
		res.WinnerTeam = m.Team1ID
	case won[models.SidePlayer2] > won[models.SidePlayer1]:
		res.Winner = string(models.SidePlayer2)
		res.WinnerName = m.Team2Name
		res.WinnerTeam = m.Team2ID
	default:
		res.Winner = models.WinnerTie
	}
	return res
}
