package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/pickleball-league/models"
)

func scoresOf(p1, p2 []int) map[models.Side]map[string]int {
	grid := InitScores(nil, len(p1))
	for i := range p1 {
		grid[models.SidePlayer1][GameKey(i+1)] = p1[i]
		grid[models.SidePlayer2][GameKey(i+1)] = p2[i]
	}
	return grid
}

func TestCalculateWinner(t *testing.T) {
	tests := []struct {
		name       string
		p1, p2     []int
		winner     string
		finalScore string
		won1, won2 int
	}{
		{"player1 wins two of three", []int{11, 9, 11}, []int{9, 11, 5}, "player1", "2-1", 2, 1},
		{"player2 sweeps", []int{3, 4}, []int{11, 11}, "player2", "0-2", 0, 2},
		{"equal games is a tie", []int{11, 2}, []int{2, 11}, models.WinnerTie, "1-1", 1, 1},
		{"tied game counts for nobody", []int{7, 11, 0}, []int{7, 3, 0}, "player1", "1-0", 1, 0},
		{"unscored third game still tallied", []int{11, 11, 0}, []int{4, 7, 0}, "player1", "2-0", 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &models.Match{
				GamesCount: len(tt.p1),
				Team1ID:    "t1",
				Team1Name:  "Dinkers",
				Team2ID:    "t2",
				Team2Name:  "Lobsters",
				Scores:     scoresOf(tt.p1, tt.p2),
			}
			res := CalculateWinner(m)
			assert.Equal(t, tt.winner, res.Winner)
			assert.Equal(t, tt.finalScore, res.FinalScore)
			assert.Equal(t, tt.won1, res.GamesWon[models.SidePlayer1])
			assert.Equal(t, tt.won2, res.GamesWon[models.SidePlayer2])
			switch tt.winner {
			case "player1":
				assert.Equal(t, "Dinkers", res.WinnerName)
				assert.Equal(t, "t1", res.WinnerTeam)
			case "player2":
				assert.Equal(t, "Lobsters", res.WinnerName)
			default:
				assert.Empty(t, res.WinnerName)
			}
		})
	}
}
