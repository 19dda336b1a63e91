package scoring

import (
	"strconv"

	"github.com/Dosada05/pickleball-league/models"
)

// GameKey is the document key for a 1-based game index ("game1", "game2", ...).
func GameKey(game int) string {
	return "game" + strconv.Itoa(game)
}

// InitScores makes sure both sides have an entry for every configured game.
// Entries that already exist are left untouched.
func InitScores(scores map[models.Side]map[string]int, gamesCount int) map[models.Side]map[string]int {
	if scores == nil {
		scores = make(map[models.Side]map[string]int, 2)
	}
	for _, side := range []models.Side{models.SidePlayer1, models.SidePlayer2} {
		games := scores[side]
		if games == nil {
			games = make(map[string]int, gamesCount)
			scores[side] = games
		}
		for g := 1; g <= gamesCount; g++ {
			if _, ok := games[GameKey(g)]; !ok {
				games[GameKey(g)] = 0
			}
		}
	}
	return scores
}

// ScoreOf returns the points a side holds in a game, 0 when absent.
func ScoreOf(scores map[models.Side]map[string]int, side models.Side, game int) int {
	return scores[side][GameKey(game)]
}

// ApplyDelta adds delta to a side's game score, never going below zero, and
// returns the new value. Scoring past the game target is allowed.
func ApplyDelta(scores map[models.Side]map[string]int, side models.Side, game, delta int) int {
	games := scores[side]
	if games == nil {
		games = make(map[string]int)
		scores[side] = games
	}
	next := games[GameKey(game)] + delta
	if next < 0 {
		next = 0
	}
	games[GameKey(game)] = next
	return next
}
