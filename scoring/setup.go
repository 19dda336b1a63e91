// Package scoring holds the umpire scoring rules for a single match: setup
// limits, the score grid, serve rotation, substitution eligibility and the
// winner calculation. Nothing here touches storage.
package scoring

const (
	MinGames = 1
	MaxGames = 5

	MinPoints = 1
	MaxPoints = 21

	DefaultPointsPerGame = 11
)

func ClampGamesCount(n int) int {
	return clamp(n, MinGames, MaxGames)
}

func ClampPoints(p int) int {
	return clamp(p, MinPoints, MaxPoints)
}

// ResizePointsPerGame returns a list of exactly n targets. Existing entries are
// kept (clamped), new entries get DefaultPointsPerGame and extras are dropped.
func ResizePointsPerGame(points []int, n int) []int {
	n = ClampGamesCount(n)
	out := make([]int, n)
	for i := range out {
		if i < len(points) {
			out[i] = ClampPoints(points[i])
		} else {
			out[i] = DefaultPointsPerGame
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
