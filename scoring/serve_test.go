package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/pickleball-league/models"
)

func TestNextServeDoubles(t *testing.T) {
	s := ServeState(DoublesServe{Side: models.SidePlayer1})

	s = NextServe(s)
	assert.Equal(t, DoublesServe{Side: models.SidePlayer1, SideServeCount: 1}, s)

	s = NextServe(s)
	assert.Equal(t, DoublesServe{Side: models.SidePlayer2, SideServeCount: 0}, s)

	s = NextServe(s)
	assert.Equal(t, DoublesServe{Side: models.SidePlayer2, SideServeCount: 1}, s)

	s = NextServe(s)
	assert.Equal(t, DoublesServe{Side: models.SidePlayer1, SideServeCount: 0}, s, "four changes complete the cycle")
}

func TestNextServeSinglesAlternates(t *testing.T) {
	m := &models.Match{
		Player1Team1:   &models.PlayerRef{ID: "a"},
		Player1Team2:   &models.PlayerRef{ID: "b"},
		ServingPlayer:  models.SidePlayer1,
		TeamServeCount: 1,
	}
	for i := 0; i < 6; i++ {
		before := m.ServingPlayer
		ApplyServe(m, NextServe(ServeStateOf(m)))
		assert.Equal(t, before.Other(), m.ServingPlayer)
		assert.Equal(t, 1, m.TeamServeCount, "singles never touches teamServeCount")
		assert.Equal(t, 0, m.ServeSequence)
	}
}

func TestServeStateOf(t *testing.T) {
	doubles := &models.Match{
		Player1Team1:   &models.PlayerRef{ID: "a"},
		Player2Team1:   &models.PlayerRef{ID: "b"},
		ServingPlayer:  models.SidePlayer2,
		TeamServeCount: 1,
	}
	require.Equal(t, DoublesServe{Side: models.SidePlayer2, SideServeCount: 1}, ServeStateOf(doubles))

	ApplyServe(doubles, NextServe(ServeStateOf(doubles)))
	assert.Equal(t, models.SidePlayer1, doubles.ServingPlayer)
	assert.Equal(t, 0, doubles.TeamServeCount)
	assert.Equal(t, 1, doubles.ServeSequence)

	unset := &models.Match{}
	assert.Equal(t, SinglesServe{Side: models.SidePlayer1}, ServeStateOf(unset))
}
