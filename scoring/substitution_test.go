package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/pickleball-league/models"
)

var fixtureDay = time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

func ref(id string, g models.Gender) *models.PlayerRef {
	return &models.PlayerRef{ID: id, Name: id, Gender: g}
}

func player(id string, g models.Gender) *models.Player {
	return &models.Player{ID: id, TeamID: "home", Name: id, Gender: g}
}

func fixtureMatch(id string, mt models.MatchType, p1t1, p2t1, p1t2, p2t2 *models.PlayerRef) *models.Match {
	day := fixtureDay
	return &models.Match{
		ID:           id,
		TournamentID: "spring",
		MatchType:    mt,
		ScheduledAt:  &day,
		Court:        "3",
		Team1ID:      "home",
		Team1Name:    "Home",
		Team2ID:      "away",
		Team2Name:    "Away",
		Player1Team1: p1t1,
		Player2Team1: p2t1,
		Player1Team2: p1t2,
		Player2Team2: p2t2,
	}
}

func TestSameFixture(t *testing.T) {
	a := fixtureMatch("a", models.MatchTypeMensDoubles, nil, nil, nil, nil)
	b := fixtureMatch("b", models.MatchTypeWomensDoubles, nil, nil, nil, nil)
	assert.True(t, SameFixture(a, b))
	assert.False(t, SameFixture(a, a), "a match is not its own sibling")

	swapped := fixtureMatch("c", models.MatchTypeMixedDoubles, nil, nil, nil, nil)
	swapped.Team1ID, swapped.Team2ID = "away", "home"
	assert.True(t, SameFixture(a, swapped))

	otherDay := fixtureMatch("d", models.MatchTypeMixedDoubles, nil, nil, nil, nil)
	next := fixtureDay.Add(24 * time.Hour)
	otherDay.ScheduledAt = &next
	assert.False(t, SameFixture(a, otherDay))

	otherCourt := fixtureMatch("e", models.MatchTypeMixedDoubles, nil, nil, nil, nil)
	otherCourt.Court = "7"
	assert.False(t, SameFixture(a, otherCourt))

	otherTeam := fixtureMatch("f", models.MatchTypeMixedDoubles, nil, nil, nil, nil)
	otherTeam.Team2ID = "visitors"
	assert.False(t, SameFixture(a, otherTeam))

	assert.Len(t, FixtureSiblings(a, []*models.Match{a, b, swapped, otherDay, otherCourt}), 2)
}

func TestCanTeamMakeSubstitution(t *testing.T) {
	current := fixtureMatch("md", models.MatchTypeMensDoubles, nil, nil, nil, nil)
	sibling := fixtureMatch("ws", models.MatchTypeWomensSingles, nil, nil, nil, nil)
	// The sibling lists the clubs the other way round.
	sibling.Team1ID, sibling.Team2ID = "away", "home"

	require.True(t, CanTeamMakeSubstitution(current, []*models.Match{sibling}, models.Team1))

	sibling.Substitutions = []models.SubstitutionRecord{{Team: models.Team2}}
	assert.False(t, CanTeamMakeSubstitution(current, []*models.Match{sibling}, models.Team1),
		"home substituted as team2 in the sibling")
	assert.True(t, CanTeamMakeSubstitution(current, []*models.Match{sibling}, models.Team2))

	current.Substitutions = []models.SubstitutionRecord{{Team: models.Team2, TeamID: "away"}}
	assert.False(t, CanTeamMakeSubstitution(current, []*models.Match{sibling}, models.Team2))
}

func TestEligibleSubstitutesOverload(t *testing.T) {
	busy := ref("busy", models.GenderMale)
	current := fixtureMatch("ms", models.MatchTypeMensSingles, ref("h1", models.GenderMale), nil, ref("a1", models.GenderMale), nil)
	siblings := []*models.Match{
		fixtureMatch("md", models.MatchTypeMensDoubles, busy, ref("h2", models.GenderMale), nil, nil),
		fixtureMatch("xd", models.MatchTypeMixedDoubles, busy, ref("h3", models.GenderFemale), nil, nil),
	}
	roster := []*models.Player{
		player("h1", models.GenderMale),
		player("busy", models.GenderMale),
		player("h2", models.GenderMale),
		player("fresh", models.GenderMale),
	}

	got := EligibleSubstitutes(current, siblings, roster, current.Player1Team1)
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"h2", "fresh"}, ids)
	assert.NotContains(t, ids, "busy")
	assert.NotContains(t, ids, "h1", "already on court")
}

func TestEligibleSubstitutesMensDoublesCategory(t *testing.T) {
	current := fixtureMatch("md1", models.MatchTypeMensDoubles,
		ref("h1", models.GenderMale), ref("h2", models.GenderMale), ref("a1", models.GenderMale), ref("a2", models.GenderMale))
	siblings := []*models.Match{
		fixtureMatch("md2", models.MatchTypeMensDoubles, ref("h3", models.GenderMale), ref("h4", models.GenderMale), nil, nil),
		fixtureMatch("xd", models.MatchTypeMixedDoubles, ref("h5", models.GenderMale), nil, nil, nil),
	}
	roster := []*models.Player{
		player("h3", models.GenderMale),
		player("h5", models.GenderMale),
		player("w1", models.GenderFemale),
	}

	got := EligibleSubstitutes(current, siblings, roster, current.Player1Team1)
	require.Len(t, got, 1)
	assert.Equal(t, "h5", got[0].ID)
}

func TestEligibleSubstitutesGender(t *testing.T) {
	roster := []*models.Player{
		player("m", models.GenderMale),
		player("f", models.GenderFemale),
	}

	womens := fixtureMatch("ws", models.MatchTypeWomensSingles, ref("x", models.GenderFemale), nil, nil, nil)
	got := EligibleSubstitutes(womens, nil, roster, womens.Player1Team1)
	require.Len(t, got, 1)
	assert.Equal(t, "f", got[0].ID)

	mixed := fixtureMatch("xd", models.MatchTypeMixedDoubles, ref("x", models.GenderMale), ref("y", models.GenderFemale), nil, nil)
	got = EligibleSubstitutes(mixed, nil, roster, mixed.Player1Team1)
	require.Len(t, got, 1)
	assert.Equal(t, "m", got[0].ID)

	got = EligibleSubstitutes(mixed, nil, roster, mixed.Player2Team1)
	require.Len(t, got, 1)
	assert.Equal(t, "f", got[0].ID)
}

func TestReplacePlayer(t *testing.T) {
	m := fixtureMatch("xd", models.MatchTypeMixedDoubles, ref("x", models.GenderMale), ref("y", models.GenderFemale), nil, nil)

	require.NoError(t, ReplacePlayer(m, models.Team1, "y", models.PlayerRef{ID: "z", Gender: models.GenderFemale}))
	assert.Equal(t, "z", m.Player2Team1.ID)
	assert.ErrorIs(t, ReplacePlayer(m, models.Team2, "x", models.PlayerRef{ID: "q"}), ErrPlayerNotOnCourt)
	assert.ErrorIs(t, ReplacePlayer(m, "team3", "x", models.PlayerRef{ID: "q"}), ErrInvalidTeam)
}
