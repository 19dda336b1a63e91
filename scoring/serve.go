package scoring

import "github.com/Dosada05/pickleball-league/models"

// ServeState is the serve position of a match. It is either SinglesServe or
// DoublesServe; use NextServe to rotate it.
type ServeState interface {
	Server() models.Side
	isServeState()
}

// SinglesServe alternates between the two sides on every change.
type SinglesServe struct {
	Side models.Side
}

// DoublesServe tracks which of its two serves the serving side is on.
// SideServeCount is 0 for the first serve of the turn and 1 for the second.
type DoublesServe struct {
	Side           models.Side
	SideServeCount int
}

func (s SinglesServe) Server() models.Side { return s.Side }
func (s DoublesServe) Server() models.Side { return s.Side }

func (SinglesServe) isServeState() {}
func (DoublesServe) isServeState() {}

// NextServe applies one serve change.
//
// Doubles: first serve moves to second serve on the same side; second serve
// hands the serve to the other side, back on its first serve.
// Singles: the serve simply goes to the other side.
func NextServe(s ServeState) ServeState {
	switch st := s.(type) {
	case DoublesServe:
		if st.SideServeCount == 0 {
			return DoublesServe{Side: st.Side, SideServeCount: 1}
		}
		return DoublesServe{Side: st.Side.Other(), SideServeCount: 0}
	case SinglesServe:
		return SinglesServe{Side: st.Side.Other()}
	}
	return s
}

// ServeStateOf reads the serve position stored on the match.
func ServeStateOf(m *models.Match) ServeState {
	side := m.ServingPlayer
	if !side.Valid() {
		side = models.SidePlayer1
	}
	if m.IsDoubles() {
		count := m.TeamServeCount
		if count != 1 {
			count = 0
		}
		return DoublesServe{Side: side, SideServeCount: count}
	}
	return SinglesServe{Side: side}
}

// ApplyServe writes the serve position back into the match fields.
// serveSequence holds the server number (1 or 2) in doubles and is reset to 0
// in singles.
func ApplyServe(m *models.Match, s ServeState) {
	switch st := s.(type) {
	case DoublesServe:
		m.ServingPlayer = st.Side
		m.TeamServeCount = st.SideServeCount
		m.ServeSequence = st.SideServeCount + 1
	case SinglesServe:
		m.ServingPlayer = st.Side
		m.ServeSequence = 0
	}
}
