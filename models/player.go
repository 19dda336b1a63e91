package models

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Player is a rostered club player who may be put on court or substituted in.
type Player struct {
	ID     string `json:"id"`
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
}

func (p *Player) Ref() PlayerRef {
	return PlayerRef{ID: p.ID, Name: p.Name, Gender: p.Gender}
}
