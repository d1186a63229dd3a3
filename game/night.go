package game

import (
	"github.com/wfunc/nightfall/models"
)

// NightOutcome is what the room learns at dawn.
type NightOutcome int

const (
	NightQuiet NightOutcome = iota // no kill was attempted
	NightKilled
	NightSaved
)

func (o NightOutcome) String() string {
	switch o {
	case NightKilled:
		return "kill"
	case NightSaved:
		return "save"
	default:
		return "quiet"
	}
}

// ResolveNight applies the murderer's kill unless the doctor saved the same
// player. A kill against a missing or already dead player is ignored.
func ResolveNight(players map[string]*models.Player, actions models.NightActions) (NightOutcome, string) {
	if actions.Kill == "" {
		return NightQuiet, ""
	}
	victim, ok := players[actions.Kill]
	if !ok || !victim.Alive {
		return NightQuiet, ""
	}
	if actions.Save == actions.Kill {
		return NightSaved, victim.ID
	}
	victim.Alive = false
	return NightKilled, victim.ID
}
