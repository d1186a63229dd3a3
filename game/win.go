package game

import (
	"github.com/wfunc/nightfall/models"
)

// EvaluateWin checks alive composition. No murderer left means the citizens
// win, which also covers an empty table; otherwise the murderer wins once
// they are at least as many as everyone else.
func EvaluateWin(players map[string]*models.Player, roles map[string]models.Role) models.Winner {
	aliveM, aliveC := 0, 0
	for id, p := range players {
		if !p.Alive {
			continue
		}
		if roles[id] == models.RoleMurderer {
			aliveM++
		} else {
			aliveC++
		}
	}

	switch {
	case aliveM == 0:
		return models.WinnerCitizens
	case aliveM >= aliveC:
		return models.WinnerMurderer
	default:
		return models.WinnerNone
	}
}

// Announcement is the system message code for a winner.
func Announcement(w models.Winner) string {
	switch w {
	case models.WinnerCitizens:
		return "citizens_win"
	case models.WinnerMurderer:
		return "murderer_win"
	}
	return ""
}
