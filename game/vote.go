package game

import (
	"github.com/wfunc/nightfall/models"
)

// Tally counts votes cast by alive players for alive players.
func Tally(players map[string]*models.Player) map[string]int {
	counts := make(map[string]int)
	for _, voter := range players {
		if !voter.Alive || voter.VoteFor == "" {
			continue
		}
		target, ok := players[voter.VoteFor]
		if !ok || !target.Alive {
			continue
		}
		counts[target.ID]++
	}
	return counts
}

// TallyVotes returns the player with the strictly highest tally. ok is false
// when nobody voted or the top tally is shared.
func TallyVotes(players map[string]*models.Player) (ejected string, ok bool) {
	best, tied := 0, false
	for id, n := range Tally(players) {
		switch {
		case n > best:
			best, ejected, tied = n, id, false
		case n == best:
			tied = true
		}
	}
	if best == 0 || tied {
		return "", false
	}
	return ejected, true
}
