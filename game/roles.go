// Package game holds the rules of a round: role assignment, night
// resolution, vote tallying and win evaluation. Functions here are pure
// over the player map they are given; callers own locking.
package game

import (
	"math/rand/v2"

	"github.com/wfunc/nightfall/models"
)

// MinPlayers is the smallest table that can hold every special role.
const MinPlayers = 4

// specialRoles are dealt in this order before everyone else becomes a civilian.
var specialRoles = []models.Role{
	models.RoleMurderer,
	models.RoleDetective,
	models.RoleDoctor,
}

// AssignRoles deals roles over a uniform permutation of ids. It returns nil
// when there are fewer than MinPlayers ids. A nil rng uses the global source.
func AssignRoles(ids []string, rng *rand.Rand) map[string]models.Role {
	if len(ids) < MinPlayers {
		return nil
	}

	order := make([]string, len(ids))
	copy(order, ids)
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	// Fisher-Yates
	shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	roles := make(map[string]models.Role, len(order))
	for i, id := range order {
		if i < len(specialRoles) {
			roles[id] = specialRoles[i]
			continue
		}
		roles[id] = models.RoleCivilian
	}
	return roles
}

// Alignment is the detective's verdict on a role.
func Alignment(r models.Role) string {
	if r == models.RoleMurderer {
		return "evil"
	}
	return "good"
}

// ActsAtNight reports whether the role submits a night action.
func ActsAtNight(r models.Role) bool {
	switch r {
	case models.RoleMurderer, models.RoleDetective, models.RoleDoctor:
		return true
	}
	return false
}
