package game

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/nightfall/models"
)

func playerIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d", i+1)
	}
	return ids
}

func TestAssignRoles_Composition(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for n := MinPlayers; n <= 12; n++ {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			ids := playerIDs(n)
			roles := AssignRoles(ids, rng)
			require.Len(t, roles, n)

			counts := map[models.Role]int{}
			for _, id := range ids {
				r, ok := roles[id]
				require.True(t, ok, "every player gets a role")
				counts[r]++
			}
			assert.Equal(t, 1, counts[models.RoleMurderer])
			assert.Equal(t, 1, counts[models.RoleDetective])
			assert.Equal(t, 1, counts[models.RoleDoctor])
			assert.Equal(t, n-3, counts[models.RoleCivilian])
		})
	}
}

func TestAssignRoles_TooFewPlayers(t *testing.T) {
	for n := 0; n < MinPlayers; n++ {
		assert.Nil(t, AssignRoles(playerIDs(n), nil))
	}
}

func TestAssignRoles_DoesNotReorderInput(t *testing.T) {
	ids := playerIDs(6)
	AssignRoles(ids, rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, playerIDs(6), ids)
}

func TestAssignRoles_EveryPlayerCanBeMurderer(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	ids := playerIDs(5)
	seen := map[string]int{}
	for i := 0; i < 2000; i++ {
		for id, r := range AssignRoles(ids, rng) {
			if r == models.RoleMurderer {
				seen[id]++
			}
		}
	}
	for _, id := range ids {
		// expected 400 each; a biased shuffle lands far outside this band
		assert.InDelta(t, 400, seen[id], 120, "murderer frequency for %s", id)
	}
}

func TestAlignment(t *testing.T) {
	assert.Equal(t, "evil", Alignment(models.RoleMurderer))
	assert.Equal(t, "good", Alignment(models.RoleDetective))
	assert.Equal(t, "good", Alignment(models.RoleDoctor))
	assert.Equal(t, "good", Alignment(models.RoleCivilian))
}
