package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wfunc/nightfall/models"
)

func table(ids ...string) map[string]*models.Player {
	players := make(map[string]*models.Player, len(ids))
	for _, id := range ids {
		players[id] = &models.Player{ID: id, Name: id, Alive: true}
	}
	return players
}

func TestResolveNight(t *testing.T) {
	tests := []struct {
		name      string
		actions   models.NightActions
		deadFirst string
		want      NightOutcome
		wantDead  string
	}{
		{name: "no kill", actions: models.NightActions{Save: "b"}, want: NightQuiet},
		{name: "kill", actions: models.NightActions{Kill: "b", Save: "c"}, want: NightKilled, wantDead: "b"},
		{name: "saved", actions: models.NightActions{Kill: "b", Save: "b"}, want: NightSaved},
		{name: "dead target", actions: models.NightActions{Kill: "b"}, deadFirst: "b", want: NightQuiet, wantDead: "b"},
		{name: "unknown target", actions: models.NightActions{Kill: "zz"}, want: NightQuiet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := table("a", "b", "c", "d")
			if tt.deadFirst != "" {
				players[tt.deadFirst].Alive = false
			}

			got, _ := ResolveNight(players, tt.actions)
			assert.Equal(t, tt.want, got)

			for id, p := range players {
				assert.Equal(t, id != tt.wantDead, p.Alive, "alive flag of %s", id)
			}
		})
	}
}

func TestNightOutcome_String(t *testing.T) {
	assert.Equal(t, "kill", NightKilled.String())
	assert.Equal(t, "save", NightSaved.String())
}

func vote(players map[string]*models.Player, votes map[string]string) {
	for voter, target := range votes {
		players[voter].VoteFor = target
	}
}

func TestTallyVotes(t *testing.T) {
	t.Run("strict majority ejects", func(t *testing.T) {
		players := table("a", "b", "c", "d", "e")
		vote(players, map[string]string{"b": "a", "c": "a", "d": "a", "e": "b"})
		id, ok := TallyVotes(players)
		assert.True(t, ok)
		assert.Equal(t, "a", id)
	})

	t.Run("three to two", func(t *testing.T) {
		players := table("p1", "p2", "p3", "p4", "p5")
		vote(players, map[string]string{"p2": "p1", "p3": "p1", "p4": "p1", "p1": "p2", "p5": "p2"})
		id, ok := TallyVotes(players)
		assert.True(t, ok)
		assert.Equal(t, "p1", id)
	})

	t.Run("tie", func(t *testing.T) {
		players := table("a", "b", "c", "d")
		vote(players, map[string]string{"c": "a", "d": "a", "a": "b", "b": "b"})
		id, ok := TallyVotes(players)
		assert.False(t, ok)
		assert.Empty(t, id)
	})

	t.Run("no votes", func(t *testing.T) {
		_, ok := TallyVotes(table("a", "b", "c", "d"))
		assert.False(t, ok)
	})

	t.Run("dead voters do not count", func(t *testing.T) {
		players := table("a", "b", "c", "d")
		vote(players, map[string]string{"a": "c", "b": "d", "c": "d"})
		players["b"].Alive = false
		players["c"].Alive = false
		// only a's vote for c counts, but c is dead too
		_, ok := TallyVotes(players)
		assert.False(t, ok)
	})

	t.Run("votes for absent players are ignored", func(t *testing.T) {
		players := table("a", "b", "c")
		vote(players, map[string]string{"a": "gone", "b": "gone", "c": "a"})
		id, ok := TallyVotes(players)
		assert.True(t, ok)
		assert.Equal(t, "a", id)
	})
}

func TestEvaluateWin(t *testing.T) {
	roles := map[string]models.Role{
		"m": models.RoleMurderer,
		"d": models.RoleDetective,
		"o": models.RoleDoctor,
		"c": models.RoleCivilian,
	}

	tests := []struct {
		name string
		dead []string
		want models.Winner
	}{
		{name: "game continues", want: models.WinnerNone},
		{name: "murderer dead", dead: []string{"m"}, want: models.WinnerCitizens},
		{name: "murderer at parity", dead: []string{"d", "o"}, want: models.WinnerMurderer},
		{name: "murderer ahead", dead: []string{"d", "o", "c"}, want: models.WinnerMurderer},
		{name: "one citizen down", dead: []string{"c"}, want: models.WinnerNone},
		{name: "everyone dead", dead: []string{"m", "d", "o", "c"}, want: models.WinnerCitizens},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := table("m", "d", "o", "c")
			for _, id := range tt.dead {
				players[id].Alive = false
			}
			assert.Equal(t, tt.want, EvaluateWin(players, roles))
		})
	}
}

func TestEvaluateWin_EmptyTable(t *testing.T) {
	assert.Equal(t, models.WinnerCitizens, EvaluateWin(map[string]*models.Player{}, nil))
}

func TestAnnouncement(t *testing.T) {
	assert.Equal(t, "citizens_win", Announcement(models.WinnerCitizens))
	assert.Equal(t, "murderer_win", Announcement(models.WinnerMurderer))
	assert.Empty(t, Announcement(models.WinnerNone))
}
