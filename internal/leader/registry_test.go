package leader

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionSingleHead(t *testing.T) {
	f := newFixture(t)
	alice, _ := f.leader(t, "alice", RoleHead)
	bob := f.host.addPlayer("bob", TeamCT)

	for i := 0; i < 3; i++ {
		_, err := f.reg.CreateSession(bob.h, RoleHead)
		assert.ErrorIs(t, err, ErrHeadExists)
	}
	assert.Len(t, f.reg.Sessions(), 1)
	assert.Equal(t, RoleNone, bob.Role())

	require.True(t, f.reg.DestroySession(alice.h))
	_, err := f.reg.CreateSession(bob.h, RoleHead)
	require.NoError(t, err)
	assert.Equal(t, RoleHead, bob.Role())
	assert.Equal(t, RoleNone, alice.Role())
}

func TestCreateSessionSingleTemporary(t *testing.T) {
	f := newFixture(t)
	f.leader(t, "alice", RoleTemporary)
	bob := f.host.addPlayer("bob", TeamCT)

	_, err := f.reg.CreateSession(bob.h, RoleTemporary)
	assert.ErrorIs(t, err, ErrTemporaryExists)
}

func TestCreateSessionAssistantsAreUnlimited(t *testing.T) {
	f := newFixture(t)
	f.leader(t, "alice", RoleHead)
	f.leader(t, "bob", RoleAssistant)
	f.leader(t, "carol", RoleAssistant)

	assert.Len(t, f.reg.Sessions(), 3)
}

func TestCreateSessionRejects(t *testing.T) {
	f := newFixture(t)
	alice, _ := f.leader(t, "alice", RoleAssistant)
	bob := f.host.addPlayer("bob", TeamCT)

	_, err := f.reg.CreateSession(bob.h, RoleNone)
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = f.reg.CreateSession(bob.h, Role(9))
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.reg.CreateSession(alice.h, RoleHead)
	assert.ErrorIs(t, err, ErrAlreadyLeader)

	_, err = f.reg.CreateSession(NewPlayerHandle(40, 1), RoleHead)
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	assert.Len(t, f.reg.Sessions(), 1)
}

func TestCreateSessionAnnounces(t *testing.T) {
	f := newFixture(t)
	p, _ := f.leader(t, "alice", RoleHead)

	assert.Equal(t, []string{"[ZLeader] alice has become the HEAD Leader!"}, f.host.broadcast)
	assert.Equal(t, []string{
		"[ZLeader] You are currently the new HEAD Leader!",
		"[ZLeader] [+attack2] to put a marker.",
		"[ZLeader] [+attack2] + [+sprint] to clear ALL markers.",
	}, f.host.private[p.h])
	assert.Equal(t, 1, f.sched.Pending())
}

func TestDestroySessionKeepsMarkers(t *testing.T) {
	f := newFixture(t)
	p, s := f.leader(t, "alice", RoleHead)
	require.True(t, s.PlaceMarker())

	assert.True(t, f.reg.DestroySession(p.h))
	assert.False(t, f.reg.DestroySession(p.h))

	assert.False(t, s.Active())
	assert.Len(t, f.reg.Markers(), 1)
	assert.Contains(t, f.host.broadcast, "[ZLeader] alice no longer has the Leader access.")

	f.tick(1)
	assert.Equal(t, 0, f.sched.Pending())
}

func TestRoundStartEndsTemporaryAndClearsMarkers(t *testing.T) {
	f := newFixture(t)
	head, hs := f.leader(t, "alice", RoleHead)
	temp, ts := f.leader(t, "bob", RoleTemporary)
	helper, _ := f.leader(t, "carol", RoleAssistant)

	require.True(t, hs.PlaceMarker())
	require.True(t, hs.PlaceMarker())
	require.True(t, ts.PlaceMarker()) // replaces A
	markers := f.reg.Markers()
	require.Len(t, markers, 2)

	f.plugin.OnRoundStart()

	assert.Empty(t, f.reg.Markers())
	for _, m := range markers {
		assert.False(t, f.host.Exists(m.Glyph()))
		assert.False(t, f.host.Exists(m.Label()))
	}
	assert.Equal(t, RoleNone, temp.Role())
	assert.False(t, ts.Active())
	assert.Equal(t, RoleHead, head.Role())
	assert.Equal(t, RoleAssistant, helper.Role())
	assert.Equal(t, 0, hs.Cursor())
	assert.Len(t, f.reg.Sessions(), 2)
}

func TestRoundStartWithoutSessionsStillClearsMarkers(t *testing.T) {
	f := newFixture(t)
	p, s := f.leader(t, "alice", RoleHead)
	require.True(t, s.PlaceMarker())
	f.reg.DestroySession(p.h)

	f.plugin.OnRoundStart()
	assert.Empty(t, f.reg.Markers())
}

func TestDisconnectForgetsVotes(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		f.host.addPlayer(name, TeamCT)
	}
	a, b, c := f.host.players[0], f.host.players[1], f.host.players[2]

	_, err := f.reg.Vote(a.h, c.h)
	require.NoError(t, err)
	_, err = f.reg.Vote(c.h, b.h)
	require.NoError(t, err)

	f.plugin.OnPlayerDisconnect(c.h)

	assert.Equal(t, 0, f.reg.Votes().Count(c.h))
	assert.Equal(t, 0, f.reg.Votes().Count(b.h))
	_, ok := f.reg.Votes().LastVote(a.h)
	assert.False(t, ok, "a may vote again")
}

func TestCreateMarkerParentsOnNextTick(t *testing.T) {
	f := newFixture(t)
	p := f.host.addPlayer("alice", TeamCT)
	door := f.host.newEntity("func_door", KeyValues{})

	m := f.reg.CreateMarker(p.h, 3, AimResult{
		Hit:    true,
		Point:  mgl64.Vec3{10, 20, 30},
		Angles: mgl64.Vec3{90, 0, 0},
		Entity: door,
	})
	require.NotNil(t, m)
	assert.Equal(t, "D", m.Letter())
	assert.Equal(t, door, m.Parent())

	_, ok := f.host.Parent(m.Label())
	assert.False(t, ok, "parenting waits for the next tick")

	f.tick(1)

	parent, ok := f.host.Parent(m.Label())
	require.True(t, ok)
	assert.Equal(t, m.Glyph(), parent)
	parent, ok = f.host.Parent(m.Glyph())
	require.True(t, ok)
	assert.Equal(t, door, parent)

	glyph := f.host.entities[m.Glyph()]
	assert.Equal(t, "prop_dynamic_override", glyph.class)
	assert.Equal(t, MarkerModel, glyph.kv["model"])
	assert.Equal(t, Color{255, 255, 0, 160}, glyph.kv["rendercolor"])
	assert.Equal(t, mgl64.Vec3{10, 20, 30}, glyph.origin)

	label := f.host.entities[m.Label()]
	assert.Equal(t, "point_worldtext", label.class)
	assert.Equal(t, "D", label.kv["message"])
	assert.InDeltaSlice(t, []float64{40, 20, 30}, label.origin[:], 1e-9)
	assert.Equal(t, mgl64.Vec3{0, 0, 90}, label.angles)
}

func TestCreateMarkerOnMissIsUnparented(t *testing.T) {
	f := newFixture(t)
	p := f.host.addPlayer("alice", TeamCT)

	m := f.reg.CreateMarker(p.h, 0, AimResult{})
	require.NotNil(t, m)
	f.tick(1)

	assert.Equal(t, EntityHandle(0), m.Parent())
	_, ok := f.host.Parent(m.Glyph())
	assert.False(t, ok)
	assert.Equal(t, mgl64.Vec3{}, m.Origin())
}

func TestCreateMarkerParentGoneBeforeTick(t *testing.T) {
	f := newFixture(t)
	p := f.host.addPlayer("alice", TeamCT)
	door := f.host.newEntity("func_door", KeyValues{})

	m := f.reg.CreateMarker(p.h, 0, AimResult{Hit: true, Entity: door})
	require.NotNil(t, m)
	f.host.Kill(door)
	f.tick(1)

	_, ok := f.host.Parent(m.Glyph())
	assert.False(t, ok)
	parent, ok := f.host.Parent(m.Label())
	require.True(t, ok)
	assert.Equal(t, m.Glyph(), parent)
}

func TestCreateMarkerRejectsBadSlot(t *testing.T) {
	f := newFixture(t)
	p := f.host.addPlayer("alice", TeamCT)

	assert.Nil(t, f.reg.CreateMarker(p.h, -1, AimResult{}))
	assert.Nil(t, f.reg.CreateMarker(p.h, MarkerSlots, AimResult{}))
	assert.Empty(t, f.reg.Markers())
}

func TestMarkerRemoveKillsBothEntities(t *testing.T) {
	f := newFixture(t)
	p := f.host.addPlayer("alice", TeamCT)
	m := f.reg.CreateMarker(p.h, 0, AimResult{})
	require.NotNil(t, m)

	m.Remove()
	assert.ElementsMatch(t, []EntityHandle{m.Glyph(), m.Label()}, f.host.killed)
	assert.Nil(t, f.reg.MarkerAt(0))

	// second remove is harmless
	m.Remove()
	assert.Len(t, f.host.killed, 2)
}

func TestRemoveStaleMarkerKeepsSlotOwner(t *testing.T) {
	f := newFixture(t)
	p := f.host.addPlayer("alice", TeamCT)

	old := f.reg.CreateMarker(p.h, 0, AimResult{})
	require.NotNil(t, old)
	f.tick(1)
	f.reg.ClearMarkers()

	live := f.reg.CreateMarker(p.h, 0, AimResult{})
	require.NotNil(t, live)
	f.tick(1)

	old.Remove()
	assert.Same(t, live, f.reg.MarkerAt(0))
	assert.Len(t, f.reg.Markers(), 1)
	assert.True(t, f.host.Exists(live.Glyph()))
	assert.True(t, f.host.Exists(live.Label()))

	live.Remove()
	assert.Nil(t, f.reg.MarkerAt(0))
	assert.False(t, f.host.Exists(live.Glyph()))
}
