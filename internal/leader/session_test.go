package leader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGestureHeldPastBudgetBlocksPlacement(t *testing.T) {
	f := newFixture(t)
	p, s := f.leader(t, "alice", RoleHead)

	p.pawn.buttons = InAttack2
	for i := 1; i <= 25; i++ {
		f.tick(1)
		if i == PaintBudget {
			assert.Equal(t, 0, s.Budget(), "budget after %d held samples", i)
		}
	}
	assert.Equal(t, 0, s.Budget())

	p.pawn.buttons = 0
	f.tick(1)
	assert.Empty(t, f.reg.Markers())
	assert.Equal(t, PaintBudget, s.Budget())
	assert.Equal(t, 0, s.Cursor())
}

func TestGestureShortPressPlacesMarker(t *testing.T) {
	f := newFixture(t)
	p, s := f.leader(t, "alice", RoleHead)

	p.pawn.buttons = InAttack2
	f.tick(5)
	assert.Equal(t, PaintBudget-5, s.Budget())
	assert.Empty(t, f.reg.Markers())

	p.pawn.buttons = 0
	f.tick(1)

	markers := f.reg.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, 0, markers[0].Slot())
	assert.Equal(t, "A", markers[0].Letter())
	assert.Equal(t, p.h, markers[0].Owner())
	assert.Equal(t, 1, s.Cursor())
	assert.Equal(t, PaintBudget, s.Budget())
	assert.Contains(t, f.host.broadcast, "* alice: Watch out for A Marker!")
}

func TestGestureLastBudgetUnitStillPlaces(t *testing.T) {
	f := newFixture(t)
	p, _ := f.leader(t, "alice", RoleHead)

	p.pawn.buttons = InAttack2
	f.tick(PaintBudget - 1)
	p.pawn.buttons = 0
	f.tick(1)

	assert.Len(t, f.reg.Markers(), 1)
}

func TestGestureSprintClearsAllMarkers(t *testing.T) {
	f := newFixture(t)
	head, hs := f.leader(t, "alice", RoleHead)
	temp, _ := f.leader(t, "bob", RoleTemporary)

	for _, p := range []*fakePlayer{head, temp, head} {
		p.pawn.buttons = InAttack2
		f.tick(2)
		p.pawn.buttons = 0
		f.tick(1)
	}
	// bob's first marker took slot A over from alice
	require.Len(t, f.reg.Markers(), 2)
	assert.Equal(t, temp.h, f.reg.MarkerAt(0).Owner())
	assert.Equal(t, 2, hs.Cursor())

	head.pawn.buttons = InAttack2 | InSpeed
	f.tick(1)
	assert.Empty(t, f.reg.Markers(), "sprint clears markers of every leader")
	assert.True(t, hs.Suppressed())
	assert.Equal(t, 0, hs.Cursor())

	head.pawn.buttons = 0
	f.tick(1)
	assert.Empty(t, f.reg.Markers(), "the clearing press never places")
	assert.False(t, hs.Suppressed())
}

func TestGestureDuckCancels(t *testing.T) {
	f := newFixture(t)
	p, s := f.leader(t, "alice", RoleHead)

	p.pawn.buttons = InAttack2 | InDuck
	f.tick(1)
	assert.True(t, s.Suppressed())
	assert.Equal(t, PaintBudget, s.Budget())

	// letting go of duck mid-press does not revive it
	p.pawn.buttons = InAttack2
	f.tick(3)
	assert.Equal(t, PaintBudget, s.Budget())

	p.pawn.buttons = 0
	f.tick(1)
	assert.Empty(t, f.reg.Markers())
	assert.False(t, s.Suppressed())
}

func TestGestureModifierAfterPressIsIgnored(t *testing.T) {
	f := newFixture(t)
	p, _ := f.leader(t, "alice", RoleHead)

	p.pawn.buttons = InAttack2
	f.tick(1)
	p.pawn.buttons = InAttack2 | InDuck
	f.tick(1)
	p.pawn.buttons = 0
	f.tick(1)

	assert.Len(t, f.reg.Markers(), 1)
}

func TestAssistantNeverPlaces(t *testing.T) {
	f := newFixture(t)
	p, s := f.leader(t, "carol", RoleAssistant)

	p.pawn.buttons = InAttack2
	f.tick(3)
	p.pawn.buttons = 0
	f.tick(1)

	assert.Empty(t, f.reg.Markers())
	assert.Equal(t, PaintBudget, s.Budget())
	assert.True(t, s.Active())
	assert.NotContains(t, f.host.private[p.h], chatPrefix+"[+attack2] to put a marker.")
}

func TestSamplerPausesForZombiesAndDeadPawns(t *testing.T) {
	f := newFixture(t)
	p, s := f.leader(t, "alice", RoleHead)

	p.team = TeamT
	p.pawn.buttons = InAttack2
	f.tick(3)
	assert.Equal(t, PaintBudget, s.Budget())

	p.team = TeamCT
	p.pawn.alive = false
	f.tick(3)
	assert.Equal(t, PaintBudget, s.Budget())

	p.pawn.alive = true
	f.tick(1)
	assert.Equal(t, PaintBudget-1, s.Budget())
	assert.True(t, s.Active())
}

func TestSamplerDetachesWhenPlayerLeaves(t *testing.T) {
	f := newFixture(t)
	p, s := f.leader(t, "alice", RoleHead)

	f.host.disconnect(p)
	f.tick(1)

	assert.False(t, s.Active())
	assert.Empty(t, f.reg.Sessions())
	assert.Equal(t, 0, f.sched.Pending())
}

func TestSamplerDetachesWhenRoleClearedElsewhere(t *testing.T) {
	f := newFixture(t)
	p, s := f.leader(t, "alice", RoleHead)

	p.SetRole(RoleNone)
	f.tick(1)

	assert.False(t, s.Active())
	assert.False(t, f.reg.HasRole(RoleHead))
}

func TestMarkerCursorWrapsAndReplaces(t *testing.T) {
	f := newFixture(t)
	p, s := f.leader(t, "alice", RoleHead)

	for i := 0; i < MarkerSlots; i++ {
		require.True(t, s.PlaceMarker())
	}
	require.Len(t, f.reg.Markers(), MarkerSlots)
	assert.Equal(t, 0, s.Cursor())
	first := f.reg.MarkerAt(0)
	require.NotNil(t, first)

	require.True(t, s.PlaceMarker())

	assert.Len(t, f.reg.Markers(), MarkerSlots)
	replaced := f.reg.MarkerAt(0)
	require.NotNil(t, replaced)
	assert.NotEqual(t, first.Glyph(), replaced.Glyph())
	assert.False(t, f.host.Exists(first.Glyph()))
	assert.False(t, f.host.Exists(first.Label()))
	assert.Equal(t, 2*MarkerSlots+2+1, int(f.host.nextEnt), "one pawn, nine glyph+label pairs")
	assert.Equal(t, p.h, replaced.Owner())
}

func TestPlaceMarkerRequiresLivingHuman(t *testing.T) {
	f := newFixture(t)
	p, s := f.leader(t, "alice", RoleHead)

	p.pawn.alive = false
	assert.False(t, s.PlaceMarker())
	p.pawn.alive = true
	p.team = TeamT
	assert.False(t, s.PlaceMarker())
	assert.Empty(t, f.reg.Markers())
	assert.Equal(t, 0, s.Cursor())
}
