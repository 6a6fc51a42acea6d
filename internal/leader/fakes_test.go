package leader

import (
	"strings"
	"testing"

	"ZLeader/internal/gameevent"
	"ZLeader/internal/timer"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Pawn / Player ---

type fakePawn struct {
	ent     EntityHandle
	alive   bool
	origin  mgl64.Vec3
	eyes    mgl64.Vec3
	buttons Buttons
	weapons []EntityHandle
}

func (p *fakePawn) Entity() EntityHandle    { return p.ent }
func (p *fakePawn) Alive() bool             { return p.alive }
func (p *fakePawn) Origin() mgl64.Vec3      { return p.origin }
func (p *fakePawn) EyeAngles() mgl64.Vec3   { return p.eyes }
func (p *fakePawn) Buttons() Buttons        { return p.buttons }
func (p *fakePawn) Weapons() []EntityHandle { return p.weapons }

type fakePlayer struct {
	h     PlayerHandle
	name  string
	bot   bool
	team  Team
	flags AdminFlags
	role  Role
	pawn  *fakePawn
}

func (p *fakePlayer) Handle() PlayerHandle           { return p.h }
func (p *fakePlayer) Name() string                   { return p.name }
func (p *fakePlayer) IsBot() bool                    { return p.bot }
func (p *fakePlayer) Team() Team                     { return p.team }
func (p *fakePlayer) HasFlags(flags AdminFlags) bool { return p.flags&flags == flags }
func (p *fakePlayer) Role() Role                     { return p.role }
func (p *fakePlayer) SetRole(role Role)              { p.role = role }

func (p *fakePlayer) Pawn() (Pawn, bool) {
	if p.pawn == nil {
		return nil, false
	}
	return p.pawn, true
}

// --- Tracer ---

type MockTracer struct {
	mock.Mock
}

func (m *MockTracer) Trace(start, end mgl64.Vec3, filter TraceFilter) TraceResult {
	args := m.Called(start, end, filter)
	return args.Get(0).(TraceResult)
}

// --- ResourceManifest ---

type MockManifest struct {
	mock.Mock
}

func (m *MockManifest) AddResource(path string) {
	m.Called(path)
}

// --- Host ---

type fakeEntity struct {
	class  string
	kv     KeyValues
	origin mgl64.Vec3
	angles mgl64.Vec3
	parent EntityHandle
}

type fakeHost struct {
	players  []*fakePlayer
	entities map[EntityHandle]*fakeEntity
	nextEnt  EntityHandle
	killed   []EntityHandle
	removed  []EntityHandle
	tracer   Tracer

	broadcast []string
	private   map[PlayerHandle][]string

	pingDesc *gameevent.Descriptor
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		entities: map[EntityHandle]*fakeEntity{},
		private:  map[PlayerHandle][]string{},
		pingDesc: gameevent.PlayerPing(77),
	}
}

func (h *fakeHost) addPlayer(name string, team Team) *fakePlayer {
	slot := len(h.players)
	ent := h.newEntity("player", KeyValues{})
	p := &fakePlayer{
		h:    NewPlayerHandle(slot, uint32(slot+1)),
		name: name,
		team: team,
		pawn: &fakePawn{ent: ent, alive: true, origin: mgl64.Vec3{0, 0, 0}},
	}
	h.players = append(h.players, p)
	return p
}

func (h *fakeHost) disconnect(p *fakePlayer) {
	for i, other := range h.players {
		if other == p {
			h.players = append(h.players[:i], h.players[i+1:]...)
			return
		}
	}
}

func (h *fakeHost) newEntity(class string, kv KeyValues) EntityHandle {
	h.nextEnt++
	h.entities[h.nextEnt] = &fakeEntity{class: class, kv: kv}
	return h.nextEnt
}

func (h *fakeHost) Resolve(ph PlayerHandle) (Player, bool) {
	for _, p := range h.players {
		if p.h == ph {
			return p, true
		}
	}
	return nil, false
}

func (h *fakeHost) PlayerBySlot(slot int) (Player, bool) {
	for _, p := range h.players {
		if p.h.Slot() == slot {
			return p, true
		}
	}
	return nil, false
}

func (h *fakeHost) Connected() []Player {
	out := make([]Player, 0, len(h.players))
	for _, p := range h.players {
		out = append(out, p)
	}
	return out
}

func (h *fakeHost) Target(caller Player, query string, flags TargetFlags) []Player {
	var out []Player
	for _, p := range h.players {
		if !strings.EqualFold(p.name, query) {
			continue
		}
		if flags&TargetNoBot != 0 && p.bot {
			continue
		}
		if flags&TargetNoSelf != 0 && caller != nil && caller.Handle() == p.h {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 && caller != nil {
		h.PrintTo(caller.Handle(), "Target not found.")
	}
	return out
}

func (h *fakeHost) Spawn(class string, kv KeyValues) (EntityHandle, bool) {
	return h.newEntity(class, kv), true
}

func (h *fakeHost) Exists(e EntityHandle) bool {
	_, ok := h.entities[e]
	return ok
}

func (h *fakeHost) Teleport(e EntityHandle, origin, angles mgl64.Vec3) {
	if ent, ok := h.entities[e]; ok {
		ent.origin = origin
		ent.angles = angles
	}
}

func (h *fakeHost) SetParent(child, parent EntityHandle) {
	if ent, ok := h.entities[child]; ok {
		ent.parent = parent
	}
}

func (h *fakeHost) Parent(e EntityHandle) (EntityHandle, bool) {
	ent, ok := h.entities[e]
	if !ok || ent.parent == 0 {
		return 0, false
	}
	return ent.parent, true
}

func (h *fakeHost) Kill(e EntityHandle) {
	if _, ok := h.entities[e]; !ok {
		return
	}
	h.killed = append(h.killed, e)
	delete(h.entities, e)
}

func (h *fakeHost) Remove(e EntityHandle) {
	h.removed = append(h.removed, e)
	delete(h.entities, e)
}

func (h *fakeHost) Trace(start, end mgl64.Vec3, filter TraceFilter) TraceResult {
	if h.tracer == nil {
		return TraceResult{}
	}
	return h.tracer.Trace(start, end, filter)
}

func (h *fakeHost) PrintAll(msg string) {
	h.broadcast = append(h.broadcast, msg)
}

func (h *fakeHost) PrintTo(ph PlayerHandle, msg string) {
	h.private[ph] = append(h.private[ph], msg)
}

func (h *fakeHost) EventDescriptor(name string) (*gameevent.Descriptor, bool) {
	if name == h.pingDesc.Name {
		return h.pingDesc, true
	}
	return nil, false
}

func (h *fakeHost) lastPrivate(ph PlayerHandle) string {
	lines := h.private[ph]
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

func (h *fakeHost) countClass(class string) int {
	n := 0
	for _, e := range h.entities {
		if e.class == class {
			n++
		}
	}
	return n
}

// --- fixture ---

type fixture struct {
	host   *fakeHost
	sched  *timer.Scheduler
	plugin *Plugin
	reg    *Registry
	now    float64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Enabled = true
	host := newFakeHost()
	sched := timer.NewScheduler()
	plugin := New(host, sched, cfg, zerolog.Nop())
	return &fixture{host: host, sched: sched, plugin: plugin, reg: plugin.Registry()}
}

func (f *fixture) tick(n int) {
	for i := 0; i < n; i++ {
		f.now += SampleInterval
		f.sched.Advance(f.now)
	}
}

func (f *fixture) leader(t *testing.T, name string, role Role) (*fakePlayer, *Session) {
	t.Helper()
	p := f.host.addPlayer(name, TeamCT)
	s, err := f.reg.CreateSession(p.h, role)
	require.NoError(t, err)
	return p, s
}
