package leader

import (
	"ZLeader/internal/gameevent"

	"github.com/go-gl/mathgl/mgl64"
)

// PlayerHandle is a weak reference to a connected player. It packs the
// player's slot with a per-connection serial so a handle to a player who left
// never resolves to whoever takes the slot next.
type PlayerHandle uint64

func NewPlayerHandle(slot int, serial uint32) PlayerHandle {
	return PlayerHandle(uint64(serial)<<32 | uint64(uint32(slot)))
}

func (h PlayerHandle) Slot() int      { return int(uint32(h)) }
func (h PlayerHandle) Serial() uint32 { return uint32(h >> 32) }
func (h PlayerHandle) Valid() bool    { return h.Serial() != 0 }

// EntityHandle refers to a host entity. Zero is never a live entity.
type EntityHandle uint64

// Buttons is the pawn's input bitmask.
type Buttons uint64

const (
	InAttack  Buttons = 1 << 0
	InJump    Buttons = 1 << 1
	InDuck    Buttons = 1 << 2
	InForward Buttons = 1 << 3
	InBack    Buttons = 1 << 4
	InUse     Buttons = 1 << 5
	InAttack2 Buttons = 1 << 11
	InReload  Buttons = 1 << 13
	InSpeed   Buttons = 1 << 16
)

// Team ids as the engine reports them. Terrorists are the zombie side and
// may never use leader tools.
type Team int

const (
	TeamUnassigned Team = 0
	TeamSpectator  Team = 1
	TeamT          Team = 2
	TeamCT         Team = 3
)

// AdminFlags is the permission bitmask used by admin-only commands.
type AdminFlags uint32

const (
	AdminKick AdminFlags = 1 << 2
	AdminBan  AdminFlags = 1 << 3
	AdminRoot AdminFlags = 1 << 14
)

// TargetFlags restrict which players a command argument may resolve to.
type TargetFlags uint32

const (
	TargetNoSelf TargetFlags = 1 << iota
	TargetNoBot
	TargetNoMultiple
	TargetNoImmunity
)

// Pawn is the in-world body of a player.
type Pawn interface {
	Entity() EntityHandle
	Alive() bool
	Origin() mgl64.Vec3
	EyeAngles() mgl64.Vec3
	Buttons() Buttons
	// Weapons lists the pawn's equipped weapons. It may be nil when the pawn
	// has no weapon services.
	Weapons() []EntityHandle
}

// Player is the controller side of a connected client.
type Player interface {
	Handle() PlayerHandle
	Name() string
	IsBot() bool
	Team() Team
	HasFlags(flags AdminFlags) bool
	Role() Role
	SetRole(role Role)
	// Pawn returns false when the player has no pawn.
	Pawn() (Pawn, bool)
}

// Players resolves weak handles and enumerates connected players.
type Players interface {
	Resolve(h PlayerHandle) (Player, bool)
	PlayerBySlot(slot int) (Player, bool)
	Connected() []Player
	// Target resolves a command argument to players on behalf of caller.
	// caller is nil for the server console. When nothing matches, the host
	// tells the caller why and returns an empty slice.
	Target(caller Player, query string, flags TargetFlags) []Player
}

// KeyValues is the property set an entity is spawned with.
type KeyValues map[string]any

// Color is an 8-bit RGBA colour.
type Color struct{ R, G, B, A uint8 }

func (c Color) WithAlpha(a uint8) Color { return Color{c.R, c.G, c.B, a} }

// Entities spawns, moves, parents and destroys world objects.
type Entities interface {
	Spawn(class string, kv KeyValues) (EntityHandle, bool)
	Exists(h EntityHandle) bool
	Teleport(h EntityHandle, origin, angles mgl64.Vec3)
	SetParent(child, parent EntityHandle)
	// Parent returns the entity's scene-graph parent, if any.
	Parent(h EntityHandle) (EntityHandle, bool)
	// Kill queues a deferred destroy, the same way a "Kill" input is
	// delivered through the entity IO system. Unknown handles are ignored.
	Kill(h EntityHandle)
	// Remove destroys the entity immediately.
	Remove(h EntityHandle)
}

// TraceFilter mirrors the engine's trace filter fields used by aim traces.
type TraceFilter struct {
	InteractsWith    uint64
	InteractsExclude uint64
	InteractsAs      uint64
	HitSolid         bool
	Ignore           EntityHandle
}

// TraceResult is the outcome of a ray query.
type TraceResult struct {
	Hit    bool
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Entity EntityHandle
}

type Tracer interface {
	Trace(start, end mgl64.Vec3, filter TraceFilter) TraceResult
}

// Chat delivers chat lines.
type Chat interface {
	PrintAll(msg string)
	PrintTo(h PlayerHandle, msg string)
}

// GameEvents exposes the event manager's descriptor table.
type GameEvents interface {
	EventDescriptor(name string) (*gameevent.Descriptor, bool)
}

// ResourceManifest collects assets to precache.
type ResourceManifest interface {
	AddResource(path string)
}

// Scheduler is the timer facility; see package timer.
type Scheduler interface {
	Start(delay float64, fn func() float64)
	Defer(fn func())
}

// Host bundles everything the leader feature needs from the engine.
type Host interface {
	Players
	Entities
	Tracer
	Chat
	GameEvents
}
