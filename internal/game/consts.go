package game

const (
	TickRate       = 64.0 // server ticks per second
	Dt             = 1.0 / TickRate
	UpdateRateHz   = 10.0 // per-client WS state pushes
	MaxPlayers     = 64   // slots; one bit each in a ping recipient mask
	ChatBacklogLen = 256
	PingLifetime   = 4.0 // seconds a ping visual stays in the world
	PingEventID    = 212

	EyeHeight     = 64.0
	HullHalfWidth = 16.0
	HullHeight    = 72.0
	WeaponReach   = 12.0 // how far in front of the eyes the held weapon model sits
	WeaponSize    = 2.0
	LevelExtent   = 2048.0
)

// Collision layers. The aim trace masks of the leader markers are expressed
// in the same bit space.
const (
	LayerSolid   uint64 = 1 << 0
	LayerWindow  uint64 = 1 << 1
	LayerTrigger uint64 = 1 << 2
	LayerProp    uint64 = 1 << 3
	LayerDebris  uint64 = 1 << 11
	LayerPlayer  uint64 = 1 << 13
)
