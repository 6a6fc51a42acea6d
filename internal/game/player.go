package game

import (
	"strconv"

	"ZLeader/internal/leader"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/leighmacdonald/steamid/v2/steamid"
)

// Outbound is a message waiting to be delivered to one client.
type Outbound struct {
	Kind  string     `json:"kind"`
	Text  string     `json:"text,omitempty"`
	From  int        `json:"from"`
	Point [3]float64 `json:"point,omitempty"`
}

const (
	OutboundChat = "chat"
	OutboundPing = "ping"
)

// Player is one occupied slot. Its methods implement leader.Player and must
// be called with the room lock held.
type Player struct {
	room    *Room
	handle  leader.PlayerHandle
	name    string
	steamID steamid.SID64
	bot     bool
	team    leader.Team
	flags   leader.AdminFlags
	role    leader.Role

	alive   bool
	buttons leader.Buttons
	eyes    mgl64.Vec3
	pawn    EntityID
	weapons []EntityID

	outbox []Outbound
}

func (p *Player) Handle() leader.PlayerHandle           { return p.handle }
func (p *Player) Slot() int                             { return p.handle.Slot() }
func (p *Player) Name() string                          { return p.name }
func (p *Player) SteamID() steamid.SID64                { return p.steamID }
func (p *Player) IsBot() bool                           { return p.bot }
func (p *Player) Team() leader.Team                     { return p.team }
func (p *Player) Flags() leader.AdminFlags              { return p.flags }
func (p *Player) HasFlags(flags leader.AdminFlags) bool { return p.flags&flags == flags }
func (p *Player) Role() leader.Role                     { return p.role }
func (p *Player) SetRole(role leader.Role)              { p.role = role }
func (p *Player) Alive() bool                           { return p.alive }
func (p *Player) PawnEntity() EntityID                  { return p.pawn }
func (p *Player) EyeAngles() mgl64.Vec3                 { return p.eyes }
func (p *Player) Buttons() leader.Buttons               { return p.buttons }

// SteamIDString is empty for bots.
func (p *Player) SteamIDString() string {
	if !p.steamID.Valid() {
		return ""
	}
	return strconv.FormatUint(uint64(p.steamID), 10)
}

// immuneTo reports whether caller is blocked from targeting p. Root admins
// can only be targeted by other root admins or the console.
func (p *Player) immuneTo(caller *Player) bool {
	if !p.HasFlags(leader.AdminRoot) || caller == nil {
		return false
	}
	return !caller.HasFlags(leader.AdminRoot)
}

func (p *Player) deliver(msg Outbound) {
	p.outbox = append(p.outbox, msg)
}

func (p *Player) playing() bool {
	return p.team == leader.TeamT || p.team == leader.TeamCT
}

// Pawn reports false for spectators and before the first spawn.
func (p *Player) Pawn() (leader.Pawn, bool) {
	if p.pawn == 0 || p.room == nil || !p.room.World.Exists(p.pawn) {
		return nil, false
	}
	return pawnView{p: p}, true
}

type pawnView struct {
	p *Player
}

func (v pawnView) Entity() leader.EntityHandle { return leader.EntityHandle(v.p.pawn) }
func (v pawnView) Alive() bool                 { return v.p.alive }
func (v pawnView) EyeAngles() mgl64.Vec3       { return v.p.eyes }
func (v pawnView) Buttons() leader.Buttons     { return v.p.buttons }

func (v pawnView) Origin() mgl64.Vec3 {
	if tr := v.p.room.World.Transform(v.p.pawn); tr != nil {
		return tr.Origin
	}
	return mgl64.Vec3{}
}

func (v pawnView) Weapons() []leader.EntityHandle {
	if len(v.p.weapons) == 0 {
		return nil
	}
	out := make([]leader.EntityHandle, len(v.p.weapons))
	for i, w := range v.p.weapons {
		out[i] = leader.EntityHandle(w)
	}
	return out
}
