package game

import (
	"fmt"
	"strconv"
	"strings"

	"ZLeader/internal/gameevent"
	"ZLeader/internal/leader"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/leighmacdonald/steamid/v2/steamid"
)

// maxHierarchyDepth bounds scene graph walks.
const maxHierarchyDepth = 32

var (
	_ leader.Host   = (*Room)(nil)
	_ leader.Player = (*Player)(nil)
)

func (r *Room) Resolve(h leader.PlayerHandle) (leader.Player, bool) {
	p := r.playerLocked(h)
	if p == nil {
		return nil, false
	}
	return p, true
}

func (r *Room) PlayerBySlot(slot int) (leader.Player, bool) {
	if slot < 0 || slot >= MaxPlayers || r.Players[slot] == nil {
		return nil, false
	}
	return r.Players[slot], true
}

func (r *Room) Connected() []leader.Player {
	out := make([]leader.Player, 0, MaxPlayers)
	for _, p := range r.Players {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Target understands @me, @all, @ct, @t, #<slot>, #<steamid64>, a bare
// SteamID64 and name fragments. An exact name match beats partial ones.
func (r *Room) Target(caller leader.Player, query string, flags leader.TargetFlags) []leader.Player {
	var self *Player
	if caller != nil {
		self = r.playerLocked(caller.Handle())
	}

	candidates, group := r.matchTargets(self, strings.TrimSpace(query))
	if len(candidates) == 0 {
		r.replyTarget(self, "Target not found.")
		return nil
	}
	if flags&leader.TargetNoMultiple != 0 && (group || len(candidates) > 1) {
		r.replyTarget(self, "More than one player matched.")
		return nil
	}

	out := make([]leader.Player, 0, len(candidates))
	reason := ""
	for _, p := range candidates {
		switch {
		case flags&leader.TargetNoSelf != 0 && self != nil && p == self:
			reason = "You cannot target yourself."
		case flags&leader.TargetNoBot != 0 && p.bot:
			reason = "You cannot target bots."
		case flags&leader.TargetNoImmunity != 0 && p.immuneTo(self):
			reason = fmt.Sprintf("%s has immunity.", p.name)
		default:
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		r.replyTarget(self, reason)
		return nil
	}
	return out
}

func (r *Room) matchTargets(self *Player, query string) ([]*Player, bool) {
	if query == "" {
		return nil, false
	}
	switch strings.ToLower(query) {
	case "@me":
		if self == nil {
			return nil, false
		}
		return []*Player{self}, false
	case "@all":
		return r.collect(func(*Player) bool { return true }), true
	case "@ct":
		return r.collect(func(p *Player) bool { return p.team == leader.TeamCT }), true
	case "@t":
		return r.collect(func(p *Player) bool { return p.team == leader.TeamT }), true
	}

	if rest, ok := strings.CutPrefix(query, "#"); ok {
		if slot, err := strconv.Atoi(rest); err == nil && slot >= 0 && slot < MaxPlayers {
			if p := r.Players[slot]; p != nil {
				return []*Player{p}, false
			}
			return nil, false
		}
		query = rest
	}
	if len(query) == 17 {
		if sid, err := steamid.SID64FromString(query); err == nil && sid.Valid() {
			return r.collect(func(p *Player) bool { return p.steamID == sid }), false
		}
	}

	needle := strings.ToLower(query)
	for _, p := range r.Players {
		if p != nil && strings.ToLower(p.name) == needle {
			return []*Player{p}, false
		}
	}
	return r.collect(func(p *Player) bool {
		return strings.Contains(strings.ToLower(p.name), needle)
	}), false
}

func (r *Room) collect(match func(*Player) bool) []*Player {
	var out []*Player
	for _, p := range r.Players {
		if p != nil && match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) replyTarget(self *Player, msg string) {
	if self == nil {
		r.log.Info().Msg(msg)
		return
	}
	r.PrintTo(self.handle, msg)
}

/* ----------------------------- Entities ----------------------------- */

func (r *Room) Spawn(class string, kv leader.KeyValues) (leader.EntityHandle, bool) {
	if class == "" {
		return 0, false
	}
	props := make(leader.KeyValues, len(kv))
	for k, v := range kv {
		props[k] = v
	}
	id := r.World.NewEntity()
	r.World.SetComponent(id, compTransform, &Transform{})
	r.World.SetComponent(id, compSceneNode, &SceneNode{})
	r.World.SetComponent(id, compModel, &Model{Class: class, KV: props})
	return leader.EntityHandle(id), true
}

func (r *Room) Exists(h leader.EntityHandle) bool {
	return h != 0 && r.World.Exists(EntityID(h))
}

// Teleport moves the entity and carries its attachments along.
func (r *Room) Teleport(h leader.EntityHandle, origin, angles mgl64.Vec3) {
	id := EntityID(h)
	tr := r.World.Transform(id)
	if tr == nil {
		return
	}
	delta := origin.Sub(tr.Origin)
	tr.Origin = origin
	tr.Angles = angles
	r.shiftChildren(id, delta, 0)
}

func (r *Room) shiftChildren(id EntityID, delta mgl64.Vec3, depth int) {
	if depth >= maxHierarchyDepth || delta == (mgl64.Vec3{}) {
		return
	}
	for _, child := range r.World.Children(id) {
		if tr := r.World.Transform(child); tr != nil {
			tr.Origin = tr.Origin.Add(delta)
		}
		r.shiftChildren(child, delta, depth+1)
	}
}

// SetParent attaches child to parent. A link that would close a loop is
// ignored.
func (r *Room) SetParent(child, parent leader.EntityHandle) {
	c, p := EntityID(child), EntityID(parent)
	if c == p || !r.World.Exists(c) || !r.World.Exists(p) {
		return
	}
	for cur, depth := p, 0; cur != 0 && depth < maxHierarchyDepth; depth++ {
		if cur == c {
			r.log.Debug().Int64("child", int64(c)).Int64("parent", int64(p)).Msg("refusing cyclic parent")
			return
		}
		node := r.World.SceneNode(cur)
		if node == nil {
			break
		}
		cur = node.Parent
	}

	node := r.World.SceneNode(c)
	if node == nil {
		node = &SceneNode{}
		r.World.SetComponent(c, compSceneNode, node)
	}
	node.Parent = p
}

func (r *Room) Parent(h leader.EntityHandle) (leader.EntityHandle, bool) {
	node := r.World.SceneNode(EntityID(h))
	if node == nil || node.Parent == 0 {
		return 0, false
	}
	return leader.EntityHandle(node.Parent), true
}

// Kill destroys the entity at the start of the next tick.
func (r *Room) Kill(h leader.EntityHandle) {
	if !r.Exists(h) {
		return
	}
	r.kills = append(r.kills, EntityID(h))
}

func (r *Room) Remove(h leader.EntityHandle) {
	if r.Exists(h) {
		r.destroyLocked(EntityID(h))
	}
}

func (r *Room) flushKillsLocked() {
	kills := r.kills
	r.kills = nil
	for _, id := range kills {
		if r.World.Exists(id) {
			r.destroyLocked(id)
		}
	}
}

// destroyLocked removes one entity. Its attachments stay where they are.
func (r *Room) destroyLocked(id EntityID) {
	for _, child := range r.World.Children(id) {
		if node := r.World.SceneNode(child); node != nil {
			node.Parent = 0
		}
	}
	r.World.RemoveEntity(id)
}

// destroyWeaponLocked removes a weapon and the parts it spawned with.
// Anything else attached to them is detached and left in the world.
func (r *Room) destroyWeaponLocked(id EntityID) {
	if w := r.World.WeaponData(id); w != nil {
		for _, part := range w.Parts {
			r.destroyLocked(part)
		}
	}
	r.destroyLocked(id)
}

/* ------------------------------- Chat ------------------------------- */

// PrintAll shows msg to every human and keeps it in the backlog.
func (r *Room) PrintAll(msg string) {
	r.backlog.push(ChatLine{T: r.Now, To: -1, Text: msg})
	for _, p := range r.Players {
		if p != nil && !p.bot {
			p.deliver(Outbound{Kind: OutboundChat, Text: msg, From: -1})
		}
	}
}

func (r *Room) PrintTo(h leader.PlayerHandle, msg string) {
	p := r.playerLocked(h)
	if p == nil {
		return
	}
	r.backlog.push(ChatLine{T: r.Now, To: p.Slot(), Text: msg})
	if !p.bot {
		p.deliver(Outbound{Kind: OutboundChat, Text: msg, From: -1})
	}
}

func (r *Room) EventDescriptor(name string) (*gameevent.Descriptor, bool) {
	d, ok := r.events[name]
	return d, ok
}
