package game

import (
	"math"

	"ZLeader/internal/leader"
	"ZLeader/internal/vmath"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	runSpeed   = 250.0
	wallHeight = 256.0
)

type brush struct {
	class  string
	origin mgl64.Vec3
	min    mgl64.Vec3
	max    mgl64.Vec3
	solid  bool
	layers uint64
}

var levelBrushes = []brush{
	{"func_brush", mgl64.Vec3{}, mgl64.Vec3{-LevelExtent, -LevelExtent, -16}, mgl64.Vec3{LevelExtent, LevelExtent, 0}, true, LayerSolid},
	{"func_brush", mgl64.Vec3{LevelExtent, 0, 0}, mgl64.Vec3{0, -LevelExtent, 0}, mgl64.Vec3{16, LevelExtent, wallHeight}, true, LayerSolid},
	{"func_brush", mgl64.Vec3{-LevelExtent, 0, 0}, mgl64.Vec3{-16, -LevelExtent, 0}, mgl64.Vec3{0, LevelExtent, wallHeight}, true, LayerSolid},
	{"func_brush", mgl64.Vec3{0, LevelExtent, 0}, mgl64.Vec3{-LevelExtent, 0, 0}, mgl64.Vec3{LevelExtent, 16, wallHeight}, true, LayerSolid},
	{"func_brush", mgl64.Vec3{0, -LevelExtent, 0}, mgl64.Vec3{-LevelExtent, -16, 0}, mgl64.Vec3{LevelExtent, 0, wallHeight}, true, LayerSolid},

	{"prop_physics", mgl64.Vec3{256, 512, 0}, mgl64.Vec3{-32, -32, 0}, mgl64.Vec3{32, 32, 64}, true, LayerProp},
	{"prop_physics", mgl64.Vec3{-256, 640, 0}, mgl64.Vec3{-32, -32, 0}, mgl64.Vec3{32, 32, 64}, true, LayerProp},
	{"prop_physics", mgl64.Vec3{512, -640, 0}, mgl64.Vec3{-32, -32, 0}, mgl64.Vec3{32, 32, 64}, true, LayerProp},
	{"func_breakable", mgl64.Vec3{0, 1024, 0}, mgl64.Vec3{-128, -2, 0}, mgl64.Vec3{128, 2, 128}, true, LayerWindow},

	// never stop aim traces
	{"trigger_multiple", mgl64.Vec3{0, -1024, 0}, mgl64.Vec3{-256, -256, 0}, mgl64.Vec3{256, 256, 128}, false, LayerTrigger},
	{"prop_debris", mgl64.Vec3{128, -1024, 0}, mgl64.Vec3{-8, -8, 0}, mgl64.Vec3{8, 8, 16}, true, LayerDebris},
}

// platformBase is where the moving platform rests at t=0.
var platformBase = mgl64.Vec3{-1024, 1024, 0}

func buildLevel(r *Room) {
	for _, b := range levelBrushes {
		r.addBrush(b)
	}

	platform := r.addBrush(brush{
		"func_movelinear", platformBase,
		mgl64.Vec3{-64, -64, 0}, mgl64.Vec3{64, 64, 16},
		true, LayerSolid,
	})
	r.World.SetComponent(platform, compMover, &Mover{
		Base:      platformBase,
		Axis:      mgl64.Vec3{1, 0, 0},
		Amplitude: 256,
		Period:    8,
	})
}

func (r *Room) addBrush(b brush) EntityID {
	id := r.World.NewEntity()
	r.World.SetComponent(id, compTransform, &Transform{Origin: b.origin})
	r.World.SetComponent(id, compSceneNode, &SceneNode{})
	r.World.SetComponent(id, compModel, &Model{Class: b.class})
	r.World.SetComponent(id, compCollider, &Collider{
		Bounds: vmath.Box{Min: b.min, Max: b.max},
		Solid:  b.solid,
		Layers: b.layers,
	})
	return id
}

// spawnPoint lays slots out in rows of eight, humans west and zombies east.
func spawnPoint(slot int, team leader.Team) mgl64.Vec3 {
	col, row := float64(slot%8), float64(slot/8)
	x := -1536 + col*48
	if team == leader.TeamT {
		x = 1200 + col*48
	}
	return mgl64.Vec3{x, -192 + row*48, 0}
}

func updateMovers(r *Room) {
	r.World.ForEach([]ComponentKey{compMover, compTransform}, func(id EntityID) {
		m := r.World.Mover(id)
		if m.Period <= 0 {
			return
		}
		offset := m.Amplitude * math.Sin(2*math.Pi*r.Now/m.Period)
		tr := r.World.Transform(id)
		r.Teleport(leader.EntityHandle(id), m.Base.Add(m.Axis.Mul(offset)), tr.Angles)
	})
}

// updatePawns walks living pawns along their view yaw and keeps each held
// weapon in front of the eyes.
func updatePawns(r *Room, dt float64) {
	limit := LevelExtent - HullHalfWidth
	for _, p := range r.Players {
		if p == nil || !p.alive || p.pawn == 0 {
			continue
		}
		tr := r.World.Transform(p.pawn)
		if tr == nil {
			continue
		}

		step := 0.0
		if p.buttons&leader.InForward != 0 {
			step += runSpeed * dt
		}
		if p.buttons&leader.InBack != 0 {
			step -= runSpeed * dt
		}
		origin := tr.Origin
		if step != 0 {
			yaw := mgl64.DegToRad(p.eyes[1])
			origin = origin.Add(mgl64.Vec3{math.Cos(yaw), math.Sin(yaw), 0}.Mul(step))
			origin[0] = Clamp(origin[0], -limit, limit)
			origin[1] = Clamp(origin[1], -limit, limit)
		}
		r.Teleport(leader.EntityHandle(p.pawn), origin, mgl64.Vec3{0, p.eyes[1], 0})
		placeWeapons(r, p)
	}
}

func placeWeapons(r *Room, p *Player) {
	tr := r.World.Transform(p.pawn)
	if tr == nil {
		return
	}
	eye := tr.Origin.Add(mgl64.Vec3{0, 0, EyeHeight})
	front := eye.Add(vmath.AngleVectors(p.eyes).Mul(WeaponReach))
	for _, w := range p.weapons {
		r.Teleport(leader.EntityHandle(w), eye, p.eyes)
		data := r.World.WeaponData(w)
		if data == nil {
			continue
		}
		for _, part := range data.Parts {
			r.Teleport(leader.EntityHandle(part), front, p.eyes)
		}
	}
}

func expirePings(r *Room) {
	r.World.ForEach([]ComponentKey{compPing}, func(id EntityID) {
		if r.Now >= r.World.PingData(id).Expires {
			r.destroyLocked(id)
		}
	})
}
