package leader

import (
	"ZLeader/internal/vmath"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	aimEyeHeight   = 64.0
	aimTraceLength = 65536.0
	aimWeaponSkip  = 16.0

	// Casts restart past the player's own weapon at most this many times.
	aimMaxCasts = 32
	// Parent chains deeper than this are treated as cyclic.
	aimMaxParentDepth = 64
)

// Aim trace masks: hit solids, skip trigger-like gameplay volumes.
const (
	aimInteractsWith    uint64 = 0x39312b
	aimInteractsExclude uint64 = 0x48804
	aimInteractsAs      uint64 = 0x40000
)

// AimResult is what a player is looking at. Hit is false when the ray left the
// world without touching anything.
type AimResult struct {
	Hit    bool
	Point  mgl64.Vec3
	Angles mgl64.Vec3
	Entity EntityHandle
}

// AimResolver finds the surface a player aims at, looking through the
// player's own equipped weapons.
type AimResolver struct {
	tracer   Tracer
	entities Entities
}

func NewAimResolver(tracer Tracer, entities Entities) *AimResolver {
	return &AimResolver{tracer: tracer, entities: entities}
}

// Resolve traces from the player's eyes along their view direction.
func (a *AimResolver) Resolve(p Player) AimResult {
	if p == nil {
		return AimResult{}
	}
	pawn, ok := p.Pawn()
	if !ok || pawn == nil {
		return AimResult{}
	}

	start := pawn.Origin().Add(mgl64.Vec3{0, 0, aimEyeHeight})
	forward := vmath.SafeNormalize(vmath.AngleVectors(pawn.EyeAngles()))
	if forward.Len() == 0 {
		return AimResult{}
	}

	weapons := make(map[EntityHandle]struct{})
	for _, w := range pawn.Weapons() {
		if w != 0 && a.entities.Exists(w) {
			weapons[w] = struct{}{}
		}
	}

	filter := TraceFilter{
		InteractsWith:    aimInteractsWith,
		InteractsExclude: aimInteractsExclude,
		InteractsAs:      aimInteractsAs,
		HitSolid:         true,
		Ignore:           pawn.Entity(),
	}

	for cast := 0; cast < aimMaxCasts; cast++ {
		end := start.Add(forward.Mul(aimTraceLength))
		tr := a.tracer.Trace(start, end, filter)
		if !tr.Hit {
			return AimResult{}
		}

		if a.heldBy(tr.Entity, weapons) {
			start = tr.Point.Add(forward.Mul(aimWeaponSkip))
			continue
		}

		angles := vmath.VectorAngles(tr.Normal)
		angles[0] += 90
		return AimResult{Hit: true, Point: tr.Point, Angles: angles, Entity: tr.Entity}
	}

	return AimResult{}
}

// heldBy walks ent's ancestors looking for one of weapons. The entity itself
// is not checked, only what it is attached to.
func (a *AimResolver) heldBy(ent EntityHandle, weapons map[EntityHandle]struct{}) bool {
	if len(weapons) == 0 || ent == 0 {
		return false
	}
	node, ok := a.entities.Parent(ent)
	for depth := 0; ok && node != 0 && depth < aimMaxParentDepth; depth++ {
		if _, held := weapons[node]; held {
			return true
		}
		node, ok = a.entities.Parent(node)
	}
	return false
}
