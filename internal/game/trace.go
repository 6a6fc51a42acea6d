package game

import (
	"ZLeader/internal/leader"
	"ZLeader/internal/vmath"

	"github.com/go-gl/mathgl/mgl64"
)

// Trace casts a segment against every collider in the world and reports the
// nearest one the filter accepts.
func (r *Room) Trace(start, end mgl64.Vec3, filter leader.TraceFilter) leader.TraceResult {
	bestFrac := 2.0
	var best leader.TraceResult

	r.World.ForEach([]ComponentKey{compCollider, compTransform}, func(id EntityID) {
		if leader.EntityHandle(id) == filter.Ignore {
			return
		}
		col := r.World.Collider(id)
		if !accepts(col, filter) {
			return
		}
		box := col.Bounds.Translate(r.World.Transform(id).Origin)
		frac, normal, ok := vmath.RayBox(start, end, box)
		if !ok {
			return
		}
		// map order is random; ties go to the older entity
		if frac < bestFrac || (frac == bestFrac && leader.EntityHandle(id) < best.Entity) {
			bestFrac = frac
			best = leader.TraceResult{
				Hit:    true,
				Point:  start.Add(end.Sub(start).Mul(frac)),
				Normal: normal,
				Entity: leader.EntityHandle(id),
			}
		}
	})
	return best
}

func accepts(col *Collider, f leader.TraceFilter) bool {
	if f.HitSolid && !col.Solid {
		return false
	}
	if col.Layers&f.InteractsExclude != 0 {
		return false
	}
	if f.InteractsWith != 0 && col.Layers&f.InteractsWith == 0 {
		return false
	}
	if col.Blocks != 0 && f.InteractsAs != 0 && col.Blocks&f.InteractsAs == 0 {
		return false
	}
	return true
}
