package game

import (
	"ZLeader/internal/leader"
	"ZLeader/internal/vmath"

	"github.com/go-gl/mathgl/mgl64"
)

type EntityID int64

type ComponentKey string

type World struct {
	nextEntity EntityID
	components map[ComponentKey]map[EntityID]any
}

type Transform struct {
	Origin mgl64.Vec3
	Angles mgl64.Vec3
}

// SceneNode links an entity to the entity it is attached to.
type SceneNode struct {
	Parent EntityID
}

type Model struct {
	Class string
	KV    leader.KeyValues
}

// Collider is an axis-aligned box relative to the entity origin.
type Collider struct {
	Bounds vmath.Box
	Solid  bool
	Layers uint64
	// Blocks restricts which ray layers the collider stops. Zero blocks all.
	Blocks uint64
}

type PawnComponent struct {
	Slot int
}

type WeaponComponent struct {
	Owner EntityID
	Name  string
	Parts []EntityID
}

type PingComponent struct {
	Slot    int
	Expires float64
}

// Mover slides an entity back and forth along Axis.
type Mover struct {
	Base      mgl64.Vec3
	Axis      mgl64.Vec3
	Amplitude float64
	Period    float64
}

const (
	compTransform ComponentKey = "transform"
	compSceneNode ComponentKey = "scene_node"
	compModel     ComponentKey = "model"
	compCollider  ComponentKey = "collider"
	compPawn      ComponentKey = "pawn"
	compWeapon    ComponentKey = "weapon"
	compPing      ComponentKey = "ping"
	compMover     ComponentKey = "mover"
)

func (w *World) Transform(id EntityID) *Transform {
	if v, ok := w.GetComponent(id, compTransform); ok {
		if t, ok := v.(*Transform); ok {
			return t
		}
	}
	return nil
}

func (w *World) SceneNode(id EntityID) *SceneNode {
	if v, ok := w.GetComponent(id, compSceneNode); ok {
		if t, ok := v.(*SceneNode); ok {
			return t
		}
	}
	return nil
}

func (w *World) Model(id EntityID) *Model {
	if v, ok := w.GetComponent(id, compModel); ok {
		if t, ok := v.(*Model); ok {
			return t
		}
	}
	return nil
}

func (w *World) Collider(id EntityID) *Collider {
	if v, ok := w.GetComponent(id, compCollider); ok {
		if t, ok := v.(*Collider); ok {
			return t
		}
	}
	return nil
}

func (w *World) PawnData(id EntityID) *PawnComponent {
	if v, ok := w.GetComponent(id, compPawn); ok {
		if t, ok := v.(*PawnComponent); ok {
			return t
		}
	}
	return nil
}

func (w *World) WeaponData(id EntityID) *WeaponComponent {
	if v, ok := w.GetComponent(id, compWeapon); ok {
		if t, ok := v.(*WeaponComponent); ok {
			return t
		}
	}
	return nil
}

func (w *World) PingData(id EntityID) *PingComponent {
	if v, ok := w.GetComponent(id, compPing); ok {
		if t, ok := v.(*PingComponent); ok {
			return t
		}
	}
	return nil
}

func (w *World) Mover(id EntityID) *Mover {
	if v, ok := w.GetComponent(id, compMover); ok {
		if t, ok := v.(*Mover); ok {
			return t
		}
	}
	return nil
}

func newWorld() *World {
	return &World{
		nextEntity: 0,
		components: make(map[ComponentKey]map[EntityID]any),
	}
}

func (w *World) NewEntity() EntityID {
	w.nextEntity++
	return w.nextEntity
}

func (w *World) SetComponent(id EntityID, key ComponentKey, value any) {
	store, ok := w.components[key]
	if !ok {
		store = make(map[EntityID]any)
		w.components[key] = store
	}
	store[id] = value
}

func (w *World) RemoveComponent(id EntityID, key ComponentKey) {
	if store, ok := w.components[key]; ok {
		delete(store, id)
	}
}

func (w *World) GetComponent(id EntityID, key ComponentKey) (any, bool) {
	if store, ok := w.components[key]; ok {
		val, ok := store[id]
		return val, ok
	}
	return nil, false
}

func (w *World) HasComponent(id EntityID, key ComponentKey) bool {
	if store, ok := w.components[key]; ok {
		_, ok := store[id]
		return ok
	}
	return false
}

func (w *World) RemoveEntity(id EntityID) {
	for _, store := range w.components {
		delete(store, id)
	}
}

func (w *World) ForEach(required []ComponentKey, fn func(EntityID)) {
	if len(required) == 0 {
		return
	}
	first := w.components[required[0]]
	if first == nil {
		return
	}
	for id := range first {
		match := true
		for _, key := range required[1:] {
			if store := w.components[key]; store == nil {
				match = false
				break
			} else if _, ok := store[id]; !ok {
				match = false
				break
			}
		}
		if match {
			fn(id)
		}
	}
}

func (w *World) Exists(id EntityID) bool {
	for _, store := range w.components {
		if _, ok := store[id]; ok {
			return true
		}
	}
	return false
}

// Children lists the entities directly attached to id.
func (w *World) Children(id EntityID) []EntityID {
	var out []EntityID
	for child, v := range w.components[compSceneNode] {
		if node, ok := v.(*SceneNode); ok && node.Parent == id {
			out = append(out, child)
		}
	}
	return out
}
