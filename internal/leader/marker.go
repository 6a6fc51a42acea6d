package leader

import (
	"ZLeader/internal/vmath"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	MarkerSlots = 8
	MarkerModel = "models/leader_model/marker.vmdl"

	glyphAlpha  = 160
	labelAlpha  = 255
	labelOffset = 30.0
)

// render settings understood by the host's model entities
const (
	renderModeTransColor = 2
	renderFxPulseSlow    = 1
	solidNone            = 0

	justifyHorizontalCenter = 1
	justifyVerticalCenter   = 1
	reorientAroundUp        = 1
)

type markerSlot struct {
	Letter string
	Color  Color
}

var markerSlots = [MarkerSlots]markerSlot{
	{"A", Color{255, 0, 0, 255}},
	{"B", Color{0, 255, 0, 255}},
	{"C", Color{0, 0, 255, 255}},
	{"D", Color{255, 255, 0, 255}},
	{"E", Color{255, 0, 255, 255}},
	{"F", Color{0, 255, 255, 255}},
	{"G", Color{255, 128, 0, 255}},
	{"H", Color{128, 0, 255, 255}},
}

// SlotLetter returns the letter painted on markers in slot.
func SlotLetter(slot int) string {
	if slot < 0 || slot >= MarkerSlots {
		return "?"
	}
	return markerSlots[slot].Letter
}

// SlotColor returns the opaque colour of slot.
func SlotColor(slot int) Color {
	if slot < 0 || slot >= MarkerSlots {
		return Color{255, 255, 255, 255}
	}
	return markerSlots[slot].Color
}

// Marker is one placed waypoint: a pulsing glyph and a letter label parented
// to it. Two markers are the same marker when they share a slot.
type Marker struct {
	reg    *Registry
	slot   int
	glyph  EntityHandle
	label  EntityHandle
	owner  PlayerHandle
	origin mgl64.Vec3
	parent EntityHandle
}

func (m *Marker) Slot() int            { return m.slot }
func (m *Marker) Letter() string       { return SlotLetter(m.slot) }
func (m *Marker) Glyph() EntityHandle  { return m.glyph }
func (m *Marker) Label() EntityHandle  { return m.label }
func (m *Marker) Owner() PlayerHandle  { return m.owner }
func (m *Marker) Origin() mgl64.Vec3   { return m.origin }
func (m *Marker) Parent() EntityHandle { return m.parent }

func glyphKeyValues(color Color) KeyValues {
	return KeyValues{
		"model":                 MarkerModel,
		"DefaultAnim":           "idle",
		"spawnflags":            256,
		"disablerecieveshadows": 1,
		"disableshadows":        1,
		"rendercolor":           color.WithAlpha(glyphAlpha),
		"rendermode":            renderModeTransColor,
		"renderfx":              renderFxPulseSlow,
		"solid":                 solidNone,
		"skin":                  0,
		"scale":                 1.0,
	}
}

func labelKeyValues(letter string, color Color) KeyValues {
	return KeyValues{
		"message":               letter,
		"font_name":             "Arial Black",
		"font_size":             120,
		"color":                 color.WithAlpha(labelAlpha),
		"justify_horizontal":    justifyHorizontalCenter,
		"justify_vertical":      justifyVerticalCenter,
		"reorient_mode":         reorientAroundUp,
		"world_units_per_pixel": 0.25,
		"enabled":               true,
		"fullbright":            true,
	}
}

// labelTransform places the label in front of the glyph. The glyph stands on
// the surface with its pitch turned 90 degrees, so undoing that turn gives the
// surface normal to push along.
func labelTransform(origin, angles mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	upright := angles.Sub(mgl64.Vec3{90, 0, 0})
	forward := vmath.AngleVectors(upright)
	return origin.Add(forward.Mul(labelOffset)), mgl64.Vec3{0, 0, 90}
}

// Remove kills both visual entities on the next IO pass and drops the marker
// from the registry. Removing a marker that is no longer registered only
// re-issues the kills, which the host ignores for dead entities; the marker
// now holding the same slot is left alone.
func (m *Marker) Remove() {
	ents := m.reg.host
	if ents.Exists(m.glyph) {
		ents.Kill(m.glyph)
	}
	if ents.Exists(m.label) {
		ents.Kill(m.label)
	}
	m.reg.dropMarker(m)
}
