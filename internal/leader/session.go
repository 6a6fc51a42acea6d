package leader

import "fmt"

const (
	// PaintBudget is how many held samples a press may last and still place
	// a marker on release.
	PaintBudget    = 20
	SampleInterval = 0.01
)

// Session is the live state of one leader: who it is, which marker slot comes
// next, and the attack2 gesture detector.
type Session struct {
	reg    *Registry
	player PlayerHandle
	role   Role

	buttonsPrev Buttons
	buttons     Buttons
	suppressed  bool
	budget      int
	cursor      int

	stopped bool
}

func newSession(reg *Registry, player PlayerHandle, role Role) *Session {
	return &Session{
		reg:    reg,
		player: player,
		role:   role,
		budget: PaintBudget,
	}
}

func (s *Session) Player() PlayerHandle { return s.player }
func (s *Session) Role() Role           { return s.role }
func (s *Session) Budget() int          { return s.budget }
func (s *Session) Cursor() int          { return s.cursor }
func (s *Session) Suppressed() bool     { return s.suppressed }
func (s *Session) Active() bool         { return !s.stopped }

// sample is the repeating timer callback.
func (s *Session) sample() float64 {
	if s.stopped {
		return -1
	}

	p, ok := s.reg.host.Resolve(s.player)
	if !ok || p.Role() == RoleNone {
		s.reg.detach(s)
		return -1
	}

	if !p.Role().CanPlaceMarkers() || p.Team() == TeamT {
		return SampleInterval
	}
	pawn, ok := p.Pawn()
	if !ok || pawn == nil || !pawn.Alive() {
		return SampleInterval
	}

	s.feed(pawn.Buttons())
	return SampleInterval
}

// feed advances the gesture detector by one sample.
//
// attack2 held: every held sample spends one unit of budget unless the press
// began with sprint (clear all markers) or duck (cancel). Once the budget is
// spent the press is inert. attack2 released: place a marker if the press was
// neither cancelled nor held until the budget ran out.
func (s *Session) feed(b Buttons) {
	s.buttonsPrev = s.buttons
	s.buttons = b

	if s.buttons&InAttack2 != 0 {
		if s.budget == 0 {
			return
		}
		if s.buttonsPrev&InAttack2 == 0 {
			if s.buttons&InSpeed != 0 {
				s.ClearAllMarkers()
				s.suppressed = true
			} else if s.buttons&InDuck != 0 {
				s.suppressed = true
			}
		}
		if !s.suppressed && s.budget > 0 {
			s.budget--
		}
		return
	}

	if s.buttonsPrev&InAttack2 != 0 {
		if s.budget > 0 && !s.suppressed {
			s.PlaceMarker()
		}
		s.budget = PaintBudget
		s.suppressed = false
	}
}

// PlaceMarker drops the next marker where the leader is aiming, replacing
// whatever marker held that slot.
func (s *Session) PlaceMarker() bool {
	r := s.reg
	p, ok := r.host.Resolve(s.player)
	if !ok || !p.Role().CanPlaceMarkers() || p.Team() == TeamT {
		return false
	}
	pawn, ok := p.Pawn()
	if !ok || pawn == nil || !pawn.Alive() {
		return false
	}

	if old := r.MarkerAt(s.cursor); old != nil {
		old.Remove()
	}

	aim := r.aim.Resolve(p)
	m := r.CreateMarker(s.player, s.cursor, aim)
	if m == nil {
		return false
	}

	r.host.PrintAll(fmt.Sprintf("* %s: Watch out for %s Marker!", p.Name(), m.Letter()))
	r.log.Debug().
		Str("player", p.Name()).
		Str("marker", m.Letter()).
		Bool("aimed", aim.Hit).
		Msg("marker placed")

	s.cursor = (s.cursor + 1) % MarkerSlots
	return true
}

// ClearAllMarkers removes every marker on the map, not just this leader's,
// and restarts the slot cursor.
func (s *Session) ClearAllMarkers() {
	s.reg.ClearMarkers()
	s.cursor = 0
}
