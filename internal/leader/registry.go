package leader

import (
	"fmt"

	"github.com/rs/zerolog"
)

const chatPrefix = "[ZLeader] "

// Registry owns every leader session and every placed marker. All methods
// must be called from the simulation goroutine.
type Registry struct {
	host  Host
	sched Scheduler
	aim   *AimResolver
	cfg   *Config
	log   zerolog.Logger

	sessions []*Session
	markers  []*Marker
	votes    *VoteTally
}

func NewRegistry(host Host, sched Scheduler, cfg *Config, logger zerolog.Logger) *Registry {
	return &Registry{
		host:  host,
		sched: sched,
		aim:   NewAimResolver(host, host),
		cfg:   cfg,
		log:   logger,
		votes: NewVoteTally(),
	}
}

// Sessions returns a snapshot of the live sessions.
func (r *Registry) Sessions() []*Session {
	return append([]*Session(nil), r.sessions...)
}

// Markers returns a snapshot of the placed markers.
func (r *Registry) Markers() []*Marker {
	return append([]*Marker(nil), r.markers...)
}

func (r *Registry) Votes() *VoteTally { return r.votes }

// Session returns h's session, or nil.
func (r *Registry) Session(h PlayerHandle) *Session {
	for _, s := range r.sessions {
		if s.player == h {
			return s
		}
	}
	return nil
}

// HasRole reports whether any session holds role.
func (r *Registry) HasRole(role Role) bool {
	for _, s := range r.sessions {
		if s.role == role {
			return true
		}
	}
	return false
}

// CreateSession grants role to the player behind h.
func (r *Registry) CreateSession(h PlayerHandle, role Role) (*Session, error) {
	if role <= RoleNone || role > RoleAssistant {
		return nil, ErrInvalidRole
	}
	p, ok := r.host.Resolve(h)
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if r.Session(h) != nil || p.Role() != RoleNone {
		return nil, ErrAlreadyLeader
	}
	switch {
	case role == RoleHead && r.HasRole(RoleHead):
		return nil, ErrHeadExists
	case role == RoleTemporary && r.HasRole(RoleTemporary):
		return nil, ErrTemporaryExists
	}

	s := newSession(r, h, role)
	r.sessions = append(r.sessions, s)
	p.SetRole(role)
	r.sched.Start(SampleInterval, s.sample)

	r.host.PrintAll(fmt.Sprintf("%s%s has become the %s!", chatPrefix, p.Name(), role.Title()))
	r.host.PrintTo(h, fmt.Sprintf("%sYou are currently the new %s!", chatPrefix, role.Title()))
	if role.CanPlaceMarkers() {
		r.host.PrintTo(h, chatPrefix+"[+attack2] to put a marker.")
		r.host.PrintTo(h, chatPrefix+"[+attack2] + [+sprint] to clear ALL markers.")
	}

	r.log.Info().Str("player", p.Name()).Stringer("role", role).Msg("leader assigned")
	return s, nil
}

// DestroySession revokes h's leader access. Markers stay where they are.
func (r *Registry) DestroySession(h PlayerHandle) bool {
	for i := 0; i < len(r.sessions); i++ {
		if r.sessions[i].player == h {
			r.destroyAt(i)
			return true
		}
	}
	return false
}

func (r *Registry) destroyAt(i int) {
	s := r.sessions[i]
	r.removeAt(i)
	s.stopped = true

	p, ok := r.host.Resolve(s.player)
	if !ok {
		r.log.Debug().Uint64("handle", uint64(s.player)).Msg("leader session dropped for missing player")
		return
	}
	p.SetRole(RoleNone)
	r.host.PrintAll(fmt.Sprintf("%s%s no longer has the Leader access.", chatPrefix, p.Name()))
	r.log.Info().Str("player", p.Name()).Stringer("role", s.role).Msg("leader revoked")
}

// detach drops a session whose player vanished or lost the role elsewhere.
func (r *Registry) detach(s *Session) {
	s.stopped = true
	for i := 0; i < len(r.sessions); i++ {
		if r.sessions[i] == s {
			r.removeAt(i)
			r.log.Debug().Uint64("handle", uint64(s.player)).Stringer("role", s.role).Msg("leader session detached")
			return
		}
	}
}

func (r *Registry) removeAt(i int) {
	copy(r.sessions[i:], r.sessions[i+1:])
	r.sessions[len(r.sessions)-1] = nil
	r.sessions = r.sessions[:len(r.sessions)-1]
}

// OnRoundStart ends the temporary leader's term and wipes every marker.
func (r *Registry) OnRoundStart() {
	for i := 0; i < len(r.sessions); i++ {
		if r.sessions[i].role == RoleTemporary {
			r.destroyAt(i)
			break
		}
	}
	for _, s := range r.Sessions() {
		s.ClearAllMarkers()
	}
	r.ClearMarkers()
}

// OnPlayerDisconnect tears down the player's session and forgets their
// votes, both given and received.
func (r *Registry) OnPlayerDisconnect(h PlayerHandle) {
	r.DestroySession(h)
	r.votes.Forget(h)
}

// MarkerAt returns the live marker in slot, or nil.
func (r *Registry) MarkerAt(slot int) *Marker {
	for _, m := range r.markers {
		if m.slot == slot {
			return m
		}
	}
	return nil
}

// CreateMarker spawns the glyph and label for slot and registers the marker.
// A missed aim still places the marker, unparented, at the world origin.
func (r *Registry) CreateMarker(owner PlayerHandle, slot int, aim AimResult) *Marker {
	if slot < 0 || slot >= MarkerSlots {
		return nil
	}
	color := SlotColor(slot)

	glyph, ok := r.host.Spawn("prop_dynamic_override", glyphKeyValues(color))
	if !ok {
		r.log.Warn().Int("slot", slot).Msg("marker glyph failed to spawn")
		return nil
	}
	r.host.Teleport(glyph, aim.Point, aim.Angles)

	label, ok := r.host.Spawn("point_worldtext", labelKeyValues(SlotLetter(slot), color))
	if !ok {
		r.log.Warn().Int("slot", slot).Msg("marker label failed to spawn")
		r.host.Kill(glyph)
		return nil
	}
	labelOrigin, labelAngles := labelTransform(aim.Point, aim.Angles)
	r.host.Teleport(label, labelOrigin, labelAngles)

	var parent EntityHandle
	if aim.Hit {
		parent = aim.Entity
	}
	r.sched.Defer(func() {
		if !r.host.Exists(glyph) {
			return
		}
		if r.host.Exists(label) {
			r.host.SetParent(label, glyph)
		}
		if parent != 0 && r.host.Exists(parent) {
			r.host.SetParent(glyph, parent)
		}
	})

	m := &Marker{
		reg:    r,
		slot:   slot,
		glyph:  glyph,
		label:  label,
		owner:  owner,
		origin: aim.Point,
		parent: parent,
	}
	r.markers = append(r.markers, m)
	return m
}

func (r *Registry) dropMarker(m *Marker) {
	for i, other := range r.markers {
		if other == m {
			copy(r.markers[i:], r.markers[i+1:])
			r.markers[len(r.markers)-1] = nil
			r.markers = r.markers[:len(r.markers)-1]
			return
		}
	}
}

// ClearMarkers removes every marker. Remove shrinks the slice under us, so
// the cursor steps back after each removal.
func (r *Registry) ClearMarkers() {
	for i := 0; i < len(r.markers); i++ {
		n := len(r.markers)
		r.markers[i].Remove()
		if len(r.markers) < n {
			i--
		}
	}
}

// HumanCount counts connected players that are not bots.
func (r *Registry) HumanCount() int {
	n := 0
	for _, p := range r.host.Connected() {
		if p != nil && !p.IsBot() {
			n++
		}
	}
	return n
}

// RequiredVotes is the current quorum for a HEAD leader vote.
func (r *Registry) RequiredVotes() int {
	return RequiredVotes(r.HumanCount(), r.cfg.VoteRatio)
}

// VoteResult reports the outcome of a vote.
type VoteResult struct {
	Count    int
	Required int
	Elected  bool
}

// Vote casts voter's vote for target. Reaching the quorum purges target's
// votes and makes them HEAD leader, unless a HEAD leader already exists.
func (r *Registry) Vote(voter, target PlayerHandle) (VoteResult, error) {
	pv, ok := r.host.Resolve(voter)
	if !ok {
		return VoteResult{}, ErrPlayerNotFound
	}
	pt, ok := r.host.Resolve(target)
	if !ok {
		return VoteResult{}, ErrPlayerNotFound
	}

	count, err := r.votes.Cast(voter, target)
	res := VoteResult{Count: count, Required: r.RequiredVotes()}
	if err != nil {
		return res, err
	}

	r.host.PrintAll(fmt.Sprintf("%s%s has voted for %s to become the new leader (%d/%d votes).",
		chatPrefix, pv.Name(), pt.Name(), res.Count, res.Required))

	if res.Count < res.Required {
		return res, nil
	}

	r.votes.Purge(target)
	if _, err := r.CreateSession(target, RoleHead); err != nil {
		r.log.Debug().Err(err).Str("player", pt.Name()).Msg("vote quorum reached without election")
		return res, nil
	}
	res.Elected = true
	r.host.PrintAll(fmt.Sprintf("%s%s has been voted to HEAD Leader!", chatPrefix, pt.Name()))
	r.log.Info().Str("player", pt.Name()).Int("votes", res.Count).Msg("head leader elected")
	return res, nil
}
