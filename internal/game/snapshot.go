package game

import (
	"ZLeader/internal/leader"
)

type PlayerView struct {
	Slot    int        `json:"slot"`
	Name    string     `json:"name"`
	SteamID string     `json:"steamid,omitempty"`
	Team    int        `json:"team"`
	Bot     bool       `json:"bot,omitempty"`
	Alive   bool       `json:"alive"`
	Role    string     `json:"role,omitempty"`
	Votes   int        `json:"votes,omitempty"`
	Origin  [3]float64 `json:"origin"`
	Yaw     float64    `json:"yaw"`
}

type MarkerView struct {
	Slot     int        `json:"slot"`
	Letter   string     `json:"letter"`
	Owner    int        `json:"owner"`
	Origin   [3]float64 `json:"origin"`
	Attached bool       `json:"attached"`
}

type PingView struct {
	Slot   int        `json:"slot"`
	Origin [3]float64 `json:"origin"`
}

// Snapshot is the state pushed to clients.
type Snapshot struct {
	Room     string       `json:"room"`
	Now      float64      `json:"now"`
	Required int          `json:"requiredVotes"`
	Players  []PlayerView `json:"players"`
	Markers  []MarkerView `json:"markers"`
	Pings    []PingView   `json:"pings"`
}

func (r *Room) Snapshot() Snapshot {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.SnapshotLocked()
}

func (r *Room) SnapshotLocked() Snapshot {
	reg := r.plugin.Registry()
	snap := Snapshot{
		Room:     r.ID,
		Now:      r.Now,
		Required: reg.RequiredVotes(),
		Players:  []PlayerView{},
		Markers:  []MarkerView{},
		Pings:    []PingView{},
	}

	for _, p := range r.Players {
		if p == nil {
			continue
		}
		view := PlayerView{
			Slot:    p.Slot(),
			Name:    p.name,
			SteamID: p.SteamIDString(),
			Team:    int(p.team),
			Bot:     p.bot,
			Alive:   p.alive,
			Votes:   reg.Votes().Count(p.handle),
			Yaw:     p.eyes[1],
		}
		if p.role != leader.RoleNone {
			view.Role = p.role.String()
		}
		if tr := r.World.Transform(p.pawn); tr != nil {
			view.Origin = tr.Origin
		}
		snap.Players = append(snap.Players, view)
	}

	for _, m := range reg.Markers() {
		origin := m.Origin()
		if tr := r.World.Transform(EntityID(m.Glyph())); tr != nil {
			origin = tr.Origin
		}
		_, attached := r.Parent(m.Glyph())
		snap.Markers = append(snap.Markers, MarkerView{
			Slot:     m.Slot(),
			Letter:   m.Letter(),
			Owner:    m.Owner().Slot(),
			Origin:   origin,
			Attached: attached,
		})
	}

	r.World.ForEach([]ComponentKey{compPing, compTransform}, func(id EntityID) {
		snap.Pings = append(snap.Pings, PingView{
			Slot:   r.World.PingData(id).Slot,
			Origin: r.World.Transform(id).Origin,
		})
	})
	return snap
}
