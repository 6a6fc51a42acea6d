package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"ZLeader/internal/gameevent"
	"ZLeader/internal/leader"
	"ZLeader/internal/timer"
	"ZLeader/internal/vmath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/leighmacdonald/steamid/v2/steamid"
	"github.com/rs/zerolog"
)

var (
	ErrRoomFull    = errors.New("room full")
	ErrNoPlayer    = errors.New("no such player")
	ErrBadSteamID  = errors.New("invalid steam id")
	ErrNotAlive    = errors.New("player is not alive")
	ErrNoSurface   = errors.New("nothing to ping")
	ErrInvalidTeam = errors.New("invalid team")
)

type RoomConfig struct {
	TickRate float64
	Bots     int
	Leader   leader.Config
	Logger   zerolog.Logger
}

func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		TickRate: TickRate,
		Leader:   leader.DefaultConfig(),
		Logger:   zerolog.Nop(),
	}
}

// Room is one simulated server. Exported fields and the *Locked methods
// require Mu; every other exported method takes it itself. Room also
// implements leader.Host, whose methods are only called by the leader plugin
// while Mu is held.
type Room struct {
	ID      string
	Now     float64
	World   *World
	Players [MaxPlayers]*Player
	Mu      sync.Mutex

	dt        float64
	sched     *timer.Scheduler
	plugin    *leader.Plugin
	aim       *leader.AimResolver
	events    map[string]*gameevent.Descriptor
	resources map[string]struct{}
	backlog   *Backlog
	kills     []EntityID
	serial    uint32
	log       zerolog.Logger
}

func NewRoom(id string, cfg RoomConfig) *Room {
	rate := cfg.TickRate
	if rate <= 0 {
		rate = TickRate
	}
	r := &Room{
		ID:    id,
		World: newWorld(),
		dt:    1.0 / rate,
		sched: timer.NewScheduler(),
		events: map[string]*gameevent.Descriptor{
			"player_ping": gameevent.PlayerPing(PingEventID),
		},
		resources: map[string]struct{}{},
		backlog:   newBacklog(ChatBacklogLen),
		log:       cfg.Logger.With().Str("room", id).Logger(),
	}
	r.aim = leader.NewAimResolver(r, r)
	r.plugin = leader.New(r, r.sched, cfg.Leader, r.log)
	r.plugin.Precache(r)
	buildLevel(r)
	for i := 0; i < cfg.Bots; i++ {
		if _, err := r.connectLocked(fmt.Sprintf("Bot %02d", i+1), 0, true, 0); err != nil {
			r.log.Warn().Err(err).Msg("bot did not fit")
			break
		}
	}
	return r
}

func (r *Room) Plugin() *leader.Plugin { return r.plugin }
func (r *Room) Backlog() *Backlog      { return r.backlog }
func (r *Room) Dt() float64            { return r.dt }

// AddResource records an asset for precache.
func (r *Room) AddResource(path string) {
	r.resources[path] = struct{}{}
}

func (r *Room) Resources() []string {
	out := make([]string, 0, len(r.resources))
	for path := range r.resources {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func (r *Room) Tick() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.Now += r.dt

	r.flushKillsLocked()
	updateMovers(r)
	updatePawns(r, r.dt)
	r.sched.Advance(r.Now)
	expirePings(r)
}

/* ----------------------------- Players ----------------------------- */

// Connect seats a human. sid may be empty; otherwise it must be a SteamID64.
func (r *Room) Connect(name, sid string, flags leader.AdminFlags) (*Player, error) {
	var id steamid.SID64
	if sid != "" {
		parsed, err := steamid.SID64FromString(sid)
		if err != nil || !parsed.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrBadSteamID, sid)
		}
		id = parsed
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.connectLocked(name, id, false, flags)
}

func (r *Room) AddBot(name string) (*Player, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.connectLocked(name, 0, true, 0)
}

func (r *Room) connectLocked(name string, sid steamid.SID64, bot bool, flags leader.AdminFlags) (*Player, error) {
	slot := -1
	for i, p := range r.Players {
		if p == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return nil, ErrRoomFull
	}

	r.serial++
	p := &Player{
		room:    r,
		handle:  leader.NewPlayerHandle(slot, r.serial),
		name:    cleanName(name, slot),
		steamID: sid,
		bot:     bot,
		flags:   flags,
	}
	r.Players[slot] = p
	r.spawnLocked(p, leader.TeamCT)

	r.PrintAll(fmt.Sprintf("%s connected.", p.name))
	r.log.Info().Int("slot", slot).Str("name", p.name).Bool("bot", bot).Msg("player connected")
	return p, nil
}

const maxNameBytes = 32

func cleanName(name string, slot int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("Player %d", slot+1)
	}
	if len(name) > maxNameBytes {
		n := maxNameBytes
		for n > 0 && !utf8.RuneStart(name[n]) {
			n--
		}
		name = name[:n]
	}
	return name
}

func (r *Room) Disconnect(h leader.PlayerHandle) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerLocked(h)
	if p == nil {
		return ErrNoPlayer
	}
	r.plugin.OnPlayerDisconnect(h)
	r.despawnLocked(p)
	r.Players[p.Slot()] = nil

	r.PrintAll(fmt.Sprintf("%s disconnected.", p.name))
	r.log.Info().Int("slot", p.Slot()).Str("name", p.name).Msg("player disconnected")
	return nil
}

// PlayerLocked returns the live player behind h.
func (r *Room) PlayerLocked(h leader.PlayerHandle) (*Player, bool) {
	p := r.playerLocked(h)
	return p, p != nil
}

func (r *Room) playerLocked(h leader.PlayerHandle) *Player {
	slot := h.Slot()
	if !h.Valid() || slot < 0 || slot >= MaxPlayers {
		return nil
	}
	p := r.Players[slot]
	if p == nil || p.handle != h {
		return nil
	}
	return p
}

func (r *Room) HumanCountLocked() int {
	n := 0
	for _, p := range r.Players {
		if p != nil && !p.bot {
			n++
		}
	}
	return n
}

func (r *Room) HumanCount() int {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.HumanCountLocked()
}

// SetInput stores the client's held buttons and view angles.
func (r *Room) SetInput(h leader.PlayerHandle, buttons leader.Buttons, pitch, yaw float64) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerLocked(h)
	if p == nil {
		return ErrNoPlayer
	}
	p.buttons = buttons
	p.eyes = mgl64.Vec3{Clamp(pitch, -89, 89), normalizeYaw(yaw), 0}
	return nil
}

func normalizeYaw(yaw float64) float64 {
	for yaw < 0 {
		yaw += 360
	}
	for yaw >= 360 {
		yaw -= 360
	}
	return yaw
}

// SetTeam moves the player and respawns them on the new side.
func (r *Room) SetTeam(h leader.PlayerHandle, team leader.Team) error {
	if team < leader.TeamUnassigned || team > leader.TeamCT {
		return fmt.Errorf("%w: %d", ErrInvalidTeam, team)
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerLocked(h)
	if p == nil {
		return ErrNoPlayer
	}
	r.spawnLocked(p, team)
	return nil
}

func (r *Room) Respawn(h leader.PlayerHandle) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerLocked(h)
	if p == nil {
		return ErrNoPlayer
	}
	r.spawnLocked(p, p.team)
	return nil
}

// Slay kills the player's pawn. The body stays until the next spawn.
func (r *Room) Slay(h leader.PlayerHandle) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerLocked(h)
	if p == nil {
		return ErrNoPlayer
	}
	p.alive = false
	p.buttons = 0
	return nil
}

func (r *Room) spawnLocked(p *Player, team leader.Team) {
	r.despawnLocked(p)
	p.team = team
	p.buttons = 0
	if !p.playing() {
		return
	}

	origin := spawnPoint(p.Slot(), team)
	yaw := 0.0
	if team == leader.TeamT {
		yaw = 180
	}
	p.eyes = mgl64.Vec3{0, yaw, 0}

	pawn := r.World.NewEntity()
	r.World.SetComponent(pawn, compTransform, &Transform{Origin: origin, Angles: mgl64.Vec3{0, yaw, 0}})
	r.World.SetComponent(pawn, compSceneNode, &SceneNode{})
	r.World.SetComponent(pawn, compModel, &Model{Class: "player"})
	r.World.SetComponent(pawn, compCollider, &Collider{
		Bounds: vmath.Box{
			Min: mgl64.Vec3{-HullHalfWidth, -HullHalfWidth, 0},
			Max: mgl64.Vec3{HullHalfWidth, HullHalfWidth, HullHeight},
		},
		Solid:  true,
		Layers: LayerPlayer,
	})
	r.World.SetComponent(pawn, compPawn, &PawnComponent{Slot: p.Slot()})

	weapon := r.World.NewEntity()
	r.World.SetComponent(weapon, compTransform, &Transform{Origin: origin})
	r.World.SetComponent(weapon, compSceneNode, &SceneNode{Parent: pawn})
	r.World.SetComponent(weapon, compModel, &Model{Class: "weapon_knife"})

	// the visible knife blade, the part that sits in front of the eyes
	blade := r.World.NewEntity()
	r.World.SetComponent(blade, compTransform, &Transform{Origin: origin})
	r.World.SetComponent(blade, compSceneNode, &SceneNode{Parent: weapon})
	r.World.SetComponent(blade, compModel, &Model{Class: "prop_dynamic", KV: leader.KeyValues{"model": "models/weapons/v_knife.vmdl"}})
	r.World.SetComponent(blade, compCollider, &Collider{
		Bounds: vmath.Box{
			Min: mgl64.Vec3{-WeaponSize, -WeaponSize, -WeaponSize},
			Max: mgl64.Vec3{WeaponSize, WeaponSize, WeaponSize},
		},
		Solid:  true,
		Layers: LayerProp,
	})

	r.World.SetComponent(weapon, compWeapon, &WeaponComponent{Owner: pawn, Name: "knife", Parts: []EntityID{blade}})

	p.pawn = pawn
	p.weapons = []EntityID{weapon}
	p.alive = true
	placeWeapons(r, p)
}

func (r *Room) despawnLocked(p *Player) {
	for _, w := range p.weapons {
		r.destroyWeaponLocked(w)
	}
	if p.pawn != 0 {
		r.destroyLocked(p.pawn)
	}
	p.pawn = 0
	p.weapons = nil
	p.alive = false
}

/* ------------------------------- Chat ------------------------------- */

// Chat handles a line typed by a player. Lines starting with / are silent;
// everything else is shown to the server before any command runs.
func (r *Room) Chat(h leader.PlayerHandle, text string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerLocked(h)
	if p == nil {
		return ErrNoPlayer
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !strings.HasPrefix(text, "/") {
		r.PrintAll(fmt.Sprintf("%s: %s", p.name, text))
	}
	r.plugin.HandleChat(p, text)
	return nil
}

// Console runs a line from the server console.
func (r *Room) Console(line string) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.plugin.HandleChat(nil, line)
}

// Drain hands over and clears the player's pending messages.
func (r *Room) Drain(h leader.PlayerHandle) []Outbound {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerLocked(h)
	if p == nil {
		return nil
	}
	out := p.outbox
	p.outbox = nil
	return out
}

/* ------------------------------ Leader ------------------------------ */

func (r *Room) SetConVar(name, value string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.plugin.SetConVar(name, value)
}

func (r *Room) ConVar(name string) (string, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.plugin.ConVar(name)
}

// StartRound respawns everyone on the human side, clears leftover pings and
// fires round_start.
func (r *Room) StartRound() {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	for _, p := range r.Players {
		if p != nil && p.playing() {
			r.spawnLocked(p, leader.TeamCT)
		}
	}
	r.World.ForEach([]ComponentKey{compPing}, func(id EntityID) {
		r.destroyLocked(id)
	})
	r.plugin.OnRoundStart()
	r.log.Info().Float64("now", r.Now).Msg("round started")
}

// PingResult describes what happened to a ping.
type PingResult struct {
	Verdict   leader.PingVerdict
	Entity    EntityID
	Point     mgl64.Vec3
	Delivered int
}

// Ping places a ping where the player looks and broadcasts a player_ping
// event through the leader filter to every human.
func (r *Room) Ping(h leader.PlayerHandle) (PingResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerLocked(h)
	if p == nil {
		return PingResult{}, ErrNoPlayer
	}
	if !p.alive || p.pawn == 0 {
		return PingResult{}, ErrNotAlive
	}
	aim := r.aim.Resolve(p)
	if !aim.Hit {
		return PingResult{}, ErrNoSurface
	}

	ent := r.World.NewEntity()
	r.World.SetComponent(ent, compTransform, &Transform{Origin: aim.Point, Angles: aim.Angles})
	r.World.SetComponent(ent, compSceneNode, &SceneNode{})
	r.World.SetComponent(ent, compModel, &Model{Class: "info_player_ping"})
	r.World.SetComponent(ent, compPing, &PingComponent{Slot: p.Slot(), Expires: r.Now + PingLifetime})

	payload, err := r.encodePingLocked(p.Slot(), ent, aim.Point)
	if err != nil {
		r.destroyLocked(ent)
		return PingResult{}, err
	}

	recipients := r.recipientMaskLocked()
	verdict := r.plugin.PostEventLegacyGameEvent(&recipients, payload)

	res := PingResult{Verdict: verdict, Entity: ent, Point: aim.Point}
	for slot, q := range r.Players {
		if q == nil || recipients&(uint64(1)<<uint(slot)) == 0 {
			continue
		}
		q.deliver(Outbound{
			Kind:  OutboundPing,
			Text:  p.name,
			From:  p.Slot(),
			Point: [3]float64{aim.Point[0], aim.Point[1], aim.Point[2]},
		})
		res.Delivered++
	}
	return res, nil
}

func (r *Room) encodePingLocked(slot int, ent EntityID, point mgl64.Vec3) ([]byte, error) {
	ev := gameevent.New(r.events["player_ping"])
	if err := ev.SetInt("userid", int64(slot)); err != nil {
		return nil, err
	}
	if err := ev.SetInt("entityid", int64(ent)); err != nil {
		return nil, err
	}
	for i, key := range []string{"x", "y", "z"} {
		if err := ev.SetFloat(key, float32(point[i])); err != nil {
			return nil, err
		}
	}
	if err := ev.SetBool("urgent", false); err != nil {
		return nil, err
	}
	ev.Message().ServerTick = int32(r.Now / r.dt)
	return ev.Message().Marshal(), nil
}

func (r *Room) recipientMaskLocked() uint64 {
	var mask uint64
	for slot, p := range r.Players {
		if p != nil && !p.bot {
			mask |= uint64(1) << uint(slot)
		}
	}
	return mask
}

/* -------------------------------- Hub -------------------------------- */

type Hub struct {
	Rooms map[string]*Room
	Mu    sync.Mutex
	cfg   RoomConfig
}

func NewHub(cfg RoomConfig) *Hub { return &Hub{Rooms: map[string]*Room{}, cfg: cfg} }

func (h *Hub) GetRoom(id string) *Room {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	return h.roomLocked(id)
}

func (h *Hub) roomLocked(id string) *Room {
	r, ok := h.Rooms[id]
	if !ok {
		r = NewRoom(id, h.cfg)
		h.Rooms[id] = r
	}
	return r
}

// Join connects a human to the named room, creating it if needed. The hub
// lock is held across the connect so cleanup cannot drop the room in between.
func (h *Hub) Join(id, name, sid string, flags leader.AdminFlags) (*Room, *Player, error) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	r := h.roomLocked(id)
	p, err := r.Connect(name, sid, flags)
	if err != nil {
		return nil, nil, err
	}
	return r, p, nil
}

// Lookup returns an existing room without creating one.
func (h *Hub) Lookup(id string) (*Room, bool) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	r, ok := h.Rooms[id]
	return r, ok
}

func (h *Hub) rooms() []*Room {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	out := make([]*Room, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		out = append(out, r)
	}
	return out
}

// CleanupEmptyRooms drops rooms without humans. Lock order is hub, then room.
func (h *Hub) CleanupEmptyRooms() int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	removed := 0
	for id, r := range h.Rooms {
		if r.HumanCount() == 0 {
			delete(h.Rooms, id)
			removed++
		}
	}
	return removed
}

// Run ticks every room at the configured rate until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	rate := h.cfg.TickRate
	if rate <= 0 {
		rate = TickRate
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, r := range h.rooms() {
				r.Tick()
			}
		}
	}
}
