// Package leader implements the zombie-escape leader feature: voting or
// appointing leaders, the leader marker gesture and marker lifecycle, and the
// ping filter that keeps pings to leaders while one is around.
//
// The package never talks to the engine directly. Everything it needs is
// behind the Host and Scheduler interfaces, and every method must be called
// from the simulation goroutine.
package leader

import (
	"fmt"
	"strings"

	"ZLeader/internal/gameevent"

	"github.com/rs/zerolog"
)

const pingEventName = "player_ping"

// Plugin wires the leader feature to the host callbacks.
type Plugin struct {
	host   Host
	cfg    *Config
	log    zerolog.Logger
	reg    *Registry
	filter *PingFilter
	cmds   *Commands
}

func New(host Host, sched Scheduler, cfg Config, logger zerolog.Logger) *Plugin {
	c := SanitizeConfig(cfg)
	logger = logger.With().Str("component", "leader").Logger()
	reg := NewRegistry(host, sched, &c, logger)
	return &Plugin{
		host:   host,
		cfg:    &c,
		log:    logger,
		reg:    reg,
		filter: NewPingFilter(reg, host, &c),
		cmds:   NewCommands(reg, host),
	}
}

func (p *Plugin) Registry() *Registry { return p.reg }
func (p *Plugin) Commands() *Commands { return p.cmds }
func (p *Plugin) Config() Config      { return *p.cfg }

// SetConVar updates one of the leader convars from its string form.
func (p *Plugin) SetConVar(name, value string) error {
	cv, ok := conVars[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConVar, name)
	}
	next := *p.cfg
	if err := cv.set(&next, value); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*p.cfg = SanitizeConfig(next)
	p.log.Info().Str("convar", name).Str("value", cv.get(p.cfg)).Msg("convar changed")
	return nil
}

// ConVar returns the current value of a leader convar.
func (p *Plugin) ConVar(name string) (string, error) {
	cv, ok := conVars[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownConVar, name)
	}
	return cv.get(p.cfg), nil
}

// Precache declares the marker model.
func (p *Plugin) Precache(manifest ResourceManifest) {
	manifest.AddResource(MarkerModel)
}

// OnRoundStart is the round_start event handler.
func (p *Plugin) OnRoundStart() {
	p.reg.OnRoundStart()
}

// OnPlayerDisconnect must run while h still resolves so the revocation can be
// announced by name.
func (p *Plugin) OnPlayerDisconnect(h PlayerHandle) {
	p.reg.OnPlayerDisconnect(h)
}

// PostEventLegacyGameEvent inspects a legacy game event before it is sent to
// the clients in *recipients. Only player_ping events are touched.
func (p *Plugin) PostEventLegacyGameEvent(recipients *uint64, payload []byte) PingVerdict {
	if !p.cfg.Enabled {
		return PingPassed
	}

	desc, ok := p.host.EventDescriptor(pingEventName)
	if !ok {
		return PingPassed
	}
	msg, err := gameevent.Unmarshal(payload)
	if err != nil {
		p.log.Debug().Err(err).Msg("undecodable legacy game event")
		return PingPassed
	}
	if msg.ID != desc.ID {
		return PingPassed
	}

	ping := Ping{Slot: -1}
	if ev, err := gameevent.Bind(desc, msg); err == nil {
		if slot, err := ev.PlayerSlot("userid"); err == nil {
			ping.Slot = slot
		}
		if ent, err := ev.Int("entityid"); err == nil && ent > 0 {
			ping.Entity = EntityHandle(ent)
		}
	} else {
		p.log.Debug().Err(err).Msg("player_ping does not match descriptor")
	}

	verdict := p.filter.Filter(ping, recipients)
	p.log.Debug().Int("slot", ping.Slot).Stringer("verdict", verdict).Msg("ping filtered")
	return verdict
}

// HandleChat runs a chat line starting with ! or / as a leader command.
// caller is nil for the server console. It reports whether the line was a
// leader command.
func (p *Plugin) HandleChat(caller Player, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if line[0] == '!' || line[0] == '/' {
		line = line[1:]
	} else if caller != nil {
		return false
	}
	return p.cmds.Dispatch(caller, strings.Fields(line))
}
