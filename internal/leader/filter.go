package leader

// PingVerdict is what the filter did to a ping broadcast.
type PingVerdict int

const (
	PingPassed PingVerdict = iota
	// PingMuted cleared the recipients but left the ping visual.
	PingMuted
	// PingBlocked cleared the recipients and removed the ping visual.
	PingBlocked
)

func (v PingVerdict) String() string {
	switch v {
	case PingPassed:
		return "passed"
	case PingMuted:
		return "muted"
	case PingBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Ping is the part of a player_ping event the filter looks at.
type Ping struct {
	Slot   int
	Entity EntityHandle
}

// PingFilter decides who hears a ping. While a leader exists, only leaders
// may ping; zombie pings are at most muted.
type PingFilter struct {
	reg  *Registry
	host Host
	cfg  *Config
}

func NewPingFilter(reg *Registry, host Host, cfg *Config) *PingFilter {
	return &PingFilter{reg: reg, host: host, cfg: cfg}
}

func (f *PingFilter) muteOrPass(recipients *uint64) PingVerdict {
	if f.cfg.MutePingsIfNoLeader {
		*recipients = 0
		return PingMuted
	}
	return PingPassed
}

// Filter may zero *recipients and remove the ping's visual entity.
func (f *PingFilter) Filter(ping Ping, recipients *uint64) PingVerdict {
	if recipients == nil || !f.cfg.Enabled {
		return PingPassed
	}

	if len(f.reg.sessions) == 0 {
		return f.muteOrPass(recipients)
	}

	p, ok := f.host.PlayerBySlot(ping.Slot)
	if !ok || p.Team() == TeamT {
		return f.muteOrPass(recipients)
	}

	if p.Role() != RoleNone {
		return PingPassed
	}

	if ping.Entity != 0 && f.host.Exists(ping.Entity) {
		f.host.Remove(ping.Entity)
	}
	*recipients = 0
	return PingBlocked
}
