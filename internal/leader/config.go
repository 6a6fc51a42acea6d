package leader

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultVoteRatio = 0.15

	ConVarEnable         = "cs2f_leader_enable"
	ConVarVoteRatio      = "cs2f_leader_vote_ratio"
	ConVarMutePingNoLead = "cs2f_leader_mute_ping_no_leader"
)

// Config holds the runtime-tunable leader settings.
type Config struct {
	// Enabled gates the ping filter.
	Enabled bool
	// VoteRatio is the share of human players whose votes make a HEAD leader.
	VoteRatio float64
	// MutePingsIfNoLeader silences pings while nobody leads.
	MutePingsIfNoLeader bool
}

func DefaultConfig() Config {
	return Config{
		Enabled:             false,
		VoteRatio:           DefaultVoteRatio,
		MutePingsIfNoLeader: true,
	}
}

// SanitizeConfig clamps the vote ratio into [0, 1].
func SanitizeConfig(cfg Config) Config {
	if math.IsNaN(cfg.VoteRatio) || math.IsInf(cfg.VoteRatio, 0) {
		cfg.VoteRatio = DefaultVoteRatio
	}
	if cfg.VoteRatio < 0 {
		cfg.VoteRatio = 0
	}
	if cfg.VoteRatio > 1 {
		cfg.VoteRatio = 1
	}
	return cfg
}

type conVar struct {
	help string
	get  func(c *Config) string
	set  func(c *Config, v string) error
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool %q", v)
}

var conVars = map[string]conVar{
	ConVarEnable: {
		help: "Whether to enable Leader features",
		get:  func(c *Config) string { return formatBool(c.Enabled) },
		set: func(c *Config, v string) error {
			b, err := parseBool(v)
			if err != nil {
				return err
			}
			c.Enabled = b
			return nil
		},
	},
	ConVarVoteRatio: {
		help: "Vote ratio needed for player to become a leader",
		get:  func(c *Config) string { return strconv.FormatFloat(c.VoteRatio, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("invalid float %q", v)
			}
			c.VoteRatio = f
			return nil
		},
	},
	ConVarMutePingNoLead: {
		help: "Whether to mute player pings whenever there's no leader",
		get:  func(c *Config) string { return formatBool(c.MutePingsIfNoLeader) },
		set: func(c *Config, v string) error {
			b, err := parseBool(v)
			if err != nil {
				return err
			}
			c.MutePingsIfNoLeader = b
			return nil
		},
	},
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ConVarNames lists the convars the plugin registers.
func ConVarNames() []string {
	names := make([]string, 0, len(conVars))
	for name := range conVars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConVarHelp returns the description of a convar.
func ConVarHelp(name string) (string, bool) {
	cv, ok := conVars[name]
	return cv.help, ok
}
