package server

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"ZLeader/internal/game"
	"ZLeader/internal/leader"
)

const (
	minTickRate = 8.0
	maxTickRate = 256.0
)

type leaderConfig struct {
	Enable           *bool    `json:"enable"`
	VoteRatio        *float64 `json:"voteRatio"`
	MutePingNoLeader *bool    `json:"mutePingNoLeader"`
}

type roomConfig struct {
	TickRate *float64 `json:"tickRate"`
	Bots     *int     `json:"bots"`
}

type fileConfig struct {
	Room   *roomConfig   `json:"room"`
	Leader *leaderConfig `json:"leader"`
}

// Settings is the resolved room and leader tuning.
type Settings struct {
	TickRate float64
	Bots     int
	Leader   leader.Config
}

func DefaultSettings() Settings {
	return Settings{
		TickRate: game.TickRate,
		Leader:   leader.DefaultConfig(),
	}
}

func SanitizeSettings(s Settings) Settings {
	if math.IsNaN(s.TickRate) || s.TickRate <= 0 {
		s.TickRate = game.TickRate
	}
	s.TickRate = game.Clamp(s.TickRate, minTickRate, maxTickRate)
	if s.Bots < 0 {
		s.Bots = 0
	}
	if s.Bots > game.MaxPlayers-1 {
		s.Bots = game.MaxPlayers - 1
	}
	s.Leader = leader.SanitizeConfig(s.Leader)
	return s
}

// Overrides holds command-line values that win over the config file.
type Overrides struct {
	TickRate         *float64
	Bots             *int
	LeaderEnable     *bool
	VoteRatio        *float64
	MutePingNoLeader *bool
}

func (o Overrides) apply(base Settings) Settings {
	if o.TickRate != nil {
		base.TickRate = *o.TickRate
	}
	if o.Bots != nil {
		base.Bots = *o.Bots
	}
	if o.LeaderEnable != nil {
		base.Leader.Enabled = *o.LeaderEnable
	}
	if o.VoteRatio != nil {
		base.Leader.VoteRatio = *o.VoteRatio
	}
	if o.MutePingNoLeader != nil {
		base.Leader.MutePingsIfNoLeader = *o.MutePingNoLeader
	}
	return SanitizeSettings(base)
}

func mergeFileConfig(base Settings, cfg fileConfig) Settings {
	if r := cfg.Room; r != nil {
		if r.TickRate != nil {
			base.TickRate = *r.TickRate
		}
		if r.Bots != nil {
			base.Bots = *r.Bots
		}
	}
	if l := cfg.Leader; l != nil {
		if l.Enable != nil {
			base.Leader.Enabled = *l.Enable
		}
		if l.VoteRatio != nil {
			base.Leader.VoteRatio = *l.VoteRatio
		}
		if l.MutePingNoLeader != nil {
			base.Leader.MutePingsIfNoLeader = *l.MutePingNoLeader
		}
	}
	return SanitizeSettings(base)
}

// loadSettingsFromFile merges the JSON file at path over base. A missing
// file is not an error.
func loadSettingsFromFile(path string, base Settings) (Settings, error) {
	if path == "" {
		return SanitizeSettings(base), nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return SanitizeSettings(base), nil
		}
		return SanitizeSettings(base), fmt.Errorf("read config %q: %w", cleanPath, err)
	}
	var cfg fileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SanitizeSettings(base), fmt.Errorf("parse config %q: %w", cleanPath, err)
	}
	return mergeFileConfig(base, cfg), nil
}
