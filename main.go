package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ZLeader/internal/game"
	"ZLeader/internal/leader"
	"ZLeader/internal/logging"
	"ZLeader/internal/server"

	"github.com/spf13/pflag"
)

func main() {
	cfg := server.DefaultAppConfig()

	flags := pflag.NewFlagSet("zleader", pflag.ExitOnError)
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "address to listen on (e.g., 127.0.0.1:8080)")
	flags.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "path to room/leader tuning JSON")
	flags.StringVar(&cfg.AdminToken, "admin-token", "", "token that grants admin flags to websocket clients")
	tickRate := flags.Float64("tick-rate", game.TickRate, "simulation ticks per second")
	bots := flags.Int("bots", 0, "bots added to every new room")
	logLevel := flags.String("log-level", "info", "trace, debug, info, warn, error")
	prettyLog := flags.Bool("pretty-log", false, "human readable console logs instead of JSON")
	leaderEnable := flags.Bool("leader-enable", false, "override "+leader.ConVarEnable)
	voteRatio := flags.Float64("leader-vote-ratio", leader.DefaultVoteRatio, "override "+leader.ConVarVoteRatio)
	mutePing := flags.Bool("leader-mute-ping", true, "override "+leader.ConVarMutePingNoLead)
	_ = flags.Parse(os.Args[1:])

	logger, err := logging.Setup(*logLevel, *prettyLog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.Logger = logger

	// only flags given on the command line override the config file
	if flags.Changed("tick-rate") {
		cfg.Overrides.TickRate = tickRate
	}
	if flags.Changed("bots") {
		cfg.Overrides.Bots = bots
	}
	if flags.Changed("leader-enable") {
		cfg.Overrides.LeaderEnable = leaderEnable
	}
	if flags.Changed("leader-vote-ratio") {
		cfg.Overrides.VoteRatio = voteRatio
	}
	if flags.Changed("leader-mute-ping") {
		cfg.Overrides.MutePingNoLeader = mutePing
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.StartApp(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
