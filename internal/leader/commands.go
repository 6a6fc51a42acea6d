package leader

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type commandFunc func(c *Commands, caller Player, args []string)

type command struct {
	name  string
	help  string
	flags AdminFlags
	// players marks commands the console cannot run.
	players bool
	run     commandFunc
}

// Commands dispatches the leader chat commands.
type Commands struct {
	reg   *Registry
	host  Host
	table map[string]command
}

func NewCommands(reg *Registry, host Host) *Commands {
	c := &Commands{reg: reg, host: host, table: map[string]command{}}
	for _, cmd := range []command{
		{name: "setleader", help: "<name> [head|assistant] - Force a player to become a new HEAD Leader", flags: AdminBan, run: (*Commands).setLeader},
		{name: "removeleader", help: "<name> - Force a player to remove from the leader access", flags: AdminBan, run: (*Commands).removeLeader},
		{name: "vl", help: "<name> - Vote for a player to become a new leader", players: true, run: (*Commands).voteLeader},
		{name: "tl", help: "<name> - (only HEAD Leader available)", players: true, run: (*Commands).temporaryLeader},
		{name: "r", help: "- Resign from the leader access", players: true, run: (*Commands).resign},
	} {
		c.table[cmd.name] = cmd
	}
	return c
}

// Names lists the registered commands.
func (c *Commands) Names() []string {
	names := make([]string, 0, len(c.table))
	for name := range c.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Help returns the usage line of a command.
func (c *Commands) Help(name string) (string, bool) {
	cmd, ok := c.table[name]
	return cmd.help, ok
}

// Dispatch runs args[0] for caller, nil meaning the server console. It
// reports whether args named a leader command.
func (c *Commands) Dispatch(caller Player, args []string) bool {
	if len(args) == 0 {
		return false
	}
	cmd, ok := c.table[strings.ToLower(args[0])]
	if !ok {
		return false
	}
	if caller == nil && cmd.players {
		return true
	}
	if caller != nil && cmd.flags != 0 && !caller.HasFlags(cmd.flags) {
		c.reply(caller, "You don't have access to this command.")
		return true
	}
	cmd.run(c, caller, args)
	return true
}

func (c *Commands) reply(caller Player, msg string) {
	if caller == nil {
		c.reg.log.Info().Str("reply", msg).Msg("console")
		return
	}
	c.host.PrintTo(caller.Handle(), chatPrefix+msg)
}

func (c *Commands) usage(caller Player, name string) {
	c.reply(caller, fmt.Sprintf("Usage: !%s <name>", name))
}

// target resolves a single player from a command argument. The host has
// already explained any failure to the caller.
func (c *Commands) target(caller Player, query string, flags TargetFlags) (Player, bool) {
	targets := c.host.Target(caller, query, flags|TargetNoMultiple|TargetNoBot|TargetNoImmunity)
	if len(targets) == 0 || targets[0] == nil {
		return nil, false
	}
	return targets[0], true
}

func (c *Commands) setLeader(caller Player, args []string) {
	if len(args) < 2 {
		c.usage(caller, "setleader")
		return
	}
	role := RoleHead
	if len(args) > 2 {
		r, err := ParseRole(strings.ToLower(args[2]))
		if err != nil || (r != RoleHead && r != RoleAssistant) {
			c.reply(caller, "Usage: !setleader <name> [head|assistant]")
			return
		}
		role = r
	}
	if role == RoleHead && c.reg.HasRole(RoleHead) {
		c.reply(caller, "Head Leader already exists!")
		return
	}

	target, ok := c.target(caller, args[1], 0)
	if !ok {
		return
	}
	if _, err := c.reg.CreateSession(target.Handle(), role); err != nil {
		c.replyCreateError(caller, target, err)
		return
	}
	c.reply(caller, fmt.Sprintf("You have assigned %s as the %s.", target.Name(), role.Title()))
}

func (c *Commands) removeLeader(caller Player, args []string) {
	if len(args) < 2 {
		c.usage(caller, "removeleader")
		return
	}
	target, ok := c.target(caller, args[1], 0)
	if !ok {
		return
	}
	if !c.reg.DestroySession(target.Handle()) {
		c.reply(caller, "Target does not have any leader access!")
		return
	}
	c.reply(caller, fmt.Sprintf("You have removed %s from the leader access.", target.Name()))
}

func (c *Commands) voteLeader(caller Player, args []string) {
	if len(args) < 2 {
		c.usage(caller, "vl")
		return
	}
	if c.reg.HasRole(RoleHead) {
		c.reply(caller, "Head Leader already exists!")
		return
	}
	target, ok := c.target(caller, args[1], 0)
	if !ok {
		return
	}
	if _, err := c.reg.Vote(caller.Handle(), target.Handle()); err != nil {
		if errors.Is(err, ErrDuplicateVote) {
			c.reply(caller, "You have already voted for this player!")
		}
		return
	}
}

func (c *Commands) temporaryLeader(caller Player, args []string) {
	if caller.Role() != RoleHead {
		c.reply(caller, "You don't have access to this command.")
		return
	}
	if len(args) < 2 {
		c.usage(caller, "tl")
		return
	}
	if c.reg.HasRole(RoleTemporary) {
		c.reply(caller, "TEMPORARY Leader already exists!")
		return
	}

	target, ok := c.target(caller, args[1], TargetNoSelf)
	if !ok {
		return
	}
	pawn, hasPawn := target.Pawn()
	if target.Team() == TeamT || !hasPawn || pawn == nil || !pawn.Alive() {
		c.reply(caller, "Target must be alive in Human!")
		return
	}
	if _, err := c.reg.CreateSession(target.Handle(), RoleTemporary); err != nil {
		c.replyCreateError(caller, target, err)
		return
	}
	c.reply(caller, fmt.Sprintf("You have assigned %s as the TEMPORARY Leader.", target.Name()))
}

func (c *Commands) resign(caller Player, _ []string) {
	if caller.Role() == RoleNone {
		return
	}
	if c.reg.DestroySession(caller.Handle()) {
		c.reply(caller, "You resigned from the leader access!")
	}
}

func (c *Commands) replyCreateError(caller Player, target Player, err error) {
	switch {
	case errors.Is(err, ErrHeadExists):
		c.reply(caller, "Head Leader already exists!")
	case errors.Is(err, ErrTemporaryExists):
		c.reply(caller, "TEMPORARY Leader already exists!")
	case errors.Is(err, ErrAlreadyLeader):
		c.reply(caller, fmt.Sprintf("%s already has leader access.", target.Name()))
	default:
		c.reply(caller, "Could not assign leader access.")
	}
}
