package leader

// VoteTally tracks leader votes. Each voter backs at most one candidate at a
// time; casting for someone else moves the vote.
type VoteTally struct {
	lastVote map[PlayerHandle]PlayerHandle
	votes    map[PlayerHandle]map[PlayerHandle]struct{}
}

func NewVoteTally() *VoteTally {
	return &VoteTally{
		lastVote: make(map[PlayerHandle]PlayerHandle),
		votes:    make(map[PlayerHandle]map[PlayerHandle]struct{}),
	}
}

// Cast records voter's vote for target and returns target's new count.
func (t *VoteTally) Cast(voter, target PlayerHandle) (int, error) {
	if prev, ok := t.lastVote[voter]; ok {
		if prev == target {
			return t.Count(target), ErrDuplicateVote
		}
		t.remove(voter, prev)
	}

	set, ok := t.votes[target]
	if !ok {
		set = make(map[PlayerHandle]struct{})
		t.votes[target] = set
	}
	set[voter] = struct{}{}
	t.lastVote[voter] = target
	return len(set), nil
}

func (t *VoteTally) remove(voter, target PlayerHandle) {
	if set, ok := t.votes[target]; ok {
		delete(set, voter)
		if len(set) == 0 {
			delete(t.votes, target)
		}
	}
	if t.lastVote[voter] == target {
		delete(t.lastVote, voter)
	}
}

// Count is the number of voters currently backing target.
func (t *VoteTally) Count(target PlayerHandle) int {
	return len(t.votes[target])
}

// LastVote returns who voter currently backs.
func (t *VoteTally) LastVote(voter PlayerHandle) (PlayerHandle, bool) {
	target, ok := t.lastVote[voter]
	return target, ok
}

// Purge drops every vote for target. Its voters are free to vote again,
// including for target.
func (t *VoteTally) Purge(target PlayerHandle) {
	for voter := range t.votes[target] {
		if t.lastVote[voter] == target {
			delete(t.lastVote, voter)
		}
	}
	delete(t.votes, target)
}

// Withdraw takes back voter's vote, if any.
func (t *VoteTally) Withdraw(voter PlayerHandle) {
	if prev, ok := t.lastVote[voter]; ok {
		t.remove(voter, prev)
	}
}

// Forget removes a departing player both as a voter and as a candidate.
func (t *VoteTally) Forget(player PlayerHandle) {
	t.Withdraw(player)
	t.Purge(player)
}

// Outstanding is the total number of live votes across all candidates.
func (t *VoteTally) Outstanding() int {
	n := 0
	for _, set := range t.votes {
		n += len(set)
	}
	return n
}

// RequiredVotes is the quorum for humans non-bot players at ratio.
func RequiredVotes(humans int, ratio float64) int {
	if humans < 0 {
		humans = 0
	}
	return int(float64(humans)*ratio) + 1
}
