package leader

import "errors"

var (
	ErrInvalidRole     = errors.New("invalid leader role")
	ErrHeadExists      = errors.New("head leader already exists")
	ErrTemporaryExists = errors.New("temporary leader already exists")
	ErrAlreadyLeader   = errors.New("player already has leader access")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrDuplicateVote   = errors.New("already voted for this player")
	ErrUnknownConVar   = errors.New("unknown convar")
)
