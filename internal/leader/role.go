package leader

import "fmt"

// Role is the leader rank a player holds.
type Role int

const (
	RoleNone Role = iota
	RoleHead
	RoleTemporary
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleHead:
		return "head"
	case RoleTemporary:
		return "temporary"
	case RoleAssistant:
		return "assistant"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Title is the name shown to players.
func (r Role) Title() string {
	switch r {
	case RoleHead:
		return "HEAD Leader"
	case RoleTemporary:
		return "TEMPORARY Leader"
	case RoleAssistant:
		return "ASSISTANT Leader"
	default:
		return ""
	}
}

// CanPlaceMarkers is false for assistants, who only get the ping privilege.
func (r Role) CanPlaceMarkers() bool {
	return r == RoleHead || r == RoleTemporary
}

// ParseRole accepts the names produced by String.
func ParseRole(s string) (Role, error) {
	switch s {
	case "none", "":
		return RoleNone, nil
	case "head":
		return RoleHead, nil
	case "temporary", "temp":
		return RoleTemporary, nil
	case "assistant":
		return RoleAssistant, nil
	}
	return RoleNone, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}
