package auth

import (
	"fmt"
	"strings"
)

// Role is closed: a caller is either the administrator that owns a tenant or
// one of the agents that administrator manages.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdministrator
	RoleAgent
)

func (r Role) String() string {
	switch r {
	case RoleAdministrator:
		return "admin"
	case RoleAgent:
		return "agent"
	default:
		return "unknown"
	}
}

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "administrator", "manager":
		return RoleAdministrator, nil
	case "agent", "user":
		return RoleAgent, nil
	default:
		return RoleUnknown, fmt.Errorf("unknown role %q", s)
	}
}

// Principal identifies the caller of an operation.
//
// For administrators ID is the customer id and ManagerID == ID. For agents ID
// is the agent's user id and ManagerID is the administrator that owns it.
type Principal struct {
	ID        int64
	Role      Role
	ManagerID int64
}

func Administrator(customerID int64) Principal {
	return Principal{ID: customerID, Role: RoleAdministrator, ManagerID: customerID}
}

func Agent(userID, managerID int64) Principal {
	return Principal{ID: userID, Role: RoleAgent, ManagerID: managerID}
}

func (p Principal) Valid() bool {
	return p.ID > 0 && (p.Role == RoleAdministrator || p.Role == RoleAgent)
}

func (p Principal) IsAdministrator() bool { return p.Role == RoleAdministrator }
func (p Principal) IsAgent() bool         { return p.Role == RoleAgent }

// OwnerID is the ownerUserId this principal writes under: nil for the
// administrator's own rows, the agent id otherwise.
func (p Principal) OwnerID() *int64 {
	if p.Role != RoleAgent {
		return nil
	}
	id := p.ID
	return &id
}
