package services

import "strings"

// Actor is the identity the auth collaborator attached to a request or socket.
type Actor struct {
	ID   uint
	Role string
}

// Roles is the configured set of operator roles.
type Roles map[string]struct{}

func NewRoles(roles ...string) Roles {
	r := make(Roles, len(roles))
	for _, role := range roles {
		role = strings.ToUpper(strings.TrimSpace(role))
		if role != "" {
			r[role] = struct{}{}
		}
	}
	return r
}

func (r Roles) IsOperator(a Actor) bool {
	_, ok := r[strings.ToUpper(a.Role)]
	return ok
}
