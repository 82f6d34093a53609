// Package authz decides whether a principal may perform a guarded
// operation. Decisions are pure values; translating them into HTTP
// responses (redirects, 403 pages) is the caller's job.
package authz

import (
	"errors"
	"fmt"
)

var ErrEmptyPolicy = errors.New("policy requires at least one role")

// Principal is an authenticated actor and the roles assigned to it.
// A nil *Principal means the request carries no authenticated identity.
type Principal struct {
	ID    uint
	Roles []RoleName
}

// HasRole reports whether the principal holds the given role.
func (p *Principal) HasRole(role RoleName) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Policy is the required-role-set attached to a guarded operation.
// A principal holding any one of the roles is admitted (OR semantics).
type Policy struct {
	required map[RoleName]struct{}
}

// NewPolicy builds a policy from the given roles. An empty set is a
// configuration error: a guard that admits nobody is always a wiring
// mistake, so it is rejected here rather than silently denying all.
func NewPolicy(roles ...RoleName) (Policy, error) {
	if len(roles) == 0 {
		return Policy{}, ErrEmptyPolicy
	}
	required := make(map[RoleName]struct{}, len(roles))
	for _, role := range roles {
		if !role.Valid() {
			return Policy{}, fmt.Errorf("unknown role %q", role)
		}
		required[role] = struct{}{}
	}
	return Policy{required: required}, nil
}

// MustPolicy is NewPolicy for route registration at startup.
// It panics on a misconfigured role set so bad wiring fails fast.
func MustPolicy(roles ...RoleName) Policy {
	policy, err := NewPolicy(roles...)
	if err != nil {
		panic("authz: " + err.Error())
	}
	return policy
}

// Roles returns the roles accepted by the policy.
func (p Policy) Roles() []RoleName {
	roles := make([]RoleName, 0, len(p.required))
	for role := range p.required {
		roles = append(roles, role)
	}
	return roles
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Admit allows the request to proceed.
	Admit Decision = iota
	// DenyUnauthenticated means no authenticated principal was present.
	// Callers redirect to login, preserving the requested path.
	DenyUnauthenticated
	// DenyForbidden means the principal is authenticated but holds none
	// of the required roles.
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Admit:
		return "admit"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decide checks the principal against the policy's required-role-set.
// Authentication takes precedence: a missing principal is always
// DenyUnauthenticated, regardless of the policy.
func Decide(principal *Principal, policy Policy) Decision {
	if principal == nil {
		return DenyUnauthenticated
	}
	for _, role := range principal.Roles {
		if _, ok := policy.required[role]; ok {
			return Admit
		}
	}
	return DenyForbidden
}

// DecideAuthenticated is the coarse cpanel gate: any authenticated
// principal is admitted, roles are not consulted. It must not be used
// where a role check is intended.
func DecideAuthenticated(principal *Principal) Decision {
	if principal == nil {
		return DenyUnauthenticated
	}
	return Admit
}
