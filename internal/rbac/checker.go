package rbac

import "strings"

// Checker answers permission questions for a single role.
type Checker struct {
	perms []string
}

func NewChecker(role string) *Checker {
	return &Checker{perms: RolePermissions[role]}
}

// Has reports whether the role holds perm, honoring "*" and prefix
// wildcards such as "exam:*".
func (c *Checker) Has(perm string) bool {
	for _, p := range c.perms {
		if p == "*" || p == perm {
			return true
		}
		if strings.HasSuffix(p, ":*") && strings.HasPrefix(perm, strings.TrimSuffix(p, "*")) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(perms ...string) bool {
	for _, p := range perms {
		if c.Has(p) {
			return true
		}
	}
	return false
}

func (c *Checker) All(perms ...string) bool {
	for _, p := range perms {
		if !c.Has(p) {
			return false
		}
	}
	return true
}
