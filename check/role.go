package check

import (
	"context"

	"github.com/optimode/mailprobe/internal/refset"
	"github.com/optimode/mailprobe/types"
)

// RoleChecker flags local parts that name a function rather than a person,
// such as postmaster@ or sales@. The comparison is case-insensitive.
type RoleChecker struct {
	roles refset.Set
}

func NewRoleChecker(roles refset.Set) *RoleChecker {
	return &RoleChecker{roles: roles}
}

func (c *RoleChecker) Check(_ context.Context, req Request) types.CheckResult {
	if c.roles.Contains(req.Email.Local) {
		return types.CheckResult{
			Level:          types.LevelRole,
			Passed:         false,
			Classification: types.RoleBased,
			Details:        "role account: " + req.Email.Local,
		}
	}
	return types.CheckResult{Level: types.LevelRole, Passed: true, Details: "personal mailbox"}
}
