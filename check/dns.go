package check

import (
	"context"
	"fmt"

	"github.com/optimode/mailprobe/types"
)

// HostResolver returns the ordered candidate mail hosts for a domain.
// *resolve.Resolver and *resolve.Cache implement it.
type HostResolver interface {
	Resolve(ctx context.Context, domain string) []string
}

// DNSChecker verifies that the domain routes mail somewhere: MX targets,
// or an A/AAAA record when there are none.
type DNSChecker struct {
	hosts HostResolver
}

func NewDNSChecker(hosts HostResolver) *DNSChecker {
	return &DNSChecker{hosts: hosts}
}

func (c *DNSChecker) Check(ctx context.Context, req Request) types.CheckResult {
	level := types.LevelDNS

	hosts := c.hosts.Resolve(ctx, req.Email.Domain)
	if len(hosts) == 0 {
		return types.CheckResult{
			Level:          level,
			Passed:         false,
			Classification: types.NoMXRecord,
			Details:        "no MX or address records found",
		}
	}

	return types.CheckResult{
		Level:   level,
		Passed:  true,
		Details: fmt.Sprintf("%d candidate host(s)", len(hosts)),
		MXHost:  hosts[0],
	}
}
