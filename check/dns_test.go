package check_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailprobe/check"
	"github.com/optimode/mailprobe/types"
)

// staticHosts is a HostResolver answering from a fixed table.
type staticHosts map[string][]string

func (s staticHosts) Resolve(_ context.Context, domain string) []string {
	return s[domain]
}

func TestDNSChecker(t *testing.T) {
	c := check.NewDNSChecker(staticHosts{
		"example.com": {"mx1.example.com", "mx2.example.com"},
	})
	ctx := context.Background()

	result := c.Check(ctx, check.NewRequest("user@example.com", ""))
	assert.True(t, result.Passed)
	assert.Equal(t, "mx1.example.com", result.MXHost)
	assert.Contains(t, result.Details, "2 candidate host(s)")

	result = c.Check(ctx, check.NewRequest("user@nowhere.invalid", ""))
	assert.False(t, result.Passed)
	assert.Equal(t, types.NoMXRecord, result.Classification)
}
