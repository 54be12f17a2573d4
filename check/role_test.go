package check_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailprobe/check"
	"github.com/optimode/mailprobe/internal/refset"
	"github.com/optimode/mailprobe/types"
)

func TestRoleChecker(t *testing.T) {
	c := check.NewRoleChecker(refset.New("admin", "postmaster"))
	ctx := context.Background()

	tests := []struct {
		email  string
		wantOK bool
	}{
		{"admin@example.com", false},
		{"ADMIN@example.com", false},
		{"PostMaster@nonexistent.invalid", false},
		{"alice@example.com", true},
		{"administrator@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			result := c.Check(ctx, check.NewRequest(tt.email, ""))
			assert.Equal(t, tt.wantOK, result.Passed)
			if !tt.wantOK {
				assert.Equal(t, types.RoleBased, result.Classification)
			}
		})
	}
}

func TestRoleChecker_EmptyTable(t *testing.T) {
	c := check.NewRoleChecker(refset.Set{})
	result := c.Check(context.Background(), check.NewRequest("admin@example.com", ""))
	assert.True(t, result.Passed)
}
