package disposable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailprobe/internal/disposable"
)

func TestDefault(t *testing.T) {
	set := disposable.Default()
	assert.True(t, set.Contains("mailinator.com"))
	assert.True(t, set.Contains("YOPMAIL.COM"))
	assert.False(t, set.Contains("gmail.com"))
	assert.False(t, set.Contains("# known disposable / throwaway mailbox domains."))
}
