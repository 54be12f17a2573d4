package check_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailprobe/check"
	"github.com/optimode/mailprobe/types"
)

func TestSyntaxChecker_Lenient(t *testing.T) {
	c := check.NewSyntaxChecker(false)
	ctx := context.Background()

	tests := []struct {
		name   string
		email  string
		wantOK bool
	}{
		{"valid simple", "user@example.com", true},
		{"single label domain", "admin@localhost", true},
		{"empty domain", "user@", true},
		{"empty", "", false},
		{"no at sign", "userexample.com", false},
		{"two at signs", "user@@example.com", false},
		{"at in local", "a@b@example.com", false},
		{"CRLF in local", "x>\r\nDATA\r\n<y@example.com", false},
		{"bare LF", "us\ner@example.com", false},
		{"tab", "us\ter@example.com", false},
		{"NUL in domain", "user@exam\x00ple.com", false},
		{"DEL", "user\x7f@example.com", false},
		{"trailing newline trimmed", "user@example.com\r\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Check(ctx, check.NewRequest(tt.email, "verify@test.com"))
			assert.Equal(t, tt.wantOK, result.Passed, "Details: %s", result.Details)
			if !tt.wantOK {
				assert.Equal(t, types.InvalidFormat, result.Classification)
			}
		})
	}
}

func TestSyntaxChecker_Strict(t *testing.T) {
	c := check.NewSyntaxChecker(true)
	ctx := context.Background()

	tests := []struct {
		name   string
		email  string
		wantOK bool
	}{
		{"valid simple", "user@example.com", true},
		{"valid with plus", "user+tag@example.com", true},
		{"valid with dots", "first.last@example.com", true},
		{"valid quoted local", `"user name"@example.com`, true},
		{"valid subdomain", "user@mail.example.co.uk", true},
		{"no domain", "user@", false},
		{"no local", "@example.com", false},
		{"double dot local", "user..name@example.com", false},
		{"leading dot local", ".user@example.com", false},
		{"trailing dot local", "user.@example.com", false},
		{"consecutive dots domain", "user@exam..ple.com", false},
		{"numeric TLD", "user@example.123", false},
		{"single label", "user@localhost", false},
		{"label starts with hyphen", "user@-example.com", false},
		{"label ends with hyphen", "user@example-.com", false},
		{"valid IDN german", "user@münchen.de", true},
		{"valid IDN japanese", "user@例え.jp", true},
		{"valid Punycode", "user@xn--mnchen-3ya.de", true},
		{"valid EAI chinese local", "用户@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Check(ctx, check.NewRequest(tt.email, "verify@test.com"))
			assert.Equal(t, tt.wantOK, result.Passed, "Details: %s", result.Details)
		})
	}
}
