package reply_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailprobe/internal/reply"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		buf      string
		wantOK   bool
		wantCode int
	}{
		{"single line", "220 mx.example.com ESMTP\r\n", true, 220},
		{"multi line complete", "250-line one\r\n250 line two\r\n", true, 250},
		{"multi line incomplete", "250-line one\r\n", false, 0},
		{"bare code", "250\r\n", true, 250},
		{"lf only", "550 no such user\n", true, 550},
		{"unterminated fragment", "250 li", false, 0},
		{"fragment after continuation", "250-line one\r\n250 li", false, 0},
		{"trailing blank lines skipped", "250-a\r\n250 b\r\n\r\n\r\n", true, 250},
		{"malformed final line", "250-a\r\ngarbage\r\n", false, 0},
		{"code out of range", "700 nope\r\n", false, 0},
		{"non digit code", "2x0 nope\r\n", false, 0},
		{"empty", "", false, 0},
		{"only blank lines", "\r\n\r\n", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := reply.Parse([]byte(tt.buf))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, r.Code)
		})
	}
}

func TestParse_MessageIsWholeBuffer(t *testing.T) {
	r, ok := reply.Parse([]byte("250-mx.example.com\r\n250-SIZE 1000\r\n250 OK\r\n"))
	assert.True(t, ok)
	assert.Equal(t, "250-mx.example.com\n250-SIZE 1000\n250 OK", r.Message)
}

func TestParse_AccumulatedFragments(t *testing.T) {
	var buf []byte
	for _, frag := range []string{"250-li", "ne one\r\n25", "0 line two", "\r\n"} {
		_, ok := reply.Parse(buf)
		assert.False(t, ok)
		buf = append(buf, frag...)
	}
	r, ok := reply.Parse(buf)
	assert.True(t, ok)
	assert.Equal(t, 250, r.Code)
}

func TestReply_Classes(t *testing.T) {
	assert.True(t, reply.Reply{Code: 250}.OK())
	assert.True(t, reply.Reply{Code: 451}.Temporary())
	assert.True(t, reply.Reply{Code: 550}.Permanent())
	assert.True(t, reply.Failure("timeout").NoReply())
	assert.False(t, reply.Reply{Code: 354}.OK())
}
