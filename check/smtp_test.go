package check_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailprobe/check"
	"github.com/optimode/mailprobe/internal/probe"
	"github.com/optimode/mailprobe/internal/reply"
	"github.com/optimode/mailprobe/types"
)

// scriptedProber answers RCPT probes per host. The real recipient gets
// real[host]; any other recipient (the catch-all probe) gets random[host].
type scriptedProber struct {
	rcpt   string
	real   map[string]reply.Reply
	random map[string]reply.Reply

	mu    sync.Mutex
	calls []string
}

func (p *scriptedProber) Probe(_ context.Context, host, _, to string) probe.Result {
	p.mu.Lock()
	p.calls = append(p.calls, host+" "+to)
	p.mu.Unlock()

	table := p.random
	if to == p.rcpt {
		table = p.real
	}
	r, ok := table[host]
	if !ok {
		r = reply.Failure(probe.MsgTimeout)
	}
	return probe.Result{Host: host, Reply: r}
}

func (p *scriptedProber) hostsProbed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var hosts []string
	for _, c := range p.calls {
		hosts = append(hosts, strings.SplitN(c, " ", 2)[0])
	}
	return hosts
}

var twoHosts = staticHosts{"example.com": {"mx1.example.com", "mx2.example.com"}}

func r(code int) reply.Reply { return reply.Reply{Code: code, Message: "reply"} }

func TestSMTPChecker_Classification(t *testing.T) {
	tests := []struct {
		name       string
		real       map[string]reply.Reply
		random     map[string]reply.Reply
		want       types.Classification
		wantHost   string
		wantProbed []string
	}{
		{
			name:       "valid",
			real:       map[string]reply.Reply{"mx1.example.com": r(250)},
			random:     map[string]reply.Reply{"mx1.example.com": r(550)},
			want:       types.Valid,
			wantHost:   "mx1.example.com",
			wantProbed: []string{"mx1.example.com", "mx1.example.com"},
		},
		{
			name:       "catch-all",
			real:       map[string]reply.Reply{"mx1.example.com": r(250)},
			random:     map[string]reply.Reply{"mx1.example.com": r(250)},
			want:       types.CatchAll,
			wantHost:   "mx1.example.com",
			wantProbed: []string{"mx1.example.com", "mx1.example.com"},
		},
		{
			name:       "catch-all probe times out counts as valid",
			real:       map[string]reply.Reply{"mx1.example.com": r(250)},
			want:       types.Valid,
			wantHost:   "mx1.example.com",
			wantProbed: []string{"mx1.example.com", "mx1.example.com"},
		},
		{
			name:       "invalid",
			real:       map[string]reply.Reply{"mx1.example.com": r(550)},
			want:       types.Invalid,
			wantHost:   "mx1.example.com",
			wantProbed: []string{"mx1.example.com"},
		},
		{
			name:       "temporary failure stops iteration",
			real:       map[string]reply.Reply{"mx1.example.com": r(450), "mx2.example.com": r(250)},
			want:       types.Unknown,
			wantHost:   "mx1.example.com",
			wantProbed: []string{"mx1.example.com"},
		},
		{
			name:       "no reply falls through to next host",
			real:       map[string]reply.Reply{"mx2.example.com": r(250)},
			random:     map[string]reply.Reply{"mx2.example.com": r(550)},
			want:       types.Valid,
			wantHost:   "mx2.example.com",
			wantProbed: []string{"mx1.example.com", "mx2.example.com", "mx2.example.com"},
		},
		{
			name:       "no host replies",
			want:       types.Unknown,
			wantProbed: []string{"mx1.example.com", "mx2.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedProber{rcpt: "user@example.com", real: tt.real, random: tt.random}
			c := check.NewSMTPChecker(check.SMTPConfig{}, twoHosts, p)

			result := c.Check(context.Background(), check.NewRequest("user@example.com", "verify@test.com"))
			assert.Equal(t, types.LevelSMTP, result.Level)
			assert.Equal(t, tt.want, result.Classification)
			assert.Equal(t, tt.wantHost, result.MXHost)
			assert.Equal(t, tt.wantProbed, p.hostsProbed())
			assert.Equal(t, tt.want == types.Valid, result.Passed)
		})
	}
}

func TestSMTPChecker_ContinueOnTempFailure(t *testing.T) {
	p := &scriptedProber{
		rcpt:   "user@example.com",
		real:   map[string]reply.Reply{"mx1.example.com": r(451), "mx2.example.com": r(550)},
		random: map[string]reply.Reply{},
	}
	c := check.NewSMTPChecker(check.SMTPConfig{ContinueOnTempFailure: true}, twoHosts, p)

	result := c.Check(context.Background(), check.NewRequest("user@example.com", "verify@test.com"))
	assert.Equal(t, types.Invalid, result.Classification)
	assert.Equal(t, "mx2.example.com", result.MXHost)
}

func TestSMTPChecker_ContinueOnTempFailureAllDeferred(t *testing.T) {
	p := &scriptedProber{
		rcpt: "user@example.com",
		real: map[string]reply.Reply{"mx1.example.com": r(451), "mx2.example.com": r(452)},
	}
	c := check.NewSMTPChecker(check.SMTPConfig{ContinueOnTempFailure: true}, twoHosts, p)

	result := c.Check(context.Background(), check.NewRequest("user@example.com", "verify@test.com"))
	assert.Equal(t, types.Unknown, result.Classification)
	assert.Equal(t, 452, result.SMTPCode)
	assert.Equal(t, "mx2.example.com", result.MXHost)
}

func TestSMTPChecker_MaxHosts(t *testing.T) {
	p := &scriptedProber{rcpt: "user@example.com"}
	c := check.NewSMTPChecker(check.SMTPConfig{MaxHosts: 1}, twoHosts, p)

	result := c.Check(context.Background(), check.NewRequest("user@example.com", "verify@test.com"))
	assert.Equal(t, types.Unknown, result.Classification)
	assert.Equal(t, []string{"mx1.example.com"}, p.hostsProbed())
}

func TestSMTPChecker_CatchAllRecipient(t *testing.T) {
	p := &scriptedProber{
		rcpt:   "user@example.com",
		real:   map[string]reply.Reply{"mx1.example.com": r(250)},
		random: map[string]reply.Reply{"mx1.example.com": r(550)},
	}
	c := check.NewSMTPChecker(check.SMTPConfig{}, twoHosts, p)
	c.Check(context.Background(), check.NewRequest("user@example.com", "verify@test.com"))

	assert.Len(t, p.calls, 2)
	probeRcpt := strings.SplitN(p.calls[1], " ", 2)[1]
	assert.NotEqual(t, "user@example.com", probeRcpt)
	assert.True(t, strings.HasSuffix(probeRcpt, "@example.com"))
	assert.Greater(t, len(probeRcpt), len("@example.com")+32)
}

func TestSMTPChecker_CancelledContext(t *testing.T) {
	p := &scriptedProber{rcpt: "user@example.com"}
	c := check.NewSMTPChecker(check.SMTPConfig{}, twoHosts, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := c.Check(ctx, check.NewRequest("user@example.com", "verify@test.com"))
	assert.Equal(t, types.Unknown, result.Classification)
	assert.Equal(t, "context cancelled", result.Details)
	assert.Empty(t, p.hostsProbed())
}
