package check

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/optimode/mailprobe/internal/probe"
	"github.com/optimode/mailprobe/types"
)

// Prober runs one SMTP probe session. *probe.Prober implements it.
type Prober interface {
	Probe(ctx context.Context, host, from, to string) probe.Result
}

// SMTPConfig is the SMTP checker configuration.
type SMTPConfig struct {
	// MaxHosts caps how many candidate hosts are tried. 0 tries all.
	MaxHosts int
	// ContinueOnTempFailure moves on to the next host after a 4xx reply
	// instead of settling on unknown.
	ContinueOnTempFailure bool
	// RandomLocal generates the catch-all probe's local part. Default: uuid + unix millis
	RandomLocal func() string
	Logger      zerolog.Logger
}

// SMTPChecker probes candidate hosts in preference order with RCPT TO.
// The first host to return a coded reply decides the outcome; a 2xx is
// double-checked against a random recipient to detect catch-all servers.
type SMTPChecker struct {
	cfg    SMTPConfig
	hosts  HostResolver
	prober Prober
}

// NewSMTPChecker creates an SMTP checker sharing the dns level's resolver.
func NewSMTPChecker(cfg SMTPConfig, hosts HostResolver, prober Prober) *SMTPChecker {
	if cfg.RandomLocal == nil {
		cfg.RandomLocal = randomLocal
	}
	return &SMTPChecker{
		cfg:    cfg,
		hosts:  hosts,
		prober: prober,
	}
}

func (c *SMTPChecker) Check(ctx context.Context, req Request) types.CheckResult {
	level := types.LevelSMTP
	email := req.Email
	rcpt := email.Local + "@" + email.Domain
	log := c.cfg.Logger.With().Str("email", rcpt).Logger()

	hosts := c.hosts.Resolve(ctx, email.Domain)
	if c.cfg.MaxHosts > 0 && len(hosts) > c.cfg.MaxHosts {
		hosts = hosts[:c.cfg.MaxHosts]
	}

	var temp *probe.Result
	for _, host := range hosts {
		// Check context cancellation before each attempt
		if ctx.Err() != nil {
			break
		}

		res := c.prober.Probe(ctx, host, req.MailFrom, rcpt)
		r := res.Reply

		switch {
		case r.NoReply():
			log.Debug().Str("host", host).Str("reason", r.Message).Msg("no usable reply, trying next host")
			continue

		case r.OK():
			probeRcpt := c.cfg.RandomLocal() + "@" + email.Domain
			ca := c.prober.Probe(ctx, host, req.MailFrom, probeRcpt)
			if ca.Reply.OK() {
				return types.CheckResult{
					Level:          level,
					Passed:         false,
					Classification: types.CatchAll,
					Details:        "server accepts any recipient",
					MXHost:         host,
					SMTPCode:       r.Code,
				}
			}
			return types.CheckResult{
				Level:          level,
				Passed:         true,
				Classification: types.Valid,
				Details:        "RCPT TO accepted",
				MXHost:         host,
				SMTPCode:       r.Code,
			}

		case r.Permanent():
			return types.CheckResult{
				Level:          level,
				Passed:         false,
				Classification: types.Invalid,
				Details:        "RCPT rejected: " + flatten(r.Message),
				MXHost:         host,
				SMTPCode:       r.Code,
			}

		case r.Temporary() && c.cfg.ContinueOnTempFailure:
			log.Debug().Str("host", host).Int("code", r.Code).Msg("temporary failure, trying next host")
			temp = &res
			continue

		default:
			return types.CheckResult{
				Level:          level,
				Passed:         false,
				Classification: types.Unknown,
				Details:        "RCPT deferred: " + flatten(r.Message),
				MXHost:         host,
				SMTPCode:       r.Code,
			}
		}
	}

	if temp != nil {
		return types.CheckResult{
			Level:          level,
			Passed:         false,
			Classification: types.Unknown,
			Details:        "RCPT deferred on every host: " + flatten(temp.Reply.Message),
			MXHost:         temp.Host,
			SMTPCode:       temp.Reply.Code,
		}
	}
	details := fmt.Sprintf("no usable reply from %d host(s)", len(hosts))
	if ctx.Err() != nil {
		details = "context cancelled"
	}
	return types.CheckResult{
		Level:          level,
		Passed:         false,
		Classification: types.Unknown,
		Details:        details,
	}
}

// randomLocal returns a local part no real mailbox is expected to use.
func randomLocal() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + fmt.Sprint(time.Now().UnixMilli())
}

// flatten joins a multi-line reply onto one line for Details.
func flatten(msg string) string {
	return strings.ReplaceAll(msg, "\n", " | ")
}
