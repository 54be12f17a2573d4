// Package mailprobe decides whether an email address is likely deliverable
// by resolving the domain's mail hosts and walking an SMTP conversation up to
// RCPT TO, without ever sending a message.
//
// Basic usage:
//
//	result, err := mailprobe.New().Verify(ctx, "user@example.com")
//
// Configured:
//
//	result, err := mailprobe.New().
//	    WithProbe(mailprobe.ProbeOptions{
//	        MailFrom:   "verify@myapp.com",
//	        HeloDomain: "myapp.com",
//	    }).
//	    WithRoleAccounts([]string{"admin", "sales"}).
//	    WithLogger(logger).
//	    Verify(ctx, "user@example.com")
//
// Every address yields exactly one Classification. Verify only returns an
// error for a misconfigured Verifier.
package mailprobe

import (
	"github.com/optimode/mailprobe/internal/probe"
	"github.com/optimode/mailprobe/internal/resolve"
	"github.com/optimode/mailprobe/types"
)

// CheckResult is a re-export from the types package so that consumers
// don't need to import the types package directly.
type CheckResult = types.CheckResult

// CheckLevel is a re-export.
type CheckLevel = types.CheckLevel

// Classification is a re-export.
type Classification = types.Classification

// Level constants re-exported.
const (
	LevelSyntax = types.LevelSyntax
	LevelRole   = types.LevelRole
	LevelDNS    = types.LevelDNS
	LevelDomain = types.LevelDomain
	LevelSMTP   = types.LevelSMTP
)

// Classification constants re-exported.
const (
	InvalidFormat = types.InvalidFormat
	RoleBased     = types.RoleBased
	NoMXRecord    = types.NoMXRecord
	Disposable    = types.Disposable
	Valid         = types.Valid
	CatchAll      = types.CatchAll
	Invalid       = types.Invalid
	Unknown       = types.Unknown
)

// FailurePolicy decides what a failed EHLO or MAIL FROM does to a probe.
type FailurePolicy = probe.Policy

// Failure policies re-exported.
const (
	PolicyIgnore = probe.Ignore
	PolicyAbort  = probe.Abort
)

// Dialer opens outbound probe connections.
type Dialer = probe.Dialer

// DialFunc adapts a function to the Dialer interface.
type DialFunc = probe.DialFunc

// DNSResolver is the subset of *net.Resolver used for host resolution.
type DNSResolver = resolve.DNS
