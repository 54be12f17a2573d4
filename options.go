package mailprobe

import (
	"strings"
	"time"
)

// DefaultMailFrom is the envelope sender used when none is configured.
const DefaultMailFrom = "verify@localhost"

// ProbeOptions configures the SMTP probe level.
type ProbeOptions struct {
	// MailFrom is the address sent in the MAIL FROM command. Default: DefaultMailFrom
	MailFrom string
	// HeloDomain is the domain sent in the EHLO command. Default: the MailFrom domain
	HeloDomain string
	// Port is the SMTP port. Default: 25
	Port string
	// Timeout bounds one probe session from connect to close. Default: 8s
	Timeout time.Duration
	// CommandTimeout bounds the wait for each reply. Default: Timeout
	CommandTimeout time.Duration
	// EHLOPolicy applies when EHLO is rejected with 4xx/5xx. Default: PolicyIgnore
	EHLOPolicy FailurePolicy
	// MailFromPolicy applies when MAIL FROM is rejected with 4xx/5xx. Default: PolicyAbort
	MailFromPolicy FailurePolicy
	// MaxHosts caps how many candidate hosts are tried. Default: 0 (all)
	MaxHosts int
	// ContinueOnTempFailure tries the next host after a 4xx RCPT reply
	// instead of classifying the address as unknown. Default: false
	ContinueOnTempFailure bool
	// ProxyURL routes probes through a SOCKS5 proxy, e.g. "socks5://127.0.0.1:1080".
	ProxyURL string
	// Dialer overrides the outbound dialer (for testing). Takes precedence over ProxyURL.
	Dialer Dialer
}

func defaultProbeOptions() ProbeOptions {
	return ProbeOptions{
		MailFrom:       DefaultMailFrom,
		Port:           "25",
		Timeout:        8 * time.Second,
		EHLOPolicy:     PolicyIgnore,
		MailFromPolicy: PolicyAbort,
	}
}

// withDefaults fills unset fields from the defaults.
func (o ProbeOptions) withDefaults() ProbeOptions {
	def := defaultProbeOptions()
	if o.MailFrom == "" {
		o.MailFrom = def.MailFrom
	}
	if o.HeloDomain == "" {
		o.HeloDomain = heloFromSender(o.MailFrom)
	}
	if o.Port == "" {
		o.Port = def.Port
	}
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = o.Timeout
	}
	if o.EHLOPolicy == "" {
		o.EHLOPolicy = def.EHLOPolicy
	}
	if o.MailFromPolicy == "" {
		o.MailFromPolicy = def.MailFromPolicy
	}
	return o
}

func heloFromSender(mailFrom string) string {
	if at := strings.LastIndexByte(mailFrom, '@'); at >= 0 && at < len(mailFrom)-1 {
		return mailFrom[at+1:]
	}
	return "localhost"
}

// ResolverOptions configures MX resolution.
type ResolverOptions struct {
	// LookupTimeout is the maximum time for each DNS query. Default: 5s
	LookupTimeout time.Duration
	// CacheTTL is how long resolved host lists are reused. Default: 5m
	CacheTTL time.Duration
	// DNS overrides the system resolver (for testing).
	DNS DNSResolver
}

func defaultResolverOptions() ResolverOptions {
	return ResolverOptions{
		LookupTimeout: 5 * time.Second,
		CacheTTL:      5 * time.Minute,
	}
}

// DomainOptions configures the domain-level typo suggestions.
type DomainOptions struct {
	// CheckTypos when true suggests corrections for close-match domains. Default: true
	// This never changes the classification, only provides a suggestion (Suggestion field).
	CheckTypos bool
	// TypoThreshold is the Levenshtein distance threshold for typo detection. Default: 2
	TypoThreshold int
}

func defaultDomainOptions() DomainOptions {
	return DomainOptions{
		CheckTypos:    true,
		TypoThreshold: 2,
	}
}

// ConcurrencyOptions configures concurrent processing for VerifyMany.
type ConcurrencyOptions struct {
	// Workers is the number of addresses verified at once. Default: 5
	Workers int
	// PerDomain is the number of addresses of one domain verified at once,
	// which bounds the probe load on any single mail server. Default: 1
	PerDomain int
}

func defaultConcurrencyOptions() ConcurrencyOptions {
	return ConcurrencyOptions{Workers: 5, PerDomain: 1}
}
