package mailprobe

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/optimode/mailprobe/check"
	"github.com/optimode/mailprobe/internal/disposable"
	"github.com/optimode/mailprobe/internal/metrics"
	"github.com/optimode/mailprobe/internal/parse"
	"github.com/optimode/mailprobe/internal/probe"
	"github.com/optimode/mailprobe/internal/refset"
	"github.com/optimode/mailprobe/internal/resolve"
	"github.com/optimode/mailprobe/internal/roles"
	"github.com/optimode/mailprobe/types"
)

// checker is the internal interface for all verification levels.
// Every check/ package type implements this.
type checker interface {
	Check(ctx context.Context, req check.Request) types.CheckResult
}

// Verifier is the main fluent builder struct.
// Instantiate with the New() function, configure it with the With* methods,
// then share it: after the first Verify call it is immutable and safe for
// concurrent use.
type Verifier struct {
	err error // configuration error, returned on Verify()

	probeOpts    ProbeOptions
	resolverOpts ResolverOptions
	domainOpts   DomainOptions
	strict       bool
	roles        refset.Set
	disposable   refset.Set
	logger       zerolog.Logger

	once     sync.Once
	checkers []checker
	domain   *check.DomainChecker
}

// New creates a Verifier with the built-in role and disposable tables and
// default probe, resolver and domain options.
func New() *Verifier {
	return &Verifier{
		probeOpts:    defaultProbeOptions().withDefaults(),
		resolverOpts: defaultResolverOptions(),
		domainOpts:   defaultDomainOptions(),
		roles:        roles.Default(),
		disposable:   disposable.Default(),
		logger:       zerolog.Nop(),
	}
}

// WithProbe overrides the SMTP probe options. Unset fields keep their defaults.
func (v *Verifier) WithProbe(opts ProbeOptions) *Verifier {
	opts = opts.withDefaults()
	if err := checkSender(opts.MailFrom); err != nil {
		v.err = err
		return v
	}
	if parse.HasControl(opts.HeloDomain) {
		v.err = fmt.Errorf("%w: HeloDomain %q contains a control character", ErrInvalidProbeOptions, opts.HeloDomain)
		return v
	}
	for _, p := range []FailurePolicy{opts.EHLOPolicy, opts.MailFromPolicy} {
		if p != PolicyIgnore && p != PolicyAbort {
			v.err = fmt.Errorf("%w: unknown failure policy %q", ErrInvalidProbeOptions, p)
			return v
		}
	}
	v.probeOpts = opts
	return v
}

// WithResolver overrides the DNS resolution options.
func (v *Verifier) WithResolver(opts ResolverOptions) *Verifier {
	def := defaultResolverOptions()
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = def.LookupTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = def.CacheTTL
	}
	v.resolverOpts = opts
	return v
}

// WithDomain overrides the typo suggestion options.
func (v *Verifier) WithDomain(opts DomainOptions) *Verifier {
	v.domainOpts = opts
	return v
}

// WithRoleAccounts replaces the built-in role-account table.
func (v *Verifier) WithRoleAccounts(locals []string) *Verifier {
	v.roles = refset.New(locals...)
	return v
}

// WithDisposableDomains replaces the built-in disposable-domain table.
func (v *Verifier) WithDisposableDomains(domains []string) *Verifier {
	v.disposable = refset.New(domains...)
	return v
}

// WithRoleAccountsFile replaces the role-account table with the entries of
// a file, one per line, # starting a comment line.
func (v *Verifier) WithRoleAccountsFile(path string) *Verifier {
	set, err := refset.LoadFile(path)
	if err != nil {
		v.err = fmt.Errorf("%w: role accounts %s: %v", ErrInvalidTable, path, err)
		return v
	}
	v.roles = set
	return v
}

// WithDisposableDomainsFile replaces the disposable-domain table with the
// entries of a file in the same format as WithRoleAccountsFile.
func (v *Verifier) WithDisposableDomainsFile(path string) *Verifier {
	set, err := refset.LoadFile(path)
	if err != nil {
		v.err = fmt.Errorf("%w: disposable domains %s: %v", ErrInvalidTable, path, err)
		return v
	}
	v.disposable = set
	return v
}

// WithStrictSyntax rejects addresses that split on @ but break RFC 5321
// syntax rules (lengths, characters, domain labels) as invalid_format.
func (v *Verifier) WithStrictSyntax() *Verifier {
	v.strict = true
	return v
}

// WithLogger sets the structured logger. Default: zerolog.Nop()
func (v *Verifier) WithLogger(logger zerolog.Logger) *Verifier {
	v.logger = logger
	return v
}

// build assembles the pipeline once, on first use.
func (v *Verifier) build() {
	v.once.Do(func() {
		if v.err != nil {
			return
		}

		dialer := v.probeOpts.Dialer
		if dialer == nil && v.probeOpts.ProxyURL != "" {
			d, err := probe.NewProxyDialer(v.probeOpts.ProxyURL)
			if err != nil {
				v.err = fmt.Errorf("%w: %v", ErrInvalidProxy, err)
				return
			}
			dialer = d
		}

		dns := v.resolverOpts.DNS
		if dns == nil {
			dns = net.DefaultResolver
		}
		hosts := resolve.NewCache(resolve.New(resolve.Config{
			LookupTimeout: v.resolverOpts.LookupTimeout,
			DNS:           dns,
			Logger:        v.logger,
		}), v.resolverOpts.CacheTTL)

		prober := probe.New(probe.Config{
			HeloDomain:     v.probeOpts.HeloDomain,
			Port:           v.probeOpts.Port,
			Timeout:        v.probeOpts.Timeout,
			CommandTimeout: v.probeOpts.CommandTimeout,
			EHLOPolicy:     v.probeOpts.EHLOPolicy,
			MailPolicy:     v.probeOpts.MailFromPolicy,
			Dialer:         dialer,
			Logger:         v.logger,
		})

		v.domain = check.NewDomainChecker(check.DomainConfig{
			Disposable:    v.disposable,
			CheckTypos:    v.domainOpts.CheckTypos,
			TypoThreshold: v.domainOpts.TypoThreshold,
		})

		v.checkers = []checker{
			check.NewSyntaxChecker(v.strict),
			check.NewRoleChecker(v.roles),
			check.NewDNSChecker(hosts),
			v.domain,
			check.NewSMTPChecker(check.SMTPConfig{
				MaxHosts:              v.probeOpts.MaxHosts,
				ContinueOnTempFailure: v.probeOpts.ContinueOnTempFailure,
				Logger:                v.logger,
			}, hosts, prober),
		}
	})
}

// Verify classifies email using the configured MailFrom as envelope sender.
func (v *Verifier) Verify(ctx context.Context, email string) (Result, error) {
	return v.VerifyFrom(ctx, email, "")
}

// VerifyFrom classifies email using mailFrom as envelope sender.
// An empty mailFrom falls back to the configured one; any other value must be
// a single local@domain without control characters or ErrInvalidProbeOptions
// is returned.
// The pipeline short-circuits: the first failing level decides the result.
func (v *Verifier) VerifyFrom(ctx context.Context, email, mailFrom string) (Result, error) {
	v.build()
	if v.err != nil {
		return Result{}, v.err
	}
	if mailFrom == "" {
		mailFrom = v.probeOpts.MailFrom
	} else if err := checkSender(mailFrom); err != nil {
		return Result{}, err
	}

	req := check.NewRequest(email, mailFrom)
	result := Result{Email: email, Classification: types.Unknown}

	for _, c := range v.checkers {
		cr := c.Check(ctx, req)
		result.Checks = append(result.Checks, cr)
		if cr.Suggestion != "" {
			result.Suggestion = cr.Suggestion
		}
		if cr.Classification != "" {
			result.Classification = cr.Classification
			result.MXHost = cr.MXHost
			result.SMTPCode = cr.SMTPCode
		}
		if !cr.Passed {
			break
		}
	}

	if result.Suggestion == "" && req.Email.Valid {
		result.Suggestion = v.domain.Suggest(req.Email.DomainUnicode)
	}
	result.Valid = result.Classification == types.Valid

	metrics.Verifications.WithLabelValues(string(result.Classification)).Inc()
	v.logger.Debug().
		Str("email", email).
		Str("classification", string(result.Classification)).
		Str("mx_host", result.MXHost).
		Int("smtp_code", result.SMTPCode).
		Msg("address verified")

	return result, nil
}

// VerifyMany verifies multiple emails concurrently.
// The result order matches the input slice order.
// Addresses are grouped by domain; each domain is worked by at most
// PerDomain lanes, each lane verifying its addresses one after another, and
// at most Workers lanes run at once.
func (v *Verifier) VerifyMany(ctx context.Context, emails []string, opts ...ConcurrencyOptions) ([]Result, error) {
	v.build()
	if v.err != nil {
		return nil, v.err
	}

	o := defaultConcurrencyOptions()
	if len(opts) > 0 {
		if opts[0].Workers > 0 {
			o.Workers = opts[0].Workers
		}
		if opts[0].PerDomain > 0 {
			o.PerDomain = opts[0].PerDomain
		}
	}

	results := make([]Result, len(emails))

	// Group indices by domain, keeping first-seen domain order.
	var order []string
	groups := make(map[string][]int)
	for i, e := range emails {
		d := domainKey(e)
		if _, ok := groups[d]; !ok {
			order = append(order, d)
		}
		groups[d] = append(groups[d], i)
	}

	var g errgroup.Group
	g.SetLimit(o.Workers)

	for _, d := range order {
		for _, lane := range splitLanes(groups[d], o.PerDomain) {
			g.Go(func() error {
				for _, idx := range lane {
					res, err := v.VerifyFrom(ctx, emails[idx], "")
					if err != nil {
						return fmt.Errorf("verifying %q: %w", emails[idx], err)
					}
					results[idx] = res
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// checkSender rejects envelope senders that are not a single local@domain
// or that could break out of the MAIL FROM line.
func checkSender(mailFrom string) error {
	if strings.Count(mailFrom, "@") != 1 {
		return fmt.Errorf("%w: MailFrom %q is not local@domain", ErrInvalidProbeOptions, mailFrom)
	}
	if parse.HasControl(mailFrom) {
		return fmt.Errorf("%w: MailFrom %q contains a control character", ErrInvalidProbeOptions, mailFrom)
	}
	return nil
}

// domainKey groups addresses by the lower-cased text after the last @.
func domainKey(email string) string {
	if atIdx := strings.LastIndex(email, "@"); atIdx >= 0 {
		return strings.ToLower(strings.TrimSpace(email[atIdx+1:]))
	}
	return ""
}

// splitLanes deals idxs round-robin into at most n lanes.
func splitLanes(idxs []int, n int) [][]int {
	if n > len(idxs) {
		n = len(idxs)
	}
	lanes := make([][]int, n)
	for i, idx := range idxs {
		lanes[i%n] = append(lanes[i%n], idx)
	}
	return lanes
}
