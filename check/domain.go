package check

import (
	"context"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/optimode/mailprobe/internal/refset"
	"github.com/optimode/mailprobe/types"
)

// DomainConfig is the domain checker configuration.
type DomainConfig struct {
	Disposable    refset.Set
	CheckTypos    bool
	TypoThreshold int
}

// DomainChecker detects disposable domains and typos. It runs after the dns
// level, so only domains that actually route mail are labelled disposable.
type DomainChecker struct {
	cfg            DomainConfig
	knownProviders []string // known major email providers for typo detection
}

// defaultKnownProviders is the list of known major email providers.
// If the user's domain is within TypoThreshold distance from one of these,
// a suggestion is given (but the check does not fail).
var defaultKnownProviders = []string{
	"gmail.com", "googlemail.com",
	"yahoo.com", "yahoo.co.uk", "yahoo.fr", "yahoo.de",
	"outlook.com", "hotmail.com", "hotmail.co.uk", "live.com",
	"icloud.com", "me.com", "mac.com",
	"protonmail.com", "proton.me",
	"aol.com",
	"zoho.com",
	"yandex.com", "yandex.ru",
	"mail.com",
	"gmx.com", "gmx.net", "gmx.de",
	"fastmail.com",
	"tutanota.com",
}

func NewDomainChecker(cfg DomainConfig) *DomainChecker {
	return &DomainChecker{
		cfg:            cfg,
		knownProviders: defaultKnownProviders,
	}
}

func (c *DomainChecker) Check(_ context.Context, req Request) types.CheckResult {
	level := types.LevelDomain
	email := req.Email

	// Use ASCII/Punycode domain for disposable check (list is ASCII)
	if c.cfg.Disposable.Contains(email.Domain) {
		return types.CheckResult{
			Level:          level,
			Passed:         false,
			Classification: types.Disposable,
			Details:        "disposable email domain detected",
		}
	}

	if suggestion := c.Suggest(email.DomainUnicode); suggestion != "" {
		return types.CheckResult{
			Level:      level,
			Passed:     true, // typo suspicion does not fail
			Details:    "possible typo in domain",
			Suggestion: suggestion,
		}
	}

	return types.CheckResult{Level: level, Passed: true, Details: "domain ok"}
}

// Suggest finds the closest known provider for domain.
// If the distance is <= TypoThreshold and the domain is not an exact match,
// it returns the suggested domain. Otherwise returns an empty string.
// Unicode domains give better Levenshtein matching than Punycode.
func (c *DomainChecker) Suggest(domain string) string {
	if !c.cfg.CheckTypos || domain == "" {
		return ""
	}
	domain = strings.ToLower(domain)

	if c.cfg.TypoThreshold <= 0 {
		return ""
	}
	// Distance stops early once MaxCost is exceeded.
	params := levenshtein.NewParams().MaxCost(c.cfg.TypoThreshold)
	bestDist := c.cfg.TypoThreshold + 1
	bestMatch := ""

	for _, provider := range c.knownProviders {
		if domain == provider {
			return "" // exact match, no typo
		}
		dist := levenshtein.Distance(domain, provider, params)
		if dist <= c.cfg.TypoThreshold && dist < bestDist {
			bestDist = dist
			bestMatch = provider
		}
	}

	return bestMatch
}
