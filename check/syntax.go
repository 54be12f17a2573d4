package check

import (
	"context"
	"strings"
	"unicode"

	"github.com/optimode/mailprobe/internal/parse"
	"github.com/optimode/mailprobe/types"
)

// SyntaxChecker rejects addresses that do not split into local@domain.
// In strict mode it additionally validates against RFC 5321/5322 with
// RFC 6531 (SMTPUTF8) and IDNA2008 internationalization support.
type SyntaxChecker struct {
	strict bool
}

func NewSyntaxChecker(strict bool) *SyntaxChecker {
	return &SyntaxChecker{strict: strict}
}

func (c *SyntaxChecker) Check(_ context.Context, req Request) types.CheckResult {
	level := types.LevelSyntax
	email := req.Email

	fail := func(details string) types.CheckResult {
		return types.CheckResult{Level: level, Passed: false, Classification: types.InvalidFormat, Details: details}
	}

	if email.Raw == "" {
		return fail("empty email address")
	}
	if !email.Valid {
		return fail("address must contain exactly one @")
	}
	if parse.HasControl(email.Raw) {
		return fail("address contains a control character")
	}
	if !c.strict {
		return types.CheckResult{Level: level, Passed: true, Details: "syntax ok"}
	}

	if !email.IDNAValid {
		return fail("domain is not a valid internationalized name")
	}

	// Length checks (RFC 5321)
	if len(email.Raw) > 254 {
		return fail("email address exceeds 254 characters")
	}
	if len(email.Local) > 64 {
		return fail("local part exceeds 64 characters")
	}

	if err := validateLocal(email.Local); err != "" {
		return fail(err)
	}

	// Domain validation (use Unicode form for user-friendly error messages;
	// IDNA2008 validation was already done during parsing)
	if err := validateDomain(email.DomainUnicode); err != "" {
		return fail(err)
	}

	return types.CheckResult{Level: level, Passed: true, Details: "syntax ok"}
}

// validateLocal validates the local part.
// Supports RFC 5321 ASCII characters and RFC 6531 (SMTPUTF8) Unicode characters.
// Returns error text, or "" if ok.
func validateLocal(local string) string {
	if local == "" {
		return "local part is empty"
	}

	// Quoted local part: "something"
	if len(local) >= 2 && strings.HasPrefix(local, `"`) && strings.HasSuffix(local, `"`) {
		return "" // in quoted form all printable characters are allowed
	}

	// RFC 5321 ASCII special characters (besides alphanumeric)
	asciiSpecial := "!#$%&'*+/=?^_`{|}~-."

	for _, ch := range local {
		if ch > 127 {
			if unicode.IsControl(ch) {
				return "local part contains control character"
			}
			continue
		}
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			continue
		}
		if !strings.ContainsRune(asciiSpecial, ch) {
			return "local part contains invalid character: " + string(ch)
		}
	}

	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return "local part cannot start or end with a dot"
	}
	if strings.Contains(local, "..") {
		return "local part cannot contain consecutive dots"
	}

	return ""
}

// validateDomain validates the domain part (Unicode form).
// Returns error text, or "" if ok.
func validateDomain(domain string) string {
	if domain == "" {
		return "domain is empty"
	}

	// IP literal: [127.0.0.1] - accept but don't validate deeply
	if strings.HasPrefix(domain, "[") && strings.HasSuffix(domain, "]") {
		return ""
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return "domain must have at least two labels"
	}

	for _, label := range labels {
		if label == "" {
			return "domain contains empty label (consecutive dots)"
		}
		if len(label) > 63 {
			return "domain label exceeds 63 characters"
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "domain label cannot start or end with a hyphen"
		}
		for _, ch := range label {
			if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '-' {
				return "domain label contains invalid character: " + string(ch)
			}
		}
	}

	tld := labels[len(labels)-1]
	allDigits := true
	for _, ch := range tld {
		if !unicode.IsDigit(ch) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return "TLD cannot be all digits"
	}

	return ""
}
