package parse

import (
	"strings"

	"golang.org/x/net/idna"
)

// Email is the internal representation of a parsed email address.
// The check/ packages receive this as parameter.
type Email struct {
	Raw           string // the original, trimmed input
	Local         string // the part before @
	Domain        string // the part after @, ASCII/Punycode form (for DNS/SMTP)
	DomainUnicode string // the part after @, Unicode form (for display/typo detection)
	Valid         bool   // true when Raw contains exactly one @
	IDNAValid     bool   // false if the domain failed IDNA2008 conversion
}

// NewEmail splits the given email string on its single @.
// An address with zero or several @ characters is not Valid; empty local or
// domain parts are still Valid here and are left to the later checks.
// Supports internationalized domain names (IDNA2008).
func NewEmail(raw string) Email {
	raw = strings.TrimSpace(raw)

	if strings.Count(raw, "@") != 1 {
		return Email{Raw: raw}
	}
	atIdx := strings.IndexByte(raw, '@')
	local := raw[:atIdx]
	domain := strings.ToLower(raw[atIdx+1:])

	asciiDomain, unicodeDomain, ok := convertDomain(domain)
	if !ok {
		asciiDomain, unicodeDomain = domain, domain
	}

	return Email{
		Raw:           raw,
		Local:         local,
		Domain:        asciiDomain,
		DomainUnicode: unicodeDomain,
		Valid:         true,
		IDNAValid:     ok,
	}
}

// convertDomain converts a domain to both ASCII/Punycode and Unicode forms.
// Returns (ascii, unicode, ok). ok is false if the domain contains
// non-ASCII characters that fail IDNA2008 validation.
func convertDomain(domain string) (ascii, unicode string, ok bool) {
	if domain == "" {
		return "", "", true
	}

	hasNonASCII := false
	for _, r := range domain {
		if r > 127 {
			hasNonASCII = true
			break
		}
	}

	if hasNonASCII {
		a, err := idna.Lookup.ToASCII(domain)
		if err != nil {
			return "", "", false
		}
		return a, domain, true
	}

	// Pure ASCII domain: try to get Unicode display form
	// (handles existing Punycode like xn--mnchen-3ya.de → münchen.de)
	u, err := idna.Display.ToUnicode(domain)
	if err != nil {
		u = domain
	}
	return domain, u, true
}

// HasControl reports whether s contains an ASCII control character or DEL.
// Such an address could smuggle extra lines into an SMTP command.
func HasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			return true
		}
	}
	return false
}
