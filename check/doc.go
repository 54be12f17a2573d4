// Package check contains the verification levels for mailprobe.
// Each type implements the checker interface defined in verifier.go and is
// run in order: syntax, role, dns, domain, smtp. The first level that fails
// decides the address's Classification; the smtp level always decides it.
// These types can be used directly, but the recommended approach is
// to use the fluent builder API from the github.com/optimode/mailprobe package.
package check

import "github.com/optimode/mailprobe/internal/parse"

// Request is one verification: the parsed recipient and the envelope sender
// used for MAIL FROM.
type Request struct {
	Email    parse.Email
	MailFrom string
}

// NewRequest parses raw and pairs it with mailFrom.
func NewRequest(raw, mailFrom string) Request {
	return Request{Email: parse.NewEmail(raw), MailFrom: mailFrom}
}
