// Package types contains the shared types for mailprobe.
// This package does not import anything from other mailprobe packages
// to avoid circular imports.
package types

// CheckLevel identifies the verification level.
type CheckLevel = string

const (
	LevelSyntax CheckLevel = "syntax"
	LevelRole   CheckLevel = "role"
	LevelDNS    CheckLevel = "dns"
	LevelDomain CheckLevel = "domain"
	LevelSMTP   CheckLevel = "smtp"
)

// Classification is the single verdict produced for a verified address.
type Classification string

const (
	InvalidFormat Classification = "invalid_format"
	RoleBased     Classification = "role_based"
	NoMXRecord    Classification = "no_mx_record"
	Disposable    Classification = "disposable"
	Valid         Classification = "valid"
	CatchAll      Classification = "catch_all"
	Invalid       Classification = "invalid"
	Unknown       Classification = "unknown"
)

// CheckResult is the outcome of a single verification level.
// A failed level carries the Classification that ends the pipeline.
// The SMTP level always carries a Classification.
type CheckResult struct {
	Level          CheckLevel     `json:"level"`
	Passed         bool           `json:"passed"`
	Classification Classification `json:"classification,omitempty"`
	Details        string         `json:"details,omitempty"`
	MXHost         string         `json:"mxHost,omitempty"`
	SMTPCode       int            `json:"smtpCode,omitempty"`
	Suggestion     string         `json:"suggestion,omitempty"`
}
