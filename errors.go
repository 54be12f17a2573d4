package mailprobe

import "errors"

var (
	// ErrInvalidProbeOptions is returned when WithProbe is given a MailFrom
	// that is not a single local@domain address or an unknown failure policy.
	ErrInvalidProbeOptions = errors.New("mailprobe: invalid ProbeOptions")

	// ErrInvalidProxy is returned when ProbeOptions.ProxyURL cannot be used.
	ErrInvalidProxy = errors.New("mailprobe: invalid proxy url")

	// ErrInvalidTable is returned when a role or disposable table file cannot be read.
	ErrInvalidTable = errors.New("mailprobe: invalid reference table")
)
