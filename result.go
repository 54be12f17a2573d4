package mailprobe

// Result is the full outcome of an address verification.
type Result struct {
	Email          string         `json:"email"`
	Classification Classification `json:"classification"`
	// Valid is true only if Classification is Valid.
	Valid      bool          `json:"valid"`
	MXHost     string        `json:"mxHost,omitempty"`
	SMTPCode   int           `json:"smtpCode,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Checks     []CheckResult `json:"checks"`
}

// FailedChecks returns those CheckResults that did not pass.
func (r Result) FailedChecks() []CheckResult {
	var out []CheckResult
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// CheckFor returns the CheckResult for the given level, if it exists.
// The second return value indicates whether the given level was executed.
func (r Result) CheckFor(level CheckLevel) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Level == level {
			return c, true
		}
	}
	return CheckResult{}, false
}

// Classifications maps every input address to its classification string,
// the shape returned by the batch surface.
func Classifications(results []Result) map[string]string {
	out := make(map[string]string, len(results))
	for _, r := range results {
		out[r.Email] = string(r.Classification)
	}
	return out
}
