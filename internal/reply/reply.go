// Package reply parses SMTP server replies out of an accumulating byte buffer.
package reply

import (
	"strings"
)

// Reply is a parsed SMTP reply. Code 0 means no parseable reply was obtained
// (timeout, socket or protocol error) and Message then describes why.
type Reply struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OK reports whether the reply is a 2xx completion.
func (r Reply) OK() bool { return r.Code >= 200 && r.Code < 300 }

// Temporary reports whether the reply is a 4xx transient failure.
func (r Reply) Temporary() bool { return r.Code >= 400 && r.Code < 500 }

// Permanent reports whether the reply is a 5xx permanent failure.
func (r Reply) Permanent() bool { return r.Code >= 500 && r.Code < 600 }

// NoReply reports whether the reply is the code 0 sentinel.
func (r Reply) NoReply() bool { return r.Code == 0 }

// Failure builds a code 0 sentinel reply.
func Failure(msg string) Reply {
	return Reply{Code: 0, Message: msg}
}

// Parse inspects everything received so far for one command and reports
// whether it holds a complete reply.
//
// Only newline-terminated lines are considered; a trailing fragment is still
// in flight. Blank lines after the last real line are skipped. The last
// remaining line is authoritative: "ddd " (or a bare "ddd") completes the
// reply with that code, "ddd-" means more lines follow, and anything else is
// treated as incomplete so the caller keeps reading until its timeout.
//
// Message is the whole buffer joined line by line, not just the final line.
func Parse(buf []byte) (Reply, bool) {
	s := string(buf)
	end := strings.LastIndexByte(s, '\n')
	if end < 0 {
		return Reply{}, false
	}

	lines := splitLines(s[:end])
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return Reply{}, false
	}

	code, final, ok := parseLine(lines[len(lines)-1])
	if !ok || !final {
		return Reply{}, false
	}
	return Reply{Code: code, Message: strings.Join(lines, "\n")}, true
}

// splitLines splits on '\n' and strips a trailing '\r' from every line.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// parseLine returns the code of a reply line and whether it is a final line.
func parseLine(line string) (code int, final bool, ok bool) {
	if len(line) < 3 {
		return 0, false, false
	}
	for i := 0; i < 3; i++ {
		c := line[i]
		if c < '0' || c > '9' {
			return 0, false, false
		}
		code = code*10 + int(c-'0')
	}
	if code < 100 || code > 599 {
		return 0, false, false
	}
	switch {
	case len(line) == 3:
		return code, true, true
	case line[3] == ' ':
		return code, true, true
	case line[3] == '-':
		return code, false, true
	}
	return 0, false, false
}
