// Package probe drives a single SMTP conversation far enough to learn how a
// server answers RCPT TO for one recipient, without ever sending a message.
//
// Each Probe call owns exactly one connection: it is dialed, walked through
// greeting, EHLO, MAIL FROM and RCPT TO, then closed on every path.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/optimode/mailprobe/internal/metrics"
	"github.com/optimode/mailprobe/internal/reply"
)

// Policy decides what a failed intermediate command does to the session.
type Policy string

const (
	// Ignore logs a 4xx/5xx reply and moves on to the next command.
	// A command that gets no reply in time always ends the session.
	Ignore Policy = "ignore"
	// Abort ends the session with a protocol_error sentinel reply.
	Abort Policy = "abort"
)

// Sentinel reply messages.
const (
	MsgTimeout     = "timeout"
	MsgCanceled    = "canceled"
	MsgRCPTTimeout = "rcpt_timeout"
)

// closeGrace bounds the best-effort RSET/QUIT writes.
const closeGrace = time.Second

// Config configures a Prober.
type Config struct {
	// HeloDomain is sent with EHLO. Required.
	HeloDomain string
	// Port is the SMTP port. Default: "25"
	Port string
	// Timeout bounds the whole session from dial to close. Default: 8s
	Timeout time.Duration
	// CommandTimeout bounds the wait for each reply. Default: Timeout
	CommandTimeout time.Duration
	// EHLOPolicy applies when EHLO is rejected. Default: Ignore
	EHLOPolicy Policy
	// MailPolicy applies when MAIL FROM is rejected. Default: Abort
	MailPolicy Policy
	// Dialer is injectable for testing and proxying. Default: *net.Dialer
	Dialer Dialer
	Logger zerolog.Logger
}

// Result is the RCPT TO outcome for one recipient on one host.
type Result struct {
	Host  string      `json:"host"`
	Reply reply.Reply `json:"reply"`
}

// Prober runs probe sessions. It holds no per-session state and is safe
// for concurrent use.
type Prober struct {
	cfg Config
}

// New creates a Prober, applying defaults for unset values.
func New(cfg Config) *Prober {
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = cfg.Timeout
	}
	if cfg.EHLOPolicy == "" {
		cfg.EHLOPolicy = Ignore
	}
	if cfg.MailPolicy == "" {
		cfg.MailPolicy = Abort
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &net.Dialer{}
	}
	return &Prober{cfg: cfg}
}

// Probe asks host whether it would accept mail from `from` to `to`.
// It never returns an error: every failure is folded into a code 0 reply.
func (p *Prober) Probe(ctx context.Context, host, from, to string) Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	log := p.cfg.Logger.With().Str("host", host).Str("rcpt", to).Logger()
	r := p.run(ctx, log, host, from, to)

	elapsed := time.Since(start)
	metrics.ProbeDuration.Observe(elapsed.Seconds())
	metrics.Probes.WithLabelValues(metrics.Outcome(r.Code)).Inc()
	log.Debug().Int("code", r.Code).Str("reply", r.Message).Dur("elapsed", elapsed).Msg("probe finished")

	return Result{Host: host, Reply: r}
}

func (p *Prober) run(ctx context.Context, log zerolog.Logger, host, from, to string) reply.Reply {
	log.Debug().Str("state", "connecting").Msg("probe state")
	conn, err := p.cfg.Dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, p.cfg.Port))
	if err != nil {
		if ctx.Err() != nil {
			return failureReply("connect", contextError(ctx))
		}
		return reply.Failure("socket_error:" + err.Error())
	}

	s := newSession(ctx, conn, p.cfg, log)
	defer s.close()
	return s.converse(from, to)
}

var (
	errTimeout        = errors.New(MsgTimeout)
	errCanceled       = errors.New(MsgCanceled)
	errCommandTimeout = errors.New("command timeout")
	errLineBreak      = errors.New("command contains a line break")
)

// socketError is a transport failure: refused, reset, closed or write error.
type socketError struct{ err error }

func (e *socketError) Error() string { return "socket_error:" + e.err.Error() }
func (e *socketError) Unwrap() error { return e.err }

// event is one notification from the connection's reader goroutine.
type event struct {
	data []byte
	err  error
}

type session struct {
	ctx    context.Context
	cfg    Config
	conn   net.Conn
	log    zerolog.Logger
	events chan event
	done   chan struct{}
	// broken means the connection is unusable and cleanup must skip RSET/QUIT.
	broken bool
}

func newSession(ctx context.Context, conn net.Conn, cfg Config, log zerolog.Logger) *session {
	if d, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(d)
	}
	s := &session{
		ctx:    ctx,
		cfg:    cfg,
		conn:   conn,
		log:    log,
		events: make(chan event, 16),
		done:   make(chan struct{}),
	}
	go s.read()
	return s
}

// read pushes every chunk received on the connection to s.events until the
// connection fails or the session ends.
func (s *session) read() {
	buf := make([]byte, 4096)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if !s.push(event{data: data}) {
				return
			}
		}
		if err != nil {
			s.push(event{err: err})
			return
		}
	}
}

func (s *session) push(ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *session) enter(state string) {
	s.log.Debug().Str("state", state).Msg("probe state")
}

func (s *session) converse(from, to string) reply.Reply {
	s.enter("awaiting_greeting")
	if _, err := s.await(); err != nil {
		s.broken = true
		return failureReply("greeting", err)
	}

	s.enter("sending_ehlo")
	if r, stop := s.step("EHLO", "EHLO "+s.cfg.HeloDomain, s.cfg.EHLOPolicy); stop {
		return r
	}

	s.enter("sending_mail_from")
	if r, stop := s.step("MAIL FROM", "MAIL FROM:<"+from+">", s.cfg.MailPolicy); stop {
		return r
	}

	s.enter("sending_rcpt_to")
	r, err := s.roundTrip("RCPT TO:<" + to + ">")
	if err != nil {
		if errors.Is(err, errCommandTimeout) {
			return reply.Failure(MsgRCPTTimeout)
		}
		return failureReply("RCPT TO", err)
	}
	return r
}

// step runs one intermediate command. Transport failures, command timeouts
// and the session timeout always stop the session; a 4xx/5xx reply stops it
// only under the Abort policy.
func (s *session) step(name, line string, policy Policy) (reply.Reply, bool) {
	r, err := s.roundTrip(line)
	switch {
	case err != nil:
		return failureReply(name, err), true
	case r.Code < 400:
		return r, false
	}

	detail := fmt.Sprintf("%s rejected: %d", name, r.Code)
	if policy == Ignore {
		s.log.Debug().Str("command", name).Str("detail", detail).Msg("command failed, continuing")
		return r, false
	}
	return reply.Failure("protocol_error:" + detail), true
}

func (s *session) roundTrip(line string) (reply.Reply, error) {
	if strings.ContainsAny(line, "\r\n") {
		return reply.Reply{}, errLineBreak
	}
	if _, err := s.conn.Write([]byte(line + "\r\n")); err != nil {
		return reply.Reply{}, s.fail(err)
	}
	return s.await()
}

// await accumulates bytes until they parse as a complete reply. It wakes
// only when the reader goroutine delivers data, the command timer fires or
// the session deadline passes.
func (s *session) await() (reply.Reply, error) {
	var timeout <-chan time.Time
	if d, ok := s.ctx.Deadline(); !ok || time.Until(d) > s.cfg.CommandTimeout {
		t := time.NewTimer(s.cfg.CommandTimeout)
		defer t.Stop()
		timeout = t.C
	}

	var buf []byte
	for {
		select {
		case ev := <-s.events:
			if ev.err != nil {
				return reply.Reply{}, s.fail(ev.err)
			}
			buf = append(buf, ev.data...)
			if r, ok := reply.Parse(buf); ok {
				return r, nil
			}
		case <-timeout:
			// The reply may still arrive and would be read as the answer
			// to the next command.
			s.broken = true
			return reply.Reply{}, errCommandTimeout
		case <-s.ctx.Done():
			return reply.Reply{}, s.fail(s.ctx.Err())
		}
	}
}

// fail marks the connection broken and maps err onto the session taxonomy.
func (s *session) fail(err error) error {
	s.broken = true
	if s.ctx.Err() != nil {
		return contextError(s.ctx)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		// The connection deadline is the session deadline.
		return errTimeout
	}
	return &socketError{err: err}
}

// close sends RSET and QUIT when the connection is still healthy, then
// releases it. It runs on every path out of a session.
func (s *session) close() {
	if !s.broken {
		s.enter("closing")
		deadline := time.Now().Add(closeGrace)
		if d, ok := s.ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		_ = s.conn.SetWriteDeadline(deadline)
		_, _ = s.conn.Write([]byte("RSET\r\n"))
		_, _ = s.conn.Write([]byte("QUIT\r\n"))
	}
	close(s.done)
	_ = s.conn.Close()
	s.enter("closed")
}

func contextError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return errCanceled
	}
	return errTimeout
}

func failureReply(stage string, err error) reply.Reply {
	switch {
	case errors.Is(err, errTimeout), errors.Is(err, errCommandTimeout):
		return reply.Failure(MsgTimeout)
	case errors.Is(err, errCanceled):
		return reply.Failure(MsgCanceled)
	}
	var se *socketError
	if errors.As(err, &se) {
		return reply.Failure(se.Error())
	}
	return reply.Failure("protocol_error:" + stage + ": " + err.Error())
}
