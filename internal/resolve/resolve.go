// Package resolve turns a mail domain into the ordered list of hosts that
// should be probed: MX targets by preference, or the domain itself when it
// has no MX records but does resolve to an address.
package resolve

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/optimode/mailprobe/internal/metrics"
)

// DNS is the subset of *net.Resolver used for host resolution.
// It is injectable for testing.
type DNS interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// Config configures a Resolver.
type Config struct {
	// LookupTimeout bounds every individual DNS query. Default: 5s
	LookupTimeout time.Duration
	// DNS is the backing resolver. Default: net.DefaultResolver
	DNS    DNS
	Logger zerolog.Logger
}

// Resolver resolves candidate mail hosts. Lookup errors are never returned;
// they degrade to "no result" and the next fallback is attempted.
type Resolver struct {
	cfg Config
}

// New creates a Resolver.
func New(cfg Config) *Resolver {
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 5 * time.Second
	}
	if cfg.DNS == nil {
		cfg.DNS = net.DefaultResolver
	}
	return &Resolver{cfg: cfg}
}

// Resolve returns the hosts to probe for domain, most preferred first.
// An empty result means the domain cannot receive mail.
func (r *Resolver) Resolve(ctx context.Context, domain string) []string {
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")
	if domain == "" {
		return nil
	}
	log := r.cfg.Logger.With().Str("domain", domain).Logger()

	mx, err := r.lookupMX(ctx, domain)
	if err != nil {
		log.Debug().Err(err).Msg("MX lookup failed")
	}
	if len(mx) > 0 {
		hosts := hostsFromMX(mx)
		if len(hosts) == 0 {
			log.Debug().Msg("null MX record, domain does not accept mail")
			metrics.Resolutions.WithLabelValues("null_mx").Inc()
			return nil
		}
		metrics.Resolutions.WithLabelValues("mx").Inc()
		return hosts
	}

	for _, network := range []string{"ip4", "ip6"} {
		ips, err := r.lookupIP(ctx, network, domain)
		if err != nil {
			log.Debug().Err(err).Str("network", network).Msg("address lookup failed")
			continue
		}
		if len(ips) > 0 {
			log.Debug().Str("network", network).Msg("no MX records, falling back to domain address")
			metrics.Resolutions.WithLabelValues("address").Inc()
			return []string{domain}
		}
	}
	metrics.Resolutions.WithLabelValues("none").Inc()
	return nil
}

func (r *Resolver) lookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
	defer cancel()
	return r.cfg.DNS.LookupMX(ctx, domain)
}

func (r *Resolver) lookupIP(ctx context.Context, network, domain string) ([]net.IP, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
	defer cancel()
	return r.cfg.DNS.LookupIP(ctx, network, domain)
}

// hostsFromMX sorts records by preference and strips the root dot.
// A null MX (RFC 7505, host ".") yields no hosts.
func hostsFromMX(records []*net.MX) []string {
	sorted := make([]*net.MX, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Pref < sorted[j].Pref
	})

	hosts := make([]string, 0, len(sorted))
	for _, mx := range sorted {
		host := strings.TrimSuffix(mx.Host, ".")
		if host == "" {
			continue
		}
		hosts = append(hosts, host)
	}
	return hosts
}
