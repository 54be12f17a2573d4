package resolve

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a thread-safe, TTL-based cache in front of a Resolver.
// Concurrent resolutions of the same domain are deduplicated:
// only one set of DNS queries is performed and all waiters share the result.
type Cache struct {
	resolver *Resolver
	ttl      time.Duration
	group    singleflight.Group

	mu        sync.Mutex
	entries   map[string]entry
	nextSweep time.Time
}

type entry struct {
	hosts   []string
	expires time.Time
}

// NewCache wraps r with a cache whose entries live for ttl.
func NewCache(r *Resolver, ttl time.Duration) *Cache {
	return &Cache{
		resolver: r,
		ttl:      ttl,
		entries:  make(map[string]entry),
	}
}

// Resolve returns the cached host list for domain, resolving it on a miss.
// Empty results are cached too.
func (c *Cache) Resolve(ctx context.Context, domain string) []string {
	c.mu.Lock()
	if e, ok := c.entries[domain]; ok && time.Now().Before(e.expires) {
		c.mu.Unlock()
		return copyHosts(e.hosts)
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do(domain, func() (interface{}, error) {
		hosts := c.resolver.Resolve(context.WithoutCancel(ctx), domain)
		c.store(domain, hosts)
		return hosts, nil
	})
	return copyHosts(v.([]string))
}

// store records hosts for domain. At most once per TTL it also drops every
// expired entry, so the map only holds domains seen within the last two TTLs.
func (c *Cache) store(domain string, hosts []string) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !now.Before(c.nextSweep) {
		for d, e := range c.entries {
			if !now.Before(e.expires) {
				delete(c.entries, d)
			}
		}
		c.nextSweep = now.Add(c.ttl)
	}
	c.entries[domain] = entry{hosts: hosts, expires: now.Add(c.ttl)}
}

// Len returns the number of entries in the cache (for diagnostics).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// copyHosts keeps callers from mutating cached data.
func copyHosts(hosts []string) []string {
	if hosts == nil {
		return nil
	}
	out := make([]string, len(hosts))
	copy(out, hosts)
	return out
}
