// Package refset provides the immutable, case-insensitive string sets used
// for static reference data such as role accounts and disposable domains.
// A Set is never modified after construction, so it can be shared freely
// between goroutines.
package refset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Set is a read-only set of lower-cased strings. The zero value is empty.
type Set struct {
	m map[string]struct{}
}

// New builds a Set from items. Blank items are skipped.
func New(items ...string) Set {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.ToLower(strings.TrimSpace(it))
		if it != "" {
			m[it] = struct{}{}
		}
	}
	return Set{m: m}
}

// Parse builds a Set from newline-separated text. Lines starting with # are comments.
func Parse(text string) Set {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			items = append(items, line)
		}
	}
	return New(items...)
}

// Load reads a Set from r in the same format as Parse.
func Load(r io.Reader) (Set, error) {
	var items []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			items = append(items, line)
		}
	}
	if err := sc.Err(); err != nil {
		return Set{}, fmt.Errorf("read reference set: %w", err)
	}
	return New(items...), nil
}

// LoadFile reads a Set from the file at path.
func LoadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return Set{}, fmt.Errorf("open reference set: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Contains reports whether v is in the set, ignoring case.
func (s Set) Contains(v string) bool {
	_, ok := s.m[strings.ToLower(v)]
	return ok
}

// Len returns the number of entries.
func (s Set) Len() int { return len(s.m) }
