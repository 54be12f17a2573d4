// Package disposable holds the built-in list of throwaway mailbox providers.
package disposable

import (
	_ "embed"

	"github.com/optimode/mailprobe/internal/refset"
)

//go:embed list.txt
var rawList string

var domainSet = refset.Parse(rawList)

// Default returns the built-in disposable domain set.
func Default() refset.Set {
	return domainSet
}
