// Package roles holds the built-in list of role-account local parts:
// mailboxes that belong to a function or team rather than a person.
package roles

import (
	_ "embed"

	"github.com/optimode/mailprobe/internal/refset"
)

//go:embed list.txt
var rawList string

var roleSet = refset.Parse(rawList)

// Default returns the built-in role-account set.
func Default() refset.Set {
	return roleSet
}
