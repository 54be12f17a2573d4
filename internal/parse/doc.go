// Package parse decomposes raw address strings into local and domain parts.
package parse
