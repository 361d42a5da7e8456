package dispatch

import (
	"strings"

	"github.com/velalang/vela/internal/types"
)

// cacheKey identifies one memoized resolution: the call-site identity plus
// the operand runtime type signature. Binary operator sites use the same
// key shape with a two-type signature.
type cacheKey struct {
	site uint32
	sig  string
}

type cacheEntry struct {
	name  string
	index int
}

// Cache is a positive-only memoization layer over the resolver. Misses are
// never recorded, so a method registered after caching began is still
// found by the fall-through resolution; correctness must be identical with
// the cache empty, full, or absent.
type Cache struct {
	entries map[cacheKey]cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]cacheEntry)}
}

// Lookup returns the memoized candidate for a site and operand signature.
func (c *Cache) Lookup(site uint32, args []types.Type) (string, int, bool) {
	e, ok := c.entries[cacheKey{site: site, sig: typeSig(args)}]
	return e.name, e.index, ok
}

// Store memoizes one successful resolution.
func (c *Cache) Store(site uint32, args []types.Type, name string, index int) {
	c.entries[cacheKey{site: site, sig: typeSig(args)}] = cacheEntry{name: name, index: index}
}

// Reset drops every entry. Callers that register methods after dispatch
// has begun must reset, or accept the documented staleness: an entry keeps
// pointing at the candidate that matched when it was stored.
func (c *Cache) Reset() {
	c.entries = make(map[cacheKey]cacheEntry)
}

// Len reports the number of memoized resolutions.
func (c *Cache) Len() int {
	return len(c.entries)
}

func typeSig(args []types.Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}
