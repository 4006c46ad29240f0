package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DecimalsCache memoizes mint decimal counts so the quote path does not
// hit the RPC node for every request. Mints never change decimals, but a
// TTL keeps a bad cached lookup from living forever.
type DecimalsCache struct {
	c *gocache.Cache
}

func NewDecimalsCache(ttl time.Duration) *DecimalsCache {
	return &DecimalsCache{c: gocache.New(ttl, 2*ttl)}
}

func (d *DecimalsCache) Get(mint string) (uint8, bool) {
	v, ok := d.c.Get(mint)
	if !ok {
		return 0, false
	}
	return v.(uint8), true
}

func (d *DecimalsCache) Set(mint string, decimals uint8) {
	d.c.SetDefault(mint, decimals)
}
