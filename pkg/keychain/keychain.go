// Package keychain manages rotating credential pools, one list of keys
// per external service. The dispatch layer only ever reads the current
// key and asks for a rotation after a rate limit.
package keychain

import "sync"

// Service names used as pool keys.
const (
	ServiceCoinbaseCommerce = "coinbase_commerce"
	ServiceCoingecko        = "coingecko"
	ServiceIrysWallet       = "irys_wallet"
)

// Pool is the credential capability consumed by the dispatch layer.
// Implementations must be safe for use from a single invocation at a
// time; concurrent callers synchronize here, not in the dispatcher.
type Pool interface {
	// RemainingRetries reports, per service, how many alternate keys a
	// single invocation may rotate through.
	RemainingRetries() map[string]int
	// Current returns the active key for a service, or "" when none is
	// configured.
	Current(service string) string
	// Rotate advances the cursor to the next key for a service.
	Rotate(service string)
}

// Chain is the standard Pool backed by in-memory key lists. Rotation
// wraps around, so Current always yields a configured key once one
// exists.
type Chain struct {
	mu     sync.Mutex
	keys   map[string][]string
	cursor map[string]int
}

func NewChain(keys map[string][]string) *Chain {
	c := &Chain{
		keys:   make(map[string][]string, len(keys)),
		cursor: make(map[string]int, len(keys)),
	}
	for service, list := range keys {
		filtered := make([]string, 0, len(list))
		for _, k := range list {
			if k != "" {
				filtered = append(filtered, k)
			}
		}
		if len(filtered) > 0 {
			c.keys[service] = filtered
		}
	}
	return c
}

func (c *Chain) RemainingRetries() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.keys))
	for service, list := range c.keys {
		out[service] = len(list) - 1
	}
	return out
}

func (c *Chain) Current(service string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.keys[service]
	if len(list) == 0 {
		return ""
	}
	return list[c.cursor[service]%len(list)]
}

func (c *Chain) Rotate(service string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.keys[service]
	if len(list) == 0 {
		return
	}
	c.cursor[service] = (c.cursor[service] + 1) % len(list)
}

// Services lists the configured service names.
func (c *Chain) Services() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.keys))
	for service := range c.keys {
		out = append(out, service)
	}
	return out
}
