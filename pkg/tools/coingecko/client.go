// Package coingecko exposes the CoinGecko market-data API as a
// request-style toolkit: 36 snake_case commands in the "command"
// field, matched exactly, all read-only GETs.
package coingecko

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/upstream"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Client calls the CoinGecko public API. BaseURL is overridable for
// tests.
type Client struct {
	BaseURL  string
	Upstream *upstream.Client
}

func NewClient(up *upstream.Client) *Client {
	return &Client{BaseURL: defaultBaseURL, Upstream: up}
}

// get performs one GET with the demo API key header. A nil query is
// allowed for endpoints without parameters.
func (c *Client) get(ctx context.Context, keys keychain.Pool, path string, query url.Values) (string, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("x-cg-demo-api-key", keys.Current(keychain.ServiceCoingecko))
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return c.Upstream.Do(ctx, upstream.Request{
		Service: keychain.ServiceCoingecko,
		Method:  http.MethodGet,
		URL:     target,
		Header:  header,
	})
}
