// Package coinbase exposes the Coinbase Commerce API as two toolkits:
// a natural-language one that matches descriptive tool phrases, and a
// request-style one keyed by snake_case command names.
package coinbase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/upstream"
)

const (
	defaultBaseURL = "https://api.commerce.coinbase.com"
	apiVersion     = "2018-03-22"
)

// Client calls the Coinbase Commerce REST API. BaseURL is overridable
// for tests.
type Client struct {
	BaseURL  string
	Upstream *upstream.Client
}

func NewClient(up *upstream.Client) *Client {
	return &Client{BaseURL: defaultBaseURL, Upstream: up}
}

func (c *Client) request(ctx context.Context, keys keychain.Pool, method, path string, body []byte) (string, error) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	header.Set("X-CC-Api-Key", keys.Current(keychain.ServiceCoinbaseCommerce))
	header.Set("X-CC-Version", apiVersion)
	return c.Upstream.Do(ctx, upstream.Request{
		Service: keychain.ServiceCoinbaseCommerce,
		Method:  method,
		URL:     c.BaseURL + path,
		Header:  header,
		Body:    body,
	})
}

func (c *Client) CreateCharge(ctx context.Context, keys keychain.Pool, payload []byte) (string, error) {
	return c.request(ctx, keys, http.MethodPost, "/charges", payload)
}

func (c *Client) GetCharge(ctx context.Context, keys keychain.Pool, chargeCodeOrID string) (string, error) {
	return c.request(ctx, keys, http.MethodGet, "/charges/"+url.PathEscape(chargeCodeOrID), nil)
}

func (c *Client) ListCharges(ctx context.Context, keys keychain.Pool) (string, error) {
	return c.request(ctx, keys, http.MethodGet, "/charges", nil)
}

func (c *Client) CreateCheckout(ctx context.Context, keys keychain.Pool, payload []byte) (string, error) {
	return c.request(ctx, keys, http.MethodPost, "/checkouts", payload)
}

func (c *Client) ListCheckouts(ctx context.Context, keys keychain.Pool) (string, error) {
	return c.request(ctx, keys, http.MethodGet, "/checkouts", nil)
}

func (c *Client) GetCheckout(ctx context.Context, keys keychain.Pool, checkoutID string) (string, error) {
	return c.request(ctx, keys, http.MethodGet, "/checkouts/"+url.PathEscape(checkoutID), nil)
}

func (c *Client) ListEvents(ctx context.Context, keys keychain.Pool) (string, error) {
	return c.request(ctx, keys, http.MethodGet, "/events", nil)
}

func (c *Client) GetEvent(ctx context.Context, keys keychain.Pool, eventID string) (string, error) {
	return c.request(ctx, keys, http.MethodGet, "/events/"+url.PathEscape(eventID), nil)
}
