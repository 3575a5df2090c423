// Package irys exposes the Irys network (bundler nodes plus the public
// gateway) as an echo-style toolkit. The rotating credential is the
// wallet private key itself, rather than an API token.
package irys

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/upstream"
)

const (
	mainnetNodeURL = "https://node1.irys.xyz"
	devnetNodeURL  = "https://devnet.irys.xyz"
	gatewayURL     = "https://gateway.irys.xyz"

	// token is the payment chain identifier in every node route.
	token = "ethereum"
)

// Tag is one name/value pair attached to an upload.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// UploadItem is the payload posted to a bundler node.
type UploadItem struct {
	Data   string `json:"data"`
	Tags   []Tag  `json:"tags,omitempty"`
	Target string `json:"target,omitempty"`
	Anchor string `json:"anchor,omitempty"`
}

// Client calls Irys bundler nodes and the read gateway. No request
// carries the wallet key; it only signs locally and selects the
// rotation pool, so requests are tagged with the wallet service for
// rate-limit accounting. Devnet selects the devnet node by default;
// callers may override it per invocation. URLs are overridable for
// tests.
type Client struct {
	NodeURL    string
	DevnetURL  string
	GatewayURL string
	Devnet     bool
	Upstream   *upstream.Client
}

func NewClient(up *upstream.Client, devnet bool) *Client {
	return &Client{
		NodeURL:    mainnetNodeURL,
		DevnetURL:  devnetNodeURL,
		GatewayURL: gatewayURL,
		Devnet:     devnet,
		Upstream:   up,
	}
}

func (c *Client) node(devnet bool) string {
	if devnet {
		return c.DevnetURL
	}
	return c.NodeURL
}

// Price quotes the atomic cost of storing byteCount bytes.
func (c *Client) Price(ctx context.Context, devnet bool, byteCount int64) (string, error) {
	return c.get(ctx, c.node(devnet)+"/price/"+token+"/"+strconv.FormatInt(byteCount, 10))
}

// Balance reads the node-side deposit balance of an address.
func (c *Client) Balance(ctx context.Context, devnet bool, address string) (string, error) {
	return c.get(ctx, c.node(devnet)+"/account/balance/"+token+"?address="+url.QueryEscape(address))
}

// Fund credits the node-side balance of an address with an atomic
// amount.
func (c *Client) Fund(ctx context.Context, devnet bool, address string, amount int64) (string, error) {
	body, err := json.Marshal(struct {
		Address string `json:"address"`
		Amount  string `json:"amount"`
	}{Address: address, Amount: strconv.FormatInt(amount, 10)})
	if err != nil {
		return "", err
	}
	return c.post(ctx, c.node(devnet)+"/account/fund/"+token, body)
}

// Upload posts one item to a bundler node.
func (c *Client) Upload(ctx context.Context, devnet bool, item UploadItem) (string, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return "", err
	}
	return c.post(ctx, c.node(devnet)+"/tx/"+token, body)
}

// Data reads the stored payload of a transaction from the gateway.
func (c *Client) Data(ctx context.Context, txID string) (string, error) {
	return c.get(ctx, c.GatewayURL+"/"+url.PathEscape(txID))
}

// TxMetadata reads the transaction envelope from the gateway.
func (c *Client) TxMetadata(ctx context.Context, txID string) (string, error) {
	return c.get(ctx, c.GatewayURL+"/tx/"+url.PathEscape(txID))
}

func (c *Client) get(ctx context.Context, target string) (string, error) {
	return c.Upstream.Do(ctx, upstream.Request{
		Service: keychain.ServiceIrysWallet,
		Method:  http.MethodGet,
		URL:     target,
	})
}

func (c *Client) post(ctx context.Context, target string, body []byte) (string, error) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return c.Upstream.Do(ctx, upstream.Request{
		Service: keychain.ServiceIrysWallet,
		Method:  http.MethodPost,
		URL:     target,
		Header:  header,
		Body:    body,
	})
}
