package coingecko

import (
	"context"
	"net/url"

	"github.com/mechkit/mechkit/pkg/configutil"
	"github.com/mechkit/mechkit/pkg/errorsx"
	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/mech"
)

// priceParams covers both simple price lookups. The include_* flags
// are serialized only when true; precision rides through verbatim.
type priceParams struct {
	ID                   string `mapstructure:"id"`
	IDs                  string `mapstructure:"ids"`
	ContractAddresses    string `mapstructure:"contract_addresses"`
	VsCurrencies         string `mapstructure:"vs_currencies"`
	IncludeMarketCap     bool   `mapstructure:"include_market_cap"`
	Include24hrVol       bool   `mapstructure:"include_24hr_vol"`
	Include24hrChange    bool   `mapstructure:"include_24hr_change"`
	IncludeLastUpdatedAt bool   `mapstructure:"include_last_updated_at"`
	Precision            string `mapstructure:"precision"`
}

func priceQuery(p priceParams) url.Values {
	q := url.Values{}
	q.Set("vs_currencies", p.VsCurrencies)
	if p.IncludeMarketCap {
		q.Set("include_market_cap", "true")
	}
	if p.Include24hrVol {
		q.Set("include_24hr_vol", "true")
	}
	if p.Include24hrChange {
		q.Set("include_24hr_change", "true")
	}
	if p.IncludeLastUpdatedAt {
		q.Set("include_last_updated_at", "true")
	}
	if p.Precision != "" {
		q.Set("precision", p.Precision)
	}
	return q
}

func serverStatus(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		return client.get(ctx, keys, "/ping", nil)
	}
}

func priceByID(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p priceParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := priceQuery(p)
		q.Set("ids", p.IDs)
		return client.get(ctx, keys, "/simple/price", q)
	}
}

func priceByTokenAddress(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p priceParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := priceQuery(p)
		q.Set("contract_addresses", p.ContractAddresses)
		return client.get(ctx, keys, "/simple/token_price/"+url.PathEscape(p.ID), q)
	}
}

func supportedCurrencies(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		return client.get(ctx, keys, "/simple/supported_vs_currencies", nil)
	}
}
