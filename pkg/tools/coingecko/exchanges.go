package coingecko

import (
	"context"
	"net/url"
	"strconv"

	"github.com/mechkit/mechkit/pkg/configutil"
	"github.com/mechkit/mechkit/pkg/errorsx"
	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/mech"
)

type platformsParams struct {
	Filter string `mapstructure:"filter"`
}

type categoriesParams struct {
	Order *string `mapstructure:"order"`
}

type exchangesPageParams struct {
	PerPage *int `mapstructure:"per_page"`
	Page    *int `mapstructure:"page"`
}

type exchangesListParams struct {
	Status *string `mapstructure:"status"`
}

type exchangeIDParams struct {
	ID string `mapstructure:"id"`
}

// exchangeTickersParams differs from the coin variant: the logo and
// depth flags always reach the wire, false included.
type exchangeTickersParams struct {
	ID                  string  `mapstructure:"id"`
	CoinIDs             string  `mapstructure:"coin_ids"`
	IncludeExchangeLogo *bool   `mapstructure:"include_exchange_logo"`
	Page                *int    `mapstructure:"page"`
	Depth               *bool   `mapstructure:"depth"`
	Order               *string `mapstructure:"order"`
}

type volumeChartParams struct {
	ID   string `mapstructure:"id"`
	Days string `mapstructure:"days"`
}

type derivativesExchangesParams struct {
	Order   *string `mapstructure:"order"`
	PerPage *int    `mapstructure:"per_page"`
	Page    *int    `mapstructure:"page"`
}

type derivativesExchangeParams struct {
	ID             string `mapstructure:"id"`
	IncludeTickers string `mapstructure:"include_tickers"`
}

func assetPlatforms(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p platformsParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		if p.Filter != "" {
			q.Set("filter", p.Filter)
		}
		return client.get(ctx, keys, "/asset_platforms", q)
	}
}

func categoriesList(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		return client.get(ctx, keys, "/coins/categories/list", nil)
	}
}

func categoriesMarkets(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p categoriesParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		q.Set("order", configutil.StringValue(p.Order, "market_cap_desc"))
		return client.get(ctx, keys, "/coins/categories", q)
	}
}

func exchangesMarkets(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p exchangesPageParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(configutil.IntValue(p.PerPage, 100)))
		q.Set("page", strconv.Itoa(configutil.IntValue(p.Page, 1)))
		return client.get(ctx, keys, "/exchanges", q)
	}
}

func exchangesList(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p exchangesListParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		q.Set("status", configutil.StringValue(p.Status, "active"))
		return client.get(ctx, keys, "/exchanges/list", q)
	}
}

func exchangeData(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p exchangeIDParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		return client.get(ctx, keys, "/exchanges/"+url.PathEscape(p.ID), nil)
	}
}

func exchangeTickers(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p exchangeTickersParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		if p.CoinIDs != "" {
			q.Set("coin_ids", p.CoinIDs)
		}
		q.Set("include_exchange_logo", strconv.FormatBool(configutil.BoolValue(p.IncludeExchangeLogo, false)))
		if p.Page != nil {
			q.Set("page", strconv.Itoa(*p.Page))
		}
		q.Set("depth", strconv.FormatBool(configutil.BoolValue(p.Depth, false)))
		q.Set("order", configutil.StringValue(p.Order, "trust_score_desc"))
		return client.get(ctx, keys, "/exchanges/"+url.PathEscape(p.ID)+"/tickers", q)
	}
}

func exchangeVolumeChart(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p volumeChartParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		q.Set("days", p.Days)
		return client.get(ctx, keys, "/exchanges/"+url.PathEscape(p.ID)+"/volume_chart", q)
	}
}

func derivativesTickers(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		return client.get(ctx, keys, "/derivatives", nil)
	}
}

func derivativesExchangesMarkets(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p derivativesExchangesParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		q.Set("order", configutil.StringValue(p.Order, "open_interest_btc_desc"))
		if p.PerPage != nil {
			q.Set("per_page", strconv.Itoa(*p.PerPage))
		}
		if p.Page != nil {
			q.Set("page", strconv.Itoa(*p.Page))
		}
		return client.get(ctx, keys, "/derivatives/exchanges", q)
	}
}

func derivativesExchangeData(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p derivativesExchangeParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		if p.IncludeTickers != "" {
			q.Set("include_tickers", p.IncludeTickers)
		}
		return client.get(ctx, keys, "/derivatives/exchanges/"+url.PathEscape(p.ID), q)
	}
}

func derivativesExchangesList(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		return client.get(ctx, keys, "/derivatives/exchanges/list", nil)
	}
}
