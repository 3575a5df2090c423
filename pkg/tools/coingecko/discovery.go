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

type nftsListParams struct {
	Order   string `mapstructure:"order"`
	PerPage *int   `mapstructure:"per_page"`
	Page    *int   `mapstructure:"page"`
}

type nftIDParams struct {
	ID string `mapstructure:"id"`
}

type nftContractParams struct {
	AssetPlatformID string `mapstructure:"asset_platform_id"`
	ContractAddress string `mapstructure:"contract_address"`
}

type searchParams struct {
	Query string `mapstructure:"query"`
}

type companiesParams struct {
	CoinID string `mapstructure:"coin_id"`
}

func nftsList(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p nftsListParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		if p.Order != "" {
			q.Set("order", p.Order)
		}
		if p.PerPage != nil {
			q.Set("per_page", strconv.Itoa(*p.PerPage))
		}
		if p.Page != nil {
			q.Set("page", strconv.Itoa(*p.Page))
		}
		return client.get(ctx, keys, "/nfts/list", q)
	}
}

func nftData(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p nftIDParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		return client.get(ctx, keys, "/nfts/"+url.PathEscape(p.ID), nil)
	}
}

func nftDataByContract(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p nftContractParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		path := "/nfts/" + url.PathEscape(p.AssetPlatformID) + "/contract/" + url.PathEscape(p.ContractAddress)
		return client.get(ctx, keys, path, nil)
	}
}

func exchangeRates(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		return client.get(ctx, keys, "/exchange_rates", nil)
	}
}

func searchQueries(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p searchParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		q.Set("query", p.Query)
		return client.get(ctx, keys, "/search", q)
	}
}

func trendingSearch(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		return client.get(ctx, keys, "/search/trending", nil)
	}
}

func globalMarket(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		return client.get(ctx, keys, "/global", nil)
	}
}

func globalDefi(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		return client.get(ctx, keys, "/global/decentralized_finance_defi", nil)
	}
}

func companiesHoldings(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p companiesParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		return client.get(ctx, keys, "/companies/public_treasury/"+url.PathEscape(p.CoinID), nil)
	}
}
