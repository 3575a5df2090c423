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

type coinsListParams struct {
	IncludePlatform bool `mapstructure:"include_platform"`
}

type marketsParams struct {
	VsCurrency            string  `mapstructure:"vs_currency"`
	IDs                   string  `mapstructure:"ids"`
	Category              string  `mapstructure:"category"`
	Order                 *string `mapstructure:"order"`
	PerPage               *int    `mapstructure:"per_page"`
	Page                  *int    `mapstructure:"page"`
	Sparkline             bool    `mapstructure:"sparkline"`
	PriceChangePercentage string  `mapstructure:"price_change_percentage"`
	Locale                *string `mapstructure:"locale"`
	Precision             string  `mapstructure:"precision"`
}

// coinDataParams pins the upstream defaults: every section flag is
// serialized on the wire even when the caller omits it.
type coinDataParams struct {
	ID            string `mapstructure:"id"`
	Localization  *bool  `mapstructure:"localization"`
	Tickers       *bool  `mapstructure:"tickers"`
	MarketData    *bool  `mapstructure:"market_data"`
	CommunityData *bool  `mapstructure:"community_data"`
	DeveloperData *bool  `mapstructure:"developer_data"`
	Sparkline     *bool  `mapstructure:"sparkline"`
}

type coinTickersParams struct {
	ID                  string  `mapstructure:"id"`
	ExchangeIDs         string  `mapstructure:"exchange_ids"`
	IncludeExchangeLogo bool    `mapstructure:"include_exchange_logo"`
	Page                *int    `mapstructure:"page"`
	Order               *string `mapstructure:"order"`
	Depth               bool    `mapstructure:"depth"`
}

type coinHistoryParams struct {
	ID           string `mapstructure:"id"`
	Date         string `mapstructure:"date"`
	Localization *bool  `mapstructure:"localization"`
}

// chartParams serves the market_chart lookups, by coin id and by
// contract address alike.
type chartParams struct {
	ID              string `mapstructure:"id"`
	ContractAddress string `mapstructure:"contract_address"`
	VsCurrency      string `mapstructure:"vs_currency"`
	Days            string `mapstructure:"days"`
	Interval        string `mapstructure:"interval"`
	Precision       string `mapstructure:"precision"`
}

type rangeParams struct {
	ID              string `mapstructure:"id"`
	ContractAddress string `mapstructure:"contract_address"`
	VsCurrency      string `mapstructure:"vs_currency"`
	From            string `mapstructure:"from_timestamp"`
	To              string `mapstructure:"to_timestamp"`
	Precision       string `mapstructure:"precision"`
}

type ohlcParams struct {
	ID         string `mapstructure:"id"`
	VsCurrency string `mapstructure:"vs_currency"`
	Days       string `mapstructure:"days"`
	Precision  string `mapstructure:"precision"`
}

type contractParams struct {
	ID              string `mapstructure:"id"`
	ContractAddress string `mapstructure:"contract_address"`
}

func chartQuery(p chartParams) url.Values {
	q := url.Values{}
	q.Set("vs_currency", p.VsCurrency)
	q.Set("days", p.Days)
	if p.Interval != "" {
		q.Set("interval", p.Interval)
	}
	if p.Precision != "" {
		q.Set("precision", p.Precision)
	}
	return q
}

func rangeQuery(p rangeParams) url.Values {
	q := url.Values{}
	q.Set("vs_currency", p.VsCurrency)
	q.Set("from", p.From)
	q.Set("to", p.To)
	if p.Precision != "" {
		q.Set("precision", p.Precision)
	}
	return q
}

func coinsList(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p coinsListParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		if p.IncludePlatform {
			q.Set("include_platform", "true")
		}
		return client.get(ctx, keys, "/coins/list", q)
	}
}

func coinsMarkets(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p marketsParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		q.Set("vs_currency", p.VsCurrency)
		if p.IDs != "" {
			q.Set("ids", p.IDs)
		}
		if p.Category != "" {
			q.Set("category", p.Category)
		}
		q.Set("order", configutil.StringValue(p.Order, "market_cap_desc"))
		q.Set("per_page", strconv.Itoa(configutil.IntValue(p.PerPage, 100)))
		q.Set("page", strconv.Itoa(configutil.IntValue(p.Page, 1)))
		if p.Sparkline {
			q.Set("sparkline", "true")
		}
		if p.PriceChangePercentage != "" {
			q.Set("price_change_percentage", p.PriceChangePercentage)
		}
		q.Set("locale", configutil.StringValue(p.Locale, "en"))
		if p.Precision != "" {
			q.Set("precision", p.Precision)
		}
		return client.get(ctx, keys, "/coins/markets", q)
	}
}

func coinData(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p coinDataParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		q.Set("localization", strconv.FormatBool(configutil.BoolValue(p.Localization, true)))
		q.Set("tickers", strconv.FormatBool(configutil.BoolValue(p.Tickers, true)))
		q.Set("market_data", strconv.FormatBool(configutil.BoolValue(p.MarketData, true)))
		q.Set("community_data", strconv.FormatBool(configutil.BoolValue(p.CommunityData, true)))
		q.Set("developer_data", strconv.FormatBool(configutil.BoolValue(p.DeveloperData, true)))
		q.Set("sparkline", strconv.FormatBool(configutil.BoolValue(p.Sparkline, false)))
		return client.get(ctx, keys, "/coins/"+url.PathEscape(p.ID), q)
	}
}

func coinTickers(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p coinTickersParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		if p.ExchangeIDs != "" {
			q.Set("exchange_ids", p.ExchangeIDs)
		}
		if p.IncludeExchangeLogo {
			q.Set("include_exchange_logo", "true")
		}
		if p.Page != nil {
			q.Set("page", strconv.Itoa(*p.Page))
		}
		q.Set("order", configutil.StringValue(p.Order, "trust_score_desc"))
		if p.Depth {
			q.Set("depth", "true")
		}
		return client.get(ctx, keys, "/coins/"+url.PathEscape(p.ID)+"/tickers", q)
	}
}

func coinHistory(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p coinHistoryParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		q.Set("date", p.Date)
		q.Set("localization", strconv.FormatBool(configutil.BoolValue(p.Localization, true)))
		return client.get(ctx, keys, "/coins/"+url.PathEscape(p.ID)+"/history", q)
	}
}

func coinMarketChart(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p chartParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		return client.get(ctx, keys, "/coins/"+url.PathEscape(p.ID)+"/market_chart", chartQuery(p))
	}
}

func coinMarketChartRange(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p rangeParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		return client.get(ctx, keys, "/coins/"+url.PathEscape(p.ID)+"/market_chart/range", rangeQuery(p))
	}
}

func coinOHLC(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p ohlcParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		q := url.Values{}
		q.Set("vs_currency", p.VsCurrency)
		q.Set("days", p.Days)
		if p.Precision != "" {
			q.Set("precision", p.Precision)
		}
		return client.get(ctx, keys, "/coins/"+url.PathEscape(p.ID)+"/ohlc", q)
	}
}

func contractData(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p contractParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		return client.get(ctx, keys, "/coins/"+url.PathEscape(p.ID)+"/contract/"+url.PathEscape(p.ContractAddress), nil)
	}
}

func contractMarketChart(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p chartParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		path := "/coins/" + url.PathEscape(p.ID) + "/contract/" + url.PathEscape(p.ContractAddress) + "/market_chart"
		return client.get(ctx, keys, path, chartQuery(p))
	}
}

func contractMarketChartRange(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p rangeParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		path := "/coins/" + url.PathEscape(p.ID) + "/contract/" + url.PathEscape(p.ContractAddress) + "/market_chart/range"
		return client.get(ctx, keys, path, rangeQuery(p))
	}
}
