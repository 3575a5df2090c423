package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/mech"
	"github.com/mechkit/mechkit/pkg/resilience"
	"github.com/mechkit/mechkit/pkg/upstream"
)

func marketClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(upstream.New(srv.Client(), resilience.RetryPolicy{}, nil))
	client.BaseURL = srv.URL
	return client
}

func geckoPool() *keychain.Chain {
	return keychain.NewChain(map[string][]string{
		keychain.ServiceCoingecko: {"CG-demo-1", "CG-demo-2"},
	})
}

func TestMarketPingSendsKeyHeader(t *testing.T) {
	var gotPath, gotKey, gotAccept string
	client := marketClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-cg-demo-api-key")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"gecko_says":"(V3) To the Moon!"}`))
	})

	tk := Market(client)
	resp, err := tk.Run(context.Background(), geckoPool(), mech.Args{"command": "check_api_server_status"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != `{"gecko_says":"(V3) To the Moon!"}` {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Prompt != nil {
		t.Fatalf("market toolkit must not echo, got %v", resp.Prompt)
	}
	if gotPath != "/ping" || gotKey != "CG-demo-1" || gotAccept != "application/json" {
		t.Fatalf("unexpected request: path=%q key=%q accept=%q", gotPath, gotKey, gotAccept)
	}
}

func TestMarketPriceByIDQuery(t *testing.T) {
	var got url.Values
	client := marketClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/price" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		got = r.URL.Query()
		w.Write([]byte(`{"bitcoin":{"usd":64000}}`))
	})

	tk := Market(client)
	_, err := tk.Run(context.Background(), geckoPool(), mech.Args{
		"command":            "coin_price_by_id",
		"ids":                "bitcoin",
		"vs_currencies":      "usd",
		"include_market_cap": true,
		"precision":          "2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Get("ids") != "bitcoin" || got.Get("vs_currencies") != "usd" {
		t.Fatalf("missing required params: %v", got)
	}
	if got.Get("include_market_cap") != "true" || got.Get("precision") != "2" {
		t.Fatalf("missing optional params: %v", got)
	}
	if got.Has("include_24hr_vol") || got.Has("include_24hr_change") {
		t.Fatalf("false flags must stay off the wire: %v", got)
	}
}

func TestMarketCoinDataSerializesEverySection(t *testing.T) {
	var got url.Values
	client := marketClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/ethereum" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		got = r.URL.Query()
		w.Write([]byte(`{}`))
	})

	tk := Market(client)
	_, err := tk.Run(context.Background(), geckoPool(), mech.Args{
		"command":        "coin_data_by_id",
		"id":             "ethereum",
		"community_data": false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{
		"localization":   "true",
		"tickers":        "true",
		"market_data":    "true",
		"community_data": "false",
		"developer_data": "true",
		"sparkline":      "false",
	}
	for k, v := range want {
		if got.Get(k) != v {
			t.Fatalf("param %s: got %q, want %q (query %v)", k, got.Get(k), v, got)
		}
	}
}

func TestMarketCoinsMarketsDefaults(t *testing.T) {
	var got url.Values
	var rawQuery string
	client := marketClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	})

	tk := Market(client)
	_, err := tk.Run(context.Background(), geckoPool(), mech.Args{
		"command":     "coins_list_with_market_data",
		"vs_currency": "usd",
		"ids":         "bitcoin,ethereum",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Get("order") != "market_cap_desc" || got.Get("per_page") != "100" || got.Get("page") != "1" || got.Get("locale") != "en" {
		t.Fatalf("defaults missing: %v", got)
	}
	if got.Get("ids") != "bitcoin,ethereum" {
		t.Fatalf("unexpected ids: %q", got.Get("ids"))
	}
	if !strings.Contains(rawQuery, "ids=bitcoin%2Cethereum") {
		t.Fatalf("comma must be escaped on the wire: %s", rawQuery)
	}
	if got.Has("sparkline") || got.Has("category") {
		t.Fatalf("absent options must stay off the wire: %v", got)
	}
}

func TestMarketExchangeTickersAlwaysSendsFlags(t *testing.T) {
	var got url.Values
	client := marketClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exchanges/binance/tickers" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		got = r.URL.Query()
		w.Write([]byte(`{}`))
	})

	tk := Market(client)
	_, err := tk.Run(context.Background(), geckoPool(), mech.Args{
		"command": "exchange_tickers_by_id",
		"id":      "binance",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Get("include_exchange_logo") != "false" || got.Get("depth") != "false" {
		t.Fatalf("flags must be serialized even when false: %v", got)
	}
	if got.Get("order") != "trust_score_desc" {
		t.Fatalf("unexpected order: %q", got.Get("order"))
	}
}

func TestMarketDerivativesPagingOnlyWhenSet(t *testing.T) {
	var got url.Values
	client := marketClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`[]`))
	})

	tk := Market(client)
	_, err := tk.Run(context.Background(), geckoPool(), mech.Args{
		"command": "derivatives_exchanges_list_with_data",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Get("order") != "open_interest_btc_desc" {
		t.Fatalf("unexpected order: %q", got.Get("order"))
	}
	if got.Has("per_page") || got.Has("page") {
		t.Fatalf("paging must stay off the wire unless set: %v", got)
	}
}

func TestMarketMissingCommand(t *testing.T) {
	client := marketClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server must not be reached")
	})
	tk := Market(client)
	resp, err := tk.Run(context.Background(), geckoPool(), mech.Args{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "No command has been specified." {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
}

func TestMarketUnknownCommandListsAll(t *testing.T) {
	client := marketClient(t, func(w http.ResponseWriter, r *http.Request) {})
	tk := Market(client)
	resp, err := tk.Run(context.Background(), geckoPool(), mech.Args{"command": "moon_phase"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(resp.Text, `Command "moon_phase" is not in supported commands:`) {
		t.Fatalf("unexpected message: %q", resp.Text)
	}
	for _, name := range []string{
		`"check_api_server_status"`,
		`"coins_categories_list_with_market_data"`,
		`"public_companies_holdings"`,
	} {
		if !strings.Contains(resp.Text, name) {
			t.Fatalf("expected %s in %q", name, resp.Text)
		}
	}
}

func TestMarketRotatesOn429(t *testing.T) {
	client := marketClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-cg-demo-api-key") == "CG-demo-1" {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Throttled"))
			return
		}
		w.Write([]byte(`{"rates":{}}`))
	})

	pool := geckoPool()
	tk := Market(client)
	resp, err := tk.Run(context.Background(), pool, mech.Args{"command": "btc_to_currency_exchange_rates"})
	if err != nil {
		t.Fatalf("expected rotation to recover, got %v", err)
	}
	if resp.Text != `{"rates":{}}` {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if got := pool.Current(keychain.ServiceCoingecko); got != "CG-demo-2" {
		t.Fatalf("expected rotated key, got %q", got)
	}
}
