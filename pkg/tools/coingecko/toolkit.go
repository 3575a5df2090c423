package coingecko

import (
	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/mech"
)

// ToolkitMarket is the CoinGecko market-data toolkit.
const ToolkitMarket = "coingecko"

// Market builds the CoinGecko toolkit. Registration order is the
// order the commands are listed to callers on an unknown-command
// response.
func Market(client *Client) *mech.Toolkit {
	reg := mech.NewRegistry("command", false,
		// ping
		desc("check_api_server_status", "Check the API server status.", serverStatus(client)),

		// simple
		desc("coin_price_by_id", "Current price of coins by id in any supported currency.", priceByID(client)),
		desc("coin_price_by_token_address", "Current price of tokens by contract address.", priceByTokenAddress(client)),
		desc("supported_currencies_list", "All supported vs_currency values.", supportedCurrencies(client)),

		// coins
		desc("coins_list", "All supported coins with id, name and symbol.", coinsList(client)),
		desc("coins_list_with_market_data", "Coins with market data: price, market cap and volume.", coinsMarkets(client)),
		desc("coin_data_by_id", "Full coin data: tickers, market, community and developer stats.", coinData(client)),
		desc("coin_tickers_by_id", "Coin tickers, paginated to 100 per page.", coinTickers(client)),
		desc("coin_historical_data_by_id", "Coin snapshot at a given date (dd-mm-yyyy).", coinHistory(client)),
		desc("coin_historical_chart_data_by_id", "Price, market cap and volume over the requested days.", coinMarketChart(client)),
		desc("coin_historical_chart_data_within_time_range_by_id", "Chart data between two UNIX timestamps.", coinMarketChartRange(client)),
		desc("coin_ohlc_chart_by_id", "OHLC candles over the requested days.", coinOHLC(client)),

		// contract
		desc("coin_data_by_token_address", "Full coin data looked up by contract address.", contractData(client)),
		desc("coin_historical_chart_data_by_token_address", "Chart data looked up by contract address.", contractMarketChart(client)),
		desc("coin_historical_chart_data_within_time_range_by_token_address", "Chart data by contract address between two UNIX timestamps.", contractMarketChartRange(client)),

		// asset platforms
		desc("asset_platforms_list", "All asset platforms with id and chain identifier.", assetPlatforms(client)),

		// categories
		desc("coins_categories_list", "All coin categories.", categoriesList(client)),
		desc("coins_categories_list_with_market_data", "Coin categories with market data.", categoriesMarkets(client)),

		// exchanges
		desc("exchanges_list_with_data", "Exchanges with volume and trust data.", exchangesMarkets(client)),
		desc("exchanges_list", "All supported exchange ids and names.", exchangesList(client)),
		desc("exchange_data_by_id", "Exchange volume and top tickers.", exchangeData(client)),
		desc("exchange_tickers_by_id", "Exchange tickers, paginated to 100 per page.", exchangeTickers(client)),
		desc("exchange_volume_chart_by_id", "Exchange volume chart in BTC over the requested days.", exchangeVolumeChart(client)),

		// derivatives
		desc("derivatives_tickers_list", "All derivative tickers.", derivativesTickers(client)),
		desc("derivatives_exchanges_list_with_data", "Derivatives exchanges with open interest and volume.", derivativesExchangesMarkets(client)),
		desc("derivatives_exchange_data_by_id", "One derivatives exchange, optionally with tickers.", derivativesExchangeData(client)),
		desc("derivatives_exchanges_list", "All derivatives exchange ids and names.", derivativesExchangesList(client)),

		// nfts
		desc("nfts_list", "Supported NFT collections with id, contract address and name.", nftsList(client)),
		desc("nfts_collection_data_by_id", "NFT collection data: floor price, market cap and volume.", nftData(client)),
		desc("nfts_collection_data_by_contract_address", "NFT collection data by platform and contract address.", nftDataByContract(client)),

		// exchange rates
		desc("btc_to_currency_exchange_rates", "BTC-to-currency exchange rates.", exchangeRates(client)),

		// search
		desc("search_queries", "Search coins, categories and markets.", searchQueries(client)),

		// trending
		desc("trending_search_list", "Trending coins, NFTs and categories of the last 24 hours.", trendingSearch(client)),

		// global
		desc("crypto_global_market_data", "Global market cap, volume and dominance.", globalMarket(client)),
		desc("global_defi_market_data", "Global decentralized finance market data.", globalDefi(client)),

		// companies
		desc("public_companies_holdings", "Public companies holding bitcoin or ethereum.", companiesHoldings(client)),
	)
	return mech.NewToolkit(ToolkitMarket, "command", reg)
}

func desc(name mech.Name, description string, run mech.Handler) mech.Descriptor {
	return mech.Descriptor{
		Name:        name,
		Service:     keychain.ServiceCoingecko,
		Description: description,
		Run:         run,
	}
}
