package keychain

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/mechkit/mechkit/pkg/errorsx"
)

// envKeys binds the comma-separated key lists from the environment:
// MECHKIT_COINBASE_COMMERCE_API_KEYS, MECHKIT_COINGECKO_API_KEYS and
// MECHKIT_IRYS_WALLETS.
type envKeys struct {
	CoinbaseCommerceAPIKeys []string `envconfig:"COINBASE_COMMERCE_API_KEYS"`
	CoingeckoAPIKeys        []string `envconfig:"COINGECKO_API_KEYS"`
	IrysWallets             []string `envconfig:"IRYS_WALLETS"`
}

// FromEnv builds a Chain from MECHKIT_-prefixed environment variables.
// Services with no keys configured are simply absent from the pool.
func FromEnv() (*Chain, error) {
	var e envKeys
	if err := envconfig.Process("mechkit", &e); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonKeychain)
	}
	return NewChain(map[string][]string{
		ServiceCoinbaseCommerce: e.CoinbaseCommerceAPIKeys,
		ServiceCoingecko:        e.CoingeckoAPIKeys,
		ServiceIrysWallet:       e.IrysWallets,
	}), nil
}
