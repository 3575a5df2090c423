package coinbase

import (
	"context"
	"encoding/json"

	"github.com/mechkit/mechkit/pkg/configutil"
	"github.com/mechkit/mechkit/pkg/errorsx"
	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/mech"
)

// ToolkitCommerceRequest is the request-style variant: snake_case
// command names in the "command" field, matched exactly.
const ToolkitCommerceRequest = "coinbase-commerce-request"

type chargeParams struct {
	Name        string            `mapstructure:"name"`
	Description string            `mapstructure:"description"`
	BuyerLocale string            `mapstructure:"buyer_locale"`
	CancelURL   string            `mapstructure:"cancel_url"`
	CheckoutID  string            `mapstructure:"checkout_id"`
	LocalPrice  map[string]string `mapstructure:"local_price"`
	Metadata    map[string]string `mapstructure:"metadata"`
	PricingType string            `mapstructure:"pricing_type"`
	RedirectURL string            `mapstructure:"redirect_url"`
}

type checkoutParams struct {
	Name          string            `mapstructure:"name"`
	Description   string            `mapstructure:"description"`
	BuyerLocale   string            `mapstructure:"buyer_locale"`
	LocalPrice    map[string]string `mapstructure:"local_price"`
	TotalPrice    map[string]string `mapstructure:"total_price"`
	Metadata      map[string]string `mapstructure:"metadata"`
	PricingType   string            `mapstructure:"pricing_type"`
	RequestedInfo []string          `mapstructure:"requested_info"`
}

// CommerceRequest builds the request-style Coinbase Commerce toolkit.
func CommerceRequest(client *Client) *mech.Toolkit {
	reg := mech.NewRegistry("tool", false,
		mech.Descriptor{
			Name:        "create_charge",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "Create a charge from typed fields; empty fields are omitted.",
			Run:         createChargeTyped(client),
		},
		mech.Descriptor{
			Name:        "get_charge",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "Fetch one charge by code or id.",
			Run: func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
				id, _ := args.String("charge_code_or_charge_id")
				return client.GetCharge(ctx, keys, id)
			},
		},
		mech.Descriptor{
			Name:        "get_all_charges",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "List every charge.",
			Run: func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
				return client.ListCharges(ctx, keys)
			},
		},
		mech.Descriptor{
			Name:        "create_new_checkout",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "Create a checkout session from typed fields; empty fields are omitted.",
			Run:         createCheckoutTyped(client),
		},
		mech.Descriptor{
			Name:        "get_all_checkout_sessions",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "List every checkout session.",
			Run: func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
				return client.ListCheckouts(ctx, keys)
			},
		},
		mech.Descriptor{
			Name:        "get_checkout_session",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "Fetch one checkout session by id.",
			Run: func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
				id, _ := args.String("checkout_id")
				return client.GetCheckout(ctx, keys, id)
			},
		},
	)
	return mech.NewToolkit(ToolkitCommerceRequest, "command", reg)
}

func createChargeTyped(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p chargeParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		body := map[string]any{}
		setIfPresent(body, "buyer_locale", p.BuyerLocale)
		setIfPresent(body, "name", p.Name)
		setIfPresent(body, "description", p.Description)
		setIfPresent(body, "cancel_url", p.CancelURL)
		setIfPresent(body, "checkout_id", p.CheckoutID)
		if len(p.LocalPrice) > 0 {
			body["local_price"] = p.LocalPrice
		}
		if len(p.Metadata) > 0 {
			body["metadata"] = p.Metadata
		}
		setIfPresent(body, "pricing_type", p.PricingType)
		setIfPresent(body, "redirect_url", p.RedirectURL)
		payload, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		return client.CreateCharge(ctx, keys, payload)
	}
}

func createCheckoutTyped(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		var p checkoutParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		body := map[string]any{}
		setIfPresent(body, "name", p.Name)
		setIfPresent(body, "description", p.Description)
		setIfPresent(body, "buyer_locale", p.BuyerLocale)
		if len(p.LocalPrice) > 0 {
			body["local_price"] = p.LocalPrice
		}
		if len(p.TotalPrice) > 0 {
			body["total_price"] = p.TotalPrice
		}
		if len(p.Metadata) > 0 {
			body["metadata"] = p.Metadata
		}
		setIfPresent(body, "pricing_type", p.PricingType)
		if len(p.RequestedInfo) > 0 {
			body["requested_info"] = p.RequestedInfo
		}
		payload, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		return client.CreateCheckout(ctx, keys, payload)
	}
}

func setIfPresent(body map[string]any, key, value string) {
	if value != "" {
		body[key] = value
	}
}
