package coinbase

import (
	"context"
	"errors"

	"github.com/tidwall/gjson"

	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/mech"
)

// ToolkitCommerce is the natural-language variant: operations are
// descriptive phrases arriving in the "prompt" field, matched
// case-insensitively.
const ToolkitCommerce = "coinbase-commerce"

// Commerce builds the natural-language Coinbase Commerce toolkit.
func Commerce(client *Client) *mech.Toolkit {
	reg := mech.NewRegistry("tool", true,
		mech.Descriptor{
			Name:        "creates a charge",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "Create a charge from a raw JSON payload.",
			Run:         chargeFromPayload(client),
		},
		mech.Descriptor{
			Name:        "returns the charge with the order code",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "Fetch one charge by code or id.",
			Run: func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
				id, _ := args.String("charge_code_or_charge_id")
				return client.GetCharge(ctx, keys, id)
			},
		},
		mech.Descriptor{
			Name:        "returns all charges",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "List every charge.",
			Run: func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
				return client.ListCharges(ctx, keys)
			},
		},
		mech.Descriptor{
			Name:        "creates a new checkout",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "Create a checkout session from a raw JSON payload.",
			Run:         checkoutFromPayload(client),
		},
		mech.Descriptor{
			Name:        "returns all checkout sessions",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "List every checkout session.",
			Run: func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
				return client.ListCheckouts(ctx, keys)
			},
		},
		mech.Descriptor{
			Name:        "returns a specific checkout session",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "Fetch one checkout session by id.",
			Run: func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
				id, _ := args.String("checkout_id")
				return client.GetCheckout(ctx, keys, id)
			},
		},
		mech.Descriptor{
			Name:        "list events",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "List webhook events.",
			Run: func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
				return client.ListEvents(ctx, keys)
			},
		},
		mech.Descriptor{
			Name:        "show an event",
			Service:     keychain.ServiceCoinbaseCommerce,
			Description: "Fetch one webhook event by id.",
			Run: func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
				id, _ := args.String("event_id")
				return client.GetEvent(ctx, keys, id)
			},
		},
	)
	return mech.NewToolkit(ToolkitCommerce, "prompt", reg)
}

// validatedPayload checks the free-form payload argument the way the
// API expects it: a string holding valid JSON. The errors surface as
// soft failures, not usage responses.
func validatedPayload(args mech.Args) ([]byte, error) {
	v, ok := args["payload"]
	if !ok {
		v = ""
	}
	s, ok := v.(string)
	if !ok {
		return nil, errors.New("payload must be a string")
	}
	if !gjson.Valid(s) {
		return nil, errors.New("payload must be a valid JSON string")
	}
	return []byte(s), nil
}

func chargeFromPayload(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		payload, err := validatedPayload(args)
		if err != nil {
			return "", err
		}
		return client.CreateCharge(ctx, keys, payload)
	}
}

func checkoutFromPayload(client *Client) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		payload, err := validatedPayload(args)
		if err != nil {
			return "", err
		}
		return client.CreateCheckout(ctx, keys, payload)
	}
}
