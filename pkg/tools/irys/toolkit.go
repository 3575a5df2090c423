package irys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mechkit/mechkit/pkg/configutil"
	"github.com/mechkit/mechkit/pkg/errorsx"
	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/mech"
)

// ToolkitStorage is the Irys network toolkit. It reads its command
// from the "prompt" field and echoes the command name back on success.
const ToolkitStorage = "irys"

// Storage builds the Irys toolkit.
func Storage(client *Client) *mech.Toolkit {
	reg := mech.NewRegistry("command", false,
		desc("address", "EVM address of the active wallet.", addressCmd(client)),
		desc("upload", "Upload data with optional tags, target and anchor.", uploadCmd(client)),
		desc("get_balance", "Node-side deposit balance of the active wallet.", balanceCmd(client)),
		desc("get_price", "Atomic price of storing the given number of bytes.", priceCmd(client)),
		desc("fund", "Credit the node-side balance with an atomic amount.", fundCmd(client)),
		desc("get_data", "Read stored data by transaction id.", dataCmd(client)),
		desc("get_tx_metadata", "Read the transaction envelope by id.", metadataCmd(client)),
	)
	return mech.NewToolkit(ToolkitStorage, "prompt", reg)
}

func desc(name mech.Name, description string, run mech.Handler) mech.Descriptor {
	return mech.Descriptor{
		Name:        name,
		Service:     keychain.ServiceIrysWallet,
		Description: description,
		EchoPrompt:  true,
		Run:         run,
	}
}

// walletHandler receives the active wallet key up front. Every
// command requires one, the public gateway reads included.
type walletHandler func(ctx context.Context, wallet string, args mech.Args) (string, error)

func withWallet(h walletHandler) mech.Handler {
	return func(ctx context.Context, keys keychain.Pool, args mech.Args) (string, error) {
		wallet := keys.Current(keychain.ServiceIrysWallet)
		if wallet == "" {
			return "", mech.UsageError{Msg: "No wallet has been specified."}
		}
		return h(ctx, wallet, args)
	}
}

// devnetFlag resolves the target network: a caller-supplied "devnet"
// boolean wins over the configured default.
func devnetFlag(c *Client, args mech.Args) bool {
	if v, ok := args["devnet"].(bool); ok {
		return v
	}
	return c.Devnet
}

type uploadParams struct {
	Data   string `mapstructure:"data"`
	Target string `mapstructure:"target"`
	Anchor string `mapstructure:"anchor"`
}

func addressCmd(client *Client) mech.Handler {
	return withWallet(func(ctx context.Context, wallet string, args mech.Args) (string, error) {
		return DeriveAddress(wallet)
	})
}

func uploadCmd(client *Client) mech.Handler {
	return withWallet(func(ctx context.Context, wallet string, args mech.Args) (string, error) {
		var p uploadParams
		if err := configutil.DecodeSettings(args, &p); err != nil {
			return "", errorsx.Wrap(err, errorsx.ReasonDecode)
		}
		tags, err := decodeTags(args["tags"])
		if err != nil {
			return "", err
		}
		item := UploadItem{Data: p.Data, Tags: tags, Target: p.Target, Anchor: p.Anchor}
		return client.Upload(ctx, devnetFlag(client, args), item)
	})
}

func balanceCmd(client *Client) mech.Handler {
	return withWallet(func(ctx context.Context, wallet string, args mech.Args) (string, error) {
		address, err := DeriveAddress(wallet)
		if err != nil {
			return "", err
		}
		return client.Balance(ctx, devnetFlag(client, args), address)
	})
}

func priceCmd(client *Client) mech.Handler {
	return withWallet(func(ctx context.Context, wallet string, args mech.Args) (string, error) {
		byteCount, err := intArg(args, "bytes")
		if err != nil {
			return "", err
		}
		return client.Price(ctx, devnetFlag(client, args), byteCount)
	})
}

func fundCmd(client *Client) mech.Handler {
	return withWallet(func(ctx context.Context, wallet string, args mech.Args) (string, error) {
		amount, err := intArg(args, "amount_atomic")
		if err != nil {
			return "", err
		}
		address, err := DeriveAddress(wallet)
		if err != nil {
			return "", err
		}
		return client.Fund(ctx, devnetFlag(client, args), address, amount)
	})
}

func dataCmd(client *Client) mech.Handler {
	return withWallet(func(ctx context.Context, wallet string, args mech.Args) (string, error) {
		txID, _ := args.String("tx_id")
		return client.Data(ctx, txID)
	})
}

func metadataCmd(client *Client) mech.Handler {
	return withWallet(func(ctx context.Context, wallet string, args mech.Args) (string, error) {
		txID, _ := args.String("tx_id")
		return client.TxMetadata(ctx, txID)
	})
}

// decodeTags accepts either a JSON string or an already-decoded list
// of name/value pairs.
func decodeTags(raw any) ([]Tag, error) {
	if raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok {
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		var tags []Tag
		if err := json.Unmarshal([]byte(s), &tags); err != nil {
			return nil, errors.New("tags must be a JSON array of name/value pairs")
		}
		return tags, nil
	}
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.New("tags must be a JSON array of name/value pairs")
	}
	var tags []Tag
	if err := json.Unmarshal(buf, &tags); err != nil {
		return nil, errors.New("tags must be a JSON array of name/value pairs")
	}
	return tags, nil
}

// intArg tolerates callers that send numbers as JSON numbers or as
// decimal strings.
func intArg(args mech.Args, key string) (int64, error) {
	switch v := args[key].(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}
