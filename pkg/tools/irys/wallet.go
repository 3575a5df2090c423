package irys

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"
)

// DeriveAddress turns a hex-encoded secp256k1 private key into the EVM
// account address: Keccak-256 of the uncompressed public key (without
// the 0x04 marker byte), last 20 bytes, lower-case hex.
func DeriveAddress(walletKey string) (string, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(walletKey, "0x"))
	if err != nil {
		return "", fmt.Errorf("wallet key is not valid hex: %w", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("wallet key must be 32 bytes, got %d", len(raw))
	}
	priv := secp256k1.PrivKeyFromBytes(raw)
	pub := priv.PubKey().SerializeUncompressed()

	digest := sha3.NewLegacyKeccak256()
	digest.Write(pub[1:])
	sum := digest.Sum(nil)
	return "0x" + hex.EncodeToString(sum[12:]), nil
}
