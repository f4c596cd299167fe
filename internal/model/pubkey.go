package model

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/crypto"
)

// PubkeyLength is the byte width of every key in the ledger.
const PubkeyLength = 32

// Pubkey identifies mints, owners, vaults and ledger records.
type Pubkey [PubkeyLength]byte

// ParsePubkey decodes a base58 key.
func ParsePubkey(input string) (Pubkey, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Pubkey{}, fmt.Errorf("empty key")
	}
	raw := base58.Decode(input)
	if len(raw) != PubkeyLength {
		return Pubkey{}, fmt.Errorf("invalid key %q: decoded %d bytes", input, len(raw))
	}
	var key Pubkey
	copy(key[:], raw)
	return key, nil
}

// MustPubkey is ParsePubkey for constants and tests.
func MustPubkey(input string) Pubkey {
	key, err := ParsePubkey(input)
	if err != nil {
		panic(err)
	}
	return key
}

func (k Pubkey) String() string {
	return base58.Encode(k[:])
}

func (k Pubkey) IsZero() bool {
	return k == Pubkey{}
}

func (k Pubkey) Compare(other Pubkey) int {
	return bytes.Compare(k[:], other[:])
}

func (k Pubkey) Less(other Pubkey) bool {
	return k.Compare(other) < 0
}

func (k Pubkey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Pubkey) UnmarshalText(text []byte) error {
	parsed, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// CanonicalMints orders a mint pair so the smaller key is token A.
func CanonicalMints(x, y Pubkey) (Pubkey, Pubkey, error) {
	switch x.Compare(y) {
	case 0:
		return Pubkey{}, Pubkey{}, ErrIdenticalMints
	case 1:
		return y, x, nil
	default:
		return x, y, nil
	}
}

func derive(seeds ...[]byte) Pubkey {
	var key Pubkey
	copy(key[:], crypto.Keccak256(seeds...))
	return key
}

// DerivePool returns the pool address for a mint pair, independent of argument order.
func DerivePool(mintA, mintB Pubkey) (Pubkey, error) {
	a, b, err := CanonicalMints(mintA, mintB)
	if err != nil {
		return Pubkey{}, err
	}
	return derive([]byte("pool"), a[:], b[:]), nil
}

func DeriveVault(pool, mint Pubkey) Pubkey {
	return derive([]byte("vault"), pool[:], mint[:])
}

func DeriveLpMint(pool Pubkey) Pubkey {
	return derive([]byte("lp_mint"), pool[:])
}

func DerivePosition(pool, owner Pubkey) Pubkey {
	return derive([]byte("position"), pool[:], owner[:])
}

// DeriveOrder binds an order id to its pool and owner.
func DeriveOrder(pool, owner Pubkey, id string) Pubkey {
	return derive([]byte("limit_order"), pool[:], owner[:], []byte(id))
}
