package nft

import (
	"crypto/ed25519"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/blake2b"
)

// IsAddressValid reports whether s is a well-formed bech32 address.
func IsAddressValid(s string) bool {
	_, err := ParseAddress(s)
	return err == nil
}

// Bech32ToHex returns the 0x prefixed hex of the address payload
// (public key hash, alias id or nft id), without the kind byte.
func Bech32ToHex(bech32Address string) (string, error) {
	a, err := ParseAddress(bech32Address)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(a.payload[:]), nil
}

// HexToBech32 encodes a hex public key hash as an Ed25519 address.
func HexToBech32(hex, hrp string) (string, error) {
	return hexToBech32(hex, hrp, Ed25519)
}

// AliasIdToBech32 encodes an alias id as an alias address.
func AliasIdToBech32(aliasId, hrp string) (string, error) {
	return hexToBech32(aliasId, hrp, Alias)
}

// NftIdToBech32 encodes an nft id as the address owned by that NFT.
func NftIdToBech32(nftId, hrp string) (string, error) {
	id, err := ParseNftId(nftId)
	if err != nil {
		return "", err
	}

	a, err := NewAddress(hrp, NftKind, id.Bytes())
	if err != nil {
		return "", err
	}
	return a.Bech32(), nil
}

// PublicKeyToBech32 derives the Ed25519 address of a hex encoded public key.
// The address payload is the blake2b-256 hash of the key.
func PublicKeyToBech32(publicKey, hrp string) (string, error) {
	b, err := hexutil.Decode(publicKey)
	if err != nil {
		return "", fmt.Errorf("hex decoding failed: %w", err)
	}
	if len(b) != ed25519.PublicKeySize {
		return "", fmt.Errorf("expected %d public key bytes, got %d", ed25519.PublicKeySize, len(b))
	}

	hash := blake2b.Sum256(b)

	a, err := NewAddress(hrp, Ed25519, hash[:])
	if err != nil {
		return "", err
	}
	return a.Bech32(), nil
}

func hexToBech32(hex, hrp string, kind AddressKind) (string, error) {
	b, err := hexutil.Decode(hex)
	if err != nil {
		return "", fmt.Errorf("hex decoding failed: %w", err)
	}

	a, err := NewAddress(hrp, kind, b)
	if err != nil {
		return "", err
	}
	return a.Bech32(), nil
}
