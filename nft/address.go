package nft

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressKind is the type byte prefixed to the address payload.
type AddressKind byte

const (
	Ed25519 AddressKind = 0
	Alias   AddressKind = 8
	NftKind AddressKind = 16
)

// Length of every address payload (public key hash, alias id or nft id).
const addressPayloadLength = 32

// Longest human-readable part allowed by BIP-173.
const maxHrpLength = 83

func (k AddressKind) String() string {
	switch k {
	case Ed25519:
		return "ed25519"
	case Alias:
		return "alias"
	case NftKind:
		return "nft"
	default:
		return fmt.Sprintf("unknown(%d)", byte(k))
	}
}

func (k AddressKind) valid() bool {
	return k == Ed25519 || k == Alias || k == NftKind
}

// Address is a decoded bech32 ledger address.
type Address struct {
	hrp     string
	kind    AddressKind
	payload [addressPayloadLength]byte
	text    string
}

// ParseAddress decodes a bech32 address of any network.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, fmt.Errorf("empty address")
	}

	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("bech32 decoding failed: %w", err)
	}

	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("bech32 payload conversion failed: %w", err)
	}

	a, err := addressFromBytes(raw)
	if err != nil {
		return Address{}, err
	}

	a.hrp = hrp
	a.text = s
	return a, nil
}

// NewAddress encodes a payload of the given kind for the network hrp.
func NewAddress(hrp string, kind AddressKind, payload []byte) (Address, error) {
	if err := validateHrp(hrp); err != nil {
		return Address{}, err
	}

	a, err := addressFromBytes(append([]byte{byte(kind)}, payload...))
	if err != nil {
		return Address{}, err
	}

	conv, err := bech32.ConvertBits(a.bytes(), 8, 5, true)
	if err != nil {
		return Address{}, err
	}

	text, err := bech32.Encode(hrp, conv)
	if err != nil {
		return Address{}, err
	}

	a.hrp = hrp
	a.text = text
	return a, nil
}

func addressFromBytes(raw []byte) (Address, error) {
	if len(raw) != addressPayloadLength+1 {
		return Address{}, fmt.Errorf("expected %d address bytes, got %d", addressPayloadLength+1, len(raw))
	}

	kind := AddressKind(raw[0])
	if !kind.valid() {
		return Address{}, fmt.Errorf("unsupported address kind %d", raw[0])
	}

	a := Address{kind: kind}
	copy(a.payload[:], raw[1:])
	return a, nil
}

func validateHrp(hrp string) error {
	if hrp == "" || len(hrp) > maxHrpLength {
		return fmt.Errorf("invalid bech32 hrp %q", hrp)
	}
	if strings.ToLower(hrp) != hrp {
		return fmt.Errorf("bech32 hrp %q must be lowercase", hrp)
	}
	for _, c := range hrp {
		if c < 33 || c > 126 {
			return fmt.Errorf("invalid character in bech32 hrp %q", hrp)
		}
	}
	return nil
}

func (a Address) bytes() []byte {
	b := make([]byte, 0, addressPayloadLength+1)
	b = append(b, byte(a.kind))
	return append(b, a.payload[:]...)
}

// Hrp returns the human-readable part (network prefix) of the address.
func (a Address) Hrp() string { return a.hrp }

// Kind returns the type of output that owns the address.
func (a Address) Kind() AddressKind { return a.kind }

// Payload returns a copy of the 32 byte address payload.
func (a Address) Payload() []byte {
	p := make([]byte, addressPayloadLength)
	copy(p, a.payload[:])
	return p
}

// Bech32 returns the address exactly as it was parsed or encoded.
func (a Address) Bech32() string { return a.text }

// Hex returns the 0x prefixed hex encoding of kind and payload.
func (a Address) Hex() string { return hexutil.Encode(a.bytes()) }

// IsZero reports whether a is the unset Address.
func (a Address) IsZero() bool { return a.text == "" }

// String returns the bech32 text, same as Bech32.
func (a Address) String() string { return a.text }

// MarshalText encodes the address as its bech32 text.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.text), nil
}

// UnmarshalText parses bech32 text and reports failures as a FieldError.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return &FieldError{Field: FieldAddress, Value: string(text), Err: ErrInvalidAddress, Reason: err.Error()}
	}
	*a = parsed
	return nil
}
