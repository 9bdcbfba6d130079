package nft

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// NftIdLength is the byte length of an NFT identifier.
const NftIdLength = 32

// NftId identifies a non-fungible token output on the ledger.
// It remembers the text it was parsed from, like Address does.
type NftId struct {
	raw  [NftIdLength]byte
	text string
}

// ParseNftId decodes a 0x prefixed, 64 hex digit identifier.
// The all-zero id is the placeholder used while minting and never names an
// existing NFT, so it is rejected.
func ParseNftId(s string) (NftId, error) {
	var id NftId

	b, err := hexutil.Decode(s)
	if err != nil {
		return id, fmt.Errorf("hex decoding failed: %w", err)
	}

	if len(b) != NftIdLength {
		return id, fmt.Errorf("expected %d bytes, got %d", NftIdLength, len(b))
	}

	copy(id.raw[:], b)

	if id.IsNull() {
		return NftId{}, fmt.Errorf("null nft id")
	}

	id.text = s

	return id, nil
}

// IsNull reports whether the id is the all-zero placeholder.
func (id NftId) IsNull() bool {
	return id.raw == [NftIdLength]byte{}
}

// Bytes returns a copy of the 32 identifier bytes.
func (id NftId) Bytes() []byte {
	b := make([]byte, NftIdLength)
	copy(b, id.raw[:])
	return b
}

// Hex is the canonical form: 0x prefix and lower case digits.
// Two ids name the same NFT exactly when their Hex values are equal.
func (id NftId) Hex() string {
	return hexutil.Encode(id.raw[:])
}

// String returns the id as it was given to ParseNftId.
func (id NftId) String() string {
	if id.text == "" {
		return id.Hex()
	}
	return id.text
}

// MarshalText encodes the id as its original text.
func (id NftId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the id and reports failures as a FieldError.
func (id *NftId) UnmarshalText(text []byte) error {
	parsed, err := ParseNftId(string(text))
	if err != nil {
		return &FieldError{Field: FieldNftId, Value: string(text), Err: ErrInvalidNftId, Reason: err.Error()}
	}
	*id = parsed
	return nil
}
