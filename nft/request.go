// Package nft provides the request type for sending an NFT to an address,
// together with the address and identifier codecs it validates against.
package nft

import (
	"encoding/json"
	"fmt"
)

// NftTransferRequest is the intent "send NFT X to address Y".
// A non-zero value is always well-formed; it can only be obtained from
// SendNftParams.Build or by decoding JSON.
type NftTransferRequest struct {
	address Address
	nftId   NftId
}

// Address returns the recipient.
func (r NftTransferRequest) Address() Address { return r.address }

// NftId returns the identifier of the NFT to send.
func (r NftTransferRequest) NftId() NftId { return r.nftId }

func (r NftTransferRequest) IsZero() bool {
	return r.address.IsZero() && r.nftId.IsNull()
}

func (r NftTransferRequest) String() string {
	return fmt.Sprintf("send nft %s to %s", r.nftId, r.address)
}

type requestJSON struct {
	Address *string `json:"address"`
	NftId   *string `json:"nftId"`
}

func (r NftTransferRequest) MarshalJSON() ([]byte, error) {
	a := r.address.Bech32()
	id := r.nftId.String()
	return json.Marshal(requestJSON{Address: &a, NftId: &id})
}

// UnmarshalJSON validates the decoded fields the same way Build does.
func (r *NftTransferRequest) UnmarshalJSON(b []byte) error {
	var j requestJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}

	p := NewSendNftParams()
	if j.Address != nil {
		p.WithAddress(*j.Address)
	}
	if j.NftId != nil {
		p.WithNftId(*j.NftId)
	}

	req, err := p.Build()
	if err != nil {
		return err
	}

	*r = req
	return nil
}

type ParamsOption func(*SendNftParams)

// WithNetwork restricts accepted addresses to the given bech32 hrp.
func WithNetwork(hrp string) ParamsOption {
	return func(p *SendNftParams) {
		p.network = hrp
	}
}

// SendNftParams incrementally collects the fields of an NftTransferRequest.
// Each setter validates its input right away; setting a field again
// replaces both the previous value and its validation outcome.
type SendNftParams struct {
	network string

	address    *Address
	addressErr error

	nftId    *NftId
	nftIdErr error
}

func NewSendNftParams(opts ...ParamsOption) *SendNftParams {
	p := &SendNftParams{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *SendNftParams) WithAddress(address string) *SendNftParams {
	p.address, p.addressErr = nil, nil

	a, err := ParseAddress(address)
	if err == nil && p.network != "" && a.Hrp() != p.network {
		err = fmt.Errorf("expected network %q, got %q", p.network, a.Hrp())
	}

	if err != nil {
		p.addressErr = &FieldError{Field: FieldAddress, Value: address, Err: ErrInvalidAddress, Reason: err.Error()}
		return p
	}

	p.address = &a
	return p
}

func (p *SendNftParams) WithNftId(nftId string) *SendNftParams {
	p.nftId, p.nftIdErr = nil, nil

	id, err := ParseNftId(nftId)
	if err != nil {
		p.nftIdErr = &FieldError{Field: FieldNftId, Value: nftId, Err: ErrInvalidNftId, Reason: err.Error()}
		return p
	}

	p.nftId = &id
	return p
}

// Build returns the immutable request, or the first field error in
// address, nftId order.
func (p *SendNftParams) Build() (NftTransferRequest, error) {
	switch {
	case p.addressErr != nil:
		return NftTransferRequest{}, p.addressErr
	case p.address == nil:
		return NftTransferRequest{}, missing(FieldAddress)
	case p.nftIdErr != nil:
		return NftTransferRequest{}, p.nftIdErr
	case p.nftId == nil:
		return NftTransferRequest{}, missing(FieldNftId)
	}

	return NftTransferRequest{address: *p.address, nftId: *p.nftId}, nil
}

// NewNftTransferRequest is shorthand for building a request from both
// fields at once.
func NewNftTransferRequest(address, nftId string, opts ...ParamsOption) (NftTransferRequest, error) {
	return NewSendNftParams(opts...).WithAddress(address).WithNftId(nftId).Build()
}
