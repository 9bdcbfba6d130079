package nft

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const (
	validAddress     = "smr1qqqsyqcyq5rqwzqfpg9scrgwpugpzysnzs23v9ccrydpk8qarc0jqda9trf"
	validTestnetAddr = "rms1qqqsyqcyq5rqwzqfpg9scrgwpugpzysnzs23v9ccrydpk8qarc0jqe6w3cs"
	validNftId       = "0xabababababababababababababababababababababababababababababababab"
	otherNftId       = "0x0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"
)

func TestBuildRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		address string
		nftId   string
	}{
		{name: "canonical", address: validAddress, nftId: validNftId},
		{name: "testnet", address: validTestnetAddr, nftId: otherNftId},
		{name: "upper case nft id", address: validAddress, nftId: "0x" + strings.Repeat("AB", 32)},
		{name: "upper case prefix", address: validAddress, nftId: "0X" + strings.Repeat("ab", 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewSendNftParams().
				WithAddress(tt.address).
				WithNftId(tt.nftId).
				Build()
			if err != nil {
				t.Fatal(err)
			}

			if req.Address().Bech32() != tt.address {
				t.Errorf("expected address %q, got %q", tt.address, req.Address().Bech32())
			}

			if req.NftId().String() != tt.nftId {
				t.Errorf("expected nft id %q, got %q", tt.nftId, req.NftId().String())
			}

			if req.NftId().Hex() != strings.ToLower("0x"+tt.nftId[2:]) {
				t.Errorf("expected canonical nft id, got %q", req.NftId().Hex())
			}

			if req.IsZero() {
				t.Error("expected built request not to be zero")
			}
		})
	}
}

func TestBuildFieldOrderIndependent(t *testing.T) {
	a, err := NewSendNftParams().WithNftId(validNftId).WithAddress(validAddress).Build()
	if err != nil {
		t.Fatal(err)
	}

	b, err := NewNftTransferRequest(validAddress, validNftId)
	if err != nil {
		t.Fatal(err)
	}

	if a != b {
		t.Errorf("expected requests to be equal, got %v and %v", a, b)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		params  *SendNftParams
		wantErr error
		field   string
	}{
		{
			name:    "missing address",
			params:  NewSendNftParams().WithNftId(validNftId),
			wantErr: ErrMissingField,
			field:   FieldAddress,
		},
		{
			name:    "missing nft id",
			params:  NewSendNftParams().WithAddress(validAddress),
			wantErr: ErrMissingField,
			field:   FieldNftId,
		},
		{
			name:    "nothing set",
			params:  NewSendNftParams(),
			wantErr: ErrMissingField,
			field:   FieldAddress,
		},
		{
			name:    "empty address",
			params:  NewSendNftParams().WithAddress("").WithNftId(validNftId),
			wantErr: ErrInvalidAddress,
			field:   FieldAddress,
		},
		{
			name:    "bad checksum",
			params:  NewSendNftParams().WithAddress(validAddress[:len(validAddress)-1] + "g").WithNftId(validNftId),
			wantErr: ErrInvalidAddress,
			field:   FieldAddress,
		},
		{
			name:    "mixed case address",
			params:  NewSendNftParams().WithAddress("SMR1" + validAddress[4:]).WithNftId(validNftId),
			wantErr: ErrInvalidAddress,
			field:   FieldAddress,
		},
		{
			name:    "unknown address kind",
			params:  NewSendNftParams().WithAddress("smr1qyqsyqcyq5rqwzqfpg9scrgwpugpzysnzs23v9ccrydpk8qarc0jqhzs5q7").WithNftId(validNftId),
			wantErr: ErrInvalidAddress,
			field:   FieldAddress,
		},
		{
			name:    "short address payload",
			params:  NewSendNftParams().WithAddress("smr1qqqsyqcyq5rqwzqfpg9scrgwpugpzysnzsmnduew").WithNftId(validNftId),
			wantErr: ErrInvalidAddress,
			field:   FieldAddress,
		},
		{
			name:    "wrong network",
			params:  NewSendNftParams(WithNetwork("smr")).WithAddress(validTestnetAddr).WithNftId(validNftId),
			wantErr: ErrInvalidAddress,
			field:   FieldAddress,
		},
		{
			name:    "empty nft id",
			params:  NewSendNftParams().WithAddress(validAddress).WithNftId(""),
			wantErr: ErrInvalidNftId,
			field:   FieldNftId,
		},
		{
			name:    "short nft id",
			params:  NewSendNftParams().WithAddress(validAddress).WithNftId("0xabc123abc1"),
			wantErr: ErrInvalidNftId,
			field:   FieldNftId,
		},
		{
			name:    "nft id without prefix",
			params:  NewSendNftParams().WithAddress(validAddress).WithNftId(validNftId[2:]),
			wantErr: ErrInvalidNftId,
			field:   FieldNftId,
		},
		{
			name:    "null nft id",
			params:  NewSendNftParams().WithAddress(validAddress).WithNftId("0x" + strings.Repeat("0", 64)),
			wantErr: ErrInvalidNftId,
			field:   FieldNftId,
		},
		{
			name:    "address reported before nft id",
			params:  NewSendNftParams().WithAddress("nope").WithNftId("nope"),
			wantErr: ErrInvalidAddress,
			field:   FieldAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.params.Build()
			if err == nil {
				t.Fatalf("expected an error, got request %v", req)
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error to be %v, got %v", tt.wantErr, err)
			}

			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected a *FieldError, got %T", err)
			}

			if fieldErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, fieldErr.Field)
			}

			if !req.IsZero() {
				t.Errorf("expected zero request on error, got %v", req)
			}
		})
	}
}

func TestSettersKeepLastValue(t *testing.T) {
	t.Run("valid values", func(t *testing.T) {
		req, err := NewSendNftParams().
			WithAddress(validTestnetAddr).
			WithAddress(validAddress).
			WithNftId(otherNftId).
			WithNftId(validNftId).
			Build()
		if err != nil {
			t.Fatal(err)
		}

		if req.Address().Bech32() != validAddress {
			t.Errorf("expected last address %q, got %q", validAddress, req.Address().Bech32())
		}

		if req.NftId().String() != validNftId {
			t.Errorf("expected last nft id %q, got %q", validNftId, req.NftId().String())
		}
	})

	t.Run("valid value replaces invalid one", func(t *testing.T) {
		_, err := NewSendNftParams().
			WithAddress("").
			WithAddress(validAddress).
			WithNftId(validNftId).
			Build()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("invalid value replaces valid one", func(t *testing.T) {
		_, err := NewSendNftParams().
			WithAddress(validAddress).
			WithNftId(validNftId).
			WithNftId("0x00").
			Build()
		if !errors.Is(err, ErrInvalidNftId) {
			t.Fatalf("expected %v, got %v", ErrInvalidNftId, err)
		}
	})
}

func TestRequestJSON(t *testing.T) {
	req, err := NewNftTransferRequest(validAddress, validNftId)
	if err != nil {
		t.Fatal(err)
	}

	b, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"address":"` + validAddress + `","nftId":"` + validNftId + `"}`
	if string(b) != want {
		t.Errorf("expected %s, got %s", want, b)
	}

	t.Run("decoding validates", func(t *testing.T) {
		tests := []struct {
			body    string
			wantErr error
		}{
			{body: want, wantErr: nil},
			{body: `{"nftId":"` + validNftId + `"}`, wantErr: ErrMissingField},
			{body: `{"address":"","nftId":"` + validNftId + `"}`, wantErr: ErrInvalidAddress},
			{body: `{"address":"` + validAddress + `","nftId":"0x1234"}`, wantErr: ErrInvalidNftId},
		}

		for _, tt := range tests {
			var decoded NftTransferRequest
			err := json.Unmarshal([]byte(tt.body), &decoded)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error for %s: %v", tt.body, err)
				}
				if decoded != req {
					t.Errorf("expected %v, got %v", req, decoded)
				}
				continue
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v for %s, got %v", tt.wantErr, tt.body, err)
			}
		}
	})
}

func TestFieldErrorMessage(t *testing.T) {
	_, err := NewNftTransferRequest(validAddress, "0xabc123")
	if err == nil {
		t.Fatal("expected an error")
	}

	if !strings.Contains(err.Error(), FieldNftId) {
		t.Errorf("expected error message to name the field, got %q", err.Error())
	}
}
