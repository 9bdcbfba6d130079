package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flow-hydraulics/nft-wallet-api/errors"
	"github.com/flow-hydraulics/nft-wallet-api/nft"
	"github.com/gorilla/mux"
)

// Addresses is a HTTP server for offline address utilities. Nothing here
// touches the database or the wallet.
type Addresses struct {
	defaultHrp string
}

// AddressJSON describes a parsed bech32 address.
type AddressJSON struct {
	Address string `json:"address"`
	Valid   bool   `json:"valid"`
	Hrp     string `json:"bech32Hrp,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Hex     string `json:"hex,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ConversionRequest struct {
	Bech32    string `json:"bech32"`
	Hex       string `json:"hex"`
	NftId     string `json:"nftId"`
	PublicKey string `json:"publicKey"`
	Bech32Hrp string `json:"bech32Hrp"`
}

type ConversionResponse struct {
	Bech32 string `json:"bech32,omitempty"`
	Hex    string `json:"hex,omitempty"`
}

func NewAddresses(defaultHrp string) *Addresses {
	return &Addresses{defaultHrp}
}

// Details parses the address in the URL. An invalid address is not an
// error; the response tells why it was rejected.
func (s *Addresses) Details() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		res := AddressJSON{Address: vars["address"]}

		a, err := nft.ParseAddress(vars["address"])
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Valid = true
			res.Hrp = a.Hrp()
			res.Kind = a.Kind().String()
			res.Hex = a.Hex()
		}

		handleJsonResponse(rw, http.StatusOK, res)
	})
}

func (s *Addresses) Bech32ToHex() http.Handler {
	return s.convert(func(req ConversionRequest) (ConversionResponse, error) {
		h, err := nft.Bech32ToHex(req.Bech32)
		return ConversionResponse{Hex: h}, err
	})
}

func (s *Addresses) HexToBech32() http.Handler {
	return s.convert(func(req ConversionRequest) (ConversionResponse, error) {
		b, err := nft.HexToBech32(req.Hex, req.Bech32Hrp)
		return ConversionResponse{Bech32: b}, err
	})
}

func (s *Addresses) NftIdToBech32() http.Handler {
	return s.convert(func(req ConversionRequest) (ConversionResponse, error) {
		b, err := nft.NftIdToBech32(req.NftId, req.Bech32Hrp)
		return ConversionResponse{Bech32: b}, err
	})
}

func (s *Addresses) PublicKeyToBech32() http.Handler {
	return s.convert(func(req ConversionRequest) (ConversionResponse, error) {
		b, err := nft.PublicKeyToBech32(req.PublicKey, req.Bech32Hrp)
		return ConversionResponse{Bech32: b}, err
	})
}

func (s *Addresses) convert(f func(ConversionRequest) (ConversionResponse, error)) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if err := checkNonEmptyBody(r); err != nil {
			handleError(rw, r, err)
			return
		}

		var req ConversionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(rw, r, InvalidBodyError)
			return
		}

		if req.Bech32Hrp == "" {
			req.Bech32Hrp = s.defaultHrp
		}

		res, err := f(req)
		if err != nil {
			handleError(rw, r, errors.BadRequest(err))
			return
		}

		handleJsonResponse(rw, http.StatusOK, res)
	})
}
