package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flow-hydraulics/nft-wallet-api/datastore"
	"github.com/flow-hydraulics/nft-wallet-api/transfers"
	"github.com/gorilla/mux"
)

// Transfers is a HTTP server for NFT transfers.
// It provides send, list and details APIs.
type Transfers struct {
	service transfers.Service
}

// SendNftRequest represents a JSON payload for a HTTP request.
// Fields are kept as text so that validation errors can name them.
type SendNftRequest struct {
	Address string `json:"address"`
	NftId   string `json:"nftId"`
}

func NewTransfers(service transfers.Service) *Transfers {
	return &Transfers{service}
}

// Send creates a new transfer. By default the transfer is submitted by a
// job and the job is returned; with ?sync=1 the submitted transfer is
// returned.
func (s *Transfers) Send() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if err := checkNonEmptyBody(r); err != nil {
			handleError(rw, r, err)
			return
		}

		var body SendNftRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			handleError(rw, r, InvalidBodyError)
			return
		}

		sync := isSync(r)

		job, transfer, err := s.service.Send(r.Context(), sync, body.Address, body.NftId)
		if err != nil {
			handleError(rw, r, err)
			return
		}

		var res interface{}
		if sync {
			res = transfer.ToJSONResponse()
		} else {
			res = job.ToJSONResponse()
		}

		handleJsonResponse(rw, http.StatusCreated, res)
	})
}

func (s *Transfers) List() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		o := datastore.ListOptionsFromQuery(r.FormValue("limit"), r.FormValue("offset"))

		tt, err := s.service.List(r.FormValue("recipient"), o.Limit, o.Offset)
		if err != nil {
			handleError(rw, r, err)
			return
		}

		res := make([]transfers.JSONResponse, len(tt))
		for i, t := range tt {
			res[i] = t.ToJSONResponse()
		}

		handleJsonResponse(rw, http.StatusOK, res)
	})
}

func (s *Transfers) Details() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		t, err := s.service.Details(vars["transferId"])
		if err != nil {
			handleError(rw, r, err)
			return
		}

		handleJsonResponse(rw, http.StatusOK, t.ToJSONResponse())
	})
}
