// Package handlers provides HTTP handlers for different services across the application.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/flow-hydraulics/nft-wallet-api/errors"
	log "github.com/sirupsen/logrus"
)

const SyncQueryParameter = "sync"

var EmptyBodyError = &errors.RequestError{
	StatusCode: http.StatusBadRequest,
	Err:        fmt.Errorf("empty body"),
}

var InvalidBodyError = &errors.RequestError{
	StatusCode: http.StatusBadRequest,
	Err:        fmt.Errorf("invalid body"),
}

// handleError is a helper function for unified HTTP error handling.
func handleError(rw http.ResponseWriter, r *http.Request, err error) {
	// Known errors are shown to the caller as is
	if reqErr := errors.AsRequestError(err); reqErr != nil {
		log.
			WithFields(log.Fields{"error": err, "status": reqErr.StatusCode, "path": r.URL.Path}).
			Debug("Request error")
		http.Error(rw, reqErr.Error(), reqErr.StatusCode)
		return
	}

	log.
		WithFields(log.Fields{"error": err, "path": r.URL.Path}).
		Error("Internal error")

	// Otherwise do not send data regarding the error
	http.Error(rw, "Error", http.StatusInternalServerError)
}

// handleJsonResponse is a helper function for unified JSON response handling.
func handleJsonResponse(rw http.ResponseWriter, status int, res interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(res); err != nil {
		log.WithFields(log.Fields{"error": err}).Warn("Could not encode response")
	}
}

func checkNonEmptyBody(r *http.Request) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return EmptyBodyError
	}
	return nil
}

func isSync(r *http.Request) bool {
	return r.FormValue(SyncQueryParameter) != ""
}
