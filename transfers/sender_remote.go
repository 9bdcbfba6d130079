package transfers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	wallet_errors "github.com/flow-hydraulics/nft-wallet-api/errors"
	"github.com/flow-hydraulics/nft-wallet-api/nft"
	"github.com/jpillora/backoff"
	log "github.com/sirupsen/logrus"
)

const sendNftPath = "/send-nft"

// RemoteSender hands transfers over to a wallet daemon over HTTP.
type RemoteSender struct {
	url         string
	client      *http.Client
	maxAttempts int
	backoff     *backoff.Backoff
}

func NewRemoteSender(walletURL string, timeout time.Duration, maxAttempts int) *RemoteSender {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &RemoteSender{
		url:         strings.TrimSuffix(walletURL, "/") + sendNftPath,
		client:      &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		backoff: &backoff.Backoff{
			Min:    100 * time.Millisecond,
			Max:    10 * time.Second,
			Factor: 2,
			Jitter: true,
		},
	}
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (s *RemoteSender) SendNft(ctx context.Context, req nft.NftTransferRequest) (*Submission, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	b := &backoff.Backoff{
		Min:    s.backoff.Min,
		Max:    s.backoff.Max,
		Factor: s.backoff.Factor,
		Jitter: s.backoff.Jitter,
	}

	for attempt := 1; ; attempt++ {
		sub, err := s.send(ctx, body)
		if err == nil {
			return sub, nil
		}

		retryable, ok := err.(*retryableError)
		if !ok || attempt >= s.maxAttempts {
			return nil, err
		}

		wait := b.Duration()
		log.
			WithFields(log.Fields{"error": retryable.err, "attempt": attempt, "wait": wait}).
			Debug("Retrying transfer submission")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *RemoteSender) send(ctx context.Context, body []byte) (*Submission, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() == nil && wallet_errors.IsConnectionError(err) {
			return nil, &retryableError{err}
		}
		return nil, err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode >= 500:
		return nil, &retryableError{fmt.Errorf("wallet responded with %s", res.Status)}
	case res.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, fmt.Errorf("%w: %s", ErrRejected, strings.TrimSpace(string(msg)))
	}

	var sub Submission
	if err := json.NewDecoder(res.Body).Decode(&sub); err != nil {
		return nil, fmt.Errorf("could not decode wallet response: %w", err)
	}

	if sub.TransactionId == "" {
		return nil, fmt.Errorf("wallet response is missing a transaction id")
	}

	return &sub, nil
}
