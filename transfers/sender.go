package transfers

import (
	"context"
	"errors"

	"github.com/flow-hydraulics/nft-wallet-api/nft"
)

// ErrRejected is returned by a Sender when the wallet refused the transfer.
// Retrying the same request will not succeed.
var ErrRejected = errors.New("transfer rejected by wallet")

// Submission identifies a transfer that was accepted by the network.
type Submission struct {
	TransactionId string `json:"transactionId"`
	BlockId       string `json:"blockId"`
}

// Sender builds, signs and submits the transaction for a transfer request.
type Sender interface {
	SendNft(ctx context.Context, req nft.NftTransferRequest) (*Submission, error)
}
