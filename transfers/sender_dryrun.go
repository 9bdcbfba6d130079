package transfers

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/flow-hydraulics/nft-wallet-api/nft"
	"golang.org/x/crypto/blake2b"
)

// DryRunSender pretends to submit transfers. The transaction id is the
// blake2b-256 hash of the request so the same request always yields the
// same id.
type DryRunSender struct{}

func (DryRunSender) SendNft(ctx context.Context, req nft.NftTransferRequest) (*Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	sum := blake2b.Sum256(b)

	return &Submission{TransactionId: hexutil.Encode(sum[:])}, nil
}
