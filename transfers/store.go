package transfers

import (
	"github.com/flow-hydraulics/nft-wallet-api/datastore"
	"github.com/google/uuid"
)

// Store manages data regarding NFT transfers.
type Store interface {
	Transfers(recipient string, o datastore.ListOptions) ([]NftTransfer, error)
	Transfer(id uuid.UUID) (NftTransfer, error)
	// PendingTransfer returns the unfinished transfer of nftId, if any.
	PendingTransfer(nftId string) (NftTransfer, error)
	InsertTransfer(*NftTransfer) error
	UpdateTransfer(*NftTransfer) error
}
