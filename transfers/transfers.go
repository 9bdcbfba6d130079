// Package transfers keeps track of NFT transfers and hands them over to the
// wallet daemon for signing and submission.
package transfers

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// State is a type for transfer state.
type State string

const (
	Pending   State = "PENDING"
	Submitted State = "SUBMITTED"
	Failed    State = "FAILED"
)

// NftTransfer database model
type NftTransfer struct {
	ID               uuid.UUID      `gorm:"column:id;primary_key;type:uuid;"`
	RecipientAddress string         `gorm:"column:recipient_address;index"`
	NftId            string         `gorm:"column:nft_id;index:idx_nft_transfers_nft_id_state"`
	State            State          `gorm:"column:state;default:PENDING;index:idx_nft_transfers_nft_id_state"`
	TransactionId    string         `gorm:"column:transaction_id"`
	BlockId          string         `gorm:"column:block_id"`
	Error            string         `gorm:"column:error"`
	JobID            string         `gorm:"column:job_id"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (NftTransfer) TableName() string {
	return "nft_transfers"
}

// NftTransfer JSON HTTP response
type JSONResponse struct {
	ID               uuid.UUID `json:"transferId"`
	RecipientAddress string    `json:"address"`
	NftId            string    `json:"nftId"`
	State            State     `json:"state"`
	TransactionId    string    `json:"transactionId,omitempty"`
	BlockId          string    `json:"blockId,omitempty"`
	Error            string    `json:"error,omitempty"`
	JobID            string    `json:"jobId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (t NftTransfer) ToJSONResponse() JSONResponse {
	return JSONResponse{
		ID:               t.ID,
		RecipientAddress: t.RecipientAddress,
		NftId:            t.NftId,
		State:            t.State,
		TransactionId:    t.TransactionId,
		BlockId:          t.BlockId,
		Error:            t.Error,
		JobID:            t.JobID,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func (t *NftTransfer) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Finished reports whether the transfer has reached a final state.
func (t NftTransfer) Finished() bool {
	return t.State == Submitted || t.State == Failed
}
