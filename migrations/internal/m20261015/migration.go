package m20261015

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const ID = "20261015"

// State is a type for transfer state.
type State string

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

func Migrate(tx *gorm.DB) error {
	if err := tx.Migrator().CreateIndex(&NftTransfer{}, "idx_nft_transfers_nft_id_state"); err != nil {
		return err
	}

	return nil
}

func Rollback(tx *gorm.DB) error {
	if err := tx.Migrator().DropIndex(&NftTransfer{}, "idx_nft_transfers_nft_id_state"); err != nil {
		return err
	}

	return nil
}
