package m20261001

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//
// Initial schema. Types are snapshot here so that the schema for this
// point in time is preserved and can be rolled back to from later
// migrations.
//

const ID = "20261001"

type Job struct {
	ID         uuid.UUID      `gorm:"column:id;primary_key;type:uuid;"`
	Type       string         `gorm:"column:type"`
	State      string         `gorm:"column:state;default:INIT"`
	Error      string         `gorm:"column:error"`
	Errors     pq.StringArray `gorm:"column:errors;type:text"`
	Result     string         `gorm:"column:result"`
	TransferID string         `gorm:"column:transfer_id;index"`
	ExecCount  int            `gorm:"column:exec_count;default:0"`
	Attributes datatypes.JSON `gorm:"column:attributes"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Job) TableName() string {
	return "jobs"
}

type NftTransfer struct {
	ID               uuid.UUID      `gorm:"column:id;primary_key;type:uuid;"`
	RecipientAddress string         `gorm:"column:recipient_address;index"`
	NftId            string         `gorm:"column:nft_id"`
	State            string         `gorm:"column:state;default:PENDING"`
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

type IdempotencyKey struct {
	Key        string    `gorm:"column:key;primary_key"`
	ExpiryDate time.Time `gorm:"column:expiry_date"`
}

func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

func Migrate(tx *gorm.DB) error {
	return tx.AutoMigrate(&Job{}, &NftTransfer{}, &IdempotencyKey{})
}

func Rollback(tx *gorm.DB) error {
	return tx.Migrator().DropTable(&IdempotencyKey{}, &NftTransfer{}, &Job{})
}
