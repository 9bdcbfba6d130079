package transfers

import (
	"github.com/flow-hydraulics/nft-wallet-api/datastore"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db}
}

func (s *GormStore) Transfers(recipient string, o datastore.ListOptions) (tt []NftTransfer, err error) {
	q := s.db
	if recipient != "" {
		q = q.Where("recipient_address = ?", recipient)
	}

	err = q.
		Order("created_at desc").
		Limit(o.Limit).
		Offset(o.Offset).
		Find(&tt).Error
	return
}

func (s *GormStore) Transfer(id uuid.UUID) (t NftTransfer, err error) {
	err = s.db.First(&t, "id = ?", id).Error
	return
}

func (s *GormStore) PendingTransfer(nftId string) (t NftTransfer, err error) {
	err = s.db.
		Where(&NftTransfer{NftId: nftId, State: Pending}).
		Order("created_at desc").
		First(&t).Error
	return
}

func (s *GormStore) InsertTransfer(t *NftTransfer) error {
	return s.db.Create(t).Error
}

func (s *GormStore) UpdateTransfer(t *NftTransfer) error {
	return s.db.Save(t).Error
}
