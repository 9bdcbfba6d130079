package migrations

import (
	"github.com/flow-hydraulics/nft-wallet-api/migrations/internal/m20261001"
	"github.com/flow-hydraulics/nft-wallet-api/migrations/internal/m20261015"
	"github.com/go-gormigrate/gormigrate/v2"
)

func List() []*gormigrate.Migration {
	ms := []*gormigrate.Migration{
		{
			ID:       m20261001.ID,
			Migrate:  m20261001.Migrate,
			Rollback: m20261001.Rollback,
		},
		{
			ID:       m20261015.ID,
			Migrate:  m20261015.Migrate,
			Rollback: m20261015.Rollback,
		},
	}
	return ms
}
