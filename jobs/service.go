package jobs

import (
	"errors"
	"fmt"

	"github.com/flow-hydraulics/nft-wallet-api/datastore"
	wallet_errors "github.com/flow-hydraulics/nft-wallet-api/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines the API for job HTTP handlers.
type Service struct {
	store Store
}

// NewService initiates a new job service.
func NewService(store Store) *Service {
	return &Service{store}
}

// List returns jobs, latest first.
func (s *Service) List(limit, offset int) ([]Job, error) {
	o := datastore.ParseListOptions(limit, offset)
	return s.store.Jobs(o)
}

// Details returns a specific job.
func (s *Service) Details(jobID string) (*Job, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return nil, wallet_errors.BadRequest(fmt.Errorf("invalid job id"))
	}

	job, err := s.store.Job(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wallet_errors.NotFound(fmt.Errorf("job not found"))
		}
		return nil, err
	}

	return &job, nil
}
