package jobs

import (
	"errors"
	"time"

	"github.com/flow-hydraulics/nft-wallet-api/datastore"
	"github.com/google/uuid"
)

// ErrAlreadyAccepted is returned by Store.AcceptJob when another worker
// holds the job.
var ErrAlreadyAccepted = errors.New("job already accepted")

// Store manages data regarding jobs.
type Store interface {
	Jobs(datastore.ListOptions) ([]Job, error)
	Job(id uuid.UUID) (Job, error)
	InsertJob(*Job) error
	UpdateJob(*Job) error
	AcceptJob(j *Job, acceptedGracePeriod time.Duration) error
	SchedulableJobs(acceptedGracePeriod, reSchedulableGracePeriod time.Duration, o datastore.ListOptions) ([]Job, error)
	Status() ([]StatusQuery, error)
}

type StatusQuery struct {
	State State
	Count int
}
