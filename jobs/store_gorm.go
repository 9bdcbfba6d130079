package jobs

import (
	"time"

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

func (s *GormStore) Jobs(o datastore.ListOptions) (jj []Job, err error) {
	err = s.db.
		Order("created_at desc").
		Limit(o.Limit).
		Offset(o.Offset).
		Find(&jj).Error
	return
}

func (s *GormStore) Job(id uuid.UUID) (j Job, err error) {
	err = s.db.First(&j, "id = ?", id).Error
	return
}

func (s *GormStore) InsertJob(j *Job) error {
	return s.db.Create(j).Error
}

func (s *GormStore) UpdateJob(j *Job) error {
	return s.db.Save(j).Error
}

// AcceptJob moves the job to ACCEPTED and bumps its exec count, unless some
// other worker accepted it less than acceptedGracePeriod ago.
func (s *GormStore) AcceptJob(j *Job, acceptedGracePeriod time.Duration) error {
	res := s.db.Model(j).
		Where("id = ?", j.ID).
		Where("(state <> ? OR updated_at < ?)", Accepted, time.Now().Add(-acceptedGracePeriod)).
		Updates(map[string]interface{}{
			"state":      Accepted,
			"exec_count": gorm.Expr("exec_count + 1"),
			"updated_at": time.Now(),
		})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrAlreadyAccepted
	}

	return s.db.Select("exec_count", "state", "updated_at").First(j, "id = ?", j.ID).Error
}

func (s *GormStore) SchedulableJobs(acceptedGracePeriod, reSchedulableGracePeriod time.Duration, o datastore.ListOptions) (jj []Job, err error) {
	now := time.Now()
	err = s.db.
		Where(
			s.db.Where("state IN ?", []State{Init, Accepted}).
				Where("updated_at < ?", now.Add(-acceptedGracePeriod)),
		).
		Or(
			s.db.Where("state IN ?", []State{NoAvailableWorkers, Error}).
				Where("updated_at < ?", now.Add(-reSchedulableGracePeriod)),
		).
		Order("created_at asc").
		Limit(o.Limit).
		Offset(o.Offset).
		Find(&jj).Error
	return
}

func (s *GormStore) Status() (res []StatusQuery, err error) {
	err = s.db.Model(&Job{}).
		Select("state, count(*) as count").
		Group("state").
		Scan(&res).Error
	return
}
