// Package jobs provides a persistent worker pool for asynchronous
// operations such as submitting NFT transfers.
package jobs

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// State is a type for Job state.
type State string

const (
	Init               State = "INIT"
	Accepted           State = "ACCEPTED"
	NoAvailableWorkers State = "NO_AVAILABLE_WORKERS"
	Error              State = "ERROR"
	Failed             State = "FAILED"
	Complete           State = "COMPLETE"
)

// Job database model
type Job struct {
	ID                     uuid.UUID      `gorm:"column:id;primary_key;type:uuid;"`
	Type                   string         `gorm:"column:type"`
	State                  State          `gorm:"column:state;default:INIT"`
	Error                  string         `gorm:"column:error"`
	Errors                 pq.StringArray `gorm:"column:errors;type:text"`
	Result                 string         `gorm:"column:result"`
	TransferID             string         `gorm:"column:transfer_id;index"`
	ExecCount              int            `gorm:"column:exec_count;default:0"`
	Attributes             datatypes.JSON `gorm:"column:attributes"`
	CreatedAt              time.Time      `gorm:"column:created_at"`
	UpdatedAt              time.Time      `gorm:"column:updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"column:deleted_at;index"`
	ShouldSendNotification bool           `gorm:"-"` // Whether or not to notify admin (via webhook for example)
}

func (Job) TableName() string {
	return "jobs"
}

// Job JSON HTTP response
type JSONResponse struct {
	ID         uuid.UUID      `json:"jobId"`
	Type       string         `json:"type"`
	State      State          `json:"state"`
	Error      string         `json:"error"`
	Errors     []string       `json:"errors"`
	Result     string         `json:"result"`
	TransferID string         `json:"transferId"`
	Attributes datatypes.JSON `json:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (j Job) ToJSONResponse() JSONResponse {
	return JSONResponse{
		ID:         j.ID,
		Type:       j.Type,
		State:      j.State,
		Error:      j.Error,
		Errors:     j.Errors,
		Result:     j.Result,
		TransferID: j.TransferID,
		Attributes: j.Attributes,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	j.ID = uuid.New()
	return nil
}

// Finished reports whether the job will not be executed again.
func (j *Job) Finished() bool {
	return j.State == Complete || j.State == Failed
}
