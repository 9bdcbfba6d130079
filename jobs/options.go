package jobs

import (
	"fmt"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type WorkerPoolOption func(*WorkerPoolImpl)
type JobOption func(*Job)

// WithJobStatusWebhook posts the status of finished transfer jobs to u.
// An empty u disables notifications. A URL that is not absolute http(s)
// is a configuration error and panics.
func WithJobStatusWebhook(u string, timeout time.Duration) WorkerPoolOption {
	if u == "" {
		return func(*WorkerPoolImpl) {}
	}

	valid, err := url.ParseRequestURI(u)
	if err != nil || (valid.Scheme != "http" && valid.Scheme != "https") || valid.Host == "" {
		panic(fmt.Sprintf("invalid job status webhook url %q", u))
	}

	return func(wp *WorkerPoolImpl) {
		wp.notificationConfig = &NotificationConfig{
			jobStatusWebhookUrl:     valid,
			jobStatusWebhookTimeout: timeout,
		}
	}
}

func WithLogger(logger *log.Logger) WorkerPoolOption {
	return func(wp *WorkerPoolImpl) {
		wp.logger = logger
	}
}

// WithMaxJobErrorCount sets how many attempts a job gets before it fails
// for good. The send_nft executor reads the same limit from the config, so
// the two must agree. Negative counts are ignored.
func WithMaxJobErrorCount(count int) WorkerPoolOption {
	return func(wp *WorkerPoolImpl) {
		if count >= 0 {
			wp.maxJobErrorCount = count
		}
	}
}

// The durations below keep their defaults when d is not positive; a zero
// poll interval would spin the scheduler.

func WithDbJobPollInterval(d time.Duration) WorkerPoolOption {
	return func(wp *WorkerPoolImpl) {
		if d > 0 {
			wp.dbJobPollInterval = d
		}
	}
}

func WithAcceptedGracePeriod(d time.Duration) WorkerPoolOption {
	return func(wp *WorkerPoolImpl) {
		if d > 0 {
			wp.acceptedGracePeriod = d
		}
	}
}

func WithReSchedulableGracePeriod(d time.Duration) WorkerPoolOption {
	return func(wp *WorkerPoolImpl) {
		if d > 0 {
			wp.reSchedulableGracePeriod = d
		}
	}
}

// WithAttributes stores the request a job acts on, e.g. the transfer
// request JSON of a send_nft job.
func WithAttributes(attributes datatypes.JSON) JobOption {
	return func(job *Job) {
		job.Attributes = attributes
	}
}
