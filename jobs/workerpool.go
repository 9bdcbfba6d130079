package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flow-hydraulics/nft-wallet-api/datastore"
	log "github.com/sirupsen/logrus"
)

const (
	// defaultMaxJobErrorCount is the maximum number of times a Job can be
	// tried to execute before considering it completely failed.
	defaultMaxJobErrorCount = 10

	// Poll DB for new schedulable jobs every 30s.
	defaultDBJobPollInterval = 30 * time.Second

	// Grace time period before re-scheduling jobs that are in state INIT or
	// ACCEPTED. These are jobs where the executor processing has been
	// unexpectedly disrupted (such as bug, dead node, disconnected
	// networking etc.).
	defaultAcceptedGracePeriod = 3 * time.Minute

	// Grace time period before re-scheduling jobs that are up for immediate
	// restart (such as NO_AVAILABLE_WORKERS or ERROR).
	defaultReSchedulableGracePeriod = 1 * time.Minute
)

var (
	ErrInvalidJobType   = errors.New("invalid job type")
	ErrPermanentFailure = errors.New("permanent failure")
)

type ExecutorFunc func(ctx context.Context, j *Job) error

type WorkerPool interface {
	RegisterExecutor(jobType string, executorF ExecutorFunc)
	CreateJob(jobType, transferID string, opts ...JobOption) (*Job, error)
	Schedule(j *Job) error
	Status() (WorkerPoolStatus, error)
	Start()
	Stop()
}

type WorkerPoolImpl struct {
	wg            *sync.WaitGroup
	mu            sync.RWMutex
	stopped       bool
	jobChan       chan *Job
	stopChan      chan struct{}
	context       context.Context
	cancelContext context.CancelFunc
	executors     map[string]ExecutorFunc
	logger        *log.Logger

	store                    Store
	capacity                 uint
	workerCount              uint
	maxJobErrorCount         int
	dbJobPollInterval        time.Duration
	acceptedGracePeriod      time.Duration
	reSchedulableGracePeriod time.Duration

	notificationConfig *NotificationConfig
}

type JobQueueStatus struct {
	JobsInit        int `json:"jobsInit"`
	JobsNotAccepted int `json:"jobsNotAccepted"`
	JobsAccepted    int `json:"jobsAccepted"`
	JobsErrored     int `json:"jobsErrored"`
	JobsFailed      int `json:"jobsFailed"`
	JobsCompleted   int `json:"jobsCompleted"`
}

type WorkerPoolStatus struct {
	JobQueueStatus
	Capacity    int `json:"poolCapacity"`
	WorkerCount int `json:"workerCount"`
	QueueSize   int `json:"queueSize"`
}

func NewWorkerPool(db Store, capacity uint, workerCount uint, opts ...WorkerPoolOption) *WorkerPoolImpl {
	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPoolImpl{
		wg:            &sync.WaitGroup{},
		jobChan:       make(chan *Job, capacity),
		stopChan:      make(chan struct{}),
		context:       ctx,
		cancelContext: cancel,
		executors:     make(map[string]ExecutorFunc),

		store:                    db,
		capacity:                 capacity,
		workerCount:              workerCount,
		maxJobErrorCount:         defaultMaxJobErrorCount,
		dbJobPollInterval:        defaultDBJobPollInterval,
		acceptedGracePeriod:      defaultAcceptedGracePeriod,
		reSchedulableGracePeriod: defaultReSchedulableGracePeriod,

		notificationConfig: &NotificationConfig{},
	}

	// Register asynchronous job executor.
	pool.RegisterExecutor(SendJobStatusJobType, pool.executeSendJobStatus)

	for _, opt := range opts {
		opt(pool)
	}

	if pool.logger == nil {
		pool.logger = log.StandardLogger()
	}

	return pool
}

func (wp *WorkerPoolImpl) Status() (WorkerPoolStatus, error) {
	var status WorkerPoolStatus

	query, err := wp.store.Status()
	if err != nil {
		return status, err
	}

	for _, r := range query {
		switch r.State {
		case Init:
			status.JobsInit = r.Count
		case NoAvailableWorkers:
			status.JobsNotAccepted = r.Count
		case Accepted:
			status.JobsAccepted = r.Count
		case Error:
			status.JobsErrored = r.Count
		case Failed:
			status.JobsFailed = r.Count
		case Complete:
			status.JobsCompleted = r.Count
		default:
			continue
		}
	}

	status.Capacity = int(wp.capacity)
	status.WorkerCount = int(wp.workerCount)
	status.QueueSize = len(wp.jobChan)

	return status, nil
}

// CreateJob constructs a new Job for type `jobType` ready for scheduling.
func (wp *WorkerPoolImpl) CreateJob(jobType, transferID string, opts ...JobOption) (*Job, error) {
	job := &Job{
		State:      Init,
		Type:       jobType,
		TransferID: transferID,
	}

	for _, opt := range opts {
		opt(job)
	}

	if err := wp.store.InsertJob(job); err != nil {
		return nil, err
	}

	return job, nil
}

func (wp *WorkerPoolImpl) RegisterExecutor(jobType string, executorF ExecutorFunc) {
	wp.executors[jobType] = executorF
}

// Schedule will try to immediately schedule the run of a job. If the queue
// is full the job is left for the database scheduler.
func (wp *WorkerPoolImpl) Schedule(j *Job) error {
	if !wp.tryEnqueue(j, false) {
		j.State = NoAvailableWorkers
		if err := wp.store.UpdateJob(j); err != nil {
			return err
		}
	}

	return nil
}

func (wp *WorkerPoolImpl) Start() {
	wp.startWorkers()
	wp.startDBJobScheduler()
}

func (wp *WorkerPoolImpl) Stop() {
	close(wp.stopChan)
	wp.cancelContext()

	wp.mu.Lock()
	wp.stopped = true
	close(wp.jobChan)
	wp.mu.Unlock()

	wp.wg.Wait()
}

func (wp *WorkerPoolImpl) startDBJobScheduler() {
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()

		var restTime time.Duration

	jobPoolLoop:
		for {
			select {
			case <-time.After(restTime):
			case <-wp.stopChan:
				break jobPoolLoop
			}

			begin := time.Now()

			o := datastore.ParseListOptions(0, 0)
			jobs, err := wp.store.SchedulableJobs(wp.acceptedGracePeriod, wp.reSchedulableGracePeriod, o)
			if err != nil {
				wp.logger.
					WithFields(log.Fields{"error": err}).
					Warn("Could not fetch schedulable jobs from DB")
				restTime = wp.dbJobPollInterval
				continue
			}

			for i := range jobs {
				if !wp.tryEnqueue(&jobs[i], true) {
					break
				}
			}

			restTime = wp.dbJobPollInterval - time.Since(begin)
		}
	}()
}

func (wp *WorkerPoolImpl) startWorkers() {
	for i := uint(0); i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go func() {
			defer wp.wg.Done()
			for job := range wp.jobChan {
				if job == nil {
					break
				}

				if err := wp.process(job); err != nil {
					wp.logger.
						WithFields(log.Fields{"error": err, "jobID": job.ID}).
						Warn("Could not update DB entry for job")
				}
			}
		}()
	}
}

// tryEnqueue pushes the job to the workers. A blocking enqueue waits until
// a worker frees up or the pool is stopped.
func (wp *WorkerPoolImpl) tryEnqueue(job *Job, block bool) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.stopped {
		return false
	}

	if block {
		select {
		case wp.jobChan <- job:
			return true
		case <-wp.stopChan:
			return false
		}
	}

	select {
	case wp.jobChan <- job:
		return true
	default:
		return false
	}
}

func (wp *WorkerPoolImpl) process(job *Job) error {
	if err := wp.store.AcceptJob(job, wp.acceptedGracePeriod); err != nil {
		wp.logger.
			WithFields(log.Fields{"error": err, "jobID": job.ID, "jobType": job.Type}).
			Info("Failed to accept job")
		return nil
	}

	executor, exists := wp.executors[job.Type]
	if !exists {
		wp.logger.
			WithFields(log.Fields{"jobID": job.ID, "jobType": job.Type}).
			Warn("Could not process job, no registered executor for type")
		job.State = NoAvailableWorkers
		return wp.store.UpdateJob(job)
	}

	err := executor(wp.context, job)
	if err != nil {
		if job.ExecCount > wp.maxJobErrorCount || errors.Is(err, ErrPermanentFailure) {
			job.State = Failed
		} else {
			job.State = Error
		}
		job.Error = err.Error()
		job.Errors = append(job.Errors, err.Error())
		wp.logger.
			WithFields(log.Fields{"error": err, "jobID": job.ID, "jobType": job.Type}).
			Warn("Job execution resulted with error")
	} else {
		job.State = Complete
		job.Error = ""
	}

	if err := wp.store.UpdateJob(job); err != nil {
		return err
	}

	if job.Finished() && job.ShouldSendNotification && wp.notificationConfig.ShouldSendJobStatus() {
		if err := ScheduleJobStatusNotification(wp, job); err != nil {
			wp.logger.
				WithFields(log.Fields{"error": err, "jobID": job.ID, "jobType": job.Type}).
				Warn("Could not schedule a status update notification for job")
		}
	}

	return nil
}

func (wp *WorkerPoolImpl) executeSendJobStatus(ctx context.Context, j *Job) error {
	if j.Type != SendJobStatusJobType {
		return ErrInvalidJobType
	}

	j.ShouldSendNotification = false

	return wp.notificationConfig.SendJobStatus(ctx, j.Result)
}

// PermanentFailure marks err as not worth retrying.
func PermanentFailure(err error) error {
	return fmt.Errorf("%w: %s", ErrPermanentFailure, err.Error())
}

func ScheduleJobStatusNotification(wp *WorkerPoolImpl, parent *Job) error {
	job, err := wp.CreateJob(SendJobStatusJobType, parent.TransferID)
	if err != nil {
		return err
	}

	b, err := json.Marshal(parent.ToJSONResponse())
	if err != nil {
		return err
	}

	// Store the notification content of the parent job in Result of the new job
	job.Result = string(b)

	if err := wp.store.UpdateJob(job); err != nil {
		return err
	}

	return wp.Schedule(job)
}
