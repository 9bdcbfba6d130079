package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/flow-hydraulics/nft-wallet-api/datastore"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
)

type dummyStore struct{}

func (*dummyStore) Jobs(datastore.ListOptions) ([]Job, error) { return nil, nil }
func (*dummyStore) Job(id uuid.UUID) (Job, error)             { return Job{}, nil }
func (*dummyStore) InsertJob(*Job) error                      { return nil }
func (*dummyStore) UpdateJob(*Job) error                      { return nil }
func (*dummyStore) AcceptJob(j *Job, acceptedGracePeriod time.Duration) error {
	j.ExecCount = j.ExecCount + 1
	j.State = Accepted
	return nil
}
func (*dummyStore) SchedulableJobs(acceptedGracePeriod, reSchedulableGracePeriod time.Duration, o datastore.ListOptions) ([]Job, error) {
	return nil, nil
}
func (*dummyStore) Status() ([]StatusQuery, error) {
	return []StatusQuery{{State: Complete, Count: 3}, {State: Error, Count: 1}}, nil
}

func newTestPool(opts ...WorkerPoolOption) *WorkerPoolImpl {
	ctx, cancel := context.WithCancel(context.Background())
	wp := &WorkerPoolImpl{
		context:       ctx,
		cancelContext: cancel,
		executors:     make(map[string]ExecutorFunc),
		jobChan:       make(chan *Job, 1),
		store:         &dummyStore{},
	}

	for _, opt := range opts {
		opt(wp)
	}

	wp.RegisterExecutor(SendJobStatusJobType, wp.executeSendJobStatus)

	return wp
}

func TestScheduleSendNotification(t *testing.T) {
	logger, hook := test.NewNullLogger()

	wp := newTestPool(WithJobStatusWebhook("http://localhost", time.Minute), WithLogger(logger))

	sendNotificationCalled := false

	wp.RegisterExecutor(SendJobStatusJobType, func(ctx context.Context, j *Job) error {
		j.ShouldSendNotification = false
		sendNotificationCalled = true
		return nil
	})

	wp.RegisterExecutor("TestJobType", func(ctx context.Context, j *Job) error {
		j.ShouldSendNotification = true
		return nil
	})

	job, err := wp.CreateJob("TestJobType", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := wp.process(job); err != nil {
		t.Fatal(err)
	}

	if len(wp.jobChan) == 0 {
		t.Fatal("expected job channel to contain a job")
	}

	sendNotificationJob := <-wp.jobChan

	if sendNotificationJob.Type != SendJobStatusJobType {
		t.Fatalf("expected pool to have a send_job_status job")
	}

	if err := wp.process(sendNotificationJob); err != nil {
		t.Fatal(err)
	}

	if !sendNotificationCalled {
		t.Fatalf("expected 'sendNotificationCalled' to equal true")
	}

	if len(hook.Entries) > 0 {
		t.Fatalf("did not expect a warning, got %s", hook.LastEntry().Message)
	}
}

func TestExecuteSendNotification(t *testing.T) {
	t.Run("valid job should send", func(t *testing.T) {
		var webhookJob JSONResponse
		svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&webhookJob); err != nil {
				t.Error(err)
			}
		}))
		defer svr.Close()

		logger, hook := test.NewNullLogger()
		wp := newTestPool(WithJobStatusWebhook(svr.URL, time.Minute), WithLogger(logger))

		wp.RegisterExecutor("TestJobType", func(ctx context.Context, j *Job) error {
			j.ShouldSendNotification = true
			return nil
		})

		job, err := wp.CreateJob("TestJobType", "some-transfer")
		if err != nil {
			t.Fatal(err)
		}

		if err := wp.process(job); err != nil {
			t.Fatal(err)
		}

		if err := wp.process(<-wp.jobChan); err != nil {
			t.Fatal(err)
		}

		if webhookJob.Type != "TestJobType" {
			t.Fatalf("expected webhook endpoint to have received a notification")
		}

		if webhookJob.State != Complete {
			t.Fatalf("expected job to be in state '%s' got '%s'", Complete, webhookJob.State)
		}

		if webhookJob.TransferID != "some-transfer" {
			t.Fatalf("expected transfer id 'some-transfer', got '%s'", webhookJob.TransferID)
		}

		if len(hook.Entries) > 0 {
			t.Fatalf("did not expect a warning, got %s", hook.LastEntry().Message)
		}
	})

	t.Run("failed job should send", func(t *testing.T) {
		var webhookJob JSONResponse
		svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&webhookJob); err != nil {
				t.Error(err)
			}
		}))
		defer svr.Close()

		logger, hook := test.NewNullLogger()
		wp := newTestPool(WithJobStatusWebhook(svr.URL, time.Minute), WithLogger(logger))

		wp.RegisterExecutor("TestJobType", func(ctx context.Context, j *Job) error {
			j.ShouldSendNotification = true
			return PermanentFailure(fmt.Errorf("recipient rejected"))
		})

		job, err := wp.CreateJob("TestJobType", "")
		if err != nil {
			t.Fatal(err)
		}

		if err := wp.process(job); err != nil {
			t.Fatal(err)
		}
		if err := wp.process(<-wp.jobChan); err != nil {
			t.Fatal(err)
		}

		if webhookJob.Type != "TestJobType" {
			t.Fatalf("expected webhook endpoint to have received a notification")
		}

		if webhookJob.State != Failed {
			t.Fatalf("expected job to be in state '%s' got '%s'", Failed, webhookJob.State)
		}

		if len(hook.Entries) == 0 {
			t.Fatalf("expected a warning")
		}
	})

	t.Run("erroring job should not send", func(t *testing.T) {
		logger, _ := test.NewNullLogger()
		wp := newTestPool(
			WithJobStatusWebhook("http://localhost", time.Minute),
			WithLogger(logger),
			WithMaxJobErrorCount(1),
		)

		wp.RegisterExecutor("TestJobType", func(ctx context.Context, j *Job) error {
			j.ShouldSendNotification = true
			return fmt.Errorf("test error")
		})

		job, err := wp.CreateJob("TestJobType", "")
		if err != nil {
			t.Fatal(err)
		}

		if err := wp.process(job); err != nil {
			t.Fatal(err)
		}

		if job.State != Error {
			t.Errorf("expected job to be in state '%s', got '%s'", Error, job.State)
		}

		if len(wp.jobChan) != 0 {
			t.Errorf("did not expect a job to be queued")
		}
	})

	t.Run("valid job should send but get an endpoint error and retry send", func(t *testing.T) {
		svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "test error", http.StatusBadGateway)
		}))
		defer svr.Close()

		logger, hook := test.NewNullLogger()
		wp := newTestPool(
			WithJobStatusWebhook(svr.URL, time.Minute),
			WithLogger(logger),
			WithMaxJobErrorCount(1),
		)

		wp.RegisterExecutor("TestJobType", func(ctx context.Context, j *Job) error {
			j.ShouldSendNotification = true
			return nil
		})

		job, err := wp.CreateJob("TestJobType", "")
		if err != nil {
			t.Fatal(err)
		}

		if err := wp.process(job); err != nil {
			t.Fatal(err)
		}

		sendNotificationJob := <-wp.jobChan

		if err := wp.process(sendNotificationJob); err != nil {
			t.Fatal(err)
		}

		if len(hook.Entries) != 1 {
			t.Errorf("expected there to be one warning, got %d", len(hook.Entries))
		}

		if sendNotificationJob.State != Error {
			t.Errorf("expected send notification job to be in '%s' state, got '%s'", Error, sendNotificationJob.State)
		}
	})
}

func TestJobErrorMessages(t *testing.T) {
	t.Run("all error messages are stored & published when retries occur", func(t *testing.T) {
		retryCount := 3
		logger, hook := test.NewNullLogger()
		expectedErrorMessages := []string{}

		svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var resp JSONResponse
			if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
				t.Error(err)
				return
			}

			if !reflect.DeepEqual(resp.Errors, expectedErrorMessages) {
				t.Errorf("error messages don't match the expected error messages, expected: %v, got: %v", expectedErrorMessages, resp.Errors)
			}
		}))
		defer svr.Close()

		wp := newTestPool(
			WithJobStatusWebhook(svr.URL, time.Minute),
			WithLogger(logger),
			WithMaxJobErrorCount(retryCount),
		)

		wp.RegisterExecutor("TestJobType", func(ctx context.Context, j *Job) error {
			j.ShouldSendNotification = true

			// Fail the first n times, n = retryCount
			if j.ExecCount <= retryCount {
				errorMessage := fmt.Sprintf("error message %d", j.ExecCount)
				expectedErrorMessages = append(expectedErrorMessages, errorMessage)
				return fmt.Errorf("%s", errorMessage)
			}

			j.Result = "done"

			return nil
		})

		job, err := wp.CreateJob("TestJobType", "")
		if err != nil {
			t.Fatal(err)
		}

		for n := 0; n < retryCount+1; n++ {
			if err := wp.process(job); err != nil {
				t.Fatal(err)
			}
		}

		sendNotificationJob := <-wp.jobChan
		if err := wp.process(sendNotificationJob); err != nil {
			t.Fatal(err)
		}

		if len(hook.Entries) != retryCount {
			t.Errorf("expected there to be %d warning(s), got %d", retryCount, len(hook.Entries))
		}

		if job.Error != "" {
			t.Errorf("expected job.Error to be blank, got: %#v", job.Error)
		}

		if !reflect.DeepEqual([]string(job.Errors), expectedErrorMessages) {
			t.Errorf("error messages don't match the expected error messages, expected: %v, got: %v", expectedErrorMessages, job.Errors)
		}
	})
}

func TestUnknownJobType(t *testing.T) {
	logger, hook := test.NewNullLogger()
	wp := newTestPool(WithLogger(logger))

	job, err := wp.CreateJob("nobody-handles-this", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := wp.process(job); err != nil {
		t.Fatal(err)
	}

	if job.State != NoAvailableWorkers {
		t.Errorf("expected state '%s', got '%s'", NoAvailableWorkers, job.State)
	}

	if len(hook.Entries) != 1 {
		t.Errorf("expected one warning, got %d", len(hook.Entries))
	}
}

func TestScheduleFullQueue(t *testing.T) {
	wp := newTestPool()

	first := &Job{Type: "TestJobType"}
	second := &Job{Type: "TestJobType"}

	if err := wp.Schedule(first); err != nil {
		t.Fatal(err)
	}

	if err := wp.Schedule(second); err != nil {
		t.Fatal(err)
	}

	if second.State != NoAvailableWorkers {
		t.Errorf("expected second job to be in state '%s', got '%s'", NoAvailableWorkers, second.State)
	}
}

func TestWorkerPoolStatus(t *testing.T) {
	wp := newTestPool()
	wp.capacity = 1
	wp.workerCount = 2

	status, err := wp.Status()
	if err != nil {
		t.Fatal(err)
	}

	if status.JobsCompleted != 3 || status.JobsErrored != 1 {
		t.Errorf("unexpected job counts: %+v", status.JobQueueStatus)
	}

	if status.Capacity != 1 || status.WorkerCount != 2 {
		t.Errorf("unexpected pool size: %+v", status)
	}
}

func TestWorkerPoolOptions(t *testing.T) {
	t.Run("non-positive durations keep defaults", func(t *testing.T) {
		wp := NewWorkerPool(&dummyStore{}, 1, 1,
			WithDbJobPollInterval(0),
			WithAcceptedGracePeriod(-time.Second),
			WithReSchedulableGracePeriod(0),
			WithMaxJobErrorCount(-1),
		)

		if wp.dbJobPollInterval != defaultDBJobPollInterval {
			t.Errorf("expected poll interval %s, got %s", defaultDBJobPollInterval, wp.dbJobPollInterval)
		}
		if wp.acceptedGracePeriod != defaultAcceptedGracePeriod {
			t.Errorf("expected accepted grace period %s, got %s", defaultAcceptedGracePeriod, wp.acceptedGracePeriod)
		}
		if wp.reSchedulableGracePeriod != defaultReSchedulableGracePeriod {
			t.Errorf("expected re-schedulable grace period %s, got %s", defaultReSchedulableGracePeriod, wp.reSchedulableGracePeriod)
		}
		if wp.maxJobErrorCount != defaultMaxJobErrorCount {
			t.Errorf("expected max job error count %d, got %d", defaultMaxJobErrorCount, wp.maxJobErrorCount)
		}
	})

	t.Run("values are applied", func(t *testing.T) {
		wp := NewWorkerPool(&dummyStore{}, 1, 1,
			WithDbJobPollInterval(time.Second),
			WithAcceptedGracePeriod(2*time.Second),
			WithReSchedulableGracePeriod(3*time.Second),
			WithMaxJobErrorCount(0),
		)

		if wp.dbJobPollInterval != time.Second || wp.acceptedGracePeriod != 2*time.Second || wp.reSchedulableGracePeriod != 3*time.Second {
			t.Errorf("unexpected durations: %s %s %s", wp.dbJobPollInterval, wp.acceptedGracePeriod, wp.reSchedulableGracePeriod)
		}
		if wp.maxJobErrorCount != 0 {
			t.Errorf("expected max job error count 0, got %d", wp.maxJobErrorCount)
		}
	})

	t.Run("webhook", func(t *testing.T) {
		if wp := NewWorkerPool(&dummyStore{}, 1, 1, WithJobStatusWebhook("", time.Second)); wp.notificationConfig.ShouldSendJobStatus() {
			t.Error("expected notifications to be disabled without a url")
		}

		for _, u := range []string{"localhost:8080", "ftp://example.com/hook", "/relative"} {
			func() {
				defer func() {
					if recover() == nil {
						t.Errorf("expected %q to be rejected", u)
					}
				}()
				WithJobStatusWebhook(u, time.Second)
			}()
		}
	})
}
