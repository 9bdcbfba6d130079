package transfers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/flow-hydraulics/nft-wallet-api/configs"
	"github.com/flow-hydraulics/nft-wallet-api/datastore"
	wallet_errors "github.com/flow-hydraulics/nft-wallet-api/errors"
	"github.com/flow-hydraulics/nft-wallet-api/jobs"
	"github.com/flow-hydraulics/nft-wallet-api/nft"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service interface {
	Send(ctx context.Context, sync bool, address, nftId string) (*jobs.Job, *NftTransfer, error)
	List(recipient string, limit, offset int) ([]NftTransfer, error)
	Details(transferID string) (*NftTransfer, error)
}

// ServiceImpl defines the API for NFT transfer HTTP handlers.
type ServiceImpl struct {
	cfg           *configs.Config
	store         Store
	sender        Sender
	wp            jobs.WorkerPool
	txRateLimiter ratelimit.Limiter

	// Serializes the in-flight check with the insert of a new transfer.
	sendMu sync.Mutex
}

// NewService initiates a new transfer service and registers its job
// executor to the worker pool.
func NewService(
	cfg *configs.Config,
	store Store,
	sender Sender,
	wp jobs.WorkerPool,
	opts ...ServiceOption,
) Service {
	var defaultTxRatelimiter = ratelimit.NewUnlimited()

	svc := &ServiceImpl{
		cfg:           cfg,
		store:         store,
		sender:        sender,
		wp:            wp,
		txRateLimiter: defaultTxRatelimiter,
	}

	for _, opt := range opts {
		opt(svc)
	}

	if wp != nil {
		wp.RegisterExecutor(SendNftJobType, svc.executeSendNftJob)
	}

	return svc
}

// Send validates the request, records a pending transfer and either
// submits it right away (sync) or leaves it to a job.
// It returns the job (async only), the transfer and a possible error.
func (s *ServiceImpl) Send(ctx context.Context, sync bool, address, nftId string) (*jobs.Job, *NftTransfer, error) {
	// Empty fields are reported as missing rather than invalid
	p := nft.NewSendNftParams(nft.WithNetwork(s.cfg.Bech32Hrp))
	if address != "" {
		p.WithAddress(address)
	}
	if nftId != "" {
		p.WithNftId(nftId)
	}

	req, err := p.Build()
	if err != nil {
		return nil, nil, wallet_errors.BadRequest(err)
	}

	attributes, err := json.Marshal(req)
	if err != nil {
		return nil, nil, err
	}

	transfer, err := s.insertPending(req)
	if err != nil {
		return nil, nil, err
	}

	log.
		WithFields(log.Fields{"transferID": transfer.ID, "nftId": transfer.NftId, "recipient": transfer.RecipientAddress}).
		Info("NFT transfer created")

	if sync {
		if _, err := s.submit(ctx, transfer, req, true); err != nil {
			s.abandon(transfer, err)
			return nil, transfer, syncError(err)
		}
		return nil, transfer, nil
	}

	job, err := s.schedule(transfer, attributes)
	if err != nil {
		// Nothing will pick the transfer up, release the nft
		s.abandon(transfer, err)
		return nil, nil, err
	}

	return job, transfer, nil
}

// schedule creates the send_nft job for a pending transfer and queues it.
func (s *ServiceImpl) schedule(transfer *NftTransfer, attributes []byte) (*jobs.Job, error) {
	job, err := s.wp.CreateJob(SendNftJobType, transfer.ID.String(), jobs.WithAttributes(datatypes.JSON(attributes)))
	if err != nil {
		return nil, err
	}

	transfer.JobID = job.ID.String()
	if err := s.store.UpdateTransfer(transfer); err != nil {
		return nil, err
	}

	// Workers get their own copy so the returned job is not mutated
	// concurrently
	queued := *job
	if err := s.wp.Schedule(&queued); err != nil {
		return nil, err
	}

	return job, nil
}

// abandon fails a transfer that will not be submitted so the nft is no
// longer considered in flight. A transfer that already left the pending
// state is saved as is.
func (s *ServiceImpl) abandon(t *NftTransfer, cause error) {
	if t.State == Pending {
		t.State = Failed
		t.Error = cause.Error()
	}

	if err := s.store.UpdateTransfer(t); err != nil {
		log.
			WithFields(log.Fields{"transferID": t.ID, "error": err, "cause": cause}).
			Error("Could not update abandoned NFT transfer")
	}
}

func (s *ServiceImpl) insertPending(req nft.NftTransferRequest) (*NftTransfer, error) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	nftId := req.NftId().Hex()

	existing, err := s.store.PendingTransfer(nftId)
	if err == nil {
		return nil, wallet_errors.Conflict(fmt.Errorf("nft %s already has a pending transfer %s", nftId, existing.ID))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	transfer := &NftTransfer{
		RecipientAddress: req.Address().Bech32(),
		NftId:            nftId,
		State:            Pending,
	}

	if err := s.store.InsertTransfer(transfer); err != nil {
		return nil, err
	}

	return transfer, nil
}

// submit hands the request to the sender and records the outcome on the
// transfer. With final set any error fails the transfer; otherwise only a
// rejection does and the transfer stays pending for another attempt.
func (s *ServiceImpl) submit(ctx context.Context, t *NftTransfer, req nft.NftTransferRequest, final bool) (*Submission, error) {
	s.txRateLimiter.Take()

	sub, sendErr := s.sender.SendNft(ctx, req)
	if sendErr != nil {
		t.Error = sendErr.Error()
		if final || errors.Is(sendErr, ErrRejected) {
			t.State = Failed
		}
	} else {
		t.State = Submitted
		t.Error = ""
		t.TransactionId = sub.TransactionId
		t.BlockId = sub.BlockId
	}

	if err := s.store.UpdateTransfer(t); err != nil {
		return nil, err
	}

	if sendErr != nil {
		log.
			WithFields(log.Fields{"transferID": t.ID, "error": sendErr}).
			Warn("NFT transfer submission failed")
		return nil, sendErr
	}

	log.
		WithFields(log.Fields{"transferID": t.ID, "transactionId": t.TransactionId}).
		Info("NFT transfer submitted")

	return sub, nil
}

func syncError(err error) error {
	switch {
	case errors.Is(err, ErrRejected):
		return &wallet_errors.RequestError{StatusCode: http.StatusUnprocessableEntity, Err: err}
	case wallet_errors.IsConnectionError(err):
		return &wallet_errors.RequestError{StatusCode: http.StatusServiceUnavailable, Err: fmt.Errorf("wallet unavailable, try again later")}
	}
	return err
}

// List returns transfers, latest first, optionally only those to recipient.
func (s *ServiceImpl) List(recipient string, limit, offset int) ([]NftTransfer, error) {
	if recipient != "" {
		a, err := nft.ParseAddress(recipient)
		if err != nil {
			return nil, wallet_errors.BadRequest(err)
		}
		recipient = a.Bech32()
	}

	o := datastore.ParseListOptions(limit, offset)
	return s.store.Transfers(recipient, o)
}

// Details returns a specific transfer.
func (s *ServiceImpl) Details(transferID string) (*NftTransfer, error) {
	id, err := uuid.Parse(transferID)
	if err != nil {
		return nil, wallet_errors.BadRequest(fmt.Errorf("invalid transfer id"))
	}

	t, err := s.store.Transfer(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wallet_errors.NotFound(fmt.Errorf("transfer not found"))
		}
		return nil, err
	}

	return &t, nil
}
