package transfers

import (
	"context"
	"errors"
	"fmt"

	"github.com/flow-hydraulics/nft-wallet-api/jobs"
	"github.com/flow-hydraulics/nft-wallet-api/nft"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const SendNftJobType = "send_nft"

func (s *ServiceImpl) executeSendNftJob(ctx context.Context, j *jobs.Job) (err error) {
	if j.Type != SendNftJobType {
		return jobs.ErrInvalidJobType
	}

	j.ShouldSendNotification = true

	id, err := uuid.Parse(j.TransferID)
	if err != nil {
		return jobs.PermanentFailure(fmt.Errorf("invalid transfer id %q", j.TransferID))
	}

	t, err := s.store.Transfer(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jobs.PermanentFailure(fmt.Errorf("transfer %s not found", id))
		}
		return err
	}

	switch t.State {
	case Submitted:
		j.Result = t.TransactionId
		return nil
	case Failed:
		return jobs.PermanentFailure(fmt.Errorf("transfer failed: %s", t.Error))
	}

	// The pool gives up on the job after this attempt.
	final := j.ExecCount > s.cfg.MaxJobErrorCount

	// A job that ends here must not leave the transfer pending.
	defer func() {
		if err != nil && (final || errors.Is(err, jobs.ErrPermanentFailure)) {
			s.abandon(&t, err)
		}
	}()

	req, err := nft.NewNftTransferRequest(t.RecipientAddress, t.NftId, nft.WithNetwork(s.cfg.Bech32Hrp))
	if err != nil {
		return jobs.PermanentFailure(err)
	}

	sub, err := s.submit(ctx, &t, req, final)
	if err != nil {
		if errors.Is(err, ErrRejected) {
			return jobs.PermanentFailure(err)
		}
		return err
	}

	j.Result = sub.TransactionId

	return nil
}
