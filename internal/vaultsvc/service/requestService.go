package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/cardvault/vault-services/internal/vaultsvc/models"
	"github.com/cardvault/vault-services/internal/vaultsvc/store"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// RequestService queues proposed profile edits and applies admin
// decisions.
type RequestService struct {
	requests *store.RequestStore
	profiles *store.ProfileStore
	accounts *store.AccountStore
}

func NewRequestService(requests *store.RequestStore, profiles *store.ProfileStore,
	accounts *store.AccountStore) *RequestService {
	return &RequestService{
		requests: requests,
		profiles: profiles,
		accounts: accounts,
	}
}

// Submit queues a pending change request. Only an empty account id is
// rejected; the proposed changes themselves are not validated here.
func (s *RequestService) Submit(accountID string, changes models.ProfileChanges) (*models.ChangeRequest, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account id is required")
	}

	req := models.ChangeRequest{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		RequestedAt: time.Now(),
		Status:      models.StatusPending,
		Changes:     changes,
	}
	if err := s.requests.Append(req); err != nil {
		return nil, err
	}

	log.Infof("change request %s submitted for account %s", req.ID, accountID)
	return &req, nil
}

func (s *RequestService) ListPending() []models.ChangeRequest {
	return s.requests.ListPending()
}

// Process applies an admin decision to a pending request. Approval
// merges the set fields of the proposed changes onto the profile;
// rejection leaves the profile untouched. Either way the request is
// stamped and becomes terminal. A request that already left pending
// cannot be processed again.
func (s *RequestService) Process(requestID string, decision Decision, adminAccountID string) error {
	if err := requireAdmin(s.accounts, adminAccountID); err != nil {
		return err
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return fmt.Errorf("unknown decision %q", decision)
	}

	req := s.requests.GetByID(requestID)
	if req == nil {
		return ErrNotFound
	}
	if !req.IsPending() {
		return ErrRequestProcessed
	}

	if decision == DecisionApprove {
		if profile := s.profiles.GetByAccountID(req.AccountID); profile != nil {
			req.Changes.Apply(profile)
			if err := s.profiles.Update(*profile); err != nil {
				return err
			}
		}
		req.Status = models.StatusApproved
	} else {
		req.Status = models.StatusRejected
	}

	now := time.Now()
	req.ProcessedAt = &now
	req.ProcessedBy = adminAccountID
	if err := s.requests.Update(*req); err != nil {
		return err
	}

	log.Infof("change request %s %s by %s", req.ID, req.Status, adminAccountID)
	return nil
}
