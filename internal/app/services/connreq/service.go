// Package connreq runs the connection request lifecycle between peers.
//
// A request is opened by Send as interested or ignored. The receiver of an
// interested request may Review it once, to accepted or rejected. Either
// participant may Cancel, which deletes the record whatever its status.
// There is never more than one request per unordered pair of accounts.
package connreq

import (
	"context"
	"errors"
	"fmt"

	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	connectionstore "github.com/dalemusser/peerhub/internal/app/store/connections"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/auditlog"
	"github.com/dalemusser/peerhub/internal/app/system/normalize"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Requests is the request persistence. Implemented by connectionstore.Store.
type Requests interface {
	Insert(ctx context.Context, from, to primitive.ObjectID, status string) (*models.ConnectionRequest, error)
	GetByPair(ctx context.Context, a, b primitive.ObjectID) (*models.ConnectionRequest, error)
	Review(ctx context.Context, id, receiver primitive.ObjectID, status string) (*models.ConnectionRequest, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	ListReceived(ctx context.Context, userID primitive.ObjectID) ([]models.ConnectionRequest, error)
	ListAccepted(ctx context.Context, userID primitive.ObjectID) ([]models.ConnectionRequest, error)
	ListInvolving(ctx context.Context, userID primitive.ObjectID) ([]models.ConnectionRequest, error)
	ExistsAccepted(ctx context.Context, a, b primitive.ObjectID) (bool, error)
}

// Accounts resolves participants. Implemented by accountstore.Store.
type Accounts interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Account, error)
}

// Service is the connection request state machine.
type Service struct {
	requests Requests
	accounts Accounts
	audit    *auditlog.Logger
	log      *zap.Logger
}

// New builds a Service. audit may be nil.
func New(requests Requests, accounts Accounts, audit *auditlog.Logger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{requests: requests, accounts: accounts, audit: audit, log: logger}
}

// Send opens a request from -> to with status interested or ignored.
func (s *Service) Send(ctx context.Context, from, to primitive.ObjectID, status string) (*models.ConnectionRequest, error) {
	status = normalize.Status(status)
	if !models.IsSendStatus(status) {
		return nil, apperr.Validation("Invalid status: " + status)
	}
	if from == to {
		return nil, apperr.Validation("You cannot send a connection request to yourself")
	}
	if _, err := s.accounts.GetByID(ctx, to); err != nil {
		if errors.Is(err, accountstore.ErrNotFound) {
			return nil, apperr.Validation("User not found")
		}
		return nil, apperr.Internal(err)
	}

	req, err := s.requests.Insert(ctx, from, to, status)
	if errors.Is(err, connectionstore.ErrPairExists) {
		return nil, s.pairConflict(ctx, from, to)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.audit.RequestSent(ctx, from, to, req.ID, status)
	return req, nil
}

// pairConflict describes the request that blocked an insert.
func (s *Service) pairConflict(ctx context.Context, a, b primitive.ObjectID) error {
	existing, err := s.requests.GetByPair(ctx, a, b)
	if errors.Is(err, connectionstore.ErrNotFound) {
		// Cancelled between the insert and this read.
		return apperr.Conflict("Connection request already exists")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if existing.Status == models.StatusInterested {
		return apperr.Conflict("Connection request is already pending")
	}
	return apperr.Conflict(fmt.Sprintf("Connection request already exists with status: %s", existing.Status))
}

// Review decides a pending request addressed to receiver.
func (s *Service) Review(ctx context.Context, receiver, requestID primitive.ObjectID, decision string) (*models.ConnectionRequest, error) {
	decision = normalize.Status(decision)
	if !models.IsReviewStatus(decision) {
		return nil, apperr.Validation("Invalid status: " + decision)
	}
	req, err := s.requests.Review(ctx, requestID, receiver, decision)
	if errors.Is(err, connectionstore.ErrNotFound) {
		return nil, apperr.NotFound("Connection request not found or already processed")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.audit.RequestReviewed(ctx, receiver, req.FromUserID, req.ID, decision)
	return req, nil
}

// Cancel deletes the request between requester and counterpart.
func (s *Service) Cancel(ctx context.Context, requester, counterpart primitive.ObjectID) error {
	if requester == counterpart {
		return apperr.Validation("Invalid operation")
	}
	req, err := s.requests.GetByPair(ctx, requester, counterpart)
	if errors.Is(err, connectionstore.ErrNotFound) {
		return apperr.NotFound("Connection request not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if !req.Involves(requester) {
		return apperr.Forbidden("You are not authorized to cancel this request")
	}
	if err := s.requests.DeleteByID(ctx, req.ID); err != nil {
		if errors.Is(err, connectionstore.ErrNotFound) {
			return apperr.NotFound("Connection request not found")
		}
		return apperr.Internal(err)
	}
	s.audit.RequestCancelled(ctx, requester, counterpart, req.ID, req.Status)
	return nil
}

// Received is a pending request with its sender's public profile.
type Received struct {
	Request models.ConnectionRequest `json:"request"`
	From    models.PublicProfile     `json:"from"`
}

// Received lists pending requests addressed to userID, newest first.
// Requests whose sender no longer exists are left out.
func (s *Service) Received(ctx context.Context, userID primitive.ObjectID) ([]Received, error) {
	reqs, err := s.requests.ListReceived(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	senders, err := s.profiles(ctx, lo.Map(reqs, func(r models.ConnectionRequest, _ int) primitive.ObjectID {
		return r.FromUserID
	}))
	if err != nil {
		return nil, err
	}

	out := make([]Received, 0, len(reqs))
	for _, r := range reqs {
		from, ok := senders[r.FromUserID]
		if !ok {
			continue
		}
		out = append(out, Received{Request: r, From: from})
	}
	return out, nil
}

// Connections lists the public profiles of userID's accepted partners,
// most recently accepted first.
func (s *Service) Connections(ctx context.Context, userID primitive.ObjectID) ([]models.PublicProfile, error) {
	reqs, err := s.requests.ListAccepted(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	ids := lo.Map(reqs, func(r models.ConnectionRequest, _ int) primitive.ObjectID { return r.Other(userID) })
	profiles, err := s.profiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(ids, func(id primitive.ObjectID, _ int) (models.PublicProfile, bool) {
		p, ok := profiles[id]
		return p, ok
	}), nil
}

func (s *Service) profiles(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PublicProfile, error) {
	accts, err := s.accounts.GetByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return lo.SliceToMap(accts, func(a models.Account) (primitive.ObjectID, models.PublicProfile) {
		return a.ID, a.Public()
	}), nil
}

// AreConnected reports whether a and b have an accepted request.
func (s *Service) AreConnected(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	if a == b {
		return false, nil
	}
	ok, err := s.requests.ExistsAccepted(ctx, a, b)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return ok, nil
}

// PartnerIDs returns everyone userID has a request with, in any status.
func (s *Service) PartnerIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	reqs, err := s.requests.ListInvolving(ctx, userID)
	if err != nil {
		return nil, err
	}
	return lo.Uniq(lo.Map(reqs, func(r models.ConnectionRequest, _ int) primitive.ObjectID {
		return r.Other(userID)
	})), nil
}
