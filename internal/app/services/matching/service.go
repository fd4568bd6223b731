package matching

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"

	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultPoolCap bounds the fallback scan that catches skills spelled with
// a different case than the viewer's.
const DefaultPoolCap = 2000

// Accounts is the account access matching needs. Implemented by
// accountstore.Store.
type Accounts interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	ListVerified(ctx context.Context, f accountstore.CandidateFilter) ([]models.Account, error)
}

// Partners reports the ids the viewer already has a connection request
// with. Implemented by connreq.Service.
type Partners interface {
	PartnerIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Service loads the viewer and candidate pool and runs the Engine.
type Service struct {
	engine   Engine
	accounts Accounts
	partners Partners
	poolCap  int64
	log      *zap.Logger
}

// NewService wires an Engine to its data sources. poolCap <= 0 uses
// DefaultPoolCap.
func NewService(engine Engine, accounts Accounts, partners Partners, poolCap int, logger *zap.Logger) *Service {
	if poolCap <= 0 {
		poolCap = DefaultPoolCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:   engine,
		accounts: accounts,
		partners: partners,
		poolCap:  int64(poolCap),
		log:      logger,
	}
}

// Matches returns the ranked matches for viewerID, excluding the viewer's
// existing connection partners.
func (s *Service) Matches(ctx context.Context, viewerID primitive.ObjectID) ([]Match, error) {
	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	partnerIDs, err := s.partners.PartnerIDs(ctx, viewerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	exclude := append([]primitive.ObjectID{viewerID}, partnerIDs...)

	pool, err := s.pool(ctx, viewer, exclude)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	excluded := lo.SliceToMap(exclude, func(id primitive.ObjectID) (primitive.ObjectID, struct{}) {
		return id, struct{}{}
	})
	return s.engine.ComputeMatches(viewer, pool, excluded), nil
}

// Match returns the match card between viewerID and peerID.
func (s *Service) Match(ctx context.Context, viewerID, peerID primitive.ObjectID) (Match, error) {
	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return Match{}, err
	}
	peer, err := s.accounts.GetByID(ctx, peerID)
	if errors.Is(err, accountstore.ErrNotFound) {
		return Match{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return Match{}, apperr.Internal(err)
	}
	return s.engine.ComputeSingleMatch(viewer, peer)
}

func (s *Service) viewer(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	v, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, accountstore.ErrNotFound) {
		return nil, apperr.NotFound("Account not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return v, nil
}

// pool gathers candidates in two passes: an indexed query on the viewer's
// exact skill strings, then a capped scan of all verified accounts for
// case variants the index cannot see. The union is returned in _id order
// so ties rank by signup order.
func (s *Service) pool(ctx context.Context, viewer *models.Account, exclude []primitive.ObjectID) ([]models.Account, error) {
	raw := lo.Uniq(lo.Filter(append(append([]string{}, viewer.SkillsWanted...), viewer.SkillsTaught...),
		func(skill string, _ int) bool { return strings.TrimSpace(skill) != "" }))
	if len(raw) == 0 {
		return nil, nil
	}

	direct, err := s.accounts.ListVerified(ctx, accountstore.CandidateFilter{
		Exclude:  exclude,
		AnySkill: raw,
		Limit:    s.poolCap,
	})
	if err != nil {
		return nil, err
	}
	scan, err := s.accounts.ListVerified(ctx, accountstore.CandidateFilter{
		Exclude: exclude,
		Limit:   s.poolCap,
	})
	if err != nil {
		return nil, err
	}
	if int64(len(scan)) == s.poolCap {
		s.log.Debug("match candidate scan hit the pool cap",
			zap.String("viewer_id", viewer.ID.Hex()), zap.Int64("cap", s.poolCap))
	}

	merged := lo.UniqBy(append(direct, scan...), func(a models.Account) primitive.ObjectID { return a.ID })
	sortByID(merged)
	return merged, nil
}

// sortByID orders accounts by ObjectID, which is creation order.
func sortByID(accts []models.Account) {
	sort.SliceStable(accts, func(i, j int) bool {
		return bytes.Compare(accts[i].ID[:], accts[j].ID[:]) < 0
	})
}
