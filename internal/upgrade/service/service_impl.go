package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	"github.com/reelforge/reelforge/internal/clock"
	obsmetrics "github.com/reelforge/reelforge/internal/observability/metrics"
	"github.com/reelforge/reelforge/internal/unlock"
	upgradedomain "github.com/reelforge/reelforge/internal/upgrade/domain"
	"github.com/reelforge/reelforge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        upgradedomain.Repository
	CatalogRepo catalogdomain.Repository
	BrandRepo   branddomain.Repository
	Catalog     catalogdomain.Service
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        upgradedomain.Repository
	catalogRepo catalogdomain.Repository
	brandRepo   branddomain.Repository
	catalog     catalogdomain.Service
	metrics     *obsmetrics.Metrics
}

func New(p Params) upgradedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("upgrade.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		brandRepo:   p.BrandRepo,
		catalog:     p.Catalog,
		metrics:     p.Metrics,
	}
}

func (s *Service) Submit(ctx context.Context, brandID string, req upgradedomain.SubmitRequest) (*upgradedomain.Request, error) {
	bID, err := parseID(brandID)
	if err != nil {
		return nil, upgradedomain.ErrInvalidBrand
	}
	if strings.TrimSpace(req.VideoLink) == "" {
		return nil, upgradedomain.ErrMissingProof
	}

	ledger, err := s.brandRepo.FindLedger(ctx, s.db, bID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		ledger = &branddomain.VolumeLedger{BrandID: bID}
	}

	ladder, err := s.catalog.ListMilestones(ctx)
	if err != nil {
		return nil, err
	}
	eligibility := unlock.CanRequestTierUpgrade(ledger.LifetimeVideoCount, ledger.ApprovedVideoCount, ladder)
	if !eligibility.Eligible || eligibility.TargetMilestone == nil {
		return nil, upgradedomain.ErrNotEligible
	}

	pending, err := s.repo.HasPending(ctx, s.db, bID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, upgradedomain.ErrPendingExists
	}

	entity := &upgradedomain.Request{
		ID:                s.genID.Generate(),
		BrandID:           bID,
		TargetMilestoneID: eligibility.TargetMilestone.ID,
		VideoLink:         strings.TrimSpace(req.VideoLink),
		Status:            upgradedomain.StatusPending,
		CreatedAt:         s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		// The partial unique index backs up the HasPending check under
		// concurrent submits.
		if db.IsDuplicateKeyErr(err) {
			return nil, upgradedomain.ErrPendingExists
		}
		return nil, err
	}

	s.metrics.RecordUpgradeRequest(ctx, upgradedomain.StatusPending)
	s.log.Info("upgrade request submitted",
		zap.String("brand_id", bID.String()),
		zap.String("target_milestone_id", entity.TargetMilestoneID.String()),
	)
	return entity, nil
}

func (s *Service) ListForBrand(ctx context.Context, brandID string) ([]upgradedomain.Request, error) {
	bID, err := parseID(brandID)
	if err != nil {
		return nil, upgradedomain.ErrInvalidBrand
	}
	return s.repo.ListByBrand(ctx, s.db, bID)
}

func (s *Service) ListPending(ctx context.Context) ([]upgradedomain.Request, error) {
	return s.repo.ListByStatus(ctx, s.db, upgradedomain.StatusPending)
}

// Approve closes the request and advances the brand's approved count to the
// target rung in one transaction. The status flip under WHERE status='pending'
// is the serialization point: a second concurrent reviewer affects zero rows
// and the ledger is applied exactly once. The losing reviewer gets the
// terminal request back as a no-op success, same as a redelivered webhook.
func (s *Service) Approve(ctx context.Context, requestID, reviewerID string) (*upgradedomain.Request, error) {
	id, err := parseID(requestID)
	if err != nil {
		return nil, upgradedomain.ErrInvalidRequest
	}
	reviewer := strings.TrimSpace(reviewerID)
	if reviewer == "" {
		return nil, upgradedomain.ErrInvalidReviewerID
	}

	var reviewed *upgradedomain.Request
	closed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return upgradedomain.ErrNotFound
		}

		now := s.clock.Now()
		won, err := s.repo.CloseIfPending(ctx, tx, id, upgradedomain.StatusApproved, reviewer, now)
		if err != nil {
			return err
		}
		if !won {
			latest, err := s.repo.FindByID(ctx, tx, id)
			if err != nil {
				return err
			}
			if latest == nil {
				return upgradedomain.ErrNotFound
			}
			reviewed = latest
			return nil
		}
		closed = true

		milestone, err := s.catalogRepo.FindMilestone(ctx, tx, req.TargetMilestoneID)
		if err != nil {
			return err
		}
		if milestone == nil {
			return upgradedomain.ErrMilestoneMissing
		}

		if err := s.brandRepo.EnsureLedger(ctx, tx, req.BrandID); err != nil {
			return err
		}
		// Snaps to the rung's threshold, never increments; the repository
		// guards keep a stale approval from moving counters backward.
		if err := s.brandRepo.AdvanceApproval(ctx, tx, req.BrandID, milestone.MinVideos, milestone.DiscountPercent); err != nil {
			return err
		}

		req.Status = upgradedomain.StatusApproved
		req.ReviewedBy = reviewer
		req.ReviewedAt = &now
		reviewed = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !closed {
		s.log.Info("duplicate approval acknowledged",
			zap.String("request_id", id.String()),
			zap.String("reviewed_by", reviewed.ReviewedBy),
		)
		return reviewed, nil
	}

	s.metrics.RecordUpgradeRequest(ctx, upgradedomain.StatusApproved)
	s.log.Info("upgrade request approved",
		zap.String("request_id", id.String()),
		zap.String("brand_id", reviewed.BrandID.String()),
		zap.String("reviewed_by", reviewer),
	)
	return reviewed, nil
}

func (s *Service) Reject(ctx context.Context, requestID, reviewerID string) (*upgradedomain.Request, error) {
	id, err := parseID(requestID)
	if err != nil {
		return nil, upgradedomain.ErrInvalidRequest
	}
	reviewer := strings.TrimSpace(reviewerID)
	if reviewer == "" {
		return nil, upgradedomain.ErrInvalidReviewerID
	}

	req, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, upgradedomain.ErrNotFound
	}

	now := s.clock.Now()
	won, err := s.repo.CloseIfPending(ctx, s.db, id, upgradedomain.StatusRejected, reviewer, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Already reviewed: hand back the terminal request unchanged.
		latest, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return nil, upgradedomain.ErrNotFound
		}
		return latest, nil
	}

	req.Status = upgradedomain.StatusRejected
	req.ReviewedBy = reviewer
	req.ReviewedAt = &now

	s.metrics.RecordUpgradeRequest(ctx, upgradedomain.StatusRejected)
	return req, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
