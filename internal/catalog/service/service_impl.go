package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	"github.com/reelforge/reelforge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  catalogdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  catalogdomain.Repository
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// ListMilestones returns the ladder ascending by min_videos. A malformed
// ladder degrades to an empty one so callers fall back to list-price
// behavior instead of failing the page.
func (s *Service) ListMilestones(ctx context.Context) ([]catalogdomain.Milestone, error) {
	items, err := s.repo.ListMilestones(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if err := catalogdomain.ValidateLadder(items); err != nil {
		s.log.Error("milestone ladder is malformed, serving empty ladder", zap.Error(err))
		return []catalogdomain.Milestone{}, nil
	}
	return items, nil
}

func (s *Service) ListDiscountTiers(ctx context.Context) ([]catalogdomain.DiscountTier, error) {
	return s.repo.ListDiscountTiers(ctx, s.db)
}

func (s *Service) CreateMilestone(ctx context.Context, req catalogdomain.CreateMilestoneRequest) (*catalogdomain.Milestone, error) {
	if req.MinVideos < 0 {
		return nil, catalogdomain.ErrInvalidMinVideos
	}
	if strings.TrimSpace(req.TierName) == "" {
		return nil, catalogdomain.ErrInvalidTierName
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return nil, catalogdomain.ErrInvalidDiscount
	}

	supportLevel := strings.TrimSpace(req.SupportLevel)
	if supportLevel == "" {
		supportLevel = "chat"
	}

	entity := &catalogdomain.Milestone{
		ID:                     s.genID.Generate(),
		MinVideos:              req.MinVideos,
		TierName:               strings.TrimSpace(req.TierName),
		DiscountPercent:        req.DiscountPercent,
		UnlockedRecipeSlugs:    datatypes.NewJSONSlice(emptyIfNil(req.UnlockedRecipeSlugs)),
		UnlockedAddons:         datatypes.NewJSONSlice(emptyIfNil(req.UnlockedAddons)),
		BundlesUnlocked:        datatypes.NewJSONSlice(emptyIfNil(req.BundlesUnlocked)),
		MaxDurationSeconds:     req.MaxDurationSeconds,
		LandscapeUnlocked:      req.LandscapeUnlocked,
		DualFormatFree:         req.DualFormatFree,
		CustomRequestsUnlocked: req.CustomRequestsUnlocked,
		SupportLevel:           supportLevel,
		Perks:                  datatypes.NewJSONSlice(emptyPerksIfNil(req.Perks)),
		CreatedAt:              time.Now().UTC(),
	}

	// The new rung must keep the whole ladder well formed before it is
	// accepted; milestones are immutable afterwards.
	existing, err := s.repo.ListMilestones(ctx, s.db)
	if err != nil {
		return nil, err
	}
	candidate := append(append([]catalogdomain.Milestone{}, existing...), *entity)
	sort.Slice(candidate, func(i, j int) bool { return candidate[i].MinVideos < candidate[j].MinVideos })
	if err := catalogdomain.ValidateLadder(candidate); err != nil {
		return nil, err
	}

	if err := s.repo.InsertMilestone(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, catalogdomain.ErrDuplicateRung
		}
		return nil, err
	}

	s.log.Info("milestone published",
		zap.Int("min_videos", entity.MinVideos),
		zap.String("tier_name", entity.TierName),
		zap.Int("discount_percent", entity.DiscountPercent),
	)
	return entity, nil
}

func (s *Service) CreateDiscountTier(ctx context.Context, req catalogdomain.CreateDiscountTierRequest) (*catalogdomain.DiscountTier, error) {
	if req.MinVideoCount < 0 {
		return nil, catalogdomain.ErrInvalidMinVideos
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return nil, catalogdomain.ErrInvalidDiscount
	}

	entity := &catalogdomain.DiscountTier{
		ID:              s.genID.Generate(),
		MinVideoCount:   req.MinVideoCount,
		DiscountPercent: req.DiscountPercent,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.repo.InsertDiscountTier(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, catalogdomain.ErrDuplicateRung
		}
		return nil, err
	}
	return entity, nil
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func emptyPerksIfNil(in []catalogdomain.Perk) []catalogdomain.Perk {
	if in == nil {
		return []catalogdomain.Perk{}
	}
	return in
}
