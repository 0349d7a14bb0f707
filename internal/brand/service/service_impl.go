package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	"github.com/reelforge/reelforge/internal/unlock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    branddomain.Repository
	Catalog catalogdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    branddomain.Repository
	catalog catalogdomain.Service
}

func New(p Params) branddomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("brand.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		catalog: p.Catalog,
	}
}

func (s *Service) CreateBrand(ctx context.Context, req branddomain.CreateBrandRequest) (*branddomain.Brand, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, branddomain.ErrInvalidUser
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, branddomain.ErrInvalidName
	}

	entity := &branddomain.Brand{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.InsertBrand(ctx, s.db, entity); err != nil {
		return nil, err
	}
	if err := s.repo.EnsureLedger(ctx, s.db, entity.ID); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) GetBrand(ctx context.Context, id string) (*branddomain.Brand, error) {
	brandID, err := parseID(id)
	if err != nil {
		return nil, branddomain.ErrInvalidBrand
	}
	brand, err := s.repo.FindBrand(ctx, s.db, brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, branddomain.ErrNotFound
	}
	return brand, nil
}

// GetLedger returns the brand's ledger. A brand without a ledger row yet is
// served zero values so pricing degrades to list price instead of failing.
func (s *Service) GetLedger(ctx context.Context, brandID string) (*branddomain.VolumeLedger, error) {
	id, err := parseID(brandID)
	if err != nil {
		return nil, branddomain.ErrInvalidBrand
	}
	ledger, err := s.repo.FindLedger(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return &branddomain.VolumeLedger{BrandID: id}, nil
	}
	return ledger, nil
}

func (s *Service) GetUnlockState(ctx context.Context, brandID string) (*unlock.UnlockState, error) {
	ledger, err := s.GetLedger(ctx, brandID)
	if err != nil {
		return nil, err
	}

	ladder, err := s.catalog.ListMilestones(ctx)
	if err != nil {
		s.log.Warn("catalog unavailable, serving fully locked state", zap.Error(err))
		ladder = nil
	}

	state := unlock.ComputeUnlockState(ledger.ApprovedVideoCount, ladder)
	return &state, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
