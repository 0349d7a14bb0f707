package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
	brandrepo "github.com/reelforge/reelforge/internal/brand/repository"
	brandservice "github.com/reelforge/reelforge/internal/brand/service"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	catalogrepo "github.com/reelforge/reelforge/internal/catalog/repository"
	catalogservice "github.com/reelforge/reelforge/internal/catalog/service"
	"github.com/reelforge/reelforge/internal/clock"
	upgradedomain "github.com/reelforge/reelforge/internal/upgrade/domain"
	upgraderepo "github.com/reelforge/reelforge/internal/upgrade/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	clock     *clock.FakeClock
	svc       upgradedomain.Service
	brands    branddomain.Service
	brandRepo branddomain.Repository
	brandID   snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&catalogdomain.Milestone{},
		&catalogdomain.DiscountTier{},
		&branddomain.Brand{},
		&branddomain.VolumeLedger{},
		&upgradedomain.Request{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	cRepo := catalogrepo.Provide()
	catalog := catalogservice.New(catalogservice.Params{DB: conn, Log: log, GenID: node, Repo: cRepo})
	bRepo := brandrepo.Provide()
	brands := brandservice.New(brandservice.Params{DB: conn, Log: log, GenID: node, Repo: bRepo, Catalog: catalog})

	ctx := context.Background()
	for _, m := range []catalogdomain.CreateMilestoneRequest{
		{MinVideos: 0, TierName: "New", DiscountPercent: 0},
		{MinVideos: 3, TierName: "Bronze", DiscountPercent: 10},
		{MinVideos: 8, TierName: "Silver", DiscountPercent: 15},
		{MinVideos: 12, TierName: "Gold", DiscountPercent: 20},
	} {
		_, err := catalog.CreateMilestone(ctx, m)
		require.NoError(t, err)
	}

	created, err := brands.CreateBrand(ctx, branddomain.CreateBrandRequest{UserID: "user-1", Name: "Acme Clips"})
	require.NoError(t, err)

	svc := New(Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Clock:       fc,
		Repo:        upgraderepo.Provide(),
		CatalogRepo: cRepo,
		BrandRepo:   bRepo,
		Catalog:     catalog,
	})

	return &fixture{
		db:        conn,
		node:      node,
		clock:     fc,
		svc:       svc,
		brands:    brands,
		brandRepo: bRepo,
		brandID:   created.ID,
	}
}

func (f *fixture) setCounts(t *testing.T, lifetime, approved int) {
	t.Helper()
	require.NoError(t, f.db.Exec(
		`UPDATE volume_ledgers SET lifetime_video_count = ?, approved_video_count = ? WHERE brand_id = ?`,
		lifetime, approved, f.brandID,
	).Error)
}

func TestSubmitRequiresProofLink(t *testing.T) {
	f := setup(t)
	f.setCounts(t, 8, 2)

	_, err := f.svc.Submit(context.Background(), f.brandID.String(), upgradedomain.SubmitRequest{})
	assert.ErrorIs(t, err, upgradedomain.ErrMissingProof)
}

func TestSubmitRequiresEligibility(t *testing.T) {
	f := setup(t)
	f.setCounts(t, 2, 2)

	_, err := f.svc.Submit(context.Background(), f.brandID.String(), upgradedomain.SubmitRequest{VideoLink: "https://tiktok.com/v/1"})
	assert.ErrorIs(t, err, upgradedomain.ErrNotEligible)
}

func TestSubmitTargetsNextRungByApprovedCount(t *testing.T) {
	f := setup(t)
	// lifetime 8, approved 2: the claimable rung is min_videos=3.
	f.setCounts(t, 8, 2)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.brandID.String(), upgradedomain.SubmitRequest{VideoLink: "https://tiktok.com/v/1"})
	require.NoError(t, err)
	assert.Equal(t, upgradedomain.StatusPending, req.Status)

	var minVideos int
	require.NoError(t, f.db.Raw(`SELECT min_videos FROM milestones WHERE id = ?`, req.TargetMilestoneID).Scan(&minVideos).Error)
	assert.Equal(t, 3, minVideos)

	// A second submit while one is pending is refused.
	_, err = f.svc.Submit(ctx, f.brandID.String(), upgradedomain.SubmitRequest{VideoLink: "https://tiktok.com/v/2"})
	assert.ErrorIs(t, err, upgradedomain.ErrPendingExists)
}

func TestApproveSnapsApprovedCountToTarget(t *testing.T) {
	f := setup(t)
	f.setCounts(t, 8, 2)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.brandID.String(), upgradedomain.SubmitRequest{VideoLink: "https://tiktok.com/v/1"})
	require.NoError(t, err)

	reviewed, err := f.svc.Approve(ctx, req.ID.String(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, upgradedomain.StatusApproved, reviewed.Status)
	assert.Equal(t, "admin-1", reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)

	ledger, err := f.brands.GetLedger(ctx, f.brandID.String())
	require.NoError(t, err)
	// Snapped to the rung threshold, not incremented to 2+3.
	assert.Equal(t, 3, ledger.ApprovedVideoCount)
	assert.Equal(t, 10, ledger.CurrentDiscountPercent)
}

func TestApproveSecondReviewerNoOps(t *testing.T) {
	f := setup(t)
	f.setCounts(t, 8, 2)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.brandID.String(), upgradedomain.SubmitRequest{VideoLink: "https://tiktok.com/v/1"})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, req.ID.String(), "admin-1")
	require.NoError(t, err)

	// The losing reviewer gets the terminal request back, not an error,
	// and the ledger is applied exactly once.
	dup, err := f.svc.Approve(ctx, req.ID.String(), "admin-2")
	require.NoError(t, err)
	assert.Equal(t, upgradedomain.StatusApproved, dup.Status)
	assert.Equal(t, "admin-1", dup.ReviewedBy)

	rejected, err := f.svc.Reject(ctx, req.ID.String(), "admin-3")
	require.NoError(t, err)
	assert.Equal(t, upgradedomain.StatusApproved, rejected.Status, "late reject must not flip a reviewed request")

	ledger, err := f.brands.GetLedger(ctx, f.brandID.String())
	require.NoError(t, err)
	assert.Equal(t, 3, ledger.ApprovedVideoCount)
}

func TestStaleApprovalClosesWithoutRegressing(t *testing.T) {
	f := setup(t)
	f.setCounts(t, 8, 2)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.brandID.String(), upgradedomain.SubmitRequest{VideoLink: "https://tiktok.com/v/1"})
	require.NoError(t, err)

	// The ledger moved past the request's target before review.
	require.NoError(t, f.brandRepo.AdvanceApproval(ctx, f.db, f.brandID, 8, 15))

	reviewed, err := f.svc.Approve(ctx, req.ID.String(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, upgradedomain.StatusApproved, reviewed.Status)

	ledger, err := f.brands.GetLedger(ctx, f.brandID.String())
	require.NoError(t, err)
	assert.Equal(t, 8, ledger.ApprovedVideoCount)
	assert.Equal(t, 15, ledger.CurrentDiscountPercent)
}

func TestRejectLeavesLedgerUntouched(t *testing.T) {
	f := setup(t)
	f.setCounts(t, 8, 2)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.brandID.String(), upgradedomain.SubmitRequest{VideoLink: "https://tiktok.com/v/1"})
	require.NoError(t, err)

	reviewed, err := f.svc.Reject(ctx, req.ID.String(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, upgradedomain.StatusRejected, reviewed.Status)

	ledger, err := f.brands.GetLedger(ctx, f.brandID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, ledger.ApprovedVideoCount)
	assert.Equal(t, 0, ledger.CurrentDiscountPercent)
}
