package domain

import (
	"context"
	"errors"
	"fmt"
)

type Service interface {
	ListMilestones(ctx context.Context) ([]Milestone, error)
	ListDiscountTiers(ctx context.Context) ([]DiscountTier, error)
	CreateMilestone(ctx context.Context, req CreateMilestoneRequest) (*Milestone, error)
	CreateDiscountTier(ctx context.Context, req CreateDiscountTierRequest) (*DiscountTier, error)
}

type CreateMilestoneRequest struct {
	MinVideos              int      `json:"min_videos"`
	TierName               string   `json:"tier_name"`
	DiscountPercent        int      `json:"discount_percent"`
	UnlockedRecipeSlugs    []string `json:"unlocked_recipe_slugs"`
	UnlockedAddons         []string `json:"unlocked_addons"`
	BundlesUnlocked        []string `json:"bundles_unlocked"`
	MaxDurationSeconds     int      `json:"max_duration_seconds"`
	LandscapeUnlocked      bool     `json:"landscape_unlocked"`
	DualFormatFree         bool     `json:"dual_format_free"`
	CustomRequestsUnlocked bool     `json:"custom_requests_unlocked"`
	SupportLevel           string   `json:"support_level"`
	Perks                  []Perk   `json:"perks"`
}

type CreateDiscountTierRequest struct {
	MinVideoCount   int `json:"min_video_count"`
	DiscountPercent int `json:"discount_percent"`
}

var (
	ErrInvalidMinVideos = errors.New("invalid_min_videos")
	ErrInvalidTierName  = errors.New("invalid_tier_name")
	ErrInvalidDiscount  = errors.New("invalid_discount_percent")
	ErrDuplicateRung    = errors.New("duplicate_ladder_rung")
	ErrLadderViolation  = errors.New("ladder_violation")
)

// ValidateLadder checks that milestones form a strictly ordered ladder:
// min_videos strictly increasing, discount weakly increasing, and every
// capability set a superset of the previous rung's.
func ValidateLadder(ladder []Milestone) error {
	for i := 1; i < len(ladder); i++ {
		prev, cur := ladder[i-1], ladder[i]
		if cur.MinVideos <= prev.MinVideos {
			return fmt.Errorf("%w: min_videos %d not strictly above %d", ErrLadderViolation, cur.MinVideos, prev.MinVideos)
		}
		if cur.DiscountPercent < prev.DiscountPercent {
			return fmt.Errorf("%w: discount drops from %d%% to %d%% at min_videos %d", ErrLadderViolation, prev.DiscountPercent, cur.DiscountPercent, cur.MinVideos)
		}
		if cur.MaxDurationSeconds < prev.MaxDurationSeconds {
			return fmt.Errorf("%w: max duration drops at min_videos %d", ErrLadderViolation, cur.MinVideos)
		}
		if (prev.LandscapeUnlocked && !cur.LandscapeUnlocked) ||
			(prev.DualFormatFree && !cur.DualFormatFree) ||
			(prev.CustomRequestsUnlocked && !cur.CustomRequestsUnlocked) {
			return fmt.Errorf("%w: capability flag revoked at min_videos %d", ErrLadderViolation, cur.MinVideos)
		}
		if !isSuperset(cur.UnlockedRecipeSlugs, prev.UnlockedRecipeSlugs) ||
			!isSuperset(cur.UnlockedAddons, prev.UnlockedAddons) ||
			!isSuperset(cur.BundlesUnlocked, prev.BundlesUnlocked) {
			return fmt.Errorf("%w: unlock set shrinks at min_videos %d", ErrLadderViolation, cur.MinVideos)
		}
	}
	return nil
}

func isSuperset(super, sub []string) bool {
	if len(sub) == 0 {
		return true
	}
	seen := make(map[string]struct{}, len(super))
	for _, s := range super {
		seen[s] = struct{}{}
	}
	for _, s := range sub {
		if _, ok := seen[s]; !ok {
			return false
		}
	}
	return true
}
