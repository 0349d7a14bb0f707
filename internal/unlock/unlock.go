// Package unlock maps a brand's approved video count onto the milestone
// ladder. Everything here is pure: same inputs, same outputs, no I/O. The
// calculator must always be fed approved_video_count, never
// lifetime_video_count: perks are earned by proof of posting, not by spend.
package unlock

import (
	"sort"

	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
)

const (
	defaultTierName           = "New"
	defaultMaxDurationSeconds = 30
	defaultSupportLevel       = "chat"
)

// UnlockState is the merged capability view at a given approved count.
type UnlockState struct {
	TierName               string                   `json:"tier_name"`
	DiscountPercent        int                      `json:"discount_percent"`
	MaxDurationSeconds     int                      `json:"max_duration_seconds"`
	UnlockedRecipeSlugs    []string                 `json:"unlocked_recipe_slugs"`
	UnlockedAddons         []string                 `json:"unlocked_addons"`
	UnlockedBundles        []string                 `json:"unlocked_bundles"`
	LandscapeUnlocked      bool                     `json:"landscape_unlocked"`
	DualFormatFree         bool                     `json:"dual_format_free"`
	CustomRequestsUnlocked bool                     `json:"custom_requests_unlocked"`
	SupportLevel           string                   `json:"support_level"`
	Perks                  []catalogdomain.Perk     `json:"perks"`
	CurrentMilestone       *catalogdomain.Milestone `json:"current_milestone,omitempty"`
	NextMilestone          *catalogdomain.Milestone `json:"next_milestone,omitempty"`
	ProgressPercent        int                      `json:"progress_percent"`
}

// ComputeUnlockState folds the ascending ladder up to approvedCount:
// set-union of recipe/addon/bundle unlocks, max of discount and duration,
// OR of capability flags. The last reached rung is the current milestone,
// the first unreached one is next. At approvedCount with no reached rung the
// state still carries defined defaults so callers never render a nil tier.
func ComputeUnlockState(approvedCount int, ladder []catalogdomain.Milestone) UnlockState {
	state := UnlockState{
		TierName:            defaultTierName,
		MaxDurationSeconds:  defaultMaxDurationSeconds,
		SupportLevel:        defaultSupportLevel,
		UnlockedRecipeSlugs: []string{},
		UnlockedAddons:      []string{},
		UnlockedBundles:     []string{},
		Perks:               []catalogdomain.Perk{},
	}
	if approvedCount < 0 {
		approvedCount = 0
	}

	recipes := map[string]struct{}{}
	addons := map[string]struct{}{}
	bundles := map[string]struct{}{}

	for i := range ladder {
		m := ladder[i]
		if m.MinVideos > approvedCount {
			next := m
			state.NextMilestone = &next
			break
		}

		for _, s := range m.UnlockedRecipeSlugs {
			recipes[s] = struct{}{}
		}
		for _, s := range m.UnlockedAddons {
			addons[s] = struct{}{}
		}
		for _, s := range m.BundlesUnlocked {
			bundles[s] = struct{}{}
		}
		if m.DiscountPercent > state.DiscountPercent {
			state.DiscountPercent = m.DiscountPercent
		}
		if m.MaxDurationSeconds > state.MaxDurationSeconds {
			state.MaxDurationSeconds = m.MaxDurationSeconds
		}
		state.LandscapeUnlocked = state.LandscapeUnlocked || m.LandscapeUnlocked
		state.DualFormatFree = state.DualFormatFree || m.DualFormatFree
		state.CustomRequestsUnlocked = state.CustomRequestsUnlocked || m.CustomRequestsUnlocked
		if m.SupportLevel != "" {
			state.SupportLevel = m.SupportLevel
		}
		if m.TierName != "" {
			state.TierName = m.TierName
		}
		state.Perks = append(state.Perks, m.Perks...)

		current := m
		state.CurrentMilestone = &current
	}

	state.UnlockedRecipeSlugs = sortedKeys(recipes)
	state.UnlockedAddons = sortedKeys(addons)
	state.UnlockedBundles = sortedKeys(bundles)
	state.ProgressPercent = progressPercent(approvedCount, state.CurrentMilestone, state.NextMilestone)

	return state
}

func progressPercent(approvedCount int, current, next *catalogdomain.Milestone) int {
	if next == nil {
		return 100
	}
	base := 0
	if current != nil {
		base = current.MinVideos
	}
	span := next.MinVideos - base
	if span <= 0 {
		return 0
	}
	pct := (approvedCount - base) * 100 / span
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// UpgradeEligibility is the answer to "may this brand claim the next rung".
type UpgradeEligibility struct {
	Eligible        bool
	TargetMilestone *catalogdomain.Milestone
}

// CanRequestTierUpgrade finds the next milestone above the approved count and
// checks whether the brand has already ordered enough videos to claim it.
func CanRequestTierUpgrade(lifetimeCount, approvedCount int, ladder []catalogdomain.Milestone) UpgradeEligibility {
	for i := range ladder {
		if ladder[i].MinVideos > approvedCount {
			target := ladder[i]
			return UpgradeEligibility{
				Eligible:        lifetimeCount >= target.MinVideos,
				TargetMilestone: &target,
			}
		}
	}
	return UpgradeEligibility{}
}

// RecipeUnlockMilestone returns the lowest rung that unlocks the given
// recipe slug, or nil when no rung lists it.
func RecipeUnlockMilestone(slug string, ladder []catalogdomain.Milestone) *catalogdomain.Milestone {
	for i := range ladder {
		for _, s := range ladder[i].UnlockedRecipeSlugs {
			if s == slug {
				m := ladder[i]
				return &m
			}
		}
	}
	return nil
}

// AddonUnlockMilestone returns the lowest rung that unlocks the given addon.
func AddonUnlockMilestone(addon string, ladder []catalogdomain.Milestone) *catalogdomain.Milestone {
	for i := range ladder {
		for _, s := range ladder[i].UnlockedAddons {
			if s == addon {
				m := ladder[i]
				return &m
			}
		}
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
