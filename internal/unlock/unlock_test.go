package unlock

import (
	"testing"

	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func ladder() []catalogdomain.Milestone {
	return []catalogdomain.Milestone{
		{ID: 1, MinVideos: 0, TierName: "New", DiscountPercent: 0, MaxDurationSeconds: 30,
			SupportLevel:        "chat",
			UnlockedRecipeSlugs: datatypes.NewJSONSlice([]string{"talking-head"})},
		{ID: 2, MinVideos: 3, TierName: "Bronze", DiscountPercent: 10, MaxDurationSeconds: 45,
			SupportLevel:        "chat",
			UnlockedRecipeSlugs: datatypes.NewJSONSlice([]string{"talking-head", "product-demo"}),
			UnlockedAddons:      datatypes.NewJSONSlice([]string{"subtitles"})},
		{ID: 3, MinVideos: 8, TierName: "Silver", DiscountPercent: 15, MaxDurationSeconds: 60,
			SupportLevel:        "priority",
			UnlockedRecipeSlugs: datatypes.NewJSONSlice([]string{"talking-head", "product-demo", "ugc-mashup"}),
			UnlockedAddons:      datatypes.NewJSONSlice([]string{"subtitles", "thumbnail"}),
			BundlesUnlocked:     datatypes.NewJSONSlice([]string{"starter-pack"}),
			LandscapeUnlocked:   true},
		{ID: 4, MinVideos: 12, TierName: "Gold", DiscountPercent: 20, MaxDurationSeconds: 90,
			SupportLevel:        "dedicated",
			UnlockedRecipeSlugs: datatypes.NewJSONSlice([]string{"talking-head", "product-demo", "ugc-mashup", "cinematic"}),
			UnlockedAddons:      datatypes.NewJSONSlice([]string{"subtitles", "thumbnail"}),
			BundlesUnlocked:     datatypes.NewJSONSlice([]string{"starter-pack", "growth-pack"}),
			LandscapeUnlocked:   true, DualFormatFree: true, CustomRequestsUnlocked: true},
	}
}

func TestComputeUnlockStateZeroCount(t *testing.T) {
	state := ComputeUnlockState(0, ladder())

	require.NotNil(t, state.CurrentMilestone)
	assert.Equal(t, "New", state.TierName)
	assert.Equal(t, 0, state.DiscountPercent)
	assert.Equal(t, 30, state.MaxDurationSeconds)
	assert.Equal(t, []string{"talking-head"}, state.UnlockedRecipeSlugs)
	require.NotNil(t, state.NextMilestone)
	assert.Equal(t, 3, state.NextMilestone.MinVideos)
	assert.Equal(t, 0, state.ProgressPercent)
}

func TestComputeUnlockStateEmptyLadder(t *testing.T) {
	state := ComputeUnlockState(5, nil)

	assert.Nil(t, state.CurrentMilestone)
	assert.Nil(t, state.NextMilestone)
	assert.Equal(t, "New", state.TierName)
	assert.Equal(t, "chat", state.SupportLevel)
	assert.Equal(t, 30, state.MaxDurationSeconds)
	assert.Equal(t, 100, state.ProgressPercent)
}

func TestComputeUnlockStateMergesCumulatively(t *testing.T) {
	state := ComputeUnlockState(9, ladder())

	require.NotNil(t, state.CurrentMilestone)
	assert.Equal(t, "Silver", state.TierName)
	assert.Equal(t, 15, state.DiscountPercent)
	assert.Equal(t, 60, state.MaxDurationSeconds)
	assert.Equal(t, "priority", state.SupportLevel)
	assert.True(t, state.LandscapeUnlocked)
	assert.False(t, state.DualFormatFree)
	assert.Equal(t, []string{"product-demo", "talking-head", "ugc-mashup"}, state.UnlockedRecipeSlugs)
	assert.Equal(t, []string{"subtitles", "thumbnail"}, state.UnlockedAddons)
	assert.Equal(t, []string{"starter-pack"}, state.UnlockedBundles)
	require.NotNil(t, state.NextMilestone)
	assert.Equal(t, 12, state.NextMilestone.MinVideos)
	assert.Equal(t, 25, state.ProgressPercent) // (9-8)/(12-8)
}

func TestComputeUnlockStateTerminalTier(t *testing.T) {
	state := ComputeUnlockState(40, ladder())

	assert.Equal(t, "Gold", state.TierName)
	assert.Nil(t, state.NextMilestone)
	assert.Equal(t, 100, state.ProgressPercent)
	assert.True(t, state.DualFormatFree)
	assert.True(t, state.CustomRequestsUnlocked)
}

func TestComputeUnlockStateDeterministic(t *testing.T) {
	a := ComputeUnlockState(9, ladder())
	b := ComputeUnlockState(9, ladder())
	assert.Equal(t, a, b)
}

func TestComputeUnlockStateMonotoneSupersets(t *testing.T) {
	l := ladder()
	prev := ComputeUnlockState(0, l)
	for count := 1; count <= 15; count++ {
		cur := ComputeUnlockState(count, l)
		assert.Subset(t, cur.UnlockedRecipeSlugs, prev.UnlockedRecipeSlugs, "count %d", count)
		assert.Subset(t, cur.UnlockedAddons, prev.UnlockedAddons, "count %d", count)
		assert.Subset(t, cur.UnlockedBundles, prev.UnlockedBundles, "count %d", count)
		assert.GreaterOrEqual(t, cur.DiscountPercent, prev.DiscountPercent, "count %d", count)
		assert.GreaterOrEqual(t, cur.MaxDurationSeconds, prev.MaxDurationSeconds, "count %d", count)
		prev = cur
	}
}

func TestCanRequestTierUpgrade(t *testing.T) {
	l := ladder()

	// lifetime 8, approved 2: next rung above approved is min_videos=3,
	// and 8 >= 3 makes the brand eligible to claim it.
	el := CanRequestTierUpgrade(8, 2, l)
	require.NotNil(t, el.TargetMilestone)
	assert.Equal(t, 3, el.TargetMilestone.MinVideos)
	assert.True(t, el.Eligible)

	// Not yet enough ordered videos for the next rung.
	el = CanRequestTierUpgrade(2, 2, l)
	require.NotNil(t, el.TargetMilestone)
	assert.False(t, el.Eligible)

	// Already at the top rung.
	el = CanRequestTierUpgrade(50, 12, l)
	assert.Nil(t, el.TargetMilestone)
	assert.False(t, el.Eligible)
}

func TestRecipeAndAddonUnlockMilestones(t *testing.T) {
	l := ladder()

	m := RecipeUnlockMilestone("ugc-mashup", l)
	require.NotNil(t, m)
	assert.Equal(t, 8, m.MinVideos)

	m = AddonUnlockMilestone("subtitles", l)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.MinVideos)

	assert.Nil(t, RecipeUnlockMilestone("does-not-exist", l))
}
