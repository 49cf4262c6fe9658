package tierlist

import (
	"errors"
	"fmt"
	"testing"

	"github.com/anirank/anirank/internal/errs"
	"github.com/anirank/anirank/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededEditor(ids ...int) *Editor {
	ed := NewEditor()
	for _, id := range ids {
		ed.Pool = append(ed.Pool, models.Anime{ID: id, Title: fmt.Sprintf("Anime %d", id)})
	}
	return ed
}

// occurrences counts every placement of every entry across tiers and pool
func occurrences(ed *Editor) map[int]int {
	counts := make(map[int]int)
	for _, tier := range ed.Tiers {
		for _, anime := range tier.Items {
			counts[anime.ID]++
		}
	}
	for _, anime := range ed.Pool {
		counts[anime.ID]++
	}
	return counts
}

func TestNewEditorDefaults(t *testing.T) {
	ed := NewEditor()

	require.Len(t, ed.Tiers, 6)
	labels := make([]string, 0, 6)
	for _, tier := range ed.Tiers {
		labels = append(labels, tier.Label)
		assert.NotEmpty(t, tier.ID)
		assert.Empty(t, tier.Items)
	}
	assert.Equal(t, []string{"S", "A", "B", "C", "D", "F"}, labels)
	assert.Equal(t, "var(--color-gold)", ed.Tiers[0].Color)
	assert.Empty(t, ed.Pool)
}

func TestMoveToTierConservesEntries(t *testing.T) {
	ed := seededEditor(1, 2, 3)

	require.NoError(t, ed.MoveToTier(1, ed.Tiers[0].ID, 0))
	require.NoError(t, ed.MoveToTier(2, ed.Tiers[0].ID, 1)) // before entry 1
	require.NoError(t, ed.MoveToTier(1, ed.Tiers[3].ID, 0)) // tier to tier
	ed.MoveToPool(2)

	for id, n := range occurrences(ed) {
		assert.Equalf(t, 1, n, "entry %d must appear exactly once", id)
	}
	assert.Equal(t, 2, ed.Pool[len(ed.Pool)-1].ID)
}

func TestMoveToTierInsertsBeforeAnchor(t *testing.T) {
	ed := seededEditor(1, 2, 3)
	tier := ed.Tiers[1].ID

	require.NoError(t, ed.MoveToTier(1, tier, 0))
	require.NoError(t, ed.MoveToTier(2, tier, 0))
	require.NoError(t, ed.MoveToTier(3, tier, 2)) // insert before entry 2

	got := make([]int, 0, 3)
	for _, anime := range ed.Tiers[1].Items {
		got = append(got, anime.ID)
	}
	assert.Equal(t, []int{1, 3, 2}, got)
}

func TestMoveToTierUnknownTargets(t *testing.T) {
	ed := seededEditor(1)

	err := ed.MoveToTier(1, "no-such-tier", 0)
	assert.ErrorIs(t, err, errs.ErrValidation)

	err = ed.MoveToTier(99, ed.Tiers[0].ID, 0)
	assert.ErrorIs(t, err, errs.ErrValidation)

	// A missing anchor appends instead of failing
	require.NoError(t, ed.MoveToTier(1, ed.Tiers[0].ID, 42))
	assert.Equal(t, 1, ed.Tiers[0].Items[0].ID)
}

func TestMoveToPoolIsIdempotent(t *testing.T) {
	ed := seededEditor(1)

	ed.MoveToPool(1)
	ed.MoveToPool(1)

	assert.Len(t, ed.Pool, 1)
	assert.Empty(t, ed.undo, "a no-op must not record an undo step")
}

func TestAddTier(t *testing.T) {
	ed := NewEditor()

	tier, err := ed.AddTier("  Guilty Pleasures  ")
	require.NoError(t, err)
	assert.Equal(t, "Guilty Pleasures", tier.Label)
	assert.Equal(t, newTierColor, tier.Color)
	assert.Len(t, ed.Tiers, 7)

	_, err = ed.AddTier("   ")
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Len(t, ed.Tiers, 7)
}

func TestRemoveTierMovesEntriesToPool(t *testing.T) {
	ed := seededEditor(1, 2)
	tier := ed.Tiers[2].ID
	require.NoError(t, ed.MoveToTier(1, tier, 0))
	require.NoError(t, ed.MoveToTier(2, tier, 0))

	require.NoError(t, ed.RemoveTier(tier))

	assert.Len(t, ed.Tiers, 5)
	assert.Len(t, ed.Pool, 2)
	for id, n := range occurrences(ed) {
		assert.Equalf(t, 1, n, "entry %d must appear exactly once", id)
	}
}

func TestRemoveLastTierRefused(t *testing.T) {
	ed := NewEditor()
	for len(ed.Tiers) > 1 {
		require.NoError(t, ed.RemoveTier(ed.Tiers[0].ID))
	}

	err := ed.RemoveTier(ed.Tiers[0].ID)
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Len(t, ed.Tiers, 1)
}

func TestUpdateTier(t *testing.T) {
	ed := NewEditor()
	tier := ed.Tiers[0].ID

	require.NoError(t, ed.UpdateTier(tier, "God Tier", "#123456"))
	assert.Equal(t, "God Tier", ed.Tiers[0].Label)
	assert.Equal(t, "#123456", ed.Tiers[0].Color)

	require.NoError(t, ed.UpdateTier(tier, "Top", ""))
	assert.Equal(t, "#123456", ed.Tiers[0].Color, "empty color keeps the current one")

	assert.ErrorIs(t, ed.UpdateTier(tier, " ", ""), errs.ErrValidation)
}

func TestUndoRestoresPreviousState(t *testing.T) {
	ed := seededEditor(1, 2, 3)
	tierA := ed.Tiers[1].ID

	require.NoError(t, ed.MoveToTier(2, tierA, 0))
	require.Len(t, ed.Pool, 2)

	ed.Undo()

	assert.Len(t, ed.Pool, 3)
	assert.Empty(t, ed.Tiers[1].Items)
	got := make([]int, 0, 3)
	for _, anime := range ed.Pool {
		got = append(got, anime.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestUndoOnEmptyHistoryIsNoOp(t *testing.T) {
	ed := seededEditor(1)

	ed.Undo()

	assert.Len(t, ed.Pool, 1)
	assert.Len(t, ed.Tiers, 6)
}

func TestUndoDepthIsBounded(t *testing.T) {
	ed := NewEditor()
	tier := ed.Tiers[0].ID

	for i := 0; i < maxUndoDepth+10; i++ {
		require.NoError(t, ed.UpdateTier(tier, fmt.Sprintf("label-%d", i), ""))
	}
	for i := 0; i < maxUndoDepth; i++ {
		ed.Undo()
	}

	// The oldest ten steps fell off, so undo bottoms out at label-9
	assert.Equal(t, "label-9", ed.Tiers[0].Label)
	ed.Undo()
	assert.Equal(t, "label-9", ed.Tiers[0].Label)
}

func TestUndoSnapshotsAreIsolated(t *testing.T) {
	ed := seededEditor(1)
	tier := ed.Tiers[0].ID
	require.NoError(t, ed.MoveToTier(1, tier, 0))

	// Mutating current state must not leak into recorded history
	ed.Tiers[0].Items[0].Title = "mutated"
	ed.Undo()
	ed.Undo()

	assert.Equal(t, "Anime 1", ed.Pool[0].Title)
}

func TestFlattenAndLoadRoundTrip(t *testing.T) {
	ed := seededEditor(1, 2, 3)
	require.NoError(t, ed.MoveToTier(3, ed.Tiers[0].ID, 0))
	require.NoError(t, ed.MoveToTier(1, ed.Tiers[0].ID, 0))
	require.NoError(t, ed.MoveToTier(2, ed.Tiers[4].ID, 0))

	items := ed.Flatten()
	require.Len(t, items, 3)
	assert.Equal(t, models.TierListItem{AnimeID: 3, TierRank: "S", Position: 0}, items[0])
	assert.Equal(t, models.TierListItem{AnimeID: 1, TierRank: "S", Position: 1}, items[1])
	assert.Equal(t, models.TierListItem{AnimeID: 2, TierRank: "D", Position: 0}, items[2])

	entries := map[int]models.Anime{
		1: {ID: 1, Title: "Anime 1"},
		2: {ID: 2, Title: "Anime 2"},
		3: {ID: 3, Title: "Anime 3"},
		4: {ID: 4, Title: "Anime 4"},
	}
	loaded := Load(items, entries)

	assert.Equal(t, 3, loaded.Tiers[0].Items[0].ID)
	assert.Equal(t, 1, loaded.Tiers[0].Items[1].ID)
	assert.Equal(t, 2, loaded.Tiers[4].Items[0].ID)
	require.Len(t, loaded.Pool, 1, "unreferenced entries land in the pool")
	assert.Equal(t, 4, loaded.Pool[0].ID)
}

func TestLoadCreatesTierForUnknownRank(t *testing.T) {
	items := []models.TierListItem{{AnimeID: 1, TierRank: "SS", Position: 0}}
	entries := map[int]models.Anime{1: {ID: 1, Title: "Anime 1"}}

	loaded := Load(items, entries)

	require.Len(t, loaded.Tiers, 7)
	assert.Equal(t, "SS", loaded.Tiers[6].Label)
	assert.Equal(t, newTierColor, loaded.Tiers[6].Color)
	assert.Equal(t, 1, loaded.Tiers[6].Items[0].ID)
}

func TestRunOptimisticRollsBackOnFailure(t *testing.T) {
	ed := seededEditor(1)
	tier := ed.Tiers[0].ID
	saveErr := errors.New("save failed")

	err := RunOptimistic(
		func() { _ = ed.MoveToTier(1, tier, 0) },
		func() error { return saveErr },
		ed.Undo,
	)

	assert.ErrorIs(t, err, saveErr)
	assert.Len(t, ed.Pool, 1, "local change rolled back")
	assert.Empty(t, ed.Tiers[0].Items)
}

func TestNewShareID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		id := NewShareID()
		require.Len(t, id, shareIDLength)
		for _, r := range id {
			assert.Contains(t, shareIDAlphabet, string(r))
		}
		assert.False(t, seen[id], "share ids must not repeat")
		seen[id] = true
	}
}
