package models

import (
	"path/filepath"
	"testing"

	"github.com/anirank/anirank/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func ratingOf(v float64) *float64 { return &v }

func TestEpisodeNumberConstraint(t *testing.T) {
	db := newTestDB(t)

	for _, episode := range []int{0, -1, 10000} {
		err := db.CreateEpisodeFeedback(&EpisodeFeedback{
			UserID:  "user-1",
			AnimeID: 1,
			Episode: episode,
		})
		assert.ErrorIsf(t, err, errs.ErrValidation, "episode %d must be rejected", episode)
	}

	for _, episode := range []int{1, 9999} {
		err := db.CreateEpisodeFeedback(&EpisodeFeedback{
			UserID:  "user-1",
			AnimeID: 1,
			Episode: episode,
		})
		assert.NoErrorf(t, err, "episode %d must be accepted", episode)
	}
}

func TestRatingRangeConstraint(t *testing.T) {
	db := newTestDB(t)

	err := db.CreateAnimeFeedback(&AnimeFeedback{UserID: "u", AnimeID: 1, Rating: ratingOf(10.5)})
	assert.ErrorIs(t, err, errs.ErrValidation)
	err = db.CreateAnimeFeedback(&AnimeFeedback{UserID: "u", AnimeID: 1, Rating: ratingOf(-0.1)})
	assert.ErrorIs(t, err, errs.ErrValidation)

	assert.NoError(t, db.CreateAnimeFeedback(&AnimeFeedback{UserID: "u", AnimeID: 1, Rating: ratingOf(0)}))
	assert.NoError(t, db.CreateAnimeFeedback(&AnimeFeedback{UserID: "u", AnimeID: 1, Rating: ratingOf(10)}))
	assert.NoError(t, db.CreateAnimeFeedback(&AnimeFeedback{UserID: "u", AnimeID: 1, Comment: "no rating"}))
}

func TestShareLookupExcludesPrivateLists(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.SaveTierList(&TierList{
		ID:      "private-with-token",
		UserID:  "user-1",
		ShareID: "tttttttttttttttt",
	}))

	// The token exists, but the list is not public
	_, err := db.GetTierListByShareID("tttttttttttttttt")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = db.GetTierListByShareID("")
	assert.ErrorIs(t, err, errs.ErrNotFound, "empty token must never match unshared lists")
}

func TestSummaryAveragesIgnoreUnrated(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.CreateAnimeFeedback(&AnimeFeedback{UserID: "a", AnimeID: 7, Rating: ratingOf(7)}))
	require.NoError(t, db.CreateAnimeFeedback(&AnimeFeedback{UserID: "b", AnimeID: 7, Rating: ratingOf(8)}))
	require.NoError(t, db.CreateAnimeFeedback(&AnimeFeedback{UserID: "c", AnimeID: 7, Comment: "only words"}))

	summary, err := db.AnimeFeedbackSummary([]int{7})
	require.NoError(t, err)
	assert.Equal(t, FeedbackSummary{Average: 7.5, Count: 2}, summary[7])
}

func TestSummaryRoundsToTenth(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.CreateAnimeFeedback(&AnimeFeedback{UserID: "a", AnimeID: 3, Rating: ratingOf(7)}))
	require.NoError(t, db.CreateAnimeFeedback(&AnimeFeedback{UserID: "b", AnimeID: 3, Rating: ratingOf(8)}))
	require.NoError(t, db.CreateAnimeFeedback(&AnimeFeedback{UserID: "c", AnimeID: 3, Rating: ratingOf(8)}))

	summary, err := db.AnimeFeedbackSummary([]int{3})
	require.NoError(t, err)
	// 23/3 = 7.666..., rounded to one decimal
	assert.Equal(t, 7.7, summary[3].Average)
}
