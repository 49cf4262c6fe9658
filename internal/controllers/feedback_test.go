package controllers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/anirank/anirank/internal/catalog"
	"github.com/anirank/anirank/internal/errs"
	"github.com/anirank/anirank/internal/models"
	"github.com/anirank/anirank/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	anime   map[int]*models.Anime
	lookups int
	err     error
}

func (f *fakeCatalog) AnimeByID(_ context.Context, id int) (*models.Anime, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	if anime, ok := f.anime[id]; ok {
		return anime, nil
	}
	return nil, errs.ErrNotFound
}

func (f *fakeCatalog) Top(_ context.Context, _, _ int) (*models.AnimeList, error) {
	return &models.AnimeList{}, nil
}

func (f *fakeCatalog) Search(_ context.Context, _ string, _, _ int) (*models.AnimeList, error) {
	return &models.AnimeList{}, nil
}

func (f *fakeCatalog) Seasonal(_ context.Context, _ int, _ models.Season, _, _ int) (*models.AnimeList, error) {
	return &models.AnimeList{}, nil
}

func (f *fakeCatalog) EpisodesByAnime(_ context.Context, _ int) ([]models.Episode, error) {
	return nil, nil
}

func episodeCount(n int) *int { return &n }

func rating(v float64) *float64 { return &v }

func newFeedbackController(t *testing.T, source *fakeCatalog, blockedTerms string) (*FeedbackController, *models.Database) {
	t.Helper()

	db := newTestDB(t)
	gateway := catalog.NewGateway(source, source, quietLogger())

	path := filepath.Join(t.TempDir(), "blocklist.txt")
	require.NoError(t, os.WriteFile(path, []byte(blockedTerms), 0644))
	blocklist, err := utils.LoadBlocklist(path)
	require.NoError(t, err)

	return NewFeedbackController(db, gateway, blocklist, quietLogger()), db
}

func TestSubmitFeedbackRequiresAuth(t *testing.T) {
	c, db := newFeedbackController(t, &fakeCatalog{}, "")
	ctx := context.Background()

	err := c.SubmitAnimeFeedback(ctx, "", &models.AnimeFeedback{AnimeID: 1, Rating: rating(8)})
	assert.ErrorIs(t, err, errs.ErrAuthRequired)

	err = c.SubmitEpisodeFeedback(ctx, "", &models.EpisodeFeedback{AnimeID: 1, Episode: 1})
	assert.ErrorIs(t, err, errs.ErrAuthRequired)

	entries, err := db.RecentFeedback(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEpisodeBoundRejectedBeforePersistence(t *testing.T) {
	source := &fakeCatalog{anime: map[int]*models.Anime{
		1: {ID: 1, Title: "Short Series", Episodes: episodeCount(12)},
	}}
	c, db := newFeedbackController(t, source, "")

	err := c.SubmitEpisodeFeedback(context.Background(), "user-1", &models.EpisodeFeedback{
		AnimeID: 1,
		Episode: 13,
		Rating:  rating(7),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValidation)

	entries, err := db.RecentFeedback(10)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected feedback must not be persisted")
}

func TestEpisodeBoundSkippedWhenCatalogDown(t *testing.T) {
	source := &fakeCatalog{err: errors.New("connection refused")}
	c, db := newFeedbackController(t, source, "")

	err := c.SubmitEpisodeFeedback(context.Background(), "user-1", &models.EpisodeFeedback{
		AnimeID: 1,
		Episode: 9000,
		Rating:  rating(9),
	})
	require.NoError(t, err, "catalog outage must not block submissions")

	entries, err := db.RecentFeedback(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBlockedCommentRejected(t *testing.T) {
	c, db := newFeedbackController(t, &fakeCatalog{}, "spamword\n# a comment line\n")
	ctx := context.Background()

	err := c.SubmitAnimeFeedback(ctx, "user-1", &models.AnimeFeedback{
		AnimeID: 1,
		Comment: "total SPAMWORD garbage",
	})
	assert.ErrorIs(t, err, errs.ErrValidation)

	entries, err := db.RecentFeedback(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCommunityFeedEnrichment(t *testing.T) {
	source := &fakeCatalog{anime: map[int]*models.Anime{
		1: {ID: 1, Title: "Cowboy Bebop", Episodes: episodeCount(26)},
	}}
	c, _ := newFeedbackController(t, source, "")
	ctx := context.Background()

	require.NoError(t, c.SubmitAnimeFeedback(ctx, "user-1", &models.AnimeFeedback{AnimeID: 1, Rating: rating(10)}))
	require.NoError(t, c.SubmitAnimeFeedback(ctx, "user-2", &models.AnimeFeedback{AnimeID: 1, Comment: "classic"}))
	// Series 99 is unknown to the catalog
	require.NoError(t, c.SubmitAnimeFeedback(ctx, "user-1", &models.AnimeFeedback{AnimeID: 99, Rating: rating(5)}))

	lookupsBefore := source.lookups
	entries, err := c.CommunityFeed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 99, entries[0].AnimeID)
	assert.Empty(t, entries[0].AnimeTitle, "failed lookups leave the title empty")
	assert.Equal(t, "Cowboy Bebop", entries[1].AnimeTitle)
	assert.Equal(t, "Cowboy Bebop", entries[2].AnimeTitle)
	assert.Equal(t, 2, source.lookups-lookupsBefore, "one lookup per distinct series")
}

func TestCommunityFeedFailsWhenNoEntryCanBeEnriched(t *testing.T) {
	source := &fakeCatalog{anime: map[int]*models.Anime{
		1: {ID: 1, Title: "Series", Episodes: episodeCount(12)},
	}}
	c, _ := newFeedbackController(t, source, "")
	ctx := context.Background()

	require.NoError(t, c.SubmitAnimeFeedback(ctx, "user-1", &models.AnimeFeedback{AnimeID: 1, Rating: rating(8)}))

	source.err = errors.New("connection refused")
	_, err := c.CommunityFeed(ctx, 10)
	assert.ErrorIs(t, err, errs.ErrUpstream)
}

func TestSummaries(t *testing.T) {
	source := &fakeCatalog{anime: map[int]*models.Anime{
		1: {ID: 1, Title: "Series", Episodes: episodeCount(24)},
	}}
	c, _ := newFeedbackController(t, source, "")
	ctx := context.Background()

	require.NoError(t, c.SubmitAnimeFeedback(ctx, "user-1", &models.AnimeFeedback{AnimeID: 1, Rating: rating(8)}))
	require.NoError(t, c.SubmitAnimeFeedback(ctx, "user-2", &models.AnimeFeedback{AnimeID: 1, Rating: rating(9)}))
	require.NoError(t, c.SubmitAnimeFeedback(ctx, "user-3", &models.AnimeFeedback{AnimeID: 1, Comment: "no rating"}))
	require.NoError(t, c.SubmitEpisodeFeedback(ctx, "user-1", &models.EpisodeFeedback{AnimeID: 1, Episode: 5, Rating: rating(6)}))

	series, err := c.AnimeSummaries([]int{1, 2})
	require.NoError(t, err)
	require.Contains(t, series, 1)
	assert.Equal(t, models.FeedbackSummary{Average: 8.5, Count: 2}, series[1])
	assert.NotContains(t, series, 2)

	episodes, err := c.EpisodeSummaries(1)
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackSummary{Average: 6, Count: 1}, episodes[5])
}
