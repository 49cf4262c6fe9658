package controllers

import (
	"context"
	"fmt"

	"github.com/anirank/anirank/internal/catalog"
	"github.com/anirank/anirank/internal/errs"
	"github.com/anirank/anirank/internal/models"
	"github.com/anirank/anirank/internal/utils"
	"github.com/sirupsen/logrus"
)

const communityFeedLimit = 50

// FeedbackController handles rating and comment submission
type FeedbackController struct {
	db        *models.Database
	gateway   *catalog.Gateway
	blocklist *utils.Blocklist
	logger    *logrus.Logger
}

// NewFeedbackController creates a new feedback controller
func NewFeedbackController(db *models.Database, gateway *catalog.Gateway, blocklist *utils.Blocklist, logger *logrus.Logger) *FeedbackController {
	return &FeedbackController{
		db:        db,
		gateway:   gateway,
		blocklist: blocklist,
		logger:    logger,
	}
}

// SubmitAnimeFeedback stores a series-level rating/comment for the user
func (c *FeedbackController) SubmitAnimeFeedback(ctx context.Context, userID string, fb *models.AnimeFeedback) error {
	if userID == "" {
		return errs.ErrAuthRequired
	}
	if err := c.checkComment(fb.Comment); err != nil {
		return err
	}

	fb.UserID = userID
	if err := c.db.CreateAnimeFeedback(fb); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"anime_id": fb.AnimeID,
	}).Info("Stored anime feedback")
	return nil
}

// SubmitEpisodeFeedback stores an episode-level rating/comment. The
// episode number is checked against the catalog's known episode count
// before anything is written; an unreachable catalog does not block the
// submission.
func (c *FeedbackController) SubmitEpisodeFeedback(ctx context.Context, userID string, fb *models.EpisodeFeedback) error {
	if userID == "" {
		return errs.ErrAuthRequired
	}
	if err := c.checkComment(fb.Comment); err != nil {
		return err
	}
	if err := c.gateway.CheckEpisodeBound(ctx, fb.AnimeID, fb.Episode); err != nil {
		return err
	}

	fb.UserID = userID
	if err := c.db.CreateEpisodeFeedback(fb); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"anime_id": fb.AnimeID,
		"episode":  fb.Episode,
	}).Info("Stored episode feedback")
	return nil
}

// AnimeSummaries aggregates ratings for the given series ids
func (c *FeedbackController) AnimeSummaries(animeIDs []int) (map[int]models.FeedbackSummary, error) {
	return c.db.AnimeFeedbackSummary(animeIDs)
}

// EpisodeSummaries aggregates per-episode ratings for one series
func (c *FeedbackController) EpisodeSummaries(animeID int) (map[int]models.FeedbackSummary, error) {
	return c.db.EpisodeFeedbackSummary(animeID)
}

// CommunityFeed returns the most recent feedback entries with series
// titles attached. Enrichment is best effort: an entry whose title
// lookup fails is returned without a title rather than dropped.
func (c *FeedbackController) CommunityFeed(ctx context.Context, limit int) ([]models.FeedbackEntry, error) {
	if limit <= 0 || limit > communityFeedLimit {
		limit = communityFeedLimit
	}

	entries, err := c.db.RecentFeedback(limit)
	if err != nil {
		return nil, err
	}

	titles := make(map[int]string)
	failures := 0
	for i := range entries {
		id := entries[i].AnimeID
		title, ok := titles[id]
		if !ok {
			anime, err := c.gateway.AnimeByID(ctx, id)
			if err != nil {
				c.logger.WithError(err).WithField("anime_id", id).
					Debug("Skipping title enrichment for feed entry")
				titles[id] = ""
				failures++
				continue
			}
			title = anime.Title
			titles[id] = title
		}
		entries[i].AnimeTitle = title
	}

	// Individual lookup failures are tolerable; every lookup failing
	// means the catalog is down and the feed would be useless.
	if len(entries) > 0 && failures == len(titles) {
		return nil, fmt.Errorf("feed enrichment failed for all %d series: %w", failures, errs.ErrUpstream)
	}
	return entries, nil
}

func (c *FeedbackController) checkComment(comment string) error {
	if blocked, term := c.blocklist.IsBlocked(comment); blocked {
		c.logger.WithField("term", term).Warn("Rejected comment containing blocked term")
		return errs.Validationf("comment contains a blocked term")
	}
	return nil
}
