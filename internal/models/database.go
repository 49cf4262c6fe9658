package models

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/anirank/anirank/internal/errs"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Tier list operations

// SaveTierList creates or fully replaces a tier list. Every save
// replaces the complete item set and bumps UpdatedAt; there is no
// incremental diffing.
func (db *Database) SaveTierList(list *TierList) error {
	now := time.Now()
	if list.CreatedAt.IsZero() {
		list.CreatedAt = now
	}
	list.UpdatedAt = now

	if err := db.store.Upsert(list.ID, list); err != nil {
		return errs.Persistence(err)
	}
	return nil
}

// GetTierList retrieves a tier list by ID
func (db *Database) GetTierList(id string) (*TierList, error) {
	var list TierList
	err := db.store.Get(id, &list)
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.Persistence(err)
	}
	return &list, nil
}

// GetTierListByShareID retrieves a public tier list by its share token.
// Private lists are never returned through this path, even when the
// token is known.
func (db *Database) GetTierListByShareID(shareID string) (*TierList, error) {
	if shareID == "" {
		return nil, errs.ErrNotFound
	}

	var list TierList
	err := db.store.FindOne(&list, bolthold.Where("ShareID").Eq(shareID).And("IsPublic").Eq(true))
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.Persistence(err)
	}
	return &list, nil
}

// GetUserTierLists retrieves all tier lists owned by a user, newest first
func (db *Database) GetUserTierLists(userID string) ([]*TierList, error) {
	var lists []*TierList
	err := db.store.Find(&lists, bolthold.Where("UserID").Eq(userID))
	if err != nil {
		return nil, errs.Persistence(err)
	}

	sort.Slice(lists, func(i, j int) bool {
		return lists[i].UpdatedAt.After(lists[j].UpdatedAt)
	})
	return lists, nil
}

// AllTierLists retrieves every stored tier list
func (db *Database) AllTierLists() ([]*TierList, error) {
	var lists []*TierList
	err := db.store.Find(&lists, nil)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return lists, nil
}

// DeleteTierList deletes a tier list by ID
func (db *Database) DeleteTierList(id string) error {
	err := db.store.Delete(id, &TierList{})
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return errs.ErrNotFound
		}
		return errs.Persistence(err)
	}
	return nil
}

// Feedback operations

const maxEpisodeNumber = 9999

func validateRating(rating *float64) error {
	if rating == nil {
		return nil
	}
	if *rating < 0 || *rating > 10 {
		return errs.Validationf("rating %.1f out of range [0, 10]", *rating)
	}
	return nil
}

// CreateAnimeFeedback inserts a series-level rating/comment row
func (db *Database) CreateAnimeFeedback(fb *AnimeFeedback) error {
	if err := validateRating(fb.Rating); err != nil {
		return err
	}

	fb.CreatedAt = time.Now()
	if err := db.store.Insert(bolthold.NextSequence(), fb); err != nil {
		return errs.Persistence(err)
	}
	return nil
}

// CreateEpisodeFeedback inserts an episode-level rating/comment row.
// Episode numbers outside [1, 9999] are rejected with ErrValidation,
// mirroring the schema constraint.
func (db *Database) CreateEpisodeFeedback(fb *EpisodeFeedback) error {
	if fb.Episode < 1 || fb.Episode > maxEpisodeNumber {
		return errs.Validationf("episode %d out of range [1, %d]", fb.Episode, maxEpisodeNumber)
	}
	if err := validateRating(fb.Rating); err != nil {
		return err
	}

	fb.CreatedAt = time.Now()
	if err := db.store.Insert(bolthold.NextSequence(), fb); err != nil {
		return errs.Persistence(err)
	}
	return nil
}

// AnimeFeedbackSummary aggregates ratings per series for the given IDs.
// IDs with no rated rows are absent from the result.
func (db *Database) AnimeFeedbackSummary(animeIDs []int) (map[int]FeedbackSummary, error) {
	if len(animeIDs) == 0 {
		return map[int]FeedbackSummary{}, nil
	}

	ids := make([]interface{}, len(animeIDs))
	for i, id := range animeIDs {
		ids[i] = id
	}

	var rows []*AnimeFeedback
	err := db.store.Find(&rows, bolthold.Where("AnimeID").In(ids...))
	if err != nil {
		return nil, errs.Persistence(err)
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, row := range rows {
		if row.Rating == nil {
			continue
		}
		sums[row.AnimeID] += *row.Rating
		counts[row.AnimeID]++
	}

	summary := make(map[int]FeedbackSummary, len(counts))
	for id, count := range counts {
		summary[id] = FeedbackSummary{
			Average: roundTenth(sums[id] / float64(count)),
			Count:   count,
		}
	}
	return summary, nil
}

// EpisodeFeedbackSummary aggregates ratings per episode for one series
func (db *Database) EpisodeFeedbackSummary(animeID int) (map[int]FeedbackSummary, error) {
	var rows []*EpisodeFeedback
	err := db.store.Find(&rows, bolthold.Where("AnimeID").Eq(animeID))
	if err != nil {
		return nil, errs.Persistence(err)
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, row := range rows {
		if row.Rating == nil {
			continue
		}
		sums[row.Episode] += *row.Rating
		counts[row.Episode]++
	}

	summary := make(map[int]FeedbackSummary, len(counts))
	for ep, count := range counts {
		summary[ep] = FeedbackSummary{
			Average: roundTenth(sums[ep] / float64(count)),
			Count:   count,
		}
	}
	return summary, nil
}

// RecentFeedback merges the two feedback aggregates into one feed,
// newest first, capped at limit entries.
func (db *Database) RecentFeedback(limit int) ([]FeedbackEntry, error) {
	var animeRows []*AnimeFeedback
	if err := db.store.Find(&animeRows, nil); err != nil {
		return nil, errs.Persistence(err)
	}

	var episodeRows []*EpisodeFeedback
	if err := db.store.Find(&episodeRows, nil); err != nil {
		return nil, errs.Persistence(err)
	}

	entries := make([]FeedbackEntry, 0, len(animeRows)+len(episodeRows))
	for _, row := range animeRows {
		entries = append(entries, FeedbackEntry{
			Kind:      FeedbackKindAnime,
			UserID:    row.UserID,
			AnimeID:   row.AnimeID,
			Rating:    row.Rating,
			Comment:   row.Comment,
			CreatedAt: row.CreatedAt,
		})
	}
	for _, row := range episodeRows {
		entries = append(entries, FeedbackEntry{
			Kind:      FeedbackKindEpisode,
			UserID:    row.UserID,
			AnimeID:   row.AnimeID,
			Episode:   row.Episode,
			Rating:    row.Rating,
			Comment:   row.Comment,
			CreatedAt: row.CreatedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
