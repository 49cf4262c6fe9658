package models

import "time"

// AnimeFeedback is one user's rating and/or comment on a series.
type AnimeFeedback struct {
	ID      uint64 `boltholdKey:"ID" json:"id"`
	UserID  string `json:"user_id"`
	AnimeID int    `boltholdIndex:"AnimeID" json:"anime_id"`

	Rating  *float64 `json:"rating,omitempty"` // 0.0-10.0
	Comment string   `json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// EpisodeFeedback is one user's rating and/or comment on a single
// episode. Episode numbers are constrained to [1, 9999] by the store.
type EpisodeFeedback struct {
	ID      uint64 `boltholdKey:"ID" json:"id"`
	UserID  string `json:"user_id"`
	AnimeID int    `boltholdIndex:"AnimeID" json:"anime_id"`
	Episode int    `json:"episode"`

	Rating  *float64 `json:"rating,omitempty"`
	Comment string   `json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// FeedbackSummary aggregates ratings for one series or episode.
// Rows without a rating count toward neither field.
type FeedbackSummary struct {
	Average float64 `json:"avg"`
	Count   int     `json:"count"`
}

// FeedbackKind distinguishes the two feedback aggregates in merged views.
type FeedbackKind string

const (
	FeedbackKindAnime   FeedbackKind = "anime"
	FeedbackKindEpisode FeedbackKind = "episode"
)

// FeedbackEntry is one row of the merged community feed.
type FeedbackEntry struct {
	Kind      FeedbackKind `json:"type"`
	UserID    string       `json:"user_id"`
	AnimeID   int          `json:"anime_id"`
	Episode   int          `json:"episode,omitempty"` // 0 for series-level feedback
	Rating    *float64     `json:"rating,omitempty"`
	Comment   string       `json:"comment,omitempty"`
	CreatedAt time.Time    `json:"created_at"`

	// AnimeTitle is filled by best-effort catalog enrichment and may be
	// empty when the lookup failed.
	AnimeTitle string `json:"anime_title,omitempty"`
}
