package models

import "time"

// TierListItem is one placed entity inside a saved tier list. TierRank
// is the label of the tier the anime sits in; Position is its index
// within that tier.
type TierListItem struct {
	AnimeID  int    `json:"anime_id"`
	TierRank string `json:"tier_rank"`
	Position int    `json:"position"`
}

// TierList is the persisted aggregate for one user's ranking.
//
// Invariant: IsPublic == true implies ShareID != "". The reverse does
// not hold; disabling public access may retain the token.
type TierList struct {
	ID       string `boltholdKey:"ID" json:"id"`
	UserID   string `boltholdIndex:"UserID" json:"user_id"`
	Title    string `json:"title"`
	IsPublic bool   `json:"is_public"`

	// ShareID is a random URL-safe 16-character token, or "" when the
	// list has never been shared.
	ShareID string `boltholdIndex:"ShareID" json:"share_id,omitempty"`

	Items []TierListItem `json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
