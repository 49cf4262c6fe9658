package models

import "time"

// Season is one of the four anime broadcast seasons.
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
)

// SeasonOf maps a point in time (UTC) to its broadcast season:
// Dec-Feb winter, Mar-May spring, Jun-Aug summer, Sep-Nov fall.
func SeasonOf(t time.Time) Season {
	switch t.UTC().Month() {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonFall
	}
}

// Anime is the normalized representation of one catalog entity,
// regardless of which source produced it. Constructed once per API
// response mapping and never mutated afterwards.
type Anime struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	AlternateTitle string   `json:"alternate_title,omitempty"`
	Synopsis       string   `json:"synopsis,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	Score          *float64 `json:"score,omitempty"` // 0.0-10.0, nil when the source has none

	// Episodes is nil for ongoing/unbounded series and 0 when the
	// source does not know the count.
	Episodes *int `json:"episodes"`

	Status string   `json:"status,omitempty"`
	Season Season   `json:"season,omitempty"`
	Year   int      `json:"year,omitempty"`
	Genres []string `json:"genres,omitempty"`
	URL    string   `json:"url,omitempty"`
}

// Episode is one episode of a series.
type Episode struct {
	Number int       `json:"number"`
	Title  string    `json:"title"`
	Aired  time.Time `json:"aired,omitempty"`
	Score  *float64  `json:"score,omitempty"`
}

// AnimeList is one page of a ranked or filtered listing. HasNextPage
// reflects the source's own pagination signal, never page fullness.
type AnimeList struct {
	Items       []Anime `json:"items"`
	HasNextPage bool    `json:"has_next_page"`
	CurrentPage int     `json:"current_page"`
}
