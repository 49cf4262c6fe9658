package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/anirank/anirank/internal/models"
	"github.com/sirupsen/logrus"
)

// jikanImage holds one format's image variants
type jikanImage struct {
	ImageURL      string `json:"image_url"`
	SmallImageURL string `json:"small_image_url"`
	LargeImageURL string `json:"large_image_url"`
}

type jikanImages struct {
	JPG  jikanImage `json:"jpg"`
	WebP jikanImage `json:"webp"`
}

type jikanGenre struct {
	MalID int    `json:"mal_id"`
	Name  string `json:"name"`
}

// jikanAnime is the source's raw payload shape
type jikanAnime struct {
	MalID         int           `json:"mal_id"`
	Title         string        `json:"title"`
	TitleJapanese string        `json:"title_japanese"`
	Synopsis      string        `json:"synopsis"`
	Images        jikanImages   `json:"images"`
	Score         *float64      `json:"score"`
	Episodes      *int          `json:"episodes"`
	Status        string        `json:"status"`
	Season        models.Season `json:"season"`
	Year          int           `json:"year"`
	Genres        []jikanGenre  `json:"genres"`
	URL           string        `json:"url"`
}

// mapAnime normalizes a raw payload into the canonical entity shape
func mapAnime(raw jikanAnime) models.Anime {
	genres := make([]string, 0, len(raw.Genres))
	for _, g := range raw.Genres {
		genres = append(genres, g.Name)
	}

	return models.Anime{
		ID:             raw.MalID,
		Title:          raw.Title,
		AlternateTitle: raw.TitleJapanese,
		Synopsis:       raw.Synopsis,
		ImageURL:       selectImageURL(raw.Images),
		Score:          raw.Score,
		Episodes:       raw.Episodes,
		Status:         raw.Status,
		Season:         raw.Season,
		Year:           raw.Year,
		Genres:         genres,
		URL:            raw.URL,
	}
}

// selectImageURL picks the best available variant by fixed priority
func selectImageURL(images jikanImages) string {
	for _, candidate := range []string{
		images.WebP.LargeImageURL,
		images.JPG.LargeImageURL,
		images.WebP.ImageURL,
		images.JPG.ImageURL,
	} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func (c *Client) mapList(resp *cachedResponse, page int) (*models.AnimeList, error) {
	var raw []jikanAnime
	if err := json.Unmarshal(resp.data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse list payload: %w", err)
	}

	items := make([]models.Anime, 0, len(raw))
	for _, entry := range raw {
		items = append(items, mapAnime(entry))
	}

	list := &models.AnimeList{
		Items:       items,
		CurrentPage: page,
	}
	if resp.pagination != nil {
		list.HasNextPage = resp.pagination.HasNextPage
		if resp.pagination.CurrentPage > 0 {
			list.CurrentPage = resp.pagination.CurrentPage
		}
	}
	return list, nil
}

// AnimeByID fetches one series by its catalog ID
func (c *Client) AnimeByID(ctx context.Context, id int) (*models.Anime, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/anime/%d/full", id))
	if err != nil {
		return nil, err
	}

	var raw jikanAnime
	if err := json.Unmarshal(resp.data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse anime payload: %w", err)
	}

	anime := mapAnime(raw)
	return &anime, nil
}

// Top fetches one page of the ranked catalog listing
func (c *Client) Top(ctx context.Context, limit, page int) (*models.AnimeList, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/top/anime?limit=%d&page=%d", limit, page))
	if err != nil {
		return nil, err
	}
	return c.mapList(resp, page)
}

// Search fetches one page of search results. An empty query is allowed
// and means "no filter".
func (c *Client) Search(ctx context.Context, query string, limit, page int) (*models.AnimeList, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order_by", "score")
	params.Set("sort", "desc")

	resp, err := c.get(ctx, "/anime?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return c.mapList(resp, page)
}

// Seasonal fetches one page of a season's listing. A zero year defaults
// to the current UTC year and an empty season to the current season.
func (c *Client) Seasonal(ctx context.Context, year int, season models.Season, limit, page int) (*models.AnimeList, error) {
	now := c.now().UTC()
	if year == 0 {
		year = now.Year()
	}
	if season == "" {
		season = models.SeasonOf(now)
	}

	resp, err := c.get(ctx, fmt.Sprintf("/seasons/%d/%s?page=%d&limit=%d", year, season, page, limit))
	if err != nil {
		return nil, err
	}
	return c.mapList(resp, page)
}

// jikanEpisode is the raw episode payload shape
type jikanEpisode struct {
	MalID int      `json:"mal_id"`
	Title string   `json:"title"`
	Aired string   `json:"aired"`
	Score *float64 `json:"score"`
}

// EpisodesByAnime fetches the full episode list for one series,
// transparently following the source's pagination. The page cap guards
// against a source that never reports a last page; hitting it logs and
// returns what was collected rather than failing.
func (c *Client) EpisodesByAnime(ctx context.Context, id int) ([]models.Episode, error) {
	var episodes []models.Episode

	for page := 1; ; page++ {
		if page > episodePageCap {
			c.logger.WithFields(logrus.Fields{
				"anime_id": id,
				"pages":    episodePageCap,
			}).Warn("Episode pagination cap reached, returning partial list")
			break
		}

		resp, err := c.get(ctx, fmt.Sprintf("/anime/%d/episodes?page=%d", id, page))
		if err != nil {
			return nil, err
		}

		var raw []jikanEpisode
		if err := json.Unmarshal(resp.data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse episodes payload: %w", err)
		}

		for _, entry := range raw {
			ep := models.Episode{
				Number: entry.MalID,
				Title:  entry.Title,
				Score:  entry.Score,
			}
			if entry.Aired != "" {
				if aired, err := time.Parse(time.RFC3339, entry.Aired); err == nil {
					ep.Aired = aired
				}
			}
			episodes = append(episodes, ep)
		}

		if resp.pagination == nil || !resp.pagination.HasNextPage {
			break
		}
	}

	return episodes, nil
}
