package anilist

import (
	"context"
	"strings"

	"github.com/anirank/anirank/internal/errs"
	"github.com/anirank/anirank/internal/models"
)

const mediaFields = `
	id
	title { romaji english native }
	description
	coverImage { extraLarge large medium }
	averageScore
	episodes
	status
	season
	seasonYear
	genres
	siteUrl`

// media is the source's raw payload shape
type media struct {
	ID    int `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
		Native  string `json:"native"`
	} `json:"title"`
	Description string `json:"description"`
	CoverImage  struct {
		ExtraLarge string `json:"extraLarge"`
		Large      string `json:"large"`
		Medium     string `json:"medium"`
	} `json:"coverImage"`
	AverageScore *float64 `json:"averageScore"` // 0-100 scale
	Episodes     *int     `json:"episodes"`
	Status       string   `json:"status"`
	Season       string   `json:"season"`
	SeasonYear   int      `json:"seasonYear"`
	Genres       []string `json:"genres"`
	SiteURL      string   `json:"siteUrl"`
}

type pageInfo struct {
	CurrentPage int  `json:"currentPage"`
	HasNextPage bool `json:"hasNextPage"`
}

type pageResult struct {
	Page struct {
		PageInfo pageInfo `json:"pageInfo"`
		Media    []media  `json:"media"`
	} `json:"Page"`
}

// mapMedia normalizes a raw payload into the canonical entity shape.
// The source scores on a 0-100 scale and embeds HTML in descriptions;
// both are converted here.
func mapMedia(m media) models.Anime {
	title := m.Title.English
	if title == "" {
		title = m.Title.Romaji
	}
	if title == "" {
		title = m.Title.Native
	}
	if title == "" {
		title = "Untitled"
	}

	var score *float64
	if m.AverageScore != nil {
		scaled := *m.AverageScore / 10
		score = &scaled
	}

	imageURL := m.CoverImage.ExtraLarge
	if imageURL == "" {
		imageURL = m.CoverImage.Large
	}
	if imageURL == "" {
		imageURL = m.CoverImage.Medium
	}

	return models.Anime{
		ID:             m.ID,
		Title:          title,
		AlternateTitle: m.Title.Native,
		Synopsis:       stripHTML(m.Description),
		ImageURL:       imageURL,
		Score:          score,
		Episodes:       m.Episodes,
		Status:         m.Status,
		Season:         models.Season(strings.ToLower(m.Season)),
		Year:           m.SeasonYear,
		Genres:         m.Genres,
		URL:            m.SiteURL,
	}
}

func mapPage(result pageResult, fallbackPage int) *models.AnimeList {
	items := make([]models.Anime, 0, len(result.Page.Media))
	for _, m := range result.Page.Media {
		items = append(items, mapMedia(m))
	}

	page := result.Page.PageInfo.CurrentPage
	if page == 0 {
		page = fallbackPage
	}

	return &models.AnimeList{
		Items:       items,
		HasNextPage: result.Page.PageInfo.HasNextPage,
		CurrentPage: page,
	}
}

// AnimeByID fetches one series by its catalog ID
func (c *Client) AnimeByID(ctx context.Context, id int) (*models.Anime, error) {
	query := `query ($id: Int) {
		Media(id: $id, type: ANIME) {` + mediaFields + `
		}
	}`

	var result struct {
		Media *media `json:"Media"`
	}
	if err := c.query(ctx, query, map[string]interface{}{"id": id}, &result); err != nil {
		return nil, err
	}
	if result.Media == nil {
		return nil, errs.ErrNotFound
	}

	anime := mapMedia(*result.Media)
	return &anime, nil
}

// Top fetches one page of the score-ranked listing
func (c *Client) Top(ctx context.Context, limit, page int) (*models.AnimeList, error) {
	query := `query ($page: Int, $perPage: Int) {
		Page(page: $page, perPage: $perPage) {
			pageInfo { currentPage hasNextPage }
			media(type: ANIME, sort: [SCORE_DESC], status_in: [RELEASING, FINISHED]) {` + mediaFields + `
			}
		}
	}`

	var result pageResult
	err := c.query(ctx, query, map[string]interface{}{"page": page, "perPage": limit}, &result)
	if err != nil {
		return nil, err
	}
	return mapPage(result, page), nil
}

// Search fetches one page of search results
func (c *Client) Search(ctx context.Context, queryText string, limit, page int) (*models.AnimeList, error) {
	query := `query ($search: String, $page: Int, $perPage: Int) {
		Page(page: $page, perPage: $perPage) {
			pageInfo { currentPage hasNextPage }
			media(search: $search, type: ANIME, sort: [SEARCH_MATCH, POPULARITY_DESC]) {` + mediaFields + `
			}
		}
	}`

	var result pageResult
	err := c.query(ctx, query, map[string]interface{}{
		"search":  queryText,
		"page":    page,
		"perPage": limit,
	}, &result)
	if err != nil {
		return nil, err
	}
	return mapPage(result, page), nil
}

// Seasonal fetches one page of a season's listing. Zero values default
// to the current UTC year and season.
func (c *Client) Seasonal(ctx context.Context, year int, season models.Season, limit, page int) (*models.AnimeList, error) {
	now := c.now().UTC()
	if year == 0 {
		year = now.Year()
	}
	if season == "" {
		season = models.SeasonOf(now)
	}

	query := `query ($season: MediaSeason, $seasonYear: Int, $page: Int, $perPage: Int) {
		Page(page: $page, perPage: $perPage) {
			pageInfo { currentPage hasNextPage }
			media(type: ANIME, season: $season, seasonYear: $seasonYear, sort: [POPULARITY_DESC]) {` + mediaFields + `
			}
		}
	}`

	var result pageResult
	err := c.query(ctx, query, map[string]interface{}{
		"season":     strings.ToUpper(string(season)),
		"seasonYear": year,
		"page":       page,
		"perPage":    limit,
	}, &result)
	if err != nil {
		return nil, err
	}
	return mapPage(result, page), nil
}
