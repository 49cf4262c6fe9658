// Package catalog fronts the two remote metadata sources behind one
// injectable gateway. A single Gateway is constructed per process so
// the sources' shared cache and pacing state cover every consumer.
package catalog

import (
	"context"

	"github.com/anirank/anirank/internal/errs"
	"github.com/anirank/anirank/internal/models"
	"github.com/sirupsen/logrus"
)

// Source is the read surface both catalog sources share
type Source interface {
	AnimeByID(ctx context.Context, id int) (*models.Anime, error)
	Top(ctx context.Context, limit, page int) (*models.AnimeList, error)
	Search(ctx context.Context, query string, limit, page int) (*models.AnimeList, error)
	Seasonal(ctx context.Context, year int, season models.Season, limit, page int) (*models.AnimeList, error)
}

// PrimarySource adds the episode listing only the primary source offers
type PrimarySource interface {
	Source
	EpisodesByAnime(ctx context.Context, id int) ([]models.Episode, error)
}

// Gateway routes catalog reads to the primary source and exposes the
// alternate provider for callers that want it.
type Gateway struct {
	primary   PrimarySource
	alternate Source
	logger    *logrus.Logger
}

// NewGateway creates a new catalog gateway
func NewGateway(primary PrimarySource, alternate Source, logger *logrus.Logger) *Gateway {
	return &Gateway{
		primary:   primary,
		alternate: alternate,
		logger:    logger,
	}
}

// AnimeByID fetches one series from the primary source
func (g *Gateway) AnimeByID(ctx context.Context, id int) (*models.Anime, error) {
	return g.primary.AnimeByID(ctx, id)
}

// Top fetches one page of the ranked listing from the primary source
func (g *Gateway) Top(ctx context.Context, limit, page int) (*models.AnimeList, error) {
	return g.primary.Top(ctx, limit, page)
}

// Search fetches one page of search results from the primary source and
// reorders it by title relevance to the query.
func (g *Gateway) Search(ctx context.Context, query string, limit, page int) (*models.AnimeList, error) {
	list, err := g.primary.Search(ctx, query, limit, page)
	if err != nil {
		return nil, err
	}
	list.Items = RankByRelevance(query, list.Items)
	return list, nil
}

// Seasonal fetches one page of a season's listing from the primary source
func (g *Gateway) Seasonal(ctx context.Context, year int, season models.Season, limit, page int) (*models.AnimeList, error) {
	return g.primary.Seasonal(ctx, year, season, limit, page)
}

// Episodes fetches the full episode list for one series
func (g *Gateway) Episodes(ctx context.Context, id int) ([]models.Episode, error) {
	return g.primary.EpisodesByAnime(ctx, id)
}

// AlternateTop fetches the ranked listing from the alternate provider
func (g *Gateway) AlternateTop(ctx context.Context, limit, page int) (*models.AnimeList, error) {
	return g.alternate.Top(ctx, limit, page)
}

// AlternateAnimeByID fetches one series from the alternate provider
func (g *Gateway) AlternateAnimeByID(ctx context.Context, id int) (*models.Anime, error) {
	return g.alternate.AnimeByID(ctx, id)
}

// AlternateSeasonal fetches a season's listing from the alternate provider
func (g *Gateway) AlternateSeasonal(ctx context.Context, year int, season models.Season, limit, page int) (*models.AnimeList, error) {
	return g.alternate.Seasonal(ctx, year, season, limit, page)
}

// AlternateSearch fetches search results from the alternate provider,
// reordered by title relevance like the primary path.
func (g *Gateway) AlternateSearch(ctx context.Context, query string, limit, page int) (*models.AnimeList, error) {
	list, err := g.alternate.Search(ctx, query, limit, page)
	if err != nil {
		return nil, err
	}
	list.Items = RankByRelevance(query, list.Items)
	return list, nil
}

// CheckEpisodeBound verifies an episode number against the series'
// known episode count. The check is advisory: when the catalog lookup
// itself fails the write must proceed, so lookup failures return nil.
func (g *Gateway) CheckEpisodeBound(ctx context.Context, animeID, episode int) error {
	anime, err := g.primary.AnimeByID(ctx, animeID)
	if err != nil {
		g.logger.WithError(err).WithField("anime_id", animeID).
			Warn("Skipping episode bound check, catalog lookup failed")
		return nil
	}

	// nil means ongoing, 0 means unknown; neither can bound anything
	if anime.Episodes != nil && *anime.Episodes > 0 && episode > *anime.Episodes {
		return errs.Validationf("episode %d does not exist, series has %d episodes", episode, *anime.Episodes)
	}
	return nil
}
