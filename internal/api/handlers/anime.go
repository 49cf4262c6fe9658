package handlers

import (
	"net/http"
	"strconv"

	"github.com/anirank/anirank/internal/catalog"
	"github.com/anirank/anirank/internal/controllers"
	"github.com/anirank/anirank/internal/errs"
	"github.com/anirank/anirank/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 25
	maxPageSize     = 50
)

// AnimeHandler serves catalog browse, search and detail requests
type AnimeHandler struct {
	gateway  *catalog.Gateway
	feedback *controllers.FeedbackController
	logger   *logrus.Logger
}

// NewAnimeHandler creates a new anime handler
func NewAnimeHandler(gateway *catalog.Gateway, feedback *controllers.FeedbackController, logger *logrus.Logger) *AnimeHandler {
	return &AnimeHandler{
		gateway:  gateway,
		feedback: feedback,
		logger:   logger,
	}
}

// animeDetail is the detail payload: catalog data plus the community's
// aggregated rating, when anyone has rated the series.
type animeDetail struct {
	*models.Anime
	Community *models.FeedbackSummary `json:"community,omitempty"`
}

// Top handles GET /api/anime/top. source=alt serves the listing from
// the alternate provider instead of the primary one.
func (h *AnimeHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, page := pageParams(r)

	fetch := h.gateway.Top
	if useAlternate(r) {
		fetch = h.gateway.AlternateTop
	}

	list, err := fetch(r.Context(), limit, page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Seasonal handles GET /api/anime/seasonal. Year and season default to
// the current ones when absent.
func (h *AnimeHandler) Seasonal(w http.ResponseWriter, r *http.Request) {
	limit, page := pageParams(r)
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	season := models.Season(r.URL.Query().Get("season"))

	fetch := h.gateway.Seasonal
	if useAlternate(r) {
		fetch = h.gateway.AlternateSeasonal
	}

	list, err := fetch(r.Context(), year, season, limit, page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Search handles GET /api/anime/search
func (h *AnimeHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, page := pageParams(r)

	fetch := h.gateway.Search
	if useAlternate(r) {
		fetch = h.gateway.AlternateSearch
	}

	list, err := fetch(r.Context(), r.URL.Query().Get("q"), limit, page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ByID handles GET /api/anime/{id}
func (h *AnimeHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id, err := animeID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	lookup := h.gateway.AnimeByID
	if useAlternate(r) {
		lookup = h.gateway.AlternateAnimeByID
	}

	anime, err := lookup(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	detail := animeDetail{Anime: anime}
	summaries, err := h.feedback.AnimeSummaries([]int{id})
	if err != nil {
		// Community data is a garnish, the detail page works without it
		h.logger.WithError(err).WithField("anime_id", id).Warn("Failed to load feedback summary")
	} else if summary, ok := summaries[id]; ok {
		detail.Community = &summary
	}
	writeJSON(w, http.StatusOK, detail)
}

// episodeListing pairs the catalog's episode list with per-episode
// community ratings keyed by episode number.
type episodeListing struct {
	Episodes  []models.Episode               `json:"episodes"`
	Community map[int]models.FeedbackSummary `json:"community,omitempty"`
}

// Episodes handles GET /api/anime/{id}/episodes
func (h *AnimeHandler) Episodes(w http.ResponseWriter, r *http.Request) {
	id, err := animeID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	episodes, err := h.gateway.Episodes(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	listing := episodeListing{Episodes: episodes}
	summaries, err := h.feedback.EpisodeSummaries(id)
	if err != nil {
		h.logger.WithError(err).WithField("anime_id", id).Warn("Failed to load episode summaries")
	} else if len(summaries) > 0 {
		listing.Community = summaries
	}
	writeJSON(w, http.StatusOK, listing)
}

func useAlternate(r *http.Request) bool {
	return r.URL.Query().Get("source") == "alt"
}

func animeID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, errs.Validationf("invalid anime id %q", r.PathValue("id"))
	}
	return id, nil
}

func pageParams(r *http.Request) (limit, page int) {
	q := r.URL.Query()

	limit, _ = strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	page, _ = strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	return limit, page
}
