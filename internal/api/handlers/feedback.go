package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/anirank/anirank/internal/controllers"
	"github.com/anirank/anirank/internal/errs"
	"github.com/anirank/anirank/internal/identity"
	"github.com/anirank/anirank/internal/models"
	"github.com/sirupsen/logrus"
)

// FeedbackHandler serves rating/comment submission and community views
type FeedbackHandler struct {
	ctrl     *controllers.FeedbackController
	sessions identity.Provider
	logger   *logrus.Logger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(ctrl *controllers.FeedbackController, sessions identity.Provider, logger *logrus.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		ctrl:     ctrl,
		sessions: sessions,
		logger:   logger,
	}
}

type feedbackRequest struct {
	AnimeID int      `json:"anime_id"`
	Episode int      `json:"episode,omitempty"`
	Rating  *float64 `json:"rating,omitempty"`
	Comment string   `json:"comment,omitempty"`
}

// SubmitAnime handles POST /api/feedback/anime
func (h *FeedbackHandler) SubmitAnime(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r, h.sessions)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, errs.Validationf("invalid request body: %v", err))
		return
	}

	fb := &models.AnimeFeedback{
		AnimeID: req.AnimeID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := h.ctrl.SubmitAnimeFeedback(r.Context(), userID, fb); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, fb)
}

// SubmitEpisode handles POST /api/feedback/episode
func (h *FeedbackHandler) SubmitEpisode(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r, h.sessions)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, errs.Validationf("invalid request body: %v", err))
		return
	}

	fb := &models.EpisodeFeedback{
		AnimeID: req.AnimeID,
		Episode: req.Episode,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := h.ctrl.SubmitEpisodeFeedback(r.Context(), userID, fb); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, fb)
}

// Recent handles GET /api/feedback/recent, the community feed
func (h *FeedbackHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.ctrl.CommunityFeed(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Summary handles GET /api/feedback/summary?anime_id=N
func (h *FeedbackHandler) Summary(w http.ResponseWriter, r *http.Request) {
	animeID, err := strconv.Atoi(r.URL.Query().Get("anime_id"))
	if err != nil || animeID <= 0 {
		writeError(w, h.logger, errs.Validationf("invalid anime_id %q", r.URL.Query().Get("anime_id")))
		return
	}

	series, err := h.ctrl.AnimeSummaries([]int{animeID})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	episodes, err := h.ctrl.EpisodeSummaries(animeID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response := struct {
		Series   *models.FeedbackSummary        `json:"series,omitempty"`
		Episodes map[int]models.FeedbackSummary `json:"episodes,omitempty"`
	}{Episodes: episodes}
	if summary, ok := series[animeID]; ok {
		response.Series = &summary
	}
	writeJSON(w, http.StatusOK, response)
}
