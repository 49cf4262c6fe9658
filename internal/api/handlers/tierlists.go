package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/anirank/anirank/internal/catalog"
	"github.com/anirank/anirank/internal/controllers"
	"github.com/anirank/anirank/internal/errs"
	"github.com/anirank/anirank/internal/identity"
	"github.com/anirank/anirank/internal/models"
	"github.com/anirank/anirank/internal/tierlist"
	"github.com/sirupsen/logrus"
)

// TierListHandler serves tier list CRUD, sharing and export
type TierListHandler struct {
	ctrl     *controllers.TierListController
	gateway  *catalog.Gateway
	sessions identity.Provider
	logger   *logrus.Logger
}

// NewTierListHandler creates a new tier list handler
func NewTierListHandler(ctrl *controllers.TierListController, gateway *catalog.Gateway, sessions identity.Provider, logger *logrus.Logger) *TierListHandler {
	return &TierListHandler{
		ctrl:     ctrl,
		gateway:  gateway,
		sessions: sessions,
		logger:   logger,
	}
}

// tierListRequest is the write payload for create and update
type tierListRequest struct {
	Title    string                `json:"title"`
	IsPublic bool                  `json:"is_public"`
	Items    []models.TierListItem `json:"items"`
}

// List handles GET /api/tierlists
func (h *TierListHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	lists, err := h.ctrl.List(userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// Create handles POST /api/tierlists
func (h *TierListHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update handles PUT /api/tierlists/{id}
func (h *TierListHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, r.PathValue("id"))
}

func (h *TierListHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req tierListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, errs.Validationf("invalid request body: %v", err))
		return
	}

	saved, err := h.ctrl.Save(userID, &models.TierList{
		ID:       id,
		Title:    req.Title,
		IsPublic: req.IsPublic,
		Items:    req.Items,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

// Get handles GET /api/tierlists/{id}
func (h *TierListHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	list, err := h.ctrl.Get(userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Delete handles DELETE /api/tierlists/{id}
func (h *TierListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.ctrl.Delete(userID, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Share handles POST /api/tierlists/{id}/share
func (h *TierListHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req struct {
		Public bool `json:"public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, errs.Validationf("invalid request body: %v", err))
		return
	}

	list, err := h.ctrl.ToggleShare(userID, r.PathValue("id"), req.Public)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Duplicate handles POST /api/tierlists/{id}/duplicate
func (h *TierListHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	copied, err := h.ctrl.Duplicate(userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, copied)
}

// Shared handles GET /api/shared/{shareID}, the public read-only view
func (h *TierListHandler) Shared(w http.ResponseWriter, r *http.Request) {
	list, err := h.ctrl.GetShared(r.PathValue("shareID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Export handles GET /api/tierlists/{id}/export and streams a PNG
// rendering of the list.
func (h *TierListHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	list, err := h.ctrl.Get(userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	// Resolve titles for the rendered rows; a failed lookup keeps the
	// entry with a bare id placeholder.
	entries := make(map[int]models.Anime, len(list.Items))
	for _, item := range list.Items {
		if _, ok := entries[item.AnimeID]; ok {
			continue
		}
		anime, err := h.gateway.AnimeByID(r.Context(), item.AnimeID)
		if err != nil {
			h.logger.WithError(err).WithField("anime_id", item.AnimeID).
				Warn("Export title lookup failed")
			entries[item.AnimeID] = models.Anime{ID: item.AnimeID}
			continue
		}
		entries[item.AnimeID] = *anime
	}

	editor := tierlist.Load(list.Items, entries)
	w.Header().Set("Content-Type", "image/png")
	if err := editor.RenderPNG(w); err != nil {
		h.logger.WithError(err).Error("Failed to render tier list export")
	}
}

func (h *TierListHandler) requireUser(r *http.Request) (string, error) {
	userID, err := currentUser(r, h.sessions)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", errs.ErrAuthRequired
	}
	return userID, nil
}
