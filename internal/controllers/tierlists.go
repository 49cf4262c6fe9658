package controllers

import (
	"errors"

	"github.com/anirank/anirank/internal/errs"
	"github.com/anirank/anirank/internal/models"
	"github.com/anirank/anirank/internal/tierlist"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TierListController handles tier list persistence and sharing
type TierListController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewTierListController creates a new tier list controller
func NewTierListController(db *models.Database, logger *logrus.Logger) *TierListController {
	return &TierListController{
		db:     db,
		logger: logger,
	}
}

// Save stores a tier list for the user, replacing the full item set.
// Anonymous saves fail with ErrAuthRequired before touching the store.
func (c *TierListController) Save(userID string, list *models.TierList) (*models.TierList, error) {
	if userID == "" {
		return nil, errs.ErrAuthRequired
	}

	if list.ID == "" {
		list.ID = uuid.NewString()
	} else {
		existing, err := c.db.GetTierList(list.ID)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			if existing.UserID != userID {
				return nil, errs.ErrNotFound
			}
			list.CreatedAt = existing.CreatedAt
			list.IsPublic = existing.IsPublic
			list.ShareID = existing.ShareID
		}
	}
	list.UserID = userID

	// A public list must always carry a share token
	if list.IsPublic && list.ShareID == "" {
		list.ShareID = tierlist.NewShareID()
		c.logger.WithField("list_id", list.ID).Warn("Public list had no share token, generated one")
	}

	if err := c.db.SaveTierList(list); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"list_id": list.ID,
		"user_id": userID,
		"items":   len(list.Items),
	}).Info("Saved tier list")
	return list, nil
}

// Get retrieves one of the user's own tier lists
func (c *TierListController) Get(userID, id string) (*models.TierList, error) {
	if userID == "" {
		return nil, errs.ErrAuthRequired
	}

	list, err := c.db.GetTierList(id)
	if err != nil {
		return nil, err
	}
	if list.UserID != userID {
		// Don't reveal that the list exists
		return nil, errs.ErrNotFound
	}
	return list, nil
}

// GetShared retrieves a public tier list by its share token
func (c *TierListController) GetShared(shareID string) (*models.TierList, error) {
	return c.db.GetTierListByShareID(shareID)
}

// List retrieves the user's tier lists, newest first
func (c *TierListController) List(userID string) ([]*models.TierList, error) {
	if userID == "" {
		return nil, errs.ErrAuthRequired
	}
	return c.db.GetUserTierLists(userID)
}

// Delete removes one of the user's own tier lists
func (c *TierListController) Delete(userID, id string) error {
	if _, err := c.Get(userID, id); err != nil {
		return err
	}
	return c.db.DeleteTierList(id)
}

// Duplicate copies one of the user's lists into a fresh private list
func (c *TierListController) Duplicate(userID, id string) (*models.TierList, error) {
	source, err := c.Get(userID, id)
	if err != nil {
		return nil, err
	}

	copied := &models.TierList{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  source.Title + " (copy)",
		Items:  append([]models.TierListItem(nil), source.Items...),
	}
	if err := c.db.SaveTierList(copied); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"source_id": id,
		"copy_id":   copied.ID,
	}).Info("Duplicated tier list")
	return copied, nil
}

// ToggleShare flips public visibility. Enabling mints a share token when
// the list never had one; disabling keeps the token so re-enabling
// restores the same share URL.
func (c *TierListController) ToggleShare(userID, id string, public bool) (*models.TierList, error) {
	list, err := c.Get(userID, id)
	if err != nil {
		return nil, err
	}

	list.IsPublic = public
	if public && list.ShareID == "" {
		list.ShareID = tierlist.NewShareID()
	}

	if err := c.db.SaveTierList(list); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"list_id": id,
		"public":  public,
	}).Info("Toggled tier list sharing")
	return list, nil
}
