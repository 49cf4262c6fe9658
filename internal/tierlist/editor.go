// Package tierlist holds the in-memory editing state of one tier list:
// the ordered tiers, the unranked pool and a bounded undo history. All
// operations are synchronous and deterministic; persistence and catalog
// access stay with the callers.
package tierlist

import (
	"strings"

	"github.com/anirank/anirank/internal/errs"
	"github.com/anirank/anirank/internal/models"
	"github.com/google/uuid"
)

const maxUndoDepth = 50

// newTierColor is assigned to tiers added after the defaults
const newTierColor = "#a78bfa"

// Tier is one labeled row of the editor with its ranked entries in order
type Tier struct {
	ID    string
	Label string
	Color string
	Items []models.Anime
}

// defaultTiers returns the six starting rows of a fresh list
func defaultTiers() []Tier {
	return []Tier{
		{ID: uuid.NewString(), Label: "S", Color: "var(--color-gold)"},
		{ID: uuid.NewString(), Label: "A", Color: "#f97316"},
		{ID: uuid.NewString(), Label: "B", Color: "#fbbf24"},
		{ID: uuid.NewString(), Label: "C", Color: "#22c55e"},
		{ID: uuid.NewString(), Label: "D", Color: "#38bdf8"},
		{ID: uuid.NewString(), Label: "F", Color: "#a3a3a3"},
	}
}

// snapshot is one undo step: a deep copy of the tiers and the pool
type snapshot struct {
	tiers []Tier
	pool  []models.Anime
}

// Editor is the tier list editing state machine. Every entry lives in
// exactly one place, either a tier or the pool; the mutating operations
// preserve that invariant and record an undo step before each change.
type Editor struct {
	Tiers []Tier
	Pool  []models.Anime

	undo []snapshot
}

// NewEditor creates an editor with the default tiers and an empty pool
func NewEditor() *Editor {
	return &Editor{Tiers: defaultTiers()}
}

// Load rebuilds editor state from a stored tier list. Entries are placed
// into the default tier matching their stored rank label, ordered by
// position; a rank label no default tier carries gets its own new tier.
// Catalog entries not referenced by any stored item land in the pool.
func Load(items []models.TierListItem, entries map[int]models.Anime) *Editor {
	ed := NewEditor()

	placed := make(map[int]bool, len(items))
	for _, item := range items {
		anime, ok := entries[item.AnimeID]
		if !ok || placed[item.AnimeID] {
			continue
		}
		tier := ed.tierByLabel(item.TierRank)
		if tier == nil {
			ed.Tiers = append(ed.Tiers, Tier{
				ID:    uuid.NewString(),
				Label: item.TierRank,
				Color: newTierColor,
			})
			tier = &ed.Tiers[len(ed.Tiers)-1]
		}
		tier.Items = append(tier.Items, anime)
		placed[item.AnimeID] = true
	}

	for id, anime := range entries {
		if !placed[id] {
			ed.Pool = append(ed.Pool, anime)
		}
	}
	return ed
}

// Flatten serializes the current placement for storage. Pool entries are
// not persisted; positions restart at zero per tier.
func (e *Editor) Flatten() []models.TierListItem {
	var items []models.TierListItem
	for _, tier := range e.Tiers {
		for idx, anime := range tier.Items {
			items = append(items, models.TierListItem{
				AnimeID:  anime.ID,
				TierRank: tier.Label,
				Position: idx,
			})
		}
	}
	return items
}

// MoveToPool moves one entry out of its tier into the pool. Moving an
// entry already in the pool is a no-op.
func (e *Editor) MoveToPool(animeID int) {
	for _, anime := range e.Pool {
		if anime.ID == animeID {
			return
		}
	}

	for ti := range e.Tiers {
		for ii, anime := range e.Tiers[ti].Items {
			if anime.ID == animeID {
				e.pushUndo()
				e.Tiers[ti].Items = append(e.Tiers[ti].Items[:ii], e.Tiers[ti].Items[ii+1:]...)
				e.Pool = append(e.Pool, anime)
				return
			}
		}
	}
}

// MoveToTier places one entry into the given tier, before the entry with
// id beforeID or at the end when beforeID is zero or absent. The entry
// may come from the pool or any tier, including the target itself.
func (e *Editor) MoveToTier(animeID int, tierID string, beforeID int) error {
	target := e.tierByID(tierID)
	if target == nil {
		return errs.Validationf("unknown tier %q", tierID)
	}

	anime, ok := e.take(animeID)
	if !ok {
		return errs.Validationf("entry %d is not on this list", animeID)
	}

	e.pushUndo()
	e.remove(animeID)

	pos := len(target.Items)
	if beforeID != 0 {
		for idx, existing := range target.Items {
			if existing.ID == beforeID {
				pos = idx
				break
			}
		}
	}

	target.Items = append(target.Items, models.Anime{})
	copy(target.Items[pos+1:], target.Items[pos:])
	target.Items[pos] = anime
	return nil
}

// AddTier appends a new tier with the given label
func (e *Editor) AddTier(label string) (*Tier, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, errs.Validationf("tier label must not be empty")
	}

	e.pushUndo()
	e.Tiers = append(e.Tiers, Tier{
		ID:    uuid.NewString(),
		Label: label,
		Color: newTierColor,
	})
	return &e.Tiers[len(e.Tiers)-1], nil
}

// RemoveTier deletes a tier and moves its entries to the pool. The last
// remaining tier cannot be removed.
func (e *Editor) RemoveTier(tierID string) error {
	if len(e.Tiers) == 1 {
		return errs.Validationf("cannot remove the last tier")
	}

	for idx := range e.Tiers {
		if e.Tiers[idx].ID != tierID {
			continue
		}
		e.pushUndo()
		orphans := e.Tiers[idx].Items
		e.Tiers = append(e.Tiers[:idx], e.Tiers[idx+1:]...)
		for _, anime := range orphans {
			if !e.inPool(anime.ID) {
				e.Pool = append(e.Pool, anime)
			}
		}
		return nil
	}
	return errs.Validationf("unknown tier %q", tierID)
}

// UpdateTier renames a tier and optionally changes its color
func (e *Editor) UpdateTier(tierID, label, color string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return errs.Validationf("tier label must not be empty")
	}

	tier := e.tierByID(tierID)
	if tier == nil {
		return errs.Validationf("unknown tier %q", tierID)
	}

	e.pushUndo()
	tier.Label = label
	if color != "" {
		tier.Color = color
	}
	return nil
}

// Undo restores the state before the most recent mutation. With no
// history left it does nothing.
func (e *Editor) Undo() {
	if len(e.undo) == 0 {
		return
	}
	last := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.Tiers = last.tiers
	e.Pool = last.pool
}

// pushUndo records a deep copy of the current state, dropping the oldest
// step once the history is full.
func (e *Editor) pushUndo() {
	if len(e.undo) >= maxUndoDepth {
		e.undo = e.undo[1:]
	}
	e.undo = append(e.undo, snapshot{
		tiers: copyTiers(e.Tiers),
		pool:  copyAnime(e.Pool),
	})
}

func copyTiers(tiers []Tier) []Tier {
	out := make([]Tier, len(tiers))
	for i, tier := range tiers {
		out[i] = tier
		out[i].Items = copyAnime(tier.Items)
	}
	return out
}

func copyAnime(items []models.Anime) []models.Anime {
	if items == nil {
		return nil
	}
	out := make([]models.Anime, len(items))
	copy(out, items)
	return out
}

func (e *Editor) tierByID(id string) *Tier {
	for idx := range e.Tiers {
		if e.Tiers[idx].ID == id {
			return &e.Tiers[idx]
		}
	}
	return nil
}

func (e *Editor) tierByLabel(label string) *Tier {
	for idx := range e.Tiers {
		if e.Tiers[idx].Label == label {
			return &e.Tiers[idx]
		}
	}
	return nil
}

func (e *Editor) inPool(animeID int) bool {
	for _, anime := range e.Pool {
		if anime.ID == animeID {
			return true
		}
	}
	return false
}

// take returns the entry with the given id wherever it currently lives
func (e *Editor) take(animeID int) (models.Anime, bool) {
	for _, anime := range e.Pool {
		if anime.ID == animeID {
			return anime, true
		}
	}
	for _, tier := range e.Tiers {
		for _, anime := range tier.Items {
			if anime.ID == animeID {
				return anime, true
			}
		}
	}
	return models.Anime{}, false
}

// remove deletes the entry from whichever slice holds it
func (e *Editor) remove(animeID int) {
	for idx, anime := range e.Pool {
		if anime.ID == animeID {
			e.Pool = append(e.Pool[:idx], e.Pool[idx+1:]...)
			return
		}
	}
	for ti := range e.Tiers {
		for idx, anime := range e.Tiers[ti].Items {
			if anime.ID == animeID {
				e.Tiers[ti].Items = append(e.Tiers[ti].Items[:idx], e.Tiers[ti].Items[idx+1:]...)
				return
			}
		}
	}
}
