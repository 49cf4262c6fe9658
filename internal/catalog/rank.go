package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/anirank/anirank/internal/models"
)

// RankByRelevance sorts search results by:
// 1. Exact title match (case-insensitive)
// 2. Title prefix match
// 3. Edit distance between query and the closest of title/alternate title
// Ties keep the source's order. An empty query returns the input as-is.
func RankByRelevance(query string, items []models.Anime) []models.Anime {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(items) < 2 {
		return items
	}

	sorted := make([]models.Anime, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		exactI, prefixI, distI := relevance(query, sorted[i])
		exactJ, prefixJ, distJ := relevance(query, sorted[j])

		if exactI != exactJ {
			return exactI
		}
		if prefixI != prefixJ {
			return prefixI
		}
		return distI < distJ
	})

	return sorted
}

// relevance scores one entity against the query
func relevance(query string, anime models.Anime) (exact bool, prefix bool, dist int) {
	titles := []string{strings.ToLower(anime.Title)}
	if anime.AlternateTitle != "" {
		titles = append(titles, strings.ToLower(anime.AlternateTitle))
	}

	dist = -1
	for _, title := range titles {
		if title == query {
			exact = true
		}
		if strings.HasPrefix(title, query) {
			prefix = true
		}
		if d := levenshtein.ComputeDistance(query, title); dist < 0 || d < dist {
			dist = d
		}
	}
	return exact, prefix, dist
}
