package grouping

import (
	"strings"

	"github.com/agentcanvas/engine/pkg/models"
)

// Filter keeps the items whose resolved value for every filtered dimension is
// in that dimension's allow-list. An empty or absent allow-list is a no-op
// for its dimension. Items missing a value for a filtered dimension are
// excluded. The input slice is not mutated.
func (e *Engine) Filter(items []models.Item, filters map[string][]string) []models.Item {
	active := make(map[string]map[string]bool)
	for dimID, allowed := range filters {
		if len(allowed) == 0 {
			continue
		}
		set := make(map[string]bool, len(allowed))
		for _, v := range allowed {
			set[v] = true
		}
		active[dimID] = set
	}
	if len(active) == 0 {
		return append([]models.Item(nil), items...)
	}

	var out []models.Item
	for i := range items {
		it := &items[i]
		keep := true
		for dimID, allowed := range active {
			value := e.registry.Dimension(dimID).Resolve(it)
			if value == "" || !allowed[value] {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, *it)
		}
	}
	return out
}

// Search keeps the items whose name, objective, description, or joined tool
// names contain the query, case-insensitively. A blank query returns the
// input elements unchanged.
func Search(items []models.Item, query string) []models.Item {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return append([]models.Item(nil), items...)
	}

	var out []models.Item
	for i := range items {
		it := &items[i]
		haystack := strings.ToLower(strings.Join([]string{
			it.Name,
			it.Objective,
			it.Description,
			strings.Join(it.Tools, " "),
		}, " "))
		if strings.Contains(haystack, query) {
			out = append(out, *it)
		}
	}
	return out
}
