// Package grouping partitions a flat item collection into ordered groups
// keyed by a tag dimension, and applies composable filters and text search.
// Every operation is a pure transformation: input slices are never mutated,
// and identical input always yields identical output.
package grouping

import (
	"sort"

	"github.com/agentcanvas/engine/pkg/display"
	"github.com/agentcanvas/engine/pkg/models"
	"github.com/agentcanvas/engine/pkg/slug"
)

// DefaultPalette is the fixed color cycle assigned to groups of the default
// dimension by creation order.
var DefaultPalette = []string{
	"#4F46E5", "#0EA5E9", "#10B981", "#F59E0B",
	"#EF4444", "#8B5CF6", "#EC4899", "#14B8A6",
}

// Engine derives grouped views of item collections. It is stateless apart
// from its registry and palette and is safe to share.
type Engine struct {
	registry *display.Registry
	palette  []string
	icon     string // icon for default-dimension groups
}

// NewEngine returns an engine over the given registry. A nil or empty palette
// falls back to DefaultPalette.
func NewEngine(registry *display.Registry, palette []string, sectionIcon string) *Engine {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if sectionIcon == "" {
		sectionIcon = models.DefaultSectionDefaults().Icon
	}
	return &Engine{registry: registry, palette: palette, icon: sectionIcon}
}

// GroupBy partitions items into ordered groups keyed by the named dimension.
// Soft-deleted items are skipped. The first occurrence of a value creates its
// group; for the default dimension the group's color cycles the palette by
// creation order and its order comes from the item's own order hint (else the
// creation index), while for any other dimension presentation comes from the
// display registry and order from the dimension's vocabulary rank. Groups are
// sorted by order with ties broken by creation, items within a group by their
// item order.
func (e *Engine) GroupBy(items []models.Item, dimensionID string) []models.Group {
	dim := e.registry.Dimension(dimensionID)
	if dim == nil {
		dim = e.registry.DefaultDimension()
	}

	ids := slug.NewAllocator()
	index := make(map[string]int)
	var groups []models.Group

	for i := range items {
		it := &items[i]
		if it.Deleted() {
			continue
		}
		value := dim.Value(it)

		gi, ok := index[value]
		if !ok {
			gi = len(groups)
			index[value] = gi
			groups = append(groups, e.newGroup(dim, value, it, gi, ids))
		}
		groups[gi].Items = append(groups[gi].Items, *it)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Order < groups[b].Order
	})
	for gi := range groups {
		g := &groups[gi]
		sort.SliceStable(g.Items, func(a, b int) bool {
			return g.Items[a].ItemOrder < g.Items[b].ItemOrder
		})
		g.ItemCount = len(g.Items)
	}
	return groups
}

func (e *Engine) newGroup(dim *display.Dimension, value string, first *models.Item, creationIndex int, ids *slug.Allocator) models.Group {
	g := models.Group{
		ID:    ids.Claim("", value, creationIndex),
		Label: value,
	}
	if dim.Default {
		g.Color = e.palette[creationIndex%len(e.palette)]
		g.Icon = e.icon
		// Zero means the item carries no order hint; contiguous zero-based
		// numbering makes the two sources coincide for the first group.
		if first.PhaseOrder != 0 {
			g.Order = first.PhaseOrder
		} else {
			g.Order = creationIndex
		}
	} else {
		meta := e.registry.ForValue(dim.ID, value)
		g.Label = meta.Label
		g.Color = meta.Color
		g.Icon = meta.Icon
		g.Order = dim.Rank(value)
	}
	return g
}
