package document

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/agentcanvas/engine/pkg/models"
	"github.com/agentcanvas/engine/pkg/slug"
)

// ToFlatRecords converts a normalized document into the flat record model:
// each agent becomes an item stamped with its group's name as phase, the
// group's number as phase order, and its position within the group as item
// order. Group ids and phase tags are not carried onto items; export
// re-derives them from the group names.
func ToFlatRecords(doc *models.Document, canvasID string) []models.Item {
	var items []models.Item
	for _, group := range doc.AgentGroups {
		for pos, agent := range group.Agents {
			items = append(items, models.Item{
				CanvasID:     canvasID,
				Name:         agent.Name,
				Objective:    agent.Objective,
				Description:  agent.Description,
				Tools:        append([]string{}, agent.Tools...),
				JourneySteps: append([]string{}, agent.JourneySteps...),
				DemoLink:     agent.DemoLink,
				VideoLink:    agent.VideoLink,
				Metrics:      agent.Metrics,
				Phase:        group.GroupName,
				PhaseOrder:   group.GroupNumber,
				ItemOrder:    pos,
			})
		}
	}
	return items
}

// FromFlatRecords regenerates a legacy document from flat records. The
// result is lossy relative to an original hand-authored document (cosmetic
// fields not represented in flat records are dropped); when an original
// serialized form is retained it must be preferred and this used only as the
// fallback. Soft-deleted items are skipped.
func FromFlatRecords(title string, items []models.Item, defaults models.SectionDefaults, toolsConfig map[string]models.DisplayMeta) *models.Document {
	doc := &models.Document{
		DocumentTitle:   title,
		SectionDefaults: defaults,
		ToolsConfig:     toolsConfig,
	}

	// Sort a copy by phase order then item order so groups come out in
	// canvas order and agents in position order.
	sorted := append([]models.Item(nil), items...)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].PhaseOrder != sorted[b].PhaseOrder {
			return sorted[a].PhaseOrder < sorted[b].PhaseOrder
		}
		if sorted[a].Phase != sorted[b].Phase {
			return false
		}
		return sorted[a].ItemOrder < sorted[b].ItemOrder
	})

	index := make(map[string]int)
	for i := range sorted {
		it := &sorted[i]
		if it.Deleted() {
			continue
		}
		phase := it.Phase
		if phase == "" {
			phase = "Uncategorized"
		}
		gi, ok := index[phase]
		if !ok {
			gi = len(doc.AgentGroups)
			index[phase] = gi
			doc.AgentGroups = append(doc.AgentGroups, models.DocumentGroup{
				GroupName:   phase,
				GroupNumber: it.PhaseOrder,
			})
		}
		g := &doc.AgentGroups[gi]
		g.Agents = append(g.Agents, models.DocumentAgent{
			Name:         it.Name,
			Objective:    it.Objective,
			Description:  it.Description,
			Tools:        append([]string{}, it.Tools...),
			JourneySteps: append([]string{}, it.JourneySteps...),
			DemoLink:     it.DemoLink,
			VideoLink:    it.VideoLink,
			Metrics:      it.Metrics,
		})
	}

	ids := slug.NewAllocator()
	for gi := range doc.AgentGroups {
		g := &doc.AgentGroups[gi]
		g.GroupID = ids.Claim("", g.GroupName, gi)
		for ai := range g.Agents {
			g.Agents[ai].AgentNumber = ai + 1
			g.Agents[ai].ApplyDefaults()
		}
	}
	return doc
}

// Marshal serializes a document back to its YAML wire form.
func Marshal(doc *models.Document) ([]byte, error) {
	return yaml.Marshal(doc)
}
