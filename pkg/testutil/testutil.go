// Package testutil provides rapid generators and fixture builders shared by
// the engine's test suites.
package testutil

import (
	"pgregory.net/rapid"

	"github.com/agentcanvas/engine/pkg/models"
)

var phases = []string{"", "Discovery", "Build", "Launch", "Ops", "Support"}

// ItemGen generates flat items with plausible canvas data: a short name,
// a phase drawn from a small set (possibly empty), bounded order hints, and
// occasionally tags and metrics.
func ItemGen() *rapid.Generator[models.Item] {
	return rapid.Custom(func(t *rapid.T) models.Item {
		it := models.Item{
			Name:       rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ]{0,15}`).Draw(t, "name"),
			Phase:      rapid.SampledFrom(phases).Draw(t, "phase"),
			PhaseOrder: rapid.IntRange(0, 5).Draw(t, "phaseOrder"),
			ItemOrder:  rapid.IntRange(0, 9).Draw(t, "itemOrder"),
		}
		if rapid.Bool().Draw(t, "hasStatus") {
			it.Tags = map[string]string{
				"status": rapid.SampledFrom([]string{"active", "draft", "paused"}).Draw(t, "status"),
			}
		}
		if rapid.Bool().Draw(t, "hasMetrics") {
			it.Metrics = models.Metrics{
				UsageThisWeek:   rapid.StringMatching(`[0-9]{1,3} runs`).Draw(t, "usage"),
				ROIContribution: rapid.SampledFrom(models.ROITiers).Draw(t, "roi"),
			}
		}
		return it
	})
}

// ItemsGen generates a slice of up to max items.
func ItemsGen(max int) *rapid.Generator[[]models.Item] {
	return rapid.SliceOfN(ItemGen(), 0, max)
}

// AgentGen generates document agents with the required name set and optional
// fields in their defaulted forms, matching what the normalizer produces.
func AgentGen() *rapid.Generator[models.DocumentAgent] {
	return rapid.Custom(func(t *rapid.T) models.DocumentAgent {
		a := models.DocumentAgent{
			Name:      rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ]{0,15}`).Draw(t, "name"),
			Objective: rapid.StringMatching(`[a-z ]{0,30}`).Draw(t, "objective"),
		}
		if rapid.Bool().Draw(t, "hasTools") {
			a.Tools = rapid.SliceOfN(
				rapid.SampledFrom([]string{"slack", "jira", "salesforce", "notion"}), 1, 3,
			).Draw(t, "tools")
		}
		a.ApplyDefaults()
		return a
	})
}

// DocumentGen generates normalized documents: uniquely named groups each
// holding a handful of agents, with positional numbers already assigned the
// way the normalizer assigns them.
func DocumentGen() *rapid.Generator[*models.Document] {
	groupNames := []string{"Discovery", "Build", "Launch", "Ops", "Support", "Review"}
	return rapid.Custom(func(t *rapid.T) *models.Document {
		names := rapid.SliceOfNDistinct(
			rapid.SampledFrom(groupNames), 1, len(groupNames), rapid.ID[string],
		).Draw(t, "groupNames")

		doc := &models.Document{
			DocumentTitle:   "Generated Canvas",
			SectionDefaults: models.DefaultSectionDefaults(),
		}
		for gi, name := range names {
			group := models.DocumentGroup{
				GroupName:   name,
				GroupNumber: gi,
			}
			agents := rapid.SliceOfN(AgentGen(), 1, 4).Draw(t, "agents")
			for ai := range agents {
				agents[ai].AgentNumber = ai + 1
			}
			group.Agents = agents
			doc.AgentGroups = append(doc.AgentGroups, group)
		}
		return doc
	})
}
