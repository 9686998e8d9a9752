// Package display maps raw attribute values (tool names, tag values, metric
// tiers) to presentation metadata. Lookups are pure and never fail: unknown
// values resolve to a neutral fallback.
package display

import (
	"strings"

	"github.com/agentcanvas/engine/pkg/models"
)

// Fallback presentation for values absent from every registry.
const (
	NeutralColor = "#9CA3AF"
	GenericIcon  = "tag"
)

// Built-in tool presentation. Callers can extend or override these through
// Registry.SetTool, typically from a document's toolsConfig.
var builtinTools = map[string]models.DisplayMeta{
	"slack":          {Label: "Slack", Color: "#611F69", Icon: "message-square"},
	"github":         {Label: "GitHub", Color: "#24292F", Icon: "git-branch"},
	"jira":           {Label: "Jira", Color: "#0052CC", Icon: "kanban"},
	"notion":         {Label: "Notion", Color: "#191919", Icon: "file-text"},
	"salesforce":     {Label: "Salesforce", Color: "#00A1E0", Icon: "cloud"},
	"zendesk":        {Label: "Zendesk", Color: "#03363D", Icon: "headphones"},
	"confluence":     {Label: "Confluence", Color: "#1868DB", Icon: "book-open"},
	"google-sheets":  {Label: "Google Sheets", Color: "#188038", Icon: "table"},
	"power-bi":       {Label: "Power BI", Color: "#F2C811", Icon: "bar-chart"},
	"workday":        {Label: "Workday", Color: "#0875E1", Icon: "briefcase"},
	"servicenow":     {Label: "ServiceNow", Color: "#62D84E", Icon: "settings"},
	"ms-teams":       {Label: "Microsoft Teams", Color: "#6264A7", Icon: "users"},
	"outlook":        {Label: "Outlook", Color: "#0F6CBD", Icon: "mail"},
	"figma":          {Label: "Figma", Color: "#A259FF", Icon: "pen-tool"},
	"custom-scripts": {Label: "Custom Scripts", Color: "#475569", Icon: "terminal"},
}

// Per-dimension value presentation for the built-in tag dimensions.
var builtinValues = map[string]map[string]models.DisplayMeta{
	"status": {
		"active":   {Label: "Active", Color: "#10B981", Icon: "play-circle"},
		"draft":    {Label: "Draft", Color: "#F59E0B", Icon: "edit-3"},
		"paused":   {Label: "Paused", Color: "#6B7280", Icon: "pause-circle"},
		"retired":  {Label: "Retired", Color: "#9CA3AF", Icon: "archive"},
		"proposed": {Label: "Proposed", Color: "#8B5CF6", Icon: "lightbulb"},
	},
	"roiTier": {
		models.ROIVeryHigh: {Label: "Very High", Color: "#059669", Icon: "trending-up"},
		models.ROIHigh:     {Label: "High", Color: "#10B981", Icon: "trending-up"},
		models.ROIMedium:   {Label: "Medium", Color: "#F59E0B", Icon: "minus"},
		models.ROILow:      {Label: "Low", Color: "#9CA3AF", Icon: "trending-down"},
	},
}

// NormalizeToolKey canonicalizes a tool name for lookup: lowercase, spaces to
// hyphens. Arbitrary tag dimension values are matched exactly and do not go
// through this.
func NormalizeToolKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

func fallback(raw string) models.DisplayMeta {
	return models.DisplayMeta{Label: raw, Color: NeutralColor, Icon: GenericIcon}
}
