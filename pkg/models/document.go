package models

import "strings"

// DisplayMeta is presentation metadata for a tool, tag value, or group: a
// human label, a hex color, and an icon name.
type DisplayMeta struct {
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"`
	Icon  string `json:"icon" yaml:"icon"`
}

// SectionDefaults carries document-wide fallbacks applied to every group
// section of a legacy document.
type SectionDefaults struct {
	Icon       string `json:"icon" yaml:"icon"`
	ShowInFlow bool   `json:"show_in_flow" yaml:"showInFlow"`
	IsSupport  bool   `json:"is_support" yaml:"isSupport"`
}

// Document is the legacy nested representation of a canvas: agents grouped
// into named sections, predating the flat backend record model.
type Document struct {
	DocumentTitle   string                 `json:"document_title" yaml:"documentTitle"`
	SectionDefaults SectionDefaults        `json:"section_defaults" yaml:"sectionDefaults"`
	ToolsConfig     map[string]DisplayMeta `json:"tools_config" yaml:"toolsConfig,omitempty"`
	AgentGroups     []DocumentGroup        `json:"agent_groups" yaml:"agentGroups"`
}

// DocumentGroup is one named section of a legacy document.
type DocumentGroup struct {
	GroupID     string          `json:"group_id" yaml:"groupId,omitempty"`
	GroupName   string          `json:"group_name" yaml:"groupName"`
	GroupNumber int             `json:"group_number" yaml:"groupNumber"`
	PhaseTag    string          `json:"phase_tag" yaml:"phaseTag,omitempty"`
	Agents      []DocumentAgent `json:"agents" yaml:"agents"`
}

// DocumentAgent is the item shape carried inside a legacy document group.
type DocumentAgent struct {
	Name         string   `json:"name" yaml:"name"`
	AgentNumber  int      `json:"agent_number" yaml:"agentNumber,omitempty"`
	Objective    string   `json:"objective" yaml:"objective,omitempty"`
	Description  string   `json:"description" yaml:"description,omitempty"`
	Tools        []string `json:"tools" yaml:"tools"`
	JourneySteps []string `json:"journey_steps" yaml:"journeySteps"`
	DemoLink     string   `json:"demo_link" yaml:"demoLink,omitempty"`
	VideoLink    string   `json:"video_link" yaml:"videoLink,omitempty"`
	Metrics      Metrics  `json:"metrics" yaml:"metrics"`
}

// ApplyDefaults fills nil collections and zero metric fields with their
// documented empty forms, so a parsed agent never carries nil slices.
func (a *DocumentAgent) ApplyDefaults() {
	if a.Tools == nil {
		a.Tools = []string{}
	}
	if a.JourneySteps == nil {
		a.JourneySteps = []string{}
	}
	a.Metrics.ApplyDefaults()
}

// Validate checks the structural invariants an agent must satisfy before it
// can be committed or flattened.
func (a *DocumentAgent) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return &ValidationError{Field: "name", Msg: "is required and must be non-empty"}
	}
	return nil
}

// Clone returns a deep copy of the agent.
func (a *DocumentAgent) Clone() *DocumentAgent {
	out := *a
	out.Tools = append([]string(nil), a.Tools...)
	out.JourneySteps = append([]string(nil), a.JourneySteps...)
	return &out
}

// NewEmpty returns a fresh zero agent.
func (a *DocumentAgent) NewEmpty() *DocumentAgent { return &DocumentAgent{} }

// SeqNumber returns the agent's 1-based sequence number, 0 when unassigned.
func (a *DocumentAgent) SeqNumber() int { return a.AgentNumber }

// SetSeqNumber assigns the agent's sequence number.
func (a *DocumentAgent) SetSeqNumber(n int) { a.AgentNumber = n }

// ApplyDefaults fills nil collections on the group and its agents.
func (g *DocumentGroup) ApplyDefaults() {
	if g.Agents == nil {
		g.Agents = []DocumentAgent{}
	}
	for i := range g.Agents {
		g.Agents[i].ApplyDefaults()
	}
}

// Validate checks the structural invariants a group must satisfy.
func (g *DocumentGroup) Validate() error {
	if strings.TrimSpace(g.GroupName) == "" {
		return &ValidationError{Field: "groupName", Msg: "is required and must be non-empty"}
	}
	return nil
}

// Clone returns a deep copy of the group.
func (g *DocumentGroup) Clone() *DocumentGroup {
	out := *g
	out.Agents = make([]DocumentAgent, len(g.Agents))
	for i := range g.Agents {
		out.Agents[i] = *g.Agents[i].Clone()
	}
	return &out
}

// NewEmpty returns a fresh zero group.
func (g *DocumentGroup) NewEmpty() *DocumentGroup { return &DocumentGroup{} }

// SeqNumber returns the group's running number, 0 when unassigned.
func (g *DocumentGroup) SeqNumber() int { return g.GroupNumber }

// SetSeqNumber assigns the group's running number.
func (g *DocumentGroup) SetSeqNumber(n int) { g.GroupNumber = n }

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := *d
	if d.ToolsConfig != nil {
		out.ToolsConfig = make(map[string]DisplayMeta, len(d.ToolsConfig))
		for k, v := range d.ToolsConfig {
			out.ToolsConfig[k] = v
		}
	}
	out.AgentGroups = make([]DocumentGroup, len(d.AgentGroups))
	for i := range d.AgentGroups {
		out.AgentGroups[i] = *d.AgentGroups[i].Clone()
	}
	return &out
}

// DefaultSectionDefaults returns the fixed fallback values used when a legacy
// document omits sectionDefaults sub-fields.
func DefaultSectionDefaults() SectionDefaults {
	return SectionDefaults{
		Icon:       "layers",
		ShowInFlow: true,
		IsSupport:  false,
	}
}
