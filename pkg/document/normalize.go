// Package document validates and normalizes legacy nested canvas documents
// and converts between them and the flat backend record model. Normalization
// reports the first violation found as a field-qualified ValidationError;
// conversion in both directions is deterministic, with export being a lossy
// fallback for when no original serialized form was retained.
package document

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentcanvas/engine/pkg/models"
	"github.com/agentcanvas/engine/pkg/slug"
)

// Parse decodes a YAML legacy document and normalizes it.
func Parse(raw []byte) (*models.Document, error) {
	var root any
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, &models.ValidationError{Field: "document", Msg: fmt.Sprintf("is not valid YAML: %v", err)}
	}
	return Normalize(root)
}

// Normalize validates a decoded legacy document tree, fills structural
// defaults, assigns missing group identifiers and sequence numbers, and
// returns the typed document. It fails with a *models.ValidationError on the
// first violation found, in document order.
func Normalize(root any) (*models.Document, error) {
	m, ok := root.(map[string]any)
	if !ok {
		return nil, &models.ValidationError{Field: "document", Msg: "must be a mapping"}
	}

	doc := &models.Document{
		DocumentTitle:   stringField(m, "documentTitle"),
		SectionDefaults: normalizeSectionDefaults(m["sectionDefaults"]),
		ToolsConfig:     normalizeToolsConfig(m["toolsConfig"]),
	}

	rawGroups, ok := m["agentGroups"].([]any)
	if !ok {
		return nil, &models.ValidationError{Field: "agentGroups", Msg: "is required and must be a list"}
	}

	ids := slug.NewAllocator()
	doc.AgentGroups = make([]models.DocumentGroup, 0, len(rawGroups))
	for i, rawGroup := range rawGroups {
		group, err := normalizeGroup(rawGroup, i, ids)
		if err != nil {
			return nil, err
		}
		doc.AgentGroups = append(doc.AgentGroups, *group)
	}
	return doc, nil
}

func normalizeGroup(raw any, position int, ids *slug.Allocator) (*models.DocumentGroup, error) {
	path := fmt.Sprintf("agentGroups[%d]", position)
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &models.ValidationError{Field: path, Msg: "must be a mapping"}
	}

	name := strings.TrimSpace(stringField(m, "groupName"))
	if name == "" {
		return nil, &models.ValidationError{Field: path + ".groupName", Msg: "is required and must be non-empty"}
	}

	number, err := numberField(m, "groupNumber", path, position)
	if err != nil {
		return nil, err
	}

	group := &models.DocumentGroup{
		GroupID:     ids.Claim(stringField(m, "groupId"), name, position),
		GroupName:   name,
		GroupNumber: number,
		PhaseTag:    stringField(m, "phaseTag"),
	}

	rawAgents, ok := m["agents"].([]any)
	if !ok {
		return nil, &models.ValidationError{Field: path + ".agents", Msg: "is required and must be a list"}
	}
	group.Agents = make([]models.DocumentAgent, 0, len(rawAgents))
	for j, rawAgent := range rawAgents {
		agent, err := normalizeAgent(rawAgent, fmt.Sprintf("%s.agents[%d]", path, j), j)
		if err != nil {
			return nil, err
		}
		group.Agents = append(group.Agents, *agent)
	}
	return group, nil
}

func normalizeAgent(raw any, path string, position int) (*models.DocumentAgent, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &models.ValidationError{Field: path, Msg: "must be a mapping"}
	}

	name, err := trimmedRequiredString(m, "name", path)
	if err != nil {
		return nil, err
	}

	// Agent numbers are 1-based; a missing number is filled from position.
	number, err := numberField(m, "agentNumber", path, position+1)
	if err != nil {
		return nil, err
	}

	agent := &models.DocumentAgent{
		Name:        name,
		AgentNumber: number,
		DemoLink:    stringField(m, "demoLink"),
		VideoLink:   stringField(m, "videoLink"),
	}

	if agent.Objective, err = optionalString(m, "objective", path); err != nil {
		return nil, err
	}
	if agent.Description, err = optionalString(m, "description", path); err != nil {
		return nil, err
	}
	if agent.Tools, err = optionalStringList(m, "tools", path); err != nil {
		return nil, err
	}
	if agent.JourneySteps, err = optionalStringList(m, "journeySteps", path); err != nil {
		return nil, err
	}

	if rawMetrics, present := m["metrics"]; present && rawMetrics != nil {
		mm, ok := rawMetrics.(map[string]any)
		if !ok {
			return nil, &models.ValidationError{Field: path + ".metrics", Msg: "must be a mapping"}
		}
		agent.Metrics = models.CoerceMetrics(mm)
	}

	agent.ApplyDefaults()
	return agent, nil
}

func normalizeSectionDefaults(raw any) models.SectionDefaults {
	defaults := models.DefaultSectionDefaults()
	m, ok := raw.(map[string]any)
	if !ok {
		return defaults
	}
	if icon, ok := m["icon"].(string); ok && icon != "" {
		defaults.Icon = icon
	}
	if show, ok := m["showInFlow"].(bool); ok {
		defaults.ShowInFlow = show
	}
	if support, ok := m["isSupport"].(bool); ok {
		defaults.IsSupport = support
	}
	return defaults
}

func normalizeToolsConfig(raw any) map[string]models.DisplayMeta {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]models.DisplayMeta, len(m))
	for tool, rawMeta := range m {
		meta, ok := rawMeta.(map[string]any)
		if !ok {
			continue
		}
		out[tool] = models.DisplayMeta{
			Label: stringField(meta, "label"),
			Color: stringField(meta, "color"),
			Icon:  stringField(meta, "icon"),
		}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func trimmedRequiredString(m map[string]any, key, path string) (string, error) {
	s := strings.TrimSpace(stringField(m, key))
	if s == "" {
		return "", &models.ValidationError{Field: path + "." + key, Msg: "is required and must be non-empty"}
	}
	return s, nil
}

func optionalString(m map[string]any, key, path string) (string, error) {
	v, present := m[key]
	if !present || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &models.ValidationError{Field: path + "." + key, Msg: "must be a string"}
	}
	return s, nil
}

func optionalStringList(m map[string]any, key, path string) ([]string, error) {
	v, present := m[key]
	if !present || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &models.ValidationError{Field: path + "." + key, Msg: "must be a list"}
	}
	out := make([]string, 0, len(list))
	for i, elem := range list {
		s, ok := elem.(string)
		if !ok {
			return nil, &models.ValidationError{
				Field: fmt.Sprintf("%s.%s[%d]", path, key, i),
				Msg:   "must be a string",
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// numberField reads an optional numeric field, substituting fallback when it
// is absent and rejecting non-numeric or fractional values.
func numberField(m map[string]any, key, path string, fallback int) (int, error) {
	v, present := m[key]
	if !present || v == nil {
		return fallback, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, &models.ValidationError{Field: path + "." + key, Msg: "must be a whole number"}
		}
		return int(n), nil
	}
	return 0, &models.ValidationError{Field: path + "." + key, Msg: "must be a number"}
}
