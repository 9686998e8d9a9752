package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ROI contribution tiers, ordered from highest to lowest.
const (
	ROIVeryHigh = "Very High"
	ROIHigh     = "High"
	ROIMedium   = "Medium"
	ROILow      = "Low"
)

// ROITiers lists the valid roiContribution values in display order.
var ROITiers = []string{ROIVeryHigh, ROIHigh, ROIMedium, ROILow}

// Metrics is the display-facing metrics triple carried on agent cards and in
// legacy documents. The fields are display-formatted strings, not numbers.
type Metrics struct {
	UsageThisWeek   string `json:"usage_this_week" yaml:"usageThisWeek,omitempty"`
	TimeSaved       string `json:"time_saved" yaml:"timeSaved,omitempty"`
	ROIContribution string `json:"roi_contribution" yaml:"roiContribution,omitempty"`
}

// ApplyDefaults fills zero-valued metric fields with their documented
// defaults.
func (m *Metrics) ApplyDefaults() {
	if m.ROIContribution == "" {
		m.ROIContribution = ROIMedium
	}
}

// MetricsRecord is the backend-facing metrics shape: a numeric adoption and
// satisfaction pair with the ROI tier hoisted to a sibling field.
type MetricsRecord struct {
	Adoption     int    `json:"adoption"`
	Satisfaction int    `json:"satisfaction"`
	ROITier      string `json:"roi_tier"`
}

// CoerceMetrics bridges the two metrics shapes found in the wild. It guesses
// the shape from which keys are present: a map carrying any of the display
// keys is taken as the display triple, a map carrying adoption/satisfaction is
// taken as a backend record and formatted into display strings. Anything else
// yields defaulted metrics. The guess can lose data on round trip when a
// document mixes both shapes; that ambiguity is inherited from the source data
// and deliberately not resolved here.
func CoerceMetrics(v any) Metrics {
	var m Metrics
	raw, ok := v.(map[string]any)
	if !ok {
		m.ApplyDefaults()
		return m
	}

	if hasAnyKey(raw, "usageThisWeek", "timeSaved", "roiContribution") {
		m.UsageThisWeek = stringAt(raw, "usageThisWeek")
		m.TimeSaved = stringAt(raw, "timeSaved")
		m.ROIContribution = stringAt(raw, "roiContribution")
	} else if hasAnyKey(raw, "adoption", "satisfaction") {
		if n, ok := intAt(raw, "adoption"); ok {
			m.UsageThisWeek = fmt.Sprintf("%d", n)
		}
		if n, ok := intAt(raw, "satisfaction"); ok {
			m.TimeSaved = fmt.Sprintf("%d", n)
		}
		m.ROIContribution = stringAt(raw, "roiTier")
	}

	m.ApplyDefaults()
	return m
}

// Record converts display metrics into the backend numeric shape,
// best-effort: the leading integer of each display string is kept, the rest
// is dropped.
func (m Metrics) Record() MetricsRecord {
	return MetricsRecord{
		Adoption:     leadingInt(m.UsageThisWeek),
		Satisfaction: leadingInt(m.TimeSaved),
		ROITier:      m.ROIContribution,
	}
}

func hasAnyKey(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func stringAt(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func intAt(m map[string]any, key string) (int, bool) {
	switch n := m[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
