package models

import "time"

// Item represents a single agent card on a canvas. Items are owned by the
// backend store and mirrored read-only into the in-memory collection the
// grouping and search engines operate on.
type Item struct {
	ID           string            `json:"id"`
	CanvasID     string            `json:"canvas_id"`
	Name         string            `json:"name"`
	Objective    string            `json:"objective,omitempty"`
	Description  string            `json:"description,omitempty"`
	Tools        []string          `json:"tools"`
	JourneySteps []string          `json:"journey_steps"`
	DemoLink     string            `json:"demo_link,omitempty"`
	VideoLink    string            `json:"video_link,omitempty"`
	Metrics      Metrics           `json:"metrics"`
	Tags         map[string]string `json:"tags,omitempty"`

	// Phase is the value of the default grouping dimension; PhaseOrder is the
	// position hint of its group, ItemOrder the item's position inside it.
	Phase      string `json:"phase,omitempty"`
	PhaseOrder int    `json:"phase_order"`
	ItemOrder  int    `json:"item_order"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the item has been soft-deleted. Soft-deleted items
// are excluded from grouping and search but retained for audit history.
func (it *Item) Deleted() bool {
	return it.DeletedAt != nil
}

// Tag returns the item's value for an arbitrary tag dimension, or "" when the
// dimension is not set on the item.
func (it *Item) Tag(dimension string) string {
	if it.Tags == nil {
		return ""
	}
	return it.Tags[dimension]
}

// Clone returns a deep copy of the item.
func (it *Item) Clone() *Item {
	out := *it
	out.Tools = append([]string(nil), it.Tools...)
	out.JourneySteps = append([]string(nil), it.JourneySteps...)
	if it.Tags != nil {
		out.Tags = make(map[string]string, len(it.Tags))
		for k, v := range it.Tags {
			out.Tags[k] = v
		}
	}
	if it.DeletedAt != nil {
		t := *it.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}

// Group is a derived, ordered bucket of items sharing a resolved value for
// some dimension. Groups are value objects recomputed on every grouping pass;
// they are never persisted.
type Group struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	Order     int    `json:"order"`
	Items     []Item `json:"items"`
	ItemCount int    `json:"item_count"`
}
