package display

import "github.com/agentcanvas/engine/pkg/models"

// unrankedOrder sorts values outside a dimension's vocabulary after every
// ranked value.
const unrankedOrder = 1 << 30

// Labels used when an item carries no value for a dimension.
const (
	MissingPhaseLabel = "Uncategorized"
	MissingTagLabel   = "unassigned"
)

// Dimension describes one categorical attribute of an item usable as a
// grouping or filter key: how to read its value off an item, the ordered
// vocabulary that drives group order, and the label substituted when the
// value is missing.
type Dimension struct {
	ID         string
	Default    bool
	Missing    string
	Vocabulary []string
	Resolve    func(*models.Item) string
}

// Value resolves an item's value for this dimension, substituting the
// dimension's missing-value label when the item carries none.
func (d *Dimension) Value(it *models.Item) string {
	if v := d.Resolve(it); v != "" {
		return v
	}
	return d.Missing
}

// Rank returns the value's position in the dimension's declared vocabulary,
// or a large sentinel that sorts last when the value is not in it.
func (d *Dimension) Rank(value string) int {
	for i, v := range d.Vocabulary {
		if v == value {
			return i
		}
	}
	return unrankedOrder
}

// Registry holds the known dimensions plus tool and per-value presentation
// overrides. Adding a dimension here is all it takes for the grouping and
// filter engines to honor it.
type Registry struct {
	dimensions map[string]*Dimension
	defaultDim *Dimension
	tools      map[string]models.DisplayMeta
	values     map[string]map[string]models.DisplayMeta
}

// NewRegistry returns a registry with the built-in dimensions: phase (the
// default grouping dimension), department, status, and roiTier.
func NewRegistry() *Registry {
	r := &Registry{
		dimensions: make(map[string]*Dimension),
		tools:      make(map[string]models.DisplayMeta, len(builtinTools)),
		values:     make(map[string]map[string]models.DisplayMeta, len(builtinValues)),
	}
	for k, v := range builtinTools {
		r.tools[k] = v
	}
	for dim, vals := range builtinValues {
		m := make(map[string]models.DisplayMeta, len(vals))
		for k, v := range vals {
			m[k] = v
		}
		r.values[dim] = m
	}

	r.Register(&Dimension{
		ID:      "phase",
		Default: true,
		Missing: MissingPhaseLabel,
		Resolve: func(it *models.Item) string { return it.Phase },
	})
	r.Register(&Dimension{
		ID:      "department",
		Missing: MissingTagLabel,
		Resolve: func(it *models.Item) string { return it.Tag("department") },
	})
	r.Register(&Dimension{
		ID:         "status",
		Missing:    MissingTagLabel,
		Vocabulary: []string{"active", "draft", "paused", "retired", "proposed"},
		Resolve:    func(it *models.Item) string { return it.Tag("status") },
	})
	r.Register(&Dimension{
		ID:         "roiTier",
		Missing:    MissingTagLabel,
		Vocabulary: models.ROITiers,
		Resolve:    func(it *models.Item) string { return it.Metrics.ROIContribution },
	})
	return r
}

// Register adds or replaces a dimension. The first dimension registered with
// Default set becomes the registry's default grouping dimension.
func (r *Registry) Register(d *Dimension) {
	r.dimensions[d.ID] = d
	if d.Default && (r.defaultDim == nil || r.defaultDim.ID == d.ID) {
		r.defaultDim = d
	}
}

// Dimension returns the dimension for id. Unknown ids resolve to an ad hoc
// tag dimension reading Tags[id], so filtering on a dimension nobody declared
// still works.
func (r *Registry) Dimension(id string) *Dimension {
	if d, ok := r.dimensions[id]; ok {
		return d
	}
	return &Dimension{
		ID:      id,
		Missing: MissingTagLabel,
		Resolve: func(it *models.Item) string { return it.Tag(id) },
	}
}

// DefaultDimension returns the default grouping dimension (phase unless a
// caller registered a different default).
func (r *Registry) DefaultDimension() *Dimension {
	return r.defaultDim
}

// SetVocabulary replaces the ordered vocabulary of a declared dimension.
// Unknown ids are ignored.
func (r *Registry) SetVocabulary(id string, vocabulary []string) {
	if d, ok := r.dimensions[id]; ok {
		d.Vocabulary = append([]string(nil), vocabulary...)
	}
}

// SetTool adds or overrides tool presentation, e.g. from a legacy document's
// toolsConfig. The key is normalized the same way lookups are.
func (r *Registry) SetTool(name string, meta models.DisplayMeta) {
	r.tools[NormalizeToolKey(name)] = meta
}

// SetValue adds or overrides presentation for one value of a tag dimension.
func (r *Registry) SetValue(dimension, value string, meta models.DisplayMeta) {
	if r.values[dimension] == nil {
		r.values[dimension] = make(map[string]models.DisplayMeta)
	}
	r.values[dimension][value] = meta
}

// ForTool returns presentation metadata for a tool name. The lookup key is
// case- and whitespace-normalized; misses fall back to the raw name with
// neutral styling.
func (r *Registry) ForTool(name string) models.DisplayMeta {
	if meta, ok := r.tools[NormalizeToolKey(name)]; ok {
		return meta
	}
	return fallback(name)
}

// ForValue returns presentation metadata for one value of a tag dimension.
// Values are matched by exact id; misses fall back to the raw value with
// neutral styling.
func (r *Registry) ForValue(dimension, value string) models.DisplayMeta {
	if meta, ok := r.values[dimension][value]; ok {
		return meta
	}
	return fallback(value)
}
