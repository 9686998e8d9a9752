// Package service owns the engine state for one canvas: a read-only mirror
// of the canvas's items, the active grouping/filter/search parameters, the
// single open edit session, and legacy document import/export. All engine
// operations are synchronous transformations; the only asynchronous edges
// are the backend store (awaited, never retried) and the debounced search
// recompute.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/agentcanvas/engine/pkg/config"
	"github.com/agentcanvas/engine/pkg/display"
	"github.com/agentcanvas/engine/pkg/document"
	"github.com/agentcanvas/engine/pkg/grouping"
	"github.com/agentcanvas/engine/pkg/models"
	"github.com/agentcanvas/engine/pkg/store"
)

// Service drives one canvas.
type Service struct {
	store    store.Store
	log      *logrus.Entry
	canvasID string
	settings config.Settings
	registry *display.Registry
	engine   *grouping.Engine

	mu        sync.Mutex
	items     []models.Item
	dimension string
	filters   map[string][]string
	query     string

	// Retained serialized form of the last imported document; preferred over
	// regeneration on export.
	originalDoc   []byte
	documentTitle string

	search *debouncer
	// OnRecompute, when set, receives the grouped view after each debounced
	// search recompute.
	OnRecompute func([]models.Group)

	session *agentSession
}

// New creates a service over a canvas. A nil logger falls back to a null
// entry.
func New(st store.Store, canvasID string, settings config.Settings, logger *logrus.Entry) *Service {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}

	registry := display.NewRegistry()
	for tool, meta := range settings.ToolsConfig {
		registry.SetTool(tool, meta)
	}
	for dim, vocab := range settings.Vocabularies {
		registry.SetVocabulary(dim, vocab)
	}

	return &Service{
		store:     st,
		log:       logger.WithField("canvas", canvasID),
		canvasID:  canvasID,
		settings:  settings,
		registry:  registry,
		engine:    grouping.NewEngine(registry, settings.Palette, settings.SectionDefaults.Icon),
		dimension: registry.DefaultDimension().ID,
		search:    newDebouncer(settings.SearchDebounce),
	}
}

// Close cancels any pending debounced recompute.
func (s *Service) Close() {
	s.search.Stop()
}

// Registry exposes the display registry, e.g. for rendering tool chips.
func (s *Service) Registry() *display.Registry { return s.registry }

// Refresh reloads the mirror from the store. On failure the mirror is left
// exactly as it was.
func (s *Service) Refresh(ctx context.Context) error {
	items, err := s.store.List(ctx, s.canvasID)
	if err != nil {
		s.log.WithError(err).Warn("refresh failed, keeping stale mirror")
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Items returns a copy of the mirrored item collection.
func (s *Service) Items() []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Item(nil), s.items...)
}

// SetDimension selects the grouping dimension for subsequent Groups calls.
func (s *Service) SetDimension(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = id
}

// SetFilters replaces the per-dimension allow-lists.
func (s *Service) SetFilters(filters map[string][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filters
}

// SetQuery applies a search query immediately.
func (s *Service) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
}

// QueryInput feeds one keystroke's worth of search input. The recompute is
// debounced trailing-edge: a pending recompute is superseded, so only the
// most recent query is ever applied, delivered through OnRecompute.
func (s *Service) QueryInput(query string) {
	s.search.Trigger(func() {
		s.SetQuery(query)
		if s.OnRecompute != nil {
			s.OnRecompute(s.Groups())
		}
	})
}

// Groups computes the grouped view of the canvas under the current
// dimension, filters, and query. The mirror is never mutated.
func (s *Service) Groups() []models.Group {
	s.mu.Lock()
	// Copy the elements, not just the slice header: commits write into the
	// mirror in place under the lock, and the debounced recompute reads it
	// from the timer goroutine.
	items := append([]models.Item(nil), s.items...)
	dimension := s.dimension
	filters := s.filters
	query := s.query
	s.mu.Unlock()

	visible := grouping.Search(s.engine.Filter(items, filters), query)
	return s.engine.GroupBy(visible, dimension)
}

// ImportDocument parses and normalizes a legacy document, replaces the
// canvas's item set in one all-or-nothing store call, and retains the
// serialized form for export. Tool display metadata carried by the document
// is merged into the registry.
func (s *Service) ImportDocument(ctx context.Context, raw []byte) error {
	doc, err := document.Parse(raw)
	if err != nil {
		return err
	}

	items := document.ToFlatRecords(doc, s.canvasID)
	if err := s.store.BulkReplace(ctx, s.canvasID, items); err != nil {
		return err
	}

	for tool, meta := range doc.ToolsConfig {
		s.registry.SetTool(tool, meta)
	}

	s.mu.Lock()
	s.originalDoc = append([]byte(nil), raw...)
	s.documentTitle = doc.DocumentTitle
	s.mu.Unlock()

	s.log.WithField("groups", len(doc.AgentGroups)).Info("imported legacy document")
	return s.Refresh(ctx)
}

// ExportDocument returns the canvas's legacy document form: the retained
// original serialized form when one exists, else a lossy regeneration from
// the flat records.
func (s *Service) ExportDocument() ([]byte, error) {
	s.mu.Lock()
	original := s.originalDoc
	title := s.documentTitle
	items := append([]models.Item(nil), s.items...)
	s.mu.Unlock()

	if len(original) > 0 {
		return append([]byte(nil), original...), nil
	}
	if title == "" {
		title = s.canvasID
	}
	doc := document.FromFlatRecords(title, items, s.settings.SectionDefaults, s.settings.ToolsConfig)
	out, err := document.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("regenerate document: %w", err)
	}
	return out, nil
}
