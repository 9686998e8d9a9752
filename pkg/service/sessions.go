package service

import (
	"context"
	"fmt"

	"github.com/agentcanvas/engine/pkg/models"
	"github.com/agentcanvas/engine/pkg/session"
	"github.com/agentcanvas/engine/pkg/store"
)

// agentSession pairs an open dual-view session with the identity of the item
// it edits. itemID is empty for a session created for a new item.
type agentSession struct {
	sess   *session.Session[*models.DocumentAgent]
	itemID string
	index  int
}

// ErrNoSession is returned when a commit or cancel is requested with no
// session open.
var ErrNoSession = fmt.Errorf("no edit session open")

// OpenItemSession opens an edit session over the mirrored item with the
// given id. Any previously open session is dropped. The returned session is
// the caller's editing surface; the service retains it for commit.
func (s *Service) OpenItemSession(itemID string) (*session.Session[*models.DocumentAgent], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != itemID {
			continue
		}
		sess := session.Edit(itemToAgent(&s.items[i]), i, len(s.items))
		s.session = &agentSession{sess: sess, itemID: itemID, index: i}
		return sess, nil
	}
	return nil, fmt.Errorf("open session: %w", store.ErrNotFound)
}

// NewItemSession opens a session for a brand new item, to be appended to the
// canvas on commit. Any previously open session is dropped.
func (s *Service) NewItemSession() *session.Session[*models.DocumentAgent] {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := session.Create((&models.DocumentAgent{}).NewEmpty(), len(s.items))
	s.session = &agentSession{sess: sess, index: -1}
	return sess
}

// CancelSession drops the open session without persisting anything.
func (s *Service) CancelSession() {
	s.dropSession()
}

func (s *Service) dropSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
}

// CommitItemSession finalizes the open session and writes the result through
// the store, then updates the mirror. A validation or parse failure leaves
// the session open for correction; a store failure closes the session but
// leaves the mirror untouched.
func (s *Service) CommitItemSession(ctx context.Context) (*models.Item, error) {
	s.mu.Lock()
	open := s.session
	s.mu.Unlock()

	if open == nil {
		return nil, ErrNoSession
	}

	agent, err := open.sess.Commit()
	if err != nil {
		return nil, err
	}

	if open.itemID == "" {
		return s.commitNew(ctx, agent)
	}
	return s.commitEdit(ctx, open, agent)
}

func (s *Service) commitNew(ctx context.Context, agent *models.DocumentAgent) (*models.Item, error) {
	item := agentToItem(agent)
	item.CanvasID = s.canvasID
	item.ItemOrder = agent.AgentNumber - 1

	id, err := s.store.Create(ctx, item)
	if err != nil {
		s.log.WithError(err).Warn("create failed, mirror unchanged")
		s.dropSession()
		return nil, err
	}
	item.ID = id

	s.mu.Lock()
	s.items = append(s.items, *item.Clone())
	s.session = nil
	s.mu.Unlock()

	s.log.WithField("item", id).Info("created item")
	return item, nil
}

func (s *Service) commitEdit(ctx context.Context, open *agentSession, agent *models.DocumentAgent) (*models.Item, error) {
	s.mu.Lock()
	if open.index >= len(s.items) || s.items[open.index].ID != open.itemID {
		s.session = nil
		s.mu.Unlock()
		return nil, fmt.Errorf("commit session: %w", store.ErrNotFound)
	}
	updated := s.items[open.index].Clone()
	s.mu.Unlock()

	applyAgent(updated, agent)

	patch := store.ItemPatch{
		Name:         &updated.Name,
		Objective:    &updated.Objective,
		Description:  &updated.Description,
		Tools:        &updated.Tools,
		JourneySteps: &updated.JourneySteps,
		DemoLink:     &updated.DemoLink,
		VideoLink:    &updated.VideoLink,
		Metrics:      &updated.Metrics,
		ItemOrder:    &updated.ItemOrder,
	}
	if err := s.store.Update(ctx, open.itemID, patch); err != nil {
		s.log.WithError(err).Warn("update failed, mirror unchanged")
		s.dropSession()
		return nil, err
	}

	s.mu.Lock()
	s.items[open.index] = *updated.Clone()
	s.session = nil
	s.mu.Unlock()

	s.log.WithField("item", open.itemID).Info("updated item")
	return updated, nil
}

// DeleteItem soft-deletes an item through the store and removes it from the
// mirror. The row survives in the backend for audit history.
func (s *Service) DeleteItem(ctx context.Context, itemID string) error {
	if err := s.store.Delete(ctx, itemID); err != nil {
		s.log.WithError(err).Warn("delete failed, mirror unchanged")
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.log.WithField("item", itemID).Info("deleted item")
	return nil
}

// itemToAgent projects a flat record into the document agent shape the edit
// session operates on. The sequence number is the item's 1-based position
// hint.
func itemToAgent(it *models.Item) *models.DocumentAgent {
	return &models.DocumentAgent{
		Name:         it.Name,
		AgentNumber:  it.ItemOrder + 1,
		Objective:    it.Objective,
		Description:  it.Description,
		Tools:        append([]string(nil), it.Tools...),
		JourneySteps: append([]string(nil), it.JourneySteps...),
		DemoLink:     it.DemoLink,
		VideoLink:    it.VideoLink,
		Metrics:      it.Metrics,
	}
}

// agentToItem builds a fresh flat record from a committed agent.
func agentToItem(a *models.DocumentAgent) *models.Item {
	return &models.Item{
		Name:         a.Name,
		Objective:    a.Objective,
		Description:  a.Description,
		Tools:        append([]string(nil), a.Tools...),
		JourneySteps: append([]string(nil), a.JourneySteps...),
		DemoLink:     a.DemoLink,
		VideoLink:    a.VideoLink,
		Metrics:      a.Metrics,
	}
}

// applyAgent writes a committed agent's fields back onto an existing item,
// leaving identity, phase, and timestamps alone.
func applyAgent(it *models.Item, a *models.DocumentAgent) {
	it.Name = a.Name
	it.Objective = a.Objective
	it.Description = a.Description
	it.Tools = append([]string(nil), a.Tools...)
	it.JourneySteps = append([]string(nil), a.JourneySteps...)
	it.DemoLink = a.DemoLink
	it.VideoLink = a.VideoLink
	it.Metrics = a.Metrics
	it.ItemOrder = a.AgentNumber - 1
}
