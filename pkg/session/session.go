// Package session maintains one edit session over a single entity in two
// interchangeable views: a structured draft and its serialized YAML text
// form. Every transition between the views is gated by validation, so the
// two representations can never silently disagree.
package session

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentcanvas/engine/pkg/slug"
)

// View identifies which representation of the draft is currently
// authoritative.
type View int

const (
	// FormActive means the structured draft is authoritative.
	FormActive View = iota
	// TextActive means the serialized text is authoritative.
	TextActive
)

func (v View) String() string {
	if v == TextActive {
		return "text"
	}
	return "form"
}

// Entity is the contract a draft type must satisfy: deep copy, a fresh zero
// value for text decoding, default fill-in, structural validation, and access
// to its sequence number (0 meaning unassigned).
type Entity[T any] interface {
	Clone() T
	NewEmpty() T
	ApplyDefaults()
	Validate() error
	SeqNumber() int
	SetSeqNumber(int)
}

// Session holds exactly one draft. It starts in FormActive. A session is
// single-use: after Commit it refuses further operations, and a caller
// opening a new session simply drops the old one — there is no merge or
// conflict detection between sessions.
type Session[T Entity[T]] struct {
	view     View
	draft    T
	original T   // populated when editing, for sequence-number recovery
	index    int // position in the target collection, -1 for new
	length   int // target collection length at open time
	text     string
	closed   bool
}

// Edit opens a session over an existing entity: the draft is a deep copy of
// target, which sits at index in a collection of the given length.
func Edit[T Entity[T]](target T, index, collectionLen int) *Session[T] {
	return &Session[T]{
		draft:    target.Clone(),
		original: target.Clone(),
		index:    index,
		length:   collectionLen,
	}
}

// Create opens a session for a new entity from a template, to be appended to
// a collection of the given length.
func Create[T Entity[T]](template T, collectionLen int) *Session[T] {
	return &Session[T]{
		draft:  template.Clone(),
		index:  -1,
		length: collectionLen,
	}
}

// View reports which view is active.
func (s *Session[T]) View() View { return s.view }

// Index returns the draft's position in the target collection, -1 for a new
// entity.
func (s *Session[T]) Index() int { return s.index }

// Closed reports whether the session has been committed.
func (s *Session[T]) Closed() bool { return s.closed }

// Form returns the structured draft for field display. Callers must not
// mutate it directly; use SetForm.
func (s *Session[T]) Form() T { return s.draft }

// Text returns the current text view content.
func (s *Session[T]) Text() string { return s.text }

// SetForm replaces the draft from edited structured fields. Only valid while
// the form view is active.
func (s *Session[T]) SetForm(fields T) error {
	if s.closed {
		return ErrClosed
	}
	if s.view != FormActive {
		return ErrWrongView
	}
	s.draft = fields.Clone()
	return nil
}

// SetText replaces the text view content. Only valid while the text view is
// active. The text is not parsed until the next transition or commit.
func (s *Session[T]) SetText(text string) error {
	if s.closed {
		return ErrClosed
	}
	if s.view != TextActive {
		return ErrWrongView
	}
	s.text = text
	return nil
}

// SwitchToText validates the structured draft, serializes it, and makes the
// text view active. A validation failure aborts the transition and leaves
// the form view authoritative.
func (s *Session[T]) SwitchToText() error {
	if s.closed {
		return ErrClosed
	}
	if s.view == TextActive {
		return nil
	}
	if err := s.syncFromForm(); err != nil {
		return err
	}
	out, err := yaml.Marshal(s.draft)
	if err != nil {
		return err
	}
	s.text = string(out)
	s.view = TextActive
	return nil
}

// SwitchToForm parses the text view, replaces the draft with the parsed
// entity, and makes the form view active. On a ParseError or ShapeError the
// transition is aborted and the text view left untouched for correction.
func (s *Session[T]) SwitchToForm() error {
	if s.closed {
		return ErrClosed
	}
	if s.view == FormActive {
		return nil
	}
	parsed, err := s.applyFromText()
	if err != nil {
		return err
	}
	s.draft = parsed
	s.view = FormActive
	return nil
}

// Commit finalizes the draft from whichever view is active, assigns a
// sequence number if the draft lacks one, closes the session, and returns
// the entity to merge into the target collection at Index. It fails the same
// way the corresponding view transition would, leaving the session open.
func (s *Session[T]) Commit() (T, error) {
	var zero T
	if s.closed {
		return zero, ErrClosed
	}
	if s.view == TextActive {
		parsed, err := s.applyFromText()
		if err != nil {
			return zero, err
		}
		s.draft = parsed
	}
	if err := s.syncFromForm(); err != nil {
		return zero, err
	}

	// A text round trip that dropped the sequence number must not renumber
	// the entity: recover it from the original, or allocate one past the
	// collection for a new entity.
	if s.draft.SeqNumber() == 0 {
		if s.index >= 0 {
			s.draft.SetSeqNumber(s.original.SeqNumber())
		} else {
			s.draft.SetSeqNumber(slug.NextNumber(s.length))
		}
	}

	s.closed = true
	return s.draft, nil
}

func (s *Session[T]) syncFromForm() error {
	s.draft.ApplyDefaults()
	return s.draft.Validate()
}

func (s *Session[T]) applyFromText() (T, error) {
	var zero T

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(s.text), &node); err != nil {
		return zero, &ParseError{Err: err}
	}
	if strings.TrimSpace(s.text) == "" || len(node.Content) == 0 {
		return zero, &ShapeError{Got: "an empty document"}
	}
	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return zero, &ShapeError{Got: kindName(root.Kind)}
	}

	fresh := s.draft.NewEmpty()
	if err := root.Decode(fresh); err != nil {
		return zero, &ParseError{Err: err}
	}
	fresh.ApplyDefaults()
	return fresh, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	case yaml.MappingNode:
		return "a mapping"
	}
	return "an unknown node"
}

// MergeInto merges a committed entity into a collection: appended when index
// is negative, replacing in place otherwise. The input slice is not mutated.
func MergeInto[T any](collection []T, entity T, index int) []T {
	if index < 0 {
		out := make([]T, 0, len(collection)+1)
		out = append(out, collection...)
		return append(out, entity)
	}
	out := append([]T(nil), collection...)
	out[index] = entity
	return out
}
