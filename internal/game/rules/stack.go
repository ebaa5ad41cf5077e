package rules

import (
	"errors"
	"sync"
)

// ErrStackEmpty is returned when popping an empty stack.
var ErrStackEmpty = errors.New("stack empty")

// TriggerStack holds triggered abilities put on the stack and not yet resolved.
// The last item pushed is on top.
type TriggerStack struct {
	mu    sync.Mutex
	items []PendingTrigger
}

// NewTriggerStack creates an empty stack.
func NewTriggerStack() *TriggerStack {
	return &TriggerStack{
		items: make([]PendingTrigger, 0, 16),
	}
}

// Push puts one trigger on top of the stack.
func (s *TriggerStack) Push(t PendingTrigger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t)
}

// PushAll puts triggers on the stack in the order given. Triggers sorted by SortAPNAP
// therefore leave the active player's at the bottom and the last nonactive player's on
// top, so they resolve first (rule 603.3b).
func (s *TriggerStack) PushAll(triggers []PendingTrigger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, triggers...)
}

// Pop removes and returns the top trigger.
func (s *TriggerStack) Pop() (PendingTrigger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return PendingTrigger{}, ErrStackEmpty
	}
	idx := len(s.items) - 1
	t := s.items[idx]
	s.items = s.items[:idx]
	return t, nil
}

// Peek returns the top trigger without removing it.
func (s *TriggerStack) Peek() (PendingTrigger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return PendingTrigger{}, false
	}
	return s.items[len(s.items)-1], true
}

// Remove deletes a trigger from anywhere in the stack.
func (s *TriggerStack) Remove(id string) (PendingTrigger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for idx := len(s.items) - 1; idx >= 0; idx-- {
		if s.items[idx].ID == id {
			t := s.items[idx]
			s.items = append(s.items[:idx], s.items[idx+1:]...)
			return t, true
		}
	}
	return PendingTrigger{}, false
}

// RemoveWhere drops every trigger for which drop returns true, e.g. abilities
// countered on resolution, and returns their ids bottom first.
func (s *TriggerStack) RemoveWhere(drop func(PendingTrigger) bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	kept := s.items[:0]
	for _, t := range s.items {
		if drop(t) {
			removed = append(removed, t.ID)
			continue
		}
		kept = append(kept, t)
	}
	clear(s.items[len(kept):])
	s.items = kept
	return removed
}

// List returns a copy of the stack, bottom first.
func (s *TriggerStack) List() []PendingTrigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PendingTrigger, len(s.items))
	copy(out, s.items)
	return out
}

func (s *TriggerStack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
