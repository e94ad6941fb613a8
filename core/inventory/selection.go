package inventory

import "github.com/google/uuid"

// SelectionSet is an ordered set of selected item IDs. It is not safe for
// concurrent use; the controller guards it with its own lock.
type SelectionSet struct {
	ids    []uuid.UUID
	member map[uuid.UUID]bool
}

func NewSelectionSet() *SelectionSet {
	return &SelectionSet{member: make(map[uuid.UUID]bool)}
}

func (s *SelectionSet) Has(id uuid.UUID) bool {
	return s.member[id]
}

func (s *SelectionSet) Add(id uuid.UUID) {
	if s.member[id] {
		return
	}
	s.member[id] = true
	s.ids = append(s.ids, id)
}

func (s *SelectionSet) Remove(id uuid.UUID) {
	if !s.member[id] {
		return
	}
	delete(s.member, id)
	for i, known := range s.ids {
		if known == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
}

func (s *SelectionSet) Toggle(id uuid.UUID) {
	if s.member[id] {
		s.Remove(id)
	} else {
		s.Add(id)
	}
}

func (s *SelectionSet) Clear() {
	s.ids = nil
	s.member = make(map[uuid.UUID]bool)
}

func (s *SelectionSet) Len() int {
	return len(s.ids)
}

// IDs returns the selected IDs in selection order.
func (s *SelectionSet) IDs() []uuid.UUID {
	return append([]uuid.UUID(nil), s.ids...)
}
