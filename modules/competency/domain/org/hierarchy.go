package org

// Hierarchy answers relational queries over an already-loaded unit forest.
// It is immutable after construction and safe for concurrent use.
type Hierarchy struct {
	byID      map[int64]Unit
	byAcronym map[string]int64
	children  map[int64][]int64
}

func NewHierarchy(units []Unit) *Hierarchy {
	h := &Hierarchy{
		byID:      make(map[int64]Unit, len(units)),
		byAcronym: make(map[string]int64, len(units)),
		children:  make(map[int64][]int64),
	}
	for _, u := range units {
		h.byID[u.ID] = u
		h.byAcronym[u.Acronym] = u.ID
	}
	for _, u := range units {
		if u.ParentID != nil {
			h.children[*u.ParentID] = append(h.children[*u.ParentID], u.ID)
		}
	}
	return h
}

func (h *Hierarchy) Unit(id int64) (Unit, bool) {
	u, ok := h.byID[id]
	return u, ok
}

func (h *Hierarchy) UnitByAcronym(acronym string) (Unit, bool) {
	id, ok := h.byAcronym[acronym]
	if !ok {
		return Unit{}, false
	}
	return h.byID[id], true
}

// Acronym returns the unit's short label, or "" when unknown.
func (h *Hierarchy) Acronym(id int64) string {
	return h.byID[id].Acronym
}

// IsSameOrDescendant reports whether candidate equals reference or sits
// anywhere below it. Unknown units are simply not reachable. A visited set
// bounds the walk so malformed parent data cannot loop forever.
func (h *Hierarchy) IsSameOrDescendant(candidate, reference int64) bool {
	if candidate == reference {
		_, ok := h.byID[candidate]
		return ok
	}
	visited := make(map[int64]bool)
	current, ok := h.byID[candidate]
	if !ok {
		return false
	}
	for current.ParentID != nil {
		parent := *current.ParentID
		if parent == reference {
			return true
		}
		if visited[parent] {
			return false
		}
		visited[parent] = true
		current, ok = h.byID[parent]
		if !ok {
			return false
		}
	}
	return false
}

// IsImmediateSuperior reports whether candidate is reference's direct parent.
func (h *Hierarchy) IsImmediateSuperior(candidate, reference int64) bool {
	u, ok := h.byID[reference]
	if !ok || u.ParentID == nil {
		return false
	}
	return *u.ParentID == candidate
}

// IsResponsibleFor reports whether userID is the unit's registered
// responsible person.
func (h *Hierarchy) IsResponsibleFor(unitID int64, userID string) bool {
	u, ok := h.byID[unitID]
	if !ok || userID == "" {
		return false
	}
	return u.ResponsibleID == userID
}

// Parent returns the unit's direct superior.
func (h *Hierarchy) Parent(id int64) (Unit, bool) {
	u, ok := h.byID[id]
	if !ok || u.ParentID == nil {
		return Unit{}, false
	}
	p, ok := h.byID[*u.ParentID]
	return p, ok
}

// Ancestors returns the chain of superiors from the unit's parent up to the
// root, in order. Cycle-guarded.
func (h *Hierarchy) Ancestors(id int64) []Unit {
	var out []Unit
	visited := map[int64]bool{id: true}
	current, ok := h.Parent(id)
	for ok {
		if visited[current.ID] {
			break
		}
		visited[current.ID] = true
		out = append(out, current)
		current, ok = h.Parent(current.ID)
	}
	return out
}

// Descendants returns every unit below id, depth-first.
func (h *Hierarchy) Descendants(id int64) []Unit {
	var out []Unit
	visited := map[int64]bool{id: true}
	var walk func(int64)
	walk = func(parent int64) {
		for _, child := range h.children[parent] {
			if visited[child] {
				continue
			}
			visited[child] = true
			out = append(out, h.byID[child])
			walk(child)
		}
	}
	walk(id)
	return out
}
