package hierarchy

import "github.com/fentz26/ganttline/internal/models"

// Index is the parent/children view of a record sequence. It is read-only and
// must be rebuilt when the sequence changes.
//
// Positional accessors are exact. Id-keyed accessors resolve an id to its last
// occurrence when the input repeats ids.
type Index struct {
	records  []models.TaskRecord
	parent   []int
	children [][]int
	roots    []int
	byID     map[string]int
}

// BuildIndex derives the hierarchy of records in a single pass.
func BuildIndex(records []models.TaskRecord) *Index {
	ix := &Index{
		records:  records,
		parent:   make([]int, len(records)),
		children: make([][]int, len(records)),
		byID:     make(map[string]int, len(records)),
	}

	var st ancestorStack
	for i, r := range records {
		p := st.enter(i, r.Depth)
		ix.parent[i] = p
		if p < 0 {
			ix.roots = append(ix.roots, i)
		} else {
			ix.children[p] = append(ix.children[p], i)
		}
		ix.byID[r.ID] = i
	}
	return ix
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Record returns the record at pos.
func (ix *Index) Record(pos int) models.TaskRecord {
	return ix.records[pos]
}

// Position returns the position of id.
func (ix *Index) Position(id string) (int, bool) {
	pos, ok := ix.byID[id]
	return pos, ok
}

// ParentAt returns the parent position of pos, or -1 for a root.
func (ix *Index) ParentAt(pos int) int {
	return ix.parent[pos]
}

// ChildrenAt returns the child positions of pos in source order.
func (ix *Index) ChildrenAt(pos int) []int {
	return ix.children[pos]
}

// RootPositions returns the positions of records without a parent.
func (ix *Index) RootPositions() []int {
	return ix.roots
}

// Parent returns the parent id of id. ok is false for roots and unknown ids.
func (ix *Index) Parent(id string) (string, bool) {
	pos, ok := ix.byID[id]
	if !ok || ix.parent[pos] < 0 {
		return "", false
	}
	return ix.records[ix.parent[pos]].ID, true
}

// Children returns the ids of the direct children of id in source order.
func (ix *Index) Children(id string) []string {
	pos, ok := ix.byID[id]
	if !ok {
		return nil
	}
	return ix.ids(ix.children[pos])
}

// Roots returns the ids of the top-level records.
func (ix *Index) Roots() []string {
	return ix.ids(ix.roots)
}

// HasChildren reports whether id has at least one child.
func (ix *Index) HasChildren(id string) bool {
	pos, ok := ix.byID[id]
	return ok && len(ix.children[pos]) > 0
}

// Ancestors returns the ancestor ids of id, nearest first.
func (ix *Index) Ancestors(id string) []string {
	pos, ok := ix.byID[id]
	if !ok {
		return nil
	}
	var out []string
	for p := ix.parent[pos]; p >= 0; p = ix.parent[p] {
		out = append(out, ix.records[p].ID)
	}
	return out
}

// AncestorPositions returns the ancestor positions of pos, root first.
func (ix *Index) AncestorPositions(pos int) []int {
	var rev []int
	for p := ix.parent[pos]; p >= 0; p = ix.parent[p] {
		rev = append(rev, p)
	}
	out := make([]int, len(rev))
	for i, p := range rev {
		out[len(rev)-1-i] = p
	}
	return out
}

// Descendants returns every transitive child of id in pre-order.
func (ix *Index) Descendants(id string) []string {
	pos, ok := ix.byID[id]
	if !ok {
		return nil
	}
	return ix.ids(ix.DescendantPositions(pos))
}

// DescendantPositions returns every transitive child of pos in pre-order.
func (ix *Index) DescendantPositions(pos int) []int {
	var out []int
	var walk func(int)
	walk = func(p int) {
		for _, c := range ix.children[p] {
			out = append(out, c)
			walk(c)
		}
	}
	walk(pos)
	return out
}

// Siblings returns the children of id's parent, id included. Top-level records
// are siblings of each other.
func (ix *Index) Siblings(id string) []string {
	pos, ok := ix.byID[id]
	if !ok {
		return nil
	}
	return ix.ids(ix.SiblingPositions(pos))
}

// SiblingPositions returns the positions sharing pos's parent, pos included.
func (ix *Index) SiblingPositions(pos int) []int {
	if p := ix.parent[pos]; p >= 0 {
		return ix.children[p]
	}
	return ix.roots
}

func (ix *Index) ids(positions []int) []string {
	out := make([]string, len(positions))
	for i, p := range positions {
		out[i] = ix.records[p].ID
	}
	return out
}
