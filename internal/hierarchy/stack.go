// Package hierarchy rebuilds the task tree encoded by a depth-tagged, pre-ordered
// record list and filters it.
//
// Every walk in this package goes through ancestorStack, so the parent assignment
// used by the index, the depth filter and the id filter is always the same.
// Depth gaps and out-of-order roots are not rejected: the stack only compares
// depths with >= and <, and the resulting parent assignment is taken as is.
package hierarchy

type frame struct {
	pos   int
	depth int
}

// ancestorStack holds the chain of open ancestors during a left-to-right walk.
type ancestorStack struct {
	frames []frame
}

// enter pops every frame at or below depth, pushes pos and returns the
// position of its parent, or -1 for a root.
func (s *ancestorStack) enter(pos, depth int) int {
	for len(s.frames) > 0 && s.frames[len(s.frames)-1].depth >= depth {
		s.frames = s.frames[:len(s.frames)-1]
	}
	parent := -1
	if len(s.frames) > 0 {
		parent = s.frames[len(s.frames)-1].pos
	}
	s.frames = append(s.frames, frame{pos: pos, depth: depth})
	return parent
}

// chain returns the positions on the stack, root first.
func (s *ancestorStack) chain() []int {
	out := make([]int, len(s.frames))
	for i, f := range s.frames {
		out[i] = f.pos
	}
	return out
}
