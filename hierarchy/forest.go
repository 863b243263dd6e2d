package hierarchy

import (
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
)

// Forest is an in-memory view of the parent/child edges of one
// organization. Children keep the order in which profiles were supplied.
type Forest struct {
	order    []uuid.UUID
	byID     map[uuid.UUID]types.Profile
	children map[uuid.UUID][]uuid.UUID
}

// NewForest indexes the profiles. Profiles whose parent is not part of the
// slice are treated as roots.
func NewForest(profiles []types.Profile) *Forest {
	f := &Forest{
		order:    make([]uuid.UUID, 0, len(profiles)),
		byID:     make(map[uuid.UUID]types.Profile, len(profiles)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, p := range profiles {
		if _, dup := f.byID[p.ID]; dup {
			continue
		}
		f.byID[p.ID] = p
		f.order = append(f.order, p.ID)
	}
	for _, id := range f.order {
		p := f.byID[id]
		if p.ParentID == nil {
			continue
		}
		parent := *p.ParentID
		f.children[parent] = append(f.children[parent], id)
	}
	return f
}

// Len returns the number of indexed profiles.
func (f *Forest) Len() int {
	return len(f.order)
}

// Profile returns the indexed profile.
func (f *Forest) Profile(id uuid.UUID) (types.Profile, bool) {
	p, ok := f.byID[id]
	return p, ok
}

// Children returns the direct children of id.
func (f *Forest) Children(id uuid.UUID) []types.Profile {
	ids := f.children[id]
	out := make([]types.Profile, 0, len(ids))
	for _, child := range ids {
		out = append(out, f.byID[child])
	}
	return out
}

// Descendants returns every profile reachable from root through child
// edges. The direct children of a node are emitted as one block, followed by
// the subtree of each child in turn, so a profile always precedes its own
// children. A child that was already reached is skipped and reported to
// onCycle, which may be nil.
func (f *Forest) Descendants(root uuid.UUID, onCycle func(id uuid.UUID)) []types.Profile {
	type frame struct {
		nodes []uuid.UUID
		next  int
	}

	visited := map[uuid.UUID]struct{}{root: {}}
	var (
		out   []types.Profile
		stack []frame
	)
	expand := func(node uuid.UUID) {
		var block []uuid.UUID
		for _, child := range f.children[node] {
			if _, seen := visited[child]; seen {
				if onCycle != nil {
					onCycle(child)
				}
				continue
			}
			visited[child] = struct{}{}
			block = append(block, child)
			out = append(out, f.byID[child])
		}
		if len(block) > 0 {
			stack = append(stack, frame{nodes: block})
		}
	}

	expand(root)
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.nodes) {
			stack = stack[:len(stack)-1]
			continue
		}
		node := top.nodes[top.next]
		top.next++
		expand(node)
	}
	return out
}

// AllExcept returns every indexed profile other than id, in supplied order.
func (f *Forest) AllExcept(id uuid.UUID) []types.Profile {
	out := make([]types.Profile, 0, len(f.order))
	for _, pid := range f.order {
		if pid == id {
			continue
		}
		out = append(out, f.byID[pid])
	}
	return out
}
