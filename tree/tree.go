// Package tree implements Model, a generic N-ary aggregation tree used to
// build the hierarchical combat statistic tables (actor -> pet group -> pet
// -> ability -> target, and the mirrored incoming direction). Nodes live in
// a flat arena addressed by integer index rather than parent pointers, so a
// fully built tree contains no reference cycles and can be walked or
// garbage collected without special care — the same shape the reference
// weighted-tree builder uses, adapted here for real-valued roll-up
// arithmetic instead of a rendering payload.
package tree

import "github.com/STOCD/OSCR/oscrerr"

// Model is a generic rooted tree. T is the per-node payload type (e.g. a
// damage or heal row); callers attach whatever aggregate fields T needs and
// drive roll-up with Rollup.
type Model[T any] struct {
	nodes []node[T]
	// index maps model-wide unique ids (registered via GetOrInsertIndexed)
	// to node indices, independent of where in the tree the node sits.
	index map[string]int
}

type node[T any] struct {
	key      string
	parent   int
	children []int
	data     T
}

// noParent marks the root node, whose index is always 0 once created.
const noParent = -1

// New creates an empty Model with a root node holding the zero value of T.
func New[T any]() *Model[T] {
	m := &Model[T]{index: map[string]int{}}
	m.nodes = append(m.nodes, node[T]{parent: noParent})
	return m
}

// Root returns the index of the tree's root node.
func (m *Model[T]) Root() int { return 0 }

// Len returns the total number of nodes, including the root.
func (m *Model[T]) Len() int { return len(m.nodes) }

// Children returns the child indices of a node, in insertion order.
func (m *Model[T]) Children(idx int) []int { return m.nodes[idx].children }

// Parent returns the parent index of a node, or -1 for the root.
func (m *Model[T]) Parent(idx int) int { return m.nodes[idx].parent }

// Key returns the key a node was inserted under (empty for the root).
func (m *Model[T]) Key(idx int) string { return m.nodes[idx].key }

// Data returns a node's payload.
func (m *Model[T]) Data(idx int) T { return m.nodes[idx].data }

// SetData replaces a node's payload.
func (m *Model[T]) SetData(idx int, data T) { m.nodes[idx].data = data }

// GetOrInsert returns the existing child of parent keyed by key, or creates
// one with the payload from init and returns it, with created=true.
// Insertion is idempotent: requesting the same (parent, key) pair again
// always yields the same node index.
func (m *Model[T]) GetOrInsert(parent int, key string, init func() T) (idx int, created bool) {
	for _, c := range m.nodes[parent].children {
		if m.nodes[c].key == key {
			return c, false
		}
	}
	var data T
	if init != nil {
		data = init()
	}
	idx = len(m.nodes)
	m.nodes = append(m.nodes, node[T]{key: key, parent: parent, data: data})
	m.nodes[parent].children = append(m.nodes[parent].children, idx)
	return idx, true
}

// Lookup returns the node registered under a model-wide unique id by
// GetOrInsertIndexed, regardless of which parent it sits under.
func (m *Model[T]) Lookup(id string) (idx int, ok bool) {
	idx, ok = m.index[id]
	return idx, ok
}

// GetOrInsertIndexed behaves like GetOrInsert but additionally registers the
// key in a model-wide id index, so the node can later be found with Lookup
// without knowing its parent. Re-inserting an indexed id under a different
// parent fails with DuplicateIdForDifferentParent.
func (m *Model[T]) GetOrInsertIndexed(parent int, id string, init func() T) (idx int, created bool, err error) {
	if existing, ok := m.index[id]; ok {
		if m.nodes[existing].parent != parent {
			return 0, false, &oscrerr.DuplicateIdForDifferentParent{
				ID:             id,
				ExistingParent: m.nodes[m.nodes[existing].parent].key,
				NewParent:      m.nodes[parent].key,
			}
		}
		return existing, false, nil
	}
	idx, created = m.GetOrInsert(parent, id, init)
	m.index[id] = idx
	return idx, created, nil
}

// Rollup walks the tree in post order (children before parents), invoking
// compute for every node with the indices of its already-processed
// children. compute is expected to mutate the node's payload in place via
// SetData to fold child aggregates upward.
func (m *Model[T]) Rollup(compute func(idx int, children []int)) {
	m.rollupFrom(m.Root(), compute)
}

func (m *Model[T]) rollupFrom(idx int, compute func(idx int, children []int)) {
	children := m.nodes[idx].children
	for _, c := range children {
		m.rollupFrom(c, compute)
	}
	compute(idx, children)
}

// Walk visits every node in pre order (parent before children).
func (m *Model[T]) Walk(visit func(idx int)) {
	m.walkFrom(m.Root(), visit)
}

func (m *Model[T]) walkFrom(idx int, visit func(idx int)) {
	visit(idx)
	for _, c := range m.nodes[idx].children {
		m.walkFrom(c, visit)
	}
}

// Leaves reports whether a node has no children.
func (m *Model[T]) Leaves(idx int) bool { return len(m.nodes[idx].children) == 0 }

// NewNode creates a detached node (no parent yet) holding data, returning
// its index. Use AddChild to attach it under a parent.
func (m *Model[T]) NewNode(key string, data T) int {
	idx := len(m.nodes)
	m.nodes = append(m.nodes, node[T]{key: key, parent: noParent, data: data})
	return idx
}

// AddChild attaches an existing (usually detached) node under parent,
// appending it to parent's children and updating the child's parent link.
func (m *Model[T]) AddChild(parent, child int) {
	m.nodes[child].parent = parent
	m.nodes[parent].children = append(m.nodes[parent].children, child)
}

// RemoveChild detaches child from parent's children list. The node itself
// remains in the arena (still reachable via its index) until re-attached
// elsewhere or left orphaned.
func (m *Model[T]) RemoveChild(parent, child int) {
	children := m.nodes[parent].children
	for i, c := range children {
		if c == child {
			m.nodes[parent].children = append(children[:i], children[i+1:]...)
			return
		}
	}
}

// ReplaceChildren overwrites a node's children list wholesale.
func (m *Model[T]) ReplaceChildren(idx int, children []int) {
	m.nodes[idx].children = children
	for _, c := range children {
		m.nodes[c].parent = idx
	}
}
