// Package containers keeps the shared game id counters of a round/group hierarchy.
//
// Nodes live in an arena addressed by NodeID; parent and child links are ids, never
// pointers, so a Tree can be walked in either direction without ownership cycles.
package containers

import (
	"errors"
	"fmt"
)

// NodeID addresses a node inside a Tree. The zero value means "no node".
type NodeID int

const noNode NodeID = 0

var ErrUnknownNode = errors.New("unknown container node")

type node struct {
	parent         NodeID
	children       []NodeID
	autoIncrement  int
	firstIncrement int
}

// Tree is an arena of counter nodes. It is not safe for concurrent use.
type Tree struct {
	nodes  map[NodeID]*node
	nextID NodeID
}

func NewTree() *Tree {
	return &Tree{nodes: make(map[NodeID]*node)}
}

// Add creates a node under parent (0 creates a root). A child starts with the parent's
// live and first counter values so the subtree stays in step.
func (t *Tree) Add(parent NodeID) (NodeID, error) {
	n := &node{autoIncrement: 1, firstIncrement: 1}
	if parent != noNode {
		p, ok := t.nodes[parent]
		if !ok {
			return noNode, fmt.Errorf("%w: parent %d", ErrUnknownNode, parent)
		}
		n.parent = parent
		n.autoIncrement = p.autoIncrement
		n.firstIncrement = p.firstIncrement
	}
	t.nextID++
	id := t.nextID
	t.nodes[id] = n
	if parent != noNode {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	return id, nil
}

// MustAdd is Add for callers that created parent themselves.
func (t *Tree) MustAdd(parent NodeID) NodeID {
	id, err := t.Add(parent)
	if err != nil {
		panic(err)
	}
	return id
}

func (t *Tree) get(id NodeID) *node {
	n, ok := t.nodes[id]
	if !ok {
		panic(fmt.Sprintf("containers: node %d does not exist", id))
	}
	return n
}

func (t *Tree) Parent(id NodeID) NodeID {
	return t.get(id).parent
}

func (t *Tree) Children(id NodeID) []NodeID {
	children := t.get(id).children
	out := make([]NodeID, len(children))
	copy(out, children)
	return out
}

func (t *Tree) AutoIncrement(id NodeID) int {
	return t.get(id).autoIncrement
}

func (t *Tree) FirstIncrement(id NodeID) int {
	return t.get(id).firstIncrement
}

// Increment consumes the current id of node and returns it. The bump propagates to the
// parent and to every child, skipping whichever neighbour triggered the call, so each
// node of the connected tree moves exactly once.
func (t *Tree) Increment(id NodeID) int {
	current := t.get(id).autoIncrement
	t.increment(id, noNode)
	return current
}

func (t *Tree) increment(id, sender NodeID) {
	n := t.get(id)
	n.autoIncrement++
	if n.parent != noNode && n.parent != sender {
		t.increment(n.parent, id)
	}
	for _, child := range n.children {
		if child != sender {
			t.increment(child, id)
		}
	}
}

// SetAutoIncrement sets both the live and the remembered first value of node and of its
// whole subtree. Ancestors are left untouched.
func (t *Tree) SetAutoIncrement(id NodeID, value int) {
	n := t.get(id)
	n.autoIncrement = value
	n.firstIncrement = value
	for _, child := range n.children {
		t.SetAutoIncrement(child, value)
	}
}

// Reset restores the live counter to the remembered first value, propagating like Increment.
func (t *Tree) Reset(id NodeID) {
	t.reset(id, noNode)
}

func (t *Tree) reset(id, sender NodeID) {
	n := t.get(id)
	n.autoIncrement = n.firstIncrement
	if n.parent != noNode && n.parent != sender {
		t.reset(n.parent, id)
	}
	for _, child := range n.children {
		if child != sender {
			t.reset(child, id)
		}
	}
}

// Len reports the number of nodes in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}
