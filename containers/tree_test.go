package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tournament -> two rounds -> two groups each
func buildTree(t *testing.T) (*Tree, NodeID, []NodeID, []NodeID) {
	t.Helper()
	tree := NewTree()
	root, err := tree.Add(0)
	require.NoError(t, err)

	var rounds, groups []NodeID
	for i := 0; i < 2; i++ {
		r, err := tree.Add(root)
		require.NoError(t, err)
		rounds = append(rounds, r)
		for j := 0; j < 2; j++ {
			g, err := tree.Add(r)
			require.NoError(t, err)
			groups = append(groups, g)
		}
	}
	return tree, root, rounds, groups
}

func TestIncrementPropagatesToWholeTree(t *testing.T) {
	tree, root, rounds, groups := buildTree(t)

	got := tree.Increment(groups[0])
	assert.Equal(t, 1, got)

	all := append([]NodeID{root}, rounds...)
	all = append(all, groups...)
	for _, id := range all {
		assert.Equal(t, 2, tree.AutoIncrement(id), "node %d", id)
	}

	tree.Increment(groups[3])
	tree.Increment(rounds[0])
	for _, id := range all {
		assert.Equal(t, 4, tree.AutoIncrement(id), "node %d", id)
	}
}

func TestSetAutoIncrementOnlyPropagatesDown(t *testing.T) {
	tree, root, rounds, groups := buildTree(t)

	tree.SetAutoIncrement(rounds[1], 10)

	assert.Equal(t, 1, tree.AutoIncrement(root))
	assert.Equal(t, 1, tree.AutoIncrement(rounds[0]))
	assert.Equal(t, 1, tree.AutoIncrement(groups[0]))
	assert.Equal(t, 10, tree.AutoIncrement(rounds[1]))
	assert.Equal(t, 10, tree.AutoIncrement(groups[2]))
	assert.Equal(t, 10, tree.FirstIncrement(groups[3]))
}

func TestSetAutoIncrementThenIncrementYieldsSequentialIDs(t *testing.T) {
	tree := NewTree()
	group := tree.MustAdd(0)
	tree.SetAutoIncrement(group, 7)

	var ids []int
	for i := 0; i < 4; i++ {
		ids = append(ids, tree.Increment(group))
	}
	assert.Equal(t, []int{7, 8, 9, 10}, ids)
}

func TestResetRestoresFirstValue(t *testing.T) {
	tree, root, rounds, groups := buildTree(t)
	tree.SetAutoIncrement(root, 5)

	for i := 0; i < 3; i++ {
		tree.Increment(groups[1])
	}
	require.Equal(t, 8, tree.AutoIncrement(rounds[1]))

	tree.Reset(groups[2])
	for _, id := range append(append([]NodeID{root}, rounds...), groups...) {
		assert.Equal(t, 5, tree.AutoIncrement(id), "node %d", id)
	}
}

func TestNewChildInheritsParentCounter(t *testing.T) {
	tree := NewTree()
	root := tree.MustAdd(0)
	tree.SetAutoIncrement(root, 3)
	tree.Increment(root)

	child := tree.MustAdd(root)
	assert.Equal(t, 4, tree.AutoIncrement(child))
	assert.Equal(t, 3, tree.FirstIncrement(child))
	assert.Equal(t, root, tree.Parent(child))
	assert.Equal(t, []NodeID{child}, tree.Children(root))
}

func TestAddUnknownParent(t *testing.T) {
	tree := NewTree()
	_, err := tree.Add(42)
	assert.ErrorIs(t, err, ErrUnknownNode)
}
