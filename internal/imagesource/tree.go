// Package imagesource validates specular reflection paths by mirror-image construction.
package imagesource

import "sort"

// PathElement is one reflection of a traced ray: the scene triangle it hit and
// whether the receiver was visible from the hit point.
type PathElement struct {
	Index   uint32 `json:"index"`
	Visible bool   `json:"visible"`
}

// TreeNode is a reflection with every continuation seen after it.
type TreeNode struct {
	Item     PathElement
	Branches []*TreeNode // sorted by Item.Index
}

// Tree merges reflection sequences sharing a prefix.
type Tree struct {
	Branches []*TreeNode
}

// BuildTree merges every path into a fresh tree.
func BuildTree(paths [][]PathElement) *Tree {
	t := &Tree{}
	for _, p := range paths {
		t.AddPath(p)
	}
	return t
}

// AddPath inserts path; an element already present at that position keeps
// its children and becomes visible if either copy is.
func (t *Tree) AddPath(path []PathElement) {
	level := &t.Branches
	for _, e := range path {
		n := insertBranch(level, e)
		level = &n.Branches
	}
}

func insertBranch(level *[]*TreeNode, e PathElement) *TreeNode {
	branches := *level
	i := sort.Search(len(branches), func(i int) bool { return branches[i].Item.Index >= e.Index })
	if i < len(branches) && branches[i].Item.Index == e.Index {
		branches[i].Item.Visible = branches[i].Item.Visible || e.Visible
		return branches[i]
	}
	n := &TreeNode{Item: e}
	branches = append(branches, nil)
	copy(branches[i+1:], branches[i:])
	branches[i] = n
	*level = branches
	return n
}

// Len counts tree nodes.
func (t *Tree) Len() int {
	count := 0
	stack := append([]*TreeNode(nil), t.Branches...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, n.Branches...)
	}
	return count
}
