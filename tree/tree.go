// Package tree computes nested-set (modified preorder traversal) numbering
// for a forest described by parent links.
package tree

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrCycle         = errors.New("tree: parent chain contains a cycle")
	ErrUnknownParent = errors.New("tree: parent does not exist")
)

// Node carries the adjacency link plus the derived nested-set columns.
type Node struct {
	ID       uint
	ParentID *uint
	Name     string

	TreeID int
	Lft    int
	Rght   int
	Level  int
}

// Branch is a node with its ordered children, used for nested views.
type Branch struct {
	Node
	Children []*Branch
}

// Rebuild numbers every node of the forest. Roots are ordered by name and
// receive tree ids 1..n; siblings are visited in name order and each tree is
// numbered from 1. The result is returned in input order.
func Rebuild(nodes []Node) ([]Node, error) {
	index := make(map[uint]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}

	children := make(map[uint][]int)
	var roots []int
	for i, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, i)
			continue
		}
		if _, ok := index[*n.ParentID]; !ok {
			return nil, fmt.Errorf("%w: node %d references %d", ErrUnknownParent, n.ID, *n.ParentID)
		}
		children[*n.ParentID] = append(children[*n.ParentID], i)
	}

	byName := func(idx []int) {
		sort.SliceStable(idx, func(a, b int) bool {
			na, nb := nodes[idx[a]], nodes[idx[b]]
			if c := strings.Compare(na.Name, nb.Name); c != 0 {
				return c < 0
			}
			return na.ID < nb.ID
		})
	}
	byName(roots)
	for _, idx := range children {
		byName(idx)
	}

	out := make([]Node, len(nodes))
	copy(out, nodes)
	visited := make([]bool, len(nodes))

	type frame struct {
		idx  int
		next int
	}
	for t, root := range roots {
		counter := 1
		treeID := t + 1
		out[root].TreeID, out[root].Level, out[root].Lft = treeID, 0, counter
		visited[root] = true
		stack := []frame{{idx: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			kids := children[out[top.idx].ID]
			if top.next < len(kids) {
				child := kids[top.next]
				top.next++
				counter++
				out[child].TreeID = treeID
				out[child].Level = out[top.idx].Level + 1
				out[child].Lft = counter
				visited[child] = true
				stack = append(stack, frame{idx: child})
				continue
			}
			counter++
			out[top.idx].Rght = counter
			stack = stack[:len(stack)-1]
		}
	}

	for i, seen := range visited {
		if !seen {
			return nil, fmt.Errorf("%w: node %d", ErrCycle, nodes[i].ID)
		}
	}
	return out, nil
}

// IsDescendant reports whether a lies strictly inside b's subtree.
func IsDescendant(a, b Node) bool {
	return a.TreeID == b.TreeID && a.Lft > b.Lft && a.Rght < b.Rght
}

func DescendantCount(n Node) int {
	if n.Rght <= n.Lft {
		return 0
	}
	return (n.Rght - n.Lft - 1) / 2
}

func IsLeaf(n Node) bool { return n.Rght-n.Lft == 1 }

// Descendants returns the nodes inside n's subtree in preorder.
func Descendants(n Node, all []Node) []Node {
	var out []Node
	for _, c := range all {
		if IsDescendant(c, n) {
			out = append(out, c)
		}
	}
	sortPreorder(out)
	return out
}

// Ancestors returns the nodes whose subtree contains n, root first.
func Ancestors(n Node, all []Node) []Node {
	var out []Node
	for _, c := range all {
		if IsDescendant(n, c) {
			out = append(out, c)
		}
	}
	sortPreorder(out)
	return out
}

// Build nests numbered nodes under their parents, roots ordered by tree id.
func Build(nodes []Node) []*Branch {
	sorted := make([]Node, len(nodes))
	copy(sorted, nodes)
	sortPreorder(sorted)

	byID := make(map[uint]*Branch, len(sorted))
	var roots []*Branch
	for _, n := range sorted {
		b := &Branch{Node: n, Children: []*Branch{}}
		byID[n.ID] = b
		if n.ParentID == nil {
			roots = append(roots, b)
			continue
		}
		if parent, ok := byID[*n.ParentID]; ok {
			parent.Children = append(parent.Children, b)
		}
	}
	return roots
}

// Changed returns the nodes of after whose numbering differs from before.
func Changed(before, after []Node) []Node {
	prev := make(map[uint]Node, len(before))
	for _, n := range before {
		prev[n.ID] = n
	}
	var out []Node
	for _, n := range after {
		p, ok := prev[n.ID]
		if !ok || p.TreeID != n.TreeID || p.Lft != n.Lft || p.Rght != n.Rght || p.Level != n.Level {
			out = append(out, n)
		}
	}
	return out
}

func sortPreorder(nodes []Node) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].TreeID != nodes[j].TreeID {
			return nodes[i].TreeID < nodes[j].TreeID
		}
		return nodes[i].Lft < nodes[j].Lft
	})
}
