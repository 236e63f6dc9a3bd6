// Package manifest tracks the tree of files one save operation has
// generated. The saver owns the canonical tree; each toolchain exporter
// works on its own deep copy so none of them can corrupt what the next
// one sees.
package manifest

import (
	"path/filepath"
	"slices"
	"strings"
)

// Node is a file or subgroup entry. Files carry a resolved path; groups
// carry children. A group never holds two entries for the same path.
type Node struct {
	name     string
	path     string
	group    bool
	parent   *Node
	children []*Node
}

func (n *Node) root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// NewGroup creates an empty named group
func NewGroup(name string) *Node {
	return &Node{name: name, group: true}
}

func (n *Node) Name() string     { return n.name }
func (n *Node) Path() string     { return n.path }
func (n *Node) IsGroup() bool    { return n.group }
func (n *Node) NumChildren() int { return len(n.children) }

func (n *Node) Child(i int) *Node { return n.children[i] }

// FindFile returns the entry for a resolved file path, searching subgroups
func (n *Node) FindFile(path string) *Node {
	path = filepath.Clean(path)
	for _, c := range n.children {
		if c.group {
			if found := c.FindFile(path); found != nil {
				return found
			}
		} else if c.path == path {
			return c
		}
	}
	return nil
}

// AddFile inserts a file entry into this group. Inserting a path that is
// already anywhere in the tree is a no-op that returns the existing entry.
func (n *Node) AddFile(path string) *Node {
	if !n.group {
		panic("manifest: AddFile on a file node")
	}
	path = filepath.Clean(path)
	if existing := n.root().FindFile(path); existing != nil {
		return existing
	}

	file := &Node{name: filepath.Base(path), path: path, parent: n}
	n.children = append(n.children, file)
	return file
}

// AddGroup returns the named child group, creating it if absent
func (n *Node) AddGroup(name string) *Node {
	if !n.group {
		panic("manifest: AddGroup on a file node")
	}
	for _, c := range n.children {
		if c.group && c.name == name {
			return c
		}
	}
	g := &Node{name: name, group: true, parent: n}
	n.children = append(n.children, g)
	return g
}

// SortRecursively orders every group's children alphabetically
func (n *Node) SortRecursively() {
	slices.SortStableFunc(n.children, func(a, b *Node) int {
		return strings.Compare(strings.ToLower(a.name), strings.ToLower(b.name))
	})
	for _, c := range n.children {
		if c.group {
			c.SortRecursively()
		}
	}
}

// Clone deep-copies the tree; the copy shares no substructure with the
// original
func (n *Node) Clone() *Node {
	c := &Node{name: n.name, path: n.path, group: n.group}
	if len(n.children) > 0 {
		c.children = make([]*Node, len(n.children))
		for i, child := range n.children {
			cc := child.Clone()
			cc.parent = c
			c.children[i] = cc
		}
	}
	return c
}

// Files returns every file path in the tree, depth-first
func (n *Node) Files() []string {
	var paths []string
	for _, c := range n.children {
		if c.group {
			paths = append(paths, c.Files()...)
		} else {
			paths = append(paths, c.path)
		}
	}
	return paths
}
