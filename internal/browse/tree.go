// Package browse exposes a directory tree one level at a time. Only directories are listed.
package browse

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Node is one directory in the tree.
type Node struct {
	Path     string
	Name     string
	Depth    int
	Expanded bool
	Children []*Node // nil until the node is expanded
	Parent   *Node

	hasSubdirs bool
}

// HasSubdirs reports whether dir contains at least one directory. Unreadable directories have none.
func HasSubdirs(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if isDir(dir, e) {
			return true
		}
	}
	return false
}

// ListSubdirs returns the directories directly under dir, sorted by name.
func ListSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if isDir(dir, e) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// isDir follows symlinks so linked directories appear in the tree.
func isDir(dir string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.IsDir()
}

// NewRoot returns the unexpanded root node for dir.
func NewRoot(dir string) (*Node, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}
	return &Node{Path: abs, Name: filepath.Base(abs), hasSubdirs: HasSubdirs(abs)}, nil
}

// Expandable reports whether the node has subdirectories.
func (n *Node) Expandable() bool { return n.hasSubdirs }

// Leaf reports whether the node has no subdirectories. Only leaves are indexed.
func (n *Node) Leaf() bool { return !n.hasSubdirs }

// Expand loads the node's children on first call and marks it expanded.
func (n *Node) Expand() error {
	if !n.hasSubdirs {
		return nil
	}
	if n.Children == nil {
		names, err := ListSubdirs(n.Path)
		if err != nil {
			return err
		}
		n.Children = make([]*Node, 0, len(names))
		for _, name := range names {
			p := filepath.Join(n.Path, name)
			n.Children = append(n.Children, &Node{
				Path:       p,
				Name:       name,
				Depth:      n.Depth + 1,
				Parent:     n,
				hasSubdirs: HasSubdirs(p),
			})
		}
	}
	n.Expanded = true
	return nil
}

// Collapse hides the node's children. They stay loaded.
func (n *Node) Collapse() { n.Expanded = false }

// Toggle expands a collapsed node or collapses an expanded one.
func (n *Node) Toggle() error {
	if n.Expanded {
		n.Collapse()
		return nil
	}
	return n.Expand()
}

// Visible returns the nodes shown when the tree is rendered from n, depth first.
func (n *Node) Visible() []*Node {
	out := []*Node{n}
	if n.Expanded {
		for _, c := range n.Children {
			out = append(out, c.Visible()...)
		}
	}
	return out
}
