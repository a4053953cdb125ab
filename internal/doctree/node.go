// Package doctree models a document's table of contents as an ordered tree
// of nodes and builds that tree from the API, cache-first.
package doctree

import (
	"github.com/disiqueira/gotree/v3"

	"github.com/itsmostafa/codegrab/internal/icc"
)

// Node is one entry in a document's table-of-contents tree. Sibling order
// is the API's order and is the sole source of document order everywhere
// downstream.
type Node struct {
	ID       int    // API-assigned content ID; 0 when the entry has no fragment
	Title    string
	Ordinal  int // position among siblings, 0-based
	Depth    int // root entries are depth 0
	Children []*Node
}

// HasContent reports whether the node has a markup fragment to fetch.
// Container nodes can carry content too; only ID-less entries do not.
func (n *Node) HasContent() bool { return n.ID != 0 }

// Flatten returns the tree in document reading order: depth-first, each
// node before its children, siblings in ordinal order. A's entire subtree
// precedes B for siblings [A, B].
func Flatten(roots []*Node) []*Node {
	var out []*Node
	var visit func(*Node)
	visit = func(n *Node) {
		out = append(out, n)
		for _, child := range n.Children {
			visit(child)
		}
	}
	for _, root := range roots {
		visit(root)
	}
	return out
}

// FetchKey returns the content store key addressing a node's cached markup
// fragment. It is only meaningful for nodes with content.
func FetchKey(documentID int, n *Node) string {
	return icc.ContentPath(documentID, n.ID)
}

// Render returns the tree as printable ASCII art rooted at title.
func Render(title string, roots []*Node) string {
	t := gotree.New(title)
	var add func(gotree.Tree, *Node)
	add = func(parent gotree.Tree, n *Node) {
		label := n.Title
		if label == "" {
			label = "(untitled)"
		}
		branch := parent.Add(label)
		for _, child := range n.Children {
			add(branch, child)
		}
	}
	for _, root := range roots {
		add(t, root)
	}
	return t.Print()
}
