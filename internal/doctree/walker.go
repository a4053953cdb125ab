package doctree

import (
	"context"
	"fmt"

	"github.com/itsmostafa/codegrab/internal/icc"
	"github.com/itsmostafa/codegrab/internal/store"
)

// Build reconstructs a document's table-of-contents tree. The TOC page is
// consulted in the store first; on a miss it is fetched through the client
// and cached, so repeat runs build the tree without network access.
//
// Expansion runs off an explicit worklist rather than recursion, so depth
// is bounded only by memory and the traversal stays inspectable. Entries
// with neither content nor children are kept as empty leaves so the tree
// structurally matches the published table of contents.
func Build(ctx context.Context, client *icc.Client, st *store.Store, documentID int) ([]*Node, error) {
	entries, err := loadTOC(ctx, client, st, documentID)
	if err != nil {
		return nil, err
	}
	return expand(entries), nil
}

// BuildCached is Build restricted to the store: it never touches the
// network and fails when the TOC page has not been cached yet.
func BuildCached(st *store.Store, documentID int) ([]*Node, error) {
	key := icc.TOCPath(documentID)
	raw, err := st.Read(key)
	if err != nil {
		return nil, fmt.Errorf("table of contents for document %d not cached: %w", documentID, err)
	}
	entries, err := icc.ParseTOC(key, raw)
	if err != nil {
		return nil, err
	}
	return expand(entries), nil
}

func loadTOC(ctx context.Context, client *icc.Client, st *store.Store, documentID int) ([]icc.TOCEntry, error) {
	key := icc.TOCPath(documentID)
	if st.Has(key) {
		raw, err := st.Read(key)
		if err != nil {
			return nil, err
		}
		return icc.ParseTOC(key, raw)
	}

	entries, raw, err := client.TOC(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := st.Write(key, raw); err != nil {
		return nil, err
	}
	return entries, nil
}

// expand turns nested TOC entries into Nodes via a FIFO worklist. Children
// of one parent are enqueued consecutively, so appends land in ordinal
// order at every level.
func expand(entries []icc.TOCEntry) []*Node {
	type item struct {
		entry   icc.TOCEntry
		parent  *Node
		ordinal int
		depth   int
	}

	var roots []*Node
	var queue []item
	for i, e := range entries {
		queue = append(queue, item{entry: e, ordinal: i})
	}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		n := &Node{
			ID:      it.entry.ContentID,
			Title:   it.entry.DisplayTitle(),
			Ordinal: it.ordinal,
			Depth:   it.depth,
		}
		if it.parent == nil {
			roots = append(roots, n)
		} else {
			it.parent.Children = append(it.parent.Children, n)
		}

		for j, child := range it.entry.SubSections {
			queue = append(queue, item{entry: child, parent: n, ordinal: j, depth: it.depth + 1})
		}
	}
	return roots
}
