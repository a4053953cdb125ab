// Package assemble reassembles cached section fragments into a single
// self-contained offline HTML document.
package assemble

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/itsmostafa/codegrab/internal/doctree"
	"github.com/itsmostafa/codegrab/internal/icc"
	"github.com/itsmostafa/codegrab/internal/store"
)

// IncompleteDocumentError reports the first section missing from the store
// when assembly was attempted.
type IncompleteDocumentError struct {
	Node *doctree.Node
	Key  string
}

func (e *IncompleteDocumentError) Error() string {
	return fmt.Sprintf("document incomplete: section %q (%s) not cached", e.Node.Title, e.Key)
}

// Assemble renders the combined document for nodes (in document order,
// as returned by doctree.Flatten) from cached fragments only. Every
// content-bearing section must already be in the store; otherwise it fails
// with *IncompleteDocumentError naming the first missing one. Assembly
// never touches the network and a decode failure aborts the whole
// document — no best-effort partial output.
func Assemble(documentID int, title string, nodes []*doctree.Node, st *store.Store) ([]byte, error) {
	// Verify completeness before rendering anything.
	for _, n := range nodes {
		if !n.HasContent() {
			continue
		}
		key := doctree.FetchKey(documentID, n)
		if !st.Has(key) {
			return nil, &IncompleteDocumentError{Node: n, Key: key}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(title))
	buf.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&buf, "<h1>%s</h1>\n", html.EscapeString(title))

	for _, n := range nodes {
		fmt.Fprintf(&buf, "<section>\n<h%d>%s</h%d>\n",
			headingLevel(n.Depth), html.EscapeString(n.Title), headingLevel(n.Depth))

		if n.HasContent() {
			key := doctree.FetchKey(documentID, n)
			raw, err := st.Read(key)
			if err != nil {
				return nil, err
			}
			markup, err := icc.ParseContent(key, raw)
			if err != nil {
				return nil, err
			}
			normalized, err := normalizeFragment(markup)
			if err != nil {
				return nil, &icc.DecodeError{URL: key, Err: err}
			}
			buf.WriteString(normalized)
			buf.WriteString("\n")
		}

		buf.WriteString("</section>\n")
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// WriteFile writes the combined document atomically: temp file in the
// destination directory, then rename. The output path never holds a
// partially written document.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".combined-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// headingLevel maps a node depth to an HTML heading tag level. The h1 is
// reserved for the document title.
func headingLevel(depth int) int {
	level := depth + 2
	if level > 6 {
		level = 6
	}
	return level
}

// normalizeFragment reparses a tag-soup fragment and re-serializes it as
// well-formed HTML. The upstream fragments regularly omit closing tags;
// parsing them in a body context closes everything properly.
func normalizeFragment(fragment string) (string, error) {
	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	parsed, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for _, n := range parsed {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
