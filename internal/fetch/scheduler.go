// Package fetch drains a document's section list against the content store
// and the API client.
package fetch

import (
	"context"
	"fmt"
	"io"

	"github.com/itsmostafa/codegrab/internal/doctree"
	"github.com/itsmostafa/codegrab/internal/icc"
	"github.com/itsmostafa/codegrab/internal/store"
	"github.com/itsmostafa/codegrab/internal/ui"
)

// NodeError reports the section a run stopped at and why.
type NodeError struct {
	Node *doctree.Node
	Key  string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("section %q (%s): %v", e.Node.Title, e.Key, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// Config holds a scheduler run's collaborators.
type Config struct {
	DocumentID int
	Client     *icc.Client
	Store      *store.Store
	Output     io.Writer // nil silences progress output
}

// Result summarizes a completed run.
type Result struct {
	Fetched int // sections fetched over the network this run
	Skipped int // sections already cached, no network call issued
}

// Run walks nodes in document order and ensures every content-bearing
// section is cached. Already-cached sections are skipped without touching
// the network or the rate budget. The store write is the last step per
// section, so an interrupted run leaves no partial entry and a re-run
// resumes at the first uncached section.
//
// Fail-fast: the first error stops the run and is returned as a *NodeError
// naming the failing section. No retries happen here; the user fixes the
// problem and re-runs.
func Run(ctx context.Context, cfg Config, nodes []*doctree.Node) (Result, error) {
	var res Result

	var sections []*doctree.Node
	for _, n := range nodes {
		if n.HasContent() {
			sections = append(sections, n)
		}
	}
	total := len(sections)

	for i, n := range sections {
		key := doctree.FetchKey(cfg.DocumentID, n)

		if cfg.Store.Has(key) {
			res.Skipped++
			if cfg.Output != nil {
				ui.FormatSkip(cfg.Output, i+1, total, n.Title)
			}
			continue
		}

		if cfg.Output != nil {
			ui.FormatFetch(cfg.Output, i+1, total, n.Title)
		}
		_, raw, err := cfg.Client.Content(ctx, cfg.DocumentID, n.ID)
		if err != nil {
			return res, &NodeError{Node: n, Key: key, Err: err}
		}
		if err := cfg.Store.Write(key, raw); err != nil {
			return res, &NodeError{Node: n, Key: key, Err: err}
		}
		res.Fetched++
	}

	return res, nil
}
