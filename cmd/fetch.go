package cmd

import (
	"fmt"

	"github.com/itsmostafa/codegrab/internal/assemble"
	"github.com/itsmostafa/codegrab/internal/doctree"
	"github.com/itsmostafa/codegrab/internal/fetch"
	"github.com/itsmostafa/codegrab/internal/ui"
	"github.com/spf13/cobra"
)

var fetchBaseDirectory string
var fetchCombinedDocument string
var fetchQuiet bool

var fetchCmd = &cobra.Command{
	Use:   "fetch <document-id>",
	Short: "Download a document into the local cache",
	Long: `Download every section of a document into the local cache.

Already-cached sections are skipped, so an interrupted download resumes
where it stopped. The run halts on the first fetch error and reports the
failing section; re-running the same command resumes from there.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		documentID, err := parseDocumentID(args[0])
		if err != nil {
			return err
		}

		e, err := newEnv(fetchBaseDirectory)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		info, err := e.documentInfo(ctx, documentID)
		if err != nil {
			return err
		}
		// Only the XML layout is reassemblable; other content types are
		// scanned-page bundles.
		if info.ContentType != "" && info.ContentType != "ICC XML" {
			return fmt.Errorf("document %d: unsupported content type %q (want \"ICC XML\")", documentID, info.ContentType)
		}

		roots, err := doctree.Build(ctx, e.client, e.store, documentID)
		if err != nil {
			return err
		}
		nodes := doctree.Flatten(roots)

		sections := 0
		for _, n := range nodes {
			if n.HasContent() {
				sections++
			}
		}
		title := info.Title
		if title == "" {
			title = fmt.Sprintf("Document %d", documentID)
		}
		if !fetchQuiet {
			ui.FormatHeader(out, documentID, title, sections)
		}

		progress := out
		if fetchQuiet {
			progress = nil
		}
		res, err := fetch.Run(ctx, fetch.Config{
			DocumentID: documentID,
			Client:     e.client,
			Store:      e.store,
			Output:     progress,
		}, nodes)
		if err != nil {
			ui.FormatFailure(cmd.ErrOrStderr(), err)
			return fmt.Errorf("download halted, re-run to resume: %w", err)
		}
		if !fetchQuiet {
			ui.FormatSummary(out, res.Fetched, res.Skipped)
		}

		if fetchCombinedDocument != "" {
			data, err := assemble.Assemble(documentID, title, nodes, e.store)
			if err != nil {
				return err
			}
			if err := assemble.WriteFile(fetchCombinedDocument, data); err != nil {
				return err
			}
			if !fetchQuiet {
				ui.FormatAssembled(out, fetchCombinedDocument, len(data))
			}
		}

		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchBaseDirectory, "base-directory", ".",
		"Directory to download into; API responses are cached under <base-directory>/api/")
	fetchCmd.Flags().StringVarP(&fetchCombinedDocument, "combined-document", "c", "",
		"Also write the combined offline HTML document to this path")
	fetchCmd.Flags().BoolVarP(&fetchQuiet, "quiet", "q", false,
		"Suppress progress output")
	rootCmd.AddCommand(fetchCmd)
}
