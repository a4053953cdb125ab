package cmd

import (
	"fmt"

	"github.com/itsmostafa/codegrab/internal/doctree"
	"github.com/spf13/cobra"
)

var tocBaseDirectory string

var tocCmd = &cobra.Command{
	Use:   "toc <document-id>",
	Short: "Print a document's table of contents as a tree",
	Long: `Print a document's table of contents as a tree.

The table of contents is read from the local cache when present; otherwise
it is fetched once and cached, so subsequent invocations are offline.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		documentID, err := parseDocumentID(args[0])
		if err != nil {
			return err
		}

		e, err := newEnv(tocBaseDirectory)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		info, err := e.documentInfo(ctx, documentID)
		if err != nil {
			return err
		}
		title := info.Title
		if title == "" {
			title = fmt.Sprintf("Document %d", documentID)
		}

		roots, err := doctree.Build(ctx, e.client, e.store, documentID)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), doctree.Render(title, roots))
		return nil
	},
}

func init() {
	tocCmd.Flags().StringVar(&tocBaseDirectory, "base-directory", ".",
		"Directory holding the local cache")
	rootCmd.AddCommand(tocCmd)
}
