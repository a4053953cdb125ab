package cmd

import (
	"fmt"

	"github.com/itsmostafa/codegrab/internal/assemble"
	"github.com/itsmostafa/codegrab/internal/doctree"
	"github.com/itsmostafa/codegrab/internal/icc"
	"github.com/itsmostafa/codegrab/internal/store"
	"github.com/itsmostafa/codegrab/internal/ui"
	"github.com/spf13/cobra"
)

var assembleBaseDirectory string
var assembleOutput string

var assembleCmd = &cobra.Command{
	Use:   "assemble <document-id>",
	Short: "Reassemble a fully cached document into one offline HTML file",
	Long: `Reassemble a fully cached document into one offline HTML file.

This command is entirely offline: it fails if the document's table of
contents or any of its sections is missing from the cache. Run fetch first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		documentID, err := parseDocumentID(args[0])
		if err != nil {
			return err
		}

		st, err := store.New(assembleBaseDirectory)
		if err != nil {
			return err
		}

		roots, err := doctree.BuildCached(st, documentID)
		if err != nil {
			return err
		}
		nodes := doctree.Flatten(roots)

		title := fmt.Sprintf("Document %d", documentID)
		if infoKey := icc.InfoPath(documentID); st.Has(infoKey) {
			raw, err := st.Read(infoKey)
			if err != nil {
				return err
			}
			info, err := icc.ParseInfo(infoKey, raw)
			if err != nil {
				return err
			}
			if info.Title != "" {
				title = info.Title
			}
		}

		data, err := assemble.Assemble(documentID, title, nodes, st)
		if err != nil {
			return err
		}

		output := assembleOutput
		if output == "" {
			output = fmt.Sprintf("document-%d.html", documentID)
		}
		if err := assemble.WriteFile(output, data); err != nil {
			return err
		}
		ui.FormatAssembled(cmd.OutOrStdout(), output, len(data))
		return nil
	},
}

func init() {
	assembleCmd.Flags().StringVar(&assembleBaseDirectory, "base-directory", ".",
		"Directory holding the local cache")
	assembleCmd.Flags().StringVarP(&assembleOutput, "output", "o", "",
		"Output path for the combined document (default document-<id>.html)")
	rootCmd.AddCommand(assembleCmd)
}
