package cmd

import (
	"fmt"
	"os"

	"github.com/itsmostafa/codegrab/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codegrab",
	Short: "Offline downloader for ICC building codes",
	Long: `codegrab mirrors publicly accessible building codes from the International
Code Council's content API for offline reading.

Documents are addressed by numerical document ID, which can be obtained from
the web interface URL like this:

  WEB_URL="https://codes.iccsafe.org/content/NCBC2018"
  curl $WEB_URL | grep documentid | tr -d ' a-z="'

Every API response is cached under <base-directory>/api/ mirroring the
upstream URL layout, so interrupted downloads resume where they stopped.`,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("codegrab %s\n", version.String()))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
