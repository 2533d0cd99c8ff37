package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/02loveslollipop/blume-airquality-viewer/services/watcher/internal/utils"
)

var reparseCmd = &cobra.Command{
	Use:   "reparse",
	Short: "Parse every stored page again",
	Long: `Run the table parser over all stored pages. Existing measurements are
left untouched, so running it twice adds nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := svc.Reparse(cmd.Context())
		utils.PrintStats(os.Stdout, stats)
		return err
	},
}
