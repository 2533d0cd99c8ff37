package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/02loveslollipop/blume-airquality-viewer/services/watcher/internal/utils"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <date>",
	Short: "Download one day again and parse it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := utils.ParseDay(args[0], time.Now())
		if err != nil {
			return err
		}

		page, stats, err := svc.Download(cmd.Context(), day)
		if err != nil {
			return err
		}
		logger.Info("fetched", "url", page.URL, "id", page.ID)
		utils.PrintStats(os.Stdout, stats)
		return nil
	},
}
