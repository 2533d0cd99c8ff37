package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
	"github.com/02loveslollipop/blume-airquality-viewer/services/watcher/internal/utils"
)

var (
	crawlFrom  string
	crawlTo    string
	crawlDelay time.Duration
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Fetch and parse every day in a date range",
	Long: `Walk the days from --from to --to in order. Pages already stored are
only downloaded again while they are younger than REFETCH_WINDOW; every
page is parsed. A failing day is logged and the crawl continues.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now().UTC()
		from, err := utils.ParseDay(crawlFrom, now)
		if err != nil {
			return err
		}
		to, err := utils.ParseDay(crawlTo, now)
		if err != nil {
			return err
		}
		days := utils.DayCount(from, to)
		if days == 0 {
			return fmt.Errorf("--to %s is before --from %s", to.Format(models.DateLayout), from.Format(models.DateLayout))
		}

		delay := cfg.CrawlDelay
		if cmd.Flags().Changed("delay") {
			delay = crawlDelay
		}

		logger.Info("crawl started", "from", from.Format(models.DateLayout), "to", to.Format(models.DateLayout), "days", days, "delay", delay)
		sum, err := svc.Crawl(cmd.Context(), from, to, delay)
		utils.PrintCrawl(os.Stdout, from, to, sum)
		return err
	},
}

func init() {
	crawlCmd.Flags().StringVar(&crawlFrom, "from", utils.FirstDay.Format(models.DateLayout), "first day (YYYY-MM-DD, YYYYMMDD, today, yesterday)")
	crawlCmd.Flags().StringVar(&crawlTo, "to", "today", "last day, inclusive")
	crawlCmd.Flags().DurationVar(&crawlDelay, "delay", time.Second, "pause between downloads (default CRAWL_DELAY)")
}
