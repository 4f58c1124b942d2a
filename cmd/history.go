package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"harvest/internal/config"
	"harvest/internal/history"
	"harvest/internal/media"
	"harvest/internal/ui"
)

var (
	flagHistoryLimit int
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent downloads",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete the download history")
}

func historyRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if !cfg.History {
		fmt.Println("Download history is disabled in the config.")
		return nil
	}

	path, err := config.HistoryPath()
	if err != nil {
		return report("讀取下載紀錄", err)
	}
	store, err := history.Open(path)
	if err != nil {
		return report("讀取下載紀錄", err)
	}
	defer store.Close()

	if flagHistoryClear {
		if err := store.Clear(ctx); err != nil {
			return report("清除下載紀錄", err)
		}
		ui.Success(os.Stdout, "下載紀錄已清除")
		return nil
	}

	records, err := store.List(ctx, flagHistoryLimit)
	if err != nil {
		return report("讀取下載紀錄", err)
	}

	if flagJSON {
		if records == nil {
			records = []media.DownloadRecord{}
		}
		return printJSON(records)
	}

	if len(records) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	t := newTable(os.Stdout)
	t.AppendHeader([]any{"時間", "標題", "品質", "檔案"})
	for _, row := range history.FormatForDisplay(records, time.Now()) {
		t.AppendRow([]any{row[0], row[1], row[2], row[3]})
	}
	t.Render()
	return nil
}
