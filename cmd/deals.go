package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"harvest/internal/deals"
	"harvest/internal/httputil"
	"harvest/internal/ui"
)

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "List the current PChome promotions",
	Args:  cobra.NoArgs,
	RunE:  dealsRun,
}

func dealsRun(cmd *cobra.Command, args []string) error {
	client, err := httputil.NewClient(httputil.Options{UserAgent: cfg.UserAgent})
	if err != nil {
		return report("初始化", err)
	}

	list, err := deals.Fetch(cmd.Context(), client, cfg.Deals.URL)
	if err != nil {
		return report("取得特價資訊", err)
	}
	logger.Debug("deals fetched", zap.Int("count", len(list)))

	if flagJSON {
		if list == nil {
			list = []deals.Deal{}
		}
		return printJSON(list)
	}

	if len(list) == 0 {
		fmt.Println("目前沒有特價活動")
		return nil
	}

	ui.Heading(os.Stdout, "PChome 特價活動")
	t := newTable(os.Stdout)
	t.AppendHeader([]any{"#", "活動", "日期", "連結"})
	for i, d := range list {
		t.AppendRow([]any{i + 1, d.Text, d.Date, d.Link})
	}
	t.Render()
	return nil
}
