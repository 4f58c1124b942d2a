package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"harvest/internal/httputil"
	"harvest/internal/ilearning"
	"harvest/internal/ui"
)

var ilearningCmd = &cobra.Command{
	Use:   "ilearning",
	Short: "List the courses on your NCHU iLearning dashboard",
	Long: `Ilearning logs in to NCHU iLearning and lists the courses on the dashboard.
The captcha image is saved to disk and you are asked to type it in.`,
	Args: cobra.NoArgs,
	RunE: ilearningRun,
}

func ilearningRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	prompter := ui.New()

	creds, err := credentials(ctx, prompter)
	if err != nil {
		return report("讀取帳號密碼", err)
	}

	client, err := httputil.NewClient(httputil.Options{UserAgent: cfg.UserAgent, Cookies: true})
	if err != nil {
		return report("初始化", err)
	}

	solver := ilearning.CaptchaSolverFunc(func(ctx context.Context, path string, _ []byte) (string, error) {
		return prompter.Input(ctx, fmt.Sprintf("請開啟 %s 並輸入驗證碼", path))
	})
	lms := ilearning.NewClient(client, cfg.ILearning.LoginURL, cfg.ILearning.CaptchaFile, solver, logger)

	list, err := lms.Courses(ctx, creds.Username, creds.Password)
	if err != nil {
		return report("登入 iLearning", err)
	}

	if flagJSON {
		if list == nil {
			list = []ilearning.Course{}
		}
		return printJSON(list)
	}

	if len(list) == 0 {
		fmt.Println("儀表板上沒有課程")
		return nil
	}

	t := newTable(os.Stdout)
	t.AppendHeader([]any{"#", "課程", "說明"})
	for i, c := range list {
		t.AppendRow([]any{i + 1, c.Label, c.Hint})
	}
	t.Render()
	return nil
}
