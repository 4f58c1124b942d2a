package cmd

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"harvest/internal/config"
	"harvest/internal/courses"
	"harvest/internal/httputil"
	"harvest/internal/ui"
)

var coursesCmd = &cobra.Command{
	Use:   "courses [codes...]",
	Short: "Save NCHU department course tables as JSON",
	Long: `Courses logs in to the NCHU portal and saves the course tables of the
given departments (all departments when none are given) as JSON files.
Credentials are read from HARVEST_USERNAME and HARVEST_PASSWORD, or asked for.`,
	RunE: coursesRun,
}

func coursesRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	prompter := ui.New()

	depts := courses.Departments
	if len(args) > 0 {
		codes := make([]string, len(args))
		for i, a := range args {
			codes[i] = strings.ToUpper(strings.TrimSpace(a))
		}
		var unknown []string
		depts, unknown = courses.Lookup(codes)
		if len(unknown) > 0 {
			ui.Warn(os.Stderr, "未知的系所代碼: %s", strings.Join(unknown, ", "))
		}
		if len(depts) == 0 {
			return nil
		}
	}

	creds, err := credentials(ctx, prompter)
	if err != nil {
		return report("讀取帳號密碼", err)
	}

	dir, err := cfg.ExpandCoursesDir()
	if err != nil {
		return report("解析輸出目錄", err)
	}
	w, err := courses.NewWriter(dir)
	if err != nil {
		return report("建立輸出目錄", err)
	}

	client, err := httputil.NewClient(httputil.Options{
		UserAgent:  cfg.UserAgent,
		Cookies:    true,
		Cloudflare: true,
	})
	if err != nil {
		return report("初始化", err)
	}

	scraper := courses.NewScraper(client, courses.Options{
		LoginURL:  cfg.Courses.LoginURL,
		CourseURL: cfg.Courses.CourseURL,
		Delay:     cfg.Courses.Delay.Duration,
	}, logger)

	if err := scraper.Login(ctx, creds.Username, creds.Password); err != nil {
		return report("登入", err)
	}
	ui.Success(os.Stderr, "登入成功")

	res, err := scraper.Crawl(ctx, depts, w)
	if err != nil {
		return report("爬取課程", err)
	}

	if flagJSON {
		return printJSON(res.Courses)
	}

	t := newTable(os.Stdout)
	t.AppendHeader([]any{"代碼", "系所", "課程數"})
	total := 0
	for _, d := range depts {
		n := len(res.Courses[d.Code])
		total += n
		t.AppendRow([]any{d.Code, d.Name, n})
	}
	t.AppendFooter([]any{"", "合計", total})
	t.Render()

	if len(res.Failed) > 0 {
		sort.Strings(res.Failed)
		ui.Warn(os.Stderr, "以下系所擷取失敗: %s", strings.Join(res.Failed, ", "))
	}
	ui.Success(os.Stdout, "已儲存至 %s", w.Dir())
	return nil
}

// credentials reads the portal login from the environment and asks for
// whatever is missing.
func credentials(ctx context.Context, p *ui.Prompter) (config.Credentials, error) {
	creds, err := config.LoadCredentials()
	if err != nil {
		return creds, err
	}
	if creds.Username == "" {
		if creds.Username, err = p.Input(ctx, "帳號"); err != nil {
			return creds, err
		}
	}
	if creds.Password == "" {
		if creds.Password, err = p.Password(ctx, "密碼"); err != nil {
			return creds, err
		}
	}
	logger.Debug("credentials loaded", zap.String("username", creds.Username))
	return creds, nil
}
