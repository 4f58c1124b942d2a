package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"harvest/internal/config"
	"harvest/internal/history"
	"harvest/internal/httputil"
	"harvest/internal/media"
	"harvest/internal/tools"
	"harvest/internal/ui"
	"harvest/internal/youtube"
)

var (
	flagQuality string
	flagName    string
	flagLimit   int
)

var ytCmd = &cobra.Command{
	Use:   "yt [url]",
	Short: "Look up and download a YouTube video interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE:  ytRun,
}

var ytInfoCmd = &cobra.Command{
	Use:   "info <url>",
	Short: "Show video metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  ytInfoRun,
}

var ytDownloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download a video",
	Args:  cobra.ExactArgs(1),
	RunE:  ytDownloadRun,
}

var ytSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for videos",
	Args:  cobra.MinimumNArgs(1),
	RunE:  ytSearchRun,
}

func init() {
	ytDownloadCmd.Flags().StringVarP(&flagQuality, "quality", "q", "", "Quality: best | worst | audio | <height>p (default from config)")
	ytDownloadCmd.Flags().StringVarP(&flagName, "name", "n", "", "File name to use instead of the video title")
	ytSearchCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "Maximum number of results (default from config)")

	ytCmd.AddCommand(ytInfoCmd)
	ytCmd.AddCommand(ytDownloadCmd)
	ytCmd.AddCommand(ytSearchCmd)
}

// youtubeKit bundles the components one command run needs.
type youtubeKit struct {
	caps       tools.Capabilities
	client     *resty.Client
	backend    youtube.Backend
	fetcher    *youtube.Fetcher
	searcher   *youtube.Searcher
	downloader *youtube.Downloader
	store      *history.Store
}

func (k *youtubeKit) Close() {
	if k.store != nil {
		k.store.Close()
	}
}

// newYouTubeKit detects the external tools and wires the configured backend.
// A yt-dlp backend that is not installed leaves backend nil so lookups fall
// back to oEmbed.
func newYouTubeKit(ctx context.Context, cfg *config.Config, confirm youtube.Confirmer) (*youtubeKit, error) {
	caps := tools.Detect(ctx, cfg.FFmpegPath, cfg.YtDLPPath, logger)

	client, err := httputil.NewClient(httputil.Options{UserAgent: cfg.UserAgent})
	if err != nil {
		return nil, err
	}

	k := &youtubeKit{caps: caps, client: client}
	switch strings.ToLower(cfg.Backend) {
	case "native":
		// Stream downloads outlive the client's request timeout.
		streams := &http.Client{Transport: client.GetClient().Transport}
		k.backend = youtube.NewNative(streams, caps.FFmpegPath, logger)
	default:
		if caps.HasExtractor {
			k.backend = youtube.NewYtDLP(caps.YtDLPPath, caps.FFmpegPath, logger)
		}
	}
	if k.backend != nil {
		logger.Debug("using backend", zap.String("backend", k.backend.Name()))
	}

	embed := youtube.NewEmbedClient(client, youtube.DefaultOEmbedEndpoint)
	k.fetcher = youtube.NewFetcher(k.backend, embed, logger)
	k.searcher = youtube.NewSearcher(k.backend, client, embed, logger)
	k.downloader = youtube.NewDownloader(k.backend, caps, confirm, logger)

	if cfg.History {
		path, err := config.HistoryPath()
		if err == nil {
			k.store, err = history.Open(path)
		}
		if err != nil {
			logger.Warn("download history disabled", zap.Error(err))
		} else {
			k.downloader.WithRecorder(k.store)
		}
	}

	return k, nil
}

// ytRun is the interactive flow: harvest yt [url]
func ytRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	prompter := ui.New()

	kit, err := newYouTubeKit(ctx, cfg, prompter)
	if err != nil {
		return report("初始化", err)
	}
	defer kit.Close()

	var rawURL string
	if len(args) > 0 {
		rawURL = args[0]
	} else {
		rawURL, err = prompter.Input(ctx, "請輸入 YouTube 影片網址")
		if err != nil {
			return report("讀取網址", err)
		}
	}

	info, err := lookupInfo(ctx, kit.fetcher, rawURL)
	if err != nil {
		return report("取得影片資訊", err)
	}
	if info != nil {
		printInfo(info)
	}

	q, err := chooseQuality(ctx, prompter)
	if err != nil {
		return report("選擇品質", err)
	}
	logger.Debug("quality chosen", zap.Stringer("quality", q))

	return downloadAndPrint(ctx, kit, rawURL, q, "")
}

type infoSource interface {
	Info(ctx context.Context, rawURL string) (*media.Metadata, error)
}

// lookupInfo fetches metadata for the interactive flow. Only an unreadable
// URL or cancellation stops it; other failures are shown and yield nil so the
// download can still be attempted.
func lookupInfo(ctx context.Context, src infoSource, rawURL string) (*media.Metadata, error) {
	info, err := src.Info(ctx, rawURL)
	if err == nil {
		return info, nil
	}
	if errors.Is(err, youtube.ErrInvalidURL) || errors.Is(err, context.Canceled) {
		return nil, err
	}
	logger.Debug("metadata lookup failed", zap.String("url", rawURL), zap.Error(err))
	ui.Warn(os.Stderr, "無法取得影片資訊: %v", err)
	return nil, nil
}

// chooseQuality shows the preset menu. Anything but a listed number means best.
func chooseQuality(ctx context.Context, p *ui.Prompter) (media.Quality, error) {
	labels := make([]string, len(media.MenuPresets))
	for i, preset := range media.MenuPresets {
		labels[i] = preset.Label
	}

	if p.Interactive() {
		idx, err := p.Select(ctx, "選擇下載品質", labels)
		if err != nil {
			return media.Quality{}, err
		}
		return media.QualityForChoice(strconv.Itoa(idx + 1)), nil
	}

	for i, label := range labels {
		fmt.Fprintf(os.Stderr, "%d. %s\n", i+1, label)
	}
	choice, err := p.Input(ctx, fmt.Sprintf("請選擇 (1-%d)", len(labels)))
	if errors.Is(err, ui.ErrCancelled) {
		return media.Quality{}, err
	}
	return media.QualityForChoice(choice), nil
}

func ytInfoRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	kit, err := newYouTubeKit(ctx, cfg, nil)
	if err != nil {
		return report("初始化", err)
	}
	defer kit.Close()

	info, err := kit.fetcher.Info(ctx, args[0])
	if err != nil {
		return report("取得影片資訊", err)
	}
	if flagJSON {
		return printJSON(info)
	}
	printInfo(info)
	return nil
}

func ytDownloadRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	kit, err := newYouTubeKit(ctx, cfg, ui.New())
	if err != nil {
		return report("初始化", err)
	}
	defer kit.Close()

	quality := flagQuality
	if quality == "" {
		quality = cfg.Quality
	}
	return downloadAndPrint(ctx, kit, args[0], media.ParseQuality(quality), flagName)
}

func downloadAndPrint(ctx context.Context, kit *youtubeKit, rawURL string, q media.Quality, name string) error {
	dir, err := cfg.ExpandOutputDir()
	if err != nil {
		return report("解析輸出目錄", err)
	}

	res, err := kit.downloader.Download(ctx, rawURL, q, youtube.DownloadOptions{Dir: dir, Name: name})
	if err != nil {
		return report("下載", err)
	}

	if flagJSON {
		return printJSON(struct {
			Path      string `json:"path"`
			Companion string `json:"companion,omitempty"`
			Title     string `json:"title"`
			Quality   string `json:"quality"`
		}{res.Path, res.Companion, res.Title, res.Quality.String()})
	}

	ui.Success(os.Stdout, "下載完成: %s", res.Path)
	if res.Companion != "" {
		ui.Field(os.Stdout, "音訊檔案", res.Companion)
	}
	return nil
}

func ytSearchRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	kit, err := newYouTubeKit(ctx, cfg, nil)
	if err != nil {
		return report("初始化", err)
	}
	defer kit.Close()

	limit := flagLimit
	if limit <= 0 {
		limit = cfg.SearchLimit
	}

	results, err := kit.searcher.Search(ctx, strings.Join(args, " "), limit)
	if err != nil {
		return report("搜尋", err)
	}

	if flagJSON {
		if results == nil {
			results = []media.Metadata{}
		}
		return printJSON(results)
	}

	if len(results) == 0 {
		fmt.Println("找不到相關影片")
		return nil
	}

	t := newTable(os.Stdout)
	t.AppendHeader([]any{"#", "標題", "作者", "長度", "觀看次數", "網址"})
	for i, m := range results {
		t.AppendRow([]any{i + 1, m.Title, m.Author, m.Duration, m.ViewCount, m.URL})
	}
	t.Render()
	return nil
}

func printInfo(m *media.Metadata) {
	ui.Heading(os.Stdout, "影片資訊")
	for _, f := range m.Fields() {
		ui.Field(os.Stdout, f[0], f[1])
	}
}
