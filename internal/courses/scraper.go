// Package courses crawls the NCHU course query system and stores each
// department's course table as JSON.
package courses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"harvest/internal/httputil"
)

// ErrLoginFailed means the portal rejected the credentials.
var ErrLoginFailed = errors.New("login failed")

const loginAttempts = 3

// Options configure a Scraper.
type Options struct {
	LoginURL  string
	CourseURL string
	Delay     time.Duration // Pause between departments
}

// Scraper fetches department course tables through an authenticated session.
type Scraper struct {
	client  *resty.Client
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger

	loginBackOff func() backoff.BackOff
}

// NewScraper creates a Scraper. client must carry a cookie jar.
func NewScraper(client *resty.Client, opts Options, logger *zap.Logger) *Scraper {
	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	return &Scraper{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		loginBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}
}

// Login signs in through the single sign-on form. Network failures are
// retried with exponential backoff; rejected credentials are not.
func (s *Scraper) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: missing credentials", ErrLoginFailed)
	}

	attempt := 0
	op := func() error {
		attempt++
		err := s.login(ctx, username, password)
		if err != nil && !errors.Is(err, ErrLoginFailed) {
			s.logger.Warn("login attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(s.loginBackOff(), loginAttempts-1), ctx)
	return backoff.Retry(op, b)
}

func (s *Scraper) login(ctx context.Context, username, password string) error {
	body, err := httputil.GetHTML(ctx, s.client, s.opts.LoginURL)
	if err != nil {
		return fmt.Errorf("loading login page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parsing login page: %w", err)
	}

	form, err := httputil.ParseForm(doc, "#password", s.opts.LoginURL)
	if err != nil {
		return fmt.Errorf("locating login form: %w", err)
	}
	userField, err := httputil.InputName(doc, "#username")
	if err != nil {
		return fmt.Errorf("locating username field: %w", err)
	}
	passField, err := httputil.InputName(doc, "#password")
	if err != nil {
		return fmt.Errorf("locating password field: %w", err)
	}
	form.Fields[userField] = username
	form.Fields[passField] = password

	if err := httputil.ValidateURL(form.Action); err != nil {
		return fmt.Errorf("login form action: %w", err)
	}

	res, err := s.client.R().
		SetContext(ctx).
		SetFormData(form.Fields).
		Post(form.Action)
	if err != nil {
		return fmt.Errorf("submitting login form: %w", err)
	}
	if res.StatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("login returned status %d", res.StatusCode())
	}

	after, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return fmt.Errorf("parsing login response: %w", err)
	}
	if after.Find("#password").Length() > 0 {
		return ErrLoginFailed
	}

	s.logger.Info("logged in", zap.String("title", after.Find("title").First().Text()))
	return nil
}

// Department fetches and parses one department's course tables.
func (s *Scraper) Department(ctx context.Context, code string) ([]Table, error) {
	if err := httputil.ValidateDeptCode(code); err != nil {
		return nil, err
	}

	u := s.opts.CourseURL + "_now?" + url.Values{"v_dept": {code}}.Encode()
	body, err := httputil.GetHTML(ctx, s.client, u)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", code, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", code, err)
	}
	return ParseTables(doc), nil
}

// Result is the outcome of a crawl.
type Result struct {
	Courses map[string][]Course // Keyed by department code
	Failed  []string            // Departments whose fetch failed
}

// Crawl fetches every department in turn, pausing between requests, and
// writes each department's file to w as soon as it is known. A department
// that fails still gets an empty file.
func (s *Scraper) Crawl(ctx context.Context, depts []Department, w *Writer) (*Result, error) {
	if err := w.WriteDepartments(depts); err != nil {
		return nil, err
	}

	res := &Result{Courses: make(map[string][]Course, len(depts))}
	for _, d := range depts {
		if err := s.limiter.Wait(ctx); err != nil {
			return res, err
		}

		s.logger.Info("crawling department", zap.String("code", d.Code), zap.String("name", d.Name))
		tables, err := s.Department(ctx, d.Code)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			s.logger.Warn("department failed", zap.String("code", d.Code), zap.Error(err))
			res.Failed = append(res.Failed, d.Code)
		}
		for _, t := range tables {
			s.logger.Debug("table parsed", zap.String("header", t.Header), zap.Int("courses", len(t.Courses)))
		}

		courses := Flatten(tables)
		res.Courses[d.Code] = courses
		if err := w.WriteDepartment(d, courses); err != nil {
			return res, err
		}
	}

	if err := w.WriteAll(res.Courses); err != nil {
		return res, err
	}
	return res, nil
}
