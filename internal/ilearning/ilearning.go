// Package ilearning signs in to the NCHU iLearning platform and lists the
// courses shown on the dashboard.
package ilearning

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"harvest/internal/httputil"
)

// ErrLoginFailed means the credentials or the captcha answer were rejected.
var ErrLoginFailed = errors.New("login failed")

const loginAttempts = 3

// Course is a dashboard entry.
type Course struct {
	Label string `json:"label"`
	Hint  string `json:"hint"`
}

// CaptchaSolver reads the captcha image saved at path.
type CaptchaSolver interface {
	Solve(ctx context.Context, path string, image []byte) (string, error)
}

// CaptchaSolverFunc adapts a function to CaptchaSolver.
type CaptchaSolverFunc func(ctx context.Context, path string, image []byte) (string, error)

func (f CaptchaSolverFunc) Solve(ctx context.Context, path string, image []byte) (string, error) {
	return f(ctx, path, image)
}

// Client is an iLearning session.
type Client struct {
	http        *resty.Client
	loginURL    string
	captchaPath string
	solver      CaptchaSolver
	logger      *zap.Logger

	retry func() backoff.BackOff
}

// NewClient creates a client. client must carry a cookie jar; captcha images
// are written to captchaPath before being handed to solver.
func NewClient(client *resty.Client, loginURL, captchaPath string, solver CaptchaSolver, logger *zap.Logger) *Client {
	return &Client{
		http:        client,
		loginURL:    loginURL,
		captchaPath: captchaPath,
		solver:      solver,
		logger:      logger,
		retry:       func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	}
}

// Courses signs in and returns the dashboard courses. A rejected captcha
// gets a fresh one, up to three tries in all.
func (c *Client) Courses(ctx context.Context, username, password string) ([]Course, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: missing credentials", ErrLoginFailed)
	}

	var courses []Course
	attempt := 0
	op := func() error {
		attempt++
		doc, err := c.login(ctx, username, password)
		if err != nil {
			if errors.Is(err, ErrLoginFailed) {
				c.logger.Warn("login rejected", zap.Int("attempt", attempt))
				return err
			}
			return backoff.Permanent(err)
		}
		courses = ParseDashboard(doc)
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.retry(), loginAttempts-1), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return courses, nil
}

// login submits the login form and returns the dashboard document.
func (c *Client) login(ctx context.Context, username, password string) (*goquery.Document, error) {
	doc, err := c.getDocument(ctx, c.loginURL)
	if err != nil {
		return nil, fmt.Errorf("loading login page: %w", err)
	}

	form, err := httputil.ParseForm(doc, "#login_form", c.loginURL)
	if err != nil {
		return nil, fmt.Errorf("locating login form: %w", err)
	}

	fields := map[string]string{"#account": username, "#password": password}
	for container, value := range fields {
		name, err := httputil.InputName(doc, container)
		if err != nil {
			return nil, fmt.Errorf("locating %s field: %w", container, err)
		}
		form.Fields[name] = value
	}

	answer, err := c.solveCaptcha(ctx, doc)
	if err != nil {
		return nil, err
	}
	captchaField, err := httputil.InputName(doc, "#captcha")
	if err != nil {
		return nil, fmt.Errorf("locating captcha field: %w", err)
	}
	form.Fields[captchaField] = answer

	if err := httputil.ValidateURL(form.Action); err != nil {
		return nil, fmt.Errorf("login form action: %w", err)
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(form.Fields).
		Post(form.Action)
	if err != nil {
		return nil, fmt.Errorf("submitting login form: %w", err)
	}
	c.logger.Debug("login submitted", zap.Int("status", res.StatusCode()))

	dash, err := c.getDocument(ctx, c.dashboardURL())
	if err != nil {
		return nil, fmt.Errorf("loading dashboard: %w", err)
	}
	if dash.Find("#login_form").Length() > 0 {
		return nil, ErrLoginFailed
	}
	return dash, nil
}

func (c *Client) solveCaptcha(ctx context.Context, doc *goquery.Document) (string, error) {
	src, ok := doc.Find("img.js-captcha").First().Attr("src")
	if !ok || src == "" {
		return "", fmt.Errorf("captcha image not found")
	}

	imgURL := httputil.ResolveReference(c.loginURL, src)
	if err := httputil.ValidateURL(imgURL); err != nil {
		return "", fmt.Errorf("captcha URL: %w", err)
	}
	res, err := c.http.R().SetContext(ctx).Get(imgURL)
	if err != nil {
		return "", fmt.Errorf("fetching captcha: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("fetching captcha: status %d", res.StatusCode())
	}

	image := res.Body()
	if err := os.WriteFile(c.captchaPath, image, 0600); err != nil {
		return "", fmt.Errorf("saving captcha: %w", err)
	}

	answer, err := c.solver.Solve(ctx, c.captchaPath, image)
	if err != nil {
		return "", fmt.Errorf("solving captcha: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// dashboardURL is the page named by the login URL's next parameter.
func (c *Client) dashboardURL() string {
	next := "/dashboard"
	if u, err := url.Parse(c.loginURL); err == nil {
		if n := u.Query().Get("next"); strings.HasPrefix(n, "/") && !strings.HasPrefix(n, "//") {
			next = n
		}
	}
	return httputil.ResolveReference(c.loginURL, next)
}

func (c *Client) getDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := httputil.GetHTML(ctx, c.http, pageURL)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// ParseDashboard extracts the course captions from the dashboard.
func ParseDashboard(doc *goquery.Document) []Course {
	var courses []Course
	doc.Find("div.fs-caption").Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(s.Find("div.fs-label").First().Text())
		if label == "" {
			return
		}
		courses = append(courses, Course{
			Label: label,
			Hint:  strings.TrimSpace(s.Find("div.fs-hint").First().Text()),
		})
	})
	return courses
}
