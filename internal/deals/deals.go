// Package deals scrapes the PChome limited-time promotions page.
package deals

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"harvest/internal/httputil"
)

const (
	// NoLink is shown for promotions without a link.
	NoLink = "無連結"
	// NoDate is shown for promotions without a date.
	NoDate = "無日期資訊"
)

// Deal is a single promotion.
type Deal struct {
	Text string `json:"text"`
	Date string `json:"date"`
	Link string `json:"link"`
}

func (d Deal) key() string {
	return d.Text + "|" + d.Date + "|" + d.Link
}

// Fetch downloads pageURL and returns its promotions.
func Fetch(ctx context.Context, client *resty.Client, pageURL string) ([]Deal, error) {
	body, err := httputil.GetHTML(ctx, client, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching deals: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing deals page: %w", err)
	}
	return Parse(doc, pageURL), nil
}

// Parse extracts promotions from the page. The same promotion is linked
// several times on the page, so duplicates are dropped keeping the first.
func Parse(doc *goquery.Document, pageURL string) []Deal {
	var deals []Deal
	seen := make(map[string]bool)

	doc.Find("a.slogan").Each(func(_ int, s *goquery.Selection) {
		d := Deal{
			Text: strings.TrimSpace(s.Text()),
			Date: NoDate,
			Link: NoLink,
		}

		if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
			d.Link = httputil.ResolveReference(pageURL, strings.TrimSpace(href))
		}

		if date := s.Parent().Find("span.date").First(); date.Length() > 0 {
			d.Date = strings.TrimSpace(date.Text())
		}

		if seen[d.key()] {
			return
		}
		seen[d.key()] = true
		deals = append(deals, d)
	})

	return deals
}
