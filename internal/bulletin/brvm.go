package bulletin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"BoursePulse/internal/logger"
	"BoursePulse/internal/model"
)

const (
	defaultBaseURL = "https://www.brvm.org"
	quotesPath     = "/fr/cours-actions/0"
	reportsPath    = "/fr/actualites/communiques-financiers"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) BoursePulse/1.0"
)

// boc_20250310.pdf style bulletin filenames carry the trading date.
var bulletinDateRe = regexp.MustCompile(`boc[_-](\d{8})`)

// BRVMFetcher scrapes the exchange website. Requests are throttled with a
// shared limiter so a full run stays polite toward the site.
type BRVMFetcher struct {
	base    string
	client  *http.Client
	limiter *rate.Limiter
	log     *logrus.Entry
}

// NewBRVMFetcher creates a fetcher against baseURL (the production site when
// empty), allowing at most rps requests per second.
func NewBRVMFetcher(baseURL string, rps float64) *BRVMFetcher {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if rps <= 0 {
		rps = 1
	}
	return &BRVMFetcher{
		base:    strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:     logger.With("bulletin"),
	}
}

func (f *BRVMFetcher) Name() string { return "brvm" }

// FetchDailyQuotes scrapes the equities board. The trading date is taken
// from the official bulletin link on the page when present, otherwise the
// current day is assumed.
func (f *BRVMFetcher) FetchDailyQuotes(ctx context.Context) ([]model.Quote, error) {
	doc, err := f.get(ctx, f.base+quotesPath)
	if err != nil {
		return nil, err
	}
	quotes := parseQuotes(doc)
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no quotes found on %s", quotesPath)
	}
	f.log.WithField("quotes", len(quotes)).Info("daily quotes fetched")
	return quotes, nil
}

// FetchReports lists recent company publications (annual reports, financial
// statements, press releases).
func (f *BRVMFetcher) FetchReports(ctx context.Context) ([]model.Report, error) {
	doc, err := f.get(ctx, f.base+reportsPath)
	if err != nil {
		return nil, err
	}
	reports := parseReports(doc, f.base)
	f.log.WithField("reports", len(reports)).Info("publications listed")
	return reports, nil
}

// FetchReportText retrieves the body text of a publication page. PDF links
// are not downloaded; for those the title and listing metadata stand in.
func (f *BRVMFetcher) FetchReportText(ctx context.Context, report model.Report) (string, error) {
	if strings.HasSuffix(strings.ToLower(report.URL), ".pdf") {
		return fmt.Sprintf("%s - %s (%s)", report.Company, report.Title,
			report.Date.Format("2006-01-02")), nil
	}
	doc, err := f.get(ctx, report.URL)
	if err != nil {
		return "", err
	}
	text := extractArticleText(doc)
	if text == "" {
		return "", fmt.Errorf("empty article body at %s", report.URL)
	}
	return text, nil
}

func (f *BRVMFetcher) get(ctx context.Context, target string) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", target, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", target, err)
	}
	return doc, nil
}

// parseQuotes reads the equities table. Expected columns: symbol, name,
// volume, value, previous close, opening, closing, change.
func parseQuotes(doc *goquery.Document) []model.Quote {
	tradeDate := bulletinDate(doc)

	var quotes []model.Quote
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}
		text := func(i int) string { return strings.TrimSpace(cells.Eq(i).Text()) }

		symbol := text(0)
		if symbol == "" {
			return
		}
		price, err := parseFrenchNumber(text(6))
		if err != nil || price <= 0 {
			return
		}
		volume, _ := parseFrenchNumber(text(2))
		value, _ := parseFrenchNumber(text(3))

		quotes = append(quotes, model.Quote{
			Symbol:    symbol,
			Name:      text(1),
			TradeDate: tradeDate,
			Price:     price,
			Volume:    volume,
			Value:     value,
		})
	})
	return quotes
}

func parseReports(doc *goquery.Document, base string) []model.Report {
	var reports []model.Report
	doc.Find(".views-row, article").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}
		date := time.Now().Truncate(24 * time.Hour)
		if d, err := parseFrenchDate(strings.TrimSpace(row.Find("time, .date").First().Text())); err == nil {
			date = d
		}
		reports = append(reports, model.Report{
			Title: title,
			URL:   resolveURL(base, href),
			Date:  date,
		})
	})
	return reports
}

func extractArticleText(doc *goquery.Document) string {
	for _, sel := range []string{".field--name-body", "article", ".content"} {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return strings.TrimSpace(doc.Find("body").Text())
}

// bulletinDate extracts the trading date from the bulletin PDF link, e.g.
// /sites/default/files/boc_20250310.pdf.
func bulletinDate(doc *goquery.Document) time.Time {
	date := time.Now().Truncate(24 * time.Hour)
	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		m := bulletinDateRe.FindStringSubmatch(strings.ToLower(href))
		if m == nil {
			return true
		}
		if d, err := time.Parse("20060102", m[1]); err == nil {
			date = d
			return false
		}
		return true
	})
	return date
}

// parseFrenchNumber handles formats like "1 234,56" where spaces (regular or
// non-breaking) group thousands and the comma is the decimal separator.
func parseFrenchNumber(s string) (float64, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)
	if s == "" || s == "-" {
		return 0, fmt.Errorf("empty number")
	}
	return strconv.ParseFloat(s, 64)
}

func parseFrenchDate(s string) (time.Time, error) {
	for _, layout := range []string{"02/01/2006", "02-01-2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func resolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	return base + "/" + strings.TrimLeft(href, "/")
}
