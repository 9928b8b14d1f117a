package etl

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	colly "github.com/gocolly/colly/v2"

	"erp-assistant-backend/internal/logger"
	"erp-assistant-backend/models"
)

// Scraper is the web-crawled alternative to the local RST extractor: it
// produces the same document set from the published documentation site.
// Crawl discipline: stay under the base URL, stop at MaxPages, wait Delay
// between requests.
type Scraper struct {
	BaseURL     string
	MaxPages    int
	Delay       time.Duration
	MinLength   int
	RawDocsPath string
}

func NewScraper(baseURL string, maxPages int, delay time.Duration, minLength int, rawDocsPath string) *Scraper {
	return &Scraper{
		BaseURL:     baseURL,
		MaxPages:    maxPages,
		Delay:       delay,
		MinLength:   minLength,
		RawDocsPath: rawDocsPath,
	}
}

// Run crawls the documentation site and writes the extracted documents.
func (s *Scraper) Run() error {
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid scrape base URL: %w", err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(base.Host),
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"),
	)
	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: s.Delay}); err != nil {
		return err
	}

	dc := &docCollector{minLength: s.MinLength, seen: make(map[string]bool)}
	visited := 0

	c.OnRequest(func(r *colly.Request) {
		if visited >= s.MaxPages {
			r.Abort()
			return
		}
		visited++
		logger.Debug("Scraping page", "url", r.URL.String(), "visited", visited)
	})

	c.OnHTML(contentRootSelector, func(e *colly.HTMLElement) {
		dc.add(e.Request.URL.String(), e.Request.URL.Path, e.DOM)
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		// Drop anchors so the same page is not queued per section
		if i := strings.Index(link, "#"); i >= 0 {
			link = link[:i]
		}
		if strings.HasPrefix(link, s.BaseURL) {
			e.Request.Visit(link)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Warn("Scrape request failed", "url", r.Request.URL.String(), "error", err)
	})

	if err := c.Visit(s.BaseURL); err != nil {
		return fmt.Errorf("starting crawl: %w", err)
	}
	c.Wait()

	logger.Info("Scraping finished", "pages", visited, "documents", len(dc.documents))
	return writeJSON(s.RawDocsPath, dc.documents)
}

// contentRootSelector matches the content containers the documentation
// themes use. These nest (article inside main), so one page can fire the
// handler more than once.
const contentRootSelector = "main, div[role='main'], article"

// docCollector accumulates the documents of one crawl. A page is captured
// once, on its outermost matching content root; later matches for the same
// URL are nested duplicates and dropped.
type docCollector struct {
	minLength int
	seen      map[string]bool
	documents []models.Document
}

func (dc *docCollector) add(pageURL, urlPath string, sel *goquery.Selection) {
	content := pageText(sel)
	if len(content) <= dc.minLength {
		return
	}
	if dc.seen[pageURL] {
		return
	}
	dc.seen[pageURL] = true

	dc.documents = append(dc.documents, models.Document{
		SourceFile: path.Base(urlPath),
		Category:   categoryFromPath(urlPath),
		FullPath:   pageURL,
		Content:    content,
	})
}

// pageText extracts the readable text of the main content block, with the
// navigation chrome removed.
func pageText(sel *goquery.Selection) string {
	clone := sel.Clone()
	clone.Find("script, style, nav, aside, form").Remove()
	content := strings.TrimSpace(clone.Text())
	return blankLinesRegex.ReplaceAllString(content, "\n\n")
}

// categoryFromPath takes the segment after "applications", the same grouping
// the local extractor derives from the directory name.
func categoryFromPath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if part == "applications" && i+1 < len(parts) && parts[i+1] != "" {
			return parts[i+1]
		}
	}
	return "general"
}
