package scrape

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// fetchTimeout bounds the outbound page fetch. Fixed policy.
const fetchTimeout = 10 * time.Second

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 1_500_000

// Page is the text material pulled from a scraped URL.
type Page struct {
	Title string
	Text  string
}

// Scraper fetches a web page and extracts its readable text.
type Scraper struct {
	client *http.Client
}

// New builds a scraper with the fixed fetch timeout.
func New() *Scraper {
	return &Scraper{client: &http.Client{Timeout: fetchTimeout}}
}

// Fetch downloads rawURL and extracts title and main text. Only text/html
// and text/plain responses are accepted.
func (s *Scraper) Fetch(rawURL string) (Page, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return Page{}, fmt.Errorf("invalid url")
	}

	resp, err := s.client.Get(parsed.String())
	if err != nil {
		return Page{}, fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Page{}, fmt.Errorf("fetch url: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, fmt.Errorf("read page: %w", err)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.Contains(contentType, "text/plain") {
		text := strings.TrimSpace(string(body))
		if text == "" {
			return Page{}, fmt.Errorf("empty page")
		}
		return Page{Title: firstLine(text), Text: text}, nil
	}
	if !strings.Contains(contentType, "text/html") {
		return Page{}, fmt.Errorf("unsupported content type: %s", contentType)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return Page{}, fmt.Errorf("parse page: %w", err)
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	// Prefer main/article; fall back to the whole document.
	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	var parts []string
	sel.Find("h1,h2,h3,p,li").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return Page{}, fmt.Errorf("no readable text on page")
	}
	if title == "" {
		title = parsed.Host
	}
	return Page{Title: title, Text: text}, nil
}

func firstLine(s string) string {
	line := strings.SplitN(strings.TrimSpace(s), "\n", 2)[0]
	runes := []rune(line)
	if len(runes) > 120 {
		return string(runes[:120])
	}
	return line
}
