package platform

import (
	"bytes"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// blockSelector lists elements whose text is kept as a separate paragraph.
const blockSelector = "p, li, h2, h3, h4, h5, h6, pre, blockquote, dt, dd, td"

var (
	defaultTitleSelectors = []string{"h1", "title"}
	defaultBodySelectors  = []string{"article", "main", "[role=main]", ".article-body", "body"}
	// noiseSelectors are removed from every page before extraction.
	noiseSelectors = []string{"script", "style", "noscript", "template", "iframe", "svg", "nav", "footer"}
)

// Selectors configures page extraction.
type Selectors struct {
	Title    []string
	Body     []string
	Exclude  []string
	Category string
}

// Page is the text extracted from one HTML document.
type Page struct {
	Title    string
	Body     string
	Category string
}

// ExtractPage parses html and extracts title, paragraph-separated body text
// and category. When selector extraction yields fewer than minBody runes the
// readability extractor is tried and its result kept if longer.
func ExtractPage(html []byte, pageURL string, sel Selectors, minBody int) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	for _, s := range slices.Concat(noiseSelectors, sel.Exclude) {
		if s != "" {
			doc.Find(s).Remove()
		}
	}

	page := &Page{
		Title:    firstText(doc.Selection, orDefault(sel.Title, defaultTitleSelectors)),
		Category: firstText(doc.Selection, []string{sel.Category}),
		Body:     firstBlocks(doc.Selection, orDefault(sel.Body, defaultBodySelectors)),
	}

	if len([]rune(page.Body)) < minBody {
		title, body := readabilityText(html, pageURL)
		if len([]rune(body)) > len([]rune(page.Body)) {
			page.Body = body
			if page.Title == "" {
				page.Title = title
			}
		}
	}

	return page, nil
}

// HTMLToText converts an HTML fragment to paragraph-separated text.
func HTMLToText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return cleanText(fragment)
	}
	return blockText(doc.Selection)
}

// readabilityText runs the readability extractor on the full document.
// It returns empty strings when extraction fails.
func readabilityText(html []byte, pageURL string) (title, body string) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", ""
	}

	article, err := readability.FromReader(bytes.NewReader(html), parsedURL)
	if err != nil {
		return "", ""
	}

	return strings.TrimSpace(article.Title), HTMLToText(article.Content)
}

func firstText(root *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if s == "" {
			continue
		}
		if text := cleanText(root.Find(s).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstBlocks(root *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if s == "" {
			continue
		}
		match := root.Find(s).First()
		if match.Length() == 0 {
			continue
		}
		if text := blockText(match); text != "" {
			return text
		}
	}
	return ""
}

// blockText returns the text of the innermost block elements under sel, one
// paragraph per block. Without block elements the whole text is one paragraph.
func blockText(sel *goquery.Selection) string {
	var paragraphs []string
	sel.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		if text := cleanText(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) == 0 {
		return cleanText(sel.Text())
	}
	return strings.Join(paragraphs, "\n\n")
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
