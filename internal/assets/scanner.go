package assets

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// URLPrefix is the exact origin prefix of first-party asset URLs. Matching
// is anchored at the start of the string; no other scheme, subdomain, or
// superstring host is accepted.
const URLPrefix = "https://github.com/user-attachments/assets/"

// ExtractID returns the asset identifier of a recognized asset URL.
// The identifier is the path segment immediately following the fixed
// prefix; empty segments are rejected.
func ExtractID(url string) (string, bool) {
	rest, ok := strings.CutPrefix(url, URLPrefix)
	if !ok {
		return "", false
	}
	id, _, _ := strings.Cut(rest, "/")
	if id == "" {
		return "", false
	}
	return id, true
}

// DetectHTML returns asset URLs referenced by <img> src attributes in the
// body, in document order.
func DetectHTML(body string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		// Bodies come from the API as free-form text; an unparseable
		// fragment simply has no detectable HTML references.
		return nil
	}

	var urls []string
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			return
		}
		if _, ok := ExtractID(src); ok {
			urls = append(urls, src)
		}
	})
	return urls
}

// DetectMarkdown returns asset URLs referenced by Markdown image syntax
// (![alt](target) or ![alt](target "title")), scanning per line. The first
// whitespace-delimited token inside the parentheses is the target; any
// quoted title suffix is discarded.
func DetectMarkdown(body string) []string {
	var urls []string

	for _, line := range strings.Split(body, "\n") {
		rest := line
		for {
			start := strings.Index(rest, "![")
			if start < 0 {
				break
			}
			open := strings.Index(rest[start:], "](")
			if open < 0 {
				break
			}
			targetStart := start + open + 2
			end := strings.Index(rest[targetStart:], ")")
			if end < 0 {
				break
			}

			target := rest[targetStart : targetStart+end]
			if url, _, found := strings.Cut(target, " "); found {
				target = url
			}
			if _, ok := ExtractID(target); ok {
				urls = append(urls, target)
			}

			rest = rest[targetStart+end+1:]
		}
	}

	return urls
}

// Detect returns every asset URL referenced by the body, HTML references
// first, then Markdown references.
func Detect(body string) []string {
	return append(DetectHTML(body), DetectMarkdown(body)...)
}

// Dedupe collapses URLs that resolve to the same identifier into a single
// representative URL, preserving first-seen order. URLs with no extractable
// identifier are dropped.
func Dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	unique := make([]string, 0, len(urls))

	for _, url := range urls {
		id, ok := ExtractID(url)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, url)
	}

	return unique
}
