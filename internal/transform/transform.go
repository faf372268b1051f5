// Package transform rewrites asset references in discussion text to point
// at locally downloaded files while preserving the original URLs.
//
// Rewriting is deliberately textual. Bodies pass through byte for byte
// except for the exact reference being redirected: HTML <img> tags keep
// every other attribute verbatim and gain a data-original-url attribute,
// and Markdown image targets keep their alt text and optional title and
// gain a trailing HTML comment with the original URL. References whose
// identifier is not in the asset map are left untouched.
package transform

import (
	"strings"

	"github.com/custodia-labs/discussion-export/internal/assets"
)

// Rewrite applies HTML rewriting followed by Markdown rewriting. The asset
// map is keyed by asset identifier and holds relative local paths.
func Rewrite(body string, assetMap map[string]string) string {
	return RewriteMarkdown(RewriteHTML(body, assetMap), assetMap)
}

// RewriteHTML redirects the src attribute of <img> tags whose URL resolves
// to a mapped asset. The original URL is preserved in a data-original-url
// attribute added before the closing bracket, unless the tag already
// carries one.
func RewriteHTML(body string, assetMap map[string]string) string {
	result := body
	pos := 0

	for {
		imgStart := strings.Index(result[pos:], "<img")
		if imgStart < 0 {
			break
		}
		tagStart := pos + imgStart

		tagEnd := strings.Index(result[tagStart:], ">")
		if tagEnd < 0 {
			break
		}
		tagEnd += tagStart
		tag := result[tagStart : tagEnd+1]

		src, ok := srcAttribute(tag)
		if !ok {
			pos = tagEnd + 1
			continue
		}

		localPath, ok := localPathFor(src, assetMap)
		if !ok {
			pos = tagEnd + 1
			continue
		}

		rewritten := rewriteImgTag(tag, src, localPath)
		result = result[:tagStart] + rewritten + result[tagEnd+1:]
		pos = tagStart + len(rewritten)
	}

	return result
}

// RewriteMarkdown redirects the target of ![alt](url) and
// ![alt](url "title") references whose URL resolves to a mapped asset,
// appending an HTML comment with the original URL after the closing
// parenthesis. Lines without mapped references pass through unchanged,
// and the presence or absence of a trailing newline is preserved.
func RewriteMarkdown(body string, assetMap map[string]string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = rewriteMarkdownLine(line, assetMap)
	}
	return strings.Join(lines, "\n")
}

func rewriteMarkdownLine(line string, assetMap map[string]string) string {
	pos := 0

	for {
		imgStart := strings.Index(line[pos:], "![")
		if imgStart < 0 {
			break
		}
		imgStart += pos

		bracketEnd := strings.Index(line[imgStart:], "](")
		if bracketEnd < 0 {
			break
		}
		targetStart := imgStart + bracketEnd + 2

		parenEnd := strings.Index(line[targetStart:], ")")
		if parenEnd < 0 {
			break
		}
		parenEnd += targetStart

		target := line[targetStart:parenEnd]
		url, title := splitTarget(target)

		localPath, ok := localPathFor(url, assetMap)
		if !ok {
			pos = imgStart + 1
			continue
		}

		var replacement strings.Builder
		replacement.WriteString(localPath)
		if title != "" {
			replacement.WriteString(" \"")
			replacement.WriteString(title)
			replacement.WriteString("\"")
		}
		replacement.WriteString(")<!-- ")
		replacement.WriteString(url)
		replacement.WriteString(" -->")

		line = line[:targetStart] + replacement.String() + line[parenEnd+1:]
		pos = targetStart + replacement.Len()
	}

	return line
}

// splitTarget separates a Markdown image target into its URL and optional
// title, stripping matched surrounding quotes from the title.
func splitTarget(target string) (url, title string) {
	url, rest, found := strings.Cut(target, " ")
	if !found {
		return target, ""
	}
	if len(rest) >= 2 {
		if (rest[0] == '"' && rest[len(rest)-1] == '"') ||
			(rest[0] == '\'' && rest[len(rest)-1] == '\'') {
			rest = rest[1 : len(rest)-1]
		}
	}
	return url, rest
}

// srcAttribute extracts the src value from an img tag, accepting double or
// single quoting.
func srcAttribute(tag string) (string, bool) {
	for _, quote := range []string{`"`, `'`} {
		marker := "src=" + quote
		start := strings.Index(tag, marker)
		if start < 0 {
			continue
		}
		rest := tag[start+len(marker):]
		end := strings.Index(rest, quote)
		if end < 0 {
			continue
		}
		return rest[:end], true
	}
	return "", false
}

// rewriteImgTag swaps the src value for the local path and records the
// original URL in a data-original-url attribute.
func rewriteImgTag(tag, src, localPath string) string {
	result := strings.ReplaceAll(tag, `src="`+src+`"`, `src="`+localPath+`"`)
	result = strings.ReplaceAll(result, `src='`+src+`'`, `src='`+localPath+`'`)

	if !strings.Contains(result, "data-original-url") {
		if end := strings.Index(result, ">"); end >= 0 {
			result = result[:end] + ` data-original-url="` + src + `"` + result[end:]
		}
	}

	return result
}

// localPathFor resolves a URL to its mapped local path via the asset
// identifier.
func localPathFor(url string, assetMap map[string]string) (string, bool) {
	id, ok := assets.ExtractID(url)
	if !ok {
		return "", false
	}
	path, ok := assetMap[id]
	return path, ok
}
