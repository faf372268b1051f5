package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	firstURL  = "https://github.com/user-attachments/assets/6c72b402-4a5c-45cc-9b0a-50717f8a09a7"
	secondURL = "https://github.com/user-attachments/assets/7d83c513-5b6d-46dd-a01b-61728e8b0a8b"
)

var testAssetMap = map[string]string{
	"6c72b402-4a5c-45cc-9b0a-50717f8a09a7": "7-discussion-assets/6c72b402-4a5c-45cc-9b0a-50717f8a09a7.png",
	"7d83c513-5b6d-46dd-a01b-61728e8b0a8b": "7-discussion-assets/7d83c513-5b6d-46dd-a01b-61728e8b0a8b.jpg",
}

func TestRewriteHTML(t *testing.T) {
	t.Run("redirects src and preserves other attributes", func(t *testing.T) {
		body := `<img src="` + firstURL + `" alt="Diagram" width="1192" loading="lazy" />`

		result := RewriteHTML(body, testAssetMap)

		assert.Contains(t, result, `src="7-discussion-assets/6c72b402-4a5c-45cc-9b0a-50717f8a09a7.png"`)
		assert.Contains(t, result, `data-original-url="`+firstURL+`"`)
		assert.Contains(t, result, `alt="Diagram"`)
		assert.Contains(t, result, `width="1192"`)
		assert.Contains(t, result, `loading="lazy"`)
	})

	t.Run("handles single-quoted src", func(t *testing.T) {
		body := `<img src='` + firstURL + `' alt='x'>`

		result := RewriteHTML(body, testAssetMap)

		assert.Contains(t, result, `src='7-discussion-assets/6c72b402-4a5c-45cc-9b0a-50717f8a09a7.png'`)
		assert.Contains(t, result, "data-original-url")
	})

	t.Run("rewrites multiple tags", func(t *testing.T) {
		body := `<img src="` + firstURL + `" alt="a"><img src="` + secondURL + `" alt="b">`

		result := RewriteHTML(body, testAssetMap)

		assert.Contains(t, result, "6c72b402-4a5c-45cc-9b0a-50717f8a09a7.png")
		assert.Contains(t, result, "7d83c513-5b6d-46dd-a01b-61728e8b0a8b.jpg")
	})

	t.Run("leaves unmapped and external URLs untouched", func(t *testing.T) {
		external := `<img src="https://example.com/image.png" alt="x">`
		unmapped := `<img src="https://github.com/user-attachments/assets/not-downloaded" alt="y">`

		assert.Equal(t, external, RewriteHTML(external, testAssetMap))
		assert.Equal(t, unmapped, RewriteHTML(unmapped, testAssetMap))
	})
}

func TestRewriteMarkdown(t *testing.T) {
	t.Run("redirects target and appends original URL comment", func(t *testing.T) {
		body := "![Diagram](" + firstURL + ")"

		result := RewriteMarkdown(body, testAssetMap)

		assert.Equal(t,
			"![Diagram](7-discussion-assets/6c72b402-4a5c-45cc-9b0a-50717f8a09a7.png)"+
				"<!-- "+firstURL+" -->",
			result)
	})

	t.Run("preserves quoted titles", func(t *testing.T) {
		body := `![Diagram](` + firstURL + ` "Existing title")`

		result := RewriteMarkdown(body, testAssetMap)

		assert.Contains(t, result,
			`](7-discussion-assets/6c72b402-4a5c-45cc-9b0a-50717f8a09a7.png "Existing title")`)
		assert.Contains(t, result, "<!-- "+firstURL+" -->")
	})

	t.Run("keeps surrounding text intact", func(t *testing.T) {
		body := "before ![a](" + firstURL + ") after"

		result := RewriteMarkdown(body, testAssetMap)

		assert.True(t, len(result) > len(body))
		assert.Contains(t, result, "before ![a](")
		assert.Contains(t, result, "--> after")
	})

	t.Run("leaves external targets untouched", func(t *testing.T) {
		body := "![External](https://example.com/image.png)"
		assert.Equal(t, body, RewriteMarkdown(body, testAssetMap))
	})

	t.Run("preserves trailing newline", func(t *testing.T) {
		result := RewriteMarkdown("![a]("+firstURL+")\n", testAssetMap)
		assert.True(t, strings.HasSuffix(result, "-->\n"))

		result = RewriteMarkdown("![a]("+firstURL+")", testAssetMap)
		assert.True(t, strings.HasSuffix(result, "-->"))
	})

	t.Run("preserves line count", func(t *testing.T) {
		body := "line one\n![a](" + firstURL + ")\nline three"

		result := RewriteMarkdown(body, testAssetMap)

		assert.Len(t, strings.Split(result, "\n"), 3)
	})
}

func TestRewrite(t *testing.T) {
	t.Run("applies both HTML and Markdown rewriting", func(t *testing.T) {
		body := `<img src="` + firstURL + `" alt="html" />` + "\n" +
			"![md](" + secondURL + ")"

		result := Rewrite(body, testAssetMap)

		assert.Contains(t, result, `src="7-discussion-assets/6c72b402-4a5c-45cc-9b0a-50717f8a09a7.png"`)
		assert.Contains(t, result, "](7-discussion-assets/7d83c513-5b6d-46dd-a01b-61728e8b0a8b.jpg)")
	})

	t.Run("empty map passes body through", func(t *testing.T) {
		body := "![a](" + firstURL + ")"
		assert.Equal(t, body, Rewrite(body, map[string]string{}))
	})
}
