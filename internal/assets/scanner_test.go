package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractID(t *testing.T) {
	t.Run("recognizes a first-party asset URL", func(t *testing.T) {
		id, ok := ExtractID("https://github.com/user-attachments/assets/6c72b402-4a5c-45cc-9b0a-50717f8a09a7")
		require.True(t, ok)
		assert.Equal(t, "6c72b402-4a5c-45cc-9b0a-50717f8a09a7", id)
	})

	t.Run("ignores trailing path segments", func(t *testing.T) {
		id, ok := ExtractID("https://github.com/user-attachments/assets/abc123/extra")
		require.True(t, ok)
		assert.Equal(t, "abc123", id)
	})

	t.Run("rejects spoofed hosts embedding the prefix", func(t *testing.T) {
		spoofed := []string{
			"https://evil.com/https://github.com/user-attachments/assets/abc123",
			"https://evil.com/?u=https://github.com/user-attachments/assets/abc123",
			"http://github.com/user-attachments/assets/abc123",
			"https://github.com.evil.com/user-attachments/assets/abc123",
		}
		for _, url := range spoofed {
			_, ok := ExtractID(url)
			assert.False(t, ok, "should reject %s", url)
		}
	})

	t.Run("rejects empty identifier", func(t *testing.T) {
		_, ok := ExtractID("https://github.com/user-attachments/assets/")
		assert.False(t, ok)
	})

	t.Run("rejects unrelated URLs", func(t *testing.T) {
		_, ok := ExtractID("https://example.com/image.png")
		assert.False(t, ok)
	})
}

func TestDetectHTML(t *testing.T) {
	t.Run("finds asset URLs in img src attributes", func(t *testing.T) {
		body := `<p>intro</p>
<img src="https://github.com/user-attachments/assets/first" alt="a">
<img src="https://example.com/other.png" alt="external">
<img src="https://github.com/user-attachments/assets/second" alt="b">`

		urls := DetectHTML(body)
		assert.Equal(t, []string{
			"https://github.com/user-attachments/assets/first",
			"https://github.com/user-attachments/assets/second",
		}, urls)
	})

	t.Run("ignores img tags without src", func(t *testing.T) {
		assert.Empty(t, DetectHTML(`<img alt="no source">`))
	})

	t.Run("plain text yields nothing", func(t *testing.T) {
		assert.Empty(t, DetectHTML("no images here"))
	})
}

func TestDetectMarkdown(t *testing.T) {
	t.Run("finds image targets", func(t *testing.T) {
		body := "![alt](https://github.com/user-attachments/assets/one)\n" +
			"![other](https://example.com/x.png)\n" +
			"text ![two](https://github.com/user-attachments/assets/two) text"

		urls := DetectMarkdown(body)
		assert.Equal(t, []string{
			"https://github.com/user-attachments/assets/one",
			"https://github.com/user-attachments/assets/two",
		}, urls)
	})

	t.Run("strips quoted titles from targets", func(t *testing.T) {
		body := `![alt](https://github.com/user-attachments/assets/one "a title")`

		urls := DetectMarkdown(body)
		assert.Equal(t, []string{"https://github.com/user-attachments/assets/one"}, urls)
	})

	t.Run("multiple references on one line", func(t *testing.T) {
		body := "![a](https://github.com/user-attachments/assets/one) ![b](https://github.com/user-attachments/assets/two)"

		urls := DetectMarkdown(body)
		assert.Len(t, urls, 2)
	})

	t.Run("ignores plain links", func(t *testing.T) {
		body := "[link](https://github.com/user-attachments/assets/one)"
		assert.Empty(t, DetectMarkdown(body))
	})
}

func TestDedupe(t *testing.T) {
	t.Run("collapses by identifier keeping first-seen order", func(t *testing.T) {
		urls := []string{
			"https://github.com/user-attachments/assets/one",
			"https://github.com/user-attachments/assets/two",
			"https://github.com/user-attachments/assets/one",
		}

		unique := Dedupe(urls)
		assert.Equal(t, []string{
			"https://github.com/user-attachments/assets/one",
			"https://github.com/user-attachments/assets/two",
		}, unique)
	})

	t.Run("drops unrecognized URLs", func(t *testing.T) {
		unique := Dedupe([]string{"https://example.com/x.png"})
		assert.Empty(t, unique)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, Dedupe(nil))
	})
}
