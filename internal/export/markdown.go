package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/discussion-export/internal/github"
)

// timeLayout renders timestamps the way they appear in archive metadata
// lines, always in UTC.
const timeLayout = "2006-01-02 15:04:05 UTC"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// FormatDiscussion renders the complete Markdown archive: header, original
// post, and comments, separated by blank lines.
func FormatDiscussion(d *github.Discussion, owner, repo string) string {
	return formatHeader(d, owner, repo) + "\n" +
		formatOriginalPost(d) + "\n" +
		formatComments(d)
}

// formatHeader renders the metadata block that opens the archive.
func formatHeader(d *github.Discussion, owner, repo string) string {
	return fmt.Sprintf(
		"# %s\nDiscussion: %s/%s#%d\nURL: %s\nCreated at: %s\nAuthor: %s\n---\n",
		d.Title, owner, repo, d.Number, d.URL,
		formatTime(d.CreatedAt), github.AuthorLogin(d.Author),
	)
}

func formatOriginalPost(d *github.Discussion) string {
	return fmt.Sprintf(
		"## Original Post\n_author: %s (%s)_\n%s\n---\n",
		github.AuthorLogin(d.Author), formatTime(d.CreatedAt), processBody(d.Body),
	)
}

// formatComments renders every comment and its replies. Numbering counts
// only present entries; nil entries are skipped without leaving gaps. The
// "## Comments" heading is emitted even when no comments exist.
func formatComments(d *github.Discussion) string {
	var out strings.Builder
	out.WriteString("## Comments\n")

	commentNum := 0
	for _, comment := range d.Comments {
		if comment == nil {
			continue
		}
		commentNum++

		fmt.Fprintf(&out, "### Comment %d\n_author: %s (%s)_\n%s\n",
			commentNum, github.AuthorLogin(comment.Author),
			formatTime(comment.CreatedAt), processBody(comment.Body))

		replyNum := 0
		for _, reply := range comment.Replies {
			if reply == nil {
				continue
			}
			replyNum++

			fmt.Fprintf(&out, "#### Reply %d.%d\n_author: %s (%s)_\n%s\n",
				commentNum, replyNum, github.AuthorLogin(reply.Author),
				formatTime(reply.CreatedAt), processBody(reply.Body))
		}
	}

	return out.String()
}

// processBody applies the only two body normalizations: CRLF to LF, then
// heading escape. Everything else passes through verbatim.
func processBody(body string) string {
	return escapeHeadings(normalizeCRLF(body))
}

// normalizeCRLF rewrites CRLF pairs and lone CR characters to LF.
func normalizeCRLF(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.ReplaceAll(body, "\r", "\n")
}

// escapeHeadings prefixes a backslash to every line starting with '#' so
// body headings cannot break the archive's heading hierarchy.
func escapeHeadings(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			lines[i] = "\\" + line
		}
	}
	return strings.Join(lines, "\n")
}
