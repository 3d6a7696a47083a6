package fetch

import (
	"regexp"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var (
	titleRe  = regexp.MustCompile(`(?i)<title[^>]*>(.*?)</title>`)
	anchorRe = regexp.MustCompile(`(?is)<a\s[^>]*?href\s*=\s*["']([^"']*)["'][^>]*>(.*?)</a>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`[ \t]+`)
	nlRe     = regexp.MustCompile(`\n{3,}`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// parsePage turns raw HTML into the Page the resolver consumes: title,
// anchors with their hrefs, and the visible body text.
func parsePage(pageURL string, body []byte, statusCode int) *model.Page {
	html := string(body)
	return &model.Page{
		URL:        pageURL,
		Title:      extractTitle(html),
		Anchors:    extractAnchors(html),
		Text:       stripHTML(html),
		StatusCode: statusCode,
	}
}

func extractTitle(html string) string {
	m := titleRe.FindStringSubmatch(html)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractAnchors collects every <a href> with its visible text, in document
// order. Order matters downstream: first-found social links win and the
// first contact-ish link is the one followed.
func extractAnchors(html string) []model.Anchor {
	var anchors []model.Anchor
	for _, m := range anchorRe.FindAllStringSubmatch(html, -1) {
		anchors = append(anchors, model.Anchor{
			Href: strings.TrimSpace(m[1]),
			Text: strings.TrimSpace(stripHTML(m[2])),
		})
	}
	return anchors
}

// stripHTML removes script/style/nav/footer blocks, strips tags, decodes
// common entities, and collapses whitespace.
func stripHTML(html string) string {
	for _, tag := range []string{"script", "style", "nav", "footer"} {
		re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		html = re.ReplaceAllString(html, "")
	}

	html = tagRe.ReplaceAllString(html, " ")
	html = entityReplacer.Replace(html)
	html = spaceRe.ReplaceAllString(html, " ")
	html = nlRe.ReplaceAllString(html, "\n\n")

	return strings.TrimSpace(html)
}
