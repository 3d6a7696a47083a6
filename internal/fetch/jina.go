package fetch

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/jina"
)

// markdownLinkRe matches [text](url) links in Jina reader output. Bare
// autolinks come through as plain URLs in the text and are not anchors.
var markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)

// JinaFetcher fetches pages through the Jina AI Reader, which renders
// JS-heavy and bot-protected sites server-side. Used behind LocalFetcher in
// the chain.
type JinaFetcher struct {
	client jina.Client
}

func NewJinaFetcher(client jina.Client) *JinaFetcher {
	return &JinaFetcher{client: client}
}

func (j *JinaFetcher) Name() string { return "jina_reader" }

// Supports accepts http(s) URLs only; the reader cannot proxy other schemes.
func (j *JinaFetcher) Supports(pageURL string) bool {
	lower := strings.ToLower(pageURL)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch reads the page as markdown and converts it to a Page: markdown links
// become anchors (document order preserved), the full content is the text.
func (j *JinaFetcher) Fetch(ctx context.Context, pageURL string) (*model.Page, error) {
	resp, err := j.client.Read(ctx, pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "jina_reader: read")
	}
	if resp.Data.Content == "" {
		return nil, eris.New("jina_reader: empty content")
	}

	return &model.Page{
		URL:        pageURL,
		Title:      resp.Data.Title,
		Text:       resp.Data.Content,
		Anchors:    markdownAnchors(resp.Data.Content),
		StatusCode: http.StatusOK,
	}, nil
}

func markdownAnchors(content string) []model.Anchor {
	var anchors []model.Anchor
	for _, m := range markdownLinkRe.FindAllStringSubmatch(content, -1) {
		anchors = append(anchors, model.Anchor{
			Text: strings.TrimSpace(m[1]),
			Href: strings.TrimSpace(m[2]),
		})
	}
	return anchors
}
