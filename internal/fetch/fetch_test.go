package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/jina"
)

type stubFetcher struct {
	name     string
	supports bool
	page     *model.Page
	err      error
	calls    int
}

func (s *stubFetcher) Name() string           { return s.name }
func (s *stubFetcher) Supports(_ string) bool { return s.supports }
func (s *stubFetcher) Fetch(_ context.Context, _ string) (*model.Page, error) {
	s.calls++
	return s.page, s.err
}

func TestChainFirstSuccessWins(t *testing.T) {
	first := &stubFetcher{name: "a", supports: true, page: &model.Page{URL: "u"}}
	second := &stubFetcher{name: "b", supports: true, page: &model.Page{URL: "u"}}

	page, err := NewChain(first, second).Fetch(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestChainFallsThroughOnError(t *testing.T) {
	first := &stubFetcher{name: "a", supports: true, err: eris.New("blocked (cloudflare)")}
	second := &stubFetcher{name: "b", supports: true, page: &model.Page{URL: "u"}}

	page, err := NewChain(first, second).Fetch(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestChainSkipsUnsupported(t *testing.T) {
	first := &stubFetcher{name: "a", supports: false}
	second := &stubFetcher{name: "b", supports: true, page: &model.Page{URL: "u"}}

	_, err := NewChain(first, second).Fetch(context.Background(), "ftp://acme.com/x")
	require.NoError(t, err)
	assert.Equal(t, 0, first.calls)
}

func TestChainAllFail(t *testing.T) {
	first := &stubFetcher{name: "a", supports: true, err: eris.New("boom")}

	_, err := NewChain(first).Fetch(context.Background(), "https://acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all fetchers failed")
}

func TestChainNoSuitableFetcher(t *testing.T) {
	_, err := NewChain(&stubFetcher{name: "a"}).Fetch(context.Background(), "gopher://x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no suitable fetcher")
}

func TestLocalFetcherParsesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "LeadGenBot")
		_, _ = w.Write([]byte(`<html><head><title>Acme</title></head>` +
			`<body><a href="/contact">Contact</a> info@acmeplumbing.com</body></html>`))
	}))
	defer srv.Close()

	page, err := NewLocalFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Acme", page.Title)
	assert.Equal(t, 200, page.StatusCode)
	assert.Contains(t, page.Text, "info@acmeplumbing.com")
	require.Len(t, page.Anchors, 1)
	assert.Equal(t, "/contact", page.Anchors[0].Href)
}

func TestLocalFetcherRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewLocalFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestLocalFetcherRejectsBlockedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>Checking your browser before accessing</body></html>`))
	}))
	defer srv.Close()

	_, err := NewLocalFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

type fakeJina struct {
	resp *jina.ReadResponse
	err  error
}

func (f fakeJina) Read(_ context.Context, _ string) (*jina.ReadResponse, error) {
	return f.resp, f.err
}

func TestJinaFetcherConvertsMarkdown(t *testing.T) {
	f := NewJinaFetcher(fakeJina{resp: &jina.ReadResponse{
		Code: 200,
		Data: jina.ReadData{
			Title: "Acme",
			Content: "# Acme\n\nEmail info@acmeplumbing.com\n\n" +
				"[Contact us](/contact \"Contact\") and [LinkedIn](https://linkedin.com/company/acme)",
		},
	}})

	page, err := f.Fetch(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "Acme", page.Title)
	require.Len(t, page.Anchors, 2)
	assert.Equal(t, model.Anchor{Text: "Contact us", Href: "/contact"}, page.Anchors[0])
	assert.Equal(t, "https://linkedin.com/company/acme", page.Anchors[1].Href)
}

func TestJinaFetcherEmptyContent(t *testing.T) {
	f := NewJinaFetcher(fakeJina{resp: &jina.ReadResponse{Code: 200}})
	_, err := f.Fetch(context.Background(), "https://acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty content")
}

func TestJinaFetcherSupports(t *testing.T) {
	f := NewJinaFetcher(fakeJina{})
	assert.True(t, f.Supports("https://acme.com"))
	assert.True(t, f.Supports("HTTP://acme.com"))
	assert.False(t, f.Supports("ftp://acme.com/leads.csv"))
}

func TestDetectBlock(t *testing.T) {
	tests := []struct {
		name   string
		resp   *http.Response
		body   string
		wantOK bool
		want   BlockType
	}{
		{
			"nil response",
			nil, "", false, BlockNone,
		},
		{
			"cloudflare header on 403",
			&http.Response{StatusCode: 403, Header: http.Header{"Cf-Ray": {"abc"}}},
			"", true, BlockCloudflare,
		},
		{
			"challenge page body",
			&http.Response{StatusCode: 200, Header: http.Header{}},
			"<html>Checking your browser before accessing</html>",
			true, BlockCloudflare,
		},
		{
			"captcha body",
			&http.Response{StatusCode: 200, Header: http.Header{}},
			"<html>please solve this reCAPTCHA</html>",
			true, BlockCaptcha,
		},
		{
			"tiny js shell",
			&http.Response{StatusCode: 200, Header: http.Header{}},
			"<html><noscript>enable javascript</noscript></html>",
			true, BlockJSShell,
		},
		{
			"ordinary page",
			&http.Response{StatusCode: 200, Header: http.Header{}},
			"<html><body>Welcome to Acme Plumbing of Austin</body></html>",
			false, BlockNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, blockType := DetectBlock(tt.resp, []byte(tt.body))
			assert.Equal(t, tt.wantOK, blocked)
			assert.Equal(t, tt.want, blockType)
		})
	}
}
