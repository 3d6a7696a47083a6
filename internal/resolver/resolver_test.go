package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// fakeFetcher serves canned pages keyed by URL and records visit order.
type fakeFetcher struct {
	pages   map[string]*model.Page
	visited []string
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (*model.Page, error) {
	f.visited = append(f.visited, pageURL)
	page, ok := f.pages[pageURL]
	if !ok {
		return nil, eris.Errorf("no such page: %s", pageURL)
	}
	return page, nil
}

// slowFetcher blocks until the resolution deadline fires.
type slowFetcher struct{}

func (slowFetcher) Fetch(ctx context.Context, _ string) (*model.Page, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestResolveEmptyWebsite(t *testing.T) {
	fetcher := &fakeFetcher{}
	result := New(fetcher).Resolve(context.Background(), "  ")

	assert.Empty(t, fetcher.visited)
	assert.Nil(t, result.Email)
	assert.Equal(t, 0, result.PagesVisited)
	assert.Equal(t, 0, result.SocialLinks.Count())
}

func TestResolveEmailOnHomepage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*model.Page{
		"https://acme.com": {
			Text: "Questions? random@acme.com or sales@acme.com",
			Anchors: []model.Anchor{
				{Href: "https://linkedin.com/company/acme"},
				{Href: "https://acme.com/contact"},
			},
		},
	}}

	result := New(fetcher).Resolve(context.Background(), "https://acme.com")

	require.NotNil(t, result.Email)
	assert.Equal(t, "sales@acme.com", *result.Email)
	assert.Equal(t, 1, result.PagesVisited)
	assert.NotNil(t, result.SocialLinks.LinkedIn)
	// Email found on page one, so the contact link is never followed.
	assert.Equal(t, []string{"https://acme.com"}, fetcher.visited)
}

func TestResolveFollowsContactPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*model.Page{
		"https://acme.com": {
			Text: "Welcome to Acme.",
			Anchors: []model.Anchor{
				{Href: "#top"},
				{Href: "mailto:someone@acme.com"},
				{Href: "https://other.example.net/contact"},
				{Href: "/contact-us"},
			},
		},
		"https://acme.com/contact-us": {
			Text:    "Write to hello@acme.com",
			Anchors: []model.Anchor{{Href: "https://instagram.com/acme"}},
		},
	}}

	result := New(fetcher).Resolve(context.Background(), "https://acme.com")

	require.NotNil(t, result.Email)
	assert.Equal(t, "hello@acme.com", *result.Email)
	assert.Equal(t, 2, result.PagesVisited)
	assert.NotNil(t, result.SocialLinks.Instagram)
	assert.Equal(t, []string{"https://acme.com", "https://acme.com/contact-us"}, fetcher.visited)
}

func TestResolveNoEmailAnywhere(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*model.Page{
		"https://acme.com": {
			Text: "Welcome.",
			Anchors: []model.Anchor{
				{Href: "https://fb.com/acme"},
				{Href: "/about"},
			},
		},
		"https://acme.com/about": {
			Text:    "We are a company. Our team is great.",
			Anchors: []model.Anchor{{Href: "/team"}},
		},
	}}

	result := New(fetcher).Resolve(context.Background(), "https://acme.com")

	assert.Nil(t, result.Email)
	assert.Equal(t, 2, result.PagesVisited)
	assert.NotNil(t, result.SocialLinks.Facebook)
	// Page cap is two: the /team link on the second page is never followed.
	assert.Len(t, fetcher.visited, 2)
}

func TestResolveNoQualifyingSecondaryLink(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*model.Page{
		"https://acme.com": {
			Text: "Welcome.",
			Anchors: []model.Anchor{
				{Href: "#contact"},
				{Href: "mailto:info@acme.com?subject=contact"},
				{Href: "https://partner.example.net/about"},
				{Href: "/pricing"},
			},
		},
	}}

	result := New(fetcher).Resolve(context.Background(), "https://acme.com")

	assert.Nil(t, result.Email)
	assert.Equal(t, 1, result.PagesVisited)
}

func TestResolveHomepageFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{} // every fetch errors
	result := New(fetcher).Resolve(context.Background(), "https://acme.com")

	assert.Nil(t, result.Email)
	assert.Equal(t, 0, result.PagesVisited)
	assert.Equal(t, 0, result.SocialLinks.Count())
}

func TestResolveSecondPageFetchFailureKeepsPartialResults(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*model.Page{
		"https://acme.com": {
			Text: "Welcome.",
			Anchors: []model.Anchor{
				{Href: "https://linkedin.com/company/acme"},
				{Href: "/contact"},
			},
		},
		// /contact intentionally missing: the second fetch fails.
	}}

	result := New(fetcher).Resolve(context.Background(), "https://acme.com")

	assert.Nil(t, result.Email)
	assert.Equal(t, 1, result.PagesVisited)
	assert.NotNil(t, result.SocialLinks.LinkedIn)
}

func TestResolveDeadlineReturnsPartialResults(t *testing.T) {
	r := New(slowFetcher{}, WithTimeout(5*time.Millisecond))

	start := time.Now()
	result := r.Resolve(context.Background(), "https://acme.com")

	assert.Less(t, time.Since(start), time.Second)
	assert.Nil(t, result.Email)
	assert.Equal(t, 0, result.PagesVisited)
}

func TestSecondaryLink(t *testing.T) {
	tests := []struct {
		name    string
		anchors []model.Anchor
		want    string
	}{
		{
			"relative href resolves against the site",
			anchors("/about-us"),
			"https://acme.com/about-us",
		},
		{
			"case insensitive hint",
			anchors("/Contact"),
			"https://acme.com/Contact",
		},
		{
			"team hint",
			anchors("/our-team"),
			"https://acme.com/our-team",
		},
		{
			"first qualifying anchor wins",
			anchors("/pricing", "/contact", "/about"),
			"https://acme.com/contact",
		},
		{
			"fragment and mailto excluded",
			anchors("#contact", "mailto:contact@acme.com"),
			"",
		},
		{
			"cross domain excluded",
			anchors("https://linkedin.com/company/acme/about"),
			"",
		},
		{
			"nothing qualifying",
			anchors("/pricing", "/blog"),
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, secondaryLink("https://acme.com", tt.anchors))
		})
	}
}
