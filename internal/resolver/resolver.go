// Package resolver recovers a contact email and social profile links from a
// business website by mining the homepage and at most one secondary page.
package resolver

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// DefaultTimeout bounds one whole resolution, both pages included.
const DefaultTimeout = 45 * time.Second

// maxPages caps the crawl at homepage plus one contact-ish page.
const maxPages = 2

// secondaryHints mark a link as worth a second fetch when the homepage had
// no usable email.
var secondaryHints = []string{"contact", "about", "team"}

// Fetcher supplies parsed pages. Implementations live in internal/fetch.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*model.Page, error)
}

// Resolver mines contact details from websites. Resolution never returns an
// error: network failures, parse failures, and deadline hits all degrade to
// whatever was found before the failure.
type Resolver struct {
	fetcher Fetcher
	timeout time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout overrides the per-resolution deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

func New(fetcher Fetcher, opts ...Option) *Resolver {
	r := &Resolver{fetcher: fetcher, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve visits the website's homepage, scans it for social links and email
// candidates, and follows up to one same-domain contact/about/team link if
// the homepage yields no email. An empty website returns immediately with no
// network I/O.
func (r *Resolver) Resolve(ctx context.Context, website string) model.ContactResult {
	var result model.ContactResult
	if strings.TrimSpace(website) == "" {
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	scan := NewSocialScan()
	pageURL := website

	for result.PagesVisited < maxPages {
		page, err := r.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			zap.L().Debug("resolver: fetch failed",
				zap.String("url", pageURL),
				zap.Error(err),
			)
			break
		}
		result.PagesVisited++

		scan.ScanAnchors(page.Anchors)

		if email := SelectBest(ExtractEmails(page.Text)); email != nil {
			result.Email = email
			break
		}

		next := secondaryLink(website, page.Anchors)
		if next == "" {
			break
		}
		pageURL = next
	}

	result.SocialLinks = scan.Links()
	return result
}

// secondaryLink picks the first same-domain anchor whose href hints at a
// contact, about, or team page. Fragment-only and mailto: links never
// qualify. Returns the absolute URL, or "" when nothing qualifies.
func secondaryLink(website string, anchors []model.Anchor) string {
	base, err := url.Parse(website)
	if err != nil {
		return ""
	}

	for _, a := range anchors {
		href := strings.TrimSpace(a.Href)
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "mailto:") {
			continue
		}
		if !containsAnyHint(lower) {
			continue
		}

		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref)
		if abs.Host != base.Host {
			continue
		}
		return abs.String()
	}
	return ""
}

func containsAnyHint(href string) bool {
	for _, hint := range secondaryHints {
		if strings.Contains(href, hint) {
			return true
		}
	}
	return false
}
