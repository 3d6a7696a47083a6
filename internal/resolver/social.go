package resolver

import (
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// socialPlatform pairs the host fragments that identify a platform with the
// slot the discovered URL lands in.
type socialPlatform struct {
	hosts []string
	slot  func(*model.SocialLinks) **string
}

var socialPlatforms = []socialPlatform{
	{[]string{"linkedin.com"}, func(s *model.SocialLinks) **string { return &s.LinkedIn }},
	{[]string{"facebook.com", "fb.com"}, func(s *model.SocialLinks) **string { return &s.Facebook }},
	{[]string{"twitter.com", "x.com"}, func(s *model.SocialLinks) **string { return &s.Twitter }},
	{[]string{"instagram.com"}, func(s *model.SocialLinks) **string { return &s.Instagram }},
}

// SocialScan accumulates social links across page visits. The first URL seen
// for each platform wins; later sightings never overwrite it.
type SocialScan struct {
	links model.SocialLinks
}

func NewSocialScan() *SocialScan {
	return &SocialScan{}
}

// ScanAnchors inspects each anchor's href for platform URL fragments and
// records first occurrences.
func (s *SocialScan) ScanAnchors(anchors []model.Anchor) {
	for _, a := range anchors {
		href := strings.ToLower(a.Href)
		if href == "" {
			continue
		}
		for _, p := range socialPlatforms {
			slot := p.slot(&s.links)
			if *slot != nil {
				continue
			}
			for _, host := range p.hosts {
				if strings.Contains(href, host) {
					url := a.Href
					*slot = &url
					break
				}
			}
		}
	}
}

// Links returns the accumulated set. All four platform keys are always
// present on the struct; undiscovered ones stay nil.
func (s *SocialScan) Links() model.SocialLinks {
	return s.links
}
