package resolver

import (
	"regexp"
	"strings"
)

// emailRe is the bounded candidate pattern: local part starts with a letter,
// TLD is 2+ alphabetic characters, and the trailing \b keeps the TLD from
// swallowing adjacent words ("acme.comCopyright" stops at "com").
var emailRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9._%+-]*@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// leadingJunkRe strips phone-number residue glued onto the front of an email
// in unstructured page text ("206-2832lauraeason@..." and the like).
var leadingJunkRe = regexp.MustCompile(`^[\d\s\p{P}]+`)

// assetSuffixes knock out image and document paths that the candidate
// pattern would otherwise accept (logo@2x.png, brochure.pdf).
var (
	densityMarkers = []string{"@2x", "@3x"}
	assetSuffixes  = []string{
		".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp",
		".pdf", ".doc", ".docx",
	}
)

// domainBlacklist is matched case-insensitively as a substring of the domain
// part. Placeholder and test domains first, then site builders, then infra
// and tracking hosts, then the literal catch-alls.
var domainBlacklist = []string{
	"example.com", "domain.com", "yourdomain.com", "yoursite.com",
	"email.com", "test.com", "sample.com",
	"wix.com", "wordpress.com", "squarespace.com", "weebly.com",
	"sentry.io", "gravatar.com", "w3.org", "schema.org",
	"placeholder.com", "yourcompany.com", "companyname.com",
	"javascript:", "mailto:", ".png", ".jpg", ".gif", ".svg",
}

// priorityPrefixes ranks role addresses. The earliest prefix with any
// matching candidate wins outright, regardless of document order.
var priorityPrefixes = []string{
	"info@", "contact@", "sales@", "hello@", "support@", "admin@", "office@",
}

// ExtractEmails mines valid email candidates out of free page text, in
// document order. Candidates are pre-filtered, cleaned of leading junk, and
// validated; duplicates keep their first position.
func ExtractEmails(text string) []string {
	var out []string
	seen := make(map[string]struct{})

	for _, raw := range emailRe.FindAllString(text, -1) {
		if isAssetPath(raw) {
			continue
		}
		addr, ok := cleanCandidate(raw)
		if !ok || !ValidEmail(addr) {
			continue
		}
		key := strings.ToLower(addr)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// isAssetPath reports whether a raw match is an image or document reference
// rather than an address.
func isAssetPath(raw string) bool {
	lower := strings.ToLower(raw)
	for _, m := range densityMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	for _, ext := range assetSuffixes {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// cleanCandidate strips any leading run of digits, punctuation, or
// whitespace, then re-extracts the minimal valid match from what remains.
// Candidates that no longer match are discarded.
func cleanCandidate(raw string) (string, bool) {
	stripped := leadingJunkRe.ReplaceAllString(raw, "")
	addr := emailRe.FindString(stripped)
	if addr == "" {
		return "", false
	}
	return addr, true
}

// ValidEmail applies the RFC-light structural checks and the domain
// blacklist.
func ValidEmail(addr string) bool {
	parts := strings.Split(addr, "@")
	if len(parts) != 2 {
		return false
	}
	local, domain := parts[0], parts[1]
	if local == "" || len(local) > 64 {
		return false
	}
	if domain == "" || len(domain) > 255 {
		return false
	}

	lowerDomain := strings.ToLower(domain)
	for _, term := range domainBlacklist {
		if strings.Contains(lowerDomain, term) {
			return false
		}
	}
	return true
}

// SelectBest picks the winning candidate: the first candidate (in document
// order) matching the earliest-listed priority prefix, falling back to plain
// document order when no prefix matches. Returns nil for an empty slice.
func SelectBest(candidates []string) *string {
	if len(candidates) == 0 {
		return nil
	}

	for _, prefix := range priorityPrefixes {
		for _, c := range candidates {
			if strings.HasPrefix(strings.ToLower(c), prefix) {
				return &c
			}
		}
	}
	return &candidates[0]
}
