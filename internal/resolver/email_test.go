package resolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmails(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"plain address",
			"Reach us at info@acme.com any time.",
			[]string{"info@acme.com"},
		},
		{
			"document order preserved",
			"sales@acme.com or random@acme.com",
			[]string{"sales@acme.com", "random@acme.com"},
		},
		{
			"trailing word boundary",
			"info@acme.com Copyright 2024",
			[]string{"info@acme.com"},
		},
		{
			"phone residue stripped by cleaning",
			"Call 206-2832lauraeason@acme.com more text",
			[]string{"lauraeason@acme.com"},
		},
		{
			"image density suffix rejected",
			"<img src=logo@2x.png> hero@3x.jpg",
			nil,
		},
		{
			"asset extensions rejected",
			"banner@large.webp brochure@files.pdf guide@docs.docx",
			nil,
		},
		{
			"blacklisted domains rejected",
			"webmaster@wix.com admin@example.com you@yourdomain.com",
			nil,
		},
		{
			"duplicates collapse to first position",
			"info@acme.com then again INFO@acme.com then sales@acme.com",
			[]string{"info@acme.com", "sales@acme.com"},
		},
		{
			"no match",
			"no emails here, just @ signs and plumbing.",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEmails(tt.text))
		})
	}
}

func TestCleanCandidate(t *testing.T) {
	t.Run("leading digits and punctuation stripped", func(t *testing.T) {
		addr, ok := cleanCandidate("206-2832lauraeason@domain.com")
		require.True(t, ok)
		assert.Equal(t, "lauraeason@domain.com", addr)
	})

	t.Run("clean input unchanged", func(t *testing.T) {
		addr, ok := cleanCandidate("info@acme.com")
		require.True(t, ok)
		assert.Equal(t, "info@acme.com", addr)
	})

	t.Run("nothing valid remains", func(t *testing.T) {
		_, ok := cleanCandidate("123-456-7890")
		assert.False(t, ok)
	})
}

func TestValidEmail(t *testing.T) {
	t.Run("structural checks", func(t *testing.T) {
		assert.True(t, ValidEmail("info@acme.com"))
		assert.False(t, ValidEmail("no-at-sign"))
		assert.False(t, ValidEmail("two@ats@acme.com"))
		assert.False(t, ValidEmail("@acme.com"))
		assert.False(t, ValidEmail("info@"))
		assert.False(t, ValidEmail(strings.Repeat("a", 65)+"@acme.com"))
		assert.False(t, ValidEmail("info@"+strings.Repeat("a", 250)+".verylong.com"))
	})

	t.Run("blacklist is case insensitive on the domain", func(t *testing.T) {
		assert.False(t, ValidEmail("webmaster@wix.com"))
		assert.False(t, ValidEmail("webmaster@WIX.com"))
		assert.False(t, ValidEmail("x@mail.sentry.io"))
		assert.False(t, ValidEmail("x@companyname.com"))
		assert.True(t, ValidEmail("hello@wixlike.dev"))
	})
}

func TestSelectBest(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, SelectBest(nil))
	})

	t.Run("priority prefix beats document order", func(t *testing.T) {
		got := SelectBest([]string{"random@acme.com", "sales@acme.com"})
		require.NotNil(t, got)
		assert.Equal(t, "sales@acme.com", *got)
	})

	t.Run("earliest listed prefix wins across candidates", func(t *testing.T) {
		// sales@ appears first in the document, but info@ outranks it.
		got := SelectBest([]string{"sales@acme.com", "info@acme.com"})
		require.NotNil(t, got)
		assert.Equal(t, "info@acme.com", *got)
	})

	t.Run("no prefix match falls back to document order", func(t *testing.T) {
		got := SelectBest([]string{"laura@acme.com", "bob@acme.com"})
		require.NotNil(t, got)
		assert.Equal(t, "laura@acme.com", *got)
	})
}
