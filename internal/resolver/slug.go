package resolver

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tessro/onair/internal/core"
)

// Slugify derives the stable, URL-safe episode slug from a title.
// "Le Journal de 8h : Édition spéciale" becomes "le-journal-de-8h-edition-speciale".
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// FindBySlug returns the episode with the given slug.
func FindBySlug(episodes []core.Episode, slug string) (core.Episode, bool) {
	for _, ep := range episodes {
		if ep.Slug == slug {
			return ep, true
		}
	}
	return core.Episode{}, false
}

// Neighbors returns the episodes before and after slug in list order. Either
// may be nil at the ends of the list or when slug is unknown.
func Neighbors(episodes []core.Episode, slug string) (prev, next *core.Episode) {
	for i := range episodes {
		if episodes[i].Slug != slug {
			continue
		}
		if i > 0 {
			prev = &episodes[i-1]
		}
		if i < len(episodes)-1 {
			next = &episodes[i+1]
		}
		return prev, next
	}
	return nil, nil
}
