package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars     = regexp.MustCompile(`[^a-z0-9-]+`)
	multiDash        = regexp.MustCompile(`-+`)
	nonFilenameChars = regexp.MustCompile(`[^a-z0-9.-]`)
)

// foldAccents turns "Café" into "Cafe".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify derives a URL slug from a title.
func Slugify(input string) string {
	s := strings.ToLower(foldAccents(strings.TrimSpace(input)))
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "&", " en ")
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = multiDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SanitizeFilename lowercases name and keeps letters, digits, dots and dashes.
func SanitizeFilename(name string) string {
	s := strings.ToLower(foldAccents(strings.TrimSpace(name)))
	s = nonFilenameChars.ReplaceAllString(s, "-")
	s = multiDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
