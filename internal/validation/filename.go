package validation

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\w\s.-]`)
	filenameSeparators  = regexp.MustCompile(`[\s-]+`)
)

// SanitizeFilename strips diacritics and characters that are unsafe for the
// conversion vendor. "Résumé (final)-v2.pdf" becomes "Resume final v2.pdf".
func SanitizeFilename(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	stripped = unsafeFilenameChars.ReplaceAllString(stripped, "")
	stripped = filenameSeparators.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(stripped)
}

// SourceFormat returns the lowercased extension without the dot. A name
// without a dot yields the whole lowercased name.
func SourceFormat(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return strings.ToLower(name)
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
