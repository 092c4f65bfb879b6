package sanitizer

import (
	"strings"
	"unicode"
)

// MaxSearchLength caps free-text search terms before they become regexes.
const MaxSearchLength = 100

// TrimAndNormalize collapses every run of whitespace to one space and drops
// invisible control and format characters such as zero-width spaces.
func TrimAndNormalize(s string) string {
	return strings.Join(strings.FieldsFunc(stripInvisible(s), unicode.IsSpace), " ")
}

// NormalizeText is TrimAndNormalize for multi-line text. Line breaks survive,
// each line is normalized and runs of blank lines shrink to one.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var lines []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = TrimAndNormalize(line)
		if line == "" {
			if !blank && len(lines) > 0 {
				lines = append(lines, "")
			}
			blank = true
			continue
		}
		lines = append(lines, line)
		blank = false
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// NormalizeSearch prepares a user search term: normalized and cut to
// MaxSearchLength runes.
func NormalizeSearch(s string) string {
	s = TrimAndNormalize(s)
	if runes := []rune(s); len(runes) > MaxSearchLength {
		s = strings.TrimSpace(string(runes[:MaxSearchLength]))
	}
	return s
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(stripInvisible(login)))
}

func stripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return r
		}
		if unicode.Is(unicode.Cc, r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}
