package client

import (
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Stephensmetana/youtube-transcriptor/internal/language"
)

// asciiFoldings covers letters NFD decomposition leaves untouched.
var asciiFoldings = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'ø': "o", 'Ø': "O",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'đ': "d", 'Đ': "D",
	'ð': "d", 'Ð': "D",
	'þ': "th", 'Þ': "Th",
	'ł': "l", 'Ł': "L",
	'ı': "i",
}

var titleTransliterator = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// BuildTranscriptFilename derives the output filename from a video title.
// Non-ASCII letters are transliterated, anything outside [A-Za-z0-9_-]
// becomes an underscore, runs collapse, and a non-English track gets a
// lowercase language-code suffix before the .txt extension.
func BuildTranscriptFilename(title string, isEnglish bool, languageCode string) string {
	base := sanitizeTitle(title)
	if base == "" {
		base = "transcript"
	}
	if !isEnglish {
		if code := strings.ToLower(strings.TrimSpace(languageCode)); code != "" {
			base += "_" + code
		}
	}
	return base + ".txt"
}

func sanitizeTitle(title string) string {
	decoded := html.UnescapeString(title)

	var folded strings.Builder
	folded.Grow(len(decoded))
	for _, r := range decoded {
		if repl, ok := asciiFoldings[r]; ok {
			folded.WriteString(repl)
			continue
		}
		folded.WriteRune(r)
	}

	stripped, _, err := transform.String(titleTransliterator, folded.String())
	if err != nil {
		stripped = folded.String()
	}

	var out strings.Builder
	out.Grow(len(stripped))
	lastUnderscore := false
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-':
			out.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				out.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(out.String(), "_")
}

// languageSuffix returns the normalized suffix the filename carries for a
// non-English track, mainly for display in logs.
func languageSuffix(code string) string {
	return strings.ToLower(language.Normalize(code))
}
