package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var foldedChars = regexp.MustCompile(`[<>:&"/\\|?*'\x00-\x1F]`)

// CleanTitle returns the comparison form of a title: tags stripped, entities decoded,
// reserved punctuation replaced by spaces, lower-cased and trimmed.
func CleanTitle(raw string) string {
	s := decode(stripTags(norm.NFC.String(raw)))
	s = foldedChars.ReplaceAllString(s, " ")
	return strings.TrimSpace(strings.ToLower(s))
}

// DisplayTitle strips tags and decodes entities but keeps case and punctuation.
func DisplayTitle(raw string) string {
	return strings.TrimSpace(decode(stripTags(norm.NFC.String(raw))))
}

// stripTags keeps only raw text tokens so entities survive for decode.
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}

func decode(s string) string {
	return html.UnescapeString(s)
}
