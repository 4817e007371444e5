package extract

import (
	"strings"
	"unicode/utf8"
)

// plainText treats the payload as UTF-8 text, dropping invalid byte
// sequences. Markdown is indexed as-is; its markup survives chunking
// harmlessly.
func plainText(data []byte) string {
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return strings.TrimSpace(text)
}
