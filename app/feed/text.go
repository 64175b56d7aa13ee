package feed

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// plainText reduces an HTML fragment to whitespace-collapsed text. Input
// without markup is only trimmed and collapsed.
func plainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if strings.ContainsRune(s, '<') {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			s = doc.Text()
		}
	} else {
		s = html.UnescapeString(s)
	}

	return strings.Join(strings.Fields(s), " ")
}

// unwrapCDATA strips a single <![CDATA[ ... ]]> wrapper.
func unwrapCDATA(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<![CDATA[") && strings.HasSuffix(s, "]]>") {
		return s[len("<![CDATA[") : len(s)-len("]]>")], true
	}
	return s, false
}
