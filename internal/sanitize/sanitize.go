// Package sanitize strips markup from user-supplied and model-generated card
// text before it is stored.
package sanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy removes every element and attribute. It is safe for concurrent use.
var policy = bluemonday.StrictPolicy()

var (
	// tagStart matches an opening or closing tag at the start of a string.
	tagStart = regexp.MustCompile(`^</?([a-zA-Z][a-zA-Z0-9]*)(?:\s[^<>]*)?/?>`)
	// declStart matches comments, CDATA sections and doctypes.
	declStart = regexp.MustCompile(`^<!(?:--|\[CDATA\[|(?i:doctype))`)
)

// elements lists the tag names treated as markup. Any other "<" is text.
var elements = map[string]bool{
	"a": true, "abbr": true, "address": true, "area": true, "article": true,
	"aside": true, "audio": true, "b": true, "base": true, "bdi": true,
	"bdo": true, "blockquote": true, "body": true, "br": true, "button": true,
	"canvas": true, "caption": true, "center": true, "cite": true, "code": true,
	"col": true, "colgroup": true, "dd": true, "del": true, "details": true,
	"dfn": true, "dialog": true, "div": true, "dl": true, "dt": true,
	"em": true, "embed": true, "fieldset": true, "figcaption": true,
	"figure": true, "font": true, "footer": true, "form": true, "frame": true,
	"frameset": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "head": true, "header": true, "hr": true,
	"html": true, "i": true, "iframe": true, "img": true, "input": true,
	"ins": true, "kbd": true, "label": true, "legend": true, "li": true,
	"link": true, "main": true, "mark": true, "math": true, "meta": true,
	"nav": true, "noscript": true, "object": true, "ol": true, "optgroup": true,
	"option": true, "p": true, "param": true, "picture": true, "pre": true,
	"q": true, "s": true, "samp": true, "script": true, "section": true,
	"select": true, "small": true, "source": true, "span": true, "strike": true,
	"strong": true, "style": true, "sub": true, "summary": true, "sup": true,
	"svg": true, "table": true, "tbody": true, "td": true, "template": true,
	"textarea": true, "tfoot": true, "th": true, "thead": true, "time": true,
	"title": true, "tr": true, "track": true, "tt": true, "u": true, "ul": true,
	"var": true, "video": true, "wbr": true, "xmp": true,
}

// Text removes HTML from s, decodes the entities the policy introduces and
// trims surrounding whitespace. Plain text passes through unchanged apart
// from trimming, including comparisons such as "a<b".
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(escapeStrayLT(s))))
}

// escapeStrayLT encodes every "<" that does not open a tag or declaration,
// so the policy keeps the text that follows it.
func escapeStrayLT(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '<' && !startsMarkup(s[i:]) {
			b.WriteString("&lt;")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func startsMarkup(s string) bool {
	if declStart.MatchString(s) {
		return true
	}
	m := tagStart.FindStringSubmatch(s)
	return m != nil && elements[strings.ToLower(m[1])]
}
