package security

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// No third-party HTML sanitizer is wired in (see DESIGN.md): the allow-list
// is three tags wide, so stdlib's html.EscapeString plus a couple of
// targeted regexps covers it without pulling in a general-purpose parser.

var (
	openBI   = regexp.MustCompile(`(?i)<(b|i)>`)
	closeBI  = regexp.MustCompile(`(?i)</(b|i)>`)
	anchor   = regexp.MustCompile(`(?i)<a\s+href="([^"]*)"\s*>`)
	closeA   = regexp.MustCompile(`(?i)</a>`)
)

// SanitizeBody allow-lists <b>, <i>, and <a href="..."> against an
// otherwise fully HTML-escaped message body: every allowed tag is pulled
// out and replaced with an opaque placeholder before escaping, then
// restored afterward, so nothing else a caller writes can inject markup.
func SanitizeBody(raw string) string {
	var placeholders []string
	stash := func(tag string) string {
		placeholders = append(placeholders, tag)
		return fmt.Sprintf("\x00%d\x00", len(placeholders)-1)
	}

	working := anchor.ReplaceAllStringFunc(raw, func(m string) string {
		groups := anchor.FindStringSubmatch(m)
		href := groups[1]
		if !isSafeHref(href) {
			return m // left for escaping; an unsafe href never becomes a live link
		}
		return stash(fmt.Sprintf(`<a href="%s">`, html.EscapeString(href)))
	})
	working = closeA.ReplaceAllStringFunc(working, func(m string) string { return stash("</a>") })
	working = openBI.ReplaceAllStringFunc(working, func(m string) string {
		tag := strings.ToLower(openBI.FindStringSubmatch(m)[1])
		return stash("<" + tag + ">")
	})
	working = closeBI.ReplaceAllStringFunc(working, func(m string) string {
		tag := strings.ToLower(closeBI.FindStringSubmatch(m)[1])
		return stash("</" + tag + ">")
	})

	escaped := html.EscapeString(working)
	for i, tag := range placeholders {
		escaped = strings.Replace(escaped, fmt.Sprintf("\x00%d\x00", i), tag, 1)
	}
	return escaped
}

func isSafeHref(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
