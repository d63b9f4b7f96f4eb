package main

import (
	"html"
	"strings"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

func hfSlug(s string) string {
	return slug.Make(s)
}

// renderText renders markdown to sanitized HTML.
func renderText(t string) string {
	unsafe := blackfriday.Run([]byte(t),
		blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.Autolink|blackfriday.HardLineBreak),
	)
	return string(ugcPolicy.SanitizeBytes(unsafe))
}

// sanitizeContent cleans argument HTML coming from the rich text editor. It
// returns an empty string when nothing but markup remains.
func sanitizeContent(html string) string {
	clean := strings.TrimSpace(ugcPolicy.Sanitize(html))
	if strings.TrimSpace(strictPolicy.Sanitize(clean)) == "" {
		return ""
	}
	return clean
}

// plainText strips all markup and entities.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
