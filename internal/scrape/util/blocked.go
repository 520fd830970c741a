package util

import "strings"

// Markers that job boards and their CDNs put on denial pages. Checked
// against both the page title and body text.
var blockedMarkers = []string{
	"just a moment",
	"attention required",
	"cloudflare",
	"access denied",
	"are you a human",
	"verify you are human",
	"unusual activity",
	"unusual traffic",
	"security check",
	"request blocked",
	"captcha",
}

// LooksBlocked reports whether the rendered page is an anti-bot denial page
// rather than real content.
func LooksBlocked(title, body string) bool {
	t := strings.ToLower(title)
	b := strings.ToLower(body)
	for _, m := range blockedMarkers {
		if strings.Contains(t, m) {
			return true
		}
	}
	// Body markers need to be near the top; job descriptions legitimately
	// mention words like "security".
	head := b
	if len(head) > 4000 {
		head = head[:4000]
	}
	for _, m := range blockedMarkers {
		if strings.Contains(head, m) {
			return true
		}
	}
	return false
}
