// Package device derives a human-readable description of the caller's
// terminal from its User-Agent. Audit events record the summary so reviews
// can tell a gate kiosk from an office workstation without storing the raw
// User-Agent string.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Summarize turns a raw User-Agent into "Browser on OS".
// Empty input yields "Unknown Device".
func Summarize(rawUA string) string {
	if strings.TrimSpace(rawUA) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := ua.OSInfo().Name
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + os)
}
